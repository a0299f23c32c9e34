package controllers

import (
	"backoffice/middleware"
	"backoffice/models"
	"backoffice/services"
	"backoffice/utils"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const maxBodySize = 1 << 20

var (
	hasNumber  = regexp.MustCompile(`[0-9]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasSpecial = regexp.MustCompile(`[!@#$%^&*]`)
)

// newValidator создает валидатор с кастомными правилами
func newValidator() *validator.Validate {
	validate := validator.New()

	// Пароль: цифра, заглавная, строчная и спецсимвол
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		return hasNumber.MatchString(password) &&
			hasUpper.MatchString(password) &&
			hasLower.MatchString(password) &&
			hasSpecial.MatchString(password)
	})

	// decimal.Decimal не поддерживается тегами gt/gte
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return validate
}

// validateRequest валидирует DTO и возвращает ошибки валидации одним сообщением
func validateRequest(v *validator.Validate, dto interface{}) error {
	err := v.Struct(dto)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var errorMessages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
		case "gt":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше "+e.Param())
		case "gte", "min":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть не меньше "+e.Param())
		case "lte", "max":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть не больше "+e.Param())
		case "len":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно иметь длину "+e.Param())
		case "oneof":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
		case "email":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть email")
		case "password":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать цифру, заглавную, строчную букву и спецсимвол")
		case "datetime":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть в формате "+e.Param())
		default:
			errorMessages = append(errorMessages, "поле "+e.Field()+" заполнено неверно")
		}
	}
	return errors.New(strings.Join(errorMessages, "; "))
}

// decodeJSON читает тело запроса в dto
func decodeJSON(r *http.Request, dto interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dto); err != nil {
		return fmt.Errorf("Invalid request body: %v", err)
	}
	return nil
}

// respondJSON отправляет payload с заданным статусом
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		utils.LogError("Ошибка кодирования ответа: %v", err)
	}
}

// respondMessage отправляет payload с полем message на верхнем уровне.
// Если payload не объект, он кладется в поле data.
func respondMessage(w http.ResponseWriter, status int, payload interface{}, message string) {
	body, err := withMessage(payload, message)
	if err != nil {
		utils.LogError("Ошибка кодирования ответа: %v", err)
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func withMessage(payload interface{}, message string) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg, _ := json.Marshal(message)

	fields := map[string]json.RawMessage{}
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	} else {
		fields["data"] = raw
	}
	fields["message"] = msg

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// statusFor сопоставляет ошибку бизнес-логики с HTTP-статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidLogin):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError отвечает {error}. Текст внутренних ошибок наружу не отдается.
func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		utils.GetMetrics().RecordError(err)
		utils.LogError("Внутренняя ошибка: %v", err)
		message = "Internal server error"
	}
	respondJSON(w, status, map[string]string{"error": message})
}

// badRequest отвечает 400 с сообщением
func badRequest(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// pathID читает числовой параметр маршрута
func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("неверный идентификатор %s: %q", name, raw)
	}
	return uint(id), nil
}

// queryID читает необязательный числовой параметр запроса
func queryID(r *http.Request, name string) (*uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("неверный параметр %s: %q", name, raw)
	}
	v := uint(id)
	return &v, nil
}

// currentActor получает пользователя из контекста запроса
func currentActor(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return services.Actor{}, false
	}
	return actor, true
}

// allow оборачивает обработчик проверкой роли
func allow(h http.HandlerFunc, roles ...models.Role) http.Handler {
	return middleware.RequireRoles(roles...)(h)
}

var errSelfDeactivate = errors.New("нельзя отключить собственную учетную запись")
