package middleware

import (
	"backoffice/models"
	"backoffice/services"
	"backoffice/utils"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	emailKey     ctxKey = "email"
	roleKey      ctxKey = "role"
	requestIDKey ctxKey = "request_id"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *LoggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware присваивает запросу идентификатор, если клиент его не передал
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID возвращает идентификатор текущего запроса
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggingMiddleware логирует информацию о запросе и ответе и пишет метрики.
// Тело ответа не логируется: в нем бывают расшифрованные данные карт.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Создаем обертку для ResponseWriter
		lrw := &LoggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Обрабатываем запрос
		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		utils.GetMetrics().RecordRequest(duration, lrw.statusCode >= http.StatusInternalServerError)

		entry := utils.Log.WithFields(logrus.Fields{
			"request_id": RequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     lrw.statusCode,
			"bytes":      lrw.size,
			"duration":   duration.String(),
		})
		if lrw.statusCode >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request")
	})
}

// RecoveryMiddleware перехватывает панику и отвечает 500
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				utils.GetMetrics().RecordCriticalError(err)
				utils.Log.WithField("request_id", RequestID(r.Context())).
					WithField("stack", string(debug.Stack())).
					Error(err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware ограничивает частоту запросов с одного адреса.
// X-Real-IP учитывается только от адресов из trustedProxies.
func RateLimitMiddleware(limiter *utils.RateLimiter, trustedProxies ...string) func(http.Handler) http.Handler {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, p := range trustedProxies {
		trusted[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r, trusted)
			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(limiter.GetResetTime(key)).Seconds())+1))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(key)))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trusted map[string]bool) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if trusted[host] {
		if fwd := r.Header.Get("X-Real-IP"); fwd != "" {
			return fwd
		}
	}
	return host
}

// ActiveChecker сообщает, активна ли учетная запись
type ActiveChecker interface {
	IsActive(id uint) (bool, error)
}

// AuthMiddleware проверяет JWT токен и добавляет заголовок X-User-ID.
// Если users задан, на каждом запросе проверяется, что пользователь не отключен.
func AuthMiddleware(jwtKey []byte, users ActiveChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			claims, err := ParseToken(jwtKey, bearer(tokenString))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if !models.Role(claims.Role).Valid() {
				writeError(w, http.StatusUnauthorized, "Invalid role in token")
				return
			}
			if users != nil {
				active, err := users.IsActive(claims.UserID)
				if err != nil {
					utils.LogError("Не удалось проверить пользователя %d: %v", claims.UserID, err)
					writeError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				if !active {
					writeError(w, http.StatusUnauthorized, "User is inactive")
					return
				}
			}

			// Добавляем заголовок X-User-ID
			r.Header.Set("X-User-ID", strconv.FormatUint(uint64(claims.UserID), 10))

			// Добавляем информацию о пользователе в контекст запроса
			ctx := r.Context()
			ctx = context.WithValue(ctx, userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			ctx = context.WithValue(ctx, roleKey, models.Role(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles пропускает только пользователей с одной из ролей
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ActorFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if !actor.Is(roles...) {
				writeError(w, http.StatusForbidden, "Forbidden for role "+string(actor.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithActor кладет пользователя в контекст, как это делает AuthMiddleware
func WithActor(ctx context.Context, actor services.Actor) context.Context {
	ctx = context.WithValue(ctx, userIDKey, actor.ID)
	ctx = context.WithValue(ctx, emailKey, actor.Email)
	return context.WithValue(ctx, roleKey, actor.Role)
}

// ActorFromRequest получает информацию о пользователе из контекста
func ActorFromRequest(r *http.Request) (services.Actor, error) {
	userID, ok := r.Context().Value(userIDKey).(uint)
	if !ok {
		return services.Actor{}, fmt.Errorf("user_id not found in context")
	}
	role, ok := r.Context().Value(roleKey).(models.Role)
	if !ok {
		return services.Actor{}, fmt.Errorf("role not found in context")
	}
	email, _ := r.Context().Value(emailKey).(string)
	return services.Actor{ID: userID, Email: email, Role: role}, nil
}
