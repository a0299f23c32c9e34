package controllers

import (
	"backoffice/middleware"
	"backoffice/models"
	"backoffice/services"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type AuthController struct {
	userService *services.UserService
	validate    *validator.Validate
	jwtKey      []byte
	expiresIn   time.Duration
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignUpRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72,password"`
}

type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      services.UserDTO `json:"user"`
}

// NewAuthController создает контроллер аутентификации. expiresIn задается в часах.
func NewAuthController(users *services.UserService, jwtKey string, expiresIn int) *AuthController {
	return &AuthController{
		userService: users,
		validate:    newValidator(),
		jwtKey:      []byte(jwtKey),
		expiresIn:   time.Duration(expiresIn) * time.Hour,
	}
}

// SignIn обрабатывает вход пользователя
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validate, req); err != nil {
		badRequest(w, err)
		return
	}

	user, err := c.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, expiresAt, err := middleware.IssueToken(c.jwtKey, user.ID, user.Email, string(user.Role), c.expiresIn)
	if err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      services.ToUserDTO(*user),
	}, "Вход выполнен")
}

// SignUp регистрирует сотрудника. Учетная запись создается неактивной с ролью junior,
// активирует ее администратор или HR.
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validate, req); err != nil {
		badRequest(w, err)
		return
	}

	user, err := c.userService.CreateUserInternal(services.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.RoleJunior,
		Active:    false,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, services.ToUserDTO(*user), "Регистрация принята, дождитесь активации учетной записи")
}

// RegisterRoutes регистрирует публичные маршруты
func (c *AuthController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/signUp", c.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", c.SignIn).Methods("POST")
}
