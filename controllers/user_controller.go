package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// UserController управляет учетными записями сотрудников
type UserController struct {
	userService *services.UserService
	validator   *validator.Validate
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{
		userService: users,
		validator:   newValidator(),
	}
}

// List возвращает сотрудников, ?role= фильтрует по роли
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.userService.List(models.Role(r.URL.Query().Get("role")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Create заводит сотрудника с ролью. HR не может создавать администраторов.
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req services.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}
	if actor.Role == models.RoleHR && req.Role == models.RoleAdmin {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "HR не может создавать администраторов"})
		return
	}

	req.Active = true
	user, err := c.userService.CreateUserInternal(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, services.ToUserDTO(*user), "Сотрудник создан")
}

// SetActive активирует или блокирует учетную запись
func (c *UserController) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	var req SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}
	if id == actor.ID && !*req.Active {
		badRequest(w, errSelfDeactivate)
		return
	}

	user, err := c.userService.SetActive(id, *req.Active)
	if err != nil {
		respondError(w, err)
		return
	}

	message := "Учетная запись активирована"
	if !user.Active {
		message = "Учетная запись отключена"
	}
	respondMessage(w, http.StatusOK, user, message)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *UserController) RegisterRoutes(router *mux.Router) {
	router.Handle("/users", allow(c.List, models.RoleAdmin, models.RoleHR, models.RoleManager, models.RoleCFO, models.RoleTeamLead)).Methods("GET")
	router.Handle("/users", allow(c.Create, models.RoleAdmin, models.RoleHR)).Methods("POST")
	router.Handle("/users/{id:[0-9]+}/active", allow(c.SetActive, models.RoleAdmin, models.RoleHR)).Methods("PATCH")
}
