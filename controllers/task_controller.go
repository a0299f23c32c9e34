package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// TaskController задачи и их делегирование
type TaskController struct {
	taskService *services.TaskService
	validator   *validator.Validate
}

func NewTaskController(tasks *services.TaskService) *TaskController {
	return &TaskController{
		taskService: tasks,
		validator:   newValidator(),
	}
}

// List возвращает задачи вызывающего: ?status=
func (c *TaskController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	tasks, err := c.taskService.List(actor, models.TaskStatus(r.URL.Query().Get("status")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	var req services.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	task, err := c.taskService.Create(r.Context(), req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, task, "Задача создана")
}

func (c *TaskController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req services.TaskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	task, err := c.taskService.UpdateStatus(r.Context(), id, req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, task, "Статус задачи обновлен")
}

// RegisterRoutes регистрирует маршруты контроллера. Доступны всем ролям.
func (c *TaskController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks", c.List).Methods("GET")
	router.HandleFunc("/tasks", c.Create).Methods("POST")
	router.HandleFunc("/tasks/{id:[0-9]+}/status", c.UpdateStatus).Methods("PATCH")
}
