package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// TestWorkController обрабатывает запросы по тестовым циклам и выводам по ним
type TestWorkController struct {
	workService *services.TestWorkService
	validator   *validator.Validate
}

func NewTestWorkController(works *services.TestWorkService) *TestWorkController {
	return &TestWorkController{
		workService: works,
		validator:   newValidator(),
	}
}

// List возвращает циклы: ?casino_id=&status=
func (c *TestWorkController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	casinoID, err := queryID(r, "casino_id")
	if err != nil {
		badRequest(w, err)
		return
	}

	works, err := c.workService.List(services.TestWorkFilter{
		CasinoID: casinoID,
		Status:   models.WorkStatus(r.URL.Query().Get("status")),
	}, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, works)
}

func (c *TestWorkController) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	work, err := c.workService.Get(id, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, work)
}

// Create начинает цикл по карте, привязанной к казино вызывающим
func (c *TestWorkController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	var req services.CreateTestWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	work, err := c.workService.Create(r.Context(), req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, work, "Тестовый цикл создан")
}

func (c *TestWorkController) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req services.UpdateTestWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	work, err := c.workService.Update(r.Context(), id, req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, work, "Тестовый цикл обновлен")
}

// AddWithdrawal создает вывод по циклу
func (c *TestWorkController) AddWithdrawal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req services.WithdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	withdrawal, err := c.workService.AddWithdrawal(r.Context(), id, req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, withdrawal, "Вывод создан со статусом "+string(withdrawal.Status))
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *TestWorkController) RegisterRoutes(router *mux.Router) {
	roles := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead, models.RoleTester}

	router.Handle("/test-works", allow(c.List, roles...)).Methods("GET")
	router.Handle("/test-works", allow(c.Create, roles...)).Methods("POST")
	router.Handle("/test-works/{id:[0-9]+}", allow(c.Get, roles...)).Methods("GET")
	router.Handle("/test-works/{id:[0-9]+}", allow(c.Update, roles...)).Methods("PATCH")
	router.Handle("/test-works/{id:[0-9]+}/withdrawal", allow(c.AddWithdrawal, roles...)).Methods("POST")
}
