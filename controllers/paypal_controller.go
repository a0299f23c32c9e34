package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// PayPalController учетные записи PayPal. Данные маскируются, пароль отдается только через reveal.
type PayPalController struct {
	paypalService *services.PayPalService
	validator     *validator.Validate
}

func NewPayPalController(paypal *services.PayPalService) *PayPalController {
	return &PayPalController{
		paypalService: paypal,
		validator:     newValidator(),
	}
}

func (c *PayPalController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	list, err := c.paypalService.List(actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (c *PayPalController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePayPalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	account, err := c.paypalService.Create(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, account, "Учетная запись PayPal добавлена")
}

func (c *PayPalController) Reveal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	account, err := c.paypalService.Reveal(id, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondMessage(w, http.StatusOK, account, "Данные PayPal раскрыты")
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *PayPalController) RegisterRoutes(router *mux.Router) {
	viewers := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead, models.RoleJunior}

	router.Handle("/paypal", allow(c.List, viewers...)).Methods("GET")
	router.Handle("/paypal", allow(c.Create, models.RoleCFO, models.RoleManager, models.RoleAdmin)).Methods("POST")
	router.Handle("/paypal/{id:[0-9]+}/reveal", allow(c.Reveal, viewers...)).Methods("POST")
}
