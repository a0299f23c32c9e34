package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// CasinoController обрабатывает запросы к справочнику казино
type CasinoController struct {
	casinoService *services.CasinoService
	validator     *validator.Validate
}

func NewCasinoController(casinos *services.CasinoService) *CasinoController {
	return &CasinoController{
		casinoService: casinos,
		validator:     newValidator(),
	}
}

func (c *CasinoController) List(w http.ResponseWriter, r *http.Request) {
	casinos, err := c.casinoService.List(models.CasinoStatus(r.URL.Query().Get("status")))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, casinos)
}

func (c *CasinoController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	casino, err := c.casinoService.Get(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, casino)
}

func (c *CasinoController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CasinoRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	casino, err := c.casinoService.Create(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, casino, "Казино добавлено")
}

func (c *CasinoController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req services.CasinoRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	casino, err := c.casinoService.Update(id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, casino, "Казино обновлено")
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *CasinoController) RegisterRoutes(router *mux.Router) {
	editors := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin}

	router.HandleFunc("/casinos", c.List).Methods("GET")
	router.HandleFunc("/casinos/{id:[0-9]+}", c.Get).Methods("GET")
	router.Handle("/casinos", allow(c.Create, editors...)).Methods("POST")
	router.Handle("/casinos/{id:[0-9]+}", allow(c.Update, editors...)).Methods("PUT")
}
