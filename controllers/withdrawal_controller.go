package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// WithdrawalController универсальный список выводов и смена статусов
type WithdrawalController struct {
	withdrawalService *services.WithdrawalService
	validator         *validator.Validate
}

func NewWithdrawalController(withdrawals *services.WithdrawalService) *WithdrawalController {
	return &WithdrawalController{
		withdrawalService: withdrawals,
		validator:         newValidator(),
	}
}

// List возвращает выводы: ?status=new|waiting|received|blocked
func (c *WithdrawalController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.withdrawalService.List(r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Action меняет статус вывода без проверки переходов
func (c *WithdrawalController) Action(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req services.WithdrawalActionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	withdrawal, err := c.withdrawalService.Action(r.Context(), id, req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, withdrawal, "Статус вывода: "+withdrawal.Style.Label)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *WithdrawalController) RegisterRoutes(router *mux.Router) {
	roles := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin}

	router.Handle("/universal/withdrawals", allow(c.List, roles...)).Methods("GET")
	router.Handle("/universal/withdrawals/{id:[0-9]+}/action", allow(c.Action, roles...)).Methods("POST")
}
