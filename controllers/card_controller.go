package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// CardController обрабатывает запросы, связанные с картами и их привязками
type CardController struct {
	cardService *services.CardService
	validator   *validator.Validate
}

type CardStatusRequest struct {
	Status models.CardStatus `json:"status" validate:"required,oneof=active blocked inactive"`
}

type AssignJuniorRequest struct {
	JuniorID *uint `json:"junior_id"`
}

// NewCardController создает новый экземпляр CardController
func NewCardController(cards *services.CardService) *CardController {
	return &CardController{
		cardService: cards,
		validator:   newValidator(),
	}
}

// GetCards возвращает карты: ?view=all|free|my|junior&casino_id=&status=
func (c *CardController) GetCards(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	casinoID, err := queryID(r, "casino_id")
	if err != nil {
		badRequest(w, err)
		return
	}

	cards, err := c.cardService.ListCards(services.CardFilter{
		View:     r.URL.Query().Get("view"),
		CasinoID: casinoID,
		Status:   models.CardStatus(r.URL.Query().Get("status")),
	}, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

// CreateCard обрабатывает запрос на выпуск карты к счету
func (c *CardController) CreateCard(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateCardDTO
	if err := decodeJSON(r, &dto); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, dto); err != nil {
		badRequest(w, err)
		return
	}

	card, err := c.cardService.CreateCard(dto)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, card, "Карта добавлена")
}

// Reveal возвращает расшифрованные данные карты
func (c *CardController) Reveal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	card, err := c.cardService.Reveal(id, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondMessage(w, http.StatusOK, card, "Данные карты раскрыты")
}

// UpdateStatus меняет статус карты
func (c *CardController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req CardStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	card, err := c.cardService.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, card, "Статус карты обновлен")
}

// AssignJunior выдает карту Junior; junior_id: null забирает карту
func (c *CardController) AssignJunior(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req AssignJuniorRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	card, err := c.cardService.AssignJunior(r.Context(), id, req.JuniorID, actor)
	if err != nil {
		respondError(w, err)
		return
	}

	message := "Карта выдана"
	if req.JuniorID == nil {
		message = "Карта отозвана"
	}
	respondMessage(w, http.StatusOK, card, message)
}

// AssignCorrect привязывает пакет карт к казино.
// Частичный успех возвращается как 200 с assigned_count < total_requested.
func (c *CardController) AssignCorrect(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	var req services.AssignCorrectRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	result, err := c.cardService.AssignCorrect(r.Context(), req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// UnassignFromCasino снимает привязку карты к казино
func (c *CardController) UnassignFromCasino(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	var req services.UnassignRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, req); err != nil {
		badRequest(w, err)
		return
	}

	card, err := c.cardService.UnassignFromCasino(r.Context(), req, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, card, "Карта отвязана от казино")
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *CardController) RegisterRoutes(router *mux.Router) {
	viewers := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead, models.RoleJunior, models.RoleTester}
	owners := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin}
	assigners := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead, models.RoleTester}

	router.Handle("/cards", allow(c.GetCards, viewers...)).Methods("GET")
	router.Handle("/cards", allow(c.CreateCard, owners...)).Methods("POST")
	router.Handle("/cards/assign-correct", allow(c.AssignCorrect, assigners...)).Methods("POST")
	router.Handle("/cards/unassign-from-casino", allow(c.UnassignFromCasino, assigners...)).Methods("POST")
	router.Handle("/cards/{id:[0-9]+}/reveal", allow(c.Reveal, viewers...)).Methods("POST")
	router.Handle("/cards/{id:[0-9]+}/status", allow(c.UpdateStatus, owners...)).Methods("PATCH")
	router.Handle("/cards/{id:[0-9]+}/assign-junior", allow(c.AssignJunior, models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead)).Methods("POST")
}
