package controllers

import (
	"backoffice/models"
	"backoffice/services"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// BankController обрабатывает запросы, связанные с банками и счетами
type BankController struct {
	bankService *services.BankService
	validator   *validator.Validate
}

// NewBankController создает новый экземпляр BankController
func NewBankController(banks *services.BankService) *BankController {
	return &BankController{
		bankService: banks,
		validator:   newValidator(),
	}
}

// GetBanks возвращает банки со счетами и количеством карт
func (c *BankController) GetBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := c.bankService.ListBanks()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, banks)
}

// CreateBank обрабатывает запрос на создание банка
func (c *BankController) CreateBank(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateBankDTO
	if err := decodeJSON(r, &dto); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, dto); err != nil {
		badRequest(w, err)
		return
	}

	bank, err := c.bankService.CreateBank(dto)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, bank, "Банк создан")
}

// CreateBankAccount обрабатывает запрос на создание банковского счета
func (c *BankController) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	bankID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	var dto services.CreateBankAccountDTO
	if err := decodeJSON(r, &dto); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, dto); err != nil {
		badRequest(w, err)
		return
	}

	account, err := c.bankService.CreateBankAccount(bankID, dto)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, account, "Счет создан")
}

// ChangeBalance устанавливает или изменяет баланс счета с записью в историю
func (c *BankController) ChangeBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	var dto services.BalanceChangeRequest
	if err := decodeJSON(r, &dto); err != nil {
		badRequest(w, err)
		return
	}
	if err := validateRequest(c.validator, dto); err != nil {
		badRequest(w, err)
		return
	}

	account, err := c.bankService.ChangeBalance(r.Context(), accountID, dto, actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, account, "Баланс обновлен")
}

// History возвращает историю баланса счета, новые записи первыми
func (c *BankController) History(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}

	history, err := c.bankService.History(accountID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *BankController) RegisterRoutes(router *mux.Router) {
	readers := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead}
	writers := []models.Role{models.RoleCFO, models.RoleManager, models.RoleAdmin}

	router.Handle("/banks", allow(c.GetBanks, readers...)).Methods("GET")
	router.Handle("/banks", allow(c.CreateBank, writers...)).Methods("POST")
	router.Handle("/banks/{id:[0-9]+}/accounts", allow(c.CreateBankAccount, writers...)).Methods("POST")
	router.Handle("/accounts/{id:[0-9]+}/balance", allow(c.ChangeBalance, writers...)).Methods("POST")
	router.Handle("/accounts/{id:[0-9]+}/history", allow(c.History, readers...)).Methods("GET")
}
