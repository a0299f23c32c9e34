package services

import (
	"backoffice/eligibility"
	"backoffice/models"
	"backoffice/presentation"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTestWorkRequest данные для нового тестового цикла
type CreateTestWorkRequest struct {
	CardID        uint            `json:"card_id" validate:"required"`
	CasinoID      uint            `json:"casino_id" validate:"required"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Notes         string          `json:"notes" validate:"max=2000"`
}

// UpdateTestWorkRequest частичное обновление цикла
type UpdateTestWorkRequest struct {
	Status         *models.WorkStatus `json:"status" validate:"omitempty,oneof=pending in_progress active completed failed cancelled"`
	DepositAmount  *decimal.Decimal   `json:"deposit_amount"`
	DepositSuccess *bool              `json:"deposit_success"`
	Rating         *int               `json:"rating" validate:"omitempty,min=1,max=10"`
	Notes          *string            `json:"notes" validate:"omitempty,max=2000"`
}

// WithdrawalRequest данные для вывода средств
type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TestWorkFilter параметры списка циклов
type TestWorkFilter struct {
	CasinoID *uint
	Status   models.WorkStatus
}

// TestWorkService предоставляет методы для работы с тестовыми циклами
type TestWorkService struct {
	db       *gorm.DB
	notifier *Notifier
	metrics  *utils.Metrics
}

// NewTestWorkService создает новый экземпляр TestWorkService
func NewTestWorkService(db *gorm.DB, notifier *Notifier) *TestWorkService {
	return &TestWorkService{db: db, notifier: notifier, metrics: utils.GetMetrics()}
}

// InitialWithdrawalStatus возвращает статус нового вывода: waiting, если сумма
// не превышает лимит автоодобрения казино, иначе new
func InitialWithdrawalStatus(amount, autoApproveLimit decimal.Decimal) models.WithdrawalStatus {
	if autoApproveLimit.IsPositive() && amount.LessThanOrEqual(autoApproveLimit) {
		return models.WithdrawalWaiting
	}
	return models.WithdrawalNew
}

// ownsAssignment проверяет правило "мои карты": активная привязка создана этим пользователем
func ownsAssignment(assignments []models.CasinoAssignment, casinoID, userID uint) bool {
	for _, a := range assignments {
		if a.CasinoID == casinoID && a.Status == models.AssignmentActive && a.AssignedBy == userID {
			return true
		}
	}
	return false
}

// reopenBlocked сообщает, что перевод цикла в незавершенный статус даст второй
// открытый цикл по той же паре карта+казино. others не должен содержать сам цикл.
func reopenBlocked(work models.TestWork, next *models.WorkStatus, others []eligibility.Work) bool {
	if next == nil || !eligibility.IsOpenWork(string(*next)) {
		return false
	}
	return eligibility.HasOpenWork(work.CardID, work.CasinoID, others)
}

// privileged роли, которым доступны циклы всех сотрудников
func privileged(actor Actor) bool {
	return actor.Is(models.RoleCFO, models.RoleManager, models.RoleAdmin, models.RoleTeamLead)
}

// Create открывает тестовый цикл по паре карта+казино
func (s *TestWorkService) Create(ctx context.Context, req CreateTestWorkRequest, actor Actor) (*models.TestWork, error) {
	if req.DepositAmount.IsNegative() {
		return nil, invalid("сумма депозита не может быть отрицательной")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	var card models.Card
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Assignments").First(&card, req.CardID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("карта", req.CardID)
		}
		return nil, err
	}

	var casino models.Casino
	if err := tx.First(&casino, req.CasinoID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("казино", req.CasinoID)
		}
		return nil, err
	}

	if !privileged(actor) && !ownsAssignment(card.Assignments, casino.ID, actor.ID) {
		tx.Rollback()
		return nil, forbidden("карта #%d не привязана вами к казино #%d", card.ID, casino.ID)
	}

	works, err := loadWorks(tx, []uint{card.ID}, casino.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if !eligibility.CanStartWork(ToEligibilityCard(card), casino.ID, works) {
		tx.Rollback()
		return nil, conflict("для карты #%d и казино #%d нельзя открыть новый цикл", card.ID, casino.ID)
	}

	work := &models.TestWork{
		CardID:        card.ID,
		CasinoID:      casino.ID,
		TesterID:      actor.ID,
		Status:        models.WorkPending,
		DepositAmount: req.DepositAmount,
		Notes:         req.Notes,
	}
	if err := tx.Create(work).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("не удалось создать цикл: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	return s.Get(work.ID, actor)
}

// List возвращает циклы. Tester видит только свои.
func (s *TestWorkService) List(filter TestWorkFilter, actor Actor) ([]models.TestWork, error) {
	query := s.db.Preload("Casino").Preload("Withdrawals", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Order("created_at DESC, id DESC")

	if !privileged(actor) {
		query = query.Where("tester_id = ?", actor.ID)
	}
	if filter.CasinoID != nil {
		query = query.Where("casino_id = ?", *filter.CasinoID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var list []models.TestWork
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении циклов: %w", err)
	}
	return list, nil
}

// Get возвращает цикл по ID
func (s *TestWorkService) Get(id uint, actor Actor) (*models.TestWork, error) {
	var work models.TestWork
	if err := s.db.Preload("Casino").Preload("Withdrawals").First(&work, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("тестовый цикл", id)
		}
		return nil, err
	}
	if !privileged(actor) && work.TesterID != actor.ID {
		return nil, forbidden("цикл #%d принадлежит другому сотруднику", id)
	}
	return &work, nil
}

// Update обновляет статус, депозит и оценку цикла.
// Успешный депозит отмечается в привязке карты к казино: такую привязку нельзя снять.
func (s *TestWorkService) Update(ctx context.Context, id uint, req UpdateTestWorkRequest, actor Actor) (*models.TestWork, error) {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 10) {
		return nil, invalid("оценка должна быть от 1 до 10")
	}
	if req.DepositAmount != nil && req.DepositAmount.IsNegative() {
		return nil, invalid("сумма депозита не может быть отрицательной")
	}

	work, err := s.Get(id, actor)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.DepositAmount != nil {
		updates["deposit_amount"] = *req.DepositAmount
	}
	if req.DepositSuccess != nil {
		updates["deposit_success"] = *req.DepositSuccess
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return work, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Status != nil && eligibility.IsOpenWork(string(*req.Status)) {
			// Блокировка карты упорядочивает открытие циклов так же, как в Create
			var card models.Card
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&card, work.CardID).Error; err != nil {
				return err
			}
			others, err := loadWorks(tx.Where("id <> ?", work.ID), []uint{work.CardID}, work.CasinoID)
			if err != nil {
				return err
			}
			if reopenBlocked(*work, req.Status, others) {
				return conflict("по карте #%d и казино #%d уже есть незавершенный цикл", work.CardID, work.CasinoID)
			}
		}
		if err := tx.Model(work).Updates(updates).Error; err != nil {
			return fmt.Errorf("не удалось обновить цикл: %w", err)
		}
		if req.DepositSuccess != nil && *req.DepositSuccess {
			return tx.Model(&models.CasinoAssignment{}).
				Where("card_id = ? AND casino_id = ? AND status = ?", work.CardID, work.CasinoID, models.AssignmentActive).
				Update("has_deposit", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id, actor)
}

// AddWithdrawal создает вывод средств по циклу
func (s *TestWorkService) AddWithdrawal(ctx context.Context, id uint, req WithdrawalRequest, actor Actor) (*models.WorkWithdrawal, error) {
	if !req.Amount.IsPositive() {
		return nil, invalid("сумма вывода должна быть больше 0")
	}

	work, err := s.Get(id, actor)
	if err != nil {
		return nil, err
	}
	if work.Casino == nil {
		return nil, notFound("казино", work.CasinoID)
	}

	withdrawal := &models.WorkWithdrawal{
		TestWorkID: work.ID,
		Amount:     req.Amount.Round(2),
		Status:     InitialWithdrawalStatus(req.Amount, work.Casino.AutoApproveLimit),
		UpdatedBy:  &actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(withdrawal).Error; err != nil {
		return nil, fmt.Errorf("не удалось создать вывод: %w", err)
	}
	s.metrics.RecordWithdrawal(string(withdrawal.Status))

	s.notifier.Publish(ctx, Event{
		Kind:  EventWithdrawalCreated,
		Title: "Новый вывод " + presentation.FormatMoney(withdrawal.Amount, work.Casino.Currency),
		Body:  fmt.Sprintf("Казино %s, цикл #%d, статус %s", work.Casino.Name, work.ID, withdrawal.Status),
		Roles: []models.Role{models.RoleManager},
	})

	return withdrawal, nil
}
