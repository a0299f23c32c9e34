package services

import (
	"backoffice/models"
	"backoffice/presentation"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// WithdrawalActionRequest смена статуса вывода
type WithdrawalActionRequest struct {
	Status models.WithdrawalStatus `json:"status" validate:"required"`
}

// WithdrawalDTO вывод с оформлением статуса
type WithdrawalDTO struct {
	models.WorkWithdrawal
	Style      presentation.StatusStyle `json:"style"`
	CasinoID   uint                     `json:"casino_id"`
	CasinoName string                   `json:"casino_name"`
	Formatted  string                   `json:"formatted_amount"`
}

// WithdrawalService универсальный список выводов и смена их статусов
type WithdrawalService struct {
	db       *gorm.DB
	notifier *Notifier
	metrics  *utils.Metrics
	now      func() time.Time
}

// NewWithdrawalService создает новый экземпляр WithdrawalService
func NewWithdrawalService(db *gorm.DB, notifier *Notifier) *WithdrawalService {
	return &WithdrawalService{db: db, notifier: notifier, metrics: utils.GetMetrics(), now: time.Now}
}

func unknownWithdrawalStatus(status string) error {
	return invalid("неизвестный статус вывода %q, допустимые: %s", status, strings.Join(presentation.WithdrawalStatuses(), ", "))
}

// List возвращает выводы, при необходимости с фильтром по статусу
func (s *WithdrawalService) List(status string) ([]WithdrawalDTO, error) {
	query := s.db.Preload("TestWork.Casino").Order("created_at DESC, id DESC")
	if status != "" {
		if !presentation.ValidWithdrawalStatus(status) {
			return nil, unknownWithdrawalStatus(status)
		}
		query = query.Where("status = ?", status)
	}

	var list []models.WorkWithdrawal
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении выводов: %w", err)
	}

	out := make([]WithdrawalDTO, 0, len(list))
	for _, w := range list {
		out = append(out, toWithdrawalDTO(w))
	}
	return out, nil
}

func toWithdrawalDTO(w models.WorkWithdrawal) WithdrawalDTO {
	style, _ := presentation.WithdrawalStatusStyle(string(w.Status))
	dto := WithdrawalDTO{WorkWithdrawal: w, Style: style, Formatted: w.Amount.StringFixed(2)}
	if w.TestWork != nil && w.TestWork.Casino != nil {
		dto.CasinoID = w.TestWork.Casino.ID
		dto.CasinoName = w.TestWork.Casino.Name
		dto.Formatted = presentation.FormatMoney(w.Amount, w.TestWork.Casino.Currency)
	}
	dto.TestWork = nil
	return dto
}

// Action устанавливает статус вывода. Допустим переход из любого статуса в любой из четырех.
func (s *WithdrawalService) Action(ctx context.Context, id uint, req WithdrawalActionRequest, actor Actor) (*WithdrawalDTO, error) {
	if !presentation.ValidWithdrawalStatus(string(req.Status)) {
		return nil, unknownWithdrawalStatus(string(req.Status))
	}

	var w models.WorkWithdrawal
	if err := s.db.WithContext(ctx).Preload("TestWork.Casino").First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("вывод", id)
		}
		return nil, err
	}

	previous := w.Status
	updates := map[string]interface{}{
		"status":     req.Status,
		"updated_by": actor.ID,
		"updated_at": s.now(),
	}
	// Флаг просрочки относится только к ожиданию
	if req.Status != models.WithdrawalWaiting {
		updates["overdue"] = false
	}
	if err := s.db.WithContext(ctx).Model(&w).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("не удалось обновить вывод: %w", err)
	}
	w.Status = req.Status
	w.UpdatedBy = &actor.ID
	if req.Status != models.WithdrawalWaiting {
		w.Overdue = false
	}
	s.metrics.RecordWithdrawal(string(req.Status))

	if w.TestWork != nil && previous != req.Status {
		s.notifier.Publish(ctx, Event{
			Kind:       EventWithdrawalStatus,
			Title:      fmt.Sprintf("Вывод #%d: %s", w.ID, req.Status),
			Body:       fmt.Sprintf("Статус изменен с %s на %s", previous, req.Status),
			Recipients: []Recipient{{UserID: w.TestWork.TesterID}},
		})
	}

	dto := toWithdrawalDTO(w)
	return &dto, nil
}

// OverdueWithdrawals отбирает выводы в статусе waiting, которые ждут дольше политики казино
// и еще не отмечены просроченными. Казино без политики не учитываются.
func OverdueWithdrawals(list []models.WorkWithdrawal, now time.Time) []models.WorkWithdrawal {
	var out []models.WorkWithdrawal
	for _, w := range list {
		if w.Status != models.WithdrawalWaiting || w.Overdue {
			continue
		}
		if w.TestWork == nil || w.TestWork.Casino == nil {
			continue
		}
		window := w.TestWork.Casino.WithdrawalWindow()
		if window <= 0 {
			continue
		}
		if now.Sub(w.UpdatedAt) > window {
			out = append(out, w)
		}
	}
	return out
}

// ProcessOverdue отмечает просроченные выводы и уведомляет менеджеров. Каждый вывод отмечается один раз.
func (s *WithdrawalService) ProcessOverdue(ctx context.Context) error {
	// Начинаем транзакцию
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.New("ошибка при начале транзакции")
	}

	var waiting []models.WorkWithdrawal
	if err := tx.Where("status = ? AND overdue = ?", models.WithdrawalWaiting, false).
		Preload("TestWork.Casino").
		Find(&waiting).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при получении выводов")
	}

	overdue := OverdueWithdrawals(waiting, s.now())
	if len(overdue) == 0 {
		tx.Rollback()
		return nil
	}

	ids := make([]uint, 0, len(overdue))
	for _, w := range overdue {
		ids = append(ids, w.ID)
	}
	// UpdateColumn не трогает updated_at: время ожидания считается от последней смены статуса
	if err := tx.Model(&models.WorkWithdrawal{}).Where("id IN ?", ids).UpdateColumn("overdue", true).Error; err != nil {
		tx.Rollback()
		return errors.New("ошибка при обновлении просроченных выводов")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return errors.New("ошибка при подтверждении транзакции")
	}

	s.metrics.RecordOverdue(int64(len(overdue)))
	for _, w := range overdue {
		s.notifier.Publish(ctx, Event{
			Kind:  EventWithdrawalOverdue,
			Title: fmt.Sprintf("Вывод #%d просрочен", w.ID),
			Body: fmt.Sprintf("Казино %s: ожидание дольше %s",
				w.TestWork.Casino.Name, w.TestWork.Casino.WithdrawalWindow()),
			Roles: []models.Role{models.RoleManager},
		})
	}
	return nil
}
