package services

import (
	"backoffice/eligibility"
	"backoffice/models"
	"backoffice/presentation"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Представления списка карт
const (
	ViewAll    = "all"
	ViewFree   = "free"
	ViewMy     = "my"
	ViewJunior = "junior"
)

// CreateCardDTO представляет данные для создания карты
type CreateCardDTO struct {
	AccountID  uint   `json:"account_id" validate:"required"`
	PAN        string `json:"pan" validate:"required,min=12,max=23"`
	Expiration string `json:"expiration" validate:"required,datetime=01/06"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	Holder     string `json:"holder" validate:"required,min=2,max=100"`
}

// CardFilter параметры списка карт
type CardFilter struct {
	View     string
	CasinoID *uint
	Status   models.CardStatus
}

// AssignCorrectRequest массовая привязка карт к казино
type AssignCorrectRequest struct {
	CardIDs        []uint                `json:"card_ids" validate:"required,min=1,max=500"`
	CasinoID       uint                  `json:"casino_id" validate:"required"`
	AssignmentType models.AssignmentType `json:"assignment_type" validate:"omitempty,oneof=testing work"`
}

// AssignCorrectResult итог массовой привязки
type AssignCorrectResult struct {
	AssignedCount  int                     `json:"assigned_count"`
	TotalRequested int                     `json:"total_requested"`
	AssignedIDs    []uint                  `json:"assigned_ids"`
	Rejected       []eligibility.Rejection `json:"rejected"`
	Message        string                  `json:"message"`
}

// UnassignRequest отвязка карты от казино
type UnassignRequest struct {
	CardID   uint `json:"card_id" validate:"required"`
	CasinoID uint `json:"casino_id" validate:"required"`
}

// AssignmentDTO привязка карты к казино в ответе
type AssignmentDTO struct {
	CasinoID   uint   `json:"casino_id"`
	CasinoName string `json:"casino_name,omitempty"`
	Type       string `json:"assignment_type"`
	Status     string `json:"status"`
	HasDeposit bool   `json:"has_deposit"`
	AssignedBy uint   `json:"assigned_by,omitempty"`
	Legacy     bool   `json:"legacy,omitempty"`
}

// CardResponseDTO представляет данные карты для ответа
type CardResponseDTO struct {
	ID          uint                      `json:"id"`
	MaskedPAN   string                    `json:"masked_pan"`
	BIN         string                    `json:"bin"`
	Holder      string                    `json:"holder"`
	Status      models.CardStatus         `json:"status"`
	AccountID   uint                      `json:"account_id"`
	BankName    string                    `json:"bank_name,omitempty"`
	Balance     *presentation.BalanceView `json:"balance,omitempty"`
	AssignedTo  *uint                     `json:"assigned_to"`
	Assignments []AssignmentDTO           `json:"assignments"`
	CreatedAt   string                    `json:"created_at"`
}

// RevealedCard расшифрованные данные карты
type RevealedCard struct {
	ID         uint   `json:"id"`
	PAN        string `json:"pan"`
	Expiration string `json:"expiration"`
	CVV        string `json:"cvv"`
	Holder     string `json:"holder"`
}

// CardService предоставляет методы для работы с картами
type CardService struct {
	db        *gorm.DB
	vault     *utils.Vault
	rates     *RateService
	notifier  *Notifier
	metrics   *utils.Metrics
	threshold decimal.Decimal
}

// NewCardService создает новый экземпляр CardService
func NewCardService(db *gorm.DB, vault *utils.Vault, rates *RateService, notifier *Notifier, threshold decimal.Decimal) *CardService {
	return &CardService{
		db:        db,
		vault:     vault,
		rates:     rates,
		notifier:  notifier,
		metrics:   utils.GetMetrics(),
		threshold: threshold,
	}
}

// CreateCard создает новую карту
func (s *CardService) CreateCard(dto CreateCardDTO) (*CardResponseDTO, error) {
	pan := utils.NormalizePAN(dto.PAN)
	if !utils.ValidateLuhn(pan) {
		return nil, invalid("номер карты не проходит проверку по алгоритму Луна")
	}

	// Проверяем существование счета
	var account models.BankAccount
	if err := s.db.Preload("Bank").First(&account, dto.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("банковский счет", dto.AccountID)
		}
		return nil, err
	}

	// Проверяем дубликат по HMAC без расшифровки
	fingerprint := s.vault.Fingerprint(pan)
	var count int64
	if err := s.db.Model(&models.Card{}).Where("pan_hmac = ?", fingerprint).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("карта %s уже существует", presentation.MaskPAN(pan))
	}

	// Шифруем данные
	encryptedPAN, err := s.vault.Seal(pan)
	if err != nil {
		return nil, errors.New("не удалось зашифровать номер карты")
	}
	encryptedSecret, err := s.vault.Seal(dto.Expiration + "|" + dto.CVV)
	if err != nil {
		return nil, errors.New("не удалось зашифровать данные карты")
	}

	card := &models.Card{
		PANEncrypted:    encryptedPAN,
		PANHMAC:         fingerprint,
		SecretEncrypted: encryptedSecret,
		MaskedPAN:       presentation.MaskPAN(pan),
		BIN:             pan[:6],
		Holder:          strings.ToUpper(strings.TrimSpace(dto.Holder)),
		Status:          models.CardStatusActive,
		AccountID:       account.ID,
		Account:         account,
	}

	// Сохраняем карту
	if err := s.db.Omit("Account").Create(card).Error; err != nil {
		return nil, fmt.Errorf("не удалось создать карту: %w", err)
	}
	s.metrics.RecordCardOperation("create", 1)

	dtoOut := s.cardToResponseDTO(card, true)
	return &dtoOut, nil
}

// ListCards возвращает карты в выбранном представлении
func (s *CardService) ListCards(filter CardFilter, actor Actor) ([]CardResponseDTO, error) {
	if filter.View == "" {
		filter.View = defaultView(actor.Role)
	}
	switch filter.View {
	case ViewAll, ViewFree, ViewMy, ViewJunior:
	default:
		return nil, invalid("неизвестное представление %q", filter.View)
	}
	if !viewAllowed(filter.View, actor.Role) {
		return nil, forbidden("представление %q недоступно для роли %s", filter.View, actor.Role)
	}

	query := s.db.Preload("Account.Bank").Preload("Assignments.Casino").Order("cards.id")
	switch filter.View {
	case ViewAll:
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	case ViewFree:
		query = query.Where("status = ? AND assigned_to IS NULL", models.CardStatusActive)
	case ViewMy:
		query = query.Where("id IN (?)", s.db.Model(&models.CasinoAssignment{}).
			Select("card_id").
			Where("assigned_by = ? AND status = ?", actor.ID, models.AssignmentActive))
	case ViewJunior:
		query = query.Where("assigned_to = ? AND status = ?", actor.ID, models.CardStatusActive)
	default:
		return nil, invalid("неизвестное представление %q", filter.View)
	}

	var cards []models.Card
	if err := query.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("не удалось получить карты: %w", err)
	}

	switch filter.View {
	case ViewFree:
		var casino *eligibility.Casino
		if filter.CasinoID != nil {
			c, err := s.loadCasino(s.db, *filter.CasinoID)
			if err != nil {
				return nil, err
			}
			casino = c
		}
		cards = keepEligible(cards, func(list []eligibility.Card) []eligibility.Card {
			return eligibility.FreeCards(list, casino)
		})
	case ViewMy:
		if filter.CasinoID != nil {
			works, err := s.openWorks(cards, *filter.CasinoID)
			if err != nil {
				return nil, err
			}
			cards = keepEligible(cards, func(list []eligibility.Card) []eligibility.Card {
				return eligibility.WorkCards(list, *filter.CasinoID, works)
			})
		}
	}

	out := make([]CardResponseDTO, 0, len(cards))
	for i := range cards {
		if filter.View == ViewJunior {
			acc := cards[i].Account
			if acc.ID == 0 || !presentation.VisibleToJunior(s.rates.USDOrRaw(acc.Balance, acc.Currency), s.threshold) {
				continue
			}
		}
		out = append(out, s.cardToResponseDTO(&cards[i], actor.Role != models.RoleTester))
	}
	return out, nil
}

func defaultView(role models.Role) string {
	switch role {
	case models.RoleJunior:
		return ViewJunior
	case models.RoleTester:
		return ViewMy
	default:
		return ViewAll
	}
}

// viewAllowed ограничивает представления по ролям
func viewAllowed(view string, role models.Role) bool {
	switch view {
	case ViewJunior:
		return role == models.RoleJunior
	case ViewMy, ViewFree:
		return role != models.RoleJunior && role != models.RoleHR
	case ViewAll:
		return role == models.RoleCFO || role == models.RoleManager || role == models.RoleAdmin || role == models.RoleTeamLead
	}
	return false
}

// keepEligible применяет фильтр пакета eligibility к моделям, сохраняя порядок
func keepEligible(cards []models.Card, filter func([]eligibility.Card) []eligibility.Card) []models.Card {
	list := make([]eligibility.Card, 0, len(cards))
	byID := make(map[uint]models.Card, len(cards))
	for _, c := range cards {
		list = append(list, ToEligibilityCard(c))
		byID[c.ID] = c
	}
	kept := filter(list)
	out := make([]models.Card, 0, len(kept))
	for _, c := range kept {
		out = append(out, byID[c.ID])
	}
	return out
}

// ToEligibilityCard приводит модель карты к типу фильтра.
// Устаревшая привязка assigned_casino_id учитывается только здесь, через eligibility.AdaptLegacy.
func ToEligibilityCard(c models.Card) eligibility.Card {
	list := make([]eligibility.Assignment, 0, len(c.Assignments))
	for _, a := range c.Assignments {
		list = append(list, eligibility.Assignment{
			CasinoID:   a.CasinoID,
			Type:       string(a.Type),
			Status:     string(a.Status),
			HasDeposit: a.HasDeposit,
		})
	}
	return eligibility.Card{
		ID:          c.ID,
		BIN:         c.BIN,
		Status:      string(c.Status),
		AssignedTo:  c.AssignedTo,
		Assignments: eligibility.AdaptLegacy(c.AssignedCasinoID, list),
	}
}

// ToEligibilityCasino приводит модель казино к типу фильтра
func ToEligibilityCasino(c models.Casino) eligibility.Casino {
	return eligibility.Casino{ID: c.ID, AllowedBins: []string(c.AllowedBins)}
}

func (s *CardService) loadCasino(db *gorm.DB, id uint) (*eligibility.Casino, error) {
	var casino models.Casino
	if err := db.First(&casino, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("казино", id)
		}
		return nil, err
	}
	c := ToEligibilityCasino(casino)
	return &c, nil
}

// openWorks возвращает тестовые циклы по казино для указанных карт
func (s *CardService) openWorks(cards []models.Card, casinoID uint) ([]eligibility.Work, error) {
	if len(cards) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return loadWorks(s.db, ids, casinoID)
}

func loadWorks(db *gorm.DB, cardIDs []uint, casinoID uint) ([]eligibility.Work, error) {
	var rows []models.TestWork
	if err := db.Select("card_id", "casino_id", "status").
		Where("card_id IN ? AND casino_id = ?", cardIDs, casinoID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("не удалось получить тестовые циклы: %w", err)
	}
	out := make([]eligibility.Work, 0, len(rows))
	for _, w := range rows {
		out = append(out, eligibility.Work{CardID: w.CardID, CasinoID: w.CasinoID, Status: string(w.Status)})
	}
	return out, nil
}

// GetCard возвращает карту по ID
func (s *CardService) GetCard(id uint) (*models.Card, error) {
	var card models.Card
	if err := s.db.Preload("Account.Bank").Preload("Assignments.Casino").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("карта", id)
		}
		return nil, err
	}
	return &card, nil
}

// Reveal расшифровывает данные карты
func (s *CardService) Reveal(id uint, actor Actor) (*RevealedCard, error) {
	card, err := s.GetCard(id)
	if err != nil {
		return nil, err
	}
	if !canReveal(card, actor) {
		return nil, forbidden("нет доступа к данным карты #%d", id)
	}

	pan, err := s.vault.Open(card.PANEncrypted)
	if err != nil {
		if errors.Is(err, utils.ErrVaultLocked) {
			return nil, conflict("расшифровка недоступна: %v", err)
		}
		return nil, errors.New("не удалось расшифровать номер карты")
	}
	secret, err := s.vault.Open(card.SecretEncrypted)
	if err != nil {
		return nil, errors.New("не удалось расшифровать данные карты")
	}
	expiration, cvv, _ := strings.Cut(secret, "|")

	utils.Log.WithField("card_id", id).WithField("user_id", actor.ID).Info("card revealed")
	return &RevealedCard{ID: card.ID, PAN: pan, Expiration: expiration, CVV: cvv, Holder: card.Holder}, nil
}

// canReveal: руководство видит все карты, Junior только выданные ему, Tester только свои привязки
func canReveal(card *models.Card, actor Actor) bool {
	switch actor.Role {
	case models.RoleCFO, models.RoleManager, models.RoleAdmin:
		return true
	case models.RoleJunior:
		return card.AssignedTo != nil && *card.AssignedTo == actor.ID
	case models.RoleTester, models.RoleTeamLead:
		for _, a := range card.Assignments {
			if a.AssignedBy == actor.ID && a.Status == models.AssignmentActive {
				return true
			}
		}
	}
	return false
}

// UpdateStatus меняет статус карты
func (s *CardService) UpdateStatus(id uint, status models.CardStatus) (*CardResponseDTO, error) {
	switch status {
	case models.CardStatusActive, models.CardStatusBlocked, models.CardStatusInactive:
	default:
		return nil, invalid("неизвестный статус карты %q", status)
	}
	card, err := s.GetCard(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(card).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("не удалось обновить статус: %w", err)
	}
	card.Status = status
	if status == models.CardStatusBlocked {
		s.metrics.RecordCardOperation("block", 1)
	}
	dto := s.cardToResponseDTO(card, true)
	return &dto, nil
}

// AssignJunior выдает карту сотруднику Junior или забирает ее (juniorID == nil).
// Привязки к казино при этом не меняются.
func (s *CardService) AssignJunior(ctx context.Context, id uint, juniorID *uint, actor Actor) (*CardResponseDTO, error) {
	card, err := s.GetCard(id)
	if err != nil {
		return nil, err
	}

	if juniorID != nil {
		var junior models.User
		if err := s.db.First(&junior, *juniorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("пользователь", *juniorID)
			}
			return nil, err
		}
		if junior.Role != models.RoleJunior {
			return nil, invalid("пользователь #%d не является Junior", junior.ID)
		}
		// TeamLead выдает карты только своей команде
		if actor.Role == models.RoleTeamLead && (junior.TeamLead == nil || *junior.TeamLead != actor.ID) {
			return nil, forbidden("Junior #%d не входит в вашу команду", junior.ID)
		}
		if card.Status != models.CardStatusActive {
			return nil, conflict("карта #%d не активна", card.ID)
		}
	}

	if err := s.db.Model(card).Update("assigned_to", juniorID).Error; err != nil {
		return nil, fmt.Errorf("не удалось выдать карту: %w", err)
	}
	card.AssignedTo = juniorID

	if juniorID != nil {
		s.notifier.Publish(ctx, Event{
			Kind:       EventCardAssignedJunior,
			Title:      "Вам выдана карта " + card.MaskedPAN,
			Body:       "Карта банка " + bankName(card),
			Recipients: []Recipient{{UserID: *juniorID}},
		})
	}

	dto := s.cardToResponseDTO(card, true)
	return &dto, nil
}

// AssignCorrect привязывает пакет карт к казино одной транзакцией.
// Каждая карта повторно проверяется правилом eligibility: неподходящие карты возвращаются в Rejected.
func (s *CardService) AssignCorrect(ctx context.Context, req AssignCorrectRequest, actor Actor) (*AssignCorrectResult, error) {
	if req.AssignmentType == "" {
		req.AssignmentType = models.AssignmentTesting
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	casino, err := s.loadCasino(tx, req.CasinoID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Блокируем строки карт, чтобы параллельный запрос не привязал их повторно
	var cards []models.Card
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Assignments").
		Where("id IN ?", req.CardIDs).
		Find(&cards).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("не удалось получить карты: %w", err)
	}

	list := make([]eligibility.Card, 0, len(cards))
	for _, c := range cards {
		list = append(list, ToEligibilityCard(c))
	}
	plan := eligibility.PlanAssignment(list, *casino, req.CardIDs)

	if len(plan.Accepted) > 0 {
		rows := make([]models.CasinoAssignment, 0, len(plan.Accepted))
		for _, id := range plan.Accepted {
			rows = append(rows, models.CasinoAssignment{
				CardID:     id,
				CasinoID:   req.CasinoID,
				Type:       req.AssignmentType,
				Status:     models.AssignmentActive,
				AssignedBy: actor.ID,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("не удалось сохранить привязки: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	s.metrics.RecordCardOperation("assign", int64(len(plan.Accepted)))
	s.metrics.RecordCardOperation("reject", int64(len(plan.Rejected)))

	result := BuildAssignResult(plan)
	if result.AssignedCount > 0 {
		s.notifier.Publish(ctx, Event{
			Kind:  EventCardsAssigned,
			Title: fmt.Sprintf("Привязано карт: %d", result.AssignedCount),
			Body:  fmt.Sprintf("Казино #%d, тип %s. %s", req.CasinoID, req.AssignmentType, result.Message),
			Roles: []models.Role{models.RoleManager},
		})
	}
	return &result, nil
}

// BuildAssignResult формирует ответ массовой привязки
func BuildAssignResult(plan eligibility.Plan) AssignCorrectResult {
	result := AssignCorrectResult{
		AssignedCount:  len(plan.Accepted),
		TotalRequested: plan.TotalRequested,
		AssignedIDs:    plan.Accepted,
		Rejected:       plan.Rejected,
	}
	if result.AssignedIDs == nil {
		result.AssignedIDs = []uint{}
	}
	if result.Rejected == nil {
		result.Rejected = []eligibility.Rejection{}
	}
	switch {
	case plan.Partial():
		result.Message = fmt.Sprintf("Assigned %d of %d cards", result.AssignedCount, result.TotalRequested)
	case result.AssignedCount == 0 && result.TotalRequested > 0:
		result.Message = fmt.Sprintf("No cards assigned: all %d were rejected", result.TotalRequested)
	default:
		result.Message = fmt.Sprintf("Assigned %d cards", result.AssignedCount)
	}
	return result
}

// UnassignFromCasino снимает привязку карты к казино. Привязку с депозитом снять нельзя.
func (s *CardService) UnassignFromCasino(ctx context.Context, req UnassignRequest, actor Actor) (*CardResponseDTO, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	var card models.Card
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, req.CardID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("карта", req.CardID)
		}
		return nil, err
	}

	var assignment models.CasinoAssignment
	err := tx.Where("card_id = ? AND casino_id = ? AND status = ?", req.CardID, req.CasinoID, models.AssignmentActive).
		First(&assignment).Error
	switch {
	case err == nil:
		if assignment.HasDeposit {
			tx.Rollback()
			return nil, conflict("по привязке карты #%d к казино #%d есть депозит", req.CardID, req.CasinoID)
		}
		if actor.Role == models.RoleTester && assignment.AssignedBy != actor.ID {
			tx.Rollback()
			return nil, forbidden("привязка создана другим пользователем")
		}
		if err := tx.Model(&assignment).Update("status", models.AssignmentCancelled).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("не удалось снять привязку: %w", err)
		}
		// Устаревшее поле к тому же казино снимается вместе с привязкой
		if card.AssignedCasinoID != nil && *card.AssignedCasinoID == req.CasinoID {
			if err := tx.Model(&card).Update("assigned_casino_id", nil).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("не удалось снять привязку: %w", err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Устаревшая одиночная привязка снимается очисткой поля
		if card.AssignedCasinoID == nil || *card.AssignedCasinoID != req.CasinoID {
			tx.Rollback()
			return nil, fmt.Errorf("%w: привязка карты #%d к казино #%d", ErrNotFound, req.CardID, req.CasinoID)
		}
		if err := tx.Model(&card).Update("assigned_casino_id", nil).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("не удалось снять привязку: %w", err)
		}
	default:
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}
	s.metrics.RecordCardOperation("unassign", 1)

	updated, err := s.GetCard(req.CardID)
	if err != nil {
		return nil, err
	}
	dto := s.cardToResponseDTO(updated, true)
	return &dto, nil
}

func bankName(card *models.Card) string {
	if card.Account.Bank != nil {
		return card.Account.Bank.Name
	}
	return ""
}

// cardToResponseDTO собирает ответ. withBalance == false скрывает баланс счета.
func (s *CardService) cardToResponseDTO(card *models.Card, withBalance bool) CardResponseDTO {
	dto := CardResponseDTO{
		ID:          card.ID,
		MaskedPAN:   card.MaskedPAN,
		BIN:         card.BIN,
		Holder:      card.Holder,
		Status:      card.Status,
		AccountID:   card.AccountID,
		BankName:    bankName(card),
		AssignedTo:  card.AssignedTo,
		Assignments: assignmentsToDTO(card),
		CreatedAt:   card.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if withBalance && card.Account.ID != 0 {
		usd := s.rates.USDOrRaw(card.Account.Balance, card.Account.Currency)
		view := presentation.ViewBalance(card.Account.Balance, card.Account.Currency, usd, s.threshold)
		dto.Balance = &view
	}
	return dto
}

func assignmentsToDTO(card *models.Card) []AssignmentDTO {
	names := make(map[uint]string, len(card.Assignments))
	by := make(map[uint]uint, len(card.Assignments))
	for _, a := range card.Assignments {
		if a.Casino != nil {
			names[a.CasinoID] = a.Casino.Name
		}
		if a.Status == models.AssignmentActive {
			by[a.CasinoID] = a.AssignedBy
		}
	}

	adapted := ToEligibilityCard(*card).Assignments
	out := make([]AssignmentDTO, 0, len(adapted))
	for _, a := range adapted {
		if a.Status != eligibility.AssignmentActive {
			continue
		}
		out = append(out, AssignmentDTO{
			CasinoID:   a.CasinoID,
			CasinoName: names[a.CasinoID],
			Type:       a.Type,
			Status:     a.Status,
			HasDeposit: a.HasDeposit,
			AssignedBy: by[a.CasinoID],
			Legacy:     a.Legacy,
		})
	}
	return out
}
