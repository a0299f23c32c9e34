// Package eligibility решает, какие карты можно привязать к казино или
// использовать для нового тестового цикла. Пакет не зависит от базы данных:
// сервисы приводят модели к типам этого пакета и применяют правила.
package eligibility

// Статусы, которые понимает фильтр. Значения совпадают с моделями.
const (
	CardActive       = "active"
	AssignmentActive = "active"
)

// Незавершенные статусы тестового цикла
var openWorkStatuses = map[string]bool{
	"pending":     true,
	"in_progress": true,
	"active":      true,
}

// Assignment привязка карты к казино
type Assignment struct {
	CasinoID   uint
	Type       string
	Status     string
	HasDeposit bool
	// Legacy отмечает привязку, восстановленную из assigned_casino_id
	Legacy bool
}

// Card представление карты для фильтра
type Card struct {
	ID          uint
	BIN         string
	Status      string
	AssignedTo  *uint
	Assignments []Assignment
}

// Casino представление казино для фильтра
type Casino struct {
	ID          uint
	AllowedBins []string
}

// Work тестовый цикл (карта + казино)
type Work struct {
	CardID   uint
	CasinoID uint
	Status   string
}

// AdaptLegacy переводит устаревшее поле assigned_casino_id в общий список привязок.
// Это единственное место, где читается устаревшее поле.
func AdaptLegacy(legacyCasinoID *uint, list []Assignment) []Assignment {
	out := make([]Assignment, 0, len(list)+1)
	out = append(out, list...)
	if legacyCasinoID == nil {
		return out
	}
	// Активная привязка к тому же казино не дублируется, но помечается:
	// карта с заполненным assigned_casino_id не считается свободной.
	for i, a := range out {
		if a.CasinoID == *legacyCasinoID && a.Status == AssignmentActive {
			out[i].Legacy = true
			return out
		}
	}
	return append(out, Assignment{
		CasinoID: *legacyCasinoID,
		Type:     "testing",
		Status:   AssignmentActive,
		Legacy:   true,
	})
}

// hasLegacyLink сообщает, есть ли у карты устаревшая одиночная привязка
func (c Card) hasLegacyLink() bool {
	for _, a := range c.Assignments {
		if a.Legacy {
			return true
		}
	}
	return false
}

// ActiveAssignment сообщает, привязана ли карта к казино активной привязкой
func (c Card) ActiveAssignment(casinoID uint) bool {
	for _, a := range c.Assignments {
		if a.CasinoID == casinoID && a.Status == AssignmentActive {
			return true
		}
	}
	return false
}

// IsFree проверяет базовое условие свободной карты:
// активна, не выдана Junior и не имеет устаревшей привязки к казино.
func IsFree(card Card) bool {
	return card.Status == CardActive && card.AssignedTo == nil && !card.hasLegacyLink()
}

// MatchesBIN проверяет BIN по списку казино. Пустой список пропускает все карты.
func MatchesBIN(bin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, b := range allowed {
		if b == bin {
			return true
		}
	}
	return false
}

// IsEligible проверяет, можно ли привязать карту к казино.
// casino == nil означает, что фильтр по казино не выбран.
// Баланс карты здесь не учитывается: это правило отображения, а не привязки.
func IsEligible(card Card, casino *Casino) bool {
	if !IsFree(card) {
		return false
	}
	if casino == nil {
		return true
	}
	if card.ActiveAssignment(casino.ID) {
		return false
	}
	return MatchesBIN(card.BIN, casino.AllowedBins)
}

// FreeCards возвращает подходящие карты в исходном порядке
func FreeCards(cards []Card, casino *Casino) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if IsEligible(c, casino) {
			out = append(out, c)
		}
	}
	return out
}

// IsOpenWork сообщает, что цикл еще не завершен
func IsOpenWork(status string) bool {
	return openWorkStatuses[status]
}

// CanStartWork проверяет, можно ли открыть новый тестовый цикл для пары карта+казино:
// у карты есть привязка к казино и нет незавершенного цикла по этой паре.
func CanStartWork(card Card, casinoID uint, works []Work) bool {
	if !card.ActiveAssignment(casinoID) {
		return false
	}
	return !HasOpenWork(card.ID, casinoID, works)
}

// HasOpenWork сообщает, есть ли незавершенный цикл по паре карта+казино
func HasOpenWork(cardID, casinoID uint, works []Work) bool {
	for _, w := range works {
		if w.CardID == cardID && w.CasinoID == casinoID && IsOpenWork(w.Status) {
			return true
		}
	}
	return false
}

// WorkCards возвращает карты, доступные для нового цикла по казино, в исходном порядке
func WorkCards(cards []Card, casinoID uint, works []Work) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if CanStartWork(c, casinoID, works) {
			out = append(out, c)
		}
	}
	return out
}
