package eligibility

import "sort"

// Predicate решает, можно ли выбрать строку с картой
type Predicate func(Card) bool

// ForCasino возвращает предикат вкладки "свободные карты"
func ForCasino(casino *Casino) Predicate {
	return func(c Card) bool { return IsEligible(c, casino) }
}

// ForWork возвращает предикат вкладки "мои карты" для казино
func ForWork(casinoID uint, works []Work) Predicate {
	return func(c Card) bool { return CanStartWork(c, casinoID, works) }
}

// Selection набор выбранных карт. И одиночный выбор, и "выбрать все"
// проверяют один и тот же предикат.
type Selection struct {
	tab      string
	selected map[uint]struct{}
}

// NewSelection создает пустой выбор для вкладки
func NewSelection(tab string) *Selection {
	return &Selection{tab: tab, selected: make(map[uint]struct{})}
}

// Tab возвращает текущую вкладку
func (s *Selection) Tab() string {
	return s.tab
}

// Selectable сообщает, доступен ли чекбокс строки
func (s *Selection) Selectable(card Card, allow Predicate) bool {
	return allow(card)
}

// Toggle переключает карту. Недоступную строку выбрать нельзя; снять выбор можно всегда.
func (s *Selection) Toggle(card Card, allow Predicate) bool {
	if _, ok := s.selected[card.ID]; ok {
		delete(s.selected, card.ID)
		return true
	}
	if !allow(card) {
		return false
	}
	s.selected[card.ID] = struct{}{}
	return true
}

// SelectAllMatching выбирает все карты, проходящие предикат, и возвращает количество добавленных
func (s *Selection) SelectAllMatching(cards []Card, allow Predicate) int {
	added := 0
	for _, c := range cards {
		if !allow(c) {
			continue
		}
		if _, ok := s.selected[c.ID]; ok {
			continue
		}
		s.selected[c.ID] = struct{}{}
		added++
	}
	return added
}

// Contains сообщает, выбрана ли карта
func (s *Selection) Contains(id uint) bool {
	_, ok := s.selected[id]
	return ok
}

// Len возвращает количество выбранных карт
func (s *Selection) Len() int {
	return len(s.selected)
}

// IDs возвращает выбранные идентификаторы по возрастанию
func (s *Selection) IDs() []uint {
	ids := make([]uint, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clear очищает выбор (после успешной массовой привязки)
func (s *Selection) Clear() {
	s.selected = make(map[uint]struct{})
}

// SwitchTab меняет вкладку и очищает выбор
func (s *Selection) SwitchTab(tab string) {
	s.tab = tab
	s.Clear()
}
