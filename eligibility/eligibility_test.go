package eligibility

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"
)

func uintPtr(v uint) *uint { return &v }

func activeCard(id uint, bin string) Card {
	return Card{ID: id, BIN: bin, Status: CardActive}
}

func TestIsEligibleScenarios(t *testing.T) {
	casino := &Casino{ID: 7, AllowedBins: []string{"123456", "654321"}}

	// Карта с подходящим BIN без привязок
	if !IsEligible(activeCard(1, "123456"), casino) {
		t.Error("scenario 1: card must be eligible")
	}

	// Та же карта уже привязана к этому казино
	linked := activeCard(1, "123456")
	linked.Assignments = []Assignment{{CasinoID: 7, Status: AssignmentActive}}
	if IsEligible(linked, casino) {
		t.Error("scenario 2: duplicate assignment must be rejected")
	}

	// Пустой список BIN пропускает любую карту
	open := &Casino{ID: 8}
	if !IsEligible(activeCard(2, "999999"), open) {
		t.Error("scenario 3: empty allowed_bins must not filter")
	}

	// BIN не из списка
	if IsEligible(activeCard(3, "111111"), casino) {
		t.Error("card with foreign BIN must be rejected")
	}
}

func TestIsEligibleBaseRule(t *testing.T) {
	cases := []struct {
		name string
		card Card
		want bool
	}{
		{"active", activeCard(1, "123456"), true},
		{"blocked", Card{ID: 1, BIN: "123456", Status: "blocked"}, false},
		{"inactive", Card{ID: 1, BIN: "123456", Status: "inactive"}, false},
		{"junior owned", Card{ID: 1, BIN: "123456", Status: CardActive, AssignedTo: uintPtr(5)}, false},
		{"legacy link", Card{ID: 1, BIN: "123456", Status: CardActive, Assignments: AdaptLegacy(uintPtr(3), nil)}, false},
		{"other casino multi link", Card{ID: 1, BIN: "123456", Status: CardActive, Assignments: []Assignment{{CasinoID: 99, Status: AssignmentActive}}}, true},
		{"completed link same casino", Card{ID: 1, BIN: "123456", Status: CardActive, Assignments: []Assignment{{CasinoID: 7, Status: "completed"}}}, true},
	}
	casino := &Casino{ID: 7}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsEligible(c.card, casino); got != c.want {
				t.Errorf("got %v want %v", got, c.want)
			}
		})
	}
}

func TestIsEligibleWithoutCasinoFilter(t *testing.T) {
	card := activeCard(1, "000000")
	card.Assignments = []Assignment{{CasinoID: 7, Status: AssignmentActive}}
	if !IsEligible(card, nil) {
		t.Error("without casino filter only the base rule applies")
	}
}

func TestAdaptLegacy(t *testing.T) {
	if got := AdaptLegacy(nil, nil); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}

	list := []Assignment{{CasinoID: 3, Status: AssignmentActive}}
	got := AdaptLegacy(uintPtr(3), list)
	if len(got) != 1 || !got[0].Legacy {
		t.Errorf("legacy link must mark the matching active assignment: %v", got)
	}
	if list[0].Legacy {
		t.Error("input list must not be modified")
	}
	card := Card{ID: 1, BIN: "123456", Status: CardActive, Assignments: got}
	if IsFree(card) || IsEligible(card, nil) || IsEligible(card, &Casino{ID: 7}) {
		t.Error("card with legacy link to an already assigned casino must not be free")
	}

	got = AdaptLegacy(uintPtr(4), list)
	if len(got) != 2 || !got[1].Legacy || got[1].CasinoID != 4 {
		t.Errorf("legacy link must be appended: %v", got)
	}
	if len(list) != 1 {
		t.Error("input list must not be modified")
	}
}

func TestFreeCardsKeepsOrder(t *testing.T) {
	cards := []Card{
		activeCard(5, "123456"),
		{ID: 4, BIN: "123456", Status: "blocked"},
		activeCard(3, "123456"),
		activeCard(9, "000000"),
		activeCard(1, "123456"),
	}
	got := FreeCards(cards, &Casino{ID: 1, AllowedBins: []string{"123456"}})
	var ids []uint
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []uint{5, 3, 1}) {
		t.Errorf("got %v", ids)
	}
}

func TestWorkCards(t *testing.T) {
	linked := func(id uint) Card {
		c := activeCard(id, "123456")
		c.Assignments = []Assignment{{CasinoID: 7, Status: AssignmentActive}}
		return c
	}
	cards := []Card{linked(1), linked(2), linked(3), activeCard(4, "123456")}
	works := []Work{
		{CardID: 1, CasinoID: 7, Status: "in_progress"},
		{CardID: 2, CasinoID: 7, Status: "completed"},
		{CardID: 3, CasinoID: 8, Status: "pending"},
	}

	got := WorkCards(cards, 7, works)
	var ids []uint
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []uint{2, 3}) {
		t.Errorf("got %v want [2 3]", ids)
	}

	for _, status := range []string{"pending", "in_progress", "active"} {
		if CanStartWork(linked(1), 7, []Work{{CardID: 1, CasinoID: 7, Status: status}}) {
			t.Errorf("open work %q must block a new cycle", status)
		}
	}
}

// randomCard строит карту для проверки свойств
func randomCard(r *rand.Rand, id uint) Card {
	statuses := []string{"active", "active", "blocked", "inactive"}
	bins := []string{"123456", "654321", "411111", "555555"}
	c := Card{ID: id, BIN: bins[r.Intn(len(bins))], Status: statuses[r.Intn(len(statuses))]}
	if r.Intn(4) == 0 {
		c.AssignedTo = uintPtr(uint(r.Intn(3) + 1))
	}
	var legacy *uint
	if r.Intn(6) == 0 {
		legacy = uintPtr(uint(r.Intn(3) + 1))
	}
	var list []Assignment
	n := r.Intn(3)
	for i := 0; i < n; i++ {
		st := AssignmentActive
		if r.Intn(3) == 0 {
			st = "completed"
		}
		list = append(list, Assignment{CasinoID: uint(r.Intn(3) + 1), Status: st})
	}
	c.Assignments = AdaptLegacy(legacy, list)
	return c
}

type scenario struct {
	Cards  []Card
	Casino Casino
}

func (scenario) Generate(r *rand.Rand, size int) reflect.Value {
	n := r.Intn(size + 1)
	s := scenario{Casino: Casino{ID: uint(r.Intn(3) + 1)}}
	for i := 0; i < n; i++ {
		s.Cards = append(s.Cards, randomCard(r, uint(i+1)))
	}
	for _, b := range []string{"123456", "654321", "411111"} {
		if r.Intn(2) == 0 {
			s.Casino.AllowedBins = append(s.Casino.AllowedBins, b)
		}
	}
	return reflect.ValueOf(s)
}

func TestEligibilityProperties(t *testing.T) {
	property := func(s scenario) bool {
		for _, c := range s.Cards {
			ok := IsEligible(c, &s.Casino)
			if ok && (c.Status != CardActive || c.AssignedTo != nil || c.hasLegacyLink()) {
				return false
			}
			if ok && len(s.Casino.AllowedBins) > 0 && !MatchesBIN(c.BIN, s.Casino.AllowedBins) {
				return false
			}
			// Без списка BIN результат совпадает с проверкой без BIN
			if len(s.Casino.AllowedBins) == 0 {
				noBins := IsFree(c) && !c.ActiveAssignment(s.Casino.ID)
				if ok != noBins {
					return false
				}
			}
		}
		return true
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestLegacyLinkNeverFree(t *testing.T) {
	property := func(legacy uint8, casinos []uint8, completed []bool) bool {
		id := uint(legacy%4) + 1
		var list []Assignment
		for i, c := range casinos {
			st := AssignmentActive
			if i < len(completed) && completed[i] {
				st = "completed"
			}
			list = append(list, Assignment{CasinoID: uint(c%4) + 1, Status: st})
		}
		card := Card{ID: 1, BIN: "123456", Status: CardActive, Assignments: AdaptLegacy(&id, list)}
		return !IsFree(card) && !IsEligible(card, nil)
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestMatchesBIN(t *testing.T) {
	if !MatchesBIN("000000", nil) {
		t.Error("nil list must match")
	}
	if !MatchesBIN("123456", []string{"654321", "123456"}) {
		t.Error("listed BIN must match")
	}
	if MatchesBIN("12345", []string{"123456"}) {
		t.Error("prefix must not match")
	}
}

func ExampleFreeCards() {
	cards := []Card{
		{ID: 1, BIN: "123456", Status: "active"},
		{ID: 2, BIN: "999999", Status: "active"},
		{ID: 3, BIN: "123456", Status: "blocked"},
	}
	for _, c := range FreeCards(cards, &Casino{ID: 1, AllowedBins: []string{"123456"}}) {
		fmt.Println(c.ID)
	}
	// Output: 1
}
