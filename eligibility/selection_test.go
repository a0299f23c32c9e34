package eligibility

import (
	"reflect"
	"testing"
	"testing/quick"
)

func TestSelectionToggle(t *testing.T) {
	casino := &Casino{ID: 1, AllowedBins: []string{"123456"}}
	allow := ForCasino(casino)
	sel := NewSelection("free")

	if !sel.Toggle(activeCard(1, "123456"), allow) || !sel.Contains(1) {
		t.Fatal("eligible card must be selectable")
	}
	if sel.Toggle(activeCard(2, "000000"), allow) || sel.Contains(2) {
		t.Fatal("ineligible card must not be selectable")
	}
	if !sel.Toggle(activeCard(1, "123456"), allow) || sel.Contains(1) {
		t.Fatal("second toggle must unselect")
	}
}

func TestSelectionClearedOnTabSwitch(t *testing.T) {
	sel := NewSelection("free")
	sel.SelectAllMatching([]Card{activeCard(1, "1"), activeCard(2, "2")}, ForCasino(nil))
	if sel.Len() != 2 {
		t.Fatalf("expected 2 selected, got %d", sel.Len())
	}

	sel.SwitchTab("my")
	if sel.Len() != 0 || sel.Tab() != "my" {
		t.Errorf("tab switch must clear selection, got %v on %s", sel.IDs(), sel.Tab())
	}
}

func TestSelectAllMatchingIDs(t *testing.T) {
	cards := []Card{activeCard(3, "123456"), activeCard(1, "123456"), {ID: 2, BIN: "123456", Status: "blocked"}}
	sel := NewSelection("free")
	if added := sel.SelectAllMatching(cards, ForCasino(&Casino{ID: 9})); added != 2 {
		t.Errorf("added: got %d want 2", added)
	}
	if added := sel.SelectAllMatching(cards, ForCasino(&Casino{ID: 9})); added != 0 {
		t.Errorf("repeated select all must add nothing, got %d", added)
	}
	if !reflect.DeepEqual(sel.IDs(), []uint{1, 3}) {
		t.Errorf("got %v", sel.IDs())
	}
}

// "Выбрать все" никогда не выбирает строку, чекбокс которой недоступен
func TestSelectAllNeverSelectsDisabledRow(t *testing.T) {
	property := func(s scenario) bool {
		allow := ForCasino(&s.Casino)
		sel := NewSelection("free")
		sel.SelectAllMatching(s.Cards, allow)
		for _, c := range s.Cards {
			if sel.Contains(c.ID) != sel.Selectable(c, allow) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 300}); err != nil {
		t.Error(err)
	}
}

func TestSelectAllForWork(t *testing.T) {
	c1 := activeCard(1, "123456")
	c1.Assignments = []Assignment{{CasinoID: 4, Status: AssignmentActive}}
	c2 := activeCard(2, "123456")
	c2.Assignments = []Assignment{{CasinoID: 4, Status: AssignmentActive}}
	works := []Work{{CardID: 2, CasinoID: 4, Status: "active"}}

	sel := NewSelection("my")
	sel.SelectAllMatching([]Card{c1, c2}, ForWork(4, works))
	if !reflect.DeepEqual(sel.IDs(), []uint{1}) {
		t.Errorf("got %v want [1]", sel.IDs())
	}
}

func TestPlanAssignment(t *testing.T) {
	linked := activeCard(2, "123456")
	linked.Assignments = []Assignment{{CasinoID: 5, Status: AssignmentActive}}
	cards := []Card{activeCard(1, "123456"), linked, activeCard(3, "000000"), activeCard(4, "123456")}
	casino := Casino{ID: 5, AllowedBins: []string{"123456"}}

	plan := PlanAssignment(cards, casino, []uint{4, 1, 2, 3, 1, 42})

	if !reflect.DeepEqual(plan.Accepted, []uint{4, 1}) {
		t.Errorf("accepted: got %v", plan.Accepted)
	}
	want := []Rejection{
		{CardID: 2, Reason: RejectIneligible},
		{CardID: 3, Reason: RejectIneligible},
		{CardID: 1, Reason: RejectDuplicateID},
		{CardID: 42, Reason: RejectUnknown},
	}
	if !reflect.DeepEqual(plan.Rejected, want) {
		t.Errorf("rejected: got %v", plan.Rejected)
	}
	if plan.TotalRequested != 6 || !plan.Partial() {
		t.Errorf("unexpected totals: %+v", plan)
	}
}
