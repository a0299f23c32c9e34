package services

import (
	"backoffice/eligibility"
	"backoffice/models"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

func uintPtr(v uint) *uint { return &v }

func TestCanDelegate(t *testing.T) {
	cases := []struct {
		from, to models.Role
		self     bool
		want     bool
	}{
		{models.RoleCFO, models.RoleManager, false, true},
		{models.RoleCFO, models.RoleJunior, false, true},
		{models.RoleManager, models.RoleTeamLead, false, true},
		{models.RoleManager, models.RoleCFO, false, false},
		{models.RoleTeamLead, models.RoleJunior, false, true},
		{models.RoleTeamLead, models.RoleTeamLead, false, false},
		{models.RoleJunior, models.RoleJunior, false, false},
		{models.RoleJunior, models.RoleJunior, true, true},
		{models.RoleAdmin, models.RoleCFO, false, true},
		{models.RoleHR, models.RoleJunior, false, false},
		{models.RoleHR, models.RoleHR, true, true},
		{models.RoleTester, models.RoleJunior, false, false},
		{models.RoleCFO, models.RoleHR, false, false},
	}
	for _, c := range cases {
		if got := CanDelegate(c.from, c.to, c.self); got != c.want {
			t.Errorf("CanDelegate(%s, %s, self=%v) = %v, want %v", c.from, c.to, c.self, got, c.want)
		}
	}
}

const dailyXML = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="18.10.2026" name="Foreign Currency Market">
  <Valute ID="R01235"><NumCode>840</NumCode><CharCode>USD</CharCode><Nominal>1</Nominal><Name>Dollar</Name><Value>80,0000</Value></Valute>
  <Valute ID="R01239"><NumCode>978</NumCode><CharCode>EUR</CharCode><Nominal>1</Nominal><Name>Euro</Name><Value>88,0000</Value></Valute>
  <Valute ID="R01335"><NumCode>398</NumCode><CharCode>KZT</CharCode><Nominal>100</Nominal><Name>Tenge</Name><Value>16,0000</Value></Valute>
</ValCurs>`

func TestParseDailyRates(t *testing.T) {
	rates, err := ParseDailyRates(strings.NewReader(dailyXML))
	if err != nil {
		t.Fatalf("ParseDailyRates: %v", err)
	}
	if !rates["USD"].Equal(decimal.NewFromInt(80)) {
		t.Errorf("USD = %s", rates["USD"])
	}
	if !rates["KZT"].Equal(decimal.RequireFromString("0.16")) {
		t.Errorf("KZT must be divided by nominal, got %s", rates["KZT"])
	}
	if !rates["RUB"].Equal(decimal.NewFromInt(1)) {
		t.Errorf("RUB base rate missing")
	}
}

func TestParseDailyRatesRejectsBrokenDocuments(t *testing.T) {
	for _, doc := range []string{
		`<root/>`,
		`<ValCurs><Valute><CharCode>EUR</CharCode><Value>1,0</Value></Valute></ValCurs>`,
		`<ValCurs><Valute><CharCode>USD</CharCode><Value>abc</Value></Valute></ValCurs>`,
	} {
		if _, err := ParseDailyRates(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestToUSD(t *testing.T) {
	rs := NewRateService("", nil)
	rates, err := ParseDailyRates(strings.NewReader(dailyXML))
	if err != nil {
		t.Fatal(err)
	}
	rs.SetRates(rates)

	got, err := rs.ToUSD(decimal.NewFromInt(100), "eur")
	if err != nil || !got.Equal(decimal.NewFromInt(110)) {
		t.Errorf("100 EUR = %s (%v), want 110", got, err)
	}
	got, err = rs.ToUSD(decimal.NewFromInt(5), "USD")
	if err != nil || !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("USD must pass through, got %s", got)
	}
	if _, err := rs.ToUSD(decimal.NewFromInt(1), "XYZ"); err == nil {
		t.Error("unknown currency must fail")
	}
	if raw := rs.USDOrRaw(decimal.NewFromInt(7), "XYZ"); !raw.Equal(decimal.NewFromInt(7)) {
		t.Errorf("fallback must return raw amount, got %s", raw)
	}
}

func TestInitialWithdrawalStatus(t *testing.T) {
	limit := decimal.NewFromInt(100)
	if s := InitialWithdrawalStatus(decimal.NewFromInt(100), limit); s != models.WithdrawalWaiting {
		t.Errorf("amount equal to limit must wait, got %s", s)
	}
	if s := InitialWithdrawalStatus(decimal.NewFromInt(101), limit); s != models.WithdrawalNew {
		t.Errorf("amount above limit must be new, got %s", s)
	}
	if s := InitialWithdrawalStatus(decimal.NewFromInt(1), decimal.Zero); s != models.WithdrawalNew {
		t.Errorf("no limit means new, got %s", s)
	}
}

func TestOverdueWithdrawals(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	casino := &models.Casino{Name: "Lucky", WithdrawalTimeValue: 2, WithdrawalTimeUnit: models.UnitHours}
	noPolicy := &models.Casino{Name: "Open"}
	work := &models.TestWork{Casino: casino}

	list := []models.WorkWithdrawal{
		{ID: 1, Status: models.WithdrawalWaiting, UpdatedAt: now.Add(-3 * time.Hour), TestWork: work},
		{ID: 2, Status: models.WithdrawalWaiting, UpdatedAt: now.Add(-1 * time.Hour), TestWork: work},
		{ID: 3, Status: models.WithdrawalWaiting, UpdatedAt: now.Add(-3 * time.Hour), Overdue: true, TestWork: work},
		{ID: 4, Status: models.WithdrawalNew, UpdatedAt: now.Add(-30 * time.Hour), TestWork: work},
		{ID: 5, Status: models.WithdrawalWaiting, UpdatedAt: now.Add(-300 * time.Hour), TestWork: &models.TestWork{Casino: noPolicy}},
	}
	got := OverdueWithdrawals(list, now)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only withdrawal 1, got %+v", got)
	}
}

func TestApplyBalanceChange(t *testing.T) {
	cur := decimal.NewFromInt(50)

	next, err := ApplyBalanceChange(cur, BalanceChangeRequest{Mode: BalanceDelta, Amount: decimal.NewFromInt(-20)})
	if err != nil || !next.Equal(decimal.NewFromInt(30)) {
		t.Errorf("delta: got %s, %v", next, err)
	}
	next, err = ApplyBalanceChange(cur, BalanceChangeRequest{Mode: BalanceSet, Amount: decimal.RequireFromString("9.999")})
	if err != nil || !next.Equal(decimal.NewFromInt(10)) {
		t.Errorf("set: got %s, %v", next, err)
	}
	if _, err := ApplyBalanceChange(cur, BalanceChangeRequest{Mode: BalanceDelta, Amount: decimal.NewFromInt(-51)}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative result must be a validation error, got %v", err)
	}
	if _, err := ApplyBalanceChange(cur, BalanceChangeRequest{Mode: BalanceDelta}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero delta must be rejected, got %v", err)
	}
}

func TestNormalizeBins(t *testing.T) {
	got, err := NormalizeBins([]string{"411111", " 522222", "411111"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "411111" || got[1] != "522222" {
		t.Errorf("unexpected bins %v", got)
	}
	for _, bad := range []string{"41111", "4111111", "41a111"} {
		if _, err := NormalizeBins([]string{bad}); !errors.Is(err, ErrValidation) {
			t.Errorf("%q must be rejected", bad)
		}
	}
}

func TestBuildAssignResult(t *testing.T) {
	plan := eligibility.Plan{
		Accepted:       []uint{1, 2, 3},
		Rejected:       []eligibility.Rejection{{CardID: 4, Reason: eligibility.RejectIneligible}, {CardID: 5, Reason: eligibility.RejectUnknown}},
		TotalRequested: 5,
	}
	r := BuildAssignResult(plan)
	if r.AssignedCount != 3 || r.TotalRequested != 5 || len(r.Rejected) != 2 {
		t.Errorf("unexpected result %+v", r)
	}
	if r.Message != "Assigned 3 of 5 cards" {
		t.Errorf("unexpected message %q", r.Message)
	}

	empty := BuildAssignResult(eligibility.Plan{TotalRequested: 0})
	if empty.AssignedIDs == nil || empty.Rejected == nil {
		t.Error("empty result must serialize lists as []")
	}
}

func TestUnknownWithdrawalStatus(t *testing.T) {
	err := unknownWithdrawalStatus("lost")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "new, waiting, received, blocked") {
		t.Errorf("message must list allowed statuses: %v", err)
	}
}

func workStatus(s models.WorkStatus) *models.WorkStatus { return &s }

func TestReopenBlocked(t *testing.T) {
	work := models.TestWork{ID: 1, CardID: 10, CasinoID: 3, Status: models.WorkCompleted}
	openOther := []eligibility.Work{{CardID: 10, CasinoID: 3, Status: string(models.WorkPending)}}
	closedOther := []eligibility.Work{{CardID: 10, CasinoID: 3, Status: string(models.WorkFailed)}}
	otherPair := []eligibility.Work{
		{CardID: 10, CasinoID: 4, Status: string(models.WorkActive)},
		{CardID: 11, CasinoID: 3, Status: string(models.WorkActive)},
	}

	cases := []struct {
		name   string
		next   *models.WorkStatus
		others []eligibility.Work
		want   bool
	}{
		{"no status change", nil, openOther, false},
		{"reopen while another cycle is open", workStatus(models.WorkPending), openOther, true},
		{"move to in_progress while another cycle is open", workStatus(models.WorkInProgress), openOther, true},
		{"reopen after other cycles closed", workStatus(models.WorkActive), closedOther, false},
		{"open cycles of other pairs", workStatus(models.WorkPending), otherPair, false},
		{"close while another cycle is open", workStatus(models.WorkCancelled), openOther, false},
	}
	for _, c := range cases {
		if got := reopenBlocked(work, c.next, c.others); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestOwnsAssignment(t *testing.T) {
	assignments := []models.CasinoAssignment{
		{CardID: 1, CasinoID: 3, Status: models.AssignmentActive, AssignedBy: 7},
		{CardID: 1, CasinoID: 4, Status: models.AssignmentCancelled, AssignedBy: 7},
		{CardID: 1, CasinoID: 5, Status: models.AssignmentActive, AssignedBy: 8},
	}
	cases := []struct {
		name     string
		casinoID uint
		userID   uint
		want     bool
	}{
		{"own active assignment", 3, 7, true},
		{"own cancelled assignment", 4, 7, false},
		{"assignment of another user", 5, 7, false},
		{"no assignment to casino", 6, 7, false},
		{"other user owns it", 5, 8, true},
	}
	for _, c := range cases {
		if got := ownsAssignment(assignments, c.casinoID, c.userID); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
	if ownsAssignment(nil, 3, 7) {
		t.Error("card without assignments is not owned")
	}
}

func TestKeepEligible(t *testing.T) {
	newCard := func(id uint, bin string, status models.CardStatus) models.Card {
		c := models.Card{BIN: bin, Status: status}
		c.ID = id
		return c
	}
	legacy := newCard(4, "411111", models.CardStatusActive)
	legacy.AssignedCasinoID = uintPtr(9)
	assigned := newCard(6, "411111", models.CardStatusActive)
	assigned.Assignments = []models.CasinoAssignment{{CardID: 6, CasinoID: 3, Status: models.AssignmentActive}}

	cards := []models.Card{
		newCard(8, "411111", models.CardStatusActive),
		newCard(2, "411111", models.CardStatusBlocked),
		legacy,
		newCard(5, "555555", models.CardStatusActive),
		assigned,
		newCard(1, "411111", models.CardStatusActive),
	}
	casino := &eligibility.Casino{ID: 3, AllowedBins: []string{"411111"}}

	got := keepEligible(cards, func(list []eligibility.Card) []eligibility.Card {
		return eligibility.FreeCards(list, casino)
	})
	var ids []uint
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if len(ids) != 2 || ids[0] != 8 || ids[1] != 1 {
		t.Errorf("expected [8 1] in request order, got %v", ids)
	}
	if got[0].BIN != "411111" {
		t.Error("models must be returned unchanged")
	}

	if empty := keepEligible(nil, func(l []eligibility.Card) []eligibility.Card { return l }); len(empty) != 0 {
		t.Errorf("expected empty result, got %v", empty)
	}
}

func TestToEligibilityCardAdaptsLegacyLink(t *testing.T) {
	card := models.Card{
		BIN:              "411111",
		Status:           models.CardStatusActive,
		AssignedCasinoID: uintPtr(7),
	}
	card.ID = 1
	ec := ToEligibilityCard(card)
	if !ec.ActiveAssignment(7) {
		t.Fatal("legacy link must become an active assignment")
	}
	if eligibility.IsFree(ec) {
		t.Error("card with legacy link must not be free")
	}

	dtos := assignmentsToDTO(&card)
	if len(dtos) != 1 || !dtos[0].Legacy || dtos[0].CasinoID != 7 {
		t.Errorf("legacy assignment must be visible in response, got %+v", dtos)
	}

	// Поле и активная привязка к одному казино
	card.Assignments = []models.CasinoAssignment{{CardID: 1, CasinoID: 7, Status: models.AssignmentActive, AssignedBy: 3}}
	ec = ToEligibilityCard(card)
	if eligibility.IsFree(ec) || eligibility.IsEligible(ec, &eligibility.Casino{ID: 8}) {
		t.Error("card with legacy link must not be free even when the link duplicates an assignment")
	}
	dtos = assignmentsToDTO(&card)
	if len(dtos) != 1 || !dtos[0].Legacy || dtos[0].AssignedBy != 3 {
		t.Errorf("duplicate legacy link must be shown once, got %+v", dtos)
	}
}

func TestCanReveal(t *testing.T) {
	card := &models.Card{
		AssignedTo: uintPtr(10),
		Assignments: []models.CasinoAssignment{
			{CasinoID: 1, Status: models.AssignmentActive, AssignedBy: 20},
		},
	}
	cases := []struct {
		actor Actor
		want  bool
	}{
		{Actor{ID: 1, Role: models.RoleCFO}, true},
		{Actor{ID: 10, Role: models.RoleJunior}, true},
		{Actor{ID: 11, Role: models.RoleJunior}, false},
		{Actor{ID: 20, Role: models.RoleTester}, true},
		{Actor{ID: 21, Role: models.RoleTester}, false},
		{Actor{ID: 30, Role: models.RoleHR}, false},
	}
	for _, c := range cases {
		if got := canReveal(card, c.actor); got != c.want {
			t.Errorf("canReveal(%+v) = %v, want %v", c.actor, got, c.want)
		}
	}
}

func TestViewAllowed(t *testing.T) {
	if !viewAllowed(ViewJunior, models.RoleJunior) || viewAllowed(ViewAll, models.RoleJunior) {
		t.Error("junior may only use the junior view")
	}
	if !viewAllowed(ViewFree, models.RoleTester) || !viewAllowed(ViewMy, models.RoleTester) {
		t.Error("tester must see free and my views")
	}
	if viewAllowed(ViewFree, models.RoleHR) {
		t.Error("hr has no card views")
	}
	if defaultView(models.RoleTester) != ViewMy || defaultView(models.RoleJunior) != ViewJunior {
		t.Error("unexpected default views")
	}
}

type stubDirectory struct {
	byRole map[models.Role][]Recipient
}

func (d stubDirectory) Recipients(roles ...models.Role) ([]Recipient, error) {
	var out []Recipient
	for _, r := range roles {
		out = append(out, d.byRole[r]...)
	}
	return out, nil
}

func (d stubDirectory) RecipientByID(id uint) (Recipient, error) {
	return Recipient{UserID: id, Email: "user@example.com"}, nil
}

func TestNotifierPublish(t *testing.T) {
	dir := stubDirectory{byRole: map[models.Role][]Recipient{
		models.RoleManager: {{UserID: 2, Email: "m@example.com"}, {UserID: 3, Email: "m2@example.com"}},
	}}
	n := NewNotifier(dir)

	var order []string
	var got Event
	n.Subscribe(SubscriberFunc{ID: "first", Fn: func(_ context.Context, e Event) error {
		order = append(order, "first")
		got = e
		return errors.New("boom")
	}})
	unsubscribe := n.Subscribe(SubscriberFunc{ID: "second", Fn: func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	}})

	ev := n.Publish(context.Background(), Event{
		Kind:       EventWithdrawalOverdue,
		Recipients: []Recipient{{UserID: 2}, {UserID: 9}},
		Roles:      []models.Role{models.RoleManager},
	})

	if ev.ID == "" || ev.CreatedAt.IsZero() {
		t.Error("publish must stamp id and time")
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("subscriber error must not stop delivery, order %v", order)
	}
	if len(got.Recipients) != 3 {
		t.Fatalf("expected 3 unique recipients, got %+v", got.Recipients)
	}
	if got.Recipients[0].Email != "user@example.com" {
		t.Errorf("missing email must be looked up, got %+v", got.Recipients[0])
	}

	unsubscribe()
	order = nil
	n.Publish(context.Background(), Event{Kind: EventTaskStatus})
	if strings.Join(order, ",") != "first" {
		t.Errorf("unsubscribed subscriber still called: %v", order)
	}
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestEmailSubscriber(t *testing.T) {
	sender := &fakeSender{}
	svc := NewEmailServiceWithSender(sender, "noreply@example.com")

	err := svc.Notify(context.Background(), Event{
		Title:      "Вывод просрочен",
		Body:       "<script>",
		Recipients: []Recipient{{UserID: 1, Email: "a@example.com"}, {UserID: 2}},
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	if to := sender.sent[0].GetHeader("To"); len(to) != 1 || to[0] != "a@example.com" {
		t.Errorf("unexpected recipient %v", to)
	}
	if body := renderEventBody(Event{Body: "<b>"}); strings.Contains(body, "<b>") {
		t.Error("event body must be escaped")
	}

	sender.err = errors.New("smtp down")
	if err := svc.Notify(context.Background(), Event{Recipients: []Recipient{{UserID: 1, Email: "a@example.com"}}}); err == nil {
		t.Error("send failure must be reported")
	}
}
