package controllers

import (
	"backoffice/generators"
	"backoffice/middleware"
	"backoffice/models"
	"backoffice/services"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func TestWithMessage(t *testing.T) {
	body, err := withMessage(map[string]int{"assigned_count": 2}, "ok")
	if err != nil {
		t.Fatal(err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		t.Fatal(err)
	}
	if obj["message"] != "ok" || obj["assigned_count"].(float64) != 2 {
		t.Errorf("unexpected body %s", body)
	}

	body, err = withMessage([]int{1, 2}, "list")
	if err != nil {
		t.Fatal(err)
	}
	obj = nil
	if err := json.Unmarshal(body, &obj); err != nil {
		t.Fatal(err)
	}
	if obj["message"] != "list" || len(obj["data"].([]interface{})) != 2 {
		t.Errorf("non-object payload must be wrapped in data, got %s", body)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: карта #1", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: чужая карта", services.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: BIN", services.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: депозит", services.ErrConflict), http.StatusConflict},
		{services.ErrInvalidLogin, http.StatusUnauthorized},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("%v: status %d, want %d", c.err, got, c.want)
		}
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	respondError(rr, errors.New("pq: password authentication failed"))

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rr.Code != http.StatusInternalServerError || strings.Contains(body["error"], "pq") {
		t.Errorf("internal details leaked: %d %v", rr.Code, body)
	}
}

func TestValidateRequest(t *testing.T) {
	v := newValidator()

	err := validateRequest(v, services.AssignCorrectRequest{})
	if err == nil || !strings.Contains(err.Error(), "поле CardIDs обязательно") {
		t.Errorf("unexpected error: %v", err)
	}

	err = validateRequest(v, SignUpRequest{FirstName: "Ann", LastName: "Lee", Email: "a@b.co", Password: "password1"})
	if err == nil || !strings.Contains(err.Error(), "спецсимвол") {
		t.Errorf("weak password must be rejected: %v", err)
	}

	err = validateRequest(v, SignUpRequest{FirstName: "Ann", LastName: "Lee", Email: "a@b.co", Password: "Passw0rd!"})
	if err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	err = validateRequest(v, services.BalanceChangeRequest{Mode: "set", Amount: decimal.NewFromInt(5)})
	if err != nil {
		t.Errorf("decimal field must not break validation: %v", err)
	}
}

func TestPathID(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "17"})
	if id, err := pathID(req, "id"); err != nil || id != 17 {
		t.Errorf("got %d, %v", id, err)
	}
	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "0"})
	if _, err := pathID(req, "id"); err == nil {
		t.Error("zero id must be rejected")
	}
}

func toolsRouter() *mux.Router {
	router := mux.NewRouter()
	NewToolsController(generators.New(rand.NewPCG(1, 2))).RegisterRoutes(router)
	return router
}

func asActor(req *http.Request, role models.Role) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), services.Actor{ID: 7, Role: role}))
}

func TestGeneratePasswords(t *testing.T) {
	req := asActor(httptest.NewRequest(http.MethodGet, "/tools/generate?kind=password&count=20", nil), models.RoleJunior)
	rr := httptest.NewRecorder()
	toolsRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Kind  string   `json:"kind"`
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 20 {
		t.Fatalf("got %d items", len(body.Items))
	}
	for _, p := range body.Items {
		if len(p) < generators.MinPasswordLength || len(p) > generators.MaxPasswordLength {
			t.Errorf("password %q has wrong length", p)
		}
		if !hasNumber.MatchString(p) || !hasUpper.MatchString(p) || !hasLower.MatchString(p) || !hasSpecial.MatchString(p) {
			t.Errorf("password %q misses a character class", p)
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	cases := []struct {
		url  string
		want int
	}{
		{"/tools/generate?count=0", http.StatusBadRequest},
		{"/tools/generate?count=51", http.StatusBadRequest},
		{"/tools/generate?kind=ssn", http.StatusBadRequest},
		{"/tools/generate?kind=phone", http.StatusOK},
		{"/tools/generate?kind=identity&count=3", http.StatusOK},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		toolsRouter().ServeHTTP(rr, asActor(httptest.NewRequest(http.MethodGet, c.url, nil), models.RoleTeamLead))
		if rr.Code != c.want {
			t.Errorf("%s: status %d, want %d", c.url, rr.Code, c.want)
		}
	}

	rr := httptest.NewRecorder()
	toolsRouter().ServeHTTP(rr, asActor(httptest.NewRequest(http.MethodGet, "/tools/generate", nil), models.RoleHR))
	if rr.Code != http.StatusForbidden {
		t.Errorf("HR must not use generators, got %d", rr.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestOpsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	ok := NewOpsController(stubPinger{}, func() time.Time { return updated }, "k", nil).Router()
	rr := httptest.NewRecorder()
	ok.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ops/health", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "rates_updated_at") {
		t.Errorf("healthy: %d %s", rr.Code, rr.Body.String())
	}

	down := NewOpsController(stubPinger{err: errors.New("dial tcp")}, nil, "k", nil).Router()
	rr = httptest.NewRecorder()
	down.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ops/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status %d", rr.Code)
	}
}

func TestOpsMetricsRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewOpsController(stubPinger{}, nil, "ops-key", nil).Router()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ops/metrics", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status %d", rr.Code)
	}

	token, _, err := middleware.IssueToken([]byte("ops-key"), 1, "root@example.com", string(models.RoleAdmin), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/ops/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("admin: status %d", rr.Code)
	}
}
