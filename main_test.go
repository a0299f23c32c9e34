package main

import (
	"backoffice/controllers"
	"backoffice/generators"
	"backoffice/middleware"
	"backoffice/models"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testJWTKey = []byte("router-test-key")

// testRouter собирает маршрутизатор без базы: сервисы не вызываются,
// пока запрос не пройдет аутентификацию и проверку роли.
func testRouter() http.Handler {
	return newRouter(api{
		public: []routeRegistrar{
			controllers.NewAuthController(nil, string(testJWTKey), 1),
		},
		protected: []routeRegistrar{
			controllers.NewUserController(nil),
			controllers.NewBankController(nil),
			controllers.NewCardController(nil),
			controllers.NewCasinoController(nil),
			controllers.NewTestWorkController(nil),
			controllers.NewWithdrawalController(nil),
			controllers.NewPayPalController(nil),
			controllers.NewTaskController(nil),
			controllers.NewNotificationController(nil),
			controllers.NewToolsController(generators.New(rand.NewPCG(3, 4))),
		},
		jwtKey: testJWTKey,
	})
}

func bearer(t *testing.T, role models.Role) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testJWTKey, 5, "user@example.com", string(role), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter()
	for _, path := range []string{"/api/banks", "/api/cards", "/api/test-works", "/api/universal/withdrawals", "/api/notifications"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", path, rr.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s: error body expected, got %q", path, rr.Body.String())
		}
	}
}

func TestRoleGuards(t *testing.T) {
	router := testRouter()
	cases := []struct {
		method string
		path   string
		role   models.Role
	}{
		{http.MethodGet, "/api/banks", models.RoleJunior},
		{http.MethodPost, "/api/banks", models.RoleTeamLead},
		{http.MethodPost, "/api/accounts/1/balance", models.RoleTester},
		{http.MethodPost, "/api/cards", models.RoleJunior},
		{http.MethodGet, "/api/cards", models.RoleHR},
		{http.MethodPost, "/api/cards/assign-correct", models.RoleJunior},
		{http.MethodPost, "/api/casinos", models.RoleTester},
		{http.MethodGet, "/api/universal/withdrawals", models.RoleTester},
		{http.MethodPost, "/api/universal/withdrawals/3/action", models.RoleJunior},
		{http.MethodPost, "/api/users", models.RoleManager},
		{http.MethodGet, "/api/test-works", models.RoleJunior},
		{http.MethodPost, "/api/paypal", models.RoleJunior},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, strings.NewReader("{}"))
		req.Header.Set("Authorization", bearer(t, c.role))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s %s as %s: status %d, want 403", c.method, c.path, c.role, rr.Code)
		}
	}
}

func TestSignInValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signIn", strings.NewReader(`{"email":"not-an-email"}`))
	testRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Password") {
		t.Errorf("validation message must name the field: %s", rr.Body.String())
	}
}

func TestRequestIDAndCompression(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tools/generate?kind=identity&count=50", nil)
	req.Header.Set("Authorization", bearer(t, models.RoleJunior))
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	testRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Error("large response must be compressed")
	}
}
