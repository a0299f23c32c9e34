package controllers

import (
	"backoffice/generators"
	"backoffice/models"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
)

const maxGenerateCount = 50

// ToolsController генераторы учетных данных для регистрации в казино
type ToolsController struct {
	mu  sync.Mutex
	gen *generators.Generator
}

func NewToolsController(gen *generators.Generator) *ToolsController {
	return &ToolsController{gen: gen}
}

// Generate: ?kind=username|password|phone|email|identity&count=1..50
func (c *ToolsController) Generate(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "identity"
	}

	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxGenerateCount {
			badRequest(w, fmt.Errorf("count должен быть от 1 до %d", maxGenerateCount))
			return
		}
		count = n
	}

	var next func() interface{}
	switch kind {
	case "username":
		next = func() interface{} { return c.gen.Username() }
	case "password":
		next = func() interface{} { return c.gen.Password() }
	case "phone":
		next = func() interface{} { return generators.FormatUKPhone(c.gen.UKPhone()) }
	case "email":
		next = func() interface{} { return c.gen.Email() }
	case "identity":
		next = func() interface{} { return c.gen.Identity() }
	default:
		badRequest(w, fmt.Errorf("неизвестный генератор %q", kind))
		return
	}

	// Generator не потокобезопасен
	c.mu.Lock()
	items := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, next())
	}
	c.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"kind":  kind,
		"items": items,
	})
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *ToolsController) RegisterRoutes(router *mux.Router) {
	router.Handle("/tools/generate", allow(c.Generate, models.RoleJunior, models.RoleTeamLead, models.RoleTester, models.RoleManager, models.RoleAdmin)).Methods("GET")
}
