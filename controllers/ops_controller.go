package controllers

import (
	"backoffice/middleware"
	"backoffice/models"
	"backoffice/utils"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger проверка доступности базы (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

// OpsController служебные маршруты: здоровье и метрики
type OpsController struct {
	db           Pinger
	ratesUpdated func() time.Time
	jwtKey       []byte
	limiter      *utils.RateLimiter
	proxies      []string
}

// NewOpsController создает служебный контроллер. trustedProxies задает адреса,
// чьим заголовкам X-Forwarded-For и X-Real-IP можно верить.
func NewOpsController(db Pinger, ratesUpdated func() time.Time, jwtKey string, limiter *utils.RateLimiter, trustedProxies ...string) *OpsController {
	return &OpsController{db: db, ratesUpdated: ratesUpdated, jwtKey: []byte(jwtKey), limiter: limiter, proxies: trustedProxies}
}

// Health проверяет соединение с базой
func (c *OpsController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "time": time.Now().UTC()}
	if c.ratesUpdated != nil {
		if updated := c.ratesUpdated(); !updated.IsZero() {
			status["rates_updated_at"] = updated
		}
	}
	if err := c.db.PingContext(pingCtx); err != nil {
		utils.LogError("Ops health: база недоступна: %v", err)
		status["status"] = "degraded"
		status["error"] = "database unavailable"
		ctx.JSON(http.StatusServiceUnavailable, status)
		return
	}
	ctx.JSON(http.StatusOK, status)
}

// Metrics возвращает снимок метрик
func (c *OpsController) Metrics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}

// Router собирает gin-сервер служебных маршрутов
func (c *OpsController) Router() *gin.Engine {
	r := gin.New()
	// По умолчанию gin доверяет любому прокси
	if err := r.SetTrustedProxies(c.proxies); err != nil {
		utils.LogError("Неверный список доверенных прокси: %v", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.Recovery(), middleware.Logger(), middleware.CORSMiddleware())
	if c.limiter != nil {
		r.Use(middleware.RateLimit(c.limiter))
	}

	ops := r.Group("/ops")
	ops.GET("/health", c.Health)
	ops.GET("/metrics", middleware.Auth(c.jwtKey, models.RoleAdmin, models.RoleCFO), c.Metrics)
	return r
}
