package main

import (
	"backoffice/config"
	"backoffice/controllers"
	"backoffice/database"
	"backoffice/generators"
	"backoffice/middleware"
	"backoffice/services"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

type routeRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// api набор контроллеров и параметры маршрутизатора
type api struct {
	public    []routeRegistrar
	protected []routeRegistrar
	jwtKey    []byte
	users     middleware.ActiveChecker
	limiter   *utils.RateLimiter
	proxies   []string
}

// newRouter собирает маршрутизатор API
func newRouter(a api) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware, middleware.LoggingMiddleware, middleware.RecoveryMiddleware)
	if a.limiter != nil {
		router.Use(middleware.RateLimitMiddleware(a.limiter, a.proxies...))
	}

	// Публичные маршруты для аутентификации
	for _, c := range a.public {
		c.RegisterRoutes(router)
	}

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware(a.jwtKey, a.users))
	for _, c := range a.protected {
		c.RegisterRoutes(protected)
	}

	return gzhttp.GzipHandler(router)
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		utils.Log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if err := utils.InitLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Dir); err != nil {
		utils.Log.Fatalf("Ошибка настройки логгера: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.Connect(cfg)
	if err != nil {
		utils.Log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	if cfg.Seed.Enabled {
		catalog, err := database.DefaultCatalog()
		if err != nil {
			utils.Log.Fatalf("Ошибка справочника: %v", err)
		}
		if err := database.Seed(db.DB, catalog, cfg.Seed.AdminPassword); err != nil {
			utils.Log.Fatalf("Ошибка начального заполнения: %v", err)
		}
	}

	vault, err := utils.NewVault(cfg.CardPublicKey, cfg.CardPrivateKey, cfg.CardHMACKey)
	if err != nil {
		utils.Log.Fatalf("Ошибка настройки шифрования: %v", err)
	}
	if cfg.CardPrivateKey == "" {
		utils.LogInfo("Приватный ключ не задан: раскрытие данных карт и PayPal отключено")
	}

	rates := services.NewRateService(cfg.Rates.URL, &http.Client{Timeout: 15 * time.Second})

	// Подписчики уведомлений
	userService := services.NewUserService(db.DB)
	notifier := services.NewNotifier(userService)
	notificationService := services.NewNotificationService(db.DB)
	notifier.Subscribe(notificationService)
	notifier.Subscribe(services.NewMetricsSubscriber(utils.GetMetrics()))
	if cfg.SMTP.Enabled {
		notifier.Subscribe(services.NewEmailService(cfg))
	}

	threshold := cfg.Business.MinVisibleBalance
	currency := cfg.Business.DefaultCurrency
	bankService := services.NewBankService(db.DB, rates, notifier, threshold, currency)
	cardService := services.NewCardService(db.DB, vault, rates, notifier, threshold)
	casinoService := services.NewCasinoService(db.DB, currency)
	workService := services.NewTestWorkService(db.DB, notifier)
	withdrawalService := services.NewWithdrawalService(db.DB, notifier)
	paypalService := services.NewPayPalService(db.DB, vault, currency)
	taskService := services.NewTaskService(db.DB, notifier)

	// Запускаем планировщик
	scheduler := services.NewSchedulerService()
	if err := scheduler.Schedule(cfg.Scheduler.OverdueSpec, "withdrawals.overdue", withdrawalService.ProcessOverdue); err != nil {
		utils.Log.Fatal(err)
	}
	if err := scheduler.Schedule(cfg.Rates.RefreshSpec, "rates.refresh", rates.Refresh); err != nil {
		utils.Log.Fatal(err)
	}
	scheduler.Start()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rates.Refresh(ctx); err != nil {
			utils.LogError("Курсы валют не загружены, суммы показываются без пересчета: %v", err)
		}
	}()

	var limiter *utils.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = utils.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	handler := newRouter(api{
		public: []routeRegistrar{
			controllers.NewAuthController(userService, cfg.JWT.SecretKey, cfg.JWT.ExpiresIn),
		},
		protected: []routeRegistrar{
			controllers.NewUserController(userService),
			controllers.NewBankController(bankService),
			controllers.NewCardController(cardService),
			controllers.NewCasinoController(casinoService),
			controllers.NewTestWorkController(workService),
			controllers.NewWithdrawalController(withdrawalService),
			controllers.NewPayPalController(paypalService),
			controllers.NewTaskController(taskService),
			controllers.NewNotificationController(notificationService),
			controllers.NewToolsController(generators.NewDefault()),
		},
		jwtKey:  []byte(cfg.JWT.SecretKey),
		users:   userService,
		limiter: limiter,
		proxies: cfg.Server.TrustedProxies,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var opsServer *http.Server
	if cfg.Server.OpsPort > 0 {
		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		ops := controllers.NewOpsController(db, rates.UpdatedAt, cfg.JWT.SecretKey, utils.NewRateLimiter(60, time.Minute), cfg.Server.TrustedProxies...)
		opsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.OpsPort),
			Handler: ops.Router(),
		}
		go func() {
			utils.LogInfo("Служебный сервер запущен на порту %d", cfg.Server.OpsPort)
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.LogError("Ошибка служебного сервера: %v", err)
			}
		}()
	}

	// Запускаем сервер
	go func() {
		utils.LogInfo("Сервер запущен на порту %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	utils.LogInfo("Остановка сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.LogError("Ошибка остановки сервера: %v", err)
	}
	if opsServer != nil {
		if err := opsServer.Shutdown(ctx); err != nil {
			utils.LogError("Ошибка остановки служебного сервера: %v", err)
		}
	}
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		utils.LogError("Планировщик не успел завершить задачи")
	}
}
