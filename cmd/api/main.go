package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/application/auth"
	"github.com/tu-usuario/printshop-pro/internal/application/usecase"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	infrapdf "github.com/tu-usuario/printshop-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/printshop-pro/internal/infrastructure/postgres"
	"github.com/tu-usuario/printshop-pro/internal/infrastructure/telegram"
	httpRouter "github.com/tu-usuario/printshop-pro/internal/interfaces/http"
	"github.com/tu-usuario/printshop-pro/pkg/config"
	"github.com/tu-usuario/printshop-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	materialRepo := postgres.NewMaterialRepository(pool)
	moveRepo := postgres.NewStockMoveRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	compositionRepo := postgres.NewCompositionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	executor := warehouse.NewTransactionExecutor(txRunner, cfg.Warehouse.ReservationTTL, log)

	reservationMgr := warehouse.NewReservationManager(materialRepo, reservationRepo, cfg.Warehouse.SweepInterval, log)
	reservationMgr.Start(ctx)
	defer reservationMgr.Stop()

	var notifier warehouse.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	evaluator := warehouse.NewStockAlertEvaluator(materialRepo, alertRepo, notifier, warehouse.AlertConfig{
		DefaultMinStock: decimal.NewFromFloat(cfg.Warehouse.DefaultMinStock),
		LowStockRatio:   decimal.NewFromFloat(cfg.Warehouse.LowStockRatio),
		Interval:        cfg.Warehouse.AlertInterval,
	}, log)
	evaluator.Start(ctx)
	defer evaluator.Stop()

	deductionUC := warehouse.NewAutoDeductionUseCase(executor, materialRepo, compositionRepo, moveRepo, evaluator, log)
	reportingUC := warehouse.NewReportingUseCase(materialRepo, moveRepo,
		infrapdf.NewConsumptionReportGenerator(), decimal.NewFromFloat(cfg.Warehouse.DefaultMinStock))
	materialUC := usecase.NewMaterialUseCase(materialRepo, executor, reservationMgr)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PrintShop Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		MaterialUC:  materialUC,
		Executor:    executor,
		Reservation: reservationMgr,
		Deduction:   deductionUC,
		Reporting:   reportingUC,
		Evaluator:   evaluator,
		AlertRepo:   alertRepo,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
