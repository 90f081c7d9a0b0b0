package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/printshop-pro/internal/application/auth"
	"github.com/tu-usuario/printshop-pro/internal/application/usecase"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	MaterialUC  *usecase.MaterialUseCase
	Executor    *warehouse.TransactionExecutor
	Reservation *warehouse.ReservationManager
	Deduction   *warehouse.AutoDeductionUseCase
	Reporting   *warehouse.ReportingUseCase
	Evaluator   *warehouse.StockAlertEvaluator
	AlertRepo   repository.StockAlertRepository
	JWTSecret   string
}

// Router registra las rutas de la API. Lectura para cualquier usuario
// autenticado; mutaciones de stock solo para admin y operador.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	mutating := RequireRole(entity.RoleAdmin, entity.RoleOperador)

	// Materials (protegido)
	materials := protected.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Post("/", mutating, materialHandler.Create)
	materials.Put("/:id", mutating, materialHandler.Update)
	materials.Delete("/:id", RequireRole(entity.RoleAdmin), materialHandler.Delete)

	// Warehouse: ejecutor transaccional y disponibilidad (protegido)
	wh := protected.Group("/warehouse")
	warehouseHandler := NewWarehouseHandler(deps.Executor, deps.Reservation)
	wh.Post("/transactions", mutating, warehouseHandler.ExecuteTransaction)
	wh.Post("/reserve-and-spend", mutating, warehouseHandler.ReserveAndSpend)
	wh.Get("/materials/:id/availability", warehouseHandler.Availability)
	wh.Post("/reservations/expire", mutating, warehouseHandler.ExpireReservations)

	// Descuento automático por pedido (protegido)
	orders := protected.Group("/orders")
	deductionHandler := NewDeductionHandler(deps.Deduction)
	orders.Post("/:orderID/deduction", mutating, deductionHandler.Deduct)
	orders.Put("/:orderID/deduction/item", mutating, deductionHandler.UpdateItem)
	orders.Delete("/:orderID/deduction/item", mutating, deductionHandler.RemoveItem)
	orders.Delete("/:orderID/deduction", mutating, deductionHandler.Cancel)
	orders.Get("/:orderID/deduction", deductionHandler.History)

	// Alertas de stock (protegido)
	alerts := protected.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertRepo, deps.Evaluator)
	alerts.Get("/", alertHandler.ListOpen)
	alerts.Post("/evaluate", mutating, alertHandler.Evaluate)
	alerts.Put("/:id/resolve", mutating, alertHandler.Resolve)

	// Reportes (protegido, solo lectura)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Reporting)
	reports.Get("/ledger/materials/:id", reportHandler.LedgerByMaterial)
	reports.Get("/ledger/users/:id", reportHandler.LedgerByUser)
	reports.Get("/consumption/materials/:id", reportHandler.SpentInPeriod)
	reports.Get("/consumption/top", reportHandler.TopConsumption)
	reports.Get("/consumption/pdf", reportHandler.ConsumptionPDF)
	reports.Get("/reorders", reportHandler.SuggestedReorders)
}
