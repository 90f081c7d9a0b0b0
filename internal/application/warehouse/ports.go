package warehouse

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// cuatro almacenes del motor atados a esa tx. Garantiza que una llamada del
// ejecutor se aplique completa o no se aplique en absoluto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materials repository.MaterialRepository,
		moves repository.StockMoveRepository,
		reservations repository.ReservationRepository,
		audits repository.AuditLogRepository,
	) error) error
}

// AlertPayload datos estructurados que se entregan al colaborador de
// notificaciones por cada alerta disparada.
type AlertPayload struct {
	MaterialID      string
	MaterialName    string
	Quantity        decimal.Decimal
	MinQuantity     decimal.Decimal
	Level           string
	Unit            string
	CategoryName    string
	SupplierName    string
	SupplierContact string
}

// Notifier entrega alertas de stock bajo. Es fire-and-forget respecto al
// núcleo transaccional: sus fallos se registran y se tragan.
type Notifier interface {
	NotifyLowStock(ctx context.Context, p AlertPayload) error
}

// PDFGenerator genera el reporte de consumo en PDF.
type PDFGenerator interface {
	GenerateConsumptionPDF(ctx context.Context, from, to time.Time, rows []repository.ConsumptionRow) ([]byte, error)
}
