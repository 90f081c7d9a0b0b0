package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditEntry registra cada operación del ejecutor con snapshot antes/después.
// Es independiente del libro de movimientos: también traza reservas y
// cancelaciones de reserva, que no cambian cantidad. Sin cascade hacia
// materials, para que sobreviva al borrado del material (forense).
type AuditEntry struct {
	ID             string
	Operation      string // spend, add, adjust, reserve, unreserve
	MaterialID     string
	Quantity       decimal.Decimal // cantidad solicitada en la operación
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Reason         string
	OrderID        *string
	UserID         *string
	Metadata       map[string]string
	CreatedAt      time.Time
}
