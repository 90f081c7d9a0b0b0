package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMove es una entrada inmutable del libro de movimientos: cada delta de
// cantidad con su motivo, pedido origen y usuario. La suma de deltas de un
// material, partiendo de su cantidad semilla, debe igualar su cantidad actual.
type StockMove struct {
	ID            string
	TransactionID string // agrupa los movimientos de una misma llamada atómica
	MaterialID    string
	Delta         decimal.Decimal // positivo entrada, negativo salida
	Reason        string          // texto libre; nunca se ramifica lógica sobre él
	OrderID       *string
	UserID        *string
	CreatedAt     time.Time
}
