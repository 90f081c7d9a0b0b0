package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Niveles de alerta de stock.
const (
	AlertLow        = "low"
	AlertCritical   = "critical"
	AlertOutOfStock = "out_of_stock"
)

// StockAlert es un derivado, no autoritativo: snapshot del material al cruzar
// su umbral. Se mantiene una sola alerta abierta por material (upsert) y se
// resuelve explícitamente o al recuperarse el stock.
type StockAlert struct {
	ID          string
	MaterialID  string
	MaterialName string
	Quantity    decimal.Decimal // snapshot al evaluar
	MinQuantity decimal.Decimal // snapshot del umbral aplicado
	Level       string          // low, critical, out_of_stock
	Resolved    bool
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
