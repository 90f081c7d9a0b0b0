package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un insumo físico del taller (papel, vinilo, tinta...).
// Quantity es la única cantidad autoritativa; solo el ejecutor transaccional
// puede mutarla, siempre con su StockMove emparejado.
type Material struct {
	ID              string
	Name            string // único en toda la tabla
	Unit            string // unidad de medida: hoja, m2, ml, kg...
	Quantity        decimal.Decimal
	MinQuantity     *decimal.Decimal // umbral de stock mínimo (opcional)
	UnitPrice       *decimal.Decimal // precio unitario de compra (opcional)
	CategoryName    string
	SupplierName    string
	SupplierContact string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
