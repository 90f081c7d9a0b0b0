package entity

import "github.com/shopspring/decimal"

// ProductComposition mapea un tipo de producto del pedido (categoría +
// descripción) a un material requerido con su cantidad por unidad.
// Es la tabla de consulta del orquestador de descuento automático.
type ProductComposition struct {
	ID          string
	Category    string
	Description string
	MaterialID  string
	QtyPerItem  decimal.Decimal
}
