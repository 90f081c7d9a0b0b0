package dto

import "github.com/shopspring/decimal"

// OrderItemRequest línea de pedido para el descuento automático.
type OrderItemRequest struct {
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	PreviousQty decimal.Decimal `json:"previous_qty,omitempty"` // solo en updates de línea
}

// DeductRequest body para POST /api/orders/:orderID/deduction.
type DeductRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1"`
}

// ShortfallResponse material insuficiente detectado.
type ShortfallResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Available    decimal.Decimal `json:"available"`
	Requested    decimal.Decimal `json:"requested"`
}

// DeductedMaterialResponse material descontado (o devuelto, delta negativo).
type DeductedMaterialResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Before       decimal.Decimal `json:"before"`
	After        decimal.Decimal `json:"after"`
}

// DeductionResponse resultado estructurado del descuento: con faltantes la
// respuesta enumera todos, no solo el primero.
type DeductionResponse struct {
	Success  bool                       `json:"success"`
	Deducted []DeductedMaterialResponse `json:"deducted,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
	Errors   []ShortfallResponse        `json:"errors,omitempty"`
}
