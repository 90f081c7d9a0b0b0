package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOperationRequest una operación de la lista de POST /api/warehouse/transactions.
// Type ∈ {spend, add, adjust, reserve, unreserve}; cada tipo usa solo sus campos.
type StockOperationRequest struct {
	Type        string           `json:"type" validate:"required,oneof=spend add adjust reserve unreserve"`
	MaterialID  string           `json:"material_id" validate:"required,uuid"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`     // spend, add, reserve
	NewQuantity *decimal.Decimal `json:"new_quantity,omitempty"` // adjust
	Reason      string           `json:"reason,omitempty"`
	OrderID     string           `json:"order_id,omitempty"` // requerido en reserve/unreserve
	TTLHours    int              `json:"ttl_hours,omitempty"` // reserve; 0 usa el default configurado
}

// ExecuteTransactionRequest body para POST /api/warehouse/transactions.
type ExecuteTransactionRequest struct {
	Operations []StockOperationRequest `json:"operations" validate:"required,min=1"`
}

// OperationResultResponse resultado por operación, en el orden de entrada.
type OperationResultResponse struct {
	Type           string          `json:"type"`
	MaterialID     string          `json:"material_id"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
}

// StockMoveResponse entrada del libro de movimientos.
type StockMoveResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	MaterialID    string          `json:"material_id"`
	Delta         decimal.Decimal `json:"delta"`
	Reason        string          `json:"reason"`
	OrderID       *string         `json:"order_id,omitempty"`
	UserID        *string         `json:"user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockAlertResponse alerta de stock abierta.
type StockAlertResponse struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinQuantity  decimal.Decimal `json:"min_quantity"`
	Level        string          `json:"level"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
