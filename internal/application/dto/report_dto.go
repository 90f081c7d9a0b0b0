package dto

import "github.com/shopspring/decimal"

// ConsumptionRowResponse consumo agregado de un material en el período.
type ConsumptionRowResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// ReorderSuggestionResponse sugerencia de recompra para un material bajo mínimo.
type ReorderSuggestionResponse struct {
	MaterialID    string          `json:"material_id"`
	MaterialName  string          `json:"material_name"`
	Unit          string          `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinQuantity   decimal.Decimal `json:"min_quantity"`
	IdealStock    decimal.Decimal `json:"ideal_stock"`    // MinQuantity * 1.5
	SuggestedQty  decimal.Decimal `json:"suggested_qty"`  // IdealStock - CurrentStock
	EstimatedCost decimal.Decimal `json:"estimated_cost"` // SuggestedQty * UnitPrice
	SupplierName  string          `json:"supplier_name,omitempty"`
}
