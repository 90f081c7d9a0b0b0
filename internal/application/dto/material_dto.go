package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Unit            string           `json:"unit" validate:"required,max=30"`
	Quantity        decimal.Decimal  `json:"quantity"` // cantidad semilla
	MinQuantity     *decimal.Decimal `json:"min_quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	CategoryName    string           `json:"category_name,omitempty"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	SupplierContact string           `json:"supplier_contact,omitempty"`
}

// UpdateMaterialRequest body para PUT /api/materials/:id. No incluye quantity:
// la cantidad solo cambia vía operaciones de stock.
type UpdateMaterialRequest struct {
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	Unit            string           `json:"unit" validate:"required,max=30"`
	MinQuantity     *decimal.Decimal `json:"min_quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	CategoryName    string           `json:"category_name,omitempty"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	SupplierContact string           `json:"supplier_contact,omitempty"`
}

// MaterialListResponse página de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Unit            string           `json:"unit"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Available       *decimal.Decimal `json:"available,omitempty"` // cantidad menos reservas activas
	MinQuantity     *decimal.Decimal `json:"min_quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	CategoryName    string           `json:"category_name,omitempty"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	SupplierContact string           `json:"supplier_contact,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
