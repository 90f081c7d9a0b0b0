package repository

import "github.com/tu-usuario/printshop-pro/internal/domain/entity"

// StockAlertRepository define el puerto de alertas de stock.
// UpsertOpen mantiene una única alerta sin resolver por material.
type StockAlertRepository interface {
	UpsertOpen(alert *entity.StockAlert) error
	GetOpenByMaterial(materialID string) (*entity.StockAlert, error)
	ListOpen(limit, offset int) ([]*entity.StockAlert, error)
	Resolve(id string) error
	ResolveByMaterial(materialID string) error
}
