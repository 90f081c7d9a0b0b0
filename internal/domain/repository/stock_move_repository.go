package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
)

// ConsumptionRow agregado de consumo por material en un período.
type ConsumptionRow struct {
	MaterialID   string
	MaterialName string
	Unit         string
	TotalSpent   decimal.Decimal // suma de |deltas| negativos del período
}

// StockMoveRepository define el puerto del libro de movimientos.
// Es append-only: no expone update ni delete.
type StockMoveRepository interface {
	Create(move *entity.StockMove) error
	ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error)
	ListByOrder(orderID string) ([]*entity.StockMove, error)
	ListByUser(userID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error)
	// SumDeltaByOrder devuelve el efecto neto del pedido sobre un material
	// (suma de deltas); el orquestador lo usa para la cancelación idempotente.
	SumDeltaByOrder(orderID string) (map[string]decimal.Decimal, error)
	// SpentInPeriod suma el consumo (deltas negativos, en valor absoluto) de un material.
	SpentInPeriod(materialID string, from, to time.Time) (decimal.Decimal, error)
	// TopConsumption agrega el consumo del período por material, de mayor a menor.
	TopConsumption(from, to time.Time, limit int) ([]ConsumptionRow, error)
}
