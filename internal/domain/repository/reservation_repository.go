package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia de reservas.
type ReservationRepository interface {
	Create(r *entity.Reservation) error
	// SumActive suma las reservas activas y no vencidas de un material en el instante dado.
	SumActive(materialID string, now time.Time) (decimal.Decimal, error)
	ListActiveByMaterialOrder(materialID, orderID string, now time.Time) ([]*entity.Reservation, error)
	ListByOrder(orderID string) ([]*entity.Reservation, error)
	UpdateStatus(id, status string) error
	// ExpireStale marca expired toda reserva activa ya vencida; devuelve cuántas.
	ExpireStale(now time.Time) (int64, error)
}
