package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva de material.
const (
	ReservationActive    = "active"
	ReservationFulfilled = "fulfilled" // consumida por el spend correspondiente
	ReservationCancelled = "cancelled" // unreserve explícito
	ReservationExpired   = "expired"   // venció su ventana
)

// Reservation es una retención temporal de stock no descontado, atada a un
// pedido. No toca Quantity del material: es una promesa contra el stock
// disponible actual.
type Reservation struct {
	ID         string
	MaterialID string
	OrderID    string
	Quantity   decimal.Decimal
	Status     string
	Reason     string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// IsActive indica si la reserva retiene stock en el instante dado.
// Una reserva vencida deja de contar aunque el barrido aún no la marque expired.
func (r *Reservation) IsActive(now time.Time) bool {
	return r.Status == ReservationActive && now.Before(r.ExpiresAt)
}
