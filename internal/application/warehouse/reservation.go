package warehouse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
	"github.com/tu-usuario/printshop-pro/pkg/logger"
)

// ReservationManager calcula la disponibilidad real (cantidad menos reservas
// activas no vencidas) y expira retenciones caducadas. Una reserva vencida
// deja de contar para la disponibilidad aunque el barrido aún no la marque;
// el barrido periódico solo normaliza su estado para los listados.
type ReservationManager struct {
	materials    repository.MaterialRepository
	reservations repository.ReservationRepository
	interval     time.Duration
	log          *logger.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewReservationManager construye el gestor. interval <= 0 usa 5 minutos.
func NewReservationManager(
	materials repository.MaterialRepository,
	reservations repository.ReservationRepository,
	interval time.Duration,
	log *logger.Logger,
) *ReservationManager {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReservationManager{
		materials:    materials,
		reservations: reservations,
		interval:     interval,
		log:          log,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Available devuelve cantidad actual menos la suma de reservas activas no
// vencidas del material.
func (m *ReservationManager) Available(ctx context.Context, materialID string) (decimal.Decimal, error) {
	mat, err := m.materials.GetByID(materialID)
	if err != nil {
		return decimal.Zero, err
	}
	if mat == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, materialID)
	}
	reserved, err := m.reservations.SumActive(materialID, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	return mat.Quantity.Sub(reserved), nil
}

// ExpireStale marca como expired las reservas activas ya vencidas.
// Es idempotente: un segundo barrido sobre el mismo estado no cambia nada.
func (m *ReservationManager) ExpireStale(ctx context.Context) (int64, error) {
	n, err := m.reservations.ExpireStale(time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.log.Info().Int64("expired", n).Msg("reservas vencidas marcadas")
	}
	return n, nil
}

// Start lanza el barrido periódico de expiración en background.
func (m *ReservationManager) Start(ctx context.Context) {
	m.started = true
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := m.ExpireStale(ctx); err != nil {
					m.log.Error().Err(err).Msg("barrido de reservas vencidas")
				}
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop detiene el barrido y espera a que el loop termine. Seguro de llamar
// más de una vez o sin Start previo.
func (m *ReservationManager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	if m.started {
		<-m.done
	}
}
