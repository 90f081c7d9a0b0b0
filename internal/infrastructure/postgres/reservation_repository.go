package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, material_id, order_id, quantity, status, reason, created_at, expires_at`

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
// El filtro "activa" siempre combina status = active con expires_at > now:
// una reserva vencida no cuenta aunque el barrido aún no la haya marcado.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste una reserva.
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, material_id, order_id, quantity, status, reason, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.MaterialID, res.OrderID, res.Quantity, res.Status,
		res.Reason, res.CreatedAt, res.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// SumActive suma las reservas activas y no vencidas de un material.
func (r *ReservationRepo) SumActive(materialID string, now time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE material_id = $1 AND status = $2 AND expires_at > $3`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, materialID, entity.ReservationActive, now).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum active reservations: %w", err)
	}
	return sum, nil
}

func (r *ReservationRepo) list(query string, args ...any) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.MaterialID, &res.OrderID, &res.Quantity,
			&res.Status, &res.Reason, &res.CreatedAt, &res.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

// ListActiveByMaterialOrder reservas activas no vencidas del par material/pedido.
func (r *ReservationRepo) ListActiveByMaterialOrder(materialID, orderID string, now time.Time) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE material_id = $1 AND order_id = $2 AND status = $3 AND expires_at > $4
		ORDER BY created_at`
	return r.list(query, materialID, orderID, entity.ReservationActive, now)
}

// ListByOrder todas las reservas de un pedido, cualquier estado.
func (r *ReservationRepo) ListByOrder(orderID string) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE order_id = $1 ORDER BY created_at`
	return r.list(query, orderID)
}

// UpdateStatus transiciona el estado de una reserva.
func (r *ReservationRepo) UpdateStatus(id, status string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExpireStale marca expired toda reserva activa ya vencida. Idempotente.
func (r *ReservationRepo) ExpireStale(now time.Time) (int64, error) {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE reservations SET status = $1
		WHERE status = $2 AND expires_at <= $3`,
		entity.ReservationExpired, entity.ReservationActive, now)
	if err != nil {
		return 0, fmt.Errorf("expire stale reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}
