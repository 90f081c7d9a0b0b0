package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

const stockMoveColumns = `id, transaction_id, material_id, delta, reason, order_id, user_id, created_at`

// StockMoveRepo implementación del libro de movimientos sobre PostgreSQL.
// Append-only: no hay UPDATE ni DELETE.
type StockMoveRepo struct {
	q Querier
}

// NewStockMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMoveRepository(q Querier) *StockMoveRepo {
	return &StockMoveRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMoveRepo) Create(move *entity.StockMove) error {
	if move.ID == "" {
		move.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_moves (id, transaction_id, material_id, delta, reason, order_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		move.ID, move.TransactionID, move.MaterialID, move.Delta, move.Reason,
		move.OrderID, move.UserID, move.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock move: %w", err)
	}
	return nil
}

func (r *StockMoveRepo) list(query string, args ...any) ([]*entity.StockMove, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock moves: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMove
	for rows.Next() {
		var m entity.StockMove
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.MaterialID, &m.Delta,
			&m.Reason, &m.OrderID, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListByMaterial movimientos de un material en un rango de fechas.
func (r *StockMoveRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	query := `SELECT ` + stockMoveColumns + ` FROM stock_moves WHERE material_id = $1`
	args := []any{materialID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByOrder movimientos originados por un pedido, en orden cronológico.
func (r *StockMoveRepo) ListByOrder(orderID string) ([]*entity.StockMove, error) {
	query := `SELECT ` + stockMoveColumns + ` FROM stock_moves WHERE order_id = $1 ORDER BY created_at`
	return r.list(query, orderID)
}

// ListByUser movimientos registrados por un usuario en un rango de fechas.
func (r *StockMoveRepo) ListByUser(userID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	query := `SELECT ` + stockMoveColumns + ` FROM stock_moves WHERE user_id = $1`
	args := []any{userID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// SumDeltaByOrder efecto neto del pedido por material (suma de deltas).
func (r *StockMoveRepo) SumDeltaByOrder(orderID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT material_id, COALESCE(SUM(delta), 0)
		FROM stock_moves WHERE order_id = $1
		GROUP BY material_id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("sum delta by order: %w", err)
	}
	defer rows.Close()
	net := make(map[string]decimal.Decimal)
	for rows.Next() {
		var materialID string
		var sum decimal.Decimal
		if err := rows.Scan(&materialID, &sum); err != nil {
			return nil, fmt.Errorf("scan delta sum: %w", err)
		}
		net[materialID] = sum
	}
	return net, rows.Err()
}

// SpentInPeriod consumo (deltas negativos, en valor absoluto) de un material.
func (r *StockMoveRepo) SpentInPeriod(materialID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(-delta), 0)
		FROM stock_moves
		WHERE material_id = $1 AND delta < 0 AND created_at >= $2 AND created_at <= $3`
	var spent decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, materialID, from, to).Scan(&spent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("spent in period: %w", err)
	}
	return spent, nil
}

// TopConsumption agrega el consumo del período por material, de mayor a menor.
func (r *StockMoveRepo) TopConsumption(from, to time.Time, limit int) ([]repository.ConsumptionRow, error) {
	query := `
		SELECT m.id, m.name, m.unit, COALESCE(SUM(-s.delta), 0) AS total_spent
		FROM stock_moves s
		JOIN materials m ON m.id = s.material_id
		WHERE s.delta < 0 AND s.created_at >= $1 AND s.created_at <= $2
		GROUP BY m.id, m.name, m.unit
		ORDER BY total_spent DESC
		LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top consumption: %w", err)
	}
	defer rows.Close()
	var list []repository.ConsumptionRow
	for rows.Next() {
		var c repository.ConsumptionRow
		if err := rows.Scan(&c.MaterialID, &c.MaterialName, &c.Unit, &c.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan consumption row: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
