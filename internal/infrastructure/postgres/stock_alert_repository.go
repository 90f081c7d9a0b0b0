package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

const alertColumns = `id, material_id, material_name, quantity, min_quantity, level,
		resolved, resolved_at, created_at, updated_at`

// StockAlertRepo implementación de StockAlertRepository sobre PostgreSQL.
// La tabla lleva un índice único parcial sobre material_id WHERE NOT resolved,
// que es lo que hace posible el upsert de "una sola alerta abierta por material".
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// UpsertOpen inserta la alerta o refresca la abierta del mismo material
// (snapshot de cantidad, umbral y nivel), sin crear filas duplicadas.
func (r *StockAlertRepo) UpsertOpen(alert *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (id, material_id, material_name, quantity, min_quantity, level,
			resolved, resolved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NULL, $7, $7)
		ON CONFLICT (material_id) WHERE NOT resolved
		DO UPDATE SET quantity = EXCLUDED.quantity, min_quantity = EXCLUDED.min_quantity,
			level = EXCLUDED.level, material_name = EXCLUDED.material_name, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		alert.ID, alert.MaterialID, alert.MaterialName, alert.Quantity,
		alert.MinQuantity, alert.Level, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock alert: %w", err)
	}
	return nil
}

// GetOpenByMaterial devuelve la alerta abierta del material (nil si no hay).
func (r *StockAlertRepo) GetOpenByMaterial(materialID string) (*entity.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE material_id = $1 AND NOT resolved`
	var a entity.StockAlert
	err := r.q.QueryRow(context.Background(), query, materialID).Scan(
		&a.ID, &a.MaterialID, &a.MaterialName, &a.Quantity, &a.MinQuantity,
		&a.Level, &a.Resolved, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open stock alert: %w", err)
	}
	return &a, nil
}

// ListOpen lista las alertas sin resolver, las más recientes primero.
func (r *StockAlertRepo) ListOpen(limit, offset int) ([]*entity.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts
		WHERE NOT resolved ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list open stock alerts: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAlert
	for rows.Next() {
		var a entity.StockAlert
		if err := rows.Scan(&a.ID, &a.MaterialID, &a.MaterialName, &a.Quantity,
			&a.MinQuantity, &a.Level, &a.Resolved, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// Resolve marca resuelta una alerta por ID.
func (r *StockAlertRepo) Resolve(id string) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE stock_alerts SET resolved = true, resolved_at = now(), updated_at = now()
		WHERE id = $1 AND NOT resolved`, id)
	if err != nil {
		return fmt.Errorf("resolve stock alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResolveByMaterial cierra la alerta abierta del material, si existe.
// Sin alerta abierta es un no-op.
func (r *StockAlertRepo) ResolveByMaterial(materialID string) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE stock_alerts SET resolved = true, resolved_at = now(), updated_at = now()
		WHERE material_id = $1 AND NOT resolved`, materialID)
	if err != nil {
		return fmt.Errorf("resolve stock alert by material: %w", err)
	}
	return nil
}
