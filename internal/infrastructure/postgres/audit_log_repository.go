package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

const auditColumns = `id, operation, material_id, quantity, quantity_before, quantity_after,
		reason, order_id, user_id, metadata, created_at`

// AuditLogRepo implementación del log de auditoría sobre PostgreSQL.
// Append-only y sin FK hacia materials: las filas sobreviven al borrado del
// material para análisis forense. Metadata va como JSONB.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create persiste una entrada de auditoría.
func (r *AuditLogRepo) Create(e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_log (id, operation, material_id, quantity, quantity_before, quantity_after,
			reason, order_id, user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.Operation, e.MaterialID, e.Quantity, e.QuantityBefore, e.QuantityAfter,
		e.Reason, e.OrderID, e.UserID, e.Metadata, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditLogRepo) list(query string, args ...any) ([]*entity.AuditEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.Operation, &e.MaterialID, &e.Quantity,
			&e.QuantityBefore, &e.QuantityAfter, &e.Reason, &e.OrderID, &e.UserID,
			&e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListByMaterial entradas de un material en un rango de fechas.
func (r *AuditLogRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log WHERE material_id = $1`
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

// ListByOrder entradas originadas por un pedido, en orden cronológico.
func (r *AuditLogRepo) ListByOrder(orderID string) ([]*entity.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log WHERE order_id = $1 ORDER BY created_at`
	return r.list(query, orderID)
}
