package repository

import (
	"time"

	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
)

// AuditLogRepository define el puerto del log de auditoría (append-only).
type AuditLogRepository interface {
	Create(e *entity.AuditEntry) error
	ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.AuditEntry, error)
	ListByOrder(orderID string) ([]*entity.AuditEntry, error)
}
