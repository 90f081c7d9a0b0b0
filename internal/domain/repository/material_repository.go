package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para materiales.
// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para uso dentro de una
// transacción; UpdateQuantity solo debe invocarse desde el ejecutor.
type MaterialRepository interface {
	Create(m *entity.Material) error
	GetByID(id string) (*entity.Material, error)
	GetByName(name string) (*entity.Material, error)
	GetForUpdate(id string) (*entity.Material, error)
	List(limit, offset int) ([]*entity.Material, error)
	Update(m *entity.Material) error
	UpdateQuantity(id string, quantity decimal.Decimal, updatedAt time.Time) error
	Delete(id string) error
}
