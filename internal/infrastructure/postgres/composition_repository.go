package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

var _ repository.CompositionRepository = (*CompositionRepo)(nil)

// CompositionRepo consulta la composición producto→materiales sobre PostgreSQL.
type CompositionRepo struct {
	q Querier
}

// NewCompositionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompositionRepository(q Querier) *CompositionRepo {
	return &CompositionRepo{q: q}
}

// FindByProduct devuelve los materiales que componen un tipo de producto
// (clave categoría + descripción). Sin mapeo devuelve lista vacía, no error.
func (r *CompositionRepo) FindByProduct(category, description string) ([]*entity.ProductComposition, error) {
	query := `
		SELECT id, category, description, material_id, qty_per_item
		FROM product_compositions
		WHERE category = $1 AND description = $2`
	rows, err := r.q.Query(context.Background(), query, category, description)
	if err != nil {
		return nil, fmt.Errorf("find compositions: %w", err)
	}
	defer rows.Close()
	list := []*entity.ProductComposition{}
	for rows.Next() {
		var c entity.ProductComposition
		if err := rows.Scan(&c.ID, &c.Category, &c.Description, &c.MaterialID, &c.QtyPerItem); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
