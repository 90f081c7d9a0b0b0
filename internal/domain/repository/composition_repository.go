package repository

import "github.com/tu-usuario/printshop-pro/internal/domain/entity"

// CompositionRepository consulta la composición producto→materiales.
// La ausencia de mapeo devuelve lista vacía, nunca error.
type CompositionRepository interface {
	FindByProduct(category, description string) ([]*entity.ProductComposition, error)
}
