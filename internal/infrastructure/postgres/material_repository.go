package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, unit, quantity, min_quantity, unit_price,
		category_name, supplier_name, supplier_contact, created_at, updated_at`

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL
// (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un material nuevo. Nombre duplicado devuelve ErrDuplicate.
func (r *MaterialRepo) Create(m *entity.Material) error {
	query := `
		INSERT INTO materials (id, name, unit, quantity, min_quantity, unit_price,
			category_name, supplier_name, supplier_contact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Name, m.Unit, m.Quantity, m.MinQuantity, m.UnitPrice,
		m.CategoryName, m.SupplierName, m.SupplierContact, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *MaterialRepo) scanOne(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(
		&m.ID, &m.Name, &m.Unit, &m.Quantity, &m.MinQuantity, &m.UnitPrice,
		&m.CategoryName, &m.SupplierName, &m.SupplierContact, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan material: %w", err)
	}
	return &m, nil
}

// GetByID obtiene un material por ID (nil si no existe).
func (r *MaterialRepo) GetByID(id string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByName obtiene un material por nombre (único).
func (r *MaterialRepo) GetByName(name string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE name = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, name))
}

// GetForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción del TxRunner.
func (r *MaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// List lista materiales por nombre.
func (r *MaterialRepo) List(limit, offset int) ([]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Unit, &m.Quantity, &m.MinQuantity, &m.UnitPrice,
			&m.CategoryName, &m.SupplierName, &m.SupplierContact, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Update actualiza los atributos del material, excepto quantity: la cantidad
// solo la muta el ejecutor vía UpdateQuantity, con su movimiento emparejado.
func (r *MaterialRepo) Update(m *entity.Material) error {
	query := `
		UPDATE materials
		SET name = $2, unit = $3, min_quantity = $4, unit_price = $5,
			category_name = $6, supplier_name = $7, supplier_contact = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		m.ID, m.Name, m.Unit, m.MinQuantity, m.UnitPrice,
		m.CategoryName, m.SupplierName, m.SupplierContact,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// UpdateQuantity fija la cantidad del material. Uso exclusivo del ejecutor.
func (r *MaterialRepo) UpdateQuantity(id string, quantity decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE materials SET quantity = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity, updatedAt)
	if err != nil {
		return fmt.Errorf("update material quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// Delete elimina el material. Movimientos y reservas caen en cascada;
// el log de auditoría no tiene FK y sobrevive (forense).
func (r *MaterialRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}
