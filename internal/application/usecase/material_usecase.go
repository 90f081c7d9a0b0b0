package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/application/dto"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para materiales. La cantidad NO se edita
// por aquí: el alta siembra el stock inicial vía el ejecutor transaccional y
// desde ahí solo el ejecutor la muta.
type MaterialUseCase struct {
	repo     repository.MaterialRepository
	executor *warehouse.TransactionExecutor
	manager  *warehouse.ReservationManager
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository, executor *warehouse.TransactionExecutor, manager *warehouse.ReservationManager) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, executor: executor, manager: manager}
}

// Create crea un material con cantidad cero y, si trae stock inicial, lo
// siembra con un Add del ejecutor para que el libro cuadre desde el día uno.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest, userID string) (*dto.MaterialResponse, error) {
	existing, _ := uc.repo.GetByName(in.Name)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	m := &entity.Material{
		ID:              uuid.New().String(),
		Name:            in.Name,
		Unit:            in.Unit,
		Quantity:        decimal.Zero,
		MinQuantity:     in.MinQuantity,
		UnitPrice:       in.UnitPrice,
		CategoryName:    in.CategoryName,
		SupplierName:    in.SupplierName,
		SupplierContact: in.SupplierContact,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(m); err != nil {
		return nil, err
	}
	if in.Quantity.GreaterThan(decimal.Zero) {
		user := userID
		_, err := uc.executor.Execute(ctx, []warehouse.Operation{warehouse.Add{
			MaterialID: m.ID,
			Quantity:   in.Quantity,
			Reason:     "stock inicial",
			UserID:     &user,
		}})
		if err != nil {
			return nil, err
		}
		m.Quantity = in.Quantity
	}
	return uc.toResponse(ctx, m), nil
}

// GetByID obtiene un material por ID, con su disponibilidad real.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return uc.toResponse(ctx, m), nil
}

// List lista materiales con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.MaterialListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *uc.toResponse(ctx, m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update actualiza los datos descriptivos. No toca Quantity.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	if in.Name != m.Name {
		dup, _ := uc.repo.GetByName(in.Name)
		if dup != nil && dup.ID != id {
			return nil, domain.ErrDuplicate
		}
	}
	m.Name = in.Name
	m.Unit = in.Unit
	m.MinQuantity = in.MinQuantity
	m.UnitPrice = in.UnitPrice
	m.CategoryName = in.CategoryName
	m.SupplierName = in.SupplierName
	m.SupplierContact = in.SupplierContact
	m.UpdatedAt = time.Now()
	if err := uc.repo.Update(m); err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, m), nil
}

// Delete elimina un material. El libro y la auditoría lo sobreviven.
func (uc *MaterialUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func (uc *MaterialUseCase) toResponse(ctx context.Context, m *entity.Material) *dto.MaterialResponse {
	resp := &dto.MaterialResponse{
		ID:              m.ID,
		Name:            m.Name,
		Unit:            m.Unit,
		Quantity:        m.Quantity,
		MinQuantity:     m.MinQuantity,
		UnitPrice:       m.UnitPrice,
		CategoryName:    m.CategoryName,
		SupplierName:    m.SupplierName,
		SupplierContact: m.SupplierContact,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if uc.manager != nil {
		if avail, err := uc.manager.Available(ctx, m.ID); err == nil {
			resp.Available = &avail
		}
	}
	return resp
}
