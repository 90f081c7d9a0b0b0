package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// ReorderSuggestion sugerencia de recompra para un material bajo mínimo.
type ReorderSuggestion struct {
	MaterialID    string
	MaterialName  string
	Unit          string
	CurrentStock  decimal.Decimal
	MinQuantity   decimal.Decimal
	IdealStock    decimal.Decimal // MinQuantity * 1.5
	SuggestedQty  decimal.Decimal // IdealStock - CurrentStock
	EstimatedCost decimal.Decimal // SuggestedQty * UnitPrice (0 sin precio)
	SupplierName  string
}

// ReportingUseCase consultas de solo lectura sobre el libro de movimientos:
// historial filtrado, consumo agregado y sugerencias de recompra.
type ReportingUseCase struct {
	materials repository.MaterialRepository
	moves     repository.StockMoveRepository
	pdf       PDFGenerator
	defaultMinStock decimal.Decimal
}

// NewReportingUseCase construye el caso de uso de reportes.
func NewReportingUseCase(
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	pdf PDFGenerator,
	defaultMinStock decimal.Decimal,
) *ReportingUseCase {
	if defaultMinStock.LessThanOrEqual(decimal.Zero) {
		defaultMinStock = decimal.NewFromInt(10)
	}
	return &ReportingUseCase{materials: materials, moves: moves, pdf: pdf, defaultMinStock: defaultMinStock}
}

// LedgerByMaterial historial de movimientos de un material en un rango.
func (uc *ReportingUseCase) LedgerByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	m, err := uc.materials.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, materialID)
	}
	return uc.moves.ListByMaterial(materialID, from, to, limit, offset)
}

// LedgerByUser historial de movimientos de un usuario en un rango.
func (uc *ReportingUseCase) LedgerByUser(userID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error) {
	return uc.moves.ListByUser(userID, from, to, limit, offset)
}

// SpentInPeriod consumo total de un material en el período.
func (uc *ReportingUseCase) SpentInPeriod(materialID string, from, to time.Time) (decimal.Decimal, error) {
	return uc.moves.SpentInPeriod(materialID, from, to)
}

// TopConsumption materiales más consumidos del período, de mayor a menor.
func (uc *ReportingUseCase) TopConsumption(from, to time.Time, limit int) ([]repository.ConsumptionRow, error) {
	if limit <= 0 {
		limit = 10
	}
	return uc.moves.TopConsumption(from, to, limit)
}

// SuggestedReorders recorre los materiales y sugiere recompra para los que
// están en o bajo su mínimo: ideal = mínimo*1.5, sugerido = ideal - actual.
func (uc *ReportingUseCase) SuggestedReorders() ([]ReorderSuggestion, error) {
	const pageSize = 200
	ideal := decimal.NewFromFloat(1.5)
	var suggestions []ReorderSuggestion
	for offset := 0; ; offset += pageSize {
		page, err := uc.materials.List(pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			minLevel := uc.defaultMinStock
			if m.MinQuantity != nil {
				minLevel = *m.MinQuantity
			}
			if m.Quantity.GreaterThan(minLevel) {
				continue
			}
			idealStock := minLevel.Mul(ideal)
			suggested := idealStock.Sub(m.Quantity)
			if suggested.LessThanOrEqual(decimal.Zero) {
				continue
			}
			cost := decimal.Zero
			if m.UnitPrice != nil {
				cost = suggested.Mul(*m.UnitPrice)
			}
			suggestions = append(suggestions, ReorderSuggestion{
				MaterialID:    m.ID,
				MaterialName:  m.Name,
				Unit:          m.Unit,
				CurrentStock:  m.Quantity,
				MinQuantity:   minLevel,
				IdealStock:    idealStock,
				SuggestedQty:  suggested,
				EstimatedCost: cost,
				SupplierName:  m.SupplierName,
			})
		}
		if len(page) < pageSize {
			break
		}
	}
	return suggestions, nil
}

// ConsumptionReportPDF genera el reporte de consumo del período en PDF.
func (uc *ReportingUseCase) ConsumptionReportPDF(ctx context.Context, from, to time.Time, limit int) ([]byte, error) {
	rows, err := uc.TopConsumption(from, to, limit)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateConsumptionPDF(ctx, from, to, rows)
}
