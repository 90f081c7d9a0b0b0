package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
	"github.com/tu-usuario/printshop-pro/pkg/logger"
)

// OrderItem línea de pedido tal como la entrega el ciclo de vida de pedidos.
type OrderItem struct {
	Category    string
	Description string
	Quantity    decimal.Decimal
}

// ShortfallError material insuficiente detectado en el pre-chequeo.
type ShortfallError struct {
	MaterialID   string
	MaterialName string
	Available    decimal.Decimal
	Requested    decimal.Decimal
}

// DeductedMaterial material descontado con su antes/después.
type DeductedMaterial struct {
	MaterialID   string
	MaterialName string
	Quantity     decimal.Decimal
	Before       decimal.Decimal
	After        decimal.Decimal
}

// DeductionResult resultado estructurado del descuento: nunca se devuelve un
// error crudo por faltantes de stock, para que la UI pueda mostrar el cuadro
// completo de una vez.
type DeductionResult struct {
	Success   bool
	Deducted  []DeductedMaterial
	Warnings  []string
	Shortfall []ShortfallError
}

// AutoDeductionUseCase mapea líneas de pedido a materiales requeridos (vía la
// composición producto→material), agrega requerimientos por material y dirige
// al ejecutor transaccional. No posee estado persistente: es capa de decisión.
type AutoDeductionUseCase struct {
	executor     *TransactionExecutor
	materials    repository.MaterialRepository
	compositions repository.CompositionRepository
	moves        repository.StockMoveRepository
	evaluator    *StockAlertEvaluator // chequeo puntual post-operación; puede ser nil
	log          *logger.Logger
}

// NewAutoDeductionUseCase construye el orquestador.
func NewAutoDeductionUseCase(
	executor *TransactionExecutor,
	materials repository.MaterialRepository,
	compositions repository.CompositionRepository,
	moves repository.StockMoveRepository,
	evaluator *StockAlertEvaluator,
	log *logger.Logger,
) *AutoDeductionUseCase {
	return &AutoDeductionUseCase{
		executor:     executor,
		materials:    materials,
		compositions: compositions,
		moves:        moves,
		evaluator:    evaluator,
		log:          log,
	}
}

// requirements agrega los materiales requeridos por las líneas: una sola cifra
// combinada por material aunque aparezca en varias líneas. Las líneas sin
// composición conocida generan warning, no error.
func (uc *AutoDeductionUseCase) requirements(items []OrderItem) (map[string]decimal.Decimal, []string, error) {
	required := make(map[string]decimal.Decimal)
	var warnings []string
	for _, item := range items {
		comps, err := uc.compositions.FindByProduct(item.Category, item.Description)
		if err != nil {
			return nil, nil, err
		}
		if len(comps) == 0 {
			warnings = append(warnings,
				fmt.Sprintf("sin composición de materiales para %q/%q: no se descuenta stock", item.Category, item.Description))
			continue
		}
		for _, c := range comps {
			need := c.QtyPerItem.Mul(item.Quantity)
			required[c.MaterialID] = required[c.MaterialID].Add(need)
		}
	}
	return required, warnings, nil
}

// sortedIDs ordena los materiales para un orden de bloqueo determinista.
func sortedIDs(required map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeductForOrder descuenta los materiales de todas las líneas del pedido.
// Pre-chequea TODOS los requerimientos agregados y recolecta cada faltante
// antes de emitir spend alguno; solo si todos pasan emite una única llamada
// atómica con un spend por material.
func (uc *AutoDeductionUseCase) DeductForOrder(ctx context.Context, orderID string, items []OrderItem, userID string) (*DeductionResult, error) {
	required, warnings, err := uc.requirements(items)
	if err != nil {
		return nil, err
	}
	result := &DeductionResult{Warnings: warnings}
	if len(required) == 0 {
		result.Success = true
		return result, nil
	}

	ids := sortedIDs(required)
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		m, err := uc.materials.GetByID(id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			result.Shortfall = append(result.Shortfall, ShortfallError{
				MaterialID: id, MaterialName: id,
				Available: decimal.Zero, Requested: required[id],
			})
			continue
		}
		names[id] = m.Name
		if m.Quantity.LessThan(required[id]) {
			result.Shortfall = append(result.Shortfall, ShortfallError{
				MaterialID:   id,
				MaterialName: m.Name,
				Available:    m.Quantity,
				Requested:    required[id],
			})
		}
	}
	if len(result.Shortfall) > 0 {
		uc.log.Warn().Str("order_id", orderID).Int("faltantes", len(result.Shortfall)).
			Msg("descuento abortado por materiales insuficientes")
		return result, nil
	}

	ops := make([]Operation, 0, len(ids))
	order, user := orderID, userID
	for _, id := range ids {
		ops = append(ops, Spend{
			MaterialID: id,
			Quantity:   required[id],
			Reason:     fmt.Sprintf("consumo automático del pedido %s", orderID),
			OrderID:    &order,
			UserID:     &user,
		})
	}
	results, err := uc.executor.Execute(ctx, ops)
	if err != nil {
		// Carrera entre pre-chequeo y commit: el ejecutor garantiza que nada
		// se aplicó; se reporta como faltante estructurado si es de stock.
		if shortfall, ok := asShortfall(err); ok {
			result.Shortfall = append(result.Shortfall, shortfall)
			return result, nil
		}
		return nil, err
	}
	for _, r := range results {
		result.Deducted = append(result.Deducted, DeductedMaterial{
			MaterialID:   r.MaterialID,
			MaterialName: names[r.MaterialID],
			Quantity:     r.QuantityBefore.Sub(r.QuantityAfter),
			Before:       r.QuantityBefore,
			After:        r.QuantityAfter,
		})
		if uc.evaluator != nil {
			uc.evaluator.EvaluateMaterial(ctx, r.MaterialID)
		}
	}
	result.Success = true
	return result, nil
}

// UpdateOrderItem ajusta el stock al cambiar la cantidad de una línea: si
// sube se descuenta solo el delta, si baja se devuelve la diferencia.
func (uc *AutoDeductionUseCase) UpdateOrderItem(ctx context.Context, orderID string, item OrderItem, previousQty decimal.Decimal, userID string) (*DeductionResult, error) {
	delta := item.Quantity.Sub(previousQty)
	if delta.IsZero() {
		return &DeductionResult{Success: true}, nil
	}
	if delta.GreaterThan(decimal.Zero) {
		scaled := item
		scaled.Quantity = delta
		return uc.DeductForOrder(ctx, orderID, []OrderItem{scaled}, userID)
	}
	returned := item
	returned.Quantity = delta.Neg()
	return uc.returnForItems(ctx, orderID, []OrderItem{returned}, userID,
		fmt.Sprintf("devolución por reducción de línea del pedido %s", orderID))
}

// RemoveOrderItem devuelve al stock todo lo consumido por la línea eliminada.
func (uc *AutoDeductionUseCase) RemoveOrderItem(ctx context.Context, orderID string, item OrderItem, userID string) (*DeductionResult, error) {
	return uc.returnForItems(ctx, orderID, []OrderItem{item}, userID,
		fmt.Sprintf("devolución por línea eliminada del pedido %s", orderID))
}

func (uc *AutoDeductionUseCase) returnForItems(ctx context.Context, orderID string, items []OrderItem, userID, reason string) (*DeductionResult, error) {
	required, warnings, err := uc.requirements(items)
	if err != nil {
		return nil, err
	}
	result := &DeductionResult{Warnings: warnings}
	if len(required) == 0 {
		result.Success = true
		return result, nil
	}
	ids := sortedIDs(required)
	ops := make([]Operation, 0, len(ids))
	order, user := orderID, userID
	for _, id := range ids {
		ops = append(ops, Add{
			MaterialID: id,
			Quantity:   required[id],
			Reason:     reason,
			OrderID:    &order,
			UserID:     &user,
		})
	}
	results, err := uc.executor.Execute(ctx, ops)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		result.Deducted = append(result.Deducted, DeductedMaterial{
			MaterialID: r.MaterialID,
			Quantity:   r.QuantityAfter.Sub(r.QuantityBefore).Neg(),
			Before:     r.QuantityBefore,
			After:      r.QuantityAfter,
		})
	}
	result.Success = true
	return result, nil
}

// CancelDeduction revierte el efecto neto del pedido sobre el stock una sola
// vez. Idempotente: la segunda llamada ve efecto neto cero y no toca stock.
func (uc *AutoDeductionUseCase) CancelDeduction(ctx context.Context, orderID, userID string) error {
	net, err := uc.moves.SumDeltaByOrder(orderID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(net))
	for id, delta := range net {
		if delta.IsNegative() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil // nada que revertir
	}
	sort.Strings(ids)
	ops := make([]Operation, 0, len(ids))
	order, user := orderID, userID
	for _, id := range ids {
		ops = append(ops, Add{
			MaterialID: id,
			Quantity:   net[id].Neg(),
			Reason:     fmt.Sprintf("cancelación del descuento del pedido %s", orderID),
			OrderID:    &order,
			UserID:     &user,
		})
	}
	// Cancelar también las reservas activas del pedido sobre esos materiales.
	for _, id := range ids {
		ops = append(ops, Unreserve{MaterialID: id, OrderID: orderID})
	}
	_, err = uc.executor.Execute(ctx, ops)
	return err
}

// DeductionHistory devuelve los movimientos del libro originados por el pedido.
func (uc *AutoDeductionUseCase) DeductionHistory(orderID string) ([]*entity.StockMove, error) {
	return uc.moves.ListByOrder(orderID)
}

func asShortfall(err error) (ShortfallError, bool) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return ShortfallError{
			MaterialID:   insufficient.MaterialID,
			MaterialName: insufficient.MaterialName,
			Available:    insufficient.Available,
			Requested:    insufficient.Requested,
		}, true
	}
	return ShortfallError{}, false
}
