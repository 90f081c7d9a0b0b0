package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
	"github.com/tu-usuario/printshop-pro/pkg/logger"
)

// TransactionExecutor aplica una lista ordenada de operaciones de stock como
// unidad atómica: una transacción de BD con bloqueo de fila (SELECT FOR UPDATE)
// por material. Si una operación falla, ninguna de la lista tiene efecto
// visible; el error llega envuelto en TransactionAbortedError con el rollback
// ya hecho. Cada operación que cambia cantidad escribe exactamente un
// movimiento en el libro, y toda operación (reservas incluidas) exactamente
// una entrada de auditoría.
type TransactionExecutor struct {
	tx         TxRunner
	reserveTTL time.Duration // TTL por defecto cuando Reserve.TTL es cero
	log        *logger.Logger
}

// NewTransactionExecutor construye el ejecutor. reserveTTL <= 0 usa 24h.
func NewTransactionExecutor(tx TxRunner, reserveTTL time.Duration, log *logger.Logger) *TransactionExecutor {
	if reserveTTL <= 0 {
		reserveTTL = 24 * time.Hour
	}
	return &TransactionExecutor{tx: tx, reserveTTL: reserveTTL, log: log}
}

// Execute aplica las operaciones en orden dentro de una sola transacción.
// Devuelve un resultado por operación, en el mismo orden de entrada.
func (e *TransactionExecutor) Execute(ctx context.Context, ops []Operation) ([]OperationResult, error) {
	if len(ops) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	txID := uuid.New().String()

	var results []OperationResult
	err := e.tx.Run(ctx, func(
		materials repository.MaterialRepository,
		moves repository.StockMoveRepository,
		reservations repository.ReservationRepository,
		audits repository.AuditLogRepository,
	) error {
		results = results[:0]
		for _, op := range ops {
			res, err := e.apply(op, now, txID, materials, moves, reservations, audits)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("transaction_id", txID).Int("ops", len(ops)).
			Msg("transacción de stock abortada")
		return nil, &domain.TransactionAbortedError{Cause: err}
	}
	return results, nil
}

// ReserveAndSpend reserva y consume en la misma llamada atómica, para flujos
// donde la reserva es solo formalidad contable y no una ventana de retención.
func (e *TransactionExecutor) ReserveAndSpend(
	ctx context.Context,
	materialID string,
	quantity decimal.Decimal,
	orderID, reason string,
	userID *string,
	ttl time.Duration,
) ([]OperationResult, error) {
	order := orderID
	return e.Execute(ctx, []Operation{
		Reserve{MaterialID: materialID, Quantity: quantity, OrderID: orderID, Reason: reason, TTL: ttl},
		Spend{MaterialID: materialID, Quantity: quantity, Reason: reason, OrderID: &order, UserID: userID},
	})
}

// apply despacha una operación por tipo. Una variante no contemplada
// termina en ErrUnknownOperation.
func (e *TransactionExecutor) apply(
	op Operation,
	now time.Time, txID string,
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) (OperationResult, error) {
	switch v := op.(type) {
	case Spend:
		return e.applySpend(v, now, txID, materials, moves, reservations, audits)
	case Add:
		return e.applyAdd(v, now, txID, materials, moves, audits)
	case Adjust:
		return e.applyAdjust(v, now, txID, materials, moves, audits)
	case Reserve:
		return e.applyReserve(v, now, txID, materials, reservations, audits)
	case Unreserve:
		return e.applyUnreserve(v, now, txID, materials, reservations, audits)
	default:
		return OperationResult{}, fmt.Errorf("%w: %T", domain.ErrUnknownOperation, op)
	}
}

// lockMaterial bloquea la fila del material y normaliza material inexistente.
func lockMaterial(materials repository.MaterialRepository, id string) (*entity.Material, error) {
	m, err := materials.GetForUpdate(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, id)
	}
	return m, nil
}

func (e *TransactionExecutor) applySpend(
	op Spend,
	now time.Time, txID string,
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) (OperationResult, error) {
	if !op.Quantity.GreaterThan(decimal.Zero) {
		return OperationResult{}, domain.ErrInvalidInput
	}
	m, err := lockMaterial(materials, op.MaterialID)
	if err != nil {
		return OperationResult{}, err
	}
	if m.Quantity.Sub(op.Quantity).IsNegative() {
		return OperationResult{}, &domain.InsufficientStockError{
			MaterialID:   m.ID,
			MaterialName: m.Name,
			Available:    m.Quantity,
			Requested:    op.Quantity,
		}
	}
	before := m.Quantity
	after := before.Sub(op.Quantity)
	if err := materials.UpdateQuantity(m.ID, after, now); err != nil {
		return OperationResult{}, err
	}
	if err := moves.Create(&entity.StockMove{
		TransactionID: txID,
		MaterialID:    m.ID,
		Delta:         op.Quantity.Neg(),
		Reason:        op.Reason,
		OrderID:       op.OrderID,
		UserID:        op.UserID,
		CreatedAt:     now,
	}); err != nil {
		return OperationResult{}, err
	}
	// El spend consuma las reservas activas del mismo par material/pedido:
	// la retención se cumplió, no debe seguir contando contra el disponible.
	if op.OrderID != nil {
		held, err := reservations.ListActiveByMaterialOrder(m.ID, *op.OrderID, now)
		if err != nil {
			return OperationResult{}, err
		}
		for _, r := range held {
			if err := reservations.UpdateStatus(r.ID, entity.ReservationFulfilled); err != nil {
				return OperationResult{}, err
			}
		}
	}
	if err := audits.Create(auditEntry(op.Kind(), m.ID, op.Quantity, before, after, op.Reason, op.OrderID, op.UserID, txID, now)); err != nil {
		return OperationResult{}, err
	}
	return OperationResult{MaterialID: m.ID, QuantityBefore: before, QuantityAfter: after, Op: op}, nil
}

func (e *TransactionExecutor) applyAdd(
	op Add,
	now time.Time, txID string,
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	audits repository.AuditLogRepository,
) (OperationResult, error) {
	if !op.Quantity.GreaterThan(decimal.Zero) {
		return OperationResult{}, domain.ErrInvalidInput
	}
	m, err := lockMaterial(materials, op.MaterialID)
	if err != nil {
		return OperationResult{}, err
	}
	before := m.Quantity
	after := before.Add(op.Quantity)
	if err := materials.UpdateQuantity(m.ID, after, now); err != nil {
		return OperationResult{}, err
	}
	if err := moves.Create(&entity.StockMove{
		TransactionID: txID,
		MaterialID:    m.ID,
		Delta:         op.Quantity,
		Reason:        op.Reason,
		OrderID:       op.OrderID,
		UserID:        op.UserID,
		CreatedAt:     now,
	}); err != nil {
		return OperationResult{}, err
	}
	if err := audits.Create(auditEntry(op.Kind(), m.ID, op.Quantity, before, after, op.Reason, op.OrderID, op.UserID, txID, now)); err != nil {
		return OperationResult{}, err
	}
	return OperationResult{MaterialID: m.ID, QuantityBefore: before, QuantityAfter: after, Op: op}, nil
}

func (e *TransactionExecutor) applyAdjust(
	op Adjust,
	now time.Time, txID string,
	materials repository.MaterialRepository,
	moves repository.StockMoveRepository,
	audits repository.AuditLogRepository,
) (OperationResult, error) {
	if op.NewQuantity.IsNegative() {
		return OperationResult{}, domain.ErrInvalidInput
	}
	m, err := lockMaterial(materials, op.MaterialID)
	if err != nil {
		return OperationResult{}, err
	}
	before := m.Quantity
	after := op.NewQuantity
	if err := materials.UpdateQuantity(m.ID, after, now); err != nil {
		return OperationResult{}, err
	}
	// El delta del libro es la diferencia contra el valor anterior, de modo
	// que la reconciliación semilla + Σdeltas siga cuadrando.
	if err := moves.Create(&entity.StockMove{
		TransactionID: txID,
		MaterialID:    m.ID,
		Delta:         after.Sub(before),
		Reason:        op.Reason,
		UserID:        op.UserID,
		CreatedAt:     now,
	}); err != nil {
		return OperationResult{}, err
	}
	if err := audits.Create(auditEntry(op.Kind(), m.ID, op.NewQuantity, before, after, op.Reason, nil, op.UserID, txID, now)); err != nil {
		return OperationResult{}, err
	}
	return OperationResult{MaterialID: m.ID, QuantityBefore: before, QuantityAfter: after, Op: op}, nil
}

func (e *TransactionExecutor) applyReserve(
	op Reserve,
	now time.Time, txID string,
	materials repository.MaterialRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) (OperationResult, error) {
	if !op.Quantity.GreaterThan(decimal.Zero) || op.OrderID == "" {
		return OperationResult{}, domain.ErrInvalidInput
	}
	// Bloquear la fila del material serializa los chequeos de disponibilidad
	// de reservas concurrentes sobre el mismo material.
	m, err := lockMaterial(materials, op.MaterialID)
	if err != nil {
		return OperationResult{}, err
	}
	reserved, err := reservations.SumActive(m.ID, now)
	if err != nil {
		return OperationResult{}, err
	}
	available := m.Quantity.Sub(reserved)
	if op.Quantity.GreaterThan(available) {
		return OperationResult{}, &domain.InsufficientAvailabilityError{
			MaterialID:   m.ID,
			MaterialName: m.Name,
			Available:    available,
			Requested:    op.Quantity,
		}
	}
	ttl := op.TTL
	if ttl <= 0 {
		ttl = e.reserveTTL
	}
	if err := reservations.Create(&entity.Reservation{
		ID:         uuid.New().String(),
		MaterialID: m.ID,
		OrderID:    op.OrderID,
		Quantity:   op.Quantity,
		Status:     entity.ReservationActive,
		Reason:     op.Reason,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}); err != nil {
		return OperationResult{}, err
	}
	order := op.OrderID
	entry := auditEntry(op.Kind(), m.ID, op.Quantity, m.Quantity, m.Quantity, op.Reason, &order, nil, txID, now)
	entry.Metadata["expires_at"] = now.Add(ttl).Format(time.RFC3339)
	if err := audits.Create(entry); err != nil {
		return OperationResult{}, err
	}
	return OperationResult{MaterialID: m.ID, QuantityBefore: m.Quantity, QuantityAfter: m.Quantity, Op: op}, nil
}

func (e *TransactionExecutor) applyUnreserve(
	op Unreserve,
	now time.Time, txID string,
	materials repository.MaterialRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) (OperationResult, error) {
	if op.OrderID == "" {
		return OperationResult{}, domain.ErrInvalidInput
	}
	m, err := lockMaterial(materials, op.MaterialID)
	if err != nil {
		return OperationResult{}, err
	}
	held, err := reservations.ListActiveByMaterialOrder(m.ID, op.OrderID, now)
	if err != nil {
		return OperationResult{}, err
	}
	released := decimal.Zero
	for _, r := range held {
		if err := reservations.UpdateStatus(r.ID, entity.ReservationCancelled); err != nil {
			return OperationResult{}, err
		}
		released = released.Add(r.Quantity)
	}
	order := op.OrderID
	entry := auditEntry(op.Kind(), m.ID, released, m.Quantity, m.Quantity, "", &order, nil, txID, now)
	entry.Metadata["cancelled"] = fmt.Sprintf("%d", len(held))
	if err := audits.Create(entry); err != nil {
		return OperationResult{}, err
	}
	return OperationResult{MaterialID: m.ID, QuantityBefore: m.Quantity, QuantityAfter: m.Quantity, Op: op}, nil
}

func auditEntry(
	kind, materialID string,
	quantity, before, after decimal.Decimal,
	reason string,
	orderID, userID *string,
	txID string, now time.Time,
) *entity.AuditEntry {
	return &entity.AuditEntry{
		ID:             uuid.New().String(),
		Operation:      kind,
		MaterialID:     materialID,
		Quantity:       quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         reason,
		OrderID:        orderID,
		UserID:         userID,
		Metadata:       map[string]string{"transaction_id": txID},
		CreatedAt:      now,
	}
}
