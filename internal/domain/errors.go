package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrMaterialNotFound         = errors.New("material no encontrado")
	ErrUserNotFound             = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists       = errors.New("el email ya está registrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrConflict                 = errors.New("conflicto con el estado actual")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrInsufficientAvailability = errors.New("disponibilidad insuficiente")
	ErrUnknownOperation         = errors.New("tipo de operación desconocido")
)

// InsufficientStockError indica que una salida dejaría la cantidad en negativo.
// Lleva los datos para que el mensaje enumere material, disponible y solicitado.
type InsufficientStockError struct {
	MaterialID   string
	MaterialName string
	Available    decimal.Decimal
	Requested    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %q: disponible %s, solicitado %s",
		e.MaterialName, e.Available.String(), e.Requested.String())
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InsufficientAvailabilityError indica que una reserva excede la cantidad
// disponible (cantidad actual menos reservas activas no vencidas).
type InsufficientAvailabilityError struct {
	MaterialID   string
	MaterialName string
	Available    decimal.Decimal
	Requested    decimal.Decimal
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("disponibilidad insuficiente de %q: disponible %s (descontando reservas activas), solicitado %s",
		e.MaterialName, e.Available.String(), e.Requested.String())
}

func (e *InsufficientAvailabilityError) Unwrap() error { return ErrInsufficientAvailability }

// TransactionAbortedError envuelve la causa de una transacción abortada.
// Cuando el caller lo observa, el rollback ya ocurrió: ningún efecto es visible.
type TransactionAbortedError struct {
	Cause error
}

func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("transacción abortada: %v", e.Cause)
}

func (e *TransactionAbortedError) Unwrap() error { return e.Cause }
