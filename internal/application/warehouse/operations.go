package warehouse

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de operación (valor de Kind y del campo operation en auditoría).
const (
	OpSpend     = "spend"
	OpAdd       = "add"
	OpAdjust    = "adjust"
	OpReserve   = "reserve"
	OpUnreserve = "unreserve"
)

// Operation es el tipo suma sellado de operaciones del ejecutor. Cada variante
// lleva solo los campos que necesita; el despacho es por type switch, de modo
// que añadir una variante nueva es un cambio verificado en compilación.
type Operation interface {
	Kind() string
	isOperation()
}

// Spend descuenta cantidad de un material. Falla con InsufficientStock si
// dejaría la cantidad en negativo.
type Spend struct {
	MaterialID string
	Quantity   decimal.Decimal
	Reason     string
	OrderID    *string
	UserID     *string
}

// Add incrementa cantidad incondicionalmente (compras, devoluciones).
type Add struct {
	MaterialID string
	Quantity   decimal.Decimal
	Reason     string
	OrderID    *string
	UserID     *string
}

// Adjust fija la cantidad a un valor absoluto (corrección de inventario).
type Adjust struct {
	MaterialID  string
	NewQuantity decimal.Decimal
	Reason      string
	UserID      *string
}

// Reserve crea una retención temporal sin tocar cantidad. TTL cero usa el
// valor por defecto configurado del ejecutor.
type Reserve struct {
	MaterialID string
	Quantity   decimal.Decimal
	OrderID    string
	Reason     string
	TTL        time.Duration
}

// Unreserve cancela las reservas activas del par material/pedido.
// Sin reservas activas es un no-op exitoso.
type Unreserve struct {
	MaterialID string
	OrderID    string
}

func (Spend) Kind() string     { return OpSpend }
func (Add) Kind() string       { return OpAdd }
func (Adjust) Kind() string    { return OpAdjust }
func (Reserve) Kind() string   { return OpReserve }
func (Unreserve) Kind() string { return OpUnreserve }

func (Spend) isOperation()     {}
func (Add) isOperation()       {}
func (Adjust) isOperation()    {}
func (Reserve) isOperation()   {}
func (Unreserve) isOperation() {}

// OperationResult resultado por operación, en el mismo orden que la entrada.
type OperationResult struct {
	MaterialID     string
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Op             Operation
}
