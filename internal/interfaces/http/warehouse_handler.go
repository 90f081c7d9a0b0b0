package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/printshop-pro/internal/application/dto"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain"
)

// WarehouseHandler expone el ejecutor transaccional y la disponibilidad.
type WarehouseHandler struct {
	executor *warehouse.TransactionExecutor
	manager  *warehouse.ReservationManager
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(executor *warehouse.TransactionExecutor, manager *warehouse.ReservationManager) *WarehouseHandler {
	return &WarehouseHandler{executor: executor, manager: manager}
}

// toOperation traduce una operación del DTO al tipo del dominio.
func toOperation(in dto.StockOperationRequest, userID string) (warehouse.Operation, error) {
	if in.MaterialID == "" {
		return nil, fmt.Errorf("material_id es requerido")
	}
	user := &userID
	if userID == "" {
		user = nil
	}
	var orderID *string
	if in.OrderID != "" {
		orderID = &in.OrderID
	}
	switch in.Type {
	case warehouse.OpSpend, warehouse.OpAdd:
		if in.Quantity == nil || !in.Quantity.IsPositive() {
			return nil, fmt.Errorf("quantity debe ser positivo para %s", in.Type)
		}
		if in.Type == warehouse.OpSpend {
			return warehouse.Spend{MaterialID: in.MaterialID, Quantity: *in.Quantity, Reason: in.Reason, OrderID: orderID, UserID: user}, nil
		}
		return warehouse.Add{MaterialID: in.MaterialID, Quantity: *in.Quantity, Reason: in.Reason, OrderID: orderID, UserID: user}, nil
	case warehouse.OpAdjust:
		if in.NewQuantity == nil || in.NewQuantity.IsNegative() {
			return nil, fmt.Errorf("new_quantity debe ser >= 0 para adjust")
		}
		return warehouse.Adjust{MaterialID: in.MaterialID, NewQuantity: *in.NewQuantity, Reason: in.Reason, UserID: user}, nil
	case warehouse.OpReserve:
		if in.Quantity == nil || !in.Quantity.IsPositive() {
			return nil, fmt.Errorf("quantity debe ser positivo para reserve")
		}
		if in.OrderID == "" {
			return nil, fmt.Errorf("order_id es requerido para reserve")
		}
		return warehouse.Reserve{
			MaterialID: in.MaterialID,
			Quantity:   *in.Quantity,
			OrderID:    in.OrderID,
			Reason:     in.Reason,
			TTL:        time.Duration(in.TTLHours) * time.Hour,
		}, nil
	case warehouse.OpUnreserve:
		if in.OrderID == "" {
			return nil, fmt.Errorf("order_id es requerido para unreserve")
		}
		return warehouse.Unreserve{MaterialID: in.MaterialID, OrderID: in.OrderID}, nil
	default:
		return nil, fmt.Errorf("tipo de operación desconocido: %q", in.Type)
	}
}

// writeExecuteError mapea los errores del ejecutor a HTTP.
func writeExecuteError(c *fiber.Ctx, err error) error {
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stock.Error()})
	}
	var avail *domain.InsufficientAvailabilityError
	if errors.As(err, &avail) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_AVAILABILITY", Message: avail.Error()})
	}
	if errors.Is(err, domain.ErrMaterialNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "material no encontrado"})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toResultResponses(results []warehouse.OperationResult) []dto.OperationResultResponse {
	out := make([]dto.OperationResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, dto.OperationResultResponse{
			Type:           r.Op.Kind(),
			MaterialID:     r.MaterialID,
			QuantityBefore: r.QuantityBefore,
			QuantityAfter:  r.QuantityAfter,
		})
	}
	return out
}

// ExecuteTransaction godoc
// @Summary      Ejecutar operaciones de stock de forma atómica
// @Description  Aplica la lista ordenada (spend/add/adjust/reserve/unreserve) en una sola transacción; si una falla, ninguna se aplica.
// @Tags         warehouse
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExecuteTransactionRequest  true  "Operaciones en orden"
// @Success      200   {array}   dto.OperationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/warehouse/transactions [post]
func (h *WarehouseHandler) ExecuteTransaction(c *fiber.Ctx) error {
	var in dto.ExecuteTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Operations) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "operations no puede estar vacío"})
	}
	userID := GetUserID(c)
	ops := make([]warehouse.Operation, 0, len(in.Operations))
	for i, opIn := range in.Operations {
		op, err := toOperation(opIn, userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: fmt.Sprintf("operación %d: %s", i, err.Error()),
			})
		}
		ops = append(ops, op)
	}
	results, err := h.executor.Execute(c.Context(), ops)
	if err != nil {
		return writeExecuteError(c, err)
	}
	return c.JSON(toResultResponses(results))
}

// ReserveAndSpend godoc
// @Summary      Reservar y consumir en una sola transacción
// @Tags         warehouse
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "material_id, quantity, order_id"
// @Success      200   {array}   dto.OperationResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/warehouse/reserve-and-spend [post]
func (h *WarehouseHandler) ReserveAndSpend(c *fiber.Ctx) error {
	var in dto.StockOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.MaterialID == "" || in.OrderID == "" || in.Quantity == nil || !in.Quantity.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "material_id, order_id y quantity positivo son requeridos"})
	}
	userID := GetUserID(c)
	user := &userID
	if userID == "" {
		user = nil
	}
	results, err := h.executor.ReserveAndSpend(c.Context(), in.MaterialID, *in.Quantity,
		in.OrderID, in.Reason, user, time.Duration(in.TTLHours)*time.Hour)
	if err != nil {
		return writeExecuteError(c, err)
	}
	return c.JSON(toResultResponses(results))
}

// Availability godoc
// @Summary      Disponibilidad real de un material
// @Description  Cantidad actual menos reservas activas no vencidas.
// @Tags         warehouse
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del material"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouse/materials/{id}/availability [get]
func (h *WarehouseHandler) Availability(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	available, err := h.manager.Available(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMaterialNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "material no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"material_id": id, "available": available})
}

// ExpireReservations godoc
// @Summary      Expirar reservas vencidas ahora (barrido manual)
// @Tags         warehouse
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/warehouse/reservations/expire [post]
func (h *WarehouseHandler) ExpireReservations(c *fiber.Ctx) error {
	n, err := h.manager.ExpireStale(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"expired": n})
}
