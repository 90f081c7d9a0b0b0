package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/printshop-pro/internal/application/dto"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
)

// DeductionHandler expone el descuento automático de materiales por pedido.
type DeductionHandler struct {
	uc *warehouse.AutoDeductionUseCase
}

// NewDeductionHandler construye el handler.
func NewDeductionHandler(uc *warehouse.AutoDeductionUseCase) *DeductionHandler {
	return &DeductionHandler{uc: uc}
}

func toOrderItems(items []dto.OrderItemRequest) []warehouse.OrderItem {
	out := make([]warehouse.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, warehouse.OrderItem{
			Category:    it.Category,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}
	return out
}

func toDeductionResponse(r *warehouse.DeductionResult) dto.DeductionResponse {
	resp := dto.DeductionResponse{Success: r.Success, Warnings: r.Warnings}
	for _, d := range r.Deducted {
		resp.Deducted = append(resp.Deducted, dto.DeductedMaterialResponse{
			MaterialID:   d.MaterialID,
			MaterialName: d.MaterialName,
			Quantity:     d.Quantity,
			Before:       d.Before,
			After:        d.After,
		})
	}
	for _, s := range r.Shortfall {
		resp.Errors = append(resp.Errors, dto.ShortfallResponse{
			MaterialID:   s.MaterialID,
			MaterialName: s.MaterialName,
			Available:    s.Available,
			Requested:    s.Requested,
		})
	}
	return resp
}

// Deduct godoc
// @Summary      Descontar materiales de un pedido
// @Description  Resuelve cada línea vía composición producto-material, agrega por material, pre-chequea todos los faltantes y solo entonces descuenta de forma atómica. Con faltantes responde 409 con la lista completa.
// @Tags         deduction
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Param        body     body  dto.DeductRequest  true  "Líneas del pedido"
// @Success      200      {object}  dto.DeductionResponse
// @Failure      409      {object}  dto.DeductionResponse
// @Router       /api/orders/{orderID}/deduction [post]
func (h *DeductionHandler) Deduct(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	var in dto.DeductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items no puede estar vacío"})
	}
	result, err := h.uc.DeductForOrder(c.Context(), orderID, toOrderItems(in.Items), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(toDeductionResponse(result))
}

// UpdateItem godoc
// @Summary      Ajustar el descuento al cambiar la cantidad de una línea
// @Description  Descuenta solo el delta positivo o devuelve el negativo.
// @Tags         deduction
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Param        body     body  dto.OrderItemRequest  true  "Línea con quantity nueva y previous_qty"
// @Success      200      {object}  dto.DeductionResponse
// @Router       /api/orders/{orderID}/deduction/item [put]
func (h *DeductionHandler) UpdateItem(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	var in dto.OrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item := warehouse.OrderItem{Category: in.Category, Description: in.Description, Quantity: in.Quantity}
	result, err := h.uc.UpdateOrderItem(c.Context(), orderID, item, in.PreviousQty, GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(toDeductionResponse(result))
}

// RemoveItem godoc
// @Summary      Devolver al stock lo consumido por una línea eliminada
// @Tags         deduction
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Param        body     body  dto.OrderItemRequest  true  "Línea eliminada con su cantidad"
// @Success      200      {object}  dto.DeductionResponse
// @Router       /api/orders/{orderID}/deduction/item [delete]
func (h *DeductionHandler) RemoveItem(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	var in dto.OrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item := warehouse.OrderItem{Category: in.Category, Description: in.Description, Quantity: in.Quantity}
	result, err := h.uc.RemoveOrderItem(c.Context(), orderID, item, GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toDeductionResponse(result))
}

// Cancel godoc
// @Summary      Revertir el efecto neto del pedido sobre el stock
// @Description  Idempotente: una segunda cancelación no cambia nada.
// @Tags         deduction
// @Security     Bearer
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Success      200      {object}  map[string]interface{}
// @Router       /api/orders/{orderID}/deduction [delete]
func (h *DeductionHandler) Cancel(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	if err := h.uc.CancelDeduction(c.Context(), orderID, GetUserID(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"order_id": orderID, "cancelled": true})
}

// History godoc
// @Summary      Movimientos del libro originados por el pedido
// @Tags         deduction
// @Security     Bearer
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Success      200      {array}  dto.StockMoveResponse
// @Router       /api/orders/{orderID}/deduction [get]
func (h *DeductionHandler) History(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	moves, err := h.uc.DeductionHistory(orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, dto.StockMoveResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			MaterialID:    m.MaterialID,
			Delta:         m.Delta,
			Reason:        m.Reason,
			OrderID:       m.OrderID,
			UserID:        m.UserID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return c.JSON(out)
}
