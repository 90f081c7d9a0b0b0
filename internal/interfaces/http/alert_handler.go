package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/printshop-pro/internal/application/dto"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/repository"
)

// AlertHandler expone las alertas de stock abiertas y su evaluación.
type AlertHandler struct {
	alerts    repository.StockAlertRepository
	evaluator *warehouse.StockAlertEvaluator
}

// NewAlertHandler construye el handler.
func NewAlertHandler(alerts repository.StockAlertRepository, evaluator *warehouse.StockAlertEvaluator) *AlertHandler {
	return &AlertHandler{alerts: alerts, evaluator: evaluator}
}

// ListOpen godoc
// @Summary      Listar alertas de stock abiertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(50)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.StockAlertResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) ListOpen(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	alerts, err := h.alerts.ListOpen(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.StockAlertResponse{
			ID:           a.ID,
			MaterialID:   a.MaterialID,
			MaterialName: a.MaterialName,
			Quantity:     a.Quantity,
			MinQuantity:  a.MinQuantity,
			Level:        a.Level,
			CreatedAt:    a.CreatedAt,
			UpdatedAt:    a.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Evaluate godoc
// @Summary      Forzar una evaluación de alertas ahora
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]interface{}
// @Router       /api/alerts/evaluate [post]
func (h *AlertHandler) Evaluate(c *fiber.Ctx) error {
	h.evaluator.EvaluateAll(c.Context())
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"evaluated": true})
}

// Resolve godoc
// @Summary      Marcar una alerta como resuelta
// @Tags         alerts
// @Security     Bearer
// @Param        id  path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/resolve [put]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.alerts.Resolve(id); err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "alerta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
