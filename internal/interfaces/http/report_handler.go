package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/printshop-pro/internal/application/dto"
	"github.com/tu-usuario/printshop-pro/internal/application/warehouse"
	"github.com/tu-usuario/printshop-pro/internal/domain"
	"github.com/tu-usuario/printshop-pro/internal/domain/entity"
)

// ReportHandler expone las consultas de solo lectura sobre el libro.
type ReportHandler struct {
	uc *warehouse.ReportingUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *warehouse.ReportingUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// parseTimeQuery acepta RFC3339 o fecha simple (2006-01-02).
func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q (use RFC3339 o YYYY-MM-DD)", raw)
	}
	return &t, nil
}

// periodFromQuery devuelve from/to con defaults últimos 30 días.
func periodFromQuery(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := time.Now()
	if to == nil {
		to = &now
	}
	if from == nil {
		f := to.AddDate(0, 0, -30)
		from = &f
	}
	return *from, *to, nil
}

func toMoveResponses(moves []*entity.StockMove) []dto.StockMoveResponse {
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
	return out
}

// LedgerByMaterial godoc
// @Summary      Historial de movimientos de un material
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del material"
// @Param        from    query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}   dto.StockMoveResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/reports/ledger/materials/{id} [get]
func (h *ReportHandler) LedgerByMaterial(c *fiber.Ctx) error {
	id := c.Params("id")
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	moves, err := h.uc.LedgerByMaterial(id, from, to, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrMaterialNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "material no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toMoveResponses(moves))
}

// LedgerByUser godoc
// @Summary      Historial de movimientos registrados por un usuario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del usuario"
// @Param        from    query  string  false  "Desde"
// @Param        to      query  string  false  "Hasta"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.StockMoveResponse
// @Router       /api/reports/ledger/users/{id} [get]
func (h *ReportHandler) LedgerByUser(c *fiber.Ctx) error {
	id := c.Params("id")
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	moves, err := h.uc.LedgerByUser(id, from, to, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toMoveResponses(moves))
}

// SpentInPeriod godoc
// @Summary      Consumo total de un material en el período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del material"
// @Param        from  query  string  false  "Desde (default: hace 30 días)"
// @Param        to    query  string  false  "Hasta (default: ahora)"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/reports/consumption/materials/{id} [get]
func (h *ReportHandler) SpentInPeriod(c *fiber.Ctx) error {
	id := c.Params("id")
	from, to, err := periodFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	total, err := h.uc.SpentInPeriod(id, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"material_id": id, "from": from, "to": to, "total_spent": total})
}

// TopConsumption godoc
// @Summary      Materiales más consumidos del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  false  "Desde (default: hace 30 días)"
// @Param        to     query  string  false  "Hasta (default: ahora)"
// @Param        limit  query  int     false  "Límite"  default(10)
// @Success      200    {array}  dto.ConsumptionRowResponse
// @Router       /api/reports/consumption/top [get]
func (h *ReportHandler) TopConsumption(c *fiber.Ctx) error {
	from, to, err := periodFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	rows, err := h.uc.TopConsumption(from, to, c.QueryInt("limit", 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ConsumptionRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ConsumptionRowResponse{
			MaterialID:   r.MaterialID,
			MaterialName: r.MaterialName,
			Unit:         r.Unit,
			TotalSpent:   r.TotalSpent,
		})
	}
	return c.JSON(out)
}

// SuggestedReorders godoc
// @Summary      Sugerencias de recompra para materiales bajo mínimo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReorderSuggestionResponse
// @Router       /api/reports/reorders [get]
func (h *ReportHandler) SuggestedReorders(c *fiber.Ctx) error {
	suggestions, err := h.uc.SuggestedReorders()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ReorderSuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, dto.ReorderSuggestionResponse{
			MaterialID:    s.MaterialID,
			MaterialName:  s.MaterialName,
			Unit:          s.Unit,
			CurrentStock:  s.CurrentStock,
			MinQuantity:   s.MinQuantity,
			IdealStock:    s.IdealStock,
			SuggestedQty:  s.SuggestedQty,
			EstimatedCost: s.EstimatedCost,
			SupplierName:  s.SupplierName,
		})
	}
	return c.JSON(out)
}

// ConsumptionPDF godoc
// @Summary      Reporte de consumo del período en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        from   query  string  false  "Desde (default: hace 30 días)"
// @Param        to     query  string  false  "Hasta (default: ahora)"
// @Param        limit  query  int     false  "Límite"  default(20)
// @Success      200    {file}  byte
// @Router       /api/reports/consumption/pdf [get]
func (h *ReportHandler) ConsumptionPDF(c *fiber.Ctx) error {
	from, to, err := periodFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	pdf, err := h.uc.ConsumptionReportPDF(c.Context(), from, to, c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="consumo.pdf"`)
	return c.Send(pdf)
}
