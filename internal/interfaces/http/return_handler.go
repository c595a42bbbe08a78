package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/returns"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/metrics"
)

// ReturnHandler maneja las peticiones HTTP de devoluciones (protegido).
type ReturnHandler struct {
	uc *returns.UseCase
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.UseCase) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

// Create godoc
// @Summary      Crear una devolución sobre una venta
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "sale_id, type (REFUND|EXCHANGE), lines (sale_line_id, quantity, condition)"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	processedBy := GetUserID(c)
	if processedBy == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ret, err := h.uc.CreateReturn(c.Context(), processedBy, in)
	if err != nil {
		return writeError(c, err)
	}
	metrics.ReturnsTotal.WithLabelValues(ret.Type).Inc()
	return c.Status(fiber.StatusCreated).JSON(ret)
}

// UpdateStatus aplica una transición de estado a la devolución.
// PATCH /api/returns/:id/status
func (h *ReturnHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.UpdateReturnStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateStatus(c.Context(), id, in.Status, actorID); err != nil {
		return writeError(c, err)
	}
	metrics.ReturnTransitionsTotal.WithLabelValues(in.Status).Inc()
	ret, err := h.uc.GetReturn(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ret)
}

// GetByID obtiene una devolución con sus líneas.
// GET /api/returns/:id
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	ret, err := h.uc.GetReturn(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ret)
}

// ListBySale lista las devoluciones de una venta.
// GET /api/returns?sale_id=...
func (h *ReturnHandler) ListBySale(c *fiber.Ctx) error {
	saleID := c.Query("sale_id")
	if saleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sale_id requerido"})
	}
	list, err := h.uc.ListBySale(c.Context(), saleID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"returns": list})
}
