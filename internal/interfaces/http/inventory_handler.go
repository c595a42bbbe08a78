package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/metrics"
)

// InventoryHandler maneja las peticiones HTTP de balances y movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, location_id, type (initial|received|adjusted|broken), quantity"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.RegisterAdjustment(c.Context(), inventory.AdjustmentInput{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		ActorID:    actorID,
		Notes:      in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	metrics.AdjustmentsTotal.WithLabelValues(in.Type).Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ajuste registrado"})
}

// GetBalance obtiene el balance de un producto en una ubicación.
// GET /api/inventory/balances/:productID/:locationID
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	productID := c.Params("productID")
	locationID := c.Params("locationID")
	bal, err := h.uc.GetBalance(c.Context(), productID, locationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBalanceResponse(bal))
}

// ListBalances lista los balances de una ubicación.
// GET /api/inventory/balances?location_id=...
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	locationID := c.Query("location_id")
	if locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "location_id requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	balances, err := h.uc.ListBalances(c.Context(), locationID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, toBalanceResponse(b))
	}
	return c.JSON(fiber.Map{
		"balances": out,
		"page":     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// DeleteBalance elimina una fila de balance en cero.
// DELETE /api/inventory/balances/:productID/:locationID
func (h *InventoryHandler) DeleteBalance(c *fiber.Ctx) error {
	productID := c.Params("productID")
	locationID := c.Params("locationID")
	if err := h.uc.DeleteBalance(c.Context(), productID, locationID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMovements lista movimientos por producto o por ubicación, con rango
// de fechas opcional (RFC3339).
// GET /api/inventory/movements?product_id=...|location_id=...&from=...&to=...
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	locationID := c.Query("location_id")
	if productID == "" && locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id o location_id requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	var movements []*entity.MovementRecord
	if productID != "" {
		movements, err = h.uc.ListMovementsByProduct(c.Context(), productID, from, to, page.Limit, page.Offset)
	} else {
		movements, err = h.uc.ListMovementsByLocation(c.Context(), locationID, from, to, page.Limit, page.Offset)
	}
	if err != nil {
		return writeError(c, err)
	}

	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// VerifyLedger verifica balance == suma de movimientos para una fila.
// POST /api/inventory/balances/:productID/:locationID/verify
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	productID := c.Params("productID")
	locationID := c.Params("locationID")
	if err := h.uc.VerifyLedger(c.Context(), productID, locationID); err != nil {
		metrics.LedgerVerificationsTotal.WithLabelValues("inconsistent").Inc()
		return writeError(c, err)
	}
	metrics.LedgerVerificationsTotal.WithLabelValues("consistent").Inc()
	return c.JSON(fiber.Map{"message": "libro consistente"})
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toBalanceResponse(b *entity.Balance) dto.BalanceResponse {
	resp := dto.BalanceResponse{
		ProductID:  b.ProductID,
		LocationID: b.LocationID,
		Quantity:   b.Quantity,
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func toMovementResponse(m *entity.MovementRecord) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		ReferenceID:      m.ReferenceID,
		ProductID:        m.ProductID,
		LocationID:       m.LocationID,
		Type:             m.Type,
		ChangeAmount:     m.ChangeAmount,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ActorID:          m.ActorID,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
	}
}
