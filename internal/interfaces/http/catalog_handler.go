package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-pro/internal/application/catalog"
	"github.com/tu-usuario/pos-pro/internal/application/dto"
)

// CatalogHandler maneja las peticiones HTTP de productos y ubicaciones (protegido).
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateProduct registra un producto en el catálogo.
// POST /api/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.CreateProduct(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GetProduct obtiene un producto por ID, o por SKU con ?sku=.
// GET /api/products/:id  |  GET /api/products/by-sku?sku=...
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	p, err := h.uc.GetProduct(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// GetProductBySKU obtiene un producto por SKU.
// GET /api/products/by-sku/:sku
func (h *CatalogHandler) GetProductBySKU(c *fiber.Ctx) error {
	sku := c.Params("sku")
	if sku == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku requerido"})
	}
	p, err := h.uc.GetProductBySKU(c.Context(), sku)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// ListProducts lista productos paginados.
// GET /api/products
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListProducts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"products": list,
		"page":     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// CreateLocation registra una tienda/bodega.
// POST /api/locations
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	l, err := h.uc.CreateLocation(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

// GetLocation obtiene una ubicación por ID.
// GET /api/locations/:id
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	l, err := h.uc.GetLocation(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(l)
}

// ListLocations lista ubicaciones paginadas.
// GET /api/locations
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListLocations(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"locations": list,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
