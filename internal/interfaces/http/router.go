package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-pro/internal/application/catalog"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/returns"
	"github.com/tu-usuario/pos-pro/internal/application/sales"
)

// Roles conocidos por la API.
const (
	RoleAdmin   = "admin"
	RoleManager = "gerente"
	RoleCashier = "cajero"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
	CreateSale  *sales.CreateSaleUseCase
	Receipt     *sales.ReceiptUseCase
	ReturnsUC   *returns.UseCase
	CatalogUC   *catalog.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: productos y ubicaciones
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	products := protected.Group("/products")
	products.Post("/", RequireRole(RoleAdmin, RoleManager), catalogHandler.CreateProduct)
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/by-sku/:sku", catalogHandler.GetProductBySKU)
	products.Get("/:id", catalogHandler.GetProduct)

	locations := protected.Group("/locations")
	locations.Post("/", RequireRole(RoleAdmin, RoleManager), catalogHandler.CreateLocation)
	locations.Get("/", catalogHandler.ListLocations)
	locations.Get("/:id", catalogHandler.GetLocation)

	// Inventario: ajustes, balances, movimientos, verificación
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", RequireRole(RoleAdmin, RoleManager), inventoryHandler.RegisterAdjustment)
	invGroup.Get("/balances", inventoryHandler.ListBalances)
	invGroup.Get("/balances/:productID/:locationID", inventoryHandler.GetBalance)
	invGroup.Delete("/balances/:productID/:locationID", RequireRole(RoleAdmin), inventoryHandler.DeleteBalance)
	invGroup.Post("/balances/:productID/:locationID/verify", RequireRole(RoleAdmin, RoleManager), inventoryHandler.VerifyLedger)
	invGroup.Get("/movements", inventoryHandler.ListMovements)

	// Ventas
	saleHandler := NewSaleHandler(deps.CreateSale, deps.Receipt)
	salesGroup := protected.Group("/sales")
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.GetReceipt)

	// Devoluciones
	returnHandler := NewReturnHandler(deps.ReturnsUC)
	returnsGroup := protected.Group("/returns")
	returnsGroup.Post("/", returnHandler.Create)
	returnsGroup.Get("/", returnHandler.ListBySale)
	returnsGroup.Get("/:id", returnHandler.GetByID)
	returnsGroup.Patch("/:id/status", RequireRole(RoleAdmin, RoleManager), returnHandler.UpdateStatus)
}
