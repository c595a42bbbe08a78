package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/ports"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// CreateSaleUseCase crea una venta y descuenta el stock en una sola
// transacción. Protocolo: validar líneas → bloquear balances en orden
// determinista → releer y verificar suficiencia → persistir venta + líneas +
// débitos + movimientos como unidad atómica. Cualquier fallo después de
// adquirir bloqueos revierte todo.
type CreateSaleUseCase struct {
	txRunner  inventory.TxRunner
	ledger    *inventory.StockLedger
	products  repository.ProductRepository
	locations repository.LocationRepository
	sales     repository.SaleRepository   // atado al pool, lecturas
	returns   repository.ReturnRepository // atado al pool, estado derivado
	notifier  ports.Notifier
	log       *logger.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner inventory.TxRunner,
	stockLedger *inventory.StockLedger,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
	notifier ports.Notifier,
	log *logger.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:  txRunner,
		ledger:    stockLedger,
		products:  products,
		locations: locations,
		sales:     sales,
		returns:   returns,
		notifier:  notifier,
		log:       log,
	}
}

// CreateSale ejecuta el protocolo completo de venta. cashierID proviene del
// token del cajero y queda como ActorID en cada movimiento.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, cashierID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	// 1) Validación estructural campo a campo, antes de tocar almacenamiento.
	verr := &domain.ValidationError{}
	if in.LocationID == "" {
		verr.Add("location_id", "requerido")
	}
	if len(in.Lines) == 0 {
		verr.Add("lines", "se requiere al menos una línea")
	}
	for i, line := range in.Lines {
		if line.ProductID == "" {
			verr.Add(fmt.Sprintf("lines[%d].product_id", i), "requerido")
		}
		if !line.Quantity.GreaterThan(decimal.Zero) {
			verr.Add(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if line.UnitPrice.LessThan(decimal.Zero) {
			verr.Add(fmt.Sprintf("lines[%d].unit_price", i), "no puede ser negativo")
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// Resolver ubicación y productos (catálogo, solo lectura).
	loc, err := uc.locations.GetByID(in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	productsByID := make(map[string]*entity.Product, len(in.Lines))
	for i := range in.Lines {
		line := &in.Lines[i]
		if _, ok := productsByID[line.ProductID]; ok {
			continue
		}
		product, err := uc.products.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		productsByID[line.ProductID] = product
	}
	// Precio de catálogo cuando la línea no trae precio; nunca cero.
	for i := range in.Lines {
		line := &in.Lines[i]
		if line.UnitPrice.IsZero() {
			line.UnitPrice = productsByID[line.ProductID].Price
		}
		if !line.UnitPrice.GreaterThan(decimal.Zero) {
			verr.Add(fmt.Sprintf("lines[%d].unit_price", i), "debe ser mayor que cero")
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// 2) Subtotal y descuento (percentage 0–100 o amount con tope).
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		subtotal = subtotal.Add(line.Quantity.Mul(line.UnitPrice))
	}
	discountType := ""
	discountValue := decimal.Zero
	if in.Discount != nil {
		discountType = in.Discount.Type
		discountValue = in.Discount.Value
	}
	discountAmount, err := ledger.DiscountAmount(subtotal, discountType, discountValue)
	if err != nil {
		return nil, (&domain.ValidationError{}).Add("discount", "tipo o valor de descuento inválido")
	}
	total := subtotal.Sub(discountAmount)

	now := time.Now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		LocationID:     in.LocationID,
		CashierID:      cashierID,
		Subtotal:       subtotal,
		DiscountType:   discountType,
		DiscountValue:  discountValue,
		DiscountAmount: discountAmount,
		Total:          total,
		CreatedAt:      now,
	}

	// Demanda agregada por clave: dos líneas del mismo producto compiten por
	// el mismo balance y se verifican juntas.
	demand := make(map[ledger.BalanceKey]decimal.Decimal, len(in.Lines))
	keys := make([]ledger.BalanceKey, 0, len(in.Lines))
	for _, line := range in.Lines {
		k := ledger.BalanceKey{ProductID: line.ProductID, LocationID: in.LocationID}
		if _, ok := demand[k]; !ok {
			keys = append(keys, k)
		}
		demand[k] = demand[k].Add(line.Quantity)
	}

	var saleLines []*entity.SaleLine
	finalBalances := make(map[ledger.BalanceKey]decimal.Decimal, len(keys))

	// 3–6) Unidad atómica: bloqueos ordenados, releer, verificar, persistir.
	err = uc.txRunner.RunSale(ctx, func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		locked, err := inventory.LockBalances(balRepo, keys)
		if err != nil {
			return err
		}

		// Releer bajo bloqueo: si cualquier clave es insuficiente se aborta
		// todo con la lista completa de faltantes. Nunca aplicación parcial.
		var shortages []domain.StockShortage
		for _, k := range ledger.LockOrder(keys) {
			bal := locked[k]
			if bal.Quantity.LessThan(demand[k]) {
				shortages = append(shortages, domain.StockShortage{
					ProductID:  k.ProductID,
					LocationID: k.LocationID,
					Available:  bal.Quantity,
					Requested:  demand[k],
				})
			}
		}
		if len(shortages) > 0 {
			return &domain.InsufficientStockError{Shortages: shortages}
		}

		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, line := range in.Lines {
			saleLine := &entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				LineTotal: line.Quantity.Mul(line.UnitPrice),
			}
			if err := saleRepo.CreateLine(saleLine); err != nil {
				return err
			}
			saleLines = append(saleLines, saleLine)

			// Un débito + un movimiento (sale, -cantidad) por línea.
			k := ledger.BalanceKey{ProductID: line.ProductID, LocationID: in.LocationID}
			if err := uc.ledger.DebitLocked(balRepo, movRepo, locked[k], line.Quantity, inventory.MovementMeta{
				Type:        entity.MovementTypeSale,
				ReferenceID: sale.ID,
				ActorID:     cashierID,
				Now:         now,
			}); err != nil {
				return err
			}
			finalBalances[k] = locked[k].Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("location_id", sale.LocationID).
		Str("total", sale.Total.String()).
		Int("lines", len(saleLines)).
		Msg("venta confirmada")

	// Notificaciones post-commit: best-effort, nunca afectan la transacción.
	go uc.publishSaleEvents(sale, saleLines, productsByID, finalBalances)

	return toSaleResponse(sale, saleLines, entity.SaleStatusCompleted), nil
}

// publishSaleEvents emite new_sale, inventory_update por balance afectado y
// low_stock_alert cuando el nuevo balance queda en o bajo el punto de reorden.
func (uc *CreateSaleUseCase) publishSaleEvents(
	sale *entity.Sale,
	lines []*entity.SaleLine,
	productsByID map[string]*entity.Product,
	finalBalances map[ledger.BalanceKey]decimal.Decimal,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uc.publish(ctx, ports.Event{Type: ports.EventNewSale, Payload: map[string]any{
		"sale_id":     sale.ID,
		"location_id": sale.LocationID,
		"total":       sale.Total,
		"lines":       len(lines),
	}})
	for k, qty := range finalBalances {
		uc.publish(ctx, ports.Event{Type: ports.EventInventoryUpdate, Payload: map[string]any{
			"product_id":  k.ProductID,
			"location_id": k.LocationID,
			"quantity":    qty,
		}})
		product := productsByID[k.ProductID]
		if product != nil && product.ReorderPoint.GreaterThan(decimal.Zero) && qty.LessThanOrEqual(product.ReorderPoint) {
			uc.publish(ctx, ports.Event{Type: ports.EventLowStockAlert, Payload: map[string]any{
				"product_id":    k.ProductID,
				"location_id":   k.LocationID,
				"quantity":      qty,
				"reorder_point": product.ReorderPoint,
			}})
		}
	}
}

func (uc *CreateSaleUseCase) publish(ctx context.Context, event ports.Event) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Publish(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("event", event.Type).Msg("notificación descartada")
	}
}

func toSaleResponse(sale *entity.Sale, lines []*entity.SaleLine, status string) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             sale.ID,
		CustomerName:   sale.CustomerName,
		CustomerPhone:  sale.CustomerPhone,
		LocationID:     sale.LocationID,
		CashierID:      sale.CashierID,
		Subtotal:       sale.Subtotal,
		DiscountType:   sale.DiscountType,
		DiscountValue:  sale.DiscountValue,
		DiscountAmount: sale.DiscountAmount,
		Total:          sale.Total,
		Status:         status,
		CreatedAt:      sale.CreatedAt.Format(time.RFC3339),
		Lines:          make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return resp
}

// GetSale devuelve la venta con su estado derivado de las devoluciones no
// rechazadas (completed, partially_returned, returned).
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.sales.GetLines(id)
	if err != nil {
		return nil, err
	}
	returned, err := uc.returns.ReturnedQuantityBySaleLine(id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, lines, ledger.SaleStatus(lines, returned)), nil
}

// ListSales lista las ventas de una ubicación.
func (uc *CreateSaleUseCase) ListSales(ctx context.Context, locationID string, limit, offset int) ([]*dto.SaleResponse, error) {
	sales, err := uc.sales.ListByLocation(locationID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		lines, err := uc.sales.GetLines(s.ID)
		if err != nil {
			return nil, err
		}
		returned, err := uc.returns.ReturnedQuantityBySaleLine(s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toSaleResponse(s, lines, ledger.SaleStatus(lines, returned)))
	}
	return out, nil
}
