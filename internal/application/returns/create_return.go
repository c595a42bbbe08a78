package returns

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

// UseCase orquesta devoluciones: creación (con crédito optimista de stock en
// los REFUND) y transiciones de estado (con débito compensatorio cuando un
// REFUND es rechazado). Cada operación es una unidad atómica.
type UseCase struct {
	txRunner inventory.TxRunner
	ledger   *inventory.StockLedger
	sales    repository.SaleRepository   // atado al pool, lecturas
	returns  repository.ReturnRepository // atado al pool, lecturas
	products repository.ProductRepository
	notifier ports.Notifier
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner inventory.TxRunner,
	stockLedger *inventory.StockLedger,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
	products repository.ProductRepository,
	notifier ports.Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		ledger:   stockLedger,
		sales:    sales,
		returns:  returns,
		products: products,
		notifier: notifier,
		log:      log,
	}
}

func validCondition(c string) bool {
	return c == entity.ConditionPerfect || c == entity.ConditionGood || c == entity.ConditionDamaged
}

// CreateReturn valida contra la venta original, calcula reembolsos y
// persiste la devolución en PENDING. Si el tipo es REFUND, acredita el stock
// de cada línea en la misma transacción (crédito optimista); un EXCHANGE no
// toca stock al crearse.
func (uc *UseCase) CreateReturn(ctx context.Context, processedBy string, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	verr := &domain.ValidationError{}
	if in.SaleID == "" {
		verr.Add("sale_id", "requerido")
	}
	if in.Type != entity.ReturnTypeRefund && in.Type != entity.ReturnTypeExchange {
		verr.Add("type", "debe ser REFUND o EXCHANGE")
	}
	if len(in.Lines) == 0 {
		verr.Add("lines", "se requiere al menos una línea")
	}
	for i, line := range in.Lines {
		if line.SaleLineID == "" {
			verr.Add(fmt.Sprintf("lines[%d].sale_line_id", i), "requerido")
		}
		if !line.Quantity.GreaterThan(decimal.Zero) {
			verr.Add(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if !validCondition(line.Condition) {
			verr.Add(fmt.Sprintf("lines[%d].condition", i), "debe ser PERFECT, GOOD o DAMAGED")
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// 1) La venta existe y cada línea devuelta pertenece a ella.
	sale, err := uc.sales.GetByID(in.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	saleLines, err := uc.sales.GetLines(in.SaleID)
	if err != nil {
		return nil, err
	}
	saleLinesByID := make(map[string]*entity.SaleLine, len(saleLines))
	for _, sl := range saleLines {
		saleLinesByID[sl.ID] = sl
	}

	// 2) Cantidad devuelta restante por línea (devoluciones no rechazadas),
	// contando también líneas repetidas dentro de esta misma petición.
	alreadyReturned, err := uc.returns.ReturnedQuantityBySaleLine(in.SaleID)
	if err != nil {
		return nil, err
	}
	requested := make(map[string]decimal.Decimal, len(in.Lines))
	for i, line := range in.Lines {
		sl, ok := saleLinesByID[line.SaleLineID]
		if !ok {
			verr.Add(fmt.Sprintf("lines[%d].sale_line_id", i), "no pertenece a la venta")
			continue
		}
		requested[sl.ID] = requested[sl.ID].Add(line.Quantity)
		remaining := sl.Quantity.Sub(alreadyReturned[sl.ID])
		if requested[sl.ID].GreaterThan(remaining) {
			verr.Add(fmt.Sprintf("lines[%d].quantity", i),
				fmt.Sprintf("excede la cantidad devolvible restante (%s)", remaining.String()))
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// 3) Reembolso por línea y total.
	now := time.Now()
	ret := &entity.Return{
		ID:           uuid.New().String(),
		SaleID:       in.SaleID,
		ProcessedBy:  processedBy,
		Type:         in.Type,
		Status:       entity.ReturnStatusPending,
		RefundMethod: in.RefundMethod,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var retLines []*entity.ReturnLine
	total := decimal.Zero
	for _, line := range in.Lines {
		sl := saleLinesByID[line.SaleLineID]
		refund := ledger.RefundAmount(line.Quantity, sl.UnitPrice)
		total = total.Add(refund)
		retLines = append(retLines, &entity.ReturnLine{
			ID:                uuid.New().String(),
			ReturnID:          ret.ID,
			SaleLineID:        sl.ID,
			ProductID:         sl.ProductID,
			LocationID:        sale.LocationID,
			Quantity:          line.Quantity,
			Condition:         line.Condition,
			RefundAmount:      refund,
			ExchangeProductID: line.ExchangeProductID,
		})
	}
	ret.TotalRefundAmount = total

	finalBalances := make(map[ledger.BalanceKey]decimal.Decimal)

	// 4–6) Unidad atómica: cabecera + líneas, y créditos si es REFUND.
	err = uc.txRunner.RunReturn(ctx, func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
		saleRepo repository.SaleRepository,
		retRepo repository.ReturnRepository,
	) error {
		if err := retRepo.Create(ret); err != nil {
			return err
		}
		for _, rl := range retLines {
			if err := retRepo.CreateLine(rl); err != nil {
				return err
			}
		}
		if ret.Type != entity.ReturnTypeRefund {
			return nil
		}
		keys := make([]ledger.BalanceKey, 0, len(retLines))
		for _, rl := range retLines {
			keys = append(keys, ledger.BalanceKey{ProductID: rl.ProductID, LocationID: rl.LocationID})
		}
		locked, err := inventory.LockBalances(balRepo, keys)
		if err != nil {
			return err
		}
		for _, rl := range retLines {
			k := ledger.BalanceKey{ProductID: rl.ProductID, LocationID: rl.LocationID}
			if err := uc.ledger.CreditLocked(balRepo, movRepo, locked[k], rl.Quantity, inventory.MovementMeta{
				Type:        entity.MovementTypeReturnCredit,
				ReferenceID: ret.ID,
				ActorID:     processedBy,
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
		Str("return_id", ret.ID).
		Str("sale_id", ret.SaleID).
		Str("type", ret.Type).
		Str("total_refund", ret.TotalRefundAmount.String()).
		Msg("devolución registrada")

	go uc.publishBalanceEvents(finalBalances)

	return toReturnResponse(ret, retLines), nil
}

// publishBalanceEvents emite inventory_update por balance afectado.
func (uc *UseCase) publishBalanceEvents(finalBalances map[ledger.BalanceKey]decimal.Decimal) {
	if uc.notifier == nil || len(finalBalances) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for k, qty := range finalBalances {
		event := ports.Event{Type: ports.EventInventoryUpdate, Payload: map[string]any{
			"product_id":  k.ProductID,
			"location_id": k.LocationID,
			"quantity":    qty,
		}}
		if err := uc.notifier.Publish(ctx, event); err != nil {
			uc.log.Warn().Err(err).Str("event", event.Type).Msg("notificación descartada")
		}
	}
}

func toReturnResponse(ret *entity.Return, lines []*entity.ReturnLine) *dto.ReturnResponse {
	resp := &dto.ReturnResponse{
		ID:                ret.ID,
		SaleID:            ret.SaleID,
		ProcessedBy:       ret.ProcessedBy,
		Type:              ret.Type,
		Status:            ret.Status,
		RefundMethod:      ret.RefundMethod,
		TotalRefundAmount: ret.TotalRefundAmount,
		Notes:             ret.Notes,
		CreatedAt:         ret.CreatedAt.Format(time.RFC3339),
		Lines:             make([]dto.ReturnLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.ReturnLineResponse{
			ID:                l.ID,
			SaleLineID:        l.SaleLineID,
			ProductID:         l.ProductID,
			LocationID:        l.LocationID,
			Quantity:          l.Quantity,
			Condition:         l.Condition,
			RefundAmount:      l.RefundAmount,
			ExchangeProductID: l.ExchangeProductID,
		})
	}
	return resp
}

// GetReturn devuelve la devolución con sus líneas.
func (uc *UseCase) GetReturn(ctx context.Context, id string) (*dto.ReturnResponse, error) {
	ret, err := uc.returns.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.returns.GetLines(id)
	if err != nil {
		return nil, err
	}
	return toReturnResponse(ret, lines), nil
}

// ListBySale lista las devoluciones de una venta.
func (uc *UseCase) ListBySale(ctx context.Context, saleID string) ([]*dto.ReturnResponse, error) {
	rets, err := uc.returns.ListBySale(saleID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ReturnResponse, 0, len(rets))
	for _, r := range rets {
		lines, err := uc.returns.GetLines(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toReturnResponse(r, lines))
	}
	return out, nil
}
