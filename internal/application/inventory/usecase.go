package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// UseCase agrupa las operaciones de inventario fuera del flujo de venta:
// movimientos ad-hoc (initial, received, adjusted, broken), consultas de
// balance/movimientos, eliminación de balances en cero y verificación del
// libro contra sus movimientos.
type UseCase struct {
	txRunner  TxRunner
	ledger    *StockLedger
	balances  repository.BalanceRepository  // atado al pool, solo lecturas
	movements repository.MovementRepository // atado al pool, solo lecturas
	products  repository.ProductRepository
	locations repository.LocationRepository
	log       *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	ledger *StockLedger,
	balances repository.BalanceRepository,
	movements repository.MovementRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		balances:  balances,
		movements: movements,
		products:  products,
		locations: locations,
		log:       log,
	}
}

// AdjustmentInput entrada para un movimiento ad-hoc de stock.
type AdjustmentInput struct {
	ProductID  string
	LocationID string
	Type       string // initial | received | adjusted | broken
	Quantity   decimal.Decimal
	ActorID    string
	Notes      string
}

// validTypes de movimiento ad-hoc y el signo que admiten.
// initial/received: solo positivo. broken: solo positivo (se resta).
// adjusted: positivo o negativo.
func validAdjustmentQuantity(movType string, qty decimal.Decimal) bool {
	switch movType {
	case entity.MovementTypeInitial, entity.MovementTypeReceived, entity.MovementTypeBroken:
		return qty.GreaterThan(decimal.Zero)
	case entity.MovementTypeAdjusted:
		return !qty.IsZero()
	default:
		return false
	}
}

// RegisterAdjustment aplica un movimiento ad-hoc de forma transaccional:
// bloquea la fila, aplica el crédito/débito y escribe el movimiento.
// initial y received acreditan; broken debita; adjusted según signo.
func (uc *UseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) error {
	verr := &domain.ValidationError{}
	if in.ProductID == "" {
		verr.Add("product_id", "requerido")
	}
	if in.LocationID == "" {
		verr.Add("location_id", "requerido")
	}
	if !validAdjustmentQuantity(in.Type, in.Quantity) {
		verr.Add("quantity", "cantidad no válida para el tipo "+in.Type)
	}
	if verr.HasErrors() {
		return verr
	}

	product, err := uc.products.GetByID(in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	loc, err := uc.locations.GetByID(in.LocationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	meta := MovementMeta{
		Type:        in.Type,
		ReferenceID: uuid.New().String(),
		ActorID:     in.ActorID,
		Notes:       in.Notes,
		Now:         now,
	}

	return uc.txRunner.Run(ctx, func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		switch in.Type {
		case entity.MovementTypeInitial, entity.MovementTypeReceived:
			return uc.ledger.Credit(balRepo, movRepo, in.ProductID, in.LocationID, in.Quantity, meta)
		case entity.MovementTypeBroken:
			return uc.ledger.Debit(balRepo, movRepo, in.ProductID, in.LocationID, in.Quantity, meta)
		case entity.MovementTypeAdjusted:
			if in.Quantity.GreaterThan(decimal.Zero) {
				return uc.ledger.Credit(balRepo, movRepo, in.ProductID, in.LocationID, in.Quantity, meta)
			}
			return uc.ledger.Debit(balRepo, movRepo, in.ProductID, in.LocationID, in.Quantity.Neg(), meta)
		}
		return domain.ErrInvalidInput
	})
}

// GetBalance devuelve la cantidad actual (cero si la fila no existe).
func (uc *UseCase) GetBalance(ctx context.Context, productID, locationID string) (*entity.Balance, error) {
	return uc.balances.Get(productID, locationID)
}

// ListBalances lista balances de una ubicación.
func (uc *UseCase) ListBalances(ctx context.Context, locationID string, limit, offset int) ([]*entity.Balance, error) {
	return uc.balances.ListByLocation(locationID, limit, offset)
}

// ListMovementsByProduct lista el historial de auditoría de un producto.
func (uc *UseCase) ListMovementsByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return uc.movements.ListByProduct(productID, from, to, limit, offset)
}

// ListMovementsByLocation lista el historial de auditoría de una ubicación.
func (uc *UseCase) ListMovementsByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	return uc.movements.ListByLocation(locationID, from, to, limit, offset)
}

// DeleteBalance elimina el mapeo producto-ubicación. Solo se permite con
// cantidad en cero; el historial de movimientos de la clave permanece.
func (uc *UseCase) DeleteBalance(ctx context.Context, productID, locationID string) error {
	return uc.txRunner.Run(ctx, func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		bal, err := balRepo.GetForUpdate(productID, locationID)
		if err != nil {
			return err
		}
		if !bal.Quantity.IsZero() {
			return domain.ErrBalanceNotEmpty
		}
		return balRepo.Delete(productID, locationID)
	})
}

// VerifyLedger comprueba el invariante balance == Σ movimientos para la
// clave dada, bajo bloqueo para una foto estable. Una discrepancia es un
// ConsistencyError: se registra como alerta y nunca se corrige en silencio.
func (uc *UseCase) VerifyLedger(ctx context.Context, productID, locationID string) error {
	return uc.txRunner.Run(ctx, func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
	) error {
		bal, err := balRepo.GetForUpdate(productID, locationID)
		if err != nil {
			return err
		}
		sum, err := movRepo.SumByBalance(productID, locationID)
		if err != nil {
			return err
		}
		if !bal.Quantity.Equal(sum) {
			cerr := &domain.ConsistencyError{
				ProductID:   productID,
				LocationID:  locationID,
				Balance:     bal.Quantity,
				MovementSum: sum,
			}
			uc.log.Error().
				Str("product_id", productID).
				Str("location_id", locationID).
				Str("balance", bal.Quantity.String()).
				Str("movement_sum", sum.String()).
				Msg("inconsistencia del libro de inventario detectada")
			return cerr
		}
		return nil
	})
}
