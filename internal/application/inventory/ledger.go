package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// MovementMeta describe el movimiento de auditoría que acompaña a cada
// mutación de balance. Toda mutación escribe exactamente un MovementRecord
// en la misma transacción.
type MovementMeta struct {
	Type        string
	ReferenceID string // venta/devolución que originó el cambio
	ActorID     string // vacío = sistema
	Notes       string
	Now         time.Time
}

// StockLedger expone los primitivos débito/crédito sobre balances. Siempre
// opera sobre repos atados a una transacción; la fila se bloquea antes de
// decidir suficiencia y cada cambio queda emparejado con su movimiento.
type StockLedger struct{}

// NewStockLedger construye el servicio.
func NewStockLedger() *StockLedger { return &StockLedger{} }

// Debit bloquea la fila, verifica suficiencia y resta la cantidad.
// Falla con InsufficientStockError (disponible vs solicitado) si la cantidad
// supera el balance; en ese caso no se escribe nada.
func (l *StockLedger) Debit(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	productID, locationID string,
	amount decimal.Decimal,
	meta MovementMeta,
) error {
	bal, err := balRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return err
	}
	return l.DebitLocked(balRepo, movRepo, bal, amount, meta)
}

// DebitLocked resta sobre una fila ya bloqueada por el caller (el flujo de
// venta adquiere todos sus bloqueos en orden antes de debitar).
func (l *StockLedger) DebitLocked(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	bal *entity.Balance,
	amount decimal.Decimal,
	meta MovementMeta,
) error {
	if bal.Quantity.LessThan(amount) {
		return &domain.InsufficientStockError{Shortages: []domain.StockShortage{{
			ProductID:  bal.ProductID,
			LocationID: bal.LocationID,
			Available:  bal.Quantity,
			Requested:  amount,
		}}}
	}
	return l.apply(balRepo, movRepo, bal, amount.Neg(), meta)
}

// Credit bloquea (o crea) la fila y suma la cantidad. Siempre tiene éxito
// salvo error de infraestructura.
func (l *StockLedger) Credit(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	productID, locationID string,
	amount decimal.Decimal,
	meta MovementMeta,
) error {
	bal, err := balRepo.GetForUpdate(productID, locationID)
	if err != nil {
		return err
	}
	return l.CreditLocked(balRepo, movRepo, bal, amount, meta)
}

// CreditLocked suma sobre una fila ya bloqueada por el caller.
func (l *StockLedger) CreditLocked(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	bal *entity.Balance,
	amount decimal.Decimal,
	meta MovementMeta,
) error {
	return l.apply(balRepo, movRepo, bal, amount, meta)
}

// apply actualiza el balance y escribe el movimiento con cantidad
// anterior/nueva. changeAmount viene con signo.
func (l *StockLedger) apply(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	bal *entity.Balance,
	changeAmount decimal.Decimal,
	meta MovementMeta,
) error {
	prev := bal.Quantity
	next := prev.Add(changeAmount)

	bal.Quantity = next
	bal.UpdatedAt = meta.Now
	if err := balRepo.Upsert(bal); err != nil {
		return err
	}

	mov := &entity.MovementRecord{
		ID:               uuid.New().String(),
		ReferenceID:      meta.ReferenceID,
		ProductID:        bal.ProductID,
		LocationID:       bal.LocationID,
		Type:             meta.Type,
		ChangeAmount:     changeAmount,
		PreviousQuantity: prev,
		NewQuantity:      next,
		ActorID:          meta.ActorID,
		Notes:            meta.Notes,
		CreatedAt:        meta.Now,
	}
	return movRepo.Create(mov)
}
