package returns

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// UpdateStatus aplica una transición de estado a la devolución.
// PENDING→APPROVED→COMPLETED; PENDING→REJECTED.
//
// Efectos de stock en la misma unidad atómica que la transición:
//   - REFUND rechazado: débito compensatorio (return_debit) que revierte
//     exactamente las cantidades acreditadas al crearse. Si el stock
//     acreditado ya se vendió, la compensación fallaría en negativo: el
//     invariante de no-negatividad gana y la transición se rechaza con
//     InsufficientStockError.
//   - EXCHANGE completado: acredita las líneas devueltas y debita el
//     producto de cambio de las líneas que lo definen.
//   - EXCHANGE rechazado: sin compensación (no hubo cambio de stock).
func (uc *UseCase) UpdateStatus(ctx context.Context, returnID, newStatus, actorID string) error {
	switch newStatus {
	case entity.ReturnStatusApproved, entity.ReturnStatusRejected, entity.ReturnStatusCompleted:
	default:
		return (&domain.ValidationError{}).Add("status", "estado desconocido")
	}

	now := time.Now()
	finalBalances := make(map[ledger.BalanceKey]decimal.Decimal)

	err := uc.txRunner.RunReturn(ctx, func(
		balRepo repository.BalanceRepository,
		movRepo repository.MovementRepository,
		saleRepo repository.SaleRepository,
		retRepo repository.ReturnRepository,
	) error {
		ret, err := retRepo.GetByIDForUpdate(returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if err := ledger.ValidateTransition(ret.Status, newStatus); err != nil {
			return err
		}

		switch {
		case newStatus == entity.ReturnStatusRejected && ret.Type == entity.ReturnTypeRefund:
			if err := uc.compensateRefund(balRepo, movRepo, retRepo, ret, actorID, now, finalBalances); err != nil {
				return err
			}
		case newStatus == entity.ReturnStatusCompleted && ret.Type == entity.ReturnTypeExchange:
			if err := uc.resolveExchange(balRepo, movRepo, retRepo, ret, actorID, now, finalBalances); err != nil {
				return err
			}
		}

		return retRepo.UpdateStatus(returnID, newStatus)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("return_id", returnID).
		Str("status", newStatus).
		Msg("devolución transicionada")

	go uc.publishBalanceEvents(finalBalances)
	return nil
}

// compensateRefund revierte los créditos de un REFUND rechazado: un débito
// return_debit por línea, con las mismas cantidades acreditadas.
func (uc *UseCase) compensateRefund(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	retRepo repository.ReturnRepository,
	ret *entity.Return,
	actorID string,
	now time.Time,
	finalBalances map[ledger.BalanceKey]decimal.Decimal,
) error {
	lines, err := retRepo.GetLines(ret.ID)
	if err != nil {
		return err
	}
	keys := make([]ledger.BalanceKey, 0, len(lines))
	for _, rl := range lines {
		keys = append(keys, ledger.BalanceKey{ProductID: rl.ProductID, LocationID: rl.LocationID})
	}
	locked, err := inventory.LockBalances(balRepo, keys)
	if err != nil {
		return err
	}
	for _, rl := range lines {
		k := ledger.BalanceKey{ProductID: rl.ProductID, LocationID: rl.LocationID}
		if err := uc.ledger.DebitLocked(balRepo, movRepo, locked[k], rl.Quantity, inventory.MovementMeta{
			Type:        entity.MovementTypeReturnDebit,
			ReferenceID: ret.ID,
			ActorID:     actorID,
			Notes:       "reverso por devolución rechazada",
			Now:         now,
		}); err != nil {
			return err
		}
		finalBalances[k] = locked[k].Quantity
	}
	return nil
}

// resolveExchange aplica el stock diferido de un EXCHANGE al completarse:
// entra lo devuelto y sale el producto de cambio (cuando la línea lo define).
func (uc *UseCase) resolveExchange(
	balRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	retRepo repository.ReturnRepository,
	ret *entity.Return,
	actorID string,
	now time.Time,
	finalBalances map[ledger.BalanceKey]decimal.Decimal,
) error {
	lines, err := retRepo.GetLines(ret.ID)
	if err != nil {
		return err
	}
	var keys []ledger.BalanceKey
	for _, rl := range lines {
		keys = append(keys, ledger.BalanceKey{ProductID: rl.ProductID, LocationID: rl.LocationID})
		if rl.ExchangeProductID != "" {
			keys = append(keys, ledger.BalanceKey{ProductID: rl.ExchangeProductID, LocationID: rl.LocationID})
		}
	}
	locked, err := inventory.LockBalances(balRepo, keys)
	if err != nil {
		return err
	}
	for _, rl := range lines {
		in := ledger.BalanceKey{ProductID: rl.ProductID, LocationID: rl.LocationID}
		if err := uc.ledger.CreditLocked(balRepo, movRepo, locked[in], rl.Quantity, inventory.MovementMeta{
			Type:        entity.MovementTypeReturnCredit,
			ReferenceID: ret.ID,
			ActorID:     actorID,
			Notes:       "entrada por cambio",
			Now:         now,
		}); err != nil {
			return err
		}
		finalBalances[in] = locked[in].Quantity

		if rl.ExchangeProductID == "" {
			continue
		}
		out := ledger.BalanceKey{ProductID: rl.ExchangeProductID, LocationID: rl.LocationID}
		if err := uc.ledger.DebitLocked(balRepo, movRepo, locked[out], rl.Quantity, inventory.MovementMeta{
			Type:        entity.MovementTypeSale,
			ReferenceID: ret.ID,
			ActorID:     actorID,
			Notes:       "entrega por cambio",
			Now:         now,
		}); err != nil {
			return err
		}
		finalBalances[out] = locked[out].Quantity
	}
	return nil
}
