package inventory

import (
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/ledger"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// LockBalances adquiere los bloqueos de fila (SELECT FOR UPDATE) de todas
// las claves referenciadas, siempre en orden ascendente (producto, ubicación).
// El orden total impide que dos transacciones concurrentes formen un ciclo
// de espera; el alcance se limita a las filas tocadas, nunca a la tabla.
// Una espera que supere el lock_timeout de la transacción se propaga como
// ErrLockTimeout (reintentable).
func LockBalances(
	balRepo repository.BalanceRepository,
	keys []ledger.BalanceKey,
) (map[ledger.BalanceKey]*entity.Balance, error) {
	ordered := ledger.LockOrder(keys)
	locked := make(map[ledger.BalanceKey]*entity.Balance, len(ordered))
	for _, k := range ordered {
		bal, err := balRepo.GetForUpdate(k.ProductID, k.LocationID)
		if err != nil {
			return nil, err
		}
		locked[k] = bal
	}
	return locked, nil
}
