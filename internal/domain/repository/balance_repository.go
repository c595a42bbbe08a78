package repository

import "github.com/tu-usuario/pos-pro/internal/domain/entity"

// BalanceRepository define el puerto para consultar/actualizar balances por
// producto+ubicación. Las mutaciones solo ocurren dentro de transacciones.
type BalanceRepository interface {
	// Get devuelve el balance; si no existe la fila, cantidad cero.
	Get(productID, locationID string) (*entity.Balance, error)
	// GetForUpdate bloquea la fila para escritura (SELECT FOR UPDATE).
	// Devuelve ErrLockTimeout si expira la espera del bloqueo.
	GetForUpdate(productID, locationID string) (*entity.Balance, error)
	Upsert(balance *entity.Balance) error
	// Delete elimina la fila. Solo se invoca con cantidad en cero.
	Delete(productID, locationID string) error
	ListByLocation(locationID string, limit, offset int) ([]*entity.Balance, error)
}
