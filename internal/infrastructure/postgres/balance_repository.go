package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de balances. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el balance actual de un producto en una ubicación.
func (r *BalanceRepo) Get(productID, locationID string) (*entity.Balance, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM balances WHERE product_id = $1 AND location_id = $2`
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate obtiene el balance y bloquea la fila (SELECT FOR UPDATE).
// Si la fila no existe se inserta en cero primero: así el bloqueo es real
// también para productos sin historial y dos ventas concurrentes sobre un
// balance recién creado se serializan igual que sobre uno existente.
func (r *BalanceRepo) GetForUpdate(productID, locationID string) (*entity.Balance, error) {
	insert := `
		INSERT INTO balances (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, productID, locationID); err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}

	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM balances WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// Upsert inserta o actualiza la cantidad del balance (por producto y ubicación).
func (r *BalanceRepo) Upsert(balance *entity.Balance) error {
	query := `
		INSERT INTO balances (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, balance.ProductID, balance.LocationID, balance.Quantity)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// Delete elimina la fila de balance. El caso de uso garantiza cantidad cero.
func (r *BalanceRepo) Delete(productID, locationID string) error {
	query := `DELETE FROM balances WHERE product_id = $1 AND location_id = $2`
	tag, err := r.q.Exec(context.Background(), query, productID, locationID)
	if err != nil {
		return fmt.Errorf("delete balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByLocation lista los balances de una ubicación, paginados.
func (r *BalanceRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.Balance, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM balances WHERE location_id = $1
		ORDER BY product_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []*entity.Balance
	for rows.Next() {
		var b entity.Balance
		if err := rows.Scan(&b.ProductID, &b.LocationID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances = append(balances, &b)
	}
	return balances, rows.Err()
}
