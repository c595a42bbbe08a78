package dto

import "github.com/shopspring/decimal"

// AdjustmentRequest body para POST /api/inventory/adjustments.
// Type ∈ {initial, received, adjusted, broken}. Para adjusted la cantidad
// puede ser negativa; para el resto es positiva.
type AdjustmentRequest struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes,omitempty"`
}

// BalanceResponse balance actual de un producto en una ubicación.
type BalanceResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
}

// MovementResponse fila de auditoría del libro.
type MovementResponse struct {
	ID               string          `json:"id"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	ProductID        string          `json:"product_id"`
	LocationID       string          `json:"location_id"`
	Type             string          `json:"type"`
	ChangeAmount     decimal.Decimal `json:"change_amount"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	ActorID          string          `json:"actor_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        string          `json:"created_at"`
}
