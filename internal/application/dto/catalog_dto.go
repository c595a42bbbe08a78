package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta mínima de producto en el catálogo.
// Attributes es opaco: se almacena y devuelve tal cual, sin interpretarse.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// ProductResponse producto de catálogo.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// CreateLocationRequest alta de tienda/bodega.
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// LocationResponse ubicación.
type LocationResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
