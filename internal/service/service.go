// Package service defines the operations the bridge exposes over its
// transports. The Tecopos adapter provides the real implementation; tests
// use the function-field Mock.
package service

import (
	"context"
	"encoding/json"

	"tecopos-bridge/internal/model"
)

// Service abstracts the bridge operations behind one interface so the HTTP
// and MCP transports can share an implementation and tests can stub it.
//
// Every method issues its upstream calls strictly sequentially; a failure
// aborts the flow and is surfaced as a *model.APIError. The only exception
// is the per-product patch loop of MigrateCurrencies, which isolates
// failures per product.
type Service interface {
	// Login authenticates against Tecopos, resolves the business
	// identifier, and stores the session for the user. A failed login
	// leaves any prior session for that user untouched.
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)

	// CreateProduct creates one product with the given price/currency.
	// With ResolveCategories set, category names are resolved
	// (find-or-create) before the product is created.
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*CreateProductResult, error)

	// MigrateCurrencies rewrites the currency code of matching price
	// entries across the whole catalog. Without Confirmar it is a
	// read-only preview. Confirmation recomputes the change-set from
	// live upstream data; the preview is never stored.
	MigrateCurrencies(ctx context.Context, req *CurrencyMigrationRequest) (*CurrencyMigrationResult, error)

	// SmartStockEntry resolves each line's product (find-or-create,
	// optionally with category inference) and submits one bulk stock-in
	// movement. With no stock area chosen it only returns the available
	// areas as a selection prompt.
	SmartStockEntry(ctx context.Context, req *StockEntryRequest) (*StockEntryResult, error)
}

// LoginRequest carries the credentials for a Tecopos login.
// Region defaults to the platform's default region when empty.
type LoginRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
	Region   string `json:"region,omitempty"`
}

// LoginResult reports the resolved business identifier.
type LoginResult struct {
	BusinessID int `json:"businessid"`
}

// CreateProductRequest describes one product to create.
type CreateProductRequest struct {
	Usuario    string   `json:"usuario"`
	Nombre     string   `json:"nombre"`
	Precio     float64  `json:"precio"`
	Costo      *float64 `json:"costo,omitempty"`
	Moneda     string   `json:"moneda,omitempty"`
	Tipo       string   `json:"tipo,omitempty"`
	Categorias []string `json:"categorias,omitempty"`

	// ResolveCategories switches on find-or-create resolution of the
	// category names. Set per route, not by the caller.
	ResolveCategories bool `json:"-"`
}

// CreateProductResult echoes the upstream creation response.
type CreateProductResult struct {
	Respuesta json.RawMessage `json:"respuesta"`
}

// CurrencyMigrationRequest describes a bulk currency rewrite.
type CurrencyMigrationRequest struct {
	Usuario      string `json:"usuario"`
	MonedaActual string `json:"moneda_actual"`
	NuevaMoneda  string `json:"nueva_moneda"`
	Confirmar    bool   `json:"confirmar,omitempty"`
	ForzarTodos  bool   `json:"forzar_todos,omitempty"`
}

// CurrencyMigrationResult is either a preview (Confirmed false, Pending
// populated) or the outcome of a confirmed run (Updated populated).
type CurrencyMigrationResult struct {
	Confirmed bool
	Pending   []model.ProductChange
	Updated   []string
}

// StockEntryLine is one product line of a smart stock entry.
type StockEntryLine struct {
	Nombre   string  `json:"nombre"`
	Cantidad float64 `json:"cantidad"`
	Precio   float64 `json:"precio"`
	Moneda   string  `json:"moneda,omitempty"`
}

// StockEntryRequest describes a smart stock entry. A zero StockAreaID
// means no area has been chosen yet and triggers the selection prompt.
type StockEntryRequest struct {
	Usuario     string           `json:"usuario"`
	StockAreaID int              `json:"stockAreaId,omitempty"`
	Productos   []StockEntryLine `json:"productos"`
}

// StockEntryResult is either an area-selection prompt (Areas non-nil) or
// the processed outcome.
type StockEntryResult struct {
	Areas       []model.StockArea
	Procesados  []string
	StockAreaID int
}
