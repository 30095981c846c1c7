package service

import (
	"context"

	"tecopos-bridge/internal/model"
)

// Mock implements Service for testing.
// Each method can be configured via function fields.
type Mock struct {
	LoginFunc             func(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	CreateProductFunc     func(ctx context.Context, req *CreateProductRequest) (*CreateProductResult, error)
	MigrateCurrenciesFunc func(ctx context.Context, req *CurrencyMigrationRequest) (*CurrencyMigrationResult, error)
	SmartStockEntryFunc   func(ctx context.Context, req *StockEntryRequest) (*StockEntryResult, error)
}

// Login calls the configured LoginFunc or fails authentication.
func (m *Mock) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, model.NewAuthenticationError("credenciales inválidas")
}

// CreateProduct calls the configured CreateProductFunc or reports no session.
func (m *Mock) CreateProduct(ctx context.Context, req *CreateProductRequest) (*CreateProductResult, error) {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, req)
	}
	return nil, model.NewNotAuthenticatedError(req.Usuario)
}

// MigrateCurrencies calls the configured MigrateCurrenciesFunc or reports no session.
func (m *Mock) MigrateCurrencies(ctx context.Context, req *CurrencyMigrationRequest) (*CurrencyMigrationResult, error) {
	if m.MigrateCurrenciesFunc != nil {
		return m.MigrateCurrenciesFunc(ctx, req)
	}
	return nil, model.NewNotAuthenticatedError(req.Usuario)
}

// SmartStockEntry calls the configured SmartStockEntryFunc or reports no session.
func (m *Mock) SmartStockEntry(ctx context.Context, req *StockEntryRequest) (*StockEntryResult, error) {
	if m.SmartStockEntryFunc != nil {
		return m.SmartStockEntryFunc(ctx, req)
	}
	return nil, model.NewNotAuthenticatedError(req.Usuario)
}
