// Package model defines the domain types shared across the bridge and the
// structured error taxonomy for API responses.
package model

// Session is the per-user cached credential and business context obtained
// from a successful Tecopos login. Held only in process memory; all of the
// durable state lives upstream.
type Session struct {
	UserID     string `json:"usuario"`
	Token      string `json:"token"`
	BusinessID int    `json:"businessId"`
	Region     string `json:"region"`
}

// StockArea is an upstream warehouse/location entity. Read-only to the
// bridge; used to let a caller pick a destination for stock entry.
type StockArea struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PriceChange is one price entry of a product that a currency migration
// would rewrite. Only the currency code changes; the numeric price passes
// through untouched.
type PriceChange struct {
	SystemPriceID string  `json:"systemPriceId"`
	Price         float64 `json:"price"`
	CodeCurrency  string  `json:"codeCurrency"`
}

// ProductChange groups the pending price changes of one product.
// Computed fresh from live upstream data on every migration call and
// never persisted between preview and confirm.
type ProductChange struct {
	ProductID int           `json:"id"`
	Name      string        `json:"nombre"`
	Changes   []PriceChange `json:"cambios"`
}
