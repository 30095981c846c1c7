package tecopos

// Wire types for the Tecopos administration API. Only the fields the
// bridge reads are declared; everything else passes through untouched.

// loginRequest is the credential payload for POST /security/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the bearer token issued on login.
type loginResponse struct {
	Token string `json:"token"`
}

// userResponse carries the business the logged-in user belongs to.
type userResponse struct {
	BusinessID int `json:"businessId"`
}

// Product is an upstream product as returned by the product list.
type Product struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Prices          []Price `json:"prices"`
	SalesCategoryID int     `json:"salesCategoryId,omitempty"`
}

// Price is one price entry of a product. PriceSystemID identifies the
// price system the entry belongs to; it is required for patching.
type Price struct {
	PriceSystemID *int    `json:"priceSystemId"`
	Price         float64 `json:"price"`
	CodeCurrency  string  `json:"codeCurrency"`
}

// productList is the envelope of GET /administration/product.
type productList struct {
	Items []Product `json:"items"`
}

// createProductRequest is the payload for POST /administration/product.
type createProductRequest struct {
	Type            string       `json:"type"`
	Name            string       `json:"name"`
	Prices          []priceInput `json:"prices"`
	Images          []int        `json:"images"`
	Cost            *float64     `json:"cost,omitempty"`
	Categories      []string     `json:"categories,omitempty"`
	SalesCategoryID int          `json:"salesCategoryId,omitempty"`
}

// priceInput is one price entry of a product creation payload.
type priceInput struct {
	Price        float64 `json:"price"`
	CodeCurrency string  `json:"codeCurrency"`
}

// patchPricesRequest rewrites price entries of an existing product.
// Entries not listed are left untouched by the platform.
type patchPricesRequest struct {
	Prices []patchPrice `json:"prices"`
}

// patchPrice is one rewritten price entry. SystemPriceID is sent as a
// string, matching what the admin frontend submits.
type patchPrice struct {
	SystemPriceID string  `json:"systemPriceId"`
	Price         float64 `json:"price"`
	CodeCurrency  string  `json:"codeCurrency"`
}

// Category is an upstream sales category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// categoryList is the envelope of GET /administration/salescategory.
type categoryList struct {
	Items []Category `json:"items"`
}

// createCategoryRequest is the payload for POST /administration/salescategory.
type createCategoryRequest struct {
	Name string `json:"name"`
}

// areaList is the envelope of GET /administration/area?type=STOCK.
type areaList struct {
	Items []area `json:"items"`
}

type area struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// bulkEntryRequest is the payload for POST /administration/movement/bulk/entry.
// Continue=false makes the platform reject the whole submission on a row
// failure instead of applying it partially.
type bulkEntryRequest struct {
	StockAreaID int         `json:"stockAreaId"`
	Products    []entryLine `json:"products"`
	Continue    bool        `json:"continue"`
}

// entryLine references a resolved product and the quantity entering stock.
type entryLine struct {
	ProductID int     `json:"productId"`
	Quantity  float64 `json:"quantity"`
}
