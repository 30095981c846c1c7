package tecopos

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tecopos-bridge/internal/model"
)

// Name identity on the platform is case-insensitive, trimmed equality.
// Resolution never creates a duplicate when a normalized match exists.

// normalizeName trims and lowercases a product or category name for
// matching.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// categoryRules maps name keywords to sales categories, evaluated in
// order with first match winning.
var categoryRules = []struct {
	keywords []string
	category string
}{
	{[]string{"cerveza", "ron", "vino"}, "Bebidas Alcohólicas"},
	{[]string{"refresco", "soda", "jugos"}, "Refrescos"},
}

// defaultCategory is the fallback when no keyword matches.
const defaultCategory = "Mercado"

// InferCategory derives a sales category name from a product name using
// case-insensitive keyword rules. Pure function of the normalized name.
func InferCategory(productName string) string {
	name := normalizeName(productName)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}
	return defaultCategory
}

// resolveProduct finds a product by normalized name or creates it.
// The search result order decides ties; the first exact match wins, and a
// found product is returned as-is even when its price differs from the
// request. categoryID is only applied on creation.
func (a *Adapter) resolveProduct(ctx context.Context, sess model.Session, name string, price float64, currency string, categoryID int) (int, error) {
	searchPath := pathProduct + "?search=" + url.QueryEscape(strings.TrimSpace(name))

	var list productList
	if err := a.client.Get(ctx, sess, searchPath, &list); err != nil {
		return 0, fmt.Errorf("no se pudo buscar el producto %q: %w", name, err)
	}

	want := normalizeName(name)
	for _, p := range list.Items {
		if normalizeName(p.Name) == want {
			return p.ID, nil
		}
	}

	payload := createProductRequest{
		Type:            "STOCK",
		Name:            strings.TrimSpace(name),
		Prices:          []priceInput{{Price: price, CodeCurrency: currency}},
		Images:          []int{},
		SalesCategoryID: categoryID,
	}

	var created Product
	if _, err := a.client.Post(ctx, sess, pathProduct, payload, &created); err != nil {
		return 0, fmt.Errorf("no se pudo crear el producto %q: %w", name, err)
	}
	if created.ID == 0 {
		return 0, model.NewUpstreamError(fmt.Sprintf("crear producto %q", name), 0, "response carried no product id")
	}

	// The platform's product search lags briefly behind writes; give it a
	// beat so a later lookup in the same batch sees this product.
	if a.createDelay > 0 {
		time.Sleep(a.createDelay)
	}

	return created.ID, nil
}

// resolveCategory finds a sales category by normalized name or creates it.
func (a *Adapter) resolveCategory(ctx context.Context, sess model.Session, name string) (int, error) {
	var list categoryList
	if err := a.client.Get(ctx, sess, pathSalesCategory, &list); err != nil {
		return 0, fmt.Errorf("no se pudo consultar las categorías: %w", err)
	}

	want := normalizeName(name)
	for _, c := range list.Items {
		if normalizeName(c.Name) == want {
			return c.ID, nil
		}
	}

	var created Category
	if _, err := a.client.Post(ctx, sess, pathSalesCategory, createCategoryRequest{Name: strings.TrimSpace(name)}, &created); err != nil {
		return 0, fmt.Errorf("no se pudo crear la categoría %q: %w", name, err)
	}
	if created.ID == 0 {
		return 0, model.NewUpstreamError(fmt.Sprintf("crear categoría %q", name), 0, "response carried no category id")
	}

	return created.ID, nil
}
