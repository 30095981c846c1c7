package tecopos

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/service"
)

// MigrateCurrencies lists the whole catalog, computes the price entries
// whose currency matches the source, and either returns that change-set
// as a dry-run preview or patches each affected product.
//
// The change-set is recomputed from live upstream data on every call,
// including the confirming one; nothing is stored between preview and
// confirm. A failed patch is logged and skipped, so one broken product
// does not abort the rest.
func (a *Adapter) MigrateCurrencies(ctx context.Context, req *service.CurrencyMigrationRequest) (*service.CurrencyMigrationResult, error) {
	sess, err := a.sessionFor(req.Usuario)
	if err != nil {
		return nil, err
	}
	if req.MonedaActual == "" || req.NuevaMoneda == "" {
		return nil, model.NewValidationError("moneda", "moneda_actual y nueva_moneda son requeridas")
	}

	var list productList
	if err := a.client.Get(ctx, sess, pathProduct, &list); err != nil {
		return nil, fmt.Errorf("no se pudo obtener productos: %w", err)
	}

	plan := computeChanges(list.Items, req.MonedaActual, req.NuevaMoneda, req.ForzarTodos)

	if !req.Confirmar {
		return &service.CurrencyMigrationResult{Pending: plan}, nil
	}

	updated := make([]string, 0, len(plan))
	for _, pc := range plan {
		patch := patchPricesRequest{Prices: make([]patchPrice, 0, len(pc.Changes))}
		for _, ch := range pc.Changes {
			patch.Prices = append(patch.Prices, patchPrice{
				SystemPriceID: ch.SystemPriceID,
				Price:         ch.Price,
				CodeCurrency:  ch.CodeCurrency,
			})
		}

		path := fmt.Sprintf("%s/%d", pathProduct, pc.ProductID)
		if err := a.client.Patch(ctx, sess, path, patch, nil); err != nil {
			a.logger.WarnContext(ctx, "currency patch failed, skipping product",
				slog.String("product", pc.Name),
				slog.Int("product_id", pc.ProductID),
				slog.String("error", err.Error()),
			)
			continue
		}
		updated = append(updated, pc.Name)
	}

	a.logger.InfoContext(ctx, "currency migration applied",
		slog.String("user", req.Usuario),
		slog.String("from", req.MonedaActual),
		slog.String("to", req.NuevaMoneda),
		slog.Int("candidates", len(plan)),
		slog.Int("updated", len(updated)),
	)

	return &service.CurrencyMigrationResult{
		Confirmed: true,
		Pending:   plan,
		Updated:   updated,
	}, nil
}

// computeChanges builds the per-product change-sets for a currency
// migration. Products whose price-entry count is not exactly one are
// skipped unless forceAll is set, guarding multi-currency products from
// being collapsed by accident. Only entries matching the source currency
// and carrying a price system id are rewritten; the numeric price passes
// through untouched.
func computeChanges(products []Product, from, to string, forceAll bool) []model.ProductChange {
	plan := make([]model.ProductChange, 0)
	for _, p := range products {
		if len(p.Prices) != 1 && !forceAll {
			continue
		}

		changes := make([]model.PriceChange, 0)
		for _, price := range p.Prices {
			if price.CodeCurrency != from || price.PriceSystemID == nil {
				continue
			}
			changes = append(changes, model.PriceChange{
				SystemPriceID: strconv.Itoa(*price.PriceSystemID),
				Price:         price.Price,
				CodeCurrency:  to,
			})
		}

		if len(changes) > 0 {
			plan = append(plan, model.ProductChange{
				ProductID: p.ID,
				Name:      p.Name,
				Changes:   changes,
			})
		}
	}
	return plan
}
