package tecopos

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/service"
)

// SmartStockEntry is a two-phase interaction. With no stock area chosen it
// only lists the available areas as a selection prompt; with an area it
// resolves every line's product (inferring a sales category first when
// auto-categorization is on) and submits one bulk stock-in movement.
//
// All lines are validated before any upstream call. Products created while
// resolving remain upstream even when the final entry call fails; there is
// no compensating rollback.
func (a *Adapter) SmartStockEntry(ctx context.Context, req *service.StockEntryRequest) (*service.StockEntryResult, error) {
	sess, err := a.sessionFor(req.Usuario)
	if err != nil {
		return nil, err
	}

	for i, line := range req.Productos {
		if strings.TrimSpace(line.Nombre) == "" {
			return nil, model.NewValidationError(
				fmt.Sprintf("productos[%d].nombre", i), "no puede estar en blanco")
		}
		if line.Cantidad <= 0 {
			return nil, model.NewValidationError(
				fmt.Sprintf("productos[%d].cantidad", i), "debe ser mayor que cero")
		}
	}

	if req.StockAreaID == 0 {
		return a.listStockAreas(ctx, sess)
	}

	if len(req.Productos) == 0 {
		return nil, model.NewValidationError("productos", "no puede estar vacío")
	}

	lines := make([]entryLine, 0, len(req.Productos))
	names := make([]string, 0, len(req.Productos))
	for _, line := range req.Productos {
		categoryID := 0
		if a.platform.AutoCategories {
			categoryID, err = a.resolveCategory(ctx, sess, InferCategory(line.Nombre))
			if err != nil {
				return nil, err
			}
		}

		currency := withFallback(line.Moneda, a.platform.DefaultCurrency)
		productID, err := a.resolveProduct(ctx, sess, line.Nombre, line.Precio, currency, categoryID)
		if err != nil {
			return nil, err
		}

		lines = append(lines, entryLine{ProductID: productID, Quantity: line.Cantidad})
		names = append(names, strings.TrimSpace(line.Nombre))
	}

	entry := bulkEntryRequest{
		StockAreaID: req.StockAreaID,
		Products:    lines,
		Continue:    false,
	}
	if _, err := a.client.Post(ctx, sess, pathBulkEntry, entry, nil); err != nil {
		return nil, fmt.Errorf("no se pudo registrar la entrada de stock: %w", err)
	}

	a.logger.InfoContext(ctx, "stock entry submitted",
		slog.String("user", req.Usuario),
		slog.Int("stock_area_id", req.StockAreaID),
		slog.Int("lines", len(lines)),
	)

	return &service.StockEntryResult{
		Procesados:  names,
		StockAreaID: req.StockAreaID,
	}, nil
}

// listStockAreas returns the areas available for stock entry as a
// selection prompt.
func (a *Adapter) listStockAreas(ctx context.Context, sess model.Session) (*service.StockEntryResult, error) {
	var list areaList
	if err := a.client.Get(ctx, sess, pathStockAreas, &list); err != nil {
		return nil, fmt.Errorf("no se pudieron obtener las áreas de stock: %w", err)
	}

	areas := make([]model.StockArea, 0, len(list.Items))
	for _, ar := range list.Items {
		areas = append(areas, model.StockArea{ID: ar.ID, Name: ar.Name})
	}

	return &service.StockEntryResult{Areas: areas}, nil
}
