// MCP transport for the bridge using the official MCP Go SDK.
// Exposes the Tecopos operations as MCP tools so assistant agents can call
// them directly.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/service"
)

// === MCP Tool Input Types ===
// The tool inputs mirror the REST request bodies, field names included, so
// an agent can switch transports without remapping parameters.

// LoginInput is the input schema for the login tool.
type LoginInput struct {
	Usuario  string `json:"usuario" jsonschema:"Tecopos username,required"`
	Password string `json:"password" jsonschema:"Tecopos password,required"`
	Region   string `json:"region,omitempty" jsonschema:"platform region (defaults to apidev)"`
}

// CreateProductInput is the input schema for the create_product tool.
type CreateProductInput struct {
	Usuario    string   `json:"usuario" jsonschema:"logged-in username,required"`
	Nombre     string   `json:"nombre" jsonschema:"product name,required"`
	Precio     float64  `json:"precio" jsonschema:"sale price,required"`
	Costo      *float64 `json:"costo,omitempty" jsonschema:"cost price"`
	Moneda     string   `json:"moneda,omitempty" jsonschema:"currency code (USD, CUP or EUR)"`
	Tipo       string   `json:"tipo,omitempty" jsonschema:"product type (defaults to STOCK)"`
	Categorias []string `json:"categorias,omitempty" jsonschema:"sales category names, resolved find-or-create"`
}

// MigrateCurrenciesInput is the input schema for the migrate_currencies tool.
type MigrateCurrenciesInput struct {
	Usuario      string `json:"usuario" jsonschema:"logged-in username,required"`
	MonedaActual string `json:"moneda_actual" jsonschema:"currency code to migrate from,required"`
	NuevaMoneda  string `json:"nueva_moneda" jsonschema:"currency code to migrate to,required"`
	Confirmar    bool   `json:"confirmar,omitempty" jsonschema:"apply the changes; false returns a dry-run preview"`
	ForzarTodos  bool   `json:"forzar_todos,omitempty" jsonschema:"include products with multiple price entries"`
}

// SmartStockEntryInput is the input schema for the smart_stock_entry tool.
type SmartStockEntryInput struct {
	Usuario     string                   `json:"usuario" jsonschema:"logged-in username,required"`
	StockAreaID int                      `json:"stockAreaId,omitempty" jsonschema:"destination stock area id; omit to list the available areas"`
	Productos   []service.StockEntryLine `json:"productos" jsonschema:"product lines to enter,required"`
}

// NewMCPServer creates an MCP server with the bridge tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tecopos-bridge",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Tecopos bridge operations. Log in first with the login tool; " +
				"every other tool requires a logged-in usuario.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "login",
		Description: "Authenticate a user against the Tecopos platform and cache the session.",
	}, h.mcpLogin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_product",
		Description: "Create a product with a price and currency. Category names are resolved find-or-create.",
	}, h.mcpCreateProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "migrate_currencies",
		Description: "Rewrite the currency of matching price entries across the catalog. Without confirmar this is a read-only preview.",
	}, h.mcpMigrateCurrencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "smart_stock_entry",
		Description: "Enter stock for product lines, creating missing products (and inferred categories) on the fly. Omit stockAreaId to list the available areas first.",
	}, h.mcpSmartStockEntry)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpLogin(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input LoginInput,
) (*mcp.CallToolResult, *loginResponse, error) {
	res, err := h.svc.Login(ctx, &service.LoginRequest{
		Usuario:  input.Usuario,
		Password: input.Password,
		Region:   input.Region,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &loginResponse{
		Status:     "ok",
		Mensaje:    "Login exitoso",
		BusinessID: res.BusinessID,
	}, nil
}

func (h *Handler) mcpCreateProduct(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CreateProductInput,
) (*mcp.CallToolResult, *productResponse, error) {
	res, err := h.svc.CreateProduct(ctx, &service.CreateProductRequest{
		Usuario:    input.Usuario,
		Nombre:     input.Nombre,
		Precio:     input.Precio,
		Costo:      input.Costo,
		Moneda:     input.Moneda,
		Tipo:       input.Tipo,
		Categorias: input.Categorias,
		// Tools always resolve category names; the raw pass-through
		// variant only exists on the REST surface.
		ResolveCategories: true,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &productResponse{
		Status:    "ok",
		Mensaje:   "Producto creado con éxito en Tecopos",
		Respuesta: res.Respuesta,
	}, nil
}

func (h *Handler) mcpMigrateCurrencies(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MigrateCurrenciesInput,
) (*mcp.CallToolResult, *migrationResponse, error) {
	res, err := h.svc.MigrateCurrencies(ctx, &service.CurrencyMigrationRequest{
		Usuario:      input.Usuario,
		MonedaActual: input.MonedaActual,
		NuevaMoneda:  input.NuevaMoneda,
		Confirmar:    input.Confirmar,
		ForzarTodos:  input.ForzarTodos,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	out := migrationResult(input.MonedaActual, res)
	return nil, &out, nil
}

func (h *Handler) mcpSmartStockEntry(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SmartStockEntryInput,
) (*mcp.CallToolResult, *entryResponse, error) {
	res, err := h.svc.SmartStockEntry(ctx, &service.StockEntryRequest{
		Usuario:     input.Usuario,
		StockAreaID: input.StockAreaID,
		Productos:   input.Productos,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	out := entryResult(res)
	return nil, &out, nil
}

// mcpError converts service errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
