// Package handler provides the HTTP and MCP transports of the bridge API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/service"
)

// Handler holds dependencies for the API transports.
type Handler struct {
	svc    service.Service
	logger *slog.Logger
}

// New creates a Handler backed by the given service implementation.
func New(svc service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /login-tecopos", h.handleLogin)
	mux.HandleFunc("POST /crear-producto", h.handleCreateProduct)
	mux.HandleFunc("POST /crear-producto-con-categoria", h.handleCreateProductWithCategory)
	mux.HandleFunc("POST /actualizar-monedas", h.handleMigrateCurrencies)
	mux.HandleFunc("POST /entrada-inteligente", h.handleStockEntry)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// === Response Types ===
// Successful responses always carry a status marker plus a human-readable
// message, matching the contract the conversational frontend expects.

type loginResponse struct {
	Status     string `json:"status"`
	Mensaje    string `json:"mensaje"`
	BusinessID int    `json:"businessid"`
}

type productResponse struct {
	Status    string          `json:"status"`
	Mensaje   string          `json:"mensaje"`
	Respuesta json.RawMessage `json:"respuesta"`
}

type migrationResponse struct {
	Status                string                `json:"status"`
	Mensaje               string                `json:"mensaje"`
	ProductosParaCambiar  []model.ProductChange `json:"productos_para_cambiar,omitempty"`
	ProductosActualizados []string              `json:"productos_actualizados,omitempty"`
}

type entryResponse struct {
	Status              string            `json:"status"`
	Mensaje             string            `json:"mensaje"`
	Areas               []model.StockArea `json:"areas,omitempty"`
	ProductosProcesados []string          `json:"productos_procesados,omitempty"`
	StockAreaID         int               `json:"stockAreaId,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// === Route Handlers ===

// handleLogin authenticates a user against Tecopos.
// POST /login-tecopos
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login requested",
		slog.String("user", req.Usuario),
		slog.String("region", req.Region),
	)

	res, err := h.svc.Login(ctx, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{
		Status:     "ok",
		Mensaje:    "Login exitoso",
		BusinessID: res.BusinessID,
	})
}

// handleCreateProduct creates a product, passing category names through.
// POST /crear-producto
func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	h.createProduct(w, r, false)
}

// handleCreateProductWithCategory creates a product after resolving its
// categories via find-or-create.
// POST /crear-producto-con-categoria
func (h *Handler) handleCreateProductWithCategory(w http.ResponseWriter, r *http.Request) {
	h.createProduct(w, r, true)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request, resolveCategories bool) {
	ctx := r.Context()

	var req service.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.ResolveCategories = resolveCategories

	h.logger.InfoContext(ctx, "creating product",
		slog.String("user", req.Usuario),
		slog.String("name", req.Nombre),
		slog.Bool("resolve_categories", resolveCategories),
	)

	res, err := h.svc.CreateProduct(ctx, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, productResponse{
		Status:    "ok",
		Mensaje:   "Producto creado con éxito en Tecopos",
		Respuesta: res.Respuesta,
	})
}

// handleMigrateCurrencies previews or applies a bulk currency rewrite.
// POST /actualizar-monedas
func (h *Handler) handleMigrateCurrencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CurrencyMigrationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "currency migration requested",
		slog.String("user", req.Usuario),
		slog.String("from", req.MonedaActual),
		slog.String("to", req.NuevaMoneda),
		slog.Bool("confirm", req.Confirmar),
	)

	res, err := h.svc.MigrateCurrencies(ctx, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, migrationResult(req.MonedaActual, res))
}

// migrationResult shapes the preview/confirmed migration response.
func migrationResult(from string, res *service.CurrencyMigrationResult) migrationResponse {
	if !res.Confirmed {
		return migrationResponse{
			Status:               "pendiente",
			Mensaje:              fmt.Sprintf("Se encontraron %d productos con moneda %s.", len(res.Pending), from),
			ProductosParaCambiar: res.Pending,
		}
	}
	return migrationResponse{
		Status:                "ok",
		Mensaje:               fmt.Sprintf("Se actualizó la moneda en %d productos.", len(res.Updated)),
		ProductosActualizados: res.Updated,
	}
}

// handleStockEntry runs a smart stock entry or lists the stock areas when
// none was chosen.
// POST /entrada-inteligente
func (h *Handler) handleStockEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.StockEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "stock entry requested",
		slog.String("user", req.Usuario),
		slog.Int("stock_area_id", req.StockAreaID),
		slog.Int("lines", len(req.Productos)),
	)

	res, err := h.svc.SmartStockEntry(ctx, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, entryResult(res))
}

// entryResult shapes the prompt/processed stock entry response.
func entryResult(res *service.StockEntryResult) entryResponse {
	if res.Areas != nil {
		return entryResponse{
			Status:  "seleccion_requerida",
			Mensaje: "Seleccione un área de stock y reenvíe la solicitud con stockAreaId.",
			Areas:   res.Areas,
		}
	}
	return entryResponse{
		Status:              "ok",
		Mensaje:             fmt.Sprintf("Entrada registrada para %d productos.", len(res.Procesados)),
		ProductosProcesados: res.Procesados,
		StockAreaID:         res.StockAreaID,
	}
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// === Response Helpers ===

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError
// if present. Uses errors.As() to unwrap error chains.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Detail:  apiErr.UpstreamBody,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detail carries the raw upstream response body for upstream errors.
	Detail string `json:"detail,omitempty"`
}

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
