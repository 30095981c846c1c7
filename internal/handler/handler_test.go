package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/service"
)

func testHandler(mock *service.Mock) (*Handler, *http.ServeMux) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(mock, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func getErrorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Code
}

func TestHandleHealth(t *testing.T) {
	_, mux := testHandler(&service.Mock{})

	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: Status = %d, want %d", path, w.Code, http.StatusOK)
		}

		var resp healthResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "ok" {
			t.Errorf("%s: Status = %s, want ok", path, resp.Status)
		}
	}
}

func TestHandleLogin(t *testing.T) {
	mock := &service.Mock{
		LoginFunc: func(ctx context.Context, req *service.LoginRequest) (*service.LoginResult, error) {
			if req.Usuario == "alice" && req.Password == "s3cret" {
				return &service.LoginResult{BusinessID: 42}, nil
			}
			return nil, model.NewAuthenticationError("credenciales inválidas")
		},
	}

	_, mux := testHandler(mock)

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, mux, "/login-tecopos", map[string]string{
			"usuario":  "alice",
			"password": "s3cret",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp loginResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "ok" {
			t.Errorf("Status = %s, want ok", resp.Status)
		}
		if resp.BusinessID != 42 {
			t.Errorf("BusinessID = %d, want 42", resp.BusinessID)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := postJSON(t, mux, "/login-tecopos", map[string]string{
			"usuario":  "alice",
			"password": "wrong",
		})

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if code := getErrorCode(t, w.Body); code != "AUTHENTICATION_ERROR" {
			t.Errorf("Code = %s, want AUTHENTICATION_ERROR", code)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login-tecopos", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestHandleCreateProduct(t *testing.T) {
	var gotResolve bool
	mock := &service.Mock{
		CreateProductFunc: func(ctx context.Context, req *service.CreateProductRequest) (*service.CreateProductResult, error) {
			gotResolve = req.ResolveCategories
			if req.Usuario != "alice" {
				return nil, model.NewNotAuthenticatedError(req.Usuario)
			}
			return &service.CreateProductResult{
				Respuesta: json.RawMessage(`{"id":7,"name":"Arroz"}`),
			}, nil
		},
	}

	_, mux := testHandler(mock)

	t.Run("success", func(t *testing.T) {
		w := postJSON(t, mux, "/crear-producto", map[string]interface{}{
			"usuario": "alice",
			"nombre":  "Arroz",
			"precio":  120.0,
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if gotResolve {
			t.Error("ResolveCategories = true, want false on /crear-producto")
		}

		var resp productResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Mensaje != "Producto creado con éxito en Tecopos" {
			t.Errorf("Mensaje = %q", resp.Mensaje)
		}
		if !bytes.Contains(resp.Respuesta, []byte(`"Arroz"`)) {
			t.Errorf("Respuesta = %s, want upstream echo", resp.Respuesta)
		}
	})

	t.Run("with categories resolves", func(t *testing.T) {
		w := postJSON(t, mux, "/crear-producto-con-categoria", map[string]interface{}{
			"usuario":    "alice",
			"nombre":     "Arroz",
			"precio":     120.0,
			"categorias": []string{"Mercado"},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !gotResolve {
			t.Error("ResolveCategories = false, want true on /crear-producto-con-categoria")
		}
	})

	t.Run("no session", func(t *testing.T) {
		w := postJSON(t, mux, "/crear-producto", map[string]interface{}{
			"usuario": "bob",
			"nombre":  "Arroz",
			"precio":  120.0,
		})

		if w.Code != http.StatusForbidden {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusForbidden)
		}
		if code := getErrorCode(t, w.Body); code != "NOT_AUTHENTICATED" {
			t.Errorf("Code = %s, want NOT_AUTHENTICATED", code)
		}
	})
}

func TestHandleMigrateCurrencies(t *testing.T) {
	mock := &service.Mock{
		MigrateCurrenciesFunc: func(ctx context.Context, req *service.CurrencyMigrationRequest) (*service.CurrencyMigrationResult, error) {
			if !req.Confirmar {
				return &service.CurrencyMigrationResult{
					Pending: []model.ProductChange{
						{ProductID: 1, Name: "Arroz", Changes: []model.PriceChange{
							{SystemPriceID: "10", Price: 120, CodeCurrency: req.NuevaMoneda},
						}},
					},
				}, nil
			}
			return &service.CurrencyMigrationResult{
				Confirmed: true,
				Updated:   []string{"Arroz"},
			}, nil
		},
	}

	_, mux := testHandler(mock)

	t.Run("preview", func(t *testing.T) {
		w := postJSON(t, mux, "/actualizar-monedas", map[string]interface{}{
			"usuario":       "alice",
			"moneda_actual": "USD",
			"nueva_moneda":  "CUP",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp migrationResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "pendiente" {
			t.Errorf("Status = %s, want pendiente", resp.Status)
		}
		if len(resp.ProductosParaCambiar) != 1 {
			t.Errorf("ProductosParaCambiar = %d, want 1", len(resp.ProductosParaCambiar))
		}
		if len(resp.ProductosActualizados) != 0 {
			t.Errorf("ProductosActualizados = %d, want 0", len(resp.ProductosActualizados))
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		w := postJSON(t, mux, "/actualizar-monedas", map[string]interface{}{
			"usuario":       "alice",
			"moneda_actual": "USD",
			"nueva_moneda":  "CUP",
			"confirmar":     true,
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp migrationResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "ok" {
			t.Errorf("Status = %s, want ok", resp.Status)
		}
		if len(resp.ProductosActualizados) != 1 || resp.ProductosActualizados[0] != "Arroz" {
			t.Errorf("ProductosActualizados = %v, want [Arroz]", resp.ProductosActualizados)
		}
	})
}

func TestHandleSmartStockEntry(t *testing.T) {
	mock := &service.Mock{
		SmartStockEntryFunc: func(ctx context.Context, req *service.StockEntryRequest) (*service.StockEntryResult, error) {
			if req.StockAreaID == 0 {
				return &service.StockEntryResult{
					Areas: []model.StockArea{{ID: 5, Name: "Almacén"}},
				}, nil
			}
			names := make([]string, 0, len(req.Productos))
			for _, p := range req.Productos {
				names = append(names, p.Nombre)
			}
			return &service.StockEntryResult{
				Procesados:  names,
				StockAreaID: req.StockAreaID,
			}, nil
		},
	}

	_, mux := testHandler(mock)

	t.Run("area prompt", func(t *testing.T) {
		w := postJSON(t, mux, "/entrada-inteligente", map[string]interface{}{
			"usuario": "alice",
			"productos": []map[string]interface{}{
				{"nombre": "Cerveza Cristal", "cantidad": 24},
			},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp entryResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "seleccion_requerida" {
			t.Errorf("Status = %s, want seleccion_requerida", resp.Status)
		}
		if len(resp.Areas) != 1 || resp.Areas[0].ID != 5 {
			t.Errorf("Areas = %v, want one area with ID 5", resp.Areas)
		}
	})

	t.Run("entry submitted", func(t *testing.T) {
		w := postJSON(t, mux, "/entrada-inteligente", map[string]interface{}{
			"usuario":     "alice",
			"stockAreaId": 5,
			"productos": []map[string]interface{}{
				{"nombre": "Cerveza Cristal", "cantidad": 24},
				{"nombre": "Arroz", "cantidad": 10},
			},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp entryResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "ok" {
			t.Errorf("Status = %s, want ok", resp.Status)
		}
		if len(resp.ProductosProcesados) != 2 {
			t.Errorf("ProductosProcesados = %v, want 2 entries", resp.ProductosProcesados)
		}
		if resp.StockAreaID != 5 {
			t.Errorf("StockAreaID = %d, want 5", resp.StockAreaID)
		}
	})
}

func TestErrorResponseCarriesUpstreamDetail(t *testing.T) {
	mock := &service.Mock{
		CreateProductFunc: func(ctx context.Context, req *service.CreateProductRequest) (*service.CreateProductResult, error) {
			return nil, model.NewUpstreamError("POST /api/v1/administration/product", 422, `{"message":"nombre duplicado"}`)
		},
	}

	_, mux := testHandler(mock)

	w := postJSON(t, mux, "/crear-producto", map[string]interface{}{
		"usuario": "alice",
		"nombre":  "Arroz",
		"precio":  120.0,
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}

	var resp struct {
		Error struct {
			Code   string `json:"code"`
			Detail string `json:"detail"`
		} `json:"error"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error.Code != "UPSTREAM_ERROR" {
		t.Errorf("Code = %s, want UPSTREAM_ERROR", resp.Error.Code)
	}
	if resp.Error.Detail != `{"message":"nombre duplicado"}` {
		t.Errorf("Detail = %q, want upstream body", resp.Error.Detail)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := testHandler(&service.Mock{})

	req := httptest.NewRequest("GET", "/crear-producto", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
