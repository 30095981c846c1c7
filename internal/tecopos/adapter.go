// Package tecopos implements the bridge operations against the Tecopos
// point-of-sale platform. All durable state lives upstream; the adapter
// only keeps per-user sessions in the injected store.
package tecopos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tecopos-bridge/internal/config"
	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/service"
	"tecopos-bridge/internal/session"
)

// DefaultCreateDelay is the pause after a product creation before the
// adapter returns. Upstream search lags briefly behind writes, and a
// following find-or-create in the same batch would otherwise duplicate
// the product it just created.
const DefaultCreateDelay = 500 * time.Millisecond

// Config holds the adapter dependencies.
type Config struct {
	Platform config.PlatformConfig
	Sessions session.Store
	Logger   *slog.Logger

	// HTTPClient overrides the default uTLS client. Used by tests.
	HTTPClient *http.Client

	// CreateDelay is the post-creation pause of product resolution.
	// Zero selects DefaultCreateDelay; a negative value disables it.
	CreateDelay time.Duration
}

// Adapter implements service.Service against the Tecopos API.
type Adapter struct {
	client      *Client
	sessions    session.Store
	logger      *slog.Logger
	platform    config.PlatformConfig
	createDelay time.Duration
}

// New creates a Tecopos adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	delay := cfg.CreateDelay
	if delay == 0 {
		delay = DefaultCreateDelay
	}
	return &Adapter{
		client:      NewClient(cfg.Platform, cfg.HTTPClient),
		sessions:    cfg.Sessions,
		logger:      cfg.Logger,
		platform:    cfg.Platform,
		createDelay: delay,
	}, nil
}

// Login authenticates against Tecopos and caches the session. A failure at
// any step aborts the flow and leaves any prior session for the user
// untouched.
func (a *Adapter) Login(ctx context.Context, req *service.LoginRequest) (*service.LoginResult, error) {
	region := req.Region
	if region == "" {
		region = a.platform.DefaultRegion
	}
	if _, ok := a.platform.BaseURL(region); !ok {
		return nil, model.NewValidationError("region", fmt.Sprintf("región inválida: %q", region))
	}

	var login loginResponse
	err := a.client.PostUnauthenticated(ctx, region, pathLogin, loginRequest{
		Username: req.Usuario,
		Password: req.Password,
	}, &login)
	if err != nil {
		if isUpstreamFailure(err) {
			return nil, model.NewAuthenticationError("credenciales inválidas")
		}
		return nil, err
	}
	if login.Token == "" {
		return nil, model.NewAuthenticationError("token no encontrado")
	}

	sess := model.Session{
		UserID: req.Usuario,
		Token:  login.Token,
		Region: region,
	}

	var user userResponse
	if err := a.client.Get(ctx, sess, pathUser, &user); err != nil {
		if isUpstreamFailure(err) {
			return nil, model.NewAuthenticationError("no se pudo obtener información del usuario")
		}
		return nil, err
	}
	if user.BusinessID == 0 {
		return nil, model.NewAuthenticationError("no se encontró el businessId")
	}

	sess.BusinessID = user.BusinessID
	a.sessions.Put(req.Usuario, sess)

	a.logger.InfoContext(ctx, "login succeeded",
		slog.String("user", req.Usuario),
		slog.String("region", region),
		slog.Int("business_id", user.BusinessID),
	)

	return &service.LoginResult{BusinessID: user.BusinessID}, nil
}

// CreateProduct creates one product. With ResolveCategories the category
// names are resolved (find-or-create) and the first resolved id is sent as
// the product's sales category; otherwise the names pass through as-is.
func (a *Adapter) CreateProduct(ctx context.Context, req *service.CreateProductRequest) (*service.CreateProductResult, error) {
	sess, err := a.sessionFor(req.Usuario)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Nombre) == "" {
		return nil, model.NewValidationError("nombre", "no puede estar en blanco")
	}

	payload := createProductRequest{
		Type:   withFallback(req.Tipo, "STOCK"),
		Name:   strings.TrimSpace(req.Nombre),
		Prices: []priceInput{{Price: req.Precio, CodeCurrency: withFallback(req.Moneda, a.platform.DefaultCurrency)}},
		Images: []int{},
		Cost:   req.Costo,
	}

	if req.ResolveCategories && len(req.Categorias) > 0 {
		for i, name := range req.Categorias {
			id, err := a.resolveCategory(ctx, sess, name)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				payload.SalesCategoryID = id
			}
		}
	} else if len(req.Categorias) > 0 {
		payload.Categories = req.Categorias
	}

	raw, err := a.client.Post(ctx, sess, pathProduct, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("no se pudo crear el producto %q: %w", req.Nombre, err)
	}

	a.logger.InfoContext(ctx, "product created",
		slog.String("user", req.Usuario),
		slog.String("name", payload.Name),
	)

	return &service.CreateProductResult{Respuesta: raw}, nil
}

// sessionFor looks up the cached session for a user.
func (a *Adapter) sessionFor(userID string) (model.Session, error) {
	sess, ok := a.sessions.Get(userID)
	if !ok {
		return model.Session{}, model.NewNotAuthenticatedError(userID)
	}
	return sess, nil
}

// isUpstreamFailure reports whether err originates from a non-2xx upstream
// response (as opposed to a local validation or marshaling problem).
func isUpstreamFailure(err error) bool {
	return errors.Is(err, model.ErrUpstream)
}

// withFallback returns val if non-empty, otherwise fallback.
func withFallback(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
