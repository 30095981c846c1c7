package tecopos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"tecopos-bridge/internal/config"
	"tecopos-bridge/internal/model"
	"tecopos-bridge/internal/transport"
)

// API paths, relative to the per-region base URL.
const (
	pathLogin         = "/api/v1/security/login"
	pathUser          = "/api/v1/security/user"
	pathProduct       = "/api/v1/administration/product"
	pathSalesCategory = "/api/v1/administration/salescategory"
	pathStockAreas    = "/api/v1/administration/area?type=STOCK"
	pathBulkEntry     = "/api/v1/administration/movement/bulk/entry"
)

// Client is the authenticated HTTP client for the Tecopos API. It resolves
// a logical region to its base URL and attaches the fixed identification
// headers the platform expects, plus bearer auth and the business id once
// a session exists. The client itself never retries; any non-2xx response
// is surfaced as a typed failure carrying the upstream status and body.
type Client struct {
	httpClient *http.Client
	platform   config.PlatformConfig
}

// NewClient creates a Tecopos API client for the configured platform.
// httpClient may be nil, in which case a 30s-timeout client with the
// Chrome-fingerprint transport is used.
func NewClient(platform config.PlatformConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport.NewChromeTransport(30 * time.Second),
		}
	}
	return &Client{
		httpClient: httpClient,
		platform:   platform,
	}
}

// Get issues an authenticated GET and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, sess model.Session, path string, result any) error {
	req, err := c.newRequest(ctx, http.MethodGet, sess.Region, path, nil, &sess)
	if err != nil {
		return err
	}
	_, err = c.do(req, result)
	return err
}

// Post issues an authenticated POST and decodes the JSON response into result.
// Returns the raw response body for callers that echo it.
func (c *Client) Post(ctx context.Context, sess model.Session, path string, body, result any) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, sess.Region, path, body, &sess)
	if err != nil {
		return nil, err
	}
	return c.do(req, result)
}

// Patch issues an authenticated PATCH and decodes the JSON response into result.
func (c *Client) Patch(ctx context.Context, sess model.Session, path string, body, result any) error {
	req, err := c.newRequest(ctx, http.MethodPatch, sess.Region, path, body, &sess)
	if err != nil {
		return err
	}
	_, err = c.do(req, result)
	return err
}

// PostUnauthenticated issues a POST without a session. Used by the login
// endpoint, which still requires the identification header block.
func (c *Client) PostUnauthenticated(ctx context.Context, region, path string, body, result any) error {
	req, err := c.newRequest(ctx, http.MethodPost, region, path, body, nil)
	if err != nil {
		return err
	}
	_, err = c.do(req, result)
	return err
}

// newRequest builds a request against the region's base URL with the fixed
// identification headers. When sess is non-nil, bearer auth is attached,
// and the business-id header once the session carries one.
func (c *Client) newRequest(ctx context.Context, method, region, path string, body any, sess *model.Session) (*http.Request, error) {
	base, ok := c.platform.BaseURL(region)
	if !ok {
		return nil, model.NewValidationError("region", fmt.Sprintf("región inválida: %q", region))
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", c.platform.Origin)
	req.Header.Set("Referer", c.platform.Referer)
	req.Header.Set("x-app-origin", c.platform.AppOrigin)
	req.Header.Set("User-Agent", c.platform.UserAgent)

	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		if sess.BusinessID != 0 {
			req.Header.Set("x-app-businessid", strconv.Itoa(sess.BusinessID))
		}
	}

	return req, nil
}

// do executes the request, returning the raw body and decoding it into
// result when non-nil. Non-2xx responses become upstream errors carrying
// the status code and body.
func (c *Client) do(req *http.Request, result any) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError(req.Method+" "+req.URL.Path, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, model.NewUpstreamError(req.Method+" "+req.URL.Path, resp.StatusCode, string(body))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}
	}

	return body, nil
}
