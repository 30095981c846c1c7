package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Header is the request header automated clients use to identify themselves.
const Header = "X-Client-Agent"

type contextKey struct{}

// Middleware creates HTTP middleware that parses and gates the
// X-Client-Agent header.
//
// The header is optional: requests without it pass through untouched.
// A malformed header is rejected with 400, and an identified agent older
// than minVersion is rejected with 426 Upgrade Required. Parsed agents
// are stored in the request context for handlers and access logs.
func Middleware(minVersion string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(Header)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			client, err := ParseAgentHeader(header)
			if err != nil {
				logger.Warn("invalid client agent header",
					slog.String("header", header),
					slog.String("error", err.Error()))
				writeAgentError(w, http.StatusBadRequest, "invalid_agent_header",
					"Invalid X-Client-Agent header: "+err.Error())
				return
			}

			if !client.MeetsMinimum(minVersion) {
				logger.Warn("client agent below minimum version",
					slog.String("agent", client.Name),
					slog.String("version", client.Version),
					slog.String("minimum", minVersion))
				writeAgentError(w, http.StatusUpgradeRequired, "agent_upgrade_required",
					"Client agent version "+client.Version+" is below the required minimum "+minVersion)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the parsed client agent from the request context.
// Returns nil when the request carried no X-Client-Agent header.
func FromContext(ctx context.Context) *ClientAgent {
	v, _ := ctx.Value(contextKey{}).(*ClientAgent)
	return v
}

// writeAgentError writes an error response in the bridge's envelope format.
func writeAgentError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}
