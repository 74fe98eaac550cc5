package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"relais/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Authenticator resolves an access token to the caller's claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.UserClaims, error)
}

// Handler upgrades authenticated requests to websocket connections.
// Browsers cannot set headers on a websocket handshake, so the token may
// also travel in the "token" query parameter.
func (h *Hub) Handler(authn Authenticator, allowedOrigins []string) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := authn.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Debug("websocket upgrade", zap.Error(err))
			return
		}

		c := newClient(h, conn, claims)
		if !h.add(c) {
			conn.Close()
			return
		}
		go c.writePump()
		go c.readPump()
	})
}

// NewServer serves the hub on addr under /ws.
func NewServer(addr string, h *Hub, authn Authenticator, allowedOrigins []string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", h.Handler(authn, allowedOrigins))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
