package server

import (
	"net/http"
	"strings"
)

// OriginChecker restricts browser access to the one configured client origin.
type OriginChecker struct {
	allowedOrigin string
}

func NewOriginChecker(allowedOrigin string) *OriginChecker {
	return &OriginChecker{
		allowedOrigin: normalizeOrigin(allowedOrigin),
	}
}

// Check is used as the websocket upgrader CheckOrigin. Requests without an
// Origin header do not come from a browser and are let through.
func (c *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	return c.allowed(origin)
}

// Middleware answers CORS preflights and decorates responses for the allowed
// origin. Only GET and POST are offered.
func (c *OriginChecker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && c.allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", c.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *OriginChecker) allowed(origin string) bool {
	return strings.EqualFold(normalizeOrigin(origin), c.allowedOrigin)
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.TrimSpace(origin), "/")
}
