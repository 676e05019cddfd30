package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
	corsMaxAge       = "600"
)

// CORSMiddleware answers preflight requests and tags responses for the
// configured origins. A "*" entry allows any origin.
type CORSMiddleware struct {
	anyOrigin bool
	origins   map[string]struct{}
}

func NewCORSMiddleware(origins []string) *CORSMiddleware {
	m := &CORSMiddleware{origins: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			m.anyOrigin = true
			continue
		}
		m.origins[strings.TrimSuffix(origin, "/")] = struct{}{}
	}
	return m
}

func (m *CORSMiddleware) allowOrigin(origin string) string {
	if m.anyOrigin {
		return "*"
	}
	if _, ok := m.origins[origin]; ok {
		return origin
	}
	return ""
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Add("Vary", "Origin")

		if allowed := m.allowOrigin(r.Header.Get("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			header.Set("Access-Control-Max-Age", corsMaxAge)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
