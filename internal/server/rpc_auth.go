package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// JSON-RPC error codes used by the HTTP middleware.
const (
	codeUnauthorized = -32600
	codeRateLimited  = -32000
)

// requireToken wraps an http.Handler with Bearer token authentication.
// Failures are answered with a JSON-RPC 2.0 error body, not a plain HTTP
// error. If secret is empty every request is rejected.
func requireToken(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validToken(secret, r.Header.Get("Authorization")) {
			writeRPCError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validToken checks the Authorization header against secret with a
// constant-time comparison. The "Bearer " prefix is required.
func validToken(secret, authHeader string) bool {
	if secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func writeRPCError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
		"id": nil,
	})
}
