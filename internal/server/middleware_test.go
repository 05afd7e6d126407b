package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func decodeRPCError(t *testing.T, rr *httptest.ResponseRecorder) (float64, string) {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["jsonrpc"] != "2.0" {
		t.Fatalf("expected jsonrpc 2.0, got %v", resp["jsonrpc"])
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", resp["error"])
	}
	return errObj["code"].(float64), errObj["message"].(string)
}

func TestRequireToken(t *testing.T) {
	const secret = "test-secret-12345"
	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"valid", secret, "Bearer " + secret, http.StatusOK},
		{"missing", secret, "", http.StatusUnauthorized},
		{"wrong token", secret, "Bearer nope", http.StatusUnauthorized},
		{"no bearer prefix", secret, secret, http.StatusUnauthorized},
		{"basic scheme", secret, "Basic " + secret, http.StatusUnauthorized},
		{"empty secret rejects all", "", "Bearer ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/jsonrpc", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			requireToken(tt.secret, okHandler).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				code, msg := decodeRPCError(t, rr)
				if code != codeUnauthorized || msg != "Unauthorized" {
					t.Fatalf("unexpected error %v %q", code, msg)
				}
			}
		})
	}
}

func TestLimitRequests(t *testing.T) {
	h := limitRequests(newLimiter(1, 2), okHandler)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jsonrpc", nil))
		codes = append(codes, rr.Code)
		if rr.Code == http.StatusTooManyRequests {
			if code, _ := decodeRPCError(t, rr); code != codeRateLimited {
				t.Fatalf("code = %v, want %d", code, codeRateLimited)
			}
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestLimitRequests_Disabled(t *testing.T) {
	if newLimiter(0, 5) != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	h := limitRequests(nil, okHandler)
	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jsonrpc", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rr.Code)
		}
	}
}
