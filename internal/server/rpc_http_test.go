package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
	"github.com/powersched/powersched/common"
)

const testSecret = "web-test-secret"

func newTestWebServer(t *testing.T, rateLimit float64) (*testEnv, *WebServer, string) {
	t.Helper()
	e := newTestEnv(t)
	ws := NewWebServer(nil, e.methods, e.notifier, WebConfig{Secret: testSecret, RateLimit: rateLimit})
	srv := httptest.NewServer(ws.handler())
	t.Cleanup(func() {
		_ = ws.Shutdown(context.Background())
		srv.Close()
	})
	return e, ws, srv.URL
}

func postRPC(t *testing.T, url, token, method string, params any) (int, map[string]any) {
	t.Helper()
	body := map[string]any{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		body["params"] = params
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, url+"/jsonrpc", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("unmarshal: %v (body %s)", err, raw)
		}
	}
	return resp.StatusCode, out
}

func TestWebServer_HTTPBridge(t *testing.T) {
	_, _, url := newTestWebServer(t, 0)

	code, resp := postRPC(t, url, testSecret, string(common.MethodVersion), nil)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	result, ok := resp["result"].(map[string]any)
	if !ok || result["version"] != "1.0.0" {
		t.Fatalf("unexpected response %v", resp)
	}

	code, resp = postRPC(t, url, testSecret, string(common.MethodTaskGet), map[string]any{"id": "missing"})
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok || errObj["code"].(float64) != common.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", resp)
	}
}

func TestWebServer_HTTPRequiresToken(t *testing.T) {
	_, _, url := newTestWebServer(t, 0)
	code, _ := postRPC(t, url, "", string(common.MethodVersion), nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestWebServer_RateLimited(t *testing.T) {
	_, _, url := newTestWebServer(t, 0.001)
	// Burst is one for a sub-unit rate.
	if code, _ := postRPC(t, url, testSecret, string(common.MethodVersion), nil); code != http.StatusOK {
		t.Fatalf("first status %d", code)
	}
	if code, _ := postRPC(t, url, testSecret, string(common.MethodVersion), nil); code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", code)
	}
}

func TestWebServer_WebSocketPush(t *testing.T) {
	e, _, url := newTestWebServer(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go e.notifier.Run(ctx)

	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/jsonrpc/ws"
	conn, _, err := cws.Dial(ctx, wsURL, &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testSecret}},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	// Wait for the session to be registered before triggering an event.
	deadline := time.Now().Add(2 * time.Second)
	for e.notifier.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	req, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      7,
		"method":  string(common.MethodTaskCreate),
		"params":  map[string]any{"action": "lock", "execute_at": time.Now().Add(time.Hour).Unix()},
	})
	if err := conn.Write(ctx, cws.MessageText, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	var sawResult, sawPush bool
	for !(sawResult && sawPush) {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		switch {
		case msg["method"] == common.NotifyTaskCreated:
			sawPush = true
		case msg["id"] != nil:
			if msg["result"] == nil {
				t.Fatalf("create failed: %v", msg["error"])
			}
			sawResult = true
		}
	}
}

func TestWebServer_WebSocketRequiresToken(t *testing.T) {
	_, _, url := newTestWebServer(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/jsonrpc/ws"
	_, resp, err := cws.Dial(ctx, wsURL, nil)
	if err == nil {
		t.Fatal("expected error for unauthorized WebSocket connection")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestWebServer_ListenServeShutdown(t *testing.T) {
	e := newTestEnv(t)
	ws := NewWebServer(nil, e.methods, e.notifier, WebConfig{Secret: testSecret})
	if err := ws.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- ws.Serve() }()

	code, _ := postRPC(t, "http://"+ws.Addr(), testSecret, string(common.MethodVersion), nil)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if err := ws.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	if err := ws.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
