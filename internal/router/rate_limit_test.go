package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"username":" Gestor.CJM "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("username")(c)
	if key != "gestor.cjm|1.2.3.4" {
		t.Fatalf("key want gestor.cjm|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Gestor.CJM") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestParseScriptResult(t *testing.T) {
	count, ttl, ok := parseScriptResult([]interface{}{int64(6), int64(240)})
	if !ok || count != 6 || ttl != 240 {
		t.Fatalf("unexpected parse result: %d %d %v", count, ttl, ok)
	}
	if _, _, ok := parseScriptResult([]interface{}{"bad", int64(1)}); ok {
		t.Fatalf("non integer count should fail")
	}
	if _, _, ok := parseScriptResult(int64(1)); ok {
		t.Fatalf("scalar result should fail")
	}
}

func TestRateLimitRuleHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	c.Request.RemoteAddr = "10.0.0.9:4000"

	rule := RateLimitRule{Prefix: "avarias:rate:login", WindowSeconds: 300, MaxRequests: 5}
	if got := rule.key(c, func(*gin.Context) string { return " " }); got != "avarias:rate:login:10.0.0.9" {
		t.Fatalf("blank key should fall back to ip, got %s", got)
	}
	if got := rule.retryAfter(-2); got != 300 {
		t.Fatalf("missing ttl should use window, got %d", got)
	}
	if got := rule.retryAfter(42); got != 42 {
		t.Fatalf("ttl want 42 got %d", got)
	}
	if rule.messageKey() != "error.too_many_requests" {
		t.Fatalf("default message key mismatch: %s", rule.messageKey())
	}
	if (RateLimitRule{WindowSeconds: 60}).enabled() {
		t.Fatalf("rule without max requests must be disabled")
	}
}
