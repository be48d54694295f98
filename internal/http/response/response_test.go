package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	return body
}

func TestEnvelopePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, gin.H{"id": 1})
	if _, ok := decodeEnvelope(t, w)["pagination"]; ok {
		t.Fatalf("plain success must not carry pagination")
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	SuccessWithPage(c, []int{1, 2}, BuildPagination(2, 20, 41))
	page, ok := decodeEnvelope(t, w)["pagination"].(map[string]interface{})
	if !ok || page["total_page"].(float64) != 3 {
		t.Fatalf("unexpected pagination: %v", page)
	}
	if BuildPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("unpaged listing should report zero pages")
	}
}

func TestAppErrorSendAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	cause := errors.New("db down")
	appErr := NewAppError(CodeInternal, "error.internal", "falha interna", cause)
	if !appErr.Internal() || !errors.Is(appErr, cause) {
		t.Fatalf("unexpected app error: %v", appErr)
	}
	appErr.Send(c)

	body := decodeEnvelope(t, w)
	if body["status_code"].(float64) != CodeInternal || body["msg"] != "falha interna" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	data, _ := body["data"].(map[string]interface{})
	if data["request_id"] != "req-1" {
		t.Fatalf("request id missing: %v", body["data"])
	}
}
