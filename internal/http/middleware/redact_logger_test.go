package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_MasksUsersAndScrubsPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/check-match", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "user1=9876543210&user2=9123456780&note=mail+a.b%2Btag%40example.com&ref=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/check-match?"+q, nil)
	req.Header.Set(requestIDHeader, "rid-1")
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set(HeaderUserID, "9876543210")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com phone 555-123-4567")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"message":"http_request"`) || !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info http_request line, got: %s", logs)
	}
	if !strings.Contains(logs, `"path":"/check-match"`) || !strings.Contains(logs, `"request_id":"rid-1"`) {
		t.Fatalf("expected route path and request id, got: %s", logs)
	}
	if strings.Contains(logs, "9876543210") || strings.Contains(logs, "9123456780") {
		t.Fatalf("user ids leaked into log: %s", logs)
	}
	if !strings.Contains(logs, "user1=[REDACTED]") || !strings.Contains(logs, "user2=[REDACTED]") {
		t.Fatalf("expected masked user params, got: %s", logs)
	}
	if !strings.Contains(logs, "[REDACTED:email]") || !strings.Contains(logs, "[REDACTED:id]") {
		t.Fatalf("expected pattern redactions in query, got: %s", logs)
	}
	for _, h := range []string{"Authorization", "X-User-Id", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+h+`":"[REDACTED]"`) {
			t.Fatalf("%s must be masked: %s", h, logs)
		}
	}
	if !strings.Contains(logs, `"X-Custom":"email [REDACTED:email] phone [REDACTED:phone]"`) {
		t.Fatalf("expected scrubbed X-Custom header, got: %s", logs)
	}
}

func TestRedactingLogger_WarnAndErrorLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	reqWarn := httptest.NewRequest(http.MethodGet, "/warn", nil)
	reqWarn.Header.Set(requestIDHeader, "rid-warn")
	r.ServeHTTP(httptest.NewRecorder(), reqWarn)

	reqErr := httptest.NewRequest(http.MethodGet, "/error", nil)
	reqErr.Header.Set(requestIDHeader, "rid-err")
	r.ServeHTTP(httptest.NewRecorder(), reqErr)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn line missing: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error line missing: %s", logs)
	}
}

func TestRedactQuery(t *testing.T) {
	mask := map[string]struct{}{"userid": {}}
	if got := redactQuery("", mask); got != "" {
		t.Fatalf("empty query = %q", got)
	}
	if got := redactQuery("userId=42&page=2", mask); got != "page=2&userId=[REDACTED]" {
		t.Fatalf("redactQuery = %q", got)
	}
	if got := redactQuery("bad=%zz", mask); got != "bad=%zz" {
		t.Fatalf("unparsable query should fall back to text scrub, got %q", got)
	}
}
