package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMetricsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	InitMetrics()

	router := gin.New()
	router.Use(Middleware())
	Register(router, "/metrics")
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestMiddlewareCountsRequests(t *testing.T) {
	router := newMetricsRouter()

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("ping returned %d", rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", rr.Code)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "evidence_http_requests_total") {
		t.Fatalf("expected request counter in exposition")
	}
	if !strings.Contains(body, `path="/ping"`) {
		t.Fatalf("expected /ping label in exposition")
	}
	if !strings.Contains(body, "evidence_http_request_duration_seconds") {
		t.Fatalf("expected duration histogram in exposition")
	}
}

func TestRecordUpload(t *testing.T) {
	router := newMetricsRouter()

	RecordUpload(2, 1)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "evidence_uploaded_files_total") {
		t.Fatalf("expected uploaded counter in exposition")
	}
	if !strings.Contains(body, "evidence_failed_files_total") {
		t.Fatalf("expected failed counter in exposition")
	}
}

func TestInitMetricsIdempotent(t *testing.T) {
	InitMetrics()
	InitMetrics() // second call must not re-register
	RecordUpload(0, 0)
}
