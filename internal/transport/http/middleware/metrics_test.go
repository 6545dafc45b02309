package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to build metrics: %v", err)
	}

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/work-orders/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/work-orders/wo-1", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	labels := prometheus.Labels{
		"method": http.MethodGet,
		"route":  "/work-orders/:id",
		"status": "200",
	}

	if got := testutil.ToFloat64(metrics.Requests.With(labels)); got != 1 {
		t.Fatalf("expected 1 request counted, got %f", got)
	}

	if got := testutil.ToFloat64(metrics.InFlight); got != 0 {
		t.Fatalf("expected in-flight gauge back at 0, got %f", got)
	}

	if got := testutil.CollectAndCount(metrics.Duration); got == 0 {
		t.Fatalf("expected duration histogram to record an observation")
	}
}

func TestHTTPMetricsUsesRawPathForUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to build metrics: %v", err)
	}

	router := gin.New()
	router.Use(metrics.Handler())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	labels := prometheus.Labels{
		"method": http.MethodGet,
		"route":  "/nope",
		"status": "404",
	}

	if got := testutil.ToFloat64(metrics.Requests.With(labels)); got != 1 {
		t.Fatalf("expected unmatched request counted under raw path, got %f", got)
	}
}

func TestHTTPMetricsSharedRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to build first metrics: %v", err)
	}

	second, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("expected duplicate registration to reuse collectors, got %v", err)
	}

	labels := prometheus.Labels{"method": "GET", "route": "/", "status": "200"}
	first.Requests.With(labels).Inc()
	second.Requests.With(labels).Inc()

	if got := testutil.ToFloat64(first.Requests.With(labels)); got != 2 {
		t.Fatalf("expected shared counter at 2, got %f", got)
	}
}

func TestRecordAuthzDecision(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to build metrics: %v", err)
	}

	metrics.RecordAuthzDecision("work-orders:edit", "allowed")
	metrics.RecordAuthzDecision("work-orders:edit", "allowed")
	metrics.RecordAuthzDecision("work-orders:delete", "denied")

	allowed := prometheus.Labels{"permission": "work-orders:edit", "outcome": "allowed"}
	if got := testutil.ToFloat64(metrics.AuthzDecisions.With(allowed)); got != 2 {
		t.Fatalf("expected 2 allowed decisions, got %f", got)
	}

	denied := prometheus.Labels{"permission": "work-orders:delete", "outcome": "denied"}
	if got := testutil.ToFloat64(metrics.AuthzDecisions.With(denied)); got != 1 {
		t.Fatalf("expected 1 denied decision, got %f", got)
	}
}

func TestNilMetricsHandlerIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var metrics *HTTPMetrics

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from nil metrics handler, got %d", rr.Code)
	}

	metrics.RecordAuthzDecision("work-orders:view", "allowed")
}
