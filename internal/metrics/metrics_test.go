package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(auditWriteFailures)
	AuditWriteFailed()
	if got := testutil.ToFloat64(auditWriteFailures); got != before+1 {
		t.Fatalf("audit failures = %v want %v", got, before+1)
	}

	before = testutil.ToFloat64(problemTransitions.WithLabelValues("approved"))
	ProblemEvent("approved")
	if got := testutil.ToFloat64(problemTransitions.WithLabelValues("approved")); got != before+1 {
		t.Fatalf("approved events = %v want %v", got, before+1)
	}
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	ObserveHTTPRequest("GET", "/api/health", "200", 3*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `problemhub_http_requests_total{method="GET",route="/api/health",status="200"}`) {
		t.Fatalf("request counter missing from exposition")
	}
}
