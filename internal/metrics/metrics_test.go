package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFollow(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFollow("follow", nil)
	m.ObserveFollow("follow", apperror.New(apperror.Conflict, "Already following this user"))
	m.ObserveFollow("follow", apperror.New(apperror.Conflict, "Already following this user"))

	if got := testutil.ToFloat64(m.FollowOperations.WithLabelValues("follow", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FollowOperations.WithLabelValues("follow", "conflict")); got != 2 {
		t.Errorf("conflict count = %v, want 2", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFollow("follow", nil)
	m.ObserveVote("post", "like", "added")
	m.ObserveBookmark("add", nil)
}

func TestMiddlewareCountsStatusClass(t *testing.T) {
	m := New(prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	})

	for _, path := range []string{"/ok", "/missing", "/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "2xx")); got != 1 {
		t.Errorf("2xx = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "4xx")); got != 2 {
		t.Errorf("4xx = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatal("exposition is missing http_requests_total")
	}
}
