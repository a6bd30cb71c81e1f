package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	FollowOperations   *prometheus.CounterVec
	VoteOperations     *prometheus.CounterVec
	BookmarkOperations *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the counters and registers them with reg. Passing a fresh
// prometheus.NewRegistry keeps tests independent of the global registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method and status class",
			},
			[]string{"method", "status_class"},
		),
		FollowOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "follow_operations_total",
				Help: "Follow and unfollow attempts by result",
			},
			[]string{"op", "result"},
		),
		VoteOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vote_operations_total",
				Help: "Like, dislike, upvote and downvote toggles by outcome",
			},
			[]string{"target", "polarity", "outcome"},
		),
		BookmarkOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmark_operations_total",
				Help: "Bookmark add and remove attempts by result",
			},
			[]string{"op", "result"},
		),
		gatherer: reg,
	}

	reg.MustRegister(m.HTTPRequests, m.FollowOperations, m.VoteOperations, m.BookmarkOperations)
	return m
}

func (m *Metrics) ObserveFollow(op string, err error) {
	if m == nil {
		return
	}
	m.FollowOperations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveVote(target, polarity, outcome string) {
	if m == nil {
		return
	}
	m.VoteOperations.WithLabelValues(target, polarity, outcome).Inc()
}

func (m *Metrics) ObserveBookmark(op string, err error) {
	if m == nil {
		return
	}
	m.BookmarkOperations.WithLabelValues(op, result(err)).Inc()
}

// Middleware counts every request by method and status class (2xx, 4xx, ...).
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			m.HTTPRequests.WithLabelValues(c.Request().Method, strconv.Itoa(status/100)+"xx").Inc()
			return err
		}
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return fmt.Sprint(apperror.KindOf(err))
}
