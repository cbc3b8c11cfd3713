// Package metrics exposes Prometheus counters for the query builder service.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

var (
	// CollisionChecksTotal counts drop checks by verdict name.
	CollisionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querybuilder_collision_checks_total",
			Help: "Total number of concept drop checks by verdict",
		},
		[]string{"verdict"},
	)

	// HTTPRequestsTotal counts API requests by method and response status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querybuilder_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "status_code"},
	)

	// HTTPRequestDuration tracks request latency by method.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "querybuilder_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// ObserveVerdict records one drop check under the verdict's name.
func ObserveVerdict(v fmt.Stringer) {
	CollisionChecksTotal.WithLabelValues(v.String()).Inc()
}

// Middleware counts every request that passes through it. Errors returned by
// the handler are counted under the status they will be rendered with.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(c.Request().Method))
			err := next(c)
			timer.ObserveDuration()

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CounterValue reads the current value of a labelled counter. Intended for
// tests.
func CounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	m, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		return 0, err
	}
	if pb.Counter == nil {
		return 0, nil
	}
	return pb.Counter.GetValue(), nil
}
