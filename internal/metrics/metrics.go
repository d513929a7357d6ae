package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "social_ws_connections",
		Help: "Current number of active websocket connections",
	})
	OnlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "social_online_users",
		Help: "Current number of users with a joined connection",
	})
	MessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "social_messages_total",
		Help: "Total number of direct messages persisted",
	})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(WsConnections, OnlineUsers, MessagesTotal, HttpRequestsTotal, HttpRequestDuration)
}

// EchoMiddleware records basic request metrics for Prometheus to scrape.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			labels := prometheus.Labels{"method": c.Request().Method, "path": path, "status": strconv.Itoa(status)}
			HttpRequestsTotal.With(labels).Inc()
			HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
