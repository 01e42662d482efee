package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhub_http_requests_total",
			Help: "Total number of HTTP requests processed by devhub.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devhub_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "devhub_ws_active_connections",
			Help: "Number of active realtime connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhub_ws_events_total",
			Help: "Total number of realtime events by direction.",
		},
		[]string{"direction", "event"},
	)
	wsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devhub_ws_dropped_events_total",
			Help: "Realtime events dropped because a client's send buffer was full.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devhub_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	votesCastTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devhub_votes_cast_total",
			Help: "Votes recorded on competition entries.",
		},
	)
	competitionsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devhub_competitions_closed_total",
			Help: "Competitions closed, by trigger (manual or auto).",
		},
		[]string{"trigger"},
	)
	autoCloseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devhub_autoclose_failures_total",
			Help: "Competitions the auto-close sweep failed to close.",
		},
	)
	chatMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devhub_chat_messages_total",
			Help: "Chat messages stored.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		wsDroppedTotal,
		amqpPublishErrorsTotal,
		votesCastTotal,
		competitionsClosedTotal,
		autoCloseFailuresTotal,
		chatMessagesTotal,
	)
}

// MetricsHandler exposes the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

// IncWSEvent counts a realtime event; direction is "in", "out" or "conn".
func IncWSEvent(direction, event string) {
	wsEventsTotal.WithLabelValues(direction, event).Inc()
}

func IncWSDropped() {
	wsDroppedTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncVoteCast() {
	votesCastTotal.Inc()
}

func IncCompetitionClosed(trigger string) {
	competitionsClosedTotal.WithLabelValues(trigger).Inc()
}

func IncAutoCloseFailure() {
	autoCloseFailuresTotal.Inc()
}

func IncChatMessage() {
	chatMessagesTotal.Inc()
}
