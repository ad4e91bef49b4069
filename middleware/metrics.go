package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
)

// RequestMetrics is satisfied by *aws.MetricsClient.
type RequestMetrics interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

// MetricsMiddleware records request count, latency and error classes to
// CloudWatch, labelled by enrollment flow. Health checks are not counted.
// A nil or disabled recorder makes it a pass-through.
func MetricsMiddleware(metrics RequestMetrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || !metrics.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		flow := RouteFlow(c.FullPath())
		if flow == FlowHealth {
			return
		}
		duration := time.Since(start)
		statusCode := c.Writer.Status()
		dimensions := map[string]string{
			"Flow":   flow,
			"Method": c.Request.Method,
			"Status": statusCodeToRange(statusCode),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			record := func(err error) {
				if err != nil {
					logger.Debug("Failed to record request metric", zap.String("flow", flow), zap.Error(err))
				}
			}
			record(metrics.RecordCount(ctx, awspkg.MetricHTTPRequests, dimensions))
			record(metrics.RecordLatency(ctx, awspkg.MetricHTTPLatency, duration, dimensions))

			if statusCode >= 400 {
				record(metrics.RecordCount(ctx, awspkg.MetricHTTPErrors, dimensions))
				if statusCode < 500 {
					record(metrics.RecordCount(ctx, awspkg.MetricHTTP4xx, dimensions))
				} else {
					record(metrics.RecordCount(ctx, awspkg.MetricHTTP5xx, dimensions))
				}
			}
		}()
	}
}

// Flow labels used as the CloudWatch "Flow" dimension.
const (
	FlowCheckoutAPI  = "checkout_api"
	FlowCheckoutPage = "checkout_page"
	FlowWebhook      = "stripe_webhook"
	FlowEmail        = "email"
	FlowAdmin        = "admin"
	FlowHealth       = "health"
	FlowUnmatched    = "unmatched"
)

// RouteFlow maps a gin route pattern to its flow label. Patterns keep
// /checkout/:slug as one value regardless of slug.
func RouteFlow(fullPath string) string {
	switch {
	case fullPath == "":
		return FlowUnmatched
	case fullPath == "/health":
		return FlowHealth
	case strings.HasPrefix(fullPath, "/api/checkout"):
		return FlowCheckoutAPI
	case strings.HasPrefix(fullPath, "/api/webhook"):
		return FlowWebhook
	case strings.HasPrefix(fullPath, "/api/admin"):
		return FlowAdmin
	case fullPath == "/api/send-email" || fullPath == "/api/test-email":
		return FlowEmail
	case strings.HasPrefix(fullPath, "/checkout"):
		return FlowCheckoutPage
	default:
		return FlowUnmatched
	}
}

func statusCodeToRange(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
