// Package metrics publishes operational metrics to CloudWatch.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"hrdocs/internal/types"
)

// Result labels for attempt-style metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Collector records operational metrics. Implementations must be safe for
// concurrent use and must never fail the caller: metric emission errors are
// logged and swallowed.
type Collector interface {
	// RecordRequest emits one API request count and latency pair, dimensioned
	// by endpoint, method and status.
	RecordRequest(ctx context.Context, endpoint, method string, status int, latency time.Duration)
	// RecordRedemption emits one license redemption attempt with its result.
	RecordRedemption(ctx context.Context, result string)
	// RecordAlertBatch emits the size of one compliance alert batch.
	RecordAlertBatch(ctx context.Context, size int)
	// RecordEmailDelivery emits one email delivery attempt with its result.
	RecordEmailDelivery(ctx context.Context, result string, latency time.Duration)
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Compile-time assertion that CloudWatchCollector implements Collector.
var _ Collector = (*CloudWatchCollector)(nil)

// CloudWatchCollector implements Collector by emitting metrics to AWS
// CloudWatch under the shared namespace.
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchCollector creates a Collector publishing to CloudWatch.
func NewCloudWatchCollector(client CloudWatchClient, logger *slog.Logger) *CloudWatchCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchCollector{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
	}
}

func (m *CloudWatchCollector) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to publish metrics",
			slog.String("error", err.Error()),
			slog.Int("datum_count", len(data)),
		)
	}
}

func (m *CloudWatchCollector) RecordRequest(ctx context.Context, endpoint, method string, status int, latency time.Duration) {
	dims := []cwtypes.Dimension{
		{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
		{Name: aws.String(types.DimMethod), Value: aws.String(method)},
		{Name: aws.String(types.DimStatus), Value: aws.String(statusClass(status))},
	}
	m.put(ctx,
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(latency.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
	)
}

func (m *CloudWatchCollector) RecordRedemption(ctx context.Context, result string) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricRedemptionAttempt),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimResult), Value: aws.String(result)},
		},
	})
}

func (m *CloudWatchCollector) RecordAlertBatch(ctx context.Context, size int) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricAlertBatchSize),
		Value:      aws.Float64(float64(size)),
		Unit:       cwtypes.StandardUnitCount,
	})
}

func (m *CloudWatchCollector) RecordEmailDelivery(ctx context.Context, result string, latency time.Duration) {
	m.put(ctx,
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricEmailDelivery),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{
				{Name: aws.String(types.DimResult), Value: aws.String(result)},
			},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricEmailDelivery + "Latency"),
			Value:      aws.Float64(float64(latency.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
		},
	)
}

// statusClass buckets an HTTP status into 2xx/4xx/5xx so CloudWatch dimension
// cardinality stays bounded.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Noop is a Collector that discards all metrics. Used when metrics are
// disabled in config and as a default in tests.
type Noop struct{}

var _ Collector = Noop{}

func (Noop) RecordRequest(context.Context, string, string, int, time.Duration) {}
func (Noop) RecordRedemption(context.Context, string)                          {}
func (Noop) RecordAlertBatch(context.Context, int)                             {}
func (Noop) RecordEmailDelivery(context.Context, string, time.Duration)        {}
