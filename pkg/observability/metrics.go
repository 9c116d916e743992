package observability

import (
	"context"
	"reflect"
	"time"

	"doi-requests-backend/application/commands/bus"
	querybus "doi-requests-backend/application/queries/bus"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used for metrics
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ CloudWatchAPI = (*cloudwatch.Client)(nil)

// Metrics handles application metrics and monitoring
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordCommandExecution records duration and count of a command execution
func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	dimensions := []types.Dimension{
		{Name: aws.String("CommandName"), Value: aws.String(commandName)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}

	m.put(ctx,
		types.MetricDatum{
			MetricName: aws.String("CommandExecution"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(m.now()),
		},
		types.MetricDatum{
			MetricName: aws.String("CommandCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(m.now()),
		},
	)
}

// Increment adds one to a counter labelled with the query type
func (m *Metrics) Increment(ctx context.Context, metric, label string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(metric),
		Dimensions: []types.Dimension{{Name: aws.String("QueryType"), Value: aws.String(label)}},
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(m.now()),
	})
}

// StartTimer starts a latency measurement reported when the timer stops
func (m *Metrics) StartTimer(ctx context.Context, metric, label string) querybus.Timer {
	return &timer{metrics: m, ctx: ctx, metric: metric, label: label, start: m.now()}
}

type timer struct {
	metrics *Metrics
	ctx     context.Context
	metric  string
	label   string
	start   time.Time
}

func (t *timer) Stop() {
	elapsed := t.metrics.now().Sub(t.start)
	t.metrics.put(t.ctx, types.MetricDatum{
		MetricName: aws.String(t.metric),
		Dimensions: []types.Dimension{{Name: aws.String("QueryType"), Value: aws.String(t.label)}},
		Value:      aws.Float64(float64(elapsed.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(t.metrics.now()),
	})
}

// CommandMiddleware records execution metrics for every command
func (m *Metrics) CommandMiddleware() bus.Middleware {
	return func(next bus.CommandHandler) bus.CommandHandler {
		return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			start := m.now()
			err := next.Handle(ctx, cmd)
			m.RecordCommandExecution(ctx, reflect.TypeOf(cmd).Name(), m.now().Sub(start), err)
			return err
		})
	}
}

// put sends data points; failures are logged and never surface to the caller
func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	if m.client == nil {
		return
	}

	_, err := m.client.PutMetricData(context.WithoutCancel(ctx), &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to send metrics",
			zap.String("namespace", m.namespace),
			zap.Error(err),
		)
	}
}
