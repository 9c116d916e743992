package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"doi-requests-backend/application/commands/bus"
	querybus "doi-requests-backend/application/queries/bus"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.PutMetricDataOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type echoQuery struct{}

func (echoQuery) Validate() error { return nil }

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[len(times)-1]
		if i < len(times) {
			t = times[i]
		}
		i++
		return t
	}
}

func TestMetrics_CommandMiddleware(t *testing.T) {
	client := &mockCloudWatch{}
	var input *cloudwatch.PutMetricDataInput
	client.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*cloudwatch.PutMetricDataInput) }).
		Return(&cloudwatch.PutMetricDataOutput{}, nil).Once()

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	metrics := NewMetrics("DoiRequests/test", client, zap.NewNop())
	metrics.now = fixedClock(start, start.Add(42*time.Millisecond))

	failure := errors.New("boom")
	commandBus := bus.NewCommandBus(metrics.CommandMiddleware())
	require.NoError(t, commandBus.Register(pingCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		return failure
	})))

	err := commandBus.Send(context.Background(), pingCommand{})
	assert.ErrorIs(t, err, failure)

	client.AssertExpectations(t)
	require.NotNil(t, input)
	assert.Equal(t, "DoiRequests/test", aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 2)

	execution := input.MetricData[0]
	assert.Equal(t, "CommandExecution", aws.ToString(execution.MetricName))
	assert.Equal(t, float64(42), aws.ToFloat64(execution.Value))
	assert.Equal(t, types.StandardUnitMilliseconds, execution.Unit)
	assert.Equal(t, "pingCommand", aws.ToString(execution.Dimensions[0].Value))
	assert.Equal(t, "failure", aws.ToString(execution.Dimensions[1].Value))
	assert.Equal(t, "CommandCount", aws.ToString(input.MetricData[1].MetricName))
}

func TestMetrics_QueryMiddleware(t *testing.T) {
	client := &mockCloudWatch{}
	var names []string
	client.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*cloudwatch.PutMetricDataInput)
			for _, d := range in.MetricData {
				names = append(names, aws.ToString(d.MetricName)+":"+aws.ToString(d.Dimensions[0].Value))
			}
		}).
		Return(&cloudwatch.PutMetricDataOutput{}, nil)

	metrics := NewMetrics("DoiRequests/test", client, zap.NewNop())
	queryBus := querybus.NewQueryBus()
	handler := querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, queryBus.Register(echoQuery{}, querybus.NewMetricsMiddleware(metrics).Wrap(handler)))

	_, err := queryBus.Ask(context.Background(), echoQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"query_count:echoQuery",
		"query_success:echoQuery",
		"query_duration:echoQuery",
	}, names)
}

func TestMetrics_PutFailureIsLogged(t *testing.T) {
	client := &mockCloudWatch{}
	client.On("PutMetricData", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	core, logs := observer.New(zap.WarnLevel)
	metrics := NewMetrics("DoiRequests/test", client, zap.New(core))

	metrics.RecordCommandExecution(context.Background(), "pingCommand", time.Second, nil)

	assert.Equal(t, 1, logs.FilterMessage("Failed to send metrics").Len())
}

func TestMetrics_WithoutClient(t *testing.T) {
	metrics := NewMetrics("DoiRequests/test", nil, zap.NewNop())

	assert.NotPanics(t, func() {
		metrics.Increment(context.Background(), "query_count", "echoQuery")
		metrics.StartTimer(context.Background(), "query_duration", "echoQuery").Stop()
	})
}
