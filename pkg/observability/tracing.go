package observability

import (
	"context"
	"fmt"
	"reflect"

	"doi-requests-backend/application/commands/bus"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// InstrumentAWSClients records every AWS SDK call made with cfg as an X-Ray
// subsegment. Must be called before clients are created from cfg.
func InstrumentAWSClients(cfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)
}

// Tracer provides distributed tracing capabilities
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// TraceFunction wraps a function with a subsegment named after the service
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, seg := xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	if seg == nil {
		return fn(ctx)
	}
	defer seg.Close(nil)

	err := fn(ctx)
	if err != nil {
		_ = seg.AddError(err)
	}

	return err
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// CommandMiddleware traces each command in its own subsegment
func (t *Tracer) CommandMiddleware() bus.Middleware {
	return func(next bus.CommandHandler) bus.CommandHandler {
		return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			name := reflect.TypeOf(cmd).Name()
			return t.TraceFunction(ctx, name, func(ctx context.Context) error {
				t.AddAnnotation(ctx, "command", name)
				return next.Handle(ctx, cmd)
			})
		})
	}
}
