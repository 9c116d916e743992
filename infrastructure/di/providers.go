package di

import (
	"context"
	"fmt"

	"doi-requests-backend/application/commands"
	"doi-requests-backend/application/commands/bus"
	commands_handlers "doi-requests-backend/application/commands/handlers"
	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/queries"
	querybus "doi-requests-backend/application/queries/bus"
	queries_handlers "doi-requests-backend/application/queries/handlers"
	"doi-requests-backend/application/services"
	"doi-requests-backend/infrastructure/config"
	"doi-requests-backend/infrastructure/persistence/dynamodb"
	"doi-requests-backend/infrastructure/persistence/memory"
	"doi-requests-backend/interfaces/http/rest"
	"doi-requests-backend/interfaces/http/rest/handlers"
	"doi-requests-backend/interfaces/http/rest/middleware"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"
	"doi-requests-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "doi-requests"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		observability.InstrumentAWSClients(&awsCfg)
	}

	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the metrics recorder, or nil when metrics are disabled
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics(cfg.MetricsNamespace(), client, logger)
}

// ProvidePublicationRepository creates the publication repository selected by STORE
func ProvidePublicationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) (ports.PublicationRepository, error) {
	switch cfg.Store {
	case config.StoreDynamoDB:
		return dynamodb.NewPublicationRepository(client, cfg.TableName, cfg.IndexName, logger), nil
	case config.StoreMemory:
		logger.Warn("Using in-memory publication store")
		return memory.NewPublicationRepository(), nil
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
}

// ProvideClock returns the wall clock
func ProvideClock() ports.Clock {
	return ports.SystemClock{}
}

// ProvideAccessControl creates the access control service
func ProvideAccessControl(logger *zap.Logger) *services.AccessControl {
	return services.NewAccessControl(logger)
}

// ProvideTracer creates a tracer, or nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(serviceName)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repo ports.PublicationRepository,
	accessControl *services.AccessControl,
	clock ports.Clock,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middleware := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if tracer != nil {
		middleware = append(middleware, tracer.CommandMiddleware())
	}
	if metrics != nil {
		middleware = append(middleware, metrics.CommandMiddleware())
	}
	commandBus := bus.NewCommandBus(middleware...)

	createHandler := commands_handlers.NewCreateDoiRequestHandler(repo, accessControl, clock, logger)
	if err := commandBus.Register(commands.CreateDoiRequestCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateDoiRequestCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return createHandler.Handle(ctx, createCmd)
		},
	}); err != nil {
		return nil, err
	}

	updateHandler := commands_handlers.NewUpdateDoiRequestStatusHandler(repo, accessControl, clock, logger)
	if err := commandBus.Register(commands.UpdateDoiRequestStatusCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateDoiRequestStatusCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return updateHandler.Handle(ctx, updateCmd)
		},
	}); err != nil {
		return nil, err
	}

	messageHandler := commands_handlers.NewAddDoiRequestMessageHandler(repo, accessControl, clock, logger)
	if err := commandBus.Register(commands.AddDoiRequestMessageCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			messageCmd, ok := cmd.(commands.AddDoiRequestMessageCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return messageHandler.Handle(ctx, messageCmd)
		},
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.PublicationRepository,
	accessControl *services.AccessControl,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	wrap := func(h querybus.QueryHandler) querybus.QueryHandler { return h }
	if metrics != nil {
		wrap = querybus.NewMetricsMiddleware(metrics).Wrap
	}

	listHandler := queries_handlers.NewListDoiRequestsHandler(repo, logger)
	if err := queryBus.Register(queries.ListDoiRequestsQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListDoiRequestsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return listHandler.Handle(ctx, listQuery)
		},
	})); err != nil {
		return nil, err
	}

	getHandler := queries_handlers.NewGetDoiRequestHandler(repo, accessControl, logger)
	if err := queryBus.Register(queries.GetDoiRequestQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetDoiRequestQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getHandler.Handle(ctx, getQuery)
		},
	})); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler. Stack traces are only
// returned when DEBUG_ERRORS is set.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.DebugErrors)
}

// ProvideJWTValidator creates the bearer token validator of the local server.
// It returns nil when no JWT_SECRET is configured.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideAuthenticator creates the authentication middleware
func ProvideAuthenticator(validator *auth.JWTValidator, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *middleware.Authenticator {
	return middleware.NewAuthenticator(validator, errorHandler, logger)
}

// ProvideDoiRequestHandler creates the DOI request HTTP handler
func ProvideDoiRequestHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *handlers.DoiRequestHandler {
	return handlers.NewDoiRequestHandler(commandBus, queryBus, errorHandler, cfg.PublicationURL, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	doiRequests *handlers.DoiRequestHandler,
	authenticator *middleware.Authenticator,
	errorHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(doiRequests, authenticator, errorHandler, rest.RouterOptions{
		EnableCORS:     cfg.EnableCORS,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)
}

// ProvideHTTPHandler builds the routes
func ProvideHTTPHandler(router *rest.Router) *chi.Mux {
	return router.Setup()
}
