//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"doi-requests-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvidePublicationRepository,
	ProvideClock,
	ProvideAccessControl,
	ProvideTracer,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideJWTValidator,
	ProvideAuthenticator,
	ProvideDoiRequestHandler,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
