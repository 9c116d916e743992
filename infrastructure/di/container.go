package di

import (
	"doi-requests-backend/application/commands/bus"
	"doi-requests-backend/application/ports"
	querybus "doi-requests-backend/application/queries/bus"
	"doi-requests-backend/infrastructure/config"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repository ports.PublicationRepository
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Handler    *chi.Mux
}

// Shutdown flushes buffered log entries
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
