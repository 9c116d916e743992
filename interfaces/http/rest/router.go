package rest

import (
	"net/http"

	"doi-requests-backend/interfaces/http/rest/handlers"
	"doi-requests-backend/interfaces/http/rest/middleware"
	pkgerrors "doi-requests-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions holds the switches of the HTTP surface
type RouterOptions struct {
	EnableCORS     bool
	AllowedOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	doiRequests   *handlers.DoiRequestHandler
	authenticator *middleware.Authenticator
	errorHandler  *pkgerrors.ErrorHandler
	options       RouterOptions
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	doiRequests *handlers.DoiRequestHandler,
	authenticator *middleware.Authenticator,
	errorHandler *pkgerrors.ErrorHandler,
	options RouterOptions,
	logger *zap.Logger,
) *Router {
	return &Router{
		doiRequests:   doiRequests,
		authenticator: authenticator,
		errorHandler:  errorHandler,
		options:       options,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errorHandler.Middleware)

	if rt.options.EnableCORS {
		origins := rt.options.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Location", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.Handle(w, r, pkgerrors.NewNotFoundError("Resource not found"))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.Handle(w, r, pkgerrors.NewMethodNotAllowedError(r.Method))
	})

	// Health check
	router.Get("/health", rt.healthCheck)

	router.Route("/doi-request", func(r chi.Router) {
		r.Use(rt.authenticator.Middleware)

		r.Post("/", rt.doiRequests.CreateDoiRequest)
		r.Get("/", rt.doiRequests.ListDoiRequests)

		r.Route("/{"+handlers.PublicationIdentifierParam+"}", func(r chi.Router) {
			r.Get("/", rt.doiRequests.GetDoiRequest)
			r.Patch("/", rt.doiRequests.UpdateDoiRequest)
			r.Put("/", rt.doiRequests.UpdateDoiRequest)
			r.Post("/message", rt.doiRequests.AddDoiRequestMessage)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
		rt.logger.Warn("Failed to write health response", zap.Error(err))
	}
}
