package middleware

import (
	"errors"
	"net/http"
	"strings"

	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"
)

// Authenticator puts the calling user into the request context.
//
// Behind API Gateway the JWT authorizer has already validated the token and
// its claims are read from the proxied request context. Outside Lambda an
// HS256 bearer token is validated locally. A request without credentials
// continues without a user; commands and queries reject it themselves.
type Authenticator struct {
	validator    *auth.JWTValidator
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewAuthenticator creates an Authenticator. validator may be nil, in which
// case bearer tokens are ignored.
func NewAuthenticator(validator *auth.JWTValidator, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Middleware returns the authentication middleware
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := userFromAuthorizer(r); ok {
			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || a.validator == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			a.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Invalid authorization header format"))
			return
		}

		claims, err := a.validator.ValidateToken(authHeader)
		if err != nil {
			a.logger.Debug("Rejected bearer token", zap.Error(err))
			a.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(tokenErrorMessage(err)))
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), claims.User())))
	})
}

// userFromAuthorizer reads the claims of the API Gateway JWT authorizer
func userFromAuthorizer(r *http.Request) (*auth.User, bool) {
	requestContext, ok := core.GetAPIGatewayV2ContextFromContext(r.Context())
	if !ok || requestContext.Authorizer == nil || requestContext.Authorizer.JWT == nil {
		return nil, false
	}
	return auth.UserFromClaims(requestContext.Authorizer.JWT.Claims), true
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}
