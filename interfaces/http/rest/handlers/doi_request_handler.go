package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"doi-requests-backend/application/commands"
	"doi-requests-backend/application/commands/bus"
	"doi-requests-backend/application/projections"
	"doi-requests-backend/application/queries"
	querybus "doi-requests-backend/application/queries/bus"
	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"
	"doi-requests-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PublicationIdentifierParam is the path parameter naming a publication
const PublicationIdentifierParam = "publicationIdentifier"

// Listing roles accepted by the role query parameter
const (
	ListRoleCreator = auth.RoleCreator
	ListRoleCurator = auth.RoleCurator
)

// LocationFunc builds the Location header for a publication
type LocationFunc func(publicationID string) string

// DoiRequestHandler handles DOI request HTTP requests
type DoiRequestHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	location     LocationFunc
	logger       *zap.Logger
}

// NewDoiRequestHandler creates a new DOI request handler
func NewDoiRequestHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	location LocationFunc,
	logger *zap.Logger,
) *DoiRequestHandler {
	return &DoiRequestHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		location:     location,
		logger:       logger,
	}
}

// CreateDoiRequestRequest represents the request body for creating a DOI request
type CreateDoiRequestRequest struct {
	// Identifier is kept raw so that non-string values can be echoed back
	Identifier json.RawMessage `json:"identifier"`
	Message    *string `json:"message,omitempty" validate:"omitempty,notblank,max=10000"`
}

// UpdateDoiRequestRequest represents the request body for changing the status
type UpdateDoiRequestRequest struct {
	DoiRequestStatus *string `json:"doiRequestStatus"`
}

// DoiRequestMessageRequest represents the request body for adding a message
type DoiRequestMessageRequest struct {
	Message *string `json:"message" validate:"required,notblank,max=10000"`
}

// CreateDoiRequest handles POST /doi-request
func (h *DoiRequestHandler) CreateDoiRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateDoiRequestRequest
	if err := h.decode(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	publicationID, err := publicationIDFromJSON(req.Identifier)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user := currentUser(r)
	cmd := commands.CreateDoiRequestCommand{
		PublicationID: publicationID,
		User:          user,
		Message:       req.Message,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetDoiRequestQuery{
		PublicationID: publicationID,
		User:          user,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	w.Header().Set("Location", h.location(publicationID.String()))
	h.respondJSON(w, r, http.StatusCreated, result)
}

// ListDoiRequests handles GET /doi-request?role=creator|curator[&status=]
func (h *DoiRequestHandler) ListDoiRequests(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil || user.Username == "" || user.PublisherID == "" {
		h.errorHandler.Handle(w, r, pkgerrors.NewBadRequestError("Missing from claims: username or publisherId"))
		return
	}

	status := valueobjects.DoiRequestStatusRequested
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := valueobjects.ParseDoiRequestStatus(raw)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		status = parsed
	}

	query := queries.ListDoiRequestsQuery{
		PublisherID: user.PublisherID,
		Status:      status,
	}

	role := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("role")))
	switch role {
	case ListRoleCreator:
		if !user.HasRole(auth.RoleCreator) {
			h.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Role creator is not assigned to user"))
			return
		}
		query.Owner = user.Username
	case ListRoleCurator:
		if !user.IsCurator() {
			h.errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Role curator is not assigned to user"))
			return
		}
	default:
		h.logger.Debug("Unknown listing role", zap.String("role", role))
		h.respondJSON(w, r, http.StatusOK, []projections.DoiRequestSummary{})
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, result)
}

// GetDoiRequest handles GET /doi-request/{publicationIdentifier}
func (h *DoiRequestHandler) GetDoiRequest(w http.ResponseWriter, r *http.Request) {
	publicationID, err := valueobjects.NewPublicationIDFromString(chi.URLParam(r, PublicationIdentifierParam))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetDoiRequestQuery{
		PublicationID: publicationID,
		User:          currentUser(r),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, result)
}

// UpdateDoiRequest handles PATCH and PUT /doi-request/{publicationIdentifier}
func (h *DoiRequestHandler) UpdateDoiRequest(w http.ResponseWriter, r *http.Request) {
	publicationID, err := valueobjects.NewPublicationIDFromString(chi.URLParam(r, PublicationIdentifierParam))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var req UpdateDoiRequestRequest
	if err := h.decode(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if req.DoiRequestStatus == nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewBadRequestError("You must request changes to do"))
		return
	}

	status, err := valueobjects.ParseDoiRequestStatus(*req.DoiRequestStatus)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	cmd := commands.UpdateDoiRequestStatusCommand{
		PublicationID: publicationID,
		User:          currentUser(r),
		Status:        status,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	w.Header().Set("Location", h.location(publicationID.String()))
	w.WriteHeader(http.StatusAccepted)
}

// AddDoiRequestMessage handles POST /doi-request/{publicationIdentifier}/message
func (h *DoiRequestHandler) AddDoiRequestMessage(w http.ResponseWriter, r *http.Request) {
	publicationID, err := valueobjects.NewPublicationIDFromString(chi.URLParam(r, PublicationIdentifierParam))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var req DoiRequestMessageRequest
	if err := h.decode(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	cmd := commands.AddDoiRequestMessageCommand{
		PublicationID: publicationID,
		User:          currentUser(r),
		Text:          *req.Message,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// decode reads a JSON body into dst and validates it
func (h *DoiRequestHandler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.NewBadRequestError("Request body is required")
		}
		return pkgerrors.NewBadRequestError("Invalid request body").WithCause(err)
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return pkgerrors.NewBadRequestError(err.Error())
	}
	return nil
}

func (h *DoiRequestHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	body, err := projections.Marshal(data)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// publicationIDFromJSON parses a body identifier. Absent and null are
// reported as "null"; any other non-string value is reported as its JSON text.
func publicationIDFromJSON(raw json.RawMessage) (valueobjects.PublicationID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return valueobjects.NewPublicationIDFromPointer(nil)
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return valueobjects.NewPublicationIDFromString(string(raw))
	}
	return valueobjects.NewPublicationIDFromString(id)
}

// currentUser returns the authenticated user or nil
func currentUser(r *http.Request) *auth.User {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return nil
	}
	return user
}
