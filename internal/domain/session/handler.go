package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pawsit/pawsit-api/internal/middleware"
	"github.com/pawsit/pawsit-api/internal/pkg/bookingapi"
	"github.com/pawsit/pawsit-api/internal/pkg/response"
	"github.com/pawsit/pawsit-api/internal/pkg/validator"
)

// Handler handles session HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a session handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /sessions?scope=owner|sitter|open
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := ParseScope(r.URL.Query().Get("scope"))
	if !ok {
		response.BadRequest(w, "Scope must be one of: owner, sitter, open")
		return
	}

	// Sitter-only scopes are hidden from pure owners and vice versa
	role := middleware.GetRole(r.Context())
	switch scope {
	case ScopeOwner:
		if role != middleware.RoleOwner && role != middleware.RoleBoth {
			response.Forbidden(w, "Owner scope requires an owner account")
			return
		}
	case ScopeSitter, ScopeOpen:
		if role != middleware.RoleSitter && role != middleware.RoleBoth {
			response.Forbidden(w, "Sitter scope requires a sitter account")
			return
		}
	}

	var statusFilter Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		statusFilter = Status(raw)
		if !statusFilter.IsValid() {
			response.BadRequest(w, "Unknown status filter")
			return
		}
	}

	actorID := middleware.GetUserID(r.Context())
	sessions, err := h.service.ListSessions(h.upstreamCtx(r), scope, actorID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if statusFilter != "" {
		filtered := make([]SessionResponse, 0, len(sessions))
		for _, s := range sessions {
			if s.Status == statusFilter {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}

	response.OK(w, sessions)
}

// Create handles POST /sessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	ownerID := middleware.GetUserID(r.Context())
	result, err := h.service.CreateSession(h.upstreamCtx(r), ownerID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Created(w, result)
}

// Update handles PUT /sessions
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSessionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	ownerID := middleware.GetUserID(r.Context())
	result, err := h.service.UpdateSession(h.upstreamCtx(r), ownerID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, result)
}

// Delete handles DELETE /sessions
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteSessionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	ownerID := middleware.GetUserID(r.Context())
	result, err := h.service.DeleteSession(h.upstreamCtx(r), ownerID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, result)
}

// ChangeStatus handles PATCH /sessions/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusChangeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	// Sitter actions are closed to owner-only accounts and cancel to
	// sitter-only accounts; unknown actions fall through to the service.
	role := middleware.GetRole(r.Context())
	switch Action(req.Action) {
	case ActionAccept, ActionDecline, ActionStart, ActionComplete:
		if role != middleware.RoleSitter && role != middleware.RoleBoth {
			response.Forbidden(w, "Status action requires a sitter account")
			return
		}
	case actionCancel:
		if role != middleware.RoleOwner && role != middleware.RoleBoth {
			response.Forbidden(w, "Cancelling requires an owner account")
			return
		}
	}

	actorID := middleware.GetUserID(r.Context())
	result, err := h.service.ChangeStatus(h.upstreamCtx(r), actorID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, result)
}

// upstreamCtx attaches the caller's bearer token so backend calls run as the
// acting user
func (h *Handler) upstreamCtx(r *http.Request) context.Context {
	ctx := r.Context()
	if token := middleware.GetRawToken(ctx); token != "" {
		ctx = bookingapi.WithToken(ctx, token)
	}
	return ctx
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrActionNotAllowed),
		errors.Is(err, ErrNotRecordOwner),
		errors.Is(err, ErrNotAssignedSitter):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrRecordClaimed),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, bookingapi.ErrConflict):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrUnknownAction),
		errors.Is(err, ErrNoRecords),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrIncompleteRange):
		response.BadRequest(w, err.Error())
	default:
		var apiErr *bookingapi.APIError
		if errors.As(err, &apiErr) || isUpstreamFailure(err) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Booking backend call failed")
			response.BadGateway(w, "Booking service unavailable")
			return
		}
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Session operation failed")
		response.InternalError(w)
	}
}

// isUpstreamFailure recognizes transport-level errors from the backend client
func isUpstreamFailure(err error) bool {
	return errors.Is(err, bookingapi.ErrUpstreamTimeout) || errors.Is(err, bookingapi.ErrUpstreamUnreachable)
}
