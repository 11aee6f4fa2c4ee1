package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anupkotian/event-registration/internal/model"
	"github.com/anupkotian/event-registration/internal/repository"
	"github.com/anupkotian/event-registration/internal/service"
)

// RegistrationHandler holds the HTTP handlers for seat registrations.
// All routes require an authenticated user in the request context.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register handles POST /registrations
// Reserves one seat on the requested event for the authenticated user.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.EventID == "" {
		writeError(w, http.StatusBadRequest, "event_id is required")
		return
	}

	reg, err := h.svc.Register(r.Context(), userID, req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, repository.ErrSeatsExhausted):
			writeError(w, http.StatusBadRequest, "no available seats for this event")
		case errors.Is(err, repository.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, "you are already registered for this event")
		case errors.Is(err, repository.ErrContention):
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "registration is busy, please retry")
		default:
			writeError(w, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// Cancel handles DELETE /registrations/{eventID}
// Releases the authenticated user's confirmed seat.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	eventID := chi.URLParam(r, "eventID")
	err := h.svc.Cancel(r.Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, repository.ErrNoActiveRegistration):
			writeError(w, http.StatusNotFound, "no active registration found")
		case errors.Is(err, repository.ErrContention):
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "cancellation is busy, please retry")
		default:
			writeError(w, http.StatusInternalServerError, "failed to cancel registration")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "registration cancelled"})
}

// MyRegistrations handles GET /registrations/my-registrations
// Returns the user's confirmed registrations split into upcoming and
// past.
func (h *RegistrationHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	regs, err := h.svc.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}

	writeJSON(w, http.StatusOK, regs)
}
