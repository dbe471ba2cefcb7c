package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rolodex/rolodex/internal/auth"
	"github.com/rolodex/rolodex/internal/handler/dto"
	"github.com/rolodex/rolodex/internal/service"
)

// ContactHandler handles HTTP requests for contact operations.
// All routes require an authenticated user; the owner is taken from the
// request context, never from the payload.
type ContactHandler struct {
	svc    *service.ContactService
	logger *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	var req dto.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	birthday, err := req.Validate()
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	contact, err := h.svc.CreateContact(r.Context(), service.CreateContactInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       birthday,
		AdditionalInfo: req.AdditionalInfo,
		OwnerID:        ownerID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_created", "contact_id", contact.ID, "owner_id", ownerID)

	writeJSON(w, http.StatusCreated, dto.ToContactResponse(contact))
}

// Get handles GET /api/v1/contacts/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Contact ID is required")
		return
	}

	contact, err := h.svc.GetContact(r.Context(), id, ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// List handles GET /api/v1/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	query := r.URL.Query()

	limit := 0
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	result, err := h.svc.ListContacts(r.Context(), service.ListContactsInput{
		OwnerID: ownerID,
		Name:    query.Get("name"),
		Email:   query.Get("email"),
		Cursor:  query.Get("cursor"),
		Limit:   limit,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactListResponse(result.Contacts, result.NextCursor, result.HasMore))
}

// Update handles PATCH /api/v1/contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Contact ID is required")
		return
	}

	var req dto.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	contact, err := h.svc.UpdateContact(r.Context(), id, ownerID, patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_updated", "contact_id", contact.ID, "owner_id", ownerID)

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// Delete handles DELETE /api/v1/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Contact ID is required")
		return
	}

	if err := h.svc.DeleteContact(r.Context(), id, ownerID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_deleted", "contact_id", id, "owner_id", ownerID)

	w.WriteHeader(http.StatusNoContent)
}

// UpcomingBirthdays handles GET /api/v1/contacts/birthdays.
func (h *ContactHandler) UpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}

	contacts, err := h.svc.UpcomingBirthdays(r.Context(), ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactListResponse(contacts, "", false))
}

// handleServiceError maps contact service errors to HTTP responses.
func (h *ContactHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		h.writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
	case errors.Is(err, service.ErrContactExists):
		h.writeError(w, http.StatusConflict, "CONTACT_EXISTS", "A contact with this email or phone already exists")
	case errors.Is(err, service.ErrInvalidCursor):
		h.writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Pagination cursor is invalid")
	case errors.Is(err, service.ErrEmptyUpdate):
		h.writeError(w, http.StatusBadRequest, "EMPTY_UPDATE", "Update must change at least one field")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeValidationError writes a 422 for failed request validation.
func (h *ContactHandler) writeValidationError(w http.ResponseWriter, err error) {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		h.writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", verr.Error())
		return
	}
	h.writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
}

// writeError writes an error response.
func (h *ContactHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
