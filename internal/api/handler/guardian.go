package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ridewake/ridewake/internal/account"
	"github.com/ridewake/ridewake/internal/api/models"
	"github.com/ridewake/ridewake/internal/api/response"
)

// GuardianHandler handles guardian contact endpoints.
type GuardianHandler struct {
	accounts *account.Service
}

// NewGuardianHandler creates a new GuardianHandler.
func NewGuardianHandler(accounts *account.Service) *GuardianHandler {
	return &GuardianHandler{accounts: accounts}
}

func toGuardian(c *account.GuardianContact) models.Guardian {
	return models.Guardian{
		Name:      c.Name,
		Phone:     c.Phone,
		Message:   c.Message,
		CreatedAt: models.Timestamp(c.CreatedAt),
		UpdatedAt: models.Timestamp(c.UpdatedAt),
	}
}

// GetGuardian handles GET /v1/me/guardian - fetch the guardian contact.
func (h *GuardianHandler) GetGuardian(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	contact, err := h.accounts.GetGuardian(r.Context(), userID)
	if err != nil {
		if errors.Is(err, account.ErrGuardianNotFound) {
			response.NotFound(w, r, "no guardian contact configured")
			return
		}
		response.InternalError(w, r, "failed to load guardian contact")
		return
	}

	response.JSON(w, r, http.StatusOK, toGuardian(contact))
}

// UpsertGuardian handles PUT /v1/me/guardian - create or replace the
// guardian contact.
func (h *GuardianHandler) UpsertGuardian(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var req models.GuardianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	contact, err := h.accounts.UpsertGuardian(r.Context(), userID, account.UpsertInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNameRequired):
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "name", Message: "name is required", Code: "REQUIRED"},
			})
		case errors.Is(err, account.ErrInvalidPhone):
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: "phone", Message: "phone number is not valid", Code: "INVALID"},
			})
		default:
			response.InternalError(w, r, "failed to save guardian contact")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toGuardian(contact))
}

// DeleteGuardian handles DELETE /v1/me/guardian - remove the guardian contact.
func (h *GuardianHandler) DeleteGuardian(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	if err := h.accounts.DeleteGuardian(r.Context(), userID); err != nil {
		if errors.Is(err, account.ErrGuardianNotFound) {
			response.NotFound(w, r, "no guardian contact configured")
			return
		}
		response.InternalError(w, r, "failed to delete guardian contact")
		return
	}

	response.NoContent(w, r)
}
