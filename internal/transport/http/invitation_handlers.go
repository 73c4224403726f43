package http

import (
	"net/http"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	res, err := h.Invitations.List(r.Context(), currentActor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req dto.InvitationCreateRequest
	if !decode(w, r, &req) {
		return
	}
	inv, err := h.Invitations.Create(r.Context(), currentActor(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// The raw token travels in the invitation email only; the list and
	// show surfaces never include it.
	writeJSON(w, http.StatusCreated, invitationResponse(inv))
}

func (h *Handler) handleCancelInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "invitationID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	if err := h.Invitations.Cancel(r.Context(), currentActor(r.Context()), domain.InvitationID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleResendInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "invitationID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	inv, err := h.Invitations.Resend(r.Context(), currentActor(r.Context()), domain.InvitationID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitationResponse(inv))
}

// handleShowInvitation is the public acceptance page lookup. Expired
// invitations surface as gone, not as missing, so the invitee can ask for
// a fresh one.
func (h *Handler) handleShowInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invitations.GetByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if inv.Expired(time.Now().UTC()) {
		writeError(w, r, domain.ErrExpired)
		return
	}
	writeJSON(w, http.StatusOK, invitationResponse(inv))
}

func (h *Handler) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	accepted, err := h.Invitations.Accept(r.Context(), chi.URLParam(r, "token"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !accepted {
		// Tell an invitee who already joined apart from one holding a
		// lapsed token.
		if inv, lookupErr := h.Invitations.GetByToken(r.Context(), chi.URLParam(r, "token")); lookupErr == nil && inv.Accepted() {
			writeJSON(w, http.StatusConflict, errorBody{Error: "invitation already accepted"})
			return
		}
		writeError(w, r, domain.ErrExpired)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

func invitationResponse(inv *domain.AccountInvitation) dto.InvitationView {
	view := dto.InvitationView{
		ID:        inv.ID.String(),
		Name:      inv.Name,
		Email:     inv.Email,
		Role:      string(inv.Role()),
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
	}
	if inv.AcceptedAt != nil {
		accepted := inv.AcceptedAt.Format(time.RFC3339)
		view.AcceptedAt = &accepted
	}
	return view
}
