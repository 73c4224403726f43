package http

import (
	"net/http"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	actor := policy.Context{User: currentUser(r.Context())}
	accounts, err := h.Accounts.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountCreateRequest
	if !decode(w, r, &req) {
		return
	}
	actor := policy.Context{User: currentUser(r.Context())}
	acct, err := h.Accounts.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *Handler) handleShowAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Accounts.Get(r.Context(), currentActor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	acct, err := h.Accounts.Update(r.Context(), currentActor(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) handleDestroyAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Destroy(r.Context(), currentActor(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSwitchAccount confirms the actor may use this account as their
// current one; the client persists the choice.
func (h *Handler) handleSwitchAccount(w http.ResponseWriter, r *http.Request) {
	actor := currentActor(r.Context())
	var pol policy.AccountPolicy
	if !pol.CanSwitch(actor) {
		writeError(w, r, domain.ErrNotAuthorized)
		return
	}
	writeJSON(w, http.StatusOK, actor.Account)
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Accounts.Members(r.Context(), currentActor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) handleUpdateMemberRoles(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	var req dto.MemberRolesRequest
	if !decode(w, r, &req) {
		return
	}
	roles := make([]domain.Role, 0, len(req.Roles))
	for _, name := range req.Roles {
		roles = append(roles, domain.Role(name))
	}
	au, err := h.Accounts.UpdateMemberRoles(r.Context(), currentActor(r.Context()), domain.UserID(memberID), roles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, au)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	if err := h.Accounts.RemoveMember(r.Context(), currentActor(r.Context()), domain.UserID(memberID)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Store.Plans().ListVisible(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]planView, 0, len(plans))
	for i := range plans {
		views = append(views, newPlanView(&plans[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// planView is the catalog wire shape. Prices travel both in cents and as
// a display amount so clients don't redo the conversion.
type planView struct {
	domain.Plan
	AmountInDollars float64 `json:"amountInDollars"`
}

func newPlanView(p *domain.Plan) planView {
	return planView{Plan: *p, AmountInDollars: p.AmountInDollars()}
}
