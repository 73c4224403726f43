package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/observability/metrics"
	"github.com/aliumairdev/saaskit/internal/policy"
	"github.com/aliumairdev/saaskit/internal/service"
	"github.com/aliumairdev/saaskit/internal/store"
	"github.com/google/uuid"
)

const expiredListLimit = 10

type InvitationServiceImpl struct {
	Store    dataStore
	Notifier notifier
	policy   policy.InvitationPolicy

	now func() time.Time
}

var _ service.InvitationService = (*InvitationServiceImpl)(nil)

func NewInvitationServiceImpl(st *store.Store) *InvitationServiceImpl {
	return &InvitationServiceImpl{
		Store:    newGormStoreAdapter(st),
		Notifier: noopNotifier{},
		now:      time.Now,
	}
}

func (s *InvitationServiceImpl) List(ctx context.Context, actor policy.Context) (*dto.InvitationListResponse, error) {
	if !s.policy.CanIndex(actor) {
		return nil, domain.ErrNotAuthorized
	}
	now := s.now().UTC()
	pending, err := s.Store.Invitations().ListPending(ctx, actor.Account.ID, now)
	if err != nil {
		return nil, err
	}
	expired, err := s.Store.Invitations().ListExpired(ctx, actor.Account.ID, now, expiredListLimit)
	if err != nil {
		return nil, err
	}
	out := &dto.InvitationListResponse{
		Pending: make([]dto.InvitationView, 0, len(pending)),
		Expired: make([]dto.InvitationView, 0, len(expired)),
	}
	for _, inv := range pending {
		out.Pending = append(out.Pending, invitationView(inv))
	}
	for _, inv := range expired {
		out.Expired = append(out.Expired, invitationView(inv))
	}
	return out, nil
}

// Create validates and persists a new invitation. The token and expiry are
// defaulted only when unset. An invitee who is already a member, or who
// already has an invitation for this account, is rejected.
func (s *InvitationServiceImpl) Create(ctx context.Context, actor policy.Context, r dto.InvitationCreateRequest) (*domain.AccountInvitation, error) {
	result := "success"
	defer func() { metrics.InvitationsTotal.WithLabelValues("create", result).Inc() }()

	if !s.policy.CanCreate(actor) {
		result = "denied"
		return nil, domain.ErrNotAuthorized
	}

	email := strings.ToLower(strings.TrimSpace(r.Email))
	name := strings.TrimSpace(r.Name)
	role := domain.Role(r.Role)
	if role == "" {
		role = domain.RoleMember
	}

	ve := domain.NewValidationError()
	if email == "" || !emailPattern.MatchString(email) {
		ve.Add("email", "is invalid")
	}
	if name == "" {
		ve.Add("name", "can't be blank")
	}
	if !domain.ValidRole(role) {
		ve.Add("role", "is not included in the list")
	}
	if ve.Any() {
		result = "failure"
		return nil, ve
	}

	alreadyMember, err := s.Store.Memberships().ExistsByEmail(ctx, actor.Account.ID, email)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if alreadyMember {
		result = "failure"
		return nil, domain.NewValidationError().Add("email", "is already a member of this account")
	}

	token, err := generateSecret(32)
	if err != nil {
		result = "failure"
		return nil, err
	}
	now := s.now().UTC()
	inv := &domain.AccountInvitation{
		ID:          uuid.New(),
		AccountID:   actor.Account.ID,
		InvitedByID: actor.User.ID,
		Token:       token,
		Name:        name,
		Email:       email,
		Roles:       domain.RoleSet{role: true},
		ExpiresAt:   now.Add(domain.InvitationTTL),
		CreatedAt:   now,
	}
	if err := s.Store.Invitations().Create(ctx, inv); err != nil {
		result = "failure"
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError().Add("email", "has already been invited to this account")
		}
		return nil, err
	}

	if err := s.Notifier.InvitationCreated(ctx, inv); err != nil {
		slog.Warn("invitation notification failed", "invitation_id", inv.ID, "error", err)
	}
	slog.Info("invitation created", "invitation_id", inv.ID, "account_id", inv.AccountID)
	return inv, nil
}

func (s *InvitationServiceImpl) Cancel(ctx context.Context, actor policy.Context, id domain.InvitationID) error {
	if !s.policy.CanDestroy(actor) {
		return domain.ErrNotAuthorized
	}
	inv, err := s.Store.Invitations().GetByID(ctx, actor.Account.ID, id)
	if err != nil {
		return err
	}
	if err := s.Store.Invitations().Delete(ctx, inv.ID); err != nil {
		return err
	}
	metrics.InvitationsTotal.WithLabelValues("cancel", "success").Inc()
	return nil
}

// Resend refreshes a lapsed invitation's expiry, making it pending again,
// then re-triggers delivery. A still-pending invitation is re-sent as is.
func (s *InvitationServiceImpl) Resend(ctx context.Context, actor policy.Context, id domain.InvitationID) (*domain.AccountInvitation, error) {
	if !s.policy.CanResend(actor) {
		return nil, domain.ErrNotAuthorized
	}
	inv, err := s.Store.Invitations().GetByID(ctx, actor.Account.ID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if inv.Expired(now) {
		refreshed := now.Add(domain.InvitationTTL)
		if err := s.Store.Invitations().Refresh(ctx, inv.ID, refreshed); err != nil {
			return nil, err
		}
		inv.ExpiresAt = refreshed
	}
	if err := s.Notifier.InvitationCreated(ctx, inv); err != nil {
		slog.Warn("invitation notification failed", "invitation_id", inv.ID, "error", err)
	}
	metrics.InvitationsTotal.WithLabelValues("resend", "success").Inc()
	return inv, nil
}

func (s *InvitationServiceImpl) GetByToken(ctx context.Context, token string) (*domain.AccountInvitation, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	return s.Store.Invitations().GetByToken(ctx, token)
}

// Accept upserts the membership with the invitation's roles and stamps
// accepted_at in one transaction; either both happen or neither does.
// Expired or already-accepted invitations return false with no mutation.
// The invitation email is advisory: any authenticated holder of the token
// may accept.
func (s *InvitationServiceImpl) Accept(ctx context.Context, token string, user *domain.User) (bool, error) {
	result := "success"
	defer func() { metrics.InvitationsTotal.WithLabelValues("accept", result).Inc() }()

	inv, err := s.Store.Invitations().GetByToken(ctx, token)
	if err != nil {
		result = "failure"
		return false, err
	}
	now := s.now().UTC()
	if inv.Expired(now) || inv.Accepted() {
		result = "failure"
		return false, nil
	}

	err = s.Store.WithTx(ctx, func(tx storeTx) error {
		au, err := tx.Memberships().Get(ctx, inv.AccountID, user.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			au = &domain.AccountUser{
				ID:        uuid.New(),
				AccountID: inv.AccountID,
				UserID:    user.ID,
				Roles:     cloneRoles(inv.Roles),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Memberships().Create(ctx, au); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			au.Roles = cloneRoles(inv.Roles)
			au.UpdatedAt = now
			if err := tx.Memberships().Update(ctx, au); err != nil {
				return err
			}
		}
		return tx.Invitations().MarkAccepted(ctx, inv.ID, now)
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, domain.ErrDuplicate) {
			// Lost the accept race; the other caller won.
			return false, nil
		}
		return false, err
	}

	slog.Info("invitation accepted", "invitation_id", inv.ID, "account_id", inv.AccountID, "user_id", user.ID)
	return true, nil
}

func cloneRoles(roles domain.RoleSet) domain.RoleSet {
	out := domain.RoleSet{}
	for r, v := range roles {
		if v {
			out[r] = true
		}
	}
	return out
}

func invitationView(inv domain.AccountInvitation) dto.InvitationView {
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
