package impl

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/policy"
	"github.com/aliumairdev/saaskit/internal/service"
	"github.com/aliumairdev/saaskit/internal/store"
	"github.com/google/uuid"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

type AccountServiceImpl struct {
	Store dataStore
	// TrialPeriod, when positive, stamps trial_ends_at on new team accounts.
	TrialPeriod time.Duration
	policy      policy.AccountPolicy

	now func() time.Time
}

var _ service.AccountService = (*AccountServiceImpl)(nil)

func NewAccountServiceImpl(st *store.Store, trialPeriod time.Duration) *AccountServiceImpl {
	return &AccountServiceImpl{
		Store:       newGormStoreAdapter(st),
		TrialPeriod: trialPeriod,
		now:         time.Now,
	}
}

func (s *AccountServiceImpl) List(ctx context.Context, actor policy.Context) ([]domain.Account, error) {
	if !s.policy.CanIndex(actor) {
		return nil, domain.ErrNotAuthorized
	}
	return s.Store.Accounts().ListForUser(ctx, actor.User.ID)
}

func (s *AccountServiceImpl) Create(ctx context.Context, actor policy.Context, r dto.AccountCreateRequest) (*domain.Account, error) {
	if !s.policy.CanCreate(actor) {
		return nil, domain.ErrNotAuthorized
	}

	name := strings.TrimSpace(r.Name)
	subdomain := strings.ToLower(strings.TrimSpace(r.Subdomain))
	ve := domain.NewValidationError()
	if name == "" {
		ve.Add("name", "can't be blank")
	}
	if subdomain != "" && !subdomainPattern.MatchString(subdomain) {
		ve.Add("subdomain", "is invalid")
	}
	if ve.Any() {
		return nil, ve
	}

	now := s.now().UTC()
	acct := &domain.Account{
		ID:           uuid.New(),
		Name:         name,
		Personal:     false,
		OwnerID:      actor.User.ID,
		BillingEmail: strings.TrimSpace(r.BillingEmail),
		Subdomain:    subdomain,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.TrialPeriod > 0 {
		trial := now.Add(s.TrialPeriod)
		acct.TrialEndsAt = &trial
	}

	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Accounts().Create(ctx, acct); err != nil {
			return err
		}
		return tx.Memberships().Create(ctx, &domain.AccountUser{
			ID:        uuid.New(),
			AccountID: acct.ID,
			UserID:    actor.User.ID,
			Roles:     domain.RoleSet{domain.RoleOwner: true},
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError().Add("subdomain", "has already been taken")
		}
		return nil, err
	}

	slog.Info("account created", "account_id", acct.ID, "owner_id", acct.OwnerID)
	return acct, nil
}

func (s *AccountServiceImpl) Get(ctx context.Context, actor policy.Context) (*domain.Account, error) {
	if !s.policy.CanShow(actor) {
		return nil, domain.ErrNotAuthorized
	}
	return actor.Account, nil
}

func (s *AccountServiceImpl) Update(ctx context.Context, actor policy.Context, r dto.AccountUpdateRequest) (*domain.Account, error) {
	if !s.policy.CanUpdate(actor) {
		return nil, domain.ErrNotAuthorized
	}

	acct, err := s.Store.Accounts().GetByID(ctx, actor.Account.ID)
	if err != nil {
		return nil, err
	}

	ve := domain.NewValidationError()
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			ve.Add("name", "can't be blank")
		}
		acct.Name = name
	}
	if r.Subdomain != nil {
		subdomain := strings.ToLower(strings.TrimSpace(*r.Subdomain))
		if subdomain != "" && !subdomainPattern.MatchString(subdomain) {
			ve.Add("subdomain", "is invalid")
		}
		acct.Subdomain = subdomain
	}
	if r.BillingEmail != nil {
		acct.BillingEmail = strings.TrimSpace(*r.BillingEmail)
	}
	if r.ExtraBillingInfo != nil {
		acct.ExtraBillingInfo = *r.ExtraBillingInfo
	}
	if ve.Any() {
		return nil, ve
	}

	acct.UpdatedAt = s.now().UTC()
	if err := s.Store.Accounts().Update(ctx, acct); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError().Add("subdomain", "has already been taken")
		}
		return nil, err
	}
	return acct, nil
}

func (s *AccountServiceImpl) Destroy(ctx context.Context, actor policy.Context) error {
	if !s.policy.CanDestroy(actor) {
		return domain.ErrNotAuthorized
	}
	if err := s.Store.Accounts().Delete(ctx, actor.Account.ID); err != nil {
		return err
	}
	slog.Info("account destroyed", "account_id", actor.Account.ID)
	return nil
}

func (s *AccountServiceImpl) Members(ctx context.Context, actor policy.Context) ([]domain.AccountUser, error) {
	if !s.policy.CanShow(actor) {
		return nil, domain.ErrNotAuthorized
	}
	return s.Store.Memberships().ListForAccount(ctx, actor.Account.ID)
}

// UpdateMemberRoles replaces a member's role set. The account owner's
// membership keeps its owner role regardless of the request.
func (s *AccountServiceImpl) UpdateMemberRoles(ctx context.Context, actor policy.Context, memberID domain.UserID, roles []domain.Role) (*domain.AccountUser, error) {
	if !s.policy.CanManageMembers(actor) {
		return nil, domain.ErrNotAuthorized
	}

	set := domain.RoleSet{}
	for _, r := range roles {
		if !domain.ValidRole(r) {
			return nil, domain.NewValidationError().Add("roles", "is not included in the list")
		}
		set[r] = true
	}

	au, err := s.Store.Memberships().Get(ctx, actor.Account.ID, memberID)
	if err != nil {
		return nil, err
	}
	if actor.Account.OwnedBy(memberID) {
		set[domain.RoleOwner] = true
	}
	au.Roles = set
	au.UpdatedAt = s.now().UTC()
	if err := s.Store.Memberships().Update(ctx, au); err != nil {
		return nil, err
	}
	return au, nil
}

func (s *AccountServiceImpl) RemoveMember(ctx context.Context, actor policy.Context, memberID domain.UserID) error {
	if !s.policy.CanManageMembers(actor) {
		return domain.ErrNotAuthorized
	}
	if actor.Account.OwnedBy(memberID) {
		return domain.NewValidationError().Add("user", "is the account owner and can't be removed")
	}
	// The row delete and the counter decrement must land together or not
	// at all.
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		return tx.Memberships().Delete(ctx, actor.Account.ID, memberID)
	})
	if err != nil {
		return err
	}
	slog.Info("member removed", "account_id", actor.Account.ID, "user_id", memberID)
	return nil
}
