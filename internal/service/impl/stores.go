package impl

import (
	"context"
	"errors"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/store"
)

// Narrow store interfaces keep service implementations testable with
// in-memory fakes; the gorm-backed *store.Store satisfies them through
// the adapter below.

type dataStore interface {
	storeTx
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
	// DeleteUserData removes the user and everything hanging off them in
	// one transaction, returning per-resource counts.
	DeleteUserData(ctx context.Context, userID domain.UserID) (map[string]int64, error)
}

type storeTx interface {
	Users() userStore
	Accounts() accountStore
	Memberships() membershipStore
	Invitations() invitationStore
	APITokens() apiTokenStore
	ConnectedAccounts() connectedAccountStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, usr *domain.User) error
	SetTwoFactor(ctx context.Context, userID domain.UserID, secret, backupCodes string, required bool, lastTimestep *int64) error
	SetOTPRequired(ctx context.Context, userID domain.UserID, required bool) error
	SetLastOTPTimestep(ctx context.Context, userID domain.UserID, step int64) error
	SetBackupCodes(ctx context.Context, userID domain.UserID, codes string) error
}

type accountStore interface {
	Create(ctx context.Context, acct *domain.Account) error
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	ListForUser(ctx context.Context, userID domain.UserID) ([]domain.Account, error)
	Update(ctx context.Context, acct *domain.Account) error
	Delete(ctx context.Context, id domain.AccountID) error
}

type membershipStore interface {
	Create(ctx context.Context, au *domain.AccountUser) error
	Get(ctx context.Context, accountID domain.AccountID, userID domain.UserID) (*domain.AccountUser, error)
	ListForAccount(ctx context.Context, accountID domain.AccountID) ([]domain.AccountUser, error)
	Update(ctx context.Context, au *domain.AccountUser) error
	Delete(ctx context.Context, accountID domain.AccountID, userID domain.UserID) error
	Exists(ctx context.Context, accountID domain.AccountID, userID domain.UserID) (bool, error)
	ExistsByEmail(ctx context.Context, accountID domain.AccountID, email string) (bool, error)
}

type invitationStore interface {
	Create(ctx context.Context, inv *domain.AccountInvitation) error
	GetByID(ctx context.Context, accountID domain.AccountID, id domain.InvitationID) (*domain.AccountInvitation, error)
	GetByToken(ctx context.Context, token string) (*domain.AccountInvitation, error)
	ListPending(ctx context.Context, accountID domain.AccountID, now time.Time) ([]domain.AccountInvitation, error)
	ListExpired(ctx context.Context, accountID domain.AccountID, now time.Time, limit int) ([]domain.AccountInvitation, error)
	MarkAccepted(ctx context.Context, id domain.InvitationID, at time.Time) error
	Refresh(ctx context.Context, id domain.InvitationID, expiresAt time.Time) error
	Delete(ctx context.Context, id domain.InvitationID) error
}

type apiTokenStore interface {
	Create(ctx context.Context, token *domain.APIToken) error
	GetActiveByHash(ctx context.Context, hash string, now time.Time) (*domain.APIToken, error)
	ListForUser(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error)
	ListRecentlyUsed(ctx context.Context, userID domain.UserID, since time.Time) ([]domain.APIToken, error)
	TouchLastUsed(ctx context.Context, id domain.APITokenID, at time.Time) error
	Delete(ctx context.Context, userID domain.UserID, id domain.APITokenID) error
}

type connectedAccountStore interface {
	Upsert(ctx context.Context, ca *domain.ConnectedAccount) error
	GetByProviderUID(ctx context.Context, provider, uid string) (*domain.ConnectedAccount, error)
	ListForOwner(ctx context.Context, ownerType string, ownerID domain.UserID) ([]domain.ConnectedAccount, error)
	Delete(ctx context.Context, ownerID domain.UserID, id domain.ConnectedAccountID) error
}

// notifier is the delivery hook for invitation mail; the real mailer is an
// external collaborator, so the default does nothing.
type notifier interface {
	InvitationCreated(ctx context.Context, inv *domain.AccountInvitation) error
	TrialExpiring(ctx context.Context, acct *domain.Account) error
}

type noopNotifier struct{}

func (noopNotifier) InvitationCreated(context.Context, *domain.AccountInvitation) error { return nil }
func (noopNotifier) TrialExpiring(context.Context, *domain.Account) error               { return nil }

type gormStoreAdapter struct {
	store *store.Store
}

func newGormStoreAdapter(st *store.Store) gormStoreAdapter { return gormStoreAdapter{store: st} }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormStoreAdapter{store: tx})
	})
}

func (g gormStoreAdapter) DeleteUserData(ctx context.Context, userID domain.UserID) (map[string]int64, error) {
	return g.store.DeleteUserData(ctx, userID)
}

func (g gormStoreAdapter) Users() userStore             { return g.store.Users() }
func (g gormStoreAdapter) Accounts() accountStore       { return g.store.Accounts() }
func (g gormStoreAdapter) Memberships() membershipStore { return g.store.Memberships() }
func (g gormStoreAdapter) Invitations() invitationStore { return g.store.Invitations() }
func (g gormStoreAdapter) APITokens() apiTokenStore     { return g.store.APITokens() }
func (g gormStoreAdapter) ConnectedAccounts() connectedAccountStore {
	return g.store.ConnectedAccounts()
}
