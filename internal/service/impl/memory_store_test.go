package impl

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
)

// memoryStore is an in-memory dataStore for service tests. It mimics the
// unique constraints the real schema enforces and restores a snapshot when
// a WithTx callback fails, so transactional rollback behavior is testable.
type memoryStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*domain.User
	accounts    map[uuid.UUID]*domain.Account
	memberships map[uuid.UUID]*domain.AccountUser
	invitations map[uuid.UUID]*domain.AccountInvitation
	apiTokens   map[uuid.UUID]*domain.APIToken
	connected   map[uuid.UUID]*domain.ConnectedAccount

	// membershipDeleteErr fires after the delete has mutated state, the
	// shape of a counter update failing mid-sequence.
	membershipDeleteErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[uuid.UUID]*domain.User),
		accounts:    make(map[uuid.UUID]*domain.Account),
		memberships: make(map[uuid.UUID]*domain.AccountUser),
		invitations: make(map[uuid.UUID]*domain.AccountInvitation),
		apiTokens:   make(map[uuid.UUID]*domain.APIToken),
		connected:   make(map[uuid.UUID]*domain.ConnectedAccount),
	}
}

type storeSnapshot struct {
	users       map[uuid.UUID]*domain.User
	accounts    map[uuid.UUID]*domain.Account
	memberships map[uuid.UUID]*domain.AccountUser
	invitations map[uuid.UUID]*domain.AccountInvitation
	apiTokens   map[uuid.UUID]*domain.APIToken
	connected   map[uuid.UUID]*domain.ConnectedAccount
}

func copyMap[T any](src map[uuid.UUID]*T) map[uuid.UUID]*T {
	dst := make(map[uuid.UUID]*T, len(src))
	for id, v := range src {
		cp := *v
		dst[id] = &cp
	}
	return dst
}

func (m *memoryStore) snapshot() storeSnapshot {
	return storeSnapshot{
		users:       copyMap(m.users),
		accounts:    copyMap(m.accounts),
		memberships: copyMap(m.memberships),
		invitations: copyMap(m.invitations),
		apiTokens:   copyMap(m.apiTokens),
		connected:   copyMap(m.connected),
	}
}

func (m *memoryStore) restore(s storeSnapshot) {
	m.users = s.users
	m.accounts = s.accounts
	m.memberships = s.memberships
	m.invitations = s.invitations
	m.apiTokens = s.apiTokens
	m.connected = s.connected
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) DeleteUserData(ctx context.Context, userID domain.UserID) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := map[string]int64{
		"users":             0,
		"memberships":       0,
		"ownedAccounts":     0,
		"apiTokens":         0,
		"connectedAccounts": 0,
		"invitationsSent":   0,
	}
	if _, ok := m.users[userID]; ok {
		deleted["users"] = 1
	}
	for _, au := range m.memberships {
		if au.UserID == userID {
			deleted["memberships"]++
		}
	}
	for _, acct := range m.accounts {
		if acct.OwnerID == userID {
			deleted["ownedAccounts"]++
		}
	}
	for _, token := range m.apiTokens {
		if token.UserID == userID {
			deleted["apiTokens"]++
		}
	}
	for _, ca := range m.connected {
		if ca.OwnerID == userID {
			deleted["connectedAccounts"]++
		}
	}
	for _, inv := range m.invitations {
		if inv.InvitedByID == userID {
			deleted["invitationsSent"]++
		}
	}

	accounts := &memoryAccountStore{store: m}
	for id, acct := range m.accounts {
		if acct.OwnerID == userID {
			if err := accounts.Delete(ctx, id); err != nil {
				return nil, err
			}
		}
	}
	for id, au := range m.memberships {
		if au.UserID == userID {
			delete(m.memberships, id)
			if acct, ok := m.accounts[au.AccountID]; ok {
				acct.AccountUsersCount--
			}
		}
	}
	for id, token := range m.apiTokens {
		if token.UserID == userID {
			delete(m.apiTokens, id)
		}
	}
	for id, ca := range m.connected {
		if ca.OwnerID == userID {
			delete(m.connected, id)
		}
	}
	for id, inv := range m.invitations {
		if inv.InvitedByID == userID {
			delete(m.invitations, id)
		}
	}
	delete(m.users, userID)
	return deleted, nil
}

func (m *memoryStore) Users() userStore             { return &memoryUserStore{store: m} }
func (m *memoryStore) Accounts() accountStore       { return &memoryAccountStore{store: m} }
func (m *memoryStore) Memberships() membershipStore { return &memoryMembershipStore{store: m} }
func (m *memoryStore) Invitations() invitationStore { return &memoryInvitationStore{store: m} }
func (m *memoryStore) APITokens() apiTokenStore     { return &memoryAPITokenStore{store: m} }
func (m *memoryStore) ConnectedAccounts() connectedAccountStore {
	return &memoryConnectedStore{store: m}
}

func (m *memoryStore) userByEmail(email string) (*domain.User, bool) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, true
		}
	}
	return nil, false
}

func (m *memoryStore) membership(accountID, userID uuid.UUID) (*domain.AccountUser, bool) {
	for _, au := range m.memberships {
		if au.AccountID == accountID && au.UserID == userID {
			cp := *au
			return &cp, true
		}
	}
	return nil, false
}

func (m *memoryStore) personalAccount(ownerID uuid.UUID) (*domain.Account, bool) {
	for _, acct := range m.accounts {
		if acct.Personal && acct.OwnerID == ownerID {
			cp := *acct
			return &cp, true
		}
	}
	return nil, false
}

type memoryUserStore struct{ store *memoryStore }

func (u *memoryUserStore) Create(ctx context.Context, usr *domain.User) error {
	if _, exists := u.store.userByEmail(usr.Email); exists {
		return domain.ErrDuplicate
	}
	cp := *usr
	cp.Email = strings.ToLower(cp.Email)
	u.store.users[usr.ID] = &cp
	return nil
}

func (u *memoryUserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	usr, ok := u.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u *memoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	usr, ok := u.store.userByEmail(email)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return usr, nil
}

func (u *memoryUserStore) Update(ctx context.Context, usr *domain.User) error {
	if _, ok := u.store.users[usr.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *usr
	u.store.users[usr.ID] = &cp
	return nil
}

func (u *memoryUserStore) SetTwoFactor(ctx context.Context, userID domain.UserID, secret, backupCodes string, required bool, lastTimestep *int64) error {
	usr, ok := u.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	usr.OTPSecret = secret
	usr.OTPBackupCodes = backupCodes
	usr.OTPRequiredForLogin = required
	usr.LastOTPTimestep = lastTimestep
	return nil
}

func (u *memoryUserStore) SetOTPRequired(ctx context.Context, userID domain.UserID, required bool) error {
	usr, ok := u.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	usr.OTPRequiredForLogin = required
	return nil
}

func (u *memoryUserStore) SetLastOTPTimestep(ctx context.Context, userID domain.UserID, step int64) error {
	usr, ok := u.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	usr.LastOTPTimestep = &step
	return nil
}

func (u *memoryUserStore) SetBackupCodes(ctx context.Context, userID domain.UserID, codes string) error {
	usr, ok := u.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	usr.OTPBackupCodes = codes
	return nil
}

type memoryAccountStore struct{ store *memoryStore }

func (a *memoryAccountStore) Create(ctx context.Context, acct *domain.Account) error {
	if acct.Subdomain != "" {
		for _, existing := range a.store.accounts {
			if existing.Subdomain == acct.Subdomain {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *acct
	a.store.accounts[acct.ID] = &cp
	return nil
}

func (a *memoryAccountStore) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	acct, ok := a.store.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (a *memoryAccountStore) ListForUser(ctx context.Context, userID domain.UserID) ([]domain.Account, error) {
	var out []domain.Account
	for _, au := range a.store.memberships {
		if au.UserID != userID {
			continue
		}
		if acct, ok := a.store.accounts[au.AccountID]; ok {
			out = append(out, *acct)
		}
	}
	return out, nil
}

func (a *memoryAccountStore) Update(ctx context.Context, acct *domain.Account) error {
	if _, ok := a.store.accounts[acct.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *acct
	a.store.accounts[acct.ID] = &cp
	return nil
}

func (a *memoryAccountStore) Delete(ctx context.Context, id domain.AccountID) error {
	if _, ok := a.store.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(a.store.accounts, id)
	for mid, au := range a.store.memberships {
		if au.AccountID == id {
			delete(a.store.memberships, mid)
		}
	}
	for iid, inv := range a.store.invitations {
		if inv.AccountID == id {
			delete(a.store.invitations, iid)
		}
	}
	return nil
}

type memoryMembershipStore struct{ store *memoryStore }

func (m *memoryMembershipStore) Create(ctx context.Context, au *domain.AccountUser) error {
	if _, exists := m.store.membership(au.AccountID, au.UserID); exists {
		return domain.ErrDuplicate
	}
	cp := *au
	m.store.memberships[au.ID] = &cp
	if acct, ok := m.store.accounts[au.AccountID]; ok {
		acct.AccountUsersCount++
	}
	return nil
}

func (m *memoryMembershipStore) Get(ctx context.Context, accountID domain.AccountID, userID domain.UserID) (*domain.AccountUser, error) {
	au, ok := m.store.membership(accountID, userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return au, nil
}

func (m *memoryMembershipStore) ListForAccount(ctx context.Context, accountID domain.AccountID) ([]domain.AccountUser, error) {
	var out []domain.AccountUser
	for _, au := range m.store.memberships {
		if au.AccountID == accountID {
			out = append(out, *au)
		}
	}
	return out, nil
}

func (m *memoryMembershipStore) Update(ctx context.Context, au *domain.AccountUser) error {
	if _, ok := m.store.memberships[au.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *au
	m.store.memberships[au.ID] = &cp
	return nil
}

func (m *memoryMembershipStore) Delete(ctx context.Context, accountID domain.AccountID, userID domain.UserID) error {
	for id, au := range m.store.memberships {
		if au.AccountID == accountID && au.UserID == userID {
			delete(m.store.memberships, id)
			if acct, ok := m.store.accounts[accountID]; ok {
				acct.AccountUsersCount--
			}
			return m.store.membershipDeleteErr
		}
	}
	return domain.ErrNotFound
}

func (m *memoryMembershipStore) Exists(ctx context.Context, accountID domain.AccountID, userID domain.UserID) (bool, error) {
	_, ok := m.store.membership(accountID, userID)
	return ok, nil
}

func (m *memoryMembershipStore) ExistsByEmail(ctx context.Context, accountID domain.AccountID, email string) (bool, error) {
	for _, au := range m.store.memberships {
		if au.AccountID != accountID {
			continue
		}
		if usr, ok := m.store.users[au.UserID]; ok && strings.EqualFold(usr.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type memoryInvitationStore struct{ store *memoryStore }

func (i *memoryInvitationStore) Create(ctx context.Context, inv *domain.AccountInvitation) error {
	for _, existing := range i.store.invitations {
		if existing.Token == inv.Token {
			return domain.ErrDuplicate
		}
		if existing.AccountID == inv.AccountID && strings.EqualFold(existing.Email, inv.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	i.store.invitations[inv.ID] = &cp
	return nil
}

func (i *memoryInvitationStore) GetByID(ctx context.Context, accountID domain.AccountID, id domain.InvitationID) (*domain.AccountInvitation, error) {
	inv, ok := i.store.invitations[id]
	if !ok || inv.AccountID != accountID {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (i *memoryInvitationStore) GetByToken(ctx context.Context, token string) (*domain.AccountInvitation, error) {
	for _, inv := range i.store.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (i *memoryInvitationStore) ListPending(ctx context.Context, accountID domain.AccountID, now time.Time) ([]domain.AccountInvitation, error) {
	var out []domain.AccountInvitation
	for _, inv := range i.store.invitations {
		if inv.AccountID == accountID && inv.Pending(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (i *memoryInvitationStore) ListExpired(ctx context.Context, accountID domain.AccountID, now time.Time, limit int) ([]domain.AccountInvitation, error) {
	var out []domain.AccountInvitation
	for _, inv := range i.store.invitations {
		if inv.AccountID == accountID && inv.Expired(now) {
			out = append(out, *inv)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (i *memoryInvitationStore) MarkAccepted(ctx context.Context, id domain.InvitationID, at time.Time) error {
	inv, ok := i.store.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.AcceptedAt != nil {
		return domain.ErrDuplicate
	}
	stamped := at
	inv.AcceptedAt = &stamped
	return nil
}

func (i *memoryInvitationStore) Refresh(ctx context.Context, id domain.InvitationID, expiresAt time.Time) error {
	inv, ok := i.store.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.ExpiresAt = expiresAt
	return nil
}

func (i *memoryInvitationStore) Delete(ctx context.Context, id domain.InvitationID) error {
	if _, ok := i.store.invitations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(i.store.invitations, id)
	return nil
}

type memoryAPITokenStore struct{ store *memoryStore }

func (t *memoryAPITokenStore) Create(ctx context.Context, token *domain.APIToken) error {
	for _, existing := range t.store.apiTokens {
		if existing.TokenHash == token.TokenHash {
			return domain.ErrDuplicate
		}
	}
	cp := *token
	t.store.apiTokens[token.ID] = &cp
	return nil
}

func (t *memoryAPITokenStore) GetActiveByHash(ctx context.Context, hash string, now time.Time) (*domain.APIToken, error) {
	for _, token := range t.store.apiTokens {
		if token.TokenHash == hash && token.Active(now) {
			cp := *token
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memoryAPITokenStore) ListForUser(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error) {
	var out []domain.APIToken
	for _, token := range t.store.apiTokens {
		if token.UserID == userID {
			out = append(out, *token)
		}
	}
	return out, nil
}

func (t *memoryAPITokenStore) ListRecentlyUsed(ctx context.Context, userID domain.UserID, since time.Time) ([]domain.APIToken, error) {
	var out []domain.APIToken
	for _, token := range t.store.apiTokens {
		if token.UserID == userID && token.LastUsedAt != nil && token.LastUsedAt.After(since) {
			out = append(out, *token)
		}
	}
	return out, nil
}

func (t *memoryAPITokenStore) TouchLastUsed(ctx context.Context, id domain.APITokenID, at time.Time) error {
	token, ok := t.store.apiTokens[id]
	if !ok {
		return domain.ErrNotFound
	}
	stamped := at
	token.LastUsedAt = &stamped
	return nil
}

func (t *memoryAPITokenStore) Delete(ctx context.Context, userID domain.UserID, id domain.APITokenID) error {
	token, ok := t.store.apiTokens[id]
	if !ok || token.UserID != userID {
		return domain.ErrNotFound
	}
	delete(t.store.apiTokens, id)
	return nil
}

type memoryConnectedStore struct{ store *memoryStore }

func (c *memoryConnectedStore) Upsert(ctx context.Context, ca *domain.ConnectedAccount) error {
	for id, existing := range c.store.connected {
		if existing.Provider == ca.Provider && existing.UID == ca.UID {
			cp := *ca
			cp.ID = existing.ID
			c.store.connected[id] = &cp
			return nil
		}
	}
	cp := *ca
	c.store.connected[ca.ID] = &cp
	return nil
}

func (c *memoryConnectedStore) GetByProviderUID(ctx context.Context, provider, uid string) (*domain.ConnectedAccount, error) {
	for _, ca := range c.store.connected {
		if ca.Provider == provider && ca.UID == uid {
			cp := *ca
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *memoryConnectedStore) ListForOwner(ctx context.Context, ownerType string, ownerID domain.UserID) ([]domain.ConnectedAccount, error) {
	var out []domain.ConnectedAccount
	for _, ca := range c.store.connected {
		if ca.OwnerType == ownerType && ca.OwnerID == ownerID {
			out = append(out, *ca)
		}
	}
	return out, nil
}

func (c *memoryConnectedStore) Delete(ctx context.Context, ownerID domain.UserID, id domain.ConnectedAccountID) error {
	ca, ok := c.store.connected[id]
	if !ok || ca.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(c.store.connected, id)
	return nil
}

var _ dataStore = (*memoryStore)(nil)
