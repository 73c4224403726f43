package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/google/uuid"
)

type stubPasswordService struct {
	hashFunc   func(password string) (string, error)
	verifyFunc func(password, encoded string) (bool, bool)

	hashCalls []string
}

func (s *stubPasswordService) Hash(password string) (string, error) {
	s.hashCalls = append(s.hashCalls, password)
	if s.hashFunc != nil {
		return s.hashFunc(password)
	}
	return "encoded:" + password, nil
}

func (s *stubPasswordService) Verify(password, encoded string) (bool, bool) {
	if s.verifyFunc != nil {
		return s.verifyFunc(password, encoded)
	}
	return "encoded:"+password == encoded, false
}

func newSessionServiceForTest() *SessionServiceImpl {
	return NewSessionServiceHS256(SessionConfig{
		Issuer:     "http://test",
		Audience:   "client",
		SessionTTL: time.Hour,
		PendingTTL: 5 * time.Minute,
		SigningKey: []byte("test-signing-key"),
	})
}

func TestAuthServiceRegisterCreatesUserPersonalAccountAndMembership(t *testing.T) {
	store := newMemoryStore()
	svc := &AuthServiceImpl{
		Store:           store,
		PasswordService: &stubPasswordService{},
		Sessions:        newSessionServiceForTest(),
	}

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "Alice@Example.com",
		Password:  "hunter22!",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if resp == nil || resp.UserID == "" || resp.PersonalAccountID == "" {
		t.Fatalf("expected ids in response, got %+v", resp)
	}

	user, ok := store.userByEmail("alice@example.com")
	if !ok {
		t.Fatalf("user was not persisted")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email was not lowercased: %q", user.Email)
	}

	acctID := uuid.MustParse(resp.PersonalAccountID)
	acct, ok := store.accounts[acctID]
	if !ok {
		t.Fatalf("personal account was not persisted")
	}
	if !acct.Personal || acct.OwnerID != user.ID {
		t.Fatalf("unexpected personal account: %+v", acct)
	}
	if acct.Name != "Alice Smith" {
		t.Fatalf("account name mismatch: %q", acct.Name)
	}

	au, ok := store.membership(acct.ID, user.ID)
	if !ok {
		t.Fatalf("membership was not persisted")
	}
	if len(au.RoleNames()) != 0 {
		t.Fatalf("personal membership should carry no role flags, got %v", au.RoleNames())
	}
	if acct.AccountUsersCount != 1 {
		t.Fatalf("member counter not bumped: %d", acct.AccountUsersCount)
	}
}

func TestAuthServiceRegisterValidations(t *testing.T) {
	svc := &AuthServiceImpl{Store: newMemoryStore(), PasswordService: &stubPasswordService{}}
	ctx := context.Background()

	cases := []struct {
		name  string
		req   dto.RegisterRequest
		field string
	}{
		{name: "missing email", req: dto.RegisterRequest{Password: "hunter22!"}, field: "email"},
		{name: "malformed email", req: dto.RegisterRequest{Email: "nope", Password: "hunter22!"}, field: "email"},
		{name: "missing password", req: dto.RegisterRequest{Email: "a@example.com"}, field: "password"},
		{name: "short password", req: dto.RegisterRequest{Email: "a@example.com", Password: "short"}, field: "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected message on %q, got %v", tc.field, ve.Fields)
			}
		})
	}
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	store := newMemoryStore()
	svc := &AuthServiceImpl{Store: store, PasswordService: &stubPasswordService{}}
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "dup@example.com", Password: "hunter22!"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "DUP@example.com", Password: "hunter22!"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error on duplicate email, got %v", err)
	}
	if len(store.users) != 1 {
		t.Fatalf("duplicate register must not persist a second user")
	}
}

func seedUser(store *memoryStore, email, encodedPassword string) *domain.User {
	user := &domain.User{
		ID:                uuid.New(),
		Email:             email,
		EncryptedPassword: encodedPassword,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	store.users[user.ID] = user
	return user
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	store := newMemoryStore()
	svc := &AuthServiceImpl{
		Store:           store,
		PasswordService: &stubPasswordService{},
		Sessions:        newSessionServiceForTest(),
	}
	seedUser(store, "bob@example.com", "encoded:hunter22!")

	res, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bob@example.com", Password: "hunter22!"})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if res.SessionToken == "" || res.TwoFactorRequired {
		t.Fatalf("expected a full session, got %+v", res)
	}
	if res.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("unexpected expiresIn: %d", res.ExpiresIn)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	store := newMemoryStore()
	svc := &AuthServiceImpl{
		Store:           store,
		PasswordService: &stubPasswordService{},
		Sessions:        newSessionServiceForTest(),
	}
	seedUser(store, "bob@example.com", "encoded:hunter22!")

	if _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bob@example.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "hunter22!"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email must be indistinguishable, got %v", err)
	}
}

func TestAuthServiceLoginDisabledUser(t *testing.T) {
	store := newMemoryStore()
	svc := &AuthServiceImpl{
		Store:           store,
		PasswordService: &stubPasswordService{},
		Sessions:        newSessionServiceForTest(),
	}
	user := seedUser(store, "bob@example.com", "encoded:hunter22!")
	user.IsDisabled = true

	if _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bob@example.com", Password: "hunter22!"}); !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestAuthServiceLoginRehashesOnPolicyDrift(t *testing.T) {
	store := newMemoryStore()
	ps := &stubPasswordService{
		verifyFunc: func(password, encoded string) (bool, bool) { return true, true },
	}
	svc := &AuthServiceImpl{Store: store, PasswordService: ps, Sessions: newSessionServiceForTest()}
	user := seedUser(store, "bob@example.com", "stale-hash")

	if _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bob@example.com", Password: "hunter22!"}); err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if len(ps.hashCalls) != 1 {
		t.Fatalf("expected a transparent rehash, hash calls: %v", ps.hashCalls)
	}
	if store.users[user.ID].EncryptedPassword == "stale-hash" {
		t.Fatalf("stored hash was not upgraded")
	}
}

func TestAuthServiceLoginWithTwoFactorIssuesPendingToken(t *testing.T) {
	store := newMemoryStore()
	sessions := newSessionServiceForTest()
	svc := &AuthServiceImpl{
		Store:           store,
		PasswordService: &stubPasswordService{},
		Sessions:        sessions,
	}
	user := seedUser(store, "bob@example.com", "encoded:hunter22!")
	user.OTPSecret = "SECRET"
	user.OTPRequiredForLogin = true

	res, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bob@example.com", Password: "hunter22!"})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if !res.TwoFactorRequired || res.PendingToken == "" {
		t.Fatalf("expected pending 2fa challenge, got %+v", res)
	}
	if res.SessionToken != "" {
		t.Fatalf("no session may be issued before the OTP challenge")
	}

	// The pending token must not pass as a session.
	if _, err := sessions.VerifySession(context.Background(), res.PendingToken); err == nil {
		t.Fatalf("pending token was accepted as a session")
	}
	if _, err := sessions.VerifyPendingTwoFactor(context.Background(), res.PendingToken); err != nil {
		t.Fatalf("pending token failed its own scope: %v", err)
	}
}

type stubTwoFactorService struct {
	loginOK  bool
	backupOK bool
}

func (s *stubTwoFactorService) EnableSetup(ctx context.Context, userID domain.UserID) (*dto.TwoFactorSetupResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTwoFactorService) ConfirmSetup(ctx context.Context, userID domain.UserID, code string) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubTwoFactorService) VerifyLoginCode(ctx context.Context, userID domain.UserID, code string) (bool, error) {
	return s.loginOK, nil
}

func (s *stubTwoFactorService) VerifyBackupCode(ctx context.Context, userID domain.UserID, code string) (bool, error) {
	return s.backupOK, nil
}

func (s *stubTwoFactorService) RegenerateBackupCodes(ctx context.Context, userID domain.UserID) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTwoFactorService) Disable(ctx context.Context, userID domain.UserID) error {
	return errors.New("not implemented")
}

func TestAuthServiceCompleteTwoFactor(t *testing.T) {
	store := newMemoryStore()
	sessions := newSessionServiceForTest()
	user := seedUser(store, "bob@example.com", "encoded:hunter22!")
	pending, err := sessions.IssuePendingTwoFactor(context.Background(), user)
	if err != nil {
		t.Fatalf("issue pending: %v", err)
	}

	cases := []struct {
		name    string
		stub    *stubTwoFactorService
		token   string
		wantErr bool
	}{
		{name: "totp match", stub: &stubTwoFactorService{loginOK: true}, token: pending},
		{name: "backup code fallback", stub: &stubTwoFactorService{backupOK: true}, token: pending},
		{name: "both fail", stub: &stubTwoFactorService{}, token: pending, wantErr: true},
		{name: "garbage token", stub: &stubTwoFactorService{loginOK: true}, token: "garbage", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &AuthServiceImpl{
				Store:           store,
				PasswordService: &stubPasswordService{},
				Sessions:        sessions,
				TwoFactor:       tc.stub,
			}
			res, err := svc.CompleteTwoFactor(context.Background(), dto.OTPRequest{PendingToken: tc.token, Code: "000000"})
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidCredentials) {
					t.Fatalf("expected ErrInvalidCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.SessionToken == "" {
				t.Fatalf("expected a session token")
			}
			if _, err := sessions.VerifySession(context.Background(), res.SessionToken); err != nil {
				t.Fatalf("issued session failed verification: %v", err)
			}
		})
	}
}

func TestAuthServiceDeleteUser(t *testing.T) {
	store := newMemoryStore()
	svc := &AuthServiceImpl{Store: store, PasswordService: &stubPasswordService{}}
	ctx := context.Background()

	actor := seedAccount(store)
	owner := actor.User

	// The owner also belongs to someone else's account; that account and
	// its counter must survive the deletion.
	other := seedUser(store, "keeper@example.com", "encoded:pw")
	otherAcct := &domain.Account{ID: uuid.New(), Name: "Keeper Co", OwnerID: other.ID, AccountUsersCount: 2}
	store.accounts[otherAcct.ID] = otherAcct
	au := &domain.AccountUser{
		ID: uuid.New(), AccountID: otherAcct.ID, UserID: owner.ID,
		Roles: domain.RoleSet{domain.RoleMember: true},
	}
	store.memberships[au.ID] = au

	token := &domain.APIToken{ID: uuid.New(), UserID: owner.ID, TokenHash: "digest", Name: "ci"}
	store.apiTokens[token.ID] = token
	link := &domain.ConnectedAccount{ID: uuid.New(), OwnerType: "User", OwnerID: owner.ID, Provider: "google", UID: "uid-1"}
	store.connected[link.ID] = link
	inv := &domain.AccountInvitation{
		ID: uuid.New(), AccountID: actor.Account.ID, InvitedByID: owner.ID,
		Token: "tok", Name: "Carol", Email: "carol@example.com",
	}
	store.invitations[inv.ID] = inv

	deleted, err := svc.DeleteUser(ctx, owner)
	if err != nil {
		t.Fatalf("delete user returned error: %v", err)
	}
	want := map[string]int64{
		"users": 1, "memberships": 2, "ownedAccounts": 1,
		"apiTokens": 1, "connectedAccounts": 1, "invitationsSent": 1,
	}
	for label, n := range want {
		if deleted[label] != n {
			t.Errorf("deleted[%s] = %d, want %d", label, deleted[label], n)
		}
	}

	if _, ok := store.users[owner.ID]; ok {
		t.Fatalf("user row survived deletion")
	}
	if _, ok := store.accounts[actor.Account.ID]; ok {
		t.Fatalf("owned account survived deletion")
	}
	if len(store.apiTokens) != 0 || len(store.connected) != 0 || len(store.invitations) != 0 {
		t.Fatalf("dependent rows survived deletion")
	}

	// The surviving account lost exactly the departed member.
	if _, ok := store.accounts[otherAcct.ID]; !ok {
		t.Fatalf("foreign account must survive")
	}
	if got := store.accounts[otherAcct.ID].AccountUsersCount; got != 1 {
		t.Fatalf("surviving account counter = %d, want 1", got)
	}
	if _, ok := store.users[other.ID]; !ok {
		t.Fatalf("other user must survive")
	}
}
