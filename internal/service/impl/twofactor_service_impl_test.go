package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

func totpCodeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	return code
}

func newTwoFactorServiceForTest(store *memoryStore, now time.Time) *TwoFactorServiceImpl {
	return &TwoFactorServiceImpl{
		Store:  store,
		Issuer: "saaskit-test",
		now:    func() time.Time { return now },
	}
}

func TestTwoFactorSetupAndConfirm(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(store, "alice@example.com", "encoded:pw")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTwoFactorServiceForTest(store, now)
	ctx := context.Background()

	setup, err := svc.EnableSetup(ctx, user.ID)
	if err != nil {
		t.Fatalf("enable setup: %v", err)
	}
	if setup.Secret == "" || setup.ProvisioningURI == "" {
		t.Fatalf("incomplete setup response: %+v", setup)
	}
	if len(setup.BackupCodes) != backupCodeCount {
		t.Fatalf("expected %d backup codes, got %d", backupCodeCount, len(setup.BackupCodes))
	}

	stored := store.users[user.ID]
	if stored.OTPRequiredForLogin {
		t.Fatalf("enforcement must stay off until confirmation")
	}
	for _, code := range setup.BackupCodes {
		if strings.Contains(stored.OTPBackupCodes, code) {
			t.Fatalf("backup codes must be stored hashed, found plaintext %q", code)
		}
	}

	if ok, err := svc.ConfirmSetup(ctx, user.ID, "000000"); err != nil || ok {
		t.Fatalf("wrong code must not confirm, got ok=%v err=%v", ok, err)
	}
	if store.users[user.ID].OTPRequiredForLogin {
		t.Fatalf("failed confirmation must not enable enforcement")
	}

	if ok, err := svc.ConfirmSetup(ctx, user.ID, totpCodeAt(t, setup.Secret, now)); err != nil || !ok {
		t.Fatalf("valid code must confirm, got ok=%v err=%v", ok, err)
	}
	if !store.users[user.ID].OTPRequiredForLogin {
		t.Fatalf("confirmation must enable enforcement")
	}
}

func TestTwoFactorVerifyLoginCodeDriftAndReplay(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(store, "alice@example.com", "encoded:pw")
	now := time.Date(2026, 3, 1, 12, 0, 15, 0, time.UTC)
	svc := newTwoFactorServiceForTest(store, now)
	ctx := context.Background()

	setup, err := svc.EnableSetup(ctx, user.ID)
	if err != nil {
		t.Fatalf("enable setup: %v", err)
	}
	if _, err := svc.ConfirmSetup(ctx, user.ID, totpCodeAt(t, setup.Secret, now)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// One step behind still verifies.
	behind := totpCodeAt(t, setup.Secret, now.Add(-totpPeriod*time.Second))
	if ok, err := svc.VerifyLoginCode(ctx, user.ID, behind); err != nil || !ok {
		t.Fatalf("drift window code rejected, ok=%v err=%v", ok, err)
	}

	// The same code again is a replay.
	if ok, err := svc.VerifyLoginCode(ctx, user.ID, behind); err != nil || ok {
		t.Fatalf("replayed code must fail, ok=%v err=%v", ok, err)
	}

	// A later step still works after the watermark advanced.
	current := totpCodeAt(t, setup.Secret, now)
	if ok, err := svc.VerifyLoginCode(ctx, user.ID, current); err != nil || !ok {
		t.Fatalf("later step rejected after watermark, ok=%v err=%v", ok, err)
	}

	if ok, err := svc.VerifyLoginCode(ctx, user.ID, "123456"); err != nil || ok {
		t.Fatalf("bogus code must fail, ok=%v err=%v", ok, err)
	}
}

func TestTwoFactorVerifyLoginCodeRequiresEnablement(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(store, "alice@example.com", "encoded:pw")
	now := time.Now().UTC()
	svc := newTwoFactorServiceForTest(store, now)

	if ok, err := svc.VerifyLoginCode(context.Background(), user.ID, "123456"); err != nil || ok {
		t.Fatalf("verification without enablement must fail, ok=%v err=%v", ok, err)
	}
}

func TestTwoFactorBackupCodeSingleUse(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(store, "alice@example.com", "encoded:pw")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTwoFactorServiceForTest(store, now)
	ctx := context.Background()

	setup, err := svc.EnableSetup(ctx, user.ID)
	if err != nil {
		t.Fatalf("enable setup: %v", err)
	}
	if _, err := svc.ConfirmSetup(ctx, user.ID, totpCodeAt(t, setup.Secret, now)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	code := setup.BackupCodes[3]
	if ok, err := svc.VerifyBackupCode(ctx, user.ID, code); err != nil || !ok {
		t.Fatalf("backup code rejected, ok=%v err=%v", ok, err)
	}
	if ok, err := svc.VerifyBackupCode(ctx, user.ID, code); err != nil || ok {
		t.Fatalf("backup code must be single use, ok=%v err=%v", ok, err)
	}

	// The other nine still work.
	if ok, err := svc.VerifyBackupCode(ctx, user.ID, setup.BackupCodes[0]); err != nil || !ok {
		t.Fatalf("remaining code rejected, ok=%v err=%v", ok, err)
	}
}

func TestTwoFactorRegenerateBackupCodes(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(store, "alice@example.com", "encoded:pw")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTwoFactorServiceForTest(store, now)
	ctx := context.Background()

	if _, err := svc.RegenerateBackupCodes(ctx, user.ID); err == nil {
		t.Fatalf("regenerate must require enabled two-factor")
	}

	setup, err := svc.EnableSetup(ctx, user.ID)
	if err != nil {
		t.Fatalf("enable setup: %v", err)
	}
	if _, err := svc.ConfirmSetup(ctx, user.ID, totpCodeAt(t, setup.Secret, now)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	fresh, err := svc.RegenerateBackupCodes(ctx, user.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(fresh) != backupCodeCount {
		t.Fatalf("expected %d codes, got %d", backupCodeCount, len(fresh))
	}

	// Old codes are void; new ones verify.
	if ok, _ := svc.VerifyBackupCode(ctx, user.ID, setup.BackupCodes[0]); ok {
		t.Fatalf("old backup code survived regeneration")
	}
	if ok, err := svc.VerifyBackupCode(ctx, user.ID, fresh[0]); err != nil || !ok {
		t.Fatalf("fresh backup code rejected, ok=%v err=%v", ok, err)
	}
}

func TestTwoFactorDisableClearsState(t *testing.T) {
	store := newMemoryStore()
	user := seedUser(store, "alice@example.com", "encoded:pw")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTwoFactorServiceForTest(store, now)
	ctx := context.Background()

	setup, err := svc.EnableSetup(ctx, user.ID)
	if err != nil {
		t.Fatalf("enable setup: %v", err)
	}
	if _, err := svc.ConfirmSetup(ctx, user.ID, totpCodeAt(t, setup.Secret, now)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := svc.Disable(ctx, user.ID); err != nil {
		t.Fatalf("disable: %v", err)
	}
	stored := store.users[user.ID]
	if stored.OTPRequiredForLogin || stored.OTPSecret != "" || stored.OTPBackupCodes != "" || stored.LastOTPTimestep != nil {
		t.Fatalf("disable left residual state: %+v", stored)
	}
}
