package impl

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/observability/metrics"
	"github.com/aliumairdev/saaskit/internal/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod      = 30 // seconds per time step
	totpDriftSteps  = 1  // ±1 step (30s each direction)
	backupCodeCount = 10
	backupCodeBytes = 4 // 8 hex characters
)

// TwoFactorServiceImpl implements TOTP provisioning and verification.
// Backup codes are stored as a newline-joined list of SHA-256 digests,
// the same one-way treatment API tokens get.
type TwoFactorServiceImpl struct {
	Store  dataStore
	Issuer string

	now func() time.Time
}

func NewTwoFactorServiceImpl(st *store.Store, issuer string) *TwoFactorServiceImpl {
	return &TwoFactorServiceImpl{Store: newGormStoreAdapter(st), Issuer: issuer, now: time.Now}
}

func (s *TwoFactorServiceImpl) EnableSetup(ctx context.Context, userID domain.UserID) (*dto.TwoFactorSetupResponse, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, backupCodeCount)
	hashes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := generateHexCode(backupCodeBytes)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
		hashes = append(hashes, digest(code))
	}

	// Enforcement stays off until ConfirmSetup proves the authenticator
	// holds the secret.
	if err := s.Store.Users().SetTwoFactor(ctx, userID, key.Secret(), strings.Join(hashes, "\n"), false, nil); err != nil {
		return nil, err
	}

	return &dto.TwoFactorSetupResponse{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		BackupCodes:     codes,
	}, nil
}

// ConfirmSetup validates a code with ±1 step of drift against the
// provisioned secret. The replay watermark is deliberately not consulted
// or advanced here; it only guards post-enablement logins.
func (s *TwoFactorServiceImpl) ConfirmSetup(ctx context.Context, userID domain.UserID, code string) (bool, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.OTPSecret == "" {
		return false, nil
	}

	ok, err := totp.ValidateCustom(code, user.OTPSecret, s.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpDriftSteps,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return false, nil
	}

	if err := s.Store.Users().SetOTPRequired(ctx, userID, true); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyLoginCode walks the drift window step by step so the matched time
// step is known and can be compared against the watermark. A code whose
// step is at or before last_otp_timestep is a replay and fails.
func (s *TwoFactorServiceImpl) VerifyLoginCode(ctx context.Context, userID domain.UserID, code string) (bool, error) {
	result := "failure"
	defer func() { metrics.OTPVerificationsTotal.WithLabelValues("totp", result).Inc() }()

	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.OTPRequiredForLogin || user.OTPSecret == "" {
		return false, nil
	}

	now := s.now().UTC()
	for offset := -totpDriftSteps; offset <= totpDriftSteps; offset++ {
		at := now.Add(time.Duration(offset) * totpPeriod * time.Second)
		expected, err := totp.GenerateCodeCustom(user.OTPSecret, at, totp.ValidateOpts{
			Period:    totpPeriod,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
			continue
		}

		step := at.Unix() / totpPeriod
		if user.LastOTPTimestep != nil && step <= *user.LastOTPTimestep {
			return false, nil // already used within this window
		}
		// Single-column write, independent of any other pending change.
		if err := s.Store.Users().SetLastOTPTimestep(ctx, userID, step); err != nil {
			return false, err
		}
		result = "success"
		return true, nil
	}
	return false, nil
}

func (s *TwoFactorServiceImpl) VerifyBackupCode(ctx context.Context, userID domain.UserID, code string) (bool, error) {
	result := "failure"
	defer func() { metrics.OTPVerificationsTotal.WithLabelValues("backup", result).Inc() }()

	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.OTPRequiredForLogin || user.OTPBackupCodes == "" {
		return false, nil
	}

	want := digest(strings.TrimSpace(code))
	stored := strings.Split(user.OTPBackupCodes, "\n")
	remaining := make([]string, 0, len(stored))
	found := false
	for _, h := range stored {
		if !found && subtle.ConstantTimeCompare([]byte(h), []byte(want)) == 1 {
			found = true
			continue
		}
		remaining = append(remaining, h)
	}
	if !found {
		return false, nil
	}

	if err := s.Store.Users().SetBackupCodes(ctx, userID, strings.Join(remaining, "\n")); err != nil {
		return false, err
	}
	result = "success"
	return true, nil
}

func (s *TwoFactorServiceImpl) RegenerateBackupCodes(ctx context.Context, userID domain.UserID) ([]string, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.OTPRequiredForLogin {
		return nil, domain.ErrNotAuthorized
	}

	codes := make([]string, 0, backupCodeCount)
	hashes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := generateHexCode(backupCodeBytes)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
		hashes = append(hashes, digest(code))
	}
	if err := s.Store.Users().SetBackupCodes(ctx, userID, strings.Join(hashes, "\n")); err != nil {
		return nil, err
	}
	return codes, nil
}

// Disable clears the secret, backup codes, enforcement flag, and replay
// watermark in one update.
func (s *TwoFactorServiceImpl) Disable(ctx context.Context, userID domain.UserID) error {
	return s.Store.Users().SetTwoFactor(ctx, userID, "", "", false, nil)
}
