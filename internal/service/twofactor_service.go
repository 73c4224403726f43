package service

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
)

type TwoFactorService interface {
	// EnableSetup provisions a fresh secret and backup codes but leaves
	// login ungated until ConfirmSetup succeeds.
	EnableSetup(ctx context.Context, userID domain.UserID) (*dto.TwoFactorSetupResponse, error)
	// ConfirmSetup checks a code against the provisioned secret (±1 step)
	// and, on match, turns enforcement on. The replay watermark is not
	// consulted here.
	ConfirmSetup(ctx context.Context, userID domain.UserID, code string) (bool, error)
	// VerifyLoginCode checks a code within the drift window and requires
	// the matched step to be strictly after the stored watermark.
	VerifyLoginCode(ctx context.Context, userID domain.UserID, code string) (bool, error)
	// VerifyBackupCode consumes a one-time backup code.
	VerifyBackupCode(ctx context.Context, userID domain.UserID, code string) (bool, error)
	RegenerateBackupCodes(ctx context.Context, userID domain.UserID) ([]string, error)
	Disable(ctx context.Context, userID domain.UserID) error
}
