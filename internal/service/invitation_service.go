package service

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/policy"
)

type InvitationService interface {
	List(ctx context.Context, actor policy.Context) (*dto.InvitationListResponse, error)
	Create(ctx context.Context, actor policy.Context, r dto.InvitationCreateRequest) (*domain.AccountInvitation, error)
	Cancel(ctx context.Context, actor policy.Context, id domain.InvitationID) error
	// Resend revives a lapsed invitation before re-notifying.
	Resend(ctx context.Context, actor policy.Context, id domain.InvitationID) (*domain.AccountInvitation, error)

	// GetByToken is the public lookup used by the acceptance page.
	GetByToken(ctx context.Context, token string) (*domain.AccountInvitation, error)
	// Accept atomically upserts the membership with the invitation's roles
	// and stamps accepted_at. It returns false, without mutation, for
	// expired or already-accepted invitations.
	Accept(ctx context.Context, token string, user *domain.User) (bool, error)
}
