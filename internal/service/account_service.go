package service

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/policy"
)

type AccountService interface {
	// List returns only accounts the actor belongs to; the scope runs
	// before any counting.
	List(ctx context.Context, actor policy.Context) ([]domain.Account, error)
	// Create makes a team account owned by the actor, with an owner-role
	// membership, in one transaction.
	Create(ctx context.Context, actor policy.Context, r dto.AccountCreateRequest) (*domain.Account, error)
	Get(ctx context.Context, actor policy.Context) (*domain.Account, error)
	Update(ctx context.Context, actor policy.Context, r dto.AccountUpdateRequest) (*domain.Account, error)
	// Destroy deletes a team account; personal accounts are refused even
	// for the owner.
	Destroy(ctx context.Context, actor policy.Context) error

	Members(ctx context.Context, actor policy.Context) ([]domain.AccountUser, error)
	UpdateMemberRoles(ctx context.Context, actor policy.Context, memberID domain.UserID, roles []domain.Role) (*domain.AccountUser, error)
	RemoveMember(ctx context.Context, actor policy.Context, memberID domain.UserID) error
}
