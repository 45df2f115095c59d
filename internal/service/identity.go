package service

import (
	"context"

	"retailpos/internal/apierror"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
)

// CallerResolver turns an authenticated caller id into its user record.
type CallerResolver interface {
	Resolve(ctx context.Context, callerID uuid.UUID) (*model.User, error)
}

type userResolver struct {
	users repository.UserRepository
}

func NewCallerResolver(users repository.UserRepository) CallerResolver {
	return &userResolver{users: users}
}

func (r *userResolver) Resolve(ctx context.Context, callerID uuid.UUID) (*model.User, error) {
	u, err := r.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, apierror.InvalidState("user %s is inactive", u.Email)
	}
	return u, nil
}

// cashierBranch returns the branch a cashier sells for.
func cashierBranch(u *model.User) (uuid.UUID, error) {
	if u.BranchID == nil || *u.BranchID == uuid.Nil {
		return uuid.Nil, apierror.InvalidState("cashier %s is not assigned to a branch", u.Email)
	}
	return *u.BranchID, nil
}
