// Package users persists account records and hashed credentials.
package users

import (
	"context"

	"github.com/dmitrijs2005/duochat/internal/server/models"
)

// Repository is the credential store contract. Email uniqueness is enforced
// at the storage layer; Create surfaces a duplicate as
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListExcept(ctx context.Context, id int64) ([]*models.User, error)
	UpdateProfilePic(ctx context.Context, id int64, profilePic string) (*models.User, error)
}
