package repository

import (
	"context"

	"github.com/streamnest/streamnest/internal/domain/entity"
)

// UserRepository defines the interface for identity persistence.
//
// Create must persist the user and their channel atomically and report
// ErrDuplicateUsername / ErrDuplicateEmail on uniqueness conflicts. The
// Change* methods are compare-and-set: they mutate only when the stored value
// still equals current, and report ErrStaleValue otherwise. Delete performs
// the full ordered cascade (counter decrements, edges, sessions, channel,
// messages, user) in one transaction.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ChangeUsername(ctx context.Context, id, current, next string) error
	ChangeEmail(ctx context.Context, id, current, next string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateProfilePicture(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
	MostFollowed(ctx context.Context, limit int) ([]entity.User, error)
	SearchByUsername(ctx context.Context, substring string) ([]entity.User, error)
}
