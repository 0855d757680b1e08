package usecase

import (
	"context"

	"voicechat_backend/internal/feature/users/domain/entity"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase),
// not the provider (adapters).
type UserRepository interface {
	// Create persists a new user to the storage.
	// Returns ErrUserAlreadyExists when the username or email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindAll retrieves every user, projected to the listing columns
	// (id, email, username, avatar, status, face_descriptor).
	FindAll(ctx context.Context) ([]entity.User, error)

	// FindByID retrieves a user by ID.
	// Returns ErrUserNotFound when no user exists.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByEmail retrieves the first user matching the email exactly.
	// Returns ErrUserNotFound when no user exists.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername retrieves the first user matching the username exactly.
	// Returns ErrUserNotFound when no user exists.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Update applies a partial update to the row with the given ID and
	// refreshes updated_at. Returns the number of affected rows.
	Update(ctx context.Context, id uint, changes entity.UserChanges) (int64, error)

	// Delete removes the given user row.
	Delete(ctx context.Context, user *entity.User) error
}
