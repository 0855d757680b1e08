// Package usecase implements the business logic for the users feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned by write paths that first look the user
	// up by ID (change password, face enrollment, delete) when no row exists.
	// Read paths report an unknown user as (nil, nil) instead.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when creating a user whose username
	// or email collides with an existing row.
	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrCurrentPasswordIncorrect is returned by ChangePassword when the
	// supplied current password does not match the stored hash.
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
)

// Generic operation failures. Store and hashing errors are logged with
// their cause and surfaced to callers only through these sentinels.
var (
	ErrCreateUser             = errors.New("failed to create user")
	ErrRetrieveUsers          = errors.New("failed to retrieve users")
	ErrRetrieveUser           = errors.New("failed to retrieve user")
	ErrRetrieveUserByUsername = errors.New("failed to retrieve user by username")
	ErrUpdateUser             = errors.New("failed to update user")
	ErrUpdateAvatar           = errors.New("failed to update avatar")
	ErrChangePassword         = errors.New("failed to change password")
	ErrRegisterFace           = errors.New("failed to register face recognition")
	ErrDeleteUser             = errors.New("failed to delete user")
)
