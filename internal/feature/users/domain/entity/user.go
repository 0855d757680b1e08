// Package entity defines the domain entities for the users feature.
package entity

import (
	"encoding/base64"
	"time"
)

// avatarMIMEType is the MIME type assumed for stored avatar images.
const avatarMIMEType = "image/jpeg"

// User represents a registered user in the system.
// It contains the account credentials, presence flags for voice channels,
// and the enrolled face descriptor.
type User struct {
	// ID is the unique identifier for the user. Assigned by the store
	// on creation and never changes afterwards.
	ID uint `gorm:"primaryKey"`

	// Username is the user's display name. It must be unique across all users.
	Username string `gorm:"uniqueIndex;size:255;not null"`

	// Email is the user's email address. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// Avatar holds the raw avatar image bytes, or nil when the user has
	// no avatar. Use AvatarDataURI for the browser-facing representation.
	// The column type is left to the dialector (longblob/bytea/blob).
	Avatar []byte

	// Status is the user's presence/availability flag ("online", "away", ...).
	Status string `gorm:"size:32"`

	// IsMuted reports whether the user muted their microphone.
	IsMuted bool

	// IsHeadphonesOn reports whether the user's audio output is enabled.
	IsHeadphonesOn bool

	// FaceDescriptor is the serialized face embedding used for face login.
	// Numeric vectors are stored as JSON text.
	FaceDescriptor string `gorm:"type:text"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// AvatarDataURI returns the avatar encoded as a data URI
// ("data:image/jpeg;base64,..."), or the empty string when no avatar is set.
func (u *User) AvatarDataURI() string {
	if len(u.Avatar) == 0 {
		return ""
	}
	return "data:" + avatarMIMEType + ";base64," + base64.StdEncoding.EncodeToString(u.Avatar)
}

// UserChanges describes a partial update to a user row.
// A nil field leaves the corresponding column untouched; a non-nil field
// writes the pointed-to value, including explicit false and a nil avatar
// (which clears the column). This keeps "not provided" distinct from
// "set to zero value".
type UserChanges struct {
	Username       *string
	Email          *string
	Password       *string
	Avatar         *[]byte
	Status         *string
	IsMuted        *bool
	IsHeadphonesOn *bool
	FaceDescriptor *string
}

// FaceDescriptor holds a face embedding in one of two forms: a numeric
// vector to be serialized as JSON, or an opaque pre-serialized payload
// stored as given. Vector takes precedence when both are set.
type FaceDescriptor struct {
	Vector []float64
	Raw    string
}
