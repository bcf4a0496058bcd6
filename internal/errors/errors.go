package errors

import (
	"errors"
	"fmt"
)

// Custom error types shared across the application layers.

// ErrSlugNotFound is returned when a slug doesn't exist in the database.
var ErrSlugNotFound = errors.New("slug not found")

// ErrSlugTaken is returned when a slug is already registered. A unique
// constraint violation at insert time is mapped to this error so the race
// between the existence check and the insert resolves as an ordinary
// validation failure.
var ErrSlugTaken = errors.New("slug already taken")

// ErrInvalidSlug is returned when the slug format is invalid.
var ErrInvalidSlug = errors.New("invalid slug format")

// ErrNotOwner is returned when a user tries to modify a resource they
// don't own.
var ErrNotOwner = errors.New("not the owner of this resource")

// ErrUsernameTaken is returned when a bio page username is already in use.
var ErrUsernameTaken = errors.New("username already taken")

// ErrClickRecordingFailed is returned when click recording fails.
type ErrClickRecordingFailed struct {
	LinkID uint
	Reason string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for link %d: %s", e.LinkID, e.Reason)
}

// ErrURLCheckFailed is returned when a destination health check fails.
type ErrURLCheckFailed struct {
	URL    string
	Reason string
}

func (e ErrURLCheckFailed) Error() string {
	return fmt.Sprintf("failed to check URL %s: %s", e.URL, e.Reason)
}
