package api

import (
	"errors"
	"unicode"

	apperrors "github.com/Ifihan/briefen-me/internal/errors"
	"github.com/Ifihan/briefen-me/internal/services"
	"github.com/Ifihan/briefen-me/internal/validate"
)

// userFacing reports whether err is an input-validation failure whose
// message can be shown to the caller verbatim (4xx, never retried).
func userFacing(err error) bool {
	var validationErr *validate.Error
	if errors.As(err, &validationErr) {
		return true
	}
	return errors.Is(err, apperrors.ErrSlugTaken) ||
		errors.Is(err, apperrors.ErrInvalidSlug) ||
		errors.Is(err, apperrors.ErrUsernameTaken) ||
		errors.Is(err, services.ErrEmailTaken) ||
		errors.Is(err, services.ErrInvalidCredentials) ||
		errors.Is(err, services.ErrInvalidEmail) ||
		errors.Is(err, services.ErrWeakPassword) ||
		errors.Is(err, services.ErrInvalidUsername) ||
		errors.Is(err, services.ErrTitleRequired)
}

// userMessage renders a user-facing error with a leading capital.
func userMessage(err error) string {
	if errors.Is(err, apperrors.ErrSlugTaken) {
		return "Slug already taken"
	}

	msg := err.Error()
	if msg == "" {
		return msg
	}
	runes := []rune(msg)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
