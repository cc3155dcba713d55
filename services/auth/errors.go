package auth

import (
	"errors"

	"github.com/brickvest/brickvest/services/user"
)

// genericAuthMessage is returned for any failure the classifier does not
// recognize, so backend details never reach the client.
const genericAuthMessage = "authentication failed, please try again"

// ClassifyAuthError maps an authentication failure to the user-facing
// message shown by every surface. All sign-in and sign-up paths share this
// single mapping.
func ClassifyAuthError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "The email or password is incorrect."
	case errors.Is(err, user.ErrEmailTaken):
		return "An account already exists for this email."
	case errors.Is(err, ErrWeakPassword):
		return "The password must be at least 8 characters."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrInvalidGoogleToken):
		return "Google sign-in failed. Please try again."
	case errors.Is(err, user.ErrNotFound):
		return "No account was found for this email."
	default:
		return genericAuthMessage
	}
}
