package account

import (
	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

// ValidateRegistration checks the form before anything is sent.
func ValidateRegistration(req RegisterRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "all fields are required", nil)
	}
	if !emailPattern.MatchString(req.Email) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "email address is not valid", nil)
	}
	if req.Password != req.ConfirmPassword {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "passwords do not match", nil)
	}
	if !StrongPassword(req.Password) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "password needs at least 8 characters with upper and lower case letters and a digit", nil)
	}
	return nil
}

// StrongPassword reports whether password meets the registration policy.
func StrongPassword(password string) bool {
	return len([]rune(password)) >= MinPasswordLength &&
		lowerPattern.MatchString(password) &&
		upperPattern.MatchString(password) &&
		digitPattern.MatchString(password)
}
