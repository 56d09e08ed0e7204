package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/nkiryanov/streamcat/internal/client/api"
	"github.com/nkiryanov/streamcat/internal/client/models"
)

// Input validation runs before any network call so obviously malformed input
// surfaces as the same error kind the backend would return for it.

func validateCredentials(creds models.Credentials) error {
	err := validation.ValidateStruct(&creds,
		validation.Field(&creds.Identifier, validation.Required),
		validation.Field(&creds.Password, validation.Required),
	)
	return wrapValidation(err)
}

func validateRegistration(reg models.Registration) error {
	err := validation.ValidateStruct(&reg,
		validation.Field(&reg.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&reg.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&reg.Email, validation.Required, is.Email),
		validation.Field(&reg.Password, validation.Required, validation.Length(8, 100)),
	)
	return wrapValidation(err)
}

func validatePasswordChange(currentPassword, newPassword string) error {
	err := validation.Errors{
		"currentPassword": validation.Validate(currentPassword, validation.Required),
		"newPassword":     validation.Validate(newPassword, validation.Required, validation.Length(8, 100)),
	}.Filter()
	return wrapValidation(err)
}

func validateEmailUpdate(newEmail, currentPassword string) error {
	err := validation.Errors{
		"newEmail":        validation.Validate(newEmail, validation.Required, is.Email),
		"currentPassword": validation.Validate(currentPassword, validation.Required),
	}.Filter()
	return wrapValidation(err)
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", api.ErrValidation, err)
}
