package auth

import (
	stderrors "errors"
	"fmt"
	"unicode"
	"whatsapp-clone/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=12,max=72"`
	Username string `validate:"max=64"`
}

// ValidateRegister checks the registration form before any expensive hashing.
// A bad address is reported as ErrInvalidEmailFormat, any other failure as ErrInvalidPassword.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if stderrors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				if fe.Field() == "Email" {
					return fmt.Errorf("%w: %v", errors.ErrInvalidEmailFormat, fe)
				}
			}
		}
		return fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
