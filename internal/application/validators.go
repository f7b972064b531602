package application

import (
	"regexp"
	"strings"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?\d{7,15}$`)
	docRegex   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s\-']+$`)
)

// Validator contains guest data validation rules.
type Validator struct{}

// ValidateEmail checks the format of an email address.
func (v *Validator) ValidateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return domain.NewValidationError("email", "invalid email format %q", email)
	}
	return nil
}

// ValidatePhone checks the format of a phone number. Spaces, dashes and
// parentheses are stripped before matching.
func (v *Validator) ValidatePhone(phone string) error {
	if phone == "" {
		return domain.NewValidationError("phone", "phone is required")
	}

	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phoneRegex.MatchString(clean) {
		return domain.NewValidationError("phone", "phone %q must have between 7 and 15 digits", phone)
	}
	return nil
}

// ValidateDocument checks an identity document number.
func (v *Validator) ValidateDocument(document string) error {
	if document == "" {
		return domain.NewValidationError("document", "document number is required")
	}

	clean := strings.NewReplacer(" ", "", "-", "").Replace(document)
	if len(clean) < 6 || len(clean) > 15 {
		return domain.NewValidationError("document", "document number must have between 6 and 15 characters")
	}
	if !docRegex.MatchString(clean) {
		return domain.NewValidationError("document", "document number may only contain letters and digits")
	}
	return nil
}

// ValidateName checks that a name field is present and well formed.
func (v *Validator) ValidateName(name, fieldName string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError(fieldName, "%s is required", fieldName)
	}
	if len(name) < 2 {
		return domain.NewValidationError(fieldName, "%s must have at least 2 characters", fieldName)
	}
	if len(name) > 50 {
		return domain.NewValidationError(fieldName, "%s may not exceed 50 characters", fieldName)
	}
	if !nameRegex.MatchString(name) {
		return domain.NewValidationError(fieldName, "%s contains invalid characters", fieldName)
	}
	return nil
}
