package chat

import (
	"fmt"
	"regexp"
	"strings"

	"innoportal/internal/chatbot"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Permissive international phone shape, checked after whitespace
	// removal.
	mobileRe = regexp.MustCompile(`^\+?[0-9()\-]{5,20}$`)
)

// FieldError names the offending contact field so callers can
// re-prompt inline.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName returns the trimmed name; it only has to be non-empty.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &FieldError{Field: "name", Message: "please tell me your name"}
	}
	return name, nil
}

func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		return "", &FieldError{Field: "email", Message: "that doesn't look like a valid email address"}
	}
	return email, nil
}

// ValidateMobile strips all whitespace before matching.
func ValidateMobile(mobile string) (string, error) {
	stripped := strings.Join(strings.Fields(mobile), "")
	if !mobileRe.MatchString(stripped) {
		return "", &FieldError{Field: "mobile", Message: "that doesn't look like a valid phone number"}
	}
	return stripped, nil
}

// ValidateContact checks the mandatory contact fields and returns the
// normalized values on success.
func ValidateContact(name, email, mobile string) (chatbot.ContactInfo, error) {
	n, err := ValidateName(name)
	if err != nil {
		return chatbot.ContactInfo{}, err
	}
	e, err := ValidateEmail(email)
	if err != nil {
		return chatbot.ContactInfo{}, err
	}
	m, err := ValidateMobile(mobile)
	if err != nil {
		return chatbot.ContactInfo{}, err
	}
	return chatbot.ContactInfo{Name: n, Email: e, Mobile: m}, nil
}
