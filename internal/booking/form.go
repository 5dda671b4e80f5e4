package booking

import (
	"regexp"
	"strings"
)

var (
	nameRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]{1,99}$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9 ()+\-]{5,20}$`)
)

const maxMessageLen = 1000

// Form is the client-validated consultation booking request.
type Form struct {
	SlotID  string `json:"slotId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

// FieldError pairs a form field with its inline validation message.
type FieldError struct {
	Field   string
	Message string
}

// Validate applies the pre-submit rules. An empty result means the
// form may be sent.
func (f Form) Validate() []FieldError {
	var errs []FieldError
	if !nameRe.MatchString(strings.TrimSpace(f.Name)) {
		errs = append(errs, FieldError{"name", "Name must be 2-100 characters (letters, spaces, hyphens and apostrophes only)."})
	}
	if !emailRe.MatchString(strings.TrimSpace(f.Email)) {
		errs = append(errs, FieldError{"email", "Please enter a valid email address."})
	}
	if !phoneRe.MatchString(strings.TrimSpace(f.Phone)) {
		errs = append(errs, FieldError{"phone", "Phone must be 5-20 characters (digits, spaces, hyphens, parentheses and plus only)."})
	}
	if len(f.Message) > maxMessageLen {
		errs = append(errs, FieldError{"message", "Message must be at most 1000 characters."})
	}
	return errs
}

// ValidateField re-checks a single field, used when a field is
// re-prompted on its own.
func (f Form) ValidateField(field string) *FieldError {
	for _, e := range f.Validate() {
		if e.Field == field {
			return &e
		}
	}
	return nil
}

// ConfirmCancel gates cancellation on a case-sensitive exact match of
// the booking's stored email. No trimming or case folding is applied.
func ConfirmCancel(entered, stored string) bool {
	return entered == stored
}
