package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() Form {
	return Form{
		SlotID: "slot-1",
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Phone:  "+1 555-123-4567",
	}
}

func TestFormValidation(t *testing.T) {
	assert.Empty(t, validForm().Validate())

	cases := []struct {
		name   string
		mutate func(*Form)
		field  string
	}{
		{"one-char name", func(f *Form) { f.Name = "A" }, "name"},
		{"digits in name", func(f *Form) { f.Name = "Jane 2" }, "name"},
		{"name over 100 chars", func(f *Form) { f.Name = strings.Repeat("a", 101) }, "name"},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "email"},
		{"short phone", func(f *Form) { f.Phone = "12" }, "phone"},
		{"phone with letters", func(f *Form) { f.Phone = "555-CALL-NOW" }, "phone"},
		{"long message", func(f *Form) { f.Message = strings.Repeat("x", 1001) }, "message"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := validForm()
			c.mutate(&f)
			errs := f.Validate()
			assert.Len(t, errs, 1)
			assert.Equal(t, c.field, errs[0].Field)
			fe := f.ValidateField(c.field)
			assert.NotNil(t, fe)
		})
	}

	// Accepted edge shapes.
	f := validForm()
	f.Name = "Mary-Jane O'Connor"
	f.Message = strings.Repeat("x", 1000)
	assert.Empty(t, f.Validate())
}

func TestConfirmCancelIsCaseSensitive(t *testing.T) {
	assert.False(t, ConfirmCancel("Jane@Example.com", "jane@example.com"))
	assert.False(t, ConfirmCancel(" jane@example.com", "jane@example.com"))
	assert.True(t, ConfirmCancel("jane@example.com", "jane@example.com"))
}
