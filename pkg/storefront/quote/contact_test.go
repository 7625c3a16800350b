package quote

import (
	"testing"

	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Contact{Name: "Juan", Email: "juan@example.com", Phone: "11-555"}

	cases := []struct {
		name    string
		contact Contact
		field   string
	}{
		{"missing name", Contact{Email: valid.Email, Phone: valid.Phone}, "name"},
		{"blank name", Contact{Name: "   ", Email: valid.Email, Phone: valid.Phone}, "name"},
		{"bad email", Contact{Name: valid.Name, Email: "juan", Phone: valid.Phone}, "email"},
		{"missing phone", Contact{Name: valid.Name, Email: valid.Email}, "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.contact, sampleEntries())
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			fields, ok := typed.Details().(pkgerrors.FieldErrors)
			require.True(t, ok)
			assert.Contains(t, fields, tc.field)
		})
	}

	require.NoError(t, Validate(valid, sampleEntries()))
}

func TestValidateRejectsEmptyCart(t *testing.T) {
	err := Validate(Contact{Name: "Juan", Email: "juan@example.com", Phone: "11-555"}, nil)
	require.ErrorIs(t, err, ErrEmptyCart)
}
