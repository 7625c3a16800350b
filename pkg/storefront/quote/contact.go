// Package quote turns a cart and a contact form into a persisted quote and
// a WhatsApp message.
package quote

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
)

// ErrEmptyCart is returned when a quote is requested for an empty cart.
var ErrEmptyCart = pkgerrors.New(pkgerrors.CodeValidation, "el carrito está vacío")

// Contact is the quote form.
type Contact struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,max=50"`
	VehicleInfo string `json:"vehicle_info" validate:"max=200"`
	Message     string `json:"message" validate:"max=500"`
}

func (c Contact) normalized() Contact {
	return Contact{
		Name:        strings.TrimSpace(c.Name),
		Email:       strings.TrimSpace(c.Email),
		Phone:       strings.TrimSpace(c.Phone),
		VehicleInfo: strings.TrimSpace(c.VehicleInfo),
		Message:     strings.TrimSpace(c.Message),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks the contact form and refuses an empty cart. Failures are
// VALIDATION_ERROR coded errors with per-field details.
func Validate(contact Contact, entries []cart.Entry) error {
	if err := validate.Struct(contact.normalized()); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "datos de contacto inválidos")
		}
		fields := pkgerrors.FieldErrors{}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return pkgerrors.Validation("datos de contacto inválidos", fields)
	}
	if len(entries) == 0 {
		return ErrEmptyCart
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("debe tener como máximo %s caracteres", fe.Param())
	case "email":
		return "debe ser un email válido"
	}
	return "es inválido"
}
