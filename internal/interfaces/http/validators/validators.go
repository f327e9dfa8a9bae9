// Package validators registers marketplace field rules on gin's binding engine.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"kitchenware-market.backend/internal/domain/entities"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
)

const (
	PhoneTag     = "kitchen_phone"
	ConditionTag = "item_condition"
)

var registerOnce sync.Once

// Register installs the custom validations. Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = RegisterOn(v)
	})
	return err
}

// RegisterOn installs the custom validations on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(tagName)
	if err := v.RegisterValidation(PhoneTag, validatePhone); err != nil {
		return err
	}
	return v.RegisterValidation(ConditionTag, validateCondition)
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.TrimSpace(fl.Field().String())
	return len(phone) <= entities.MaxPhoneDigits && entities.ValidatePhoneNumber(phone)
}

func validateCondition(fl validator.FieldLevel) bool {
	return entities.ItemCondition(fl.Field().String()).IsValid()
}

// ToDomain converts a binding failure into a field-scoped validation error.
func ToDomain(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domainerrors.BadRequest(err.Error())
	}
	fe := verrs[0]
	return domainerrors.NewValidationError(fieldName(fe), message(fe))
}

// tagName reports fields by their form or json name so errors match the request.
func tagName(f reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func fieldName(fe validator.FieldError) string {
	f := fe.Field()
	if f != "" && f[0] >= 'A' && f[0] <= 'Z' {
		return toSnake(f)
	}
	return f
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case PhoneTag:
		return "Enter a valid phone number."
	case ConditionTag, "oneof":
		return "Select a valid choice."
	}
	return "Invalid value."
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
