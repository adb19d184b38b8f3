package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/storefront-backend/internal/app/model"
)

var categoryPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// RegisterCategoryValidation adds the `category` tag: an upper-case token
// such as SHOES. New categories are allowed.
func RegisterCategoryValidation(v *validator.Validate) error {
	return v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return categoryPattern.MatchString(fl.Field().String())
	})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCategoryValidation(v); err != nil {
		panic(err)
	}
	return v
}

var productValidator = newValidator()

func validateProduct(p *model.Product) error {
	err := productValidator.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: map[string]string{"product": err.Error()}}
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.Index(name, "["); i > 0 {
		name = name[:i]
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return "must contain at least " + fe.Param() + " item"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must not be negative"
	case "uri":
		return "must be a valid URI"
	case "category":
		return "must be an upper-case category such as SHOES"
	default:
		return "is invalid"
	}
}
