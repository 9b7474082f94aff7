// Package validation wraps go-playground/validator with the service's enum rules and turns
// failures into field-level DomainErrors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/opt/omitnull"
	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/callcenter-service/internal/domain"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// Validator checks request DTOs.
type Validator struct {
	validate *validator.Validate
}

// New builds a validator with null types and enum rules registered. It panics when a rule
// fails to register, which only happens on programmer error.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	registerNullTypes(v)
	if err := registerRules(v); err != nil {
		panic("register validation rules: " + err.Error())
	}
	return &Validator{validate: v}
}

// Struct validates s and returns a VALIDATION_FAILED DomainError listing every bad field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return apperrors.NewValidationError("validation failed", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	}
	if values, ok := enumValues[fe.Tag()]; ok {
		return "must be one of " + strings.Join(values, " ")
	}
	return "is invalid"
}

func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Int); ok && val.Valid {
			return val.Int
		}
		return nil
	}, null.Int{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Int64); ok && val.Valid {
			return val.Int64
		}
		return nil
	}, null.Int64{})

	v.RegisterCustomTypeFunc(omitNullValue[string], omitnull.Val[string]{})
	v.RegisterCustomTypeFunc(omitNullValue[int], omitnull.Val[int]{})
	v.RegisterCustomTypeFunc(omitNullValue[int64], omitnull.Val[int64]{})
}

// omitNullValue exposes the inner value so omitempty skips unset and null fields.
func omitNullValue[T any](field reflect.Value) interface{} {
	val, ok := field.Interface().(omitnull.Val[T])
	if !ok {
		return nil
	}
	if inner, ok := val.Get(); ok {
		return inner
	}
	return nil
}

var enumValues = map[string][]string{
	"role":            {string(domain.RoleAgent), string(domain.RoleSupervisor)},
	"call_type":       {string(domain.CallTypeInbound), string(domain.CallTypeOutbound)},
	"call_status":     {string(domain.CallStatusIncoming), string(domain.CallStatusActive), string(domain.CallStatusOnHold), string(domain.CallStatusEnded)},
	"ticket_priority": {string(domain.TicketPriorityLow), string(domain.TicketPriorityMedium), string(domain.TicketPriorityHigh), string(domain.TicketPriorityUrgent)},
	"ticket_status": {
		string(domain.TicketStatusOpen), string(domain.TicketStatusInProgress), string(domain.TicketStatusPending),
		string(domain.TicketStatusResolved), string(domain.TicketStatusClosed),
	},
}

func registerRules(v *validator.Validate) error {
	for tag, values := range enumValues {
		if err := v.RegisterValidation(tag, oneOf(values)); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}
