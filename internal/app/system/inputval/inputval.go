// Package inputval validates request payloads with go-playground/validator.
//
// Struct fields carry `validate` rules and an optional `label` used in
// messages ("Resident name is required."). Besides the built-in rules the
// package registers:
//
//	phone             10 to 15 digits, optional leading +, spaces and dashes allowed
//	ward              an integer ward number from 1 to MaxWard
//	objectid          a 24-character hex Mongo ObjectID
//	collectionstatus  collected | not-available (statuses a collector may record)
//	paymentstatus     pending | paid | overdue
//	paymentmode       none | offline | online
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/greenlink/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxWard is the highest ward number accepted.
const MaxWard = 999

// FieldError is one failed rule, rendered for humans.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		}))
		must(v.RegisterValidation("ward", func(fl validator.FieldLevel) bool {
			switch fl.Field().Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return IsValidWard(int(fl.Field().Int()))
			}
			return false
		}))
		must(v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		}))
		must(v.RegisterValidation("collectionstatus", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == models.CollectionCollected || s == models.CollectionNotAvailable
		}))
		must(v.RegisterValidation("paymentstatus", func(fl validator.FieldLevel) bool {
			return models.OneOf(fl.Field().String(), models.PaymentStatuses)
		}))
		must(v.RegisterValidation("paymentmode", func(fl validator.FieldLevel) bool {
			return models.OneOf(fl.Field().String(), models.PaymentModes)
		}))
	})
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate runs the struct's rules. A non-struct value is reported as a
// single error rather than a panic.
func Validate(s any) Result {
	err := instance().Struct(s)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: "Input could not be validated."}}}
	}
	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.StructField(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "phone":
		return label + " must be a valid phone number."
	case "ward":
		return fmt.Sprintf("%s must be a ward number from 1 to %d.", label, MaxWard)
	case "objectid":
		return label + " must be a valid id."
	case "collectionstatus":
		return fmt.Sprintf("%s must be %q or %q.", label, models.CollectionCollected, models.CollectionNotAvailable)
	case "paymentstatus":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.PaymentStatuses, ", "))
	case "paymentmode":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.PaymentModes, ", "))
	case "dive":
		return label + " contains an invalid value."
	}
	return label + " is invalid."
}

// IsValidEmail reports whether s is a plausible email address.
func IsValidEmail(s string) bool {
	return instance().Var(s, "required,email") == nil
}

// IsValidPhone accepts 10 to 15 digits with an optional leading + and
// spaces or dashes between digit groups.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// IsValidWard reports whether w is a usable ward number.
func IsValidWard(w int) bool { return w >= 1 && w <= MaxWard }

// IsValidObjectID reports whether s is a hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
