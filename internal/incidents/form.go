package incidents

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Form field names, as used in JSON bodies and HTML forms.
const (
	FieldTitle    = "title"
	FieldBody     = "body"
	FieldSeverity = "severity"
	FieldStatus   = "status"
)

var fieldLabels = map[string]string{
	FieldTitle:    "Title",
	FieldBody:     "Description",
	FieldSeverity: "Severity",
	FieldStatus:   "Status",
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// Fields returns the names of the failing fields in sorted order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError is returned when form data fails validation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the creation form. An empty result means the form is valid.
func Validate(form domain.IncidentFormData) FieldErrors {
	errs := make(FieldErrors)

	err := formValidator.Struct(form)
	if err == nil {
		return errs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs[FieldTitle] = err.Error()
		return errs
	}

	for _, fe := range validationErrors {
		errs[fe.Field()] = fieldMessage(fe.Field(), fe.Tag(), fe.Param())
	}
	return errs
}

func fieldMessage(field, tag, param string) string {
	label := fieldLabels[field]
	if label == "" {
		label = field
	}

	switch tag {
	case "notblank", "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	default:
		return label + " is invalid"
	}
}

// FormState is the transient state of the creation form.
type FormState struct {
	Data   domain.IncidentFormData
	Errors FieldErrors
}

// NewFormState returns an empty form with default selections.
func NewFormState() *FormState {
	return &FormState{
		Data:   domain.NewIncidentFormData(),
		Errors: make(FieldErrors),
	}
}

// Edit sets a field value and clears that field's error without re-validating.
func (s *FormState) Edit(field, value string) error {
	switch field {
	case FieldTitle:
		s.Data.Title = value
	case FieldBody:
		s.Data.Body = value
	case FieldSeverity:
		s.Data.Severity = domain.Severity(value)
	case FieldStatus:
		s.Data.Status = domain.Status(value)
	default:
		return fmt.Errorf("unknown form field: %s", field)
	}

	delete(s.Errors, field)
	return nil
}

// Submit validates the form, stores the errors and reports whether it is valid.
func (s *FormState) Submit() bool {
	s.Errors = Validate(s.Data)
	return len(s.Errors) == 0
}
