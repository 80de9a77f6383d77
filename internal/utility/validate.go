package utility

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	docIDRegex    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	ruleKindRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// docIDValidator accepts snake_case document identifiers such as
// "ec_tag" or "pole_loading".
func docIDValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return docIDRegex.MatchString(val)
}

// ruleKindValidator accepts any snake_case token, normalized the same way as
// domain.ParseRuleKind. Kinds this version does not interpret are still
// well-formed and are ignored by the validation gate.
func ruleKindValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return ruleKindRegex.MatchString(strings.ToLower(strings.TrimSpace(val)))
}

func registerFn(tag string, fn validator.Func) func(v *validator.Validate) error {
	return func(v *validator.Validate) error {
		return v.RegisterValidation(tag, fn)
	}
}

var rules = []func(v *validator.Validate) error{
	registerFn("doc_id", docIDValidator),
	registerFn("rule_kind", ruleKindValidator),
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report problems using the YAML key names users write.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for _, r := range rules {
		if err := r(v); err != nil {
			panic(fmt.Sprintf("register validation: %v", err))
		}
	}
	return v
}

// ValidationError lists every structural problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid utility configuration: " + strings.Join(e.Problems, "; ")
}

// toValidationError flattens validator errors into readable problems keyed
// by field namespace.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return &ValidationError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "unique":
		return fmt.Sprintf("%s has duplicate %s values", field, fe.Param())
	case "doc_id":
		return fmt.Sprintf("%s %q is not a valid document id", field, fe.Value())
	case "rule_kind":
		return fmt.Sprintf("%s %q is not a valid rule kind", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of [%s]", field, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
