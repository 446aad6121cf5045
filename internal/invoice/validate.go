package invoice

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError carries one message per offending field, keyed by the
// JSON path of the field (for example "items[1].quantity"). Subject names
// what was validated and defaults to "document".
type ValidationError struct {
	Subject    string
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Violations))
	for k := range e.Violations {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Violations[k]
	}

	subject := e.Subject
	if subject == "" {
		subject = "document"
	}

	return "invalid " + subject + ": " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}

		return d.InexactFloat64()
	}, decimal.Decimal{})

	return v
}

// Validate enforces the document policy: at least one item, unique item
// ids, quantity of at least one, non-negative prices, hex colors, ISO dates
// and a supported locale.
func (d *Document) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating document: %w", err)
	}

	out := &ValidationError{Violations: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Violations[fieldPath(fe.Namespace())] = message(fe)
	}

	return out
}

// ValidateItem applies the item rules on their own, used when a single row
// is edited.
func ValidateItem(item LineItem) error {
	v := &ValidationError{Subject: "line item", Violations: map[string]string{}}

	if item.Quantity < 1 {
		v.Violations["quantity"] = "must be at least 1"
	}

	if item.Price.IsNegative() {
		v.Violations["price"] = "must not be negative"
	}

	if len(v.Violations) > 0 {
		return v
	}

	return nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}

	return rest
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "needs at least " + fe.Param() + " entry"
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}

		return "must be at least " + fe.Param()
	case "unique":
		return "contains duplicate " + strings.ToLower(fe.Param()) + "s"
	case "hexcolor":
		return "must be a hex color such as #5A8F7B"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datauri":
		return "must be an inline data URI"
	}

	return "failed " + fe.Tag() + " check"
}
