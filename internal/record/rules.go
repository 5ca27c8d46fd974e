// Package record implements the shared validation and normalization path
// every record variant (patient, appointment, pharmacy, product, lab order)
// runs before persistence. Rules are declarative so each variant reports the
// same per-field error map and the client can merge server errors directly
// into its form state.
package record

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	nicPattern   = regexp.MustCompile(`^([0-9]{9}[VvXx]|[0-9]{12})$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Rule validates a single field value. Empty values are handled by the
// required check before rules run, so a Rule only sees non-empty input.
type Rule func(value string) error

// FieldRules maps a field path to the rules that apply when it is present.
type FieldRules map[string][]Rule

// RuleSet describes one record variant's validation contract.
type RuleSet struct {
	Required []string
	Formats  FieldRules
}

// Phone validates international phone numbers (9-15 digits, optional +).
func Phone() Rule {
	return func(v string) error {
		if !phonePattern.MatchString(v) {
			return fmt.Errorf("must be a valid phone number")
		}
		return nil
	}
}

// NIC validates a Sri Lankan national identity card number (old 9-digit+V/X
// or new 12-digit format).
func NIC() Rule {
	return func(v string) error {
		if !nicPattern.MatchString(v) {
			return fmt.Errorf("must be a valid NIC number")
		}
		return nil
	}
}

// Email validates a basic email address shape.
func Email() Rule {
	return func(v string) error {
		if !emailPattern.MatchString(v) {
			return fmt.Errorf("must be a valid email address")
		}
		return nil
	}
}

// Date validates an ISO date (YYYY-MM-DD).
func Date() Rule {
	return func(v string) error {
		if !datePattern.MatchString(v) {
			return fmt.Errorf("must be a date in YYYY-MM-DD format")
		}
		return nil
	}
}

// OneOf validates enum membership, case-insensitively.
func OneOf(allowed ...string) Rule {
	return func(v string) error {
		for _, a := range allowed {
			if strings.EqualFold(v, a) {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// Range validates a numeric string within [min, max].
func Range(min, max float64) Rule {
	return func(v string) error {
		f, err := ParseNumber(v)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if f < min || f > max {
			return fmt.Errorf("must be between %g and %g", min, max)
		}
		return nil
	}
}

// Min validates a numeric string >= min.
func Min(min float64) Rule {
	return func(v string) error {
		f, err := ParseNumber(v)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if f < min {
			return fmt.Errorf("must be at least %g", min)
		}
		return nil
	}
}

// MaxLen validates string length.
func MaxLen(n int) Rule {
	return func(v string) error {
		if len(v) > n {
			return fmt.Errorf("must be at most %d characters", n)
		}
		return nil
	}
}

// Missing returns the required fields absent from the draft, preserving the
// rule-set order. A field is absent when its trimmed value is empty.
func (rs RuleSet) Missing(draft map[string]string) []string {
	var missing []string
	for _, f := range rs.Required {
		if strings.TrimSpace(draft[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Validate runs format rules over every present field and returns a map of
// field path to error message. Empty optional fields are skipped; an empty
// map means the draft is valid. Required-ness is reported through the same
// map so callers get one merged view.
func (rs RuleSet) Validate(draft map[string]string) map[string]string {
	errs := map[string]string{}
	for _, f := range rs.Missing(draft) {
		errs[f] = "is required"
	}
	for field, rules := range rs.Formats {
		v := strings.TrimSpace(draft[field])
		if v == "" {
			continue
		}
		for _, rule := range rules {
			if err := rule(v); err != nil {
				errs[field] = err.Error()
				break
			}
		}
	}
	return errs
}

// ValidateField runs a single field's rules, for per-field (on-blur) checks.
// Empty values only fail when the field is required.
func (rs RuleSet) ValidateField(field, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		for _, r := range rs.Required {
			if r == field {
				return fmt.Errorf("is required")
			}
		}
		return nil
	}
	for _, rule := range rs.Formats[field] {
		if err := rule(v); err != nil {
			return err
		}
	}
	return nil
}
