package record

import (
	"testing"
)

func TestPhoneRule(t *testing.T) {
	rule := Phone()
	valid := []string{"+94771234567", "0771234567", "123456789"}
	invalid := []string{"12345678", "+94 77 123 4567", "phone", "1234567890123456"}
	for _, v := range valid {
		if err := rule(v); err != nil {
			t.Errorf("Phone(%q) = %v, want nil", v, err)
		}
	}
	for _, v := range invalid {
		if err := rule(v); err == nil {
			t.Errorf("Phone(%q) accepted", v)
		}
	}
}

func TestNICRule(t *testing.T) {
	rule := NIC()
	valid := []string{"851234567V", "851234567v", "851234567X", "199012341234"}
	invalid := []string{"851234567", "85123456V", "1990123412345", "abcdefghiV"}
	for _, v := range valid {
		if err := rule(v); err != nil {
			t.Errorf("NIC(%q) = %v, want nil", v, err)
		}
	}
	for _, v := range invalid {
		if err := rule(v); err == nil {
			t.Errorf("NIC(%q) accepted", v)
		}
	}
}

func TestEmailRule(t *testing.T) {
	rule := Email()
	if err := rule("nimal@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, v := range []string{"nimal", "nimal@", "@example.com", "a b@example.com"} {
		if err := rule(v); err == nil {
			t.Errorf("Email(%q) accepted", v)
		}
	}
}

func TestOneOfCaseInsensitive(t *testing.T) {
	rule := OneOf("MALE", "FEMALE", "OTHER")
	if err := rule("male"); err != nil {
		t.Errorf("lowercase enum rejected: %v", err)
	}
	if err := rule("UNKNOWN"); err == nil {
		t.Error("unknown enum accepted")
	}
}

func TestRangeRule(t *testing.T) {
	rule := Range(30, 280)
	if err := rule("170.5"); err != nil {
		t.Errorf("in-range value rejected: %v", err)
	}
	if err := rule("29.9"); err == nil {
		t.Error("below-range value accepted")
	}
	if err := rule("281"); err == nil {
		t.Error("above-range value accepted")
	}
	if err := rule("tall"); err == nil {
		t.Error("non-numeric value accepted")
	}
}

func TestMissingPreservesOrder(t *testing.T) {
	rs := RuleSet{Required: []string{"firstName", "lastName", "phone"}}
	missing := rs.Missing(map[string]string{"lastName": "Perera", "phone": "  "})
	if len(missing) != 2 {
		t.Fatalf("missing = %v", missing)
	}
	if missing[0] != "firstName" || missing[1] != "phone" {
		t.Errorf("order not preserved: %v", missing)
	}
}

func TestValidateMergesRequiredAndFormat(t *testing.T) {
	rs := RuleSet{
		Required: []string{"firstName", "nic"},
		Formats: FieldRules{
			"nic":   {NIC()},
			"email": {Email()},
		},
	}
	errs := rs.Validate(map[string]string{
		"nic":   "bogus",
		"email": "not-an-email",
	})
	if errs["firstName"] != "is required" {
		t.Errorf("firstName error = %q", errs["firstName"])
	}
	if errs["nic"] == "" || errs["nic"] == "is required" {
		t.Errorf("nic error = %q, want format message", errs["nic"])
	}
	if errs["email"] == "" {
		t.Error("optional field with bad format not reported")
	}

	// Empty optional fields are skipped.
	errs = rs.Validate(map[string]string{
		"firstName": "Nimal",
		"nic":       "851234567V",
		"email":     "",
	})
	if len(errs) != 0 {
		t.Errorf("valid draft produced errors: %v", errs)
	}
}

func TestValidateFieldEmptyOptional(t *testing.T) {
	rs := RuleSet{
		Required: []string{"nic"},
		Formats:  FieldRules{"email": {Email()}},
	}
	if err := rs.ValidateField("email", ""); err != nil {
		t.Errorf("empty optional should pass: %v", err)
	}
	if err := rs.ValidateField("nic", ""); err == nil {
		t.Error("empty required should fail")
	}
	if err := rs.ValidateField("email", "bogus"); err == nil {
		t.Error("bad format accepted")
	}
}
