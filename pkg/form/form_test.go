package form

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hms/hms/internal/record"
)

var testRules = record.RuleSet{
	Required: []string{"firstName", "phone", "nic"},
	Formats: record.FieldRules{
		"phone": {record.Phone()},
		"nic":   {record.NIC()},
		"email": {record.Email()},
	},
}

func testConfig(serverURL string) Config {
	return Config{
		BaseURL:     serverURL + "/api/v1",
		Path:        "/patients",
		Rules:       testRules,
		CheckPath:   "/patients/check",
		CheckFields: []string{"nic"},
	}
}

func fillValid(c *Controller) {
	c.SetField("firstName", "Nimal")
	c.SetField("phone", "+94771234567")
	c.SetField("nic", "851234567V")
}

func TestSetFieldClearsError(t *testing.T) {
	c := New(testConfig("http://unused"))

	c.SetField("phone", "12")
	if err := c.ValidateField("phone"); err == nil {
		t.Fatal("expected format error")
	}
	if _, ok := c.Errors()["phone"]; !ok {
		t.Fatal("error not recorded")
	}

	c.SetField("phone", "+94771234567")
	if _, ok := c.Errors()["phone"]; ok {
		t.Error("error not cleared on edit")
	}
}

func TestValidateFieldSkipsEmptyOptional(t *testing.T) {
	c := New(testConfig("http://unused"))

	c.SetField("email", "")
	if err := c.ValidateField("email"); err != nil {
		t.Errorf("empty optional should pass: %v", err)
	}
	if err := c.ValidateField("nic"); err == nil {
		t.Error("empty required should fail")
	}
}

func TestSubmitBlockedByValidation(t *testing.T) {
	c := New(testConfig("http://unused"))
	c.SetField("firstName", "Nimal")

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected validation failure")
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s", c.State())
	}
	if _, ok := c.Errors()["phone"]; !ok {
		t.Error("missing phone not in error map")
	}

	// Editing any field returns to EDITING.
	c.SetField("phone", "+94771234567")
	if c.State() != StateEditing {
		t.Errorf("state after edit = %s", c.State())
	}
}

func TestSubmitSuccess(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/patients/check":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]bool{"nic": true},
			})
		case "/api/v1/patients":
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	fillValid(c)
	c.SetField("address.street", "10 Galle Road")
	c.SetField("address.city", "Colombo")

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.State() != StateSucceeded {
		t.Errorf("state = %s", c.State())
	}
	if c.Dirty() {
		t.Error("draft still dirty after success")
	}

	addr, ok := gotBody["address"].(map[string]interface{})
	if !ok {
		t.Fatalf("address not nested: %v", gotBody)
	}
	if addr["street"] != "10 Galle Road" {
		t.Errorf("street = %v", addr["street"])
	}
}

func TestSubmitPrecheckTaken(t *testing.T) {
	var posted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/patients/check":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]bool{"nic": false},
			})
		case "/api/v1/patients":
			posted = true
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	fillValid(c)

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected pre-check failure")
	}
	if posted {
		t.Error("submit went through despite taken identifier")
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s", c.State())
	}
	if c.Errors()["nic"] == "" {
		t.Error("nic error not set")
	}
}

func TestSubmitMergesServerConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/patients/check" {
			// Pre-check passes; the insert race loses.
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]bool{"nic": true},
			})
			return
		}
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"field":   "NIC",
			"message": `a record with NIC "851234567V" already exists`,
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	fillValid(c)

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected conflict")
	}
	if c.Errors()["nic"] == "" {
		t.Errorf("conflict not mapped onto draft path: %v", c.Errors())
	}
	// Draft survives for correction.
	if c.Field("firstName") != "Nimal" {
		t.Error("draft lost after failure")
	}
}

func TestEditSubmitsPut(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c := Edit(testConfig(srv.URL), "abc-123", map[string]string{
		"firstName": "Nimal",
		"phone":     "+94771234567",
		"nic":       "851234567V",
	})
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s", gotMethod)
	}
	if gotPath != "/api/v1/patients/abc-123" {
		t.Errorf("path = %s", gotPath)
	}
}

func TestCancelNeedsConfirmationWhenDirty(t *testing.T) {
	c := New(testConfig("http://unused"))
	fillValid(c)

	if c.Cancel(func() bool { return false }) {
		t.Error("dirty cancel should respect a declined confirmation")
	}
	if c.Field("firstName") != "Nimal" {
		t.Error("draft cleared despite declined confirmation")
	}

	if !c.Cancel(func() bool { return true }) {
		t.Error("confirmed cancel should proceed")
	}
	if c.Field("firstName") != "" || c.Dirty() {
		t.Error("draft not reset")
	}

	// A clean draft cancels without asking.
	if !c.Cancel(func() bool { return false }) {
		t.Error("clean cancel should not need confirmation")
	}
}
