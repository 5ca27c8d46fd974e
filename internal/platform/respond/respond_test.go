package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func run(t *testing.T, fn func(c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := fn(c); err != nil {
		t.Fatalf("respond: %v", err)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewValidationError(map[string]string{"phone": "bad"}), http.StatusBadRequest},
		{NewConflictError("NIC", "851234567V"), http.StatusConflict},
		{NewNotFoundError("patient", "x"), http.StatusNotFound},
		{&UnauthorizedError{Message: "no session"}, http.StatusUnauthorized},
		{&ForbiddenError{Message: "wrong role"}, http.StatusForbidden},
		{errors.New("pq: broken pipe"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := run(t, func(c echo.Context) error {
			return Error(c, tt.err, false)
		})
		if rec.Code != tt.status {
			t.Errorf("%T -> %d, want %d", tt.err, rec.Code, tt.status)
		}
		if env := decode(t, rec); env.Success {
			t.Errorf("%T: success = true", tt.err)
		}
	}
}

func TestConflictCarriesField(t *testing.T) {
	rec := run(t, func(c echo.Context) error {
		return Error(c, NewConflictError("NIC", "851234567V"), false)
	})
	env := decode(t, rec)
	if env.Field != "NIC" {
		t.Errorf("field = %q", env.Field)
	}
	if !strings.Contains(env.Message, "already exists") {
		t.Errorf("message = %q", env.Message)
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	boom := errors.New("pq: connection refused")

	rec := run(t, func(c echo.Context) error {
		return Error(c, boom, false)
	})
	env := decode(t, rec)
	if env.Detail != "" {
		t.Error("detail leaked in production mode")
	}
	if env.Message != "internal server error" {
		t.Errorf("message = %q", env.Message)
	}

	rec = run(t, func(c echo.Context) error {
		return Error(c, boom, true)
	})
	if env := decode(t, rec); env.Detail == "" {
		t.Error("detail missing in development mode")
	}
}

func TestMissingFieldsErrorMessage(t *testing.T) {
	err := MissingFieldsError([]string{"phone", "firstName"})
	if err.Message != "missing required fields: firstName, phone" {
		t.Errorf("message = %q", err.Message)
	}
	if err.Fields["phone"] != "is required" {
		t.Errorf("fields = %v", err.Fields)
	}
}
