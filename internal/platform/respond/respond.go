package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/pkg/pagination"
)

// Envelope is the JSON shape every handler returns. Success responses carry
// Data; failures carry Message and, for field-level failures, Field.
type Envelope struct {
	Success    bool                 `json:"success"`
	Data       interface{}          `json:"data,omitempty"`
	Message    string               `json:"message,omitempty"`
	Field      string               `json:"field,omitempty"`
	Errors     map[string]string    `json:"errors,omitempty"`
	Pagination *pagination.Block    `json:"pagination,omitempty"`
	Statistics interface{}          `json:"statistics,omitempty"`
	Detail     string               `json:"detail,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Deleted(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// List writes a paginated collection response, with optional statistics.
func List(c echo.Context, data interface{}, block *pagination.Block, statistics interface{}) error {
	return c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Pagination: block,
		Statistics: statistics,
	})
}

// Error converts any error into the envelope. Taxonomy errors map to their
// HTTP status; everything else becomes a generic 500. The raw error text is
// attached as Detail only when includeDetail is set (non-production builds).
func Error(c echo.Context, err error, includeDetail bool) error {
	env := Envelope{Success: false}
	status := http.StatusInternalServerError

	switch e := err.(type) {
	case *ValidationError:
		status = http.StatusBadRequest
		env.Message = e.Message
		env.Errors = e.Fields
	case *ConflictError:
		status = http.StatusConflict
		env.Message = e.Error()
		env.Field = e.Field
	case *NotFoundError:
		status = http.StatusNotFound
		env.Message = e.Error()
	case *UnauthorizedError:
		status = http.StatusUnauthorized
		env.Message = e.Message
	case *ForbiddenError:
		status = http.StatusForbidden
		env.Message = e.Message
	default:
		env.Message = "internal server error"
		if includeDetail {
			env.Detail = err.Error()
		}
	}

	return c.JSON(status, env)
}
