package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Staff roles. ADMIN passes every role check.
const (
	RoleAdmin        = "ADMIN"
	RoleDoctor       = "DOCTOR"
	RoleNurse        = "NURSE"
	RoleReceptionist = "RECEPTIONIST"
	RolePharmacist   = "PHARMACIST"
	RoleLabTech      = "LAB_TECH"
	RolePatient      = "PATIENT"
)

// RequireRole returns middleware that checks if the caller has at least one
// of the specified roles. A missing session is 401; a present session with
// the wrong role is 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			if len(userRoles) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == RoleAdmin {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasRole reports whether the role list contains the role (or ADMIN).
func HasRole(userRoles []string, role string) bool {
	for _, r := range userRoles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}
