package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminRole passes every role check.
const AdminRole = "ADMIN"

// HasRole reports whether roles holds any of the permitted roles. Role
// names are compared after trimming surrounding whitespace, so configured
// lists like "DATA_LDS, DATA_PROT" match. An empty role set never matches.
func HasRole(permitted, roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, want := range permitted {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		for _, has := range roles {
			if strings.TrimSpace(has) == want {
				return true
			}
		}
	}
	return false
}

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	permitted := append([]string{AdminRole}, roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasRole(permitted, RolesFromContext(c.Request().Context())) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
