package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// RBAC restricts a route to the given operator roles. It reads the role claim
// set by Auth; failures go to the central error handler.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing operator role claim")
			}
			if _, ok := allowed[role]; !ok {
				return fmt.Errorf("%w: operator role %q may not access %s", domain.ErrForbidden, role, c.Path())
			}
			return next(c)
		}
	}
}
