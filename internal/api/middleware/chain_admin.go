package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AdminChecker reports whether an address holds the registry's admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, address string) (bool, error)
}

// ChainAdmin allows the request only when the wallet claim of the caller
// holds the on-chain admin role. It must run after Auth.
func ChainAdmin(checker AdminChecker, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			wallet, _ := c.Get("wallet").(string)
			if wallet == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "no wallet linked to this operator"})
			}

			ok, err := checker.IsAdmin(c.Request().Context(), wallet)
			if err != nil {
				log.Warn().Err(err).Str("wallet", wallet).Msg("admin role check failed")
				return c.JSON(http.StatusBadGateway, map[string]string{"error": "unable to verify admin role"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied: wallet does not hold the admin role"})
			}
			return next(c)
		}
	}
}
