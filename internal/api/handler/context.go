package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxActor returns the operator recorded on audit entries. The username
// claim must be present; it proves the Auth middleware ran.
func ctxActor(c echo.Context) (string, error) {
	username, _ := c.Get("username").(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, nil
}
