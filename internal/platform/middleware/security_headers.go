package middleware

import (
	"github.com/labstack/echo/v4"
)

// APIContentSecurityPolicy denies all resource loading; JSON responses need
// nothing else.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// DocumentContentSecurityPolicy is set by handlers that return printable
// HTML, which carries inline styles and the window.print() call.
const DocumentContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; script-src 'unsafe-inline'; img-src data:"

// SecurityHeaders sets the standard hardening headers on every response.
// Handlers may overwrite Content-Security-Policy afterwards.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", APIContentSecurityPolicy)
			h.Set("Referrer-Policy", "no-referrer")
			// Bills carry patient names and MR numbers.
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}
