package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRequireRole(roles []string, required ...string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), "u", roles))
	c := e.NewContext(req, httptest.NewRecorder())
	return RequireRole(required...)(func(c echo.Context) error { return nil })(c)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		required []string
		allowed  bool
	}{
		{"matching role", []string{RoleBilling}, []string{RoleBilling}, true},
		{"one of many", []string{RoleDoctor}, []string{RoleBilling, RoleDoctor}, true},
		{"admin bypass", []string{RoleAdmin}, []string{RoleBilling}, true},
		{"wrong role", []string{RoleReception}, []string{RoleBilling}, false},
		{"no roles", nil, []string{RoleBilling}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runRequireRole(tt.roles, tt.required...)
			if tt.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tt.allowed {
				var he *echo.HTTPError
				if !errors.As(err, &he) || he.Code != http.StatusForbidden {
					t.Fatalf("expected 403, got %v", err)
				}
			}
		})
	}
}
