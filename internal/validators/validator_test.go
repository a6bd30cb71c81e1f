package validators

import (
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/labstack/echo/v4"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&models.LoginRequest{Email: "a@b.co", Password: "x"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	err := v.Validate(&models.SignupRequest{Email: "not-an-email", Password: "123"})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("Validate = %v, want 400", err)
	}
	msg := he.Message.(string)
	for _, want := range []string{"Email must be a valid email", "Password must be at least 6", "FirstName is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
