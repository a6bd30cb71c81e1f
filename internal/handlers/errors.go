package handlers

import (
	"net/http"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/auth"
	"github.com/anonto42/socialgraph/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// httpError converts an application error into an echo HTTP error, logging internal failures.
func httpError(c echo.Context, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		logrus.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).WithError(err).Error("request failed")
	}
	return echo.NewHTTPError(apperror.HTTPStatus(kind), apperror.Message(err))
}

// currentIdentity returns the caller or a 401 when the route was not authenticated.
func currentIdentity(c echo.Context) (*auth.Identity, error) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return identity, nil
}

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
