package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()

	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel || entry.Data["status"] != http.StatusOK || entry.Data["uri"] != "/ok" {
		t.Fatalf("ok entry = %+v", entry)
	}

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	entry = hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel || entry.Data["status"] != http.StatusInternalServerError {
		t.Fatalf("error entry = %+v", entry)
	}
}
