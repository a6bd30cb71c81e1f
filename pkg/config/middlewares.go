package config

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// SlowRequestThreshold marks requests logged at warn level.
const SlowRequestThreshold = 2 * time.Second

// SetupMiddleware installs recovery, CORS and request logging.
func SetupMiddleware(e *echo.Echo, cfg *Config, log logrus.FieldLogger) {
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
	}))
	e.Use(RequestLogger(log))
}

// RequestLogger logs one structured line per request.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"remote_ip": v.RemoteIP,
			})
			switch {
			case v.Error != nil && v.Status >= 500:
				entry.WithError(v.Error).Error("request failed")
			case v.Latency > SlowRequestThreshold:
				entry.Warn("slow request")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
