package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing JSON in production and text elsewhere.
// Unknown levels fall back to info.
func New(env, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.WithField("level", level).Warn("Unknown log level, using info")
	}
	log.SetLevel(lvl)
	return log
}
