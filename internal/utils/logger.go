package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger
func SetupLogger(level string, prod bool) {
	logrus.SetOutput(os.Stdout)
	if prod {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
