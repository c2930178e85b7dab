package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the application logger. Release mode logs JSON; anything else logs text.
// Unknown levels fall back to info.
func New(level string, release bool) *logrus.Logger {
	return newWithOutput(os.Stdout, level, release)
}

func newWithOutput(out io.Writer, level string, release bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if release {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// Discard returns a logger that drops everything; used by tests and optional collaborators.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
