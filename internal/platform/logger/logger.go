package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout. Production uses JSON lines,
// everything else the text formatter.
func New(environment, level string) *logrus.Logger {
	return NewWithWriter(environment, level, os.Stdout)
}

func NewWithWriter(environment, level string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if environment == "production" {
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
