package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures Log from the given level and format ("json" or "text").
func Init(level, format string) {
	Log.SetOutput(os.Stdout)
	if strings.EqualFold(format, "text") {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	Log.SetLevel(logLevel)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
