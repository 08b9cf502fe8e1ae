package app

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the shared diagnostic logger. Results go to stdout, logs to stderr.
var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// InitLogger configures Logger for the given level name
func InitLogger(level string) {
	Logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", level)
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	Logger.AddHook(&appNameHook{AppName})
}
