// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Field keys shared by the engine's log lines.
const (
	BranchFieldKey = "branch"
	CommitFieldKey = "commit"
	PathFieldKey   = "path"
	RemoteFieldKey = "remote"
)

var defaultLogger = logrus.New()

func init() {
	defaultLogger.SetOutput(os.Stderr)
	defaultLogger.SetLevel(logrus.WarnLevel)
}

type Fields = logrus.Fields

// Default returns an entry on the shared logger.
func Default() *logrus.Entry {
	return logrus.NewEntry(defaultLogger)
}

// Level returns the current level name.
func Level() string {
	return defaultLogger.GetLevel().String()
}

// SetLevel parses and applies level. "none" silences the logger.
func SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "null", "none":
		defaultLogger.SetLevel(logrus.PanicLevel)
		defaultLogger.SetOutput(io.Discard)
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	defaultLogger.SetLevel(lvl)
	return nil
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetOutputFormat selects "text" or "json" formatting. Unknown formats are ignored.
func SetOutputFormat(format string) {
	switch strings.ToLower(format) {
	case "text":
		defaultLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			QuoteEmptyFields:       true,
		})
	case "json":
		defaultLogger.SetFormatter(&logrus.JSONFormatter{})
	}
}
