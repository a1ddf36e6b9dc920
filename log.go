package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// setupLog configures the global logger. Logs go to stderr by default; when
// LESSONFORGE_LOGFILE is set they go to that file instead, so renders driven
// by other tooling keep a trail without polluting their output.
func setupLog() (func() error, error) {
	log.SetReportTimestamp(false)

	if os.Getenv("DEBUG") != "" || os.Getenv("LESSONFORGE_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	}

	logFile := os.Getenv("LESSONFORGE_LOGFILE")
	if logFile == "" {
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(io.Writer(f))
	return f.Close, nil
}
