package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osse101/FarmState_Go/internal/logger"
)

// LoggerOptions selects where and how a binary logs
type LoggerOptions struct {
	Level       string
	Format      string
	Dir         string
	ServiceName string
	Version     string
	Environment string
}

// SetupLogger initializes the default logger writing to stdout and a
// timestamped file in opts.Dir, after pruning old log files.
// Returns the log file handle (caller must close).
func SetupLogger(opts LoggerOptions) (*os.File, error) {
	if err := os.MkdirAll(opts.Dir, DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateLogsDir, err)
	}

	cleanupLogs(opts.Dir)

	timestamp := time.Now().Format(LogFileTimestampFormat)
	logFileName := filepath.Join(opts.Dir, fmt.Sprintf(LogFileNamePattern, opts.ServiceName, timestamp))

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermission)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedOpenLogFile, err)
	}

	cfg := logger.NewConfig(opts.Level, opts.Format, opts.ServiceName, opts.Version, opts.Environment)
	logger.InitLoggerWithWriter(cfg, io.MultiWriter(os.Stdout, logFile))

	slog.Info(LogMsgLoggingInitialized, "level", cfg.LogLevel().String(), "format", opts.Format, "file", logFileName)
	return logFile, nil
}

// cleanupLogs removes the oldest log files once LogFileRetentionLimit is reached
func cleanupLogs(logDir string) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var logFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), LogFileExtension) {
			logFiles = append(logFiles, entry.Name())
		}
	}
	if len(logFiles) < LogFileRetentionLimit {
		return
	}

	// Timestamped names sort chronologically
	sort.Strings(logFiles)
	for _, name := range logFiles[:len(logFiles)-LogFileRetentionCount] {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			slog.Warn(LogMsgFailedDeleteOldLog, "file", name, "error", err)
		}
	}
}
