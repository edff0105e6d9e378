package concurrency

import (
	"fmt"
	"io"
	"log/slog"
)

// Logger is the logging surface used by pools and the group executor.
// Any printf-style logger with leveled methods satisfies it.
type Logger interface {
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
}

// slogLogger implements Logger on top of log/slog
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an slog.Logger. A nil logger falls back to slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger.With("component", "groupexec")}
}

// NewNopLogger returns a Logger that discards everything
func NewNopLogger() Logger {
	return &slogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *slogLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }

func (l *slogLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Warn(args ...interface{}) { l.logger.Warn(fmt.Sprint(args...)) }

func (l *slogLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Info(args ...interface{}) { l.logger.Info(fmt.Sprint(args...)) }

func (l *slogLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }

func (l *slogLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
