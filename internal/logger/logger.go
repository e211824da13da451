// Package logger provides the leveled logger used across the server.
//
// Output goes through the standard library log package, which main points
// at stderr: stdout carries the JSON-RPC stream and must stay clean.
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// LogLevel is a log severity.
type LogLevel int

const (
	// LogDebug is the DEBUG level.
	LogDebug LogLevel = iota
	// LogInfo is the INFO level.
	LogInfo
	// LogError is the ERROR level (does not call os.Exit).
	LogError
)

var logLevelPrefix = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogError: "ERROR",
}

func (l LogLevel) String() string {
	if p, ok := logLevelPrefix[l]; ok {
		return p
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps "debug", "info" and "error" (any case) to a level.
// Anything else is LogInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogDebug
	case "error":
		return LogError
	default:
		return LogInfo
	}
}

// ILogger is the logging interface components depend on.
type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// StdErrLogger writes through the standard log package.
type StdErrLogger struct {
	mu       sync.RWMutex
	logLevel LogLevel
	out      *log.Logger
}

// NewStdErrLogger returns a logger at the given level. A nil out uses the
// standard log package's default logger.
func NewStdErrLogger(level LogLevel, out *log.Logger) *StdErrLogger {
	if out == nil {
		out = log.Default()
	}
	return &StdErrLogger{logLevel: level, out: out}
}

func (l *StdErrLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if level < l.GetLogLevel() {
		return
	}
	l.out.Println(logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...))
}

func (l *StdErrLogger) Debugf(format string, a ...interface{}) { l.Printf(LogDebug, format, a...) }
func (l *StdErrLogger) Infof(format string, a ...interface{})  { l.Printf(LogInfo, format, a...) }
func (l *StdErrLogger) Errorf(format string, a ...interface{}) { l.Printf(LogError, format, a...) }

// SetLogLevel changes the minimum level written.
func (l *StdErrLogger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	l.logLevel = level
	l.mu.Unlock()
}

// GetLogLevel returns the minimum level written.
func (l *StdErrLogger) GetLogLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logLevel
}

// NullLogger discards everything. For tests.
type NullLogger struct{}

func (l *NullLogger) Printf(level LogLevel, format string, a ...interface{}) {}
func (l *NullLogger) Debugf(format string, a ...interface{})                 {}
func (l *NullLogger) Infof(format string, a ...interface{})                  {}
func (l *NullLogger) Errorf(format string, a ...interface{})                 {}
