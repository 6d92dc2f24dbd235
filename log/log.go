// Package log provides leveled logging for the driver.
//
// Logging is off by default. Set the BOLT_DRIVER_LOG environment variable
// to "error", "info" or "trace" to enable it, or call SetLevel directly.
// Trace level dumps every byte read from and written to the wire.
package log

import (
	l "log"
	"os"
	"strings"
)

type LogLevel int

const (
	NoneLevel  LogLevel = iota
	ErrorLevel LogLevel = iota
	InfoLevel  LogLevel = iota
	TraceLevel LogLevel = iota
)

var (
	Level    = NoneLevel
	TraceLog = l.New(os.Stderr, "[BOLT][TRACE]", l.LstdFlags)
	InfoLog  = l.New(os.Stderr, "[BOLT][INFO]", l.LstdFlags)
	ErrorLog = l.New(os.Stderr, "[BOLT][ERROR]", l.LstdFlags)
)

func init() {
	if level := os.Getenv("BOLT_DRIVER_LOG"); level != "" {
		SetLevel(level)
	}
}

// SetLevel sets the logging level by name. Unknown names disable logging.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		Level = TraceLevel
	case "info":
		Level = InfoLevel
	case "error":
		Level = ErrorLevel
	default:
		Level = NoneLevel
	}
}

// TraceEnabled reports whether trace logging is active. Callers use this to
// skip building expensive hex dumps.
func TraceEnabled() bool {
	return Level >= TraceLevel
}

func Trace(args ...interface{}) {
	if Level >= TraceLevel {
		TraceLog.Println(args...)
	}
}

func Tracef(msg string, args ...interface{}) {
	if Level >= TraceLevel {
		TraceLog.Printf(msg, args...)
	}
}

func Info(args ...interface{}) {
	if Level >= InfoLevel {
		InfoLog.Println(args...)
	}
}

func Infof(msg string, args ...interface{}) {
	if Level >= InfoLevel {
		InfoLog.Printf(msg, args...)
	}
}

func Error(args ...interface{}) {
	if Level >= ErrorLevel {
		ErrorLog.Println(args...)
	}
}

func Errorf(msg string, args ...interface{}) {
	if Level >= ErrorLevel {
		ErrorLog.Printf(msg, args...)
	}
}
