package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string into a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled, component-tagged log lines to one or more outputs.
type Logger struct {
	component string
	minLevel  Level
	outputs   []io.Writer
	mu        sync.Mutex
}

// New creates a logger for a component, writing to stdout.
func New(component string) *Logger {
	return &Logger{
		component: component,
		minLevel:  LevelInfo,
		outputs:   []io.Writer{os.Stdout},
	}
}

// SetMinLevel sets the minimum level to output.
func (l *Logger) SetMinLevel(level Level) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	return l
}

// AddOutput adds an output writer.
func (l *Logger) AddOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, w)
	return l
}

// Named returns a logger for a sub-component sharing outputs and level.
func (l *Logger) Named(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		component: l.component + "." + component,
		minLevel:  l.minLevel,
		outputs:   l.outputs,
	}
}

func (l *Logger) log(level Level, message string, err error, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	line := fmt.Sprintf("[%s] %s [%s] %s",
		time.Now().Format("2006-01-02 15:04:05.000"), level, l.component, message)
	if err != nil {
		line += fmt.Sprintf(" | error=%v", err)
	}
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		line += " |"
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, fields[k])
		}
	}
	line += "\n"

	for _, output := range l.outputs {
		output.Write([]byte(line))
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string) {
	l.log(LevelDebug, message, nil, nil)
}

// Info logs an info message.
func (l *Logger) Info(message string) {
	l.log(LevelInfo, message, nil, nil)
}

// InfoWithFields logs an info message with key-value context.
func (l *Logger) InfoWithFields(message string, fields map[string]interface{}) {
	l.log(LevelInfo, message, nil, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.log(LevelWarn, message, nil, nil)
}

// Error logs an error message.
func (l *Logger) Error(message string, err error) {
	l.log(LevelError, message, err, nil)
}

// ErrorWithFields logs an error message with key-value context.
func (l *Logger) ErrorWithFields(message string, err error, fields map[string]interface{}) {
	l.log(LevelError, message, err, fields)
}

// OpenLogFile opens (appending) the log file at path for use with AddOutput.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
