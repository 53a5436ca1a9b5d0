// Package dvclog is a small leveled logger in the shape of rclone's
// top-level fs.Debugf/fs.Infof/fs.Errorf functions: package-level
// functions over a single global sink rather than an injected logger
// object, because every backend in the teacher calls fs.Debugf(o,
// "...", args...) the same way regardless of which Fs it's attached
// to. Level-to-color mapping follows the original Python dvc logger
// (dvc/logger.py): DEBUG/blue, INFO/default, WARNING/yellow,
// ERROR/red.
package dvclog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level is a logging verbosity threshold.
type Level int

// Levels, lowest (noisiest) to highest.
const (
	Debug Level = iota
	Info
	Warning
	Error
)

var levelNames = map[Level]string{
	Debug:   "DEBUG",
	Info:    "INFO",
	Warning: "WARNING",
	Error:   "ERROR",
}

var levelColor = map[Level]*color.Color{
	Debug:   color.New(color.FgBlue),
	Info:    color.New(),
	Warning: color.New(color.FgYellow),
	Error:   color.New(color.FgRed),
}

var (
	mu       sync.Mutex
	out      io.Writer = os.Stderr
	minLevel           = Info
	useColor           = isatty.IsTerminal(os.Stderr.Fd())
)

// SetOutput redirects the log sink, e.g. for tests or for a
// ProgressReporter that shares one line-buffered writer with the
// logger to avoid interleaving (spec §9's "Global logger and progress
// bar" note).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetLevel sets the minimum level that gets written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// SetColor forces color on/off, overriding the isatty auto-detection.
func SetColor(b bool) {
	mu.Lock()
	defer mu.Unlock()
	useColor = b
}

func logf(level Level, subject interface{}, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%-7s : %v: %s\n", levelNames[level], subject, msg)
	if useColor {
		line = levelColor[level].Sprint(line)
	}
	_, _ = io.WriteString(out, line)
}

// Debugf logs at Debug level. subject is typically the path or
// checksum the message concerns, printed the way rclone prints the
// remote object a log line is about.
func Debugf(subject interface{}, format string, args ...interface{}) {
	logf(Debug, subject, format, args...)
}

// Infof logs at Info level.
func Infof(subject interface{}, format string, args ...interface{}) {
	logf(Info, subject, format, args...)
}

// Warnf logs at Warning level.
func Warnf(subject interface{}, format string, args ...interface{}) {
	logf(Warning, subject, format, args...)
}

// Errorf logs at Error level.
func Errorf(subject interface{}, format string, args ...interface{}) {
	logf(Error, subject, format, args...)
}
