package logging

import (
	"io"
	"os"
	"sync"
)

// Logger is a type that is responsible for storing and logging output from the
// merger as necessary.  All output goes to an error stream since the merged
// module itself may be written to standard out
type Logger struct {
	errorCount int
	LogLevel   int

	// warnings is a list of all warnings to be logged at the end of the merge
	warnings []LogMessage

	// out is the stream all messages are written to
	out io.Writer

	// m is the mutex used to synchonize the printing of messages
	m *sync.Mutex
}

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors
	LogLevelWarning        // errors and warnings (DEFAULT)
	LogLevelVerbose        // errors, warnings, phase progress and the closing summary
)

// logLevelNames maps the command-line and config names of log levels to their
// enumerated values
var logLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarning,
	"warning": LogLevelWarning,
	"verbose": LogLevelVerbose,
}

// LogLevelNames is the list of valid log level names in increasing order of
// verbosity.  It is used by the CLI selector argument
var LogLevelNames = []string{"silent", "error", "warn", "verbose"}

// newLogger creates a new logger struct
func newLogger(out io.Writer, loglevel int) Logger {
	return Logger{
		LogLevel: loglevel,
		out:      out,
		m:        &sync.Mutex{},
	}
}

// handleMsg prompts the logger to process a message.  Errors are displayed
// immediately while warnings are held until the end of the merge
func (l *Logger) handleMsg(lm LogMessage) {
	l.m.Lock()
	defer l.m.Unlock()

	if lm.isError() {
		l.errorCount++

		if l.LogLevel > LogLevelSilent {
			displayEndPhase(l.out, false)
			lm.display(l.out)
		}
	} else {
		l.warnings = append(l.warnings, lm)
	}
}

// flushWarnings displays and clears all held warnings
func (l *Logger) flushWarnings() {
	l.m.Lock()
	defer l.m.Unlock()

	if l.LogLevel >= LogLevelWarning {
		for _, w := range l.warnings {
			w.display(l.out)
		}
	}

	l.warnings = nil
}

func init() {
	logger = newLogger(os.Stderr, LogLevelWarning)
}
