package logging

import (
	"fmt"
	"io"
	"os"
)

// logger is a global reference to a shared Logger (created with the merger,
// but separated for general usage)
var logger Logger

// Initialize initializes the global logger with the provided log level name.
// Unknown names fall back to the default level
func Initialize(loglevelname string) {
	InitializeWithOutput(os.Stderr, loglevelname)
}

// InitializeWithOutput initializes the global logger to write to the given
// stream.  This is mostly useful for tests
func InitializeWithOutput(out io.Writer, loglevelname string) {
	loglevel, ok := ParseLogLevel(loglevelname)
	if !ok {
		loglevel = LogLevelWarning
	}

	logger = newLogger(out, loglevel)
}

// ParseLogLevel converts a log level name into its enumerated value
func ParseLogLevel(name string) (int, bool) {
	lvl, ok := logLevelNames[name]
	return lvl, ok
}

// ShouldProceed indicates whether or not the logger has encountered any errors
func ShouldProceed() bool {
	return logger.errorCount == 0
}

// -----------------------------------------------------------------------------
// NOTE: All log functions will only display if the appropriate log level is
// set.  Most log functions will simply fail silently if below their appropriate
// log level.

// LogMergeError logs an error raised by one of the merge stages
func LogMergeError(kind string, err error) {
	logger.handleMsg(&MergeMessage{Kind: kind, Message: err.Error(), IsError: true})
}

// LogMergeWarning logs a warning raised by one of the merge stages.  Warnings
// are displayed when the merge finishes
func LogMergeWarning(kind, message string) {
	logger.handleMsg(&MergeMessage{Kind: kind, Message: message})
}

// LogConfigError logs an error related to the merge configuration
func LogConfigError(kind, message string) {
	logger.handleMsg(&ConfigError{Kind: kind, Message: message})
}

// LogInfo displays an informational message in verbose mode
func LogInfo(tag, format string, args ...interface{}) {
	if logger.LogLevel == LogLevelVerbose {
		PrintInfoMessage(tag, fmt.Sprintf(format, args...))
	}
}

// LogDebug dumps a block of debug text regardless of log level (unless silent)
func LogDebug(tag, text string) {
	if logger.LogLevel > LogLevelSilent {
		fmt.Fprint(logger.out, InfoStyleBG.Sprint(tag))
		fmt.Fprintln(logger.out)
		fmt.Fprintln(logger.out, text)
	}
}

// -----------------------------------------------------------------------------
// Phase reporting only runs in verbose mode.

// BeginPhase marks the beginning of a merge phase
func BeginPhase(phase string) {
	if logger.LogLevel == LogLevelVerbose {
		displayBeginPhase(logger.out, phase)
	}
}

// EndPhase marks the end of the current merge phase
func EndPhase(success bool) {
	if logger.LogLevel == LogLevelVerbose {
		displayEndPhase(logger.out, success)
	}
}

// ReportMergeFinished displays all held warnings and the closing summary of
// the merge
func ReportMergeFinished(replaced, added, skipped int, outputPath string) {
	logger.flushWarnings()

	if logger.LogLevel == LogLevelVerbose {
		displayMergeFinished(logger.out, ShouldProceed(), replaced, added, skipped, outputPath)
	}
}
