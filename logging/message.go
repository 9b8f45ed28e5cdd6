package logging

import "io"

// LogMessage is a message the logger can hold and display
type LogMessage interface {
	isError() bool
	display(w io.Writer)
}

// MergeMessage is an error or warning produced by one of the merge stages. The
// Kind names the stage or concern the message originates from: eg. "Plan" or
// "Link"
type MergeMessage struct {
	Kind    string
	Message string
	IsError bool
}

func (mm *MergeMessage) isError() bool {
	return mm.IsError
}

// ConfigError is an error produced while loading a merge configuration
type ConfigError struct {
	Kind    string
	Message string
}

func (ce *ConfigError) isError() bool {
	return true
}
