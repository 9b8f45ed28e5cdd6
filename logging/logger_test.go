package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarningsAreHeldUntilFinished(t *testing.T) {
	buff := &bytes.Buffer{}
	InitializeWithOutput(buff, "warn")

	LogMergeWarning("Plan", "skipping @missing")
	assert.Empty(t, buff.String())

	ReportMergeFinished(1, 0, 1, "out.ll")
	assert.Contains(t, buff.String(), "skipping @missing")
	assert.True(t, ShouldProceed())
}

func TestErrorsAreDisplayedImmediately(t *testing.T) {
	buff := &bytes.Buffer{}
	InitializeWithOutput(buff, "error")

	LogMergeWarning("Plan", "skipping @missing")
	LogMergeError("Link", errors.New("type conflict"))

	assert.Contains(t, buff.String(), "type conflict")
	assert.False(t, ShouldProceed())

	ReportMergeFinished(0, 0, 0, "")
	assert.NotContains(t, buff.String(), "skipping @missing")
}

func TestSilentLevel(t *testing.T) {
	buff := &bytes.Buffer{}
	InitializeWithOutput(buff, "silent")

	BeginPhase("Moving")
	LogConfigError("Config", "missing [merge] table")
	EndPhase(false)
	ReportMergeFinished(0, 0, 0, "")

	assert.Empty(t, buff.String())
	assert.False(t, ShouldProceed())
}

func TestVerbosePhases(t *testing.T) {
	buff := &bytes.Buffer{}
	InitializeWithOutput(buff, "verbose")

	BeginPhase("Swapping")
	EndPhase(true)
	LogInfo("Imported", "%d definitions", 3)

	assert.Contains(t, buff.String(), "Swapping")
	assert.Contains(t, buff.String(), "3 definitions")
}

func TestParseLogLevel(t *testing.T) {
	lvl, ok := ParseLogLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, LogLevelWarning, lvl)

	_, ok = ParseLogLevel("loud")
	assert.False(t, ok)
}
