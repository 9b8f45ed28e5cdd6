package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the error stream
func PrintErrorMessage(tag string, err error) {
	printErrorMessage(logger.out, tag, err)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	fmt.Fprint(logger.out, InfoStyleBG.Sprint(tag))
	fmt.Fprintln(logger.out, InfoColorFG.Sprint(" "+msg))
}

func printErrorMessage(w io.Writer, tag string, err error) {
	fmt.Fprint(w, ErrorStyleBG.Sprint(tag))
	fmt.Fprintln(w, ErrorColorFG.Sprint(" "+err.Error()))
}

func printWarningMessage(w io.Writer, tag, msg string) {
	fmt.Fprint(w, WarnStyleBG.Sprint(tag))
	fmt.Fprintln(w, WarnColorFG.Sprint(" "+msg))
}

// -----------------------------------------------------------------------------
// This section contains all the display functions for the different kinds of
// messages that can be logged.

func (ce *ConfigError) display(w io.Writer) {
	printErrorMessage(w, ce.Kind+" Error", errors.New(ce.Message))
}

func (mm *MergeMessage) display(w io.Writer) {
	if mm.IsError {
		printErrorMessage(w, mm.Kind+" Error", errors.New(mm.Message))
	} else {
		printWarningMessage(w, mm.Kind+" Warning", mm.Message)
	}
}

// -----------------------------------------------------------------------------

var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Verifying")

// displayBeginPhase displays the beginning of a merge phase
func displayBeginPhase(w io.Writer, phase string) {
	currentPhase = phase
	phaseStartTime = time.Now()

	fmt.Fprintln(w, InfoColorFG.Sprint(phase+"..."))
}

// displayEndPhase displays the end of a merge phase
func displayEndPhase(w io.Writer, success bool) {
	if currentPhase == "" {
		return
	}

	padding := strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2)
	if success {
		fmt.Fprint(w, SuccessStyleBG.Sprint("Done"))
		fmt.Fprintf(w, " %s%s(%.3fs)\n", currentPhase, padding, time.Since(phaseStartTime).Seconds())
	} else {
		fmt.Fprint(w, ErrorStyleBG.Sprint("Fail"))
		fmt.Fprintf(w, " %s\n", currentPhase)
	}

	currentPhase = ""
}

// displayMergeFinished displays the concluding message of a merge
func displayMergeFinished(w io.Writer, success bool, replaced, added, skipped int, outputPath string) {
	fmt.Fprintln(w)

	if !success {
		fmt.Fprintln(w, ErrorColorFG.Sprint("Oh no! ")+"nothing was written")
		return
	}

	fmt.Fprint(w, SuccessColorFG.Sprint("All done! "))
	fmt.Fprintf(w, "(%s replaced, %s added, %s skipped)",
		SuccessColorFG.Sprint(replaced),
		SuccessColorFG.Sprint(added),
		countColor(skipped).Sprint(skipped),
	)

	if outputPath != "" && outputPath != "-" {
		fmt.Fprint(w, " -> ")
		fmt.Fprint(w, InfoColorFG.Sprint(outputPath))
	}

	fmt.Fprintln(w)
}

// countColor returns the color to display a count of skipped items in
func countColor(n int) pterm.Color {
	if n == 0 {
		return SuccessColorFG
	}

	return WarnColorFG
}
