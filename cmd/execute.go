// Package cmd is the top-level driver of llvm-merge: it parses the command
// line, loads the merge configuration and runs the merge stages in order.
package cmd

import (
	"errors"
	"os"

	"github.com/ComedicChimera/olive"
	"github.com/kr/pretty"

	"github.com/ychen306/llvm-merge/common"
	"github.com/ychen306/llvm-merge/config"
	"github.com/ychen306/llvm-merge/irutil"
	"github.com/ychen306/llvm-merge/llio"
	"github.com/ychen306/llvm-merge/logging"
	"github.com/ychen306/llvm-merge/merge"
)

// Execute runs the `llvm-merge` application and returns its exit code
func Execute() int {
	// set up the argument parser
	cli := olive.NewCLI(common.ToolName, "merge a list of functions from a source module into a destination module", true)
	cli.AddPrimaryArg("destination", "the path to the destination module (- for standard input)", false)
	cli.AddStringArg("src", "s", "the path to the source module (- for standard input)", false)
	cli.AddStringArg("funcs", "f", "comma-separated list of functions to merge from the source into the destination", false)
	cli.AddStringArg("output", "o", "the path to write the merged module to (defaults to standard output)", false)
	cli.AddStringArg("config", "c", "the path to a merge manifest", false)
	cli.AddSelectorArg("loglevel", "ll", "the log level", false, logging.LogLevelNames)
	cli.AddFlag("no-verify", "nv", "skip verification of the merged module")
	cli.AddFlag("debug", "d", "dump the merge plan")
	cli.AddFlag("version", "v", "print the llvm-merge version")

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	if result.HasFlag("version") {
		logging.PrintInfoMessage(common.ToolName+" Version", common.ToolVersion)
		return 0
	}

	opts, err := buildOptions(result)
	if err != nil {
		logging.LogConfigError("Config", err.Error())
		return 1
	}

	// initialize the logger
	logging.Initialize(opts.LogLevel)

	if err := opts.Validate(); err != nil {
		logging.LogConfigError("CLI Usage", err.Error())
		return 1
	}

	return Run(opts)
}

// buildOptions loads the manifest (the one given on the command line or a
// `merge.toml` in the working directory) and overlays the command-line
// arguments on top of it
func buildOptions(result *olive.ArgParseResult) (*config.Options, error) {
	opts := config.Default()

	configPath, ok := "", false
	if arg, given := result.Arguments["config"]; given {
		configPath, ok = arg.(string), true
	} else if wd, err := os.Getwd(); err == nil {
		configPath, ok = config.FindManifest(wd)
	}

	if ok {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}

		opts = loaded
	}

	if dstPath, ok := result.PrimaryArg(); ok && dstPath != "" {
		opts.DestinationPath = dstPath
	}

	if srcPath, ok := result.Arguments["src"]; ok {
		opts.SourcePath = srcPath.(string)
	}

	if funcs, ok := result.Arguments["funcs"]; ok {
		opts.Functions = config.ParseFunctionList(funcs.(string))
	}

	if outPath, ok := result.Arguments["output"]; ok {
		opts.OutputPath = outPath.(string)
	}

	if logLevel, ok := result.Arguments["loglevel"]; ok {
		opts.LogLevel = logLevel.(string)
	}

	if result.HasFlag("no-verify") {
		opts.Verify = false
	}

	opts.Debug = result.HasFlag("debug")
	return opts, nil
}

// Run performs a merge as described by opts and returns the exit code.  No
// output is written unless every stage succeeds
func Run(opts *config.Options) int {
	logging.BeginPhase("Loading")
	dst, err := llio.LoadModule(opts.DestinationPath)
	if err != nil {
		return fail("Parse", err)
	}

	src, err := llio.LoadModule(opts.SourcePath)
	if err != nil {
		return fail("Parse", err)
	}
	logging.EndPhase(true)

	if opts.Debug {
		if plan, err := merge.Select(dst, src, opts.Functions); err == nil {
			logging.LogDebug("Merge Plan", pretty.Sprint(plan.Rows()))
		}
	}

	report, err := merge.Merge(dst, src, opts.Functions)
	if err != nil {
		return fail(errorKind(err), err)
	}

	if opts.Debug {
		logging.LogDebug("Imported Symbols", pretty.Sprint(report.Imported))
	}

	if opts.Verify {
		logging.BeginPhase("Verifying")
		if err := irutil.Verify(dst); err != nil {
			return fail("Verify", err)
		}
		logging.EndPhase(true)
	}

	logging.BeginPhase("Writing")
	if err := llio.WriteModule(dst, opts.OutputPath); err != nil {
		return fail("Output", err)
	}
	logging.EndPhase(true)

	logging.ReportMergeFinished(len(report.Replaced), len(report.Added), len(report.Skipped), opts.OutputPath)
	return 0
}

// fail logs a fatal merge error and returns the failure exit code
func fail(kind string, err error) int {
	logging.LogMergeError(kind, err)
	logging.ReportMergeFinished(0, 0, 0, "")
	return 1
}

// errorKind names the merge stage an error originated from
func errorKind(err error) string {
	var planErr *merge.PlanError
	var linkErr *irutil.LinkError

	switch {
	case errors.As(err, &planErr):
		return "Plan"
	case errors.As(err, &linkErr):
		return "Link"
	default:
		return "Merge"
	}
}
