// Package config holds the options of a merge and loads them from merge
// manifests: TOML files describing the inputs and output of a merge so that it
// can be rerun without repeating the command line.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/ychen306/llvm-merge/common"
	"github.com/ychen306/llvm-merge/logging"
)

// Options is the full configuration of a single merge
type Options struct {
	// DestinationPath is the path of the module being merged into
	DestinationPath string

	// SourcePath is the path of the module functions are taken from
	SourcePath string

	// Functions are the names of the functions to merge, in order
	Functions []string

	// OutputPath is the path the merged module is written to
	OutputPath string

	// LogLevel is the name of the log level
	LogLevel string

	// Verify indicates whether the merged module is verified before it is
	// written
	Verify bool

	// Debug indicates whether the merge plan should be dumped
	Debug bool
}

// Default returns the options used when neither a manifest nor the command
// line say otherwise
func Default() *Options {
	return &Options{
		OutputPath: common.StdioPath,
		LogLevel:   "warn",
		Verify:     true,
	}
}

// tomlManifest represents the merge manifest as it is encoded in TOML
type tomlManifest struct {
	Merge *tomlMerge `toml:"merge"`
}

// tomlMerge represents the `[merge]` table of a manifest
type tomlMerge struct {
	Destination string   `toml:"destination"`
	Source      string   `toml:"source"`
	Functions   []string `toml:"functions,omitempty"`
	Output      string   `toml:"output,omitempty"`
	LogLevel    string   `toml:"log-level,omitempty"`
	Verify      *bool    `toml:"verify,omitempty"`
}

// Load reads the manifest at path on top of the default options.  Relative
// paths in the manifest are resolved against the manifest's directory
func Load(path string) (*Options, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(buff, filepath.Dir(path))
}

// FindManifest returns the path of the default manifest in dir if there is
// one
func FindManifest(dir string) (string, bool) {
	path := filepath.Join(dir, common.ConfigFileName)
	if finfo, err := os.Stat(path); err == nil && !finfo.IsDir() {
		return path, true
	}

	return "", false
}

// Parse decodes a manifest.  baseDir is the directory relative paths are
// resolved against
func Parse(buff []byte, baseDir string) (*Options, error) {
	tm := &tomlManifest{}
	if err := toml.Unmarshal(buff, tm); err != nil {
		return nil, err
	}

	if tm.Merge == nil {
		return nil, errors.New("missing [merge] table")
	}

	opts := Default()
	opts.DestinationPath = resolvePath(baseDir, tm.Merge.Destination)
	opts.SourcePath = resolvePath(baseDir, tm.Merge.Source)
	opts.Functions = tm.Merge.Functions

	if tm.Merge.Output != "" {
		opts.OutputPath = resolvePath(baseDir, tm.Merge.Output)
	}

	if tm.Merge.LogLevel != "" {
		if _, ok := logging.ParseLogLevel(tm.Merge.LogLevel); !ok {
			return nil, fmt.Errorf("invalid log level: %s", tm.Merge.LogLevel)
		}

		opts.LogLevel = tm.Merge.LogLevel
	}

	if tm.Merge.Verify != nil {
		opts.Verify = *tm.Merge.Verify
	}

	return opts, nil
}

// resolvePath makes a manifest path relative to the manifest's directory.
// Empty paths and the standard stream marker are left alone
func resolvePath(baseDir, path string) string {
	if path == "" || path == common.StdioPath || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(baseDir, path)
}

// Validate checks that the options describe a runnable merge
func (o *Options) Validate() error {
	if o.DestinationPath == "" {
		return errors.New("a destination module must be specified")
	}

	if o.SourcePath == "" {
		return errors.New("a source module must be specified")
	}

	if o.DestinationPath == common.StdioPath && o.SourcePath == common.StdioPath {
		return errors.New("only one input module can be read from standard input")
	}

	if _, ok := logging.ParseLogLevel(o.LogLevel); !ok {
		return fmt.Errorf("invalid log level: %s", o.LogLevel)
	}

	return nil
}

// ParseFunctionList splits a comma-separated list of function names.  Blank
// entries are dropped
func ParseFunctionList(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	return names
}
