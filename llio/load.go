// Package llio reads LLVM IR modules from disk or standard input and writes
// them back out.  Only the textual IR encoding is supported.
package llio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/common"
)

// bitcodeMagic is the magic number at the start of a raw LLVM bitcode file.
// Wrapped bitcode starts with bitcodeWrapperMagic instead
var (
	bitcodeMagic        = []byte{'B', 'C', 0xC0, 0xDE}
	bitcodeWrapperMagic = []byte{0xDE, 0xC0, 0x17, 0x0B}
)

// ErrBitcode is returned for inputs in the binary bitcode encoding
var ErrBitcode = errors.New("bitcode input is not supported: disassemble it with llvm-dis first")

// ParseError is returned when an input module cannot be read or parsed
type ParseError struct {
	// Path is the path the module was read from (`-` for standard input)
	Path string

	Err error
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", displayPath(pe.Path), pe.Err)
}

func (pe *ParseError) Unwrap() error {
	return pe.Err
}

// LoadModule reads and parses the module at path.  The path `-` reads from
// standard input
func LoadModule(path string) (*ir.Module, error) {
	if path == common.StdioPath {
		return ParseModule(path, os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	return ParseModule(path, f)
}

// ParseModule parses a module read from r.  The path is only used in error
// messages
func ParseModule(path string, r io.Reader) (*ir.Module, error) {
	buff, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if bytes.HasPrefix(buff, bitcodeMagic) || bytes.HasPrefix(buff, bitcodeWrapperMagic) {
		return nil, &ParseError{Path: path, Err: ErrBitcode}
	}

	m, err := asm.ParseBytes(displayPath(path), buff)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return m, nil
}

// displayPath returns the name used for path in diagnostics
func displayPath(path string) string {
	if path == common.StdioPath {
		return "<stdin>"
	}

	return path
}
