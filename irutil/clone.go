package irutil

import (
	"bytes"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
)

// CloneModule returns a deep, independent copy of m.  The copy is produced by
// printing m and parsing the result, so every reference inside the copy
// (operands, block targets, types, attribute groups, metadata) points into
// the copy and never into m
func CloneModule(m *ir.Module) (*ir.Module, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}

	return asm.ParseBytes(cloneSourceName(m), buf.Bytes())
}

// Verify checks that m is self-consistent by printing it and parsing the
// result: dangling references to erased symbols, duplicate names and operand
// type mismatches are all rejected by the parser
func Verify(m *ir.Module) error {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return &VerifyError{Err: err}
	}

	if _, err := asm.ParseBytes(cloneSourceName(m), buf.Bytes()); err != nil {
		return &VerifyError{Err: err}
	}

	return nil
}

// cloneSourceName is the path reported in parse errors of a printed module
func cloneSourceName(m *ir.Module) string {
	if m.SourceFilename != "" {
		return m.SourceFilename
	}

	return "<module>"
}
