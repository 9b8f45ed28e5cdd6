package llio

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/common"
)

// WriteModule writes the textual IR of m to path.  The path `-` writes to
// standard output.  A file is first written under a temporary name next to
// path and then renamed over it, so a failed write never leaves a partial or
// truncated output behind
func WriteModule(m *ir.Module, path string) error {
	if path == common.StdioPath {
		_, err := m.WriteTo(os.Stdout)
		return err
	}

	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := m.WriteTo(w)
		return err
	})
}

// writeFileAtomic writes the content produced by write to path
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := ioutil.TempFile(dir, "."+base+".*"+common.IRFileExtension)
	if err != nil {
		return err
	}

	// remove the temporary file unless it is successfully renamed
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}

	if err := tmp.Chmod(0644); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	committed = true
	return nil
}
