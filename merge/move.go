package merge

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/irutil"
)

// Move imports the staged functions into the destination under their staging
// names.  It either imports all of them or, on error, leaves the destination
// unchanged
func Move(dst *ir.Module, staging *Staging) (*irutil.MoveResult, error) {
	funcs := make([]*ir.Func, len(staging.Funcs))
	for i, sf := range staging.Funcs {
		funcs[i] = sf.Func
	}

	result, err := irutil.NewMover(dst).Move(staging.Module, funcs, irutil.DefaultResolve)
	if err != nil {
		return nil, fmt.Errorf("function import: link error: %w", err)
	}

	return result, nil
}
