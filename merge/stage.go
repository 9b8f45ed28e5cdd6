package merge

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/common"
	"github.com/ychen306/llvm-merge/irutil"
)

// StagedFunc is a clone of a source function held under a staging name until
// the swap
type StagedFunc struct {
	// Name is the original (requested) function name
	Name string

	// StagingName is the temporary name of the clone
	StagingName string

	Func *ir.Func
}

// Staging holds the clone of the source module and the staged functions in
// plan order.  The clone is consumed by Move
type Staging struct {
	Module *ir.Module
	Funcs  []*StagedFunc
}

// Stage clones the source module and renames the clone of every actionable
// function to a staging name that exists in neither module.  The source
// module itself is left untouched
func Stage(src *ir.Module, plan *Plan, dst *ir.Module) (*Staging, error) {
	clone, err := irutil.CloneModule(src)
	if err != nil {
		return nil, fmt.Errorf("failed to clone the source module: %w", err)
	}

	taken := irutil.GlobalNames(dst)
	for name := range irutil.GlobalNames(src) {
		taken[name] = true
	}

	staging := &Staging{Module: clone}
	for _, e := range plan.Actionable() {
		f := irutil.FindFunc(clone, e.Name)
		if f == nil {
			return nil, fmt.Errorf("@%s is missing from the clone of the source module", e.Name)
		}

		stagingName := irutil.UniqueName(taken, StagingName(e.Name))
		taken[stagingName] = true
		f.SetName(stagingName)

		staging.Funcs = append(staging.Funcs, &StagedFunc{
			Name:        e.Name,
			StagingName: stagingName,
			Func:        f,
		})
	}

	return staging, nil
}

// StagingName returns the base staging name for a function name
func StagingName(name string) string {
	return name + common.StagingSuffix
}
