// Package merge implements the function merge protocol: it replaces a named
// set of functions of a destination module with their definitions from a
// source module.
//
// The merge is a single pass over five stages, each taking the destination
// module explicitly: Select builds the plan without mutating anything, Stage
// clones the source and parks the selected functions under staging names,
// Move imports the staged functions into the destination, and Swap redirects
// the uses of each old function to its replacement before erasing the old
// function and renaming the new one.  No destructive change is made to the
// destination until the import has succeeded as a whole.
package merge

import (
	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/irutil"
	"github.com/ychen306/llvm-merge/logging"
)

// Report summarizes a finished merge
type Report struct {
	// Plan is the merge plan the merge ran with
	Plan *Plan

	// Replaced, Added and Skipped are requested names grouped by outcome
	Replaced []string
	Added    []string
	Skipped  []string

	// Imported lists the supporting symbols the mover pulled in
	Imported *irutil.MoveResult
}

// Merge replaces the functions named in names in dst with their definitions
// from src.  Names src does not define are skipped.  On success dst holds the
// merged module; src is never modified.  On error dst must be discarded
// unless the error came from Select or Move, which leave it unchanged
func Merge(dst, src *ir.Module, names []string) (*Report, error) {
	logging.BeginPhase("Selecting")
	plan, err := Select(dst, src, names)
	if err != nil {
		logging.EndPhase(false)
		return nil, err
	}
	logging.EndPhase(true)

	for _, e := range plan.Entries {
		if !e.InSource {
			logging.LogMergeWarning("Plan", "skipping @"+e.Name+": "+e.Action())
		}
	}

	logging.BeginPhase("Staging")
	staging, err := Stage(src, plan, dst)
	if err != nil {
		logging.EndPhase(false)
		return nil, err
	}
	logging.EndPhase(true)

	logging.BeginPhase("Moving")
	imported, err := Move(dst, staging)
	if err != nil {
		logging.EndPhase(false)
		return nil, err
	}
	logging.EndPhase(true)

	logging.LogInfo("Imported", "%d definitions, %d declarations, %d linked symbols, %d types",
		len(imported.Defined), len(imported.Declared), len(imported.Linked), len(imported.TypeDefs))

	logging.BeginPhase("Swapping")
	swapped, err := Swap(dst, staging)
	if err == nil {
		err = CheckClean(dst, staging)
	}

	if err != nil {
		logging.EndPhase(false)
		return nil, err
	}
	logging.EndPhase(true)

	return &Report{
		Plan:     plan,
		Replaced: swapped.Replaced,
		Added:    swapped.Added,
		Skipped:  plan.Skipped(),
		Imported: imported,
	}, nil
}
