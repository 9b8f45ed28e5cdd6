package merge

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"github.com/ychen306/llvm-merge/irutil"
)

// Entry is one requested function name and where it was found
type Entry struct {
	// Name is the requested function name
	Name string

	// InDestination indicates whether the destination has a function (body
	// or declaration) of this name
	InDestination bool

	// InSource indicates whether the source has a definition of this name.
	// Only entries present in the source are merged
	InSource bool

	// SourceDeclOnly indicates that the source only declares the function,
	// so there is no body to merge
	SourceDeclOnly bool

	// DestFunc and SourceFunc are the matched functions, if any
	DestFunc   *ir.Func
	SourceFunc *ir.Func
}

// Action describes what the merge does with the entry
func (e *Entry) Action() string {
	switch {
	case e.InSource && e.InDestination:
		return "replace"
	case e.InSource:
		return "add"
	case e.SourceDeclOnly:
		return "skip (declaration only in source)"
	default:
		return "skip (not in source)"
	}
}

// Plan is the ordered list of entries produced by Select
type Plan struct {
	Entries []*Entry
}

// Actionable returns the entries that will be merged, in request order
func (p *Plan) Actionable() []*Entry {
	var entries []*Entry
	for _, e := range p.Entries {
		if e.InSource {
			entries = append(entries, e)
		}
	}

	return entries
}

// Skipped returns the names of the entries that will not be merged
func (p *Plan) Skipped() []string {
	var names []string
	for _, e := range p.Entries {
		if !e.InSource {
			names = append(names, e.Name)
		}
	}

	return names
}

// PlanRow is a flat view of an entry used for debug dumps
type PlanRow struct {
	Name          string
	InDestination bool
	InSource      bool
	Action        string
}

// Rows returns a flat view of the plan
func (p *Plan) Rows() []PlanRow {
	rows := make([]PlanRow, len(p.Entries))
	for i, e := range p.Entries {
		rows[i] = PlanRow{
			Name:          e.Name,
			InDestination: e.InDestination,
			InSource:      e.InSource,
			Action:        e.Action(),
		}
	}

	return rows
}

// PlanError is returned by Select when a requested function cannot be
// replaced safely
type PlanError struct {
	Name   string
	Reason string
}

func (pe *PlanError) Error() string {
	return fmt.Sprintf("cannot merge @%s: %s", pe.Name, pe.Reason)
}

// Select builds the merge plan for the requested names.  Empty and repeated
// names are dropped.  Names the source does not define are kept in the plan
// but are not actionable.  Select never mutates either module.
//
// A requested function the destination already has must have the same
// signature in both modules, since its call sites in the destination are not
// rewritten.  Blocks of it whose address the destination takes must exist
// under the same name in the source definition.  A destination symbol of that
// name that is not a function is rejected as well
func Select(dst, src *ir.Module, names []string) (*Plan, error) {
	plan := &Plan{}
	seen := make(map[string]bool)

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		e := &Entry{Name: name}

		if gv := irutil.FindGlobalValue(dst, name); gv != nil {
			f, ok := gv.(*ir.Func)
			if !ok {
				return nil, &PlanError{Name: name, Reason: "the destination module defines it as a non-function symbol"}
			}

			e.DestFunc = f
			e.InDestination = true
		}

		if f := irutil.FindFunc(src, name); f != nil {
			if len(f.Blocks) == 0 {
				e.SourceDeclOnly = true
			} else {
				e.SourceFunc = f
				e.InSource = true
			}
		}

		if e.InSource && e.InDestination {
			srcSig, dstSig := e.SourceFunc.Sig.String(), e.DestFunc.Sig.String()
			if srcSig != dstSig {
				return nil, &PlanError{
					Name:   name,
					Reason: fmt.Sprintf("signature %s in the source module does not match signature %s in the destination module", srcSig, dstSig),
				}
			}
		}

		if e.InSource && e.InDestination {
			if err := checkBlockAddresses(dst, e); err != nil {
				return nil, err
			}
		}

		plan.Entries = append(plan.Entries, e)
	}

	return plan, nil
}

// checkBlockAddresses makes sure every blockaddress the destination takes of
// the replaced function can be rebound to a block of the source definition
func checkBlockAddresses(dst *ir.Module, e *Entry) error {
	for _, ba := range irutil.BlockAddresses(dst, e.DestFunc) {
		name := ba.Block.Name()
		if irutil.FindBlock(e.SourceFunc, name) == nil {
			return &PlanError{
				Name:   e.Name,
				Reason: fmt.Sprintf("the destination module takes the address of block %%%s which the source definition does not have", name),
			}
		}
	}

	return nil
}
