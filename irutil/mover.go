package irutil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/ychen306/llvm-merge/common"
)

// ResolveFunc is consulted for every global value referenced by a symbol being
// imported, before the default resolution rules apply.  Returning a value of
// the destination module links the reference to it; returning nil defers to
// the default rules
type ResolveFunc func(gv value.Value, dst *ir.Module) value.Value

// DefaultResolve performs no custom resolution: every reference is handled by
// the default rules
func DefaultResolve(value.Value, *ir.Module) value.Value {
	return nil
}

// MoveResult records what a move added to or linked in the destination.  All
// lists are in the order the mover discovered the symbols
type MoveResult struct {
	// Defined are the names of the definitions added to the destination
	Defined []string

	// Declared are the names of the declarations added to the destination
	Declared []string

	// Linked are the names of references resolved to pre-existing
	// destination symbols
	Linked []string

	// TypeDefs are the names of the type definitions added to the
	// destination
	TypeDefs []string
}

// Mover imports global values from source modules into a single destination
// module.  A move runs in two phases: an analysis phase that resolves every
// symbol and detects every conflict without touching the destination, and a
// commit phase that cannot fail.  A failed move therefore leaves the
// destination exactly as it was.  The source module is consumed: imported
// symbols are removed from it and may be rewritten in place
type Mover struct {
	dst *ir.Module
}

// NewMover creates a new mover importing into dst
func NewMover(dst *ir.Module) *Mover {
	return &Mover{dst: dst}
}

// movePlan is the outcome of the analysis phase
type movePlan struct {
	// mapping maps every source symbol referenced by an imported definition
	// to the destination value its uses should refer to.  Imported symbols
	// map to themselves
	mapping map[value.Value]value.Value

	// defs are the symbols imported as definitions in discovery order
	defs []value.Value

	// decls are the symbols imported as declarations in discovery order
	decls []value.Value

	// renames holds the new names of imported symbols whose names were
	// taken in the destination
	renames map[value.Value]string

	// typeDefs are the named types to append to the destination
	typeDefs []types.Type

	// taken is the set of destination names including those reserved by
	// the imported symbols
	taken map[string]bool

	result *MoveResult
}

// Move imports funcs from src into the destination as new definitions under
// their current names.  None of those names may exist in the destination.
// Every global value the imported bodies reference is resolved by resolve and
// then by the default rules:
//
//   - private and internal symbols are imported as definitions, renamed with a
//     numeric suffix if their name is taken;
//   - symbols whose name exists in the destination link to the destination
//     symbol, which must have the same type;
//   - anything else is imported as a declaration.
//
// Named struct types are linked by name and imported when missing; a name
// bound to a different body in the destination is an error.  Debug metadata
// is not carried over
func (mv *Mover) Move(src *ir.Module, funcs []*ir.Func, resolve ResolveFunc) (*MoveResult, error) {
	if resolve == nil {
		resolve = DefaultResolve
	}

	plan, err := mv.analyze(funcs, resolve)
	if err != nil {
		return nil, err
	}

	mv.commit(src, plan)
	return plan.result, nil
}

// -----------------------------------------------------------------------------

// analyze resolves every symbol reachable from funcs.  It never mutates the
// destination module
func (mv *Mover) analyze(funcs []*ir.Func, resolve ResolveFunc) (*movePlan, error) {
	plan := &movePlan{
		mapping: make(map[value.Value]value.Value),
		renames: make(map[value.Value]string),
		taken:   GlobalNames(mv.dst),
		result:  &MoveResult{},
	}

	for _, f := range funcs {
		name := f.GlobalName
		if name == "" {
			return nil, &LinkError{Symbol: "<unnamed>", Reason: "cannot import an unnamed function"}
		}

		if plan.taken[name] {
			return nil, &LinkError{Symbol: name, Reason: "symbol is already defined in the destination module"}
		}

		plan.taken[name] = true
		plan.mapping[f] = f
		plan.defs = append(plan.defs, f)
	}

	// The definition list grows as local dependencies are discovered
	for i := 0; i < len(plan.defs); i++ {
		def := plan.defs[i]
		if f, ok := def.(*ir.Func); ok {
			stripDebugInfo(f)
		}

		for _, ref := range ReferencedGlobals(def) {
			if err := mv.resolveRef(plan, ref, resolve); err != nil {
				return nil, err
			}
		}
	}

	if err := mv.analyzeTypes(plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// resolveRef decides how a single referenced source symbol is linked
func (mv *Mover) resolveRef(plan *movePlan, ref value.Value, resolve ResolveFunc) error {
	if _, ok := plan.mapping[ref]; ok {
		return nil
	}

	name := GlobalName(ref)

	if target := resolve(ref, mv.dst); target != nil {
		if err := checkCompatible(name, ref, target); err != nil {
			return err
		}

		plan.mapping[ref] = target
		plan.result.Linked = append(plan.result.Linked, GlobalName(target))
		return nil
	}

	if HasLocalLinkage(ref) || name == "" {
		switch ref.(type) {
		case *ir.Func, *ir.Global:
		default:
			return &LinkError{Symbol: name, Reason: "local aliases and ifuncs cannot be imported"}
		}

		base := name
		if base == "" {
			base = "merge.anon"
		}

		newName := UniqueName(plan.taken, base)
		if newName != name {
			plan.renames[ref] = newName
		}

		plan.taken[newName] = true
		plan.mapping[ref] = ref
		plan.defs = append(plan.defs, ref)
		return nil
	}

	if existing := FindGlobalValue(mv.dst, name); existing != nil {
		if err := checkCompatible(name, ref, existing); err != nil {
			return err
		}

		plan.mapping[ref] = existing
		plan.result.Linked = append(plan.result.Linked, name)
		return nil
	}

	switch ref.(type) {
	case *ir.Func, *ir.Global:
		plan.taken[name] = true
		plan.mapping[ref] = ref
		plan.decls = append(plan.decls, ref)
		return nil
	}

	return &LinkError{Symbol: name, Reason: "aliases and ifuncs missing from the destination module cannot be imported"}
}

// analyzeTypes collects the named types used by the imported symbols and
// checks them against the destination's type definitions
func (mv *Mover) analyzeTypes(plan *movePlan) error {
	tc := newTypeCollector()
	for _, def := range plan.defs {
		tc.addSymbol(def)
	}

	for _, decl := range plan.decls {
		tc.addSignature(decl)
	}

	added := make(map[string]bool)
	for _, t := range tc.named {
		name := t.Name()
		if added[name] {
			continue
		}

		if existing := FindTypeDef(mv.dst, name); existing != nil {
			if existing.LLString() != t.LLString() {
				return &LinkError{
					Symbol: "%" + name,
					Reason: fmt.Sprintf("type is defined as %s in the destination module but as %s in the source module", existing.LLString(), t.LLString()),
				}
			}

			continue
		}

		added[name] = true
		plan.typeDefs = append(plan.typeDefs, t)
	}

	return nil
}

// checkCompatible verifies that a source reference can be linked to a
// destination symbol of the same name
func checkCompatible(name string, ref, target value.Value) error {
	var srcType, dstType string

	switch ref := ref.(type) {
	case *ir.Func:
		if tf, ok := target.(*ir.Func); ok {
			srcType, dstType = ref.Sig.String(), tf.Sig.String()
		} else {
			srcType, dstType = ref.Type().String(), target.Type().String()
		}
	case *ir.Global:
		if tg, ok := target.(*ir.Global); ok {
			srcType, dstType = ref.ContentType.String(), tg.ContentType.String()
		} else {
			srcType, dstType = ref.Type().String(), target.Type().String()
		}
	default:
		srcType, dstType = ref.Type().String(), target.Type().String()
	}

	if srcType != dstType {
		return &LinkError{
			Symbol: name,
			Reason: fmt.Sprintf("referenced with type %s but the destination module defines it with type %s", srcType, dstType),
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// commit applies a plan to the destination.  It cannot fail
func (mv *Mover) commit(src *ir.Module, plan *movePlan) {
	for _, decl := range plan.decls {
		makeDeclaration(decl)
	}

	for v, name := range plan.renames {
		setGlobalName(v, name)
	}

	mapper := func(v value.Value) value.Value {
		if mapped, ok := plan.mapping[v]; ok {
			return mapped
		}

		return v
	}

	groups := newAttrGroupLinker(mv.dst)
	comdats := newComdatLinker(mv.dst)

	for _, def := range plan.defs {
		switch def := def.(type) {
		case *ir.Func:
			RemapFunc(def, mapper)
			groups.linkFunc(def)
			def.Comdat = comdats.link(def.Comdat)
		case *ir.Global:
			clearMetadata(def)
			RemapGlobal(def, mapper)
			def.Comdat = comdats.link(def.Comdat)
		}

		mv.adopt(src, def)
		plan.result.Defined = append(plan.result.Defined, GlobalName(def))
	}

	for _, decl := range plan.decls {
		if f, ok := decl.(*ir.Func); ok {
			groups.linkFunc(f)
		}

		mv.adopt(src, decl)
		plan.result.Declared = append(plan.result.Declared, GlobalName(decl))
	}

	for _, t := range plan.typeDefs {
		mv.dst.TypeDefs = append(mv.dst.TypeDefs, t)
		plan.result.TypeDefs = append(plan.result.TypeDefs, t.Name())
	}
}

// adopt transfers ownership of a symbol from src to the destination
func (mv *Mover) adopt(src *ir.Module, v value.Value) {
	switch v := v.(type) {
	case *ir.Func:
		RemoveFunc(src, v)
		v.Parent = mv.dst
		mv.dst.Funcs = append(mv.dst.Funcs, v)
	case *ir.Global:
		removeGlobal(src, v)
		mv.dst.Globals = append(mv.dst.Globals, v)
	}
}

// makeDeclaration strips the definition from an imported function or global
// variable
func makeDeclaration(v value.Value) {
	switch v := v.(type) {
	case *ir.Func:
		v.Blocks = nil
		v.Personality = nil
		v.Prefix = nil
		v.Prologue = nil
		v.Comdat = nil
		if v.Linkage != enum.LinkageExternWeak {
			v.Linkage = enum.LinkageNone
		}

		clearMetadata(v)
	case *ir.Global:
		v.Init = nil
		v.Comdat = nil
		if v.Linkage != enum.LinkageExternWeak {
			v.Linkage = enum.LinkageExternal
		}

		clearMetadata(v)
	}
}

// stripDebugInfo drops the metadata attachments of f and its instructions
// along with calls to the debug info intrinsics, since the metadata nodes
// they refer to belong to the source module
func stripDebugInfo(f *ir.Func) {
	clearMetadata(f)

	for _, block := range f.Blocks {
		insts := block.Insts[:0]
		for _, inst := range block.Insts {
			if isDebugIntrinsicCall(inst) {
				continue
			}

			clearMetadata(inst)
			insts = append(insts, inst)
		}

		block.Insts = insts
		clearMetadata(block.Term)
	}
}

// isDebugIntrinsicCall reports whether inst calls one of the llvm.dbg.*
// intrinsics
func isDebugIntrinsicCall(inst ir.Instruction) bool {
	call, ok := inst.(*ir.InstCall)
	if !ok {
		return false
	}

	callee, ok := call.Callee.(*ir.Func)
	return ok && strings.HasPrefix(callee.GlobalName, common.DebugIntrinsicNS)
}

// clearMetadata resets the metadata attachments of an llir node.  Every node
// kind that can carry attachments embeds them as a field named Metadata
func clearMetadata(x interface{}) {
	rv := reflect.ValueOf(x)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}

	field := rv.Elem().FieldByName("Metadata")
	if field.IsValid() && field.CanSet() {
		field.Set(reflect.Zero(field.Type()))
	}
}
