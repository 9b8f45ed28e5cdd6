package irutil

import (
	"reflect"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
)

// Mapper maps a global value to the value its uses should refer to.  Returning
// the argument itself leaves the use untouched
type Mapper func(v value.Value) value.Value

// operandUser is implemented by every llir instruction and terminator
type operandUser interface {
	Operands() []*value.Value
}

// the walkers below see no instruction operands unless these hold
var (
	_ operandUser = (*ir.InstCall)(nil)
	_ operandUser = (*ir.InstLoad)(nil)
	_ operandUser = (*ir.InstStore)(nil)
	_ operandUser = (*ir.InstGetElementPtr)(nil)
	_ operandUser = (*ir.InstBitCast)(nil)
	_ operandUser = (*ir.TermRet)(nil)
	_ operandUser = (*ir.TermBr)(nil)
	_ operandUser = (*ir.TermCondBr)(nil)
	_ operandUser = (*ir.TermInvoke)(nil)
)

var constantType = reflect.TypeOf((*constant.Constant)(nil)).Elem()

// RemapFunc rewrites every use of a global value inside f (its body and its
// personality, prefix and prologue constants) according to fn
func RemapFunc(f *ir.Func, fn Mapper) {
	f.Personality = remapConstant(f.Personality, fn)
	f.Prefix = remapConstant(f.Prefix, fn)
	f.Prologue = remapConstant(f.Prologue, fn)

	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			if u, ok := inst.(operandUser); ok {
				remapOperands(u, fn)
			}
		}

		if u, ok := block.Term.(operandUser); ok {
			remapOperands(u, fn)
		}
	}
}

// RemapGlobal rewrites every use of a global value in the initializer of g
func RemapGlobal(g *ir.Global, fn Mapper) {
	g.Init = remapConstant(g.Init, fn)
}

// RemapModule rewrites every use of a global value anywhere in m
func RemapModule(m *ir.Module, fn Mapper) {
	for _, g := range m.Globals {
		RemapGlobal(g, fn)
	}

	for _, a := range m.Aliases {
		a.Aliasee = remapConstant(a.Aliasee, fn)
	}

	for _, i := range m.IFuncs {
		i.Resolver = remapConstant(i.Resolver, fn)
	}

	for _, f := range m.Funcs {
		RemapFunc(f, fn)
	}
}

// ReplaceAllUsesWith redirects every use of old in m to repl and returns the
// number of use edges that were rewritten
func ReplaceAllUsesWith(m *ir.Module, old, repl value.Value) int {
	n := 0
	RemapModule(m, func(v value.Value) value.Value {
		if v == old {
			n++
			return repl
		}

		return v
	})

	return n
}

// CountUses returns the number of use edges in m referring to target
func CountUses(m *ir.Module, target value.Value) int {
	n := 0
	RemapModule(m, func(v value.Value) value.Value {
		if v == target {
			n++
		}

		return v
	})

	return n
}

// ReferencedGlobals returns the global values referenced by the definition of
// v (a function body or a global initializer) in order of first use
func ReferencedGlobals(v value.Value) []value.Value {
	var refs []value.Value
	seen := make(map[value.Value]bool)

	record := func(gv value.Value) value.Value {
		if !seen[gv] {
			seen[gv] = true
			refs = append(refs, gv)
		}

		return gv
	}

	switch v := v.(type) {
	case *ir.Func:
		RemapFunc(v, record)
	case *ir.Global:
		RemapGlobal(v, record)
	case *ir.Alias:
		remapConstant(v.Aliasee, record)
	case *ir.IFunc:
		remapConstant(v.Resolver, record)
	}

	return refs
}

// -----------------------------------------------------------------------------

// remapOperands rewrites the operand slots of a single instruction
func remapOperands(u operandUser, fn Mapper) {
	for _, op := range u.Operands() {
		if op == nil || *op == nil {
			continue
		}

		if nv, changed := remapValue(*op, fn); changed {
			*op = nv
		}
	}
}

// remapValue maps a single operand.  Local values (instructions, parameters,
// blocks) are never touched
func remapValue(v value.Value, fn Mapper) (value.Value, bool) {
	if IsGlobalValue(v) {
		nv := fn(v)
		return nv, nv != v
	}

	if c, ok := v.(constant.Constant); ok {
		nc, changed := remapConstantOperands(c, fn)
		return nc, changed
	}

	return v, false
}

// remapConstant maps a constant tree in place, returning the constant to store
// back into the field it was read from
func remapConstant(c constant.Constant, fn Mapper) constant.Constant {
	if c == nil {
		return nil
	}

	nc, _ := remapConstantOperands(c, fn)
	return nc
}

// remapConstantOperands walks a constant.  Global values are passed to fn;
// aggregate constants and constant expressions have their constant-typed
// fields walked recursively and updated in place
func remapConstantOperands(c constant.Constant, fn Mapper) (constant.Constant, bool) {
	if IsGlobalValue(c) {
		if nc, ok := fn(c).(constant.Constant); ok && nc != c {
			return nc, true
		}

		return c, false
	}

	rv := reflect.ValueOf(c)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return c, false
	}

	changed := false
	s := rv.Elem()
	for i := 0; i < s.NumField(); i++ {
		field := s.Field(i)
		if !field.CanSet() {
			continue
		}

		switch {
		case field.Type() == constantType:
			if remapConstantField(field, fn) {
				changed = true
			}
		case field.Kind() == reflect.Slice && field.Type().Elem() == constantType:
			for j := 0; j < field.Len(); j++ {
				if remapConstantField(field.Index(j), fn) {
					changed = true
				}
			}
		}
	}

	return c, changed
}

// remapConstantField maps the constant stored in a settable field
func remapConstantField(field reflect.Value, fn Mapper) bool {
	if field.IsNil() {
		return false
	}

	nc, changed := remapConstantOperands(field.Interface().(constant.Constant), fn)
	if changed && IsGlobalValue(nc) {
		field.Set(reflect.ValueOf(nc))
	}

	return changed
}

// BlockAddresses returns every blockaddress constant in m that takes the
// address of a block of f, in module order
func BlockAddresses(m *ir.Module, f *ir.Func) []*constant.BlockAddress {
	var addrs []*constant.BlockAddress
	visitModuleConstants(m, func(c constant.Constant) {
		if ba, ok := c.(*constant.BlockAddress); ok && ba.Func == f {
			addrs = append(addrs, ba)
		}
	})

	return addrs
}

// FindBlock returns the basic block of f with the given name or nil
func FindBlock(f *ir.Func, name string) *ir.Block {
	for _, block := range f.Blocks {
		if block.Name() == name {
			return block
		}
	}

	return nil
}

// visitModuleConstants calls visit on every constant tree node stored in m.
// Global values are visited but not descended into.
func visitModuleConstants(m *ir.Module, visit func(constant.Constant)) {
	for _, g := range m.Globals {
		visitConstant(g.Init, visit)
	}

	for _, a := range m.Aliases {
		visitConstant(a.Aliasee, visit)
	}

	for _, i := range m.IFuncs {
		visitConstant(i.Resolver, visit)
	}

	for _, f := range m.Funcs {
		visitConstant(f.Personality, visit)
		visitConstant(f.Prefix, visit)
		visitConstant(f.Prologue, visit)

		for _, block := range f.Blocks {
			for _, inst := range block.Insts {
				if u, ok := inst.(operandUser); ok {
					visitOperands(u, visit)
				}
			}

			if u, ok := block.Term.(operandUser); ok {
				visitOperands(u, visit)
			}
		}
	}
}

func visitOperands(u operandUser, visit func(constant.Constant)) {
	for _, op := range u.Operands() {
		if op == nil || *op == nil {
			continue
		}

		if c, ok := (*op).(constant.Constant); ok {
			visitConstant(c, visit)
		}
	}
}

// visitConstant walks a constant tree depth first
func visitConstant(c constant.Constant, visit func(constant.Constant)) {
	if c == nil {
		return
	}

	visit(c)
	if IsGlobalValue(c) {
		return
	}

	rv := reflect.ValueOf(c)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}

	s := rv.Elem()
	for i := 0; i < s.NumField(); i++ {
		field := s.Field(i)
		if !field.CanInterface() {
			continue
		}

		switch {
		case field.Type() == constantType:
			if !field.IsNil() {
				visitConstant(field.Interface().(constant.Constant), visit)
			}
		case field.Kind() == reflect.Slice && field.Type().Elem() == constantType:
			for j := 0; j < field.Len(); j++ {
				if elem := field.Index(j); !elem.IsNil() {
					visitConstant(elem.Interface().(constant.Constant), visit)
				}
			}
		}
	}
}
