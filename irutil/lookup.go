package irutil

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
)

// GlobalName returns the name of a module-level value.  Unnamed values (eg.
// `@0`) and values that are not global values yield the empty string
func GlobalName(v value.Value) string {
	switch v := v.(type) {
	case *ir.Func:
		return v.GlobalName
	case *ir.Global:
		return v.GlobalName
	case *ir.Alias:
		return v.GlobalName
	case *ir.IFunc:
		return v.GlobalName
	}

	return ""
}

// IsGlobalValue reports whether v is a module-level symbol: a function, a
// global variable, an alias or an ifunc
func IsGlobalValue(v value.Value) bool {
	switch v.(type) {
	case *ir.Func, *ir.Global, *ir.Alias, *ir.IFunc:
		return true
	}

	return false
}

// Linkage returns the linkage of a global value
func Linkage(v value.Value) enum.Linkage {
	switch v := v.(type) {
	case *ir.Func:
		return v.Linkage
	case *ir.Global:
		return v.Linkage
	case *ir.Alias:
		return v.Linkage
	case *ir.IFunc:
		return v.Linkage
	}

	return enum.LinkageNone
}

// HasLocalLinkage reports whether v is private or internal to its module.
// Such symbols are never resolved by name across modules
func HasLocalLinkage(v value.Value) bool {
	switch Linkage(v) {
	case enum.LinkagePrivate, enum.LinkageInternal:
		return true
	}

	return false
}

// FindFunc returns the function of the given name in m or nil
func FindFunc(m *ir.Module, name string) *ir.Func {
	if name == "" {
		return nil
	}

	for _, f := range m.Funcs {
		if f.GlobalName == name {
			return f
		}
	}

	return nil
}

// FindGlobalValue returns the global value of any kind with the given name in
// m or nil
func FindGlobalValue(m *ir.Module, name string) value.Value {
	if name == "" {
		return nil
	}

	if f := FindFunc(m, name); f != nil {
		return f
	}

	for _, g := range m.Globals {
		if g.GlobalName == name {
			return g
		}
	}

	for _, a := range m.Aliases {
		if a.GlobalName == name {
			return a
		}
	}

	for _, i := range m.IFuncs {
		if i.GlobalName == name {
			return i
		}
	}

	return nil
}

// GlobalNames returns the set of all global value names defined in m
func GlobalNames(m *ir.Module) map[string]bool {
	names := make(map[string]bool, len(m.Funcs)+len(m.Globals))

	for _, f := range m.Funcs {
		names[f.GlobalName] = true
	}

	for _, g := range m.Globals {
		names[g.GlobalName] = true
	}

	for _, a := range m.Aliases {
		names[a.GlobalName] = true
	}

	for _, i := range m.IFuncs {
		names[i.GlobalName] = true
	}

	delete(names, "")
	return names
}

// UniqueName returns base if it is not in taken and otherwise the first of
// base.1, base.2, ... that is not
func UniqueName(taken map[string]bool, base string) string {
	if !taken[base] {
		return base
	}

	for n := 1; ; n++ {
		if name := fmt.Sprintf("%s.%d", base, n); !taken[name] {
			return name
		}
	}
}

// RemoveFunc erases f from the function list of m.  It reports whether f was
// found.  The caller is responsible for making sure nothing uses f anymore
func RemoveFunc(m *ir.Module, f *ir.Func) bool {
	for i, mf := range m.Funcs {
		if mf == f {
			m.Funcs = append(m.Funcs[:i], m.Funcs[i+1:]...)
			return true
		}
	}

	return false
}

// removeGlobal erases g from the global variable list of m
func removeGlobal(m *ir.Module, g *ir.Global) bool {
	for i, mg := range m.Globals {
		if mg == g {
			m.Globals = append(m.Globals[:i], m.Globals[i+1:]...)
			return true
		}
	}

	return false
}

// setGlobalName renames a global value
func setGlobalName(v value.Value, name string) {
	switch v := v.(type) {
	case *ir.Func:
		v.SetName(name)
	case *ir.Global:
		v.SetName(name)
	case *ir.Alias:
		v.SetName(name)
	case *ir.IFunc:
		v.SetName(name)
	}
}
