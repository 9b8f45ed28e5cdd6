package irutil

import (
	"reflect"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

var typeType = reflect.TypeOf((*types.Type)(nil)).Elem()

// typeCollector gathers the named types reachable from a set of symbols
type typeCollector struct {
	seen  map[types.Type]bool
	named []types.Type
}

func newTypeCollector() *typeCollector {
	return &typeCollector{seen: make(map[types.Type]bool)}
}

// addType records t and every named type reachable from it
func (tc *typeCollector) addType(t types.Type) {
	if t == nil || tc.seen[t] {
		return
	}
	tc.seen[t] = true

	if t.Name() != "" {
		tc.named = append(tc.named, t)
	}

	switch t := t.(type) {
	case *types.PointerType:
		tc.addType(t.ElemType)
	case *types.ArrayType:
		tc.addType(t.ElemType)
	case *types.VectorType:
		tc.addType(t.ElemType)
	case *types.StructType:
		for _, field := range t.Fields {
			tc.addType(field)
		}
	case *types.FuncType:
		tc.addType(t.RetType)
		for _, param := range t.Params {
			tc.addType(param)
		}
	}
}

// addTypeFields records every type-valued field of an instruction: eg. the
// element type of an alloca, load or getelementptr
func (tc *typeCollector) addTypeFields(x interface{}) {
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}

	s := rv.Elem()
	for i := 0; i < s.NumField(); i++ {
		field := s.Field(i)
		if field.Type() == typeType && field.CanInterface() && !field.IsNil() {
			tc.addType(field.Interface().(types.Type))
		}
	}
}

// addSymbol records the types used by a global value and, for definitions, by
// everything inside it
func (tc *typeCollector) addSymbol(v value.Value) {
	switch v := v.(type) {
	case *ir.Func:
		tc.addType(v.Sig)
		for _, param := range v.Params {
			tc.addType(param.Typ)
		}

		for _, block := range v.Blocks {
			for _, inst := range block.Insts {
				tc.addInst(inst)
			}

			tc.addInst(block.Term)
		}
	case *ir.Global:
		tc.addType(v.ContentType)
		if v.Init != nil {
			tc.addType(v.Init.Type())
		}
	default:
		tc.addType(v.Type())
	}
}

// addSignature records only the types visible in the declaration of a global
// value
func (tc *typeCollector) addSignature(v value.Value) {
	switch v := v.(type) {
	case *ir.Func:
		tc.addType(v.Sig)
	case *ir.Global:
		tc.addType(v.ContentType)
	default:
		tc.addType(v.Type())
	}
}

// addInst records the result, operand and element types of an instruction or
// terminator
func (tc *typeCollector) addInst(inst interface{}) {
	if inst == nil {
		return
	}

	if v, ok := inst.(value.Value); ok {
		tc.addType(v.Type())
	}

	if u, ok := inst.(operandUser); ok {
		for _, op := range u.Operands() {
			if op != nil && *op != nil {
				tc.addType((*op).Type())
			}
		}
	}

	tc.addTypeFields(inst)
}

// FindTypeDef returns the type definition of the given name in m or nil
func FindTypeDef(m *ir.Module, name string) types.Type {
	for _, t := range m.TypeDefs {
		if t.Name() == name {
			return t
		}
	}

	return nil
}
