package irutil

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
)

// attrGroupLinker maps attribute groups of imported functions onto attribute
// groups of the destination.  Groups are matched by content since their IDs
// are only meaningful inside their own module
type attrGroupLinker struct {
	dst    *ir.Module
	byKey  map[string]*ir.AttrGroupDef
	linked map[*ir.AttrGroupDef]*ir.AttrGroupDef
	nextID int64
}

func newAttrGroupLinker(dst *ir.Module) *attrGroupLinker {
	agl := &attrGroupLinker{
		dst:    dst,
		byKey:  make(map[string]*ir.AttrGroupDef),
		linked: make(map[*ir.AttrGroupDef]*ir.AttrGroupDef),
	}

	for _, group := range dst.AttrGroupDefs {
		key := attrGroupKey(group)
		if _, ok := agl.byKey[key]; !ok {
			agl.byKey[key] = group
		}

		if group.ID >= agl.nextID {
			agl.nextID = group.ID + 1
		}
	}

	return agl
}

// attrGroupKey is the textual content of an attribute group
func attrGroupKey(group *ir.AttrGroupDef) string {
	attrs := make([]string, len(group.FuncAttrs))
	for i, attr := range group.FuncAttrs {
		attrs[i] = fmt.Sprint(attr)
	}

	return strings.Join(attrs, " ")
}

// link returns the destination group equivalent to group, adding a copy of it
// to the destination if none exists
func (agl *attrGroupLinker) link(group *ir.AttrGroupDef) *ir.AttrGroupDef {
	if dstGroup, ok := agl.linked[group]; ok {
		return dstGroup
	}

	key := attrGroupKey(group)
	dstGroup, ok := agl.byKey[key]
	if !ok {
		dstGroup = &ir.AttrGroupDef{ID: agl.nextID, FuncAttrs: group.FuncAttrs}
		agl.nextID++

		agl.dst.AttrGroupDefs = append(agl.dst.AttrGroupDefs, dstGroup)
		agl.byKey[key] = dstGroup
	}

	agl.linked[group] = dstGroup
	return dstGroup
}

// linkAttrs rewrites the attribute group references in a function attribute
// list
func (agl *attrGroupLinker) linkAttrs(attrs []ir.FuncAttribute) {
	for i, attr := range attrs {
		if group, ok := attr.(*ir.AttrGroupDef); ok {
			attrs[i] = agl.link(group)
		}
	}
}

// linkFunc rewrites the attribute group references of f and of the call sites
// inside its body
func (agl *attrGroupLinker) linkFunc(f *ir.Func) {
	agl.linkAttrs(f.FuncAttrs)

	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			if call, ok := inst.(*ir.InstCall); ok {
				agl.linkAttrs(call.FuncAttrs)
			}
		}

		if invoke, ok := block.Term.(*ir.TermInvoke); ok {
			agl.linkAttrs(invoke.FuncAttrs)
		}
	}
}

// -----------------------------------------------------------------------------

// comdatLinker links comdats of imported symbols to destination comdats of
// the same name
type comdatLinker struct {
	dst    *ir.Module
	byName map[string]*ir.ComdatDef
}

func newComdatLinker(dst *ir.Module) *comdatLinker {
	cl := &comdatLinker{dst: dst, byName: make(map[string]*ir.ComdatDef)}
	for _, def := range dst.ComdatDefs {
		cl.byName[def.Name] = def
	}

	return cl
}

// link returns the destination comdat for c, adding c if none exists
func (cl *comdatLinker) link(c *ir.ComdatDef) *ir.ComdatDef {
	if c == nil {
		return nil
	}

	if def, ok := cl.byName[c.Name]; ok {
		return def
	}

	cl.dst.ComdatDefs = append(cl.dst.ComdatDefs, c)
	cl.byName[c.Name] = c
	return c
}
