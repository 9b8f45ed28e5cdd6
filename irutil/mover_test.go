package irutil

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moverDst = `
%struct.pair = type { i32, i32 }

@.str = private unnamed_addr constant [4 x i8] c"dst\00"
@counter = global i32 0

declare i32 @puts(i8*)

define i32 @main() {
entry:
  %r = call i32 @puts(i8* getelementptr inbounds ([4 x i8], [4 x i8]* @.str, i64 0, i64 0))
  ret i32 %r
}
`

const moverSrc = `
%struct.pair = type { i32, i32 }
%struct.box = type { %struct.pair, i8* }

@.str = private unnamed_addr constant [6 x i8] c"hello\00"
@counter = global i32 7
@limit = global i32 100

declare i32 @puts(i8*)

define internal i32 @helper(i32 %x) {
entry:
  %c = load i32, i32* @counter
  %y = add i32 %x, %c
  ret i32 %y
}

define i32 @greet(%struct.box* %b) #0 {
entry:
  %p = getelementptr %struct.box, %struct.box* %b, i32 0, i32 0
  %first = getelementptr %struct.pair, %struct.pair* %p, i32 0, i32 0
  %v = load i32, i32* %first, !tbaa !0
  %l = load i32, i32* @limit
  %h = call i32 @helper(i32 %v) #0
  %r = call i32 @puts(i8* getelementptr inbounds ([6 x i8], [6 x i8]* @.str, i64 0, i64 0))
  ret i32 %h
}

attributes #0 = { nounwind }

!0 = !{!"int"}
`

func TestMoverImportsDefinitionAndDependencies(t *testing.T) {
	dst, src := parse(t, moverDst), parse(t, moverSrc)
	greet := FindFunc(src, "greet")

	result, err := NewMover(dst).Move(src, []*ir.Func{greet}, DefaultResolve)
	require.NoError(t, err)

	// greet and its local dependencies are definitions; the private string
	// collides with the destination's and is renamed
	assert.Equal(t, []string{"greet", "helper", ".str.1"}, result.Defined)
	assert.Equal(t, []string{"limit"}, result.Declared)
	assert.ElementsMatch(t, []string{"counter", "puts"}, result.Linked)
	assert.Equal(t, []string{"struct.box"}, result.TypeDefs)

	// ownership moved from the source to the destination
	assert.Nil(t, FindFunc(src, "greet"))
	assert.Same(t, greet, FindFunc(dst, "greet"))
	assert.Same(t, dst, greet.Parent)

	// references were linked to the destination's symbols
	assert.Equal(t, 1, CountUses(dst, FindGlobalValue(dst, "counter")))
	assert.Equal(t, 2, CountUses(dst, FindFunc(dst, "puts")))
	assert.NotNil(t, FindGlobalValue(dst, ".str.1"))

	limit := FindGlobalValue(dst, "limit").(*ir.Global)
	assert.Nil(t, limit.Init)

	// the destination's own private string is untouched
	dstStr := FindGlobalValue(dst, ".str").(*ir.Global)
	assert.Contains(t, dstStr.Init.String(), "dst")

	require.NoError(t, Verify(dst))
	assert.NotContains(t, dst.String(), "!tbaa")
}

func TestMoverLinksAttributeGroups(t *testing.T) {
	dst := parse(t, moverDst+"\ndefine void @noinl() #0 {\nentry:\n  ret void\n}\n\nattributes #0 = { noinline }\n")
	src := parse(t, moverSrc)

	_, err := NewMover(dst).Move(src, []*ir.Func{FindFunc(src, "greet")}, nil)
	require.NoError(t, err)

	require.Len(t, dst.AttrGroupDefs, 2)
	added := dst.AttrGroupDefs[1]
	assert.Equal(t, int64(1), added.ID)

	greet := FindFunc(dst, "greet")
	require.Len(t, greet.FuncAttrs, 1)
	assert.Same(t, added, greet.FuncAttrs[0])

	require.NoError(t, Verify(dst))
}

func TestMoverDropsDebugIntrinsics(t *testing.T) {
	dst := parse(t, `declare void @unrelated()`)
	src := parse(t, `
declare void @llvm.dbg.value(metadata, metadata, metadata)

define i32 @id(i32 %x) {
entry:
  call void @llvm.dbg.value(metadata i32 %x, metadata !0, metadata !0)
  ret i32 %x
}

!0 = !{}
`)

	_, err := NewMover(dst).Move(src, []*ir.Func{FindFunc(src, "id")}, nil)
	require.NoError(t, err)

	id := FindFunc(dst, "id")
	require.NotNil(t, id)
	assert.Empty(t, id.Blocks[0].Insts)
	assert.Nil(t, FindFunc(dst, "llvm.dbg.value"))
	require.NoError(t, Verify(dst))
}

func TestMoverFailuresLeaveDestinationUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		dst    string
		symbol string
	}{
		{
			name:   "name already taken",
			dst:    "%struct.pair = type { i32, i32 }\n%struct.box = type { %struct.pair, i8* }\n\ndefine i32 @greet(%struct.box* %b) {\nentry:\n  ret i32 0\n}\n",
			symbol: "greet",
		},
		{
			name:   "type definition conflict",
			dst:    "%struct.pair = type { i64 }\n",
			symbol: "%struct.pair",
		},
		{
			name:   "function signature conflict",
			dst:    "define void @puts(i32 %x) {\nentry:\n  ret void\n}\n",
			symbol: "puts",
		},
		{
			name:   "global type conflict",
			dst:    "@limit = global i64 5\n",
			symbol: "limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, src := parse(t, tt.dst), parse(t, moverSrc)
			before := dst.String()

			_, err := NewMover(dst).Move(src, []*ir.Func{FindFunc(src, "greet")}, DefaultResolve)
			require.Error(t, err)

			var lerr *LinkError
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, tt.symbol, lerr.Symbol)
			assert.Equal(t, before, dst.String())
		})
	}
}

func TestMoverCustomResolve(t *testing.T) {
	dst := parse(t, moverDst+"\n@other_limit = global i32 3\n")
	src := parse(t, moverSrc)

	resolve := func(gv value.Value, dst *ir.Module) value.Value {
		if GlobalName(gv) == "limit" {
			return FindGlobalValue(dst, "other_limit")
		}

		return nil
	}

	result, err := NewMover(dst).Move(src, []*ir.Func{FindFunc(src, "greet")}, resolve)
	require.NoError(t, err)

	assert.Contains(t, result.Linked, "other_limit")
	assert.Nil(t, FindGlobalValue(dst, "limit"))
	assert.NotContains(t, FindFunc(dst, "greet").LLString(), "@limit")
	require.NoError(t, Verify(dst))
}
