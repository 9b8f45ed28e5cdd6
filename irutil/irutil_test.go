package irutil

import (
	"testing"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ir.Module {
	t.Helper()

	m, err := asm.ParseString("test.ll", src)
	require.NoError(t, err)
	return m
}

const usesModule = `
@table = global i32 (i32)* @f
@erased = global i8* bitcast (i32 (i32)* @f to i8*)

define i32 @f(i32 %x) {
entry:
  ret i32 %x
}

define i32 @f2(i32 %x) {
entry:
  %y = mul i32 %x, 2
  ret i32 %y
}

define i32 @g(i32 %x) {
entry:
  %a = call i32 @f(i32 %x)
  %b = call i32 @f(i32 %a)
  ret i32 %b
}
`

func TestFindAndNames(t *testing.T) {
	m := parse(t, usesModule)

	assert.NotNil(t, FindFunc(m, "g"))
	assert.Nil(t, FindFunc(m, "table"))
	assert.Nil(t, FindFunc(m, ""))

	gv := FindGlobalValue(m, "table")
	require.NotNil(t, gv)
	_, isGlobal := gv.(*ir.Global)
	assert.True(t, isGlobal)

	names := GlobalNames(m)
	assert.Equal(t, map[string]bool{"table": true, "erased": true, "f": true, "f2": true, "g": true}, names)
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"f": true, "f.1": true}

	assert.Equal(t, "g", UniqueName(taken, "g"))
	assert.Equal(t, "f.2", UniqueName(taken, "f"))
}

func TestCountUsesAndReplaceAllUsesWith(t *testing.T) {
	m := parse(t, usesModule)
	f, f2 := FindFunc(m, "f"), FindFunc(m, "f2")

	// two calls, one initializer and one constant expression
	assert.Equal(t, 4, CountUses(m, f))
	assert.Equal(t, 0, CountUses(m, f2))

	assert.Equal(t, 4, ReplaceAllUsesWith(m, f, f2))
	assert.Equal(t, 0, CountUses(m, f))
	assert.Equal(t, 4, CountUses(m, f2))

	g := FindFunc(m, "g")
	for _, inst := range g.Blocks[0].Insts {
		assert.Same(t, f2, inst.(*ir.InstCall).Callee)
	}

	table := FindGlobalValue(m, "table").(*ir.Global)
	assert.Same(t, f2, table.Init)

	require.True(t, RemoveFunc(m, f))
	require.NoError(t, Verify(m))
}

func TestReferencedGlobals(t *testing.T) {
	m := parse(t, usesModule)

	refs := ReferencedGlobals(FindFunc(m, "g"))
	require.Len(t, refs, 1)
	assert.Same(t, FindFunc(m, "f"), refs[0])

	refs = ReferencedGlobals(FindGlobalValue(m, "erased"))
	require.Len(t, refs, 1)
	assert.Same(t, FindFunc(m, "f"), refs[0])
}

func TestCloneModuleIsIndependent(t *testing.T) {
	m := parse(t, usesModule)
	before := m.String()

	clone, err := CloneModule(m)
	require.NoError(t, err)
	assert.Equal(t, before, clone.String())

	cf := FindFunc(clone, "f")
	require.NotNil(t, cf)
	assert.NotSame(t, FindFunc(m, "f"), cf)

	// the clone's call sites refer to the clone's functions
	call := FindFunc(clone, "g").Blocks[0].Insts[0].(*ir.InstCall)
	assert.Same(t, cf, call.Callee)

	cf.SetName("renamed")
	cf.Blocks = nil
	assert.Equal(t, before, m.String())
}

func TestVerifyDetectsDanglingUses(t *testing.T) {
	m := parse(t, usesModule)
	require.NoError(t, Verify(m))

	require.True(t, RemoveFunc(m, FindFunc(m, "f")))

	err := Verify(m)
	require.Error(t, err)

	var verr *VerifyError
	assert.ErrorAs(t, err, &verr)
}

func TestBlockAddresses(t *testing.T) {
	m := parse(t, `
@direct = global i8* blockaddress(@f, %exit)
@nested = global [2 x i8*] [i8* blockaddress(@f, %entry), i8* null]

define void @f() {
entry:
  br label %exit

exit:
  ret void
}

define i8* @g() {
entry:
  ret i8* blockaddress(@f, %exit)
}
`)
	f := FindFunc(m, "f")

	addrs := BlockAddresses(m, f)
	require.Len(t, addrs, 3)
	assert.Equal(t, "exit", addrs[0].Block.Name())
	assert.Equal(t, "entry", addrs[1].Block.Name())
	assert.Equal(t, "exit", addrs[2].Block.Name())

	assert.Same(t, f.Blocks[1], FindBlock(f, "exit"))
	assert.Nil(t, FindBlock(f, "missing"))
	assert.Empty(t, BlockAddresses(m, FindFunc(m, "g")))
}
