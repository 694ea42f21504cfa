package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// diamond builds
//
//	entry: branchcond arg, left, right
//	left:  x = l; branch join
//	right: x = r; branch join
//	join:  return x
func diamond(l, r int64) (*ControlFlowGraph, *Return) {
	cfg := NewCFG("diamond", -1)
	vartab := NewVartable(nil)
	entry := cfg.NewBasicBlock("entry")
	left := cfg.NewBasicBlock("left")
	right := cfg.NewBasicBlock("right")
	join := cfg.NewBasicBlock("join")
	x := vartab.TempName("x", uint64Ty)

	cfg.SetBasicBlock(entry)
	cfg.Add(vartab, &BranchCond{Cond: &sema.FunctionArg{Ty: sema.Bool{}}, True: left, False: right})
	cfg.SetBasicBlock(left)
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: x, Expr: num(uint64Ty, l)})
	cfg.Add(vartab, &Branch{Block: join})
	cfg.SetBasicBlock(right)
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: x, Expr: num(uint64Ty, r)})
	cfg.Add(vartab, &Branch{Block: join})
	cfg.SetBasicBlock(join)
	ret := &Return{Values: []sema.Expression{variable(uint64Ty, x)}}
	cfg.Add(vartab, ret)

	cfg.Vars = vartab.Drain()
	return cfg, ret
}

func TestReachingDefinitionsJoin(t *testing.T) {
	cfg, _ := diamond(1, 2)
	FindReachingDefinitions(cfg)

	defs := cfg.Blocks[3].Defs[0]
	require.Len(t, defs, 2)
	assert.Contains(t, defs, Def{Block: 1, Instr: 0})
	assert.Contains(t, defs, Def{Block: 2, Instr: 0})
	assert.Empty(t, cfg.Blocks[0].Defs)
}

func TestJoinWithDifferentValuesIsNotFolded(t *testing.T) {
	cfg, ret := diamond(1, 2)
	ConstantFolding(cfg, sema.NewNamespace(sema.EVM()))

	_, ok := ret.Values[0].(*sema.Variable)
	assert.True(t, ok)
}

func TestJoinWithEqualValuesIsFolded(t *testing.T) {
	cfg, ret := diamond(7, 7)
	ConstantFolding(cfg, sema.NewNamespace(sema.EVM()))

	requireNumber(t, ret.Values[0], 7)
}

func TestReachingDefinitionsLoop(t *testing.T) {
	cfg := NewCFG("loop", -1)
	vartab := NewVartable(nil)
	entry := cfg.NewBasicBlock("entry")
	cond := cfg.NewBasicBlock("cond")
	body := cfg.NewBasicBlock("body")
	end := cfg.NewBasicBlock("end")
	i := vartab.TempName("i", uint64Ty)

	cfg.SetBasicBlock(entry)
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: i, Expr: num(uint64Ty, 0)})
	cfg.Add(vartab, &Branch{Block: cond})
	cfg.SetBasicBlock(cond)
	cfg.Add(vartab, &BranchCond{
		Cond: &sema.Compare{Op: sema.Less, Left: variable(uint64Ty, i), Right: num(uint64Ty, 10)},
		True: body, False: end,
	})
	cfg.SetBasicBlock(body)
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: i, Expr: binary(uint64Ty, sema.Add, variable(uint64Ty, i), num(uint64Ty, 1))})
	cfg.Add(vartab, &Branch{Block: cond})
	cfg.SetBasicBlock(end)
	ret := &Return{Values: []sema.Expression{variable(uint64Ty, i)}}
	cfg.Add(vartab, ret)
	cfg.Vars = vartab.Drain()

	FindReachingDefinitions(cfg)
	defs := cfg.Blocks[cond].Defs[i]
	require.Len(t, defs, 2)
	assert.Contains(t, defs, Def{Block: entry, Instr: 0})
	assert.Contains(t, defs, Def{Block: body, Instr: 0})

	ConstantFolding(cfg, sema.NewNamespace(sema.EVM()))
	_, ok := ret.Values[0].(*sema.Variable)
	assert.True(t, ok, "a loop variable must not be folded")
}

func TestPushMarksDefinitionModified(t *testing.T) {
	cfg := NewCFG("push", -1)
	vartab := NewVartable(nil)
	arrayTy := sema.Array{Elem: uint64Ty, Dynamic: true}
	cfg.SetBasicBlock(cfg.NewBasicBlock("entry"))

	array := vartab.TempName("array", arrayTy)
	copied := vartab.TempName("copy", arrayTy)
	pushed := vartab.TempAnonymous(uint64Ty)
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: array, Expr: &sema.AllocDynamicArray{Ty: arrayTy, Length: num(uint32Ty, 0)}})
	cfg.Add(vartab, &PushMemory{Res: pushed, Ty: uint64Ty, Array: array, Value: num(uint64Ty, 1)})
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: copied, Expr: variable(arrayTy, array)})
	cfg.Add(vartab, &Return{})
	cfg.Vars = vartab.Drain()

	FindReachingDefinitions(cfg)
	vars := cfg.Blocks[0].Defs.Clone()
	for _, transfers := range cfg.Blocks[0].Transfers[:2] {
		ApplyTransfers(transfers, vars)
	}
	assert.Equal(t, map[Def]bool{{Block: 0, Instr: 0}: true}, vars[array])

	ApplyTransfers(cfg.Blocks[0].Transfers[2], vars)
	assert.Equal(t, vars[array], vars[copied])
}

func TestApplyTransfersKill(t *testing.T) {
	vars := VarDefs{1: {Def{Block: 0, Instr: 0}: false}}
	ApplyTransfers([]Transfer{{Kind: TransferKill, Var: 1}}, vars)
	assert.NotContains(t, vars, 1)
}
