package codegen

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

var (
	uint8Ty  = sema.Uint{Bits: 8}
	uint64Ty = sema.Uint{Bits: 64}
)

func num(ty sema.Type, v int64) *sema.NumberLiteral {
	return &sema.NumberLiteral{Loc: pt.FileLoc(0, 0, 1), Ty: ty, Value: big.NewInt(v)}
}

func binary(ty sema.Type, op sema.BinaryOp, left, right sema.Expression) *sema.Binary {
	return &sema.Binary{Loc: pt.FileLoc(0, 2, 8), Ty: ty, Op: op, Left: left, Right: right}
}

func variable(ty sema.Type, no int) *sema.Variable {
	return &sema.Variable{Loc: pt.Codegen, Ty: ty, VarNo: no}
}

// singleBlock builds a one block CFG with a temporary of type ty set to
// expr and returned.
func singleBlock(ty sema.Type, expr sema.Expression) (*ControlFlowGraph, *Set, *Return) {
	cfg := NewCFG("test", -1)
	vartab := NewVartable(nil)
	cfg.SetBasicBlock(cfg.NewBasicBlock("entry"))

	res := vartab.TempAnonymous(ty)
	set := &Set{Loc: pt.Codegen, Res: res, Expr: expr}
	ret := &Return{Values: []sema.Expression{variable(ty, res)}}
	cfg.Add(vartab, set)
	cfg.Add(vartab, ret)
	cfg.Vars = vartab.Drain()
	return cfg, set, ret
}

func requireNumber(t *testing.T, expr sema.Expression, expected int64) {
	t.Helper()
	n, ok := expr.(*sema.NumberLiteral)
	require.True(t, ok, "expected a number literal, got %T", expr)
	assert.Equal(t, 0, n.Value.Cmp(big.NewInt(expected)), "got %s", n.Value)
}

func TestFoldArithmetic(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cfg, set, ret := singleBlock(uint64Ty,
		binary(uint64Ty, sema.Multiply, binary(uint64Ty, sema.Add, num(uint64Ty, 2), num(uint64Ty, 3)), num(uint64Ty, 7)))

	assert.Greater(t, ConstantFolding(cfg, ns), 0)
	requireNumber(t, set.Expr, 35)
	requireNumber(t, ret.Values[0], 35)
	assert.Empty(t, ns.Diagnostics)
}

func TestFoldOverflow(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cfg, set, _ := singleBlock(uint8Ty, binary(uint8Ty, sema.Add, num(uint8Ty, 200), num(uint8Ty, 100)))

	ConstantFolding(cfg, ns)
	requireNumber(t, set.Expr, 44)
	require.Len(t, ns.Diagnostics.Errors(), 1)
	assert.Equal(t, diagnostics.ErrorNumericOverflow, ns.Diagnostics[0].Code)
}

// divideByVariable builds
//
//	z = 0
//	res = arg0 / z
//	return res
func divideByVariable() *ControlFlowGraph {
	cfg := NewCFG("test", -1)
	vartab := NewVartable(nil)
	cfg.SetBasicBlock(cfg.NewBasicBlock("entry"))

	z := vartab.TempName("z", uint256Ty)
	res := vartab.TempAnonymous(uint256Ty)
	arg := &sema.FunctionArg{Loc: pt.Codegen, Ty: uint256Ty, ArgNo: 0}
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: z, Expr: num(uint256Ty, 0)})
	cfg.Add(vartab, &Set{Loc: pt.Codegen, Res: res, Expr: binary(uint256Ty, sema.Divide, arg, variable(uint256Ty, z))})
	cfg.Add(vartab, &Return{Values: []sema.Expression{variable(uint256Ty, res)}})
	cfg.Vars = vartab.Drain()
	return cfg
}

func TestFoldIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		cfg  func() *ControlFlowGraph
		code string
	}{
		{"overflow", func() *ControlFlowGraph {
			cfg, _, _ := singleBlock(uint8Ty, binary(uint8Ty, sema.Add, num(uint8Ty, 200), num(uint8Ty, 100)))
			return cfg
		}, diagnostics.ErrorNumericOverflow},
		{"divide by zero variable", divideByVariable, diagnostics.ErrorDivideByZero},
		{"shift out of range", func() *ControlFlowGraph {
			cfg, _, _ := singleBlock(uint256Ty, binary(uint256Ty, sema.ShiftLeft, num(uint256Ty, 1), num(uint256Ty, 300)))
			return cfg
		}, diagnostics.ErrorShiftRange},
		{"power out of range", func() *ControlFlowGraph {
			cfg, _, _ := singleBlock(uint256Ty, binary(uint256Ty, sema.Power, num(uint256Ty, 2), num(uint256Ty, 1<<40)))
			return cfg
		}, diagnostics.ErrorShiftRange},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ns := sema.NewNamespace(sema.EVM())
			cfg := test.cfg()

			ConstantFolding(cfg, ns)
			first := cfg.String(ns)
			require.Len(t, ns.Diagnostics, 1)
			assert.Equal(t, test.code, ns.Diagnostics[0].Code)

			assert.Zero(t, ConstantFolding(cfg, ns))
			assert.Equal(t, first, cfg.String(ns))
			assert.Len(t, ns.Diagnostics, 1)
		})
	}
}

func TestFoldRecordsOnlyLiteralConstants(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	arg := &sema.FunctionArg{Loc: pt.Codegen, Ty: uint256Ty, ArgNo: 0}
	cfg, set, _ := singleBlock(uint256Ty, binary(uint256Ty, sema.Add, arg, num(uint256Ty, 1)))
	set.Loc = pt.FileLoc(0, 10, 20)

	ConstantFolding(cfg, ns)
	assert.Empty(t, ns.VarConstants)

	cfg, set, _ = singleBlock(uint256Ty, binary(uint256Ty, sema.Add, num(uint256Ty, 2), num(uint256Ty, 1)))
	set.Loc = pt.FileLoc(0, 10, 20)
	ConstantFolding(cfg, ns)
	require.Contains(t, ns.VarConstants, set.Loc)
	requireNumber(t, ns.VarConstants[set.Loc], 3)
}

func TestFoldOverflowIgnoredForCodegen(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cfg := NewCFG("test", -1)
	vartab := NewVartable(nil)
	cfg.SetBasicBlock(cfg.NewBasicBlock("entry"))
	res := vartab.TempAnonymous(uint8Ty)
	set := &Set{Loc: pt.Codegen, Res: res, Expr: binary(uint8Ty, sema.Add, num(uint8Ty, 255), num(uint8Ty, 1))}
	cfg.AddCodegen(vartab, set)
	cfg.AddCodegen(vartab, &Return{})
	cfg.Vars = vartab.Drain()

	ConstantFolding(cfg, ns)
	requireNumber(t, set.Expr, 0)
	assert.Empty(t, ns.Diagnostics)
}

func TestFoldUncheckedWraps(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	sub := binary(uint8Ty, sema.Subtract, num(uint8Ty, 0), num(uint8Ty, 1))
	sub.Unchecked = true
	cfg, set, _ := singleBlock(uint8Ty, sub)

	ConstantFolding(cfg, ns)
	requireNumber(t, set.Expr, 255)
	assert.Empty(t, ns.Diagnostics)
}

func TestFoldDivideByZero(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	arg := &sema.FunctionArg{Loc: pt.Codegen, Ty: uint256Ty, ArgNo: 0}
	cfg, set, _ := singleBlock(uint256Ty, binary(uint256Ty, sema.Divide, arg, num(uint256Ty, 0)))

	ConstantFolding(cfg, ns)
	_, stillBinary := set.Expr.(*sema.Binary)
	assert.True(t, stillBinary)
	require.Len(t, ns.Diagnostics, 1)
	assert.Equal(t, diagnostics.ErrorDivideByZero, ns.Diagnostics[0].Code)
	assert.Equal(t, "divide by zero", ns.Diagnostics[0].Message)
}

func TestFoldShiftOutOfRange(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cfg, set, _ := singleBlock(uint256Ty, binary(uint256Ty, sema.ShiftLeft, num(uint256Ty, 1), num(uint256Ty, 300)))

	ConstantFolding(cfg, ns)
	_, stillBinary := set.Expr.(*sema.Binary)
	assert.True(t, stillBinary)
	require.Len(t, ns.Diagnostics, 1)
	assert.Equal(t, diagnostics.ErrorShiftRange, ns.Diagnostics[0].Code)
	assert.Equal(t, "left shift by 300 is not possible", ns.Diagnostics[0].Message)
}

func TestFoldShift(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cfg, set, _ := singleBlock(uint64Ty, binary(uint64Ty, sema.ShiftRight, num(uint64Ty, 1024), num(uint64Ty, 3)))

	ConstantFolding(cfg, ns)
	requireNumber(t, set.Expr, 128)
}

func TestFoldKeccak(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	bytes32 := sema.Bytes{N: 32}
	hash := &sema.Builtin{
		Loc:  pt.Codegen,
		Tys:  []sema.Type{bytes32},
		Kind: sema.BuiltinKeccak256,
		Args: []sema.Expression{&sema.BytesLiteral{Loc: pt.Codegen, Ty: sema.DynamicBytes{}, Value: []byte{}}},
	}
	cfg, set, _ := singleBlock(bytes32, hash)

	ConstantFolding(cfg, ns)
	lit, ok := set.Expr.(*sema.BytesLiteral)
	require.True(t, ok)
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(lit.Value))
}

func TestFoldKeccakOfValues(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	bytes32 := sema.Bytes{N: 32}
	hash := &sema.Keccak256{
		Loc: pt.Codegen,
		Ty:  bytes32,
		Args: []sema.Expression{
			num(uint8Ty, 5),
			num(sema.Int{Bits: 16}, -2),
			num(sema.Address{}, 258),
		},
	}
	cfg, set, _ := singleBlock(bytes32, hash)

	ConstantFolding(cfg, ns)
	lit, ok := set.Expr.(*sema.BytesLiteral)
	require.True(t, ok)
	// keccak256(05 feff 0201000000000000000000000000000000000000), reversed
	assert.Equal(t, "f83693ea82be65490c50c4f7b645f0f4c48dc7d6b30e0e115f24f256011230c1", hex.EncodeToString(lit.Value))
}

func TestNumberBytes(t *testing.T) {
	tests := []struct {
		name     string
		target   sema.Target
		literal  *sema.NumberLiteral
		expected string
	}{
		{"unsigned little endian", sema.EVM(), num(sema.Uint{Bits: 16}, 1), "0100"},
		{"unsigned truncated", sema.EVM(), num(uint8Ty, 0x1ff), "ff"},
		{"signed sign extended", sema.EVM(), num(sema.Int{Bits: 32}, -2), "feffffff"},
		{"address padded", sema.Solana(), num(sema.Address{}, 1), "01" + strings.Repeat("00", 31)},
		{"bytes", sema.EVM(), num(sema.Bytes{N: 2}, 0x0102), "0201"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ns := sema.NewNamespace(test.target)
			assert.Equal(t, test.expected, hex.EncodeToString(numberBytes(test.literal, ns)))
		})
	}
}

func TestHash(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		hex.EncodeToString(Hash(sema.BuiltinSha256, nil)))
	assert.Equal(t,
		"9c1185a5c5e9fc54612808977ee8f548b2258d31",
		hex.EncodeToString(Hash(sema.BuiltinRipemd160, nil)))
	assert.Len(t, Hash(sema.BuiltinBlake2_128, []byte("abc")), 16)
	assert.Len(t, Hash(sema.BuiltinBlake2_256, []byte("abc")), 32)
}

func TestFoldStringCompare(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cmp := &sema.StringCompare{
		Loc:   pt.Codegen,
		Left:  sema.StringLocation{CompileTime: []byte("abc")},
		Right: sema.StringLocation{RunTime: &sema.AllocDynamicArray{Loc: pt.Codegen, Ty: sema.String{}, Length: num(uint32Ty, 3), Init: []byte("abc")}},
	}
	cfg, set, _ := singleBlock(sema.Bool{}, cmp)

	ConstantFolding(cfg, ns)
	lit, ok := set.Expr.(*sema.BoolLiteral)
	require.True(t, ok)
	assert.True(t, lit.Value)
}

func TestFoldBranchCond(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	cfg := NewCFG("test", -1)
	vartab := NewVartable(nil)
	entry := cfg.NewBasicBlock("entry")
	yes := cfg.NewBasicBlock("yes")
	no := cfg.NewBasicBlock("no")

	cfg.SetBasicBlock(entry)
	cfg.Add(vartab, &BranchCond{Cond: &sema.Not{Loc: pt.Codegen, Expr: &sema.BoolLiteral{Value: false}}, True: yes, False: no})
	cfg.SetBasicBlock(yes)
	cfg.Add(vartab, &Return{})
	cfg.SetBasicBlock(no)
	cfg.Add(vartab, &Unreachable{})

	ConstantFolding(cfg, ns)
	branch, ok := cfg.Blocks[entry].Instrs[0].Instr.(*Branch)
	require.True(t, ok)
	assert.Equal(t, yes, branch.Block)
	assert.NoError(t, cfg.Validate())
}

func TestWrap(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	int8Ty := sema.Int{Bits: 8}

	assert.Equal(t, int64(-1), Wrap(big.NewInt(255), int8Ty, ns).Int64())
	assert.Equal(t, int64(127), Wrap(big.NewInt(127), int8Ty, ns).Int64())
	assert.Equal(t, int64(1), Wrap(big.NewInt(257), uint8Ty, ns).Int64())
	assert.Equal(t, int64(300), Wrap(big.NewInt(300), sema.Bool{}, ns).Int64())
}
