package sema

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

func num(v int64, ty Type) *NumberLiteral {
	return &NumberLiteral{Loc: pt.FileLoc(0, 0, 1), Ty: ty, Value: big.NewInt(v)}
}

func TestEvalConstNumber(t *testing.T) {
	ns := NewNamespace(EVM())

	tests := []struct {
		name string
		expr Expression
		want int64
	}{
		{"add", &Binary{Ty: uint256, Op: Add, Left: num(2, uint256), Right: num(3, uint256)}, 5},
		{"shift", &Binary{Ty: uint256, Op: ShiftLeft, Left: num(1, uint256), Right: num(10, uint256)}, 1024},
		{"power", &Binary{Ty: uint256, Op: Power, Left: num(3, uint256), Right: num(4, uint256)}, 81},
		{"negate", &UnaryMinus{Ty: Int{Bits: 8}, Expr: num(7, Int{Bits: 8})}, -7},
		{"cast", &ZeroExt{Ty: uint256, Expr: num(9, Uint{Bits: 8})}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v, d := EvalConstNumber(tt.expr, ns)
			require.Nil(t, d)
			assert.Equal(t, big.NewInt(tt.want), v)
		})
	}
}

func TestEvalConstNumberErrors(t *testing.T) {
	ns := NewNamespace(EVM())

	_, _, d := EvalConstNumber(&Binary{Ty: uint256, Op: Divide, Left: num(1, uint256), Right: num(0, uint256)}, ns)
	require.NotNil(t, d)
	assert.Equal(t, diagnostics.ErrorDivideByZero, d.Code)

	_, _, d = EvalConstNumber(&Variable{Ty: uint256}, ns)
	require.NotNil(t, d)
	assert.Equal(t, "expression not allowed in constant number expression", d.Message)
}

func TestOverflowMessage(t *testing.T) {
	ns := NewNamespace(EVM())

	assert.Empty(t, OverflowMessage(big.NewInt(127), Int{Bits: 8}, ns))
	assert.Empty(t, OverflowMessage(big.NewInt(-128), Int{Bits: 8}, ns))
	assert.Equal(t, "value 128 does not fit into type int8.", OverflowMessage(big.NewInt(128), Int{Bits: 8}, ns))
	assert.Equal(t, "value 256 does not fit into type uint8.", OverflowMessage(big.NewInt(256), Uint{Bits: 8}, ns))
}

func TestConstantArraySize(t *testing.T) {
	ns := resolveSource(t, `uint constant N = 2 * 3;
contract C {
    uint[N] values;
    function f() public view returns (uint) {
        return values.length;
    }
}`)
	require.Empty(t, errorMessages(ns))
	require.Len(t, ns.Contracts[0].Variables, 1)
	assert.Equal(t, FixedArray(uint256, 6), ns.Contracts[0].Variables[0].Ty)
}
