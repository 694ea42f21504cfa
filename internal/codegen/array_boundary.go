package codegen

import (
	"math/big"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

var uint32Ty = sema.Uint{Bits: 32}

// Memory arrays created with new get a temporary holding their length. It
// follows pushes, pops and assignments, so that reading .length is a
// variable constant folding can see through.

// modifyTempArraySize adjusts the length temporary of array after a push or
// pop.
func modifyTempArraySize(cfg *ControlFlowGraph, minus bool, array int, vartab *Vartable) {
	temp, ok := cfg.ArrayLengthsTemps[array]
	if !ok {
		return
	}
	op := sema.Add
	if minus {
		op = sema.Subtract
	}
	cfg.AddCodegen(vartab, &Set{
		Loc: pt.Codegen,
		Res: temp,
		Expr: &sema.Binary{
			Loc:   pt.Codegen,
			Ty:    uint32Ty,
			Op:    op,
			Left:  &sema.Variable{Loc: pt.Codegen, Ty: uint32Ty, VarNo: temp},
			Right: &sema.NumberLiteral{Loc: pt.Codegen, Ty: uint32Ty, Value: big.NewInt(1)},
		},
	})
}

// handleArrayAssign updates the length temporary of the variable pos after
// right, already lowered, was assigned to it.
func handleArrayAssign(right sema.Expression, cfg *ControlFlowGraph, vartab *Vartable, pos int) {
	switch r := right.(type) {
	case *sema.Variable:
		src, ok := cfg.ArrayLengthsTemps[r.VarNo]
		if !ok {
			// parameters and call results have no known length
			delete(cfg.ArrayLengthsTemps, pos)
			return
		}
		temp := vartab.TempName("array_size", uint32Ty)
		cfg.AddCodegen(vartab, &Set{
			Loc:  pt.Codegen,
			Res:  temp,
			Expr: &sema.Variable{Loc: pt.Codegen, Ty: uint32Ty, VarNo: src},
		})
		cfg.ArrayLengthsTemps[pos] = temp

	case *sema.AllocDynamicArray:
		if r.Length == nil {
			delete(cfg.ArrayLengthsTemps, pos)
			return
		}
		temp, ok := cfg.ArrayLengthsTemps[pos]
		if !ok {
			temp = vartab.TempName("array_size", uint32Ty)
		}
		cfg.AddCodegen(vartab, &Set{Loc: pt.Codegen, Res: temp, Expr: r.Length})
		cfg.ArrayLengthsTemps[pos] = temp

	default:
		delete(cfg.ArrayLengthsTemps, pos)
	}
}

// tracksLength is true for the memory array types that get a length
// temporary.
func tracksLength(ty sema.Type) bool {
	switch t := ty.(type) {
	case sema.Array:
		return t.Dynamic
	case sema.DynamicBytes:
		return true
	}
	return false
}

// arrayLength returns the length temporary of a memory array, if known.
func arrayLength(cfg *ControlFlowGraph, loc pt.Loc, array sema.Expression) (sema.Expression, bool) {
	v, ok := array.(*sema.Variable)
	if !ok {
		return nil, false
	}
	temp, ok := cfg.ArrayLengthsTemps[v.VarNo]
	if !ok {
		return nil, false
	}
	return &sema.Variable{Loc: loc, Ty: uint32Ty, VarNo: temp}, true
}
