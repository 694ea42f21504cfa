package codegen

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"slices"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// ConstantFolding replaces constant sub-expressions of every instruction
// with literals. Variables are replaced when all their reaching definitions
// fold to the same value, so reaching definitions must be known; they are
// computed here if no earlier pass did.
//
// Overflow, divide by zero and out of range shifts found while folding are
// reported on the namespace.
func ConstantFolding(cfg *ControlFlowGraph, ns *sema.Namespace) int {
	if needsReachingDefinitions(cfg) {
		FindReachingDefinitions(cfg)
	}

	f := &folder{cfg: cfg, ns: ns}
	for _, block := range cfg.Blocks {
		vars := block.Defs.Clone()

		for instrNo := range block.Instrs {
			entry := &block.Instrs[instrNo]
			f.origin = entry.Origin

			for _, op := range entry.Instr.Operands() {
				expr, constant := f.expression(*op, vars)
				*op = expr
				if set, ok := entry.Instr.(*Set); ok && constant && isFoldedConstant(expr) && set.Loc.IsFile() {
					ns.VarConstants[set.Loc] = expr
				}
			}

			if cond, ok := entry.Instr.(*BranchCond); ok {
				if lit, ok := cond.Cond.(*sema.BoolLiteral); ok {
					target := cond.False
					if lit.Value {
						target = cond.True
					}
					entry.Instr = &Branch{Block: target}
					f.folded++
				}
			}

			ApplyTransfers(block.Transfers[instrNo], vars)
		}
	}
	return f.folded
}

func needsReachingDefinitions(cfg *ControlFlowGraph) bool {
	for _, block := range cfg.Blocks {
		if len(block.Transfers) != len(block.Instrs) {
			return true
		}
	}
	return false
}

type folder struct {
	cfg    *ControlFlowGraph
	ns     *sema.Namespace
	origin InstrOrigin
	folded int
	// quiet is set while definitions are refolded for a variable use, so
	// their diagnostics are not reported twice.
	quiet bool
}

func (f *folder) errorf(code string, loc pt.Loc, format string, args ...any) {
	f.report(diagnostics.ErrorAt(code, loc, fmt.Sprintf(format, args...)))
}

// report pushes d unless it is already known. A rejected operation stays in
// the cfg, so folding it again finds the same problem.
func (f *folder) report(d diagnostics.Diagnostic) {
	if f.quiet || f.ns.Diagnostics.Contains(d) {
		return
	}
	f.ns.Diagnostics.Push(d)
}

// expression folds expr bottom up. The flag is true when the result does
// not depend on the context it is evaluated in, so it may be copied to the
// uses of a variable.
func (f *folder) expression(expr sema.Expression, vars VarDefs) (sema.Expression, bool) {
	switch e := expr.(type) {
	case *sema.NumberLiteral, *sema.RationalNumberLiteral, *sema.BoolLiteral, *sema.BytesLiteral, *sema.FunctionArg:
		return expr, true

	case *sema.AllocDynamicArray:
		if e.Length != nil {
			length, _ := f.expression(e.Length, vars)
			return &sema.AllocDynamicArray{Loc: e.Loc, Ty: e.Ty, Length: length, Init: e.Init}, false
		}
		return expr, false
	case *sema.ReturnData, *sema.Undefined:
		return expr, false

	case *sema.Binary:
		return f.binary(e, vars)

	case *sema.UnaryMinus:
		inner, constant := f.expression(e.Expr, vars)
		if n, ok := inner.(*sema.NumberLiteral); ok {
			return f.number(e.Loc, e.Ty, new(big.Int).Neg(n.Value), !e.Unchecked)
		}
		return &sema.UnaryMinus{Loc: e.Loc, Ty: e.Ty, Unchecked: e.Unchecked, Expr: inner}, constant
	case *sema.Complement:
		inner, constant := f.expression(e.Expr, vars)
		if n, ok := inner.(*sema.NumberLiteral); ok {
			return f.number(e.Loc, e.Ty, new(big.Int).Not(n.Value), false)
		}
		return &sema.Complement{Loc: e.Loc, Ty: e.Ty, Expr: inner}, constant
	case *sema.Not:
		inner, constant := f.expression(e.Expr, vars)
		if b, ok := inner.(*sema.BoolLiteral); ok {
			f.folded++
			return &sema.BoolLiteral{Loc: e.Loc, Value: !b.Value}, true
		}
		return &sema.Not{Loc: e.Loc, Expr: inner}, constant

	case *sema.ZeroExt:
		inner, constant := f.expression(e.Expr, vars)
		if n, ok := inner.(*sema.NumberLiteral); ok {
			f.folded++
			return &sema.NumberLiteral{Loc: e.Loc, Ty: e.Ty, Value: n.Value}, true
		}
		return &sema.ZeroExt{Loc: e.Loc, Ty: e.Ty, Expr: inner}, constant
	case *sema.SignExt:
		inner, constant := f.expression(e.Expr, vars)
		if n, ok := inner.(*sema.NumberLiteral); ok {
			f.folded++
			return &sema.NumberLiteral{Loc: e.Loc, Ty: e.Ty, Value: n.Value}, true
		}
		return &sema.SignExt{Loc: e.Loc, Ty: e.Ty, Expr: inner}, constant
	case *sema.Trunc:
		inner, constant := f.expression(e.Expr, vars)
		if n, ok := inner.(*sema.NumberLiteral); ok {
			return f.number(e.Loc, e.Ty, n.Value, false)
		}
		return &sema.Trunc{Loc: e.Loc, Ty: e.Ty, Expr: inner}, constant
	case *sema.Cast:
		inner, _ := f.expression(e.Expr, vars)
		if n, ok := inner.(*sema.NumberLiteral); ok && hasWidth(e.Ty) && hasWidth(n.Ty) {
			return f.number(e.Loc, e.Ty, n.Value, false)
		}
		return &sema.Cast{Loc: e.Loc, Ty: e.Ty, Expr: inner}, false
	case *sema.BytesCast:
		inner, _ := f.expression(e.Expr, vars)
		return &sema.BytesCast{Loc: e.Loc, Ty: e.Ty, From: e.From, Expr: inner}, false

	case *sema.Variable:
		return f.variable(e, vars)

	case *sema.Builtin:
		return f.builtin(e, vars)
	case *sema.Keccak256:
		return f.keccak256(e, vars)

	case *sema.StringCompare:
		left, right := f.stringLocation(e.Left, vars), f.stringLocation(e.Right, vars)
		if left.IsCompileTime() && right.IsCompileTime() {
			f.folded++
			return &sema.BoolLiteral{Loc: e.Loc, Value: bytes.Equal(left.CompileTime, right.CompileTime)}, true
		}
		return &sema.StringCompare{Loc: e.Loc, Left: left, Right: right}, false
	case *sema.StringConcat:
		left, right := f.stringLocation(e.Left, vars), f.stringLocation(e.Right, vars)
		if left.IsCompileTime() && right.IsCompileTime() {
			f.folded++
			bs := append(append([]byte{}, left.CompileTime...), right.CompileTime...)
			return &sema.BytesLiteral{Loc: e.Loc, Ty: e.Ty, Value: bs}, true
		}
		return &sema.StringConcat{Loc: e.Loc, Ty: e.Ty, Left: left, Right: right}, false

	// the rest is only recursed into
	case *sema.Compare:
		left, _ := f.expression(e.Left, vars)
		right, _ := f.expression(e.Right, vars)
		return &sema.Compare{Loc: e.Loc, Op: e.Op, Signed: e.Signed, Left: left, Right: right}, false
	case *sema.Load:
		inner, _ := f.expression(e.Expr, vars)
		return &sema.Load{Loc: e.Loc, Ty: e.Ty, Expr: inner}, false
	case *sema.Subscript:
		array, _ := f.expression(e.Array, vars)
		index, _ := f.expression(e.Index, vars)
		return &sema.Subscript{Loc: e.Loc, Ty: e.Ty, ArrayTy: e.ArrayTy, Array: array, Index: index}, false
	case *sema.StructMember:
		inner, _ := f.expression(e.Expr, vars)
		return &sema.StructMember{Loc: e.Loc, Ty: e.Ty, Expr: inner, Field: e.Field}, false
	case *sema.StorageArrayLength:
		array, _ := f.expression(e.Array, vars)
		return &sema.StorageArrayLength{Loc: e.Loc, Ty: e.Ty, ArrayTy: e.ArrayTy, Array: array}, false
	case *sema.ArrayLiteral:
		return &sema.ArrayLiteral{Loc: e.Loc, Ty: e.Ty, Dims: e.Dims, Values: f.list(e.Values, vars)}, false
	case *sema.StructLiteral:
		return &sema.StructLiteral{Loc: e.Loc, Ty: e.Ty, Values: f.list(e.Values, vars)}, false
	case *sema.AbiEncode:
		return &sema.AbiEncode{Loc: e.Loc, Tys: e.Tys, Packed: f.list(e.Packed, vars), Args: f.list(e.Args, vars)}, false
	}

	panic(fmt.Sprintf("%s: expression %T should not be in a cfg", f.cfg.Name, expr))
}

func (f *folder) list(list []sema.Expression, vars VarDefs) []sema.Expression {
	res := make([]sema.Expression, len(list))
	for i, e := range list {
		res[i], _ = f.expression(e, vars)
	}
	return res
}

func (f *folder) binary(e *sema.Binary, vars VarDefs) (sema.Expression, bool) {
	left, leftConstant := f.expression(e.Left, vars)
	right, rightConstant := f.expression(e.Right, vars)
	unfolded := func() (sema.Expression, bool) {
		return &sema.Binary{
			Loc: e.Loc, Ty: e.Ty, Op: e.Op, Signed: e.Signed, Unchecked: e.Unchecked,
			Left: left, Right: right,
		}, leftConstant && rightConstant
	}

	r, ok := right.(*sema.NumberLiteral)
	if !ok {
		return unfolded()
	}
	if (e.Op == sema.Divide || e.Op == sema.Modulo) && r.Value.Sign() == 0 {
		f.errorf(diagnostics.ErrorDivideByZero, e.Loc, "divide by zero")
		return unfolded()
	}
	l, ok := left.(*sema.NumberLiteral)
	if !ok {
		return unfolded()
	}

	res := new(big.Int)
	switch e.Op {
	case sema.Add:
		res.Add(l.Value, r.Value)
	case sema.Subtract:
		res.Sub(l.Value, r.Value)
	case sema.Multiply:
		res.Mul(l.Value, r.Value)
	case sema.Divide:
		res.Quo(l.Value, r.Value)
	case sema.Modulo:
		res.Rem(l.Value, r.Value)
	case sema.Power:
		if r.Value.Sign() < 0 || r.Value.Cmp(big.NewInt(math.MaxUint32)) >= 0 {
			f.errorf(diagnostics.ErrorShiftRange, e.Loc, "power %s not possible", r.Value)
			return unfolded()
		}
		res.Exp(l.Value, r.Value, nil)
	case sema.BitwiseAnd:
		res.And(l.Value, r.Value)
	case sema.BitwiseOr:
		res.Or(l.Value, r.Value)
	case sema.BitwiseXor:
		res.Xor(l.Value, r.Value)
	case sema.ShiftLeft, sema.ShiftRight:
		bits := int64(widthOf(e.Left.Type(), f.ns))
		if r.Value.Sign() < 0 || r.Value.Cmp(big.NewInt(bits)) >= 0 {
			dir := "left"
			if e.Op == sema.ShiftRight {
				dir = "right"
			}
			f.errorf(diagnostics.ErrorShiftRange, e.Loc, "%s shift by %s is not possible", dir, r.Value)
			return unfolded()
		}
		if e.Op == sema.ShiftLeft {
			res.Lsh(l.Value, uint(r.Value.Uint64()))
		} else {
			res.Rsh(l.Value, uint(r.Value.Uint64()))
		}
	}

	return f.number(e.Loc, e.Ty, res, e.Op.IsArithmetic() && !e.Unchecked)
}

// number turns a folded result into a literal of type ty, checking it for
// overflow when checked is set and the instruction comes from source, then
// wrapping it to the width of the type.
func (f *folder) number(loc pt.Loc, ty sema.Type, n *big.Int, checked bool) (sema.Expression, bool) {
	if checked && f.origin == OriginSolidity {
		if msg := sema.OverflowMessage(n, ty, f.ns); msg != "" {
			f.report(diagnostics.NumericOverflow(loc, msg))
		}
	}
	f.folded++
	return &sema.NumberLiteral{Loc: loc, Ty: ty, Value: Wrap(n, ty, f.ns)}, true
}

// Wrap truncates n to the width of ty, two's complement for signed types.
// Types without a width are left alone.
func Wrap(n *big.Int, ty sema.Type, ns *sema.Namespace) *big.Int {
	if !hasWidth(ty) {
		return n
	}
	bits := uint(widthOf(ty, ns))
	modulus := new(big.Int).Lsh(big.NewInt(1), bits)
	mask := new(big.Int).Sub(modulus, big.NewInt(1))
	res := new(big.Int).And(n, mask)
	if sema.IsSigned(ty) && res.Bit(int(bits)-1) == 1 {
		res.Sub(res, modulus)
	}
	return res
}

func hasWidth(ty sema.Type) bool {
	switch ty.(type) {
	case sema.Uint, sema.Int, sema.Bytes, sema.Address, sema.Contract:
		return true
	}
	return false
}

func widthOf(ty sema.Type, ns *sema.Namespace) uint16 {
	ty = sema.Deref(ty)
	if hasWidth(ty) {
		return sema.Bits(ty, ns)
	}
	return 256
}

func (f *folder) variable(v *sema.Variable, vars VarDefs) (sema.Expression, bool) {
	switch v.Ty.(type) {
	case sema.Ref, sema.StorageRef:
		return v, false
	}
	if vars == nil {
		return v, false
	}
	defs, ok := vars[v.VarNo]
	if !ok || len(defs) == 0 {
		return v, false
	}

	var value sema.Expression
	for def, modified := range defs {
		set, ok := f.cfg.Instr(def).(*Set)
		if !ok || modified {
			return v, false
		}
		// definitions are folded without reaching definitions, so a chain
		// of variables is only followed through copies
		quiet := f.quiet
		f.quiet = true
		expr, constant := f.expression(set.Expr, nil)
		f.quiet = quiet
		if !constant || !isFoldedConstant(expr) {
			return v, false
		}
		if value != nil && !constantsEqual(value, expr) {
			return v, false
		}
		value = expr
	}

	if v.Loc.IsFile() {
		f.ns.VarConstants[v.Loc] = value
	}
	f.folded++
	return value, true
}

func isFoldedConstant(e sema.Expression) bool {
	switch e.(type) {
	case *sema.NumberLiteral, *sema.BoolLiteral, *sema.BytesLiteral:
		return true
	}
	return false
}

// constantsEqual compares two folded values.
func constantsEqual(a, b sema.Expression) bool {
	switch a := a.(type) {
	case *sema.NumberLiteral:
		b, ok := b.(*sema.NumberLiteral)
		return ok && a.Value.Cmp(b.Value) == 0
	case *sema.BoolLiteral:
		b, ok := b.(*sema.BoolLiteral)
		return ok && a.Value == b.Value
	case *sema.BytesLiteral:
		b, ok := b.(*sema.BytesLiteral)
		return ok && bytes.Equal(a.Value, b.Value)
	}
	return false
}

// compileTimeBytes returns the contents of a literal byte array.
func compileTimeBytes(e sema.Expression) ([]byte, bool) {
	switch e := e.(type) {
	case *sema.BytesLiteral:
		return e.Value, true
	case *sema.AllocDynamicArray:
		if e.Init != nil {
			return e.Init, true
		}
	}
	return nil, false
}

func (f *folder) stringLocation(s sema.StringLocation, vars VarDefs) sema.StringLocation {
	if s.IsCompileTime() {
		return s
	}
	e, _ := f.expression(s.RunTime, vars)
	if bs, ok := compileTimeBytes(e); ok {
		return sema.StringLocation{CompileTime: bs}
	}
	return sema.StringLocation{RunTime: e}
}

func (f *folder) builtin(e *sema.Builtin, vars VarDefs) (sema.Expression, bool) {
	args := f.list(e.Args, vars)
	if e.Kind.IsHash() && len(args) == 1 {
		if bs, ok := compileTimeBytes(args[0]); ok {
			f.folded++
			return &sema.BytesLiteral{Loc: e.Loc, Ty: e.Tys[0], Value: Hash(e.Kind, bs)}, true
		}
	}
	return &sema.Builtin{Loc: e.Loc, Tys: e.Tys, Kind: e.Kind, Args: args}, false
}

// keccak256 folds a hash of several values, as used for mapping slots.
// Numbers are hashed little endian at the width of their type and the
// digest is stored reversed.
func (f *folder) keccak256(e *sema.Keccak256, vars VarDefs) (sema.Expression, bool) {
	args := f.list(e.Args, vars)

	var data []byte
	for _, arg := range args {
		if bs, ok := compileTimeBytes(arg); ok {
			data = append(data, bs...)
			continue
		}
		n, ok := arg.(*sema.NumberLiteral)
		if !ok {
			return &sema.Keccak256{Loc: e.Loc, Ty: e.Ty, Args: args}, false
		}
		data = append(data, numberBytes(n, f.ns)...)
	}

	f.folded++
	hash := Hash(sema.BuiltinKeccak256, data)
	slices.Reverse(hash)
	return &sema.BytesLiteral{Loc: e.Loc, Ty: e.Ty, Value: hash}, true
}

// numberBytes encodes a literal little endian. Unsigned values are
// truncated to the width of their type, signed values are sign extended
// and addresses are zero padded to the address length. Literals without a
// width use 32 bytes.
func numberBytes(n *sema.NumberLiteral, ns *sema.Namespace) []byte {
	size := 32
	if hasWidth(n.Ty) {
		size = int(sema.Bits(n.Ty, ns)) / 8
	}
	v := new(big.Int).Mod(n.Value, new(big.Int).Lsh(big.NewInt(1), uint(size*8)))
	bs := v.FillBytes(make([]byte, size))
	slices.Reverse(bs)
	return bs
}
