package sema

import (
	"fmt"
	"math"
	"math/big"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// EvalConstNumber evaluates an expression that must be a compile time
// integer, such as an array size.
func EvalConstNumber(expr Expression, ns *Namespace) (pt.Loc, *big.Int, *diagnostics.Diagnostic) {
	notAllowed := func() (pt.Loc, *big.Int, *diagnostics.Diagnostic) {
		d := diagnostics.ErrorAt(diagnostics.ErrorNotConstant, expr.NodeLoc(), "expression not allowed in constant number expression")
		return pt.Loc{}, nil, &d
	}
	fail := func(code, msg string) (pt.Loc, *big.Int, *diagnostics.Diagnostic) {
		d := diagnostics.ErrorAt(code, expr.NodeLoc(), msg)
		return pt.Loc{}, nil, &d
	}

	switch e := expr.(type) {
	case *NumberLiteral:
		return e.Loc, new(big.Int).Set(e.Value), nil

	case *Binary:
		_, l, d := EvalConstNumber(e.Left, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		_, r, d := EvalConstNumber(e.Right, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		res := new(big.Int)
		switch e.Op {
		case Add:
			res.Add(l, r)
		case Subtract:
			res.Sub(l, r)
		case Multiply:
			res.Mul(l, r)
		case Divide, Modulo:
			if r.Sign() == 0 {
				return fail(diagnostics.ErrorDivideByZero, "divide by zero")
			}
			if e.Op == Divide {
				res.Quo(l, r)
			} else {
				res.Rem(l, r)
			}
		case Power:
			if r.Sign() < 0 {
				return fail(diagnostics.ErrorShiftRange, "power cannot take negative number as exponent")
			}
			if r.BitLen() > 32 {
				return fail(diagnostics.ErrorShiftRange, fmt.Sprintf("power %s not possible", r))
			}
			res.Exp(l, r, nil)
		case BitwiseAnd:
			res.And(l, r)
		case BitwiseOr:
			res.Or(l, r)
		case BitwiseXor:
			res.Xor(l, r)
		case ShiftLeft, ShiftRight:
			if r.Sign() < 0 || !r.IsUint64() || r.Uint64() > math.MaxUint32 {
				dir := "left"
				if e.Op == ShiftRight {
					dir = "right"
				}
				return fail(diagnostics.ErrorShiftRange, fmt.Sprintf("cannot %s shift by %s", dir, r))
			}
			if e.Op == ShiftLeft {
				res.Lsh(l, uint(r.Uint64()))
			} else {
				res.Rsh(l, uint(r.Uint64()))
			}
		}
		return e.Loc, res, nil

	case *ZeroExt:
		return evalWithLoc(e.Loc, e.Expr, ns)
	case *SignExt:
		return evalWithLoc(e.Loc, e.Expr, ns)
	case *Cast:
		return evalWithLoc(e.Loc, e.Expr, ns)
	case *Complement:
		_, n, d := EvalConstNumber(e.Expr, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		return e.Loc, n.Not(n), nil
	case *UnaryMinus:
		_, n, d := EvalConstNumber(e.Expr, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		return e.Loc, n.Neg(n), nil
	case *ConstantVariable:
		init := ns.ConstantInitializer(e.ContractNo, e.VarNo)
		if init == nil {
			return notAllowed()
		}
		return EvalConstNumber(init, ns)
	}

	return notAllowed()
}

func evalWithLoc(loc pt.Loc, expr Expression, ns *Namespace) (pt.Loc, *big.Int, *diagnostics.Diagnostic) {
	_, n, d := EvalConstNumber(expr, ns)
	if d != nil {
		return pt.Loc{}, nil, d
	}
	return loc, n, nil
}

// EvalConstRational is EvalConstNumber for expressions which may contain
// rational literals.
func EvalConstRational(expr Expression, ns *Namespace) (pt.Loc, *big.Rat, *diagnostics.Diagnostic) {
	switch e := expr.(type) {
	case *NumberLiteral:
		return e.Loc, new(big.Rat).SetInt(e.Value), nil
	case *RationalNumberLiteral:
		return e.Loc, new(big.Rat).Set(e.Value), nil
	case *Binary:
		switch e.Op {
		case Add, Subtract, Multiply, Divide, Modulo:
		default:
			return rationalNotAllowed(expr)
		}
		_, l, d := EvalConstRational(e.Left, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		_, r, d := EvalConstRational(e.Right, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		res := new(big.Rat)
		switch e.Op {
		case Add:
			res.Add(l, r)
		case Subtract:
			res.Sub(l, r)
		case Multiply:
			res.Mul(l, r)
		default:
			if r.Sign() == 0 {
				d := diagnostics.ErrorAt(diagnostics.ErrorDivideByZero, e.Loc, "divide by zero")
				return pt.Loc{}, nil, &d
			}
			if e.Op == Divide {
				res.Quo(l, r)
			} else {
				res = ratRem(l, r)
			}
		}
		return e.Loc, res, nil
	case *Cast:
		_, n, d := EvalConstRational(e.Expr, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		return e.Loc, n, nil
	case *UnaryMinus:
		_, n, d := EvalConstRational(e.Expr, ns)
		if d != nil {
			return pt.Loc{}, nil, d
		}
		return e.Loc, n.Neg(n), nil
	case *ConstantVariable:
		if init := ns.ConstantInitializer(e.ContractNo, e.VarNo); init != nil {
			return EvalConstRational(init, ns)
		}
	}
	return rationalNotAllowed(expr)
}

func rationalNotAllowed(expr Expression) (pt.Loc, *big.Rat, *diagnostics.Diagnostic) {
	d := diagnostics.ErrorAt(diagnostics.ErrorNotConstant, expr.NodeLoc(), "expression not allowed in constant rational number expression")
	return pt.Loc{}, nil, &d
}

// ratRem is the remainder of truncated division, l - r*trunc(l/r).
func ratRem(l, r *big.Rat) *big.Rat {
	q := new(big.Rat).Quo(l, r)
	trunc := new(big.Int).Quo(q.Num(), q.Denom())
	res := new(big.Rat).Mul(r, new(big.Rat).SetInt(trunc))
	return res.Sub(l, res)
}

func (ns *Namespace) ConstantInitializer(contract, varNo int) Expression {
	if contract >= 0 {
		return ns.Contracts[contract].Variables[varNo].Initializer
	}
	return ns.Constants[varNo].Initializer
}

// OverflowMessage returns the diagnostic text for a value that does not fit
// in ty, or "" if it fits. Negative values in unsigned types get their own
// message.
func OverflowMessage(value *big.Int, ty Type, ns *Namespace) string {
	switch t := ty.(type) {
	case Uint:
		if value.Sign() < 0 {
			return fmt.Sprintf("negative value %s does not fit into type %s. Cannot implicitly convert signed literal to unsigned type.", value, ns.TypeString(ty))
		}
		if value.BitLen() > int(t.Bits) {
			return fmt.Sprintf("value %s does not fit into type %s.", value, ns.TypeString(ty))
		}
	case Int:
		if signedBits(value) > int(t.Bits) {
			return fmt.Sprintf("value %s does not fit into type %s.", value, ns.TypeString(ty))
		}
	}
	return ""
}

// signedBits is the number of bits needed to hold v in two's complement.
func signedBits(v *big.Int) int {
	if v.Sign() >= 0 {
		return v.BitLen() + 1
	}
	n := new(big.Int).Neg(v)
	n.Sub(n, big.NewInt(1))
	return n.BitLen() + 1
}

// CheckConstantOverflow evaluates every constant arithmetic sub-expression
// of expr and reports the ones whose value does not fit their type. It must
// be called once, where the type of the expression is fixed.
func CheckConstantOverflow(expr Expression, ns *Namespace, diags *diagnostics.List) {
	Walk(expr, func(e Expression) bool {
		switch e := e.(type) {
		case *NumberLiteral:
			if msg := OverflowMessage(e.Value, e.Ty, ns); msg != "" {
				diags.Push(diagnostics.NumericOverflow(e.Loc, msg))
			}
			return false
		case *Binary, *UnaryMinus:
			if !isConstantArithmetic(e) {
				return true
			}
			loc, v, d := EvalConstNumber(e, ns)
			if d != nil {
				// divide by zero and friends are reported by constant
				// folding
				return false
			}
			if msg := OverflowMessage(v, e.Type(), ns); msg != "" {
				diags.Push(diagnostics.NumericOverflow(loc, msg))
			}
			return false
		}
		return true
	})
}

func isConstantArithmetic(e Expression) bool {
	switch e := e.(type) {
	case *NumberLiteral:
		return true
	case *Binary:
		return IsInteger(e.Ty) && isConstantArithmetic(e.Left) && isConstantArithmetic(e.Right)
	case *UnaryMinus:
		return isConstantArithmetic(e.Expr)
	}
	return false
}
