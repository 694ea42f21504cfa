package sema

import (
	"fmt"
	"math/big"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// CastTo converts expr to type to, inserting the extension, truncation or
// load nodes the conversion needs. Implicit conversions are the ones the
// language performs without being asked, so they refuse anything lossy.
func CastTo(expr Expression, loc pt.Loc, to Type, implicit bool, ns *Namespace, diags *diagnostics.List) (Expression, error) {
	from := expr.Type()
	if from == to {
		return expr, nil
	}

	// Storage and memory references are loaded unless a reference is what
	// is wanted.
	switch f := from.(type) {
	case StorageRef:
		if ref, ok := to.(StorageRef); ok && ref.Elem == f.Elem {
			return expr, nil
		}
		return CastTo(&StorageLoad{Loc: loc, Ty: f.Elem, Expr: expr}, loc, to, implicit, ns, diags)
	case Ref:
		if ref, ok := to.(Ref); ok && ref.Elem == f.Elem {
			return expr, nil
		}
		return CastTo(&Load{Loc: loc, Ty: f.Elem, Expr: expr}, loc, to, implicit, ns, diags)
	case Unreachable:
		return expr, nil
	}

	switch e := expr.(type) {
	case *NumberLiteral:
		if res, ok, err := castNumberLiteral(e, loc, to, implicit, ns, diags); ok {
			return res, err
		}
	case *RationalNumberLiteral:
		if IsInteger(to) {
			if !e.Value.IsInt() {
				diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
					fmt.Sprintf("rational number %s is not an integer", e.Value.RatString())))
				return nil, ErrResolve
			}
			res, _, err := castNumberLiteral(&NumberLiteral{Loc: e.Loc, Ty: to, Value: new(big.Int).Set(e.Value.Num())}, loc, to, implicit, ns, diags)
			return res, err
		}
	case *BytesLiteral:
		if res, ok, err := castBytesLiteral(e, loc, to, implicit, ns, diags); ok {
			return res, err
		}
	}

	if _, ok := from.(Rational); ok && IsInteger(to) {
		_, r, d := EvalConstRational(expr, ns)
		if d != nil {
			diags.Push(*d)
			return nil, ErrResolve
		}
		return CastTo(&RationalNumberLiteral{Loc: expr.NodeLoc(), Ty: Rational{}, Value: r}, loc, to, implicit, ns, diags)
	}

	truncate := func() (Expression, error) {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
			fmt.Sprintf("implicit conversion would truncate from '%s' to '%s'", ns.TypeString(from), ns.TypeString(to))))
		return nil, ErrResolve
	}
	changeSign := func() (Expression, error) {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
			fmt.Sprintf("implicit conversion would change sign from '%s' to '%s'", ns.TypeString(from), ns.TypeString(to))))
		return nil, ErrResolve
	}
	notAllowed := func() (Expression, error) {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
			fmt.Sprintf("implicit conversion from '%s' to '%s' not allowed", ns.TypeString(from), ns.TypeString(to))))
		return nil, ErrResolve
	}
	impossible := func() (Expression, error) {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
			fmt.Sprintf("conversion from '%s' to '%s' not possible", ns.TypeString(from), ns.TypeString(to))))
		return nil, ErrResolve
	}

	switch f := from.(type) {
	case Uint:
		switch t := to.(type) {
		case Uint:
			if t.Bits > f.Bits {
				return &ZeroExt{Loc: loc, Ty: to, Expr: expr}, nil
			}
			if implicit {
				return truncate()
			}
			return &Trunc{Loc: loc, Ty: to, Expr: expr}, nil
		case Int:
			if t.Bits > f.Bits {
				return &ZeroExt{Loc: loc, Ty: to, Expr: expr}, nil
			}
			if implicit {
				return changeSign()
			}
			if t.Bits < f.Bits {
				return &Trunc{Loc: loc, Ty: to, Expr: expr}, nil
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Bytes:
			if implicit {
				return notAllowed()
			}
			if uint16(t.N)*8 != f.Bits {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Address, Contract:
			if implicit {
				return notAllowed()
			}
			if int(f.Bits) != ns.AddressLength*8 {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		}

	case Int:
		switch t := to.(type) {
		case Int:
			if t.Bits > f.Bits {
				return &SignExt{Loc: loc, Ty: to, Expr: expr}, nil
			}
			if implicit {
				return truncate()
			}
			return &Trunc{Loc: loc, Ty: to, Expr: expr}, nil
		case Uint:
			if implicit {
				return changeSign()
			}
			switch {
			case t.Bits > f.Bits:
				return &SignExt{Loc: loc, Ty: to, Expr: expr}, nil
			case t.Bits < f.Bits:
				return &Trunc{Loc: loc, Ty: to, Expr: expr}, nil
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Bytes:
			if implicit {
				return notAllowed()
			}
			if uint16(t.N)*8 != f.Bits {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		}

	case Bytes:
		switch t := to.(type) {
		case Bytes:
			if t.N > f.N {
				shift := &NumberLiteral{Loc: pt.Codegen, Ty: to, Value: big.NewInt(int64(t.N-f.N) * 8)}
				return &Binary{Loc: loc, Ty: to, Op: ShiftLeft, Left: &ZeroExt{Loc: loc, Ty: to, Expr: expr}, Right: shift}, nil
			}
			if implicit {
				return truncate()
			}
			shift := &NumberLiteral{Loc: pt.Codegen, Ty: from, Value: big.NewInt(int64(f.N-t.N) * 8)}
			return &Trunc{Loc: loc, Ty: to, Expr: &Binary{Loc: loc, Ty: from, Op: ShiftRight, Left: expr, Right: shift}}, nil
		case Uint:
			if implicit {
				return notAllowed()
			}
			if t.Bits != uint16(f.N)*8 {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Int:
			if implicit {
				return notAllowed()
			}
			if t.Bits != uint16(f.N)*8 {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Address:
			if implicit {
				return notAllowed()
			}
			if int(f.N) != ns.AddressLength {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case DynamicBytes:
			if implicit {
				return notAllowed()
			}
			return &BytesCast{Loc: loc, Ty: to, From: from, Expr: expr}, nil
		}

	case Address:
		switch t := to.(type) {
		case Address:
			if implicit && t.Payable && !f.Payable {
				return notAllowed()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Uint:
			if implicit {
				return notAllowed()
			}
			if int(t.Bits) != ns.AddressLength*8 {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Bytes:
			if implicit {
				return notAllowed()
			}
			if int(t.N) != ns.AddressLength {
				return impossible()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Contract:
			if implicit {
				return notAllowed()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		}

	case Contract:
		switch to.(type) {
		case Address:
			if implicit {
				return notAllowed()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Contract:
			if implicit {
				return notAllowed()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		}

	case String:
		if _, ok := to.(DynamicBytes); ok {
			if implicit {
				return notAllowed()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		}

	case DynamicBytes:
		switch to.(type) {
		case String:
			if implicit {
				return notAllowed()
			}
			return &Cast{Loc: loc, Ty: to, Expr: expr}, nil
		case Bytes:
			if implicit {
				return notAllowed()
			}
			return &BytesCast{Loc: loc, Ty: to, From: from, Expr: expr}, nil
		}

	case Void:
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorVoidInExpression, loc, "function or method does not return a value"))
		return nil, ErrResolve
	}

	if implicit {
		return notAllowed()
	}
	return impossible()
}

// castNumberLiteral retypes a literal. The boolean result is false if the
// literal cannot be retyped directly and the general rules apply.
func castNumberLiteral(e *NumberLiteral, loc pt.Loc, to Type, implicit bool, ns *Namespace, diags *diagnostics.List) (Expression, bool, error) {
	switch t := to.(type) {
	case Uint, Int:
		if implicit {
			if msg := OverflowMessage(e.Value, to, ns); msg != "" {
				diags.Push(diagnostics.NumericOverflow(e.Loc, msg))
				return nil, true, ErrResolve
			}
			return &NumberLiteral{Loc: e.Loc, Ty: to, Value: e.Value}, true, nil
		}
		return &NumberLiteral{Loc: e.Loc, Ty: to, Value: WrapToType(e.Value, to)}, true, nil
	case Bytes:
		if e.Value.Sign() < 0 || e.Value.BitLen() > int(t.N)*8 {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
				fmt.Sprintf("number of %d bytes cannot be converted to type '%s'", (e.Value.BitLen()+7)/8, ns.TypeString(to))))
			return nil, true, ErrResolve
		}
		if implicit && e.Value.Sign() != 0 && e.Value.BitLen() <= (int(t.N)-1)*8 {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
				fmt.Sprintf("implicit conversion from '%s' to '%s' not allowed", ns.TypeString(e.Ty), ns.TypeString(to))))
			return nil, true, ErrResolve
		}
		return &NumberLiteral{Loc: e.Loc, Ty: to, Value: e.Value}, true, nil
	case Address:
		if implicit {
			return nil, false, nil
		}
		if e.Value.Sign() < 0 || e.Value.BitLen() > ns.AddressLength*8 {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
				fmt.Sprintf("address literal %s is too large for %d bytes", e.Value, ns.AddressLength)))
			return nil, true, ErrResolve
		}
		return &NumberLiteral{Loc: e.Loc, Ty: to, Value: e.Value}, true, nil
	case Rational:
		return &RationalNumberLiteral{Loc: e.Loc, Ty: to, Value: new(big.Rat).SetInt(e.Value)}, true, nil
	}
	return nil, false, nil
}

func castBytesLiteral(e *BytesLiteral, loc pt.Loc, to Type, implicit bool, ns *Namespace, diags *diagnostics.List) (Expression, bool, error) {
	switch t := to.(type) {
	case Bytes:
		if len(e.Value) > int(t.N) {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorConversion, loc,
				fmt.Sprintf("literal of %d bytes does not fit into type '%s'", len(e.Value), ns.TypeString(to))))
			return nil, true, ErrResolve
		}
		padded := make([]byte, t.N)
		copy(padded, e.Value)
		return &BytesLiteral{Loc: e.Loc, Ty: to, Value: padded}, true, nil
	case String, DynamicBytes:
		return &BytesLiteral{Loc: e.Loc, Ty: to, Value: e.Value}, true, nil
	}
	return nil, false, nil
}

// WrapToType truncates v to the width of ty using two's complement.
func WrapToType(v *big.Int, ty Type) *big.Int {
	var bits uint
	signed := false
	switch t := ty.(type) {
	case Uint:
		bits = uint(t.Bits)
	case Int:
		bits = uint(t.Bits)
		signed = true
	default:
		return v
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), bits)
	res := new(big.Int).Mod(v, modulus)
	if signed && res.Bit(int(bits)-1) == 1 {
		res.Sub(res, modulus)
	}
	return res
}
