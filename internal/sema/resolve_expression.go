package sema

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// ResolveExpression resolves a parse tree expression into a typed
// expression. On failure the diagnostics are in diags and ErrResolve is
// returned. symtable may be nil outside function bodies.
func ResolveExpression(expr pt.Expression, ctx *ExprContext, ns *Namespace, symtable *Symtable, diags *diagnostics.List, resolveTo ResolveTo) (Expression, error) {
	r := &resolver{ctx: ctx, ns: ns, symtable: symtable, diags: diags}
	return r.expression(expr, resolveTo)
}

// resolver carries the state shared by every step of resolving one
// expression.
type resolver struct {
	ctx      *ExprContext
	ns       *Namespace
	symtable *Symtable
	diags    *diagnostics.List
}

func (r *resolver) errorf(code string, loc pt.Loc, format string, args ...any) error {
	r.diags.Push(diagnostics.ErrorAt(code, loc, fmt.Sprintf(format, args...)))
	return ErrResolve
}

func (r *resolver) cast(expr Expression, to Type, implicit bool) (Expression, error) {
	return CastTo(expr, expr.NodeLoc(), to, implicit, r.ns, r.diags)
}

func (r *resolver) typeString(ty Type) string { return r.ns.TypeString(ty) }

func (r *resolver) expression(expr pt.Expression, resolveTo ResolveTo) (Expression, error) {
	switch e := expr.(type) {
	case *pt.NumberLiteral:
		return r.numberLiteral(e, resolveTo)
	case *pt.RationalNumberLiteral:
		return r.rationalLiteral(e, resolveTo)
	case *pt.HexNumberLiteral:
		return r.hexNumberLiteral(e, resolveTo)
	case *pt.StringLiteral:
		return &BytesLiteral{Loc: e.Loc, Ty: String{}, Value: []byte(e.Value)}, nil
	case *pt.HexLiteral:
		var ty Type = DynamicBytes{}
		if n := len(e.Bytes); n > 0 && n <= 32 {
			ty = Bytes{N: uint8(n)}
		}
		return &BytesLiteral{Loc: e.Loc, Ty: ty, Value: e.Bytes}, nil
	case *pt.BoolLiteral:
		return &BoolLiteral{Loc: e.Loc, Value: e.Value}, nil
	case *pt.Variable:
		return r.variable(e)
	case *pt.Parenthesis:
		return r.expression(e.Expr, resolveTo)
	case *pt.BinaryExpr:
		return r.binary(e, resolveTo)
	case *pt.UnaryExpr:
		return r.unary(e, resolveTo)
	case *pt.IncDec:
		return r.incDec(e)
	case *pt.Assign:
		return r.assign(e)
	case *pt.ConditionalOperator:
		return r.conditional(e, resolveTo)
	case *pt.FunctionCall:
		return r.functionCall(e, resolveTo)
	case *pt.NamedFunctionCall:
		return r.namedFunctionCall(e, resolveTo)
	case *pt.MemberAccess:
		return r.memberAccess(e)
	case *pt.ArraySubscript:
		return r.subscript(e)
	case *pt.List:
		return r.list(e, resolveTo)
	case *pt.ArrayLiteral:
		return r.arrayLiteral(e, resolveTo)
	case *pt.Delete:
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "delete not allowed in expression")
	case *pt.New:
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'new' must be followed by a call")
	case *pt.ElementaryType, *pt.Mapping:
		return nil, r.errorf(diagnostics.ErrorInvalidType, e.NodeLoc(), "type found where expression expected")
	case *pt.BadExpr:
		return nil, ErrResolve
	}
	return nil, r.errorf(diagnostics.ErrorGenericSemantic, expr.NodeLoc(), "unexpected expression")
}

// ---------------------
// Literals
// ---------------------

func parseDecimal(digits, exponent string) (*big.Rat, bool) {
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false
	}
	res := new(big.Rat).SetInt(n)
	if exponent == "" {
		return res, true
	}
	exp, ok := new(big.Int).SetString(exponent, 10)
	if !ok || !exp.IsInt64() || exp.Int64() > 1024 || exp.Int64() < -1024 {
		return nil, false
	}
	e := exp.Int64()
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(absInt64(e)), nil)
	if e >= 0 {
		return res.Mul(res, new(big.Rat).SetInt(scale)), true
	}
	return res.Quo(res, new(big.Rat).SetInt(scale)), true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *resolver) numberLiteral(e *pt.NumberLiteral, resolveTo ResolveTo) (Expression, error) {
	value, ok := parseDecimal(e.Value, e.Exponent)
	if !ok {
		return nil, r.errorf(diagnostics.ErrorSyntax, e.Loc, "invalid number literal")
	}
	if !value.IsInt() {
		return &RationalNumberLiteral{Loc: e.Loc, Ty: Rational{}, Value: value}, nil
	}
	return r.bigintLiteral(e.Loc, new(big.Int).Set(value.Num()), resolveTo)
}

func (r *resolver) rationalLiteral(e *pt.RationalNumberLiteral, resolveTo ResolveTo) (Expression, error) {
	integer := e.Integer
	if integer == "" {
		integer = "0"
	}
	value, ok := parseDecimal(integer+e.Fraction, e.Exponent)
	if !ok {
		return nil, r.errorf(diagnostics.ErrorSyntax, e.Loc, "invalid number literal")
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(e.Fraction))), nil)
	value.Quo(value, new(big.Rat).SetInt(scale))
	if value.IsInt() {
		return r.bigintLiteral(e.Loc, new(big.Int).Set(value.Num()), resolveTo)
	}
	return &RationalNumberLiteral{Loc: e.Loc, Ty: Rational{}, Value: value}, nil
}

func (r *resolver) hexNumberLiteral(e *pt.HexNumberLiteral, resolveTo ResolveTo) (Expression, error) {
	digits := strings.ReplaceAll(e.Value[2:], "_", "")
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, r.errorf(diagnostics.ErrorSyntax, e.Loc, "invalid hex number literal")
	}
	if addr, isAddr := resolveTo.Type().(Address); isAddr && len(digits) == r.ns.AddressLength*2 {
		return &NumberLiteral{Loc: e.Loc, Ty: addr, Value: n}, nil
	}
	if b, isBytes := resolveTo.Type().(Bytes); isBytes && len(digits) == int(b.N)*2 {
		return &NumberLiteral{Loc: e.Loc, Ty: b, Value: n}, nil
	}
	return r.bigintLiteral(e.Loc, n, resolveTo)
}

// bigintLiteral types an integer literal. An integer type requested by the
// context is used as is, and checked for overflow once the expression is
// complete; otherwise the smallest type holding the value is chosen.
func (r *resolver) bigintLiteral(loc pt.Loc, n *big.Int, resolveTo ResolveTo) (Expression, error) {
	switch ty := resolveTo.Type().(type) {
	case Uint, Int:
		return &NumberLiteral{Loc: loc, Ty: ty, Value: n}, nil
	case Bytes:
		if n.Sign() == 0 {
			return &NumberLiteral{Loc: loc, Ty: ty, Value: n}, nil
		}
	}

	bits := n.BitLen()
	if n.Sign() < 0 {
		bits = signedBits(n)
	}
	if bits > 256 {
		return nil, r.errorf(diagnostics.ErrorNumericOverflow, loc, "%s is too large", n)
	}
	rounded := uint16(max(8, (bits+7)/8*8))
	if n.Sign() < 0 {
		return &NumberLiteral{Loc: loc, Ty: Int{Bits: rounded}, Value: n}, nil
	}
	return &NumberLiteral{Loc: loc, Ty: Uint{Bits: rounded}, Value: n}, nil
}

// ---------------------
// Names
// ---------------------

func (r *resolver) variable(e *pt.Variable) (Expression, error) {
	if r.symtable != nil {
		if v := r.symtable.Find(e.Name); v != nil {
			if r.ctx.Constant {
				return nil, r.errorf(diagnostics.ErrorNotConstant, e.Loc, "cannot read variable '%s' in constant expression", e.Name)
			}
			if r.ctx.Lvalue {
				v.Assigned = true
			} else {
				v.Read = true
			}
			return &Variable{Loc: e.Loc, Ty: v.Ty, VarNo: v.Pos}, nil
		}
	}

	sym := r.ns.Lookup(r.ctx.FileNo, r.ctx.ContractNo, e.Name)
	if sym == nil {
		if e.Name == "this" && r.ctx.ContractNo >= 0 {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'this' not supported")
		}
		candidates := r.ns.SymbolNames(r.ctx.FileNo, r.ctx.ContractNo)
		if r.symtable != nil {
			candidates = append(candidates, r.symtable.Names()...)
		}
		r.diags.Push(diagnostics.NotFound(e.Name, e.Loc, candidates))
		return nil, ErrResolve
	}

	switch sym.Kind {
	case SymbolVariable:
		v := r.ns.Contracts[sym.ContractNo].Variables[sym.No]
		if v.Constant {
			v.Read = true
			return &ConstantVariable{Loc: e.Loc, Ty: v.Ty, ContractNo: sym.ContractNo, VarNo: sym.No}, nil
		}
		if r.ctx.Constant {
			return nil, r.errorf(diagnostics.ErrorNotConstant, e.Loc, "cannot read contract variable '%s' in constant expression", e.Name)
		}
		if r.ctx.ContractNo != sym.ContractNo {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'%s' is a state variable of contract '%s'", e.Name, r.ns.Contracts[sym.ContractNo].Name)
		}
		if r.ctx.Lvalue {
			v.Assigned = true
		} else {
			v.Read = true
		}
		return &StorageVariable{
			Loc:        e.Loc,
			Ty:         StorageRef{Immutable: v.Immutable, Elem: v.Ty},
			ContractNo: sym.ContractNo,
			VarNo:      sym.No,
		}, nil
	case SymbolConstant:
		v := r.ns.Constants[sym.No]
		v.Read = true
		return &ConstantVariable{Loc: e.Loc, Ty: v.Ty, ContractNo: -1, VarNo: sym.No}, nil
	}

	r.diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorInvalidOperation, e.Loc,
		fmt.Sprintf("'%s' is %s, not a value", e.Name, articled(sym.Kind)), sym.Loc, "definition here"))
	return nil, ErrResolve
}

// ---------------------
// Operators
// ---------------------

var binaryOps = map[string]BinaryOp{
	"+": Add, "-": Subtract, "*": Multiply, "/": Divide, "%": Modulo, "**": Power,
	"|": BitwiseOr, "&": BitwiseAnd, "^": BitwiseXor, "<<": ShiftLeft, ">>": ShiftRight,
}

var compareOps = map[string]CompareOp{
	"==": Equal, "!=": NotEqual, "<": Less, "<=": LessEqual, ">": More, ">=": MoreEqual,
}

func (r *resolver) binary(e *pt.BinaryExpr, resolveTo ResolveTo) (Expression, error) {
	if op, ok := binaryOps[e.Op]; ok {
		left, err := r.expression(e.Left, resolveTo)
		if err != nil {
			return nil, err
		}
		right, err := r.expression(e.Right, rightHint(op, left, resolveTo))
		if err != nil {
			return nil, err
		}
		return r.arithmetic(e.Loc, op, left, right)
	}
	if op, ok := compareOps[e.Op]; ok {
		return r.compare(e, op)
	}

	switch e.Op {
	case "&&", "||":
		left, err := r.expression(e.Left, ResolveType(Bool{}))
		if err != nil {
			return nil, err
		}
		left, err = r.cast(left, Bool{}, true)
		if err != nil {
			return nil, err
		}
		right, err := r.expression(e.Right, ResolveType(Bool{}))
		if err != nil {
			return nil, err
		}
		right, err = r.cast(right, Bool{}, true)
		if err != nil {
			return nil, err
		}
		if e.Op == "&&" {
			return &And{Loc: e.Loc, Left: left, Right: right}, nil
		}
		return &Or{Loc: e.Loc, Left: left, Right: right}, nil
	}
	return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, e.Loc, "operator '%s' not supported", e.Op)
}

// rightHint picks the type hint for the right operand. The amount of a
// shift or an exponent does not take the type of the result.
func rightHint(op BinaryOp, left Expression, resolveTo ResolveTo) ResolveTo {
	switch op {
	case ShiftLeft, ShiftRight, Power:
		return ResolveInteger
	}
	if resolveTo.Type() == nil {
		if ty := Deref(left.Type()); IsInteger(ty) {
			if _, isLiteral := left.(*NumberLiteral); !isLiteral {
				return ResolveType(ty)
			}
		}
	}
	return resolveTo
}

func (r *resolver) arithmetic(loc pt.Loc, op BinaryOp, left, right Expression) (Expression, error) {
	lt, rt := Deref(left.Type()), Deref(right.Type())
	_, lRational := lt.(Rational)
	_, rRational := rt.(Rational)
	if lRational || rRational {
		switch op {
		case Add, Subtract, Multiply, Divide, Modulo:
		default:
			return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "operator '%s' not permitted on rational numbers", op)
		}
		if !isConstantRational(left) || !isConstantRational(right) {
			return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "rational numbers only permitted in constant expressions")
		}
		return &Binary{Loc: loc, Ty: Rational{}, Op: op, Left: left, Right: right}, nil
	}

	if op == ShiftLeft || op == ShiftRight {
		return r.shift(loc, op, left, right)
	}

	allowBytes := op == BitwiseOr || op == BitwiseAnd || op == BitwiseXor
	ty, err := r.coerceNumber(loc, lt, rt, allowBytes, false)
	if err != nil {
		return nil, err
	}

	if op == Power {
		if n, ok := right.(*NumberLiteral); ok && n.Value.Sign() < 0 {
			return nil, r.errorf(diagnostics.ErrorShiftRange, right.NodeLoc(), "power cannot take negative number as exponent")
		}
		if IsSigned(rt) {
			return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "exponentiation (**) is not allowed with signed types")
		}
	}

	if left, err = r.cast(left, ty, true); err != nil {
		return nil, err
	}
	if right, err = r.cast(right, ty, true); err != nil {
		return nil, err
	}

	if op == Divide || op == Modulo {
		if n, ok := right.(*NumberLiteral); ok && n.Value.Sign() == 0 {
			return nil, r.errorf(diagnostics.ErrorDivideByZero, loc, "divide by zero")
		}
	}

	return &Binary{
		Loc:       loc,
		Ty:        ty,
		Op:        op,
		Signed:    IsSigned(ty),
		Unchecked: r.ctx.Unchecked,
		Left:      left,
		Right:     right,
	}, nil
}

func isConstantRational(e Expression) bool {
	switch e := e.(type) {
	case *NumberLiteral, *RationalNumberLiteral, *ConstantVariable:
		return true
	case *Binary:
		return isConstantRational(e.Left) && isConstantRational(e.Right)
	case *UnaryMinus:
		return isConstantRational(e.Expr)
	}
	return false
}

func (r *resolver) shift(loc pt.Loc, op BinaryOp, left, right Expression) (Expression, error) {
	ty := Deref(left.Type())
	switch ty.(type) {
	case Uint, Int, Bytes:
	default:
		return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "expression of type '%s' not allowed", r.typeString(ty))
	}
	rt := Deref(right.Type())
	if !IsInteger(rt) {
		return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, right.NodeLoc(), "shift amount of type '%s' not allowed", r.typeString(rt))
	}

	if n, ok := right.(*NumberLiteral); ok {
		if n.Value.Sign() < 0 || n.Value.Cmp(big.NewInt(int64(Bits(ty, r.ns)))) >= 0 {
			dir := "left"
			if op == ShiftRight {
				dir = "right"
			}
			return nil, r.errorf(diagnostics.ErrorShiftRange, loc, "%s shift by %s is not possible", dir, n.Value)
		}
	}

	left, err := r.cast(left, ty, true)
	if err != nil {
		return nil, err
	}
	right, err = r.cast(right, ty, false)
	if err != nil {
		return nil, err
	}
	return &Binary{
		Loc:       loc,
		Ty:        ty,
		Op:        op,
		Signed:    IsSigned(ty),
		Unchecked: r.ctx.Unchecked,
		Left:      left,
		Right:     right,
	}, nil
}

// coerceNumber finds the common type of two operands.
func (r *resolver) coerceNumber(loc pt.Loc, l, rt Type, allowBytes, forCompare bool) (Type, error) {
	switch lt := l.(type) {
	case Uint:
		switch t := rt.(type) {
		case Uint:
			return Uint{Bits: max(lt.Bits, t.Bits)}, nil
		case Int:
			return Int{Bits: max(lt.Bits, t.Bits)}, nil
		case Bytes:
			if allowBytes || forCompare {
				return t, nil
			}
		}
	case Int:
		switch t := rt.(type) {
		case Int:
			return Int{Bits: max(lt.Bits, t.Bits)}, nil
		case Uint:
			return Int{Bits: max(lt.Bits, t.Bits)}, nil
		}
	case Bytes:
		switch t := rt.(type) {
		case Bytes:
			if allowBytes || forCompare {
				return Bytes{N: max(lt.N, t.N)}, nil
			}
		case Uint:
			if allowBytes || forCompare {
				return lt, nil
			}
		}
	case Address:
		if _, ok := rt.(Address); ok && forCompare {
			return Address{}, nil
		}
	case Contract:
		if t, ok := rt.(Contract); ok && forCompare && t.No == lt.No {
			return lt, nil
		}
	case Bool:
		if _, ok := rt.(Bool); ok && forCompare {
			return Bool{}, nil
		}
	}

	if !isNumeric(l) {
		return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "expression of type '%s' not allowed", r.typeString(l))
	}
	if !isNumeric(rt) {
		return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "expression of type '%s' not allowed", r.typeString(rt))
	}
	return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, loc, "types '%s' and '%s' are not compatible", r.typeString(l), r.typeString(rt))
}

func isNumeric(ty Type) bool {
	switch ty.(type) {
	case Uint, Int, Bytes:
		return true
	}
	return false
}

func (r *resolver) compare(e *pt.BinaryExpr, op CompareOp) (Expression, error) {
	left, err := r.expression(e.Left, ResolveInteger)
	if err != nil {
		return nil, err
	}
	right, err := r.expression(e.Right, rightHint(Add, left, ResolveUnknown))
	if err != nil {
		return nil, err
	}

	lt, rt := Deref(left.Type()), Deref(right.Type())
	if op == Equal || op == NotEqual {
		if isStringLike(lt) && isStringLike(rt) {
			l, err := r.stringLocation(left)
			if err != nil {
				return nil, err
			}
			rl, err := r.stringLocation(right)
			if err != nil {
				return nil, err
			}
			var res Expression = &StringCompare{Loc: e.Loc, Left: l, Right: rl}
			if op == NotEqual {
				res = &Not{Loc: e.Loc, Expr: res}
			}
			return res, nil
		}
	} else if _, isBool := lt.(Bool); isBool {
		return nil, r.errorf(diagnostics.ErrorInvalidBinaryOperation, e.Loc, "operator '%s' not permitted on bool", op)
	}

	ty, err := r.coerceNumber(e.Loc, lt, rt, false, true)
	if err != nil {
		return nil, err
	}
	if left, err = r.cast(left, ty, true); err != nil {
		return nil, err
	}
	if right, err = r.cast(right, ty, true); err != nil {
		return nil, err
	}
	return &Compare{Loc: e.Loc, Op: op, Signed: IsSigned(ty), Left: left, Right: right}, nil
}

func isStringLike(ty Type) bool {
	switch ty.(type) {
	case String, DynamicBytes:
		return true
	}
	return false
}

func (r *resolver) stringLocation(e Expression) (StringLocation, error) {
	if lit, ok := e.(*BytesLiteral); ok {
		return StringLocation{CompileTime: lit.Value}, nil
	}
	loaded, err := r.cast(e, Deref(e.Type()), true)
	if err != nil {
		return StringLocation{}, err
	}
	return StringLocation{RunTime: loaded}, nil
}

func (r *resolver) unary(e *pt.UnaryExpr, resolveTo ResolveTo) (Expression, error) {
	switch e.Op {
	case "!":
		expr, err := r.expression(e.Expr, ResolveType(Bool{}))
		if err != nil {
			return nil, err
		}
		expr, err = r.cast(expr, Bool{}, true)
		if err != nil {
			return nil, err
		}
		return &Not{Loc: e.Loc, Expr: expr}, nil

	case "~":
		expr, err := r.expression(e.Expr, resolveTo)
		if err != nil {
			return nil, err
		}
		ty := Deref(expr.Type())
		if !isNumeric(ty) {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "expression of type '%s' not allowed", r.typeString(ty))
		}
		expr, err = r.cast(expr, ty, true)
		if err != nil {
			return nil, err
		}
		return &Complement{Loc: e.Loc, Ty: ty, Expr: expr}, nil

	case "-":
		expr, err := r.expression(e.Expr, resolveTo)
		if err != nil {
			return nil, err
		}
		switch lit := expr.(type) {
		case *NumberLiteral:
			return r.bigintLiteral(e.Loc, new(big.Int).Neg(lit.Value), resolveTo)
		case *RationalNumberLiteral:
			return &RationalNumberLiteral{Loc: e.Loc, Ty: lit.Ty, Value: new(big.Rat).Neg(lit.Value)}, nil
		}
		ty := Deref(expr.Type())
		switch ty.(type) {
		case Int:
		case Uint:
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "unary minus not permitted on unsigned type")
		case Rational:
			return &UnaryMinus{Loc: e.Loc, Ty: ty, Expr: expr}, nil
		default:
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "expression of type '%s' not allowed", r.typeString(ty))
		}
		expr, err = r.cast(expr, ty, true)
		if err != nil {
			return nil, err
		}
		return &UnaryMinus{Loc: e.Loc, Ty: ty, Unchecked: r.ctx.Unchecked, Expr: expr}, nil

	case "+":
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "unary plus not permitted")
	}
	return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "operator '%s' not supported", e.Op)
}

func (r *resolver) conditional(e *pt.ConditionalOperator, resolveTo ResolveTo) (Expression, error) {
	cond, err := r.expression(e.Cond, ResolveType(Bool{}))
	if err != nil {
		return nil, err
	}
	if cond, err = r.cast(cond, Bool{}, true); err != nil {
		return nil, err
	}
	left, err := r.expression(e.True, resolveTo)
	if err != nil {
		return nil, err
	}
	right, err := r.expression(e.False, resolveTo)
	if err != nil {
		return nil, err
	}

	lt, rt := Deref(left.Type()), Deref(right.Type())
	ty := lt
	if lt != rt {
		if ty, err = r.coerceNumber(e.Loc, lt, rt, false, false); err != nil {
			return nil, err
		}
	}
	if left, err = r.cast(left, ty, true); err != nil {
		return nil, err
	}
	if right, err = r.cast(right, ty, true); err != nil {
		return nil, err
	}
	return &ConditionalOperator{Loc: e.Loc, Ty: ty, Cond: cond, True: left, False: right}, nil
}

// ---------------------
// Assignment
// ---------------------

// lvalue resolves the target of an assignment and returns the type stored
// into it.
func (r *resolver) lvalue(expr pt.Expression) (Expression, Type, error) {
	restore := r.ctx.SetLvalue(true)
	target, err := r.expression(expr, ResolveUnknown)
	restore()
	if err != nil {
		return nil, nil, err
	}

	switch t := target.(type) {
	case *Variable:
		return target, t.Ty, nil
	case *StorageVariable:
		v := r.ns.Contracts[t.ContractNo].Variables[t.VarNo]
		if v.Immutable && !r.inConstructor() {
			return nil, nil, r.errorf(diagnostics.ErrorInvalidAssignment, t.Loc, "cannot assign to immutable '%s' outside of constructor", v.Name)
		}
		return target, v.Ty, nil
	case *ConstantVariable:
		name := r.ns.constantName(t.ContractNo, t.VarNo)
		return nil, nil, r.errorf(diagnostics.ErrorInvalidAssignment, t.Loc, "cannot assign to constant '%s'", name)
	}

	switch ty := target.Type().(type) {
	case StorageRef:
		r.markAssigned(target)
		return target, ty.Elem, nil
	case Ref:
		r.markAssigned(target)
		return target, ty.Elem, nil
	}
	return nil, nil, r.errorf(diagnostics.ErrorInvalidAssignment, target.NodeLoc(), "expression is not assignable")
}

func (r *resolver) inConstructor() bool {
	return r.ctx.FunctionNo >= 0 && r.ns.Functions[r.ctx.FunctionNo].IsConstructor()
}

// markAssigned marks the variable at the root of a subscript or member
// access as assigned.
func (r *resolver) markAssigned(e Expression) {
	for {
		switch t := e.(type) {
		case *Subscript:
			e = t.Array
			continue
		case *StructMember:
			e = t.Expr
			continue
		case *Load:
			e = t.Expr
			continue
		case *StorageLoad:
			e = t.Expr
			continue
		case *Variable:
			if r.symtable != nil {
				r.symtable.Vars[t.VarNo].Assigned = true
			}
		case *StorageVariable:
			r.ns.Contracts[t.ContractNo].Variables[t.VarNo].Assigned = true
		}
		return
	}
}

func (ns *Namespace) constantName(contract, varNo int) string {
	if contract >= 0 {
		return ns.Contracts[contract].Variables[varNo].Name
	}
	return ns.Constants[varNo].Name
}

func (r *resolver) assign(e *pt.Assign) (Expression, error) {
	target, ty, err := r.lvalue(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Op == "=" {
		right, err := r.expression(e.Right, ResolveType(ty))
		if err != nil {
			return nil, err
		}
		CheckConstantOverflow(right, r.ns, r.diags)
		if right, err = CastTo(right, e.Right.NodeLoc(), ty, true, r.ns, r.diags); err != nil {
			return nil, err
		}
		return &Assign{Loc: e.Loc, Ty: ty, Left: target, Right: right}, nil
	}

	op, ok := binaryOps[strings.TrimSuffix(e.Op, "=")]
	if !ok {
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "operator '%s' not supported", e.Op)
	}
	if !isNumeric(ty) {
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "assignment operator '%s' not allowed on type '%s'", e.Op, r.typeString(ty))
	}

	hint := ResolveType(ty)
	if op == ShiftLeft || op == ShiftRight || op == Power {
		hint = ResolveInteger
	}
	right, err := r.expression(e.Right, hint)
	if err != nil {
		return nil, err
	}
	CheckConstantOverflow(right, r.ns, r.diags)

	current, err := CastTo(target, e.Left.NodeLoc(), ty, true, r.ns, r.diags)
	if err != nil {
		return nil, err
	}
	value, err := r.arithmetic(e.Loc, op, current, right)
	if err != nil {
		return nil, err
	}
	if value, err = CastTo(value, e.Loc, ty, true, r.ns, r.diags); err != nil {
		return nil, err
	}
	return &Assign{Loc: e.Loc, Ty: ty, Left: target, Right: value}, nil
}

func (r *resolver) incDec(e *pt.IncDec) (Expression, error) {
	target, ty, err := r.lvalue(e.Expr)
	if err != nil {
		return nil, err
	}
	if !IsInteger(ty) {
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'%s' not allowed on type '%s'", e.Op, r.typeString(ty))
	}
	if v, ok := target.(*Variable); ok && r.symtable != nil {
		r.symtable.Vars[v.VarNo].Read = true
	}

	var op IncDecOp
	switch {
	case e.Op == "++" && e.Prefix:
		op = PreIncrement
	case e.Op == "--" && e.Prefix:
		op = PreDecrement
	case e.Op == "++":
		op = PostIncrement
	default:
		op = PostDecrement
	}
	return &IncDec{Loc: e.Loc, Ty: ty, Op: op, Unchecked: r.ctx.Unchecked, Expr: target}, nil
}

// ---------------------
// Lists and literals
// ---------------------

func (r *resolver) list(e *pt.List, resolveTo ResolveTo) (Expression, error) {
	items := make([]Expression, 0, len(e.Entries))
	for _, entry := range e.Entries {
		if entry.Param == nil {
			return nil, r.errorf(diagnostics.ErrorSyntax, entry.Loc, "stray comma")
		}
		if entry.Param.Name != nil || entry.Param.Storage != nil {
			return nil, r.errorf(diagnostics.ErrorSyntax, entry.Loc, "variable declaration not allowed in expression")
		}
		item, err := r.expression(entry.Param.Ty, ResolveUnknown)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, r.errorf(diagnostics.ErrorSyntax, e.Loc, "empty tuple not allowed")
	}
	return &List{Loc: e.Loc, Items: items}, nil
}

func (r *resolver) arrayLiteral(e *pt.ArrayLiteral, resolveTo ResolveTo) (Expression, error) {
	if len(e.Elems) == 0 {
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "array requires at least one element")
	}

	elemHint := ResolveUnknown
	if arr, ok := resolveTo.Type().(Array); ok {
		elemHint = ResolveType(arr.Elem)
	}

	values := make([]Expression, 0, len(e.Elems))
	for _, elem := range e.Elems {
		v, err := r.expression(elem, elemHint)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	// the first element decides the type, widened to fit the others
	elemTy := Deref(values[0].Type())
	for _, v := range values[1:] {
		ty := Deref(v.Type())
		if ty == elemTy {
			continue
		}
		if IsInteger(ty) && IsInteger(elemTy) {
			common, err := r.coerceNumber(v.NodeLoc(), elemTy, ty, false, false)
			if err != nil {
				return nil, err
			}
			elemTy = common
			continue
		}
		return nil, r.errorf(diagnostics.ErrorTypeMismatch, v.NodeLoc(),
			"array elements should be identical type, '%s' and '%s' differ", r.typeString(elemTy), r.typeString(ty))
	}

	for i, v := range values {
		cast, err := r.cast(v, elemTy, true)
		if err != nil {
			return nil, err
		}
		values[i] = cast
	}

	dims := []uint64{uint64(len(values))}
	if inner, ok := elemTy.(Array); ok && !inner.Dynamic {
		dims = append(dims, inner.Len)
	}
	return &ArrayLiteral{Loc: e.Loc, Ty: FixedArray(elemTy, uint64(len(values))), Dims: dims, Values: values}, nil
}
