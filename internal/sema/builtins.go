package sema

import (
	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

type builtinFunction struct {
	kind     BuiltinKind
	params   []Type
	optional int
	returns  []Type
	// constant builtins may appear in constant initializers
	constant bool
	chain    *Chain
}

var polkadotOnly = ChainPolkadot

var builtinFunctions = map[string]builtinFunction{
	"keccak256":    {kind: BuiltinKeccak256, params: []Type{DynamicBytes{}}, returns: []Type{Bytes{N: 32}}, constant: true},
	"sha256":       {kind: BuiltinSha256, params: []Type{DynamicBytes{}}, returns: []Type{Bytes{N: 32}}, constant: true},
	"ripemd160":    {kind: BuiltinRipemd160, params: []Type{DynamicBytes{}}, returns: []Type{Bytes{N: 20}}, constant: true},
	"blake2_128":   {kind: BuiltinBlake2_128, params: []Type{DynamicBytes{}}, returns: []Type{Bytes{N: 16}}, constant: true, chain: &polkadotOnly},
	"blake2_256":   {kind: BuiltinBlake2_256, params: []Type{DynamicBytes{}}, returns: []Type{Bytes{N: 32}}, constant: true, chain: &polkadotOnly},
	"assert":       {kind: BuiltinAssert, params: []Type{Bool{}}},
	"require":      {kind: BuiltinRequire, params: []Type{Bool{}, String{}}, optional: 1},
	"print":        {kind: BuiltinPrint, params: []Type{String{}}},
	"selfdestruct": {kind: BuiltinSelfDestruct, params: []Type{Address{Payable: true}}, returns: []Type{Unreachable{}}},
	"gasleft":      {kind: BuiltinGasleft, returns: []Type{Uint{Bits: 64}}},
	"addmod":       {kind: BuiltinAddMod, params: []Type{uint256, uint256, uint256}, returns: []Type{uint256}},
	"mulmod":       {kind: BuiltinMulMod, params: []Type{uint256, uint256, uint256}, returns: []Type{uint256}},
}

// isBuiltinName is true for builtin functions not hidden by a declaration.
func (r *resolver) isBuiltinName(name string) bool {
	if _, ok := builtinFunctions[name]; !ok {
		return false
	}
	return !r.isShadowed(name)
}

func (r *resolver) builtinCall(loc pt.Loc, name string, args []pt.Expression, resolveTo ResolveTo) (Expression, error) {
	b := builtinFunctions[name]

	if b.chain != nil && !r.ns.Target.Is(*b.chain) {
		return nil, r.errorf(diagnostics.ErrorTargetUnsupported, loc, "builtin '%s' is only available on %s", name, Target{Chain: *b.chain})
	}
	if r.ctx.Constant && !b.constant {
		return nil, r.errorf(diagnostics.ErrorNotConstant, loc, "builtin '%s' is not allowed in constant expression", name)
	}
	if b.kind == BuiltinSelfDestruct && r.ns.Target.Is(ChainSolana) {
		return nil, r.errorf(diagnostics.ErrorTargetUnsupported, loc, "selfdestruct is not available on Solana")
	}

	minArgs := len(b.params) - b.optional
	if len(args) < minArgs || len(args) > len(b.params) {
		if b.optional > 0 {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "builtin function '%s' expects %d or %d arguments, %d provided", name, minArgs, len(b.params), len(args))
		}
		return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "builtin function '%s' expects %d arguments, %d provided", name, len(b.params), len(args))
	}

	resolved := make([]Expression, 0, len(args))
	for i, arg := range args {
		v, err := r.expression(arg, ResolveType(b.params[i]))
		if err != nil {
			return nil, err
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		if v, err = CastTo(v, arg.NodeLoc(), b.params[i], true, r.ns, r.diags); err != nil {
			return nil, err
		}
		resolved = append(resolved, v)
	}

	return &Builtin{Loc: loc, Tys: b.returns, Kind: b.kind, Args: resolved}, nil
}

func (r *resolver) abiCall(loc pt.Loc, member pt.Identifier, args []pt.Expression, resolveTo ResolveTo) (Expression, error) {
	if r.ctx.Constant {
		return nil, r.errorf(diagnostics.ErrorNotConstant, loc, "abi.%s is not allowed in constant expression", member.Name)
	}

	switch member.Name {
	case "encode", "encodePacked":
		kind := BuiltinAbiEncode
		if member.Name == "encodePacked" {
			kind = BuiltinAbiEncodePacked
		}
		resolved := make([]Expression, 0, len(args))
		for _, arg := range args {
			v, err := r.expression(arg, ResolveUnknown)
			if err != nil {
				return nil, err
			}
			ty := Deref(v.Type())
			switch ty.(type) {
			case Void, Unreachable, Mapping, Rational:
				return nil, r.errorf(diagnostics.ErrorTypeMismatch, arg.NodeLoc(), "type '%s' cannot be abi encoded", r.typeString(ty))
			}
			CheckConstantOverflow(v, r.ns, r.diags)
			if v, err = r.cast(v, ty, true); err != nil {
				return nil, err
			}
			resolved = append(resolved, v)
		}
		return &Builtin{Loc: loc, Tys: []Type{DynamicBytes{}}, Kind: kind, Args: resolved}, nil

	case "decode":
		if len(args) != 2 {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "function expects 2 arguments, %d provided", len(args))
		}
		data, err := r.expression(args[0], ResolveType(DynamicBytes{}))
		if err != nil {
			return nil, err
		}
		if data, err = CastTo(data, args[0].NodeLoc(), DynamicBytes{}, true, r.ns, r.diags); err != nil {
			return nil, err
		}
		tys, err := r.typeList(args[1])
		if err != nil {
			return nil, err
		}
		return &Builtin{Loc: loc, Tys: tys, Kind: BuiltinAbiDecode, Args: []Expression{data}}, nil
	}

	return nil, r.errorf(diagnostics.ErrorUndefinedFunction, member.Loc, "unknown function or type 'abi.%s'", member.Name)
}

// typeList resolves the second argument of abi.decode, a type or a
// parenthesized list of types.
func (r *resolver) typeList(expr pt.Expression) ([]Type, error) {
	expr = pt.RemoveParenthesis(expr)
	var exprs []pt.Expression
	if l, ok := expr.(*pt.List); ok {
		for _, entry := range l.Entries {
			if entry.Param == nil {
				return nil, r.errorf(diagnostics.ErrorSyntax, entry.Loc, "stray comma")
			}
			if entry.Param.Name != nil {
				return nil, r.errorf(diagnostics.ErrorSyntax, entry.Param.Name.Loc, "unexpected identifier '%s' in type", entry.Param.Name.Name)
			}
			exprs = append(exprs, entry.Param.Ty)
		}
	} else {
		exprs = []pt.Expression{expr}
	}

	tys := make([]Type, 0, len(exprs))
	for _, e := range exprs {
		ty, err := r.ns.ResolveType(r.ctx.FileNo, r.ctx.ContractNo, e, r.diags)
		if err != nil {
			return nil, err
		}
		if ContainsMapping(ty, r.ns) {
			return nil, r.errorf(diagnostics.ErrorInvalidType, e.NodeLoc(), "type '%s' cannot be abi decoded", r.typeString(ty))
		}
		tys = append(tys, ty)
	}
	return tys, nil
}

// arrayMethod resolves push and pop on dynamic arrays and bytes.
func (r *resolver) arrayMethod(loc pt.Loc, m *pt.MemberAccess, args []pt.Expression) (Expression, error) {
	if r.ctx.Constant {
		return nil, r.errorf(diagnostics.ErrorNotConstant, loc, "method '%s' not allowed in constant expression", m.Member.Name)
	}

	restore := r.ctx.SetLvalue(true)
	array, err := r.expression(m.Expr, ResolveUnknown)
	restore()
	if err != nil {
		return nil, err
	}
	r.markAssigned(array)

	arrayTy := array.Type()
	var elem Type
	switch ty := Deref(arrayTy).(type) {
	case Array:
		if !ty.Dynamic {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, m.Member.Loc, "method '%s' not allowed on fixed length array", m.Member.Name)
		}
		elem = ty.Elem
	case DynamicBytes:
		elem = Bytes{N: 1}
	default:
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, m.Member.Loc, "method '%s' does not exist on type '%s'", m.Member.Name, r.typeString(ty))
	}

	_, inStorage := arrayTy.(StorageRef)
	if !inStorage {
		if ref, isRef := arrayTy.(Ref); isRef {
			array = &Load{Loc: array.NodeLoc(), Ty: ref.Elem, Expr: array}
		}
		if r.ns.Target.Is(ChainEVM) {
			return nil, r.errorf(diagnostics.ErrorTargetUnsupported, loc, "method '%s' not allowed on memory arrays on EVM", m.Member.Name)
		}
	}

	if m.Member.Name == "pop" {
		if len(args) != 0 {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "method 'pop()' does not take any arguments")
		}
		return &Builtin{Loc: loc, Tys: []Type{elem}, Kind: BuiltinArrayPop, Args: []Expression{array}}, nil
	}

	switch len(args) {
	case 0:
		if !inStorage {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "method 'push()' on memory array requires a value")
		}
		return &Builtin{Loc: loc, Tys: []Type{StorageRef{Elem: elem}}, Kind: BuiltinArrayPush, Args: []Expression{array}}, nil
	case 1:
		v, err := r.expression(args[0], ResolveType(elem))
		if err != nil {
			return nil, err
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		if v, err = CastTo(v, args[0].NodeLoc(), elem, true, r.ns, r.diags); err != nil {
			return nil, err
		}
		return &Builtin{Loc: loc, Kind: BuiltinArrayPush, Args: []Expression{array, v}}, nil
	}
	return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "method 'push()' takes at most 1 argument")
}
