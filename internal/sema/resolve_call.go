package sema

import (
	"fmt"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

func (r *resolver) functionCall(e *pt.FunctionCall, resolveTo ResolveTo) (Expression, error) {
	callee := pt.RemoveParenthesis(e.Callee)

	if n, ok := callee.(*pt.New); ok {
		return r.newExpression(e.Loc, n, e.Args)
	}

	if r.ns.IsType(r.ctx.FileNo, r.ctx.ContractNo, callee) {
		ty, err := r.ns.ResolveType(r.ctx.FileNo, r.ctx.ContractNo, callee, r.diags)
		if err != nil {
			return nil, err
		}
		if s, ok := ty.(Struct); ok {
			return r.structLiteral(e.Loc, s, e.Args)
		}
		return r.typeCast(e.Loc, ty, e.Args)
	}

	switch c := callee.(type) {
	case *pt.Variable:
		if r.isBuiltinName(c.Name) {
			return r.builtinCall(e.Loc, c.Name, e.Args, resolveTo)
		}
		sym := r.lookupCallable(c.Name, c.Loc)
		if sym == nil {
			return nil, ErrResolve
		}
		return r.internalCall(e.Loc, c.Name, sym, positional(e.Args))

	case *pt.MemberAccess:
		return r.methodCall(e.Loc, c, positional(e.Args), resolveTo)
	}

	return nil, r.errorf(diagnostics.ErrorUndefinedFunction, callee.NodeLoc(), "expression is not a function")
}

func (r *resolver) namedFunctionCall(e *pt.NamedFunctionCall, resolveTo ResolveTo) (Expression, error) {
	callee := pt.RemoveParenthesis(e.Callee)

	if r.ns.IsType(r.ctx.FileNo, r.ctx.ContractNo, callee) {
		ty, err := r.ns.ResolveType(r.ctx.FileNo, r.ctx.ContractNo, callee, r.diags)
		if err != nil {
			return nil, err
		}
		s, ok := ty.(Struct)
		if !ok {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, e.Loc, "type cast cannot take named arguments")
		}
		return r.namedStructLiteral(e.Loc, s, e.Args)
	}

	switch c := callee.(type) {
	case *pt.Variable:
		if r.isBuiltinName(c.Name) {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, e.Loc, "builtin function '%s' cannot be called with named arguments", c.Name)
		}
		sym := r.lookupCallable(c.Name, c.Loc)
		if sym == nil {
			return nil, ErrResolve
		}
		return r.internalCall(e.Loc, c.Name, sym, named(e.Args))
	case *pt.MemberAccess:
		return r.methodCall(e.Loc, c, named(e.Args), resolveTo)
	}
	return nil, r.errorf(diagnostics.ErrorUndefinedFunction, callee.NodeLoc(), "expression is not a function")
}

// callArgs are the arguments of a call written either positionally or as
// {name: value} pairs.
type callArgs struct {
	positional []pt.Expression
	named      []pt.NamedArgument
	isNamed    bool
}

func positional(args []pt.Expression) callArgs { return callArgs{positional: args} }

func named(args []pt.NamedArgument) callArgs { return callArgs{named: args, isNamed: true} }

// lookupCallable finds a function symbol, reporting anything else.
func (r *resolver) lookupCallable(name string, loc pt.Loc) *Symbol {
	if r.symtable != nil && r.symtable.Find(name) != nil {
		r.diags.Push(diagnostics.ErrorAt(diagnostics.ErrorUndefinedFunction, loc, fmt.Sprintf("'%s' is a variable, not a function", name)))
		return nil
	}
	sym := r.ns.Lookup(r.ctx.FileNo, r.ctx.ContractNo, name)
	if sym == nil {
		candidates := r.ns.SymbolNames(r.ctx.FileNo, r.ctx.ContractNo)
		d := diagnostics.NotFound(name, loc, candidates)
		d.Code = diagnostics.ErrorUndefinedFunction
		r.diags.Push(d)
		return nil
	}
	switch sym.Kind {
	case SymbolFunction:
		return sym
	case SymbolEvent:
		r.diags.Push(diagnostics.NewError(diagnostics.ErrorUndefinedFunction, loc,
			fmt.Sprintf("'%s' is an event; use 'emit %s(...)'", name, name)).
			WithNote(sym.Loc, "definition here").Build())
	case SymbolError:
		r.diags.Push(diagnostics.NewError(diagnostics.ErrorUndefinedFunction, loc,
			fmt.Sprintf("'%s' is an error; use 'revert %s(...)'", name, name)).
			WithNote(sym.Loc, "definition here").Build())
	default:
		r.diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorUndefinedFunction, loc,
			fmt.Sprintf("'%s' is %s, not a function", name, articled(sym.Kind)), sym.Loc, "definition here"))
	}
	return nil
}

// matchArgs resolves args against params. Named arguments are put into
// parameter order. Diagnostics go to diags, which is a scratch list during
// overload resolution.
func (r *resolver) matchArgs(loc pt.Loc, what string, params []Parameter, args callArgs, diags *diagnostics.List) ([]Expression, bool) {
	ordered := args.positional
	start := len(*diags)

	if args.isNamed {
		byName := make(map[string]pt.NamedArgument, len(args.named))
		for _, a := range args.named {
			if prev, dup := byName[a.Name.Name]; dup {
				diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorDuplicateField, a.Name.Loc,
					fmt.Sprintf("duplicate argument with name '%s'", a.Name.Name), prev.Name.Loc, "previous argument"))
				return nil, false
			}
			byName[a.Name.Name] = a
		}
		if len(args.named) != len(params) {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidArguments, loc,
				fmt.Sprintf("%s expects %d arguments, %d provided", what, len(params), len(args.named))))
			return nil, false
		}
		ordered = make([]pt.Expression, len(params))
		for i, p := range params {
			a, ok := byName[p.Name()]
			if !ok || !p.HasName() {
				diags.Push(diagnostics.ErrorAt(diagnostics.ErrorMissingField, loc,
					fmt.Sprintf("missing argument '%s' to %s", p.Name(), what)))
				return nil, false
			}
			ordered[i] = a.Expr
		}
	} else if len(ordered) != len(params) {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidArguments, loc,
			fmt.Sprintf("%s expects %d arguments, %d provided", what, len(params), len(ordered))))
		return nil, false
	}

	saved := r.diags
	r.diags = diags
	defer func() { r.diags = saved }()

	res := make([]Expression, 0, len(params))
	ok := true
	for i, arg := range ordered {
		v, err := r.expression(arg, ResolveType(params[i].Ty))
		if err != nil {
			ok = false
			continue
		}
		CheckConstantOverflow(v, r.ns, diags)
		v, err = CastTo(v, arg.NodeLoc(), params[i].Ty, true, r.ns, diags)
		if err != nil {
			ok = false
			continue
		}
		res = append(res, v)
	}
	return res, ok && !(*diags)[start:].AnyErrors()
}

// internalCall resolves a call to a function by overload: every candidate
// whose parameters accept the arguments is a match, and exactly one must
// match.
func (r *resolver) internalCall(loc pt.Loc, name string, sym *Symbol, args callArgs) (Expression, error) {
	if r.ctx.Constant {
		return nil, r.errorf(diagnostics.ErrorNotConstant, loc, "cannot call function in constant expression")
	}

	type match struct {
		no    int
		args  []Expression
		diags diagnostics.List
	}
	var matches []match
	var failed []diagnostics.List
	var candidates []*Function

	for _, o := range sym.Overloads {
		f := r.ns.Functions[o.No]
		if f.IsModifier() || f.IsConstructor() {
			continue
		}
		candidates = append(candidates, f)
		var scratch diagnostics.List
		resolved, ok := r.matchArgs(loc, fmt.Sprintf("function '%s'", name), f.Params, args, &scratch)
		if ok {
			matches = append(matches, match{no: o.No, args: resolved, diags: scratch})
		} else {
			failed = append(failed, scratch)
		}
	}

	switch {
	case len(matches) == 1:
		m := matches[0]
		r.diags.Extend(m.diags)
		f := r.ns.Functions[m.no]
		if f.ContractNo >= 0 && f.ContractNo != r.ctx.ContractNo && r.ns.Contracts[f.ContractNo].Kind != pt.KindLibrary {
			return nil, r.errorf(diagnostics.ErrorUndefinedFunction, loc, "function '%s' belongs to contract '%s'", name, r.ns.Contracts[f.ContractNo].Name)
		}
		return &InternalFunctionCall{Loc: loc, Returns: f.ReturnTypes(), FunctionNo: m.no, Args: m.args}, nil

	case len(matches) > 1:
		b := diagnostics.NewError(diagnostics.ErrorUndefinedFunction, loc, "function call can be resolved to multiple functions")
		for _, m := range matches {
			b.WithNote(r.ns.Functions[m.no].LocPrototype, "candidate function")
		}
		r.diags.Push(b.Build())
		return nil, ErrResolve

	case len(candidates) == 1:
		r.diags.Extend(failed[0])
		return nil, ErrResolve

	case len(candidates) == 0:
		return nil, r.errorf(diagnostics.ErrorUndefinedFunction, loc, "'%s' cannot be called", name)
	}

	b := diagnostics.NewError(diagnostics.ErrorUndefinedFunction, loc, "cannot find overloaded function which matches signature")
	for _, f := range candidates {
		b.WithNote(f.LocPrototype, "candidate function")
	}
	r.diags.Push(b.Build())
	return nil, ErrResolve
}

// methodCall handles calls through a member access: library and contract
// functions, external calls, array methods, abi.* and concat.
func (r *resolver) methodCall(loc pt.Loc, m *pt.MemberAccess, args callArgs, resolveTo ResolveTo) (Expression, error) {
	switch base := m.Expr.(type) {
	case *pt.Variable:
		if base.Name == "abi" && !r.isShadowed("abi") {
			if args.isNamed {
				return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "abi.%s cannot be called with named arguments", m.Member.Name)
			}
			return r.abiCall(loc, m.Member, args.positional, resolveTo)
		}
		if !r.isShadowed(base.Name) {
			if no, ok := r.ns.ResolveContract(r.ctx.FileNo, pt.Identifier{Loc: base.Loc, Name: base.Name}); ok {
				sym := r.ns.Lookup(r.ctx.FileNo, no, m.Member.Name)
				if sym == nil || sym.ContractNo != no || sym.Kind != SymbolFunction {
					return nil, r.errorf(diagnostics.ErrorUndefinedFunction, m.Member.Loc,
						"contract '%s' does not have a function called '%s'", base.Name, m.Member.Name)
				}
				if r.ns.Contracts[no].Kind != pt.KindLibrary && no != r.ctx.ContractNo {
					return nil, r.errorf(diagnostics.ErrorUndefinedFunction, loc,
						"function '%s' of contract '%s' can only be called through an instance", m.Member.Name, base.Name)
				}
				return r.internalCall(loc, m.Member.Name, sym, args)
			}
		}
	case *pt.ElementaryType:
		if m.Member.Name == "concat" && (base.Name == "string" || base.Name == "bytes") {
			if args.isNamed {
				return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "%s.concat cannot be called with named arguments", base.Name)
			}
			var ty Type = String{}
			if base.Name == "bytes" {
				ty = DynamicBytes{}
			}
			return r.concat(loc, ty, args.positional)
		}
	}

	switch m.Member.Name {
	case "push", "pop":
		if !args.isNamed {
			return r.arrayMethod(loc, m, args.positional)
		}
	}

	if r.ctx.Constant {
		return nil, r.errorf(diagnostics.ErrorNotConstant, loc, "cannot call function in constant expression")
	}

	restore := r.ctx.SetLvalue(false)
	target, err := r.expression(m.Expr, ResolveUnknown)
	restore()
	if err != nil {
		return nil, err
	}

	c, ok := Deref(target.Type()).(Contract)
	if !ok {
		return nil, r.errorf(diagnostics.ErrorUndefinedFunction, m.Member.Loc,
			"method '%s' does not exist on type '%s'", m.Member.Name, r.typeString(Deref(target.Type())))
	}
	address, err := r.cast(target, c, true)
	if err != nil {
		return nil, err
	}
	return r.externalCall(loc, c.No, m.Member, address, args)
}

func (r *resolver) isShadowed(name string) bool {
	if r.symtable != nil && r.symtable.Find(name) != nil {
		return true
	}
	return r.ns.Lookup(r.ctx.FileNo, r.ctx.ContractNo, name) != nil
}

func (r *resolver) externalCall(loc pt.Loc, contract int, member pt.Identifier, address Expression, args callArgs) (Expression, error) {
	name := r.ns.Contracts[contract].Name
	sym := r.ns.Lookup(r.ns.Contracts[contract].FileNo, contract, member.Name)
	if sym == nil || sym.Kind != SymbolFunction || sym.ContractNo != contract {
		return nil, r.errorf(diagnostics.ErrorUndefinedFunction, member.Loc, "contract '%s' does not have a function called '%s'", name, member.Name)
	}

	var matches []int
	var resolved [][]Expression
	var lastErrors diagnostics.List
	for _, o := range sym.Overloads {
		f := r.ns.Functions[o.No]
		if f.Visibility != Public && f.Visibility != External {
			continue
		}
		var scratch diagnostics.List
		a, ok := r.matchArgs(loc, fmt.Sprintf("function '%s'", member.Name), f.Params, args, &scratch)
		if ok {
			matches = append(matches, o.No)
			resolved = append(resolved, a)
		} else {
			lastErrors = scratch
		}
	}

	switch len(matches) {
	case 1:
		f := r.ns.Functions[matches[0]]
		return &ExternalFunctionCall{
			Loc:        loc,
			Returns:    f.ReturnTypes(),
			FunctionNo: matches[0],
			Address:    address,
			Args:       resolved[0],
		}, nil
	case 0:
		if len(sym.Overloads) == 1 && lastErrors != nil {
			r.diags.Extend(lastErrors)
			return nil, ErrResolve
		}
		return nil, r.errorf(diagnostics.ErrorUndefinedFunction, loc, "cannot find overloaded function which matches signature")
	}
	b := diagnostics.NewError(diagnostics.ErrorUndefinedFunction, loc, "function call can be resolved to multiple functions")
	for _, no := range matches {
		b.WithNote(r.ns.Functions[no].LocPrototype, "candidate function")
	}
	r.diags.Push(b.Build())
	return nil, ErrResolve
}

// newExpression handles new C(...), new T[](n) and new bytes(n).
func (r *resolver) newExpression(loc pt.Loc, n *pt.New, args []pt.Expression) (Expression, error) {
	if r.ctx.Constant {
		return nil, r.errorf(diagnostics.ErrorNotConstant, loc, "new not allowed in constant expression")
	}
	ty, err := r.ns.ResolveType(r.ctx.FileNo, r.ctx.ContractNo, n.Expr, r.diags)
	if err != nil {
		return nil, err
	}

	switch t := ty.(type) {
	case Contract:
		decl := r.ns.Contracts[t.No]
		if decl.Kind != pt.KindContract {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, loc, "cannot construct '%s' of type '%s'", decl.Name, decl.Kind)
		}
		if t.No == r.ctx.ContractNo {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, loc, "new cannot construct current contract '%s'", decl.Name)
		}
		var ctor *Function
		for _, no := range decl.Functions {
			if f := r.ns.Functions[no]; f.IsConstructor() {
				ctor = f
			}
		}
		var params []Parameter
		if ctor != nil {
			params = ctor.Params
		}
		resolved, ok := r.matchArgs(loc, "constructor", params, positional(args), r.diags)
		if !ok {
			return nil, ErrResolve
		}
		return &Constructor{Loc: loc, ContractNo: t.No, Args: resolved}, nil

	case Array, DynamicBytes, String:
		if arr, ok := t.(Array); ok && !arr.Dynamic {
			return nil, r.errorf(diagnostics.ErrorInvalidOperation, loc, "new cannot allocate fixed array type '%s'", r.typeString(ty))
		}
		if len(args) != 1 {
			return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "new dynamic array should have a single length argument")
		}
		length, err := r.expression(args[0], ResolveType(Uint{Bits: 32}))
		if err != nil {
			return nil, err
		}
		if !IsInteger(Deref(length.Type())) || IsSigned(Deref(length.Type())) {
			return nil, r.errorf(diagnostics.ErrorTypeMismatch, args[0].NodeLoc(), "new size argument must be unsigned integer, not '%s'", r.typeString(Deref(length.Type())))
		}
		CheckConstantOverflow(length, r.ns, r.diags)
		if length, err = CastTo(length, args[0].NodeLoc(), Uint{Bits: 32}, false, r.ns, r.diags); err != nil {
			return nil, err
		}
		return &AllocDynamicArray{Loc: loc, Ty: ty, Length: length}, nil
	}
	return nil, r.errorf(diagnostics.ErrorInvalidOperation, loc, "new cannot allocate type '%s'", r.typeString(ty))
}

func (r *resolver) typeCast(loc pt.Loc, to Type, args []pt.Expression) (Expression, error) {
	if len(args) != 1 {
		return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "type casts expect one argument, %d provided", len(args))
	}
	hint := ResolveUnknown
	if _, ok := to.(Address); ok {
		hint = ResolveType(to)
	}
	if b, ok := to.(Bytes); ok {
		hint = ResolveType(b)
	}
	v, err := r.expression(args[0], hint)
	if err != nil {
		return nil, err
	}
	if lit, ok := v.(*NumberLiteral); ok && IsInteger(to) {
		if msg := OverflowMessage(lit.Value, to, r.ns); msg != "" {
			r.diags.Push(diagnostics.NumericOverflow(lit.Loc, msg))
			return nil, ErrResolve
		}
	}
	return CastTo(v, loc, to, false, r.ns, r.diags)
}

func (r *resolver) structLiteral(loc pt.Loc, s Struct, args []pt.Expression) (Expression, error) {
	decl := r.ns.Structs[s.No]
	if len(args) != len(decl.Fields) {
		return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "struct '%s' has %d fields, not %d", decl.Name, len(decl.Fields), len(args))
	}
	values := make([]Expression, len(args))
	for i, arg := range args {
		v, err := r.fieldValue(arg, decl.Fields[i].Ty)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &StructLiteral{Loc: loc, Ty: s, Values: values}, nil
}

func (r *resolver) namedStructLiteral(loc pt.Loc, s Struct, args []pt.NamedArgument) (Expression, error) {
	decl := r.ns.Structs[s.No]
	if len(args) != len(decl.Fields) {
		return nil, r.errorf(diagnostics.ErrorInvalidArguments, loc, "struct '%s' has %d fields, not %d", decl.Name, len(decl.Fields), len(args))
	}
	values := make([]Expression, len(decl.Fields))
	for _, a := range args {
		idx := -1
		for i, f := range decl.Fields {
			if f.Name() == a.Name.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, r.errorf(diagnostics.ErrorFieldNotFound, a.Name.Loc, "struct '%s' has no field '%s'", decl.Name, a.Name.Name)
		}
		if values[idx] != nil {
			return nil, r.errorf(diagnostics.ErrorDuplicateField, a.Name.Loc, "struct field '%s' specified more than once", a.Name.Name)
		}
		v, err := r.fieldValue(a.Expr, decl.Fields[idx].Ty)
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}
	return &StructLiteral{Loc: loc, Ty: s, Values: values}, nil
}

func (r *resolver) fieldValue(arg pt.Expression, ty Type) (Expression, error) {
	v, err := r.expression(arg, ResolveType(ty))
	if err != nil {
		return nil, err
	}
	CheckConstantOverflow(v, r.ns, r.diags)
	return CastTo(v, arg.NodeLoc(), ty, true, r.ns, r.diags)
}

// concat resolves string.concat and bytes.concat into a left leaning chain
// of two operand concatenations.
func (r *resolver) concat(loc pt.Loc, ty Type, args []pt.Expression) (Expression, error) {
	if len(args) == 0 {
		return &BytesLiteral{Loc: loc, Ty: ty, Value: nil}, nil
	}
	var locations []StringLocation
	for _, arg := range args {
		v, err := r.expression(arg, ResolveType(ty))
		if err != nil {
			return nil, err
		}
		argTy := Deref(v.Type())
		if _, isBytesN := argTy.(Bytes); isBytesN && ty == (DynamicBytes{}) {
			if v, err = r.cast(v, argTy, true); err != nil {
				return nil, err
			}
			v = &BytesCast{Loc: v.NodeLoc(), Ty: ty, From: argTy, Expr: v}
		} else if argTy != ty {
			return nil, r.errorf(diagnostics.ErrorTypeMismatch, arg.NodeLoc(), "%s.concat argument must be '%s', not '%s'",
				r.typeString(ty), r.typeString(ty), r.typeString(argTy))
		}
		l, err := r.stringLocation(v)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if len(locations) == 1 {
		if locations[0].IsCompileTime() {
			return &BytesLiteral{Loc: loc, Ty: ty, Value: locations[0].CompileTime}, nil
		}
		return locations[0].RunTime, nil
	}
	var res Expression = &StringConcat{Loc: loc, Ty: ty, Left: locations[0], Right: locations[1]}
	for _, l := range locations[2:] {
		res = &StringConcat{Loc: loc, Ty: ty, Left: StringLocation{RunTime: res}, Right: l}
	}
	return res, nil
}
