package sema

import (
	"math/big"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

var uint256 = Uint{Bits: 256}

// globalMember resolves msg.sender and friends. The boolean is false when
// base is not one of the global namespaces.
func (r *resolver) globalMember(base string, member pt.Identifier, loc pt.Loc) (Expression, bool, error) {
	if r.symtable != nil && r.symtable.Find(base) != nil {
		return nil, false, nil
	}
	if r.ns.Lookup(r.ctx.FileNo, r.ctx.ContractNo, base) != nil {
		return nil, false, nil
	}

	var kind BuiltinKind
	var ty Type
	switch base + "." + member.Name {
	case "msg.sender":
		kind, ty = BuiltinSender, Address{}
	case "msg.value":
		kind, ty = BuiltinValue, Uint{Bits: uint16(r.ns.ValueLength * 8)}
	case "block.number":
		kind, ty = BuiltinBlockNumber, Uint{Bits: 64}
	case "block.timestamp":
		kind, ty = BuiltinTimestamp, Uint{Bits: 64}
	case "tx.origin":
		if r.ns.Target.Is(ChainSolana) {
			return nil, true, r.errorf(diagnostics.ErrorTargetUnsupported, loc, "tx.origin is not available on Solana")
		}
		kind, ty = BuiltinOrigin, Address{}
	default:
		switch base {
		case "msg", "block", "tx":
			return nil, true, r.errorf(diagnostics.ErrorFieldNotFound, member.Loc, "builtin '%s.%s' does not exist", base, member.Name)
		}
		return nil, false, nil
	}

	if r.ctx.Constant {
		return nil, true, r.errorf(diagnostics.ErrorNotConstant, loc, "%s.%s is not a constant expression", base, member.Name)
	}
	return &Builtin{Loc: loc, Tys: []Type{ty}, Kind: kind}, true, nil
}

func (r *resolver) memberAccess(e *pt.MemberAccess) (Expression, error) {
	if v, ok := e.Expr.(*pt.Variable); ok {
		if res, handled, err := r.globalMember(v.Name, e.Member, e.Loc); handled {
			return res, err
		}
		if no, ok := r.ns.ResolveContract(r.ctx.FileNo, pt.Identifier{Loc: v.Loc, Name: v.Name}); ok &&
			(r.symtable == nil || r.symtable.Find(v.Name) == nil) {
			return r.contractMember(no, e)
		}
	}

	restore := r.ctx.SetLvalue(false)
	base, err := r.expression(e.Expr, ResolveUnknown)
	restore()
	if err != nil {
		return nil, err
	}

	baseTy := base.Type()
	switch ty := Deref(baseTy).(type) {
	case Struct:
		decl := r.ns.Structs[ty.No]
		for i, f := range decl.Fields {
			if f.Name() != e.Member.Name {
				continue
			}
			if r.ctx.Lvalue {
				r.markAssigned(base)
			}
			var fieldTy Type = Ref{Elem: f.Ty}
			if _, inStorage := baseTy.(StorageRef); inStorage {
				fieldTy = StorageRef{Elem: f.Ty}
			} else if ref, isRef := baseTy.(Ref); isRef {
				base = &Load{Loc: base.NodeLoc(), Ty: ref.Elem, Expr: base}
			}
			return &StructMember{Loc: e.Loc, Ty: fieldTy, Expr: base, Field: i}, nil
		}
		return nil, r.errorf(diagnostics.ErrorFieldNotFound, e.Member.Loc, "struct '%s' does not have a field called '%s'", decl.Name, e.Member.Name)

	case Array:
		if e.Member.Name == "length" {
			return r.arrayLength(e.Loc, base, ty)
		}
	case DynamicBytes:
		if e.Member.Name == "length" {
			return r.arrayLength(e.Loc, base, ty)
		}
	case Bytes:
		if e.Member.Name == "length" {
			return &NumberLiteral{Loc: e.Loc, Ty: Uint{Bits: 8}, Value: big.NewInt(int64(ty.N))}, nil
		}
	case Address:
		if e.Member.Name == "balance" {
			if r.ctx.Constant {
				return nil, r.errorf(diagnostics.ErrorNotConstant, e.Loc, "balance is not a constant expression")
			}
			addr, err := r.cast(base, ty, true)
			if err != nil {
				return nil, err
			}
			return &Builtin{
				Loc:  e.Loc,
				Tys:  []Type{Uint{Bits: uint16(r.ns.ValueLength * 8)}},
				Kind: BuiltinBalance,
				Args: []Expression{addr},
			}, nil
		}
	}

	switch e.Member.Name {
	case "push", "pop":
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "method '%s' requires a call", e.Member.Name)
	}
	return nil, r.errorf(diagnostics.ErrorFieldNotFound, e.Member.Loc, "'%s' not found on type '%s'", e.Member.Name, r.typeString(Deref(baseTy)))
}

// contractMember resolves C.X where C names a contract. Only constants can
// be read this way; functions are handled at the call site.
func (r *resolver) contractMember(contract int, e *pt.MemberAccess) (Expression, error) {
	sym := r.ns.Lookup(r.ctx.FileNo, contract, e.Member.Name)
	if sym == nil || sym.ContractNo != contract {
		return nil, r.errorf(diagnostics.ErrorFieldNotFound, e.Member.Loc, "'%s' not found in contract '%s'", e.Member.Name, r.ns.Contracts[contract].Name)
	}
	if sym.Kind == SymbolVariable {
		v := r.ns.Contracts[contract].Variables[sym.No]
		if v.Constant {
			v.Read = true
			return &ConstantVariable{Loc: e.Loc, Ty: v.Ty, ContractNo: contract, VarNo: sym.No}, nil
		}
		if contract == r.ctx.ContractNo {
			return r.variable(&pt.Variable{Loc: e.Loc, Name: e.Member.Name})
		}
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'%s' is not a constant state variable of contract '%s'", e.Member.Name, r.ns.Contracts[contract].Name)
	}
	return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'%s' is %s, not a value", e.Member.Name, articled(sym.Kind))
}

func (r *resolver) arrayLength(loc pt.Loc, base Expression, ty Type) (Expression, error) {
	if arr, ok := ty.(Array); ok && !arr.Dynamic {
		return &NumberLiteral{Loc: loc, Ty: uint256, Value: new(big.Int).SetUint64(arr.Len)}, nil
	}
	if r.ctx.Lvalue {
		return nil, r.errorf(diagnostics.ErrorInvalidAssignment, loc, "array length is read only")
	}
	if IsContractStorage(base.Type()) {
		return &StorageArrayLength{Loc: loc, Ty: uint256, ArrayTy: ty, Array: base}, nil
	}
	array, err := r.cast(base, ty, true)
	if err != nil {
		return nil, err
	}
	return &Builtin{Loc: loc, Tys: []Type{Uint{Bits: 32}}, Kind: BuiltinArrayLength, Args: []Expression{array}}, nil
}

func (r *resolver) subscript(e *pt.ArraySubscript) (Expression, error) {
	if e.Index == nil {
		return nil, r.errorf(diagnostics.ErrorSyntax, e.Loc, "expected expression before ']' token")
	}

	base, err := r.expression(e.Array, ResolveUnknown)
	if err != nil {
		return nil, err
	}
	restore := r.ctx.SetLvalue(false)
	defer restore()

	baseTy := base.Type()
	_, inStorage := baseTy.(StorageRef)

	switch ty := Deref(baseTy).(type) {
	case Mapping:
		if !inStorage {
			return nil, r.errorf(diagnostics.ErrorStorageLocation, e.Loc, "mapping is only permitted in storage")
		}
		index, err := r.expression(e.Index, ResolveType(ty.Key))
		if err != nil {
			return nil, err
		}
		CheckConstantOverflow(index, r.ns, r.diags)
		if index, err = CastTo(index, e.Index.NodeLoc(), ty.Key, true, r.ns, r.diags); err != nil {
			return nil, err
		}
		return &Subscript{Loc: e.Loc, Ty: StorageRef{Elem: ty.Value}, ArrayTy: baseTy, Array: base, Index: index}, nil

	case Array:
		index, err := r.arrayIndex(e.Index)
		if err != nil {
			return nil, err
		}
		if lit, ok := index.(*NumberLiteral); ok && !ty.Dynamic && lit.Value.Cmp(new(big.Int).SetUint64(ty.Len)) >= 0 {
			return nil, r.errorf(diagnostics.ErrorTypeMismatch, e.Index.NodeLoc(), "index %s out of bounds for array of length %d", lit.Value, ty.Len)
		}
		if inStorage {
			return &Subscript{Loc: e.Loc, Ty: StorageRef{Elem: ty.Elem}, ArrayTy: baseTy, Array: base, Index: index}, nil
		}
		if ref, isRef := baseTy.(Ref); isRef {
			base = &Load{Loc: base.NodeLoc(), Ty: ref.Elem, Expr: base}
		}
		return &Subscript{Loc: e.Loc, Ty: Ref{Elem: ty.Elem}, ArrayTy: ty, Array: base, Index: index}, nil

	case DynamicBytes:
		index, err := r.arrayIndex(e.Index)
		if err != nil {
			return nil, err
		}
		if inStorage {
			return &Subscript{Loc: e.Loc, Ty: StorageRef{Elem: Bytes{N: 1}}, ArrayTy: baseTy, Array: base, Index: index}, nil
		}
		if ref, isRef := baseTy.(Ref); isRef {
			base = &Load{Loc: base.NodeLoc(), Ty: ref.Elem, Expr: base}
		}
		return &Subscript{Loc: e.Loc, Ty: Ref{Elem: Bytes{N: 1}}, ArrayTy: ty, Array: base, Index: index}, nil

	case Bytes:
		if r.ctx.Lvalue {
			return nil, r.errorf(diagnostics.ErrorInvalidAssignment, e.Loc, "bytes%d is read only", ty.N)
		}
		index, err := r.arrayIndex(e.Index)
		if err != nil {
			return nil, err
		}
		if lit, ok := index.(*NumberLiteral); ok && lit.Value.Cmp(big.NewInt(int64(ty.N))) >= 0 {
			return nil, r.errorf(diagnostics.ErrorTypeMismatch, e.Index.NodeLoc(), "index %s out of bounds for bytes%d", lit.Value, ty.N)
		}
		value, err := r.cast(base, ty, true)
		if err != nil {
			return nil, err
		}
		return &Subscript{Loc: e.Loc, Ty: Bytes{N: 1}, ArrayTy: ty, Array: value, Index: index}, nil

	case String:
		return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "array subscript is not permitted on string")
	}

	return nil, r.errorf(diagnostics.ErrorInvalidOperation, e.Array.NodeLoc(), "expression of type '%s' cannot be subscripted", r.typeString(Deref(baseTy)))
}

func (r *resolver) arrayIndex(expr pt.Expression) (Expression, error) {
	index, err := r.expression(expr, ResolveType(uint256))
	if err != nil {
		return nil, err
	}
	ty := Deref(index.Type())
	if !IsInteger(ty) || IsSigned(ty) {
		return nil, r.errorf(diagnostics.ErrorTypeMismatch, expr.NodeLoc(), "array subscript must be an unsigned integer, not '%s'", r.typeString(ty))
	}
	if lit, ok := index.(*NumberLiteral); ok {
		if msg := OverflowMessage(lit.Value, uint256, r.ns); msg != "" {
			r.diags.Push(diagnostics.NumericOverflow(lit.Loc, msg))
			return nil, ErrResolve
		}
		return &NumberLiteral{Loc: lit.Loc, Ty: uint256, Value: lit.Value}, nil
	}
	CheckConstantOverflow(index, r.ns, r.diags)
	return CastTo(index, expr.NodeLoc(), uint256, true, r.ns, r.diags)
}
