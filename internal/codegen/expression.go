package codegen

import (
	"fmt"
	"math/big"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// expression lowers e. Side effects become instructions in the current
// block and the returned expression is free of them. Calls and builtins
// without a value return nil.
func (b *builder) expression(e sema.Expression) sema.Expression {
	switch e := e.(type) {
	case *sema.NumberLiteral, *sema.RationalNumberLiteral, *sema.BoolLiteral, *sema.FunctionArg, *sema.ReturnData, *sema.Undefined:
		return e

	case *sema.BytesLiteral:
		switch e.Ty.(type) {
		case sema.String, sema.DynamicBytes:
			return &sema.AllocDynamicArray{
				Loc:    e.Loc,
				Ty:     e.Ty,
				Length: &sema.NumberLiteral{Loc: e.Loc, Ty: uint32Ty, Value: big.NewInt(int64(len(e.Value)))},
				Init:   e.Value,
			}
		}
		return e

	case *sema.ArrayLiteral:
		return &sema.ArrayLiteral{Loc: e.Loc, Ty: e.Ty, Dims: e.Dims, Values: b.expressions(e.Values)}
	case *sema.StructLiteral:
		return &sema.StructLiteral{Loc: e.Loc, Ty: e.Ty, Values: b.expressions(e.Values)}

	case *sema.Binary:
		return &sema.Binary{
			Loc: e.Loc, Ty: e.Ty, Op: e.Op, Signed: e.Signed, Unchecked: e.Unchecked,
			Left: b.expression(e.Left), Right: b.expression(e.Right),
		}
	case *sema.Compare:
		return &sema.Compare{Loc: e.Loc, Op: e.Op, Signed: e.Signed, Left: b.expression(e.Left), Right: b.expression(e.Right)}
	case *sema.Not:
		return &sema.Not{Loc: e.Loc, Expr: b.expression(e.Expr)}
	case *sema.Complement:
		return &sema.Complement{Loc: e.Loc, Ty: e.Ty, Expr: b.expression(e.Expr)}
	case *sema.UnaryMinus:
		return &sema.UnaryMinus{Loc: e.Loc, Ty: e.Ty, Unchecked: e.Unchecked, Expr: b.expression(e.Expr)}
	case *sema.ZeroExt:
		return &sema.ZeroExt{Loc: e.Loc, Ty: e.Ty, Expr: b.expression(e.Expr)}
	case *sema.SignExt:
		return &sema.SignExt{Loc: e.Loc, Ty: e.Ty, Expr: b.expression(e.Expr)}
	case *sema.Trunc:
		return &sema.Trunc{Loc: e.Loc, Ty: e.Ty, Expr: b.expression(e.Expr)}
	case *sema.Cast:
		return &sema.Cast{Loc: e.Loc, Ty: e.Ty, Expr: b.expression(e.Expr)}
	case *sema.BytesCast:
		return &sema.BytesCast{Loc: e.Loc, Ty: e.Ty, From: e.From, Expr: b.expression(e.Expr)}

	case *sema.Or:
		return b.logical(e.Loc, e.Left, e.Right, true)
	case *sema.And:
		return b.logical(e.Loc, e.Left, e.Right, false)
	case *sema.ConditionalOperator:
		return b.ternary(e)

	case *sema.Variable:
		return &sema.Variable{Loc: e.Loc, Ty: e.Ty, VarNo: b.mapVar(e.VarNo)}
	case *sema.ConstantVariable:
		return b.expression(b.ns.ConstantInitializer(e.ContractNo, e.VarNo))
	case *sema.StorageVariable:
		return &sema.NumberLiteral{Loc: e.Loc, Ty: e.Ty, Value: new(big.Int).Set(b.ns.StorageSlot(e.ContractNo, e.VarNo))}

	case *sema.StorageLoad:
		storage := b.expression(e.Expr)
		temp := b.vartab.TempAnonymous(e.Ty)
		b.cfg.Add(b.vartab, &LoadStorage{Res: temp, Ty: e.Ty, Storage: storage})
		return &sema.Variable{Loc: e.Loc, Ty: e.Ty, VarNo: temp}
	case *sema.Load:
		return &sema.Load{Loc: e.Loc, Ty: e.Ty, Expr: b.expression(e.Expr)}
	case *sema.Subscript:
		return b.subscript(e)
	case *sema.StructMember:
		return b.structMember(e)
	case *sema.StorageArrayLength:
		return &sema.StorageArrayLength{Loc: e.Loc, Ty: e.Ty, ArrayTy: e.ArrayTy, Array: b.expression(e.Array)}

	case *sema.Assign:
		value := b.expression(e.Right)
		return b.assign(e.Loc, e.Left, value)
	case *sema.IncDec:
		return b.incDec(e)

	case *sema.InternalFunctionCall, *sema.ExternalFunctionCall, *sema.Constructor:
		return first(b.call(e))
	case *sema.Builtin:
		return first(b.builtin(e))

	case *sema.Keccak256:
		return &sema.Keccak256{Loc: e.Loc, Ty: e.Ty, Args: b.expressions(e.Args)}
	case *sema.StringCompare:
		return &sema.StringCompare{Loc: e.Loc, Left: b.stringLocation(e.Left), Right: b.stringLocation(e.Right)}
	case *sema.StringConcat:
		return &sema.StringConcat{Loc: e.Loc, Ty: e.Ty, Left: b.stringLocation(e.Left), Right: b.stringLocation(e.Right)}
	case *sema.AllocDynamicArray:
		var length sema.Expression
		if e.Length != nil {
			length = b.expression(e.Length)
		}
		return &sema.AllocDynamicArray{Loc: e.Loc, Ty: e.Ty, Length: length, Init: e.Init}
	case *sema.AbiEncode:
		return &sema.AbiEncode{Loc: e.Loc, Tys: e.Tys, Packed: b.expressions(e.Packed), Args: b.expressions(e.Args)}

	case *sema.List:
		// a list in value position, e.g. a parenthesized expression
		values := b.expressions(e.Items)
		if len(values) == 0 {
			return nil
		}
		return values[len(values)-1]
	}

	panic(fmt.Sprintf("%s: cannot lower expression %T", b.cfg.Name, e))
}

func first(values []sema.Expression) sema.Expression {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func (b *builder) expressions(list []sema.Expression) []sema.Expression {
	res := make([]sema.Expression, 0, len(list))
	for _, e := range list {
		res = append(res, b.expression(e))
	}
	return res
}

// values lowers an expression which may produce several values: a list or
// a call with more than one return.
func (b *builder) values(e sema.Expression) []sema.Expression {
	switch e := e.(type) {
	case *sema.List:
		return b.expressions(e.Items)
	case *sema.InternalFunctionCall, *sema.ExternalFunctionCall, *sema.Constructor:
		return b.call(e)
	case *sema.Builtin:
		return b.builtin(e)
	}
	return []sema.Expression{b.expression(e)}
}

// castTo converts a lowered value to ty. The conversion has been checked
// when the function was resolved; values still in storage are loaded.
func (b *builder) castTo(loc pt.Loc, v sema.Expression, ty sema.Type) sema.Expression {
	if ref, ok := v.Type().(sema.StorageRef); ok {
		if _, keep := ty.(sema.StorageRef); !keep {
			temp := b.vartab.TempAnonymous(ref.Elem)
			b.cfg.Add(b.vartab, &LoadStorage{Res: temp, Ty: ref.Elem, Storage: v})
			v = &sema.Variable{Loc: loc, Ty: ref.Elem, VarNo: temp}
		}
	}

	var diags diagnostics.List
	res, err := sema.CastTo(v, loc, ty, true, b.ns, &diags)
	if err != nil {
		panic(fmt.Sprintf("%s: cannot convert %s to %s", b.cfg.Name, b.ns.TypeString(v.Type()), b.ns.TypeString(ty)))
	}
	return res
}

func (b *builder) stringLocation(s sema.StringLocation) sema.StringLocation {
	if s.IsCompileTime() {
		return s
	}
	return sema.StringLocation{RunTime: b.expression(s.RunTime)}
}

// logical lowers || and && with short circuit evaluation into a boolean
// temporary.
func (b *builder) logical(loc pt.Loc, left, right sema.Expression, or bool) sema.Expression {
	name := "and"
	if or {
		name = "or"
	}
	pos := b.vartab.TempName(name, boolTy)

	l := b.expression(left)
	b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: pos, Expr: &sema.BoolLiteral{Loc: pt.Codegen, Value: or}})

	rightBlock := b.cfg.NewBasicBlock(name + "_right_side")
	endBlock := b.cfg.NewBasicBlock(name + "_end")
	if or {
		b.cfg.Add(b.vartab, &BranchCond{Cond: l, True: endBlock, False: rightBlock})
	} else {
		b.cfg.Add(b.vartab, &BranchCond{Cond: l, True: rightBlock, False: endBlock})
	}

	b.cfg.SetBasicBlock(rightBlock)
	r := b.expression(right)
	b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: pos, Expr: r})
	b.cfg.AddCodegen(b.vartab, &Branch{Block: endBlock})

	b.cfg.SetBasicBlock(endBlock)
	b.cfg.SetPhis(endBlock, map[int]bool{pos: true})
	return &sema.Variable{Loc: loc, Ty: boolTy, VarNo: pos}
}

func (b *builder) ternary(e *sema.ConditionalOperator) sema.Expression {
	pos := b.vartab.TempName("ternary_result", e.Ty)
	cond := b.expression(e.Cond)

	trueBlock := b.cfg.NewBasicBlock("ternary_true")
	falseBlock := b.cfg.NewBasicBlock("ternary_false")
	endBlock := b.cfg.NewBasicBlock("ternary_end")
	b.cfg.Add(b.vartab, &BranchCond{Cond: cond, True: trueBlock, False: falseBlock})

	b.cfg.SetBasicBlock(trueBlock)
	b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: pos, Expr: b.expression(e.True)})
	b.cfg.AddCodegen(b.vartab, &Branch{Block: endBlock})

	b.cfg.SetBasicBlock(falseBlock)
	b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: pos, Expr: b.expression(e.False)})
	b.cfg.AddCodegen(b.vartab, &Branch{Block: endBlock})

	b.cfg.SetBasicBlock(endBlock)
	b.cfg.SetPhis(endBlock, map[int]bool{pos: true})
	return &sema.Variable{Loc: e.Loc, Ty: e.Ty, VarNo: pos}
}

// subscript lowers an index into a mapping, array or bytes. Storage
// mappings and arrays become slot arithmetic: keccak256(key, slot) for a
// mapping, slot + index * size for a fixed array and keccak256(slot) +
// index * size for a dynamic one.
func (b *builder) subscript(e *sema.Subscript) sema.Expression {
	array := b.expression(e.Array)
	index := b.expression(e.Index)

	ref, inStorage := e.ArrayTy.(sema.StorageRef)
	if !inStorage {
		return &sema.Subscript{Loc: e.Loc, Ty: e.Ty, ArrayTy: e.ArrayTy, Array: array, Index: index}
	}

	switch ty := ref.Elem.(type) {
	case sema.Mapping:
		return &sema.Keccak256{Loc: e.Loc, Ty: e.Ty, Args: []sema.Expression{index, array}}
	case sema.Array:
		base := array
		if ty.Dynamic {
			base = &sema.Keccak256{Loc: e.Loc, Ty: sema.StorageRef{Elem: ty}, Args: []sema.Expression{array}}
		}
		return b.slotOffset(e.Loc, e.Ty, base, index, sema.StorageSlots(ty.Elem, b.ns))
	}
	return &sema.Subscript{Loc: e.Loc, Ty: e.Ty, ArrayTy: e.ArrayTy, Array: array, Index: index}
}

// slotOffset computes base + index * size as a storage reference of type ty.
func (b *builder) slotOffset(loc pt.Loc, ty sema.Type, base, index sema.Expression, size *big.Int) sema.Expression {
	offset := index
	if size.Cmp(big.NewInt(1)) != 0 {
		offset = &sema.Binary{
			Loc:       loc,
			Ty:        uint256Ty,
			Op:        sema.Multiply,
			Unchecked: true,
			Left:      index,
			Right:     &sema.NumberLiteral{Loc: loc, Ty: uint256Ty, Value: size},
		}
	}
	return &sema.Binary{Loc: loc, Ty: ty, Op: sema.Add, Unchecked: true, Left: base, Right: offset}
}

// structMember lowers a field access. Fields of a struct in storage are
// at a fixed slot offset from the struct.
func (b *builder) structMember(e *sema.StructMember) sema.Expression {
	base := b.expression(e.Expr)
	ref, inStorage := e.Expr.Type().(sema.StorageRef)
	if !inStorage {
		return &sema.StructMember{Loc: e.Loc, Ty: e.Ty, Expr: base, Field: e.Field}
	}

	decl := b.ns.Structs[ref.Elem.(sema.Struct).No]
	offset := new(big.Int)
	for _, f := range decl.Fields[:e.Field] {
		offset.Add(offset, sema.StorageSlots(f.Ty, b.ns))
	}
	if offset.Sign() == 0 {
		if lit, ok := base.(*sema.NumberLiteral); ok {
			return &sema.NumberLiteral{Loc: e.Loc, Ty: e.Ty, Value: lit.Value}
		}
	}
	return &sema.Binary{
		Loc:       e.Loc,
		Ty:        e.Ty,
		Op:        sema.Add,
		Unchecked: true,
		Left:      base,
		Right:     &sema.NumberLiteral{Loc: e.Loc, Ty: uint256Ty, Value: offset},
	}
}

// assign stores an already lowered value into target and returns the
// value of the assignment expression.
func (b *builder) assign(loc pt.Loc, target, value sema.Expression) sema.Expression {
	if v, ok := target.(*sema.Variable); ok {
		pos := b.setVar(v.Loc, v.VarNo, value, false)
		return &sema.Variable{Loc: v.Loc, Ty: v.Ty, VarNo: pos}
	}
	b.store(loc, target.Type(), b.expression(target), value)
	return value
}

// store writes value to a lowered storage or memory location.
func (b *builder) store(loc pt.Loc, ty sema.Type, dest, value sema.Expression) {
	switch ty := ty.(type) {
	case sema.StorageRef:
		b.cfg.Add(b.vartab, &SetStorage{Ty: ty.Elem, Storage: dest, Value: value})
	case sema.Ref:
		b.cfg.Add(b.vartab, &Store{Dest: dest, Data: value})
	default:
		panic(fmt.Sprintf("%s: cannot assign to %s at %s", b.cfg.Name, b.ns.TypeString(ty), loc))
	}
}

// incDec lowers ++ and --. The location is computed once; the value of a
// postfix operation is copied before the update.
func (b *builder) incDec(e *sema.IncDec) sema.Expression {
	one := &sema.NumberLiteral{Loc: e.Loc, Ty: e.Ty, Value: big.NewInt(1)}
	op := sema.Subtract
	if e.Op.IsIncrement() {
		op = sema.Add
	}
	next := func(current sema.Expression) sema.Expression {
		return &sema.Binary{
			Loc:       e.Loc,
			Ty:        e.Ty,
			Op:        op,
			Signed:    sema.IsSigned(e.Ty),
			Unchecked: e.Unchecked,
			Left:      current,
			Right:     one,
		}
	}

	if v, ok := e.Expr.(*sema.Variable); ok {
		current := b.expression(v)
		if !e.Op.IsPrefix() {
			temp := b.vartab.TempAnonymous(e.Ty)
			b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: temp, Expr: current})
			current = &sema.Variable{Loc: e.Loc, Ty: e.Ty, VarNo: temp}
			b.setVar(v.Loc, v.VarNo, next(current), false)
			return current
		}
		return b.assign(e.Loc, v, next(current))
	}

	locTy := e.Expr.Type()
	dest := b.expression(e.Expr)
	temp := b.vartab.TempAnonymous(e.Ty)
	if _, inStorage := locTy.(sema.StorageRef); inStorage {
		b.cfg.Add(b.vartab, &LoadStorage{Res: temp, Ty: e.Ty, Storage: dest})
	} else {
		b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: temp, Expr: &sema.Load{Loc: e.Loc, Ty: e.Ty, Expr: dest}})
	}
	current := &sema.Variable{Loc: e.Loc, Ty: e.Ty, VarNo: temp}

	updatedNo := b.vartab.TempAnonymous(e.Ty)
	b.cfg.Add(b.vartab, &Set{Loc: pt.Codegen, Res: updatedNo, Expr: next(current)})
	updated := &sema.Variable{Loc: e.Loc, Ty: e.Ty, VarNo: updatedNo}
	b.store(e.Loc, locTy, dest, updated)
	if e.Op.IsPrefix() {
		return updated
	}
	return current
}

// call lowers a call and returns one variable per return value.
func (b *builder) call(e sema.Expression) []sema.Expression {
	switch e := e.(type) {
	case *sema.InternalFunctionCall:
		args := b.expressions(e.Args)
		res, values := b.results(e.Loc, e.Returns)
		b.cfg.Add(b.vartab, &Call{Res: res, FunctionNo: e.FunctionNo, Args: args, ReturnTys: e.Returns})
		return values

	case *sema.ExternalFunctionCall:
		address, payload, value := b.externalCallParts(e)
		b.cfg.Add(b.vartab, &ExternalCall{Success: -1, FunctionNo: e.FunctionNo, Address: address, Payload: payload, Value: value})
		if len(e.Returns) == 0 {
			return nil
		}
		res, values := b.results(e.Loc, e.Returns)
		b.cfg.AddCodegen(b.vartab, &AbiDecode{Res: res, ExceptionBlock: -1, Tys: e.Returns, Data: &sema.ReturnData{Loc: e.Loc}})
		return values

	case *sema.Constructor:
		args := b.expressions(e.Args)
		var value sema.Expression
		if e.Value != nil {
			value = b.expression(e.Value)
		}
		ty := sema.Contract{No: e.ContractNo}
		res := b.vartab.TempName("contract", ty)
		b.cfg.Add(b.vartab, &Constructor{Success: -1, Res: res, ContractNo: e.ContractNo, Args: args, Value: value})
		return []sema.Expression{&sema.Variable{Loc: e.Loc, Ty: ty, VarNo: res}}
	}
	panic(fmt.Sprintf("%T is not a call", e))
}

// results allocates a temporary per return type.
func (b *builder) results(loc pt.Loc, tys []sema.Type) ([]int, []sema.Expression) {
	res := make([]int, 0, len(tys))
	values := make([]sema.Expression, 0, len(tys))
	for _, ty := range tys {
		temp := b.vartab.TempAnonymous(ty)
		res = append(res, temp)
		values = append(values, &sema.Variable{Loc: loc, Ty: ty, VarNo: temp})
	}
	return res, values
}

// externalCallParts lowers the address, the abi encoded payload with the
// function selector, and the value of an external call.
func (b *builder) externalCallParts(e *sema.ExternalFunctionCall) (address, payload, value sema.Expression) {
	address = b.expression(e.Address)
	args := b.expressions(e.Args)
	if e.Value != nil {
		value = b.expression(e.Value)
	}

	fn := b.ns.Functions[e.FunctionNo]
	tys := make([]sema.Type, len(fn.Params))
	for i, p := range fn.Params {
		tys[i] = p.Ty
	}
	payload = encodeWithSelector(Selector(fn.Signature), tys, args)
	return address, payload, value
}
