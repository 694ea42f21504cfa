package codegen

import (
	encbinary "encoding/binary"
	"fmt"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// statements lowers a statement list and reports whether control falls
// through it. Statements after one that does not complete are dropped, and
// a block left open at that point is closed with Unreachable.
func (b *builder) statements(stmts []sema.Statement) bool {
	for _, stmt := range stmts {
		b.statement(stmt)
		if !stmt.Reachable() {
			if !b.cfg.Blocks[b.cfg.CurrentBlock()].Terminated() {
				b.cfg.AddCodegen(b.vartab, &Unreachable{})
			}
			return false
		}
	}
	return true
}

func (b *builder) statement(stmt sema.Statement) {
	switch s := stmt.(type) {
	case *sema.Block:
		b.statements(s.Statements)

	case *sema.VariableDecl:
		loc := s.Loc
		if s.Param.ID != nil {
			loc = s.Param.ID.Loc
		}
		if s.Initializer == nil {
			b.setVar(loc, s.VarNo, sema.Default(s.Param.Ty, b.ns), true)
			return
		}
		b.setVar(loc, s.VarNo, b.expression(s.Initializer), false)

	case *sema.ExpressionStmt:
		b.expression(s.Expr)

	case *sema.Delete:
		storage := b.expression(s.Expr)
		b.cfg.Add(b.vartab, &ClearStorage{Ty: s.Ty, Storage: storage})

	case *sema.If:
		b.ifStmt(s)

	case *sema.While:
		b.whileStmt(s)

	case *sema.DoWhile:
		b.doWhileStmt(s)

	case *sema.For:
		b.forStmt(s)

	case *sema.Continue:
		loop := b.loops[len(b.loops)-1]
		b.cfg.Add(b.vartab, &Branch{Block: loop.continueBlock})

	case *sema.Break:
		loop := b.loops[len(b.loops)-1]
		b.cfg.Add(b.vartab, &Branch{Block: loop.breakBlock})

	case *sema.Return:
		b.returnStmt(s.Loc, s.Expr)

	case *sema.Destructure:
		b.destructure(s.Fields, s.Expr)

	case *sema.Revert:
		b.revert(s)

	case *sema.Emit:
		b.emit(s)

	case *sema.TryCatch:
		b.tryCatch(s)

	case *sema.Underscore:
		b.placeholder()

	case *sema.Assembly:
		log.Debugf("%s: inline assembly at %s is not lowered", b.cfg.Name, s.Loc)

	default:
		panic(fmt.Sprintf("unexpected statement %T", stmt))
	}
}

func (b *builder) ifStmt(s *sema.If) {
	cond := b.expression(s.Cond)

	thenBlock := b.cfg.NewBasicBlock("then")
	elseBlock := -1
	if len(s.Else) > 0 {
		elseBlock = b.cfg.NewBasicBlock("else")
	}
	endBlock := b.cfg.NewBasicBlock("endif")

	falseBlock := endBlock
	if elseBlock >= 0 {
		falseBlock = elseBlock
	}
	b.cfg.Add(b.vartab, &BranchCond{Cond: cond, True: thenBlock, False: falseBlock})

	b.cfg.SetBasicBlock(thenBlock)
	if b.statements(s.Then) {
		b.cfg.AddCodegen(b.vartab, &Branch{Block: endBlock})
	}

	if elseBlock >= 0 {
		b.cfg.SetBasicBlock(elseBlock)
		if b.statements(s.Else) {
			b.cfg.AddCodegen(b.vartab, &Branch{Block: endBlock})
		}
	}

	b.cfg.SetBasicBlock(endBlock)
}

func (b *builder) whileStmt(s *sema.While) {
	condBlock := b.cfg.NewBasicBlock("cond")
	bodyBlock := b.cfg.NewBasicBlock("while_body")
	endBlock := b.cfg.NewBasicBlock("endwhile")

	b.cfg.AddCodegen(b.vartab, &Branch{Block: condBlock})
	b.vartab.NewDirtyTracker()

	b.cfg.SetBasicBlock(condBlock)
	cond := b.expression(s.Cond)
	b.cfg.Add(b.vartab, &BranchCond{Cond: cond, True: bodyBlock, False: endBlock})

	b.cfg.SetBasicBlock(bodyBlock)
	b.loops = append(b.loops, loopTarget{breakBlock: endBlock, continueBlock: condBlock})
	if b.statements(s.Body) {
		b.cfg.AddCodegen(b.vartab, &Branch{Block: condBlock})
	}
	b.loops = b.loops[:len(b.loops)-1]

	phis := b.vartab.PopDirtyTracker()
	b.cfg.SetPhis(condBlock, phis)
	b.cfg.SetPhis(endBlock, phis)
	b.cfg.SetBasicBlock(endBlock)
}

func (b *builder) doWhileStmt(s *sema.DoWhile) {
	bodyBlock := b.cfg.NewBasicBlock("do_body")
	condBlock := b.cfg.NewBasicBlock("do_cond")
	endBlock := b.cfg.NewBasicBlock("enddo")

	b.cfg.AddCodegen(b.vartab, &Branch{Block: bodyBlock})
	b.vartab.NewDirtyTracker()

	b.cfg.SetBasicBlock(bodyBlock)
	b.loops = append(b.loops, loopTarget{breakBlock: endBlock, continueBlock: condBlock})
	if b.statements(s.Body) {
		b.cfg.AddCodegen(b.vartab, &Branch{Block: condBlock})
	}
	b.loops = b.loops[:len(b.loops)-1]

	b.cfg.SetBasicBlock(condBlock)
	cond := b.expression(s.Cond)
	b.cfg.Add(b.vartab, &BranchCond{Cond: cond, True: bodyBlock, False: endBlock})

	phis := b.vartab.PopDirtyTracker()
	b.cfg.SetPhis(bodyBlock, phis)
	b.cfg.SetPhis(endBlock, phis)
	b.cfg.SetBasicBlock(endBlock)
}

func (b *builder) forStmt(s *sema.For) {
	if !b.statements(s.Init) {
		return
	}

	condBlock := b.cfg.NewBasicBlock("cond")
	bodyBlock := b.cfg.NewBasicBlock("for_body")
	nextBlock := b.cfg.NewBasicBlock("next")
	endBlock := b.cfg.NewBasicBlock("endfor")

	b.cfg.AddCodegen(b.vartab, &Branch{Block: condBlock})
	b.vartab.NewDirtyTracker()

	b.cfg.SetBasicBlock(condBlock)
	if s.Cond != nil {
		cond := b.expression(s.Cond)
		b.cfg.Add(b.vartab, &BranchCond{Cond: cond, True: bodyBlock, False: endBlock})
	} else {
		b.cfg.AddCodegen(b.vartab, &Branch{Block: bodyBlock})
	}

	b.cfg.SetBasicBlock(bodyBlock)
	b.loops = append(b.loops, loopTarget{breakBlock: endBlock, continueBlock: nextBlock})
	if b.statements(s.Body) {
		b.cfg.AddCodegen(b.vartab, &Branch{Block: nextBlock})
	}
	b.loops = b.loops[:len(b.loops)-1]

	b.cfg.SetBasicBlock(nextBlock)
	if s.Next != nil {
		b.expression(s.Next)
	}
	b.cfg.AddCodegen(b.vartab, &Branch{Block: condBlock})

	phis := b.vartab.PopDirtyTracker()
	b.cfg.SetPhis(condBlock, phis)
	b.cfg.SetPhis(endBlock, phis)
	b.cfg.SetBasicBlock(endBlock)
}

// returnStmt lowers a return. Inside an inlined modifier level the values
// go to the return variables and control continues after the '_'.
func (b *builder) returnStmt(loc pt.Loc, expr sema.Expression) {
	if expr == nil {
		b.exitFunction(loc)
		return
	}

	if c, ok := expr.(*sema.ConditionalOperator); ok {
		if _, tuple := c.Ty.(sema.Unreachable); tuple {
			b.branches(c.Cond, func() { b.returnStmt(loc, c.True) }, func() { b.returnStmt(loc, c.False) })
			return
		}
	}

	values := b.values(expr)
	for i := range values {
		if i < len(b.fn.Returns) {
			values[i] = b.castTo(loc, values[i], b.fn.Returns[i].Ty)
		}
	}
	if b.exit < 0 && b.level == len(b.fn.Modifiers) {
		b.cfg.Add(b.vartab, &Return{Values: values})
		return
	}
	for i, varNo := range b.fn.Symtable.Returns {
		if i < len(values) {
			b.cfg.Add(b.vartab, &Set{Loc: loc, Res: varNo, Expr: values[i]})
		}
	}
	b.exitFunction(loc)
}

// branches lowers cond and runs onTrue and onFalse in their own blocks.
// Neither side falls through.
func (b *builder) branches(cond sema.Expression, onTrue, onFalse func()) {
	c := b.expression(cond)
	trueBlock := b.cfg.NewBasicBlock("ternary_true")
	falseBlock := b.cfg.NewBasicBlock("ternary_false")
	b.cfg.Add(b.vartab, &BranchCond{Cond: c, True: trueBlock, False: falseBlock})

	b.cfg.SetBasicBlock(trueBlock)
	onTrue()
	b.cfg.SetBasicBlock(falseBlock)
	onFalse()
}

// destructure assigns the values of expr to the fields. All values are
// computed before any is assigned, so (a, b) = (b, a) swaps.
func (b *builder) destructure(fields []sema.DestructureField, expr sema.Expression) {
	if c, ok := expr.(*sema.ConditionalOperator); ok {
		if _, tuple := c.Ty.(sema.Unreachable); tuple {
			endBlock := b.cfg.NewBasicBlock("destructure_end")
			side := func(e sema.Expression) func() {
				return func() {
					b.destructure(fields, e)
					b.cfg.AddCodegen(b.vartab, &Branch{Block: endBlock})
				}
			}
			b.branches(c.Cond, side(c.True), side(c.False))
			b.cfg.SetBasicBlock(endBlock)
			return
		}
	}

	values := b.values(expr)
	if _, ok := expr.(*sema.List); ok {
		for i, v := range values {
			if sema.IsLiteral(v) {
				continue
			}
			temp := b.vartab.TempAnonymous(v.Type())
			b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: temp, Expr: v})
			values[i] = &sema.Variable{Loc: v.NodeLoc(), Ty: v.Type(), VarNo: temp}
		}
	}

	for i, field := range fields {
		if i >= len(values) {
			break
		}
		switch field.Kind {
		case sema.DestructureVariableDecl:
			b.setVar(field.Loc, field.VarNo, b.castTo(field.Loc, values[i], field.Param.Ty), false)
		case sema.DestructureExpression:
			b.assign(field.Loc, field.Expr, b.castTo(field.Loc, values[i], sema.Deref(field.Expr.Type())))
		}
	}
}

// revert reverts with an Error(string) reason or the encoded custom error.
func (b *builder) revert(s *sema.Revert) {
	if s.ErrorNo < 0 {
		if len(s.Args) == 0 {
			b.cfg.Add(b.vartab, &AssertFailure{})
			return
		}
		reason := b.expression(s.Args[0])
		b.cfg.Add(b.vartab, &AssertFailure{Expr: encodeWithSelector(errorSelector, []sema.Type{sema.String{}}, []sema.Expression{reason})})
		return
	}

	decl := b.ns.Errors[s.ErrorNo]
	tys := make([]sema.Type, len(decl.Fields))
	sig := make([]string, len(decl.Fields))
	for i, f := range decl.Fields {
		tys[i] = f.Ty
		sig[i] = b.ns.SignatureType(f.Ty)
	}
	selector := Selector(fmt.Sprintf("%s(%s)", decl.Name, strings.Join(sig, ",")))
	args := b.expressions(s.Args)
	b.cfg.Add(b.vartab, &AssertFailure{Expr: encodeWithSelector(selector, tys, args)})
}

// emit lowers an emit. The first topic is the event signature hash unless
// the event is anonymous; indexed reference types are hashed.
func (b *builder) emit(s *sema.Emit) {
	decl := b.ns.Events[s.EventNo]
	args := b.expressions(s.Args)

	var topics, data []sema.Expression
	var dataTys []sema.Type
	if !decl.Anonymous {
		topics = append(topics, &sema.BytesLiteral{
			Loc:   s.EventLoc,
			Ty:    sema.Bytes{N: 32},
			Value: Hash(sema.BuiltinKeccak256, []byte(decl.Signature)),
		})
	}
	for i, field := range decl.Fields {
		if i >= len(args) {
			break
		}
		if !field.Indexed {
			data = append(data, args[i])
			dataTys = append(dataTys, field.Ty)
			continue
		}
		if sema.IsReferenceType(field.Ty, b.ns) {
			topics = append(topics, &sema.Builtin{
				Loc:  args[i].NodeLoc(),
				Tys:  []sema.Type{sema.Bytes{N: 32}},
				Kind: sema.BuiltinKeccak256,
				Args: []sema.Expression{&sema.AbiEncode{Loc: args[i].NodeLoc(), Tys: []sema.Type{field.Ty}, Args: []sema.Expression{args[i]}}},
			})
			continue
		}
		topics = append(topics, args[i])
	}

	b.cfg.Add(b.vartab, &EmitEvent{EventNo: s.EventNo, Data: data, DataTys: dataTys, Topics: topics})
}

// tryCatch lowers the call with a success flag. On failure the revert data
// is matched against Error(string) and Panic(uint256) in turn before the
// catch all clause, or is rethrown when there is none.
func (b *builder) tryCatch(s *sema.TryCatch) {
	success := b.vartab.TempName("success", boolTy)

	var results []int
	switch e := s.Expr.(type) {
	case *sema.ExternalFunctionCall:
		address, payload, value := b.externalCallParts(e)
		b.cfg.Add(b.vartab, &ExternalCall{Success: success, FunctionNo: e.FunctionNo, Address: address, Payload: payload, Value: value})
	case *sema.Constructor:
		res := b.vartab.TempName("contract", sema.Contract{No: e.ContractNo})
		args := b.expressions(e.Args)
		var value sema.Expression
		if e.Value != nil {
			value = b.expression(e.Value)
		}
		b.cfg.Add(b.vartab, &Constructor{Success: success, Res: res, ContractNo: e.ContractNo, Args: args, Value: value})
		results = []int{res}
	}

	okBlock := b.cfg.NewBasicBlock("try_success")
	catchBlock := b.cfg.NewBasicBlock("catch")
	finallyBlock := -1
	if s.IsReachable {
		finallyBlock = b.cfg.NewBasicBlock("finally")
	}
	toFinally := func(reachable bool) {
		if reachable {
			b.cfg.AddCodegen(b.vartab, &Branch{Block: finallyBlock})
		}
	}

	b.cfg.AddCodegen(b.vartab, &BranchCond{
		Cond:  &sema.Variable{Loc: pt.Codegen, Ty: boolTy, VarNo: success},
		True:  okBlock,
		False: catchBlock,
	})

	b.cfg.SetBasicBlock(okBlock)
	if call, ok := s.Expr.(*sema.ExternalFunctionCall); ok && len(call.Returns) > 0 {
		res := make([]int, len(call.Returns))
		for i, ty := range call.Returns {
			if i < len(s.Returns) && s.Returns[i].VarNo >= 0 {
				res[i] = b.mapVar(s.Returns[i].VarNo)
				continue
			}
			res[i] = b.vartab.TempAnonymous(ty)
		}
		b.cfg.AddCodegen(b.vartab, &AbiDecode{Res: res, ExceptionBlock: -1, Tys: call.Returns, Data: &sema.ReturnData{Loc: pt.Codegen}})
	} else if len(results) > 0 && len(s.Returns) > 0 && s.Returns[0].VarNo >= 0 {
		b.setVar(pt.Codegen, s.Returns[0].VarNo, &sema.Variable{Loc: pt.Codegen, Ty: b.vartab.Var(results[0]).Ty, VarNo: results[0]}, true)
	}
	toFinally(b.statements(s.OkStmt))

	b.cfg.SetBasicBlock(catchBlock)
	for i := range s.Errors {
		clause := &s.Errors[i]
		selector := errorSelector
		ty := sema.Type(sema.String{})
		if clause.Name == "Panic" {
			selector = panicSelector
			ty = uint256Ty
		}

		next := b.cfg.NewBasicBlock("catch_next")
		var res int
		if clause.ParamPos >= 0 {
			res = b.mapVar(clause.ParamPos)
		} else {
			res = b.vartab.TempAnonymous(ty)
		}
		b.cfg.AddCodegen(b.vartab, &AbiDecode{
			Res:            []int{res},
			Selector:       &selector,
			ExceptionBlock: next,
			Tys:            []sema.Type{ty},
			Data:           &sema.ReturnData{Loc: pt.Codegen},
		})
		toFinally(b.statements(clause.Stmt))
		b.cfg.SetBasicBlock(next)
	}

	if s.CatchAll == nil {
		b.cfg.AddCodegen(b.vartab, &AssertFailure{Expr: &sema.ReturnData{Loc: pt.Codegen}})
	} else {
		if s.CatchAll.ParamPos >= 0 {
			b.setVar(pt.Codegen, s.CatchAll.ParamPos, &sema.ReturnData{Loc: pt.Codegen}, true)
		}
		toFinally(b.statements(s.CatchAll.Stmt))
	}

	if finallyBlock >= 0 {
		b.cfg.SetBasicBlock(finallyBlock)
	}
}

// Selector returns the first four bytes of the keccak256 hash of a
// signature.
func Selector(signature string) uint32 {
	return encbinary.BigEndian.Uint32(Hash(sema.BuiltinKeccak256, []byte(signature)))
}

func selectorLiteral(selector uint32) *sema.BytesLiteral {
	return &sema.BytesLiteral{
		Loc:   pt.Codegen,
		Ty:    sema.Bytes{N: 4},
		Value: encbinary.BigEndian.AppendUint32(nil, selector),
	}
}

func encodeWithSelector(selector uint32, tys []sema.Type, args []sema.Expression) sema.Expression {
	return &sema.AbiEncode{
		Loc:    pt.Codegen,
		Tys:    tys,
		Packed: []sema.Expression{selectorLiteral(selector)},
		Args:   args,
	}
}
