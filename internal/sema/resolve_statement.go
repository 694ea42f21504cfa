package sema

import (
	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// statement resolves stmt and appends the result to res. The returned bool
// reports whether control can reach the next statement. Errors have
// already been recorded in r.diags.
func (r *resolver) statement(stmt pt.Statement, res *[]Statement) (bool, error) {
	switch s := stmt.(type) {
	case *pt.Block:
		return r.block(s, res)

	case *pt.VariableDefinitionStmt:
		return r.variableDefinition(s, res)

	case *pt.IfStmt:
		cond, err := r.condition(s.Cond)
		if err != nil {
			return true, err
		}
		then, thenReachable := r.scopedBody(s.Then)
		var els []Statement
		elseReachable := true
		if s.Else != nil {
			els, elseReachable = r.scopedBody(s.Else)
		}
		reachable := thenReachable || elseReachable
		*res = append(*res, &If{Loc: s.Loc, IsReachable: reachable, Cond: cond, Then: then, Else: els})
		return reachable, nil

	case *pt.WhileStmt:
		cond, err := r.condition(s.Cond)
		if err != nil {
			return true, err
		}
		r.ctx.Loops.EnterScope()
		body, _ := r.scopedBody(s.Body)
		loop := r.ctx.Loops.LeaveScope()
		reachable := !isTrue(cond) || loop.NoBreaks > 0
		*res = append(*res, &While{Loc: s.Loc, IsReachable: reachable, Cond: cond, Body: body})
		return reachable, nil

	case *pt.DoWhileStmt:
		r.ctx.Loops.EnterScope()
		body, _ := r.scopedBody(s.Body)
		loop := r.ctx.Loops.LeaveScope()
		cond, err := r.condition(s.Cond)
		if err != nil {
			return true, err
		}
		reachable := !isTrue(cond) || loop.NoBreaks > 0
		*res = append(*res, &DoWhile{Loc: s.Loc, IsReachable: reachable, Body: body, Cond: cond})
		return reachable, nil

	case *pt.ForStmt:
		return r.forStmt(s, res)

	case *pt.ExpressionStmt:
		return r.expressionStmt(s, res)

	case *pt.BreakStmt:
		if !r.ctx.Loops.DoBreak() {
			return false, r.errorf(diagnostics.ErrorLoopControl, s.Loc, "break statement not in loop")
		}
		*res = append(*res, &Break{Loc: s.Loc})
		return false, nil

	case *pt.ContinueStmt:
		if !r.ctx.Loops.DoContinue() {
			return false, r.errorf(diagnostics.ErrorLoopControl, s.Loc, "continue statement not in loop")
		}
		*res = append(*res, &Continue{Loc: s.Loc})
		return false, nil

	case *pt.ReturnStmt:
		return r.returnStmt(s, res)

	case *pt.EmitStmt:
		return r.emit(s, res)

	case *pt.RevertStmt:
		return r.revert(s, res)

	case *pt.RevertNamedArgsStmt:
		return r.revertNamed(s, res)

	case *pt.TryStmt:
		return r.tryCatch(s, res)

	case *pt.AssemblyStmt:
		return r.assembly(s, res)

	case *pt.ArgsStmt:
		return true, r.errorf(diagnostics.ErrorSyntax, s.Loc, "expected code block, not list of named arguments")

	case *pt.BadStmt:
		return true, ErrResolve
	}
	return true, r.errorf(diagnostics.ErrorGenericSemantic, stmt.NodeLoc(), "unexpected statement")
}

// block resolves a braced block in its own scope. A statement that fails
// to resolve does not stop the rest of the block from being checked.
func (r *resolver) block(b *pt.Block, res *[]Statement) (bool, error) {
	scope := r.symtable.EnterScope()
	defer scope.Leave()
	restore := r.ctx.SetUnchecked(r.ctx.Unchecked || b.Unchecked)
	defer restore()

	var body []Statement
	reachable := true
	warned := false
	for _, stmt := range b.Statements {
		if !reachable && !warned {
			r.diags.Push(diagnostics.UnreachableStatement(stmt.NodeLoc()))
			warned = true
		}
		ok, err := r.statement(stmt, &body)
		if err != nil {
			ok = true
		}
		reachable = ok
	}

	*res = append(*res, &Block{Loc: b.Loc, Unchecked: b.Unchecked, Statements: body, IsReachable: reachable})
	return reachable, nil
}

// scopedBody resolves the body of an if or a loop in a new scope. Errors
// are recorded but the body is still considered reachable.
func (r *resolver) scopedBody(stmt pt.Statement) ([]Statement, bool) {
	scope := r.symtable.EnterScope()
	defer scope.Leave()

	var body []Statement
	reachable, err := r.statement(stmt, &body)
	if err != nil {
		return body, true
	}
	return body, reachable
}

func (r *resolver) condition(expr pt.Expression) (Expression, error) {
	cond, err := r.expression(expr, ResolveType(Bool{}))
	if err != nil {
		return nil, err
	}
	return CastTo(cond, expr.NodeLoc(), Bool{}, true, r.ns, r.diags)
}

func isTrue(e Expression) bool {
	b, ok := e.(*BoolLiteral)
	return ok && b.Value
}

func (r *resolver) forStmt(s *pt.ForStmt, res *[]Statement) (bool, error) {
	scope := r.symtable.EnterScope()
	defer scope.Leave()

	var init []Statement
	if s.Init != nil {
		if _, err := r.statement(s.Init, &init); err != nil {
			return true, err
		}
	}

	var cond Expression
	if s.Cond != nil {
		var err error
		if cond, err = r.condition(s.Cond); err != nil {
			return true, err
		}
	}

	r.ctx.Loops.EnterScope()
	var body []Statement
	bodyReachable := true
	if s.Body != nil {
		body, bodyReachable = r.scopedBody(s.Body)
	}
	loop := r.ctx.Loops.LeaveScope()

	var next Expression
	if s.Next != nil && (bodyReachable || loop.NoContinues > 0) {
		var err error
		if next, err = r.expression(s.Next, ResolveDiscard); err != nil {
			return true, err
		}
	}

	reachable := true
	if cond == nil || isTrue(cond) {
		reachable = loop.NoBreaks > 0
	}

	*res = append(*res, &For{Loc: s.Loc, IsReachable: reachable, Init: init, Cond: cond, Next: next, Body: body})
	return reachable, nil
}

// varDeclTy resolves the declared type of a local variable, applying its
// data location.
func (r *resolver) varDeclTy(ty pt.Expression, storage *pt.StorageLocation) (Type, error) {
	varTy, err := r.ns.ResolveType(r.ctx.FileNo, r.ctx.ContractNo, ty, r.diags)
	if err != nil {
		return nil, err
	}

	if storage != nil {
		if !CanHaveDataLocation(varTy) {
			return nil, r.errorf(diagnostics.ErrorStorageLocation, storage.Loc, "data location '%s' only allowed for array, struct or mapping type", storage)
		}
		if storage.Kind == pt.Storage {
			return StorageRef{Elem: varTy}, nil
		}
	}

	if ContainsMapping(varTy, r.ns) {
		return nil, r.errorf(diagnostics.ErrorStorageLocation, ty.NodeLoc(), "mapping only allowed in storage")
	}
	if !FitsInMemory(varTy, r.ns) {
		return nil, r.errorf(diagnostics.ErrorInvalidType, ty.NodeLoc(), "type is too large to fit into memory")
	}
	return varTy, nil
}

func (r *resolver) variableDefinition(s *pt.VariableDefinitionStmt, res *[]Statement) (bool, error) {
	ty, err := r.varDeclTy(s.Decl.Ty, s.Decl.Storage)
	if err != nil {
		return true, err
	}

	var init Expression
	if s.Initializer != nil {
		v, err := r.expression(s.Initializer, ResolveType(ty))
		if err != nil {
			return true, err
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		if init, err = CastTo(v, s.Initializer.NodeLoc(), ty, true, r.ns, r.diags); err != nil {
			return true, err
		}
	}

	if s.Decl.Name == nil {
		return true, r.errorf(diagnostics.ErrorSyntax, s.Decl.Loc, "missing variable name")
	}
	pos, ok := r.symtable.Add(*s.Decl.Name, ty, r.ns, r.ctx, UsageLocal, s.Decl.Storage, r.diags)
	if !ok {
		return true, ErrResolve
	}
	r.symtable.Vars[pos].Initialized = init != nil

	*res = append(*res, &VariableDecl{
		Loc:         s.Loc,
		VarNo:       pos,
		Param:       r.param(s.Decl.Loc, s.Decl.Name, ty, s.Decl.Ty),
		Initializer: init,
	})
	return true, nil
}

func (r *resolver) param(loc pt.Loc, name *pt.Identifier, ty Type, tyExpr pt.Expression) Parameter {
	p := Parameter{Loc: loc, Ty: ty, TyLoc: tyExpr.NodeLoc()}
	if name != nil {
		id := *name
		p.ID = &id
	}
	return p
}

func (r *resolver) expressionStmt(s *pt.ExpressionStmt, res *[]Statement) (bool, error) {
	switch e := s.Expr.(type) {
	case *pt.Delete:
		return r.deleteStmt(e, res)

	case *pt.Variable:
		if e.Name == "_" {
			if r.ctx.FunctionNo < 0 || !r.ns.Functions[r.ctx.FunctionNo].IsModifier() {
				return true, r.errorf(diagnostics.ErrorModifierPlaceholder, e.Loc, "'_' statement only permitted in modifiers")
			}
			*res = append(*res, &Underscore{Loc: e.Loc})
			return true, nil
		}

	case *pt.FunctionCall, *pt.NamedFunctionCall:
		v, err := r.expression(s.Expr, ResolveDiscard)
		if err != nil {
			return true, err
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		reachable := !neverReturns(v)
		*res = append(*res, &ExpressionStmt{Loc: s.Loc, Expr: v, IsReachable: reachable})
		return reachable, nil

	case *pt.Assign:
		if l, ok := e.Left.(*pt.List); ok && e.Op == "=" {
			return true, r.destructure(e.Loc, l.Entries, e.Right, res)
		}
	}

	v, err := r.expression(s.Expr, ResolveUnknown)
	if err != nil {
		return true, err
	}
	reachable := !neverReturns(v)
	*res = append(*res, &ExpressionStmt{Loc: s.Loc, Expr: v, IsReachable: reachable})
	return reachable, nil
}

func neverReturns(e Expression) bool {
	tys := TupleTypes(e)
	if len(tys) != 1 {
		return false
	}
	_, ok := tys[0].(Unreachable)
	return ok
}

func (r *resolver) deleteStmt(e *pt.Delete, res *[]Statement) (bool, error) {
	v, err := r.expression(e.Expr, ResolveUnknown)
	if err != nil {
		return true, err
	}
	ref, ok := v.Type().(StorageRef)
	if !ok {
		r.diags.Push(diagnostics.WarningAt(diagnostics.WarningDeleteNotStorage, e.Loc, "argument to 'delete' should be storage reference"))
		return true, ErrResolve
	}
	if _, isMapping := ref.Elem.(Mapping); isMapping {
		return true, r.errorf(diagnostics.ErrorInvalidOperation, e.Loc, "'delete' cannot be applied to mapping type")
	}
	r.markAssigned(v)
	*res = append(*res, &Delete{Loc: e.Loc, Ty: ref.Elem, Expr: v})
	return true, nil
}

// exprList splits a parenthesized list into its expressions. Any other
// expression is a list of one.
func (r *resolver) exprList(expr pt.Expression) ([]pt.Expression, error) {
	l, ok := expr.(*pt.List)
	if !ok {
		return []pt.Expression{expr}, nil
	}
	exprs := make([]pt.Expression, 0, len(l.Entries))
	for _, entry := range l.Entries {
		switch {
		case entry.Param == nil:
			return nil, r.errorf(diagnostics.ErrorSyntax, entry.Loc, "stray comma")
		case entry.Param.Name != nil:
			return nil, r.errorf(diagnostics.ErrorSyntax, entry.Param.Name.Loc, "unexpected identifier '%s'", entry.Param.Name.Name)
		case entry.Param.Storage != nil:
			return nil, r.errorf(diagnostics.ErrorStorageLocation, entry.Param.Storage.Loc, "storage specified not permitted here")
		}
		exprs = append(exprs, entry.Param.Ty)
	}
	return exprs, nil
}

func (r *resolver) returnStmt(s *pt.ReturnStmt, res *[]Statement) (bool, error) {
	f := r.ns.Functions[r.ctx.FunctionNo]

	if s.Expr == nil {
		if len(r.symtable.Returns) != len(f.Returns) {
			return false, r.errorf(diagnostics.ErrorInvalidReturn, s.Loc, "missing return value, %d return values expected", len(f.Returns))
		}
		*res = append(*res, &Return{Loc: s.Loc})
		return false, nil
	}

	expr, err := r.returnWithValues(s.Expr, f)
	if err != nil {
		return false, err
	}
	for _, pos := range r.symtable.Returns {
		r.symtable.Vars[pos].Assigned = true
	}
	*res = append(*res, &Return{Loc: s.Loc, Expr: expr})
	return false, nil
}

func (r *resolver) returnWithValues(expr pt.Expression, f *Function) (Expression, error) {
	expr = pt.RemoveParenthesis(expr)

	switch e := expr.(type) {
	case *pt.FunctionCall, *pt.NamedFunctionCall:
		v, err := r.expression(expr, ResolveUnknown)
		if err != nil {
			return nil, err
		}
		tys := TupleTypes(v)
		if len(tys) == 1 {
			switch tys[0].(type) {
			case Void, Unreachable:
				tys = nil
			}
		}
		if err := r.returnCount(expr.NodeLoc(), len(f.Returns), len(tys)); err != nil {
			return nil, err
		}
		for i, ty := range tys {
			value := &Variable{Loc: expr.NodeLoc(), Ty: ty, VarNo: i}
			if _, err := CastTo(value, expr.NodeLoc(), f.Returns[i].Ty, true, r.ns, r.diags); err != nil {
				return nil, err
			}
		}
		return v, nil

	case *pt.ConditionalOperator:
		cond, err := r.condition(e.Cond)
		if err != nil {
			return nil, err
		}
		left, err := r.returnWithValues(e.True, f)
		if err != nil {
			return nil, err
		}
		right, err := r.returnWithValues(e.False, f)
		if err != nil {
			return nil, err
		}
		return &ConditionalOperator{Loc: e.Loc, Ty: Unreachable{}, Cond: cond, True: left, False: right}, nil
	}

	exprs, err := r.exprList(expr)
	if err != nil {
		return nil, err
	}
	if err := r.returnCount(expr.NodeLoc(), len(f.Returns), len(exprs)); err != nil {
		return nil, err
	}

	values := make([]Expression, 0, len(exprs))
	for i, e := range exprs {
		ty := f.Returns[i].Ty
		v, err := r.expression(e, ResolveType(ty))
		if err != nil {
			return nil, err
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		if v, err = CastTo(v, e.NodeLoc(), ty, true, r.ns, r.diags); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return &List{Loc: expr.NodeLoc(), Items: values}, nil
}

func (r *resolver) returnCount(loc pt.Loc, expected, got int) error {
	switch {
	case expected > 0 && got == 0:
		return r.errorf(diagnostics.ErrorInvalidReturn, loc, "missing return value, %d return values expected", expected)
	case expected == 0 && got > 0:
		return r.errorf(diagnostics.ErrorInvalidReturn, loc, "function has no return values")
	case expected != got:
		return r.errorf(diagnostics.ErrorInvalidReturn, loc, "incorrect number of return values, expected %d but got %d", expected, got)
	}
	return nil
}

// destructure resolves (a, , uint c) = rhs. Declared variables are in scope
// for the right hand side.
func (r *resolver) destructure(loc pt.Loc, entries []pt.ListEntry, rhs pt.Expression, res *[]Statement) error {
	fields := make([]DestructureField, 0, len(entries))
	tys := make([]Type, 0, len(entries))

	for _, entry := range entries {
		if entry.Param == nil {
			fields = append(fields, DestructureField{Kind: DestructureNone, Loc: entry.Loc, VarNo: -1})
			tys = append(tys, nil)
			continue
		}
		p := entry.Param
		if p.Name == nil {
			if p.Storage != nil {
				return r.errorf(diagnostics.ErrorStorageLocation, p.Storage.Loc, "storage modifier '%s' not permitted on assignment", p.Storage)
			}
			target, ty, err := r.lvalue(p.Ty)
			if err != nil {
				return err
			}
			fields = append(fields, DestructureField{Kind: DestructureExpression, Loc: p.Loc, Expr: target, VarNo: -1})
			tys = append(tys, ty)
			continue
		}

		ty, err := r.varDeclTy(p.Ty, p.Storage)
		if err != nil {
			return err
		}
		pos, ok := r.symtable.Add(*p.Name, ty, r.ns, r.ctx, UsageDestructure, p.Storage, r.diags)
		if !ok {
			return ErrResolve
		}
		r.symtable.Vars[pos].Assigned = true
		fields = append(fields, DestructureField{
			Kind:  DestructureVariableDecl,
			Loc:   p.Loc,
			VarNo: pos,
			Param: r.param(p.Loc, p.Name, ty, p.Ty),
		})
		tys = append(tys, ty)
	}

	expr, err := r.destructureValues(loc, rhs, tys)
	if err != nil {
		return err
	}
	*res = append(*res, &Destructure{Loc: loc, Fields: fields, Expr: expr})
	return nil
}

// destructureValues resolves the right hand side of a destructuring
// assignment against the types on the left; nil marks a skipped slot.
func (r *resolver) destructureValues(loc pt.Loc, rhs pt.Expression, left []Type) (Expression, error) {
	rhs = pt.RemoveParenthesis(rhs)

	var v Expression
	switch e := rhs.(type) {
	case *pt.ConditionalOperator:
		cond, err := r.condition(e.Cond)
		if err != nil {
			return nil, err
		}
		t, err := r.destructureValues(loc, e.True, left)
		if err != nil {
			return nil, err
		}
		f, err := r.destructureValues(loc, e.False, left)
		if err != nil {
			return nil, err
		}
		return &ConditionalOperator{Loc: e.Loc, Ty: Unreachable{}, Cond: cond, True: t, False: f}, nil

	case *pt.List:
		if len(e.Entries) != len(left) {
			return nil, r.errorf(diagnostics.ErrorInvalidAssignment, loc, "destructuring assignment has %d elements on the left and %d on the right", len(left), len(e.Entries))
		}
		items := make([]Expression, 0, len(e.Entries))
		for i, entry := range e.Entries {
			if entry.Param == nil {
				return nil, r.errorf(diagnostics.ErrorSyntax, entry.Loc, "stray comma")
			}
			hint := ResolveUnknown
			if left[i] != nil {
				hint = ResolveType(left[i])
			}
			item, err := r.expression(entry.Param.Ty, hint)
			if err != nil {
				return nil, err
			}
			if tys := TupleTypes(item); len(tys) == 1 {
				switch tys[0].(type) {
				case Void, Unreachable:
					return nil, r.errorf(diagnostics.ErrorVoidInExpression, entry.Loc, "function does not return a value")
				}
			}
			if left[i] != nil {
				CheckConstantOverflow(item, r.ns, r.diags)
				if item, err = CastTo(item, entry.Loc, left[i], true, r.ns, r.diags); err != nil {
					return nil, err
				}
			}
			items = append(items, item)
		}
		return &List{Loc: e.Loc, Items: items}, nil

	default:
		var err error
		if v, err = r.expression(rhs, ResolveUnknown); err != nil {
			return nil, err
		}
	}

	tys := TupleTypes(v)
	if len(tys) != len(left) {
		return nil, r.errorf(diagnostics.ErrorInvalidAssignment, loc, "destructuring assignment has %d elements on the left and %d on the right", len(left), len(tys))
	}
	for i, ty := range left {
		if ty == nil {
			continue
		}
		value := &Variable{Loc: v.NodeLoc(), Ty: tys[i], VarNo: i}
		if _, err := CastTo(value, v.NodeLoc(), ty, true, r.ns, r.diags); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// assembly checks the dialect and flags of an inline assembly block. The
// body itself is kept as source text.
func (r *resolver) assembly(s *pt.AssemblyStmt, res *[]Statement) (bool, error) {
	if s.Dialect != nil && s.Dialect.Value != "evmasm" {
		return true, r.errorf(diagnostics.ErrorSyntax, s.Dialect.Loc, "only evmasm dialect is supported")
	}

	memorySafe := false
	var seen *pt.Loc
	for i := range s.Flags {
		flag := &s.Flags[i]
		if flag.Value == "memory-safe" && r.ns.Target.Is(ChainEVM) {
			if seen != nil {
				r.diags.Push(diagnostics.NewWarning(diagnostics.WarningAssemblyFlag, flag.Loc,
					"flag '"+flag.Value+"' already specified").
					WithNote(*seen, "previous location").Build())
				continue
			}
			seen = &flag.Loc
			memorySafe = true
			continue
		}
		r.diags.Push(diagnostics.WarningAt(diagnostics.WarningAssemblyFlag, flag.Loc, "flag '"+flag.Value+"' not supported"))
	}

	*res = append(*res, &Assembly{Loc: s.Loc, MemorySafe: memorySafe, Source: s.Source, IsReachable: true})
	return true, nil
}
