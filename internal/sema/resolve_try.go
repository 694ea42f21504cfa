package sema

import (
	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

func (r *resolver) tryCatch(s *pt.TryStmt, res *[]Statement) (bool, error) {
	if r.ns.Target.Is(ChainSolana) {
		return true, r.errorf(diagnostics.ErrorTargetUnsupported, s.Loc, "The try-catch statement is not supported on Solana")
	}

	expr, err := r.expression(s.Expr, ResolveUnknown)
	if err != nil {
		return true, err
	}

	var returns []Type
	var callee string
	switch e := expr.(type) {
	case *ExternalFunctionCall:
		returns = e.Returns
		callee = r.ns.Functions[e.FunctionNo].Name
	case *Constructor:
		returns = []Type{Contract{No: e.ContractNo}}
		callee = r.ns.Contracts[e.ContractNo].Name
		if len(s.Returns) > 1 {
			return true, r.errorf(diagnostics.ErrorTryCatch, s.Loc, "constructor returns single contract, not %d values", len(s.Returns))
		}
	default:
		return true, r.errorf(diagnostics.ErrorTryCatch, s.Expr.NodeLoc(), "try only supports external calls or constructor calls")
	}

	if s.Ok == nil {
		return true, r.errorf(diagnostics.ErrorTryCatch, s.Loc, "code block missing for no catch")
	}

	okScope := r.symtable.EnterScope()
	defer okScope.Leave()

	if s.HasReturns && len(s.Returns) != len(returns) {
		return true, r.errorf(diagnostics.ErrorTryCatch, s.Loc, "try returns list has %d entries while function returns %d values", len(s.Returns), len(returns))
	}

	var params []TryReturn
	for i, entry := range s.Returns {
		if entry.Param == nil {
			return true, r.errorf(diagnostics.ErrorTryCatch, entry.Loc, "missing return type")
		}
		p := entry.Param
		ty, err := r.varDeclTy(p.Ty, p.Storage)
		if err != nil {
			return true, err
		}
		if Deref(ty) != Deref(returns[i]) {
			return true, r.errorf(diagnostics.ErrorTryCatch, p.Ty.NodeLoc(), "type '%s' does not match return value of function '%s'", r.typeString(ty), callee)
		}

		ret := TryReturn{VarNo: -1, Param: r.param(p.Loc, p.Name, ty, p.Ty)}
		if p.Name != nil {
			pos, ok := r.symtable.Add(*p.Name, ty, r.ns, r.ctx, UsageTryCatchReturn, p.Storage, r.diags)
			if !ok {
				return true, ErrResolve
			}
			r.symtable.Vars[pos].Assigned = true
			ret.VarNo = pos
		}
		params = append(params, ret)
	}

	var okStmts []Statement
	reachable, err := r.statement(s.Ok, &okStmts)
	if err != nil {
		reachable = true
	}
	okScope.Leave()

	stmt := &TryCatch{Loc: s.Loc, Expr: expr, Returns: params, OkStmt: okStmts}

	seen := make(map[string]pt.Loc)
	for _, c := range s.Catches {
		name := ""
		if c.Name != nil {
			name = c.Name.Name
		}
		if prev, dup := seen[name]; dup {
			msg := "duplicate catch clause"
			if name != "" {
				msg = "duplicate '" + name + "' catch clause"
			}
			r.diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorTryCatch, c.Loc, msg, prev, "previous catch clause"))
			return true, ErrResolve
		}
		seen[name] = c.Loc

		clause, clauseReachable, err := r.catchClause(c)
		if err != nil {
			return true, err
		}
		reachable = reachable || clauseReachable
		if name == "" {
			stmt.CatchAll = clause
		} else {
			stmt.Errors = append(stmt.Errors, *clause)
		}
	}

	stmt.IsReachable = reachable
	*res = append(*res, stmt)
	return reachable, nil
}

func (r *resolver) catchClause(c pt.CatchClause) (*CatchClause, bool, error) {
	clause := &CatchClause{Loc: c.Loc, ParamPos: -1}
	if c.Name != nil {
		clause.Name = c.Name.Name
	}

	var want Type
	switch clause.Name {
	case "":
		want = DynamicBytes{}
	case "Error":
		want = String{}
	case "Panic":
		want = uint256
	default:
		return nil, false, r.errorf(diagnostics.ErrorTryCatch, c.Name.Loc, "only catch 'Error' and 'Panic' are supported, not '%s'", clause.Name)
	}

	scope := r.symtable.EnterScope()
	defer scope.Leave()

	if c.Param != nil {
		p := c.Param
		ty, err := r.ns.ResolveType(r.ctx.FileNo, r.ctx.ContractNo, p.Ty, r.diags)
		if err != nil {
			return nil, false, err
		}
		if ty != want {
			switch clause.Name {
			case "":
				return nil, false, r.errorf(diagnostics.ErrorTryCatch, p.Ty.NodeLoc(), "catch can only take 'bytes memory', not '%s'", r.typeString(ty))
			case "Error":
				return nil, false, r.errorf(diagnostics.ErrorTryCatch, p.Ty.NodeLoc(), "catch Error(...) can only take 'string memory', not '%s'", r.typeString(ty))
			default:
				return nil, false, r.errorf(diagnostics.ErrorTryCatch, p.Ty.NodeLoc(), "catch Panic(...) can only take 'uint256', not '%s'", r.typeString(ty))
			}
		}
		param := r.param(p.Loc, p.Name, ty, p.Ty)
		clause.Param = &param
		if p.Name != nil {
			pos, ok := r.symtable.Add(*p.Name, ty, r.ns, r.ctx, UsageTryCatchError, p.Storage, r.diags)
			if !ok {
				return nil, false, ErrResolve
			}
			r.symtable.Vars[pos].Assigned = true
			clause.ParamPos = pos
		}
	}

	reachable, err := r.statement(c.Body, &clause.Stmt)
	if err != nil {
		reachable = true
	}
	return clause, reachable, nil
}
