package sema

import (
	"fmt"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// resolveBody resolves the modifiers and body of function no. Parameters
// and return variables are entered into a fresh symtable first.
func (ns *Namespace) resolveBody(no int) {
	f := ns.Functions[no]
	def := f.source
	if def == nil {
		return
	}

	symtable := NewSymtable()
	ctx := NewContext(f.FileNo)
	ctx.ContractNo = f.ContractNo
	ctx.FunctionNo = no

	var diags diagnostics.List
	r := &resolver{ctx: ctx, ns: ns, symtable: symtable, diags: &diags}

	for i, entry := range def.Params {
		if i >= len(f.Params) {
			break
		}
		if entry.Param == nil || entry.Param.Name == nil {
			symtable.Arguments = append(symtable.Arguments, -1)
			continue
		}
		pos, ok := symtable.Add(*entry.Param.Name, f.Params[i].Ty, ns, ctx, UsageParameter, entry.Param.Storage, &diags)
		if !ok {
			symtable.Arguments = append(symtable.Arguments, -1)
			continue
		}
		symtable.Vars[pos].Assigned = true
		symtable.Arguments = append(symtable.Arguments, pos)
	}

	if def.Ty == pt.FunctionTyFunction {
		for _, m := range def.Modifiers {
			call, err := r.modifierCall(m)
			if err == nil {
				f.Modifiers = append(f.Modifiers, call)
			}
		}
	} else if len(def.Modifiers) > 0 && def.Ty != pt.FunctionTyConstructor {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAttribute, def.Modifiers[0].Loc,
			fmt.Sprintf("%s cannot have modifiers", def.Ty)))
	}

	// unnamed storage returns have no sensible default value
	returnRequired := false
	for i, entry := range def.Returns {
		if i >= len(f.Returns) {
			break
		}
		ret := f.Returns[i]
		if entry.Param != nil && entry.Param.Name != nil {
			pos, ok := symtable.Add(*entry.Param.Name, ret.Ty, ns, ctx, UsageReturn, entry.Param.Storage, &diags)
			if ok {
				symtable.Returns = append(symtable.Returns, pos)
			}
			continue
		}
		if IsContractStorage(ret.Ty) {
			returnRequired = true
		}
		symtable.Returns = append(symtable.Returns, symtable.AddTemp(entry.Loc, ret.Ty, UsageAnonymousReturn))
	}

	f.Symtable = symtable
	if def.Body == nil {
		ns.Diagnostics.Extend(diags)
		return
	}

	var body []Statement
	reachable, err := r.statement(def.Body, &body)
	if err == nil && reachable && returnRequired {
		for _, ret := range f.Returns {
			if !ret.HasName() && IsContractStorage(ret.Ty) {
				diags.Push(diagnostics.ErrorAt(diagnostics.ErrorMissingReturn, ret.Loc,
					"storage reference must be given value with a return statement"))
			}
		}
	}

	if f.IsModifier() && !hasUnderscore(body) {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorModifierPlaceholder, def.Body.Loc.EndRange(),
			"missing '_' in modifier"))
	}

	ns.Diagnostics.Extend(diags)
	f.Body = body
	f.source = nil
}

// modifierCall resolves a modifier invocation on a function to a call of
// the modifier.
func (r *resolver) modifierCall(m pt.ModifierInvocation) (Expression, error) {
	if len(m.Name.Identifiers) != 1 {
		return nil, r.errorf(diagnostics.ErrorUndefinedFunction, m.Loc, "unknown modifier '%s' on function", m.Name)
	}
	id := m.Name.Identifiers[0]

	sym := r.ns.Lookup(r.ctx.FileNo, r.ctx.ContractNo, id.Name)
	var candidates []int
	if sym != nil && sym.Kind == SymbolFunction {
		for _, o := range sym.Overloads {
			if r.ns.Functions[o.No].IsModifier() {
				candidates = append(candidates, o.No)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, r.errorf(diagnostics.ErrorUndefinedFunction, id.Loc, "unknown modifier '%s'", id.Name)
	}

	var failed diagnostics.List
	for _, no := range candidates {
		var scratch diagnostics.List
		args, ok := r.matchArgs(m.Loc, fmt.Sprintf("modifier '%s'", id.Name), r.ns.Functions[no].Params, positional(m.Args), &scratch)
		if ok {
			r.diags.Extend(scratch)
			return &InternalFunctionCall{Loc: m.Loc, FunctionNo: no, Args: args}, nil
		}
		failed = scratch
	}

	if len(candidates) == 1 {
		r.diags.Extend(failed)
		return nil, ErrResolve
	}
	return nil, r.errorf(diagnostics.ErrorUndefinedFunction, m.Loc, "cannot find modifier '%s' which matches arguments", id.Name)
}

func hasUnderscore(stmts []Statement) bool {
	found := false
	WalkStatements(stmts, func(s Statement) bool {
		if _, ok := s.(*Underscore); ok {
			found = true
		}
		return !found
	})
	return found
}

// WalkStatements calls f for every statement, depth first, descending into
// a statement's children while f returns true.
func WalkStatements(stmts []Statement, f func(Statement) bool) {
	for _, s := range stmts {
		if !f(s) {
			continue
		}
		switch s := s.(type) {
		case *Block:
			WalkStatements(s.Statements, f)
		case *If:
			WalkStatements(s.Then, f)
			WalkStatements(s.Else, f)
		case *While:
			WalkStatements(s.Body, f)
		case *DoWhile:
			WalkStatements(s.Body, f)
		case *For:
			WalkStatements(s.Init, f)
			WalkStatements(s.Body, f)
		case *TryCatch:
			WalkStatements(s.OkStmt, f)
			for _, c := range s.Errors {
				WalkStatements(c.Stmt, f)
			}
			if s.CatchAll != nil {
				WalkStatements(s.CatchAll.Stmt, f)
			}
		}
	}
}
