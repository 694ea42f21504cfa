package sema

import (
	"fmt"
	"slices"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// divert sends diagnostics to diags until restore is called. Overload
// resolution uses it to try candidates without reporting their errors.
func (r *resolver) divert(diags *diagnostics.List) (restore func()) {
	saved := r.diags
	r.diags = diags
	return func() { r.diags = saved }
}

type eventMatch struct {
	no    int
	args  []Expression
	diags diagnostics.List
}

func (r *resolver) emit(s *pt.EmitStmt, res *[]Statement) (bool, error) {
	var callee pt.Expression
	args := callArgs{}
	switch e := s.Event.(type) {
	case *pt.FunctionCall:
		callee, args = e.Callee, positional(e.Args)
	case *pt.NamedFunctionCall:
		callee, args = e.Callee, named(e.Args)
	default:
		return true, r.errorf(diagnostics.ErrorEventResolution, s.Event.NodeLoc(), "expression found where event expected")
	}

	// the arguments must resolve on their own before an event is picked
	var scratch diagnostics.List
	restore := r.divert(&scratch)
	for _, arg := range args.exprs() {
		_, _ = r.expression(arg, ResolveUnknown)
	}
	restore()
	if scratch.AnyErrors() {
		r.diags.Extend(scratch)
		return true, ErrResolve
	}

	nos, err := r.ns.ResolveEvent(r.ctx.FileNo, r.ctx.ContractNo, callee, r.diags)
	if err != nil {
		return true, err
	}

	var matches []eventMatch
	var failed []diagnostics.List
	for _, no := range nos {
		var diags diagnostics.List
		values, ok := r.eventArgs(s.Event.NodeLoc(), r.ns.Events[no], args, &diags)
		if ok {
			matches = append(matches, eventMatch{no: no, args: values, diags: diags})
		} else {
			failed = append(failed, diags)
		}
	}

	matches = r.uniqueEvents(matches)

	switch {
	case len(matches) == 1:
		m := matches[0]
		r.diags.Extend(m.diags)
		r.ns.Events[m.no].Used = true
		if r.ctx.FunctionNo >= 0 {
			f := r.ns.Functions[r.ctx.FunctionNo]
			if !slices.Contains(f.EmitsEvents, m.no) {
				f.EmitsEvents = append(f.EmitsEvents, m.no)
			}
		}
		*res = append(*res, &Emit{Loc: s.Loc, EventNo: m.no, EventLoc: callee.NodeLoc(), Args: m.args})
		return true, nil

	case len(matches) > 1:
		b := diagnostics.NewError(diagnostics.ErrorEventResolution, s.Loc, "emit can be resolved to multiple events")
		for _, m := range matches {
			b.WithNote(r.ns.Events[m.no].Loc, "candidate event")
		}
		r.diags.Push(b.Build())

	case len(nos) == 1:
		r.diags.Extend(failed[0])

	default:
		b := diagnostics.NewError(diagnostics.ErrorEventResolution, s.Loc, "cannot find event with matching signature")
		for _, no := range nos {
			b.WithNote(r.ns.Events[no].Loc, "candidate event")
		}
		r.diags.Push(b.Build())
	}
	return true, ErrResolve
}

func (a callArgs) exprs() []pt.Expression {
	if !a.isNamed {
		return a.positional
	}
	exprs := make([]pt.Expression, len(a.named))
	for i, n := range a.named {
		exprs[i] = n.Expr
	}
	return exprs
}

// eventArgs resolves the arguments of an emit against one candidate event.
func (r *resolver) eventArgs(loc pt.Loc, ev *EventDecl, args callArgs, diags *diagnostics.List) ([]Expression, bool) {
	ordered := args.positional

	if args.isNamed {
		unnamed := 0
		for _, f := range ev.Fields {
			if !f.HasName() {
				unnamed++
			}
		}
		if unnamed > 0 {
			diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorEventResolution, loc,
				fmt.Sprintf("event cannot be emitted with named fields as %d of its fields do not have names", unnamed),
				ev.Loc, fmt.Sprintf("definition of %s", ev.Name)))
			return nil, false
		}
		if len(args.named) != len(ev.Fields) {
			diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorEventResolution, loc,
				fmt.Sprintf("event expects %d arguments, %d provided", len(ev.Fields), len(args.named)),
				ev.Loc, fmt.Sprintf("definition of %s", ev.Name)))
			return nil, false
		}
		byName := make(map[string]pt.NamedArgument, len(args.named))
		for _, a := range args.named {
			if prev, dup := byName[a.Name.Name]; dup {
				diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorDuplicateField, a.Name.Loc,
					fmt.Sprintf("duplicate argument with name '%s'", a.Name.Name), prev.Name.Loc, "previous argument"))
				return nil, false
			}
			byName[a.Name.Name] = a
		}
		ordered = make([]pt.Expression, len(ev.Fields))
		for i, f := range ev.Fields {
			a, ok := byName[f.Name()]
			if !ok {
				diags.Push(diagnostics.ErrorAt(diagnostics.ErrorMissingField, loc,
					fmt.Sprintf("missing argument '%s' to event '%s'", f.Name(), ev.Name)))
				return nil, false
			}
			ordered[i] = a.Expr
		}
	} else if len(ordered) != len(ev.Fields) {
		diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorEventResolution, loc,
			fmt.Sprintf("event type '%s' has %d fields, %d provided", ev.Name, len(ev.Fields), len(ordered)),
			ev.Loc, fmt.Sprintf("definition of %s", ev.Name)))
		return nil, false
	}

	restore := r.divert(diags)
	defer restore()

	values := make([]Expression, 0, len(ordered))
	ok := true
	for i, arg := range ordered {
		ty := ev.Fields[i].Ty
		v, err := r.expression(arg, ResolveType(ty))
		if err != nil {
			ok = false
			continue
		}
		CheckConstantOverflow(v, r.ns, diags)
		if v, err = CastTo(v, arg.NodeLoc(), ty, true, r.ns, diags); err != nil {
			ok = false
			continue
		}
		values = append(values, v)
	}
	return values, ok && !diags.AnyErrors()
}

// uniqueEvents drops matches identical to an earlier one. Under legacy
// rules a set of events differing only in indexed fields resolves to the
// first with a warning.
func (r *resolver) uniqueEvents(matches []eventMatch) []eventMatch {
	var unique []eventMatch
outer:
	for _, m := range matches {
		for _, u := range unique {
			if r.ns.Events[u.no].Identical(r.ns.Events[m.no]) {
				continue outer
			}
		}
		unique = append(unique, m)
	}

	if len(unique) <= 1 || !r.ns.LegacyEmit {
		return unique
	}
	first := r.ns.Events[unique[0].no]
	for _, m := range unique[1:] {
		if !first.IdenticalV05(r.ns.Events[m.no]) {
			return unique
		}
	}

	b := diagnostics.NewWarning(diagnostics.WarningAmbiguousEmit, first.Loc,
		"emit can be resolved to multiple incompatible events. This is permitted in Solidity v0.5 and earlier, however it could indicate a bug.")
	for _, m := range unique {
		b.WithNote(r.ns.Events[m.no].Loc, "candidate event")
	}
	r.diags.Push(b.Build())
	return unique[:1]
}

func (r *resolver) revert(s *pt.RevertStmt, res *[]Statement) (bool, error) {
	if s.Path == nil {
		switch len(s.Args) {
		case 0:
			*res = append(*res, &Revert{Loc: s.Loc, ErrorNo: -1})
			return false, nil
		case 1:
			reason, err := r.expression(s.Args[0], ResolveType(String{}))
			if err != nil {
				return false, err
			}
			if reason, err = CastTo(reason, s.Args[0].NodeLoc(), String{}, true, r.ns, r.diags); err != nil {
				return false, err
			}
			*res = append(*res, &Revert{Loc: s.Loc, ErrorNo: -1, Args: []Expression{reason}})
			return false, nil
		}
		keyword := pt.FileLoc(s.Loc.File, s.Loc.Start, s.Loc.Start+6)
		return false, r.errorf(diagnostics.ErrorRevert, keyword, "revert takes either no argument or a single reason string argument, %d provided", len(s.Args))
	}

	no, err := r.ns.ResolveError(r.ctx.FileNo, r.ctx.ContractNo, s.Path, r.diags)
	if err != nil {
		return false, err
	}
	if r.ns.Target.Is(ChainSolana) {
		return false, r.errorf(diagnostics.ErrorTargetUnsupported, s.Loc, "revert with custom errors not supported on Solana")
	}
	decl := r.ns.Errors[no]
	decl.Used = true

	start := len(*r.diags)
	if len(s.Args) != len(decl.Fields) {
		r.diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorRevert, s.Path.Loc,
			fmt.Sprintf("error '%s' has %d fields, %d provided", decl.Name, len(decl.Fields), len(s.Args)),
			decl.Loc, fmt.Sprintf("definition of '%s'", decl.Name)))
	}

	args := make([]Expression, 0, len(s.Args))
	for i, arg := range s.Args {
		if i >= len(decl.Fields) {
			_, _ = r.expression(arg, ResolveUnknown)
			continue
		}
		ty := decl.Fields[i].Ty
		v, err := r.expression(arg, ResolveType(ty))
		if err != nil {
			continue
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		if v, err = CastTo(v, arg.NodeLoc(), ty, true, r.ns, r.diags); err != nil {
			continue
		}
		args = append(args, v)
	}
	if (*r.diags)[start:].AnyErrors() {
		return false, ErrResolve
	}

	*res = append(*res, &Revert{Loc: s.Loc, ErrorNo: no, Args: args})
	return false, nil
}

func (r *resolver) revertNamed(s *pt.RevertNamedArgsStmt, res *[]Statement) (bool, error) {
	if s.Path == nil {
		return false, r.errorf(diagnostics.ErrorRevert, s.Loc, "revert with named arguments requires error type")
	}
	no, err := r.ns.ResolveError(r.ctx.FileNo, r.ctx.ContractNo, s.Path, r.diags)
	if err != nil {
		return false, err
	}
	if r.ns.Target.Is(ChainSolana) {
		return false, r.errorf(diagnostics.ErrorTargetUnsupported, s.Loc, "revert with custom errors not supported on Solana")
	}
	decl := r.ns.Errors[no]
	decl.Used = true

	unnamed := 0
	for _, f := range decl.Fields {
		if !f.HasName() {
			unnamed++
		}
	}
	if unnamed > 0 {
		return false, r.errorf(diagnostics.ErrorRevert, s.Path.Loc, "error '%s' has %d unnamed fields", decl.Name, unnamed)
	}

	start := len(*r.diags)
	byName := make(map[string]pt.NamedArgument, len(s.Args))
	for _, a := range s.Args {
		if prev, dup := byName[a.Name.Name]; dup {
			r.diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorDuplicateField, a.Name.Loc,
				fmt.Sprintf("duplicate argument with name '%s'", a.Name.Name), prev.Name.Loc, "previous argument"))
			continue
		}
		byName[a.Name.Name] = a
		if !slices.ContainsFunc(decl.Fields, func(p Parameter) bool { return p.Name() == a.Name.Name }) {
			r.diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorFieldNotFound, a.Name.Loc,
				fmt.Sprintf("error '%s' has no field called '%s'", decl.Name, a.Name.Name), decl.Loc, fmt.Sprintf("definition of '%s'", decl.Name)))
			_, _ = r.expression(a.Expr, ResolveUnknown)
		}
	}

	args := make([]Expression, 0, len(decl.Fields))
	for _, f := range decl.Fields {
		a, ok := byName[f.Name()]
		if !ok {
			r.diags.Push(diagnostics.ErrorAt(diagnostics.ErrorMissingField, s.Loc,
				fmt.Sprintf("missing field '%s'", f.Name())))
			continue
		}
		v, err := r.expression(a.Expr, ResolveType(f.Ty))
		if err != nil {
			continue
		}
		CheckConstantOverflow(v, r.ns, r.diags)
		if v, err = CastTo(v, a.Expr.NodeLoc(), f.Ty, true, r.ns, r.diags); err != nil {
			continue
		}
		args = append(args, v)
	}
	if (*r.diags)[start:].AnyErrors() {
		return false, ErrResolve
	}

	*res = append(*res, &Revert{Loc: s.Loc, ErrorNo: no, Args: args})
	return false, nil
}
