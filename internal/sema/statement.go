package sema

import "github.com/salaheldinsoliman/solang/internal/pt"

// Statement is a resolved statement of a function body.
type Statement interface {
	NodeLoc() pt.Loc
	// Reachable reports whether control can continue after the statement.
	Reachable() bool
}

type (
	Block struct {
		Loc         pt.Loc
		Unchecked   bool
		Statements  []Statement
		IsReachable bool
	}
	VariableDecl struct {
		Loc         pt.Loc
		VarNo       int
		Param       Parameter
		Initializer Expression
	}
	If struct {
		Loc         pt.Loc
		IsReachable bool
		Cond        Expression
		Then        []Statement
		Else        []Statement
	}
	While struct {
		Loc         pt.Loc
		IsReachable bool
		Cond        Expression
		Body        []Statement
	}
	DoWhile struct {
		Loc         pt.Loc
		IsReachable bool
		Body        []Statement
		Cond        Expression
	}
	// For has a nil Cond when the condition was omitted, and a nil Next
	// when there is no next expression or the body never completes.
	For struct {
		Loc         pt.Loc
		IsReachable bool
		Init        []Statement
		Cond        Expression
		Next        Expression
		Body        []Statement
	}
	ExpressionStmt struct {
		Loc  pt.Loc
		Expr Expression
		// IsReachable is false when the expression never returns, e.g.
		// selfdestruct.
		IsReachable bool
	}
	Delete struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	Destructure struct {
		Loc    pt.Loc
		Fields []DestructureField
		Expr   Expression
	}
	Continue struct{ Loc pt.Loc }
	Break    struct{ Loc pt.Loc }
	Return   struct {
		Loc  pt.Loc
		Expr Expression
	}
	// Revert has ErrorNo -1 for a plain revert or revert with a reason.
	Revert struct {
		Loc     pt.Loc
		ErrorNo int
		Args    []Expression
	}
	Emit struct {
		Loc      pt.Loc
		EventNo  int
		EventLoc pt.Loc
		Args     []Expression
	}
	TryCatch struct {
		Loc         pt.Loc
		IsReachable bool
		Expr        Expression
		Returns     []TryReturn
		OkStmt      []Statement
		Errors      []CatchClause
		CatchAll    *CatchClause
	}
	Underscore struct{ Loc pt.Loc }
	Assembly   struct {
		Loc         pt.Loc
		MemorySafe  bool
		Source      string
		IsReachable bool
	}
)

type DestructureKind int

const (
	DestructureNone DestructureKind = iota
	DestructureExpression
	DestructureVariableDecl
)

type DestructureField struct {
	Kind  DestructureKind
	Loc   pt.Loc
	Expr  Expression
	VarNo int
	Param Parameter
}

// TryReturn binds one return value of the try expression. VarNo is -1 when
// the value is not named.
type TryReturn struct {
	VarNo int
	Param Parameter
}

// CatchClause is a catch block. Name is "Error" or "Panic" for the typed
// clauses and empty for the catch all. ParamPos is -1 if the parameter is
// not bound to a variable.
type CatchClause struct {
	Loc      pt.Loc
	Name     string
	Param    *Parameter
	ParamPos int
	Stmt     []Statement
}

func (s *Block) NodeLoc() pt.Loc          { return s.Loc }
func (s *VariableDecl) NodeLoc() pt.Loc   { return s.Loc }
func (s *If) NodeLoc() pt.Loc             { return s.Loc }
func (s *While) NodeLoc() pt.Loc          { return s.Loc }
func (s *DoWhile) NodeLoc() pt.Loc        { return s.Loc }
func (s *For) NodeLoc() pt.Loc            { return s.Loc }
func (s *ExpressionStmt) NodeLoc() pt.Loc { return s.Loc }
func (s *Delete) NodeLoc() pt.Loc         { return s.Loc }
func (s *Destructure) NodeLoc() pt.Loc    { return s.Loc }
func (s *Continue) NodeLoc() pt.Loc       { return s.Loc }
func (s *Break) NodeLoc() pt.Loc          { return s.Loc }
func (s *Return) NodeLoc() pt.Loc         { return s.Loc }
func (s *Revert) NodeLoc() pt.Loc         { return s.Loc }
func (s *Emit) NodeLoc() pt.Loc           { return s.Loc }
func (s *TryCatch) NodeLoc() pt.Loc       { return s.Loc }
func (s *Underscore) NodeLoc() pt.Loc     { return s.Loc }
func (s *Assembly) NodeLoc() pt.Loc       { return s.Loc }

func (s *Block) Reachable() bool          { return s.IsReachable }
func (s *VariableDecl) Reachable() bool   { return true }
func (s *If) Reachable() bool             { return s.IsReachable }
func (s *While) Reachable() bool          { return s.IsReachable }
func (s *DoWhile) Reachable() bool        { return s.IsReachable }
func (s *For) Reachable() bool            { return s.IsReachable }
func (s *ExpressionStmt) Reachable() bool { return s.IsReachable }
func (s *Delete) Reachable() bool         { return true }
func (s *Destructure) Reachable() bool    { return true }
func (s *Continue) Reachable() bool       { return false }
func (s *Break) Reachable() bool          { return false }
func (s *Return) Reachable() bool         { return false }
func (s *Revert) Reachable() bool         { return false }
func (s *Emit) Reachable() bool           { return true }
func (s *TryCatch) Reachable() bool       { return s.IsReachable }
func (s *Underscore) Reachable() bool     { return true }
func (s *Assembly) Reachable() bool       { return s.IsReachable }

// Reachable reports whether control can fall through the last statement of
// a list. An empty list falls through.
func Reachable(stmts []Statement) bool {
	if len(stmts) == 0 {
		return true
	}
	return stmts[len(stmts)-1].Reachable()
}
