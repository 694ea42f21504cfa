package pt

type Node interface {
	NodeLoc() Loc
}

type Expression interface {
	Node
	isExpr()
}

type Statement interface {
	Node
	isStmt()
}

// Part is anything that can appear at file level or inside a contract.
type Part interface {
	Node
	isPart()
}

func (e *NumberLiteral) NodeLoc() Loc         { return e.Loc }
func (e *RationalNumberLiteral) NodeLoc() Loc { return e.Loc }
func (e *HexNumberLiteral) NodeLoc() Loc      { return e.Loc }
func (e *StringLiteral) NodeLoc() Loc         { return e.Loc }
func (e *HexLiteral) NodeLoc() Loc            { return e.Loc }
func (e *BoolLiteral) NodeLoc() Loc           { return e.Loc }
func (e *Variable) NodeLoc() Loc              { return e.Loc }
func (e *ElementaryType) NodeLoc() Loc        { return e.Loc }
func (e *Mapping) NodeLoc() Loc               { return e.Loc }
func (e *MemberAccess) NodeLoc() Loc          { return e.Loc }
func (e *ArraySubscript) NodeLoc() Loc        { return e.Loc }
func (e *FunctionCall) NodeLoc() Loc          { return e.Loc }
func (e *NamedFunctionCall) NodeLoc() Loc     { return e.Loc }
func (e *New) NodeLoc() Loc                   { return e.Loc }
func (e *Delete) NodeLoc() Loc                { return e.Loc }
func (e *UnaryExpr) NodeLoc() Loc             { return e.Loc }
func (e *IncDec) NodeLoc() Loc                { return e.Loc }
func (e *BinaryExpr) NodeLoc() Loc            { return e.Loc }
func (e *Assign) NodeLoc() Loc                { return e.Loc }
func (e *ConditionalOperator) NodeLoc() Loc   { return e.Loc }
func (e *List) NodeLoc() Loc                  { return e.Loc }
func (e *ArrayLiteral) NodeLoc() Loc          { return e.Loc }
func (e *Parenthesis) NodeLoc() Loc           { return e.Loc }
func (e *BadExpr) NodeLoc() Loc               { return e.Loc }

func (*NumberLiteral) isExpr()         {}
func (*RationalNumberLiteral) isExpr() {}
func (*HexNumberLiteral) isExpr()      {}
func (*StringLiteral) isExpr()         {}
func (*HexLiteral) isExpr()            {}
func (*BoolLiteral) isExpr()           {}
func (*Variable) isExpr()              {}
func (*ElementaryType) isExpr()        {}
func (*Mapping) isExpr()               {}
func (*MemberAccess) isExpr()          {}
func (*ArraySubscript) isExpr()        {}
func (*FunctionCall) isExpr()          {}
func (*NamedFunctionCall) isExpr()     {}
func (*New) isExpr()                   {}
func (*Delete) isExpr()                {}
func (*UnaryExpr) isExpr()             {}
func (*IncDec) isExpr()                {}
func (*BinaryExpr) isExpr()            {}
func (*Assign) isExpr()                {}
func (*ConditionalOperator) isExpr()   {}
func (*List) isExpr()                  {}
func (*ArrayLiteral) isExpr()          {}
func (*Parenthesis) isExpr()           {}
func (*BadExpr) isExpr()               {}

func (s *Block) NodeLoc() Loc                  { return s.Loc }
func (s *VariableDefinitionStmt) NodeLoc() Loc { return s.Loc }
func (s *ArgsStmt) NodeLoc() Loc               { return s.Loc }
func (s *IfStmt) NodeLoc() Loc                 { return s.Loc }
func (s *WhileStmt) NodeLoc() Loc              { return s.Loc }
func (s *DoWhileStmt) NodeLoc() Loc            { return s.Loc }
func (s *ForStmt) NodeLoc() Loc                { return s.Loc }
func (s *ExpressionStmt) NodeLoc() Loc         { return s.Loc }
func (s *BreakStmt) NodeLoc() Loc              { return s.Loc }
func (s *ContinueStmt) NodeLoc() Loc           { return s.Loc }
func (s *ReturnStmt) NodeLoc() Loc             { return s.Loc }
func (s *EmitStmt) NodeLoc() Loc               { return s.Loc }
func (s *RevertStmt) NodeLoc() Loc             { return s.Loc }
func (s *RevertNamedArgsStmt) NodeLoc() Loc    { return s.Loc }
func (s *TryStmt) NodeLoc() Loc                { return s.Loc }
func (s *AssemblyStmt) NodeLoc() Loc           { return s.Loc }
func (s *BadStmt) NodeLoc() Loc                { return s.Loc }

func (*Block) isStmt()                  {}
func (*VariableDefinitionStmt) isStmt() {}
func (*ArgsStmt) isStmt()               {}
func (*IfStmt) isStmt()                 {}
func (*WhileStmt) isStmt()              {}
func (*DoWhileStmt) isStmt()            {}
func (*ForStmt) isStmt()                {}
func (*ExpressionStmt) isStmt()         {}
func (*BreakStmt) isStmt()              {}
func (*ContinueStmt) isStmt()           {}
func (*ReturnStmt) isStmt()             {}
func (*EmitStmt) isStmt()               {}
func (*RevertStmt) isStmt()             {}
func (*RevertNamedArgsStmt) isStmt()    {}
func (*TryStmt) isStmt()                {}
func (*AssemblyStmt) isStmt()           {}
func (*BadStmt) isStmt()                {}

func (p *PragmaDirective) NodeLoc() Loc    { return p.Loc }
func (p *ContractDefinition) NodeLoc() Loc { return p.Loc }
func (p *StructDefinition) NodeLoc() Loc   { return p.Loc }
func (p *EventDefinition) NodeLoc() Loc    { return p.Loc }
func (p *ErrorDefinition) NodeLoc() Loc    { return p.Loc }
func (p *VariableDefinition) NodeLoc() Loc { return p.Loc }
func (p *FunctionDefinition) NodeLoc() Loc { return p.Loc }

func (*PragmaDirective) isPart()    {}
func (*ContractDefinition) isPart() {}
func (*StructDefinition) isPart()   {}
func (*EventDefinition) isPart()    {}
func (*ErrorDefinition) isPart()    {}
func (*VariableDefinition) isPart() {}
func (*FunctionDefinition) isPart() {}

// RemoveParenthesis strips any number of enclosing parentheses.
func RemoveParenthesis(e Expression) Expression {
	for {
		p, ok := e.(*Parenthesis)
		if !ok {
			return e
		}
		e = p.Expr
	}
}
