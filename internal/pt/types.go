package pt

import "strings"

type Identifier struct {
	Loc  Loc
	Name string
}

type IdentifierPath struct {
	Loc         Loc
	Identifiers []Identifier
}

func (p IdentifierPath) String() string {
	parts := make([]string, len(p.Identifiers))
	for i, id := range p.Identifiers {
		parts[i] = id.Name
	}
	return strings.Join(parts, ".")
}

type StorageKind int

const (
	Memory StorageKind = iota
	Storage
	Calldata
)

type StorageLocation struct {
	Loc  Loc
	Kind StorageKind
}

func (s StorageLocation) String() string {
	switch s.Kind {
	case Storage:
		return "storage"
	case Calldata:
		return "calldata"
	default:
		return "memory"
	}
}

// ---------------------
// Expressions
// ---------------------

// NumberLiteral holds the decimal digits with separators removed, plus an
// optional decimal exponent.
type NumberLiteral struct {
	Loc      Loc
	Value    string
	Exponent string
}

type RationalNumberLiteral struct {
	Loc      Loc
	Integer  string
	Fraction string
	Exponent string
}

type HexNumberLiteral struct {
	Loc   Loc
	Value string
}

// StringLiteral holds the unescaped bytes of one or more adjacent string
// literals.
type StringLiteral struct {
	Loc   Loc
	Value string
}

type HexLiteral struct {
	Loc   Loc
	Bytes []byte
}

type BoolLiteral struct {
	Loc   Loc
	Value bool
}

type Variable struct {
	Loc  Loc
	Name string
}

// ElementaryType is a builtin type name used as an expression, e.g. in a
// declaration or a cast.
type ElementaryType struct {
	Loc     Loc
	Name    string
	Payable bool
}

type Mapping struct {
	Loc   Loc
	Key   Expression
	Value Expression
}

type MemberAccess struct {
	Loc    Loc
	Expr   Expression
	Member Identifier
}

// ArraySubscript with a nil Index is a dynamic array type, e.g. uint[].
type ArraySubscript struct {
	Loc   Loc
	Array Expression
	Index Expression
}

type FunctionCall struct {
	Loc    Loc
	Callee Expression
	Args   []Expression
}

type NamedArgument struct {
	Loc  Loc
	Name Identifier
	Expr Expression
}

type NamedFunctionCall struct {
	Loc    Loc
	Callee Expression
	Args   []NamedArgument
}

type New struct {
	Loc  Loc
	Expr Expression
}

type Delete struct {
	Loc  Loc
	Expr Expression
}

// UnaryExpr covers !, ~, unary - and unary +.
type UnaryExpr struct {
	Loc  Loc
	Op   string
	Expr Expression
}

type IncDec struct {
	Loc    Loc
	Op     string
	Prefix bool
	Expr   Expression
}

type BinaryExpr struct {
	Loc   Loc
	Op    string
	Left  Expression
	Right Expression
}

type Assign struct {
	Loc   Loc
	Op    string
	Left  Expression
	Right Expression
}

type ConditionalOperator struct {
	Loc   Loc
	Cond  Expression
	True  Expression
	False Expression
}

type Parameter struct {
	Loc     Loc
	Ty      Expression
	Storage *StorageLocation
	Name    *Identifier
}

// ListEntry with a nil Param marks an empty slot, as in (a, , b).
type ListEntry struct {
	Loc   Loc
	Param *Parameter
}

type List struct {
	Loc     Loc
	Entries []ListEntry
}

type ArrayLiteral struct {
	Loc   Loc
	Elems []Expression
}

type Parenthesis struct {
	Loc  Loc
	Expr Expression
}

type BadExpr struct {
	Loc Loc
}

// ---------------------
// Statements
// ---------------------

type Block struct {
	Loc        Loc
	Unchecked  bool
	Statements []Statement
}

type VariableDeclaration struct {
	Loc     Loc
	Ty      Expression
	Storage *StorageLocation
	Name    *Identifier
}

type VariableDefinitionStmt struct {
	Loc         Loc
	Decl        VariableDeclaration
	Initializer Expression
}

type ArgsStmt struct {
	Loc  Loc
	Args []NamedArgument
}

type IfStmt struct {
	Loc  Loc
	Cond Expression
	Then Statement
	Else Statement
}

type WhileStmt struct {
	Loc  Loc
	Cond Expression
	Body Statement
}

type DoWhileStmt struct {
	Loc  Loc
	Body Statement
	Cond Expression
}

type ForStmt struct {
	Loc  Loc
	Init Statement
	Cond Expression
	Next Expression
	Body Statement
}

type ExpressionStmt struct {
	Loc  Loc
	Expr Expression
}

type BreakStmt struct {
	Loc Loc
}

type ContinueStmt struct {
	Loc Loc
}

type ReturnStmt struct {
	Loc  Loc
	Expr Expression
}

// EmitStmt.Event is a FunctionCall or NamedFunctionCall.
type EmitStmt struct {
	Loc   Loc
	Event Expression
}

type RevertStmt struct {
	Loc  Loc
	Path *IdentifierPath
	Args []Expression
}

type RevertNamedArgsStmt struct {
	Loc  Loc
	Path *IdentifierPath
	Args []NamedArgument
}

type CatchClause struct {
	Loc   Loc
	Name  *Identifier
	Param *Parameter
	Body  Statement
}

type TryStmt struct {
	Loc        Loc
	Expr       Expression
	HasReturns bool
	Returns    []ListEntry
	Ok         Statement
	Catches    []CatchClause
}

type AssemblyStmt struct {
	Loc     Loc
	Dialect *StringLiteral
	Flags   []StringLiteral
	Body    Block
	Source  string
}

type BadStmt struct {
	Loc Loc
}

// ---------------------
// Declarations
// ---------------------

type PragmaDirective struct {
	Loc   Loc
	Name  Identifier
	Value string
}

type ContractKind int

const (
	KindContract ContractKind = iota
	KindAbstract
	KindInterface
	KindLibrary
)

func (k ContractKind) String() string {
	switch k {
	case KindAbstract:
		return "abstract contract"
	case KindInterface:
		return "interface"
	case KindLibrary:
		return "library"
	default:
		return "contract"
	}
}

type ContractDefinition struct {
	Loc   Loc
	Kind  ContractKind
	Name  Identifier
	Parts []Part
}

type StructDefinition struct {
	Loc    Loc
	Name   Identifier
	Fields []VariableDeclaration
}

type EventParameter struct {
	Loc     Loc
	Ty      Expression
	Indexed bool
	Name    *Identifier
}

type EventDefinition struct {
	Loc       Loc
	Name      Identifier
	Fields    []EventParameter
	Anonymous bool
}

type ErrorParameter struct {
	Loc  Loc
	Ty   Expression
	Name *Identifier
}

type ErrorDefinition struct {
	Loc    Loc
	Name   Identifier
	Fields []ErrorParameter
}

type VariableAttrKind int

const (
	AttrPublic VariableAttrKind = iota
	AttrInternal
	AttrPrivate
	AttrConstant
	AttrImmutable
)

type VariableAttribute struct {
	Loc  Loc
	Kind VariableAttrKind
}

type VariableDefinition struct {
	Loc         Loc
	Ty          Expression
	Attrs       []VariableAttribute
	Name        Identifier
	Initializer Expression
}

func (v *VariableDefinition) Has(kind VariableAttrKind) bool {
	for _, a := range v.Attrs {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

type FunctionTy int

const (
	FunctionTyFunction FunctionTy = iota
	FunctionTyConstructor
	FunctionTyModifier
	FunctionTyFallback
	FunctionTyReceive
)

func (f FunctionTy) String() string {
	switch f {
	case FunctionTyConstructor:
		return "constructor"
	case FunctionTyModifier:
		return "modifier"
	case FunctionTyFallback:
		return "fallback"
	case FunctionTyReceive:
		return "receive"
	default:
		return "function"
	}
}

// ModifierInvocation is a modifier applied to a function, e.g. onlyOwner(1).
type ModifierInvocation struct {
	Loc  Loc
	Name IdentifierPath
	Args []Expression
}

type FunctionDefinition struct {
	Loc          Loc
	LocPrototype Loc
	Ty           FunctionTy
	Name         *Identifier
	Params       []ListEntry
	Visibility   string
	Mutability   string
	Virtual      bool
	Override     bool
	Modifiers    []ModifierInvocation
	Returns      []ListEntry
	Body         *Block
}

type SourceUnit struct {
	Parts []Part
}
