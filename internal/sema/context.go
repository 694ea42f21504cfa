package sema

// ExprContext describes where an expression is being resolved.
type ExprContext struct {
	FileNo     int
	ContractNo int
	FunctionNo int
	// Unchecked is set inside unchecked blocks; arithmetic wraps silently.
	Unchecked bool
	// Constant permits only compile time constant expressions, as in
	// constant initializers and array sizes.
	Constant bool
	// Lvalue is set while resolving the target of an assignment.
	Lvalue bool
	Loops  LoopScopes
}

// NewContext returns a context outside any contract or function.
func NewContext(file int) *ExprContext {
	return &ExprContext{FileNo: file, ContractNo: -1, FunctionNo: -1}
}

func (ctx *ExprContext) InFunction() bool { return ctx.FunctionNo >= 0 }

// SetUnchecked changes the unchecked flag and returns a func restoring the
// previous value.
func (ctx *ExprContext) SetUnchecked(unchecked bool) (restore func()) {
	prev := ctx.Unchecked
	ctx.Unchecked = unchecked
	return func() { ctx.Unchecked = prev }
}

// SetLvalue works like SetUnchecked for the lvalue flag.
func (ctx *ExprContext) SetLvalue(lvalue bool) (restore func()) {
	prev := ctx.Lvalue
	ctx.Lvalue = lvalue
	return func() { ctx.Lvalue = prev }
}

type resolveKind int

const (
	resolveUnknown resolveKind = iota
	resolveInteger
	resolveDiscard
	resolveType
)

// ResolveTo is the type an expression is expected to have, used to type
// literals and pick overloads.
type ResolveTo struct {
	kind resolveKind
	ty   Type
}

var (
	ResolveUnknown = ResolveTo{kind: resolveUnknown}
	// ResolveInteger asks for an integer without fixing its width.
	ResolveInteger = ResolveTo{kind: resolveInteger}
	// ResolveDiscard is used for expression statements whose value is
	// thrown away.
	ResolveDiscard = ResolveTo{kind: resolveDiscard}
)

func ResolveType(ty Type) ResolveTo {
	return ResolveTo{kind: resolveType, ty: ty}
}

// Type returns the requested type, or nil.
func (r ResolveTo) Type() Type {
	if r.kind == resolveType {
		return r.ty
	}
	return nil
}

func (r ResolveTo) IsDiscard() bool { return r.kind == resolveDiscard }
