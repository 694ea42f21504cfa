package sema

import (
	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

type VariableUsage int

const (
	UsageLocal VariableUsage = iota
	UsageParameter
	UsageReturn
	UsageAnonymousReturn
	UsageDestructure
	UsageTryCatchReturn
	UsageTryCatchError
)

// LocalVariable is one slot of a function's symtable.
type LocalVariable struct {
	ID              pt.Identifier
	Ty              Type
	Pos             int
	Usage           VariableUsage
	StorageLocation *pt.StorageLocation
	// Initialized is set for variables declared with an initializer.
	Initialized bool
	Assigned    bool
	Read        bool
}

func (v *LocalVariable) IsReference() bool {
	if v.StorageLocation != nil && v.StorageLocation.Kind == pt.Storage {
		return true
	}
	_, ok := v.Ty.(StorageRef)
	return ok
}

// Symtable maps local variable names to slots for one function body. Slots
// are allocated in order and never reused; scopes only control which names
// are visible.
type Symtable struct {
	Vars      []*LocalVariable
	Arguments []int
	Returns   []int
	scopes    []map[string]int
}

func NewSymtable() *Symtable {
	return &Symtable{scopes: []map[string]int{{}}}
}

// Add allocates a new slot. A name already declared in the current scope is
// an error; a name hiding a state variable or function gets a warning.
func (s *Symtable) Add(id pt.Identifier, ty Type, ns *Namespace, ctx *ExprContext, usage VariableUsage, storage *pt.StorageLocation, diags *diagnostics.List) (int, bool) {
	pos := len(s.Vars)

	if id.Name != "" {
		scope := s.scopes[len(s.scopes)-1]
		if prev, ok := scope[id.Name]; ok {
			diags.Push(diagnostics.DuplicateDeclaration(id.Name, id.Loc, s.Vars[prev].ID.Loc))
			return 0, false
		}
		if ctx != nil {
			ns.CheckShadowing(ctx.FileNo, ctx.ContractNo, id, diags)
		}
		scope[id.Name] = pos
	}

	s.Vars = append(s.Vars, &LocalVariable{
		ID:              id,
		Ty:              ty,
		Pos:             pos,
		Usage:           usage,
		StorageLocation: storage,
	})
	return pos, true
}

// AddTemp allocates an unnamed slot, used for anonymous returns.
func (s *Symtable) AddTemp(loc pt.Loc, ty Type, usage VariableUsage) int {
	pos := len(s.Vars)
	s.Vars = append(s.Vars, &LocalVariable{ID: pt.Identifier{Loc: loc}, Ty: ty, Pos: pos, Usage: usage})
	return pos
}

// Find returns the innermost visible variable called name.
func (s *Symtable) Find(name string) *LocalVariable {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if pos, ok := s.scopes[i][name]; ok {
			return s.Vars[pos]
		}
	}
	return nil
}

func (s *Symtable) Names() []string {
	var names []string
	for _, scope := range s.scopes {
		for name := range scope {
			names = append(names, name)
		}
	}
	return names
}

// ScopeGuard leaves the scope it was created for. Leave is safe to call
// more than once.
type ScopeGuard struct {
	symtable *Symtable
	depth    int
}

// EnterScope opens a new name scope. Pair it with a deferred Leave so the
// scope is closed on every return path.
func (s *Symtable) EnterScope() *ScopeGuard {
	s.scopes = append(s.scopes, map[string]int{})
	return &ScopeGuard{symtable: s, depth: len(s.scopes)}
}

func (g *ScopeGuard) Leave() {
	if len(g.symtable.scopes) >= g.depth {
		g.symtable.scopes = g.symtable.scopes[:g.depth-1]
	}
}

// CheckShadowing warns when a local name hides a state variable, constant
// or function.
func (ns *Namespace) CheckShadowing(file, contract int, id pt.Identifier, diags *diagnostics.List) {
	sym := ns.Lookup(file, contract, id.Name)
	if sym == nil {
		return
	}
	switch sym.Kind {
	case SymbolVariable, SymbolConstant:
		diags.Push(diagnostics.ShadowingWarning(id.Name, id.Loc, sym.Loc))
	case SymbolFunction:
		diags.Push(diagnostics.NewWarning(diagnostics.ErrorDuplicateDeclaration, id.Loc,
			"declaration of '"+id.Name+"' shadows function").
			WithNote(sym.Loc, "previous declaration of '"+id.Name+"'").
			Build())
	}
}

// LoopScope counts the break and continue statements of one loop.
type LoopScope struct {
	NoBreaks    int
	NoContinues int
}

type LoopScopes struct {
	scopes []LoopScope
}

func (l *LoopScopes) EnterScope() {
	l.scopes = append(l.scopes, LoopScope{})
}

func (l *LoopScopes) LeaveScope() LoopScope {
	last := l.scopes[len(l.scopes)-1]
	l.scopes = l.scopes[:len(l.scopes)-1]
	return last
}

func (l *LoopScopes) InLoop() bool { return len(l.scopes) > 0 }

func (l *LoopScopes) DoBreak() bool {
	if !l.InLoop() {
		return false
	}
	l.scopes[len(l.scopes)-1].NoBreaks++
	return true
}

func (l *LoopScopes) DoContinue() bool {
	if !l.InLoop() {
		return false
	}
	l.scopes[len(l.scopes)-1].NoContinues++
	return true
}
