package sema

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// ErrResolve means resolution failed and the diagnostics have already been
// recorded. Callers absorb it and move on to the next sibling.
var ErrResolve = errors.New("resolution failed")

type Chain int

const (
	ChainEVM Chain = iota
	ChainPolkadot
	ChainSolana
)

// Target is the chain being compiled for. Two targets are the same target if
// they are on the same chain, whatever their lengths.
type Target struct {
	Chain         Chain
	AddressLength int
	ValueLength   int
}

func EVM() Target { return Target{Chain: ChainEVM, AddressLength: 20, ValueLength: 16} }

func Polkadot(addressLength, valueLength int) Target {
	return Target{Chain: ChainPolkadot, AddressLength: addressLength, ValueLength: valueLength}
}

func DefaultPolkadot() Target { return Polkadot(32, 16) }

func Solana() Target { return Target{Chain: ChainSolana, AddressLength: 32, ValueLength: 8} }

func TargetFromName(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "evm", "ethereum":
		return EVM(), nil
	case "polkadot", "substrate":
		return DefaultPolkadot(), nil
	case "solana":
		return Solana(), nil
	}
	return Target{}, fmt.Errorf("unknown target %q", name)
}

func (t Target) Is(chain Chain) bool { return t.Chain == chain }

func (t Target) Equal(other Target) bool { return t.Chain == other.Chain }

func (t Target) String() string {
	switch t.Chain {
	case ChainPolkadot:
		return "Polkadot"
	case ChainSolana:
		return "Solana"
	default:
		return "EVM"
	}
}

// PtrSize is the pointer width in bits.
func (t Target) PtrSize() uint16 {
	if t.Chain == ChainSolana {
		return 64
	}
	return 32
}

func (t Target) SelectorLength() int {
	if t.Chain == ChainSolana {
		return 8
	}
	return 4
}

type File struct {
	Path   string
	Source string
}

type Visibility int

const (
	Internal Visibility = iota
	Public
	External
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case External:
		return "external"
	case Private:
		return "private"
	}
	return "internal"
}

type Mutability int

const (
	Nonpayable Mutability = iota
	Payable
	View
	Pure
)

// Parameter is a function parameter or return, or a struct, event or error
// field.
type Parameter struct {
	Loc     pt.Loc
	ID      *pt.Identifier
	Ty      Type
	TyLoc   pt.Loc
	Indexed bool
}

func (p Parameter) Name() string {
	if p.ID == nil {
		return ""
	}
	return p.ID.Name
}

func (p Parameter) HasName() bool { return p.ID != nil }

type ContractDecl struct {
	Loc       pt.Loc
	FileNo    int
	Name      string
	Kind      pt.ContractKind
	Variables []*StateVariable
	Functions []int
	// Layout maps each non constant state variable to its first slot.
	Layout []StorageSlot
}

type StorageSlot struct {
	VarNo int
	Slot  *big.Int
	Ty    Type
}

// StateVariable is a state variable or a file level constant.
type StateVariable struct {
	Loc         pt.Loc
	Name        string
	Ty          Type
	Visibility  Visibility
	Constant    bool
	Immutable   bool
	Initializer Expression
	ContractNo  int
	Assigned    bool
	Read        bool
}

type StructDecl struct {
	Loc        pt.Loc
	Name       string
	ContractNo int
	Fields     []Parameter
}

type EventDecl struct {
	Loc        pt.Loc
	Name       string
	ContractNo int
	Fields     []Parameter
	Anonymous  bool
	Signature  string
	Used       bool
}

// Identical reports whether two events have the same name, anonymity and
// fields, including which fields are indexed.
func (e *EventDecl) Identical(o *EventDecl) bool {
	if e.Name != o.Name || e.Anonymous != o.Anonymous || len(e.Fields) != len(o.Fields) {
		return false
	}
	for i := range e.Fields {
		if e.Fields[i].Ty != o.Fields[i].Ty || e.Fields[i].Indexed != o.Fields[i].Indexed {
			return false
		}
	}
	return true
}

// IdenticalV05 compares only names and field types, the way Solidity 0.5
// told events apart.
func (e *EventDecl) IdenticalV05(o *EventDecl) bool {
	if e.Name != o.Name || len(e.Fields) != len(o.Fields) {
		return false
	}
	for i := range e.Fields {
		if e.Fields[i].Ty != o.Fields[i].Ty {
			return false
		}
	}
	return true
}

type ErrorDecl struct {
	Loc        pt.Loc
	Name       string
	ContractNo int
	Fields     []Parameter
	Used       bool
}

type Function struct {
	Loc          pt.Loc
	LocPrototype pt.Loc
	Name         string
	Ty           pt.FunctionTy
	FileNo       int
	ContractNo   int
	Signature    string
	Params       []Parameter
	Returns      []Parameter
	Visibility   Visibility
	Mutability   Mutability
	IsVirtual    bool
	IsOverride   bool
	// Modifiers are calls to modifier functions, outermost first.
	Modifiers   []Expression
	HasBody     bool
	Body        []Statement
	Symtable    *Symtable
	EmitsEvents []int
	// Source is kept until the body is resolved.
	source *pt.FunctionDefinition
}

func (f *Function) IsConstructor() bool { return f.Ty == pt.FunctionTyConstructor }
func (f *Function) IsModifier() bool    { return f.Ty == pt.FunctionTyModifier }

func (f *Function) ReturnTypes() []Type {
	tys := make([]Type, len(f.Returns))
	for i, r := range f.Returns {
		tys[i] = r.Ty
	}
	return tys
}

type Pragma struct {
	Loc   pt.Loc
	Name  string
	Value string
}

type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolConstant
	SymbolFunction
	SymbolStruct
	SymbolEvent
	SymbolError
	SymbolContract
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "state variable"
	case SymbolConstant:
		return "constant"
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolEvent:
		return "event"
	case SymbolError:
		return "error"
	}
	return "contract"
}

// Symbol is a named declaration. Functions and events may be overloaded, so
// they keep every declaration in Overloads.
type Symbol struct {
	Kind       SymbolKind
	Loc        pt.Loc
	No         int
	ContractNo int
	Overloads  []Overload
}

type Overload struct {
	Loc pt.Loc
	No  int
}

type symbolKey struct {
	file     int
	contract int
	name     string
}

type Namespace struct {
	Target        Target
	AddressLength int
	ValueLength   int
	Files         []File
	Contracts     []*ContractDecl
	Structs       []*StructDecl
	Events        []*EventDecl
	Errors        []*ErrorDecl
	Functions     []*Function
	Constants     []*StateVariable
	// VarConstants records expressions proven constant by folding, keyed
	// by the location of the variable they were assigned to.
	VarConstants map[pt.Loc]Expression
	Diagnostics  diagnostics.List
	Pragmas      []Pragma
	// LegacyEmit tolerates ambiguous emits the way Solidity 0.5 did.
	LegacyEmit bool

	symbols map[symbolKey]*Symbol
}

func NewNamespace(target Target) *Namespace {
	return &Namespace{
		Target:        target,
		AddressLength: target.AddressLength,
		ValueLength:   target.ValueLength,
		VarConstants:  make(map[pt.Loc]Expression),
		symbols:       make(map[symbolKey]*Symbol),
	}
}

// AddSymbol registers name in file (and contract, or -1 for file scope). It
// returns false and records an error if the name is already taken, except
// that functions and events may overload each other.
func (ns *Namespace) AddSymbol(file, contract int, id pt.Identifier, sym Symbol) bool {
	key := symbolKey{file, contract, id.Name}
	if prev, ok := ns.symbols[key]; ok {
		if prev.Kind == sym.Kind && (sym.Kind == SymbolFunction || sym.Kind == SymbolEvent) {
			prev.Overloads = append(prev.Overloads, Overload{Loc: id.Loc, No: sym.No})
			return true
		}
		ns.Diagnostics.Push(diagnostics.NewError(diagnostics.ErrorDuplicateDeclaration, id.Loc,
			fmt.Sprintf("'%s' is already defined as %s", id.Name, articled(prev.Kind))).
			WithNote(prev.Loc, "location of previous definition").
			Build())
		return false
	}

	if contract >= 0 {
		if prev, ok := ns.symbols[symbolKey{file, -1, id.Name}]; ok && prev.Kind != SymbolContract {
			ns.Diagnostics.Push(diagnostics.NewWarning(diagnostics.ErrorDuplicateDeclaration, id.Loc,
				fmt.Sprintf("%s '%s' shadows %s", sym.Kind, id.Name, prev.Kind)).
				WithNote(prev.Loc, fmt.Sprintf("previous definition of '%s'", id.Name)).
				Build())
		}
	}

	if sym.Kind == SymbolFunction || sym.Kind == SymbolEvent {
		sym.Overloads = []Overload{{Loc: id.Loc, No: sym.No}}
	}
	sym.Loc = id.Loc
	ns.symbols[key] = &sym
	return true
}

func articled(kind SymbolKind) string {
	s := kind.String()
	switch s[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + s
	}
	return "a " + s
}

// Lookup finds a name visible from contract in file, looking at contract
// scope first.
func (ns *Namespace) Lookup(file, contract int, name string) *Symbol {
	if contract >= 0 {
		if sym, ok := ns.symbols[symbolKey{file, contract, name}]; ok {
			return sym
		}
	}
	return ns.symbols[symbolKey{file, -1, name}]
}

// SymbolNames lists the names visible from contract, for suggestions.
func (ns *Namespace) SymbolNames(file, contract int) []string {
	var names []string
	for key := range ns.symbols {
		if key.file == file && (key.contract == -1 || key.contract == contract) {
			names = append(names, key.name)
		}
	}
	return names
}

func (ns *Namespace) ResolveContract(file int, id pt.Identifier) (int, bool) {
	sym := ns.Lookup(file, -1, id.Name)
	if sym == nil || sym.Kind != SymbolContract {
		return 0, false
	}
	return sym.No, true
}

// ResolveEvent returns every event declaration visible under name.
func (ns *Namespace) ResolveEvent(file, contract int, expr pt.Expression, diags *diagnostics.List) ([]int, error) {
	var id pt.Identifier
	switch e := expr.(type) {
	case *pt.Variable:
		id = pt.Identifier{Loc: e.Loc, Name: e.Name}
	case *pt.MemberAccess:
		base, ok := e.Expr.(*pt.Variable)
		if !ok {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorEventResolution, expr.NodeLoc(), "expression found where event expected"))
			return nil, ErrResolve
		}
		no, ok := ns.ResolveContract(file, pt.Identifier{Loc: base.Loc, Name: base.Name})
		if !ok {
			diags.Push(diagnostics.NotFound(base.Name, base.Loc, nil))
			return nil, ErrResolve
		}
		contract = no
		id = e.Member
	default:
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorEventResolution, expr.NodeLoc(), "expression found where event expected"))
		return nil, ErrResolve
	}

	// events declared in the contract and at file level overload each other
	var nos []int
	scopes := []int{-1}
	if contract >= 0 {
		scopes = []int{contract, -1}
	}
	for _, scope := range scopes {
		sym, ok := ns.symbols[symbolKey{file, scope, id.Name}]
		if !ok {
			continue
		}
		if sym.Kind != SymbolEvent {
			if len(nos) > 0 {
				break
			}
			diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorEventResolution, id.Loc,
				fmt.Sprintf("'%s' is %s, not an event", id.Name, articled(sym.Kind)), sym.Loc, "definition here"))
			return nil, ErrResolve
		}
		for _, o := range sym.Overloads {
			nos = append(nos, o.No)
		}
	}
	if len(nos) == 0 {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorEventResolution, id.Loc,
			fmt.Sprintf("event '%s' not found", id.Name)))
		return nil, ErrResolve
	}
	return nos, nil
}

// ResolveError finds a custom error by (possibly contract qualified) path.
func (ns *Namespace) ResolveError(file, contract int, path *pt.IdentifierPath, diags *diagnostics.List) (int, error) {
	ids := path.Identifiers
	if len(ids) == 2 {
		no, ok := ns.ResolveContract(file, ids[0])
		if !ok {
			diags.Push(diagnostics.NotFound(ids[0].Name, ids[0].Loc, nil))
			return 0, ErrResolve
		}
		contract = no
		ids = ids[1:]
	} else if len(ids) != 1 {
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorRevert, path.Loc, fmt.Sprintf("'%s' not found", path)))
		return 0, ErrResolve
	}

	sym := ns.Lookup(file, contract, ids[0].Name)
	if sym == nil {
		diags.Push(diagnostics.NotFound(ids[0].Name, ids[0].Loc, ns.SymbolNames(file, contract)))
		return 0, ErrResolve
	}
	if sym.Kind != SymbolError {
		diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorRevert, ids[0].Loc,
			fmt.Sprintf("'%s' is not an error", ids[0].Name), sym.Loc, "definition here"))
		return 0, ErrResolve
	}
	return sym.No, nil
}

// LayoutContracts assigns sequential storage slots to every non constant
// state variable.
func (ns *Namespace) LayoutContracts() {
	for _, c := range ns.Contracts {
		c.Layout = c.Layout[:0]
		slot := big.NewInt(0)
		for no, v := range c.Variables {
			if v.Constant {
				continue
			}
			c.Layout = append(c.Layout, StorageSlot{VarNo: no, Slot: new(big.Int).Set(slot), Ty: v.Ty})
			slot.Add(slot, StorageSlots(v.Ty, ns))
		}
	}
}

// StorageSlot returns the first slot of a state variable.
func (ns *Namespace) StorageSlot(contract, varNo int) *big.Int {
	for _, s := range ns.Contracts[contract].Layout {
		if s.VarNo == varNo {
			return s.Slot
		}
	}
	return big.NewInt(0)
}

// LoadFile registers a source file and returns its number.
func (ns *Namespace) LoadFile(path, source string) int {
	ns.Files = append(ns.Files, File{Path: path, Source: source})
	return len(ns.Files) - 1
}

// ContractName is used in logs and printed CFG names.
func (ns *Namespace) ContractName(no int) string {
	if no < 0 {
		return ""
	}
	return ns.Contracts[no].Name
}
