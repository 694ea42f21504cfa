package sema

import (
	"fmt"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// maxIndexedFields is the number of topics an event may index, one more
// when the event is anonymous.
const maxIndexedFields = 3

// collector gathers the declarations of one source file into the namespace.
// Resolution happens in passes so that names can be used before the
// declaration that introduces them.
type collector struct {
	ns     *Namespace
	fileNo int

	structs   []pendingStruct
	variables []pendingVariable
	functions []int
}

type pendingStruct struct {
	no  int
	def *pt.StructDefinition
}

type pendingVariable struct {
	contract int
	no       int
	def      *pt.VariableDefinition
}

func (c *collector) pragma(p *pt.PragmaDirective) {
	c.ns.Pragmas = append(c.ns.Pragmas, Pragma{Loc: p.Loc, Name: p.Name.Name, Value: p.Value})
	if p.Name.Name == "solidity" && (strings.Contains(p.Value, "0.4") || strings.Contains(p.Value, "0.5")) {
		c.ns.LegacyEmit = true
	}
}

// declareNames registers every contract and struct so that types can refer
// to them in any order.
func (c *collector) declareNames(unit *pt.SourceUnit) {
	for _, part := range unit.Parts {
		switch p := part.(type) {
		case *pt.ContractDefinition:
			no := len(c.ns.Contracts)
			decl := &ContractDecl{Loc: p.Loc, FileNo: c.fileNo, Name: p.Name.Name, Kind: p.Kind}
			if !c.ns.AddSymbol(c.fileNo, -1, p.Name, Symbol{Kind: SymbolContract, No: no, ContractNo: -1}) {
				continue
			}
			c.ns.Contracts = append(c.ns.Contracts, decl)
			for _, inner := range p.Parts {
				if s, ok := inner.(*pt.StructDefinition); ok {
					c.declareStruct(s, no)
				}
			}
		case *pt.StructDefinition:
			c.declareStruct(p, -1)
		}
	}
}

func (c *collector) declareStruct(def *pt.StructDefinition, contract int) {
	no := len(c.ns.Structs)
	if !c.ns.AddSymbol(c.fileNo, contract, def.Name, Symbol{Kind: SymbolStruct, No: no, ContractNo: contract}) {
		return
	}
	c.ns.Structs = append(c.ns.Structs, &StructDecl{Loc: def.Loc, Name: def.Name.Name, ContractNo: contract})
	c.structs = append(c.structs, pendingStruct{no: no, def: def})
}

func (c *collector) resolveStructFields() {
	for _, ps := range c.structs {
		decl := c.ns.Structs[ps.no]
		if len(ps.def.Fields) == 0 {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, ps.def.Name.Loc,
				fmt.Sprintf("struct definition for '%s' has no fields", decl.Name)))
			continue
		}
		seen := make(map[string]pt.Loc)
		for _, f := range ps.def.Fields {
			ty, err := c.ns.ResolveType(c.fileNo, decl.ContractNo, f.Ty, &c.ns.Diagnostics)
			if err != nil {
				continue
			}
			if f.Storage != nil {
				c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorStorageLocation, f.Storage.Loc,
					fmt.Sprintf("storage location '%s' not allowed for struct field", f.Storage)))
			}
			p := Parameter{Loc: f.Loc, Ty: ty, TyLoc: f.Ty.NodeLoc()}
			if f.Name != nil {
				if prev, dup := seen[f.Name.Name]; dup {
					c.ns.Diagnostics.Push(diagnostics.ErrorWithNote(diagnostics.ErrorDuplicateField, f.Name.Loc,
						fmt.Sprintf("struct '%s' has duplicate struct field '%s'", decl.Name, f.Name.Name), prev, "location of previous declaration"))
					continue
				}
				seen[f.Name.Name] = f.Name.Loc
				id := *f.Name
				p.ID = &id
			}
			decl.Fields = append(decl.Fields, p)
		}
	}

	for _, ps := range c.structs {
		if c.ns.infiniteSize(ps.no, Struct{No: ps.no}, map[int]bool{}) {
			decl := c.ns.Structs[ps.no]
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, ps.def.Name.Loc,
				fmt.Sprintf("struct '%s' has infinite size", decl.Name)))
		}
	}
}

// infiniteSize is true when ty contains the struct target without a dynamic
// array or mapping in between.
func (ns *Namespace) infiniteSize(target int, ty Type, seen map[int]bool) bool {
	switch t := ty.(type) {
	case Array:
		if t.Dynamic {
			return false
		}
		return ns.infiniteSize(target, t.Elem, seen)
	case Struct:
		if seen[t.No] {
			return t.No == target
		}
		seen[t.No] = true
		for _, f := range ns.Structs[t.No].Fields {
			if ns.infiniteSize(target, f.Ty, seen) {
				return true
			}
		}
	}
	return false
}

// declareParts handles everything but structs: events, errors, variables
// and functions, at file level and inside contracts.
func (c *collector) declareParts(unit *pt.SourceUnit) {
	for _, part := range unit.Parts {
		switch p := part.(type) {
		case *pt.ContractDefinition:
			no, ok := c.ns.ResolveContract(c.fileNo, p.Name)
			if !ok || c.ns.Contracts[no].Loc != p.Loc {
				continue
			}
			for _, inner := range p.Parts {
				c.declarePart(inner, no)
			}
		default:
			c.declarePart(part, -1)
		}
	}
}

func (c *collector) declarePart(part pt.Part, contract int) {
	switch p := part.(type) {
	case *pt.EventDefinition:
		c.event(p, contract)
	case *pt.ErrorDefinition:
		c.errorDecl(p, contract)
	case *pt.VariableDefinition:
		c.variable(p, contract)
	case *pt.FunctionDefinition:
		c.function(p, contract)
	case *pt.ContractDefinition:
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorGenericSemantic, p.Name.Loc,
			"contracts cannot be nested"))
	case *pt.PragmaDirective:
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorSyntax, p.Loc,
			"pragma only permitted at file level"))
	}
}

func (c *collector) event(def *pt.EventDefinition, contract int) {
	no := len(c.ns.Events)
	decl := &EventDecl{Loc: def.Name.Loc, Name: def.Name.Name, ContractNo: contract, Anonymous: def.Anonymous}

	indexed := 0
	var sig []string
	for _, f := range def.Fields {
		ty, err := c.ns.ResolveType(c.fileNo, contract, f.Ty, &c.ns.Diagnostics)
		if err != nil {
			ty = Unresolved{}
		} else if ContainsMapping(ty, c.ns) {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, f.Ty.NodeLoc(),
				"mapping type is not permitted as event field"))
		}
		p := Parameter{Loc: f.Loc, Ty: ty, TyLoc: f.Ty.NodeLoc(), Indexed: f.Indexed}
		if f.Name != nil {
			id := *f.Name
			p.ID = &id
		}
		if f.Indexed {
			indexed++
		}
		decl.Fields = append(decl.Fields, p)
		sig = append(sig, c.ns.SignatureType(ty))
	}

	limit := maxIndexedFields
	if def.Anonymous {
		limit++
	}
	if indexed > limit {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorEventResolution, def.Name.Loc,
			fmt.Sprintf("event definition for '%s' has %d indexed fields where %d permitted", def.Name.Name, indexed, limit)))
	}
	decl.Signature = fmt.Sprintf("%s(%s)", def.Name.Name, strings.Join(sig, ","))

	if c.ns.AddSymbol(c.fileNo, contract, def.Name, Symbol{Kind: SymbolEvent, No: no, ContractNo: contract}) {
		c.ns.Events = append(c.ns.Events, decl)
	}
}

func (c *collector) errorDecl(def *pt.ErrorDefinition, contract int) {
	no := len(c.ns.Errors)
	decl := &ErrorDecl{Loc: def.Name.Loc, Name: def.Name.Name, ContractNo: contract}
	for _, f := range def.Fields {
		ty, err := c.ns.ResolveType(c.fileNo, contract, f.Ty, &c.ns.Diagnostics)
		if err != nil {
			ty = Unresolved{}
		} else if ContainsMapping(ty, c.ns) {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, f.Ty.NodeLoc(),
				"mapping type is not permitted as error field"))
		}
		p := Parameter{Loc: f.Loc, Ty: ty, TyLoc: f.Ty.NodeLoc()}
		if f.Name != nil {
			id := *f.Name
			p.ID = &id
		}
		decl.Fields = append(decl.Fields, p)
	}
	if c.ns.AddSymbol(c.fileNo, contract, def.Name, Symbol{Kind: SymbolError, No: no, ContractNo: contract}) {
		c.ns.Errors = append(c.ns.Errors, decl)
	}
}

func (c *collector) variable(def *pt.VariableDefinition, contract int) {
	ty, err := c.ns.ResolveType(c.fileNo, contract, def.Ty, &c.ns.Diagnostics)
	if err != nil {
		return
	}

	v := &StateVariable{
		Loc:        def.Loc,
		Name:       def.Name.Name,
		Ty:         ty,
		Visibility: Internal,
		Constant:   def.Has(pt.AttrConstant),
		Immutable:  def.Has(pt.AttrImmutable),
		ContractNo: contract,
	}
	switch {
	case def.Has(pt.AttrPublic):
		v.Visibility = Public
	case def.Has(pt.AttrPrivate):
		v.Visibility = Private
	}

	if v.Constant && v.Immutable {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAttribute, def.Name.Loc,
			"variable cannot be both constant and immutable"))
		return
	}
	if contract < 0 {
		if !v.Constant {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAttribute, def.Name.Loc,
				"global variable must be constant"))
			return
		}
		if len(def.Attrs) > 1 {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAttribute, def.Name.Loc,
				"only 'constant' is permitted on a file level constant"))
		}
	} else if kind := c.ns.Contracts[contract].Kind; kind == pt.KindInterface || (kind == pt.KindLibrary && !v.Constant) {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAttribute, def.Name.Loc,
			fmt.Sprintf("%s '%s' is not allowed to have state variables", kind, c.ns.Contracts[contract].Name)))
		return
	}

	if v.Constant {
		if def.Initializer == nil {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorNotConstant, def.Name.Loc,
				fmt.Sprintf("missing initializer for constant '%s'", v.Name)))
			return
		}
		if IsReferenceType(ty, c.ns) && !isStringLike(ty) {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorNotConstant, def.Ty.NodeLoc(),
				fmt.Sprintf("constant '%s' cannot be of type '%s'", v.Name, c.ns.TypeString(ty))))
			return
		}
	} else if ContainsMapping(ty, c.ns) && def.Initializer != nil {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAssignment, def.Initializer.NodeLoc(),
			"mapping cannot be initialized"))
	}

	var no int
	kind := SymbolVariable
	if contract < 0 {
		kind = SymbolConstant
		no = len(c.ns.Constants)
	} else {
		no = len(c.ns.Contracts[contract].Variables)
	}
	if !c.ns.AddSymbol(c.fileNo, contract, def.Name, Symbol{Kind: kind, No: no, ContractNo: contract}) {
		return
	}
	if contract < 0 {
		c.ns.Constants = append(c.ns.Constants, v)
	} else {
		c.ns.Contracts[contract].Variables = append(c.ns.Contracts[contract].Variables, v)
	}

	// constants are resolved right away so that later declarations can use
	// them, e.g. as array sizes
	if v.Constant {
		c.initializer(contract, v, def.Initializer, true)
		return
	}
	if def.Initializer != nil {
		c.variables = append(c.variables, pendingVariable{contract: contract, no: no, def: def})
	}
}

// initializer resolves the initial value of a state variable or constant.
func (c *collector) initializer(contract int, v *StateVariable, init pt.Expression, constant bool) {
	ctx := NewContext(c.fileNo)
	ctx.ContractNo = contract
	ctx.Constant = constant

	expr, err := ResolveExpression(init, ctx, c.ns, nil, &c.ns.Diagnostics, ResolveType(v.Ty))
	if err != nil {
		return
	}
	CheckConstantOverflow(expr, c.ns, &c.ns.Diagnostics)
	if expr, err = CastTo(expr, init.NodeLoc(), v.Ty, true, c.ns, &c.ns.Diagnostics); err != nil {
		return
	}
	v.Initializer = expr
	if !constant {
		v.Assigned = true
	}
}

func (c *collector) resolveStateInitializers() {
	for _, pv := range c.variables {
		v := c.ns.Contracts[pv.contract].Variables[pv.no]
		c.initializer(pv.contract, v, pv.def.Initializer, false)
	}
}

var visibilities = map[string]Visibility{
	"public":   Public,
	"external": External,
	"internal": Internal,
	"private":  Private,
}

var mutabilities = map[string]Mutability{
	"":        Nonpayable,
	"payable": Payable,
	"view":    View,
	"pure":    Pure,
}

func (c *collector) function(def *pt.FunctionDefinition, contract int) {
	f := &Function{
		Loc:          def.Loc,
		LocPrototype: def.LocPrototype,
		Ty:           def.Ty,
		FileNo:       c.fileNo,
		ContractNo:   contract,
		IsVirtual:    def.Virtual,
		IsOverride:   def.Override,
		HasBody:      def.Body != nil,
		Mutability:   mutabilities[def.Mutability],
		source:       def,
	}
	if def.Name != nil {
		f.Name = def.Name.Name
	}

	var kind pt.ContractKind = -1
	if contract >= 0 {
		kind = c.ns.Contracts[contract].Kind
	}

	switch {
	case def.Visibility != "":
		f.Visibility = visibilities[def.Visibility]
	case def.Ty == pt.FunctionTyConstructor, def.Ty == pt.FunctionTyFallback, def.Ty == pt.FunctionTyReceive:
		f.Visibility = Public
		if def.Ty != pt.FunctionTyConstructor {
			f.Visibility = External
		}
	case def.Ty == pt.FunctionTyModifier || contract < 0:
		f.Visibility = Internal
	case kind == pt.KindInterface:
		f.Visibility = External
	default:
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidAttribute, def.LocPrototype,
			"no visibility specified"))
		f.Visibility = Public
	}

	if contract < 0 && def.Ty != pt.FunctionTyFunction {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorGenericSemantic, def.LocPrototype,
			fmt.Sprintf("%s not allowed outside contract", def.Ty)))
		return
	}
	if def.Body == nil && kind == pt.KindContract && !def.Virtual {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorGenericSemantic, def.LocPrototype,
			"function with no body missing 'virtual'. This was permitted in older versions of the Solidity language, please update."))
	}
	if def.Body != nil && kind == pt.KindInterface {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorGenericSemantic, def.LocPrototype,
			"function in an interface cannot have a body"))
	}

	var ok bool
	f.Params, ok = c.parameters(def.Params, contract, "parameter")
	if !ok {
		return
	}
	if f.Returns, ok = c.parameters(def.Returns, contract, "return"); !ok {
		return
	}
	if def.Ty == pt.FunctionTyModifier && len(def.Returns) > 0 {
		c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorGenericSemantic, def.LocPrototype,
			"modifier cannot have return values"))
		return
	}

	sig := make([]string, len(f.Params))
	for i, p := range f.Params {
		sig[i] = c.ns.SignatureType(Deref(p.Ty))
	}
	f.Signature = fmt.Sprintf("%s(%s)", f.Name, strings.Join(sig, ","))

	no := len(c.ns.Functions)

	switch def.Ty {
	case pt.FunctionTyFunction, pt.FunctionTyModifier:
		if def.Name == nil {
			return
		}
		if prev := c.ns.Lookup(c.fileNo, contract, f.Name); prev != nil && prev.Kind == SymbolFunction && prev.ContractNo == contract {
			for _, o := range prev.Overloads {
				if other := c.ns.Functions[o.No]; other.Signature == f.Signature {
					c.ns.Diagnostics.Push(diagnostics.ErrorWithNote(diagnostics.ErrorDuplicateDeclaration, def.Name.Loc,
						"overloaded function with this signature already exist", other.LocPrototype, "location of previous definition"))
					return
				}
			}
		}
		if !c.ns.AddSymbol(c.fileNo, contract, *def.Name, Symbol{Kind: SymbolFunction, No: no, ContractNo: contract}) {
			return
		}
	default:
		for _, other := range c.ns.Contracts[contract].Functions {
			if prev := c.ns.Functions[other]; prev.Ty == def.Ty {
				c.ns.Diagnostics.Push(diagnostics.ErrorWithNote(diagnostics.ErrorDuplicateDeclaration, def.LocPrototype,
					fmt.Sprintf("%s already defined", def.Ty), prev.LocPrototype, "location of previous definition"))
				return
			}
		}
	}

	c.ns.Functions = append(c.ns.Functions, f)
	if contract >= 0 {
		c.ns.Contracts[contract].Functions = append(c.ns.Contracts[contract].Functions, no)
	}
	c.functions = append(c.functions, no)
}

// parameters resolves a parameter or return list. A storage location turns
// the type into a storage reference.
func (c *collector) parameters(entries []pt.ListEntry, contract int, what string) ([]Parameter, bool) {
	var params []Parameter
	ok := true
	for _, entry := range entries {
		if entry.Param == nil {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorSyntax, entry.Loc, "stray comma"))
			ok = false
			continue
		}
		p := entry.Param
		ty, err := c.ns.ResolveType(c.fileNo, contract, p.Ty, &c.ns.Diagnostics)
		if err != nil {
			ok = false
			continue
		}
		if p.Storage != nil {
			if !CanHaveDataLocation(ty) {
				c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorStorageLocation, p.Storage.Loc,
					fmt.Sprintf("data location '%s' can only be specified for array, struct or mapping", p.Storage)))
				ok = false
				continue
			}
			if p.Storage.Kind == pt.Storage {
				ty = StorageRef{Elem: ty}
			}
		} else if ContainsMapping(ty, c.ns) {
			c.ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorStorageLocation, p.Ty.NodeLoc(),
				fmt.Sprintf("%s of type mapping must be in storage", what)))
			ok = false
			continue
		}
		param := Parameter{Loc: p.Loc, Ty: ty, TyLoc: p.Ty.NodeLoc()}
		if p.Name != nil {
			id := *p.Name
			param.ID = &id
		}
		params = append(params, param)
	}
	return params, ok
}

// SignatureType is the canonical spelling of a type in a function, event
// or error signature.
func (ns *Namespace) SignatureType(ty Type) string {
	switch t := ty.(type) {
	case Struct:
		fields := make([]string, len(ns.Structs[t.No].Fields))
		for i, f := range ns.Structs[t.No].Fields {
			fields[i] = ns.SignatureType(f.Ty)
		}
		return "(" + strings.Join(fields, ",") + ")"
	case Contract:
		return "address"
	case Address:
		return "address"
	case Array:
		if t.Dynamic {
			return ns.SignatureType(t.Elem) + "[]"
		}
		return fmt.Sprintf("%s[%d]", ns.SignatureType(t.Elem), t.Len)
	case StorageRef:
		return ns.SignatureType(t.Elem)
	}
	return ns.TypeString(ty)
}
