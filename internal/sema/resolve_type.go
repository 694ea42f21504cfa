package sema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// ElementaryType maps a builtin type name to its type.
func ElementaryType(name string, payable bool) (Type, bool) {
	switch name {
	case "bool":
		return Bool{}, true
	case "address":
		return Address{Payable: payable}, true
	case "string":
		return String{}, true
	case "bytes":
		return DynamicBytes{}, true
	case "byte":
		return Bytes{N: 1}, true
	case "uint":
		return Uint{Bits: 256}, true
	case "int":
		return Int{Bits: 256}, true
	}
	if rest, ok := strings.CutPrefix(name, "uint"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 8 && n <= 256 && n%8 == 0 {
			return Uint{Bits: uint16(n)}, true
		}
		return nil, false
	}
	if rest, ok := strings.CutPrefix(name, "int"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 8 && n <= 256 && n%8 == 0 {
			return Int{Bits: uint16(n)}, true
		}
		return nil, false
	}
	if rest, ok := strings.CutPrefix(name, "bytes"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 32 {
			return Bytes{N: uint8(n)}, true
		}
	}
	return nil, false
}

// ResolveType resolves a type written as an expression, e.g. uint8[4] or
// mapping(address => S).
func (ns *Namespace) ResolveType(file, contract int, expr pt.Expression, diags *diagnostics.List) (Type, error) {
	switch e := expr.(type) {
	case *pt.ElementaryType:
		if ty, ok := ElementaryType(e.Name, e.Payable); ok {
			return ty, nil
		}
		diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, e.Loc, fmt.Sprintf("'%s' is not a type", e.Name)))
		return nil, ErrResolve

	case *pt.Mapping:
		key, err := ns.ResolveType(file, contract, e.Key, diags)
		if err != nil {
			return nil, err
		}
		switch key.(type) {
		case Mapping, Array, Struct:
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, e.Key.NodeLoc(),
				fmt.Sprintf("key of mapping cannot be %s type", ns.TypeString(key))))
			return nil, ErrResolve
		}
		value, err := ns.ResolveType(file, contract, e.Value, diags)
		if err != nil {
			return nil, err
		}
		return Mapping{Key: key, Value: value}, nil

	case *pt.ArraySubscript:
		elem, err := ns.ResolveType(file, contract, e.Array, diags)
		if err != nil {
			return nil, err
		}
		if _, ok := elem.(Mapping); ok {
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, e.Loc, "array of mappings not allowed"))
			return nil, ErrResolve
		}
		if e.Index == nil {
			return DynamicArray(elem), nil
		}
		ctx := NewContext(file)
		ctx.ContractNo = contract
		ctx.Constant = true
		size, err := ResolveExpression(e.Index, ctx, ns, nil, diags, ResolveInteger)
		if err != nil {
			return nil, err
		}
		_, n, d := EvalConstNumber(size, ns)
		if d != nil {
			diags.Push(*d)
			return nil, ErrResolve
		}
		switch {
		case n.Sign() == 0:
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, e.Index.NodeLoc(), "zero size array not permitted"))
			return nil, ErrResolve
		case n.Sign() < 0:
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, e.Index.NodeLoc(), "negative size of array declared"))
			return nil, ErrResolve
		case !n.IsUint64():
			diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, e.Index.NodeLoc(), fmt.Sprintf("array dimension %s is too large", n)))
			return nil, ErrResolve
		}
		return FixedArray(elem, n.Uint64()), nil

	case *pt.Variable:
		return ns.resolveNamedType(file, contract, pt.Identifier{Loc: e.Loc, Name: e.Name}, diags)

	case *pt.MemberAccess:
		base, ok := e.Expr.(*pt.Variable)
		if !ok {
			break
		}
		no, ok := ns.ResolveContract(file, pt.Identifier{Loc: base.Loc, Name: base.Name})
		if !ok {
			diags.Push(diagnostics.NotFound(base.Name, base.Loc, nil))
			return nil, ErrResolve
		}
		return ns.resolveNamedType(file, no, e.Member, diags)
	}

	diags.Push(diagnostics.ErrorAt(diagnostics.ErrorInvalidType, expr.NodeLoc(), "expression found where type expected"))
	return nil, ErrResolve
}

func (ns *Namespace) resolveNamedType(file, contract int, id pt.Identifier, diags *diagnostics.List) (Type, error) {
	sym := ns.Lookup(file, contract, id.Name)
	if sym == nil {
		diags.Push(diagnostics.NewError(diagnostics.ErrorInvalidType, id.Loc, fmt.Sprintf("type '%s' not found", id.Name)).Build())
		return nil, ErrResolve
	}
	switch sym.Kind {
	case SymbolStruct:
		return Struct{No: sym.No}, nil
	case SymbolContract:
		return Contract{No: sym.No}, nil
	}
	diags.Push(diagnostics.ErrorWithNote(diagnostics.ErrorInvalidType, id.Loc,
		fmt.Sprintf("'%s' is %s, not a type", id.Name, articled(sym.Kind)), sym.Loc, "definition here"))
	return nil, ErrResolve
}

// IsType reports whether a parse tree expression names a type rather than a
// value. It is used to tell declarations and casts from other expressions.
func (ns *Namespace) IsType(file, contract int, expr pt.Expression) bool {
	switch e := expr.(type) {
	case *pt.ElementaryType, *pt.Mapping:
		return true
	case *pt.ArraySubscript:
		return e.Index == nil || ns.IsType(file, contract, e.Array)
	case *pt.Variable:
		sym := ns.Lookup(file, contract, e.Name)
		return sym != nil && (sym.Kind == SymbolStruct || sym.Kind == SymbolContract)
	case *pt.MemberAccess:
		base, ok := e.Expr.(*pt.Variable)
		if !ok {
			return false
		}
		no, ok := ns.ResolveContract(file, pt.Identifier{Loc: base.Loc, Name: base.Name})
		if !ok {
			return false
		}
		sym := ns.Lookup(file, no, e.Member.Name)
		return sym != nil && sym.Kind == SymbolStruct
	}
	return false
}
