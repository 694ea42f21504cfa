package sema

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/pt"
)

// Type is the resolved type of an expression or variable. All variants are
// comparable, so types can be checked with ==.
type Type interface {
	isType()
}

type (
	Uint struct{ Bits uint16 }
	Int  struct{ Bits uint16 }
	Bool struct{}
	// Address is a target sized account address.
	Address struct{ Payable bool }
	// Bytes is a fixed length byte array, bytes1 to bytes32.
	Bytes        struct{ N uint8 }
	DynamicBytes struct{}
	String       struct{}
	// Array is T[] when Dynamic, otherwise T[Len].
	Array struct {
		Elem    Type
		Len     uint64
		Dynamic bool
	}
	Mapping struct {
		Key   Type
		Value Type
	}
	Struct   struct{ No int }
	Contract struct{ No int }
	// StorageRef is an lvalue in contract storage holding Elem.
	StorageRef struct {
		Immutable bool
		Elem      Type
	}
	// Ref is an lvalue in memory holding Elem.
	Ref         struct{ Elem Type }
	Rational    struct{}
	Void        struct{}
	Unreachable struct{}
	Unresolved  struct{}
)

func (Uint) isType()         {}
func (Int) isType()          {}
func (Bool) isType()         {}
func (Address) isType()      {}
func (Bytes) isType()        {}
func (DynamicBytes) isType() {}
func (String) isType()       {}
func (Array) isType()        {}
func (Mapping) isType()      {}
func (Struct) isType()       {}
func (Contract) isType()     {}
func (StorageRef) isType()   {}
func (Ref) isType()          {}
func (Rational) isType()     {}
func (Void) isType()         {}
func (Unreachable) isType()  {}
func (Unresolved) isType()   {}

func DynamicArray(elem Type) Array {
	return Array{Elem: elem, Dynamic: true}
}

func FixedArray(elem Type, n uint64) Array {
	return Array{Elem: elem, Len: n}
}

func IsInteger(ty Type) bool {
	switch ty.(type) {
	case Uint, Int:
		return true
	}
	return false
}

func IsSigned(ty Type) bool {
	_, ok := ty.(Int)
	return ok
}

// Bits returns the width of a value type in bits.
func Bits(ty Type, ns *Namespace) uint16 {
	switch t := ty.(type) {
	case Uint:
		return t.Bits
	case Int:
		return t.Bits
	case Bool:
		return 1
	case Bytes:
		return uint16(t.N) * 8
	case Address:
		return uint16(ns.AddressLength) * 8
	case Contract:
		return uint16(ns.AddressLength) * 8
	}
	panic(fmt.Sprintf("type %T has no bit width", ty))
}

// Deref strips one StorageRef or Ref wrapper.
func Deref(ty Type) Type {
	switch t := ty.(type) {
	case StorageRef:
		return t.Elem
	case Ref:
		return t.Elem
	}
	return ty
}

func IsReferenceType(ty Type, ns *Namespace) bool {
	switch t := ty.(type) {
	case Array, Struct, DynamicBytes, String, Mapping:
		return true
	case StorageRef:
		return IsReferenceType(t.Elem, ns)
	case Ref:
		return IsReferenceType(t.Elem, ns)
	}
	return false
}

// CanHaveDataLocation reports whether memory/storage/calldata may be given.
func CanHaveDataLocation(ty Type) bool {
	switch ty.(type) {
	case Array, Struct, Mapping, String, DynamicBytes:
		return true
	}
	return false
}

func ContainsMapping(ty Type, ns *Namespace) bool {
	return containsMapping(ty, ns, map[int]bool{})
}

func containsMapping(ty Type, ns *Namespace, seen map[int]bool) bool {
	switch t := ty.(type) {
	case Mapping:
		return true
	case Array:
		return containsMapping(t.Elem, ns, seen)
	case Struct:
		if seen[t.No] {
			return false
		}
		seen[t.No] = true
		for _, f := range ns.Structs[t.No].Fields {
			if containsMapping(f.Ty, ns, seen) {
				return true
			}
		}
	case StorageRef:
		return containsMapping(t.Elem, ns, seen)
	case Ref:
		return containsMapping(t.Elem, ns, seen)
	}
	return false
}

// IsContractStorage is true for storage references.
func IsContractStorage(ty Type) bool {
	_, ok := ty.(StorageRef)
	return ok
}

var maxMemoryElements = new(big.Int).Lsh(big.NewInt(1), 32)

// FitsInMemory is false for fixed arrays whose total size exceeds 2^32
// elements.
func FitsInMemory(ty Type, ns *Namespace) bool {
	return memoryElements(ty, ns).Cmp(maxMemoryElements) <= 0
}

func memoryElements(ty Type, ns *Namespace) *big.Int {
	switch t := ty.(type) {
	case Array:
		if t.Dynamic {
			return big.NewInt(1)
		}
		n := new(big.Int).SetUint64(t.Len)
		return n.Mul(n, memoryElements(t.Elem, ns))
	case Struct:
		total := big.NewInt(0)
		for _, f := range ns.Structs[t.No].Fields {
			if s, ok := f.Ty.(Struct); ok && s.No == t.No {
				continue
			}
			total.Add(total, memoryElements(f.Ty, ns))
		}
		return total
	}
	return big.NewInt(1)
}

// StorageSlots returns the number of storage slots needed for ty.
func StorageSlots(ty Type, ns *Namespace) *big.Int {
	switch t := ty.(type) {
	case Array:
		if t.Dynamic {
			return big.NewInt(1)
		}
		n := new(big.Int).SetUint64(t.Len)
		return n.Mul(n, StorageSlots(t.Elem, ns))
	case Struct:
		total := big.NewInt(0)
		for _, f := range ns.Structs[t.No].Fields {
			total.Add(total, StorageSlots(f.Ty, ns))
		}
		return total
	}
	return big.NewInt(1)
}

// TypeString renders a type the way it is written in source.
func (ns *Namespace) TypeString(ty Type) string {
	switch t := ty.(type) {
	case Uint:
		return fmt.Sprintf("uint%d", t.Bits)
	case Int:
		return fmt.Sprintf("int%d", t.Bits)
	case Bool:
		return "bool"
	case Address:
		if t.Payable {
			return "address payable"
		}
		return "address"
	case Bytes:
		return fmt.Sprintf("bytes%d", t.N)
	case DynamicBytes:
		return "bytes"
	case String:
		return "string"
	case Array:
		var dims []string
		var elem Type = t
		for {
			a, ok := elem.(Array)
			if !ok {
				break
			}
			if a.Dynamic {
				dims = append(dims, "[]")
			} else {
				dims = append(dims, fmt.Sprintf("[%d]", a.Len))
			}
			elem = a.Elem
		}
		return ns.TypeString(elem) + strings.Join(dims, "")
	case Mapping:
		return fmt.Sprintf("mapping(%s => %s)", ns.TypeString(t.Key), ns.TypeString(t.Value))
	case Struct:
		return "struct " + ns.Structs[t.No].Name
	case Contract:
		return "contract " + ns.Contracts[t.No].Name
	case StorageRef:
		return ns.TypeString(t.Elem) + " storage"
	case Ref:
		return ns.TypeString(t.Elem)
	case Rational:
		return "rational"
	case Void:
		return "void"
	case Unreachable:
		return "unreachable"
	}
	return "unresolved"
}

// Default returns the zero value of ty, as given to variables declared
// without an initializer. Types without a literal zero value give
// Undefined.
func Default(ty Type, ns *Namespace) Expression {
	switch t := ty.(type) {
	case Uint, Int, Address, Contract, Bytes:
		return &NumberLiteral{Loc: pt.Codegen, Ty: ty, Value: big.NewInt(0)}
	case Bool:
		return &BoolLiteral{Loc: pt.Codegen}
	case String, DynamicBytes:
		return &AllocDynamicArray{Loc: pt.Codegen, Ty: ty, Length: &NumberLiteral{Loc: pt.Codegen, Ty: Uint{Bits: 32}, Value: big.NewInt(0)}, Init: []byte{}}
	case Array:
		if t.Dynamic {
			return &AllocDynamicArray{Loc: pt.Codegen, Ty: ty, Length: &NumberLiteral{Loc: pt.Codegen, Ty: Uint{Bits: 32}, Value: big.NewInt(0)}}
		}
		if t.Len <= 32 {
			values := make([]Expression, t.Len)
			for i := range values {
				values[i] = Default(t.Elem, ns)
			}
			return &ArrayLiteral{Loc: pt.Codegen, Ty: ty, Dims: []uint64{t.Len}, Values: values}
		}
	case Struct:
		fields := ns.Structs[t.No].Fields
		values := make([]Expression, len(fields))
		for i, f := range fields {
			if s, ok := f.Ty.(Struct); ok && s.No == t.No {
				values[i] = &Undefined{Ty: f.Ty}
				continue
			}
			values[i] = Default(f.Ty, ns)
		}
		return &StructLiteral{Loc: pt.Codegen, Ty: ty, Values: values}
	}
	return &Undefined{Ty: ty}
}
