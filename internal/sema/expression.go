package sema

import (
	"math/big"

	"github.com/salaheldinsoliman/solang/internal/pt"
)

// Expression is a resolved, typed expression. The same nodes are used in
// function bodies and inside CFG instructions; a few variants only ever
// appear after lowering.
type Expression interface {
	NodeLoc() pt.Loc
	Type() Type
}

type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Modulo
	Power
	BitwiseOr
	BitwiseAnd
	BitwiseXor
	ShiftLeft
	ShiftRight
)

var binaryOpNames = [...]string{"add", "sub", "mul", "div", "mod", "pow", "or", "and", "xor", "shl", "shr"}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// IsArithmetic is true for the operators whose result is checked for
// overflow.
func (op BinaryOp) IsArithmetic() bool {
	return op <= Power
}

type CompareOp int

const (
	Equal CompareOp = iota
	NotEqual
	Less
	LessEqual
	More
	MoreEqual
)

var compareOpNames = [...]string{"==", "!=", "<", "<=", ">", ">="}

func (op CompareOp) String() string { return compareOpNames[op] }

type IncDecOp int

const (
	PreIncrement IncDecOp = iota
	PreDecrement
	PostIncrement
	PostDecrement
)

func (op IncDecOp) IsIncrement() bool { return op == PreIncrement || op == PostIncrement }
func (op IncDecOp) IsPrefix() bool    { return op == PreIncrement || op == PreDecrement }

type BuiltinKind int

const (
	BuiltinKeccak256 BuiltinKind = iota
	BuiltinSha256
	BuiltinRipemd160
	BuiltinBlake2_128
	BuiltinBlake2_256
	BuiltinAssert
	BuiltinRequire
	BuiltinPrint
	BuiltinSelfDestruct
	BuiltinGasleft
	BuiltinAddMod
	BuiltinMulMod
	BuiltinAbiEncode
	BuiltinAbiEncodePacked
	BuiltinAbiDecode
	BuiltinSender
	BuiltinValue
	BuiltinBlockNumber
	BuiltinTimestamp
	BuiltinOrigin
	BuiltinBalance
	BuiltinArrayPush
	BuiltinArrayPop
	BuiltinArrayLength
)

var builtinNames = [...]string{
	"keccak256", "sha256", "ripemd160", "blake2_128", "blake2_256",
	"assert", "require", "print", "selfdestruct", "gasleft", "addmod", "mulmod",
	"abi.encode", "abi.encodePacked", "abi.decode",
	"msg.sender", "msg.value", "block.number", "block.timestamp", "tx.origin",
	"balance", "push", "pop", "length",
}

func (k BuiltinKind) String() string { return builtinNames[k] }

// IsHash reports whether the builtin is one of the hash functions, which
// can be folded when their input is known.
func (k BuiltinKind) IsHash() bool { return k <= BuiltinBlake2_256 }

// StringLocation is one side of a string comparison or concatenation. It is
// either bytes known at compile time or an expression evaluated at run time.
type StringLocation struct {
	CompileTime []byte
	RunTime     Expression
}

func (s StringLocation) IsCompileTime() bool { return s.RunTime == nil }

type (
	NumberLiteral struct {
		Loc   pt.Loc
		Ty    Type
		Value *big.Int
	}
	RationalNumberLiteral struct {
		Loc   pt.Loc
		Ty    Type
		Value *big.Rat
	}
	BoolLiteral struct {
		Loc   pt.Loc
		Value bool
	}
	// BytesLiteral is a string, hex string or bytesN literal.
	BytesLiteral struct {
		Loc   pt.Loc
		Ty    Type
		Value []byte
	}
	ArrayLiteral struct {
		Loc    pt.Loc
		Ty     Type
		Dims   []uint64
		Values []Expression
	}
	StructLiteral struct {
		Loc    pt.Loc
		Ty     Type
		Values []Expression
	}

	// Binary is an arithmetic, bitwise or shift operation. Signed selects
	// signed division, modulo and arithmetic right shift.
	Binary struct {
		Loc       pt.Loc
		Ty        Type
		Op        BinaryOp
		Signed    bool
		Unchecked bool
		Left      Expression
		Right     Expression
	}
	Compare struct {
		Loc    pt.Loc
		Op     CompareOp
		Signed bool
		Left   Expression
		Right  Expression
	}
	Not struct {
		Loc  pt.Loc
		Expr Expression
	}
	Complement struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	UnaryMinus struct {
		Loc       pt.Loc
		Ty        Type
		Unchecked bool
		Expr      Expression
	}
	Or struct {
		Loc   pt.Loc
		Left  Expression
		Right Expression
	}
	And struct {
		Loc   pt.Loc
		Left  Expression
		Right Expression
	}
	ConditionalOperator struct {
		Loc   pt.Loc
		Ty    Type
		Cond  Expression
		True  Expression
		False Expression
	}

	ZeroExt struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	SignExt struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	Trunc struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	Cast struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	// BytesCast converts between bytesN and dynamic bytes.
	BytesCast struct {
		Loc  pt.Loc
		Ty   Type
		From Type
		Expr Expression
	}

	// Variable is a local variable, by symtable slot.
	Variable struct {
		Loc   pt.Loc
		Ty    Type
		VarNo int
	}
	// ConstantVariable is a constant state variable, or a file level
	// constant when ContractNo is -1.
	ConstantVariable struct {
		Loc        pt.Loc
		Ty         Type
		ContractNo int
		VarNo      int
	}
	StorageVariable struct {
		Loc        pt.Loc
		Ty         Type
		ContractNo int
		VarNo      int
	}
	StorageLoad struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	Load struct {
		Loc  pt.Loc
		Ty   Type
		Expr Expression
	}
	Subscript struct {
		Loc     pt.Loc
		Ty      Type
		ArrayTy Type
		Array   Expression
		Index   Expression
	}
	StructMember struct {
		Loc   pt.Loc
		Ty    Type
		Expr  Expression
		Field int
	}
	StorageArrayLength struct {
		Loc     pt.Loc
		Ty      Type
		ArrayTy Type
		Array   Expression
	}

	Assign struct {
		Loc   pt.Loc
		Ty    Type
		Left  Expression
		Right Expression
	}
	IncDec struct {
		Loc       pt.Loc
		Ty        Type
		Op        IncDecOp
		Unchecked bool
		Expr      Expression
	}

	InternalFunctionCall struct {
		Loc        pt.Loc
		Returns    []Type
		FunctionNo int
		Args       []Expression
	}
	ExternalFunctionCall struct {
		Loc        pt.Loc
		Returns    []Type
		FunctionNo int
		Address    Expression
		Args       []Expression
		Value      Expression
	}
	Constructor struct {
		Loc        pt.Loc
		ContractNo int
		Args       []Expression
		Value      Expression
	}
	Builtin struct {
		Loc  pt.Loc
		Tys  []Type
		Kind BuiltinKind
		Args []Expression
	}
	// Keccak256 hashes the serialized form of all its arguments. It is
	// produced by lowering, e.g. for mapping slots.
	Keccak256 struct {
		Loc  pt.Loc
		Ty   Type
		Args []Expression
	}
	StringCompare struct {
		Loc   pt.Loc
		Left  StringLocation
		Right StringLocation
	}
	StringConcat struct {
		Loc   pt.Loc
		Ty    Type
		Left  StringLocation
		Right StringLocation
	}
	List struct {
		Loc   pt.Loc
		Items []Expression
	}

	// AllocDynamicArray allocates a memory array of Length elements. Init
	// holds the contents when they are known, e.g. for string literals.
	AllocDynamicArray struct {
		Loc    pt.Loc
		Ty     Type
		Length Expression
		Init   []byte
	}
	FunctionArg struct {
		Loc   pt.Loc
		Ty    Type
		ArgNo int
	}
	Undefined struct {
		Ty Type
	}
	ReturnData struct {
		Loc pt.Loc
	}
	AbiEncode struct {
		Loc    pt.Loc
		Tys    []Type
		Packed []Expression
		Args   []Expression
	}
)

func (e *NumberLiteral) NodeLoc() pt.Loc         { return e.Loc }
func (e *RationalNumberLiteral) NodeLoc() pt.Loc { return e.Loc }
func (e *BoolLiteral) NodeLoc() pt.Loc           { return e.Loc }
func (e *BytesLiteral) NodeLoc() pt.Loc          { return e.Loc }
func (e *ArrayLiteral) NodeLoc() pt.Loc          { return e.Loc }
func (e *StructLiteral) NodeLoc() pt.Loc         { return e.Loc }
func (e *Binary) NodeLoc() pt.Loc                { return e.Loc }
func (e *Compare) NodeLoc() pt.Loc               { return e.Loc }
func (e *Not) NodeLoc() pt.Loc                   { return e.Loc }
func (e *Complement) NodeLoc() pt.Loc            { return e.Loc }
func (e *UnaryMinus) NodeLoc() pt.Loc            { return e.Loc }
func (e *Or) NodeLoc() pt.Loc                    { return e.Loc }
func (e *And) NodeLoc() pt.Loc                   { return e.Loc }
func (e *ConditionalOperator) NodeLoc() pt.Loc   { return e.Loc }
func (e *ZeroExt) NodeLoc() pt.Loc               { return e.Loc }
func (e *SignExt) NodeLoc() pt.Loc               { return e.Loc }
func (e *Trunc) NodeLoc() pt.Loc                 { return e.Loc }
func (e *Cast) NodeLoc() pt.Loc                  { return e.Loc }
func (e *BytesCast) NodeLoc() pt.Loc             { return e.Loc }
func (e *Variable) NodeLoc() pt.Loc              { return e.Loc }
func (e *ConstantVariable) NodeLoc() pt.Loc      { return e.Loc }
func (e *StorageVariable) NodeLoc() pt.Loc       { return e.Loc }
func (e *StorageLoad) NodeLoc() pt.Loc           { return e.Loc }
func (e *Load) NodeLoc() pt.Loc                  { return e.Loc }
func (e *Subscript) NodeLoc() pt.Loc             { return e.Loc }
func (e *StructMember) NodeLoc() pt.Loc          { return e.Loc }
func (e *StorageArrayLength) NodeLoc() pt.Loc    { return e.Loc }
func (e *Assign) NodeLoc() pt.Loc                { return e.Loc }
func (e *IncDec) NodeLoc() pt.Loc                { return e.Loc }
func (e *InternalFunctionCall) NodeLoc() pt.Loc  { return e.Loc }
func (e *ExternalFunctionCall) NodeLoc() pt.Loc  { return e.Loc }
func (e *Constructor) NodeLoc() pt.Loc           { return e.Loc }
func (e *Builtin) NodeLoc() pt.Loc               { return e.Loc }
func (e *Keccak256) NodeLoc() pt.Loc             { return e.Loc }
func (e *StringCompare) NodeLoc() pt.Loc         { return e.Loc }
func (e *StringConcat) NodeLoc() pt.Loc          { return e.Loc }
func (e *List) NodeLoc() pt.Loc                  { return e.Loc }
func (e *AllocDynamicArray) NodeLoc() pt.Loc     { return e.Loc }
func (e *FunctionArg) NodeLoc() pt.Loc           { return e.Loc }
func (e *Undefined) NodeLoc() pt.Loc             { return pt.Codegen }
func (e *ReturnData) NodeLoc() pt.Loc            { return e.Loc }
func (e *AbiEncode) NodeLoc() pt.Loc             { return e.Loc }

func (e *NumberLiteral) Type() Type         { return e.Ty }
func (e *RationalNumberLiteral) Type() Type { return e.Ty }
func (e *BoolLiteral) Type() Type           { return Bool{} }
func (e *BytesLiteral) Type() Type          { return e.Ty }
func (e *ArrayLiteral) Type() Type          { return e.Ty }
func (e *StructLiteral) Type() Type         { return e.Ty }
func (e *Binary) Type() Type                { return e.Ty }
func (e *Compare) Type() Type               { return Bool{} }
func (e *Not) Type() Type                   { return Bool{} }
func (e *Complement) Type() Type            { return e.Ty }
func (e *UnaryMinus) Type() Type            { return e.Ty }
func (e *Or) Type() Type                    { return Bool{} }
func (e *And) Type() Type                   { return Bool{} }
func (e *ConditionalOperator) Type() Type   { return e.Ty }
func (e *ZeroExt) Type() Type               { return e.Ty }
func (e *SignExt) Type() Type               { return e.Ty }
func (e *Trunc) Type() Type                 { return e.Ty }
func (e *Cast) Type() Type                  { return e.Ty }
func (e *BytesCast) Type() Type             { return e.Ty }
func (e *Variable) Type() Type              { return e.Ty }
func (e *ConstantVariable) Type() Type      { return e.Ty }
func (e *StorageVariable) Type() Type       { return e.Ty }
func (e *StorageLoad) Type() Type           { return e.Ty }
func (e *Load) Type() Type                  { return e.Ty }
func (e *Subscript) Type() Type             { return e.Ty }
func (e *StructMember) Type() Type          { return e.Ty }
func (e *StorageArrayLength) Type() Type    { return e.Ty }
func (e *Assign) Type() Type                { return e.Ty }
func (e *IncDec) Type() Type                { return e.Ty }
func (e *InternalFunctionCall) Type() Type  { return firstOrVoid(e.Returns) }
func (e *ExternalFunctionCall) Type() Type  { return firstOrVoid(e.Returns) }
func (e *Constructor) Type() Type           { return Contract{No: e.ContractNo} }
func (e *Builtin) Type() Type               { return firstOrVoid(e.Tys) }
func (e *Keccak256) Type() Type             { return e.Ty }
func (e *StringCompare) Type() Type         { return Bool{} }
func (e *StringConcat) Type() Type          { return e.Ty }
func (e *List) Type() Type                  { return Void{} }
func (e *AllocDynamicArray) Type() Type     { return e.Ty }
func (e *FunctionArg) Type() Type           { return e.Ty }
func (e *Undefined) Type() Type             { return e.Ty }
func (e *ReturnData) Type() Type            { return DynamicBytes{} }
func (e *AbiEncode) Type() Type             { return DynamicBytes{} }

func firstOrVoid(tys []Type) Type {
	if len(tys) == 1 {
		return tys[0]
	}
	return Void{}
}

// TupleTypes returns the types of a call's return values, or of a list's
// items. Any other expression is a single value.
func TupleTypes(e Expression) []Type {
	switch e := e.(type) {
	case *InternalFunctionCall:
		return e.Returns
	case *ExternalFunctionCall:
		return e.Returns
	case *Builtin:
		return e.Tys
	case *List:
		tys := make([]Type, len(e.Items))
		for i, item := range e.Items {
			tys[i] = item.Type()
		}
		return tys
	}
	return []Type{e.Type()}
}

// Walk calls f for e and, while f returns true, its subexpressions in
// evaluation order.
func Walk(e Expression, f func(Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	each := func(list ...Expression) {
		for _, item := range list {
			Walk(item, f)
		}
	}
	switch e := e.(type) {
	case *ArrayLiteral:
		each(e.Values...)
	case *StructLiteral:
		each(e.Values...)
	case *Binary:
		each(e.Left, e.Right)
	case *Compare:
		each(e.Left, e.Right)
	case *Not:
		each(e.Expr)
	case *Complement:
		each(e.Expr)
	case *UnaryMinus:
		each(e.Expr)
	case *Or:
		each(e.Left, e.Right)
	case *And:
		each(e.Left, e.Right)
	case *ConditionalOperator:
		each(e.Cond, e.True, e.False)
	case *ZeroExt:
		each(e.Expr)
	case *SignExt:
		each(e.Expr)
	case *Trunc:
		each(e.Expr)
	case *Cast:
		each(e.Expr)
	case *BytesCast:
		each(e.Expr)
	case *StorageLoad:
		each(e.Expr)
	case *Load:
		each(e.Expr)
	case *Subscript:
		each(e.Array, e.Index)
	case *StructMember:
		each(e.Expr)
	case *StorageArrayLength:
		each(e.Array)
	case *Assign:
		each(e.Left, e.Right)
	case *IncDec:
		each(e.Expr)
	case *InternalFunctionCall:
		each(e.Args...)
	case *ExternalFunctionCall:
		each(e.Address)
		each(e.Args...)
		each(e.Value)
	case *Constructor:
		each(e.Args...)
		each(e.Value)
	case *Builtin:
		each(e.Args...)
	case *Keccak256:
		each(e.Args...)
	case *StringCompare:
		each(e.Left.RunTime, e.Right.RunTime)
	case *StringConcat:
		each(e.Left.RunTime, e.Right.RunTime)
	case *List:
		each(e.Items...)
	case *AllocDynamicArray:
		each(e.Length)
	case *AbiEncode:
		each(e.Packed...)
		each(e.Args...)
	}
}

// IsLiteral is true for number, bool and bytes literals.
func IsLiteral(e Expression) bool {
	switch e.(type) {
	case *NumberLiteral, *RationalNumberLiteral, *BoolLiteral, *BytesLiteral:
		return true
	}
	return false
}
