package codegen

import (
	"fmt"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// InstrOrigin tells whether an instruction was written by the user or
// synthesized by the compiler. Constant folding only reports overflow for
// user code.
type InstrOrigin int

const (
	OriginSolidity InstrOrigin = iota
	OriginCodegen
)

func (o InstrOrigin) String() string {
	if o == OriginCodegen {
		return "codegen"
	}
	return "solidity"
}

// Instr is one CFG instruction. Expressions embedded in an instruction are
// exposed through Operands so that passes can rewrite them in place.
type Instr interface {
	Operands() []*sema.Expression
	// Defines lists the variables the instruction writes.
	Defines() []int
	IsTerminator() bool
}

type (
	// Set assigns Expr to the variable Res.
	Set struct {
		Loc  pt.Loc
		Res  int
		Expr sema.Expression
	}
	Branch struct {
		Block int
	}
	BranchCond struct {
		Cond  sema.Expression
		True  int
		False int
	}
	Return struct {
		Values []sema.Expression
	}
	// Call is a call to an internal function. Res holds one variable per
	// return value.
	Call struct {
		Res        []int
		FunctionNo int
		Args       []sema.Expression
		ReturnTys  []sema.Type
	}
	// ExternalCall sends Payload to Address. Success is the variable
	// receiving the call status, or -1 if a failure should revert.
	ExternalCall struct {
		Success    int
		FunctionNo int
		Address    sema.Expression
		Payload    sema.Expression
		Value      sema.Expression
	}
	// Constructor deploys a new instance of a contract.
	Constructor struct {
		Success    int
		Res        int
		ContractNo int
		Args       []sema.Expression
		Value      sema.Expression
	}
	LoadStorage struct {
		Res     int
		Ty      sema.Type
		Storage sema.Expression
	}
	SetStorage struct {
		Ty      sema.Type
		Storage sema.Expression
		Value   sema.Expression
	}
	ClearStorage struct {
		Ty      sema.Type
		Storage sema.Expression
	}
	// PushStorage appends Value, or a zero value when Value is nil, to a
	// storage array. Res receives a reference to the new element.
	PushStorage struct {
		Res     int
		Ty      sema.Type
		Storage sema.Expression
		Value   sema.Expression
	}
	PopStorage struct {
		Res     int
		Ty      sema.Type
		Storage sema.Expression
	}
	PushMemory struct {
		Res   int
		Ty    sema.Type
		Array int
		Value sema.Expression
	}
	PopMemory struct {
		Res   int
		Ty    sema.Type
		Array int
	}
	// Store writes Data to the memory location Dest.
	Store struct {
		Dest sema.Expression
		Data sema.Expression
	}
	// AbiDecode decodes Data into Res. When Selector is set, data not
	// starting with it branches to ExceptionBlock.
	AbiDecode struct {
		Res            []int
		Selector       *uint32
		ExceptionBlock int
		Tys            []sema.Type
		Data           sema.Expression
	}
	EmitEvent struct {
		EventNo int
		Data    []sema.Expression
		DataTys []sema.Type
		Topics  []sema.Expression
	}
	SelfDestruct struct {
		Recipient sema.Expression
	}
	MemCopy struct {
		Source      sema.Expression
		Destination sema.Expression
		Bytes       sema.Expression
	}
	// AssertFailure reverts. Expr is the encoded revert data, if any.
	AssertFailure struct {
		Expr sema.Expression
	}
	Print struct {
		Expr sema.Expression
	}
	Unreachable struct{}
)

func exprs(list []sema.Expression) []*sema.Expression {
	res := make([]*sema.Expression, 0, len(list))
	for i := range list {
		res = append(res, &list[i])
	}
	return res
}

// optional drops the pointers to nil expressions.
func optional(list ...*sema.Expression) []*sema.Expression {
	var res []*sema.Expression
	for _, e := range list {
		if *e != nil {
			res = append(res, e)
		}
	}
	return res
}

func (i *Set) Operands() []*sema.Expression           { return []*sema.Expression{&i.Expr} }
func (i *Branch) Operands() []*sema.Expression        { return nil }
func (i *BranchCond) Operands() []*sema.Expression    { return []*sema.Expression{&i.Cond} }
func (i *Return) Operands() []*sema.Expression        { return exprs(i.Values) }
func (i *Call) Operands() []*sema.Expression          { return exprs(i.Args) }
func (i *LoadStorage) Operands() []*sema.Expression   { return []*sema.Expression{&i.Storage} }
func (i *SetStorage) Operands() []*sema.Expression    { return []*sema.Expression{&i.Storage, &i.Value} }
func (i *ClearStorage) Operands() []*sema.Expression  { return []*sema.Expression{&i.Storage} }
func (i *PushStorage) Operands() []*sema.Expression   { return optional(&i.Storage, &i.Value) }
func (i *PopStorage) Operands() []*sema.Expression    { return []*sema.Expression{&i.Storage} }
func (i *PushMemory) Operands() []*sema.Expression    { return []*sema.Expression{&i.Value} }
func (i *PopMemory) Operands() []*sema.Expression     { return nil }
func (i *Store) Operands() []*sema.Expression         { return []*sema.Expression{&i.Dest, &i.Data} }
func (i *AbiDecode) Operands() []*sema.Expression     { return []*sema.Expression{&i.Data} }
func (i *SelfDestruct) Operands() []*sema.Expression  { return []*sema.Expression{&i.Recipient} }
func (i *AssertFailure) Operands() []*sema.Expression { return optional(&i.Expr) }
func (i *Print) Operands() []*sema.Expression         { return []*sema.Expression{&i.Expr} }
func (i *Unreachable) Operands() []*sema.Expression   { return nil }

func (i *ExternalCall) Operands() []*sema.Expression {
	return optional(&i.Address, &i.Payload, &i.Value)
}

func (i *Constructor) Operands() []*sema.Expression {
	return append(exprs(i.Args), optional(&i.Value)...)
}

func (i *EmitEvent) Operands() []*sema.Expression {
	return append(exprs(i.Data), exprs(i.Topics)...)
}

func (i *MemCopy) Operands() []*sema.Expression {
	return []*sema.Expression{&i.Source, &i.Destination, &i.Bytes}
}

func (i *Set) Defines() []int           { return []int{i.Res} }
func (i *Branch) Defines() []int        { return nil }
func (i *BranchCond) Defines() []int    { return nil }
func (i *Return) Defines() []int        { return nil }
func (i *Call) Defines() []int          { return i.Res }
func (i *LoadStorage) Defines() []int   { return []int{i.Res} }
func (i *SetStorage) Defines() []int    { return nil }
func (i *ClearStorage) Defines() []int  { return nil }
func (i *PushStorage) Defines() []int   { return []int{i.Res} }
func (i *PushMemory) Defines() []int    { return []int{i.Res} }
func (i *PopMemory) Defines() []int     { return []int{i.Res} }
func (i *Store) Defines() []int         { return nil }
func (i *AbiDecode) Defines() []int     { return i.Res }
func (i *EmitEvent) Defines() []int     { return nil }
func (i *SelfDestruct) Defines() []int  { return nil }
func (i *MemCopy) Defines() []int       { return nil }
func (i *AssertFailure) Defines() []int { return nil }
func (i *Print) Defines() []int         { return nil }
func (i *Unreachable) Defines() []int   { return nil }

func (i *PopStorage) Defines() []int {
	if i.Res < 0 {
		return nil
	}
	return []int{i.Res}
}

func (i *ExternalCall) Defines() []int {
	if i.Success < 0 {
		return nil
	}
	return []int{i.Success}
}

func (i *Constructor) Defines() []int {
	if i.Success < 0 {
		return []int{i.Res}
	}
	return []int{i.Success, i.Res}
}

func (i *Set) IsTerminator() bool           { return false }
func (i *Branch) IsTerminator() bool        { return true }
func (i *BranchCond) IsTerminator() bool    { return true }
func (i *Return) IsTerminator() bool        { return true }
func (i *Call) IsTerminator() bool          { return false }
func (i *ExternalCall) IsTerminator() bool  { return false }
func (i *Constructor) IsTerminator() bool   { return false }
func (i *LoadStorage) IsTerminator() bool   { return false }
func (i *SetStorage) IsTerminator() bool    { return false }
func (i *ClearStorage) IsTerminator() bool  { return false }
func (i *PushStorage) IsTerminator() bool   { return false }
func (i *PopStorage) IsTerminator() bool    { return false }
func (i *PushMemory) IsTerminator() bool    { return false }
func (i *PopMemory) IsTerminator() bool     { return false }
func (i *Store) IsTerminator() bool         { return false }
func (i *AbiDecode) IsTerminator() bool     { return false }
func (i *EmitEvent) IsTerminator() bool     { return false }
func (i *SelfDestruct) IsTerminator() bool  { return true }
func (i *MemCopy) IsTerminator() bool       { return false }
func (i *AssertFailure) IsTerminator() bool { return true }
func (i *Print) IsTerminator() bool         { return false }
func (i *Unreachable) IsTerminator() bool   { return true }

// Successors returns the blocks control may continue to after instr.
func Successors(instr Instr) []int {
	switch i := instr.(type) {
	case *Branch:
		return []int{i.Block}
	case *BranchCond:
		return []int{i.True, i.False}
	case *AbiDecode:
		if i.Selector != nil && i.ExceptionBlock >= 0 {
			return []int{i.ExceptionBlock}
		}
	}
	return nil
}

type InstrEntry struct {
	Origin InstrOrigin
	Instr  Instr
}

type BasicBlock struct {
	Name   string
	Instrs []InstrEntry
	// Phis are the variables assigned in a loop which has this block as its
	// header.
	Phis map[int]bool
	// Defs are the definitions reaching the start of the block.
	Defs VarDefs
	// Transfers holds, per instruction, the effect on the reaching
	// definitions.
	Transfers [][]Transfer
}

// Edges returns the successors of all instructions of the block.
func (b *BasicBlock) Edges() []int {
	var res []int
	for _, entry := range b.Instrs {
		res = append(res, Successors(entry.Instr)...)
	}
	return res
}

// Terminated is true when the block ends in a terminator.
func (b *BasicBlock) Terminated() bool {
	return len(b.Instrs) > 0 && b.Instrs[len(b.Instrs)-1].Instr.IsTerminator()
}

type ControlFlowGraph struct {
	Name       string
	FunctionNo int
	Params     []sema.Parameter
	Returns    []sema.Parameter
	Vars       []Variable
	Blocks     []*BasicBlock
	Nonpayable bool
	// ArrayLengthsTemps maps a memory array variable to the variable
	// tracking its length.
	ArrayLengthsTemps map[int]int

	current int
}

func NewCFG(name string, functionNo int) *ControlFlowGraph {
	return &ControlFlowGraph{
		Name:              name,
		FunctionNo:        functionNo,
		ArrayLengthsTemps: make(map[int]int),
	}
}

// NewBasicBlock adds an empty block and returns its number. It does not
// change the current block.
func (cfg *ControlFlowGraph) NewBasicBlock(name string) int {
	cfg.Blocks = append(cfg.Blocks, &BasicBlock{Name: name})
	return len(cfg.Blocks) - 1
}

func (cfg *ControlFlowGraph) SetBasicBlock(no int) {
	cfg.current = no
}

func (cfg *ControlFlowGraph) CurrentBlock() int { return cfg.current }

// Add appends a source instruction to the current block.
func (cfg *ControlFlowGraph) Add(vartab *Vartable, instr Instr) {
	cfg.add(vartab, OriginSolidity, instr)
}

// AddCodegen appends an instruction which has no counterpart in the source.
func (cfg *ControlFlowGraph) AddCodegen(vartab *Vartable, instr Instr) {
	cfg.add(vartab, OriginCodegen, instr)
}

func (cfg *ControlFlowGraph) add(vartab *Vartable, origin InstrOrigin, instr Instr) {
	if vartab != nil {
		for _, v := range instr.Defines() {
			vartab.SetDirty(v)
		}
	}
	block := cfg.Blocks[cfg.current]
	block.Instrs = append(block.Instrs, InstrEntry{Origin: origin, Instr: instr})
}

// SetPhis records the variables written in a loop on its header block.
func (cfg *ControlFlowGraph) SetPhis(block int, phis map[int]bool) {
	cfg.Blocks[block].Phis = phis
}

// Instr returns the instruction at a definition site.
func (cfg *ControlFlowGraph) Instr(def Def) Instr {
	return cfg.Blocks[def.Block].Instrs[def.Instr].Instr
}

// Validate checks that every block ends in a terminator and that branches
// point at existing blocks.
func (cfg *ControlFlowGraph) Validate() error {
	for no, block := range cfg.Blocks {
		if !block.Terminated() {
			return fmt.Errorf("%s: block %d (%s) is not terminated", cfg.Name, no, block.Name)
		}
		for _, edge := range block.Edges() {
			if edge < 0 || edge >= len(cfg.Blocks) {
				return fmt.Errorf("%s: block %d branches to missing block %d", cfg.Name, no, edge)
			}
		}
	}
	return nil
}
