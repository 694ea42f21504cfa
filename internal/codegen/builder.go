package codegen

import (
	"fmt"
	"math/big"

	"github.com/tliron/commonlog"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

var log = commonlog.GetLogger("solang.codegen")

// Revert data selectors of the standard Error(string) and Panic(uint256)
// encodings.
const (
	errorSelector uint32 = 0x08c379a0
	panicSelector uint32 = 0x4e487b71
)

// Panic codes used by assert and overflow checks.
const panicAssertFailure = 0x01

var (
	boolTy    = sema.Bool{}
	uint256Ty = sema.Uint{Bits: 256}
)

type loopTarget struct {
	breakBlock    int
	continueBlock int
}

// builder lowers one resolved function body into a CFG. Modifiers are
// inlined: each nesting level gets its own slot mapping and exit block.
type builder struct {
	ns     *sema.Namespace
	fn     *sema.Function
	cfg    *ControlFlowGraph
	vartab *Vartable

	loops []loopTarget
	// varMap maps the symtable slots of the body being lowered to CFG
	// variables. It is nil for the function's own body.
	varMap map[int]int
	// exit is the block a return continues at, or -1 when a return
	// leaves the function.
	exit int
	// level is the index of the modifier being lowered; len(fn.Modifiers)
	// is the function body.
	level int
}

// buildFunction creates the CFG of function no.
func buildFunction(ns *sema.Namespace, no int) *ControlFlowGraph {
	fn := ns.Functions[no]
	cfg := NewCFG(functionName(ns, fn), no)
	cfg.Params = fn.Params
	cfg.Returns = fn.Returns
	cfg.Nonpayable = fn.Mutability != sema.Payable

	b := &builder{
		ns:     ns,
		fn:     fn,
		cfg:    cfg,
		vartab: NewVartable(fn.Symtable),
		exit:   -1,
	}

	entry := cfg.NewBasicBlock("entry")
	cfg.SetBasicBlock(entry)

	for argNo, varNo := range fn.Symtable.Arguments {
		if varNo < 0 {
			continue
		}
		b.setVar(pt.Codegen, varNo, &sema.FunctionArg{Loc: pt.Codegen, Ty: fn.Params[argNo].Ty, ArgNo: argNo}, true)
	}
	for _, varNo := range fn.Symtable.Returns {
		b.setVar(pt.Codegen, varNo, sema.Default(b.vartab.Var(varNo).Ty, ns), true)
	}

	b.inline(0)

	cfg.Vars = b.vartab.Drain()
	log.Debugf("%s: %d blocks, %d variables", cfg.Name, len(cfg.Blocks), len(cfg.Vars))
	return cfg
}

// inline lowers the modifier at level, or the function body once every
// modifier has been entered. The current block is left where control
// continues after the level completes.
func (b *builder) inline(level int) {
	if level == len(b.fn.Modifiers) {
		savedMap, savedLevel := b.varMap, b.level
		b.varMap, b.level = nil, level
		if b.statements(b.fn.Body) {
			b.exitFunction(pt.Codegen)
		}
		b.varMap, b.level = savedMap, savedLevel
		return
	}

	call := b.fn.Modifiers[level].(*sema.InternalFunctionCall)
	modifier := b.ns.Functions[call.FunctionNo]

	// arguments are evaluated in the scope of the function
	savedMap := b.varMap
	b.varMap = nil
	args := b.expressions(call.Args)

	varMap := make(map[int]int, len(modifier.Symtable.Vars))
	for _, v := range modifier.Symtable.Vars {
		varMap[v.Pos] = b.vartab.Temp(v.ID, v.Ty)
	}
	b.varMap = varMap
	for argNo, varNo := range modifier.Symtable.Arguments {
		if varNo < 0 || argNo >= len(args) {
			continue
		}
		b.setVar(pt.Codegen, varNo, args[argNo], true)
	}

	savedLevel, savedLoops := b.level, b.loops
	b.level, b.loops = level, nil
	if b.statements(modifier.Body) {
		b.exitFunction(pt.Codegen)
	}
	b.level, b.loops = savedLevel, savedLoops
	b.varMap = savedMap
}

// placeholder lowers a '_' of the modifier at the current level by
// inlining the next level, whose returns continue after the '_'.
func (b *builder) placeholder() {
	next := b.cfg.NewBasicBlock("modifier_continue")

	savedExit, savedMap, savedLoops := b.exit, b.varMap, b.loops
	b.exit, b.loops = next, nil
	b.inline(b.level + 1)
	b.exit, b.varMap, b.loops = savedExit, savedMap, savedLoops

	b.cfg.SetBasicBlock(next)
}

// exitFunction leaves the current level: either by returning the return
// variables or by continuing after the enclosing '_'.
func (b *builder) exitFunction(loc pt.Loc) {
	if b.exit >= 0 {
		b.cfg.AddCodegen(b.vartab, &Branch{Block: b.exit})
		return
	}
	values := make([]sema.Expression, 0, len(b.fn.Symtable.Returns))
	for _, varNo := range b.fn.Symtable.Returns {
		values = append(values, &sema.Variable{Loc: loc, Ty: b.vartab.Var(varNo).Ty, VarNo: varNo})
	}
	b.cfg.AddCodegen(b.vartab, &Return{Values: values})
}

// mapVar translates a symtable slot of the body being lowered.
func (b *builder) mapVar(varNo int) int {
	if b.varMap == nil {
		return varNo
	}
	return b.varMap[varNo]
}

// setVar assigns value to the symtable slot varNo and keeps the array
// length temporary up to date.
func (b *builder) setVar(loc pt.Loc, varNo int, value sema.Expression, codegen bool) int {
	pos := b.mapVar(varNo)
	set := &Set{Loc: loc, Res: pos, Expr: value}
	if codegen {
		b.cfg.AddCodegen(b.vartab, set)
	} else {
		b.cfg.Add(b.vartab, set)
	}
	if tracksLength(b.vartab.Var(pos).Ty) {
		handleArrayAssign(value, b.cfg, b.vartab, pos)
	}
	return pos
}

// buildStorageInitializer creates the CFG which stores the initial values
// of a contract's state variables.
func buildStorageInitializer(ns *sema.Namespace, contractNo int) *ControlFlowGraph {
	contract := ns.Contracts[contractNo]
	cfg := NewCFG(fmt.Sprintf("%s::storage_initializer", contract.Name), -1)
	cfg.Nonpayable = true

	b := &builder{ns: ns, cfg: cfg, vartab: NewVartable(nil), exit: -1}
	cfg.SetBasicBlock(cfg.NewBasicBlock("entry"))

	for varNo, v := range contract.Variables {
		if v.Constant || v.Initializer == nil {
			continue
		}
		value := b.expression(v.Initializer)
		slot := &sema.NumberLiteral{
			Loc:   pt.Codegen,
			Ty:    sema.StorageRef{Immutable: v.Immutable, Elem: v.Ty},
			Value: new(big.Int).Set(ns.StorageSlot(contractNo, varNo)),
		}
		cfg.Add(b.vartab, &SetStorage{Ty: v.Ty, Storage: slot, Value: value})
	}
	cfg.AddCodegen(b.vartab, &Return{})

	cfg.Vars = b.vartab.Drain()
	return cfg
}

func functionName(ns *sema.Namespace, fn *sema.Function) string {
	name := fn.Ty.String()
	if fn.Ty == pt.FunctionTyFunction {
		name += "::" + fn.Signature
	}
	if fn.ContractNo >= 0 {
		return ns.ContractName(fn.ContractNo) + "::" + name
	}
	return name
}
