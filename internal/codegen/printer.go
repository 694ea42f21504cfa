package codegen

import (
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/salaheldinsoliman/solang/internal/sema"
)

// printer renders a CFG as text, one block per label.
type printer struct {
	cfg    *ControlFlowGraph
	ns     *sema.Namespace
	output strings.Builder
}

func (p *printer) writeLine(format string, args ...any) {
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

// String renders the CFG in a stable textual form.
func (cfg *ControlFlowGraph) String(ns *sema.Namespace) string {
	p := &printer{cfg: cfg, ns: ns}

	params := make([]string, len(cfg.Params))
	for i, param := range cfg.Params {
		params[i] = p.param(param)
	}
	header := fmt.Sprintf("# %s(%s)", cfg.Name, strings.Join(params, ", "))
	if len(cfg.Returns) > 0 {
		returns := make([]string, len(cfg.Returns))
		for i, r := range cfg.Returns {
			returns[i] = p.param(r)
		}
		header += fmt.Sprintf(" returns (%s)", strings.Join(returns, ", "))
	}
	p.writeLine("%s", header)

	for no, block := range cfg.Blocks {
		p.writeLine("block%d: # %s", no, block.Name)
		if len(block.Phis) > 0 {
			phis := make([]string, 0, len(block.Phis))
			for _, v := range slices.Sorted(maps.Keys(block.Phis)) {
				phis = append(phis, p.varName(v))
			}
			p.writeLine("\t# phis: %s", strings.Join(phis, ","))
		}
		for _, entry := range block.Instrs {
			p.writeLine("\t%s", p.instr(entry.Instr))
		}
	}
	return p.output.String()
}

func (p *printer) param(param sema.Parameter) string {
	ty := p.ns.TypeString(param.Ty)
	if param.HasName() {
		return ty + " " + param.Name()
	}
	return ty
}

func (p *printer) varName(no int) string {
	if no >= 0 && no < len(p.cfg.Vars) {
		name := p.cfg.Vars[no].Name
		if name == "" {
			name = fmt.Sprintf("temp.%d", no)
		}
		return "%" + name
	}
	return fmt.Sprintf("%%var.%d", no)
}

func (p *printer) vars(list []int) string {
	names := make([]string, len(list))
	for i, v := range list {
		names[i] = p.varName(v)
	}
	return strings.Join(names, ", ")
}

func (p *printer) exprs(list []sema.Expression) string {
	res := make([]string, len(list))
	for i, e := range list {
		res[i] = p.expr(e)
	}
	return strings.Join(res, ", ")
}

func (p *printer) types(list []sema.Type) string {
	res := make([]string, len(list))
	for i, ty := range list {
		res[i] = p.ns.TypeString(ty)
	}
	return strings.Join(res, ", ")
}

func (p *printer) instr(instr Instr) string {
	switch i := instr.(type) {
	case *Set:
		return fmt.Sprintf("ty:%s %s = %s", p.ns.TypeString(i.Expr.Type()), p.varName(i.Res), p.expr(i.Expr))
	case *Branch:
		return fmt.Sprintf("branch block%d", i.Block)
	case *BranchCond:
		return fmt.Sprintf("branchcond %s, block%d, block%d", p.expr(i.Cond), i.True, i.False)
	case *Return:
		if len(i.Values) == 0 {
			return "return"
		}
		return "return " + p.exprs(i.Values)
	case *Call:
		call := fmt.Sprintf("call %s(%s)", p.functionName(i.FunctionNo), p.exprs(i.Args))
		if len(i.Res) > 0 {
			return p.vars(i.Res) + " = " + call
		}
		return call
	case *ExternalCall:
		s := fmt.Sprintf("external call %s address:%s payload:%s", p.functionName(i.FunctionNo), p.expr(i.Address), p.expr(i.Payload))
		if i.Value != nil {
			s += " value:" + p.expr(i.Value)
		}
		if i.Success >= 0 {
			s = p.varName(i.Success) + " = " + s
		}
		return s
	case *Constructor:
		s := fmt.Sprintf("%s = constructor %s(%s)", p.varName(i.Res), p.ns.Contracts[i.ContractNo].Name, p.exprs(i.Args))
		if i.Value != nil {
			s += " value:" + p.expr(i.Value)
		}
		if i.Success >= 0 {
			s = p.varName(i.Success) + ", " + s
		}
		return s
	case *LoadStorage:
		return fmt.Sprintf("%s = load storage slot(%s) ty:%s", p.varName(i.Res), p.expr(i.Storage), p.ns.TypeString(i.Ty))
	case *SetStorage:
		return fmt.Sprintf("store storage slot(%s) ty:%s = %s", p.expr(i.Storage), p.ns.TypeString(i.Ty), p.expr(i.Value))
	case *ClearStorage:
		return fmt.Sprintf("clear storage slot(%s) ty:%s", p.expr(i.Storage), p.ns.TypeString(i.Ty))
	case *PushStorage:
		value := "empty"
		if i.Value != nil {
			value = p.expr(i.Value)
		}
		return fmt.Sprintf("%s = push storage ty:%s slot:%s = %s", p.varName(i.Res), p.ns.TypeString(i.Ty), p.expr(i.Storage), value)
	case *PopStorage:
		s := fmt.Sprintf("pop storage ty:%s slot(%s)", p.ns.TypeString(i.Ty), p.expr(i.Storage))
		if i.Res >= 0 {
			s = p.varName(i.Res) + " = " + s
		}
		return s
	case *PushMemory:
		return fmt.Sprintf("%s = push array %s value:%s", p.varName(i.Res), p.varName(i.Array), p.expr(i.Value))
	case *PopMemory:
		return fmt.Sprintf("%s = pop array %s ty:%s", p.varName(i.Res), p.varName(i.Array), p.ns.TypeString(i.Ty))
	case *Store:
		return fmt.Sprintf("store %s, %s", p.expr(i.Dest), p.expr(i.Data))
	case *AbiDecode:
		s := fmt.Sprintf("%s = (abidecode:(%s) (%s))", p.vars(i.Res), p.expr(i.Data), p.types(i.Tys))
		if i.Selector != nil {
			s += fmt.Sprintf(" selector:0x%08x fail:block%d", *i.Selector, i.ExceptionBlock)
		}
		return s
	case *EmitEvent:
		return fmt.Sprintf("emit event %s topics %s, data %s", p.ns.Events[i.EventNo].Name, p.exprs(i.Topics), p.exprs(i.Data))
	case *SelfDestruct:
		return "selfdestruct " + p.expr(i.Recipient)
	case *MemCopy:
		return fmt.Sprintf("memcpy src: %s, dest: %s, bytes_len: %s", p.expr(i.Source), p.expr(i.Destination), p.expr(i.Bytes))
	case *AssertFailure:
		if i.Expr == nil {
			return "assert-failure"
		}
		return "assert-failure: " + p.expr(i.Expr)
	case *Print:
		return "print " + p.expr(i.Expr)
	case *Unreachable:
		return "unreachable"
	}
	return fmt.Sprintf("%T", instr)
}

func (p *printer) functionName(no int) string {
	fn := p.ns.Functions[no]
	if fn.ContractNo >= 0 {
		return p.ns.Contracts[fn.ContractNo].Name + "::" + fn.Signature
	}
	return fn.Signature
}

func (p *printer) expr(e sema.Expression) string {
	if e == nil {
		return "<nil>"
	}
	switch e := e.(type) {
	case *sema.NumberLiteral:
		return fmt.Sprintf("%s %s", p.ns.TypeString(e.Ty), e.Value)
	case *sema.RationalNumberLiteral:
		return fmt.Sprintf("rational %s", e.Value.RatString())
	case *sema.BoolLiteral:
		if e.Value {
			return "true"
		}
		return "false"
	case *sema.BytesLiteral:
		return fmt.Sprintf("%s hex\"%s\"", p.ns.TypeString(e.Ty), hex.EncodeToString(e.Value))
	case *sema.ArrayLiteral:
		return fmt.Sprintf("%s [%s]", p.ns.TypeString(e.Ty), p.exprs(e.Values))
	case *sema.StructLiteral:
		return fmt.Sprintf("struct { %s }", p.exprs(e.Values))
	case *sema.Binary:
		op := e.Op.String()
		if e.Unchecked {
			op = "(unchecked " + op + ")"
		}
		if e.Signed {
			op = "(signed " + op + ")"
		}
		return fmt.Sprintf("(%s %s %s)", p.expr(e.Left), op, p.expr(e.Right))
	case *sema.Compare:
		op := e.Op.String()
		if e.Signed && e.Op != sema.Equal && e.Op != sema.NotEqual {
			op = "(s)" + op
		}
		return fmt.Sprintf("(%s %s %s)", p.expr(e.Left), op, p.expr(e.Right))
	case *sema.Not:
		return "!" + p.expr(e.Expr)
	case *sema.Complement:
		return "~" + p.expr(e.Expr)
	case *sema.UnaryMinus:
		return "-" + p.expr(e.Expr)
	case *sema.ZeroExt:
		return fmt.Sprintf("(zext %s %s)", p.ns.TypeString(e.Ty), p.expr(e.Expr))
	case *sema.SignExt:
		return fmt.Sprintf("(sext %s %s)", p.ns.TypeString(e.Ty), p.expr(e.Expr))
	case *sema.Trunc:
		return fmt.Sprintf("(trunc %s %s)", p.ns.TypeString(e.Ty), p.expr(e.Expr))
	case *sema.Cast:
		return fmt.Sprintf("%s(%s)", p.ns.TypeString(e.Ty), p.expr(e.Expr))
	case *sema.BytesCast:
		return fmt.Sprintf("%s from:%s (%s)", p.ns.TypeString(e.Ty), p.ns.TypeString(e.From), p.expr(e.Expr))
	case *sema.Variable:
		return p.varName(e.VarNo)
	case *sema.Load:
		return fmt.Sprintf("(load %s)", p.expr(e.Expr))
	case *sema.Subscript:
		return fmt.Sprintf("(subscript %s %s[%s])", p.ns.TypeString(e.ArrayTy), p.expr(e.Array), p.expr(e.Index))
	case *sema.StructMember:
		return fmt.Sprintf("(struct %s field %d)", p.expr(e.Expr), e.Field)
	case *sema.StorageArrayLength:
		return fmt.Sprintf("(storage array length %s)", p.expr(e.Array))
	case *sema.Builtin:
		return fmt.Sprintf("(builtin %s (%s))", e.Kind, p.exprs(e.Args))
	case *sema.Keccak256:
		return fmt.Sprintf("(keccak256 %s)", p.exprs(e.Args))
	case *sema.StringCompare:
		return fmt.Sprintf("(strcmp (%s) (%s))", p.stringLocation(e.Left), p.stringLocation(e.Right))
	case *sema.StringConcat:
		return fmt.Sprintf("(concat (%s) (%s))", p.stringLocation(e.Left), p.stringLocation(e.Right))
	case *sema.AllocDynamicArray:
		if e.Init != nil {
			return fmt.Sprintf("(alloc %s len %s %q)", p.ns.TypeString(e.Ty), p.expr(e.Length), e.Init)
		}
		return fmt.Sprintf("(alloc %s len %s)", p.ns.TypeString(e.Ty), p.expr(e.Length))
	case *sema.FunctionArg:
		return fmt.Sprintf("(arg #%d)", e.ArgNo)
	case *sema.Undefined:
		return "undef"
	case *sema.ReturnData:
		return "(external call return data)"
	case *sema.AbiEncode:
		s := "(abi encode"
		if len(e.Packed) > 0 {
			s += " packed:" + p.exprs(e.Packed)
		}
		if len(e.Args) > 0 {
			s += " args:" + p.exprs(e.Args)
		}
		return s + ")"
	}
	return fmt.Sprintf("%T", e)
}

func (p *printer) stringLocation(s sema.StringLocation) string {
	if s.IsCompileTime() {
		return fmt.Sprintf("%q", s.CompileTime)
	}
	return p.expr(s.RunTime)
}
