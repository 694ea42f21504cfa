package codegen

import (
	"maps"
	"slices"

	"github.com/salaheldinsoliman/solang/internal/sema"
)

// Def is a definition site: an instruction in a block.
type Def struct {
	Block int
	Instr int
}

// VarDefs maps a variable to the definitions that may reach a point. The
// flag is set once the value may have been modified in place after the
// definition, e.g. by pushing onto an array.
type VarDefs map[int]map[Def]bool

func (v VarDefs) Clone() VarDefs {
	res := make(VarDefs, len(v))
	for no, defs := range v {
		res[no] = maps.Clone(defs)
	}
	return res
}

// merge adds the definitions of other to v and reports whether v grew.
func (v VarDefs) merge(other VarDefs) bool {
	changed := false
	for no, defs := range other {
		entry, ok := v[no]
		if !ok {
			entry = make(map[Def]bool, len(defs))
			v[no] = entry
		}
		for def, modified := range defs {
			prev, seen := entry[def]
			if !seen || (modified && !prev) {
				entry[def] = prev || modified
				changed = true
			}
		}
	}
	return changed
}

type TransferKind int

const (
	// TransferGen makes Def the only definition of Var.
	TransferGen TransferKind = iota
	// TransferMod marks the definitions of Var as modified.
	TransferMod
	// TransferCopy gives Var the definitions of Src.
	TransferCopy
	// TransferKill removes all definitions of Var.
	TransferKill
)

type Transfer struct {
	Kind TransferKind
	Var  int
	Src  int
	Def  Def
}

// ApplyTransfers updates vars with the effect of one instruction.
func ApplyTransfers(transfers []Transfer, vars VarDefs) {
	for _, t := range transfers {
		switch t.Kind {
		case TransferGen:
			vars[t.Var] = map[Def]bool{t.Def: false}
		case TransferMod:
			for def := range vars[t.Var] {
				vars[t.Var][def] = true
			}
		case TransferCopy:
			if defs, ok := vars[t.Src]; ok {
				vars[t.Var] = maps.Clone(defs)
			} else {
				delete(vars, t.Var)
			}
		case TransferKill:
			delete(vars, t.Var)
		}
	}
}

// instrTransfers computes the transfers of every instruction in a block.
func instrTransfers(blockNo int, block *BasicBlock) [][]Transfer {
	res := make([][]Transfer, len(block.Instrs))
	for instrNo, entry := range block.Instrs {
		def := Def{Block: blockNo, Instr: instrNo}
		gen := func(vars ...int) []Transfer {
			var ts []Transfer
			for _, v := range vars {
				ts = append(ts, Transfer{Kind: TransferGen, Var: v, Def: def})
			}
			return ts
		}
		mod := func(expr sema.Expression) []Transfer {
			if v, ok := expr.(*sema.Variable); ok {
				return []Transfer{{Kind: TransferMod, Var: v.VarNo}}
			}
			return nil
		}

		switch i := entry.Instr.(type) {
		case *Set:
			if src, ok := i.Expr.(*sema.Variable); ok {
				res[instrNo] = []Transfer{{Kind: TransferCopy, Var: i.Res, Src: src.VarNo}}
			} else {
				res[instrNo] = gen(i.Res)
			}
		case *PushMemory:
			res[instrNo] = append(gen(i.Res), Transfer{Kind: TransferMod, Var: i.Array})
		case *PopMemory:
			res[instrNo] = append(gen(i.Res), Transfer{Kind: TransferMod, Var: i.Array})
		case *PushStorage:
			res[instrNo] = append(gen(i.Res), mod(i.Storage)...)
		case *PopStorage:
			res[instrNo] = append(gen(i.Defines()...), mod(i.Storage)...)
		case *SetStorage:
			res[instrNo] = mod(i.Storage)
		case *ClearStorage:
			res[instrNo] = mod(i.Storage)
		case *Store:
			res[instrNo] = mod(i.Dest)
		default:
			res[instrNo] = gen(entry.Instr.Defines()...)
		}
	}
	return res
}

// FindReachingDefinitions computes the transfers of every instruction and
// the definitions reaching each block, iterating to a fixed point.
func FindReachingDefinitions(cfg *ControlFlowGraph) {
	for no, block := range cfg.Blocks {
		block.Transfers = instrTransfers(no, block)
		block.Defs = VarDefs{}
	}
	if len(cfg.Blocks) == 0 {
		return
	}

	todo := map[int]bool{0: true}
	visited := map[int]bool{}
	for len(todo) > 0 {
		blockNo := slices.Min(slices.Collect(maps.Keys(todo)))
		delete(todo, blockNo)
		visited[blockNo] = true

		block := cfg.Blocks[blockNo]
		vars := block.Defs.Clone()
		for _, transfers := range block.Transfers {
			ApplyTransfers(transfers, vars)
		}

		for _, edge := range block.Edges() {
			if cfg.Blocks[edge].Defs.merge(vars) || !visited[edge] {
				todo[edge] = true
			}
		}
	}
}
