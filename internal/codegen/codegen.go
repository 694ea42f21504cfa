// Package codegen lowers resolved function bodies into control flow graphs
// and runs the CFG passes over them.
package codegen

import (
	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

type Options struct {
	ConstantFolding bool
}

func DefaultOptions() Options {
	return Options{ConstantFolding: true}
}

// Generate builds a CFG for every function with a body, plus a storage
// initializer per contract, and runs the pass pipeline over them. Nothing
// is generated when the namespace has errors.
func Generate(ns *sema.Namespace, opts Options) []*ControlFlowGraph {
	if ns.Diagnostics.AnyErrors() {
		log.Info("not generating code: namespace has errors")
		return nil
	}

	pipeline := NewPipeline(opts)
	var cfgs []*ControlFlowGraph

	for contractNo, contract := range ns.Contracts {
		if contract.Kind == pt.KindInterface {
			continue
		}
		cfg := buildStorageInitializer(ns, contractNo)
		pipeline.Run(cfg, ns)
		cfgs = append(cfgs, cfg)
	}

	for no, fn := range ns.Functions {
		if !fn.HasBody || fn.IsModifier() || fn.Symtable == nil {
			continue
		}
		if fn.ContractNo >= 0 && ns.Contracts[fn.ContractNo].Kind == pt.KindInterface {
			continue
		}
		cfgs = append(cfgs, FunctionCFG(ns, no, pipeline))
	}

	log.Infof("generated %d cfgs", len(cfgs))
	return cfgs
}

// FunctionCFG builds and optimizes the CFG of a single function.
func FunctionCFG(ns *sema.Namespace, no int, pipeline *Pipeline) *ControlFlowGraph {
	cfg := buildFunction(ns, no)
	if pipeline != nil {
		pipeline.Run(cfg, ns)
	}
	return cfg
}
