package codegen

import (
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// Pass is one transformation of a CFG.
type Pass interface {
	Name() string
	Apply(cfg *ControlFlowGraph, ns *sema.Namespace) bool // Returns true if changes were made
	Description() string
}

// Pipeline runs its passes in order over every CFG.
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates the pass pipeline for opts.
func NewPipeline(opts Options) *Pipeline {
	pipeline := &Pipeline{}
	if opts.ConstantFolding {
		pipeline.AddPass(&ReachingDefinitionsPass{})
		pipeline.AddPass(&ConstantFoldingPass{})
	}
	return pipeline
}

func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

func (p *Pipeline) Passes() []Pass { return p.passes }

// Run applies every pass to cfg.
func (p *Pipeline) Run(cfg *ControlFlowGraph, ns *sema.Namespace) {
	for _, pass := range p.passes {
		if pass.Apply(cfg, ns) {
			log.Debugf("%s: %s changed the cfg", cfg.Name, pass.Name())
		}
	}
}

type ReachingDefinitionsPass struct{}

func (*ReachingDefinitionsPass) Name() string { return "reaching definitions" }

func (*ReachingDefinitionsPass) Description() string {
	return "Computes the definitions of each variable which reach every block"
}

func (*ReachingDefinitionsPass) Apply(cfg *ControlFlowGraph, _ *sema.Namespace) bool {
	FindReachingDefinitions(cfg)
	return false
}

type ConstantFoldingPass struct{}

func (*ConstantFoldingPass) Name() string { return "constant folding" }

func (*ConstantFoldingPass) Description() string {
	return "Evaluates constant expressions at compile time and replaces them with literals"
}

func (*ConstantFoldingPass) Apply(cfg *ControlFlowGraph, ns *sema.Namespace) bool {
	return ConstantFolding(cfg, ns) > 0
}
