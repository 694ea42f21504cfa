package sema

import (
	"fmt"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
)

// checkUnusedVariables warns about local variables which are never read.
func (ns *Namespace) checkUnusedVariables(f *Function) {
	if f.Symtable == nil || !f.HasBody {
		return
	}
	for _, v := range f.Symtable.Vars {
		if v.ID.Name == "" || v.Read {
			continue
		}
		switch v.Usage {
		case UsageLocal, UsageDestructure:
		default:
			continue
		}
		if v.Assigned || v.Initialized {
			ns.Diagnostics.Push(diagnostics.WarningAt(diagnostics.WarningUnusedVariable, v.ID.Loc,
				fmt.Sprintf("local variable '%s' has been assigned, but never read", v.ID.Name)))
		} else {
			ns.Diagnostics.Push(diagnostics.WarningAt(diagnostics.WarningUnusedVariable, v.ID.Loc,
				fmt.Sprintf("local variable '%s' is declared but never used", v.ID.Name)))
		}
	}
}
