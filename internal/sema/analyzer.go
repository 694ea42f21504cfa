package sema

import (
	"github.com/tliron/commonlog"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/parser"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

var log = commonlog.GetLogger("solang.sema")

// Resolve adds the declarations of a parsed source file to ns and resolves
// every function body. Diagnostics are collected in ns.Diagnostics.
//
// Resolution runs in passes so that contracts, structs and constants can
// be used before they are declared:
//
//  1. pragmas, contract and struct names
//  2. struct fields, events, errors, state variables and function
//     signatures
//  3. state variable initializers
//  4. function bodies
func Resolve(unit *pt.SourceUnit, fileNo int, ns *Namespace) {
	c := &collector{ns: ns, fileNo: fileNo}

	for _, part := range unit.Parts {
		if p, ok := part.(*pt.PragmaDirective); ok {
			c.pragma(p)
		}
	}
	c.declareNames(unit)
	c.resolveStructFields()
	c.declareParts(unit)
	log.Debugf("file %d: %d contracts, %d functions declared", fileNo, len(ns.Contracts), len(c.functions))

	c.resolveStateInitializers()

	for _, no := range c.functions {
		ns.resolveBody(no)
	}
	for _, no := range c.functions {
		ns.checkUnusedVariables(ns.Functions[no])
	}

	ns.LayoutContracts()
	log.Debugf("file %d resolved with %d diagnostics", fileNo, len(ns.Diagnostics))
}

// ParseAndResolve parses source as a new file of ns and resolves it. Parse
// errors are added to the diagnostics and stop resolution.
func ParseAndResolve(ns *Namespace, path, source string) int {
	fileNo := ns.LoadFile(path, source)
	unit, parseErrs, scanErrs := parser.ParseSource(fileNo, path, source)

	for _, e := range scanErrs {
		ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorScan, e.Loc, e.Message))
	}
	for _, e := range parseErrs {
		ns.Diagnostics.Push(diagnostics.ErrorAt(diagnostics.ErrorSyntax, e.Loc, e.Message))
	}
	if len(scanErrs) > 0 || len(parseErrs) > 0 || unit == nil {
		log.Debugf("%s: %d scan and %d parse errors", path, len(scanErrs), len(parseErrs))
		return fileNo
	}

	Resolve(unit, fileNo, ns)
	return fileNo
}
