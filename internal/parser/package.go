package parser

import "github.com/salaheldinsoliman/solang/internal/pt"

// ParseSource scans and parses a single source file. A syntax tree is always
// returned, even when errors were found.
func ParseSource(fileNo int, path string, source string) (*pt.SourceUnit, []ParseError, []ScanError) {
	tokens, scanErrors := Scan(fileNo, path, source)

	parser := NewParser(fileNo, path, source, tokens)
	unit := parser.ParseSourceUnit()

	return unit, parser.errors, scanErrors
}
