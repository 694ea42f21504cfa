package diagnostics

import (
	"testing"

	"github.com/fatih/color"
	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestReporterFormat(t *testing.T) {
	source := "contract Test {\n    function f() public {\n        x = 1;\n    }\n}"

	reporter := NewReporter()
	file := reporter.AddFile("test.sol", source)

	start := 50
	d := NewError(ErrorUndefinedVariable, pt.FileLoc(file, start, start+1), "'x' not found").
		WithNote(pt.FileLoc(file, 0, 8), "in this contract").
		WithHelp("did you mean 'y'?").
		Build()

	formatted := reporter.FormatDiagnostic(d)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]: 'x' not found")
	assert.Contains(t, formatted, "test.sol:3:9")
	assert.Contains(t, formatted, "        x = 1;")
	assert.Contains(t, formatted, "note: in this contract")
	assert.Contains(t, formatted, "test.sol:1:1")
	assert.Contains(t, formatted, "help: did you mean 'y'?")
}

func TestReporterPosition(t *testing.T) {
	reporter := NewReporter()
	file := reporter.AddFile("a.sol", "ab\ncd\n\nef")

	line, col := reporter.Position(file, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = reporter.Position(file, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = reporter.Position(file, 7)
	assert.Equal(t, 4, line)
	assert.Equal(t, 1, col)
}

func TestReporterSyntheticLocation(t *testing.T) {
	reporter := NewReporter()
	formatted := reporter.FormatDiagnostic(WarningAt(WarningUnreachableCode, pt.Codegen, "unreachable statement"))

	assert.Contains(t, formatted, "warning[W0002]: unreachable statement")
	assert.Contains(t, formatted, "codegen")
}

func TestListSortAndDedup(t *testing.T) {
	var list List
	list.Push(ErrorAt(ErrorNumericOverflow, pt.FileLoc(0, 10, 12), "value 133 does not fit into type int8."))
	list.Push(UnreachableStatement(pt.FileLoc(0, 3, 4)))
	list.Push(ErrorAt(ErrorNumericOverflow, pt.FileLoc(0, 10, 12), "value 133 does not fit into type int8."))

	list.SortAndDedup()

	require.Len(t, list, 2)
	assert.Equal(t, Warning, list[0].Level)
	assert.True(t, list.AnyErrors())
	assert.Len(t, list.Errors(), 1)
	assert.Len(t, list.Warnings(), 1)
}

func TestListTruncate(t *testing.T) {
	var list List
	list.Push(ErrorAt(ErrorGenericSemantic, pt.Implicit, "a"))
	mark := len(list)
	list.Push(ErrorAt(ErrorGenericSemantic, pt.Implicit, "b"))
	list.Truncate(mark)

	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Message)
}

func TestNotFoundSuggestions(t *testing.T) {
	d := NotFound("balace", pt.Implicit, []string{"balance", "owner"})
	assert.Equal(t, "'balace' not found", d.Message)
	assert.Equal(t, "did you mean 'balance'?", d.Help)

	d = NotFound("xyz", pt.Implicit, []string{"balance"})
	assert.Empty(t, d.Help)
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, IsWarning(WarningAmbiguousEmit))
	assert.False(t, IsWarning(ErrorDivideByZero))
	assert.Equal(t, "Constant Evaluation", GetErrorCategory(ErrorDivideByZero))
	assert.Equal(t, "Parser", GetErrorCategory(ErrorSyntax))
	assert.Equal(t, "Unknown error code", GetErrorDescription("E9999"))
}

func TestExplain(t *testing.T) {
	r := NewReporter()
	file := r.AddFile("test.sol", "uint x = 1 / 0;")
	d := ErrorAt(ErrorDivideByZero, pt.FileLoc(file, 9, 14), "divide by zero")

	assert.NotContains(t, r.FormatDiagnostic(d), "Constant Evaluation")

	r.Explain = true
	out := r.FormatDiagnostic(d)
	assert.Contains(t, out, "= Constant Evaluation: Constant expression divides by zero")

	w := WarningAt(WarningUnreachableCode, pt.FileLoc(file, 0, 4), "unreachable statement")
	assert.Contains(t, r.FormatDiagnostic(w), "= Warning: Code is unreachable")
}
