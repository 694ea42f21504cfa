package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// File is a source file known to the reporter, indexed by its file number.
type File struct {
	Name   string
	Source string

	lines      []string
	lineStarts []int
}

// Reporter renders diagnostics with source context
type Reporter struct {
	files []*File
	// Explain adds the category and description of the code to every
	// diagnostic.
	Explain bool
}

func NewReporter() *Reporter {
	return &Reporter{}
}

// AddFile registers a source file and returns its file number.
func (r *Reporter) AddFile(name, source string) int {
	f := &File{Name: name, Source: source, lines: strings.Split(source, "\n")}
	f.lineStarts = []int{0}
	for i, c := range source {
		if c == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	r.files = append(r.files, f)
	return len(r.files) - 1
}

// Position converts a byte offset into a 1-based line and column.
func (r *Reporter) Position(file, offset int) (line, column int) {
	if file < 0 || file >= len(r.files) {
		return 0, 0
	}
	f := r.files[file]
	idx := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, offset - f.lineStarts[idx] + 1
}

func (r *Reporter) FormatAll(list List) string {
	var b strings.Builder
	for _, d := range list {
		b.WriteString(r.FormatDiagnostic(d))
	}
	return b.String()
}

// FormatDiagnostic formats a diagnostic with Rust-like styling
func (r *Reporter) FormatDiagnostic(d Diagnostic) string {
	var result strings.Builder

	levelColor := getLevelColor(d.Level)

	if d.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(d.Level.String()), d.Code, d.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(d.Level.String()), d.Message))
	}

	r.writeSnippet(&result, d.Loc, d.Level)

	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range d.Notes {
		result.WriteString(fmt.Sprintf("%s: %s\n", noteColor("note"), note.Message))
		r.writeSnippet(&result, note.Loc, Info)
	}

	if d.Help != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("%s: %s\n", helpColor("help"), d.Help))
	}

	if r.Explain && d.Code != "" {
		dim := color.New(color.Faint).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s: %s\n", dim("="), GetErrorCategory(d.Code), GetErrorDescription(d.Code)))
	}

	result.WriteString("\n")
	return result.String()
}

func (r *Reporter) writeSnippet(result *strings.Builder, loc pt.Loc, level Level) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if !loc.IsFile() || loc.File >= len(r.files) {
		if !loc.IsFile() {
			result.WriteString(fmt.Sprintf("    %s %s\n", dim("-->"), loc.String()))
		}
		return
	}

	f := r.files[loc.File]
	line, column := r.Position(loc.File, loc.Start)
	endLine, endColumn := r.Position(loc.File, loc.End)

	lineNumberWidth := getLineNumberWidth(line)
	indent := strings.Repeat(" ", lineNumberWidth)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), f.Name, line, column))
	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if line > 0 && line <= len(f.lines) {
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, line)),
			dim("│"),
			f.lines[line-1]))

		length := endColumn - column
		if endLine != line {
			length = len(f.lines[line-1]) - column + 1
		}
		result.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), createMarker(column, length, level)))
	}
}

func getLevelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Info:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.Faint).SprintFunc()
	}
}

// createMarker creates the underline marker for a location
func createMarker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}

	spaces := strings.Repeat(" ", max(0, column-1))

	markerChar := "^"
	if level < Warning {
		markerChar = "-"
	}

	return spaces + getLevelColor(level)(strings.Repeat(markerChar, length))
}

func getLineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3 // minimum width for visual alignment
	}
	return width
}
