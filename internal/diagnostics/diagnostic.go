package diagnostics

import (
	"sort"

	"github.com/salaheldinsoliman/solang/internal/pt"
)

// Level represents the severity of a diagnostic
type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Note points at a related location, e.g. a previous definition.
type Note struct {
	Loc     pt.Loc
	Message string
}

type Diagnostic struct {
	Level   Level
	Code    string
	Loc     pt.Loc
	Message string
	Notes   []Note
	Help    string
}

// List is the ordered collection of diagnostics produced by a compilation.
type List []Diagnostic

func (l *List) Push(d Diagnostic) {
	*l = append(*l, d)
}

func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// Truncate drops everything pushed after n entries. It is used to discard
// speculative diagnostics.
func (l *List) Truncate(n int) {
	*l = (*l)[:n]
}

// Contains reports whether a diagnostic with the same level, location and
// message has been recorded.
func (l List) Contains(d Diagnostic) bool {
	for _, e := range l {
		if e.Level == d.Level && e.Loc == d.Loc && e.Message == d.Message {
			return true
		}
	}
	return false
}

func (l List) AnyErrors() bool {
	for _, d := range l {
		if d.Level == Error {
			return true
		}
	}
	return false
}

func (l List) Errors() List {
	return l.filter(Error)
}

func (l List) Warnings() List {
	return l.filter(Warning)
}

func (l List) filter(level Level) List {
	var res List
	for _, d := range l {
		if d.Level == level {
			res = append(res, d)
		}
	}
	return res
}

// SortAndDedup orders diagnostics by location and removes entries with the
// same level, location and message.
func (l *List) SortAndDedup() {
	sort.SliceStable(*l, func(i, j int) bool {
		return (*l)[i].Loc.Compare((*l)[j].Loc) < 0
	})

	type key struct {
		level   Level
		loc     pt.Loc
		message string
	}
	seen := make(map[key]struct{}, len(*l))
	res := (*l)[:0]
	for _, d := range *l {
		k := key{d.Level, d.Loc, d.Message}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, d)
	}
	*l = res
}

// Builder provides a fluent interface for creating diagnostics with notes
type Builder struct {
	d Diagnostic
}

func NewError(code string, loc pt.Loc, message string) *Builder {
	return &Builder{d: Diagnostic{Level: Error, Code: code, Loc: loc, Message: message}}
}

func NewWarning(code string, loc pt.Loc, message string) *Builder {
	return &Builder{d: Diagnostic{Level: Warning, Code: code, Loc: loc, Message: message}}
}

func (b *Builder) WithNote(loc pt.Loc, message string) *Builder {
	b.d.Notes = append(b.d.Notes, Note{Loc: loc, Message: message})
	return b
}

func (b *Builder) WithNotes(notes []Note) *Builder {
	b.d.Notes = append(b.d.Notes, notes...)
	return b
}

func (b *Builder) WithHelp(help string) *Builder {
	b.d.Help = help
	return b
}

func (b *Builder) Build() Diagnostic {
	return b.d
}

// Shorthands for the common case of a diagnostic without notes.

func ErrorAt(code string, loc pt.Loc, message string) Diagnostic {
	return NewError(code, loc, message).Build()
}

func WarningAt(code string, loc pt.Loc, message string) Diagnostic {
	return NewWarning(code, loc, message).Build()
}

func ErrorWithNote(code string, loc pt.Loc, message string, noteLoc pt.Loc, note string) Diagnostic {
	return NewError(code, loc, message).WithNote(noteLoc, note).Build()
}
