package pt

import "fmt"

// LocKind tells where a location comes from. Only LocFile locations point
// into source text.
type LocKind uint8

const (
	LocFile LocKind = iota
	LocBuiltin
	LocCommandLine
	LocImplicit
	LocCodegen
)

// Loc is a byte range in one source file. It is comparable, so it can be used
// as a map key.
type Loc struct {
	Kind  LocKind
	File  int
	Start int
	End   int
}

var (
	Builtin     = Loc{Kind: LocBuiltin}
	CommandLine = Loc{Kind: LocCommandLine}
	Implicit    = Loc{Kind: LocImplicit}
	Codegen     = Loc{Kind: LocCodegen}
)

func FileLoc(file, start, end int) Loc {
	return Loc{Kind: LocFile, File: file, Start: start, End: end}
}

func (l Loc) IsFile() bool { return l.Kind == LocFile }

// Union returns the smallest location covering both l and other. Locations
// in different files, or synthetic ones, are left as l.
func (l Loc) Union(other Loc) Loc {
	if !l.IsFile() || !other.IsFile() || l.File != other.File {
		return l
	}
	res := l
	if other.Start < res.Start {
		res.Start = other.Start
	}
	if other.End > res.End {
		res.End = other.End
	}
	return res
}

func (l Loc) BeginRange() Loc {
	if !l.IsFile() {
		return l
	}
	return FileLoc(l.File, l.Start, l.Start)
}

func (l Loc) EndRange() Loc {
	if !l.IsFile() {
		return l
	}
	return FileLoc(l.File, l.End, l.End)
}

// Compare orders locations by file then by offset. Synthetic locations sort
// before file locations.
func (l Loc) Compare(other Loc) int {
	switch {
	case l.IsFile() != other.IsFile():
		if l.IsFile() {
			return 1
		}
		return -1
	case l.Kind != other.Kind:
		return int(l.Kind) - int(other.Kind)
	case l.File != other.File:
		return l.File - other.File
	case l.Start != other.Start:
		return l.Start - other.Start
	default:
		return l.End - other.End
	}
}

func (l Loc) String() string {
	switch l.Kind {
	case LocBuiltin:
		return "builtin"
	case LocCommandLine:
		return "commandline"
	case LocImplicit:
		return "implicit"
	case LocCodegen:
		return "codegen"
	default:
		return fmt.Sprintf("file %d:%d-%d", l.File, l.Start, l.End)
	}
}
