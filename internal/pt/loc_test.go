package pt

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocUnion(t *testing.T) {
	a := FileLoc(0, 5, 10)
	b := FileLoc(0, 2, 7)

	assert.Equal(t, FileLoc(0, 2, 10), a.Union(b))
	assert.Equal(t, a, a.Union(FileLoc(1, 0, 100)), "different files are not merged")
	assert.Equal(t, a, a.Union(Codegen))
}

func TestLocRanges(t *testing.T) {
	l := FileLoc(2, 4, 9)
	assert.Equal(t, FileLoc(2, 4, 4), l.BeginRange())
	assert.Equal(t, FileLoc(2, 9, 9), l.EndRange())
	assert.Equal(t, Implicit, Implicit.BeginRange())
}

func TestLocOrdering(t *testing.T) {
	locs := []Loc{
		FileLoc(1, 0, 3),
		FileLoc(0, 8, 9),
		Codegen,
		FileLoc(0, 1, 2),
		Builtin,
	}

	sort.Slice(locs, func(i, j int) bool { return locs[i].Compare(locs[j]) < 0 })

	assert.Equal(t, []Loc{Builtin, Codegen, FileLoc(0, 1, 2), FileLoc(0, 8, 9), FileLoc(1, 0, 3)}, locs)
}

func TestLocUsableAsMapKey(t *testing.T) {
	m := map[Loc]string{FileLoc(0, 1, 2): "a"}
	assert.Equal(t, "a", m[FileLoc(0, 1, 2)])
	assert.Equal(t, "file 0:1-2", FileLoc(0, 1, 2).String())
}

func TestRemoveParenthesis(t *testing.T) {
	inner := &Variable{Name: "x"}
	e := &Parenthesis{Expr: &Parenthesis{Expr: inner}}
	assert.Same(t, inner, RemoveParenthesis(e))
}
