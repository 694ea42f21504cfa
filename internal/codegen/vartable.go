package codegen

import (
	"fmt"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

type StorageKind int

const (
	StorageLocal StorageKind = iota
	// StorageContract is a local which holds a storage reference.
	StorageContract
)

// Variable is one slot of a CFG. The first slots mirror the function's
// symtable; temporaries follow.
type Variable struct {
	Name    string
	Loc     pt.Loc
	Ty      sema.Type
	Storage StorageKind
}

// Vartable allocates variable slots while a CFG is built. Dirty trackers
// record which variables are written between NewDirtyTracker and
// PopDirtyTracker, which gives the phi set of a loop.
type Vartable struct {
	vars  []Variable
	dirty []map[int]bool
}

// NewVartable seeds the table with the variables of a resolved function.
func NewVartable(symtable *sema.Symtable) *Vartable {
	vt := &Vartable{}
	if symtable == nil {
		return vt
	}
	for _, v := range symtable.Vars {
		storage := StorageLocal
		if v.IsReference() {
			storage = StorageContract
		}
		vt.vars = append(vt.vars, Variable{Name: v.ID.Name, Loc: v.ID.Loc, Ty: v.Ty, Storage: storage})
	}
	return vt
}

func (vt *Vartable) Len() int { return len(vt.vars) }

func (vt *Vartable) Var(no int) Variable { return vt.vars[no] }

// Temp adds a named variable, e.g. the locals of an inlined modifier.
func (vt *Vartable) Temp(id pt.Identifier, ty sema.Type) int {
	vt.vars = append(vt.vars, Variable{Name: id.Name, Loc: id.Loc, Ty: ty})
	return len(vt.vars) - 1
}

// TempAnonymous adds an unnamed temporary.
func (vt *Vartable) TempAnonymous(ty sema.Type) int {
	no := len(vt.vars)
	vt.vars = append(vt.vars, Variable{Name: fmt.Sprintf("temp.%d", no), Loc: pt.Codegen, Ty: ty})
	return no
}

// TempName adds a temporary whose name says what it holds.
func (vt *Vartable) TempName(name string, ty sema.Type) int {
	no := len(vt.vars)
	vt.vars = append(vt.vars, Variable{Name: fmt.Sprintf("%s.temp.%d", name, no), Loc: pt.Codegen, Ty: ty})
	return no
}

func (vt *Vartable) NewDirtyTracker() {
	vt.dirty = append(vt.dirty, map[int]bool{})
}

// SetDirty marks a variable as written in every open tracker.
func (vt *Vartable) SetDirty(no int) {
	for _, set := range vt.dirty {
		set[no] = true
	}
}

func (vt *Vartable) PopDirtyTracker() map[int]bool {
	last := vt.dirty[len(vt.dirty)-1]
	vt.dirty = vt.dirty[:len(vt.dirty)-1]
	return last
}

// Drain hands the variables over to the CFG.
func (vt *Vartable) Drain() []Variable {
	vars := vt.vars
	vt.vars = nil
	return vars
}
