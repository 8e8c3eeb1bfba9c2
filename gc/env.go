/*
Copyright (C) 2026  LVM Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package gc

import "github.com/launix-de/lvm/table"

// Env is a lexical environment: symbol bindings plus a parent link. Bindings
// are keyed by the handle of the interned symbol.
type Env struct {
	id       int64
	parent   *Env
	bindings *table.Table[int64, Atom]
	epoch    uint64 // collection that last traced this env
}

// NewEnv creates and registers an environment. Lambdas refer to it by id.
func (h *Heap) NewEnv(parent *Env) *Env {
	h.nextEnvID++
	e := &Env{
		id:       h.nextEnvID,
		parent:   parent,
		bindings: table.New[int64, Atom](table.MinCapacity),
	}
	h.envs.Set(e.id, e)
	return e
}

// DestroyEnv unregisters e. Lambdas still closing over it lose their
// environment.
func (h *Heap) DestroyEnv(e *Env) {
	h.envs.Remove(e.id)
}

func (h *Heap) envByID(id int64) *Env {
	if id == 0 {
		return nil
	}
	e, _ := h.envs.Lookup(id)
	return e
}

// EnvCount is the number of registered environments.
func (h *Heap) EnvCount() int { return h.envs.Len() }

func (e *Env) Parent() *Env { return e.parent }
func (e *Env) Len() int     { return e.bindings.Len() }

// Define binds sym in e itself, shadowing outer bindings.
func (e *Env) Define(sym, value Atom) {
	e.bindings.Set(int64(sym), value)
}

// Lookup walks the parent chain.
func (e *Env) Lookup(sym Atom) (Atom, bool) {
	for ; e != nil; e = e.parent {
		if v := e.bindings.Get(int64(sym)); v != nil {
			return *v, true
		}
	}
	return 0, false
}

// Assign overwrites the innermost existing binding of sym.
func (e *Env) Assign(sym, value Atom) bool {
	for ; e != nil; e = e.parent {
		if v := e.bindings.Get(int64(sym)); v != nil {
			*v = value
			return true
		}
	}
	return false
}

// Resolve looks sym up and returns an error record if it is unbound.
func (h *Heap) Resolve(e *Env, sym Atom) Atom {
	if v, ok := e.Lookup(sym); ok {
		return v
	}
	return h.NewError("no binding for symbol %s", h.Text(sym))
}
