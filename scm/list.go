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
package scm

import "github.com/launix-de/lvm/gc"

func init_list() {
	DeclareTitle("Lists")

	Declare(&Declaration{
		Name: "cons", Desc: "creates a pair",
		MinParameter: 2, MaxParameter: 2,
		Params: []DeclarationParameter{
			DeclarationParameter{"first", "any", "head"},
			DeclarationParameter{"rest", "any", "tail, usually a list or nil"},
		}, Returns: "list",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return in.Heap.NewPair(a[0], a[1])
		},
	})
	Declare(&Declaration{
		Name: "first", Desc: "returns the head of a pair",
		MinParameter: 1, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"pair", "list", "pair"},
		}, Returns: "any",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			if !in.Heap.IsPair(a[0]) {
				return in.Heap.NewError("first supports only one pair argument")
			}
			return in.Heap.First(a[0])
		},
	})
	Declare(&Declaration{
		Name: "rest", Desc: "returns the tail of a pair",
		MinParameter: 1, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"pair", "list", "pair"},
		}, Returns: "any",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			if !in.Heap.IsPair(a[0]) {
				return in.Heap.NewError("rest supports only one pair argument")
			}
			return in.Heap.Rest(a[0])
		},
	})
	Declare(&Declaration{
		Name: "list", Desc: "creates a list of its arguments",
		MinParameter: 0, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"value...", "any", "elements"},
		}, Returns: "list",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return in.list(a)
		},
	})
}
