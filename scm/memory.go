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

func init_heap() {
	DeclareTitle("Memory")

	Declare(&Declaration{
		Name: "gc", Desc: "requests a garbage collection. It runs as soon as the current top level form is finished",
		MinParameter: 0, MaxParameter: 0,
		Params: []DeclarationParameter{}, Returns: "bool",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			in.Heap.RequestCollection()
			return in.Heap.True()
		},
	})
	Declare(&Declaration{
		Name: "gc-stats", Desc: "describes regions, memory usage and past collections of the heap",
		MinParameter: 0, MaxParameter: 0,
		Params: []DeclarationParameter{}, Returns: "string",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return in.Heap.NewString(in.Heap.Stats().String())
		},
	})
	Declare(&Declaration{
		Name: "symbols", Desc: "lists the interned symbols starting with a prefix in lexical order",
		MinParameter: 0, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"prefix", "string", "prefix, all symbols if omitted"},
		}, Returns: "list",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			prefix := ""
			if len(a) > 0 {
				if !h.Tag(a[0]).HasText() {
					return h.NewError("symbols: prefix must be a string")
				}
				prefix = h.Text(a[0])
			}
			names := h.SymbolsWithPrefix(prefix)
			result := make([]gc.Atom, len(names))
			for i, name := range names {
				result[i] = h.Symbol(name)
			}
			return in.list(result)
		},
	})
	Declare(&Declaration{
		Name: "settings", Desc: "reads or changes interpreter settings.\n(settings) lists all settings, (settings name) reads one, (settings name value) changes it",
		MinParameter: 0, MaxParameter: 2,
		Params: []DeclarationParameter{
			DeclarationParameter{"name", "string", "Backtrace, Trace, TraceDir, TracePrint or CollectAfter"},
			DeclarationParameter{"value", "any", "new value"},
		}, Returns: "any",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return in.ChangeSettings(a)
		},
	})
}
