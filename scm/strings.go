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

import "strings"
import "github.com/launix-de/lvm/gc"

func init_strings() {
	// string functions
	DeclareTitle("Strings")

	Declare(&Declaration{
		Name: "string?", Desc: "tells if the value is a string",
		MinParameter: 1, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, Returns: "bool",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return in.Heap.Bool(in.Heap.Tag(a[0]) == gc.TagString)
		},
	})
	Declare(&Declaration{
		Name: "concat", Desc: "concatenates values and returns a string, strings are taken without quotes",
		MinParameter: 1, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"value...", "any", "values to concat"},
		}, Returns: "string",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			var sb strings.Builder
			for _, s := range a {
				sb.WriteString(in.Display(s))
			}
			return in.Heap.NewString(sb.String())
		},
	})
	Declare(&Declaration{
		Name: "substr", Desc: "returns a substring, start and len count bytes",
		MinParameter: 2, MaxParameter: 3,
		Params: []DeclarationParameter{
			DeclarationParameter{"value", "string", "string to cut"},
			DeclarationParameter{"start", "int", "first byte index"},
			DeclarationParameter{"len", "int", "optional length"},
		}, Returns: "string",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			if h.Tag(a[0]) != gc.TagString || h.Tag(a[1]) != gc.TagInt || len(a) > 2 && h.Tag(a[2]) != gc.TagInt {
				return h.NewError("substr expects a string and integer bounds")
			}
			s := h.Text(a[0])
			i := h.Int(a[1])
			end := int64(len(s))
			if len(a) > 2 {
				end = i + h.Int(a[2])
			}
			if i < 0 || end < i || end > int64(len(s)) {
				return h.NewError("substr: bounds %d..%d outside a string of %d bytes", i, end, len(s))
			}
			return h.NewString(s[i:end])
		},
	})
	Declare(&Declaration{
		Name: "strlen", Desc: "returns the length of a string in bytes",
		MinParameter: 1, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"value", "string", "input string"},
		}, Returns: "int",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			if !h.Tag(a[0]).HasText() {
				return h.NewError("strlen expects a string")
			}
			return h.NewInt(int64(len(h.Bytes(a[0]))))
		},
	})
	Declare(&Declaration{
		Name: "split", Desc: "splits a string using a separator or space",
		MinParameter: 1, MaxParameter: 2,
		Params: []DeclarationParameter{
			DeclarationParameter{"value", "string", "input string"},
			DeclarationParameter{"separator", "string", "(optional) parameter, defaults to \" \""},
		}, Returns: "list",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			split := " "
			if len(a) > 1 {
				if h.Tag(a[1]) != gc.TagString {
					return h.NewError("split: separator must be a string")
				}
				split = h.Text(a[1])
			}
			if h.Tag(a[0]) != gc.TagString {
				return h.NewError("split expects a string")
			}
			ar := strings.Split(h.Text(a[0]), split)
			result := make([]gc.Atom, len(ar))
			for i, v := range ar {
				result[i] = h.NewString(v)
			}
			return in.list(result)
		},
	})
	Declare(&Declaration{
		Name: "symbol", Desc: "returns the interned symbol with the given name",
		MinParameter: 1, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"name", "string", "symbol name"},
		}, Returns: "symbol",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			if h.Tag(a[0]) != gc.TagString || len(h.Bytes(a[0])) == 0 {
				return h.NewError("symbol expects a non-empty string")
			}
			return h.Symbol(h.Text(a[0]))
		},
	})
}
