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

// intOp declares a builtin taking exactly two integers.
func intOp(name, desc string, op func(h *gc.Heap, x, y int64) gc.Atom) {
	Declare(&Declaration{
		Name: name, Desc: desc,
		MinParameter: 2, MaxParameter: 2,
		Params: []DeclarationParameter{
			DeclarationParameter{"a", "int", "first operand"},
			DeclarationParameter{"b", "int", "second operand"},
		}, Returns: "int",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			if h.Tag(a[0]) != gc.TagInt || h.Tag(a[1]) != gc.TagInt {
				return h.NewError("%s supports only two integer arguments", name)
			}
			return op(h, h.Int(a[0]), h.Int(a[1]))
		},
	})
}

func init_alu() {
	DeclareTitle("Arithmetic")

	intOp("+", "adds two integers", func(h *gc.Heap, x, y int64) gc.Atom {
		return h.NewInt(x + y)
	})
	intOp("-", "subtracts the second integer from the first", func(h *gc.Heap, x, y int64) gc.Atom {
		return h.NewInt(x - y)
	})
	intOp("*", "multiplies two integers", func(h *gc.Heap, x, y int64) gc.Atom {
		return h.NewInt(x * y)
	})
	intOp("/", "divides the first integer by the second, rounding towards zero", func(h *gc.Heap, x, y int64) gc.Atom {
		if y == 0 {
			return h.NewError("division by zero")
		}
		return h.NewInt(x / y)
	})
	intOp("<", "tells whether the first integer is less than the second", func(h *gc.Heap, x, y int64) gc.Atom {
		return h.Bool(x < y)
	})

	Declare(&Declaration{
		Name: "=", Desc: "compares two values by content: integers by value, strings and symbols by text, lists element by element",
		MinParameter: 2, MaxParameter: 2,
		Params: []DeclarationParameter{
			DeclarationParameter{"a", "any", "first value"},
			DeclarationParameter{"b", "any", "second value"},
		}, Returns: "bool",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return in.Heap.Bool(in.Heap.Equal(a[0], a[1]))
		},
	})
}
