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

import "fmt"
import "strings"
import "github.com/launix-de/lvm/gc"

func init_io() {
	DeclareTitle("IO")

	Declare(&Declaration{
		Name: "print", Desc: "prints values to the output, strings without quotes",
		MinParameter: 0, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"value...", "any", "values to print"},
		}, Returns: "nil",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			for _, v := range a {
				fmt.Fprint(in.Out, in.Display(v))
			}
			fmt.Fprintln(in.Out)
			return in.Heap.Nil()
		},
	})
	Declare(&Declaration{
		Name: "error", Desc: "creates an error value. Errors stop the evaluation of the surrounding expressions",
		MinParameter: 1, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"message...", "any", "parts of the message"},
		}, Returns: "any",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			var parts []string
			for _, v := range a {
				parts = append(parts, in.Display(v))
			}
			return in.Heap.NewError("%s", strings.Join(parts, " "))
		},
	})
	Declare(&Declaration{
		Name: "help", Desc: "lists all functions or prints help for a specific function",
		MinParameter: 0, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"topic", "string", "function to print help about"},
		}, Returns: "nil",
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			if len(a) == 0 {
				Help(in.Out, nil)
				return in.Heap.Nil()
			}
			def := in.declarationFor(a[0])
			if def == nil {
				return in.Heap.NewError("function not found: %s", in.Display(a[0]))
			}
			Help(in.Out, def)
			return in.Heap.Nil()
		},
	})
}
