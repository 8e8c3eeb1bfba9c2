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

import "io"
import "fmt"
import "strings"
import "github.com/launix-de/NonLockingReadMap"
import "github.com/launix-de/lvm/gc"

// Native is the Go side of a builtin or special form. args aliases the
// argument stack: evaluated values for builtins, the unevaluated argument
// expressions for special forms.
type Native func(in *Interpreter, args []gc.Atom, env *gc.Env) gc.Atom

type Declaration struct {
	Name         string
	Desc         string
	MinParameter int
	MaxParameter int
	Params       []DeclarationParameter
	Returns      string // any | string | int | bool | func | list | symbol | nil
	Fn           Native
	Syntax       bool // arguments are passed unevaluated
}

type DeclarationParameter struct {
	Name string
	Type string // any | string | int | bool | func | list | symbol | nil
	Desc string
}

/* implement NonLockingReadMap */
func (d Declaration) GetKey() string {
	return d.Name
}

func (d Declaration) ComputeSize() uint {
	return uint(len(d.Name) + len(d.Desc))
}

var declaration_titles []string
var declarations NonLockingReadMap.NonLockingReadMap[Declaration, string] = NonLockingReadMap.New[Declaration, string]()

func DeclareTitle(title string) {
	declaration_titles = append(declaration_titles, "#"+title)
}

// Declare registers def for every interpreter created afterwards. A later
// declaration with the same name replaces the earlier one.
func Declare(def *Declaration) {
	if declarations.Get(def.Name) == nil {
		declaration_titles = append(declaration_titles, def.Name)
	}
	declarations.Set(def)
}

// LookupDeclaration returns the declaration registered under name or nil.
func LookupDeclaration(name string) *Declaration {
	return declarations.Get(name)
}

// declarationFor resolves a help topic: a name string, a symbol or the
// builtin record itself.
func (in *Interpreter) declarationFor(topic gc.Atom) *Declaration {
	h := in.Heap
	switch h.Tag(topic) {
	case gc.TagString, gc.TagSymbol:
		return declarations.Get(h.Text(topic))
	case gc.TagBuiltin, gc.TagSyntax:
		if def, ok := h.Native(topic).(*Declaration); ok {
			return def
		}
	}
	return nil
}

func (in *Interpreter) checkArity(def *Declaration, argc int) gc.Atom {
	if argc < def.MinParameter {
		return in.Heap.NewError("%s expects at least %d parameters, got %d", def.Name, def.MinParameter, argc)
	}
	if argc > def.MaxParameter {
		return in.Heap.NewError("%s expects at most %d parameters, got %d", def.Name, def.MaxParameter, argc)
	}
	return 0
}

func Help(w io.Writer, def *Declaration) {
	if def == nil {
		fmt.Fprintln(w, "Available functions:")
		for _, title := range declaration_titles {
			if title[0] == '#' {
				fmt.Fprintln(w, "")
				fmt.Fprintln(w, "-- "+title[1:]+" --")
			} else if d := declarations.Get(title); d != nil {
				fmt.Fprintln(w, "  "+title+": "+strings.Split(d.Desc, "\n")[0])
			}
		}
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "get further information by typing (help \"functionname\")")
		return
	}
	kind := "function"
	if def.Syntax {
		kind = "special form"
	}
	fmt.Fprintln(w, "Help for "+kind+": "+def.Name)
	fmt.Fprintln(w, "===")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, def.Desc)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Allowed number of parameters:", def.MinParameter, "-", def.MaxParameter)
	fmt.Fprintln(w, "")
	for _, p := range def.Params {
		fmt.Fprintln(w, " - "+p.Name+" ("+p.Type+"): "+p.Desc)
	}
	fmt.Fprintln(w, "Returns:", def.Returns)
}
