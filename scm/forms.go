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

func init_forms() {
	DeclareTitle("Special forms")

	Declare(&Declaration{
		Name: "quote", Desc: "returns its argument unevaluated, also written as 'x",
		MinParameter: 1, MaxParameter: 1,
		Params: []DeclarationParameter{
			DeclarationParameter{"value", "any", "expression to return as data"},
		}, Returns: "any",
		Syntax: true,
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			return a[0]
		},
	})
	Declare(&Declaration{
		Name: "define", Desc: "binds a symbol in the current environment.\n(define (f a b) body...) is short for (define f (lambda (a b) body...))",
		MinParameter: 2, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"symbol", "symbol|list", "name to bind, or (name params...)"},
			DeclarationParameter{"value...", "any", "expression to evaluate, or the body of the function"},
		}, Returns: "any",
		Syntax: true,
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			target := a[0]
			var value gc.Atom
			switch h.Tag(target) {
			case gc.TagPair:
				name := h.First(target)
				if h.Tag(name) != gc.TagSymbol {
					return h.NewError("define: function name must be a symbol, got %s", in.String(name))
				}
				value = h.NewLambda(h.Rest(target), in.list(a[1:]), env)
				target = name
			case gc.TagSymbol:
				if len(a) != 2 {
					return h.NewError("define: expects exactly one value for %s", h.Text(target))
				}
				value = in.Eval(a[1], env)
				if h.IsError(value) {
					return value
				}
			default:
				return h.NewError("define: cannot bind %s", in.String(target))
			}
			env.Define(target, value)
			return value
		},
	})
	Declare(&Declaration{
		Name: "set", Desc: "overwrites the innermost existing binding of a symbol",
		MinParameter: 2, MaxParameter: 2,
		Params: []DeclarationParameter{
			DeclarationParameter{"symbol", "symbol", "bound name"},
			DeclarationParameter{"value", "any", "expression to evaluate"},
		}, Returns: "any",
		Syntax: true,
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			if h.Tag(a[0]) != gc.TagSymbol {
				return h.NewError("set: cannot assign to %s", in.String(a[0]))
			}
			value := in.Eval(a[1], env)
			if h.IsError(value) {
				return value
			}
			if !env.Assign(a[0], value) {
				return h.NewError("set: no binding for symbol %s", h.Text(a[0]))
			}
			return value
		},
	})
	Declare(&Declaration{
		Name: "if", Desc: "evaluates then if the condition is neither false nor nil, else the else branch",
		MinParameter: 2, MaxParameter: 3,
		Params: []DeclarationParameter{
			DeclarationParameter{"condition", "any", "condition"},
			DeclarationParameter{"then", "any", "expression for the true case"},
			DeclarationParameter{"else", "any", "expression for the false case, nil if omitted"},
		}, Returns: "any",
		Syntax: true,
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			condition := in.Eval(a[0], env)
			if h.IsError(condition) {
				return condition
			}
			if h.Truthy(condition) {
				return in.Eval(a[1], env)
			}
			if len(a) > 2 {
				return in.Eval(a[2], env)
			}
			return h.Nil()
		},
	})
	Declare(&Declaration{
		Name: "lambda", Desc: "creates a function closing over the current environment.\nparams is a list of symbols; a symbol instead of the list or after a dot collects the remaining arguments",
		MinParameter: 1, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"params", "list|symbol", "parameter names"},
			DeclarationParameter{"body...", "any", "expressions evaluated on call, the last one is returned"},
		}, Returns: "func",
		Syntax: true,
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			params := a[0]
			for ; h.IsPair(params); params = h.Rest(params) {
				if h.Tag(h.First(params)) != gc.TagSymbol {
					return h.NewError("lambda: parameter %s is no symbol", in.String(h.First(params)))
				}
			}
			if !h.IsNil(params) && h.Tag(params) != gc.TagSymbol {
				return h.NewError("lambda: parameter %s is no symbol", in.String(params))
			}
			return h.NewLambda(a[0], in.list(a[1:]), env)
		},
	})
	Declare(&Declaration{
		Name: "begin", Desc: "evaluates expressions in order and returns the last value",
		MinParameter: 0, MaxParameter: 1000,
		Params: []DeclarationParameter{
			DeclarationParameter{"expression...", "any", "expressions"},
		}, Returns: "any",
		Syntax: true,
		Fn: func(in *Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
			h := in.Heap
			result := h.Nil()
			for _, expr := range a {
				result = in.Eval(expr, env)
				if h.IsError(result) {
					return result
				}
			}
			return result
		},
	})
}
