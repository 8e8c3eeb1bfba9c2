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
import "os"
import "fmt"
import "sync"
import "github.com/launix-de/go-mysqlstack/xlog"
import "github.com/launix-de/lvm/gc"

func init() {
	init_forms()
	init_alu()
	init_list()
	init_strings()
	init_heap()
	init_io()
}

// Interpreter evaluates code on one heap. It is not safe for concurrent use;
// callers coming from other goroutines go through Lock/Unlock.
type Interpreter struct {
	Heap     *gc.Heap
	Global   *gc.Env
	Out      io.Writer
	Settings SettingsT

	sync.Mutex
	log    *xlog.Log
	stack  []gc.Atom // argument stack, every entry is a root
	result gc.Atom   // last top level result, a root
	depth  int       // nesting of Eval calls; collections only happen at 0
}

// New creates an interpreter whose global environment holds every declared
// builtin and special form.
func New(heap *gc.Heap) *Interpreter {
	in := &Interpreter{
		Heap:     heap,
		Out:      os.Stdout,
		Settings: DefaultSettings(heap),
		log:      heap.Log(),
	}
	in.Global = heap.NewEnv(nil)
	in.result = heap.Nil()
	for _, def := range declarations.GetAll() {
		var native gc.Atom
		if def.Syntax {
			native = heap.NewSyntax(def)
		} else {
			native = heap.NewBuiltin(def)
		}
		in.Global.Define(heap.Symbol(def.Name), native)
	}
	return in
}

// Push puts a value on the argument stack.
func (in *Interpreter) Push(a gc.Atom) {
	in.stack = append(in.stack, a)
}

// Drop removes the n topmost values from the argument stack.
func (in *Interpreter) Drop(n int) {
	if n < 0 || n > len(in.stack) {
		msg := fmt.Sprintf("argument stack underflow: dropping %d of %d", n, len(in.stack))
		in.log.Error("%s", msg)
		panic(gc.FatalError{Msg: msg})
	}
	clear(in.stack[len(in.stack)-n:])
	in.stack = in.stack[:len(in.stack)-n]
}

// StackDepth is the number of values on the argument stack.
func (in *Interpreter) StackDepth() int {
	return len(in.stack)
}

func (in *Interpreter) Eval(expr gc.Atom, env *gc.Env) gc.Atom {
	h := in.Heap
	switch h.Tag(expr) {
	case gc.TagSymbol:
		return h.Resolve(env, expr)
	case gc.TagPair:
		in.depth++
		defer func() { in.depth-- }()
		return in.evalPair(expr, env)
	case gc.TagBuiltin, gc.TagSyntax:
		return h.NewError("cannot evaluate %s", in.String(expr))
	default:
		// nil, booleans, integers, strings, errors and lambdas evaluate to themselves
		return expr
	}
}

func (in *Interpreter) evalPair(expr gc.Atom, env *gc.Env) gc.Atom {
	h := in.Heap
	fn := in.Eval(h.First(expr), env)
	if h.IsError(fn) {
		return fn
	}
	tag := h.Tag(fn)
	if tag != gc.TagBuiltin && tag != gc.TagSyntax && tag != gc.TagLambda {
		return h.NewError("cannot apply %s", in.String(fn))
	}

	base := len(in.stack)
	for arg := h.Rest(expr); h.IsPair(arg); arg = h.Rest(arg) {
		if tag == gc.TagSyntax {
			in.Push(h.First(arg))
			continue
		}
		v := in.Eval(h.First(arg), env)
		if h.IsError(v) {
			// unwind: drop what this call pushed and hand the error upward
			in.Drop(len(in.stack) - base)
			return v
		}
		in.Push(v)
	}
	argc := len(in.stack) - base
	result := in.apply(fn, in.stack[base:], env)
	in.Drop(argc)
	return result
}

// Apply calls a builtin or lambda with already evaluated arguments.
func (in *Interpreter) Apply(fn gc.Atom, args ...gc.Atom) gc.Atom {
	base := len(in.stack)
	for _, a := range args {
		in.Push(a)
	}
	in.depth++
	defer func() { in.depth-- }()
	result := in.apply(fn, in.stack[base:], in.Global)
	in.Drop(len(args))
	return result
}

func (in *Interpreter) apply(fn gc.Atom, args []gc.Atom, env *gc.Env) gc.Atom {
	h := in.Heap
	switch h.Tag(fn) {
	case gc.TagBuiltin, gc.TagSyntax:
		def := h.Native(fn).(*Declaration)
		if err := in.checkArity(def, len(args)); err != 0 {
			return err
		}
		return def.Fn(in, args, env)
	case gc.TagLambda:
		parent := h.LambdaEnv(fn)
		if parent == nil {
			parent = in.Global
		}
		local := h.NewEnv(parent)
		params := h.LambdaParams(fn)
		i := 0
		for ; h.IsPair(params); params = h.Rest(params) {
			if i >= len(args) {
				return h.NewError("lambda %s: too few arguments, got %d", in.String(h.LambdaParams(fn)), len(args))
			}
			local.Define(h.First(params), args[i])
			i++
		}
		if !h.IsNil(params) {
			// (lambda (a . rest) ...) or (lambda args ...)
			local.Define(params, in.list(args[i:]))
		} else if i < len(args) {
			return h.NewError("lambda %s: too many arguments, got %d", in.String(h.LambdaParams(fn)), len(args))
		}
		return in.evalBody(h.LambdaBody(fn), local)
	default:
		return h.NewError("cannot apply %s", in.String(fn))
	}
}

// evalBody evaluates a list of expressions and returns the last value.
func (in *Interpreter) evalBody(body gc.Atom, env *gc.Env) gc.Atom {
	h := in.Heap
	result := h.Nil()
	for ; h.IsPair(body); body = h.Rest(body) {
		result = in.Eval(h.First(body), env)
		if h.IsError(result) {
			return result
		}
	}
	return result
}

func (in *Interpreter) list(items []gc.Atom) gc.Atom {
	h := in.Heap
	result := h.Nil()
	for i := len(items) - 1; i >= 0; i-- {
		result = h.NewPair(items[i], result)
	}
	return result
}

// Safepoint runs a pending collection if no evaluation is in progress. The
// roots are the argument stack, the last result, the global environment and
// the given slots, which are rewritten in place.
func (in *Interpreter) Safepoint(roots ...*gc.Atom) bool {
	if in.depth > 0 || !in.Heap.CollectionPending() {
		return false
	}
	slots := make([]*gc.Atom, 0, len(in.stack)+1+len(roots))
	for i := range in.stack {
		slots = append(slots, &in.stack[i])
	}
	slots = append(slots, &in.result)
	slots = append(slots, roots...)
	in.Heap.Collect(slots, []*gc.Env{in.Global})
	if in.Settings.TracePrint {
		fmt.Fprintln(in.Out, "gc:", in.Heap.Stats())
	}
	return true
}

// Result is the value of the last top level form.
func (in *Interpreter) Result() gc.Atom {
	return in.result
}

// EvalAll reads every form in s and evaluates them one after another in the
// global environment. Between two top level forms the interpreter passes a
// safepoint. An error record stops the evaluation and is returned.
func (in *Interpreter) EvalAll(source, s string) gc.Atom {
	h := in.Heap
	forms := in.Read(source, s)
	in.result = h.Nil()
	for h.IsPair(forms) {
		form := h.First(forms)
		forms = h.Rest(forms)
		in.result = in.Eval(form, in.Global)
		if h.IsError(in.result) {
			in.log.Warning("%s: %s", source, in.String(in.result))
			break
		}
		in.Safepoint(&forms)
	}
	return in.result
}

// abort forgets the state of an evaluation that was left by a panic.
func (in *Interpreter) abort() {
	clear(in.stack)
	in.stack = in.stack[:0]
	in.depth = 0
}
