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

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/launix-de/lvm/gc"
)

func newInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	config := gc.DefaultConfig()
	config.RegionSize = 64 * 1024
	heap, err := gc.NewHeap(config)
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	t.Cleanup(heap.Release)
	in := New(heap)
	var out bytes.Buffer
	in.Out = &out
	return in, &out
}

func run(t *testing.T, in *Interpreter, code string) string {
	t.Helper()
	return in.String(in.EvalAll("test", code))
}

func TestEval(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"42", "42"},
		{"-7", "-7"},
		{"nil", "nil"},
		{"true", "true"},
		{"false", "false"},
		{`"a\"b"`, `"a\"b"`},
		{"'x", "x"},
		{"(quote (1 2 3))", "(1 2 3)"},
		{"'(1 (2 3) \"s\")", "(1 (2 3) \"s\")"},
		{"(cons 1 2)", "(1 . 2)"},
		{"'(1 . 2)", "(1 . 2)"},
		{"(cons 1 (cons 2 nil))", "(1 2)"},
		{"(first '(1 2))", "1"},
		{"(rest '(1 2))", "(2)"},
		{"(list)", "nil"},
		{"(list 1 (+ 1 1) 3)", "(1 2 3)"},
		{"(+ 1 2)", "3"},
		{"(- 1 2)", "-1"},
		{"(* 6 7)", "42"},
		{"(/ 7 2)", "3"},
		{"(/ -7 2)", "-3"},
		{"(< 1 2)", "true"},
		{"(< 2 1)", "false"},
		{"(= '(1 \"a\") (list 1 \"a\"))", "true"},
		{"(= 1 2)", "false"},
		{"(if false 1 2)", "2"},
		{"(if nil 1)", "nil"},
		{"(if 0 1 2)", "1"},
		{"(begin 1 2 3)", "3"},
		{"(begin)", "nil"},
		{"(lambda (x) x)", "(lambda (x) x)"},
		{"((lambda (x y) (+ x y)) 1 2)", "3"},
		{"((lambda args args) 1 2)", "(1 2)"},
		{"((lambda (a . r) r) 1 2 3)", "(2 3)"},
		{"+", "builtin(+)"},
		{"if", "syntax(if)"},
		{"(define x 5) (set x 6) x", "6"},
		{"(define (sq x) (* x x)) (sq 9)", "81"},
		{"(define (fact n) (if (< n 1) 1 (* n (fact (- n 1))))) (fact 10)", "3628800"},
		{"; comment\n(+ 1 /* inline */ 2)", "3"},
		{"(symbols \"defi\")", "(define)"},
		{"1+", "error(no binding for symbol 1+)"},
		{"(concat \"a\" 1 'b)", "\"a1b\""},
		{"(strlen \"hello\")", "5"},
		{"(substr \"hello\" 1 3)", "\"ell\""},
		{"(substr \"hello\" 2)", "\"llo\""},
		{"(split \"a,b\" \",\")", "(\"a\" \"b\")"},
		{"(= (symbol \"abc\") 'abc)", "true"},
		{"(string? \"x\")", "true"},
		{"(string? 'x)", "false"},
	}
	for _, tt := range tests {
		in, _ := newInterpreter(t)
		if got := run(t, in, tt.code); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.code, got, tt.want)
		}
		if in.StackDepth() != 0 {
			t.Errorf("%s left %d values on the argument stack", tt.code, in.StackDepth())
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"undefined", "error(no binding for symbol undefined)"},
		{"(1 2)", "error(cannot apply 1)"},
		{"(- 3)", "error(- expects at least 2 parameters, got 1)"},
		{"(first 1 2)", "error(first expects at most 1 parameters, got 2)"},
		{"(+ 1 \"a\")", "error(+ supports only two integer arguments)"},
		{"(/ 1 0)", "error(division by zero)"},
		{"(first nil)", "error(first supports only one pair argument)"},
		{"((lambda (x) x))", "error(lambda (x): too few arguments, got 0)"},
		{"((lambda () 1) 2)", "error(lambda nil: too many arguments, got 1)"},
		{"(set y 1)", "error(set: no binding for symbol y)"},
		{"(error \"bad\" 42)", "error(bad 42)"},
		{"(cons (error \"e\") (undefined))", "error(e)"},
		{"(cons 1 (cons 2 (error \"inner\")))", "error(inner)"},
		{"(list 1 2 (first (rest (error \"deep\"))))", "error(deep)"},
		{"(if (error \"cond\") 1 2)", "error(cond)"},
		{"(define a 1) (error \"stop\") (define a 2)", "error(stop)"},
		{"(lambda (1) x)", "error(lambda: parameter 1 is no symbol)"},
		{"(substr \"abc\" 2 5)", "error(substr: bounds 2..7 outside a string of 3 bytes)"},
		{"(settings \"Nope\")", "error(unknown setting: Nope)"},
	}
	for _, tt := range tests {
		in, _ := newInterpreter(t)
		got := in.EvalAll("test", tt.code)
		if !in.Heap.IsError(got) || in.String(got) != tt.want {
			t.Errorf("%s = %s, want %s", tt.code, in.String(got), tt.want)
		}
		if in.StackDepth() != 0 {
			t.Errorf("%s left %d values on the argument stack", tt.code, in.StackDepth())
		}
	}

	// evaluation stops at the first failing top level form
	in, _ := newInterpreter(t)
	run(t, in, "(define a 1) (error \"stop\") (define a 2)")
	if got := run(t, in, "a"); got != "1" {
		t.Errorf("a = %s after the failing form, want 1", got)
	}
}

func TestStackUnderflowIsFatal(t *testing.T) {
	in, _ := newInterpreter(t)
	in.Push(in.Heap.Nil())
	in.Drop(1)
	defer func() {
		r := recover()
		err, ok := r.(error)
		var fatal gc.FatalError
		if !ok || !errors.As(err, &fatal) {
			t.Errorf("expected gc.FatalError, got %v", r)
		}
	}()
	in.Drop(1)
}

func TestReaderErrors(t *testing.T) {
	in, _ := newInterpreter(t)
	for _, code := range []string{"(+ 1", ")", "\"open", "'"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%q: expected a reader panic", code)
				}
			}()
			in.Read("test", code)
		}()
	}
}

func TestEvalLine(t *testing.T) {
	in, _ := newInterpreter(t)
	var w bytes.Buffer
	if in.EvalLine(&w, "(+ 1") {
		t.Fatalf("incomplete line reported as complete")
	}
	if !in.EvalLine(&w, "(+ 1\n2)") {
		t.Fatalf("complete line reported as incomplete")
	}
	if !strings.Contains(w.String(), "3") {
		t.Errorf("result not printed: %q", w.String())
	}
	w.Reset()
	if !in.EvalLine(&w, ")") {
		t.Errorf("reader error should not ask for more input")
	}
	if !strings.Contains(w.String(), "unexpected )") {
		t.Errorf("reader error not printed: %q", w.String())
	}
	if in.StackDepth() != 0 {
		t.Errorf("stack not reset after a panic")
	}
}

func TestCollectionAtSafepoints(t *testing.T) {
	in, _ := newInterpreter(t)
	h := in.Heap
	run(t, in, `
		(define (build n) (if (< n 1) nil (cons n (build (- n 1)))))
		(define big (build 3000))
		(define keep "still here")`)
	if h.Stats().Collections == 0 {
		t.Fatalf("building 3000 elements in 64 KiB regions did not collect")
	}
	big, ok := in.Global.Lookup(h.Symbol("big"))
	if !ok {
		t.Fatalf("big is unbound")
	}
	n := 0
	for l := big; h.IsPair(l); l = h.Rest(l) {
		n++
		if h.Int(h.First(l)) != int64(3001-n) {
			t.Fatalf("element %d = %d", n, h.Int(h.First(l)))
		}
	}
	if n != 3000 {
		t.Errorf("list has %d elements after collection, want 3000", n)
	}
	if got := run(t, in, "(first big)"); got != "3000" {
		t.Errorf("(first big) = %s", got)
	}
	if got := run(t, in, "keep"); got != `"still here"` {
		t.Errorf("keep = %s", got)
	}
}

func TestGcBuiltinWaitsForSafepoint(t *testing.T) {
	in, _ := newInterpreter(t)
	h := in.Heap
	run(t, in, "(define (adder n) (lambda (x) (+ x n))) (define add5 (adder 5))")
	before := h.Stats().Collections
	if got := run(t, in, "(begin (gc) (add5 10))"); got != "15" {
		t.Errorf("(add5 10) = %s", got)
	}
	if h.Stats().Collections != before+1 {
		t.Errorf("collections = %d, want %d", h.Stats().Collections, before+1)
	}
	// the closure environment of add5 survived the collection
	if got := run(t, in, "(add5 1)"); got != "6" {
		t.Errorf("(add5 1) = %s after collection", got)
	}
	if got := run(t, in, "(gc) (add5 2)"); got != "7" {
		t.Errorf("(add5 2) = %s after collection", got)
	}
}

func TestPrintAndHelp(t *testing.T) {
	in, out := newInterpreter(t)
	if got := run(t, in, `(print "a" 1 '(b "c"))`); got != "nil" {
		t.Errorf("print returned %s", got)
	}
	if out.String() != "a1(b \"c\")\n" {
		t.Errorf("print wrote %q", out.String())
	}

	out.Reset()
	run(t, in, `(help "cons")`)
	if !strings.Contains(out.String(), "Help for function: cons") {
		t.Errorf("help output %q", out.String())
	}
	out.Reset()
	run(t, in, "(help if)")
	if !strings.Contains(out.String(), "special form: if") {
		t.Errorf("help output %q", out.String())
	}
	out.Reset()
	run(t, in, "(help)")
	for _, want := range []string{"-- Lists --", "gc-stats"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help listing lacks %q", want)
		}
	}
	if got := run(t, in, `(help "nothing")`); got != "error(function not found: nothing)" {
		t.Errorf("help for unknown topic = %s", got)
	}
	if LookupDeclaration("lambda") == nil || !LookupDeclaration("lambda").Syntax {
		t.Errorf("lambda is not declared as special form")
	}
}

func TestSettings(t *testing.T) {
	in, _ := newInterpreter(t)
	if got := run(t, in, `(settings "CollectAfter" 4096)`); got != "true" {
		t.Fatalf("setting CollectAfter = %s", got)
	}
	if in.Heap.Config().CollectAfter != 4096 {
		t.Errorf("heap threshold is %d", in.Heap.Config().CollectAfter)
	}
	if got := run(t, in, `(settings "CollectAfter")`); got != "4096" {
		t.Errorf("reading CollectAfter = %s", got)
	}
	if got := run(t, in, `(settings "CollectAfter" -1)`); !strings.HasPrefix(got, "error(") {
		t.Errorf("negative threshold accepted: %s", got)
	}
	if got := run(t, in, "(settings)"); !strings.Contains(got, `"TracePrint" false`) {
		t.Errorf("settings listing %s", got)
	}

	dir := t.TempDir()
	run(t, in, `(settings "TraceDir" "`+dir+`")`)
	if got := run(t, in, `(settings "Trace" true)`); got != "true" {
		t.Fatalf("enabling trace = %s", got)
	}
	run(t, in, "(gc)")
	run(t, in, `(settings "Trace" false)`)
	raw, err := os.ReadFile(filepath.Join(dir, "trace_"+in.Heap.ID.String()+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"name":"collect"`) {
		t.Errorf("trace lacks collection events: %s", raw)
	}
}

func TestGcStats(t *testing.T) {
	in, _ := newInterpreter(t)
	run(t, in, "(gc) 1")
	got := run(t, in, "(gc-stats)")
	if !strings.Contains(got, "1 collections") {
		t.Errorf("gc-stats = %s", got)
	}
}
