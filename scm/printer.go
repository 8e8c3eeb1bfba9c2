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
	"io"
	"strconv"
	"strings"

	"github.com/launix-de/lvm/gc"
)

// maxPrintElements bounds the output for very long or cyclic lists.
const maxPrintElements = 10000

var stringescaper = strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\r", "\\r", "\t", "\\t")

// String renders a value the way it would be written in source: strings
// quoted, lists in parentheses.
func (in *Interpreter) String(a gc.Atom) string {
	var b bytes.Buffer
	in.Serialize(&b, a)
	return b.String()
}

// Display renders strings and symbols without quotes, everything else like
// String.
func (in *Interpreter) Display(a gc.Atom) string {
	if in.Heap.Tag(a) == gc.TagString {
		return in.Heap.Text(a)
	}
	return in.String(a)
}

func (in *Interpreter) Serialize(w io.Writer, a gc.Atom) {
	h := in.Heap
	switch h.Tag(a) {
	case gc.TagNil:
		io.WriteString(w, "nil")
	case gc.TagTrue:
		io.WriteString(w, "true")
	case gc.TagFalse:
		io.WriteString(w, "false")
	case gc.TagInt:
		io.WriteString(w, strconv.FormatInt(h.Int(a), 10))
	case gc.TagSymbol:
		w.Write(h.Bytes(a))
	case gc.TagString:
		io.WriteString(w, "\"")
		stringescaper.WriteString(w, h.Text(a))
		io.WriteString(w, "\"")
	case gc.TagError:
		io.WriteString(w, "error(")
		w.Write(h.Bytes(a))
		io.WriteString(w, ")")
	case gc.TagPair:
		io.WriteString(w, "(")
		in.serializeList(w, a)
		io.WriteString(w, ")")
	case gc.TagLambda:
		io.WriteString(w, "(lambda ")
		in.Serialize(w, h.LambdaParams(a))
		for body := h.LambdaBody(a); h.IsPair(body); body = h.Rest(body) {
			io.WriteString(w, " ")
			in.Serialize(w, h.First(body))
		}
		io.WriteString(w, ")")
	case gc.TagBuiltin:
		io.WriteString(w, "builtin("+in.nativeName(a)+")")
	case gc.TagSyntax:
		io.WriteString(w, "syntax("+in.nativeName(a)+")")
	}
}

func (in *Interpreter) serializeList(w io.Writer, a gc.Atom) {
	h := in.Heap
	for n := 0; ; n++ {
		if n == maxPrintElements {
			io.WriteString(w, " ...")
			return
		}
		in.Serialize(w, h.First(a))
		rest := h.Rest(a)
		switch {
		case h.IsNil(rest):
			return
		case h.IsPair(rest):
			io.WriteString(w, " ")
			a = rest
		default:
			io.WriteString(w, " . ")
			in.Serialize(w, rest)
			return
		}
	}
}

func (in *Interpreter) nativeName(a gc.Atom) string {
	if def, ok := in.Heap.Native(a).(*Declaration); ok {
		return def.Name
	}
	return "?"
}
