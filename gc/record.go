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
package gc

import (
	"bytes"
	"fmt"
	"reflect"
)

// Nil, True and False are the permanent singletons.
func (h *Heap) Nil() Atom   { return h.nilAtom }
func (h *Heap) True() Atom  { return h.trueAtom }
func (h *Heap) False() Atom { return h.falseAtom }

func (h *Heap) Bool(b bool) Atom {
	if b {
		return h.trueAtom
	}
	return h.falseAtom
}

func (h *Heap) NewInt(value int64) Atom {
	a, _ := h.Alloc(TagInt, 0)
	r, off := h.locate(a)
	r.setWord(off, 0, uint64(value))
	return a
}

func (h *Heap) NewString(s string) Atom {
	a, data := h.Alloc(TagString, len(s))
	copy(data, s)
	return a
}

// NewError creates an error record. Errors travel through the ordinary value
// channel; callers check IsError and pass them upward.
func (h *Heap) NewError(format string, args ...any) Atom {
	msg := fmt.Sprintf(format, args...)
	a, data := h.Alloc(TagError, len(msg))
	copy(data, msg)
	return a
}

func (h *Heap) NewPair(first, rest Atom) Atom {
	a, _ := h.Alloc(TagPair, 0)
	r, off := h.locate(a)
	r.setWord(off, 0, uint64(first))
	r.setWord(off, 1, uint64(rest))
	return a
}

// NewLambda creates a procedure closing over env.
func (h *Heap) NewLambda(params, body Atom, env *Env) Atom {
	a, _ := h.Alloc(TagLambda, 0)
	r, off := h.locate(a)
	r.setWord(off, 0, uint64(params))
	r.setWord(off, 1, uint64(body))
	var id int64
	if env != nil {
		id = env.id
	}
	r.setWord(off, 2, uint64(id))
	return a
}

// NewBuiltin wraps a native procedure. The collector never looks into fn.
func (h *Heap) NewBuiltin(fn any) Atom {
	return h.newNative(TagBuiltin, fn)
}

// NewSyntax wraps a native procedure that receives its arguments unevaluated.
func (h *Heap) NewSyntax(fn any) Atom {
	return h.newNative(TagSyntax, fn)
}

// newNative registers fn in the native table, which lives as long as the heap.
// Comparable values (e.g. declaration pointers) get one slot no matter how
// often they are wrapped; funcs get a slot per call.
func (h *Heap) newNative(tag Tag, fn any) Atom {
	idx, ok := uint64(0), false
	comparable := fn != nil && reflect.TypeOf(fn).Comparable()
	if comparable {
		idx, ok = h.nativeIDs[fn]
	}
	if !ok {
		idx = uint64(len(h.natives))
		h.natives = append(h.natives, fn)
		if comparable {
			h.nativeIDs[fn] = idx
		}
	}
	a, _ := h.Alloc(tag, 0)
	r, off := h.locate(a)
	r.setWord(off, 0, idx)
	return a
}

//
// Accessors
//

func (h *Heap) Tag(a Atom) Tag {
	r, off := h.locate(a)
	t := r.tag(off)
	if t == TagInvalid || t == TagForward {
		h.fatalf("handle %v refers to a %s record", a, t)
	}
	return t
}

func (h *Heap) IsNil(a Atom) bool   { return a == h.nilAtom }
func (h *Heap) IsError(a Atom) bool { return h.Tag(a) == TagError }
func (h *Heap) IsPair(a Atom) bool  { return h.Tag(a) == TagPair }

// Truthy is false only for the false singleton and nil.
func (h *Heap) Truthy(a Atom) bool {
	return a != h.falseAtom && a != h.nilAtom
}

func (h *Heap) expect(a Atom, tag Tag) (*Region, uint32) {
	r, off := h.locate(a)
	if t := r.tag(off); t != tag {
		panic(fmt.Sprintf("gc: expected %s record, got %s", tag, t))
	}
	return r, off
}

func (h *Heap) Int(a Atom) int64 {
	r, off := h.expect(a, TagInt)
	return int64(r.word(off, 0))
}

// Bytes returns the text buffer of a symbol, string or error record. The slice
// aliases heap memory and is only valid until the next collection.
func (h *Heap) Bytes(a Atom) []byte {
	r, off := h.locate(a)
	if !r.tag(off).HasText() {
		panic(fmt.Sprintf("gc: %s record has no text", r.tag(off)))
	}
	return h.data(Atom(r.word(off, 0)), r.dataLen(off))
}

// Text returns a copy of the text of a symbol, string or error record.
func (h *Heap) Text(a Atom) string {
	return string(h.Bytes(a))
}

func (h *Heap) data(handle Atom, length uint32) []byte {
	id := handle.region()
	if id == 0 || int(id) > len(h.regions) || h.regions[id-1] == nil {
		h.fatalf("data handle %v names no region", handle)
	}
	r := h.regions[id-1]
	off := handle.offset()
	if off < r.dataStart() || uint64(off)+uint64(length) > uint64(len(r.mem)) {
		h.fatalf("data handle %v outside the data area of region %d", handle, id)
	}
	return r.mem[off : off+length : off+length]
}

func (h *Heap) First(a Atom) Atom {
	r, off := h.expect(a, TagPair)
	return Atom(r.word(off, 0))
}

func (h *Heap) Rest(a Atom) Atom {
	r, off := h.expect(a, TagPair)
	return Atom(r.word(off, 1))
}

func (h *Heap) SetFirst(a, value Atom) {
	r, off := h.expect(a, TagPair)
	r.setWord(off, 0, uint64(value))
}

func (h *Heap) SetRest(a, value Atom) {
	r, off := h.expect(a, TagPair)
	r.setWord(off, 1, uint64(value))
}

func (h *Heap) LambdaParams(a Atom) Atom {
	r, off := h.expect(a, TagLambda)
	return Atom(r.word(off, 0))
}

func (h *Heap) LambdaBody(a Atom) Atom {
	r, off := h.expect(a, TagLambda)
	return Atom(r.word(off, 1))
}

// LambdaEnv returns the environment the lambda closes over, nil if it was
// created without one or the environment is gone.
func (h *Heap) LambdaEnv(a Atom) *Env {
	r, off := h.expect(a, TagLambda)
	return h.envByID(int64(r.word(off, 2)))
}

// Native returns the procedure stored in a builtin or syntax record.
func (h *Heap) Native(a Atom) any {
	r, off := h.locate(a)
	switch t := r.tag(off); t {
	case TagBuiltin, TagSyntax:
		return h.natives[r.word(off, 0)]
	default:
		panic(fmt.Sprintf("gc: expected builtin or syntax record, got %s", t))
	}
}

// Equal compares content: integers by value, text records by bytes, pairs
// element-wise. Everything else compares by identity.
func (h *Heap) Equal(a, b Atom) bool {
	for {
		if a == b {
			return true
		}
		ta, tb := h.Tag(a), h.Tag(b)
		if ta != tb {
			return false
		}
		switch ta {
		case TagInt:
			return h.Int(a) == h.Int(b)
		case TagString, TagSymbol, TagError:
			return bytes.Equal(h.Bytes(a), h.Bytes(b))
		case TagPair:
			if !h.Equal(h.First(a), h.First(b)) {
				return false
			}
			a, b = h.Rest(a), h.Rest(b)
		default:
			return false
		}
	}
}
