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
	"encoding/binary"
	"fmt"
)

// Atom is a handle to a record: the region id in the upper 32 bits, the byte
// offset inside the region in the lower 32 bits. 0 never names a record.
// A handle stays valid until the next collection; Collect rewrites every root
// it is given.
type Atom uint64

func makeAtom(region, offset uint32) Atom {
	return Atom(uint64(region)<<32 | uint64(offset))
}

func (a Atom) region() uint32 { return uint32(a >> 32) }
func (a Atom) offset() uint32 { return uint32(a) }

func (a Atom) String() string {
	return fmt.Sprintf("#<%d:%x>", a.region(), a.offset())
}

// Tag is the variant of a record.
type Tag uint8

const (
	TagInvalid Tag = iota // zeroed memory, never allocated
	TagNil
	TagTrue
	TagFalse
	TagInt
	TagSymbol
	TagString
	TagPair
	TagLambda
	TagBuiltin
	TagSyntax
	TagError
	TagForward // written by the collector over a copied record
	numTags
)

/*
record layout (little endian):

	0      tag
	1..3   padding
	4..7   length of the data buffer (symbol, string, error)
	8..    payload words, see tagInfos
*/
const (
	headerSize    = 8
	minRecordSize = 16
)

type tagInfo struct {
	name    string
	size    uint32 // header + payload, at least minRecordSize
	hasData bool   // payload word 0 is a data handle, header holds its length
	words   int    // leading payload words that are record handles
}

var tagInfos = [numTags]tagInfo{
	TagInvalid: {name: "invalid"},
	TagNil:     {name: "nil", size: minRecordSize},
	TagTrue:    {name: "true", size: minRecordSize},
	TagFalse:   {name: "false", size: minRecordSize},
	TagInt:     {name: "integer", size: headerSize + 8},
	TagSymbol:  {name: "symbol", size: headerSize + 8, hasData: true},
	TagString:  {name: "string", size: headerSize + 8, hasData: true},
	TagPair:    {name: "pair", size: headerSize + 16, words: 2},
	TagLambda:  {name: "lambda", size: headerSize + 24, words: 2}, // params, body, env id
	TagBuiltin: {name: "builtin", size: headerSize + 8},
	TagSyntax:  {name: "syntax", size: headerSize + 8},
	TagError:   {name: "error", size: headerSize + 8, hasData: true},
	TagForward: {name: "forward", size: minRecordSize},
}

func (t Tag) String() string {
	if t < numTags {
		return tagInfos[t].name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// HasText reports whether records of this tag own a byte buffer.
func (t Tag) HasText() bool {
	return t < numTags && tagInfos[t].hasData
}

func (r *Region) tag(off uint32) Tag {
	return Tag(r.mem[off])
}

func (r *Region) word(off uint32, i int) uint64 {
	p := off + headerSize + uint32(8*i)
	return binary.LittleEndian.Uint64(r.mem[p : p+8])
}

func (r *Region) setWord(off uint32, i int, v uint64) {
	p := off + headerSize + uint32(8*i)
	binary.LittleEndian.PutUint64(r.mem[p:p+8], v)
}

func (r *Region) dataLen(off uint32) uint32 {
	return binary.LittleEndian.Uint32(r.mem[off+4 : off+8])
}
