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

import "strings"

type symbolEntry struct {
	name string
	atom Atom
}

// Symbol interns name: the record and its text live in uncollected space, so
// two calls with the same name return the same handle, across collections.
func (h *Heap) Symbol(name string) Atom {
	if a, ok := h.symbols.Lookup(name); ok {
		return a
	}
	a, data, _ := h.allocFromSpace(h.uncollected, TagSymbol, len(name))
	copy(data, name)
	h.symbols.Set(name, a)
	h.symbolIndex.ReplaceOrInsert(symbolEntry{name, a})
	return a
}

// LookupSymbol returns the interned symbol without creating it.
func (h *Heap) LookupSymbol(name string) (Atom, bool) {
	return h.symbols.Lookup(name)
}

// SymbolCount is the number of interned symbols.
func (h *Heap) SymbolCount() int {
	return h.symbols.Len()
}

// SymbolsWithPrefix lists interned symbol names starting with prefix in
// lexical order.
func (h *Heap) SymbolsWithPrefix(prefix string) []string {
	var result []string
	h.symbolIndex.AscendGreaterOrEqual(symbolEntry{name: prefix}, func(e symbolEntry) bool {
		if !strings.HasPrefix(e.name, prefix) {
			return false
		}
		result = append(result, e.name)
		return true
	})
	return result
}
