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
	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/launix-de/go-mysqlstack/xlog"
	"github.com/launix-de/lvm/table"
)

// Heap is the interpreter context of the memory subsystem: the three spaces,
// the permanent singletons, the symbol table and the environment registry.
// A Heap is not safe for concurrent use; several heaps may coexist.
type Heap struct {
	ID     uuid.UUID
	Trace  *Tracefile // nil = no tracing
	config Config
	log    *xlog.Log

	regions     []*Region // by id-1, nil once released
	uncollected *Space
	newSpace    *Space
	oldSpace    *Space

	nilAtom, trueAtom, falseAtom Atom

	symbols     *table.Table[string, Atom]
	symbolIndex *btree.BTreeG[symbolEntry]

	envs      *table.Table[int64, *Env]
	nextEnvID int64

	natives   []any
	nativeIDs map[any]uint64

	allocated int64 // bytes since the last collection
	pending   bool
	epoch     uint64
	stats     Stats
}

// NewHeap maps the first uncollected region and creates the nil, true and
// false singletons in it.
func NewHeap(config Config) (*Heap, error) {
	config, err := config.normalize()
	if err != nil {
		return nil, err
	}
	h := &Heap{
		ID:          uuid.New(),
		config:      config,
		log:         config.Log,
		uncollected: &Space{name: "uncollected"},
		newSpace:    &Space{name: "new"},
		oldSpace:    &Space{name: "old"},
		symbols:     table.New[string, Atom](table.MinCapacity),
		symbolIndex: btree.NewG[symbolEntry](8, func(a, b symbolEntry) bool { return a.name < b.name }),
		envs:        table.New[int64, *Env](table.MinCapacity),
		nativeIDs:   make(map[any]uint64),
	}
	h.GrowSpace(h.uncollected, 0)
	h.nilAtom, _, _ = h.allocFromSpace(h.uncollected, TagNil, 0)
	h.trueAtom, _, _ = h.allocFromSpace(h.uncollected, TagTrue, 0)
	h.falseAtom, _, _ = h.allocFromSpace(h.uncollected, TagFalse, 0)
	h.log.Info("heap %s: created, region size %d", h.ID, config.RegionSize)
	return h, nil
}

// Release unmaps every region. The heap and all its handles are unusable
// afterwards. Calling Release twice is harmless.
func (h *Heap) Release() {
	for i, r := range h.regions {
		if r == nil {
			continue
		}
		if err := unmapMemory(r.mem); err != nil {
			h.log.Warning("heap %s: unmapping region %d: %v", h.ID, r.id, err)
		}
		r.mem = nil
		h.regions[i] = nil
	}
	h.stats.MappedBytes = 0
	for _, s := range []*Space{h.uncollected, h.newSpace, h.oldSpace} {
		s.first, s.last, s.cur = nil, nil, nil
	}
	if h.Trace != nil {
		h.Trace.Close()
		h.Trace = nil
	}
}

func (h *Heap) Config() Config { return h.config }
func (h *Heap) Log() *xlog.Log { return h.log }

// SetCollectAfter changes the allocation threshold for requesting a
// collection, 0 disables it.
func (h *Heap) SetCollectAfter(n int64) {
	if n < 0 {
		n = 0
	}
	h.config.CollectAfter = n
}

func (h *Heap) Uncollected() *Space { return h.uncollected }
func (h *Heap) NewSpace() *Space    { return h.newSpace }
func (h *Heap) OldSpace() *Space    { return h.oldSpace }

// CollectionPending reports whether an allocation asked for a collection at
// the next safepoint.
func (h *Heap) CollectionPending() bool { return h.pending }

// RequestCollection sets the pending flag without allocating.
func (h *Heap) RequestCollection() { h.pending = true }

// locate resolves a handle. Handles into released or unknown regions are fatal.
func (h *Heap) locate(a Atom) (*Region, uint32) {
	id := a.region()
	if id == 0 || int(id) > len(h.regions) || h.regions[id-1] == nil {
		h.fatalf("handle %v names no region", a)
	}
	r := h.regions[id-1]
	off := a.offset()
	if off >= r.freeOffset {
		h.fatalf("handle %v points past the records of region %d", a, id)
	}
	return r, off
}

// Alloc creates a record of the given tag in new space. For symbol, string and
// error records it also reserves dataSize bytes of text and returns them;
// otherwise data is nil. The payload is zeroed.
func (h *Heap) Alloc(tag Tag, dataSize int) (Atom, []byte) {
	a, data, grew := h.allocFromSpace(h.newSpace, tag, dataSize)
	h.allocated += int64(tagInfos[tag].size) + int64(align8(dataSize))
	if grew || (h.config.CollectAfter > 0 && h.allocated >= h.config.CollectAfter) {
		h.pending = true
	}
	return a, data
}
