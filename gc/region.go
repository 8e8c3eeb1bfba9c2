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

import "encoding/binary"

// Region is one mapped block. Records are bump allocated upward from offset 0,
// data buffers downward from the end; the gap between them is freeBytes.
type Region struct {
	id         uint32
	mem        []byte
	freeOffset uint32 // next record slot
	freeBytes  uint32 // room left between freeOffset and the data area
	next       *Region
	space      *Space
}

func (r *Region) ID() uint32        { return r.id }
func (r *Region) Size() int         { return len(r.mem) }
func (r *Region) FreeBytes() int    { return int(r.freeBytes) }
func (r *Region) usedBytes() int    { return len(r.mem) - int(r.freeBytes) }
func (r *Region) dataStart() uint32 { return r.freeOffset + r.freeBytes }

// reset forgets the region's content and hands the pages back to the OS.
func (r *Region) reset() error {
	r.freeOffset = 0
	r.freeBytes = uint32(len(r.mem))
	return invalidateMemory(r.mem)
}

// Space is a chain of regions. cur is the region allocations go to; regions
// after cur are empty (recycled from a former old space).
type Space struct {
	name  string
	first *Region
	last  *Region
	cur   *Region
}

func (s *Space) Name() string { return s.name }

// Regions returns the chain in allocation order.
func (s *Space) Regions() []*Region {
	var result []*Region
	for r := s.first; r != nil; r = r.next {
		result = append(result, r)
	}
	return result
}

// insert links r after the current region and makes it current.
func (s *Space) insert(r *Region) {
	if s.cur == nil || s.cur == s.last {
		s.append(r)
		return
	}
	r.space = s
	r.next = s.cur.next
	s.cur.next = r
	s.cur = r
}

func (s *Space) append(r *Region) {
	r.space = s
	if s.last == nil {
		s.first = r
	} else {
		s.last.next = r
	}
	s.last = r
	s.cur = r
}

// mapRegion obtains a region of at least size bytes and registers its id.
func (h *Heap) mapRegion(size int) *Region {
	size = roundUp(size, Granularity)
	if size > maxRegionSize {
		h.fatalf("region of %d bytes exceeds the addressable %d", size, maxRegionSize)
	}
	mem, err := mapMemory(size)
	if err != nil {
		h.fatalf("mapping region of %d bytes: %v", size, err)
	}
	r := &Region{
		mem:       mem,
		freeBytes: uint32(len(mem)),
	}
	h.regions = append(h.regions, r)
	r.id = uint32(len(h.regions))
	h.stats.MappedBytes += int64(len(mem))
	return r
}

// GrowSpace makes a region with at least minFree bytes the allocation target
// of s. The next recycled region in the chain is preferred, otherwise a new
// standard sized region is mapped (larger if minFree needs it). A new region is
// linked in right after the current one so recycled regions stay ahead of the
// cursor.
func (h *Heap) GrowSpace(s *Space, minFree int) *Region {
	if s.cur != nil && s.cur.next != nil && int(s.cur.next.freeBytes) >= minFree {
		s.cur = s.cur.next
		return s.cur
	}
	size := h.config.RegionSize
	if minFree > size {
		size = minFree
	}
	r := h.mapRegion(size)
	s.insert(r)
	h.log.Debug("heap %s: %s space grew by region %d (%d bytes)", h.ID, s.name, r.id, len(r.mem))
	return r
}

// allocFromSpace bumps a record (and, for text tags, a data buffer of
// dataSize bytes) out of the space's current region. grew reports whether the
// space had to move on to another region.
func (h *Heap) allocFromSpace(s *Space, tag Tag, dataSize int) (a Atom, data []byte, grew bool) {
	info := &tagInfos[tag]
	if info.size == 0 || tag == TagForward {
		h.fatalf("cannot allocate a %s record", tag)
	}
	if dataSize != 0 && !info.hasData {
		h.fatalf("%s records carry no data, %d bytes requested", tag, dataSize)
	}
	padded := align8(dataSize)
	need := int(info.size) + padded
	r := s.cur
	if r == nil || int(r.freeBytes) < need {
		grew = r != nil // the very first region of a space is no growth
		r = h.GrowSpace(s, need)
	}

	off := r.freeOffset
	rec := r.mem[off : off+info.size]
	clear(rec)
	rec[0] = byte(tag)
	r.freeOffset += info.size
	r.freeBytes -= info.size

	if info.hasData {
		doff := r.dataStart() - uint32(padded)
		r.freeBytes -= uint32(padded)
		data = r.mem[doff : doff+uint32(dataSize) : doff+uint32(dataSize)]
		binary.LittleEndian.PutUint32(rec[4:8], uint32(dataSize))
		binary.LittleEndian.PutUint64(rec[headerSize:headerSize+8], uint64(makeAtom(r.id, doff)))
	}
	return makeAtom(r.id, off), data, grew
}
