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

import "time"

// Collect copies everything reachable from roots and envs out of the current
// new space into the other one, rewrites every root slot, and invalidates the
// space it copied from. Records not reachable from the roots are gone
// afterwards, handles to them are stale.
//
// roots are slots the caller owns (argument stack entries, locals); envs are
// environment chains whose bindings and parents are traced. The caller must
// pass everything it still uses: nothing is found by scanning the Go stack.
func (h *Heap) Collect(roots []*Atom, envs []*Env) {
	if h.Trace != nil {
		h.Trace.Duration("collect", "gc", func() { h.collect(roots, envs) })
		return
	}
	h.collect(roots, envs)
}

func (h *Heap) collect(roots []*Atom, envs []*Env) {
	start := time.Now()

	// swap: the previous old space is empty and becomes the copy target
	h.newSpace, h.oldSpace = h.oldSpace, h.newSpace
	h.newSpace.cur = h.newSpace.first
	h.epoch++
	survivors, copied := h.stats.TotalCopied, h.stats.TotalCopiedBytes

	for _, slot := range roots {
		h.forward(slot)
	}
	for _, e := range envs {
		h.traceEnv(e)
	}
	h.scan()

	if h.config.SweepEnvironments {
		h.sweepEnvs()
	}

	for r := h.oldSpace.first; r != nil; r = r.next {
		if err := r.reset(); err != nil {
			h.log.Warning("heap %s: invalidating region %d: %v", h.ID, r.id, err)
		}
	}
	h.oldSpace.cur = h.oldSpace.first

	h.allocated = 0
	h.pending = false
	h.stats.Collections++
	h.stats.LastSurvivors = h.stats.TotalCopied - survivors
	h.stats.LastCopiedBytes = h.stats.TotalCopiedBytes - copied
	h.stats.LastDuration = time.Since(start)
	h.log.Debug("heap %s: collection %d kept %d records (%d bytes) in %v",
		h.ID, h.stats.Collections, h.stats.LastSurvivors, h.stats.LastCopiedBytes, h.stats.LastDuration)
}

// forward makes *slot point into new space: permanent records and records
// already copied stay, forwarding markers are followed, everything else is
// copied and its old location turned into a forwarding marker.
func (h *Heap) forward(slot *Atom) {
	a := *slot
	if a == 0 {
		return
	}
	r, off := h.locate(a)
	switch r.space {
	case h.uncollected, h.newSpace:
		return
	case h.oldSpace:
	default:
		h.fatalf("handle %v lies in no space", a)
	}

	tag := r.tag(off)
	if tag == TagForward {
		*slot = Atom(r.word(off, 0))
		return
	}
	if tag == TagInvalid || tag >= numTags {
		h.fatalf("copying %v: corrupt record with %s", a, tag)
	}

	info := &tagInfos[tag]
	var text []byte
	if info.hasData {
		text = h.data(Atom(r.word(off, 0)), r.dataLen(off))
	}
	na, data, _ := h.allocFromSpace(h.newSpace, tag, len(text))
	nr, noff := h.locate(na)
	if info.hasData {
		// keep the fresh data handle, copy everything behind it
		copy(nr.mem[noff+headerSize+8:noff+info.size], r.mem[off+headerSize+8:off+info.size])
		copy(data, text)
	} else {
		copy(nr.mem[noff:noff+info.size], r.mem[off:off+info.size])
	}

	r.mem[off] = byte(TagForward)
	r.setWord(off, 0, uint64(na))
	*slot = na

	h.stats.TotalCopied++
	h.stats.TotalCopiedBytes += int64(info.size) + int64(align8(len(text)))
}

// scan walks the records copied into new space in allocation order and
// forwards their children (Cheney). Each child edge is visited once, on the
// copy, never on the old record.
func (h *Heap) scan() {
	for r := h.newSpace.first; r != nil; r = r.next {
		for off := uint32(0); off < r.freeOffset; {
			tag := r.tag(off)
			if tag == TagInvalid || tag >= numTags || tag == TagForward {
				h.fatalf("scanning region %d: corrupt record at %x", r.id, off)
			}
			info := &tagInfos[tag]
			for i := 0; i < info.words; i++ {
				child := Atom(r.word(off, i))
				h.forward(&child)
				r.setWord(off, i, uint64(child))
			}
			if tag == TagLambda {
				h.traceEnv(h.envByID(int64(r.word(off, 2))))
			}
			off += info.size
		}
	}
}

// traceEnv forwards every binding of e and its parents once per collection.
func (h *Heap) traceEnv(e *Env) {
	for ; e != nil; e = e.parent {
		if e.epoch == h.epoch {
			return // this env and its parents are done already
		}
		e.epoch = h.epoch
		for _, v := range e.bindings.All() {
			h.forward(v)
		}
	}
}

func (h *Heap) sweepEnvs() {
	var dead []int64
	for id, e := range h.envs.All() {
		if (*e).epoch != h.epoch {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		h.envs.Remove(id)
	}
	if len(dead) > 0 {
		h.log.Debug("heap %s: dropped %d unreachable environments", h.ID, len(dead))
	}
}
