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
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// Stats describes the heap's regions and collection history.
type Stats struct {
	UncollectedRegions int
	NewRegions         int
	OldRegions         int
	MappedBytes        int64 // every region ever mapped and not released
	NewBytesUsed       int64 // records plus data in new space
	AllocatedSince     int64 // bytes allocated since the last collection
	Symbols            int
	Environments       int

	Collections      int
	LastSurvivors    int
	LastCopiedBytes  int64
	LastDuration     time.Duration
	TotalCopied      int
	TotalCopiedBytes int64
}

// Stats returns a snapshot.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.UncollectedRegions = len(h.uncollected.Regions())
	s.NewRegions = len(h.newSpace.Regions())
	s.OldRegions = len(h.oldSpace.Regions())
	s.NewBytesUsed = 0
	for r := h.newSpace.first; r != nil; r = r.next {
		s.NewBytesUsed += int64(r.usedBytes())
	}
	s.AllocatedSince = h.allocated
	s.Symbols = h.symbols.Len()
	s.Environments = h.envs.Len()
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("regions %d/%d/%d (uncollected/new/old), mapped %s, new space used %s, allocated since last collection %s, %d symbols, %d environments, %d collections (last kept %d records, %s, in %v)",
		s.UncollectedRegions, s.NewRegions, s.OldRegions,
		units.BytesSize(float64(s.MappedBytes)),
		units.BytesSize(float64(s.NewBytesUsed)),
		units.BytesSize(float64(s.AllocatedSince)),
		s.Symbols, s.Environments,
		s.Collections, s.LastSurvivors, units.BytesSize(float64(s.LastCopiedBytes)), s.LastDuration)
}
