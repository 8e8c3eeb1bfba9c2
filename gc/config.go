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

	"github.com/launix-de/go-mysqlstack/xlog"
)

const (
	// DefaultRegionSize is the size of a standard region.
	DefaultRegionSize = 16 * 1024 * 1024
	// Granularity is the unit regions are rounded up to.
	Granularity = 64 * 1024
	// maxRegionSize keeps every offset inside a region addressable by 32 bit.
	maxRegionSize = 1 << 31
)

// Config tunes a Heap. The zero value is not usable, start from DefaultConfig.
type Config struct {
	RegionSize        int   // bytes mapped per standard region
	CollectAfter      int64 // request a collection after this many allocated bytes, 0 = only on region growth
	SweepEnvironments bool  // drop environments a collection did not reach
	Log               *xlog.Log
}

func DefaultConfig() Config {
	return Config{
		RegionSize:        DefaultRegionSize,
		CollectAfter:      0,
		SweepEnvironments: true,
	}
}

func (c Config) normalize() (Config, error) {
	if c.RegionSize <= 0 {
		c.RegionSize = DefaultRegionSize
	}
	c.RegionSize = roundUp(c.RegionSize, Granularity)
	if c.RegionSize > maxRegionSize {
		return c, fmt.Errorf("region size %d exceeds %d", c.RegionSize, maxRegionSize)
	}
	if c.CollectAfter < 0 {
		return c, fmt.Errorf("negative collection threshold %d", c.CollectAfter)
	}
	if c.Log == nil {
		c.Log = xlog.NewStdLog(xlog.Level(xlog.ERROR))
	}
	return c, nil
}

func roundUp(n, unit int) int {
	return (n + unit - 1) / unit * unit
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// FatalError is raised (as a panic value) when the heap cannot continue:
// address space exhaustion, a stale or foreign handle, a broken invariant.
// It must not be recovered and ignored.
type FatalError struct {
	Msg string
}

func (e FatalError) Error() string { return "gc: fatal: " + e.Msg }

func (h *Heap) fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	h.log.Error("heap %s: %s", h.ID, msg)
	panic(FatalError{msg})
}
