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
package table

import "hash/maphash"

const (
	slotFree    = uint64(0)
	slotDeleted = ^uint64(0)
)

// process-wide seed so string hashes are stable across Put/Get
var stringSeed = maphash.MakeSeed()

// HashInt64 is the MurmurHash3 64-bit finalizer with holes punched at the two
// sentinel values. 0 is reported as 1 and ^0 as ^0-1, so a slot's stored hash
// alone tells free, deleted and occupied apart.
func HashInt64(key int64) uint64 {
	h := uint64(key)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33

	if h == slotFree {
		h = 1
	} else if h == slotDeleted {
		h = slotDeleted - 1
	}
	return h
}

// HashString folds the string to 64 bit and runs it through HashInt64.
func HashString(key string) uint64 {
	return HashInt64(int64(maphash.String(stringSeed, key)))
}

func hashKey[K Key](key K) uint64 {
	if k, ok := any(key).(string); ok {
		return HashString(k)
	}
	return HashInt64(any(key).(int64))
}
