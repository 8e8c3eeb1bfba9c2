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

// primes holds the next prime after each power of two starting at 2^2. It is
// the growth sequence every table capacity is snapped to.
var primes = [...]int{5, 11, 23, 47, 97, 197, 397, 797, 1597, 3203, 6421, 12853, 25717, 51437, 102877, 205759, 411527, 823117, 1646237, 3292489, 6584983}

// MinCapacity is the smallest capacity a table ever has.
const MinCapacity = 5

func isPrime(x int) bool {
	if x < 2 {
		return false
	}
	if x%2 == 0 {
		return x == 2
	}
	for i := 3; ; i += 2 {
		q := x / i
		if q < i {
			return true
		}
		if x%i == 0 {
			return false
		}
	}
}

// SnapToPrime returns the smallest member of the growth sequence that is >= x.
// Beyond the precomputed list it searches the next odd prime.
func SnapToPrime(x int) int {
	for _, p := range primes {
		if p >= x {
			return p
		}
	}
	x |= 1 // there are no even primes
	for !isPrime(x) {
		x += 2
	}
	return x
}

// ShrinkTarget returns the member of the growth sequence below capacity. For
// MinCapacity it returns MinCapacity.
func ShrinkTarget(capacity int) int {
	if capacity <= primes[len(primes)-1] {
		prev := MinCapacity
		for _, p := range primes {
			if p >= capacity {
				break
			}
			prev = p
		}
		return prev
	}
	return SnapToPrime(capacity / 2)
}
