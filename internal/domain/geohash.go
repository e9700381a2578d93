package domain

import "strings"

// geohashBase32 is the standard geohash alphabet: 0-9 and b-z excluding
// a, i, l, and o.
const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Encode returns the geohash of a WGS-84 coordinate at the given precision
// (character count). Bits alternate longitude/latitude starting with
// longitude; a value exactly on a bisection midpoint goes to the upper half.
// Pure function: identical inputs always produce identical output.
func Encode(lat, lon float64, precision int) string {
	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0

	var b strings.Builder
	b.Grow(precision)

	evenBit := true // longitude bit next
	idx := 0
	bit := 0

	for b.Len() < precision {
		if evenBit {
			mid := (lonLo + lonHi) / 2
			if lon >= mid {
				idx = idx<<1 | 1
				lonLo = mid
			} else {
				idx <<= 1
				lonHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if lat >= mid {
				idx = idx<<1 | 1
				latLo = mid
			} else {
				idx <<= 1
				latHi = mid
			}
		}
		evenBit = !evenBit

		bit++
		if bit == 5 {
			b.WriteByte(geohashBase32[idx])
			bit = 0
			idx = 0
		}
	}

	return b.String()
}
