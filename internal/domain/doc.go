// Package domain models the coatcheck comment board and weather advice logic.
//
// # Proximity Model
//
// Comments are tagged with a geohash at a fixed precision of 6 characters
// (roughly a 1.2 km × 0.6 km cell at the equator). "Nearby" means "falls in
// the same geohash cell": the store queries a secondary index for an exact
// geohash match, never a prefix or radius scan. Two comments just across a
// cell boundary are invisible to each other even when physically close. This
// is a deliberate simplification; keep the write-path and read-path precision
// identical or existing records become unreachable.
//
// # Geohash Encoding
//
// Standard interleaved-bit geohash: the longitude and latitude ranges are
// bisected alternately (longitude first), each bisection contributing one
// bit, five bits per output character in the base-32 alphabet
// "0123456789bcdefghjkmnpqrstuvwxyz". A coordinate exactly on a bisection
// boundary resolves to the upper half. See [Encode].
//
// # Votes
//
// ThumbsUp and ThumbsDown are monotonic counters. Every rate request is an
// unconditional +1 for one of the two kinds; there is no un-vote and no
// per-voter deduplication. The increment must be a single atomic add at the
// storage layer so concurrent votes never lose updates.
//
// # Coat Advice
//
// The coat rule follows the frontend's expectation: wear a coat when the
// feels-like temperature is below 15 °C. See [ShouldWearCoat].
package domain
