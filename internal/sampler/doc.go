// Package sampler draws independent random samples from a declared error
// distribution.
//
// A Distribution is {Kind, Center, Spread}. For Normal the spread is the
// standard deviation; for Uniform it is the half-width of the interval
// [Center-Spread, Center+Spread]. A zero spread is a delta distribution and
// Draw returns a constant array without touching the random source.
//
// Randomness is always passed in. NewRand(seed, stream) builds a PCG-backed
// *rand.Rand so independent pipelines can run on separate, reproducible
// streams derived from one run seed.
package sampler
