// Package model runs one complete simulation of a tank measurement.
//
// Run(ctx, cfg) computes the nominal correction factors, builds every leaf
// budget, propagates the leaves in parallel and composes GSV and NSV. Each
// leaf draws from its own random stream, numbered by its position in
// pipelines.Set.Leaves, so a seed reproduces a run bit for bit no matter how
// the goroutines are scheduled.
//
// SimulateQuantity(ctx, cfg, q) propagates a single leaf on the same stream
// it would use inside a full run.
package model
