// Package checks evaluates scenario acceptance rules against the reduced
// statistics of a run.
//
// A rule condition has the form "<quantity>.<field> <op> <value>":
//
//	nsv.relative_expanded > 0.5
//	nsv.coverage_factor >= 2.2
//	ctl.stddev > 0.0002
//	tov.p97_5 > 440
//
// Quantities are tov, fw, ctsh, ctl, csw, gsv and nsv. Fields are mean,
// stddev, expanded, coverage_factor, p2_5, p97_5 and relative_expanded.
// Operators are >, >=, <, <=, == and !=.
//
// New parses every rule up front so a malformed condition is rejected before
// any simulation runs. Evaluate returns one Finding per rule; Critical reports
// whether any critical rule fired.
package checks
