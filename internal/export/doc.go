// Package export writes the result of a run as a Prometheus textfile and
// reads such a file back as a baseline.
//
// Write registers gauges in a private registry and writes them atomically
// with prometheus.WriteToTextfile, so the file can be picked up by the node
// exporter's textfile collector:
//
//	nsvmc_quantity{quantity, stat}   reduced statistics per simulated quantity
//	nsvmc_nominal{factor}            deterministic correction factors
//	nsvmc_check_fired{rule, severity}
//	nsvmc_run_info{run_id, model}    always 1
//	nsvmc_samples
//	nsvmc_run_timestamp_seconds
//
// Read parses a textfile with expfmt into a Snapshot, and Compare reports the
// relative drift of one quantity between a baseline and the current run.
package export
