// Package config loads and watches a simulation scenario file.
//
// Top-level types:
//   - Config: samples, seed, model, measurement, products, detailed, lumped,
//     checks, output
//   - Measurement: api, liquid_temp, tov, fw, level_mm, material, product,
//     bsw, bsw_uncertainty
//   - CheckRule: name, condition, severity
//   - Output: plot, plot_quantity, plot_bins, metrics, baseline
//
// Load(path) reads YAML, or TOML when the file ends in .toml, on top of
// Defaults() (the reference crude-oil tank), then validates ranges and enums.
// Params() hands the scenario to the pipelines package.
//
// Watch(ctx, path, debounce, onChange) uses fsnotify on the parent directory
// and reloads once events for the file have been quiet for the debounce
// interval.
package config
