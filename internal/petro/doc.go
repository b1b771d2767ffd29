// Package petro holds the deterministic petroleum-measurement formulas that
// produce the nominal values of the simulation, the material and product
// reference tables, and the named unit conversions used to build uncertainty
// budgets.
//
// Formulas (temperatures in °F, Tref = 60 °F):
//
//	density(API)     = 141.5/(API+131.5) · 999.016          kg/m³
//	CTSh(α, Tl)      = 1 + 2αΔT + α²ΔT²                      ΔT = Tl − Tref
//	B(K0,K1,K2,ρ)    = K0/ρ² + K1/ρ + K2
//	CTL(B, Tl)       = exp(−B·Δt·(1 + 0.8·B·(Δt + 0.01374979547)))
//	CSW(bsw)         = 1 − bsw/100
//
// Lookups are case-insensitive and never fall back to a default entry: an
// unknown key is errdefs.ErrNotFound.
package petro
