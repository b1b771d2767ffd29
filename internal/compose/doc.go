// Package compose combines the simulated leaf quantities of a tank
// measurement into gross and net standard volume.
//
// compose.go provides the pure Compose(Inputs) function:
//
//	GSV[i] = (TOV[i] − FW[i]) · CTSh[i] · CTL[i]
//	NSV[i] = GSV[i] · CSW[i]
//
// Index i is one simulation trial across every array, so all inputs must be
// the same length; a mismatch is errdefs.ErrValidationFailed and is detected
// before any arithmetic. CSW is a Factor: a constant, or its own sample array
// when BS&W is simulated. An unset Factor is rejected the same way as a
// length mismatch.
//
// Both composites are reduced independently with stats.Reduce.
package compose
