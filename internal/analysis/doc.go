// Package analysis provides spectral analysis of probe time series.
//
// A toy atmosphere started from a balanced-looking state still rings: the
// probe pressure oscillates as gravity-wave-like disturbances cross the grid.
// [DominantPeak] reports the strongest of those oscillations:
//
//	pk, ok := analysis.DominantPeak(analysis.Values(h.Pressure), dt)
//	if ok {
//	    fmt.Printf("period %.0fs\n", pk.Period)
//	}
package analysis
