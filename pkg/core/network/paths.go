package network

import "math"

// Path is one heat-flow path through an assembly: the fraction of the
// surface area it occupies and its total series resistance.
type Path struct {
	Fraction float64
	R        float64
}

// ParallelR combines paths by area-weighted conductance and returns the
// effective resistance 1 / Σ(fraction/R).
//
// Paths with zero fraction are ignored. A path with zero resistance and a
// non-zero fraction short-circuits the assembly and yields 0.
func ParallelR(paths []Path) float64 {
	var u float64
	for _, p := range paths {
		if p.Fraction == 0 {
			continue
		}
		if p.R <= 0 {
			return 0
		}
		u += p.Fraction / p.R
	}
	if u == 0 {
		return math.Inf(1)
	}
	return 1 / u
}

// SumR adds resistances in series.
func SumR(rs ...float64) float64 {
	var total float64
	for _, r := range rs {
		total += r
	}
	return total
}
