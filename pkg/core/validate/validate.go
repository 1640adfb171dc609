// Package validate checks that a realized assembly reproduces the R-value it
// was resolved for.
//
// The check closes the loop between the closed-form solve and however the
// chosen template is physically built: the as-built stack resistance plus
// the air films and any extra series resistance must land within
// [Tolerance] of the target. A mismatch is always fatal.
package validate

import (
	"math"

	"github.com/matzehuels/rfit/pkg/errors"
)

// Tolerance is the largest accepted |realized − target|, in R-value units.
const Tolerance = 0.01

// Outcome records a passed check.
type Outcome struct {
	Realized float64 `json:"realized"`
	Target   float64 `json:"target"`
	Delta    float64 `json:"delta"`
}

// Validate compares realized + film + extra against target.
//
// realized is the stack resistance of the built construction without films;
// extra covers in-series components that are not ordinary layers, such as
// foundation insulation attached outside the stack. A delta larger than
// Tolerance fails with VALIDATION naming label; the boundary itself passes.
func Validate(realized, film, extra, target float64, label string) (Outcome, error) {
	for _, v := range []struct {
		what string
		v    float64
	}{
		{"realized resistance", realized},
		{"film resistance", film},
		{"extra series resistance", extra},
	} {
		if err := errors.ValidateNonNegative(v.what, v.v); err != nil {
			return Outcome{}, err
		}
	}
	if err := errors.ValidateTarget(label, target); err != nil {
		return Outcome{}, err
	}

	total := realized + film + extra
	out := Outcome{Realized: total, Target: target, Delta: total - target}
	if exceeds(out.Delta) {
		return out, errors.New(errors.ErrCodeValidation,
			"surface %q: realized R-%.4f does not match target R-%.4f (delta %+.4f, tolerance %.2f)",
			label, total, target, out.Delta, Tolerance)
	}
	return out, nil
}

// exceeds compares at 1e-9 resolution so that a delta of exactly one
// tolerance passes whichever way the subtraction rounds.
func exceeds(delta float64) bool {
	return math.Round(math.Abs(delta)*1e9) > Tolerance*1e9
}
