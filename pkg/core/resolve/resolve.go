// Package resolve picks the first template in a catalog that can reach a
// target assembly R-value and solves for its free quantity.
//
// Selection is first-fit: templates are tried in catalog order and the first
// one whose solved unknown is strictly positive wins, regardless of how the
// unknowns of later templates compare. Resolution is pure and deterministic.
//
//	cat, _ := catalog.Build(catalog.WoodStud, catalog.Wall, catalog.Options{})
//	res, err := resolve.Resolve(21.0, catalog.Wall.DefaultFilm(), cat, "Wall North")
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // no template in the family reaches R-21
//	}
//	fmt.Println(res.Template.Name, res.Unknown)
package resolve

import (
	"math"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/network"
	"github.com/matzehuels/rfit/pkg/errors"
)

// Result is the template chosen for a surface and its solved unknown.
// Unknown is always strictly positive.
type Result struct {
	Template catalog.Template `json:"template"`
	Unknown  float64          `json:"unknown"`
	FixedR   float64          `json:"fixed_r"`
	Index    int              `json:"index"`
}

// Candidate is the solve of one template, accepted or not.
type Candidate struct {
	Template catalog.Template `json:"template"`
	Unknown  float64          `json:"unknown"`
	FixedR   float64          `json:"fixed_r"`
	Accepted bool             `json:"accepted"`
}

// Resolve returns the first template in cat whose unknown solves to a
// positive value for target. fixed is film plus the template's layers.
//
// A target or film that is not a finite, usable number fails with
// INVALID_INPUT. When no template is solvable, Resolve fails with
// CONFIGURATION naming label and target.
func Resolve(target, film float64, cat catalog.Catalog, label string) (Result, error) {
	if err := checkInputs(target, film, cat, label); err != nil {
		return Result{}, err
	}

	for i, t := range cat.Templates {
		fixed := film + t.LayersR()
		if x := Solve(t, target, fixed); accepted(x) {
			return Result{Template: t, Unknown: x, FixedR: fixed, Index: i}, nil
		}
	}

	return Result{}, errors.New(errors.ErrCodeConfiguration,
		"surface %q: no %s template reaches R-%.2f", label, familyName(cat), target)
}

// Candidates solves every template in cat for target, in catalog order.
// Unlike Resolve it does not stop at the first accepted template.
func Candidates(target, film float64, cat catalog.Catalog) ([]Candidate, error) {
	if err := checkInputs(target, film, cat, "candidates"); err != nil {
		return nil, err
	}

	out := make([]Candidate, len(cat.Templates))
	for i, t := range cat.Templates {
		fixed := film + t.LayersR()
		x := Solve(t, target, fixed)
		out[i] = Candidate{Template: t, Unknown: x, FixedR: fixed, Accepted: accepted(x)}
	}
	return out, nil
}

// Solve computes the unknown of template t for the given target and fixed
// resistance. The result may be negative or NaN; callers treat anything not
// strictly positive as infeasible.
func Solve(t catalog.Template, target, fixed float64) float64 {
	p := t.Params
	switch t.Topology {
	case catalog.Series:
		return network.Series(target, fixed)
	case catalog.ParallelCavity:
		return network.ParallelCavity(target, fixed, t.FramingFraction, p.FramingR)
	case catalog.DeratedCavity:
		return network.DeratedCavity(target, fixed, p.CorrectionFactor)
	case catalog.TripleParallel:
		return network.TripleParallel(target, fixed, t.StudFraction(), t.FramingFraction, p.FramingR)
	case catalog.PerimeterSpline:
		return network.PerimeterSpline(target, fixed, t.Spline())
	case catalog.DualLayer:
		return network.DualLayer(target, fixed, t.FramingFraction, p.FramingR, p.BlockR)
	case catalog.SingleSideSeries:
		return network.SingleSideSeries(target, fixed, t.FramingFraction, p.FramingR, p.ConcreteR)
	}
	return math.NaN()
}

// Predict is the inverse of Solve: the assembly R-value that template t
// reaches with the given unknown.
func Predict(t catalog.Template, unknown, fixed float64) float64 {
	p := t.Params
	switch t.Topology {
	case catalog.Series:
		return network.SeriesR(unknown, fixed)
	case catalog.ParallelCavity:
		return network.ParallelCavityR(unknown, fixed, t.FramingFraction, p.FramingR)
	case catalog.DeratedCavity:
		return network.DeratedCavityR(unknown, fixed, p.CorrectionFactor)
	case catalog.TripleParallel:
		return network.TripleParallelR(unknown, fixed, t.StudFraction(), t.FramingFraction, p.FramingR)
	case catalog.PerimeterSpline:
		return network.PerimeterSplineR(unknown, fixed, t.Spline())
	case catalog.DualLayer:
		return network.DualLayerR(unknown, fixed, t.FramingFraction, p.FramingR, p.BlockR)
	case catalog.SingleSideSeries:
		return network.SingleSideSeriesR(unknown, fixed, t.FramingFraction, p.FramingR, p.ConcreteR)
	}
	return math.NaN()
}

func accepted(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

func checkInputs(target, film float64, cat catalog.Catalog, label string) error {
	if err := errors.ValidateTarget(label, target); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("film resistance", film); err != nil {
		return err
	}
	if cat.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidTemplate, "surface %q: catalog has no templates", label)
	}
	return nil
}

func familyName(cat catalog.Catalog) string {
	if cat.Family == "" {
		return "catalog"
	}
	return string(cat.Family)
}
