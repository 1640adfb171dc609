// Package assembly turns a resolved template into a concrete layered
// construction and measures it back.
//
// A [Construction] is a set of parallel heat-flow paths. Every path carries
// the air films and the template's fixed layers in series, plus its own
// path-specific members: framing, splines, block, concrete and the solved
// insulation. [Construction.TotalR] combines the paths by area-weighted
// conductance, independently of the closed-form solvers, so comparing it
// with the target is a genuine round-trip check.
package assembly

import (
	"fmt"
	"math"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/material"
	"github.com/matzehuels/rfit/pkg/core/network"
	"github.com/matzehuels/rfit/pkg/errors"
)

// Path is one parallel heat-flow path through the construction.
type Path struct {
	Name     string           `json:"name"`
	Fraction float64          `json:"fraction"`
	Layers   []material.Layer `json:"layers"`
}

// R returns the resistance of the path-specific layers.
func (p Path) R() float64 {
	return material.TotalR(p.Layers)
}

// Construction is a realized template.
type Construction struct {
	Template string           `json:"template"`
	Topology catalog.Topology `json:"topology"`
	Unknown  float64          `json:"unknown"`
	Film     float64          `json:"film"`
	Fixed    []material.Layer `json:"fixed"`
	Paths    []Path           `json:"paths"`
}

// Build lays out the parallel paths of template t with the solved unknown.
func Build(t catalog.Template, unknown, film float64) (*Construction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !(unknown > 0) || math.IsInf(unknown, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "template %q: unknown must be positive, got %g", t.Name, unknown)
	}
	if err := errors.ValidateNonNegative("film resistance", film); err != nil {
		return nil, err
	}

	paths, err := layout(t, unknown)
	if err != nil {
		return nil, err
	}
	return &Construction{
		Template: t.Name,
		Topology: t.Topology,
		Unknown:  unknown,
		Film:     film,
		Fixed:    append([]material.Layer(nil), t.Layers...),
		Paths:    paths,
	}, nil
}

// FixedR returns the resistance of the layers shared by every path,
// excluding films.
func (c *Construction) FixedR() float64 {
	return material.TotalR(c.Fixed)
}

// PathR returns the full resistance of path i including films and fixed layers.
func (c *Construction) PathR(i int) float64 {
	return c.Film + c.FixedR() + c.Paths[i].R()
}

// TotalR returns the whole-assembly resistance including films.
func (c *Construction) TotalR() float64 {
	paths := make([]network.Path, len(c.Paths))
	for i, p := range c.Paths {
		paths[i] = network.Path{Fraction: p.Fraction, R: c.PathR(i)}
	}
	return network.ParallelR(paths)
}

// StackR returns the as-built resistance without films.
func (c *Construction) StackR() float64 {
	return c.TotalR() - c.Film
}

// Layers lists every distinct layer in the construction: the fixed layers
// followed by each path's members, first occurrence wins.
func (c *Construction) Layers() []material.Layer {
	seen := make(map[string]bool)
	var out []material.Layer
	add := func(l material.Layer) {
		key := fmt.Sprintf("%s|%g|%g", l.Name, l.Thickness, l.R)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, l)
	}
	for _, l := range c.Fixed {
		add(l)
	}
	for _, p := range c.Paths {
		for _, l := range p.Layers {
			add(l)
		}
	}
	return out
}

// =============================================================================
// Layout per topology
// =============================================================================

func layout(t catalog.Template, x float64) ([]Path, error) {
	p := t.Params
	f := t.FramingFraction

	switch t.Topology {
	case catalog.Series:
		return []Path{
			{Name: "Assembly", Fraction: 1, Layers: []material.Layer{
				{Name: "Solid Material", R: x},
			}},
		}, nil

	case catalog.ParallelCavity:
		return []Path{
			{Name: "Framing", Fraction: f, Layers: []material.Layer{member("Wood Framing", p.StudDepth, p.FramingR)}},
			{Name: "Cavity", Fraction: 1 - f, Layers: []material.Layer{member("Cavity Insulation", p.StudDepth, x)}},
		}, nil

	case catalog.DeratedCavity:
		return []Path{
			{Name: "Derated Cavity", Fraction: 1, Layers: []material.Layer{
				member("Cavity Insulation (steel derated)", p.StudDepth, p.CorrectionFactor*x),
			}},
		}, nil

	case catalog.TripleParallel:
		b := t.StudFraction()
		stud := member("Wood Framing", p.StudDepth, p.FramingR)
		return []Path{
			{Name: "Studs", Fraction: b, Layers: []material.Layer{
				stud, member("Gap Insulation", p.StudDepth, x), stud,
			}},
			{Name: "Misc Framing", Fraction: f, Layers: []material.Layer{stud, stud, stud}},
			{Name: "Cavity", Fraction: 1 - b - f, Layers: []material.Layer{
				member("Cavity Insulation", 3*p.StudDepth, 3*x),
			}},
		}, nil

	case catalog.PerimeterSpline:
		core := t.CoreThickness()
		spline := member("Spline", p.SplineThickness, p.SplineR)
		return []Path{
			{Name: "Framing", Fraction: f, Layers: []material.Layer{member("Panel Framing", p.PanelThickness, p.FramingR)}},
			{Name: "Splines", Fraction: p.SplineFraction, Layers: []material.Layer{
				spline, member("Core Insulation", core, core/p.PanelThickness*x), spline,
			}},
			{Name: "Panel", Fraction: 1 - f - p.SplineFraction, Layers: []material.Layer{
				member("Core Insulation", p.PanelThickness, x),
			}},
		}, nil

	case catalog.DualLayer:
		rigid := material.Layer{Name: "Rigid Insulation", R: x}
		return []Path{
			{Name: "Framing", Fraction: f, Layers: []material.Layer{rigid, member("Wood Framing", p.StudDepth, p.FramingR)}},
			{Name: "Block", Fraction: 1 - f, Layers: []material.Layer{rigid, member("Concrete Masonry Unit", p.StudDepth, p.BlockR)}},
		}, nil

	case catalog.SingleSideSeries:
		form := member("Form Insulation", p.FormThickness, x)
		return []Path{
			{Name: "Framing", Fraction: f, Layers: []material.Layer{
				member("Wood Framing", 2*p.FormThickness+p.ConcreteThickness, p.FramingR),
			}},
			{Name: "Concrete", Fraction: 1 - f, Layers: []material.Layer{
				form, member("Concrete", p.ConcreteThickness, p.ConcreteR), form,
			}},
		}, nil
	}

	return nil, errors.New(errors.ErrCodeInternal, "template %q: no layout for topology %s", t.Name, t.Topology)
}

func member(name string, thickness, r float64) material.Layer {
	return material.Layer{Name: name, Thickness: thickness, R: r}
}
