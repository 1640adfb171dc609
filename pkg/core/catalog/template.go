package catalog

import (
	"math"

	"github.com/matzehuels/rfit/pkg/core/material"
	"github.com/matzehuels/rfit/pkg/core/network"
	"github.com/matzehuels/rfit/pkg/errors"
)

// Template is a construction with exactly one free quantity, named by
// Topology.Unknown. Everything else about the construction is fixed.
type Template struct {
	Name            string           `json:"name" toml:"name" yaml:"name"`
	Topology        Topology         `json:"topology" toml:"topology" yaml:"topology"`
	FramingFraction float64          `json:"framing_fraction" toml:"framing_fraction" yaml:"framing_fraction"`
	Layers          []material.Layer `json:"layers,omitempty" toml:"layers,omitempty" yaml:"layers,omitempty"`
	Params          Params           `json:"params" toml:"params" yaml:"params"`
}

// Params holds the topology-specific values of a template. Fields a
// topology does not use stay zero.
//
// For TripleParallel, FramingFraction on the template is the misc framing
// fraction; the stud fraction comes from StudWidth/StudSpacing.
type Params struct {
	// FramingR is the resistance of the framing path: one stud depth for
	// wood and double-stud walls, the full panel for SIPs, wood through the
	// block for CMU, and wood through both forms and the concrete for ICF.
	FramingR float64 `json:"framing_r,omitempty" toml:"framing_r,omitempty" yaml:"framing_r,omitempty"`

	// StudDepth is the depth of the framing path in inches: the stud for
	// framed walls, the block for CMU.
	StudDepth float64 `json:"stud_depth,omitempty" toml:"stud_depth,omitempty" yaml:"stud_depth,omitempty"`

	// CorrectionFactor derates steel-framed cavities, in (0, 1].
	CorrectionFactor float64 `json:"correction_factor,omitempty" toml:"correction_factor,omitempty" yaml:"correction_factor,omitempty"`

	// Double stud geometry.
	StudSpacing float64 `json:"stud_spacing,omitempty" toml:"stud_spacing,omitempty" yaml:"stud_spacing,omitempty"`
	StudWidth   float64 `json:"stud_width,omitempty" toml:"stud_width,omitempty" yaml:"stud_width,omitempty"`

	// SIP geometry.
	PanelThickness  float64 `json:"panel_thickness,omitempty" toml:"panel_thickness,omitempty" yaml:"panel_thickness,omitempty"`
	SplineThickness float64 `json:"spline_thickness,omitempty" toml:"spline_thickness,omitempty" yaml:"spline_thickness,omitempty"`
	SplineFraction  float64 `json:"spline_fraction,omitempty" toml:"spline_fraction,omitempty" yaml:"spline_fraction,omitempty"`
	SplineR         float64 `json:"spline_r,omitempty" toml:"spline_r,omitempty" yaml:"spline_r,omitempty"`

	// BlockR is the resistance of a concrete masonry unit.
	BlockR float64 `json:"block_r,omitempty" toml:"block_r,omitempty" yaml:"block_r,omitempty"`

	// Insulated concrete form geometry.
	ConcreteR         float64 `json:"concrete_r,omitempty" toml:"concrete_r,omitempty" yaml:"concrete_r,omitempty"`
	ConcreteThickness float64 `json:"concrete_thickness,omitempty" toml:"concrete_thickness,omitempty" yaml:"concrete_thickness,omitempty"`
	FormThickness     float64 `json:"form_thickness,omitempty" toml:"form_thickness,omitempty" yaml:"form_thickness,omitempty"`
}

// LayersR returns the summed resistance of the template's fixed layers.
func (t Template) LayersR() float64 {
	return material.TotalR(t.Layers)
}

// StudFraction returns the stud path fraction of a double-stud template.
func (t Template) StudFraction() float64 {
	if t.Params.StudSpacing <= 0 {
		return 0
	}
	return t.Params.StudWidth / t.Params.StudSpacing
}

// CoreThickness returns the SIP core thickness between the two splines.
func (t Template) CoreThickness() float64 {
	return t.Params.PanelThickness - 2*t.Params.SplineThickness
}

// Spline returns the network parameters of a SIP template.
func (t Template) Spline() network.SplineParams {
	return network.SplineParams{
		FramingFraction: t.FramingFraction,
		FramingR:        t.Params.FramingR,
		SplineFraction:  t.Params.SplineFraction,
		SplineR:         t.Params.SplineR,
		CoreThickness:   t.CoreThickness(),
		PanelThickness:  t.Params.PanelThickness,
	}
}

// Validate checks that the template can be solved without dividing by zero.
// Catalogs call it eagerly so that solve-time failures only ever mean an
// infeasible target.
func (t Template) Validate() error {
	if t.Name == "" {
		return errors.New(errors.ErrCodeInvalidTemplate, "template name is required")
	}
	if !t.Topology.Valid() {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %q: unknown topology %d", t.Name, int(t.Topology))
	}
	if !inUnitInterval(t.FramingFraction) {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %q: framing fraction %g outside [0, 1)", t.Name, t.FramingFraction)
	}
	for _, l := range t.Layers {
		if err := l.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template %q", t.Name)
		}
	}

	p := t.Params
	switch t.Topology {
	case Series:
		return nil

	case ParallelCavity:
		return t.requirePositive("framing resistance", p.FramingR)

	case DeratedCavity:
		if !(p.CorrectionFactor > 0 && p.CorrectionFactor <= 1) {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q: correction factor %g outside (0, 1]", t.Name, p.CorrectionFactor)
		}
		return nil

	case TripleParallel:
		if err := t.requirePositive("framing resistance", p.FramingR); err != nil {
			return err
		}
		if err := t.requirePositive("stud width", p.StudWidth); err != nil {
			return err
		}
		if !(p.StudSpacing > p.StudWidth) {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q: stud spacing %g must exceed stud width %g", t.Name, p.StudSpacing, p.StudWidth)
		}
		if t.StudFraction()+t.FramingFraction >= 1 {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q: stud and misc framing fractions leave no cavity", t.Name)
		}
		return nil

	case PerimeterSpline:
		if err := t.requirePositive("framing resistance", p.FramingR); err != nil {
			return err
		}
		if err := t.requirePositive("panel thickness", p.PanelThickness); err != nil {
			return err
		}
		if p.SplineThickness < 0 || p.SplineR < 0 || p.SplineFraction < 0 {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q: spline values must be non-negative", t.Name)
		}
		if !(t.CoreThickness() > 0) {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q: panel %g in too thin for %g in splines", t.Name, p.PanelThickness, p.SplineThickness)
		}
		if p.SplineFraction+t.FramingFraction >= 1 {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %q: spline and framing fractions leave no core", t.Name)
		}
		return nil

	case DualLayer:
		if err := t.requirePositive("framing resistance", p.FramingR); err != nil {
			return err
		}
		return t.requirePositive("block resistance", p.BlockR)

	case SingleSideSeries:
		if err := t.requirePositive("framing resistance", p.FramingR); err != nil {
			return err
		}
		return t.requirePositive("concrete resistance", p.ConcreteR)
	}

	return errors.New(errors.ErrCodeInvalidTemplate, "template %q: unhandled topology %s", t.Name, t.Topology)
}

func (t Template) requirePositive(what string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %q: %s must be positive, got %g", t.Name, what, v)
	}
	return nil
}

func inUnitInterval(f float64) bool {
	return f >= 0 && f < 1
}
