package catalog

import (
	"fmt"
	"math"

	"github.com/matzehuels/rfit/pkg/core/material"
	"github.com/matzehuels/rfit/pkg/errors"
)

// Default option values.
const (
	DefaultInteriorFinish   = 0.5  // gypsum thickness, inches
	DefaultExteriorFinishR  = 0.6  // siding or stucco
	DefaultCorrectionFactor = 0.45 // steel framing, 16 in o.c.
	DefaultStudSpacing      = 24.0 // double stud walls, inches o.c.
)

// Stock dimensions shared by the builders.
const (
	sheathingThickness = 0.5
	deckThickness      = 0.75
	splineThickness    = 0.5
	splineFraction     = 4.0 / 48.0
	roofingR           = 0.15
)

// Options customizes the stock catalogs. Zero values select the defaults.
type Options struct {
	// InteriorFinishThickness is the gypsum board thickness in inches.
	InteriorFinishThickness float64 `json:"interior_finish_in,omitempty" toml:"interior_finish_in,omitempty" yaml:"interior_finish_in,omitempty"`
	// ExteriorFinishR is the resistance of the exterior finish layer.
	ExteriorFinishR float64 `json:"exterior_finish_r,omitempty" toml:"exterior_finish_r,omitempty" yaml:"exterior_finish_r,omitempty"`
	// CorrectionFactor derates steel stud cavities.
	CorrectionFactor float64 `json:"correction_factor,omitempty" toml:"correction_factor,omitempty" yaml:"correction_factor,omitempty"`
	// StudSpacing is the on-center spacing of double stud walls in inches.
	StudSpacing float64 `json:"stud_spacing,omitempty" toml:"stud_spacing,omitempty" yaml:"stud_spacing,omitempty"`
}

// WithDefaults returns a copy of o with zero fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.InteriorFinishThickness == 0 {
		o.InteriorFinishThickness = DefaultInteriorFinish
	}
	if o.ExteriorFinishR == 0 {
		o.ExteriorFinishR = DefaultExteriorFinishR
	}
	if o.CorrectionFactor == 0 {
		o.CorrectionFactor = DefaultCorrectionFactor
	}
	if o.StudSpacing == 0 {
		o.StudSpacing = DefaultStudSpacing
	}
	return o
}

// Validate checks option ranges after defaults are applied.
func (o Options) Validate() error {
	if err := errors.ValidateNonNegative("interior finish thickness", o.InteriorFinishThickness); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("exterior finish resistance", o.ExteriorFinishR); err != nil {
		return err
	}
	if math.IsNaN(o.CorrectionFactor) || o.CorrectionFactor <= 0 || o.CorrectionFactor > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "correction factor %g outside (0, 1]", o.CorrectionFactor)
	}
	if math.IsNaN(o.StudSpacing) || o.StudSpacing <= material.StudWidth {
		return errors.New(errors.ErrCodeInvalidInput, "stud spacing %g must exceed the %g in stud width", o.StudSpacing, material.StudWidth)
	}
	return nil
}

// Build returns the stock catalog for a family and surface kind.
//
// Surface kind selects a preset for wood framing (rafters for roofs, joists
// for ceilings and floors, deep framing for rim joists). Other families use
// the same templates on every kind; the kind only changes the default film.
func Build(family Family, kind Kind, opts Options) (Catalog, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Catalog{}, err
	}

	b := builder{opts: opts}
	var templates []Template
	switch family {
	case WoodStud:
		templates = b.wood(kind)
	case SteelStud:
		templates = b.steel()
	case DoubleStud:
		templates = b.doubleStud()
	case CMU:
		templates = b.cmu()
	case SIP:
		templates = b.sip()
	case ICF:
		templates = b.icf()
	case Generic:
		templates = b.generic()
	default:
		return Catalog{}, errors.New(errors.ErrCodeInvalidFamily, "unknown construction family %q", family)
	}
	return New(family, kind, templates...)
}

// =============================================================================
// Builders
// =============================================================================

type builder struct {
	opts Options
}

func (b builder) exterior() material.Layer {
	return material.Layer{Name: "Exterior Finish", R: b.opts.ExteriorFinishR}
}

func (b builder) interior() material.Layer {
	return material.Gypsum(b.opts.InteriorFinishThickness)
}

func sheathing() material.Layer {
	return material.OSB(sheathingThickness)
}

func woodCavity(name string, depth, ff float64, layers ...material.Layer) Template {
	return Template{
		Name:            name,
		Topology:        ParallelCavity,
		FramingFraction: ff,
		Layers:          layers,
		Params: Params{
			FramingR:  material.Stud2x(depth).R,
			StudDepth: depth,
		},
	}
}

// woodFallback is a 2x2 at 1% framing with no fixed layers.
func woodFallback(member string) Template {
	return woodCavity("2x2 "+member+" (fallback)", material.Depth2x2, FallbackFraction)
}

func (b builder) wood(kind Kind) []Template {
	switch kind {
	case Roof:
		roofing := material.Layer{Name: "Roofing", R: roofingR}
		deck := material.Plywood(deckThickness)
		gyp := b.interior()
		return []Template{
			woodCavity("2x8 Rafters", material.Depth2x8, 0.07, roofing, deck, gyp),
			woodCavity("2x6 Rafters", material.Depth2x6, 0.07, roofing, deck, gyp),
			woodCavity("2x4 Rafters", material.Depth2x4, 0.07, roofing, deck, gyp),
			woodFallback("Rafters"),
		}

	case Ceiling:
		gyp := b.interior()
		return []Template{
			woodCavity("2x6 Ceiling Joists", material.Depth2x6, 0.11, gyp),
			woodCavity("2x4 Ceiling Joists", material.Depth2x4, 0.11, gyp),
			woodFallback("Ceiling Joists"),
		}

	case Floor:
		subfloor := material.Plywood(deckThickness)
		return []Template{
			woodCavity("2x10 Floor Joists", material.Depth2x10, 0.13, subfloor),
			woodCavity("2x6 Floor Joists", material.Depth2x6, 0.13, subfloor),
			woodFallback("Floor Joists"),
		}

	case RimJoist:
		ext, osb := b.exterior(), sheathing()
		return []Template{
			woodCavity("2x10 Rim Joist, R-10 Rigid", material.Depth2x10, 0.23, ext, material.Rigid(10), osb),
			woodCavity("2x10 Rim Joist", material.Depth2x10, 0.23, ext, osb),
			woodFallback("Rim Joist"),
		}
	}

	ext, osb, gyp := b.exterior(), sheathing(), b.interior()
	return []Template{
		woodCavity("2x6 Wood Stud, R-20 Rigid", material.Depth2x6, 0.20, ext, material.Rigid(20), osb, gyp),
		woodCavity("2x6 Wood Stud, R-10 Rigid", material.Depth2x6, 0.20, ext, material.Rigid(10), osb, gyp),
		woodCavity("2x6 Wood Stud", material.Depth2x6, 0.20, ext, osb, gyp),
		woodCavity("2x4 Wood Stud", material.Depth2x4, 0.23, ext, osb, gyp),
		woodFallback("Wood Stud"),
	}
}

// steelCavity carries bridging in the correction factor; the framing
// fraction is reported but does not enter the solve.
func steelCavity(name string, depth, ff, correction float64, layers ...material.Layer) Template {
	return Template{
		Name:            name,
		Topology:        DeratedCavity,
		FramingFraction: ff,
		Layers:          layers,
		Params: Params{
			CorrectionFactor: correction,
			StudDepth:        depth,
		},
	}
}

func (b builder) steel() []Template {
	ext, osb, gyp := b.exterior(), sheathing(), b.interior()
	cf := b.opts.CorrectionFactor
	return []Template{
		steelCavity("2x6 Steel Stud, R-10 Rigid", material.Depth2x6, 0.25, cf, ext, material.Rigid(10), osb, gyp),
		steelCavity("2x6 Steel Stud", material.Depth2x6, 0.25, cf, ext, osb, gyp),
		steelCavity("2x4 Steel Stud", material.Depth2x4, 0.25, cf, ext, osb, gyp),
		steelCavity("2x4 Steel Stud (fallback)", material.Depth2x4, FallbackFraction, 1.0),
	}
}

func (b builder) doubleStud() []Template {
	spacing := b.opts.StudSpacing
	template := func(name string, misc float64, layers ...material.Layer) Template {
		return Template{
			Name:            name,
			Topology:        TripleParallel,
			FramingFraction: misc,
			Layers:          layers,
			Params: Params{
				FramingR:    material.Stud2x(material.Depth2x4).R,
				StudDepth:   material.Depth2x4,
				StudSpacing: spacing,
				StudWidth:   material.StudWidth,
			},
		}
	}
	return []Template{
		template(fmt.Sprintf("Double 2x4 Stud, %g in o.c.", spacing), 0.16, b.exterior(), sheathing(), b.interior()),
		template(fmt.Sprintf("Double 2x4 Stud, %g in o.c. (fallback)", spacing), FallbackFraction),
	}
}

func cmuTemplate(name string, thickness, conductivity, ff float64, layers ...material.Layer) Template {
	return Template{
		Name:            name,
		Topology:        DualLayer,
		FramingFraction: ff,
		Layers:          layers,
		Params: Params{
			FramingR:  thickness / material.WoodConductivity,
			BlockR:    material.Block(thickness, conductivity).R,
			StudDepth: thickness,
		},
	}
}

func (b builder) cmu() []Template {
	return []Template{
		cmuTemplate("8 in Perlite-Filled CMU", 8, 1.4, 0.08, b.exterior(), b.interior()),
		cmuTemplate("6 in Hollow CMU (fallback)", 6, 5.29, FallbackFraction),
	}
}

func sipTemplate(name string, panel, ff float64, layers ...material.Layer) Template {
	return Template{
		Name:            name,
		Topology:        PerimeterSpline,
		FramingFraction: ff,
		Layers:          layers,
		Params: Params{
			FramingR:        panel / material.WoodConductivity,
			PanelThickness:  panel,
			SplineThickness: splineThickness,
			SplineFraction:  splineFraction,
			SplineR:         material.OSB(splineThickness).R,
		},
	}
}

func (b builder) sip() []Template {
	ext, gyp := b.exterior(), b.interior()
	return []Template{
		sipTemplate("10 in SIP", 10, 0.16, ext, gyp),
		sipTemplate("5 in SIP", 5, 0.16, ext, gyp),
		sipTemplate("2 in SIP (fallback)", 2, FallbackFraction),
	}
}

func icfTemplate(name string, form, concrete, ff float64, layers ...material.Layer) Template {
	return Template{
		Name:            name,
		Topology:        SingleSideSeries,
		FramingFraction: ff,
		Layers:          layers,
		Params: Params{
			FramingR:          (2*form + concrete) / material.WoodConductivity,
			ConcreteR:         material.Concrete(concrete).R,
			ConcreteThickness: concrete,
			FormThickness:     form,
		},
	}
}

func (b builder) icf() []Template {
	return []Template{
		icfTemplate("2 in Forms, 4 in Concrete ICF", 2, 4, 0.08, b.exterior(), b.interior()),
		icfTemplate("1 in Forms, 1 in Concrete ICF (fallback)", 1, 1, FallbackFraction),
	}
}

func (b builder) generic() []Template {
	ext, gyp := b.exterior(), b.interior()
	series := func(name string, ff float64, layers ...material.Layer) Template {
		return Template{Name: name, Topology: Series, FramingFraction: ff, Layers: layers}
	}
	return []Template{
		series("Solid Wall, R-10 Rigid", 0, ext, material.Rigid(10), gyp),
		series("Solid Wall", 0, ext, gyp),
		series("Solid Wall (fallback)", FallbackFraction),
	}
}
