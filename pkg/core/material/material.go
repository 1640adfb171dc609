// Package material describes the homogeneous layers that make up an
// envelope assembly and the common building materials used to build them.
//
// A [Layer] always carries a resistance. Layers built from a thickness and a
// conductivity compute it as thickness/conductivity; layers that arrive with a
// precomputed resistance (air films, manufacturer-rated rigid boards, finishes
// supplied by the caller) use [Resistance].
//
// Units are IP: thickness in inches, conductivity in Btu·in/(h·ft²·°F),
// resistance in h·ft²·°F/Btu.
package material

import (
	"fmt"
	"math"

	"github.com/matzehuels/rfit/pkg/errors"
)

// Conductivities of the base materials.
const (
	WoodConductivity     = 0.8
	GypsumConductivity   = 1.1
	ConcreteConductivity = 9.1
)

// Nominal framing depths in inches.
const (
	Depth2x2  = 1.5
	Depth2x4  = 3.5
	Depth2x6  = 5.5
	Depth2x8  = 7.25
	Depth2x10 = 9.25
)

// StudWidth is the actual width of a nominal 2x framing member.
const StudWidth = 1.5

// Layer is a named homogeneous layer.
type Layer struct {
	Name         string  `json:"name" toml:"name" yaml:"name"`
	Thickness    float64 `json:"thickness,omitempty" toml:"thickness,omitempty" yaml:"thickness,omitempty"`
	Conductivity float64 `json:"conductivity,omitempty" toml:"conductivity,omitempty" yaml:"conductivity,omitempty"`
	R            float64 `json:"r" toml:"r" yaml:"r"`
}

// New builds a layer from its thickness and conductivity.
func New(name string, thickness, conductivity float64) (Layer, error) {
	if thickness < 0 || math.IsNaN(thickness) {
		return Layer{}, errors.New(errors.ErrCodeInvalidInput, "layer %q: thickness must be non-negative", name)
	}
	if !(conductivity > 0) {
		return Layer{}, errors.New(errors.ErrCodeInvalidInput, "layer %q: conductivity must be positive", name)
	}
	return Layer{
		Name:         name,
		Thickness:    thickness,
		Conductivity: conductivity,
		R:            thickness / conductivity,
	}, nil
}

// Resistance builds a layer from a known resistance.
func Resistance(name string, r float64) (Layer, error) {
	if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return Layer{}, errors.New(errors.ErrCodeInvalidInput, "layer %q: resistance must be finite and non-negative", name)
	}
	return Layer{Name: name, R: r}, nil
}

// Validate reports whether the layer's resistance is usable.
func (l Layer) Validate() error {
	if l.R < 0 || math.IsNaN(l.R) || math.IsInf(l.R, 0) {
		return errors.New(errors.ErrCodeInvalidTemplate, "layer %q: resistance must be finite and non-negative, got %g", l.Name, l.R)
	}
	return nil
}

// String formats the layer for logs and tables.
func (l Layer) String() string {
	if l.Thickness > 0 {
		return fmt.Sprintf("%s (%.3g in, R-%.2f)", l.Name, l.Thickness, l.R)
	}
	return fmt.Sprintf("%s (R-%.2f)", l.Name, l.R)
}

// TotalR sums the resistances of layers in series.
func TotalR(layers []Layer) float64 {
	var r float64
	for _, l := range layers {
		r += l.R
	}
	return r
}

// =============================================================================
// Common materials
// =============================================================================

// The helpers below use known-good constants and cannot fail; they build the
// layer directly rather than going through New.

func solid(name string, thickness, conductivity float64) Layer {
	return Layer{Name: name, Thickness: thickness, Conductivity: conductivity, R: thickness / conductivity}
}

// Stud2x returns wood framing of the given depth.
func Stud2x(depth float64) Layer {
	return solid(fmt.Sprintf("Wood Framing %.3g in", depth), depth, WoodConductivity)
}

// Gypsum returns gypsum board of the given thickness.
func Gypsum(thickness float64) Layer {
	return solid("Gypsum Board", thickness, GypsumConductivity)
}

// OSB returns oriented strand board sheathing.
func OSB(thickness float64) Layer {
	return solid("OSB Sheathing", thickness, WoodConductivity)
}

// Plywood returns plywood of the given thickness.
func Plywood(thickness float64) Layer {
	return solid("Plywood", thickness, WoodConductivity)
}

// Concrete returns poured concrete of the given thickness.
func Concrete(thickness float64) Layer {
	return solid("Concrete", thickness, ConcreteConductivity)
}

// Block returns a concrete masonry unit of the given thickness and effective conductivity.
func Block(thickness, conductivity float64) Layer {
	return solid("Concrete Masonry Unit", thickness, conductivity)
}

// Rigid returns continuous rigid insulation with a rated resistance.
func Rigid(r float64) Layer {
	return Layer{Name: "Rigid Insulation", R: r}
}

// Film returns the combined interior and exterior air film layer.
func Film(r float64) Layer {
	return Layer{Name: "Air Films", R: r}
}
