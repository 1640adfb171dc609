// Package catalog holds the ordered construction templates the resolver
// chooses from.
//
// A [Catalog] lists templates for one construction family, most insulated
// first, and always ends in a fallback: the same topology with a 1% framing
// fraction and no finish or sheathing layers, so that nearly any realistic
// target stays solvable. The fallback fraction is 0.01 rather than zero
// because several closed forms take a different algebraic branch at zero.
//
// Catalogs are validated when they are built ([New]); a catalog that exists
// can always be solved without dividing by zero.
//
// # Families
//
// [Build] returns the stock catalog for a family and surface kind:
//
//	cat, err := catalog.Build(catalog.WoodStud, catalog.Wall, catalog.Options{})
//	for _, t := range cat.Templates {
//	    fmt.Println(t.Name)
//	}
package catalog

import (
	"github.com/matzehuels/rfit/pkg/errors"
)

// FallbackFraction is the framing fraction of every fallback template.
const FallbackFraction = 0.01

// Family is a construction technology.
type Family string

const (
	WoodStud   Family = "wood_stud"
	SteelStud  Family = "steel_stud"
	DoubleStud Family = "double_stud"
	CMU        Family = "cmu"
	SIP        Family = "sip"
	ICF        Family = "icf"
	// Generic covers solid constructions solved in series: masonry, brick,
	// stone, straw bale, log and solid concrete.
	Generic Family = "generic"
)

// Families returns every supported family.
func Families() []Family {
	return []Family{WoodStud, SteelStud, DoubleStud, CMU, SIP, ICF, Generic}
}

// ParseFamily validates a family name.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFamily, "unknown construction family %q", s)
}

// Kind is the envelope surface a catalog is built for.
type Kind string

const (
	Wall           Kind = "wall"
	RimJoist       Kind = "rim_joist"
	Roof           Kind = "roof"
	Ceiling        Kind = "ceiling"
	Floor          Kind = "floor"
	FoundationWall Kind = "foundation_wall"
	Slab           Kind = "slab"
)

// Kinds returns every supported surface kind.
func Kinds() []Kind {
	return []Kind{Wall, RimJoist, Roof, Ceiling, Floor, FoundationWall, Slab}
}

// ParseKind validates a surface kind. An empty string selects Wall.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return Wall, nil
	}
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "unknown surface kind %q", s)
}

// DefaultFilm returns the combined interior and exterior air film
// resistance for the surface kind.
func (k Kind) DefaultFilm() float64 {
	switch k {
	case Wall, RimJoist:
		return 0.85
	case Roof:
		return 0.79
	case Ceiling:
		return 1.22
	case Floor:
		return 1.84
	case FoundationWall:
		return 0.68
	case Slab:
		return 0
	}
	return 0.85
}

// Catalog is an ordered list of templates for one family and kind.
type Catalog struct {
	Family    Family     `json:"family" toml:"family" yaml:"family"`
	Kind      Kind       `json:"kind" toml:"kind" yaml:"kind"`
	Templates []Template `json:"templates" toml:"templates" yaml:"templates"`
}

// New builds a catalog and validates every template. Templates keep the
// order given; the resolver tries them first to last.
func New(family Family, kind Kind, templates ...Template) (Catalog, error) {
	if len(templates) == 0 {
		return Catalog{}, errors.New(errors.ErrCodeInvalidTemplate, "catalog %s/%s has no templates", family, kind)
	}
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return Catalog{}, err
		}
		if seen[t.Name] {
			return Catalog{}, errors.New(errors.ErrCodeInvalidTemplate, "catalog %s/%s: duplicate template %q", family, kind, t.Name)
		}
		seen[t.Name] = true
	}
	return Catalog{
		Family:    family,
		Kind:      kind,
		Templates: append([]Template(nil), templates...),
	}, nil
}

// Len returns the number of templates.
func (c Catalog) Len() int {
	return len(c.Templates)
}

// Fallback returns the last template in the catalog.
func (c Catalog) Fallback() Template {
	return c.Templates[len(c.Templates)-1]
}

// Lookup returns the template with the given name.
func (c Catalog) Lookup(name string) (Template, bool) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
