package assembly

import (
	"math"
	"testing"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/resolve"
	"github.com/matzehuels/rfit/pkg/core/validate"
	"github.com/matzehuels/rfit/pkg/errors"
)

func TestTotalRMatchesClosedForm(t *testing.T) {
	const film = 0.85
	for _, family := range catalog.Families() {
		cat, err := catalog.Build(family, catalog.Wall, catalog.Options{})
		if err != nil {
			t.Fatal(err)
		}
		for _, tmpl := range cat.Templates {
			for _, u := range []float64{0.5, 4, 13, 40} {
				c, err := Build(tmpl, u, film)
				if err != nil {
					t.Fatalf("%s: Build: %v", tmpl.Name, err)
				}
				want := resolve.Predict(tmpl, u, film+tmpl.LayersR())
				if got := c.TotalR(); math.Abs(got-want) > 1e-9 {
					t.Errorf("%s (x=%g): TotalR = %.10f, want %.10f", tmpl.Name, u, got, want)
				}
			}
		}
	}
}

func TestResolveBuildValidate(t *testing.T) {
	targets := []float64{3, 8, 13, 21, 30, 45}

	for _, family := range catalog.Families() {
		for _, kind := range []catalog.Kind{catalog.Wall, catalog.Roof, catalog.FoundationWall} {
			cat, err := catalog.Build(family, kind, catalog.Options{})
			if err != nil {
				t.Fatal(err)
			}
			film := kind.DefaultFilm()
			for _, target := range targets {
				res, err := resolve.Resolve(target, film, cat, "Surface")
				if err != nil {
					t.Fatalf("%s/%s: Resolve(%g): %v", family, kind, target, err)
				}
				c, err := Build(res.Template, res.Unknown, film)
				if err != nil {
					t.Fatalf("%s/%s: Build: %v", family, kind, err)
				}
				if _, err := validate.Validate(c.StackR(), film, 0, target, "Surface"); err != nil {
					t.Errorf("%s/%s at R-%g: %v", family, kind, target, err)
				}
			}
		}
	}
}

func TestBuildRejects(t *testing.T) {
	cat, err := catalog.Build(catalog.WoodStud, catalog.Wall, catalog.Options{})
	if err != nil {
		t.Fatal(err)
	}
	tmpl := cat.Templates[0]

	for _, u := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Build(tmpl, u, 0.85); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Build(unknown=%g) err = %v", u, err)
		}
	}
	if _, err := Build(tmpl, 10, -1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative film err = %v", err)
	}

	bad := tmpl
	bad.FramingFraction = 1
	if _, err := Build(bad, 10, 0.85); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("invalid template err = %v", err)
	}
}

func TestPathsCoverArea(t *testing.T) {
	for _, family := range catalog.Families() {
		cat, err := catalog.Build(family, catalog.Wall, catalog.Options{})
		if err != nil {
			t.Fatal(err)
		}
		c, err := Build(cat.Templates[0], 10, 0.85)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		for _, p := range c.Paths {
			sum += p.Fraction
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("%s: path fractions sum to %g", family, sum)
		}
	}
}

func TestLayersAreDistinct(t *testing.T) {
	cat, err := catalog.Build(catalog.CMU, catalog.Wall, catalog.Options{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := Build(cat.Templates[0], 5, 0.85)
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for _, l := range c.Layers() {
		if l.Name == "Rigid Insulation" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("rigid insulation listed %d times, want 1", count)
	}
	// Exterior finish, gypsum, rigid, wood framing, block.
	if got := len(c.Layers()); got != 5 {
		t.Errorf("len(Layers()) = %d, want 5", got)
	}
}

func TestStackRExcludesFilm(t *testing.T) {
	tmpl := catalog.Template{Name: "solid", Topology: catalog.Series}
	c, err := Build(tmpl, 12, 0.68)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.TotalR(); math.Abs(got-12.68) > 1e-12 {
		t.Errorf("TotalR = %g, want 12.68", got)
	}
	if got := c.StackR(); math.Abs(got-12) > 1e-12 {
		t.Errorf("StackR = %g, want 12", got)
	}
}
