package catalog

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/matzehuels/rfit/pkg/core/material"
	"github.com/matzehuels/rfit/pkg/errors"
)

func validCavity() Template {
	return Template{
		Name:            "cavity",
		Topology:        ParallelCavity,
		FramingFraction: 0.2,
		Layers:          []material.Layer{material.Gypsum(0.5)},
		Params:          Params{FramingR: 6.875},
	}
}

func TestNewRejectsInvalidTemplates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"empty name", func(t *Template) { t.Name = "" }},
		{"framing fraction one", func(t *Template) { t.FramingFraction = 1 }},
		{"negative framing fraction", func(t *Template) { t.FramingFraction = -0.1 }},
		{"nan framing fraction", func(t *Template) { t.FramingFraction = math.NaN() }},
		{"negative layer", func(t *Template) { t.Layers = []material.Layer{{Name: "bad", R: -1}} }},
		{"missing framing R", func(t *Template) { t.Params.FramingR = 0 }},
		{"unknown topology", func(t *Template) { t.Topology = Topology(42) }},
		{"zero correction", func(t *Template) { t.Topology = DeratedCavity }},
		{"correction above one", func(t *Template) {
			t.Topology = DeratedCavity
			t.Params.CorrectionFactor = 1.2
		}},
		{"stud spacing below width", func(t *Template) {
			t.Topology = TripleParallel
			t.Params.StudWidth = 1.5
			t.Params.StudSpacing = 1.5
		}},
		{"double stud no cavity", func(t *Template) {
			t.Topology = TripleParallel
			t.Params.StudWidth = 1.5
			t.Params.StudSpacing = 3
			t.FramingFraction = 0.5
		}},
		{"sip without core", func(t *Template) {
			t.Topology = PerimeterSpline
			t.Params.PanelThickness = 1
			t.Params.SplineThickness = 0.5
		}},
		{"sip no panel area", func(t *Template) {
			t.Topology = PerimeterSpline
			t.Params.PanelThickness = 6
			t.Params.SplineThickness = 0.5
			t.Params.SplineFraction = 0.85
		}},
		{"cmu without block", func(t *Template) { t.Topology = DualLayer }},
		{"icf without concrete", func(t *Template) { t.Topology = SingleSideSeries }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validCavity()
			tt.mutate(&tmpl)
			_, err := New(WoodStud, Wall, tmpl)
			if !errors.Is(err, errors.ErrCodeInvalidTemplate) {
				t.Errorf("New() err = %v, want INVALID_TEMPLATE", err)
			}
		})
	}
}

func TestNewRejectsEmptyAndDuplicates(t *testing.T) {
	if _, err := New(WoodStud, Wall); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("empty catalog: err = %v", err)
	}
	if _, err := New(WoodStud, Wall, validCavity(), validCavity()); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("duplicate names: err = %v", err)
	}
}

func TestNewCopiesTemplates(t *testing.T) {
	templates := []Template{validCavity()}
	cat, err := New(WoodStud, Wall, templates...)
	if err != nil {
		t.Fatal(err)
	}
	templates[0].Name = "changed"
	if cat.Templates[0].Name != "cavity" {
		t.Error("catalog should not alias the caller's slice")
	}
}

func TestSeriesNeedsNoParams(t *testing.T) {
	cat, err := New(Generic, Wall, Template{Name: "solid", Topology: Series})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cat.Len() != 1 || cat.Fallback().Name != "solid" {
		t.Errorf("unexpected catalog %+v", cat)
	}
}

func TestBuildAllFamilies(t *testing.T) {
	for _, family := range Families() {
		for _, kind := range Kinds() {
			cat, err := Build(family, kind, Options{})
			if err != nil {
				t.Errorf("Build(%s, %s): %v", family, kind, err)
				continue
			}
			if cat.Len() < 2 {
				t.Errorf("%s/%s: %d templates, want at least a primary and a fallback", family, kind, cat.Len())
			}
			fb := cat.Fallback()
			if fb.FramingFraction != FallbackFraction {
				t.Errorf("%s/%s: fallback framing fraction %g", family, kind, fb.FramingFraction)
			}
			if len(fb.Layers) != 0 {
				t.Errorf("%s/%s: fallback carries %d layers", family, kind, len(fb.Layers))
			}
			for _, tmpl := range cat.Templates {
				if tmpl.Topology != cat.Templates[0].Topology {
					t.Errorf("%s/%s: mixed topologies in catalog", family, kind)
				}
			}
		}
	}
}

func TestBuildWoodPresets(t *testing.T) {
	tests := []struct {
		kind  Kind
		first string
	}{
		{Wall, "2x6 Wood Stud, R-20 Rigid"},
		{Roof, "2x8 Rafters"},
		{Ceiling, "2x6 Ceiling Joists"},
		{Floor, "2x10 Floor Joists"},
		{RimJoist, "2x10 Rim Joist, R-10 Rigid"},
		{FoundationWall, "2x6 Wood Stud, R-20 Rigid"},
	}

	for _, tt := range tests {
		cat, err := Build(WoodStud, tt.kind, Options{})
		if err != nil {
			t.Fatalf("Build(%s): %v", tt.kind, err)
		}
		if got := cat.Templates[0].Name; got != tt.first {
			t.Errorf("%s: first template %q, want %q", tt.kind, got, tt.first)
		}
	}
}

func TestBuildOptions(t *testing.T) {
	cat, err := Build(SteelStud, Wall, Options{CorrectionFactor: 0.6})
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Templates[0].Params.CorrectionFactor; got != 0.6 {
		t.Errorf("correction factor = %g, want 0.6", got)
	}
	if got := cat.Fallback().Params.CorrectionFactor; got != 1.0 {
		t.Errorf("fallback correction factor = %g, want 1", got)
	}

	cat, err = Build(DoubleStud, Wall, Options{StudSpacing: 16})
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Templates[0].StudFraction(); got != 1.5/16 {
		t.Errorf("stud fraction = %g", got)
	}
	if cat.Templates[0].Name != "Double 2x4 Stud, 16 in o.c." {
		t.Errorf("name = %q", cat.Templates[0].Name)
	}

	cat, err = Build(WoodStud, Wall, Options{ExteriorFinishR: 1.2, InteriorFinishThickness: 0.625})
	if err != nil {
		t.Fatal(err)
	}
	want := 1.2 + 20 + 0.5/0.8 + 0.625/1.1
	if got := cat.Templates[0].LayersR(); math.Abs(got-want) > 1e-12 {
		t.Errorf("LayersR = %g, want %g", got, want)
	}
}

func TestBuildRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"correction above one", Options{CorrectionFactor: 1.5}},
		{"negative correction", Options{CorrectionFactor: -0.2}},
		{"spacing below stud width", Options{StudSpacing: 1}},
		{"negative finish", Options{ExteriorFinishR: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(DoubleStud, Wall, tt.opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}

	if _, err := Build("thatch", Wall, Options{}); !errors.Is(err, errors.ErrCodeInvalidFamily) {
		t.Errorf("unknown family: err = %v", err)
	}
}

func TestParse(t *testing.T) {
	if f, err := ParseFamily("sip"); err != nil || f != SIP {
		t.Errorf("ParseFamily(sip) = %v, %v", f, err)
	}
	if _, err := ParseFamily("adobe"); !errors.Is(err, errors.ErrCodeInvalidFamily) {
		t.Errorf("ParseFamily(adobe) err = %v", err)
	}
	if k, err := ParseKind(""); err != nil || k != Wall {
		t.Errorf("ParseKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseKind("window"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("ParseKind(window) err = %v", err)
	}
}

func TestDefaultFilm(t *testing.T) {
	tests := map[Kind]float64{
		Wall:           0.85,
		RimJoist:       0.85,
		Roof:           0.79,
		Ceiling:        1.22,
		Floor:          1.84,
		FoundationWall: 0.68,
		Slab:           0,
	}
	for kind, want := range tests {
		if got := kind.DefaultFilm(); got != want {
			t.Errorf("%s.DefaultFilm() = %g, want %g", kind, got, want)
		}
	}
}

func TestTopologyText(t *testing.T) {
	for _, top := range Topologies() {
		b, err := top.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", top, err)
		}
		var back Topology
		if err := back.UnmarshalText(b); err != nil || back != top {
			t.Errorf("UnmarshalText(%s) = %v, %v", b, back, err)
		}
		if top.Unknown() == "unknown" {
			t.Errorf("%s has no unknown name", top)
		}
	}

	if _, err := ParseTopology("zigzag"); !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Errorf("ParseTopology(zigzag) err = %v", err)
	}
	if got := Topology(99).String(); got != "topology(99)" {
		t.Errorf("String() = %q", got)
	}
}

func TestTemplateJSON(t *testing.T) {
	data, err := json.Marshal(validCavity())
	if err != nil {
		t.Fatal(err)
	}
	var back Template
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Topology != ParallelCavity || back.Params.FramingR != 6.875 {
		t.Errorf("decoded %+v", back)
	}
}

func TestLookup(t *testing.T) {
	cat, err := Build(SIP, Wall, Options{})
	if err != nil {
		t.Fatal(err)
	}
	tmpl, ok := cat.Lookup("5 in SIP")
	if !ok {
		t.Fatal("5 in SIP not found")
	}
	if got := tmpl.CoreThickness(); got != 4 {
		t.Errorf("CoreThickness = %g, want 4", got)
	}
	if _, ok := cat.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}
