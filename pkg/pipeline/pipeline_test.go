package pipeline

import (
	"context"
	"io"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rfit/pkg/cache"
	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/resolve"
	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quietLogger())
	t.Cleanup(func() { r.Close() })
	return r
}

func film(v float64) *float64 { return &v }

func TestSurfaceValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Surface
		code errors.Code
	}{
		{"valid", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 13}, ""},
		{"missing id", Surface{Family: catalog.WoodStud, AssemblyR: 13}, errors.ErrCodeInvalidInput},
		{"missing family", Surface{ID: "Wall", AssemblyR: 13}, errors.ErrCodeInvalidInput},
		{"zero target", Surface{ID: "Wall", Family: catalog.WoodStud}, errors.ErrCodeInvalidInput},
		{"nan target", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: math.NaN()}, errors.ErrCodeInvalidInput},
		{"inf target", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: math.Inf(1)}, errors.ErrCodeInvalidInput},
		{"target above cap", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 1e14}, errors.ErrCodeInvalidInput},
		{"negative film", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 13, FilmR: film(-1)}, errors.ErrCodeInvalidInput},
		{"negative extra", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 13, ExtraSeriesR: -1}, errors.ErrCodeInvalidInput},
		{"extra exceeds target", Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 5, ExtraSeriesR: 5}, errors.ErrCodeInvalidInput},
		{"unknown family", Surface{ID: "Wall", Family: "adobe", AssemblyR: 13}, errors.ErrCodeInvalidFamily},
		{"unknown kind", Surface{ID: "Wall", Kind: "window", Family: catalog.WoodStud, AssemblyR: 13}, errors.ErrCodeInvalidKind},
		{"control characters", Surface{ID: "Wall\x00", Family: catalog.WoodStud, AssemblyR: 13}, errors.ErrCodeInvalidInput},
		{"bad correction", Surface{ID: "Wall", Family: catalog.SteelStud, AssemblyR: 13,
			Options: catalog.Options{CorrectionFactor: 1.5}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSurfaceFilm(t *testing.T) {
	s := Surface{ID: "Floor", Kind: catalog.Floor, Family: catalog.WoodStud, AssemblyR: 20}
	if got := s.Film(); got != 1.84 {
		t.Errorf("default floor film = %g", got)
	}
	s.FilmR = film(0)
	if got := s.Film(); got != 0 {
		t.Errorf("explicit zero film = %g", got)
	}
	s.Kind = ""
	s.FilmR = nil
	if got := s.Film(); got != 0.85 {
		t.Errorf("empty kind film = %g, want wall", got)
	}
}

func TestRunWoodWall(t *testing.T) {
	r := newTestRunner(t)
	s := Surface{ID: "Wall North", Family: catalog.WoodStud, AssemblyR: 21}

	res, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cat, err := catalog.Build(catalog.WoodStud, catalog.Wall, catalog.Options{})
	if err != nil {
		t.Fatal(err)
	}
	want, err := resolve.Resolve(21, 0.85, cat, "Wall North")
	if err != nil {
		t.Fatal(err)
	}
	if res.Template != want.Template.Name || res.Index != want.Index {
		t.Errorf("template = %q (%d), want %q (%d)", res.Template, res.Index, want.Template.Name, want.Index)
	}
	if math.Abs(res.Unknown-want.Unknown) > 1e-12 {
		t.Errorf("unknown = %g, want %g", res.Unknown, want.Unknown)
	}
	if res.UnknownName != "cavity insulation" {
		t.Errorf("unknown name = %q", res.UnknownName)
	}
	if math.Abs(res.Validation.Delta) > 1e-9 {
		t.Errorf("delta = %g", res.Validation.Delta)
	}
	if res.Kind != catalog.Wall || res.FilmR != 0.85 {
		t.Errorf("kind %q film %g", res.Kind, res.FilmR)
	}
	if res.Fallback || res.Cached {
		t.Errorf("fallback %v cached %v", res.Fallback, res.Cached)
	}
}

func TestRunExtraSeriesResistance(t *testing.T) {
	r := newTestRunner(t)
	s := Surface{
		ID:           "Foundation Wall",
		Kind:         catalog.FoundationWall,
		Family:       catalog.Generic,
		AssemblyR:    12,
		ExtraSeriesR: 5,
	}

	res, err := r.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Template != "Solid Wall" {
		t.Fatalf("template = %q, want Solid Wall", res.Template)
	}
	wantUnknown := 7 - 0.68 - res.Construction.FixedR()
	if math.Abs(res.Unknown-wantUnknown) > 1e-12 {
		t.Errorf("unknown = %.6f, want %.6f", res.Unknown, wantUnknown)
	}
	if math.Abs(res.Validation.Realized-12) > 1e-9 {
		t.Errorf("realized = %g, want 12 including extra", res.Validation.Realized)
	}
}

func TestRunFallback(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Run(context.Background(), Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Fallback || !strings.HasSuffix(res.Template, "(fallback)") {
		t.Errorf("R-2 should use the fallback, got %q", res.Template)
	}
}

func TestRunInfeasible(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.Run(context.Background(), Surface{ID: "Rim Joist East", Kind: catalog.RimJoist, Family: catalog.WoodStud, AssemblyR: 0.5})
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want CONFIGURATION", err)
	}
	if !strings.Contains(err.Error(), `"Rim Joist East"`) {
		t.Errorf("error %q should name the surface", err)
	}
}

func TestRunCaches(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	s := Surface{ID: "Roof", Kind: catalog.Roof, Family: catalog.WoodStud, AssemblyR: 30}

	first, err := r.Run(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Run(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if second.Template != first.Template || second.Unknown != first.Unknown {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
	if second.Construction == nil || len(second.Construction.Paths) != len(first.Construction.Paths) {
		t.Error("cached construction not restored")
	}

	r.Refresh = true
	third, err := r.Run(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("Refresh should bypass the cache")
	}
}

type countingHooks struct {
	observability.NoopResolveHooks
	resolves, validations atomic.Int32
}

func (h *countingHooks) OnResolve(context.Context, string, string, int, time.Duration, error) {
	h.resolves.Add(1)
}

func (h *countingHooks) OnValidate(context.Context, string, float64, error) {
	h.validations.Add(1)
}

func TestRunAll(t *testing.T) {
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetResolveHooks(hooks)

	r := newTestRunner(t)
	r.Concurrency = 2

	var surfaces []Surface
	for _, family := range catalog.Families() {
		for _, target := range []float64{8, 21} {
			surfaces = append(surfaces, Surface{
				ID:        string(family) + "-" + strings.Repeat("x", int(target)),
				Family:    family,
				AssemblyR: target,
			})
		}
	}

	report, err := r.RunAll(context.Background(), surfaces)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.RunID == "" || report.Version == "" {
		t.Errorf("run id %q version %q", report.RunID, report.Version)
	}
	if report.Stats.Surfaces != len(surfaces) || len(report.Surfaces) != len(surfaces) {
		t.Fatalf("stats %+v for %d surfaces", report.Stats, len(surfaces))
	}
	for i, res := range report.Surfaces {
		if res.ID != surfaces[i].ID {
			t.Errorf("result %d is %q, want %q (input order)", i, res.ID, surfaces[i].ID)
		}
	}
	if got := int(hooks.resolves.Load()); got != len(surfaces) {
		t.Errorf("OnResolve called %d times, want %d", got, len(surfaces))
	}
	if got := int(hooks.validations.Load()); got != len(surfaces) {
		t.Errorf("OnValidate called %d times, want %d", got, len(surfaces))
	}

	again, err := r.RunAll(context.Background(), surfaces)
	if err != nil {
		t.Fatal(err)
	}
	if again.Stats.CacheHits != len(surfaces) {
		t.Errorf("second run cache hits = %d, want %d", again.Stats.CacheHits, len(surfaces))
	}
	if again.RunID == report.RunID {
		t.Error("each run should get a fresh id")
	}
}

func TestRunAllProgress(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	r.Concurrency = 3

	var calls atomic.Int32
	seen := make(chan string, 8)
	r.Progress = func(res *SurfaceResult) {
		calls.Add(1)
		seen <- res.ID
	}

	surfaces := []Surface{
		{ID: "a", Family: catalog.WoodStud, AssemblyR: 13},
		{ID: "b", Family: catalog.WoodStud, AssemblyR: 21},
		{ID: "c", Family: catalog.SteelStud, AssemblyR: 13},
		{ID: "d", Family: catalog.CMU, AssemblyR: 8},
	}
	if _, err := r.RunAll(context.Background(), surfaces); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	close(seen)

	if got := int(calls.Load()); got != len(surfaces) {
		t.Fatalf("Progress called %d times, want %d", got, len(surfaces))
	}
	ids := map[string]bool{}
	for id := range seen {
		ids[id] = true
	}
	for _, s := range surfaces {
		if !ids[s.ID] {
			t.Errorf("no progress reported for %q", s.ID)
		}
	}
}

func TestRunAllFailsOnFirstError(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	surfaces := []Surface{
		{ID: "ok", Family: catalog.WoodStud, AssemblyR: 13},
		{ID: "too low", Family: catalog.CMU, AssemblyR: 1},
	}
	_, err := r.RunAll(context.Background(), surfaces)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("err = %v, want CONFIGURATION", err)
	}
}

func TestValidateSurfaces(t *testing.T) {
	if err := ValidateSurfaces(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty batch err = %v", err)
	}
	dup := []Surface{
		{ID: "a", Family: catalog.WoodStud, AssemblyR: 13},
		{ID: "a", Family: catalog.SIP, AssemblyR: 20},
	}
	if err := ValidateSurfaces(dup); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate ids err = %v", err)
	}
	bad := []Surface{{ID: "a", Family: catalog.WoodStud, AssemblyR: 13}, {ID: "b", Family: catalog.WoodStud}}
	err := ValidateSurfaces(bad)
	if err == nil || !strings.HasPrefix(err.Error(), "surface 2:") {
		t.Errorf("err = %v, want position prefix", err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Run(ctx, Surface{ID: "Wall", Family: catalog.WoodStud, AssemblyR: 13}); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
