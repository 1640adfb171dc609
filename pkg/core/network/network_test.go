package network

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSeries(t *testing.T) {
	tests := []struct {
		target, fixed, want float64
	}{
		{13.0, 1.3, 11.7},
		{5.0, 5.0, 0},
		{1.0, 2.0, -1.0},
	}

	for _, tt := range tests {
		if got := Series(tt.target, tt.fixed); !near(got, tt.want, eps) {
			t.Errorf("Series(%g, %g) = %g, want %g", tt.target, tt.fixed, got, tt.want)
		}
	}
}

func TestParallelCavityWoodStud(t *testing.T) {
	// 2x6 framing (5.5 in of wood at R-1.25/in) at 20% framing fraction.
	const fixed, f, framingR = 1.30, 0.20, 6.88

	got := ParallelCavity(13.0, fixed, f, framingR)
	want := 0.8/(1.0/13.0-0.2/(6.88+1.30)) - 1.30
	if !near(got, want, eps) {
		t.Errorf("ParallelCavity = %.6f, want %.6f", got, want)
	}
	if got < 13.9 || got > 14.0 {
		t.Errorf("ParallelCavity = %.4f, want ~13.95", got)
	}

	if low := ParallelCavity(1.0, fixed, f, framingR); low > 0 {
		t.Errorf("ParallelCavity(1.0) = %g, want non-positive", low)
	}
}

func TestDeratedCavity(t *testing.T) {
	if got := DeratedCavity(11.0, 2.0, 0.45); !near(got, 20.0, eps) {
		t.Errorf("DeratedCavity = %g, want 20", got)
	}
	if got := DeratedCavity(11.0, 2.0, 1.0); !near(got, 9.0, eps) {
		t.Errorf("DeratedCavity(correction=1) = %g, want 9", got)
	}
	if got := DeratedCavity(11.0, 2.0, 0); !math.IsNaN(got) {
		t.Errorf("DeratedCavity(correction=0) = %g, want NaN", got)
	}
}

func TestRoundTrip(t *testing.T) {
	const fixed = 0.85
	sip := SplineParams{
		FramingFraction: 0.16,
		FramingR:        12.5,
		SplineFraction:  4.0 / 48.0,
		SplineR:         0.625,
		CoreThickness:   9.0,
		PanelThickness:  10.0,
	}

	topologies := []struct {
		name    string
		forward func(x float64) float64
		solve   func(target float64) float64
	}{
		{
			name:    "series",
			forward: func(x float64) float64 { return SeriesR(x, fixed) },
			solve:   func(a float64) float64 { return Series(a, fixed) },
		},
		{
			name:    "parallel cavity",
			forward: func(x float64) float64 { return ParallelCavityR(x, fixed, 0.23, 4.375) },
			solve:   func(a float64) float64 { return ParallelCavity(a, fixed, 0.23, 4.375) },
		},
		{
			name:    "derated cavity",
			forward: func(x float64) float64 { return DeratedCavityR(x, fixed, 0.45) },
			solve:   func(a float64) float64 { return DeratedCavity(a, fixed, 0.45) },
		},
		{
			name:    "triple parallel",
			forward: func(x float64) float64 { return TripleParallelR(x, fixed, 1.5/24.0, 0.16, 4.375) },
			solve:   func(a float64) float64 { return TripleParallel(a, fixed, 1.5/24.0, 0.16, 4.375) },
		},
		{
			name:    "perimeter spline",
			forward: func(x float64) float64 { return PerimeterSplineR(x, fixed, sip) },
			solve:   func(a float64) float64 { return PerimeterSpline(a, fixed, sip) },
		},
		{
			name:    "dual layer",
			forward: func(x float64) float64 { return DualLayerR(x, fixed, 0.08, 10.0, 8.0/1.4) },
			solve:   func(a float64) float64 { return DualLayer(a, fixed, 0.08, 10.0, 8.0/1.4) },
		},
		{
			name:    "single side series",
			forward: func(x float64) float64 { return SingleSideSeriesR(x, fixed, 0.08, 10.0, 4.0/9.1) },
			solve:   func(a float64) float64 { return SingleSideSeries(a, fixed, 0.08, 10.0, 4.0/9.1) },
		},
	}

	unknowns := []float64{0.25, 1, 3, 7.5, 11, 19, 25, 38, 60}

	for _, tp := range topologies {
		t.Run(tp.name, func(t *testing.T) {
			for _, u := range unknowns {
				target := tp.forward(u)
				got := tp.solve(target)
				if !near(got, u, eps) {
					t.Errorf("solve(forward(%g)) = %.12f (target %.6f)", u, got, target)
				}
			}
		})
	}
}

func TestMonotonic(t *testing.T) {
	const fixed = 0.85
	solvers := map[string]func(float64) float64{
		"parallel cavity":    func(a float64) float64 { return ParallelCavity(a, fixed, 0.01, 1.875) },
		"triple parallel":    func(a float64) float64 { return TripleParallel(a, fixed, 1.5/24.0, 0.01, 4.375) },
		"dual layer":         func(a float64) float64 { return DualLayer(a, fixed, 0.01, 7.5, 6.0/5.29) },
		"single side series": func(a float64) float64 { return SingleSideSeries(a, fixed, 0.01, 3.75, 1.0/9.1) },
		"perimeter spline": func(a float64) float64 {
			return PerimeterSpline(a, fixed, SplineParams{
				FramingFraction: 0.01,
				FramingR:        2.5,
				SplineFraction:  4.0 / 48.0,
				SplineR:         0.625,
				CoreThickness:   1.0,
				PanelThickness:  2.0,
			})
		},
	}

	for name, solve := range solvers {
		prev := math.Inf(-1)
		for a := 2.5; a <= 100; a += 0.5 {
			x := solve(a)
			if !(x > prev) {
				t.Errorf("%s: unknown not increasing at target %g (%g <= %g)", name, a, x, prev)
				break
			}
			prev = x
		}
	}
}

func TestUndefinedInputsReturnNaN(t *testing.T) {
	// Target equals the limit of the misc framing path alone.
	const c, d, e = 4.375, 0.875, 0.25
	limit := (3*c + d) / e
	if got := TripleParallel(limit, d, 1.5/24.0, e, c); !math.IsNaN(got) {
		t.Errorf("TripleParallel at framing limit = %g, want NaN", got)
	}

	sip := SplineParams{FramingFraction: 0.16, FramingR: 12.5, SplineFraction: 0.08, SplineR: 0.6, CoreThickness: 0, PanelThickness: 1}
	if got := PerimeterSpline(20, 0.85, sip); !math.IsNaN(got) {
		t.Errorf("PerimeterSpline with no core = %g, want NaN", got)
	}

	// (A·b − c − e) == 0
	if got := SingleSideSeries(40, 0.5, 0.25, 9.5, 0.4); !math.IsNaN(got) {
		t.Errorf("SingleSideSeries at zero denominator = %g, want NaN", got)
	}
}

func TestTargetsBeyondFramingLimitAreRejected(t *testing.T) {
	// With 1% framing the framing path caps the assembly at (c+e)/b.
	if got := SingleSideSeries(500, 0.85, 0.01, 3.75, 0.11); got > 0 {
		t.Errorf("SingleSideSeries above limit = %g, want non-positive", got)
	}
	if got := TripleParallel(2000, 0.85, 1.5/24.0, 0.01, 4.375); got > 0 {
		t.Errorf("TripleParallel above limit = %g, want non-positive", got)
	}
	if got := ParallelCavity(400, 0.85, 0.01, 1.875); got > 0 {
		t.Errorf("ParallelCavity above limit = %g, want non-positive", got)
	}
}

func TestParallelR(t *testing.T) {
	tests := []struct {
		name  string
		paths []Path
		want  float64
	}{
		{"single path", []Path{{1, 10}}, 10},
		{"equal halves", []Path{{0.5, 10}, {0.5, 10}}, 10},
		{"split", []Path{{0.5, 2}, {0.5, 8}}, 3.2},
		{"zero fraction ignored", []Path{{1, 4}, {0, 0}}, 4},
		{"short circuit", []Path{{0.5, 0}, {0.5, 10}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParallelR(tt.paths); !near(got, tt.want, eps) {
				t.Errorf("ParallelR = %g, want %g", got, tt.want)
			}
		})
	}

	if got := ParallelR(nil); !math.IsInf(got, 1) {
		t.Errorf("ParallelR(nil) = %g, want +Inf", got)
	}
}

func TestSumR(t *testing.T) {
	if got := SumR(0.68, 0.45, 0.17); !near(got, 1.30, eps) {
		t.Errorf("SumR = %g, want 1.30", got)
	}
	if got := SumR(); got != 0 {
		t.Errorf("SumR() = %g, want 0", got)
	}
}
