package network

import "math"

// =============================================================================
// Series
// =============================================================================

// Series solves a purely series assembly: x = target − fixed.
func Series(target, fixed float64) float64 {
	return target - fixed
}

// SeriesR is the forward form of [Series].
func SeriesR(unknown, fixed float64) float64 {
	return unknown + fixed
}

// =============================================================================
// Single parallel cavity (wood framing)
// =============================================================================

// ParallelCavity solves a framed cavity: a framing path of area fraction f
// through framingR and a cavity path through the unknown, both in series
// with fixed.
//
//	1/A = f/(framingR+D) + (1−f)/(x+D)
func ParallelCavity(target, fixed, f, framingR float64) float64 {
	denom := 1/target - f/(framingR+fixed)
	if denom == 0 {
		return math.NaN()
	}
	return (1-f)/denom - fixed
}

// ParallelCavityR is the forward form of [ParallelCavity].
func ParallelCavityR(unknown, fixed, f, framingR float64) float64 {
	return ParallelR([]Path{
		{Fraction: f, R: framingR + fixed},
		{Fraction: 1 - f, R: unknown + fixed},
	})
}

// =============================================================================
// Derated parallel cavity (steel framing)
// =============================================================================

// DeratedCavity solves a steel-framed cavity whose thermal bridging is
// captured by an empirical correction factor applied to the cavity R-value.
//
//	x = (A − D) / correction
func DeratedCavity(target, fixed, correction float64) float64 {
	if correction == 0 {
		return math.NaN()
	}
	return (target - fixed) / correction
}

// DeratedCavityR is the forward form of [DeratedCavity].
func DeratedCavityR(unknown, fixed, correction float64) float64 {
	return fixed + correction*unknown
}

// =============================================================================
// Triple parallel (double stud)
// =============================================================================

// TripleParallel solves a double-stud wall. The unknown is the insulation
// R-value of one stud depth; the gap between the stud rows is one stud depth
// deep, so the full cavity holds three depths of insulation.
//
// Paths:
//   - studs (fraction b = stud width / spacing): both stud rows plus the gap, 2C + x
//   - misc framing (fraction e): framing through all three depths, 3C
//   - cavity (1 − b − e): three depths of insulation, 3x
//
//	1/A = b/(2C+x+D) + e/(3C+D) + (1−b−e)/(3x+D)
//
// where C is the resistance of one stud depth. The positive root is returned.
func TripleParallel(target, fixed, studFraction, miscFraction, studR float64) float64 {
	a := target
	b := studFraction
	c := studR
	d := fixed
	e := miscFraction

	disc := 4*a*a*b*b + 12*a*a*b*e + 4*a*a*b + 9*a*a*e*e - 6*a*a*e + a*a -
		48*a*b*c - 16*a*b*d - 36*a*c*e + 12*a*c - 12*a*d*e + 4*a*d +
		36*c*c + 24*c*d + 4*d*d
	denom := 2 * (-3*a*e + 9*c + 3*d)
	if disc < 0 || denom == 0 {
		return math.NaN()
	}

	return ((3*c+d)*math.Sqrt(disc) + 6*a*b*c + 2*a*b*d + 3*a*c*e + 3*a*c + 3*a*d*e + a*d -
		18*c*c - 18*c*d - 4*d*d) / denom
}

// TripleParallelR is the forward form of [TripleParallel].
func TripleParallelR(unknown, fixed, studFraction, miscFraction, studR float64) float64 {
	return ParallelR([]Path{
		{Fraction: studFraction, R: 2*studR + unknown + fixed},
		{Fraction: miscFraction, R: 3*studR + fixed},
		{Fraction: 1 - studFraction - miscFraction, R: 3*unknown + fixed},
	})
}

// =============================================================================
// Perimeter spline parallel (structural insulated panels)
// =============================================================================

// SplineParams describes the geometry of a structural insulated panel.
type SplineParams struct {
	FramingFraction float64 // area fraction of full-thickness framing
	FramingR        float64 // framing resistance through the full panel thickness
	SplineFraction  float64 // area fraction of panel-joint splines
	SplineR         float64 // resistance of one spline strip
	CoreThickness   float64 // panel thickness minus both spline strips
	PanelThickness  float64 // full panel thickness
}

// PerimeterSpline solves a structural insulated panel for its core
// insulation R-value (over the full panel thickness).
//
// Paths:
//   - framing (B): full-thickness framing, C
//   - splines (E): two spline strips around a thinner core, 2F + (G/H)·x
//   - panel (1 − B − E): core insulation, x
//
//	1/A = B/(C+D) + E/(2F+(G/H)x+D) + (1−B−E)/(x+D)
//
// The positive root is returned.
func PerimeterSpline(target, fixed float64, p SplineParams) float64 {
	a := target
	b := p.FramingFraction
	c := p.FramingR
	d := fixed
	e := p.SplineFraction
	f := p.SplineR
	g := p.CoreThickness
	h := p.PanelThickness

	lin := a*b*c*g - a*b*d*h - 2*a*b*f*h + a*c*e*g - a*c*e*h - a*c*g + a*d*e*g - a*d*e*h - a*d*g +
		c*d*g + c*d*h + 2*c*f*h + d*d*g + d*d*h + 2*d*f*h
	quad := -a*b*g + c*g + d*g
	konst := a*b*c*d*h + 2*a*b*c*f*h - a*c*d*h + 2*a*c*e*f*h - 2*a*c*f*h - a*d*d*h + 2*a*d*e*f*h -
		2*a*d*f*h + c*d*d*h + 2*c*d*f*h + d*d*d*h + 2*d*d*f*h

	disc := lin*lin - 4*quad*konst
	if disc < 0 || quad == 0 {
		return math.NaN()
	}

	return (math.Sqrt(disc) - lin) / (2 * quad)
}

// PerimeterSplineR is the forward form of [PerimeterSpline].
func PerimeterSplineR(unknown, fixed float64, p SplineParams) float64 {
	return ParallelR([]Path{
		{Fraction: p.FramingFraction, R: p.FramingR + fixed},
		{Fraction: p.SplineFraction, R: 2*p.SplineR + p.CoreThickness/p.PanelThickness*unknown + fixed},
		{Fraction: 1 - p.FramingFraction - p.SplineFraction, R: unknown + fixed},
	})
}

// =============================================================================
// Dual layer parallel (concrete masonry units)
// =============================================================================

// DualLayer solves a concrete masonry wall for the rigid insulation added in
// series outside the framing/block split.
//
//	1/A = b/(c+e+x) + (1−b)/(d+e+x)
//
// where c is the wood-equivalent framing resistance and d the block
// resistance. The positive root is returned.
func DualLayer(target, fixed, f, framingR, blockR float64) float64 {
	a := target
	b := f
	c := framingR
	d := blockR
	e := fixed

	disc := a*a - 4*a*b*c + 4*a*b*d + 2*a*c - 2*a*d + c*c - 2*c*d + d*d
	if disc < 0 {
		return math.NaN()
	}
	return 0.5 * (math.Sqrt(disc) + a - c - d - 2*e)
}

// DualLayerR is the forward form of [DualLayer].
func DualLayerR(unknown, fixed, f, framingR, blockR float64) float64 {
	return ParallelR([]Path{
		{Fraction: f, R: framingR + fixed + unknown},
		{Fraction: 1 - f, R: blockR + fixed + unknown},
	})
}

// =============================================================================
// Single-side series in parallel (insulated concrete forms)
// =============================================================================

// SingleSideSeries solves an insulated concrete form wall for the R-value of
// one form face. Form insulation sits on both faces of the concrete.
//
//	1/A = b/(c+e) + (1−b)/(d+e+2x)
//
// where c is the wood-equivalent resistance through both forms and the
// concrete, and d the concrete resistance.
func SingleSideSeries(target, fixed, f, framingR, concreteR float64) float64 {
	a := target
	b := f
	c := framingR
	d := concreteR
	e := fixed

	denom := 2 * (a*b - c - e)
	if denom == 0 {
		return math.NaN()
	}
	return (a*b*c - a*b*d - a*c - a*e + c*d + c*e + d*e + e*e) / denom
}

// SingleSideSeriesR is the forward form of [SingleSideSeries].
func SingleSideSeriesR(unknown, fixed, f, framingR, concreteR float64) float64 {
	return ParallelR([]Path{
		{Fraction: f, R: framingR + fixed},
		{Fraction: 1 - f, R: concreteR + fixed + 2*unknown},
	})
}
