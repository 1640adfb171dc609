// Package network solves one-dimensional steady-state resistance networks
// for layered envelope assemblies.
//
// Every construction family maps onto a fixed circuit topology: resistances
// in series add, and side-by-side paths combine by area-weighted conductance
// (the parallel-path, or isothermal-planes, method). For each topology this
// package provides a solver that returns the one unknown resistance needed to
// reach a target whole-assembly R-value, and a forward function that computes
// the assembly R-value from a known unknown.
//
// # Conventions
//
// All solvers share the same leading arguments:
//
//   - target: the whole-assembly R-value to reproduce (films included)
//   - fixed:  the sum of every resistance in series with all paths, i.e. the
//     combined air films plus all fixed layers (sheathing, finishes, rigid)
//
// Solvers never return an error. A negative result means the target cannot
// be reached with that topology and fixed resistance; NaN means the closed
// form is undefined for the inputs (zero denominator or negative
// discriminant). Callers must treat anything that is not strictly positive
// as a rejection:
//
//	x := network.ParallelCavity(13.0, 1.98, 0.20, 6.875)
//	if !(x > 0) {
//	    // try the next template
//	}
//
// # Topologies
//
//   - [Series]: masonry, log, straw bale, generic constructions
//   - [ParallelCavity]: wood studs, joists and rafters
//   - [DeratedCavity]: steel studs with an empirical correction factor
//   - [TripleParallel]: double-stud walls
//   - [PerimeterSpline]: structural insulated panels
//   - [DualLayer]: concrete masonry units with exterior rigid insulation
//   - [SingleSideSeries]: insulated concrete forms
//
// The quadratic and rational closed forms were derived symbolically; they
// are implemented exactly as derived and covered by round-trip tests against
// the forward functions, which are built on [ParallelR].
package network
