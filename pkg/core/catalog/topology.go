package catalog

import (
	"fmt"

	"github.com/matzehuels/rfit/pkg/errors"
)

// Topology identifies the heat-flow circuit of a construction template and
// therefore which closed-form equation solves it.
type Topology int

const (
	// Series stacks every layer in one path. Masonry, log, straw bale and
	// every generic fallback use it.
	Series Topology = iota
	// ParallelCavity is a wood-framed cavity: framing in parallel with the
	// cavity insulation.
	ParallelCavity
	// DeratedCavity is a steel-framed cavity whose bridging is captured by a
	// correction factor.
	DeratedCavity
	// TripleParallel is a double-stud wall with a stud path, a misc framing
	// path and a three-depth cavity path.
	TripleParallel
	// PerimeterSpline is a structural insulated panel with framing, spline
	// and core paths.
	PerimeterSpline
	// DualLayer is a concrete masonry wall with rigid insulation in series
	// outside the framing/block split.
	DualLayer
	// SingleSideSeries is an insulated concrete form wall with form
	// insulation on both faces of the concrete.
	SingleSideSeries
)

var topologyNames = [...]string{
	Series:           "series",
	ParallelCavity:   "parallel_cavity",
	DeratedCavity:    "derated_cavity",
	TripleParallel:   "triple_parallel",
	PerimeterSpline:  "perimeter_spline",
	DualLayer:        "dual_layer",
	SingleSideSeries: "single_side_series",
}

// Topologies returns every topology in declaration order.
func Topologies() []Topology {
	return []Topology{Series, ParallelCavity, DeratedCavity, TripleParallel, PerimeterSpline, DualLayer, SingleSideSeries}
}

// Valid reports whether t is a known topology.
func (t Topology) Valid() bool {
	return t >= Series && t <= SingleSideSeries
}

func (t Topology) String() string {
	if !t.Valid() {
		return fmt.Sprintf("topology(%d)", int(t))
	}
	return topologyNames[t]
}

// Unknown names the one quantity a template of this topology leaves free.
func (t Topology) Unknown() string {
	switch t {
	case Series:
		return "layer resistance"
	case ParallelCavity, DeratedCavity:
		return "cavity insulation"
	case TripleParallel:
		return "cavity insulation per stud depth"
	case PerimeterSpline:
		return "core insulation"
	case DualLayer:
		return "rigid insulation"
	case SingleSideSeries:
		return "form insulation per face"
	}
	return "unknown"
}

// ParseTopology converts a topology name back into a Topology.
func ParseTopology(s string) (Topology, error) {
	for i, name := range topologyNames {
		if name == s {
			return Topology(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidTemplate, "unknown topology %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Topology) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidTemplate, "unknown topology %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Topology) UnmarshalText(b []byte) error {
	v, err := ParseTopology(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
