// Package heuristic provides public API for A* heuristic functions over 2-D
// coordinates. A heuristic estimates the remaining cost from a node to the
// goal; search optimality requires the estimate to never exceed the true
// remaining cost under the active edge weight. When weights are not plain
// distances (e.g. travel time), combine a distance heuristic with Scale to
// keep it admissible.
package heuristic

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hupe1980/pathgo/geo"
)

// Kind represents the heuristic used to guide search.
type Kind int

const (
	// KindEuclidean is the straight-line distance in coordinate units.
	KindEuclidean Kind = iota
	// KindManhattan is the L1 distance in coordinate units.
	KindManhattan
	// KindChebyshev is the L-infinity distance in coordinate units.
	KindChebyshev
	// KindGreatCircle is the equirectangular great-circle approximation in
	// meters, for graphs whose coordinates are degrees.
	KindGreatCircle
	// KindZero estimates zero everywhere, degrading A* to uniform-cost
	// search. Always admissible.
	KindZero
)

func (k Kind) String() string {
	switch k {
	case KindEuclidean:
		return "euclidean"
	case KindManhattan:
		return "manhattan"
	case KindChebyshev:
		return "chebyshev"
	case KindGreatCircle:
		return "greatcircle"
	case KindZero:
		return "zero"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind resolves a case-insensitive heuristic name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean":
		return KindEuclidean, nil
	case "manhattan":
		return KindManhattan, nil
	case "chebyshev":
		return KindChebyshev, nil
	case "greatcircle", "great-circle", "haversine":
		return KindGreatCircle, nil
	case "zero", "dijkstra":
		return KindZero, nil
	default:
		return 0, fmt.Errorf("unsupported heuristic: %q", s)
	}
}

// Func is a function type for heuristic estimation between two points.
type Func func(a, b geo.Point) float64

// Provider returns the heuristic function for the given kind.
func Provider(k Kind) (Func, error) {
	switch k {
	case KindEuclidean:
		return geo.Euclidean, nil
	case KindManhattan:
		return geo.Manhattan, nil
	case KindChebyshev:
		return geo.Chebyshev, nil
	case KindGreatCircle:
		return geo.Equirectangular, nil
	case KindZero:
		return Zero, nil
	default:
		return nil, fmt.Errorf("unsupported heuristic: %v", k)
	}
}

// Zero estimates zero remaining cost for any pair of points.
func Zero(_, _ geo.Point) float64 { return 0 }

// Scale multiplies the estimates of f by factor. The usual use is unit
// conversion, e.g. meters to seconds via 1/maxSpeed so a distance heuristic
// stays admissible under travel-time weights.
func Scale(f Func, factor float64) Func {
	return func(a, b geo.Point) float64 {
		return f(a, b) * factor
	}
}

// FromExpr compiles a custom heuristic from an expression over the variables
// ax, ay, bx, by (coordinates of the node and the goal) and dx, dy (their
// absolute deltas). The helpers sqrt(x) and haversine(ax, ay, bx, by) are
// available alongside the expr built-ins. The expression must evaluate to a
// number.
//
//	h, err := heuristic.FromExpr("sqrt((bx-ax)^2 + (by-ay)^2) / 30.0")
//
// Compiled expressions are noticeably slower than the built-in kinds and
// meant for experimentation, not production routing.
func FromExpr(src string) (Func, error) {
	program, err := expr.Compile(src,
		expr.Env(exprEnv(geo.Point{}, geo.Point{})),
		expr.AsFloat64(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile heuristic %q: %w", src, err)
	}

	return func(a, b geo.Point) float64 {
		out, err := runProgram(program, a, b)
		if err != nil {
			// The environment shape is fixed at compile time, so a runtime
			// failure means a genuinely partial expression (e.g. division by
			// zero). Estimating zero keeps the search admissible.
			return 0
		}

		return out
	}, nil
}

func exprEnv(a, b geo.Point) map[string]any {
	return map[string]any{
		"ax":        a.X,
		"ay":        a.Y,
		"bx":        b.X,
		"by":        b.Y,
		"dx":        math.Abs(b.X - a.X),
		"dy":        math.Abs(b.Y - a.Y),
		"sqrt":      math.Sqrt,
		"haversine": haversineVars,
	}
}

// haversineVars is the expression-facing form of geo.Haversine, taking bare
// coordinates instead of Points.
func haversineVars(aLon, aLat, bLon, bLat float64) float64 {
	return geo.Haversine(geo.Point{X: aLon, Y: aLat}, geo.Point{X: bLon, Y: bLat})
}

func runProgram(program *vm.Program, a, b geo.Point) (float64, error) {
	out, err := expr.Run(program, exprEnv(a, b))
	if err != nil {
		return 0, err
	}

	f, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("heuristic expression returned %T", out)
	}

	return f, nil
}
