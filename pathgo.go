package pathgo

import (
	"errors"

	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/search"
)

// DefaultWeightAttr is the edge attribute routes cost by unless overridden.
const DefaultWeightAttr = "travel_time"

// DefaultDistanceAttr is the edge attribute accumulated alongside the cost
// for reporting. Routes on graphs without it simply skip the accumulation.
const DefaultDistanceAttr = "length"

// Pathgo runs paced route searches over one graph. It is safe for concurrent
// use; every Route call produces an independent run with its own event
// stream.
type Pathgo struct {
	g       *graph.Graph
	engine  *search.Engine
	logger  *Logger
	metrics MetricsCollector
	opts    options
}

// New creates a Pathgo instance bound to g.
func New(g *graph.Graph, optFns ...Option) (*Pathgo, error) {
	if g == nil {
		return nil, errors.New("pathgo: graph must not be nil")
	}

	opts := applyOptions(optFns)

	p := &Pathgo{
		g:       g,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		opts:    opts,
	}
	p.engine = search.New(g, search.WithLogger(&engineLogger{l: p.logger}))

	return p, nil
}

// MustNew creates a Pathgo instance, panicking on error.
func MustNew(g *graph.Graph, optFns ...Option) *Pathgo {
	p, err := New(g, optFns...)
	if err != nil {
		panic(err)
	}
	return p
}

// Graph returns the graph this instance routes over.
func (p *Pathgo) Graph() *graph.Graph {
	return p.g
}
