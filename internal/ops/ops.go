// Package ops binds the script verbs to the engine subsystems. One
// Context owns the per-compilation engines and the open-build state of
// the set and graph accumulators.
package ops

import (
	"fmt"

	"github.com/canidlogic/infrared/internal/control"
	"github.com/canidlogic/infrared/internal/graph"
	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/intset"
	"github.com/canidlogic/infrared/internal/midi"
	"github.com/canidlogic/infrared/internal/nmf"
	"github.com/canidlogic/infrared/internal/render"
)

// Context carries everything a verb can reach.
type Context struct {
	Score *nmf.Score
	Cache *graph.Cache
	Buf   *midi.Buffer
	Ctl   *control.Engine
	Pipe  *render.Pipeline

	setb *intset.Builder
	acc  *graph.Accum
}

// NewContext wires a context for one compilation.
func NewContext(score *nmf.Score) *Context {
	cache := graph.NewCache()
	buf := midi.NewBuffer()
	return &Context{
		Score: score,
		Cache: cache,
		Buf:   buf,
		Ctl:   control.NewEngine(score, buf),
		Pipe:  render.NewPipeline(cache),
	}
}

// CheckClosed verifies no accumulator is still open at end of script.
func (c *Context) CheckClosed() error {
	if c.setb != nil {
		return fmt.Errorf("ops: set definition still open at end of script")
	}
	if c.acc != nil {
		return fmt.Errorf("ops: graph still open at end of script")
	}
	return nil
}

type opSpec struct {
	name string
	fn   func(c *Context, m *interp.Machine, line int) error
}

// Install registers every verb on the machine.
func Install(c *Context, m *interp.Machine) error {
	var specs []opSpec
	specs = append(specs, coreOps...)
	specs = append(specs, recordOps...)
	specs = append(specs, setOps...)
	specs = append(specs, graphOps...)
	specs = append(specs, classifyOps...)
	specs = append(specs, controlOps...)
	for _, s := range specs {
		s := s
		if err := m.Register(s.name, func(m *interp.Machine, line int) error {
			return s.fn(c, m, line)
		}); err != nil {
			return err
		}
	}
	return nil
}
