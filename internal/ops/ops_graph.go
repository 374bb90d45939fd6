package ops

import (
	"fmt"

	"github.com/canidlogic/infrared/internal/graph"
	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/value"
)

var graphOps = []opSpec{
	{"begin_graph", opBeginGraph},
	{"end_graph", opEndGraph},
	{"graph", opGraphConst},
	{"const", opConst},
	{"ramp", opRamp},
	{"ramp_log", opRampLog},
	{"derive", opDerive},
}

func (c *Context) openGraph() (*graph.Accum, error) {
	if c.acc == nil {
		return nil, fmt.Errorf("ops: no graph open")
	}
	return c.acc, nil
}

// popMoment pops a pointer and resolves it to a moment offset.
func (c *Context) popMoment(m *interp.Machine) (int32, error) {
	p, err := m.PopPointer()
	if err != nil {
		return 0, err
	}
	return p.Compute(c.Score)
}

func opBeginGraph(c *Context, m *interp.Machine, line int) error {
	if c.acc != nil {
		return fmt.Errorf("ops: graph already open")
	}
	c.acc = graph.NewAccum(c.Cache)
	return nil
}

func opEndGraph(c *Context, m *interp.Machine, line int) error {
	acc, err := c.openGraph()
	if err != nil {
		return err
	}
	g, err := acc.End()
	if err != nil {
		return err
	}
	c.acc = nil
	return m.Push(value.Graph(g))
}

// opGraphConst pushes the interned constant graph for a value without
// opening an accumulator.
func opGraphConst(c *Context, m *interp.Machine, line int) error {
	v, err := m.PopInt()
	if err != nil {
		return err
	}
	g, err := c.Cache.Constant(v)
	if err != nil {
		return err
	}
	return m.Push(value.Graph(g))
}

func opConst(c *Context, m *interp.Machine, line int) error {
	acc, err := c.openGraph()
	if err != nil {
		return err
	}
	v, err := m.PopInt()
	if err != nil {
		return err
	}
	t, err := c.popMoment(m)
	if err != nil {
		return err
	}
	return acc.Const(t, v)
}

func rampCommon(c *Context, m *interp.Machine, logRamp bool) error {
	acc, err := c.openGraph()
	if err != nil {
		return err
	}
	step, err := m.PopInt()
	if err != nil {
		return err
	}
	v1, err := m.PopInt()
	if err != nil {
		return err
	}
	v0, err := m.PopInt()
	if err != nil {
		return err
	}
	t, err := c.popMoment(m)
	if err != nil {
		return err
	}
	return acc.Ramp(t, v0, v1, step, logRamp)
}

func opRamp(c *Context, m *interp.Machine, line int) error {
	return rampCommon(c, m, false)
}

func opRampLog(c *Context, m *interp.Machine, line int) error {
	return rampCommon(c, m, true)
}

func opDerive(c *Context, m *interp.Machine, line int) error {
	acc, err := c.openGraph()
	if err != nil {
		return err
	}
	maxV, err := m.PopInt()
	if err != nil {
		return err
	}
	minV, err := m.PopInt()
	if err != nil {
		return err
	}
	cadd, err := m.PopInt()
	if err != nil {
		return err
	}
	den, err := m.PopInt()
	if err != nil {
		return err
	}
	num, err := m.PopInt()
	if err != nil {
		return err
	}
	tSrc, err := c.popMoment(m)
	if err != nil {
		return err
	}
	src, err := m.PopGraph()
	if err != nil {
		return err
	}
	t, err := c.popMoment(m)
	if err != nil {
		return err
	}
	return acc.Derived(t, src, tSrc, num, den, cadd, minV, maxV)
}
