package ops

import (
	"fmt"

	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/intset"
	"github.com/canidlogic/infrared/internal/value"
)

var setOps = []opSpec{
	{"begin_set", opBeginSet},
	{"end_set", opEndSet},
	{"all", opAll},
	{"none", opNone},
	{"invert", opInvert},
	{"include", opInclude},
	{"exclude", opExclude},
	{"include_from", opIncludeFrom},
	{"exclude_from", opExcludeFrom},
	{"union", opUnion},
	{"intersect", opIntersect},
	{"except", opExcept},
}

func (c *Context) openSet() (*intset.Builder, error) {
	if c.setb == nil {
		return nil, fmt.Errorf("ops: no set definition open")
	}
	return c.setb, nil
}

func opBeginSet(c *Context, m *interp.Machine, line int) error {
	if c.setb != nil {
		return fmt.Errorf("ops: set definition already open")
	}
	c.setb = intset.NewBuilder()
	return nil
}

func opEndSet(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	s, err := b.End()
	if err != nil {
		return err
	}
	c.setb = nil
	return m.Push(value.Set(s))
}

func opAll(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	b.All()
	return nil
}

func opNone(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	b.None()
	return nil
}

func opInvert(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	b.Invert()
	return nil
}

func popRange(m *interp.Machine) (lo, hi int32, err error) {
	hi, err = m.PopInt()
	if err != nil {
		return
	}
	lo, err = m.PopInt()
	return
}

func opInclude(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	lo, hi, err := popRange(m)
	if err != nil {
		return err
	}
	return b.Include(lo, hi)
}

func opExclude(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	lo, hi, err := popRange(m)
	if err != nil {
		return err
	}
	return b.Exclude(lo, hi)
}

func opIncludeFrom(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	lo, err := m.PopInt()
	if err != nil {
		return err
	}
	return b.IncludeFrom(lo)
}

func opExcludeFrom(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	lo, err := m.PopInt()
	if err != nil {
		return err
	}
	return b.ExcludeFrom(lo)
}

func opUnion(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	s, err := m.PopSet()
	if err != nil {
		return err
	}
	return b.Union(s)
}

func opIntersect(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	s, err := m.PopSet()
	if err != nil {
		return err
	}
	return b.Intersect(s)
}

func opExcept(c *Context, m *interp.Machine, line int) error {
	b, err := c.openSet()
	if err != nil {
		return err
	}
	s, err := m.PopSet()
	if err != nil {
		return err
	}
	return b.Except(s)
}
