package ops

import (
	"fmt"

	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/intset"
)

var classifyOps = []opSpec{
	{"classify_art", opClassifyArt},
	{"classify_ruler", opClassifyRuler},
	{"classify_vel", opClassifyVel},
	{"classify_channel", opClassifyChannel},
	{"classify_release", opClassifyRelease},
	{"classify_touch", opClassifyTouch},
	{"overlap", opOverlap},
}

// popSelector pops the three classifier sets: articulations on top,
// then layers, then sections.
func popSelector(m *interp.Machine) (sects, layers, arts *intset.Set, err error) {
	arts, err = m.PopSet()
	if err != nil {
		return
	}
	layers, err = m.PopSet()
	if err != nil {
		return
	}
	sects, err = m.PopSet()
	return
}

func opClassifyArt(c *Context, m *interp.Machine, line int) error {
	a, err := m.PopArt()
	if err != nil {
		return err
	}
	sects, layers, arts, err := popSelector(m)
	if err != nil {
		return err
	}
	c.Pipe.AddArt(sects, layers, arts, a)
	return nil
}

func opClassifyRuler(c *Context, m *interp.Machine, line int) error {
	r, err := m.PopRuler()
	if err != nil {
		return err
	}
	sects, layers, arts, err := popSelector(m)
	if err != nil {
		return err
	}
	c.Pipe.AddRuler(sects, layers, arts, r)
	return nil
}

func opClassifyVel(c *Context, m *interp.Machine, line int) error {
	g, err := m.PopGraph()
	if err != nil {
		return err
	}
	sects, layers, arts, err := popSelector(m)
	if err != nil {
		return err
	}
	c.Pipe.AddGraph(sects, layers, arts, g)
	return nil
}

func opClassifyChannel(c *Context, m *interp.Machine, line int) error {
	ch, err := m.PopInt()
	if err != nil {
		return err
	}
	sects, layers, arts, err := popSelector(m)
	if err != nil {
		return err
	}
	return c.Pipe.AddChannel(sects, layers, arts, ch)
}

func opClassifyRelease(c *Context, m *interp.Machine, line int) error {
	rel, err := m.PopInt()
	if err != nil {
		return err
	}
	sects, layers, arts, err := popSelector(m)
	if err != nil {
		return err
	}
	return c.Pipe.AddRelease(sects, layers, arts, rel)
}

func opClassifyTouch(c *Context, m *interp.Machine, line int) error {
	flag, err := m.PopInt()
	if err != nil {
		return err
	}
	if flag != 0 && flag != 1 {
		return fmt.Errorf("ops: aftertouch flag %d must be 0 or 1", flag)
	}
	sects, layers, arts, err := popSelector(m)
	if err != nil {
		return err
	}
	c.Pipe.AddTouch(sects, layers, arts, flag == 1)
	return nil
}

func opOverlap(c *Context, m *interp.Machine, line int) error {
	flag, err := m.PopInt()
	if err != nil {
		return err
	}
	if flag != 0 && flag != 1 {
		return fmt.Errorf("ops: overlap flag %d must be 0 or 1", flag)
	}
	c.Pipe.SetOverlap(flag == 1)
	return nil
}
