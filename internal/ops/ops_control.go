package ops

import (
	"github.com/canidlogic/infrared/internal/control"
	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/midi"
	"github.com/canidlogic/infrared/internal/pointer"
)

var controlOps = []opSpec{
	{"null", opNull},
	{"tempo", opTempo},
	{"controller", opController},
	{"wide", opWide},
	{"nrpn", opNRPN},
	{"rpn", opRPN},
	{"pressure", opPressure},
	{"pitch", opPitch},
	{"instrument", opInstrument},
	{"system", opSystem},
	{"marker", opMarker},
	{"text", opText},
	{"cue", opCue},
	{"auto_tempo", opAutoTempo},
	{"auto_controller", opAutoController},
	{"auto_wide", opAutoWide},
	{"auto_nrpn", opAutoNRPN},
	{"auto_rpn", opAutoRPN},
	{"auto_pressure", opAutoPressure},
	{"auto_pitch", opAutoPitch},
}

func opNull(c *Context, m *interp.Machine, line int) error {
	p, err := m.PopPointer()
	if err != nil {
		return err
	}
	return c.Ctl.Null(p)
}

// popIntsThenPointer pops n integers (last operand on top) and then
// the pointer beneath them.
func popIntsThenPointer(m *interp.Machine, n int) (*pointer.Pointer, []int32, error) {
	vals := make([]int32, n)
	for i := n - 1; i >= 0; i-- {
		v, err := m.PopInt()
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
	}
	p, err := m.PopPointer()
	if err != nil {
		return nil, nil, err
	}
	return p, vals, nil
}

func opTempo(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 1)
	if err != nil {
		return err
	}
	return c.Ctl.Tempo(p, v[0])
}

func opController(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 3)
	if err != nil {
		return err
	}
	return c.Ctl.Controller(p, v[0], v[1], v[2])
}

func opWide(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 3)
	if err != nil {
		return err
	}
	return c.Ctl.Wide(p, v[0], v[1], v[2])
}

func opNRPN(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 3)
	if err != nil {
		return err
	}
	return c.Ctl.NRPN(p, v[0], v[1], v[2])
}

func opRPN(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 3)
	if err != nil {
		return err
	}
	return c.Ctl.RPN(p, v[0], v[1], v[2])
}

func opPressure(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 2)
	if err != nil {
		return err
	}
	return c.Ctl.Pressure(p, v[0], v[1])
}

func opPitch(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 2)
	if err != nil {
		return err
	}
	return c.Ctl.Pitch(p, v[0], v[1])
}

func opInstrument(c *Context, m *interp.Machine, line int) error {
	p, v, err := popIntsThenPointer(m, 3)
	if err != nil {
		return err
	}
	return c.Ctl.Instrument(p, v[0], v[1], v[2])
}

func opSystem(c *Context, m *interp.Machine, line int) error {
	b, err := m.PopBlob()
	if err != nil {
		return err
	}
	p, err := m.PopPointer()
	if err != nil {
		return err
	}
	return c.Ctl.System(p, b)
}

func metaTextCommon(c *Context, m *interp.Machine, typ byte) error {
	t, err := m.PopText()
	if err != nil {
		return err
	}
	p, err := m.PopPointer()
	if err != nil {
		return err
	}
	return c.Ctl.MetaText(p, typ, t)
}

func opMarker(c *Context, m *interp.Machine, line int) error {
	return metaTextCommon(c, m, midi.MetaMarker)
}

func opText(c *Context, m *interp.Machine, line int) error {
	return metaTextCommon(c, m, midi.MetaText)
}

func opCue(c *Context, m *interp.Machine, line int) error {
	return metaTextCommon(c, m, midi.MetaCuePoint)
}

func opAutoTempo(c *Context, m *interp.Machine, line int) error {
	g, err := m.PopGraph()
	if err != nil {
		return err
	}
	return c.Ctl.Auto(control.TypeTempo, 0, 0, g)
}

func autoCommon(c *Context, m *interp.Machine, typ control.Type, withIndex bool) error {
	g, err := m.PopGraph()
	if err != nil {
		return err
	}
	var idx int32
	if withIndex {
		idx, err = m.PopInt()
		if err != nil {
			return err
		}
	}
	ch, err := m.PopInt()
	if err != nil {
		return err
	}
	return c.Ctl.Auto(typ, ch, idx, g)
}

func opAutoController(c *Context, m *interp.Machine, line int) error {
	return autoCommon(c, m, control.Type7Bit, true)
}

func opAutoWide(c *Context, m *interp.Machine, line int) error {
	return autoCommon(c, m, control.Type14Bit, true)
}

func opAutoNRPN(c *Context, m *interp.Machine, line int) error {
	return autoCommon(c, m, control.TypeNRPN, true)
}

func opAutoRPN(c *Context, m *interp.Machine, line int) error {
	return autoCommon(c, m, control.TypeRPN, true)
}

func opAutoPressure(c *Context, m *interp.Machine, line int) error {
	return autoCommon(c, m, control.TypePressure, false)
}

func opAutoPitch(c *Context, m *interp.Machine, line int) error {
	return autoCommon(c, m, control.TypePitch, false)
}
