package ops

import (
	"github.com/canidlogic/infrared/internal/artic"
	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/value"
)

var recordOps = []opSpec{
	{"art", opArt},
	{"ruler", opRuler},
}

// opArt builds an articulation from numerator, denominator, bumper and
// gap.
func opArt(c *Context, m *interp.Machine, line int) error {
	gap, err := m.PopInt()
	if err != nil {
		return err
	}
	bumper, err := m.PopInt()
	if err != nil {
		return err
	}
	denom, err := m.PopInt()
	if err != nil {
		return err
	}
	num, err := m.PopInt()
	if err != nil {
		return err
	}
	a, err := artic.New(num, denom, bumper, gap)
	if err != nil {
		return err
	}
	return m.Push(value.Art(a))
}

// opRuler builds a grace-note ruler from slot and gap.
func opRuler(c *Context, m *interp.Machine, line int) error {
	gap, err := m.PopInt()
	if err != nil {
		return err
	}
	slot, err := m.PopInt()
	if err != nil {
		return err
	}
	r, err := artic.NewRuler(slot, gap)
	if err != nil {
		return err
	}
	return m.Push(value.Ruler(r))
}
