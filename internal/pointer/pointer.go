// Package pointer implements the cursor into score time and the moment
// packing algebra. A pointer is either a header marker, used for events
// that belong in the header buffer, or a position built from a section
// base, a quantum offset, an optional grace placement, a subquantum
// tilt and a moment part.
package pointer

import (
	"fmt"

	"github.com/canidlogic/infrared/internal/artic"
	"github.com/canidlogic/infrared/internal/nmf"
)

// Part selects one third of a subquantum.
type Part int32

const (
	Start  Part = 0
	Middle Part = 1
	End    Part = 2
)

func (p Part) String() string {
	switch p {
	case Start:
		return "start"
	case Middle:
		return "middle"
	case End:
		return "end"
	}
	return fmt.Sprintf("part(%d)", int32(p))
}

// Pack converts a subquantum offset and a moment part to a moment
// offset.
func Pack(subq int32, part Part) (int32, error) {
	if part < Start || part > End {
		return 0, fmt.Errorf("pointer: invalid moment part %d", part)
	}
	return artic.CheckInt(int64(subq)*3 + int64(part))
}

// Unpack splits a moment offset into its subquantum offset and moment
// part, rounding toward negative infinity for negative moments.
func Unpack(m int32) (int32, Part) {
	subq := m / 3
	part := m % 3
	if part < 0 {
		subq--
		part += 3
	}
	return subq, Part(part)
}

// Pointer is the mutable score-time cursor. A pointer from New starts
// as the header marker; the zero Pointer value is not a header marker.
type Pointer struct {
	header     bool
	sect       int32
	quanta     int32
	grace      int32
	graceRuler artic.Ruler
	tilt       int32
	part       Part
}

// New returns a header pointer.
func New() *Pointer {
	return &Pointer{header: true}
}

// IsHeader reports whether the pointer is still the header marker.
func (p *Pointer) IsHeader() bool {
	return p.header
}

// Reset returns the pointer to the header state.
func (p *Pointer) Reset() {
	*p = Pointer{header: true}
}

// Jump positions the pointer at the start of a section, clearing every
// downstream field. Leaving the header state initializes the moment
// part to Middle.
func (p *Pointer) Jump(sect int32) error {
	if sect < 0 {
		return fmt.Errorf("pointer: section %d must be non-negative", sect)
	}
	part := p.part
	if p.header {
		part = Middle
	}
	*p = Pointer{sect: sect, part: part}
	return nil
}

// Seek sets the quantum offset within the section, clearing the grace
// placement and tilt.
func (p *Pointer) Seek(quanta int32) error {
	if p.header {
		return fmt.Errorf("pointer: seek on header pointer")
	}
	p.quanta = quanta
	p.grace = 0
	p.graceRuler = artic.Ruler{}
	p.tilt = 0
	return nil
}

// Advance moves the quantum offset relative to its current value,
// clearing the grace placement and tilt.
func (p *Pointer) Advance(quanta int32) error {
	if p.header {
		return fmt.Errorf("pointer: advance on header pointer")
	}
	q, err := artic.CheckInt(int64(p.quanta) + int64(quanta))
	if err != nil {
		return err
	}
	p.quanta = q
	p.grace = 0
	p.graceRuler = artic.Ruler{}
	p.tilt = 0
	return nil
}

// Grace selects the i-th grace note position before the current beat
// under the given ruler, clearing the tilt. A zero index clears the
// grace placement instead.
func (p *Pointer) Grace(i int32, r artic.Ruler) error {
	if p.header {
		return fmt.Errorf("pointer: grace on header pointer")
	}
	if i > 0 {
		return fmt.Errorf("pointer: grace index %d must be non-positive", i)
	}
	p.grace = i
	if i < 0 {
		p.graceRuler = r
	} else {
		p.graceRuler = artic.Ruler{}
	}
	p.tilt = 0
	return nil
}

// Tilt offsets the pointer by a signed number of subquanta.
func (p *Pointer) Tilt(subq int32) error {
	if p.header {
		return fmt.Errorf("pointer: tilt on header pointer")
	}
	p.tilt = subq
	return nil
}

// Moment selects the moment part.
func (p *Pointer) Moment(part Part) error {
	if p.header {
		return fmt.Errorf("pointer: moment on header pointer")
	}
	if part < Start || part > End {
		return fmt.Errorf("pointer: invalid moment part %d", part)
	}
	p.part = part
	return nil
}

// Compute resolves the pointer against the score's section table and
// returns the absolute moment offset. Header pointers do not compute.
func (p *Pointer) Compute(score *nmf.Score) (int32, error) {
	if p.header {
		return 0, fmt.Errorf("pointer: header pointer has no position")
	}
	base, err := score.SectionBase(p.sect)
	if err != nil {
		return 0, err
	}
	q, err := artic.CheckInt(int64(base) + int64(p.quanta))
	if err != nil {
		return 0, err
	}
	subq, err := artic.CheckInt(int64(q) * artic.SubPerQuantum)
	if err != nil {
		return 0, err
	}
	if p.grace < 0 {
		subq, err = p.graceRuler.Pos(subq, p.grace)
		if err != nil {
			return 0, err
		}
	}
	subq, err = artic.CheckInt(int64(subq) + int64(p.tilt))
	if err != nil {
		return 0, err
	}
	return Pack(subq, p.part)
}
