// Package control translates high-level control requests into MIDI
// events and schedules auto-tracked controllers from graphs. Every
// request takes a pointer; header pointers route the event into the
// buffer's header section.
package control

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/canidlogic/infrared/internal/graph"
	"github.com/canidlogic/infrared/internal/midi"
	"github.com/canidlogic/infrared/internal/nmf"
	"github.com/canidlogic/infrared/internal/pointer"
)

// Type identifies an automation target kind.
type Type int

const (
	TypeTempo Type = iota
	Type7Bit
	Type14Bit
	TypeNRPN
	TypeRPN
	TypePressure
	TypePitch
)

func (t Type) String() string {
	switch t {
	case TypeTempo:
		return "tempo"
	case Type7Bit:
		return "7bit"
	case Type14Bit:
		return "14bit"
	case TypeNRPN:
		return "nrpn"
	case TypeRPN:
		return "rpn"
	case TypePressure:
		return "pressure"
	case TypePitch:
		return "pitch"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

type autoKey struct {
	typ Type
	ch  int32
	idx int32
}

// Engine owns the control-to-MIDI translation for one compilation.
type Engine struct {
	score *nmf.Score
	buf   *midi.Buffer
	auto  map[autoKey]*graph.Graph
	order []autoKey
}

// NewEngine binds a control engine to the score's section table and
// the output buffer.
func NewEngine(score *nmf.Score, buf *midi.Buffer) *Engine {
	return &Engine{score: score, buf: buf, auto: make(map[autoKey]*graph.Graph)}
}

// at resolves a pointer to a moment offset, or to the header section.
func (e *Engine) at(p *pointer.Pointer) (int32, bool, error) {
	if p.IsHeader() {
		return 0, true, nil
	}
	m, err := p.Compute(e.score)
	return m, false, err
}

// Null extends the event range at the pointer without emitting a
// message.
func (e *Engine) Null(p *pointer.Pointer) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	e.buf.Null(m, head)
	return nil
}

// Tempo emits a set-tempo meta event, microseconds per quarter note.
func (e *Engine) Tempo(p *pointer.Pointer, us int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	data, err := midi.Tempo(us)
	if err != nil {
		return err
	}
	return e.buf.Message(m, head, data)
}

// Controller emits a plain 7-bit controller change.
func (e *Engine) Controller(p *pointer.Pointer, ch, idx, val int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	data, err := midi.ControlChange(ch, idx, val)
	if err != nil {
		return err
	}
	return e.buf.Message(m, head, data)
}

// Wide emits a 14-bit controller change as an MSB/LSB pair. The index
// names the MSB controller; the LSB partner sits 0x20 above it.
func (e *Engine) Wide(p *pointer.Pointer, ch, idx, val int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	return e.wideAt(m, head, ch, idx, val)
}

func (e *Engine) wideAt(m int32, head bool, ch, idx, val int32) error {
	if idx < 0 || idx > 0x1f {
		return fmt.Errorf("control: wide controller index %d out of range 0..31", idx)
	}
	if val < 0 || val > 16383 {
		return fmt.Errorf("control: wide controller value %d out of range 0..16383", val)
	}
	msb, err := midi.ControlChange(ch, idx, val>>7)
	if err != nil {
		return err
	}
	lsb, err := midi.ControlChange(ch, idx+0x20, val&0x7f)
	if err != nil {
		return err
	}
	if err := e.buf.Message(m, head, msb); err != nil {
		return err
	}
	return e.buf.Message(m, head, lsb)
}

// NRPN emits a non-registered parameter write: index pair on 0x63/0x62
// followed by the data value on 0x06/0x26.
func (e *Engine) NRPN(p *pointer.Pointer, ch, idx, val int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	return e.paramAt(m, head, ch, idx, val, false)
}

// RPN emits a registered parameter write: index pair on 0x65/0x64
// followed by the data value on 0x06/0x26.
func (e *Engine) RPN(p *pointer.Pointer, ch, idx, val int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	return e.paramAt(m, head, ch, idx, val, true)
}

func (e *Engine) paramAt(m int32, head bool, ch, idx, val int32, registered bool) error {
	if idx < 0 || idx > 16383 {
		return fmt.Errorf("control: parameter index %d out of range 0..16383", idx)
	}
	if val < 0 || val > 16383 {
		return fmt.Errorf("control: parameter value %d out of range 0..16383", val)
	}
	idxMSB, idxLSB := int32(0x63), int32(0x62)
	if registered {
		idxMSB, idxLSB = 0x65, 0x64
	}
	seq := [][2]int32{
		{idxMSB, idx >> 7},
		{idxLSB, idx & 0x7f},
		{0x06, val >> 7},
		{0x26, val & 0x7f},
	}
	for _, cv := range seq {
		data, err := midi.ControlChange(ch, cv[0], cv[1])
		if err != nil {
			return err
		}
		if err := e.buf.Message(m, head, data); err != nil {
			return err
		}
	}
	return nil
}

// Pressure emits a channel aftertouch message.
func (e *Engine) Pressure(p *pointer.Pointer, ch, val int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	data, err := midi.ChannelPressure(ch, val)
	if err != nil {
		return err
	}
	return e.buf.Message(m, head, data)
}

// Pitch emits a pitch wheel message from the absolute 14-bit value.
func (e *Engine) Pitch(p *pointer.Pointer, ch, val int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	data, err := midi.PitchBend(ch, val)
	if err != nil {
		return err
	}
	return e.buf.Message(m, head, data)
}

// Instrument emits a bank select pair followed by a program change.
// Bank and program are one-based.
func (e *Engine) Instrument(p *pointer.Pointer, ch, bank, program int32) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	if bank < 1 || bank > 16384 {
		return fmt.Errorf("control: bank %d out of range 1..16384", bank)
	}
	if program < 1 || program > 128 {
		return fmt.Errorf("control: program %d out of range 1..128", program)
	}
	wire := bank - 1
	msb, err := midi.ControlChange(ch, 0x00, wire>>7)
	if err != nil {
		return err
	}
	lsb, err := midi.ControlChange(ch, 0x20, wire&0x7f)
	if err != nil {
		return err
	}
	pc, err := midi.ProgramChange(ch, program-1)
	if err != nil {
		return err
	}
	for _, data := range [][]byte{msb, lsb, pc} {
		if err := e.buf.Message(m, head, data); err != nil {
			return err
		}
	}
	return nil
}

// System emits a system-exclusive message from a blob payload.
func (e *Engine) System(p *pointer.Pointer, payload []byte) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	data, err := midi.SysEx(payload)
	if err != nil {
		return err
	}
	return e.buf.Message(m, head, data)
}

// MetaText emits a text-class meta event (text, marker or cue point).
func (e *Engine) MetaText(p *pointer.Pointer, typ byte, text string) error {
	m, head, err := e.at(p)
	if err != nil {
		return err
	}
	data, err := midi.Meta(typ, []byte(text))
	if err != nil {
		return err
	}
	return e.buf.Message(m, head, data)
}

// Auto registers a graph-driven automation target. The last
// registration for a (type, channel, index) triple wins.
func (e *Engine) Auto(typ Type, ch, idx int32, g *graph.Graph) error {
	switch typ {
	case TypeTempo:
		ch, idx = 0, 0
	case Type7Bit:
		if !(idx >= 0x40 && idx <= 0x5f) && !(idx >= 0x66 && idx <= 0x77) {
			return fmt.Errorf("control: 7-bit auto index 0x%02x not assignable", idx)
		}
	case Type14Bit:
		if idx < 0x01 || idx > 0x1f || idx == 0x06 {
			return fmt.Errorf("control: 14-bit auto index 0x%02x not assignable", idx)
		}
	case TypeNRPN, TypeRPN:
		if idx < 0 || idx > 16383 {
			return fmt.Errorf("control: parameter auto index %d out of range", idx)
		}
	case TypePressure, TypePitch:
		idx = 0
	default:
		return fmt.Errorf("control: unknown auto type %d", typ)
	}
	if typ != TypeTempo {
		if _, err := checkAutoChannel(ch); err != nil {
			return err
		}
	}
	k := autoKey{typ: typ, ch: ch, idx: idx}
	if _, ok := e.auto[k]; !ok {
		e.order = append(e.order, k)
	}
	e.auto[k] = g
	return nil
}

func checkAutoChannel(ch int32) (int32, error) {
	if ch < 1 || ch > 16 {
		return 0, fmt.Errorf("control: channel %d out of range 1..16", ch)
	}
	return ch, nil
}

// Track renders every registered automation over the final event
// range. It must run after all other events have been buffered.
func (e *Engine) Track() error {
	lo, ok := e.buf.RangeLower()
	if !ok {
		return nil
	}
	hi, _ := e.buf.RangeUpper()
	tStart, err := pointer.Pack(lo, pointer.Start)
	if err != nil {
		return err
	}
	tEnd, err := pointer.Pack(hi, pointer.End)
	if err != nil {
		return err
	}
	for _, k := range e.order {
		g := e.auto[k]
		var emitErr error
		count := 0
		g.Track(tStart, tEnd, true, -1, func(t, v int32) {
			if emitErr != nil {
				return
			}
			emitErr = e.emitAuto(k, t, v)
			count++
		})
		if emitErr != nil {
			return emitErr
		}
		glog.V(2).Infof("auto %v channel %d index %d: %d events", k.typ, k.ch, k.idx, count)
	}
	return nil
}

func (e *Engine) emitAuto(k autoKey, t, v int32) error {
	switch k.typ {
	case TypeTempo:
		data, err := midi.Tempo(v)
		if err != nil {
			return err
		}
		return e.buf.Message(t, false, data)
	case Type7Bit:
		data, err := midi.ControlChange(k.ch, k.idx, v)
		if err != nil {
			return err
		}
		return e.buf.Message(t, false, data)
	case Type14Bit:
		return e.wideAt(t, false, k.ch, k.idx, v)
	case TypeNRPN:
		return e.paramAt(t, false, k.ch, k.idx, v, false)
	case TypeRPN:
		return e.paramAt(t, false, k.ch, k.idx, v, true)
	case TypePressure:
		data, err := midi.ChannelPressure(k.ch, v)
		if err != nil {
			return err
		}
		return e.buf.Message(t, false, data)
	case TypePitch:
		data, err := midi.PitchBend(k.ch, v)
		if err != nil {
			return err
		}
		return e.buf.Message(t, false, data)
	}
	return fmt.Errorf("control: unknown auto type %d", k.typ)
}
