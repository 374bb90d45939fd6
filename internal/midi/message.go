// Package midi collects timestamped events and serializes them as a
// Format-1 Standard MIDI File. Channel-voice messages are built with
// gomidi; meta events, system-exclusive framing and the container
// itself are written by hand because the buffer owns ordering and
// delta-time computation.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Division is the SMF ticks-per-quarter value: 96 quanta by 8 subquanta
// by 3 moment parts.
const Division = 96 * 8 * 3

// Meta event type bytes used by the compiler.
const (
	MetaText       = 0x01
	MetaMarker     = 0x06
	MetaCuePoint   = 0x07
	MetaTempo      = 0x51
	MetaEndOfTrack = 0x2f
)

func checkChannel(ch int32) (uint8, error) {
	if ch < 1 || ch > 16 {
		return 0, fmt.Errorf("midi: channel %d out of range 1..16", ch)
	}
	return uint8(ch - 1), nil
}

func check7(name string, v int32) (uint8, error) {
	if v < 0 || v > 127 {
		return 0, fmt.Errorf("midi: %s %d out of range 0..127", name, v)
	}
	return uint8(v), nil
}

func check14(name string, v int32) (uint16, error) {
	if v < 0 || v > 16383 {
		return 0, fmt.Errorf("midi: %s %d out of range 0..16383", name, v)
	}
	return uint16(v), nil
}

// NoteOn builds a Note On message.
func NoteOn(ch, key, vel int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	k, err := check7("key", key)
	if err != nil {
		return nil, err
	}
	v, err := check7("velocity", vel)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.NoteOn(c, k, v)), nil
}

// NoteOff builds a Note Off message carrying a release velocity.
func NoteOff(ch, key, release int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	k, err := check7("key", key)
	if err != nil {
		return nil, err
	}
	r, err := check7("release velocity", release)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.NoteOffVelocity(c, k, r)), nil
}

// ControlChange builds a controller message.
func ControlChange(ch, index, val int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	idx, err := check7("controller index", index)
	if err != nil {
		return nil, err
	}
	v, err := check7("controller value", val)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.ControlChange(c, idx, v)), nil
}

// ProgramChange builds a program change message. The program is the
// zero-based wire value.
func ProgramChange(ch, program int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	p, err := check7("program", program)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.ProgramChange(c, p)), nil
}

// ChannelPressure builds a channel aftertouch message.
func ChannelPressure(ch, val int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	v, err := check7("pressure", val)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.AfterTouch(c, v)), nil
}

// PolyPressure builds a polyphonic key aftertouch message.
func PolyPressure(ch, key, val int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	k, err := check7("key", key)
	if err != nil {
		return nil, err
	}
	v, err := check7("pressure", val)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.PolyAfterTouch(c, k, v)), nil
}

// PitchBend builds a pitch wheel message from the absolute 14-bit
// value, 8192 being center.
func PitchBend(ch, val int32) ([]byte, error) {
	c, err := checkChannel(ch)
	if err != nil {
		return nil, err
	}
	v, err := check14("pitch bend", val)
	if err != nil {
		return nil, err
	}
	return []byte(gomidi.Pitchbend(c, int16(int32(v)-8192))), nil
}

// Meta builds a meta event with the given type byte and payload,
// length-prefixed.
func Meta(typ byte, payload []byte) ([]byte, error) {
	out := []byte{0xff, typ}
	out = append(out, vlq(uint32(len(payload)))...)
	out = append(out, payload...)
	return out, nil
}

// Tempo builds a set-tempo meta event from microseconds per quarter
// note.
func Tempo(us int32) ([]byte, error) {
	if us < 1 || us > 0xffffff {
		return nil, fmt.Errorf("midi: tempo %d out of range 1..16777215", us)
	}
	// 24-bit big-endian microsecond count
	return Meta(MetaTempo, []byte{byte(us >> 16), byte(us >> 8), byte(us)})
}

// SysEx frames a system-exclusive payload. A payload beginning with
// 0xF0 drops that byte and uses the 0xF0 status; anything else is sent
// under the 0xF7 escape status.
func SysEx(payload []byte) ([]byte, error) {
	status := byte(0xf7)
	if len(payload) > 0 && payload[0] == 0xf0 {
		status = 0xf0
		payload = payload[1:]
	}
	out := []byte{status}
	out = append(out, vlq(uint32(len(payload)))...)
	out = append(out, payload...)
	return out, nil
}

// vlq renders a variable-length quantity, most significant septet
// first.
func vlq(n uint32) []byte {
	buf := [5]byte{}
	i := len(buf)
	i--
	buf[i] = byte(n & 0x7f)
	for n >>= 7; n > 0; n >>= 7 {
		i--
		buf[i] = byte(n&0x7f) | 0x80
	}
	return buf[i:]
}
