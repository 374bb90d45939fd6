package midi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelMessages(t *testing.T) {
	on, err := NoteOn(1, 60, 100)
	require.NoError(t, err)
	require.Equal(t, []byte{0x90, 60, 100}, on)

	off, err := NoteOff(2, 61, 40)
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 61, 40}, off)

	cc, err := ControlChange(16, 0x40, 127)
	require.NoError(t, err)
	require.Equal(t, []byte{0xbf, 0x40, 127}, cc)

	pc, err := ProgramChange(2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc1, 4}, pc)

	cp, err := ChannelPressure(1, 99)
	require.NoError(t, err)
	require.Equal(t, []byte{0xd0, 99}, cp)

	pp, err := PolyPressure(1, 60, 33)
	require.NoError(t, err)
	require.Equal(t, []byte{0xa0, 60, 33}, pp)

	pb, err := PitchBend(1, 8192)
	require.NoError(t, err)
	require.Equal(t, []byte{0xe0, 0x00, 0x40}, pb)
}

func TestChannelRangeChecks(t *testing.T) {
	_, err := NoteOn(0, 60, 100)
	require.Error(t, err)
	_, err = NoteOn(17, 60, 100)
	require.Error(t, err)
	_, err = NoteOn(1, 128, 100)
	require.Error(t, err)
	_, err = PitchBend(1, 16384)
	require.Error(t, err)
}

func TestTempoMeta(t *testing.T) {
	data, err := Tempo(1000000)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0x51, 0x03, 0x0f, 0x42, 0x40}, data)

	_, err = Tempo(0)
	require.Error(t, err)
	_, err = Tempo(0x1000000)
	require.Error(t, err)
}

func TestSysExFraming(t *testing.T) {
	// a payload with the leading 0xF0 moves it into the status byte
	data, err := SysEx([]byte{0xf0, 0x43, 0x12, 0xf7})
	require.NoError(t, err)
	require.Equal(t, []byte{0xf0, 0x03, 0x43, 0x12, 0xf7}, data)

	// anything else travels under the escape status
	data, err = SysEx([]byte{0x43, 0x12})
	require.NoError(t, err)
	require.Equal(t, []byte{0xf7, 0x02, 0x43, 0x12}, data)
}

func TestVLQ(t *testing.T) {
	require.Equal(t, []byte{0x00}, vlq(0))
	require.Equal(t, []byte{0x7f}, vlq(0x7f))
	require.Equal(t, []byte{0x81, 0x00}, vlq(0x80))
	require.Equal(t, []byte{0x82, 0x2c}, vlq(300))
	require.Equal(t, []byte{0xff, 0x7f}, vlq(0x3fff))
	require.Equal(t, []byte{0x81, 0x80, 0x00}, vlq(0x4000))
}

func TestSerializeSingleEvent(t *testing.T) {
	b := NewBuffer()
	b.Null(0, false)
	on, _ := NoteOn(1, 60, 100)
	require.NoError(t, b.Message(300, false, on))

	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))
	got := buf.Bytes()

	wantHeader := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 1, 0x09, 0x00}
	require.Equal(t, wantHeader, got[:14])

	track := []byte{
		0x82, 0x2c, 0x90, 60, 100, // delta 300, note on
		0x00, 0xff, 0x2f, 0x00, // end of track at the range bound
	}
	want := append([]byte{'M', 'T', 'r', 'k', 0, 0, 0, byte(len(track))}, track...)
	require.Equal(t, want, got[14:])
}

func TestSerializeOrdering(t *testing.T) {
	b := NewBuffer()
	first, _ := ControlChange(1, 0x40, 1)
	second, _ := ControlChange(1, 0x40, 2)
	third, _ := ControlChange(1, 0x40, 3)
	head, _ := Tempo(500000)

	// inserted out of time order; same-moment events keep insertion
	// order; header events lead
	require.NoError(t, b.Message(96, false, second))
	require.NoError(t, b.Message(0, false, first))
	require.NoError(t, b.Message(96, false, third))
	require.NoError(t, b.Message(0, true, head))

	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))
	track := buf.Bytes()[22:]

	want := []byte{
		0x00, 0xff, 0x51, 0x03, 0x07, 0xa1, 0x20, // header tempo
		0x00, 0xb0, 0x40, 0x01, // moment 0
		0x60, 0xb0, 0x40, 0x02, // moment 96
		0x00, 0xb0, 0x40, 0x03, // same moment, insertion order
		0x00, 0xff, 0x2f, 0x00,
	}
	require.Equal(t, want, track)
}

func TestDeltaSumMatchesRange(t *testing.T) {
	b := NewBuffer()
	b.Null(-10, false)
	on, _ := NoteOn(1, 60, 100)
	off, _ := NoteOn(1, 60, 0)
	require.NoError(t, b.Message(1, false, on))
	require.NoError(t, b.Message(240, false, off))
	b.Null(200, false)

	lo, ok := b.RangeLower()
	require.True(t, ok)
	require.Equal(t, int32(-10), lo)
	hi, _ := b.RangeUpper()
	require.Equal(t, int32(80), hi)

	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))
	track := buf.Bytes()[22:]

	var sum int64
	for i := 0; i < len(track); {
		var delta int64
		for {
			c := track[i]
			i++
			delta = delta<<7 | int64(c&0x7f)
			if c&0x80 == 0 {
				break
			}
		}
		sum += delta
		// skip the event body
		switch {
		case track[i] == 0xff:
			i += 2 + int(track[i+2]) + 1
		case track[i]&0xf0 == 0xc0 || track[i]&0xf0 == 0xd0:
			i += 2
		default:
			i += 3
		}
	}
	require.Equal(t, int64(hi)*3-int64(lo)*3, sum)
}

func TestEmptyBufferSerializes(t *testing.T) {
	b := NewBuffer()
	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))
	require.Equal(t, []byte{0x00, 0xff, 0x2f, 0x00}, buf.Bytes()[22:])
}

// findTempo scans an SMF byte stream for the first set-tempo event and
// returns its microsecond value.
func findTempo(data []byte) (uint32, bool) {
	for i := 0; i+5 < len(data); i++ {
		if data[i] == 0xff && data[i+1] == 0x51 && data[i+2] == 0x03 {
			return uint32(data[i+3])<<16 | uint32(data[i+4])<<8 | uint32(data[i+5]), true
		}
	}
	return 0, false
}

func TestTempoScan(t *testing.T) {
	b := NewBuffer()
	tempo, _ := Tempo(250000)
	require.NoError(t, b.Message(0, true, tempo))
	var buf bytes.Buffer
	require.NoError(t, b.Serialize(&buf))
	us, ok := findTempo(buf.Bytes())
	require.True(t, ok)
	require.Equal(t, uint32(250000), us)
}
