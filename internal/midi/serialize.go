package midi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Serialize writes the buffered events as a Format-1 SMF with a single
// track. Delta times are relative to the lower event-range bound;
// header events come first at the track start time. The final delta
// carries the End of Track out to the upper range bound.
func (b *Buffer) Serialize(w io.Writer) error {
	track, err := b.trackBytes()
	if err != nil {
		return err
	}
	// MThd: format 1, one track, Division ticks per quarter
	header := []byte{
		'M', 'T', 'h', 'd',
		0, 0, 0, 6,
		0, 1,
		0, 1,
		byte(Division >> 8), byte(Division & 0xff),
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("midi: write header: %v", err)
	}
	chunk := []interface{}{
		[]byte{'M', 'T', 'r', 'k'},
		uint32(len(track)),
		track,
	}
	for _, v := range chunk {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return fmt.Errorf("midi: write track: %v", err)
		}
	}
	return nil
}

func (b *Buffer) trackBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	lo, hi := b.lo, b.hi
	if !b.haveRange {
		lo, hi = 0, 0
	}
	base := int64(lo) * 3
	at := base
	put := func(delta int64, data []byte) error {
		if delta < 0 {
			return fmt.Errorf("midi: negative delta time %d", delta)
		}
		if delta > 0x0fffffff {
			return fmt.Errorf("midi: delta time %d exceeds the four-byte limit", delta)
		}
		buf.Write(vlq(uint32(delta)))
		buf.Write(data)
		return nil
	}
	for _, e := range b.head {
		if err := put(0, e.data); err != nil {
			return nil, err
		}
	}
	for _, e := range b.ordered() {
		if err := put(int64(e.moment)-at, e.data); err != nil {
			return nil, err
		}
		at = int64(e.moment)
	}
	// Carry the End of Track out to the upper range bound; events past
	// it (end-part moments in the final subquantum) close immediately.
	tail := int64(hi)*3 - at
	if tail < 0 {
		tail = 0
	}
	eot, _ := Meta(MetaEndOfTrack, nil)
	if err := put(tail, eot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
