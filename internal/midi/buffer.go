package midi

import (
	"fmt"
	"sort"
)

// event is one buffered message. Header events carry no time; timed
// events are keyed by moment offset.
type event struct {
	moment int32
	seq    int
	data   []byte
}

// Buffer collects events for a single compiled track. Header events
// serialize before any timed event; timed events serialize in moment
// order with insertion order breaking ties.
type Buffer struct {
	head      []event
	timed     []event
	seq       int
	haveRange bool
	lo, hi    int32 // subquantum bounds of everything observed
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) observe(moment int32) {
	subq := moment / 3
	if moment%3 < 0 {
		subq--
	}
	if !b.haveRange {
		b.haveRange = true
		b.lo, b.hi = subq, subq
		return
	}
	if subq < b.lo {
		b.lo = subq
	}
	if subq > b.hi {
		b.hi = subq
	}
}

// Message appends an event. Header events (head true) ignore the
// moment and do not extend the event range.
func (b *Buffer) Message(moment int32, head bool, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("midi: empty message")
	}
	e := event{moment: moment, seq: b.seq, data: data}
	b.seq++
	if head {
		b.head = append(b.head, e)
		return nil
	}
	b.observe(moment)
	b.timed = append(b.timed, e)
	return nil
}

// Null extends the event-range bounds without emitting a message.
// Header nulls are accepted and ignored.
func (b *Buffer) Null(moment int32, head bool) {
	if head {
		return
	}
	b.observe(moment)
}

// RangeLower returns the least subquantum offset observed.
func (b *Buffer) RangeLower() (int32, bool) {
	return b.lo, b.haveRange
}

// RangeUpper returns the greatest subquantum offset observed.
func (b *Buffer) RangeUpper() (int32, bool) {
	return b.hi, b.haveRange
}

// Count returns the number of buffered messages.
func (b *Buffer) Count() int {
	return len(b.head) + len(b.timed)
}

// ordered returns the timed events sorted by moment, insertion order
// preserved within a moment.
func (b *Buffer) ordered() []event {
	out := make([]event, len(b.timed))
	copy(out, b.timed)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].moment < out[j].moment
	})
	return out
}
