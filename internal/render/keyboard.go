package render

import "sort"

// keyboard resolves overlapping notes on the same (channel, key).
// Events are ordered by channel, key, onset, then longest duration and
// latest definition first; tombstones sort last. Events sharing an
// onset collapse to the winner of that ordering, and each survivor is
// truncated so the next note on its key does not begin before this one
// releases.
func keyboard(events []noteEvent) []noteEvent {
	out := make([]noteEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if (a.eid < 0) != (b.eid < 0) {
			return b.eid < 0
		}
		if a.channel != b.channel {
			return a.channel < b.channel
		}
		if a.key != b.key {
			return a.key < b.key
		}
		if a.t != b.t {
			return a.t < b.t
		}
		if a.dur != b.dur {
			return a.dur > b.dur
		}
		return a.eid > b.eid
	})
	// collapse same-onset runs to their first (winning) event
	for i := 0; i < len(out); i++ {
		if out[i].eid < 0 {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			if out[j].eid < 0 ||
				out[j].channel != out[i].channel ||
				out[j].key != out[i].key ||
				out[j].t != out[i].t {
				break
			}
			out[j].eid = -1
		}
	}
	// truncate against the next sounding note on the same key
	var prev *noteEvent
	for i := 0; i < len(out); i++ {
		e := &out[i]
		if e.eid < 0 {
			continue
		}
		if prev != nil && prev.channel == e.channel && prev.key == e.key {
			if prev.t+prev.dur > e.t {
				prev.dur = e.t - prev.t
			}
		}
		prev = e
	}
	return out
}
