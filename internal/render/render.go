// Package render maps NMF notes through the classifier pipeline to
// performance parameters and emits the note events. Classifiers are
// ordered; a later classifier overrides an earlier one whenever both
// match a note.
package render

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/canidlogic/infrared/internal/artic"
	"github.com/canidlogic/infrared/internal/graph"
	"github.com/canidlogic/infrared/internal/intset"
	"github.com/canidlogic/infrared/internal/midi"
	"github.com/canidlogic/infrared/internal/nmf"
	"github.com/canidlogic/infrared/internal/pointer"
)

// paramKind names the performance parameter a classifier assigns.
type paramKind int

const (
	paramArt paramKind = iota
	paramRuler
	paramGraph
	paramChannel
	paramRelease
	paramTouch
)

type classifier struct {
	sects  *intset.Set
	layers *intset.Set
	arts   *intset.Set
	kind   paramKind

	art     artic.Articulation
	ruler   artic.Ruler
	graph   *graph.Graph
	channel int32
	release int32
	touch   bool
}

func (c *classifier) matches(n nmf.Note) bool {
	return c.sects.Has(n.Sect) && c.layers.Has(n.Layer) && c.arts.Has(n.Art)
}

// Pipeline is the ordered classifier list plus the keyboard-overlap
// toggle.
type Pipeline struct {
	classifiers []classifier
	overlap     bool
	cache       *graph.Cache
}

// NewPipeline returns an empty pipeline. The keyboard-overlap pass
// defaults to off.
func NewPipeline(cache *graph.Cache) *Pipeline {
	return &Pipeline{cache: cache}
}

// SetOverlap toggles the keyboard-overlap resolution pass.
func (p *Pipeline) SetOverlap(on bool) {
	p.overlap = on
}

func (p *Pipeline) add(c classifier) {
	p.classifiers = append(p.classifiers, c)
}

// AddArt appends an articulation classifier.
func (p *Pipeline) AddArt(sects, layers, arts *intset.Set, a artic.Articulation) {
	p.add(classifier{sects: sects, layers: layers, arts: arts, kind: paramArt, art: a})
}

// AddRuler appends a grace-note ruler classifier.
func (p *Pipeline) AddRuler(sects, layers, arts *intset.Set, r artic.Ruler) {
	p.add(classifier{sects: sects, layers: layers, arts: arts, kind: paramRuler, ruler: r})
}

// AddGraph appends a velocity-graph classifier.
func (p *Pipeline) AddGraph(sects, layers, arts *intset.Set, g *graph.Graph) {
	p.add(classifier{sects: sects, layers: layers, arts: arts, kind: paramGraph, graph: g})
}

// AddChannel appends a channel classifier.
func (p *Pipeline) AddChannel(sects, layers, arts *intset.Set, ch int32) error {
	if ch < 1 || ch > 16 {
		return fmt.Errorf("render: channel %d out of range 1..16", ch)
	}
	p.add(classifier{sects: sects, layers: layers, arts: arts, kind: paramChannel, channel: ch})
	return nil
}

// AddRelease appends a release-velocity classifier. A release of -1
// selects Note On with velocity zero instead of a real Note Off.
func (p *Pipeline) AddRelease(sects, layers, arts *intset.Set, rel int32) error {
	if rel < -1 || rel > 127 {
		return fmt.Errorf("render: release velocity %d out of range -1..127", rel)
	}
	p.add(classifier{sects: sects, layers: layers, arts: arts, kind: paramRelease, release: rel})
	return nil
}

// AddTouch appends an aftertouch-enable classifier.
func (p *Pipeline) AddTouch(sects, layers, arts *intset.Set, on bool) {
	p.add(classifier{sects: sects, layers: layers, arts: arts, kind: paramTouch, touch: on})
}

// noteEvent is the renderer intermediate. A negative eid marks a
// tombstone.
type noteEvent struct {
	eid     int32
	t       int32 // performance offset in subquanta
	dur     int32 // performance duration in subquanta
	key     int32
	channel int32
	release int32
	touch   bool
	vel     *graph.Graph
}

// params resolves the performance parameters for one note.
func (p *Pipeline) params(n nmf.Note) (art artic.Articulation, ruler artic.Ruler, vel *graph.Graph, ch, rel int32, touch bool, err error) {
	art = artic.Default()
	ruler = artic.DefaultRuler()
	vel, err = p.cache.Constant(64)
	if err != nil {
		return
	}
	ch, rel, touch = 1, -1, false
	for i := range p.classifiers {
		c := &p.classifiers[i]
		if !c.matches(n) {
			continue
		}
		switch c.kind {
		case paramArt:
			art = c.art
		case paramRuler:
			ruler = c.ruler
		case paramGraph:
			vel = c.graph
		case paramChannel:
			ch = c.channel
		case paramRelease:
			rel = c.release
		case paramTouch:
			touch = c.touch
		}
	}
	return
}

// Render maps every note to its performance event and emits the
// channel messages into the buffer.
func (p *Pipeline) Render(score *nmf.Score, buf *midi.Buffer) error {
	events, err := p.importNotes(score)
	if err != nil {
		return err
	}
	if p.overlap {
		events = keyboard(events)
	}
	live := 0
	for i := range events {
		e := &events[i]
		if e.eid < 0 {
			continue
		}
		if err := p.emit(e, buf); err != nil {
			return err
		}
		live++
	}
	glog.V(2).Infof("rendered %d notes (%d tombstones)", live, len(events)-live)
	return nil
}

func (p *Pipeline) importNotes(score *nmf.Score) ([]noteEvent, error) {
	events := make([]noteEvent, 0, len(score.Notes))
	var eid int32
	for _, n := range score.Notes {
		art, ruler, vel, ch, rel, touch, err := p.params(n)
		if err != nil {
			return nil, err
		}
		key := n.Pitch + 60
		if key < 0 || key > 127 {
			return nil, fmt.Errorf("render: pitch %d maps outside the keyboard", n.Pitch)
		}
		e := noteEvent{key: key, channel: ch, release: rel, touch: touch, vel: vel}
		switch {
		case n.Dur > 0:
			t, err := artic.CheckInt(int64(n.T) * artic.SubPerQuantum)
			if err != nil {
				return nil, err
			}
			dur, err := art.Transform(n.Dur)
			if err != nil {
				return nil, err
			}
			e.t, e.dur = t, dur
		case n.Dur < 0:
			beat, err := artic.CheckInt(int64(n.T) * artic.SubPerQuantum)
			if err != nil {
				return nil, err
			}
			t, err := ruler.Pos(beat, n.Dur)
			if err != nil {
				return nil, err
			}
			e.t, e.dur = t, ruler.Dur()
		default:
			// cue-only note
			e.eid = -1
			events = append(events, e)
			continue
		}
		e.eid = eid
		eid++
		events = append(events, e)
	}
	return events, nil
}

func (p *Pipeline) emit(e *noteEvent, buf *midi.Buffer) error {
	tOn, err := pointer.Pack(e.t, pointer.Middle)
	if err != nil {
		return err
	}
	end, err := artic.CheckInt(int64(e.t) + int64(e.dur))
	if err != nil {
		return err
	}
	tOff, err := pointer.Pack(end, pointer.Start)
	if err != nil {
		return err
	}
	vel := e.vel.Query(tOn)
	if vel < 1 || vel > 127 {
		return fmt.Errorf("render: velocity %d at moment %d out of range 1..127", vel, tOn)
	}
	on, err := midi.NoteOn(e.channel, e.key, vel)
	if err != nil {
		return err
	}
	if err := buf.Message(tOn, false, on); err != nil {
		return err
	}
	var off []byte
	if e.release < 0 {
		off, err = midi.NoteOn(e.channel, e.key, 0)
	} else {
		off, err = midi.NoteOff(e.channel, e.key, e.release)
	}
	if err != nil {
		return err
	}
	if err := buf.Message(tOff, false, off); err != nil {
		return err
	}
	if e.touch && e.dur >= 2 {
		return p.emitTouch(e, vel, buf)
	}
	return nil
}

// emitTouch follows the velocity graph across the note's interior and
// emits a polyphonic aftertouch message for each change.
func (p *Pipeline) emitTouch(e *noteEvent, vel int32, buf *midi.Buffer) error {
	tFrom, err := pointer.Pack(e.t+1, pointer.Start)
	if err != nil {
		return err
	}
	tTo, err := pointer.Pack(e.t+e.dur-1, pointer.End)
	if err != nil {
		return err
	}
	var emitErr error
	e.vel.Track(tFrom, tTo, true, vel, func(t, v int32) {
		if emitErr != nil {
			return
		}
		data, err := midi.PolyPressure(e.channel, e.key, v)
		if err != nil {
			emitErr = err
			return
		}
		emitErr = buf.Message(t, false, data)
	})
	return emitErr
}
