package graph

import (
	"fmt"
	"math"
)

const (
	minInt = -2147483647
	maxInt = 2147483647
)

func checkInt(v int64) (int32, error) {
	if v < minInt || v > maxInt {
		return 0, fmt.Errorf("graph: integer overflow: %d", v)
	}
	return int32(v), nil
}

// regionKind discriminates the buffered region of an Accum.
type regionKind int

const (
	regEmpty regionKind = iota
	regConst
	regRamp
	regDerived
)

// region is the buffered, not-yet-resolved tail of the accumulation.
type region struct {
	kind regionKind
	t0   int32

	// const and ramp
	a, b int32
	step int32
	log  bool

	// derived
	src        *Graph
	tSrc       int32
	num, den   int32
	c          int32
	minV, maxV int32
}

// Accum builds a graph region by region. Each add resolves the
// previously buffered region against the new region's start, which
// bounds it; End resolves the final region with no successor.
type Accum struct {
	cache *Cache
	nodes []Node
	cur   region
}

// NewAccum returns an empty accumulator drawing interned constants
// from cache.
func NewAccum(cache *Cache) *Accum {
	return &Accum{cache: cache}
}

func (a *Accum) append(t, v int32) error {
	if v < 0 {
		return fmt.Errorf("graph: node value %d must be non-negative", v)
	}
	if n := len(a.nodes); n > 0 {
		last := a.nodes[n-1]
		if t <= last.T {
			return fmt.Errorf("graph: node at %d not after previous node at %d", t, last.T)
		}
		if v == last.V {
			return nil
		}
	}
	if len(a.nodes) >= MaxNodes {
		return fmt.Errorf("graph: node limit %d exceeded", MaxNodes)
	}
	a.nodes = append(a.nodes, Node{T: t, V: v})
	return nil
}

func (a *Accum) bufferCheck(t int32) error {
	if a.cur.kind != regEmpty && t <= a.cur.t0 {
		return fmt.Errorf("graph: region at %d not after region at %d", t, a.cur.t0)
	}
	return nil
}

// Const buffers a constant region with value v from moment t.
func (a *Accum) Const(t, v int32) error {
	if v < 0 {
		return fmt.Errorf("graph: constant value %d must be non-negative", v)
	}
	if err := a.bufferCheck(t); err != nil {
		return err
	}
	if err := a.resolve(t, true); err != nil {
		return err
	}
	a.cur = region{kind: regConst, t0: t, a: v}
	return nil
}

// Ramp buffers a ramp region from value v0 at moment t toward v1,
// stepping every step subquanta. A logarithmic ramp interpolates in
// log space.
func (a *Accum) Ramp(t, v0, v1, step int32, logRamp bool) error {
	if v0 < 0 || v1 < 0 {
		return fmt.Errorf("graph: ramp values %d..%d must be non-negative", v0, v1)
	}
	if step < 1 {
		return fmt.Errorf("graph: ramp step %d must be positive", step)
	}
	if err := a.bufferCheck(t); err != nil {
		return err
	}
	if err := a.resolve(t, true); err != nil {
		return err
	}
	a.cur = region{kind: regRamp, t0: t, a: v0, b: v1, step: step, log: logRamp}
	return nil
}

// Derived buffers a region that copies src from moment tSrc on,
// mapping each value v to clamp(v*num/den + c, minV, maxV). A maxV of
// -1 disables the upper clamp.
func (a *Accum) Derived(t int32, src *Graph, tSrc, num, den, c, minV, maxV int32) error {
	if src == nil || src.Len() == 0 {
		return fmt.Errorf("graph: derived region needs a source graph")
	}
	if den < 1 {
		return fmt.Errorf("graph: derived denominator %d must be positive", den)
	}
	if num < 0 {
		return fmt.Errorf("graph: derived numerator %d must be non-negative", num)
	}
	if minV < 0 {
		return fmt.Errorf("graph: derived minimum %d must be non-negative", minV)
	}
	if maxV < -1 {
		return fmt.Errorf("graph: derived maximum %d invalid", maxV)
	}
	if err := a.bufferCheck(t); err != nil {
		return err
	}
	if err := a.resolve(t, true); err != nil {
		return err
	}
	a.cur = region{kind: regDerived, t0: t, src: src, tSrc: tSrc, num: num, den: den, c: c, minV: minV, maxV: maxV}
	return nil
}

// End resolves the final region and returns the finished graph.
// Single-node results are interned through the cache.
func (a *Accum) End() (*Graph, error) {
	if err := a.resolve(0, false); err != nil {
		return nil, err
	}
	if len(a.nodes) == 0 {
		return nil, fmt.Errorf("graph: empty graph")
	}
	if len(a.nodes) == 1 {
		return a.cache.Constant(a.nodes[0].V)
	}
	g := &Graph{nodes: a.nodes}
	a.nodes = nil
	return g, nil
}

// resolve emits the buffered region's nodes, bounded by the next
// region's start when hasNext is true.
func (a *Accum) resolve(next int32, hasNext bool) error {
	cur := a.cur
	a.cur = region{}
	switch cur.kind {
	case regEmpty:
		return nil
	case regConst:
		return a.append(cur.t0, cur.a)
	case regRamp:
		return a.resolveRamp(cur, next, hasNext)
	case regDerived:
		return a.resolveDerived(cur, next, hasNext)
	}
	panic("unknown region kind")
}

func (a *Accum) resolveRamp(cur region, next int32, hasNext bool) error {
	if cur.a == cur.b {
		return a.append(cur.t0, cur.a)
	}
	if !hasNext {
		return fmt.Errorf("graph: ramp at %d has no following region", cur.t0)
	}
	if err := a.append(cur.t0, cur.a); err != nil {
		return err
	}
	// Align the stepping grid in subquantum space, rounding the ramp
	// start down to a multiple of the step.
	subq0 := floorDiv(int64(cur.t0), 3)
	base := floorDiv(subq0, cur.step) * int64(cur.step)
	span := float64(next) - float64(cur.t0)
	for k := int64(1); ; k++ {
		sq := base + k*int64(cur.step)
		m64 := sq * 3
		if m64 <= int64(cur.t0) {
			continue
		}
		if m64 >= int64(next) {
			break
		}
		m, err := checkInt(m64)
		if err != nil {
			return err
		}
		u := (float64(m) - float64(cur.t0)) / span
		if u < 0 {
			u = 0
		}
		if u > 1 {
			u = 1
		}
		var v int32
		if cur.log {
			la := math.Log(float64(cur.a) + 1)
			lb := math.Log(float64(cur.b) + 1)
			v = int32(math.Floor(math.Exp(la+u*(lb-la)) - 1))
		} else {
			v = int32(math.Floor(float64(cur.a) + u*(float64(cur.b)-float64(cur.a))))
		}
		if v < 0 {
			v = 0
		}
		if err := a.append(m, v); err != nil {
			return err
		}
	}
	return nil
}

func (a *Accum) resolveDerived(cur region, next int32, hasNext bool) error {
	xform := func(v int32) (int32, error) {
		x := int64(v)*int64(cur.num)/int64(cur.den) + int64(cur.c)
		if x < int64(cur.minV) {
			x = int64(cur.minV)
		}
		if cur.maxV >= 0 && x > int64(cur.maxV) {
			x = int64(cur.maxV)
		}
		return checkInt(x)
	}
	v, err := xform(cur.src.Query(cur.tSrc))
	if err != nil {
		return err
	}
	if err := a.append(cur.t0, v); err != nil {
		return err
	}
	// The copy window mirrors the region's own extent in source time.
	// Overflow computing the bound disables it.
	bounded := false
	var bound int64
	if hasNext {
		span := int64(next) - int64(cur.t0)
		bound = int64(cur.tSrc) + span
		if bound >= minInt && bound <= maxInt {
			bounded = true
		}
	}
	for _, n := range cur.src.nodes {
		if n.T <= cur.tSrc {
			continue
		}
		if bounded && int64(n.T) > bound {
			break
		}
		tm64 := int64(cur.t0) + (int64(n.T) - int64(cur.tSrc))
		if hasNext && tm64 >= int64(next) {
			break
		}
		tm, err := checkInt(tm64)
		if err != nil {
			return err
		}
		v, err := xform(n.V)
		if err != nil {
			return err
		}
		if err := a.append(tm, v); err != nil {
			return err
		}
	}
	return nil
}

func floorDiv(v int64, d int32) int64 {
	q := v / int64(d)
	if v%int64(d) < 0 {
		q--
	}
	return q
}
