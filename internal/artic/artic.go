// Package artic implements the two duration transforms: articulations
// for measured notes and rulers for unmeasured grace notes. Both are
// immutable once constructed. All position arithmetic is overflow
// checked against the symmetric 32-bit range.
package artic

import "fmt"

// SubPerQuantum is the number of subquanta in one quantum.
const SubPerQuantum = 8

// MinInt and MaxInt bound every computed position and duration. The
// most negative two's-complement value is excluded so negation is
// always defined.
const (
	MinInt = -2147483647
	MaxInt = 2147483647
)

// CheckInt narrows a 64-bit intermediate back to the symmetric 32-bit
// range.
func CheckInt(v int64) (int32, error) {
	if v < MinInt || v > MaxInt {
		return 0, fmt.Errorf("artic: integer overflow: %d", v)
	}
	return int32(v), nil
}

// Articulation scales a measured duration and then bounds the result.
// The scale denominator is always 8 after normalization, so only the
// numerator is stored.
type Articulation struct {
	num    int32
	bumper int32
	gap    int32
}

// New builds an articulation. The denominator must be 1, 2, 4 or 8 and
// is normalized to 8 by doubling; the normalized numerator must land in
// 1..8. The bumper is a lower bound in subquanta (>= 0) and the gap an
// upper-bound adjustment (<= 0).
func New(num, denom, bumper, gap int32) (Articulation, error) {
	var mult int32
	switch denom {
	case 1:
		mult = 8
	case 2:
		mult = 4
	case 4:
		mult = 2
	case 8:
		mult = 1
	default:
		return Articulation{}, fmt.Errorf("artic: denominator must be 1, 2, 4 or 8, got %d", denom)
	}
	n := num * mult
	if num < 1 || n > 8 {
		return Articulation{}, fmt.Errorf("artic: scale %d/%d out of range", num, denom)
	}
	if bumper < 0 {
		return Articulation{}, fmt.Errorf("artic: bumper %d must be non-negative", bumper)
	}
	if gap > 0 {
		return Articulation{}, fmt.Errorf("artic: gap %d must be non-positive", gap)
	}
	return Articulation{num: n, bumper: bumper, gap: gap}, nil
}

// Default is the articulation applied when no classifier matches:
// full scale with a bumper of one quantum.
func Default() Articulation {
	return Articulation{num: 8, bumper: 8, gap: 0}
}

// Transform maps a measured duration in quanta to a performance
// duration in subquanta. The scaled duration is raised to the bumper,
// lowered to the gapped notated length, and never drops below one
// subquantum.
func (a Articulation) Transform(dur int32) (int32, error) {
	if dur < 1 {
		return 0, fmt.Errorf("artic: duration %d must be positive", dur)
	}
	scaled, err := CheckInt(int64(dur) * SubPerQuantum * int64(a.num) / 8)
	if err != nil {
		return 0, err
	}
	limit, err := CheckInt(int64(dur)*SubPerQuantum + int64(a.gap))
	if err != nil {
		return 0, err
	}
	r := scaled
	if r < a.bumper {
		r = a.bumper
	}
	if r > limit {
		r = limit
	}
	if r < 1 {
		r = 1
	}
	return r, nil
}

// Ruler places unmeasured grace notes on a fixed grid before the beat.
// The slot is the grid pitch in subquanta; the gap shortens each grace
// note's sounding length.
type Ruler struct {
	slot int32
	gap  int32
}

// NewRuler builds a ruler. The slot must be positive, the gap
// non-positive, and their sum at least one subquantum.
func NewRuler(slot, gap int32) (Ruler, error) {
	if slot < 1 {
		return Ruler{}, fmt.Errorf("artic: ruler slot %d must be positive", slot)
	}
	if gap > 0 {
		return Ruler{}, fmt.Errorf("artic: ruler gap %d must be non-positive", gap)
	}
	if slot+gap < 1 {
		return Ruler{}, fmt.Errorf("artic: ruler slot %d + gap %d leaves no duration", slot, gap)
	}
	return Ruler{slot: slot, gap: gap}, nil
}

// DefaultRuler spaces grace notes a sixteenth note apart with no gap.
func DefaultRuler() Ruler {
	return Ruler{slot: 48, gap: 0}
}

// Pos returns the offset in subquanta of the i-th grace note (i < 0)
// before a beat at subquantum offset b.
func (r Ruler) Pos(b int32, i int32) (int32, error) {
	if i >= 0 {
		return 0, fmt.Errorf("artic: grace index %d must be negative", i)
	}
	return CheckInt(int64(b) + int64(i)*int64(r.slot))
}

// Dur returns the sounding duration of a grace note in subquanta.
func (r Ruler) Dur() int32 {
	return r.slot + r.gap
}
