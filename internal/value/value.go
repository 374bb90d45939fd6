// Package value defines the tagged union that flows across the script
// interpreter's stack, together with the text and blob construction
// rules. Reference variants hold shared immutable objects; copying a
// Value never copies the object behind it.
package value

import (
	"fmt"
	"strings"

	"github.com/canidlogic/infrared/internal/artic"
	"github.com/canidlogic/infrared/internal/graph"
	"github.com/canidlogic/infrared/internal/intset"
	"github.com/canidlogic/infrared/internal/pointer"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindInt Kind = iota
	KindText
	KindBlob
	KindGraph
	KindSet
	KindArt
	KindRuler
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindGraph:
		return "graph"
	case KindSet:
		return "set"
	case KindArt:
		return "articulation"
	case KindRuler:
		return "ruler"
	case KindPointer:
		return "pointer"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Capacity limits for the sequence variants.
const (
	MaxText = 1023
	MaxBlob = 1048576
)

// Value is the tagged union.
type Value struct {
	Kind  Kind
	Int   int32
	Text  string
	Blob  []byte
	Graph *graph.Graph
	Set   *intset.Set
	Art   artic.Articulation
	Ruler artic.Ruler
	Ptr   *pointer.Pointer
}

func Int(v int32) Value               { return Value{Kind: KindInt, Int: v} }
func Graph(g *graph.Graph) Value      { return Value{Kind: KindGraph, Graph: g} }
func Set(s *intset.Set) Value         { return Value{Kind: KindSet, Set: s} }
func Art(a artic.Articulation) Value  { return Value{Kind: KindArt, Art: a} }
func Ruler(r artic.Ruler) Value       { return Value{Kind: KindRuler, Ruler: r} }
func Pointer(p *pointer.Pointer) Value { return Value{Kind: KindPointer, Ptr: p} }

// NewText builds a text value, checking length and character class:
// printable US-ASCII plus space.
func NewText(s string) (Value, error) {
	if len(s) > MaxText {
		return Value{}, fmt.Errorf("value: text length %d exceeds %d", len(s), MaxText)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return Value{}, fmt.Errorf("value: text byte 0x%02x at %d not printable ASCII", s[i], i)
		}
	}
	return Value{Kind: KindText, Text: s}, nil
}

// NewBlob builds a blob value, checking length.
func NewBlob(b []byte) (Value, error) {
	if len(b) > MaxBlob {
		return Value{}, fmt.Errorf("value: blob length %d exceeds %d", len(b), MaxBlob)
	}
	return Value{Kind: KindBlob, Blob: b}, nil
}

// DecodeHex builds a blob from hex digit pairs, tolerating whitespace
// anywhere between digits.
func DecodeHex(s string) (Value, error) {
	var out []byte
	var hi int
	have := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return Value{}, fmt.Errorf("value: invalid hex digit %q", c)
		}
		if !have {
			hi = int(c)
			have = true
		} else {
			out = append(out, byte(hi<<4|int(c)))
			have = false
		}
	}
	if have {
		return Value{}, fmt.Errorf("value: odd number of hex digits")
	}
	return NewBlob(out)
}

// ConcatText joins two text values.
func ConcatText(a, b string) (Value, error) {
	var sb strings.Builder
	sb.Grow(len(a) + len(b))
	sb.WriteString(a)
	sb.WriteString(b)
	return NewText(sb.String())
}

// ConcatBlob joins two blobs.
func ConcatBlob(a, b []byte) (Value, error) {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return NewBlob(out)
}

// SliceText takes the half-open range [i,j) of a text value.
func SliceText(s string, i, j int32) (Value, error) {
	if err := checkSlice(int64(len(s)), i, j); err != nil {
		return Value{}, err
	}
	return NewText(s[i:j])
}

// SliceBlob takes the half-open range [i,j) of a blob.
func SliceBlob(b []byte, i, j int32) (Value, error) {
	if err := checkSlice(int64(len(b)), i, j); err != nil {
		return Value{}, err
	}
	out := make([]byte, j-i)
	copy(out, b[i:j])
	return NewBlob(out)
}

func checkSlice(n int64, i, j int32) error {
	if i < 0 || int64(j) > n || i > j {
		return fmt.Errorf("value: slice [%d,%d) out of range for length %d", i, j, n)
	}
	return nil
}
