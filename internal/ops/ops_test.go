package ops

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/nmf"
	"github.com/canidlogic/infrared/internal/script"
	"github.com/canidlogic/infrared/internal/value"
)

func machine(t *testing.T) (*Context, *interp.Machine) {
	t.Helper()
	score := &nmf.Score{Sections: []int32{0}}
	ctx := NewContext(score)
	m := interp.New()
	require.NoError(t, Install(ctx, m))
	return ctx, m
}

// run interprets a script body (header and EOF marker added here) and
// returns the interpreter error, if any.
func run(t *testing.T, body string) (*Context, *interp.Machine, error) {
	t.Helper()
	ctx, m := machine(t)
	err := m.Run(script.NewReader(strings.NewReader("%infrared; "+body+" |;"), "infrared"))
	return ctx, m, err
}

func TestArithmeticVerbs(t *testing.T) {
	_, m, err := run(t, "2 3 add 4 mul neg ?x =x pop")
	require.NoError(t, err)
	require.NoError(t, m.Get("x"))
	got, err := m.PopInt()
	require.NoError(t, err)
	require.Equal(t, int32(-20), got)
}

func TestArithmeticOverflow(t *testing.T) {
	_, _, err := run(t, "2147483647 1 add")
	require.Error(t, err)
	require.Contains(t, err.Error(), "overflow")
}

func TestConcatSliceVerbs(t *testing.T) {
	_, m, err := run(t, `"foo" "bar" concat 1 4 slice ?x`)
	require.NoError(t, err)
	require.NoError(t, m.Get("x"))
	v, err := m.Pop()
	require.NoError(t, err)
	require.Equal(t, "oob", v.Text)
}

func TestBlobVerbs(t *testing.T) {
	_, m, err := run(t, "{0102} {0304} concat 1 3 slice ?x")
	require.NoError(t, err)
	require.NoError(t, m.Get("x"))
	v, err := m.Pop()
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, v.Blob)
}

func TestMixedConcatRejected(t *testing.T) {
	_, _, err := run(t, `"foo" {00} concat pop`)
	require.Error(t, err)
}

func TestRecordVerbs(t *testing.T) {
	_, m, err := run(t, "1 1 8 0 art ?a 48 0 ruler ?r")
	require.NoError(t, err)
	require.NoError(t, m.Get("a"))
	v, err := m.Pop()
	require.NoError(t, err)
	require.Equal(t, value.KindArt, v.Kind)
	d, err := v.Art.Transform(2)
	require.NoError(t, err)
	require.Equal(t, int32(16), d)

	require.NoError(t, m.Get("r"))
	v, err = m.Pop()
	require.NoError(t, err)
	require.Equal(t, value.KindRuler, v.Kind)
	require.Equal(t, int32(48), v.Ruler.Dur())
}

func TestSetLifecycle(t *testing.T) {
	ctx, m, err := run(t, "begin_set 1 16 include 7 7 exclude end_set ?s")
	require.NoError(t, err)
	require.NoError(t, ctx.CheckClosed())
	require.NoError(t, m.Get("s"))
	s, err := m.PopSet()
	require.NoError(t, err)
	require.True(t, s.Has(8))
	require.False(t, s.Has(7))
}

func TestSetDoubleOpenRejected(t *testing.T) {
	_, _, err := run(t, "begin_set begin_set")
	require.Error(t, err)
}

func TestSetOpWithoutOpenRejected(t *testing.T) {
	_, _, err := run(t, "1 2 include")
	require.Error(t, err)
}

func TestGraphLifecycle(t *testing.T) {
	_, m, err := run(t, "begin_graph ptr 0s 0q 0m 80 const end_graph ?g")
	require.NoError(t, err)
	require.NoError(t, m.Get("g"))
	g, err := m.PopGraph()
	require.NoError(t, err)
	require.Equal(t, int32(80), g.Query(500))
}

func TestGraphDoubleOpenRejected(t *testing.T) {
	_, _, err := run(t, "begin_graph begin_graph")
	require.Error(t, err)
}

func TestGraphConstInterned(t *testing.T) {
	ctx, m, err := run(t, "64 graph ?g")
	require.NoError(t, err)
	require.NoError(t, m.Get("g"))
	g, err := m.PopGraph()
	require.NoError(t, err)
	interned, err := ctx.Cache.Constant(64)
	require.NoError(t, err)
	require.Same(t, interned, g)
}

func TestRulerStackVerbs(t *testing.T) {
	// the pushed ruler steers the g suffix; each grace slot is 24
	// subquanta
	_, m, err := run(t, "24 0 ruler rpush ptr 0s 0q -1g ?p rpop")
	require.NoError(t, err)
	require.NoError(t, m.Get("p"))
	p, err := m.PopPointer()
	require.NoError(t, err)
	score := &nmf.Score{Sections: []int32{0}}
	got, err := p.Compute(score)
	require.NoError(t, err)
	require.Equal(t, int32(-24*3+1), got)
}

func TestOverlapToggle(t *testing.T) {
	_, _, err := run(t, "1 overlap 0 overlap")
	require.NoError(t, err)
	_, _, err = run(t, "2 overlap")
	require.Error(t, err)
}

func TestControlVerbCounts(t *testing.T) {
	ctx, _, err := run(t, `
ptr 0s 0q 500000 tempo
ptr 0s 1q 1 65 10 controller
ptr 0s 2q 1 1 300 wide
ptr 0s 3q 1 5 9 nrpn
ptr 0s 4q 1 0 2 rpn
ptr 0s 5q 1 90 pressure
ptr 0s 6q 1 8192 pitch
ptr {f04300f7} system
ptr 0s 7q "verse" marker
`)
	require.NoError(t, err)
	// 1 + 1 + 2 + 4 + 4 + 1 + 1 + 1 + 1
	require.Equal(t, 16, ctx.Buf.Count())
}

func TestAutoVerbs(t *testing.T) {
	ctx, _, err := run(t, "64 graph auto_tempo 1 65 64 graph auto_controller 1 100 graph auto_pressure")
	require.NoError(t, err)
	ctx.Buf.Null(0, false)
	require.NoError(t, ctx.Ctl.Track())
	// tempo meta, one controller, one pressure
	require.Equal(t, 3, ctx.Buf.Count())
}
