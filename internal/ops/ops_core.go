package ops

import (
	"fmt"

	"github.com/canidlogic/infrared/internal/artic"
	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/pointer"
	"github.com/canidlogic/infrared/internal/value"
)

var coreOps = []opSpec{
	{"pop", opPop},
	{"dup", opDup},
	{"add", opAdd},
	{"sub", opSub},
	{"mul", opMul},
	{"neg", opNeg},
	{"concat", opConcat},
	{"slice", opSlice},
	{"ptr", opPtr},
	{"reset", opReset},
	{"rpush", opRulerPush},
	{"rpop", opRulerPop},
}

func opPop(c *Context, m *interp.Machine, line int) error {
	_, err := m.Pop()
	return err
}

func opDup(c *Context, m *interp.Machine, line int) error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	if err := m.Push(v); err != nil {
		return err
	}
	return m.Push(v)
}

func binaryInt(m *interp.Machine, f func(a, b int64) int64) error {
	b, err := m.PopInt()
	if err != nil {
		return err
	}
	a, err := m.PopInt()
	if err != nil {
		return err
	}
	r, err := artic.CheckInt(f(int64(a), int64(b)))
	if err != nil {
		return err
	}
	return m.Push(value.Int(r))
}

func opAdd(c *Context, m *interp.Machine, line int) error {
	return binaryInt(m, func(a, b int64) int64 { return a + b })
}

func opSub(c *Context, m *interp.Machine, line int) error {
	return binaryInt(m, func(a, b int64) int64 { return a - b })
}

func opMul(c *Context, m *interp.Machine, line int) error {
	return binaryInt(m, func(a, b int64) int64 { return a * b })
}

func opNeg(c *Context, m *interp.Machine, line int) error {
	v, err := m.PopInt()
	if err != nil {
		return err
	}
	return m.Push(value.Int(-v))
}

// opConcat joins two texts or two blobs.
func opConcat(c *Context, m *interp.Machine, line int) error {
	b, err := m.Pop()
	if err != nil {
		return err
	}
	a, err := m.Pop()
	if err != nil {
		return err
	}
	if a.Kind != b.Kind {
		return fmt.Errorf("ops: concat of %v and %v", a.Kind, b.Kind)
	}
	var out value.Value
	switch a.Kind {
	case value.KindText:
		out, err = value.ConcatText(a.Text, b.Text)
	case value.KindBlob:
		out, err = value.ConcatBlob(a.Blob, b.Blob)
	default:
		return fmt.Errorf("ops: concat needs text or blob, got %v", a.Kind)
	}
	if err != nil {
		return err
	}
	return m.Push(out)
}

// opSlice takes [i,j) of a text or blob.
func opSlice(c *Context, m *interp.Machine, line int) error {
	j, err := m.PopInt()
	if err != nil {
		return err
	}
	i, err := m.PopInt()
	if err != nil {
		return err
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	var out value.Value
	switch v.Kind {
	case value.KindText:
		out, err = value.SliceText(v.Text, i, j)
	case value.KindBlob:
		out, err = value.SliceBlob(v.Blob, i, j)
	default:
		return fmt.Errorf("ops: slice needs text or blob, got %v", v.Kind)
	}
	if err != nil {
		return err
	}
	return m.Push(out)
}

func opPtr(c *Context, m *interp.Machine, line int) error {
	return m.Push(value.Pointer(pointer.New()))
}

func opReset(c *Context, m *interp.Machine, line int) error {
	p, err := m.PopPointer()
	if err != nil {
		return err
	}
	p.Reset()
	return m.Push(value.Pointer(p))
}

func opRulerPush(c *Context, m *interp.Machine, line int) error {
	r, err := m.PopRuler()
	if err != nil {
		return err
	}
	return m.RulerPush(r)
}

func opRulerPop(c *Context, m *interp.Machine, line int) error {
	return m.RulerPop()
}
