// Copyright 2019 Ellis & Grant, Inc. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/canidlogic/infrared/internal/artic"
	"github.com/canidlogic/infrared/internal/interp"
	"github.com/canidlogic/infrared/internal/nmf"
	"github.com/canidlogic/infrared/internal/ops"
	"github.com/canidlogic/infrared/internal/pointer"
	"github.com/canidlogic/infrared/internal/script"
)

// program is the name the script's header metacommand must carry.
const program = "infrared"

// compilation is everything a finished run produced.
type compilation struct {
	score *nmf.Score
	ctx   *ops.Context
	smf   []byte
}

// compile runs the whole pipeline: read the parsed NMF data, interpret
// the script, render the notes, schedule the auto-tracked controllers
// and serialize the MIDI file.
func compile(nmfSrc, scriptSrc io.Reader) (*compilation, error) {
	score, err := nmf.Read(nmfSrc)
	if err != nil {
		return nil, err
	}

	ctx := ops.NewContext(score)
	m := interp.New()
	if err := ops.Install(ctx, m); err != nil {
		return nil, err
	}
	if err := m.Run(script.NewReader(scriptSrc, program)); err != nil {
		return nil, err
	}
	if err := ctx.CheckClosed(); err != nil {
		return nil, err
	}

	if err := ctx.Pipe.Render(score, ctx.Buf); err != nil {
		return nil, err
	}
	// Track must follow every other event so the range bounds are
	// final.
	if err := ctx.Ctl.Track(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := ctx.Buf.Serialize(&buf); err != nil {
		return nil, err
	}
	return &compilation{score: score, ctx: ctx, smf: buf.Bytes()}, nil
}

// sectionDelta returns a section's offset from the start of the
// compiled file, in subquanta.
func (c *compilation) sectionDelta(base int32) (int32, error) {
	lo, ok := c.ctx.Buf.RangeLower()
	if !ok {
		lo = 0
	}
	subq, err := artic.CheckInt(int64(base) * artic.SubPerQuantum)
	if err != nil {
		return 0, err
	}
	moment, err := pointer.Pack(subq, pointer.Start)
	if err != nil {
		return 0, err
	}
	delta := int64(moment) - int64(lo)*3
	if delta < 0 {
		delta = 0
	}
	return artic.CheckInt(delta / 3)
}

// writeMap emits one line per section: <section>:<delta>.
func (c *compilation) writeMap(w io.Writer) error {
	for i, base := range c.score.Sections {
		d, err := c.sectionDelta(base)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%d:%d\n", i, d); err != nil {
			return err
		}
	}
	return nil
}

func writeMapFile(path string, c *compilation) error {
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't open map file %s: %v", path, err)
	}
	defer fd.Close()
	if err := c.writeMap(fd); err != nil {
		return fmt.Errorf("write map file %s: %v", path, err)
	}
	return nil
}
