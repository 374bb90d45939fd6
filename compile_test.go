// Copyright 2019 Ellis & Grant, Inc. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const simpleNMF = `
nmf 96
s 0
n 0 1 0 0 0 1
`

func compileStrings(t *testing.T, nmfText, scriptText string) *compilation {
	t.Helper()
	c, err := compile(strings.NewReader(nmfText), strings.NewReader(scriptText))
	require.NoError(t, err)
	return c
}

func TestMinimalCompile(t *testing.T) {
	c := compileStrings(t, simpleNMF, "%infrared;\n|;\n")
	require.Equal(t, []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 1, 0x09, 0x00}, c.smf[:14])
	require.Equal(t, []byte{'M', 'T', 'r', 'k'}, c.smf[14:18])
	// one note: on, off, end of track
	require.Equal(t, []byte{0xff, 0x2f, 0x00}, c.smf[len(c.smf)-3:])
	require.Equal(t, 2, c.ctx.Buf.Count())
}

func TestInstrumentScript(t *testing.T) {
	script := `%infrared;
ptr 0s 0q 2 129 5 instrument
|;
`
	c := compileStrings(t, simpleNMF, script)
	// CC#0=1, CC#32=0, PC=4 on channel 2, in that order
	require.True(t, bytes.Contains(c.smf, []byte{0xb1, 0x00, 0x01, 0x00, 0xb1, 0x20, 0x00, 0x00, 0xc1, 0x04}))
}

func TestHeaderInstrument(t *testing.T) {
	script := `%infrared;
ptr 2 129 5 instrument
|;
`
	c := compileStrings(t, simpleNMF, script)
	// header events precede the timed note on
	trk := c.smf[22:]
	require.Equal(t, []byte{0x00, 0xb1, 0x00, 0x01}, trk[:4])
}

func TestVelocityClassifierScript(t *testing.T) {
	script := `%infrared;
( begin_set all end_set ) ?everything
=everything =everything =everything 100 graph classify_vel
|;
`
	c := compileStrings(t, simpleNMF, script)
	require.True(t, bytes.Contains(c.smf, []byte{0x90, 60, 100}))
}

func TestGraphRampScript(t *testing.T) {
	script := `%infrared;
begin_graph
  ptr 0s 0q 0m 1 127 5 ramp
  ptr 0s 100q 0m 127 const
end_graph
?g
( begin_set all end_set ) ?everything
=everything =everything =everything =g classify_vel
|;
`
	c := compileStrings(t, simpleNMF, script)
	// velocity at the middle of subquantum 0 comes off the ramp floor
	require.True(t, bytes.Contains(c.smf, []byte{0x90, 60, 1}))
}

func TestAutoTempoScript(t *testing.T) {
	script := `%infrared;
begin_graph
  ptr 0s 0q 0m 1000000 250000 96 ramp
  ptr 0s 96q 0m 250000 const
end_graph
auto_tempo
|;
`
	c := compileStrings(t, simpleNMF, script)
	var tempos []uint32
	for i := 0; i+5 < len(c.smf); i++ {
		if c.smf[i] == 0xff && c.smf[i+1] == 0x51 && c.smf[i+2] == 0x03 {
			tempos = append(tempos, uint32(c.smf[i+3])<<16|uint32(c.smf[i+4])<<8|uint32(c.smf[i+5]))
		}
	}
	require.NotEmpty(t, tempos)
	require.Equal(t, uint32(1000000), tempos[0])
}

func TestOpenAccumulatorRejected(t *testing.T) {
	_, err := compile(strings.NewReader(simpleNMF), strings.NewReader("%infrared; begin_set |;"))
	require.Error(t, err)
	_, err = compile(strings.NewReader(simpleNMF), strings.NewReader("%infrared; begin_graph |;"))
	require.Error(t, err)
}

func TestLeftoverStackRejected(t *testing.T) {
	_, err := compile(strings.NewReader(simpleNMF), strings.NewReader("%infrared; 5 |;"))
	require.Error(t, err)
}

func TestBadBasisRejected(t *testing.T) {
	_, err := compile(strings.NewReader("nmf 48\ns 0\n"), strings.NewReader("%infrared; |;"))
	require.Error(t, err)
}

func TestSectionMap(t *testing.T) {
	nmfText := `
nmf 96
s 0
s 8
n 0 1 0 0 0 1
`
	c := compileStrings(t, nmfText, "%infrared;\n|;\n")
	var buf bytes.Buffer
	require.NoError(t, c.writeMap(&buf))
	require.Equal(t, "0:0\n1:64\n", buf.String())
}

func TestReportRenders(t *testing.T) {
	c := compileStrings(t, simpleNMF, "%infrared;\n|;\n")
	var buf bytes.Buffer
	require.NoError(t, renderReportTo(&buf, c))
	html := buf.String()
	require.Contains(t, html, "<table>")
	require.Contains(t, html, "compilation report")
}
