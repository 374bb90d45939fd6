// Copyright 2019 Ellis & Grant, Inc. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	. "github.com/Michael-F-Ellis/goht" // dot import makes sense here
)

// writeReportFile renders the HTML compilation report.
func writeReportFile(path string, c *compilation) error {
	var buf bytes.Buffer
	if err := renderReportTo(&buf, c); err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write report file %s: %v", path, err)
	}
	return nil
}

func renderReportTo(w io.Writer, c *compilation) error {
	var buf bytes.Buffer
	if err := Render(reportPage(c), &buf, 0); err != nil {
		return fmt.Errorf("render report: %v", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func reportPage(c *compilation) *HtmlTree {
	head := Head("",
		Meta(`charset="utf-8"`),
		Title("", "infrared compilation report"),
		Style("", `
		body { font-family: sans-serif; margin: 2em; }
		table { border-collapse: collapse; }
		td, th { border: 1px solid #999; padding: 0.3em 0.8em; }
		`),
	)
	return Html("", head, reportBody(c))
}

func reportBody(c *compilation) *HtmlTree {
	lo, haveRange := c.ctx.Buf.RangeLower()
	hi, _ := c.ctx.Buf.RangeUpper()
	rangeText := "no events"
	if haveRange {
		rangeText = fmt.Sprintf("%d .. %d subquanta", lo, hi)
	}

	rows := []interface{}{
		Tr("", Th("", "section"), Th("", "base (quanta)"), Th("", "file offset (subquanta)")),
	}
	for i, base := range c.score.Sections {
		d, err := c.sectionDelta(base)
		if err != nil {
			// a section whose file offset overflows is left out
			// of the table
			continue
		}
		rows = append(rows, Tr("",
			Td("", fmt.Sprintf("%d", i)),
			Td("", fmt.Sprintf("%d", base)),
			Td("", fmt.Sprintf("%d", d)),
		))
	}

	return Body("",
		H1("", "infrared compilation report"),
		P("", fmt.Sprintf("%d notes in, %d MIDI messages out, %d bytes of SMF.",
			len(c.score.Notes), c.ctx.Buf.Count(), len(c.smf))),
		P("", "Event range: "+rangeText),
		Table("", rows...),
	)
}
