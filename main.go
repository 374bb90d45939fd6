// Copyright 2019 Ellis & Grant, Inc. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.
/*
infrared compiles a parsed NMF score and a companion script into a
General MIDI file.

Command line usage is

   infrared [-map PATH] [-report PATH] SCRIPT

The parsed NMF data is read from standard input and the Standard MIDI
File is written to standard output.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
)

const description = `
infrared compiles a score into a Standard MIDI File.

The score arrives in two parts: parsed NMF note data on standard input
and a postfix script named on the command line. The script shapes the
performance: it defines articulations, grace-note rulers, velocity and
tempo graphs, classifier pipelines and explicit control events. The
compiled Format-1 MIDI file is written to standard output.

Options:

	-map PATH
		write one line per NMF section giving its offset from the
		start of the compiled file, in subquanta.

	-report PATH
		write an HTML compilation report.
`

// usage extends the flag package's default help message.
func usage() {
	fmt.Printf("Usage: infrared [OPTIONS] SCRIPT\n  -h    print this help message.\n")
	flag.PrintDefaults()
	fmt.Print(description)
}

func main() {
	var mapPath string
	flag.StringVar(&mapPath, "map", "", "path for the section map file")

	var reportPath string
	flag.StringVar(&reportPath, "report", "", "path for the HTML compilation report")

	flag.Usage = usage
	// route glog output to stderr, as a batch tool must
	flag.Set("logtostderr", "true")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "infrared: exactly one script path is required")
		flag.Usage()
		os.Exit(1)
	}

	fail := func(err error) {
		glog.Errorf("infrared: %v", err)
		glog.Flush()
		os.Exit(1)
	}

	scriptFile, err := os.Open(flag.Arg(0))
	if err != nil {
		fail(err)
	}
	defer scriptFile.Close()

	result, err := compile(os.Stdin, scriptFile)
	if err != nil {
		fail(err)
	}

	out := bufio.NewWriter(os.Stdout)
	if _, err := out.Write(result.smf); err != nil {
		fail(fmt.Errorf("write output: %v", err))
	}
	if err := out.Flush(); err != nil {
		fail(fmt.Errorf("write output: %v", err))
	}

	if mapPath != "" {
		if err := writeMapFile(mapPath, result); err != nil {
			fail(err)
		}
	}
	if reportPath != "" {
		if err := writeReportFile(reportPath, result); err != nil {
			fail(err)
		}
	}
	glog.Flush()
}
