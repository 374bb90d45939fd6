//go:build mage
// +build mage

package main

import (
	"log"
	"os"
	"path"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// MageRoot is the location of this file. Populated by initPaths().
var MageRoot string

func initPaths() {
	must := func(_err error) {
		if _err != nil {
			log.Fatal(_err)
		}
	}
	var err error
	MageRoot, err = os.Getwd()
	must(err)
}

var Default = Build

func Build() {
	initPaths()
	must := func(err error) {
		if err != nil {
			log.Fatal(err)
		}
	}
	must(sh.Run("go", "build"))
}

func Test() {
	must := func(err error) {
		if err != nil {
			log.Fatal(err)
		}
	}
	mg.Deps(Build)
	must(sh.Run("go", "test", "./..."))
}

func Clean() {
	initPaths()
	must := func(_err error) {
		if _err != nil {
			log.Fatal(_err)
		}
	}
	must(os.Remove(path.Join(MageRoot, "infrared")))
}
