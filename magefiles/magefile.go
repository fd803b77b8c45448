//go:build mage

// Package main contains Mage build targets for jpg2pdf.
package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "jpg2pdf"
)

// Default target when running mage without arguments.
var Default = Build

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := binDir + "/" + binName
	if err := sh.RunV("go", "build", "-o", out, "."); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check runs go vet followed by the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Serve builds and starts the web interface.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binDir+"/"+binName, "serve")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
