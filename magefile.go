//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildReco)
	fmt.Println("Compilation finished")
	return nil
}

// BuildReco compiles the reconstruction executable into ./bin/reco.
func BuildReco() error {
	fmt.Println("Building reco executable...")
	return goCommand("build", "-o", "./bin/reco", "./reco")
}

// Test runs the unit tests of every package.
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

// goCommand runs the go tool with cgo enabled, since the HDF5 bindings need
// the C library.
func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
