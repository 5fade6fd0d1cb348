//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "storytl"

var Default = Build

// Build compiles the storytl binary into ./bin
func Build() error {
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", filepath.Join("bin", binary), "./cmd/storytl")
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Integration runs the tests that talk to a real endpoint
func Integration() error {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("OPENAI_API_KEY must be set for integration tests")
	}
	return sh.RunV("go", "test", "-run", "Integration", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check vets and tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install installs the binary into GOPATH/bin
func Install() error {
	mg.Deps(Check)
	return sh.RunV("go", "install", "./cmd/storytl")
}

// Clean removes build output
func Clean() error {
	return sh.Rm("bin")
}
