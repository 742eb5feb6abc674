//go:build tools

// Package tools pins development tool dependencies in go.mod.
package tools

import (
	// mockgen regenerates internal/mocks (see internal/mocks/generate.go).
	_ "go.uber.org/mock/mockgen"
)
