package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(t *testing.T) {
	// main only delegates to cmd.Execute, which drives the whole CLI
	// and exits the process on failure, so it cannot be invoked here.
	// The command behavior itself is covered in cmd/addrlink.
	assert.NotNil(t, main)
}
