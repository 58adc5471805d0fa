package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCommandDefaultsToServe(t *testing.T) {
	assert.Equal(t, "serve", resolveCommand([]string{"crusader"}))
	assert.Equal(t, "serve", resolveCommand([]string{"crusader", "serve"}))
	assert.Equal(t, "update", resolveCommand([]string{"crusader", "update"}))
	assert.Equal(t, "version", resolveCommand([]string{"crusader", "version"}))
}
