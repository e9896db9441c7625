package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10))
	assert.Equal(t, "abc", TruncateRunes("abcdef", 3))
	assert.Equal(t, "hello big", TruncateRunes("hello big world", 11))
	assert.Equal(t, "héllo", TruncateRunes("héllowörld", 5))
	assert.Equal(t, "anything", TruncateRunes("anything", 0))
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  Senior   Go\tEngineer \r\n\r\n\r\n  Builds   things  \n"
	assert.Equal(t, "Senior Go Engineer\n\nBuilds things", CollapseWhitespace(in))
}
