package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerID(t *testing.T) {
	prev := NewFunc
	defer func() { NewFunc = prev }()
	NewFunc = func() string { return "0123456789abcdef" }

	id := WorkerID()
	assert.True(t, strings.HasSuffix(id, "-01234567"), id)
	assert.Equal(t, "0123456789abcdef", New())
}
