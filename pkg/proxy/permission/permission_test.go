package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolTreatsUndefinedAsDenied(t *testing.T) {
	assert.True(t, True.Bool())
	assert.False(t, False.Bool())
	assert.False(t, Undefined.Bool())
}
