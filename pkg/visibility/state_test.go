package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateDerivedFlags(t *testing.T) {
	tests := []struct {
		code                          Code
		hidden, visible, fullyvisible bool
		name                          string
	}{
		{Hidden, true, false, false, "hidden"},
		{Visible, false, true, false, "visible"},
		{FullyVisible, false, true, true, "fullyvisible"},
	}

	for _, tt := range tests {
		s := NewState(tt.code, 0.5, nil)
		assert.Equal(t, tt.hidden, s.Hidden(), tt.name)
		assert.Equal(t, tt.visible, s.Visible(), tt.name)
		assert.Equal(t, tt.fullyvisible, s.FullyVisible(), tt.name)
		assert.Equal(t, tt.name, s.Name())
		assert.Nil(t, s.Previous)
	}
}

func TestEmptyState(t *testing.T) {
	var s *State

	assert.False(t, s.Hidden())
	assert.False(t, s.Visible())
	assert.False(t, s.FullyVisible())
	assert.Equal(t, "", s.Name())
}

func TestNewStateHistoryDepthIsOne(t *testing.T) {
	first := NewState(Hidden, 0, nil)
	second := NewState(Visible, 0.4, first)
	third := NewState(FullyVisible, 1, second)

	require.NotNil(t, third.Previous)
	assert.Equal(t, Visible, third.Previous.Code)
	assert.Equal(t, 0.4, third.Previous.Percentage)
	assert.Nil(t, third.Previous.Previous)

	// the source state keeps its own history
	require.NotNil(t, second.Previous)
	assert.Equal(t, Hidden, second.Previous.Code)

	// previous is a copy, not the same instance
	assert.NotSame(t, second, third.Previous)
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "visible", Visible.String())
	assert.Equal(t, "fullyvisible", FullyVisible.String())
	assert.Equal(t, "unknown", Code(7).String())
}
