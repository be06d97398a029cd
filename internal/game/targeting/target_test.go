package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionSingle(t *testing.T) {
	sel := NewSelection(Requirement{})
	assert.Equal(t, ModeSingle, sel.Requirement.Mode)
	assert.False(t, sel.IsComplete())

	require.True(t, sel.Toggle("a"))
	assert.True(t, sel.IsComplete())
	assert.False(t, sel.Toggle("b"), "single selection should be full")

	require.True(t, sel.Toggle("a"), "toggling a selected target deselects it")
	assert.Empty(t, sel.Targets)
}

func TestSelectionExactlyAndUpTo(t *testing.T) {
	exactly := NewSelection(Requirement{Mode: ModeExactly, NumCards: 2})
	exactly.Toggle("a")
	assert.False(t, exactly.IsComplete())
	exactly.Toggle("b")
	assert.True(t, exactly.IsComplete())
	assert.False(t, exactly.CanSelectMore())

	upTo := NewSelection(Requirement{Mode: ModeUpTo, NumCards: 3})
	upTo.Toggle("a")
	assert.True(t, upTo.IsComplete())
	assert.True(t, upTo.CanSelectMore())

	optional := NewSelection(Requirement{Mode: ModeUpTo, NumCards: 3, Optional: true})
	assert.True(t, optional.IsComplete())
}

func TestValidate(t *testing.T) {
	legal := func(id string) bool { return id != "bad" }

	assert.NoError(t, Validate(Requirement{Mode: ModeExactly, NumCards: 2}, []string{"a", "b"}, legal))
	assert.Error(t, Validate(Requirement{Mode: ModeExactly, NumCards: 2}, []string{"a"}, legal))
	assert.Error(t, Validate(Requirement{Mode: ModeSingle}, []string{"a", "b"}, legal))
	assert.Error(t, Validate(Requirement{Mode: ModeUnlimited}, []string{"a", "a"}, legal))
	assert.Error(t, Validate(Requirement{Mode: ModeUnlimited}, []string{"bad"}, legal))
	assert.NoError(t, Validate(Requirement{Mode: ModeUnlimited}, []string{"a", "b", "c"}, nil))
	assert.Equal(t, "up to 2", Requirement{Mode: ModeUpTo, NumCards: 2}.String())
}
