package prompt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))
	assert.ErrorIs(t, wrapError(promptui.ErrInterrupt), ErrAborted)
	assert.ErrorIs(t, wrapError(promptui.ErrEOF), ErrAborted)

	other := errors.New("boom")
	assert.Equal(t, other, wrapError(other))
}

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(fmt.Errorf("select: %w", ErrAborted)))
	assert.False(t, IsAborted(promptui.ErrAbort))
}

func TestConfirmWithForce(t *testing.T) {
	var p Prompter
	ok, err := p.ConfirmWithForce("Overwrite?", true)
	assert.NoError(t, err)
	assert.True(t, ok)
}
