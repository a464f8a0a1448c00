package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	err := NewTemplateMismatch("todo-card", 3, 2)
	msg := err.Error()

	assert.Contains(t, msg, "[template_mismatch]")
	assert.Contains(t, msg, "component:todo-card")
	assert.Contains(t, msg, "2 values for 3 slots")
}

func TestErrorFormat_WithSlot(t *testing.T) {
	err := NewCommit("listener bind failed", nil).WithSlot([]int{0, 2, 1}, "onclick")

	msg := err.Error()
	assert.Contains(t, msg, "slot:/0/2/1")
	assert.Contains(t, msg, "attr:onclick")
}

func TestErrorFormat_WithCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewMalformedMarkup("nav-bar", cause)

	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestIsMatchesByCode(t *testing.T) {
	err := NewUnknownComponentType("fancy-list")

	assert.True(t, stderrors.Is(err, &Error{Code: CodeUnknownComponentType}))
	assert.False(t, stderrors.Is(err, &Error{Code: CodeTemplateMismatch}))
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := NewUnstableDataComparison("handler")
	wrapped := fmt.Errorf("repaint: %w", inner)

	assert.True(t, IsUnstableDataComparison(wrapped))
	assert.False(t, IsTemplateMismatch(wrapped))
	assert.False(t, IsUnstableDataComparison(stderrors.New("plain")))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsTemplateMismatch(NewTemplateMismatch("x", 1, 2)))
	assert.True(t, IsUnknownComponentType(NewUnknownComponentType("x")))
	assert.False(t, IsUnknownComponentType(nil))
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "/", PathString(nil))
	assert.Equal(t, "/", PathString([]int{}))
	assert.Equal(t, "/3", PathString([]int{3}))
	assert.Equal(t, "/0/2/1", PathString([]int{0, 2, 1}))
}
