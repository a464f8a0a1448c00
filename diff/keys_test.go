package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name      string
		oldKeys   []string
		newKeys   []string
		deletions []string
		additions []KeyAddition
	}{
		{
			name:      "one removed one added",
			oldKeys:   []string{"a", "b", "c"},
			newKeys:   []string{"a", "c", "d"},
			deletions: []string{"b"},
			additions: []KeyAddition{{Key: "d", Index: 2}},
		},
		{
			name:      "initial fill",
			oldKeys:   nil,
			newKeys:   []string{"a", "b"},
			deletions: nil,
			additions: []KeyAddition{{Key: "a", Index: 0}, {Key: "b", Index: 1}},
		},
		{
			name:      "emptied out",
			oldKeys:   []string{"a", "b"},
			newKeys:   nil,
			deletions: []string{"a", "b"},
			additions: nil,
		},
		{
			name:      "unchanged",
			oldKeys:   []string{"a", "b"},
			newKeys:   []string{"a", "b"},
			deletions: nil,
			additions: nil,
		},
		{
			name:      "pure reorder is invisible",
			oldKeys:   []string{"a", "b", "c"},
			newKeys:   []string{"c", "a", "b"},
			deletions: nil,
			additions: nil,
		},
		{
			name:      "append lands at old length",
			oldKeys:   []string{"a", "b"},
			newKeys:   []string{"a", "b", "c"},
			deletions: nil,
			additions: []KeyAddition{{Key: "c", Index: 2}},
		},
		{
			name:      "insert in the middle",
			oldKeys:   []string{"a", "c"},
			newKeys:   []string{"a", "b", "c"},
			deletions: nil,
			additions: []KeyAddition{{Key: "b", Index: 1}},
		},
		{
			name:      "full replacement",
			oldKeys:   []string{"a", "b"},
			newKeys:   []string{"x", "y"},
			deletions: []string{"a", "b"},
			additions: []KeyAddition{{Key: "x", Index: 0}, {Key: "y", Index: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deletions, additions := Keys(tt.oldKeys, tt.newKeys)
			assert.Equal(t, tt.deletions, deletions)
			assert.Equal(t, tt.additions, additions)
		})
	}
}
