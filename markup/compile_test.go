package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{
			name:     "node position",
			segments: []string{"<div>", "</div>"},
			expected: "<div>" + NodeMarker + "</div>",
		},
		{
			name:     "attribute boundary",
			segments: []string{`<div style="`, `">`},
			expected: `<div style="` + Token + `">`,
		},
		{
			name:     "attribute with static prefix",
			segments: []string{`<div style="width: `, `px"></div>`},
			expected: `<div style="width: ` + Token + `px"></div>`,
		},
		{
			name:     "two holes in one attribute",
			segments: []string{`<div style="width: `, `; color: `, `"></div>`},
			expected: `<div style="width: ` + Token + `; color: ` + Token + `"></div>`,
		},
		{
			name:     "unquoted attribute value",
			segments: []string{`<input value=`, `>`},
			expected: `<input value=` + Token + `>`,
		},
		{
			name:     "single quoted attribute value",
			segments: []string{`<a href='`, `'>x</a>`},
			expected: `<a href='` + Token + `'>x</a>`,
		},
		{
			name:     "event attribute",
			segments: []string{`<button onclick="`, `">go</button>`},
			expected: `<button onclick="` + Token + `">go</button>`,
		},
		{
			name:     "hole after closed attribute is node position",
			segments: []string{`<div class="box">`, `</div>`},
			expected: `<div class="box">` + NodeMarker + `</div>`,
		},
		{
			name:     "mixed attribute then node",
			segments: []string{`<li class="`, `">`, `</li>`},
			expected: `<li class="` + Token + `">` + NodeMarker + `</li>`,
		},
		{
			name:     "consecutive node holes",
			segments: []string{`<p>`, ` and `, `</p>`},
			expected: `<p>` + NodeMarker + ` and ` + NodeMarker + `</p>`,
		},
		{
			name:     "no holes",
			segments: []string{`<hr>`},
			expected: `<hr>`,
		},
		{
			name:     "empty input",
			segments: nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compile(tt.segments))
		})
	}
}

func TestCompilePurity(t *testing.T) {
	segments := []string{`<div class="`, `"><span>`, `</span></div>`}
	assert.Equal(t, Compile(segments), Compile(segments))
}

func TestValueCount(t *testing.T) {
	assert.Equal(t, 0, ValueCount(nil))
	assert.Equal(t, 0, ValueCount([]string{"<hr>"}))
	assert.Equal(t, 2, ValueCount([]string{"<p>", "-", "</p>"}))
}

func TestAttributePosition(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		inAttr bool
	}{
		{"open double quote", `<div id="`, true},
		{"open double quote with content", `<div style="width: `, true},
		{"open single quote", `<a href='`, true},
		{"bare equals", `<input value=`, true},
		{"closed quote", `<div id="x">`, false},
		{"plain text", `<p>hello `, false},
		{"after node marker", `<div>` + NodeMarker, false},
		{"reopened after earlier hole", `<div style="a: ` + Token + `; b: `, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inAttr, attributePosition(tt.prefix))
		})
	}
}
