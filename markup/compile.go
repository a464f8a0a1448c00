package markup

import "strings"

// Compile joins the literal segments of a view into one markup string,
// inserting a marker at each of the len(segments)-1 interpolation points.
// Node positions get the comment form, open attribute values the bare
// token. The final segment is appended unmodified.
//
// Compile performs no HTML escaping; callers own sanitization. Calling it
// twice with equal segments yields identical output.
func Compile(segments []string) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(segments)-1; i++ {
		b.WriteString(segments[i])
		if attributePosition(b.String()) {
			b.WriteString(Token)
		} else {
			b.WriteString(NodeMarker)
		}
	}
	b.WriteString(segments[len(segments)-1])
	return b.String()
}

// ValueCount returns the number of interpolated values a segment sequence
// carries, which is one less than the segment count.
func ValueCount(segments []string) int {
	if len(segments) == 0 {
		return 0
	}
	return len(segments) - 1
}
