// Package markup compiles view segments into static markup with sentinel
// markers reserving every dynamic position. Compilation is purely lexical;
// no tree exists yet at this stage.
package markup

import "regexp"

// Token is the sentinel reserving a dynamic position inside markup. It is
// a fixed string rather than a per-process random one so compilation stays
// a pure function of its input segments.
const Token = "{{mosaic-58a0ca6e}}"

// NodeMarker is the form Token takes in element or text position. The
// parser turns it into a comment node, which slot discovery later finds by
// comparing comment data against Token.
const NodeMarker = "<!--" + Token + "-->"

// lastAttrNameRegexp matches an attribute whose value is still open at the
// end of the scanned text: name, equals sign, and an optional value that
// is bare or begins with an unterminated quote. Groups: leading
// whitespace, attribute name, operator plus partial value.
var lastAttrNameRegexp = regexp.MustCompile(
	`([ \x09\x0a\x0c\x0d])([^\x00-\x1F\x7F-\x9F "'>=/]+)([ \x09\x0a\x0c\x0d]*=[ \x09\x0a\x0c\x0d]*(?:[^ \x09\x0a\x0c\x0d"'` + "`" + `<>=]*|"[^"]*|'[^']*))$`,
)

// attributePosition reports whether an interpolation point falling right
// after prefix sits inside an open attribute value. The prefix is the
// whole markup compiled so far, so holes after an earlier hole in the same
// attribute still classify correctly.
func attributePosition(prefix string) bool {
	return lastAttrNameRegexp.MatchString(prefix)
}
