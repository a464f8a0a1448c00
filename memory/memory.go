// Package memory discovers the dynamic slots of a compiled template. A
// single tree walk over the parsed fragment yields one immutable slot
// descriptor per interpolated value, in interpolation order. The
// descriptors are shared by reference across every repaint of every
// instance of that template and are never mutated afterwards.
package memory

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/dom"
	"github.com/atilaykosker/Mosaic/markup"
)

// Kind distinguishes the three slot flavors.
type Kind int

const (
	// KindNode marks a slot in element or text position, discovered as a
	// marker comment.
	KindNode Kind = iota
	// KindAttribute marks a slot inside an attribute value.
	KindAttribute
	// KindEvent is an attribute slot whose name carries the "on" prefix;
	// its value binds a listener instead of writing an attribute.
	KindEvent
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindAttribute:
		return "attribute"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Memory is one dynamic slot descriptor. Path is the child-index chain
// from the template's root fragment to the node owning the slot; it is
// the sole addressing mechanism, replayed against the live tree on every
// commit.
type Memory struct {
	Kind Kind
	Path []int

	// Attr is the attribute name for attribute and event slots.
	Attr string

	// AttrTemplate is the attribute's compiled value, markers included,
	// and Ordinal is this slot's hole index within it. Together they let
	// the commit engine rewrite one hole of a multi-hole attribute
	// without touching its neighbors.
	AttrTemplate string
	Ordinal      int

	// OwnerIsComponent records whether the addressed element (or, for
	// node slots landing on a marker, its parent) is a registered
	// component type. The commit engine routes such updates through the
	// component instead of writing raw DOM.
	OwnerIsComponent bool
}

// eventPrefix is the naming convention marking listener attributes.
const eventPrefix = "on"

// Discover walks the fragment pre-order and returns the slot list. At
// each element, attributes are scanned first (they precede children in
// the source), emitting one Memory per marker occurrence in each value;
// marker comments met in child position emit node slots. isComponent
// reports whether a tag name is a registered component type; nil means
// no tags are.
func Discover(fragment *html.Node, isComponent func(tag string) bool) []*Memory {
	if isComponent == nil {
		isComponent = func(string) bool { return false }
	}

	var memories []*Memory
	dom.Walk(fragment, func(n *html.Node, path []int) bool {
		switch n.Type {
		case html.ElementNode:
			owner := isComponent(n.Data)
			for _, attr := range n.Attr {
				for i := 0; i < markerCount(attr.Key, attr.Val); i++ {
					memories = append(memories, &Memory{
						Kind:             attrKind(attr.Key),
						Path:             path,
						Attr:             attr.Key,
						AttrTemplate:     attr.Val,
						Ordinal:          i,
						OwnerIsComponent: owner,
					})
				}
			}
		case html.CommentNode:
			if n.Data != markup.Token {
				return true
			}
			owner := n.Parent != nil && n.Parent != fragment && isComponent(n.Parent.Data)
			memories = append(memories, &Memory{
				Kind:             KindNode,
				Path:             path,
				OwnerIsComponent: owner,
			})
		}
		return true
	})
	return memories
}

// markerCount returns how many values an attribute's compiled value
// consumes. The value is split on the attribute's boundary character and
// each part contributes its marker occurrences, so a slot is found whether
// the marker stands alone or sits inside static text like "width: ...px".
func markerCount(name, value string) int {
	count := 0
	for _, part := range splitParts(name, value) {
		count += strings.Count(part, markup.Token)
	}
	return count
}

// splitParts splits an attribute value on its boundary character: ";" for
// style attributes, whitespace otherwise.
func splitParts(name, value string) []string {
	if name == "style" {
		return strings.Split(value, ";")
	}
	return strings.Fields(value)
}

func attrKind(name string) Kind {
	if strings.HasPrefix(name, eventPrefix) {
		return KindEvent
	}
	return KindAttribute
}
