// Package dom provides the node-tree primitives the Mosaic engine patches.
//
// Trees are golang.org/x/net/html nodes. The engine never holds live node
// references between repaints; it re-derives every commit target from the
// instance root by replaying a recorded child-index path, so the helpers
// here are all path- and sibling-oriented.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses markup in a template-element context and returns a
// detached container element holding the parsed nodes as children. The
// template context keeps content like table rows and comment nodes intact
// instead of letting the parser relocate or drop them.
func ParseFragment(markup string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "template",
		DataAtom: atom.Template,
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}

	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "template",
		DataAtom: atom.Template,
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// Clone returns a deep copy of n, detached from any parent.
func Clone(n *html.Node) *html.Node {
	copied := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		copied.Attr = make([]html.Attribute, len(n.Attr))
		copy(copied.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		copied.AppendChild(Clone(c))
	}
	return copied
}

// PathTo returns the child-index path from root down to n. The second
// return is false when n is not a descendant of root. The path counts
// every child node, not only elements, because text and comment nodes
// occupy slots too.
func PathTo(root, n *html.Node) ([]int, bool) {
	if n == root {
		return []int{}, true
	}

	var path []int
	for cur := n; cur != root; cur = cur.Parent {
		if cur.Parent == nil {
			return nil, false
		}
		path = append([]int{ChildIndex(cur)}, path...)
	}
	return path, true
}

// AtPath replays a child-index path from root and returns the node it
// lands on, or nil when the path runs past the live tree.
func AtPath(root *html.Node, path []int) *html.Node {
	cur := root
	for _, idx := range path {
		cur = ChildAt(cur, idx)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// ChildIndex returns n's position among its parent's children, or -1 when
// n has no parent.
func ChildIndex(n *html.Node) int {
	if n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// ChildAt returns n's i-th child, or nil when i is out of range.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; c = c.NextSibling {
		i--
	}
	return c
}

// ChildCount returns the number of direct children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Walk visits every node under root in pre-order, passing the child-index
// path from root to each node. Returning false from fn stops the walk.
// The root itself is not visited.
func Walk(root *html.Node, fn func(n *html.Node, path []int) bool) {
	var traverse func(n *html.Node, path []int) bool
	traverse = func(n *html.Node, path []int) bool {
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			childPath := append(append([]int{}, path...), i)
			if !fn(c, childPath) {
				return false
			}
			if !traverse(c, childPath) {
				return false
			}
			i++
		}
		return true
	}
	traverse(root, nil)
}

// FindByAttr returns the first node in pre-order under root carrying the
// given attribute value, or nil when none does.
func FindByAttr(root *html.Node, name, value string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node, _ []int) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if v, ok := GetAttr(n, name); ok && v == value {
			found = n
			return false
		}
		return true
	})
	return found
}

// Render serializes n to markup.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderChildren serializes n's children, concatenated, without n's own
// tags. Used for fragment containers whose wrapper element is synthetic.
func RenderChildren(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// ReplaceWith swaps old for repl in old's parent. repl must be detached.
// No-op when old has no parent.
func ReplaceWith(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
}

// InsertAfter places n immediately after ref under ref's parent. n must
// be detached.
func InsertAfter(ref, n *html.Node) {
	parent := ref.Parent
	if parent == nil {
		return
	}
	if ref.NextSibling != nil {
		parent.InsertBefore(n, ref.NextSibling)
	} else {
		parent.AppendChild(n)
	}
}

// Detach removes n from its parent. No-op when already detached.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// TextNode creates a detached text node.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// CommentNode creates a detached comment node with the given data.
func CommentNode(data string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: data}
}

// Element creates a detached element node for the given tag name.
func Element(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// Container creates the neutral grouping element used when a slot commits
// several top-level nodes at once.
func Container() *html.Node {
	return Element("div")
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsComment reports whether n is a comment node.
func IsComment(n *html.Node) bool {
	return n != nil && n.Type == html.CommentNode
}

// GetAttr returns the value of the named attribute and whether it exists.
func GetAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, replacing any existing value.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the named attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasAttr reports whether the named attribute is present.
func HasAttr(n *html.Node, name string) bool {
	_, ok := GetAttr(n, name)
	return ok
}
