package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParseFragment(t *testing.T) {
	t.Run("simple element", func(t *testing.T) {
		root, err := ParseFragment(`<div class="box">hello</div>`)
		require.NoError(t, err)
		require.Equal(t, 1, ChildCount(root))

		div := root.FirstChild
		assert.Equal(t, "div", div.Data)
		cls, ok := GetAttr(div, "class")
		assert.True(t, ok)
		assert.Equal(t, "box", cls)
	})

	t.Run("comments survive", func(t *testing.T) {
		root, err := ParseFragment(`<span></span><!--{{marker}}--><span></span>`)
		require.NoError(t, err)
		require.Equal(t, 3, ChildCount(root))

		comment := ChildAt(root, 1)
		assert.Equal(t, html.CommentNode, comment.Type)
		assert.Equal(t, "{{marker}}", comment.Data)
	})

	t.Run("table content survives without a table ancestor", func(t *testing.T) {
		root, err := ParseFragment(`<tr><td>cell</td></tr>`)
		require.NoError(t, err)
		require.Equal(t, 1, ChildCount(root))

		tr := root.FirstChild
		assert.Equal(t, "tr", tr.Data)
		require.Equal(t, 1, ChildCount(tr))
		assert.Equal(t, "td", tr.FirstChild.Data)
	})

	t.Run("multiple top-level nodes", func(t *testing.T) {
		root, err := ParseFragment(`<h1>a</h1><p>b</p>`)
		require.NoError(t, err)
		assert.Equal(t, 2, ChildCount(root))
	})
}

func TestRenderRoundTrip(t *testing.T) {
	markup := `<div id="x"><!--{{marker}}--><em>y</em></div>`
	root, err := ParseFragment(markup)
	require.NoError(t, err)

	out, err := RenderChildren(root)
	require.NoError(t, err)
	assert.Equal(t, markup, out)
}

func TestClone(t *testing.T) {
	root, err := ParseFragment(`<ul class="list"><li>one</li><li>two</li></ul>`)
	require.NoError(t, err)

	copied := Clone(root)
	require.Equal(t, ChildCount(root), ChildCount(copied))
	assert.Nil(t, copied.Parent)

	// Mutating the copy must not touch the original.
	SetAttr(copied.FirstChild, "class", "changed")
	Detach(copied.FirstChild.FirstChild)

	origClass, _ := GetAttr(root.FirstChild, "class")
	assert.Equal(t, "list", origClass)
	assert.Equal(t, 2, ChildCount(root.FirstChild))
	assert.Equal(t, 1, ChildCount(copied.FirstChild))
}

func TestPathRoundTrip(t *testing.T) {
	root, err := ParseFragment(`<div><span>a</span><span><b>deep</b></span></div><p>tail</p>`)
	require.NoError(t, err)

	b := root.FirstChild.LastChild.FirstChild
	require.Equal(t, "b", b.Data)

	path, ok := PathTo(root, b)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 0}, path)
	assert.Same(t, b, AtPath(root, path))
}

func TestPathTo(t *testing.T) {
	root, err := ParseFragment(`<div></div>`)
	require.NoError(t, err)

	t.Run("root resolves to empty path", func(t *testing.T) {
		path, ok := PathTo(root, root)
		require.True(t, ok)
		assert.Empty(t, path)
		assert.Same(t, root, AtPath(root, nil))
	})

	t.Run("foreign node is not found", func(t *testing.T) {
		stranger := Element("div")
		_, ok := PathTo(root, stranger)
		assert.False(t, ok)
	})
}

func TestAtPathOutOfRange(t *testing.T) {
	root, err := ParseFragment(`<div><span></span></div>`)
	require.NoError(t, err)

	assert.Nil(t, AtPath(root, []int{0, 5}))
	assert.Nil(t, AtPath(root, []int{3}))
	assert.Nil(t, AtPath(root, []int{0, 0, 0}))
}

func TestWalkOrderAndPaths(t *testing.T) {
	root, err := ParseFragment(`<div><i>x</i></div><p></p>`)
	require.NoError(t, err)

	var visited []string
	var paths [][]int
	Walk(root, func(n *html.Node, path []int) bool {
		visited = append(visited, n.Data)
		paths = append(paths, path)
		return true
	})

	assert.Equal(t, []string{"div", "i", "x", "p"}, visited)
	assert.Equal(t, [][]int{{0}, {0, 0}, {0, 0, 0}, {1}}, paths)
}

func TestWalkEarlyStop(t *testing.T) {
	root, err := ParseFragment(`<div></div><p></p><span></span>`)
	require.NoError(t, err)

	count := 0
	Walk(root, func(n *html.Node, _ []int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestFindByAttr(t *testing.T) {
	root, err := ParseFragment(`<ul><li data-key="a">x</li><li data-key="b">y</li></ul>`)
	require.NoError(t, err)

	found := FindByAttr(root, "data-key", "b")
	require.NotNil(t, found)
	assert.Equal(t, "li", found.Data)
	assert.Equal(t, "y", found.FirstChild.Data)

	assert.Nil(t, FindByAttr(root, "data-key", "z"))
}

func TestReplaceWith(t *testing.T) {
	root, err := ParseFragment(`<div><!--{{marker}}--></div>`)
	require.NoError(t, err)

	marker := root.FirstChild.FirstChild
	require.Equal(t, html.CommentNode, marker.Type)

	ReplaceWith(marker, TextNode("hello"))

	out, err := RenderChildren(root)
	require.NoError(t, err)
	assert.Equal(t, `<div>hello</div>`, out)
	assert.Nil(t, marker.Parent)
}

func TestInsertAfter(t *testing.T) {
	root, err := ParseFragment(`<ul><li>a</li></ul>`)
	require.NoError(t, err)

	first := root.FirstChild.FirstChild
	second := Element("li")
	second.AppendChild(TextNode("b"))
	InsertAfter(first, second)

	third := Element("li")
	third.AppendChild(TextNode("c"))
	InsertAfter(second, third)

	out, err := RenderChildren(root)
	require.NoError(t, err)
	assert.Equal(t, `<ul><li>a</li><li>b</li><li>c</li></ul>`, out)
}

func TestDetach(t *testing.T) {
	root, err := ParseFragment(`<div><span>x</span></div>`)
	require.NoError(t, err)

	span := root.FirstChild.FirstChild
	Detach(span)
	assert.Equal(t, 0, ChildCount(root.FirstChild))
	assert.Nil(t, span.Parent)

	// Detaching twice is harmless.
	Detach(span)
}

func TestAttrHelpers(t *testing.T) {
	n := Element("input")

	assert.False(t, HasAttr(n, "disabled"))

	SetAttr(n, "disabled", "true")
	v, ok := GetAttr(n, "disabled")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	SetAttr(n, "disabled", "false")
	v, _ = GetAttr(n, "disabled")
	assert.Equal(t, "false", v)
	assert.Len(t, n.Attr, 1)

	RemoveAttr(n, "disabled")
	assert.False(t, HasAttr(n, "disabled"))

	// Removing a missing attribute is harmless.
	RemoveAttr(n, "disabled")
}

func TestChildHelpers(t *testing.T) {
	root, err := ParseFragment(`<i></i><b></b><u></u>`)
	require.NoError(t, err)

	assert.Equal(t, 3, ChildCount(root))
	assert.Equal(t, "b", ChildAt(root, 1).Data)
	assert.Nil(t, ChildAt(root, 3))
	assert.Nil(t, ChildAt(root, -1))

	assert.Equal(t, 2, ChildIndex(root.LastChild))
	assert.Equal(t, -1, ChildIndex(Element("div")))
}

func TestNodeConstructors(t *testing.T) {
	text := TextNode("abc")
	assert.Equal(t, html.TextNode, text.Type)

	comment := CommentNode("note")
	assert.True(t, IsComment(comment))
	assert.False(t, IsComment(text))
	assert.False(t, IsComment(nil))

	el := Element("section")
	assert.True(t, IsElement(el))
	assert.False(t, IsElement(comment))
	assert.False(t, IsElement(nil))

	container := Container()
	assert.True(t, IsElement(container))
}
