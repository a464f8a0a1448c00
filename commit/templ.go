package commit

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
)

// renderTempl renders an external templ component to markup and parses it
// back into a spliceable node. Multi-root and empty output is wrapped so
// the replacement stays one-for-one.
func (e *Engine) renderTempl(ctx context.Context, tc templ.Component) (*html.Node, error) {
	var buf strings.Builder
	if err := tc.Render(ctx, &buf); err != nil {
		return nil, mosaicerrors.NewCommit("rendering templ component", err)
	}
	frag, err := dom.ParseFragment(buf.String())
	if err != nil {
		return nil, mosaicerrors.NewCommit("parsing templ output", err)
	}
	return fragmentRoot(frag), nil
}
