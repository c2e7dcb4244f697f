package guard

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/principal"
	"github.com/rbmarquez/doctorq/pkg/rbac"
)

// Component picks the component matching d. Nil components render nothing.
func Component(d Decision, allowed, denied, pending templ.Component) templ.Component {
	if c := Choose(d, allowed, denied, pending); c != nil {
		return c
	}
	return templ.NopComponent
}

// Fragment renders allowed or denied depending on the principal's permission,
// evaluated at render time. While the set is loading it renders nothing.
func (g *Guard) Fragment(p principal.Principal, check rbac.Check, allowed, denied templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Component(g.Evaluate(ctx, p, check), allowed, denied, nil).Render(ctx, w)
	})
}

// PatchOption configures the element patch sent to Datastar clients.
type PatchOption = datastar.PatchElementOption

// WithTarget sets the CSS selector of the element to patch.
func WithTarget(selector string) PatchOption {
	return datastar.WithSelector(selector)
}

// FragmentHandler serves a guarded fragment for the request's principal,
// waiting for the permission set. Datastar requests receive the fragment as an
// element patch over SSE, so a page rendered while permissions were pending
// can fill the gap once they load.
func (g *Guard) FragmentHandler(check rbac.Check, allowed, denied templ.Component, opts ...PatchOption) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principal.FromContext(r.Context())
		c := Component(g.Authorize(r.Context(), p, check), allowed, denied, nil)

		if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
			sse := datastar.NewSSE(w, r)
			if err := sse.PatchElementTempl(c, opts...); err != nil {
				g.logger.WarnContext(r.Context(), "fragment patch failed", logger.Error(err))
			}
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := c.Render(r.Context(), w); err != nil {
			g.logger.WarnContext(r.Context(), "fragment render failed", logger.Error(err))
		}
	})
}
