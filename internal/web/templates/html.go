// Package templates holds the HTML components of the web UI.
package templates

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/fileconv/internal/core"
)

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s escaped.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// rawf formats without escaping; arguments must already be safe.
func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

func attr(s string) string { return templ.EscapeString(s) }

func formatStat(f core.Float) string {
	v := float64(f)
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func checked(b bool) string {
	if b {
		return " checked"
	}
	return ""
}
