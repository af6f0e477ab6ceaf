package templates

import (
	"context"

	"github.com/a-h/templ"
)

// AppTitle is shown in the header and the browser tab.
const AppTitle = "Smart File Converter & Data Cleaner"

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		if title != "" && title != AppTitle {
			h.text(title)
			h.raw(" - ")
		}
		h.text(AppTitle)
		h.raw("</title>")
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw("</head><body><header><h1><a href=\"/\">")
		h.text(AppTitle)
		h.raw("</a></h1><p>Upload CSV or Excel files to convert them and enhance data quality.</p></header><main>")
		h.render(ctx, body)
		h.raw("</main></body></html>")
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<p>")
			h.text(action)
			h.raw("</p>")
		}
		if code != "" {
			h.raw(`<small class="code">`)
			h.text(code)
			h.raw("</small>")
		}
		h.raw("</div>")
	})
}

// ErrorPage is the full-page variant of ErrorAlert.
func ErrorPage(message, action, code string) templ.Component {
	return Layout("Error", component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back to upload</a></p>`)
	}))
}
