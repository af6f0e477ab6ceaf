package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// UploadPageData configures the upload form.
type UploadPageData struct {
	MaxFileSize int64
	MaxFiles    int
}

// UploadPage renders the multi-file upload form.
func UploadPage(d UploadPageData) templ.Component {
	return Layout("", component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card"><h2>Upload CSV or Excel Files</h2>`)
		h.raw(`<form method="post" action="/upload" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="files" accept=".csv,.xlsx" multiple required>`)
		h.raw(`<p class="hint">Up to `)
		h.raw(strconv.Itoa(d.MaxFiles))
		h.raw(" files, ")
		h.text(formatBytes(d.MaxFileSize))
		h.raw(` each. Files are processed in upload order.</p>`)
		h.raw(`<button type="submit">Upload</button></form></section>`)
	}))
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit:
		return strconv.FormatInt(n/(unit*unit), 10) + " MB"
	case n >= unit:
		return strconv.FormatInt(n/unit, 10) + " KB"
	default:
		return strconv.FormatInt(n, 10) + " bytes"
	}
}
