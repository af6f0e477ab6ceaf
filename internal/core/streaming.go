package core

// streaming.go provides the decoding reader used for delimited text input.
//
// Spreadsheet tools write CSV in a few encodings in practice:
//
//   - UTF-8 with a BOM (0xEF 0xBB 0xBF), common from Windows programs
//   - UTF-16 LE/BE with a BOM ("Unicode text" exports)
//   - UTF-8 with stray invalid bytes
//
// NewDecodingReader handles all of them on the fly: a leading BOM selects the
// matching Unicode decoder and is stripped; without a BOM the input is read as
// UTF-8 with invalid sequences replaced by U+FFFD.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecodingReader wraps r so that it yields valid UTF-8 without a BOM.
func NewDecodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader wraps an io.Reader to track bytes read.
// Used to enforce per-file size limits while copying multipart parts.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
