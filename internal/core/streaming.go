package core

// streaming.go provides the readers that sit between a fetched resource and
// the CSV decoder. Nothing here buffers more than one chunk, so arbitrarily
// large files (cities.csv is well over 100k rows) stream in constant memory.
//
//   - SkipBOM: drops a leading UTF-8 byte order mark
//   - CountingReader: tracks raw bytes consumed for progress and metrics
//
// Use WrapForStreaming to apply both in the correct order. Invalid UTF-8 is
// rejected per field by RowReader.

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader that yields r without a leading UTF-8 BOM.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CountingReader wraps an io.Reader to track bytes read.
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

// WrapForStreaming decorates a raw resource stream for CSV decoding.
//
// The counter sits closest to the source so it reports bytes transferred,
// BOM included.
func WrapForStreaming(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return SkipBOM(counter), counter
}
