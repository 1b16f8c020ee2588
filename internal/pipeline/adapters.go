package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// Output-format adapters. Each is a plain Step so it composes like any other.

// ToBytes is the bytes output parser: text in, raw bytes out.
func ToBytes() Step[string, []byte] {
	return Map(func(s string) []byte { return []byte(s) })
}

// BytesToText decodes a raw payload as text.
func BytesToText() Step[[]byte, string] {
	return Map(func(b []byte) string { return string(b) })
}

// Base64 encodes a binary payload with standard padding.
func Base64() Step[[]byte, string] {
	return Map(base64.StdEncoding.EncodeToString)
}

// ReadAll buffers a stream into a single byte slice. A ReadCloser is closed
// once drained.
func ReadAll() Step[io.Reader, []byte] {
	return StepFunc[io.Reader, []byte](func(ctx context.Context, r io.Reader) ([]byte, error) {
		if r == nil {
			return nil, compositionErrorf("read-all", "nil stream")
		}
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		return data, nil
	})
}

// Concat joins a sequence of chunks into one payload.
func Concat() Step[[][]byte, []byte] {
	return Map(func(chunks [][]byte) []byte {
		n := 0
		for _, c := range chunks {
			n += len(c)
		}
		out := make([]byte, 0, n)
		for _, c := range chunks {
			out = append(out, c...)
		}
		return out
	})
}
