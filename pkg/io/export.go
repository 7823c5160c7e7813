package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/graphsnap/pkg/serial"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// Write serializes v with the default registry and writes it to w.
func Write(w io.Writer, v any, opts ...serial.Option) error {
	return WriteWith(serial.New(nil, opts...), w, v)
}

// WriteWith serializes v with s and writes it to w.
func WriteWith(s *serial.Serializer, w io.Writer, v any) error {
	node, err := s.Encode(v)
	if err != nil {
		return err
	}
	b, err := tree.Marshal(node)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportFile writes v to a file at path, replacing any existing file.
// This is a convenience wrapper around [Write] for file-based output.
func ExportFile(path string, v any, opts ...serial.Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(f, v, opts...)
}
