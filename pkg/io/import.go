package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/graphsnap/pkg/serial"
)

// Read decodes the document in r with the default registry.
//
// Read consumes r to the end; trailing content after the document is an
// error. Read does not close r.
func Read[T any](r io.Reader, opts ...serial.Option) (T, error) {
	return ReadWith[T](serial.New(nil, opts...), r)
}

// ReadWith decodes the document in r with s.
func ReadWith[T any](s *serial.Serializer, r io.Reader) (T, error) {
	var zero T
	data, err := io.ReadAll(r)
	if err != nil {
		return zero, fmt.Errorf("read: %w", err)
	}
	node, err := s.Parse(data)
	if err != nil {
		return zero, err
	}
	return serial.DecodeTree[T](s, node)
}

// ImportFile reads a file at path and decodes the graph it holds.
//
// ImportFile returns the same errors as [Read], wrapped with the file path
// for context.
func ImportFile[T any](path string, opts ...serial.Option) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := Read[T](f, opts...)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
