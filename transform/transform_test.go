package transform

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// memSink collects emitted entries in memory.
type memSink struct {
	names    []string
	entries  map[string]*bytes.Buffer
	open     string
	closeErr error
}

func newMemSink() *memSink {
	return &memSink{entries: make(map[string]*bytes.Buffer)}
}

type memEntry struct {
	*bytes.Buffer
	s *memSink
}

func (e memEntry) Close() error {
	e.s.open = ""
	return e.s.closeErr
}

func (s *memSink) Create(name string) (io.WriteCloser, error) {
	if s.open != "" {
		return nil, errors.New("entry " + s.open + " was not closed")
	}
	if _, ok := s.entries[name]; ok {
		return nil, errors.New("duplicate entry " + name)
	}
	buf := new(bytes.Buffer)
	s.entries[name] = buf
	s.names = append(s.names, name)
	s.open = name
	return memEntry{Buffer: buf, s: s}, nil
}

func (s *memSink) get(t *testing.T, name string) string {
	t.Helper()
	buf, ok := s.entries[name]
	if !ok {
		t.Fatalf("entry %s was not emitted, have %v", name, s.names)
	}
	return buf.String()
}

type failingSink struct{ err error }

func (s failingSink) Create(string) (io.WriteCloser, error) {
	return nil, s.err
}
