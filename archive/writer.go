package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrDuplicateEntry is returned when entry with the same name was
	// already written.
	ErrDuplicateEntry = errors.New("duplicate archive entry")
	// ErrEntryOpen is returned when previous entry was not closed yet.
	ErrEntryOpen = errors.New("previous archive entry is still open")
)

// Writer produces destination archive. Entries are written one at a time,
// every entry has to be closed before the next one is created.
type Writer struct {
	zw      *zip.Writer
	names   map[string]struct{}
	pending string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w), names: make(map[string]struct{})}
}

// Has reports whether entry with the name was already written.
func (w *Writer) Has(name string) bool {
	_, ok := w.names[name]
	return ok
}

func (w *Writer) reserve(name string) error {
	if len(w.pending) != 0 {
		return fmt.Errorf("%w: %s", ErrEntryOpen, w.pending)
	}
	if w.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}
	w.names[name] = struct{}{}
	return nil
}

type entryWriter struct {
	io.Writer
	w    *Writer
	name string
}

func (e *entryWriter) Close() error {
	if e.w.pending == e.name {
		e.w.pending = ""
	}
	return nil
}

// Create adds new deflated entry to the archive.
func (w *Writer) Create(name string) (io.WriteCloser, error) {
	if err := w.reserve(name); err != nil {
		return nil, err
	}
	out, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return nil, fmt.Errorf("unable to create archive entry %s: %w", name, err)
	}
	w.pending = name
	return &entryWriter{Writer: out, w: w, name: name}, nil
}

// Copy writes source entry under its name. Entries of zip sources are
// copied without recompression.
func (w *Writer) Copy(e *Entry) error {
	if err := w.reserve(e.Name); err != nil {
		return err
	}

	if e.zf != nil {
		hdr := e.zf.FileHeader
		if hdr.Name != e.Name {
			// name was decoded from legacy code page
			hdr.Name, hdr.NonUTF8 = e.Name, false
		}
		out, err := w.zw.CreateRaw(&hdr)
		if err != nil {
			return fmt.Errorf("unable to create archive entry %s: %w", e.Name, err)
		}
		in, err := e.zf.OpenRaw()
		if err != nil {
			return fmt.Errorf("unable to read archive entry %s: %w", e.Name, err)
		}
		if _, err := io.Copy(out, in); err != nil {
			return fmt.Errorf("unable to copy archive entry %s: %w", e.Name, err)
		}
		return nil
	}

	out, err := w.zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: e.Modified})
	if err != nil {
		return fmt.Errorf("unable to create archive entry %s: %w", e.Name, err)
	}
	in, err := e.Open()
	if err != nil {
		return fmt.Errorf("unable to read file %s: %w", e.Name, err)
	}
	defer in.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("unable to copy file %s: %w", e.Name, err)
	}
	return nil
}

// Close finishes the archive, underlying writer is not closed.
func (w *Writer) Close() error {
	if len(w.pending) != 0 {
		return fmt.Errorf("%w: %s", ErrEntryOpen, w.pending)
	}
	return w.zw.Close()
}
