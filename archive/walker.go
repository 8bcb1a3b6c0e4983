// Package archive walks merge sources (zip archives or directory trees) and
// writes the destination archive.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"
)

// Entry is a regular file found in a merge source.
type Entry struct {
	// Name is slash separated path relative to the source root.
	Name     string
	Modified time.Time

	zf   *zip.File
	file string
}

// Open returns entry content, caller must close it.
func (e *Entry) Open() (io.ReadCloser, error) {
	if e.zf != nil {
		return e.zf.Open()
	}
	return os.Open(e.file)
}

// WalkFunc is the type of the function called for each entry visited by
// Walk. The source argument contains path passed to Walk. If an error is
// returned, processing stops.
type WalkFunc func(source string, entry *Entry) error

// Walk visits every regular file of the source in encounter order: central
// directory order for zip archives, lexical order for directories. Entries
// with path traversal components ("..") or absolute paths abort the walk.
// When cp is not nil, entry names of zip archives not flagged as UTF-8 are
// decoded with it.
func Walk(ctx context.Context, source string, cp encoding.Encoding, walkFn WalkFunc) error {
	fi, err := os.Stat(source)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return walkDir(ctx, source, walkFn)
	}
	return walkZip(ctx, source, cp, walkFn)
}

func walkZip(ctx context.Context, source string, cp encoding.Encoding, walkFn WalkFunc) error {

	r, err := zip.OpenReader(source)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		name, err := entryName(f, cp)
		if err != nil {
			return err
		}
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if err := walkFn(source, &Entry{Name: name, Modified: f.Modified, zf: f}); err != nil {
			return err
		}
	}
	return nil
}

func entryName(f *zip.File, cp encoding.Encoding) (string, error) {
	if cp == nil || !f.NonUTF8 {
		return f.Name, nil
	}
	// forcing zip file name encoding
	n, err := cp.NewDecoder().String(f.Name)
	if err != nil {
		return "", fmt.Errorf("zip entry %q: unable to convert name from requested code page: %w", f.Name, err)
	}
	return n, nil
}

func walkDir(ctx context.Context, dir string, walkFn WalkFunc) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			// ignore directories, links, sockets, etc.
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return walkFn(dir, &Entry{Name: filepath.ToSlash(rel), Modified: info.ModTime(), file: p})
	})
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
