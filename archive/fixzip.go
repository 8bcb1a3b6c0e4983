package archive

import (
	"fmt"
	"os"

	fixzip "github.com/hidez8891/zip"
)

// FixDataDescriptors rewrites archive from into to with data descriptor flag
// removed from every entry, some consumers cannot read archives which use
// them. Partially written target is removed on failure.
func FixDataDescriptors(from, to string) (err error) {

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close target file (%s): %w", to, cerr)
		}
		if err != nil {
			os.Remove(to)
		}
	}()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			w.Close()
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finish target file (%s): %w", to, err)
	}
	return nil
}
