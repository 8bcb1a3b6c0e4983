package transform

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fragmerge/config"
)

// Ordered concatenates same-named text files (service registrations and
// such). Files are ordered by their first line, every line is written with
// "\n" terminator.
type Ordered struct {
	Patterns

	files map[string][][]string

	log *zap.Logger
}

func NewOrdered(conf *config.PatternsConfig, log *zap.Logger) (*Ordered, error) {
	patterns, err := NewPatterns(conf.Include, conf.Exclude)
	if err != nil {
		return nil, err
	}
	return &Ordered{
		Patterns: patterns,
		files:    make(map[string][][]string),
		log:      log.Named("ordered"),
	}, nil
}

func (t *Ordered) Name() string {
	return "ordered"
}

func (t *Ordered) Transform(path string, r io.Reader) error {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", path, err)
		}
	}
	if len(lines) == 0 {
		t.log.Debug("Empty file ignored", zap.String("path", path))
		return nil
	}
	t.files[path] = append(t.files[path], lines)
	return nil
}

func (t *Ordered) HasTransformedResource() bool {
	return len(t.files) > 0
}

func (t *Ordered) ModifyOutput(sink Sink) error {
	for _, name := range sortedPaths(t.files) {
		groups := t.files[name]
		slices.SortStableFunc(groups, func(a, b []string) int {
			return cmp.Compare(a[0], b[0])
		})
		if err := writeLines(sink, name, groups); err != nil {
			return err
		}
		t.log.Debug("Files concatenated", zap.String("path", name), zap.Int("count", len(groups)))
	}
	return nil
}

func writeLines(sink Sink, name string, groups [][]string) (err error) {
	w, err := sink.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", name, err)
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()
	bw := bufio.NewWriter(w)
	for _, lines := range groups {
		for _, line := range lines {
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	return nil
}
