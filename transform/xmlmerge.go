package transform

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fragmerge/config"
	"fragmerge/xmldoc"
)

// ErrNoMergePoint is returned when merge path selects nothing in the first
// document of a group.
var ErrNoMergePoint = errors.New("merge path does not match first document")

// XMLMerge combines same-named XML documents. With a path configured, every
// element it selects in later documents is appended next to the first match
// in the first document, otherwise all root children of later documents are
// appended to the first root.
type XMLMerge struct {
	Patterns

	expr string
	path *etree.Path
	docs map[string][]*etree.Document

	log *zap.Logger
}

func NewXMLMerge(conf *config.XMLMergeConfig, log *zap.Logger) (*XMLMerge, error) {
	patterns, err := NewPatterns(conf.Include, conf.Exclude)
	if err != nil {
		return nil, err
	}
	t := &XMLMerge{
		Patterns: patterns,
		expr:     strings.TrimSpace(conf.Path),
		docs:     make(map[string][]*etree.Document),
		log:      log.Named("xml-merge"),
	}
	if len(t.expr) != 0 {
		p, err := etree.CompilePath(t.expr)
		if err != nil {
			return nil, fmt.Errorf("unable to compile merge path %q: %w", t.expr, err)
		}
		t.path = &p
	}
	return t, nil
}

func (t *XMLMerge) Name() string {
	return "xml-merge"
}

func (t *XMLMerge) Transform(path string, r io.Reader) error {
	doc, err := xmldoc.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to merge %s: %w", path, err)
	}
	t.docs[path] = append(t.docs[path], doc)
	return nil
}

func (t *XMLMerge) HasTransformedResource() bool {
	return len(t.docs) > 0
}

func (t *XMLMerge) ModifyOutput(sink Sink) error {
	for _, name := range sortedPaths(t.docs) {
		docs := t.docs[name]
		if len(docs) > 1 {
			t.log.Info("Assembling documents", zap.String("path", name), zap.Int("count", len(docs)), zap.String("expr", t.expr))
			if err := t.merge(docs); err != nil {
				return fmt.Errorf("unable to merge %s: %w", name, err)
			}
		}
		if err := writeDocument(sink, name, docs[0]); err != nil {
			return err
		}
	}
	return nil
}

func (t *XMLMerge) merge(docs []*etree.Document) error {
	root := docs[0].Root()

	if t.path == nil {
		for _, doc := range docs[1:] {
			xmldoc.AppendCopies(root, doc.Root())
		}
		return nil
	}

	first := docs[0].FindElementPath(*t.path)
	if first == nil || first.Parent() == nil {
		return fmt.Errorf("%w: %s", ErrNoMergePoint, t.expr)
	}
	parent := first.Parent()
	for _, doc := range docs[1:] {
		for _, el := range doc.FindElementsPath(*t.path) {
			xmldoc.AppendCopy(parent, el)
		}
	}
	return nil
}

func writeDocument(sink Sink, name string, doc *etree.Document) (err error) {
	w, err := sink.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", name, err)
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()
	if err := xmldoc.Write(doc, w); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	return nil
}
