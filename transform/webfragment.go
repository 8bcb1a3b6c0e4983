package transform

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fragmerge/config"
	"fragmerge/fragment"
	"fragmerge/xmldoc"
)

// DefaultFragmentOutput is where merged descriptor goes when output is not
// configured.
const DefaultFragmentOutput = "META-INF/web-fragment.xml"

// WebFragment merges web application fragment descriptors from all sources
// into a single descriptor honoring their relative ordering.
type WebFragment struct {
	Patterns

	schema *fragment.Schema
	name   string
	output string
	frags  []*fragment.Fragment

	log *zap.Logger
	rpt *config.Report
}

func NewWebFragment(conf *config.WebFragmentConfig, rpt *config.Report, log *zap.Logger) (*WebFragment, error) {
	patterns, err := NewPatterns(conf.Include, conf.Exclude)
	if err != nil {
		return nil, err
	}
	schema, err := fragment.NewSchema(conf.Root)
	if err != nil {
		return nil, err
	}
	output := conf.Output
	if len(output) == 0 {
		output = DefaultFragmentOutput
	}
	return &WebFragment{
		Patterns: patterns,
		schema:   schema,
		name:     conf.Name,
		output:   output,
		log:      log.Named("web-fragment"),
		rpt:      rpt,
	}, nil
}

func (t *WebFragment) Name() string {
	return "web-fragment"
}

// Transform parses the descriptor and records its ordering constraints.
// Unparsable descriptors are reported and skipped.
func (t *WebFragment) Transform(path string, r io.Reader) error {
	doc, err := xmldoc.Parse(r)
	if err != nil {
		t.log.Error("Unable to parse descriptor, skipping", zap.String("path", path), zap.Error(err))
		return nil
	}
	f := t.schema.Extract(doc, path)
	t.frags = append(t.frags, f)
	t.log.Debug("Descriptor accepted", zap.String("path", path), zap.Stringer("fragment", f))
	return nil
}

func (t *WebFragment) HasTransformedResource() bool {
	return len(t.frags) > 0
}

// ModifyOutput orders accumulated descriptors and writes composite one.
func (t *WebFragment) ModifyOutput(sink Sink) (err error) {
	if len(t.frags) == 0 {
		return nil
	}

	doc, ordering, passes, err := fragment.Merge(t.frags, t.name)
	if err != nil {
		return fmt.Errorf("unable to merge descriptors: %w", err)
	}
	data, err := xmldoc.WriteToBytes(doc)
	if err != nil {
		return err
	}

	t.log.Debug("Descriptors sequenced", zap.Int("fragments", len(t.frags)), zap.Int("passes", passes),
		zap.Strings("before", ordering.Before.Strings()), zap.Strings("after", ordering.After.Strings()),
		zap.Bool("beforeOthers", ordering.BeforeOthers), zap.Bool("afterOthers", ordering.AfterOthers))
	t.rpt.StoreData("web-fragment/order.txt", t.summary())
	t.rpt.StoreData("web-fragment/"+path.Base(t.output), data)

	w, err := sink.Create(t.output)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", t.output, err)
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write %s: %w", t.output, err)
	}
	t.log.Info("Descriptors merged", zap.Int("fragments", len(t.frags)), zap.String("output", t.output))
	return nil
}

// summary lists fragments in sequence order with their closed constraints.
func (t *WebFragment) summary() []byte {
	buf := new(bytes.Buffer)
	for i, f := range t.frags {
		fmt.Fprintf(buf, "%d\t%s\t%s\n", i+1, f.Source, f)
	}
	return buf.Bytes()
}
