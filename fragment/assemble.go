package fragment

import (
	"errors"
	"strings"

	"github.com/beevik/etree"

	"fragmerge/xmldoc"
)

// ErrNoFragments is returned when there is nothing to assemble.
var ErrNoFragments = errors.New("no fragments to assemble")

// Assemble builds composite document from sequenced fragments. Root element
// is a shallow copy of the first fragment root, followed by name (DefaultName
// when empty), composite ordering declaration (if any) and deep copies of
// all fragment payloads in sequence order. Fragment documents are not
// modified.
func Assemble(frags []*Fragment, name string, ordering Ordering) (*etree.Document, error) {
	if len(frags) == 0 {
		return nil, ErrNoFragments
	}
	first := frags[0].Doc.Root()
	if first == nil {
		return nil, xmldoc.ErrNoRoot
	}

	if name = strings.TrimSpace(name); len(name) == 0 {
		name = DefaultName
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := xmldoc.ShallowCopy(first)
	doc.SetRoot(root)
	root.CreateElement(tagName).SetText(name)
	if el := ordering.Element(); el != nil {
		root.AddChild(el)
	}

	for _, f := range frags {
		if r := f.Doc.Root(); r != nil {
			xmldoc.AppendCopies(root, r)
		}
	}
	return doc, nil
}

// Merge runs complete ordering pipeline over fragments in arrival order:
// expands others markers, closes constraints, sequences fragments (in place)
// and assembles composite. Returns composite, its ordering declaration and
// number of closure passes.
func Merge(frags []*Fragment, name string) (*etree.Document, Ordering, int, error) {
	if len(frags) == 0 {
		return nil, Ordering{}, 0, ErrNoFragments
	}
	ExpandOthers(frags)
	passes := Close(frags)
	Sequence(frags)
	ordering := Synthesize(frags)
	doc, err := Assemble(frags, name, ordering)
	if err != nil {
		return nil, Ordering{}, passes, err
	}
	return doc, ordering, passes, nil
}
