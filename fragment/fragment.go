// Package fragment implements ordering and merging of web application
// fragment descriptors. Every descriptor may declare its name and relative
// ordering constraints (before/after named peers or before/after all others).
// Descriptors are sequenced so that constraints are honored as far as a
// pairwise comparison allows and their content is spliced into a single
// composite descriptor carrying ordering metadata of its own.
package fragment

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"fragmerge/xmldoc"
)

// Element names of descriptor ordering vocabulary.
const (
	DefaultRoot = "web-fragment"
	DefaultName = "merged"

	tagName     = "name"
	tagOrdering = "ordering"
	tagBefore   = "before"
	tagAfter    = "after"
	tagOthers   = "others"
)

// Fragment is ordering record of a single descriptor.
type Fragment struct {
	// Name is zero value when descriptor did not declare a name.
	Name Name
	// Doc holds what remains of the descriptor after name and ordering were
	// extracted. It is owned by the fragment until assembly.
	Doc *etree.Document
	// Before holds names this fragment must precede.
	Before NameSet
	// After holds names this fragment must follow.
	After NameSet

	BeforeOthers bool
	AfterOthers  bool

	// Source is entry path descriptor was read from.
	Source string
}

// New returns unconstrained anonymous fragment for the document.
func New(doc *etree.Document, source string) *Fragment {
	return &Fragment{
		Doc:    doc,
		Before: NameSet{},
		After:  NameSet{},
		Source: source,
	}
}

func (f *Fragment) String() string {
	return fmt.Sprintf("%s{before=%v, after=%v, beforeOthers=%t, afterOthers=%t}",
		f.Name, f.Before.Names(), f.After.Names(), f.BeforeOthers, f.AfterOthers)
}

// Schema holds compiled queries locating ordering vocabulary in a descriptor.
type Schema struct {
	root     string
	name     etree.Path
	ordering etree.Path
	before   etree.Path
	after    etree.Path
	names    etree.Path
	others   etree.Path
}

// NewSchema compiles queries for descriptors with the given root element. An
// error here means queries cannot be evaluated at all and merging must stop.
func NewSchema(root string) (*Schema, error) {
	root = strings.TrimSpace(root)
	if len(root) == 0 {
		root = DefaultRoot
	}
	if strings.ContainsAny(root, "/ \t\r\n") {
		return nil, fmt.Errorf("invalid descriptor root element %q", root)
	}

	s := &Schema{root: root}
	for _, q := range []struct {
		dst  *etree.Path
		expr string
	}{
		{&s.name, "/" + root + "/" + tagName},
		{&s.ordering, "/" + root + "/" + tagOrdering},
		{&s.before, tagBefore},
		{&s.after, tagAfter},
		{&s.names, tagName},
		{&s.others, tagOthers},
	} {
		p, err := etree.CompilePath(q.expr)
		if err != nil {
			return nil, fmt.Errorf("unable to compile ordering query %q: %w", q.expr, err)
		}
		*q.dst = p
	}
	return s, nil
}

// Root returns descriptor root element name.
func (s *Schema) Root() string {
	return s.root
}

// Extract builds fragment from the document. Name and ordering elements are
// removed from the document, so only payload remains in it.
func (s *Schema) Extract(doc *etree.Document, source string) *Fragment {
	f := New(doc, source)

	if el := doc.FindElementPath(s.name); el != nil {
		f.Name = Named(strings.TrimSpace(xmldoc.TextContent(el)))
		xmldoc.Detach(el)
	}

	ordering := doc.FindElementPath(s.ordering)
	if ordering == nil {
		return f
	}
	for _, el := range ordering.FindElementsPath(s.before) {
		f.BeforeOthers = s.collect(el, f.Before) || f.BeforeOthers
	}
	for _, el := range ordering.FindElementsPath(s.after) {
		f.AfterOthers = s.collect(el, f.After) || f.AfterOthers
	}
	xmldoc.Detach(ordering)
	return f
}

// collect adds names declared under el to set and reports presence of the
// others marker.
func (s *Schema) collect(el *etree.Element, set NameSet) bool {
	for _, n := range el.FindElementsPath(s.names) {
		set.Add(Named(strings.TrimSpace(xmldoc.TextContent(n))))
	}
	return el.FindElementPath(s.others) != nil
}
