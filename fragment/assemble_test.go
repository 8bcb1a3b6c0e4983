package fragment

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"fragmerge/xmldoc"
)

func merge(t *testing.T, name string, docs ...string) string {
	t.Helper()
	schema, err := NewSchema(DefaultRoot)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	frags := make([]*Fragment, 0, len(docs))
	for i, d := range docs {
		frags = append(frags, schema.Extract(parse(t, d), strings.Repeat("f", i+1)))
	}
	doc, _, _, err := Merge(frags, name)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	data, err := xmldoc.WriteToBytes(doc)
	if err != nil {
		t.Fatalf("WriteToBytes() error = %v", err)
	}
	return string(data)
}

const (
	noOrder = `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment ` + ns + `>
  <servlet>
    <servlet-name>plain</servlet-name>
  </servlet>
</web-fragment>`

	afterOthers = `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment ` + ns + `>
  <name>last</name>
  <ordering>
    <after>
      <others/>
    </after>
  </ordering>
  <listener>
    <listener-class>Last</listener-class>
  </listener>
</web-fragment>`

	beforeOthers = `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment xmlns="http://xmlns.jcp.org/xml/ns/javaee" version="3.0">
  <name>first</name>
  <ordering>
    <before>
      <others/>
    </before>
  </ordering>
  <filter>
    <filter-name>First</filter-name>
  </filter>
</web-fragment>`

	beforeName = `<web-fragment ` + ns + `>
  <name>early</name>
  <ordering><before><name>late</name><name>external</name></before></ordering>
  <context-param><param-name>early</param-name></context-param>
</web-fragment>`

	afterName = `<web-fragment ` + ns + `>
  <name>late</name>
  <context-param><param-name>late</param-name></context-param>
</web-fragment>`
)

func TestMergeNoOrder(t *testing.T) {
	got := merge(t, "noOrder",
		noOrder,
		`<web-fragment `+ns+`><listener><listener-class>Two</listener-class></listener></web-fragment>`,
		`<web-fragment `+ns+`><!-- three --><welcome-file-list/></web-fragment>`,
	)
	want := `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment ` + ns + `>
  <name>noOrder</name>
  <servlet>
    <servlet-name>plain</servlet-name>
  </servlet>
  <listener>
    <listener-class>Two</listener-class>
  </listener>
  <!-- three -->
  <welcome-file-list/>
</web-fragment>
`
	if got != want {
		t.Errorf("Merge() =\n%s\nwant\n%s", got, want)
	}
}

func TestMergeAfterOthers(t *testing.T) {
	got := merge(t, "", afterOthers, noOrder)
	want := `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment ` + ns + `>
  <name>merged</name>
  <ordering>
    <after>
      <others/>
    </after>
  </ordering>
  <servlet>
    <servlet-name>plain</servlet-name>
  </servlet>
  <listener>
    <listener-class>Last</listener-class>
  </listener>
</web-fragment>
`
	if got != want {
		t.Errorf("Merge() =\n%s\nwant\n%s", got, want)
	}
}

func TestMergeBeforeOthers(t *testing.T) {
	got := merge(t, "", afterOthers, noOrder, beforeOthers)
	// root is taken from the first sequenced fragment
	want := `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment xmlns="http://xmlns.jcp.org/xml/ns/javaee" version="3.0">
  <name>merged</name>
  <ordering>
    <before>
      <others/>
    </before>
  </ordering>
  <filter>
    <filter-name>First</filter-name>
  </filter>
  <servlet>
    <servlet-name>plain</servlet-name>
  </servlet>
  <listener>
    <listener-class>Last</listener-class>
  </listener>
</web-fragment>
`
	if got != want {
		t.Errorf("Merge() =\n%s\nwant\n%s", got, want)
	}
}

func TestMergeNames(t *testing.T) {
	got := merge(t, "app", afterName, beforeName)
	want := `<?xml version="1.0" encoding="UTF-8"?>
<web-fragment ` + ns + `>
  <name>app</name>
  <ordering>
    <before>
      <name>external</name>
    </before>
  </ordering>
  <context-param>
    <param-name>early</param-name>
  </context-param>
  <context-param>
    <param-name>late</param-name>
  </context-param>
</web-fragment>
`
	if got != want {
		t.Errorf("Merge() =\n%s\nwant\n%s", got, want)
	}
}

func TestMergeHonorsDeclaredOrder(t *testing.T) {
	decl := func(name, ordering string) string {
		return `<web-fragment ` + ns + `><name>` + name + `</name>` + ordering + `<p>` + name + `</p></web-fragment>`
	}
	schema, err := NewSchema(DefaultRoot)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	var frags []*Fragment
	for i, d := range []string{
		decl("f0", `<ordering><after><name>f4</name></after></ordering>`),
		decl("f1", `<ordering><before><name>f0</name></before></ordering>`),
		decl("f2", ``),
		decl("f3", ``),
		decl("f4", `<ordering><before><name>f2</name></before></ordering>`),
	} {
		frags = append(frags, schema.Extract(parse(t, d), strings.Repeat("f", i+1)))
	}

	doc, ordering, passes, err := Merge(frags, "")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	var got []string
	for _, p := range doc.Root().SelectElements("p") {
		got = append(got, p.Text())
	}
	if want := []string{"f1", "f4", "f0", "f2", "f3"}; !slices.Equal(got, want) {
		t.Errorf("payload order = %v, want %v", got, want)
	}
	if !ordering.IsEmpty() {
		t.Errorf("ordering = %+v, want empty, all names are absorbed", ordering)
	}
	if passes != 1 {
		t.Errorf("passes = %d, want 1", passes)
	}
}

func TestMergeSingleOccurrence(t *testing.T) {
	got := merge(t, "", afterOthers, noOrder, beforeOthers, afterName, beforeName)
	if c := strings.Count(got, "<name>"); c != 1 {
		t.Errorf("composite has %d name elements, want 1:\n%s", c, got)
	}
	if c := strings.Count(got, "<ordering>"); c > 1 {
		t.Errorf("composite has %d ordering elements, want at most 1:\n%s", c, got)
	}
}

func TestAssembleDoesNotAlias(t *testing.T) {
	f := extract(t, noOrder)
	doc, err := Assemble([]*Fragment{f}, "", Ordering{Before: NameSet{}, After: NameSet{}})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	doc.Root().SelectElement("servlet").SelectElement("servlet-name").SetText("changed")
	if got := f.Doc.Root().SelectElement("servlet").SelectElement("servlet-name").Text(); got != "plain" {
		t.Errorf("fragment payload changed to %q", got)
	}
	if f.Doc.Root().SelectElement("servlet") == nil {
		t.Error("fragment payload was moved instead of copied")
	}
}

func TestMergeEmpty(t *testing.T) {
	if _, _, _, err := Merge(nil, ""); !errors.Is(err, ErrNoFragments) {
		t.Errorf("Merge(nil) error = %v, want ErrNoFragments", err)
	}
	if _, err := Assemble(nil, "", Ordering{}); !errors.Is(err, ErrNoFragments) {
		t.Errorf("Assemble(nil) error = %v, want ErrNoFragments", err)
	}
}
