package transform

import (
	"strings"
	"testing"

	"fragmerge/config"
)

func TestOrdered(t *testing.T) {
	o, err := NewOrdered(&config.PatternsConfig{Include: []string{"META-INF/services/*"}}, testLogger(t))
	if err != nil {
		t.Fatalf("NewOrdered() error = %v", err)
	}
	if o.Name() != "ordered" {
		t.Errorf("Name() = %q", o.Name())
	}

	const svc = "META-INF/services/javax.servlet.ServletContainerInitializer"
	submit(t, o, svc, "org.zeta.Init\norg.zeta.Second\n")
	submit(t, o, svc, "")
	submit(t, o, svc, "com.alpha.Init\r\ncom.alpha.Second")
	submit(t, o, svc, "org.zeta.Init\nduplicate first line keeps arrival order\n")

	if !o.HasTransformedResource() {
		t.Fatal("HasTransformedResource() = false")
	}

	sink := newMemSink()
	if err := o.ModifyOutput(sink); err != nil {
		t.Fatalf("ModifyOutput() error = %v", err)
	}
	want := "com.alpha.Init\ncom.alpha.Second\n" +
		"org.zeta.Init\norg.zeta.Second\n" +
		"org.zeta.Init\nduplicate first line keeps arrival order\n"
	if got := sink.get(t, svc); got != want {
		t.Errorf("concatenated =\n%q\nwant\n%q", got, want)
	}
}

func TestOrdered_EmptyOnly(t *testing.T) {
	o, err := NewOrdered(&config.PatternsConfig{Include: []string{"*"}}, testLogger(t))
	if err != nil {
		t.Fatalf("NewOrdered() error = %v", err)
	}
	submit(t, o, "empty", "")
	if o.HasTransformedResource() {
		t.Error("empty files must be ignored")
	}
}

func TestOrdered_LongLines(t *testing.T) {
	o, err := NewOrdered(&config.PatternsConfig{Include: []string{"*"}}, testLogger(t))
	if err != nil {
		t.Fatalf("NewOrdered() error = %v", err)
	}
	long := strings.Repeat("x", 256*1024)
	submit(t, o, "list", "b\n"+long+"\r\n")
	submit(t, o, "list", "a")

	sink := newMemSink()
	if err := o.ModifyOutput(sink); err != nil {
		t.Fatalf("ModifyOutput() error = %v", err)
	}
	if got, want := sink.get(t, "list"), "a\nb\n"+long+"\n"; got != want {
		t.Errorf("concatenated %d bytes, want %d", len(got), len(want))
	}
}
