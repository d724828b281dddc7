package describe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/reflect-runtime/internal/sample"
	"github.com/wippyai/reflect-runtime/meta"
)

func sampleRegistry(t *testing.T) *meta.Registry {
	t.Helper()
	r, err := sample.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestDescribe_Counter(t *testing.T) {
	r := sampleRegistry(t)
	got := Describe(r.MustLookup("Counter"))

	want := Type{
		Name:       "Counter",
		Kind:       "value",
		GoType:     "sample.Counter",
		Pointer:    "Counter*",
		Destructor: true,
		Constructors: []string{
			"Counter()",
			"Counter(int, Counter*)",
			"Counter(const Counter&)",
		},
		Properties: []Property{
			{Name: "a", Type: "int"},
			{Name: "b", Type: "Counter*"},
		},
		Functions: []string{
			"increment()",
			"multiply(int) int",
		},
		StaticProperties: []Property{
			{Name: "f", Type: "float32"},
		},
		StaticFunctions: []string{
			"static_decrement()",
			"static_multiply(float32) float32",
		},
		Conversions: []string{"int"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Describe(Counter) mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_Variants(t *testing.T) {
	r := sampleRegistry(t)

	ptr := Describe(r.MustLookup("Counter*"))
	if diff := cmp.Diff(Type{Name: "Counter*", Kind: "pointer", GoType: "*sample.Counter", Pointee: "Counter"}, ptr); diff != "" {
		t.Errorf("Counter* mismatch (-want +got):\n%s", diff)
	}
	ref := Describe(r.MustLookup("const Counter&"))
	if diff := cmp.Diff(Type{Name: "const Counter&", Kind: "const-ref", GoType: "sample.Counter", Referent: "Counter"}, ref); diff != "" {
		t.Errorf("const Counter& mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_DependencyOrder(t *testing.T) {
	r := meta.NewRegistry()
	// A variant registered ahead of its base still sorts after it.
	ptr, _ := meta.Declare[*int](r, "A*")
	base, _ := meta.Declare[int](r, "A")
	if err := r.LinkPointer(base, ptr); err != nil {
		t.Fatal(err)
	}
	r.Register("B")

	doc, err := Registry(r)
	if err != nil {
		t.Fatal(err)
	}
	pos := make(map[string]int)
	for i, typ := range doc.Types {
		pos[typ.Name] = i
	}
	want := map[string]int{"A": 0, "A*": 1, "B": 2}
	if diff := cmp.Diff(want, pos); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Order(t *testing.T) {
	r := sampleRegistry(t)
	doc, err := Registry(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Types) != r.Len() {
		t.Fatalf("got %d types, want %d", len(doc.Types), r.Len())
	}
	if !doc.Frozen {
		t.Error("expected frozen flag")
	}

	seen := make(map[string]bool)
	for _, typ := range doc.Types {
		for _, base := range []string{typ.Pointee, typ.Referent} {
			if base != "" && !seen[base] {
				t.Errorf("%s listed before its base %s", typ.Name, base)
			}
		}
		seen[typ.Name] = true
	}
}

func TestRegistry_Filters(t *testing.T) {
	r := sampleRegistry(t)

	doc, err := Registry(r, SkipVariants(), Only("Counter", "Vec", "int&"))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, typ := range doc.Types {
		names = append(names, typ.Name)
	}
	if diff := cmp.Diff([]string{"Counter", "Vec"}, names); diff != "" {
		t.Errorf("filtered names mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteYAML(t *testing.T) {
	r := sampleRegistry(t)
	doc, err := Registry(r, Only("Counter"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteYAML(&buf, doc); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"name: Counter", "go_type: sample.Counter", "- multiply(int) int", "destructor: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "referent:") {
		t.Error("empty fields should be omitted")
	}

	back, err := ReadYAML(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Errorf("decoded report mismatch (-want +got):\n%s", diff)
	}
}

func TestReadYAML_Invalid(t *testing.T) {
	if _, err := ReadYAML(strings.NewReader("types: [")); err == nil {
		t.Fatal("expected decode error")
	}
}
