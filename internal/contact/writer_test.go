package contact

import (
	"reflect"
	"strings"
	"testing"
)

func TestMarshal_RoundTrip(t *testing.T) {
	set := Set{
		{Name: "Smith, Jane", Email: "jane@example.com", Company: "Acme, Inc."},
		{Name: `John "JJ" Jones`, Email: "jj@example.com", Company: "Initech"},
		{Name: "Plain", Email: "plain@example.com", Company: "Globex"},
	}

	out := Marshal(set)
	parsed, err := NewParser(nil).Parse(out)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v", err)
	}
	if !reflect.DeepEqual(parsed, set) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, set)
	}
}

func TestMarshal_Format(t *testing.T) {
	out := Marshal(Set{{Name: "A", Email: "a@x.com", Company: "Acme"}})

	want := "name,email,company\n\"A\",\"a@x.com\",\"Acme\"\n"
	if out != want {
		t.Errorf("Marshal() = %q, want %q", out, want)
	}
}

func TestMarshal_Empty(t *testing.T) {
	if out := Marshal(nil); out != "name,email,company\n" {
		t.Errorf("Marshal(nil) = %q, want header only", out)
	}
}

func TestSample_Parses(t *testing.T) {
	set, err := NewParser(nil).Parse(Sample())
	if err != nil {
		t.Fatalf("sample data must parse: %v", err)
	}
	if len(set) != 5 {
		t.Errorf("got %d sample contacts, want 5", len(set))
	}
	if !strings.HasPrefix(Sample(), "name,email,company\n") {
		t.Errorf("sample header changed: %q", Sample())
	}
}
