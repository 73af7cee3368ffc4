package payload

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestAttributesAddLast(t *testing.T) {
	var attrs Attributes

	if _, ok := attrs.Last("missing"); ok {
		t.Error("Last on empty set returned ok")
	}

	attrs.Add("a", []byte{1})
	attrs.Add("b", []byte{2})
	attrs.Add("a", []byte{3})

	v, ok := attrs.Last("a")
	if !ok || !bytes.Equal(v, []byte{3}) {
		t.Errorf("Last(a) = %v, %v; want [3], true", v, ok)
	}
	v, ok = attrs.Last("b")
	if !ok || !bytes.Equal(v, []byte{2}) {
		t.Errorf("Last(b) = %v, %v; want [2], true", v, ok)
	}
	if attrs.Len() != 3 {
		t.Errorf("Len = %d, want 3", attrs.Len())
	}
}

func TestAttributesRemove(t *testing.T) {
	var attrs Attributes
	attrs.Add("a", []byte{1})
	attrs.Add("b", []byte{2})
	attrs.Add("a", []byte{3})

	attrs.Remove("a")

	if _, ok := attrs.Last("a"); ok {
		t.Error("Last(a) found attribute after Remove")
	}
	if attrs.Len() != 1 {
		t.Errorf("Len after Remove = %d, want 1", attrs.Len())
	}

	// Removing a missing key is a no-op.
	attrs.Remove("missing")
	if attrs.Len() != 1 {
		t.Errorf("Len after removing missing key = %d, want 1", attrs.Len())
	}
}

func TestAttributesOrder(t *testing.T) {
	var attrs Attributes
	attrs.Add("x", []byte("1"))
	attrs.Add("y", []byte("2"))
	attrs.Add("x", []byte("3"))

	all := attrs.All()
	want := []string{"x", "y", "x"}
	if len(all) != len(want) {
		t.Fatalf("All returned %d attributes, want %d", len(all), len(want))
	}
	for i, attr := range all {
		if attr.Key != want[i] {
			t.Errorf("All()[%d].Key = %q, want %q", i, attr.Key, want[i])
		}
	}
}

func TestAttributesJSONRoundTrip(t *testing.T) {
	var attrs Attributes
	attrs.Add("__offload.backed.value", []byte{1})
	attrs.Add("custom", []byte("payload"))

	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Attributes
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.Len() != attrs.Len() {
		t.Fatalf("round trip Len = %d, want %d", got.Len(), attrs.Len())
	}
	for i, attr := range got.All() {
		orig := attrs.All()[i]
		if attr.Key != orig.Key || !bytes.Equal(attr.Value, orig.Value) {
			t.Errorf("round trip attr %d = %+v, want %+v", i, attr, orig)
		}
	}
}

func TestAttributesJSONEmpty(t *testing.T) {
	var attrs Attributes
	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty set marshals to %s, want []", data)
	}
}
