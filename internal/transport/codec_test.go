package transport

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteObjectThenReadObjectRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteObject(&buf, map[string]interface{}{"command": "rule-list"}); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	if !strings.HasSuffix(buf.String(), delimiter) {
		t.Fatalf("expected output to end with delimiter, got %q", buf.String())
	}

	obj, err := NewReader(&buf).ReadObject()
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if obj["command"] != "rule-list" {
		t.Fatalf("got %+v", obj)
	}
}

func TestReadObjectToleratesExtraDelimiters(t *testing.T) {
	raw := delimiter + `{"command":"server-list"}` + delimiter
	obj, err := NewReader(strings.NewReader(raw)).ReadObject()
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if obj["command"] != "server-list" {
		t.Fatalf("got %+v", obj)
	}
}

func TestReadObjectSequentialRecords(t *testing.T) {
	raw := `{"command":"a"}` + delimiter + `{"command":"b"}` + delimiter
	r := NewReader(strings.NewReader(raw))

	first, err := r.ReadObject()
	if err != nil {
		t.Fatalf("first ReadObject: %v", err)
	}
	if first["command"] != "a" {
		t.Fatalf("got %+v", first)
	}

	second, err := r.ReadObject()
	if err != nil {
		t.Fatalf("second ReadObject: %v", err)
	}
	if second["command"] != "b" {
		t.Fatalf("got %+v", second)
	}
}

func TestReadObjectCorruptRecordIsError(t *testing.T) {
	raw := `not json` + delimiter
	_, err := NewReader(strings.NewReader(raw)).ReadObject()
	if err == nil {
		t.Fatal("expected corrupt_message error for non-JSON record")
	}
}
