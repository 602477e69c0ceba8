package tabular

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestReadRecordsCSV(t *testing.T) {
	path := writeTemp(t, "data.csv",
		"name,age,active,salary\n"+
			"alice,30,true,\"$50,000\"\n"+
			"bob,25,false,\n")

	records, err := NewReader(path, nil).ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first["name"] != "alice" {
		t.Errorf("name = %v", first["name"])
	}
	if first["age"] != int64(30) {
		t.Errorf("age = %v (%T), want int64(30)", first["age"], first["age"])
	}
	if first["active"] != true {
		t.Errorf("active = %v, want true", first["active"])
	}
	// Currency strings must survive untouched for the type detector
	if first["salary"] != "$50,000" {
		t.Errorf("salary = %v, want raw string", first["salary"])
	}

	// Empty cell becomes nil
	if records[1]["salary"] != nil {
		t.Errorf("empty cell = %v, want nil", records[1]["salary"])
	}
}

func TestReadRecordsCSVBlankHeader(t *testing.T) {
	path := writeTemp(t, "data.csv", "a,,c\n1,2,3\n")

	records, err := NewReader(path, nil).ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if _, ok := records[0]["column_2"]; !ok {
		t.Errorf("blank header should fall back to column_2, got keys %v", records[0])
	}
}

func TestReadRecordsCSVShortRow(t *testing.T) {
	path := writeTemp(t, "data.csv", "a,b\n1\n")

	records, err := NewReader(path, nil).ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if records[0]["b"] != nil {
		t.Errorf("missing trailing cell = %v, want nil", records[0]["b"])
	}
}

func TestReadRecordsJSON(t *testing.T) {
	path := writeTemp(t, "data.json",
		`[{"id": 1, "tags": ["a", "b"]}, {"id": 2, "email": "x@y.com"}]`)

	records, err := NewReader(path, nil).ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if _, ok := records[0]["tags"].([]interface{}); !ok {
		t.Errorf("tags = %T, want []interface{}", records[0]["tags"])
	}
}

func TestReadRecordsJSONNotAnArray(t *testing.T) {
	path := writeTemp(t, "data.json", `{"id": 1}`)

	if _, err := NewReader(path, nil).ReadRecords(); err == nil {
		t.Fatal("expected an error for a non-array JSON document")
	}
}

func TestReadRecordsMissingFile(t *testing.T) {
	if _, err := NewReader("/no/such/file.csv", nil).ReadRecords(); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestNarrowCell(t *testing.T) {
	tests := []struct {
		cell string
		want interface{}
	}{
		{"", nil},
		{"  ", nil},
		{"true", true},
		{"42", int64(42)},
		{"3.14", 3.14},
		{"$100", "$100"},
		{"50%", "50%"},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := narrowCell(tt.cell); got != tt.want {
			t.Errorf("narrowCell(%q) = %v (%T), want %v", tt.cell, got, got, tt.want)
		}
	}
}
