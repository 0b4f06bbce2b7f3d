package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("", time.Second); got != time.Second {
		t.Fatalf("empty: got %v", got)
	}
	if got := ParseDuration("bogus", time.Second); got != time.Second {
		t.Fatalf("invalid: got %v", got)
	}
	if got := ParseDuration("90s", time.Second); got != 90*time.Second {
		t.Fatalf("valid: got %v", got)
	}
}

func TestValuesEqualAcrossNumericKinds(t *testing.T) {
	cases := []struct {
		a, b interface{}
		want bool
	}{
		{float64(3), 3, true},
		{int64(2), float32(2), true},
		{"3", 3, false},
		{nil, nil, true},
		{nil, "x", false},
		{"a", "a", true},
		{[]interface{}{1.0}, []interface{}{1.0}, true},
		{map[string]interface{}{"a": "b"}, map[string]interface{}{"a": "c"}, false},
	}
	for _, c := range cases {
		if got := ValuesEqual(c.a, c.b); got != c.want {
			t.Errorf("ValuesEqual(%#v, %#v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestKeyOfSeparatesTypes(t *testing.T) {
	if KeyOf(2) != KeyOf(2.0) {
		t.Fatal("numbers of different kinds must share a key")
	}
	if KeyOf("2") == KeyOf(2) {
		t.Fatal("string and number must not share a key")
	}
	if KeyOf(nil) != "<nil>" {
		t.Fatalf("nil key: %q", KeyOf(nil))
	}
}

func TestOutputManager(t *testing.T) {
	var nilManager *OutputManager
	if nilManager.Enabled() || NewOutputManager(" ").Enabled() {
		t.Fatal("blank or nil manager must be disabled")
	}

	if _, err := NewOutputManager("").JobFilePath("job-1", "x.json"); err == nil {
		t.Fatal("expected error without a base dir")
	}

	om := NewOutputManager(t.TempDir())
	path, err := om.JobFilePath("job-1", "../../escape.csv")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(om.BaseOutputDir, "job-1", "escape.csv"); path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}
	if err := os.WriteFile(path, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if size, err := FileSize(path); err != nil || size != 4 {
		t.Fatalf("size = %d, err = %v", size, err)
	}

	for name, want := range map[string]string{"x.CSV": FormatCSV, "x.jsonl": FormatNDJSON, "x.ndjson": FormatNDJSON, "x.txt": FormatJSON} {
		if got := FormatOf(name); got != want {
			t.Errorf("FormatOf(%s) = %s, want %s", name, got, want)
		}
	}
}
