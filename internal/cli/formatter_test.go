package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/flatironinstitute/cephdu/internal/attr"
	"github.com/flatironinstitute/cephdu/internal/nav"
	"github.com/flatironinstitute/cephdu/internal/tree"
)

func u64(v uint64) *uint64 { return &v }

func sampleSnapshot() nav.Snapshot {
	return nav.Snapshot{
		FocusedPath:  "/mnt/ceph/users/alice",
		TotalBytes:   u64(350),
		TotalEntries: u64(30),
		Sort:         tree.Sort{Field: tree.SortByBytes, Descending: true},
		Entries: []tree.Summary{
			{
				Name:             "projects",
				Kind:             tree.KindDirectory,
				State:            tree.Fetched,
				Origin:           attr.OriginNative,
				RecursiveBytes:   u64(200),
				RecursiveEntries: u64(20),
			},
			{
				Name:             "scratch",
				Kind:             tree.KindDirectory,
				State:            tree.Fetched,
				Origin:           attr.OriginApproximated,
				RecursiveBytes:   u64(100),
				RecursiveEntries: u64(10),
			},
			{
				Name:           "notes.txt",
				Kind:           tree.KindFile,
				State:          tree.Fetched,
				Origin:         attr.OriginNative,
				RecursiveBytes: u64(50),
				DirectBytes:    50,
			},
			{
				Name:   "secret",
				Kind:   tree.KindDirectory,
				State:  tree.FetchFailed,
				Reason: "permission denied",
			},
		},
	}
}

func TestNewReport(t *testing.T) {
	report := NewReport(sampleSnapshot())

	if report.Sort != "bytes/descending" {
		t.Errorf("Sort = %q, want bytes/descending", report.Sort)
	}

	if len(report.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(report.Entries))
	}

	first := report.Entries[0]
	if first.Kind != "dir" || first.FetchState != "fetched" || first.AttributeSource != "native" {
		t.Errorf("first row = %+v", first)
	}

	last := report.Entries[3]
	if last.FetchState != "failed" || last.Reason == "" || last.RecursiveBytes != nil {
		t.Errorf("failed row = %+v", last)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	if err := PrintJSON(NewReport(sampleSnapshot()), &buf); err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.Path != "/mnt/ceph/users/alice" {
		t.Errorf("Path = %q", decoded.Path)
	}

	// A value the filesystem never produced must decode as null, not zero.
	if decoded.Entries[3].RecursiveBytes != nil {
		t.Error("failed entry's bytes decoded as a number")
	}

	if !strings.Contains(buf.String(), `"reason": "permission denied"`) {
		t.Error("failure reason missing from JSON output")
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	if err := PrintTable(NewReport(sampleSnapshot()), &buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()

	for _, want := range []string{
		"/mnt/ceph/users/alice",
		"projects/",
		"notes.txt",
		"~100 B", // approximated values carry a marker
		"?",      // unavailable values show a gap
		"permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}

	// Files are listed without the directory suffix.
	if strings.Contains(out, "notes.txt/") {
		t.Error("file rendered with directory suffix")
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		workers int
		sort    string
		wantErr bool
	}{
		{"defaults", "table", 16, "bytes", false},
		{"json", "json", 0, "name", false},
		{"bad output", "yaml", 16, "bytes", true},
		{"negative workers", "table", -1, "bytes", true},
		{"bad sort", "table", 16, "mtime", true},
	}

	for _, tt := range tests {
		err := validateOptions(tt.output, tt.workers, tt.sort)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: validateOptions error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
