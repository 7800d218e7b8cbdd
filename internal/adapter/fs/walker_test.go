package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func relAll(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = rel
	}
	return out
}

func TestWalkIncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"report/document.json",
		"report/notes.txt",
		"audit.json",
		".docrag/corpus.jsonl",
	)

	w := NewWalker([]string{"**/*.json"}, []string{"**/.docrag/**", ".docrag/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	got := relAll(t, root, files)
	want := []string{"audit.json", filepath.Join("report", "document.json")}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkSortedOutput(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "c.json", "a.json", "b.json")

	files, err := NewWalker([]string{"**/*.json"}, nil).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !sort.StringsAreSorted(files) {
		t.Errorf("output not sorted: %v", files)
	}
	if len(files) != 3 {
		t.Errorf("expected 3 files, got %d", len(files))
	}
}

func TestWalkDefaultIncludeEverything(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "one.json", "two.txt")

	files, err := NewWalker(nil, nil).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %d: %v", len(files), files)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	if _, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}
