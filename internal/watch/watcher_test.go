package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func write(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPollReportsChanges(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.yaml")
	write(t, page, "tag: p\n")

	w := New(Config{Paths: []string{dir}})
	if got := w.Poll(); got != nil {
		t.Fatalf("first Poll() = %v, want nil", got)
	}

	added := filepath.Join(dir, "docs", "new.yml")
	write(t, added, "tag: h1\n")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(page, future, future); err != nil {
		t.Fatal(err)
	}

	var delivered []Change
	w.OnChange(func(c []Change) { delivered = c })
	got := w.Poll()

	want := []Change{
		{Path: added, Type: ChangeDocument, Op: OpCreate},
		{Path: page, Type: ChangeDocument, Op: OpWrite},
	}
	if len(got) != len(want) {
		t.Fatalf("Poll() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(delivered) != 2 {
		t.Errorf("callback got %d changes, want 2", len(delivered))
	}

	if err := os.Remove(added); err != nil {
		t.Fatal(err)
	}
	got = w.Poll()
	if len(got) != 1 || got[0].Op != OpRemove || got[0].Path != added {
		t.Errorf("Poll() after remove = %+v", got)
	}

	if got := w.Poll(); got != nil {
		t.Errorf("Poll() without changes = %v, want nil", got)
	}
}

func TestIgnore(t *testing.T) {
	w := New(Config{})

	tests := []struct {
		path string
		want bool
	}{
		{"pages/index.yaml", false},
		{"pages/.git/config", true},
		{"pages/node_modules/x.yaml", true},
		{"pages/index.yaml.swp", true},
		{"pages/backup~", true},
		{"pages/gitlog.yaml", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"a/page.yaml", ChangeDocument},
		{"a/page.YML", ChangeDocument},
		{"tessera.yaml", ChangeConfig},
		{"a/style.css", ChangeOther},
	}
	for _, tt := range tests {
		if got := classify(tt.path); got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
