package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/gridiron/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// A nil manager accepts every write
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePlays([]PlayRecord{{}}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for g := 0; g < 3; g++ {
		if err := om.WriteGeneration(GenerationStats{RunID: "r", Generation: g, Plays: 2}); err != nil {
			t.Fatal(err)
		}
		if err := om.WritePlays([]PlayRecord{{Generation: g, Play: 0}, {Generation: g, Play: 1}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkFirstScore, Generation: 2}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{Steps: 3}, "r", 2); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	lines := func(name string) []string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		return strings.Split(strings.TrimSpace(string(data)), "\n")
	}

	gens := lines("generations.csv")
	if len(gens) != 4 {
		t.Fatalf("generations.csv has %d lines, want header + 3", len(gens))
	}
	if !strings.HasPrefix(gens[0], "run_id,generation,") {
		t.Errorf("header = %q", gens[0])
	}
	if n := len(lines("plays.csv")); n != 7 {
		t.Errorf("plays.csv has %d lines, want header + 6", n)
	}
	if bm := lines("bookmarks.csv"); len(bm) != 2 || !strings.Contains(bm[1], "first_score") {
		t.Errorf("bookmarks.csv = %v", bm)
	}
	if perf := lines("perf.csv"); len(perf) != 2 || !strings.HasPrefix(perf[1], "r,2,3,") {
		t.Errorf("perf.csv = %v", perf)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}
