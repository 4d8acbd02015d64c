package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/railpuzzle/game/config"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

func mustMap(t *testing.T, difficulty engine.Difficulty, entries map[string]string) *engine.MapDefinition {
	t.Helper()
	layout, err := engine.ParseLayout(entries)
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}
	return &engine.MapDefinition{ID: 1, Name: "Test", Difficulty: difficulty, Layout: layout}
}

func TestAnalyzeShippedMaps(t *testing.T) {
	maps, err := config.NewManager("../../maps")
	if err != nil {
		t.Fatalf("Failed to load maps: %v", err)
	}

	for _, difficulty := range []engine.Difficulty{engine.Easy, engine.Hard} {
		for _, def := range maps.MapsFor(difficulty) {
			a, err := analyzeMap(def)
			if err != nil {
				t.Fatalf("%s map %d: %v", difficulty, def.ID, err)
			}
			if len(a.Warnings) > 0 {
				t.Errorf("%s map %d: unexpected warnings %v", difficulty, def.ID, a.Warnings)
			}
			if a.TrackCells%2 != 0 {
				t.Errorf("%s map %d: odd track count %d", difficulty, def.ID, a.TrackCells)
			}
		}
	}
}

func TestAnalyzeMap_Histogram(t *testing.T) {
	maps, err := config.NewManager("../../maps")
	if err != nil {
		t.Fatalf("Failed to load maps: %v", err)
	}
	ring, err := maps.LoadMap(engine.Easy, 1)
	if err != nil {
		t.Fatalf("Failed to load Ring: %v", err)
	}

	a, err := analyzeMap(ring)
	if err != nil {
		t.Fatalf("analyzeMap failed: %v", err)
	}

	expected := map[engine.TerrainKind]int{
		engine.Empty:    5,
		engine.Oasis:    17,
		engine.Mountain: 1,
		engine.Bridge:   2,
	}
	for terrain, count := range expected {
		if a.Histogram[terrain] != count {
			t.Errorf("Expected %d %s cells, got %d", count, terrain, a.Histogram[terrain])
		}
	}
	if a.TrackCells != 8 {
		t.Errorf("Expected 8 track cells, got %d", a.TrackCells)
	}
}

func TestAnalyzeMap_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		want    []string
	}{
		{
			name:    "open corners",
			entries: map[string]string{},
			want:    []string{"(0,0) empty sits in a corner", "(4,4) empty sits in a corner"},
		},
		{
			name: "mountain pointing off the board",
			entries: map[string]string{
				"0,0": "oasis", "0,4": "oasis", "4,0": "oasis", "4,4": "oasis",
				"0,2": "mountain,up",
			},
			want: []string{"pointing up off the board"},
		},
		{
			name: "bridge pointing into an oasis",
			entries: map[string]string{
				"0,0": "oasis", "0,4": "oasis", "4,0": "oasis", "4,4": "oasis",
				"2,2": "bridge", "1,2": "oasis",
			},
			want: []string{"(2,2) bridge converts to bridge_rail with an end pointing up into an oasis"},
		},
		{
			name: "dead end and odd count",
			entries: map[string]string{
				"0,0": "oasis", "0,1": "oasis", "0,2": "oasis", "0,3": "oasis", "0,4": "oasis",
				"1,0": "oasis", "1,2": "oasis", "1,3": "oasis", "1,4": "oasis",
				"2,0": "oasis", "2,1": "oasis", "2,2": "oasis", "2,3": "oasis", "2,4": "oasis",
				"3,0": "oasis", "3,1": "oasis", "3,2": "oasis", "3,3": "oasis", "3,4": "oasis",
				"4,0": "oasis", "4,1": "oasis", "4,2": "oasis", "4,3": "oasis", "4,4": "oasis",
			},
			want: []string{"(1,1) empty has 0 buildable neighbours", "1 track cells"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := analyzeMap(mustMap(t, engine.Easy, tt.entries))
			if err != nil {
				t.Fatalf("analyzeMap failed: %v", err)
			}
			joined := strings.Join(a.Warnings, "\n")
			for _, w := range tt.want {
				if !strings.Contains(joined, w) {
					t.Errorf("Expected warning containing %q, got:\n%s", w, joined)
				}
			}
		})
	}
}

func TestAnalyzeMap_InvalidLayout(t *testing.T) {
	def := mustMap(t, engine.Easy, map[string]string{"6,6": "oasis"})
	if _, err := analyzeMap(def); err == nil {
		t.Error("Expected error for a tile outside the board")
	}
}

func TestPrintAnalysis(t *testing.T) {
	a := &Analysis{
		Map:        mustMap(t, engine.Easy, map[string]string{}),
		Histogram:  map[engine.TerrainKind]int{engine.Empty: 25},
		TrackCells: 25,
	}

	var buf bytes.Buffer
	printAnalysis(&buf, a)
	out := buf.String()
	if !strings.Contains(out, "=== easy map 1: Test ===") {
		t.Errorf("Missing header in:\n%s", out)
	}
	if !strings.Contains(out, "empty:    25") {
		t.Errorf("Missing empty count in:\n%s", out)
	}
	if !strings.Contains(out, "No obvious dead ends") {
		t.Errorf("Expected clean verdict in:\n%s", out)
	}

	a.Warnings = []string{"(0,0) empty sits in a corner"}
	buf.Reset()
	printAnalysis(&buf, a)
	if !strings.Contains(buf.String(), "1 problems found") {
		t.Errorf("Expected warning count in:\n%s", buf.String())
	}
}
