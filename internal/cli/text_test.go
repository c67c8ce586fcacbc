package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

func TestBar(t *testing.T) {
	tests := []struct {
		pct   float64
		width int
		want  string
	}{
		{0, 4, "░░░░"},
		{50, 4, "██░░"},
		{100, 4, "████"},
		{140, 4, "████"},
		{-5, 2, "░░"},
	}
	for _, tt := range tests {
		if got := bar(tt.pct, tt.width); got != tt.want {
			t.Errorf("bar(%v, %d) = %q, want %q", tt.pct, tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Iono", 10, "Iono"},
		{"Professor's Research", 10, "Professor…"},
		{"Arven", 1, "A"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestSpark(t *testing.T) {
	bars := []surface.Bar{{Height: 0}, {Height: 100}, {Height: 50}}
	if got := spark(bars, 2); got != "▁█" {
		t.Errorf("spark = %q, want %q", got, "▁█")
	}
}

func TestTextBlocks(t *testing.T) {
	if blocks := textBlocks(nil, 8, "m"); blocks != nil {
		t.Errorf("nil tree gave %d blocks", len(blocks))
	}

	tree := surface.New()
	g := grid.New(tree, grid.Options{})
	defer g.Unmount()

	g.Render(nil, 1000)
	blocks := textBlocks(tree, 8, "m")
	if len(blocks) != 1 || !strings.Contains(blocks[0], grid.PlaceholderLabel) {
		t.Errorf("empty render blocks = %q", blocks)
	}

	g.Render(makeItems(60), 1000)
	blocks = textBlocks(tree, 8, "m")
	if len(blocks) != 7 {
		t.Fatalf("got %d blocks, want 6 rows and load more", len(blocks))
	}
	if !strings.Contains(blocks[6], "[m]") {
		t.Errorf("load-more block %q does not name the key", blocks[6])
	}
	if !strings.Contains(blocks[0], "Card 00") {
		t.Errorf("first row block missing first card:\n%s", blocks[0])
	}
}
