package grid

import (
	"testing"

	"github.com/matzehuels/cardgrid/pkg/surface"
)

func TestHandleKey(t *testing.T) {
	nv := Navigator{LoadMoreKey: "m"}
	tests := []struct {
		key    string
		inText bool
		want   Action
	}{
		{"m", false, Action{Kind: ActionLoadMore}},
		{"m", true, Action{}},
		{"left", true, Action{Kind: ActionMove, Dir: Left}},
		{"j", false, Action{Kind: ActionMove, Dir: Down}},
		{"j", true, Action{}},
		{"x", false, Action{}},
	}
	for _, tt := range tests {
		if got := nv.HandleKey(tt.key, tt.inText); got != tt.want {
			t.Errorf("HandleKey(%q, %v) = %+v, want %+v", tt.key, tt.inText, got, tt.want)
		}
	}
}

func TestMoveClamps(t *testing.T) {
	tree := surface.New()
	NewEngine().Render(tree, makeItems(24), partitioner(t, 1000), 6, RenderOptions{})

	if got := Move(tree, Right); got == nil || got.Row != 0 || got.Col != 0 {
		t.Fatalf("first move = %+v, want (0,0)", got)
	}

	steps := []struct {
		dir      Direction
		row, col int
	}{
		{Right, 0, 1},
		{Right, 0, 2},
		{Right, 0, 3},
		{Right, 0, 3}, // row 0 has 4 cards
		{Down, 1, 3},
		{Right, 1, 4},
		{Up, 0, 3}, // column clamped to row 0
		{Up, 0, 3},
		{Down, 1, 3},
		{Down, 2, 3},
		{Down, 3, 3},
		{Down, 4, 3},
		{Down, 4, 3},
		{Left, 4, 2},
	}
	for i, s := range steps {
		got := Move(tree, s.dir)
		if got.Row != s.row || got.Col != s.col {
			t.Fatalf("step %d: at (%d,%d), want (%d,%d)", i, got.Row, got.Col, s.row, s.col)
		}
		if tree.Focused() != got {
			t.Fatalf("step %d: focus not moved", i)
		}
	}
}

func TestMoveEmpty(t *testing.T) {
	if Move(nil, Down) != nil {
		t.Error("Move(nil) != nil")
	}
	tree := surface.New()
	NewEngine().Render(tree, nil, partitioner(t, 1000), 6, RenderOptions{})
	if Move(tree, Down) != nil {
		t.Error("Move on placeholder-only tree focused something")
	}
}
