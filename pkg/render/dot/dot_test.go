package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/cardgrid/pkg/surface"
)

func buildTree() (*surface.Tree, *surface.Node) {
	tree := surface.New()
	var first *surface.Node
	for r, names := range [][]string{{"Pikachu", "Raichu"}, {"Eevee"}} {
		row := tree.NewNode(surface.KindRow, "")
		row.Style = surface.Style{Tier: "large", Capacity: 4, Scale: 1, Width: 848}
		tree.Append(tree.Root(), row)
		for c, name := range names {
			card := tree.NewNode(surface.KindCard, name)
			card.Row, card.Col = r, c
			card.Content = surface.Content{Name: name, Counts: "3/10", Pct: 30}
			tree.Append(row, card)
			if first == nil {
				first = card
			}
		}
	}
	more := tree.NewNode(surface.KindLoadMore, "")
	more.Label = "Load more (2 rows remaining)"
	tree.Append(tree.Root(), more)
	return tree, first
}

func TestToDOT(t *testing.T) {
	tree, first := buildTree()
	tree.Focus(first)

	out := ToDOT(tree, Options{})
	for _, want := range []string{
		`subgraph "cluster_row_0"`,
		`subgraph "cluster_row_1"`,
		`label="row 0 (large)"`,
		`label="Pikachu", penwidth=3`,
		`label="Load more (2 rows remaining)"`,
		"[style=invis]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "[style=invis]"); got != 2 {
		t.Errorf("ordering edges = %d, want 2", got)
	}
}

func TestToDOTDetailed(t *testing.T) {
	tree, _ := buildTree()
	out := ToDOT(tree, Options{Detailed: true})
	for _, want := range []string{
		`row 0: large, 4 x 1.00, 848px`,
		`Raichu\n3/10 (30%)\nr0 c1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
}

func TestToDOTNilTree(t *testing.T) {
	out := ToDOT(nil, Options{})
	if !strings.HasPrefix(out, "digraph G {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox must be unchanged")
	}
}
