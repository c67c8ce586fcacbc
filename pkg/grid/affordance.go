package grid

import (
	"fmt"

	"github.com/matzehuels/cardgrid/pkg/grid/rows"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// LoadMoreLabel returns the affordance text for remaining unmaterialized rows.
func LoadMoreLabel(remaining int) string {
	if remaining == 1 {
		return "Load more (1 row remaining)"
	}
	return fmt.Sprintf("Load more (%d rows remaining)", remaining)
}

// remainingRows counts the rows of n items that are not fully materialized.
// A last row left short by a resize rebuild still has items to show and
// counts as remaining.
func remainingRows(tree *surface.Tree, p rows.Partitioner, n int) int {
	rs := tree.Rows()
	done := len(rs)
	if done > 0 && len(tree.Cards()) < n && rs[done-1].ChildCount() < p.Capacity(done-1) {
		done--
	}
	return p.TotalRows(n) - done
}

// syncLoadMore keeps a single load-more node after the last row while rows
// remain, and removes it once everything is materialized.
func syncLoadMore(tree *surface.Tree, remaining int) {
	more := tree.Find(surface.KindLoadMore)
	if remaining <= 0 {
		if more != nil {
			tree.Remove(more)
		}
		return
	}

	root := tree.Root()
	if more == nil {
		more = tree.NewNode(surface.KindLoadMore, "")
		tree.Append(root, more)
	} else if root.Child(root.ChildCount()-1) != more {
		tree.Append(root, more)
	}
	more.Label = LoadMoreLabel(remaining)
}
