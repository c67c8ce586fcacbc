package surface

import "github.com/google/uuid"

// Stats counts structural mutations since the last reset.
type Stats struct {
	Created  int `json:"created"`
	Appended int `json:"appended"`
	Replaced int `json:"replaced"`
	Removed  int `json:"removed"`
}

// Tree is a mounted surface.
type Tree struct {
	root    *Node
	focused *Node
	scroll  float64
	stats   Stats
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: &Node{ID: uuid.New(), Kind: KindRoot}}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// NewNode creates a detached node.
func (t *Tree) NewNode(kind Kind, key string) *Node {
	t.stats.Created++
	return &Node{ID: uuid.New(), Kind: kind, Key: key}
}

// Append moves child to the end of parent's children.
func (t *Tree) Append(parent, child *Node) {
	child.detach()
	child.parent = parent
	parent.children = append(parent.children, child)
	t.stats.Appended++
}

// InsertBefore moves child in front of ref. A nil or foreign ref appends.
func (t *Tree) InsertBefore(parent, child, ref *Node) {
	if ref == nil || ref.parent != parent || ref == child {
		t.Append(parent, child)
		return
	}
	child.detach()
	i := parent.IndexOf(ref)
	parent.children = append(parent.children, nil)
	copy(parent.children[i+1:], parent.children[i:])
	parent.children[i] = child
	child.parent = parent
	t.stats.Appended++
}

// ReplaceChildren swaps parent's children for children in one step.
// Previous children not in the new list become detached.
func (t *Tree) ReplaceChildren(parent *Node, children []*Node) {
	keep := make(map[*Node]bool, len(children))
	for _, c := range children {
		keep[c] = true
	}
	for _, old := range parent.children {
		if !keep[old] {
			old.parent = nil
		}
	}

	next := make([]*Node, 0, len(children))
	for _, c := range children {
		if c.parent != nil && c.parent != parent {
			c.detach()
		}
		c.parent = parent
		next = append(next, c)
	}
	parent.children = next
	t.stats.Replaced++
}

// Remove detaches n from its parent.
func (t *Tree) Remove(n *Node) {
	if n == nil || n.parent == nil {
		return
	}
	n.detach()
	t.stats.Removed++
}

// Attached reports whether n is reachable from the root.
func (t *Tree) Attached(n *Node) bool {
	for ; n != nil; n = n.parent {
		if n == t.root {
			return true
		}
	}
	return false
}

// Rows returns the row nodes in order.
func (t *Tree) Rows() []*Node {
	var rows []*Node
	for _, c := range t.root.children {
		if c.Kind == KindRow {
			rows = append(rows, c)
		}
	}
	return rows
}

// Cards returns every card node in row order.
func (t *Tree) Cards() []*Node {
	var cards []*Node
	for _, r := range t.Rows() {
		for _, c := range r.children {
			if c.Kind == KindCard {
				cards = append(cards, c)
			}
		}
	}
	return cards
}

// Find returns the first child of the root with the given kind.
func (t *Tree) Find(kind Kind) *Node {
	for _, c := range t.root.children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Focus moves focus to n.
func (t *Tree) Focus(n *Node) { t.focused = n }

// Focused returns the focused node if it is still attached.
func (t *Tree) Focused() *Node {
	if t.focused != nil && !t.Attached(t.focused) {
		t.focused = nil
	}
	return t.focused
}

// Scroll returns the scroll offset.
func (t *Tree) Scroll() float64 { return t.scroll }

// SetScroll sets the scroll offset.
func (t *Tree) SetScroll(y float64) { t.scroll = y }

// ClearEntering resets every entering flag and returns how many were set.
func (t *Tree) ClearEntering() int {
	n := 0
	for _, c := range t.Cards() {
		if c.Entering {
			c.Entering = false
			n++
		}
	}
	return n
}

// Stats returns the mutation counters.
func (t *Tree) Stats() Stats { return t.stats }

// ResetStats zeroes the mutation counters.
func (t *Tree) ResetStats() { t.stats = Stats{} }
