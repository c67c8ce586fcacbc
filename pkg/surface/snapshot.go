package surface

// NodeSnapshot is a JSON-ready copy of a node and its subtree.
type NodeSnapshot struct {
	ID       string         `json:"id"`
	Kind     Kind           `json:"kind"`
	Key      string         `json:"key,omitempty"`
	Row      int            `json:"row"`
	Col      int            `json:"col"`
	Style    *Style         `json:"style,omitempty"`
	Content  *Content       `json:"content,omitempty"`
	Label    string         `json:"label,omitempty"`
	Entering bool           `json:"entering,omitempty"`
	Focused  bool           `json:"focused,omitempty"`
	Children []NodeSnapshot `json:"children,omitempty"`
}

// Snapshot copies the tree.
func (t *Tree) Snapshot() NodeSnapshot {
	return t.snapshot(t.root, t.Focused())
}

func (t *Tree) snapshot(n, focused *Node) NodeSnapshot {
	s := NodeSnapshot{
		ID:       n.ID.String(),
		Kind:     n.Kind,
		Key:      n.Key,
		Row:      n.Row,
		Col:      n.Col,
		Label:    n.Label,
		Entering: n.Entering,
		Focused:  n == focused,
	}
	switch n.Kind {
	case KindRow:
		st := n.Style
		s.Style = &st
	case KindCard:
		c := n.Content
		s.Content = &c
	}
	for _, c := range n.children {
		s.Children = append(s.Children, t.snapshot(c, focused))
	}
	return s
}
