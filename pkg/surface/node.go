// Package surface is the node tree the grid renders into.
//
// A [Tree] plays the part of a document: a root whose children are row
// nodes (plus the optional placeholder and load-more nodes), each row
// holding card nodes. Nodes carry a stable uuid, so callers and tests can
// tell a reused node from a recreated one. The tree counts its own
// structural mutations in [Stats].
//
// Tree is not safe for concurrent use; the grid mutates it from a single
// event loop.
package surface

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a node.
type Kind uint8

const (
	KindRoot Kind = iota
	KindRow
	KindCard
	KindPlaceholder
	KindLoadMore
)

var kindNames = [...]string{"root", "row", "card", "placeholder", "load-more"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Style holds the per-row sizing variables.
type Style struct {
	Tier      string  `json:"tier,omitempty"`
	Capacity  int     `json:"capacity,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Width     float64 `json:"width,omitempty"`
	CardWidth float64 `json:"card_width,omitempty"`
}

// Bar is one histogram column. Height is relative to the tallest bar (0-100).
type Bar struct {
	Copies  int     `json:"copies"`
	Percent float64 `json:"percent"`
	Height  float64 `json:"height"`
}

// Content holds the presentation fields of a card node.
type Content struct {
	Name       string   `json:"name"`
	Found      int      `json:"found"`
	Total      int      `json:"total"`
	Pct        float64  `json:"pct"`
	PctWidth   float64  `json:"pct_width"`
	Counts     string   `json:"counts"`
	Bars       []Bar    `json:"bars,omitempty"`
	PriceLabel string   `json:"price_label,omitempty"`
	Thumbnails []string `json:"thumbnails,omitempty"`
	Href       string   `json:"href,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// Node is an element of the tree.
type Node struct {
	ID   uuid.UUID
	Kind Kind

	// Key is the identity key of the item a card node shows.
	Key string

	// Row and Col are the node's grid coordinates. For row nodes Col is 0.
	Row, Col int

	Style   Style
	Content Content
	Label   string

	// Entering marks a card that was not visible before the last render.
	Entering bool

	parent   *Node
	children []*Node
}

// Parent returns the node's parent, nil for the root and detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// ChildCount returns len(n.Children()).
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// IndexOf returns the position of child in n, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := p.IndexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}
