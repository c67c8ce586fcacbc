package grid

import "github.com/matzehuels/cardgrid/pkg/surface"

// Direction is a focus movement.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// ActionKind is what a key press asks the grid to do.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionLoadMore
)

var (
	directionNames  = [...]string{"up", "down", "left", "right"}
	actionKindNames = [...]string{"none", "move", "load-more"}
)

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "direction(?)"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return "action(?)"
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Action is the decoded meaning of a key press.
type Action struct {
	Kind ActionKind `json:"kind"`
	Dir  Direction  `json:"dir"`
}

var arrowKeys = map[string]Direction{
	"up": Up, "down": Down, "left": Left, "right": Right,
}

var vimKeys = map[string]Direction{
	"k": Up, "j": Down, "h": Left, "l": Right,
}

// Navigator maps key presses to grid actions.
type Navigator struct {
	// LoadMoreKey requests the next batch of rows.
	LoadMoreKey string
}

// HandleKey decodes key. While a text input has focus only the arrow keys
// act; letter keys, including the load-more key, belong to the input.
func (nv Navigator) HandleKey(key string, inTextInput bool) Action {
	if d, ok := arrowKeys[key]; ok {
		return Action{Kind: ActionMove, Dir: d}
	}
	if inTextInput {
		return Action{}
	}
	if key == nv.LoadMoreKey && key != "" {
		return Action{Kind: ActionLoadMore}
	}
	if d, ok := vimKeys[key]; ok {
		return Action{Kind: ActionMove, Dir: d}
	}
	return Action{}
}

// Move shifts focus one step in dir, clamping the target row to the
// materialized rows and the column to the target row's cards. With nothing
// focused the first card is focused. Move returns the newly focused node,
// or nil when there are no cards.
func Move(tree *surface.Tree, dir Direction) *surface.Node {
	if tree == nil {
		return nil
	}
	rs := tree.Rows()
	if len(rs) == 0 {
		return nil
	}

	cur := tree.Focused()
	if cur == nil || cur.Kind != surface.KindCard {
		first := rs[0].Child(0)
		tree.Focus(first)
		return first
	}

	row := indexOf(rs, cur.Parent())
	col := cur.Parent().IndexOf(cur)
	switch dir {
	case Up:
		row--
	case Down:
		row++
	case Left:
		col--
	case Right:
		col++
	}
	row = clamp(row, 0, len(rs)-1)
	target := rs[row]
	if target.ChildCount() == 0 {
		return cur
	}
	next := target.Child(clamp(col, 0, target.ChildCount()-1))
	tree.Focus(next)
	return next
}

func indexOf(nodes []*surface.Node, n *surface.Node) int {
	for i, x := range nodes {
		if x == n {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
