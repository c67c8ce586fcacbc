// Package viewstate persists grid views between sessions.
//
// A [Snapshot] captures how far a user paginated, the last container width
// and the render options of one view. The grid restores from it with
// grid.Grid.Restore. Two stores are provided: [CacheStore] on top of any
// cache backend and [MongoStore] for shared deployments.
package viewstate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
)

// Snapshot is the persisted state of one view.
type Snapshot struct {
	ID          string             `json:"id" bson:"_id"`
	VisibleRows int                `json:"visible_rows" bson:"visible_rows"`
	Width       float64            `json:"width" bson:"width"`
	Render      grid.RenderOptions `json:"render" bson:"render"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// NewID returns a fresh view ID.
func NewID() string {
	return uuid.NewString()
}

// Capture builds a snapshot of g under id.
func Capture(id string, g *grid.Grid) Snapshot {
	st := g.State()
	return Snapshot{
		ID:          id,
		VisibleRows: st.VisibleRowsLimit,
		Width:       st.LastContainerWidth,
		Render:      st.Render,
		UpdatedAt:   time.Now().UTC(),
	}
}

// Store loads and saves snapshots.
type Store interface {
	// Get returns the snapshot for id, or a VIEW_NOT_FOUND error.
	Get(ctx context.Context, id string) (Snapshot, error)

	// Save inserts or replaces the snapshot under s.ID.
	Save(ctx context.Context, s Snapshot) error

	// Delete removes the snapshot. Deleting a missing view is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid view id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeViewNotFound, "no saved view %s", id)
}
