package feed

import (
	"context"
	"errors"

	"github.com/epeers/portools/internal/models"
)

// ErrFeedClosed is returned by Next once the feed can deliver no more events
var ErrFeedClosed = errors.New("change feed closed")

// Event is one change reported by a feed.
// FullDocument is nil for operations that carry no post-image, and DocumentErr
// is set when a post-image was present but failed validation.
type Event struct {
	Operation    models.Operation
	FullDocument *models.Portfolio
	DocumentErr  error
	Position     models.ResumeToken
}

// Feed is an ordered, resumable stream of changes to the portfolio store.
type Feed interface {
	// Next blocks until an event arrives or the feed's await window elapses.
	// A nil event with a nil error is a liveness tick; ResumeToken may have
	// moved even though nothing was delivered.
	Next(ctx context.Context) (*Event, error)
	// ResumeToken returns the position after the last delivered event or tick
	ResumeToken() models.ResumeToken
	Close(ctx context.Context) error
}

// Opener starts a feed positioned after resumeAfter, or at the current end
// of the log when resumeAfter is nil.
type Opener interface {
	Open(ctx context.Context, resumeAfter models.ResumeToken) (Feed, error)
}
