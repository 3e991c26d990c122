package feed

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/epeers/portools/internal/models"
)

type logEntry struct {
	seq       uint64
	op        models.Operation
	portfolio *models.Portfolio
}

// MemoryLog is an append-only change log for the in-process backend.
// Positions are decimal sequence numbers; the first entry is 1.
type MemoryLog struct {
	mu       sync.Mutex
	entries  []logEntry
	notify   chan struct{}
	closed   bool
	closeErr error
	idle     time.Duration
}

// NewMemoryLog creates an empty log. Feeds opened on it report a liveness
// tick after idle without an event; zero disables ticks.
func NewMemoryLog(idle time.Duration) *MemoryLog {
	return &MemoryLog{notify: make(chan struct{}), idle: idle}
}

// Append records a change. p may be nil for operations without a post-image.
func (l *MemoryLog) Append(op models.Operation, p *models.Portfolio) {
	var stored *models.Portfolio
	if p != nil {
		stored = &models.Portfolio{ID: p.ID, Lots: slices.Clone(p.Lots)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.entries = append(l.entries, logEntry{seq: uint64(len(l.entries)) + 1, op: op, portfolio: stored})
	l.broadcast()
}

// CloseWithError ends every open feed once it has drained the log.
// A nil err is reported as a plain ErrFeedClosed.
func (l *MemoryLog) CloseWithError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.closeErr = err
	l.broadcast()
}

// Len returns the number of entries appended so far
func (l *MemoryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// must hold l.mu
func (l *MemoryLog) broadcast() {
	close(l.notify)
	l.notify = make(chan struct{})
}

// Open implements Opener
func (l *MemoryLog) Open(ctx context.Context, resumeAfter models.ResumeToken) (Feed, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := uint64(len(l.entries))
	if len(resumeAfter) > 0 {
		seq, err := strconv.ParseUint(string(resumeAfter), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse resume token %q: %w", resumeAfter, err)
		}
		if seq > uint64(len(l.entries)) {
			return nil, fmt.Errorf("resume token %d is past the end of the log (%d entries)", seq, len(l.entries))
		}
		next = seq
	}
	return &memoryFeed{log: l, next: next}, nil
}

type memoryFeed struct {
	log    *MemoryLog
	next   uint64 // index of the next entry to deliver
	closed bool
}

func (f *memoryFeed) Next(ctx context.Context) (*Event, error) {
	var idle <-chan time.Time
	if f.log.idle > 0 {
		timer := time.NewTimer(f.log.idle)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		if f.closed {
			return nil, ErrFeedClosed
		}

		f.log.mu.Lock()
		if f.next < uint64(len(f.log.entries)) {
			e := f.log.entries[f.next]
			f.log.mu.Unlock()
			f.next++
			return &Event{
				Operation:    e.op,
				FullDocument: e.portfolio,
				Position:     formatSeq(e.seq),
			}, nil
		}
		if f.log.closed {
			err := f.log.closeErr
			f.log.mu.Unlock()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFeedClosed, err)
			}
			return nil, ErrFeedClosed
		}
		wait := f.log.notify
		f.log.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-idle:
			return nil, nil
		case <-wait:
		}
	}
}

func (f *memoryFeed) ResumeToken() models.ResumeToken {
	if f.next == 0 {
		return nil
	}
	return formatSeq(f.next)
}

func (f *memoryFeed) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func formatSeq(seq uint64) models.ResumeToken {
	return models.ResumeToken(strconv.FormatUint(seq, 10))
}
