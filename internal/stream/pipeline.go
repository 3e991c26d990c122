package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/epeers/portools/internal/feed"
	"github.com/epeers/portools/internal/metrics"
	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/repository"
	"github.com/epeers/portools/internal/summary"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrFeedTerminated is returned by Run when the change feed ends or fails.
// The caller is expected to exit non-zero and let its supervisor restart it.
var ErrFeedTerminated = errors.New("change feed terminated")

// State is a stage of the pipeline loop
type State int32

const (
	StateStarting State = iota
	StateConsuming
	StateProcessing
	StateCheckpointing
	StateStopped
)

var states = []State{StateStarting, StateConsuming, StateProcessing, StateCheckpointing, StateStopped}

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateConsuming:
		return "CONSUMING"
	case StateProcessing:
		return "PROCESSING"
	case StateCheckpointing:
		return "CHECKPOINTING"
	case StateStopped:
		return "STOPPED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Config identifies the consumer and the views it maintains
type Config struct {
	ConsumerID string
	Views      []summary.View
}

// Pipeline keeps derived views in step with the portfolio change feed.
// At most one Pipeline may run per ConsumerID.
type Pipeline struct {
	cfg         Config
	checkpoints repository.CheckpointRepository
	summaries   repository.SummaryRepository
	opener      feed.Opener

	state     atomic.Int32
	position  models.ResumeToken
	processed atomic.Int64
}

// New creates a new Pipeline
func New(cfg Config, checkpoints repository.CheckpointRepository, summaries repository.SummaryRepository, opener feed.Opener) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		checkpoints: checkpoints,
		summaries:   summaries,
		opener:      opener,
	}
	p.setState(StateStarting)
	return p
}

// State returns the stage the loop is currently in
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Processed returns the number of insert and replace events handled so far
func (p *Pipeline) Processed() int64 {
	return p.processed.Load()
}

func (p *Pipeline) setState(s State) {
	prev := State(p.state.Swap(int32(s)))
	for _, st := range states {
		v := 0.0
		if st == s {
			v = 1
		}
		metrics.PipelineState.WithLabelValues(p.cfg.ConsumerID, st.String()).Set(v)
	}
	if prev != s {
		log.WithFields(log.Fields{"consumer": p.cfg.ConsumerID, "from": prev.String(), "to": s.String()}).Debug("pipeline state change")
	}
}

// Run resumes from the stored checkpoint and processes events until ctx is
// cancelled, which returns nil, or the feed fails, which returns an error
// wrapping ErrFeedTerminated.
func (p *Pipeline) Run(ctx context.Context) error {
	p.setState(StateStarting)
	logger := log.WithField("consumer", p.cfg.ConsumerID)

	token, err := p.checkpoints.GetCheckpoint(ctx, p.cfg.ConsumerID)
	if err != nil {
		p.setState(StateStopped)
		return fmt.Errorf("failed to read checkpoint: %w", err)
	}
	p.position = token

	f, err := p.opener.Open(ctx, token)
	if err != nil {
		p.setState(StateStopped)
		return fmt.Errorf("failed to open change feed: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := f.Close(closeCtx); err != nil {
			logger.Warnf("failed to close change feed: %v", err)
		}
	}()
	logger.WithField("resume_after", string(token)).Info("change feed opened")

	for {
		p.setState(StateConsuming)
		event, err := f.Next(ctx)
		if ctx.Err() != nil {
			p.setState(StateStopped)
			logger.Info("pipeline stopped")
			return nil
		}
		if err != nil {
			p.setState(StateStopped)
			logger.Errorf("change feed failed: %v", err)
			return fmt.Errorf("%w: %w", ErrFeedTerminated, err)
		}

		if event == nil {
			// liveness tick: keep the stored position inside the feed's retention window
			if next := f.ResumeToken(); len(next) > 0 && !bytes.Equal(next, p.position) {
				p.setState(StateCheckpointing)
				p.checkpoint(ctx, next)
			}
			continue
		}

		p.setState(StateProcessing)
		p.process(ctx, event)

		if ctx.Err() != nil {
			// interrupted mid-event; it is redelivered on restart
			p.setState(StateStopped)
			logger.Info("pipeline stopped before checkpoint")
			return nil
		}
		p.setState(StateCheckpointing)
		next := f.ResumeToken()
		if len(next) == 0 {
			next = event.Position
		}
		p.checkpoint(ctx, next)
	}
}

func (p *Pipeline) process(ctx context.Context, event *feed.Event) {
	defer metrics.TrackTime("process", time.Now())
	fields := log.Fields{"consumer": p.cfg.ConsumerID, "operation": event.Operation}

	switch {
	case event.Operation != models.OperationInsert && event.Operation != models.OperationReplace:
		metrics.EventsTotal.WithLabelValues(string(event.Operation), "skipped").Inc()
		log.WithFields(fields).Warn("skipping unsupported change event")
		return
	case event.DocumentErr != nil:
		metrics.EventsTotal.WithLabelValues(string(event.Operation), "skipped").Inc()
		log.WithFields(fields).Warnf("skipping change event with invalid document: %v", event.DocumentErr)
		return
	case event.FullDocument == nil:
		metrics.EventsTotal.WithLabelValues(string(event.Operation), "skipped").Inc()
		log.WithFields(fields).Warn("skipping change event without full document")
		return
	}

	portfolio := event.FullDocument
	var g errgroup.Group
	var failed atomic.Bool
	for _, view := range p.cfg.Views {
		g.Go(func() error {
			if err := p.updateView(ctx, view, portfolio); err != nil {
				failed.Store(true)
				metrics.ViewWriteFailures.WithLabelValues(string(view.Kind())).Inc()
				log.WithFields(log.Fields{
					"consumer":     p.cfg.ConsumerID,
					"portfolio_id": portfolio.ID,
					"view":         view.Kind(),
				}).Errorf("failed to update view: %v", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	p.processed.Add(1)

	outcome := "processed"
	if failed.Load() {
		outcome = "partial"
	}
	metrics.EventsTotal.WithLabelValues(string(event.Operation), outcome).Inc()
}

func (p *Pipeline) updateView(ctx context.Context, view summary.View, portfolio *models.Portfolio) error {
	doc, err := view.Compute(portfolio)
	if err != nil {
		return err
	}
	return p.summaries.PutSummary(ctx, doc)
}

// checkpoint persists token; the in-memory position moves even when the write fails
func (p *Pipeline) checkpoint(ctx context.Context, token models.ResumeToken) {
	defer metrics.TrackTime("checkpoint", time.Now())
	if err := p.checkpoints.PutCheckpoint(ctx, p.cfg.ConsumerID, token); err != nil {
		metrics.CheckpointFailures.Inc()
		log.WithFields(log.Fields{"consumer": p.cfg.ConsumerID, "checkpoint": string(token)}).
			Errorf("failed to store checkpoint: %v", err)
	}
	p.position = token
}
