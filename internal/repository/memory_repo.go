package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/epeers/portools/internal/models"
)

// ChangeListener observes every portfolio write made through MemoryStore
type ChangeListener interface {
	Append(op models.Operation, p *models.Portfolio)
}

type summaryKey struct {
	id   uint32
	view models.ViewKind
}

// MemoryStore is an in-process backend for local runs and tests.
// It implements all three repository interfaces.
type MemoryStore struct {
	mu          sync.RWMutex
	portfolios  map[uint32]models.Portfolio
	summaries   map[summaryKey]models.SummaryDocument
	checkpoints map[string]models.ResumeToken
	listener    ChangeListener
}

// NewMemoryStore creates an empty store. listener may be nil.
func NewMemoryStore(listener ChangeListener) *MemoryStore {
	return &MemoryStore{
		portfolios:  make(map[uint32]models.Portfolio),
		summaries:   make(map[summaryKey]models.SummaryDocument),
		checkpoints: make(map[string]models.ResumeToken),
		listener:    listener,
	}
}

func (s *MemoryStore) PutPortfolio(ctx context.Context, p *models.Portfolio) error {
	stored := models.Portfolio{ID: p.ID, Lots: slices.Clone(p.Lots)}

	s.mu.Lock()
	defer s.mu.Unlock()
	op := models.OperationInsert
	if _, exists := s.portfolios[p.ID]; exists {
		op = models.OperationReplace
	}
	s.portfolios[p.ID] = stored
	if s.listener != nil {
		// appended under the lock so the log order matches the write order
		s.listener.Append(op, &stored)
	}
	return nil
}

func (s *MemoryStore) GetPortfolio(ctx context.Context, id uint32) (*models.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.portfolios[id]
	if !ok {
		return nil, ErrPortfolioNotFound
	}
	return &models.Portfolio{ID: p.ID, Lots: slices.Clone(p.Lots)}, nil
}

func (s *MemoryStore) PutSummary(ctx context.Context, doc *models.SummaryDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey{id: doc.ID, view: doc.View}] = cloneSummary(doc)
	return nil
}

func (s *MemoryStore) GetSummary(ctx context.Context, id uint32, view models.ViewKind) (*models.SummaryDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.summaries[summaryKey{id: id, view: view}]
	if !ok {
		return nil, ErrSummaryNotFound
	}
	out := cloneSummary(&doc)
	return &out, nil
}

func (s *MemoryStore) GetCheckpoint(ctx context.Context, consumerID string) (models.ResumeToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.checkpoints[consumerID]
	if !ok || len(token) == 0 {
		return nil, nil
	}
	return slices.Clone(token), nil
}

func (s *MemoryStore) PutCheckpoint(ctx context.Context, consumerID string, token models.ResumeToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[consumerID] = slices.Clone(token)
	return nil
}

func cloneSummary(doc *models.SummaryDocument) models.SummaryDocument {
	groups := make(map[string]models.GroupSummary, len(doc.GroupToSummary))
	for k, g := range doc.GroupToSummary {
		groups[k] = g
	}
	return models.SummaryDocument{ID: doc.ID, View: doc.View, GroupToSummary: groups}
}
