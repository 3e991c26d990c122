package app

import (
	"context"
	"fmt"

	"github.com/epeers/portools/config"
	"github.com/epeers/portools/internal/database"
	"github.com/epeers/portools/internal/feed"
	"github.com/epeers/portools/internal/repository"
	log "github.com/sirupsen/logrus"
)

// Stores bundles the backends selected by SINK_BACKEND.
// Portfolios always live where the change feed reads them from.
type Stores struct {
	Portfolios  repository.PortfolioRepository
	Summaries   repository.SummaryRepository
	Checkpoints repository.CheckpointRepository
	Opener      feed.Opener

	// Log is set only for the memory backend, whose feed lives in process
	Log *feed.MemoryLog

	closers []func(context.Context) error
}

// OpenStores connects to the configured backends
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.SinkBackend == config.BackendMemory {
		memLog := feed.NewMemoryLog(cfg.FeedMaxAwait)
		store := repository.NewMemoryStore(memLog)
		log.Warn("using the in-memory backend; nothing is persisted")
		return &Stores{
			Portfolios:  store,
			Summaries:   store,
			Checkpoints: store,
			Opener:      memLog,
			Log:         memLog,
		}, nil
	}

	mongoDB, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	s := &Stores{closers: []func(context.Context) error{mongoDB.Close}}
	if err := repository.EnsureMongoIndexes(ctx, mongoDB.DB); err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.Portfolios = repository.NewMongoPortfolioRepository(mongoDB.DB)
	s.Opener = feed.NewMongoOpener(mongoDB.DB, cfg.FeedMaxAwait)

	switch cfg.SinkBackend {
	case config.BackendPostgres:
		pg, err := database.New(ctx, cfg.PGURL)
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error {
			pg.Close()
			return nil
		})
		if err := repository.MigratePostgres(ctx, pg.Pool); err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.Summaries = repository.NewPostgresSummaryRepository(pg.Pool)
		s.Checkpoints = repository.NewPostgresCheckpointRepository(pg.Pool)
	case config.BackendMongo:
		s.Summaries = repository.NewMongoSummaryRepository(mongoDB.DB)
		s.Checkpoints = repository.NewMongoCheckpointRepository(mongoDB.DB)
	default:
		s.Close(ctx)
		return nil, fmt.Errorf("unsupported sink backend %q", cfg.SinkBackend)
	}

	log.WithFields(log.Fields{"mongo_db": cfg.MongoDB, "sink": cfg.SinkBackend}).Info("stores connected")
	return s, nil
}

// Close releases every connection, most recent first
func (s *Stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warnf("failed to close store: %v", err)
		}
	}
	s.closers = nil
}
