package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/portools/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

const (
	CollPortfolio   = "portfolio"
	CollSummary     = "portfolio_summary"
	CollResumeToken = "resume_token"
)

// MongoPortfolioRepository stores portfolios in the collection the pipeline watches
type MongoPortfolioRepository struct {
	coll *mongo.Collection
}

// NewMongoPortfolioRepository creates a new MongoPortfolioRepository
func NewMongoPortfolioRepository(db *mongo.Database) *MongoPortfolioRepository {
	return &MongoPortfolioRepository{coll: db.Collection(CollPortfolio)}
}

// PutPortfolio replaces the whole document, producing an insert or replace change event
func (r *MongoPortfolioRepository) PutPortfolio(ctx context.Context, p *models.Portfolio) error {
	filter := bson.D{{Key: "id", Value: int64(p.ID)}}
	_, err := r.coll.ReplaceOne(ctx, filter, NewPortfolioDocument(p), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put portfolio %d: %w", p.ID, err)
	}
	return nil
}

// GetPortfolio retrieves a portfolio by ID
func (r *MongoPortfolioRepository) GetPortfolio(ctx context.Context, id uint32) (*models.Portfolio, error) {
	var doc PortfolioDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: int64(id)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio %d: %w", id, err)
	}
	return doc.ToModel()
}

// MongoSummaryRepository stores derived views, one document per (id, view)
type MongoSummaryRepository struct {
	coll *mongo.Collection
}

// NewMongoSummaryRepository creates a new MongoSummaryRepository
func NewMongoSummaryRepository(db *mongo.Database) *MongoSummaryRepository {
	return &MongoSummaryRepository{coll: db.Collection(CollSummary)}
}

func summaryFilter(id uint32, view models.ViewKind) bson.D {
	return bson.D{{Key: "id", Value: int64(id)}, {Key: "view", Value: string(view)}}
}

// PutSummary overwrites the stored view without any version check
func (r *MongoSummaryRepository) PutSummary(ctx context.Context, doc *models.SummaryDocument) error {
	_, err := r.coll.ReplaceOne(ctx, summaryFilter(doc.ID, doc.View), newSummaryDocument(doc), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put %s summary for portfolio %d: %w", doc.View, doc.ID, err)
	}
	return nil
}

// GetSummary retrieves one derived view
func (r *MongoSummaryRepository) GetSummary(ctx context.Context, id uint32, view models.ViewKind) (*models.SummaryDocument, error) {
	var doc summaryDocument
	err := r.coll.FindOne(ctx, summaryFilter(id, view)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s summary for portfolio %d: %w", view, id, err)
	}
	return doc.toModel()
}

type resumeTokenRecord struct {
	// logical identifier of the consumer within the application
	ID          string `bson:"id"`
	ResumeToken []byte `bson:"resume_token"`
}

// MongoCheckpointRepository keeps resume tokens with majority read and write concern
// so a consumer started after a failover never resumes from a rolled back position.
type MongoCheckpointRepository struct {
	coll *mongo.Collection
}

// NewMongoCheckpointRepository creates a new MongoCheckpointRepository
func NewMongoCheckpointRepository(db *mongo.Database) *MongoCheckpointRepository {
	opts := options.Collection().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())
	return &MongoCheckpointRepository{coll: db.Collection(CollResumeToken, opts)}
}

// GetCheckpoint returns nil when the consumer has never stored a token
func (r *MongoCheckpointRepository) GetCheckpoint(ctx context.Context, consumerID string) (models.ResumeToken, error) {
	var rec resumeTokenRecord
	err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: consumerID}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint for %s: %w", consumerID, err)
	}
	if len(rec.ResumeToken) == 0 {
		return nil, nil
	}
	return models.ResumeToken(rec.ResumeToken), nil
}

// PutCheckpoint upserts the consumer's token
func (r *MongoCheckpointRepository) PutCheckpoint(ctx context.Context, consumerID string, token models.ResumeToken) error {
	rec := resumeTokenRecord{ID: consumerID, ResumeToken: token}
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "id", Value: consumerID}}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put checkpoint for %s: %w", consumerID, err)
	}
	return nil
}

// EnsureMongoIndexes creates the unique indexes every collection is keyed by.
// It is safe to call on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]bson.D{
		CollPortfolio:   {{Key: "id", Value: 1}},
		CollSummary:     {{Key: "id", Value: 1}, {Key: "view", Value: 1}},
		CollResumeToken: {{Key: "id", Value: 1}},
	}
	for coll, keys := range indexes {
		model := mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll, err)
		}
	}
	return nil
}
