package feed

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// changeDocument holds the fields of a change event the pipeline reads
type changeDocument struct {
	OperationType string        `bson:"operationType"`
	FullDocument  bson.RawValue `bson:"fullDocument"`
}

// MongoOpener watches the portfolio collection with a change stream
type MongoOpener struct {
	coll     *mongo.Collection
	maxAwait time.Duration
}

// NewMongoOpener creates a new MongoOpener. maxAwait bounds how long one
// Next call waits on the server before reporting a liveness tick.
func NewMongoOpener(db *mongo.Database, maxAwait time.Duration) *MongoOpener {
	return &MongoOpener{coll: db.Collection(repository.CollPortfolio), maxAwait: maxAwait}
}

// Open implements Opener
func (o *MongoOpener) Open(ctx context.Context, resumeAfter models.ResumeToken) (Feed, error) {
	opts := options.ChangeStream().SetMaxAwaitTime(o.maxAwait)
	if len(resumeAfter) > 0 {
		token := bson.Raw(resumeAfter)
		if err := token.Validate(); err != nil {
			return nil, fmt.Errorf("failed to decode resume token: %w", err)
		}
		opts.SetResumeAfter(token)
	}

	cs, err := o.coll.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream on %s: %w", repository.CollPortfolio, err)
	}
	return &mongoFeed{cs: cs}, nil
}

type mongoFeed struct {
	cs *mongo.ChangeStream
}

func (f *mongoFeed) Next(ctx context.Context) (*Event, error) {
	if f.cs.TryNext(ctx) {
		return f.decode(), nil
	}
	if err := f.cs.Err(); err != nil {
		return nil, fmt.Errorf("change stream failed: %w", err)
	}
	if f.cs.ID() == 0 {
		return nil, ErrFeedClosed
	}
	return nil, nil
}

func (f *mongoFeed) decode() *Event {
	event := &Event{Operation: models.OperationOther, Position: f.ResumeToken()}

	var change changeDocument
	if err := f.cs.Decode(&change); err != nil {
		event.DocumentErr = fmt.Errorf("failed to decode change event: %w", err)
		return event
	}
	event.Operation = models.ParseOperation(change.OperationType)

	if change.FullDocument.Type != bson.TypeEmbeddedDocument {
		return event
	}
	var doc repository.PortfolioDocument
	if err := change.FullDocument.Unmarshal(&doc); err != nil {
		event.DocumentErr = fmt.Errorf("failed to decode portfolio: %w", err)
		return event
	}
	p, err := doc.ToModel()
	if err != nil {
		event.DocumentErr = err
		return event
	}
	event.FullDocument = p
	return event
}

func (f *mongoFeed) ResumeToken() models.ResumeToken {
	token := f.cs.ResumeToken()
	if len(token) == 0 {
		return nil
	}
	return models.ResumeToken(slices.Clone(token))
}

func (f *mongoFeed) Close(ctx context.Context) error {
	return f.cs.Close(ctx)
}
