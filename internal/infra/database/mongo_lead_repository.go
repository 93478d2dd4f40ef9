package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const leadsCollection = "leads"

type historyDocument struct {
	Type string    `bson:"type"`
	Text string    `bson:"text"`
	Date time.Time `bson:"date"`
	User string    `bson:"user,omitempty"`
}

type leadDocument struct {
	ID            string            `bson:"_id"`
	Name          string            `bson:"name"`
	Phone         string            `bson:"phone"`
	Email         string            `bson:"email,omitempty"`
	ModelInterest string            `bson:"model_interest"`
	Source        string            `bson:"source"`
	Status        string            `bson:"status"`
	AdvisorID     string            `bson:"advisor_id"`
	AdvisorName   string            `bson:"advisor_name"`
	AuthorID      string            `bson:"author_id,omitempty"`
	History       []historyDocument `bson:"history"`
	Version       int64             `bson:"version"`
	CreatedAt     time.Time         `bson:"created_at"`
}

func toHistoryDocuments(h []entity.HistoryEntry) []historyDocument {
	docs := make([]historyDocument, 0, len(h))
	for _, e := range h {
		docs = append(docs, historyDocument{Type: string(e.Type), Text: e.Text, Date: e.Date, User: e.User})
	}
	return docs
}

func (d leadDocument) toEntity() entity.Lead {
	history := make([]entity.HistoryEntry, 0, len(d.History))
	for _, e := range d.History {
		history = append(history, entity.HistoryEntry{
			Type: entity.EntryType(e.Type),
			Text: e.Text,
			Date: e.Date,
			User: e.User,
		})
	}
	return entity.Lead{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Email:         d.Email,
		ModelInterest: d.ModelInterest,
		Source:        entity.Source(d.Source),
		Status:        entity.Status(d.Status),
		AdvisorID:     d.AdvisorID,
		AdvisorName:   d.AdvisorName,
		AuthorID:      d.AuthorID,
		History:       history,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
	}
}

// newDocumentID returns a UUIDv7. Its leading bits are the creation time
// with a sub-millisecond counter, so ids from one process sort in creation
// order even when created_at ties at BSON's millisecond precision.
func newDocumentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type MongoLeadRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoLeadRepository connects, pings and makes sure the created_at index
// exists.
func NewMongoLeadRepository(ctx context.Context, uri, database string) (*MongoLeadRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	coll := client.Database(database).Collection(leadsCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoLeadRepository{client: client, coll: coll}, nil
}

func (r *MongoLeadRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoLeadRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	id, err := newDocumentID()
	if err != nil {
		return err
	}
	doc := leadDocument{
		ID:            id,
		Name:          lead.Name,
		Phone:         lead.Phone,
		Email:         lead.Email,
		ModelInterest: lead.ModelInterest,
		Source:        string(lead.Source),
		Status:        string(lead.Status),
		AdvisorID:     lead.AdvisorID,
		AdvisorName:   lead.AdvisorName,
		AuthorID:      lead.AuthorID,
		History:       toHistoryDocuments(lead.History),
		Version:       1,
		// BSON dates carry millisecond precision
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	lead.ID = doc.ID
	lead.CreatedAt = doc.CreatedAt
	lead.Version = doc.Version
	return nil
}

func (r *MongoLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	var doc leadDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	lead := doc.toEntity()
	return &lead, nil
}

func (r *MongoLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []leadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	leads := make([]entity.Lead, 0, len(docs))
	for _, d := range docs {
		leads = append(leads, d.toEntity())
	}
	return leads, nil
}

func (r *MongoLeadRepository) Update(ctx context.Context, id string, expectedVersion int64, patch entity.LeadPatch) error {
	filter := bson.M{"_id": id, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"status":  string(patch.Status),
			"history": toHistoryDocuments(patch.History),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return entity.ErrLeadNotFound
	}
	return entity.ErrVersionConflict
}
