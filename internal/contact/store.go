package contact

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"studentportal/internal/shared"
)

// mongoStore persists contact messages in the contacts collection.
type mongoStore struct {
	col *mongo.Collection
}

var _ Store = (*mongoStore)(nil)

// NewMongoStore creates a Store backed by MongoDB.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{col: db.Collection("contacts")}
}

func (st *mongoStore) Insert(ctx context.Context, msg *shared.ContactMessage) error {
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := st.col.InsertOne(insertCtx, msg)
	return err
}

func (st *mongoStore) FindByID(ctx context.Context, id string) (*shared.ContactMessage, error) {
	var msg shared.ContactMessage
	err := shared.FindOneWithTimeout(ctx, st.col, bson.M{"_id": id}, &msg, 5*time.Second)
	if err == mongo.ErrNoDocuments {
		return nil, &shared.NotFoundError{Resource: "contact message", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (st *mongoStore) Update(ctx context.Context, msg *shared.ContactMessage) error {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := st.col.ReplaceOne(updateCtx, bson.M{"_id": msg.ID}, msg)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Resource: "contact message", ID: msg.ID}
	}
	return nil
}

func (st *mongoStore) List(ctx context.Context, status string, page, limit int) ([]shared.ContactMessage, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := shared.CountDocumentsWithTimeout(ctx, st.col, filter, 5*time.Second)
	if err != nil {
		return nil, 0, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := shared.BuildPageOptions(page, limit, "created_at", -1)
	cursor, err := st.col.Find(queryCtx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(queryCtx)

	msgs := []shared.ContactMessage{}
	if err := cursor.All(queryCtx, &msgs); err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}
