package grade

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"studentportal/internal/shared"
)

// mongoStore persists grade records in the grades collection.
type mongoStore struct {
	col *mongo.Collection
}

var _ Store = (*mongoStore)(nil)

// NewMongoStore creates a Store backed by MongoDB.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{col: db.Collection("grades")}
}

func (st *mongoStore) Insert(ctx context.Context, rec *shared.GradeRecord) error {
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := st.col.InsertOne(insertCtx, rec)
	return err
}

func (st *mongoStore) FindByID(ctx context.Context, id string) (*shared.GradeRecord, error) {
	var rec shared.GradeRecord
	err := shared.FindOneWithTimeout(ctx, st.col, bson.M{"_id": id}, &rec, 5*time.Second)
	if err == mongo.ErrNoDocuments {
		return nil, &shared.NotFoundError{Resource: "grade record", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (st *mongoStore) Update(ctx context.Context, rec *shared.GradeRecord) error {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := st.col.ReplaceOne(updateCtx, bson.M{"_id": rec.ID}, rec)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Resource: "grade record", ID: rec.ID}
	}
	return nil
}

func (st *mongoStore) FindByStudent(ctx context.Context, studentID string, page, limit int) ([]shared.GradeRecord, int64, error) {
	filter := bson.M{"student_id": studentID}

	total, err := shared.CountDocumentsWithTimeout(ctx, st.col, filter, 5*time.Second)
	if err != nil {
		return nil, 0, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := st.col.Find(queryCtx, filter, shared.BuildPageOptions(page, limit, "updated_at", -1))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(queryCtx)

	records := []shared.GradeRecord{}
	if err := cursor.All(queryCtx, &records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (st *mongoStore) FindByCourse(ctx context.Context, courseID string) ([]shared.GradeRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := st.col.Find(queryCtx, bson.M{"course_id": courseID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	records := []shared.GradeRecord{}
	if err := cursor.All(queryCtx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
