package course

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentportal/internal/shared"
)

// mongoStore persists courses in the courses collection.
type mongoStore struct {
	col *mongo.Collection
}

var _ Store = (*mongoStore)(nil)

// NewMongoStore creates a Store backed by MongoDB.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{col: db.Collection("courses")}
}

func (st *mongoStore) Find(ctx context.Context, filter Filter) ([]shared.Course, error) {
	query := bson.M{}
	if !filter.IncludeInactive {
		query["is_active"] = true
	}
	if filter.Department != "" {
		query["department"] = filter.Department
	}
	if filter.Semester > 0 {
		query["semester"] = filter.Semester
	}
	if filter.Search != "" {
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"code": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"description": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := st.col.Find(queryCtx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(queryCtx)

	courses := []shared.Course{}
	if err := cursor.All(queryCtx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (st *mongoStore) FindByID(ctx context.Context, id string) (*shared.Course, error) {
	var course shared.Course
	err := shared.FindOneWithTimeout(ctx, st.col, bson.M{"_id": id}, &course, 5*time.Second)
	if err == mongo.ErrNoDocuments {
		return nil, &shared.NotFoundError{Resource: "course", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (st *mongoStore) Insert(ctx context.Context, c *shared.Course) error {
	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := st.col.InsertOne(insertCtx, c)
	return err
}

func (st *mongoStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := st.col.UpdateOne(updateCtx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Resource: "course", ID: id}
	}
	return nil
}

// AddStudent uses $addToSet: membership insertion is atomic on the server, so
// two racing enrollments cannot produce a duplicate entry.
func (st *mongoStore) AddStudent(ctx context.Context, courseID, userID string) error {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := st.col.UpdateOne(updateCtx,
		bson.M{"_id": courseID},
		bson.M{
			"$addToSet": bson.M{"enrolled_students": userID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Resource: "course", ID: courseID}
	}
	return nil
}

func (st *mongoStore) AddMaterial(ctx context.Context, courseID string, m shared.Material) error {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := st.col.UpdateOne(updateCtx,
		bson.M{"_id": courseID},
		bson.M{
			"$push": bson.M{"materials": m},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Resource: "course", ID: courseID}
	}
	return nil
}
