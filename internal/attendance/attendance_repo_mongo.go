package attendance

import (
	"context"
	"errors"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/auth"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AttendanceCollection = "attendance"

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository ensures the unique (userId, date) index.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	coll := db.Collection(AttendanceCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_attendance_user_date"),
		},
		{
			Keys: bson.D{{Key: "date", Value: -1}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &mongoRepository{coll: coll}, nil
}

func (r *mongoRepository) OpenDay(ctx context.Context, userID string, date, at time.Time, status string) (*Attendance, error) {
	filter := bson.M{"userId": userID, "date": date, "checkInTime": nil}
	update := bson.M{
		"$set": bson.M{"checkInTime": at, "status": status, "updatedAt": at},
		"$setOnInsert": bson.M{
			"_id":          uuid.NewString(),
			"checkOutTime": nil,
			"totalHours":   0.0,
			"createdAt":    at,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var a Attendance
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a); err != nil {
		// the day exists with a check-in, so the upsert collided with the unique index
		return nil, mapRepositoryError(err)
	}
	normalizeMongo(&a)
	return &a, nil
}

func (r *mongoRepository) CloseDay(ctx context.Context, id string, at time.Time, totalHours float64) (*Attendance, error) {
	filter := bson.M{"_id": id, "checkOutTime": nil}
	update := bson.M{"$set": bson.M{"checkOutTime": at, "totalHours": totalHours, "updatedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a Attendance
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, attendanceerrors.ErrAlreadyCheckedOut
		}
		return nil, err
	}
	normalizeMongo(&a)
	return &a, nil
}

func (r *mongoRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error) {
	var a Attendance
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&a); err != nil {
		return nil, mapRepositoryError(err)
	}
	normalizeMongo(&a)
	return &a, nil
}

func (r *mongoRepository) Find(ctx context.Context, q Query) ([]Attendance, error) {
	opts := options.Find().SetSort(newestFirstSort())
	cur, err := r.coll.Find(ctx, mongoFilter(q), opts)
	if err != nil {
		return nil, err
	}

	rows := make([]Attendance, 0)
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		normalizeMongo(&rows[i])
	}
	return rows, nil
}

type joinedDoc struct {
	Attendance `bson:",inline"`
	Owner      auth.User `bson:"user"`
}

func (r *mongoRepository) FindJoined(ctx context.Context, q Query) ([]Attendance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: mongoFilter(q)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         auth.UsersCollection,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$sort", Value: newestFirstSort()}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var docs []joinedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]Attendance, len(docs))
	for i := range docs {
		rows[i] = docs[i].Attendance
		owner := docs[i].Owner
		rows[i].User = &owner
		normalizeMongo(&rows[i])
	}
	return rows, nil
}

func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	if q.UserID != "" {
		filter["userId"] = q.UserID
	}
	if q.Range != nil {
		filter["date"] = bson.M{"$gte": q.Range.From, "$lte": q.Range.To}
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	return filter
}

func newestFirstSort() bson.D {
	return bson.D{{Key: "date", Value: -1}, {Key: "checkInTime", Value: -1}}
}

// normalizeMongo converts decoded UTC instants back to local time.
func normalizeMongo(a *Attendance) {
	a.Date = DayOf(a.Date)
	if a.CheckInTime != nil {
		t := a.CheckInTime.Local()
		a.CheckInTime = &t
	}
	if a.CheckOutTime != nil {
		t := a.CheckOutTime.Local()
		a.CheckOutTime = &t
	}
}
