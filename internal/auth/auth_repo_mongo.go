package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UsersCollection = "users"

type mongoRepository struct {
	users *mongo.Collection
}

// NewMongoRepository also ensures the unique email index.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	coll := db.Collection(UsersCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_users_email"),
	})
	if err != nil {
		return nil, err
	}
	return &mongoRepository{users: coll}, nil
}

func (r *mongoRepository) Create(ctx context.Context, user *User) error {
	_, err := r.users.InsertOne(ctx, user)
	return mapRepositoryError(err)
}

func (r *mongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.users.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapRepositoryError(err)
	}
	return &user, nil
}
