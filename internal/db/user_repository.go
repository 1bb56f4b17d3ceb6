package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/OnboardGate/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository persists accounts in the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{coll: database.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Responses == nil {
		user.Responses = []models.Response{}
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail returns the full record, password hash included.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

// FindByID returns the user without its password hash.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	if err := r.coll.FindOne(ctx, bson.M{"_id": objID}, opts).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

// ListByRole returns users with the given role, newest first.
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.coll.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// SetResponses replaces the user's answers and status in one write and
// returns the record as it was before the update.
func (r *UserRepository) SetResponses(ctx context.Context, id string, responses []models.Response, status models.Status) (models.User, error) {
	return r.update(ctx, id, bson.M{"responses": responses, "status": status})
}

// SetStatus writes the status unconditionally and returns the record as it
// was before the update.
func (r *UserRepository) SetStatus(ctx context.Context, id string, status models.Status) (models.User, error) {
	return r.update(ctx, id, bson.M{"status": status})
}

func (r *UserRepository) update(ctx context.Context, id string, set bson.M) (models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"password": 0})

	var before models.User
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&before)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return before, nil
}

func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
