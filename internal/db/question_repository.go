package db

import (
	"context"
	"fmt"
	"time"

	"github.com/arzan03/OnboardGate/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuestionRepository reads the onboarding questionnaire.
type QuestionRepository struct {
	coll *mongo.Collection
}

func NewQuestionRepository(database *mongo.Database) *QuestionRepository {
	return &QuestionRepository{coll: database.Collection(QuestionsCollection)}
}

// List returns every question in ascending order.
func (r *QuestionRepository) List(ctx context.Context) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

// ReplaceAll drops the current questionnaire and inserts questions.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, questions []models.Question) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if len(questions) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(questions))
	for _, q := range questions {
		if q.ID.IsZero() {
			q.ID = primitive.NewObjectID()
		}
		q.CreatedAt = now
		q.UpdatedAt = now
		docs = append(docs, q)
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}
