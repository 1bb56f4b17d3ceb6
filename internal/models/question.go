package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Question struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text      string             `bson:"question" json:"question"`
	Options   []string           `bson:"options" json:"options"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"created_at" json:"-"`
	UpdatedAt time.Time          `bson:"updated_at" json:"-"`
}

// Answer is a questionnaire answer as submitted by a client.
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}
