package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status is the account review state. Accounts start at StatusNew, move to
// StatusPending once the onboarding questionnaire is submitted and are then
// reviewed by an administrator.
type Status string

const (
	StatusNew      Status = "new"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsReviewed reports whether an administrator has decided on the account.
func (s Status) IsReviewed() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether next is reachable from s in the review
// workflow. Nothing leads back to StatusNew.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusPending:
		return s == StatusNew || s == StatusPending
	case StatusApproved, StatusRejected:
		return s == StatusPending
	}
	return false
}

// Response is a single questionnaire answer. The question text is copied
// from the question store at submission time.
type Response struct {
	QuestionID   string `bson:"question_id" json:"questionId"`
	QuestionText string `bson:"question,omitempty" json:"question,omitempty"`
	Answer       string `bson:"answer" json:"answer"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Status       Status             `bson:"status" json:"status"`
	Responses    []Response         `bson:"responses" json:"responses"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// PublicUser is the only user representation that leaves the API.
type PublicUser struct {
	ID        string     `json:"_id"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    Status     `json:"status"`
	Responses []Response `json:"responses"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u User) Public() PublicUser {
	responses := u.Responses
	if responses == nil {
		responses = []Response{}
	}
	return PublicUser{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		Responses: responses,
		CreatedAt: u.CreatedAt,
	}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUsers sanitizes a list of users.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
