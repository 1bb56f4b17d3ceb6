package services

import (
	"context"

	"github.com/arzan03/OnboardGate/internal/models"
)

// UserStore is implemented by db.UserRepository and memdb.UserStore.
// Lookups return db.ErrNotFound for unknown or malformed ids and Create
// returns db.ErrDuplicate for a registered email. SetResponses and SetStatus
// return the record as it was before the write.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	SetResponses(ctx context.Context, id string, responses []models.Response, status models.Status) (models.User, error)
	SetStatus(ctx context.Context, id string, status models.Status) (models.User, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type QuestionStore interface {
	List(ctx context.Context) ([]models.Question, error)
	ReplaceAll(ctx context.Context, questions []models.Question) error
}
