package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/metrics"
	"github.com/arzan03/OnboardGate/internal/models"
	"github.com/rs/zerolog"
)

// AdminService implements account review. exports may be nil, in which
// case ExportResponses returns ErrExportDisabled.
type AdminService struct {
	users     UserStore
	questions QuestionStore
	exports   ObjectStore
	log       zerolog.Logger
	now       func() time.Time
}

func NewAdminService(users UserStore, questions QuestionStore, exports ObjectStore, log zerolog.Logger) *AdminService {
	return &AdminService{
		users:     users,
		questions: questions,
		exports:   exports,
		log:       log,
		now:       time.Now,
	}
}

// ListUsers returns all non-administrator accounts, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) Approve(ctx context.Context, userID string) (models.User, error) {
	return s.review(ctx, userID, models.StatusApproved)
}

func (s *AdminService) Reject(ctx context.Context, userID string) (models.User, error) {
	return s.review(ctx, userID, models.StatusRejected)
}

// review writes the decision without looking at the current status, so a
// repeated or reversed decision simply overwrites the previous one.
func (s *AdminService) review(ctx context.Context, userID string, status models.Status) (models.User, error) {
	before, err := s.users.SetStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("set status: %w", err)
	}

	if !before.Status.CanTransition(status) {
		s.log.Info().
			Str("user_id", userID).
			Str("from", string(before.Status)).
			Str("to", string(status)).
			Msg("account status rewritten outside the review order")
	}
	metrics.RecordTransition(string(before.Status), string(status))

	updated := before
	updated.Status = status
	return updated, nil
}
