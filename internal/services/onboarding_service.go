package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/metrics"
	"github.com/arzan03/OnboardGate/internal/models"
	"github.com/rs/zerolog"
)

// OnboardingService serves the questionnaire and records answers.
type OnboardingService struct {
	users     UserStore
	questions QuestionStore
	log       zerolog.Logger
}

func NewOnboardingService(users UserStore, questions QuestionStore, log zerolog.Logger) *OnboardingService {
	return &OnboardingService{users: users, questions: questions, log: log}
}

func (s *OnboardingService) Questions(ctx context.Context) ([]models.Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// SubmitResponses stores the answers with their question text and moves the
// account to pending. Answers are not checked against the question options
// and unanswered questions are allowed; an answer whose question id does not
// resolve is kept with an empty question text.
func (s *OnboardingService) SubmitResponses(ctx context.Context, userID string, answers []models.Answer) (models.User, error) {
	if len(answers) == 0 {
		return models.User{}, ErrNoResponses
	}

	questions, err := s.questions.List(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("list questions: %w", err)
	}
	text := make(map[string]string, len(questions))
	for _, q := range questions {
		text[q.ID.Hex()] = q.Text
	}

	responses := make([]models.Response, 0, len(answers))
	for _, a := range answers {
		responses = append(responses, models.Response{
			QuestionID:   a.QuestionID,
			QuestionText: text[a.QuestionID],
			Answer:       a.Answer,
		})
	}

	before, err := s.users.SetResponses(ctx, userID, responses, models.StatusPending)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("save responses: %w", err)
	}

	if before.Status.IsReviewed() {
		s.log.Warn().
			Str("user_id", userID).
			Str("previous_status", string(before.Status)).
			Msg("reviewed account resubmitted questionnaire")
	}
	metrics.RecordTransition(string(before.Status), string(models.StatusPending))

	updated := before
	updated.Responses = responses
	updated.Status = models.StatusPending
	return updated, nil
}
