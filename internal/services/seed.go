package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arzan03/OnboardGate/internal/models"
)

// DefaultQuestions is the questionnaire loaded by the seed command.
var DefaultQuestions = []models.Question{
	{
		Text:    "What is your preferred programming language?",
		Options: []string{"JavaScript", "Python", "Java", "C++", "Other"},
		Order:   1,
	},
	{
		Text:    "How many years of programming experience do you have?",
		Options: []string{"0-1 years", "2-3 years", "4-5 years", "6-10 years", "10+ years"},
		Order:   2,
	},
	{
		Text: "What type of development interests you most?",
		Options: []string{
			"Web Development",
			"Mobile Development",
			"Desktop Applications",
			"Data Science",
			"Game Development",
		},
		Order: 3,
	},
}

// Seed replaces the questionnaire and recreates the administrator account
// so its password always matches adminPassword.
func Seed(ctx context.Context, users UserStore, questions QuestionStore, adminEmail, adminPassword string) (models.User, error) {
	if err := questions.ReplaceAll(ctx, DefaultQuestions); err != nil {
		return models.User{}, fmt.Errorf("seed questions: %w", err)
	}

	if err := users.DeleteByEmail(ctx, NormalizeEmail(adminEmail)); err != nil {
		return models.User{}, fmt.Errorf("remove admin: %w", err)
	}

	admin, err := NewUser(adminEmail, adminPassword, models.RoleAdmin, models.StatusApproved, time.Now())
	if err != nil {
		return models.User{}, err
	}
	if err := users.Create(ctx, &admin); err != nil {
		return models.User{}, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}
