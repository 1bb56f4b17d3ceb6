package handlers

import (
	"errors"

	"github.com/arzan03/OnboardGate/internal/middleware"
	"github.com/arzan03/OnboardGate/internal/models"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type OnboardingHandler struct {
	onboarding *services.OnboardingService
	log        zerolog.Logger
}

func NewOnboardingHandler(onboarding *services.OnboardingService, log zerolog.Logger) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding, log: log}
}

// ListQuestions returns the questionnaire in display order.
func (h *OnboardingHandler) ListQuestions(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	questions, err := h.onboarding.Questions(ctx)
	if err != nil {
		return serverError(c, h.log, err, "list questions")
	}
	return c.JSON(fiber.Map{"questions": questions})
}

// SubmitResponses records the current user's answers.
func (h *OnboardingHandler) SubmitResponses(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var request struct {
		Responses []models.Answer `json:"responses"`
	}
	if err := c.BodyParser(&request); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.onboarding.SubmitResponses(ctx, user.ID.Hex(), request.Responses)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoResponses):
			return errorJSON(c, fiber.StatusBadRequest, "Responses are required")
		case errors.Is(err, services.ErrUserNotFound):
			return errorJSON(c, fiber.StatusUnauthorized, "User not found")
		}
		return serverError(c, h.log, err, "submit responses")
	}

	return c.JSON(fiber.Map{"user": updated.Public()})
}
