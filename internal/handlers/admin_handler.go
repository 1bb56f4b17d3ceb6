package handlers

import (
	"context"
	"errors"

	"github.com/arzan03/OnboardGate/internal/models"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	admin *services.AdminService
	log   zerolog.Logger
}

func NewAdminHandler(admin *services.AdminService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, log: log}
}

// ListUsers lists every non-administrator account.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.admin.ListUsers(ctx)
	if err != nil {
		return serverError(c, h.log, err, "list users")
	}
	return c.JSON(fiber.Map{"users": models.PublicUsers(users)})
}

func (h *AdminHandler) ApproveUser(c *fiber.Ctx) error {
	return h.review(c, h.admin.Approve)
}

func (h *AdminHandler) RejectUser(c *fiber.Ctx) error {
	return h.review(c, h.admin.Reject)
}

func (h *AdminHandler) review(c *fiber.Ctx, decide func(ctx context.Context, userID string) (models.User, error)) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	userID := c.Params("id")
	user, err := decide(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return serverError(c, h.log, err, "review user")
	}

	h.log.Info().
		Str("user_id", userID).
		Str("status", string(user.Status)).
		Msg("account reviewed")
	return c.JSON(fiber.Map{"user": user.Public()})
}

// ExportResponses uploads a CSV of all answers and returns its link.
func (h *AdminHandler) ExportResponses(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	export, err := h.admin.ExportResponses(ctx)
	if err != nil {
		if errors.Is(err, services.ErrExportDisabled) {
			return errorJSON(c, fiber.StatusServiceUnavailable, "Export storage is not configured")
		}
		return serverError(c, h.log, err, "export responses")
	}
	return c.JSON(export)
}
