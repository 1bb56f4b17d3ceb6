package handlers

import (
	"errors"

	"github.com/arzan03/OnboardGate/internal/middleware"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthHandler struct {
	auth     *services.AuthService
	sessions *session.Store
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(auth *services.AuthService, sessions *session.Store, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		validate: validator.New(),
		log:      log,
	}
}

// Signup creates an account. No session is started.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var request credentialsRequest
	if err := c.BodyParser(&request); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(request); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "A valid email and a password of at least 6 characters are required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Signup(ctx, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return errorJSON(c, fiber.StatusBadRequest, "User already exists")
		}
		return serverError(c, h.log, err, "signup")
	}

	h.log.Info().Str("user_id", user.ID.Hex()).Msg("user signed up")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully"})
}

// Login verifies credentials and binds a fresh session to the user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request credentialsRequest
	if err := c.BodyParser(&request); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Login(ctx, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid credentials")
		}
		return serverError(c, h.log, err, "login")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return serverError(c, h.log, err, "load session")
	}
	if err := sess.Regenerate(); err != nil {
		return serverError(c, h.log, err, "regenerate session")
	}
	sess.Set(middleware.SessionUserKey, user.ID.Hex())
	if err := sess.Save(); err != nil {
		return serverError(c, h.log, err, "save session")
	}

	return c.JSON(fiber.Map{"user": user.Public()})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(fiber.Map{"user": user.Public()})
}

// Logout destroys the session. It succeeds when there was none.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		h.log.Error().Err(err).Msg("load session for logout")
		return errorJSON(c, fiber.StatusInternalServerError, "Could not log out")
	}
	if err := sess.Destroy(); err != nil {
		h.log.Error().Err(err).Msg("destroy session")
		return errorJSON(c, fiber.StatusInternalServerError, "Could not log out")
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
