package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/rs/zerolog"
)

// SessionUserKey is the session field holding the user id hex string.
const SessionUserKey = "user_id"

const (
	userLocalsKey = "user"
	lookupTimeout = 10 * time.Second
)

// UserFinder resolves a session's user id. Unknown ids return db.ErrNotFound.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Gate guards routes with the server-side session.
type Gate struct {
	sessions *session.Store
	users    UserFinder
	log      zerolog.Logger
}

func NewGate(sessions *session.Store, users UserFinder, log zerolog.Logger) *Gate {
	return &Gate{sessions: sessions, users: users, log: log}
}

// RequireAuth resolves the session cookie to an existing user and stores
// it for CurrentUser. Requests without a session, or whose user is gone,
// get 401.
func (g *Gate) RequireAuth(c *fiber.Ctx) error {
	sess, err := g.sessions.Get(c)
	if err != nil {
		g.log.Error().Err(err).Msg("load session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}

	userID, _ := sess.Get(SessionUserKey).(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), lookupTimeout)
	defer cancel()

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "User not found"})
		}
		g.log.Error().Err(err).Str("user_id", userID).Msg("resolve session user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}

	user.PasswordHash = ""
	c.Locals(userLocalsKey, user)
	return c.Next()
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userLocalsKey).(models.User)
	return user, ok
}
