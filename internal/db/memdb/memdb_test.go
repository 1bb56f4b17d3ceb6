package memdb

import (
	"context"
	"testing"
	"time"

	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreMatchesRepositoryContract(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	user := models.User{Email: "a@b.com", PasswordHash: "hash", Role: models.RoleUser, Status: models.StatusNew}
	require.NoError(t, store.Create(ctx, &user))
	assert.False(t, user.ID.IsZero())

	dup := models.User{Email: "a@b.com"}
	assert.ErrorIs(t, store.Create(ctx, &dup), db.ErrDuplicate)

	byEmail, err := store.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := store.FindByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, byID.PasswordHash)

	_, err = store.FindByID(ctx, "bogus")
	assert.ErrorIs(t, err, db.ErrNotFound)

	before, err := store.SetStatus(ctx, user.ID.Hex(), models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, before.Status)

	after, err := store.FindByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, after.Status)
}

func TestUserStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	user := models.User{Email: "a@b.com", Role: models.RoleUser}
	require.NoError(t, store.Create(ctx, &user))
	_, err := store.SetResponses(ctx, user.ID.Hex(), []models.Response{{QuestionID: "q", Answer: "a"}}, models.StatusPending)
	require.NoError(t, err)

	got, err := store.FindByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	got.Responses[0].Answer = "changed"

	again, err := store.FindByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a", again.Responses[0].Answer)
}

func TestListByRoleNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, email := range []string{"first@b.com", "second@b.com", "third@b.com"} {
		u := models.User{Email: email, Role: models.RoleUser, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, store.Create(ctx, &u))
	}
	admin := models.User{Email: "admin@b.com", Role: models.RoleAdmin}
	require.NoError(t, store.Create(ctx, &admin))

	users, err := store.ListByRole(ctx, models.RoleUser)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "third@b.com", users[0].Email)
	assert.Equal(t, "first@b.com", users[2].Email)
}

func TestQuestionStoreOrdersByOrder(t *testing.T) {
	store := NewQuestionStore(
		models.Question{Text: "b", Order: 2},
		models.Question{Text: "a", Order: 1},
	)

	questions, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "a", questions[0].Text)
	assert.False(t, questions[0].ID.IsZero())
}
