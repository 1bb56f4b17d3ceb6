// Package memdb keeps users and questions in process memory. It mirrors the
// MongoDB repositories in internal/db, including their sentinel errors, and
// backs tests and STORE_BACKEND=memory runs.
package memdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
	now   func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[primitive.ObjectID]models.User),
		now:   time.Now,
	}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return db.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	if user.Responses == nil {
		user.Responses = []models.Response{}
	}
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (s *UserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(id)
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	return withoutPassword(u), nil
}

func (s *UserStore) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, u := range s.users {
		if u.Role == role {
			users = append(users, withoutPassword(u))
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *UserStore) SetResponses(_ context.Context, id string, responses []models.Response, status models.Status) (models.User, error) {
	return s.update(id, func(u *models.User) {
		u.Responses = append([]models.Response{}, responses...)
		u.Status = status
	})
}

func (s *UserStore) SetStatus(_ context.Context, id string, status models.Status) (models.User, error) {
	return s.update(id, func(u *models.User) {
		u.Status = status
	})
}

func (s *UserStore) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Email == email {
			delete(s.users, id)
		}
	}
	return nil
}

// update applies fn and returns the record as it was before, like the
// MongoDB repository does.
func (s *UserStore) update(id string, fn func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.lookup(id)
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	before := withoutPassword(u)
	fn(&u)
	s.users[u.ID] = u
	return before, nil
}

func (s *UserStore) lookup(id string) (models.User, bool) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, false
	}
	u, ok := s.users[objID]
	return u, ok
}

type QuestionStore struct {
	mu        sync.RWMutex
	questions []models.Question
}

func NewQuestionStore(questions ...models.Question) *QuestionStore {
	s := &QuestionStore{}
	_ = s.ReplaceAll(context.Background(), questions)
	return s
}

func (s *QuestionStore) List(_ context.Context) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		q.Options = append([]string{}, q.Options...)
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *QuestionStore) ReplaceAll(_ context.Context, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.questions = make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if q.ID.IsZero() {
			q.ID = primitive.NewObjectID()
		}
		q.Options = append([]string{}, q.Options...)
		q.CreatedAt = now
		q.UpdatedAt = now
		s.questions = append(s.questions, q)
	}
	return nil
}

func cloneUser(u models.User) models.User {
	u.Responses = append([]models.Response{}, u.Responses...)
	return u
}

func withoutPassword(u models.User) models.User {
	u = cloneUser(u)
	u.PasswordHash = ""
	return u
}
