package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arzan03/OnboardGate/internal/config"
	"github.com/arzan03/OnboardGate/internal/db/memdb"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail     = "a@b.com"
	testPassword  = "secret1"
	adminEmail    = "admin@example.com"
	adminPassword = "admin123"
)

type apiResponse struct {
	Status int
	Raw    string
	Body   map[string]any
	Cookie *http.Cookie
}

type fakeExports struct {
	objects map[string][]byte
}

func (f *fakeExports) Put(_ context.Context, name string, data []byte, _ string) error {
	f.objects[name] = data
	return nil
}

func (f *fakeExports) PresignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "http://objects.test/" + name, nil
}

func newTestApp(t *testing.T, exports services.ObjectStore) *fiber.App {
	t.Helper()

	users := memdb.NewUserStore()
	questions := memdb.NewQuestionStore()
	_, err := services.Seed(context.Background(), users, questions, adminEmail, adminPassword)
	require.NoError(t, err)

	return NewApp(Deps{
		Config: config.Config{
			CORSOrigin: "http://localhost:3000",
			Session:    config.SessionConfig{TTL: 24 * time.Hour},
		},
		Users:     users,
		Questions: questions,
		Exports:   exports,
		Log:       zerolog.Nop(),
		AccessLog: io.Discard,
	})
}

func call(t *testing.T, app *fiber.App, method, path string, payload any, cookie *http.Cookie) apiResponse {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := apiResponse{Status: resp.StatusCode, Raw: string(raw)}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			out.Cookie = c
		}
	}
	return out
}

func login(t *testing.T, app *fiber.App, email, password string) *http.Cookie {
	t.Helper()
	resp := call(t, app, fiber.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
	require.NotNil(t, resp.Cookie)
	return resp.Cookie
}

func userField(t *testing.T, resp apiResponse, field string) any {
	t.Helper()
	user, ok := resp.Body["user"].(map[string]any)
	require.True(t, ok, "response has no user: %s", resp.Raw)
	return user[field]
}

// TestOnboardingFlow walks an account from signup to approval.
func TestOnboardingFlow(t *testing.T) {
	app := newTestApp(t, nil)

	t.Run("Signup", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPost, "/auth/signup", map[string]string{"email": testEmail, "password": testPassword}, nil)
		assert.Equal(t, fiber.StatusCreated, resp.Status, resp.Raw)
		assert.Nil(t, resp.Cookie)
	})

	t.Run("Duplicate Signup", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPost, "/auth/signup", map[string]string{"email": testEmail, "password": "different"}, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.Status)
		assert.Equal(t, "User already exists", resp.Body["message"])
	})

	t.Run("Invalid Signup", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPost, "/auth/signup", map[string]string{"email": "not-an-email", "password": testPassword}, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.Status)

		resp = call(t, app, fiber.MethodPost, "/auth/signup", map[string]string{"email": "c@d.com", "password": "123"}, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	})

	t.Run("Bad Credentials", func(t *testing.T) {
		wrong := call(t, app, fiber.MethodPost, "/auth/login", map[string]string{"email": testEmail, "password": "wrong-pass"}, nil)
		unknown := call(t, app, fiber.MethodPost, "/auth/login", map[string]string{"email": "nobody@b.com", "password": testPassword}, nil)

		assert.Equal(t, fiber.StatusBadRequest, wrong.Status)
		assert.Equal(t, fiber.StatusBadRequest, unknown.Status)
		assert.Equal(t, wrong.Raw, unknown.Raw)
		assert.Equal(t, "Invalid credentials", wrong.Body["message"])
	})

	var userCookie *http.Cookie
	var userID string
	t.Run("Login", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPost, "/auth/login", map[string]string{"email": testEmail, "password": testPassword}, nil)
		require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
		require.NotNil(t, resp.Cookie)
		assert.True(t, resp.Cookie.HttpOnly)

		assert.Equal(t, "new", userField(t, resp, "status"))
		assert.Equal(t, "user", userField(t, resp, "role"))
		assert.NotContains(t, resp.Raw, "password")
		userCookie = resp.Cookie
		userID, _ = userField(t, resp, "_id").(string)
		require.NotEmpty(t, userID)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		for _, path := range []string{"/auth/me", "/questions", "/admin/users"} {
			resp := call(t, app, fiber.MethodGet, path, nil, nil)
			assert.Equal(t, fiber.StatusUnauthorized, resp.Status, path)
		}
		resp := call(t, app, fiber.MethodPost, "/user/responses", map[string]any{"responses": []any{}}, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	})

	var firstQuestion string
	t.Run("List Questions", func(t *testing.T) {
		resp := call(t, app, fiber.MethodGet, "/questions", nil, userCookie)
		require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)

		questions, ok := resp.Body["questions"].([]any)
		require.True(t, ok)
		require.Len(t, questions, 3)
		for i, q := range questions {
			assert.EqualValues(t, i+1, q.(map[string]any)["order"])
		}
		firstQuestion = questions[0].(map[string]any)["_id"].(string)
	})

	t.Run("Submit Responses", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPost, "/user/responses", map[string]any{"responses": []any{}}, userCookie)
		assert.Equal(t, fiber.StatusBadRequest, resp.Status)

		resp = call(t, app, fiber.MethodPost, "/user/responses", map[string]any{
			"responses": []map[string]string{{"questionId": firstQuestion, "answer": "Python"}},
		}, userCookie)
		require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, "pending", userField(t, resp, "status"))
		assert.NotContains(t, resp.Raw, "password")

		responses := userField(t, resp, "responses").([]any)
		require.Len(t, responses, 1)
		answer := responses[0].(map[string]any)
		assert.Equal(t, "What is your preferred programming language?", answer["question"])
		assert.Equal(t, "Python", answer["answer"])
	})

	t.Run("Admin Routes Forbidden", func(t *testing.T) {
		resp := call(t, app, fiber.MethodGet, "/admin/users", nil, userCookie)
		assert.Equal(t, fiber.StatusForbidden, resp.Status)

		resp = call(t, app, fiber.MethodPatch, "/admin/users/"+userID+"/approve", nil, userCookie)
		assert.Equal(t, fiber.StatusForbidden, resp.Status)
	})

	adminCookie := login(t, app, adminEmail, adminPassword)

	t.Run("List Users", func(t *testing.T) {
		resp := call(t, app, fiber.MethodGet, "/admin/users", nil, adminCookie)
		require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
		assert.NotContains(t, resp.Raw, "password")

		users := resp.Body["users"].([]any)
		require.Len(t, users, 1)
		assert.Equal(t, testEmail, users[0].(map[string]any)["email"])
		assert.Equal(t, "pending", users[0].(map[string]any)["status"])
	})

	t.Run("Approve", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPatch, "/admin/users/"+userID+"/approve", nil, adminCookie)
		require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, "approved", userField(t, resp, "status"))
		assert.NotContains(t, resp.Raw, "password")

		resp = call(t, app, fiber.MethodPatch, "/admin/users/"+userID+"/approve", nil, adminCookie)
		assert.Equal(t, fiber.StatusOK, resp.Status)
		assert.Equal(t, "approved", userField(t, resp, "status"))
	})

	t.Run("Review Unknown User", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPatch, "/admin/users/65f0c0ffee0000000000abcd/reject", nil, adminCookie)
		assert.Equal(t, fiber.StatusNotFound, resp.Status)

		resp = call(t, app, fiber.MethodPatch, "/admin/users/not-an-id/approve", nil, adminCookie)
		assert.Equal(t, fiber.StatusNotFound, resp.Status)
	})

	t.Run("Me Reflects Approval", func(t *testing.T) {
		resp := call(t, app, fiber.MethodGet, "/auth/me", nil, userCookie)
		require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
		assert.Equal(t, "approved", userField(t, resp, "status"))
		assert.Equal(t, testEmail, userField(t, resp, "email"))
	})

	t.Run("Export Disabled", func(t *testing.T) {
		resp := call(t, app, fiber.MethodGet, "/admin/users/export", nil, adminCookie)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.Status)
	})

	t.Run("Logout", func(t *testing.T) {
		resp := call(t, app, fiber.MethodPost, "/auth/logout", nil, userCookie)
		assert.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)

		resp = call(t, app, fiber.MethodGet, "/auth/me", nil, userCookie)
		assert.Equal(t, fiber.StatusUnauthorized, resp.Status)

		resp = call(t, app, fiber.MethodPost, "/auth/logout", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.Status)
	})
}

func TestLoginRotatesSession(t *testing.T) {
	app := newTestApp(t, nil)

	first := login(t, app, adminEmail, adminPassword)
	second := call(t, app, fiber.MethodPost, "/auth/login", map[string]string{"email": adminEmail, "password": adminPassword}, first)
	require.Equal(t, fiber.StatusOK, second.Status)
	require.NotNil(t, second.Cookie)
	assert.NotEqual(t, first.Value, second.Cookie.Value)

	resp := call(t, app, fiber.MethodGet, "/auth/me", nil, first)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}

// TestResponseKeys pins the JSON keys browser clients read: ids under
// "_id" and failures under "message".
func TestResponseKeys(t *testing.T) {
	app := newTestApp(t, nil)
	adminCookie := login(t, app, adminEmail, adminPassword)

	resp := call(t, app, fiber.MethodGet, "/questions", nil, adminCookie)
	require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)
	questions, ok := resp.Body["questions"].([]any)
	require.True(t, ok, resp.Raw)
	require.NotEmpty(t, questions)
	question := questions[0].(map[string]any)
	assert.NotEmpty(t, question["_id"])
	assert.NotContains(t, question, "id")

	me := call(t, app, fiber.MethodGet, "/auth/me", nil, adminCookie)
	require.Equal(t, fiber.StatusOK, me.Status, me.Raw)
	assert.NotEmpty(t, userField(t, me, "_id"))
	assert.Nil(t, userField(t, me, "id"))

	failed := call(t, app, fiber.MethodPost, "/auth/login", map[string]string{"email": adminEmail, "password": "wrong-password"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, failed.Status)
	assert.Equal(t, "Invalid credentials", failed.Body["message"])
	assert.NotContains(t, failed.Body, "error")

	denied := call(t, app, fiber.MethodGet, "/admin/users", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, denied.Status)
	assert.Equal(t, "Authentication required", denied.Body["message"])
}

func TestExportRoute(t *testing.T) {
	exports := &fakeExports{objects: map[string][]byte{}}
	app := newTestApp(t, exports)
	adminCookie := login(t, app, adminEmail, adminPassword)

	resp := call(t, app, fiber.MethodGet, "/admin/users/export", nil, adminCookie)
	require.Equal(t, fiber.StatusOK, resp.Status, resp.Raw)

	object, _ := resp.Body["object"].(string)
	require.Contains(t, exports.objects, object)
	assert.Equal(t, "http://objects.test/"+object, resp.Body["url"])
	assert.Contains(t, string(exports.objects[object]), "What is your preferred programming language?")
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	resp := call(t, app, fiber.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "ok", resp.Body["status"])

	resp = call(t, app, fiber.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Contains(t, resp.Raw, "onboardgate_http_requests_total")
}
