package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/abhinav/feedback-service/internal/api/http"
	"github.com/abhinav/feedback-service/internal/api/http/handlers"
	"github.com/abhinav/feedback-service/internal/auth"
	"github.com/abhinav/feedback-service/internal/domain"
	"github.com/abhinav/feedback-service/internal/events"
	"github.com/abhinav/feedback-service/internal/observability"
	"github.com/abhinav/feedback-service/internal/persistence"
	"github.com/abhinav/feedback-service/internal/repository"
	"github.com/abhinav/feedback-service/internal/service"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	copied := *user
	f.users[user.Username] = &copied
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if user, ok := f.users[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(f.users))
	for _, user := range f.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

type fakeFeedbackRepo struct {
	feedbacks []*domain.Feedback
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	copied := *feedback
	f.feedbacks = append(f.feedbacks, &copied)
	return nil
}

func (f *fakeFeedbackRepo) GetByID(_ context.Context, id string) (*domain.Feedback, error) {
	for _, feedback := range f.feedbacks {
		if feedback.ID == id {
			copied := *feedback
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeFeedbackRepo) List(_ context.Context) ([]*domain.Feedback, error) {
	out := make([]*domain.Feedback, 0, len(f.feedbacks))
	for _, feedback := range f.feedbacks {
		copied := *feedback
		out = append(out, &copied)
	}
	return out, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := zap.NewNop()
	tokens := auth.NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	userRepo := &fakeUserRepo{users: make(map[string]*domain.User)}
	feedbackRepo := &fakeFeedbackRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(userRepo, tokens, dispatcher, bcrypt.MinCost)
	feedbackService := service.NewFeedbackService(feedbackRepo, nil, dispatcher, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("feedback-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any, string) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	parsed := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp.StatusCode, parsed, string(raw)
}

func register(t *testing.T, app *fiber.App, username, email, password, role string) (int, map[string]any, string) {
	t.Helper()
	return doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
		"role":     role,
	})
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	status, body, _ := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	assert.Equal(t, username, data["username"])
	return token
}

func TestEndToEnd_FeedbackScenario(t *testing.T) {
	app := newTestApp(t)

	// Registration returns the created account with an id and no password field.
	status, body, raw := register(t, app, "alice", "alice@x.com", "pw123", "USER")
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, raw, "password")

	token := login(t, app, "alice", "pw123")

	// USER-only operation succeeds with the issued token.
	status, _, _ = doRequest(t, app, http.MethodPost, "/api/feedback", token, map[string]any{
		"name":    "alice",
		"email":   "alice@x.com",
		"message": "really solid service",
		"rating":  5,
	})
	assert.Equal(t, http.StatusCreated, status)

	// ADMIN-only operation is forbidden, not unauthorized.
	status, _, _ = doRequest(t, app, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// No token: public reads work, protected operations are unauthorized.
	status, _, _ = doRequest(t, app, http.MethodGet, "/api/feedback", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _, _ = doRequest(t, app, http.MethodPost, "/api/feedback", "", map[string]any{
		"name": "x", "email": "x@x.com", "message": "hello there", "rating": 3,
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Mangled token is rejected outright.
	status, _, _ = doRequest(t, app, http.MethodGet, "/api/feedback", token+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEndToEnd_DuplicateRegistrationConflicts(t *testing.T) {
	app := newTestApp(t)

	status, _, _ := register(t, app, "alice", "alice@x.com", "pw123", "USER")
	require.Equal(t, http.StatusCreated, status)

	status, _, raw := register(t, app, "alice", "other@x.com", "pw456", "USER")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, raw, "CONFLICT")

	status, _, _ = register(t, app, "bob", "alice@x.com", "pw456", "USER")
	assert.Equal(t, http.StatusConflict, status)
}

func TestEndToEnd_AdminListsUsers(t *testing.T) {
	app := newTestApp(t)

	status, _, _ := register(t, app, "alice", "alice@x.com", "pw123", "USER")
	require.Equal(t, http.StatusCreated, status)
	status, _, _ = register(t, app, "root", "root@x.com", "pw123", "ADMIN")
	require.Equal(t, http.StatusCreated, status)

	adminToken := login(t, app, "root", "pw123")

	status, body, raw := doRequest(t, app, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	users := data["users"].([]any)
	assert.Len(t, users, 2)
	assert.NotContains(t, raw, "password")
}

func TestEndToEnd_LegacyRolePrefixAccepted(t *testing.T) {
	app := newTestApp(t)

	status, body, _ := register(t, app, "alice", "alice@x.com", "pw123", "ROLE_ADMIN")
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "ADMIN", user["role"])
}

func TestEndToEnd_FeedbackValidation(t *testing.T) {
	app := newTestApp(t)

	status, _, _ := register(t, app, "alice", "alice@x.com", "pw123", "USER")
	require.Equal(t, http.StatusCreated, status)
	token := login(t, app, "alice", "pw123")

	status, _, raw := doRequest(t, app, http.MethodPost, "/api/feedback", token, map[string]any{
		"name": "", "email": "nope", "message": "hi", "rating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, raw, "VALIDATION_FAILED")
	assert.Contains(t, raw, "rating")
}

func TestEndToEnd_FeedbackByID(t *testing.T) {
	app := newTestApp(t)

	status, _, _ := register(t, app, "alice", "alice@x.com", "pw123", "USER")
	require.Equal(t, http.StatusCreated, status)
	token := login(t, app, "alice", "pw123")

	status, body, _ := doRequest(t, app, http.MethodPost, "/api/feedback", token, map[string]any{
		"name": "alice", "email": "alice@x.com", "message": "found my order", "rating": 4,
	})
	require.Equal(t, http.StatusCreated, status)
	created := body["data"].(map[string]any)["feedback"].(map[string]any)
	id := created["id"].(string)

	status, body, _ = doRequest(t, app, http.MethodGet, "/api/feedback/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	got := body["data"].(map[string]any)["feedback"].(map[string]any)
	assert.Equal(t, "found my order", got["message"])

	status, _, raw := doRequest(t, app, http.MethodGet, "/api/feedback/missing-id", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, raw, "NOT_FOUND")
}
