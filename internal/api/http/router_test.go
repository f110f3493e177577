package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/task-service/internal/api/http/handlers"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/observability"
	"github.com/spec-kit/task-service/internal/persistence"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/service"
)

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return repository.ErrDuplicate
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, user := range r.users {
		if user.ID == id {
			delete(r.users, username)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memTaskRepo struct {
	mu     sync.Mutex
	tasks  map[string]*domain.Task
	nextID int
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = fmt.Sprintf("task-%d", r.nextID)
	task.CreatedAt = time.Now()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *task
	return &clone, nil
}

func (r *memTaskRepo) ListAll(_ context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func (r *memTaskRepo) ListByUsername(_ context.Context, username string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tasks []domain.Task
	for _, task := range r.tasks {
		if task.Username == username {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()

	key, err := auth.NewSigningKey()
	require.NoError(t, err)
	tokens := auth.NewTokenManager(key, 3600)

	users := &memUserRepo{users: make(map[string]*domain.User)}
	tasks := &memTaskRepo{tasks: make(map[string]*domain.Task)}
	dispatcher := events.NewInMemoryDispatcher()

	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	taskService := service.NewTaskService(tasks, dispatcher)
	userService := service.NewUserService(users)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("task-service-test", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, token string) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Error.Code
}

func TestAuthenticationScenario(t *testing.T) {
	app := newTestServer(t)

	status, raw := doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
		"name": "Alice", "username": "alice", "password": "pw123", "email": "a@x.com",
	}, "")
	require.Equal(t, http.StatusCreated, status)
	var profile map[string]string
	require.NoError(t, json.Unmarshal(raw, &profile))
	require.Equal(t, "alice", profile["username"])
	require.Equal(t, "a@x.com", profile["email"])
	require.NotContains(t, string(raw), "password")

	status, raw = doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
		"name": "Alice Again", "username": "alice", "password": "pw456", "email": "a2@x.com",
	}, "")
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "DUPLICATE_USER", errorCode(t, raw))

	status, raw = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "pw123",
	}, "")
	require.Equal(t, http.StatusOK, status)
	var login struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotEmpty(t, login.Token)
	require.Equal(t, "alice", login.Username)
	require.Equal(t, "a@x.com", login.Email)

	status, _ = doJSON(t, app, http.MethodGet, "/api/tasks/getAll", nil, login.Token)
	require.Equal(t, http.StatusOK, status)

	status, raw = doJSON(t, app, http.MethodGet, "/api/tasks/getAll", nil, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(t, raw))

	// Only the top bits of the final base64 char survive decoding, so the
	// replacement must differ in those bits.
	tampered := login.Token[:len(login.Token)-1]
	if strings.ContainsRune("QRST", rune(login.Token[len(login.Token)-1])) {
		tampered += "A"
	} else {
		tampered += "Q"
	}
	status, raw = doJSON(t, app, http.MethodGet, "/api/tasks/getAll", nil, tampered)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(t, raw))

	status, raw = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "wrongpw",
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	wrongPasswordBody := string(raw)
	require.Equal(t, "INVALID_CREDENTIALS", errorCode(t, raw))

	status, raw = doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "bob", "password": "anything",
	}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, wrongPasswordBody, string(raw))
}

func TestTaskEndpoints(t *testing.T) {
	app := newTestServer(t)

	_, _ = doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
		"name": "Alice", "username": "alice", "password": "pw123", "email": "a@x.com",
	}, "")
	_, raw := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "pw123",
	}, "")
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))

	status, raw := doJSON(t, app, http.MethodPost, "/api/tasks/create", map[string]string{
		"taskName": "write report", "description": "quarterly numbers", "priority": "high", "dueDate": "2026-09-01",
	}, login.Token)
	require.Equal(t, http.StatusCreated, status)
	var task map[string]any
	require.NoError(t, json.Unmarshal(raw, &task))
	require.Equal(t, "alice", task["userName"])
	require.Equal(t, "pending", task["status"])
	taskID := task["id"].(string)

	status, raw = doJSON(t, app, http.MethodGet, "/api/tasks/getByUserName/alice", nil, login.Token)
	require.Equal(t, http.StatusOK, status)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 1)

	status, raw = doJSON(t, app, http.MethodPut, "/api/tasks/update/"+taskID, map[string]string{
		"status": "completed",
	}, login.Token)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &task))
	require.Equal(t, "completed", task["status"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/tasks/delete/"+taskID, nil, login.Token)
	require.Equal(t, http.StatusNoContent, status)

	status, raw = doJSON(t, app, http.MethodGet, "/api/tasks/getTaskById/"+taskID, nil, login.Token)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(t, raw))
}

func TestUserEndpoints(t *testing.T) {
	app := newTestServer(t)

	_, _ = doJSON(t, app, http.MethodPost, "/auth/register", map[string]string{
		"name": "Alice", "username": "alice", "password": "pw123", "email": "a@x.com",
	}, "")
	_, raw := doJSON(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "pw123",
	}, "")
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))

	status, raw := doJSON(t, app, http.MethodGet, "/api/users/getAllUsers", nil, login.Token)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]string
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 1)
	userID := users[0]["id"]
	require.NotContains(t, string(raw), "password")

	status, _ = doJSON(t, app, http.MethodGet, "/api/users/user/"+userID, nil, login.Token)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/users/"+userID, nil, login.Token)
	require.Equal(t, http.StatusNoContent, status)

	status, raw = doJSON(t, app, http.MethodGet, "/api/users/user/"+userID, nil, login.Token)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(t, raw))
}

func TestHealthLive(t *testing.T) {
	app := newTestServer(t)

	status, raw := doJSON(t, app, http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(raw), "alive")
}

func TestAuthRateLimit(t *testing.T) {
	limit := AuthRateLimit(config.RateLimitConfig{AuthRequestsPerMinute: 60, AuthBurst: 2})

	app := fiber.New()
	app.Post("/auth/login", limit, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		last = resp.StatusCode
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
