package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserStore is an in-memory UserStore for handler tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *memUserStore) Insert(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:     "test-secret-key-for-handler-tests-only!",
		Port:          "8080",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "ripple_test",
		UploadDir:     t.TempDir(),
		Env:           "test",
	}
}

func newAuthTestApp(t *testing.T) (*fiber.App, *Server, *memUserStore) {
	t.Helper()
	cfg := testConfig(t)
	users := newMemUserStore()
	s := &Server{
		config:       cfg,
		users:        users,
		imageService: service.NewImageService(cfg),
	}

	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	return app, s, users
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSignup(t *testing.T) {
	validReq := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "SecurePass12!",
	}

	t.Run("creates user and returns token", func(t *testing.T) {
		app, _, users := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/signup", validReq)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", user["username"])
		assert.Nil(t, user["password"], "password hash must not be serialized")

		stored, err := users.FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.NotEqual(t, "SecurePass12!", stored.Password)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/signup", validReq)
		_ = resp.Body.Close()
		resp = postJSON(t, app, "/api/auth/signup", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "SecurePass12!",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/signup", validReq)
		_ = resp.Body.Close()
		resp = postJSON(t, app, "/api/auth/signup", map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"password": "SecurePass12!",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/signup", map[string]string{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/signup", map[string]string{
			"username": "alice",
			"email":    "not-an-email",
			"password": "SecurePass12!",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects weak password", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/signup", map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "weak",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestLogin(t *testing.T) {
	signup := func(t *testing.T, app *fiber.App) {
		resp := postJSON(t, app, "/api/auth/signup", map[string]string{
			"username": "bob",
			"email":    "bob@example.com",
			"password": "SecurePass12!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	t.Run("returns token for valid credentials", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)
		signup(t, app)

		resp := postJSON(t, app, "/api/auth/login", map[string]string{
			"email":    "bob@example.com",
			"password": "SecurePass12!",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)
		signup(t, app)

		resp := postJSON(t, app, "/api/auth/login", map[string]string{
			"email":    "bob@example.com",
			"password": "WrongPass12!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		app, _, _ := newAuthTestApp(t)

		resp := postJSON(t, app, "/api/auth/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "SecurePass12!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestAuthRequired(t *testing.T) {
	newProtectedApp := func(t *testing.T) (*fiber.App, *Server) {
		cfg := testConfig(t)
		s := &Server{config: cfg}
		app := fiber.New()
		app.Get("/whoami", s.AuthRequired(), func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"userID":   c.Locals("userID"),
				"username": c.Locals("username"),
			})
		})
		return app, s
	}

	t.Run("rejects missing token", func(t *testing.T) {
		app, _ := newProtectedApp(t)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		app, _ := newProtectedApp(t)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		app, _ := newProtectedApp(t)

		other := &Server{config: &config.Config{JWTSecret: "a-completely-different-secret-value!!"}}
		token, err := other.generateToken(primitive.NewObjectID().Hex(), "mallory")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, aerr := app.Test(req, -1)
		require.NoError(t, aerr)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("extracts identity from valid token", func(t *testing.T) {
		app, s := newProtectedApp(t)

		userID := primitive.NewObjectID().Hex()
		token, err := s.generateToken(userID, "alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, aerr := app.Test(req, -1)
		require.NoError(t, aerr)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, userID, body["userID"])
		assert.Equal(t, "alice", body["username"])
	})
}
