package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetMyProfile(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "tester", Role: models.RoleReader, IsActive: true}, nil)

	app := fiber.New()
	app.Use(withPrincipal(readerPrincipal))
	app.Get("/users/me", s.GetMyProfile)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "tester", user.Username)
}

func TestUpdateMyProfile(t *testing.T) {
	s, m := newTestServer()
	m.users.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "tester", IsActive: true}, nil)
	m.users.On("Update", mock.Anything, mock.Anything).Return(nil)

	app := fiber.New()
	app.Use(withPrincipal(readerPrincipal))
	app.Put("/users/me", s.UpdateMyProfile)

	body, _ := json.Marshal(map[string]any{
		"bio":          "Writes about Go",
		"social_links": map[string]string{"mastodon": "@tester@example.social"},
	})
	req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "Writes about Go", user.Bio)
	m.users.AssertExpectations(t)
}

func TestGetUserProfile(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		s, m := newTestServer()
		m.users.On("GetByUsername", mock.Anything, "tester").
			Return(&models.User{ID: 1, Username: "tester", IsActive: true}, nil)

		app := fiber.New()
		app.Get("/users/:username", s.GetUserProfile)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/tester", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Not Found", func(t *testing.T) {
		s, m := newTestServer()
		m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

		app := fiber.New()
		app.Get("/users/:username", s.GetUserProfile)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/ghost", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetAllUsers(t *testing.T) {
	s, m := newTestServer()
	m.users.On("ListActive", mock.Anything, 50, 0).
		Return([]models.User{{ID: 1, Username: "a"}, {ID: 2, Username: "b"}}, nil)

	app := fiber.New()
	app.Get("/users", s.GetAllUsers)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Len(t, users, 2)
}

func TestSetUserRole(t *testing.T) {
	t.Run("Admin Promotes Reader", func(t *testing.T) {
		s, m := newTestServer()
		m.users.On("SetRole", mock.Anything, uint(7), models.RoleAuthor).Return(nil)
		m.users.On("GetByID", mock.Anything, uint(7)).
			Return(&models.User{ID: 7, Username: "promoted", Role: models.RoleAuthor, IsActive: true}, nil)

		app := fiber.New()
		app.Use(withPrincipal(adminPrincipal))
		app.Put("/users/:id/role", s.SetUserRole)

		body, _ := json.Marshal(map[string]string{"role": "author"})
		req := httptest.NewRequest(http.MethodPut, "/users/7/role", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var user models.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
		assert.Equal(t, models.RoleAuthor, user.Role)
		m.users.AssertExpectations(t)
	})

	t.Run("Non Admin Forbidden", func(t *testing.T) {
		s, _ := newTestServer()

		app := fiber.New()
		app.Use(withPrincipal(readerPrincipal))
		app.Put("/users/:id/role", s.SetUserRole)

		body, _ := json.Marshal(map[string]string{"role": "author"})
		req := httptest.NewRequest(http.MethodPut, "/users/7/role", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		s, _ := newTestServer()

		app := fiber.New()
		app.Use(withPrincipal(adminPrincipal))
		app.Put("/users/:id/role", s.SetUserRole)

		body, _ := json.Marshal(map[string]string{"role": "owner"})
		req := httptest.NewRequest(http.MethodPut, "/users/7/role", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSetUserActive(t *testing.T) {
	t.Run("Admin Deactivates User", func(t *testing.T) {
		s, m := newTestServer()
		m.users.On("SetActive", mock.Anything, uint(7), false).Return(nil)
		m.users.On("GetByID", mock.Anything, uint(7)).
			Return(&models.User{ID: 7, Username: "parked", IsActive: false}, nil)

		app := fiber.New()
		app.Use(withPrincipal(adminPrincipal))
		app.Put("/users/:id/active", s.SetUserActive)

		body, _ := json.Marshal(map[string]bool{"active": false})
		req := httptest.NewRequest(http.MethodPut, "/users/7/active", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.users.AssertExpectations(t)
	})

	t.Run("Self Deactivation Rejected", func(t *testing.T) {
		s, _ := newTestServer()

		app := fiber.New()
		app.Use(withPrincipal(adminPrincipal))
		app.Put("/users/:id/active", s.SetUserActive)

		body, _ := json.Marshal(map[string]bool{"active": false})
		req := httptest.NewRequest(http.MethodPut, "/users/3/active", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
