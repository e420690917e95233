package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	_, r := setupApp(t)

	w := doRequest(r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Asha Rao",
		"email":    "asha@example.com",
		"password": "secret123",
	})
	requireStatus(t, w, http.StatusCreated)

	// Duplicate email refuses.
	w = doRequest(r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Asha Again",
		"email":    "asha@example.com",
		"password": "secret123",
	})
	requireErrorCode(t, w, http.StatusConflict, "CONFLICT_409")

	// Short password refuses.
	w = doRequest(r, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Shorty",
		"email":    "shorty@example.com",
		"password": "short",
	})
	requireErrorCode(t, w, http.StatusBadRequest, "VAL_400")

	w = doRequest(r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "asha@example.com",
		"password": "secret123",
	})
	requireStatus(t, w, http.StatusOK)

	var loginData struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeData(t, w, &loginData)
	require.NotEmpty(t, loginData.Token)
	assert.Equal(t, "asha@example.com", loginData.User.Email)

	// Wrong password yields 401, not 404, so emails cannot be enumerated.
	w = doRequest(r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	requireErrorCode(t, w, http.StatusUnauthorized, "AUTH_401")
}

func TestLogoutBlacklistsToken(t *testing.T) {
	db, r := setupApp(t)

	actor := newActor(t, db, "Logout")

	w := doRequest(r, http.MethodGet, "/api/me", actor.Token, nil)
	requireStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodPost, "/api/auth/logout", actor.Token, nil)
	requireStatus(t, w, http.StatusOK)

	// The same token no longer opens anything.
	w = doRequest(r, http.MethodGet, "/api/me", actor.Token, nil)
	requireErrorCode(t, w, http.StatusUnauthorized, "AUTH_401")
}

func TestAuthRequired(t *testing.T) {
	_, r := setupApp(t)

	w := doRequest(r, http.MethodGet, "/api/me", "", nil)
	requireErrorCode(t, w, http.StatusUnauthorized, "AUTH_401")

	w = doRequest(r, http.MethodGet, "/api/me", "not-a-jwt", nil)
	requireErrorCode(t, w, http.StatusUnauthorized, "AUTH_401")
}
