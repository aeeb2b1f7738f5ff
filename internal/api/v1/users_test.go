package v1_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopUpAccumulates(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "saver", false)

	status, env := ta.doJSON(t, "POST", "/api/v1/tokens/topup", token, map[string]interface{}{"amount": 50})
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 50, env.Data["tokens"])

	status, env = ta.doJSON(t, "POST", "/api/v1/tokens/topup", token, map[string]interface{}{"amount": 25})
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 75, env.Data["tokens"])

	for _, amount := range []int{0, -10} {
		status, env = ta.doJSON(t, "POST", "/api/v1/tokens/topup", token, map[string]interface{}{"amount": amount})
		assert.Equal(t, fiber.StatusBadRequest, status)
	}

	status, env = ta.doJSON(t, "GET", "/api/v1/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 75, env.Data["tokens"])
}

func TestUpdateMe(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "editable", false)
	ta.signup(t, "occupied", false)

	status, env := ta.doJSON(t, "PATCH", "/api/v1/users/me", token, map[string]interface{}{
		"firstName": "Renamed",
		"username":  "editable2",
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	status, env = ta.doJSON(t, "GET", "/api/v1/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Renamed", env.Data["firstName"])
	assert.Equal(t, "editable2", env.Data["username"])

	// Taken usernames are refused.
	status, _ = ta.doJSON(t, "PATCH", "/api/v1/users/me", token, map[string]interface{}{
		"username": "occupied",
	})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestBecomeArtistUnlocksArtistRoutes(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "aspiring", false)

	// Artist-only surface is closed to regular accounts.
	status, env := ta.doJSON(t, "POST", "/api/v1/genres", token, map[string]interface{}{"name": "street art"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Artist account required", env.Message)

	status, env = ta.doJSON(t, "POST", "/api/v1/users/me/become-artist", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, env.Data["isArtist"])
	fresh, _ := env.Data["token"].(string)
	require.NotEmpty(t, fresh)

	// The old token still names a non-artist; the fresh one works.
	status, env = ta.doJSON(t, "POST", "/api/v1/genres", fresh, map[string]interface{}{"name": "street art"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
}

func TestDeleteMe(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "leaving", false)

	status, _ := ta.doJSON(t, "DELETE", "/api/v1/users/me", token, nil)
	require.Equal(t, fiber.StatusNoContent, status)

	// The account is gone, so the token no longer resolves.
	status, _ = ta.doJSON(t, "GET", "/api/v1/users/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ta.doJSON(t, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email": "leaving@example.com", "password": "correct-horse",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSetProfilePicture(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "portrait", false)

	status, env := ta.doMultipart(t, "PUT", "/api/v1/users/me/picture", token, nil,
		formFile{Field: "image", Name: "face.png", MIME: "image/png", Contents: []byte("png-bytes")})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	pic, ok := env.Data["profilePicture"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, pic["fileName"])
	assert.Equal(t, 1, ta.Store.Len())

	// Replacing swaps the stored asset rather than piling up copies.
	status, _ = ta.doMultipart(t, "PUT", "/api/v1/users/me/picture", token, nil,
		formFile{Field: "image", Name: "face2.png", MIME: "image/png", Contents: []byte("other-bytes")})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, ta.Store.Len())
}

func TestPublicUserIndexHidesPrivateFields(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "somebody", false)

	status, env := ta.doJSON(t, "GET", "/api/v1/users", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	users, ok := env.Data["users"].([]interface{})
	require.True(t, ok)
	require.Len(t, users, 1)
	entry, _ := users[0].(map[string]interface{})
	assert.Equal(t, "somebody", entry["username"])
	assert.NotContains(t, entry, "email")
	assert.NotContains(t, entry, "tokens")
}

func TestArtistDirectory(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "gallerist", true)
	ta.signup(t, "visitor", false)

	status, env := ta.doJSON(t, "GET", "/api/v1/artists", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	artists, ok := env.Data["artists"].([]interface{})
	require.True(t, ok)
	require.Len(t, artists, 1)
	first, ok := artists[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "gallerist", first["username"])
}
