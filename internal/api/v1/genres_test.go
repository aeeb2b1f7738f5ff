package v1_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGenreNormalizesAndDeduplicates(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "tagmaker", true)

	status, env := ta.doJSON(t, "POST", "/api/v1/genres", token, map[string]interface{}{"name": "  street art "})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	genre, ok := env.Data["genre"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Street Art", genre["name"])

	// Same name in different casing collides.
	status, env = ta.doJSON(t, "POST", "/api/v1/genres", token, map[string]interface{}{"name": "STREET ART"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Genre already exists", env.Message)

	// Punctuation is out.
	status, _ = ta.doJSON(t, "POST", "/api/v1/genres", token, map[string]interface{}{"name": "pop/art"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGenreListingIsPublic(t *testing.T) {
	ta := newTestApp(t)
	token := ta.signup(t, "curator", true)

	for _, name := range []string{"sculpture", "light art"} {
		status, env := ta.doJSON(t, "POST", "/api/v1/genres", token, map[string]interface{}{"name": name})
		require.Equal(t, fiber.StatusCreated, status, env.Message)
	}

	// No auth needed to browse tags.
	status, env := ta.doJSON(t, "GET", "/api/v1/genres", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	genres, ok := env.Data["genres"].([]interface{})
	require.True(t, ok)
	require.Len(t, genres, 2)

	// Alphabetical by name.
	first, _ := genres[0].(map[string]interface{})
	second, _ := genres[1].(map[string]interface{})
	assert.Equal(t, "Light Art", first["name"])
	assert.Equal(t, "Sculpture", second["name"])
}
