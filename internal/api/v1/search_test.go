package v1_test

import (
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCollections(t *testing.T) {
	ta := newTestApp(t)
	artist := ta.signup(t, "findme", true)
	seeker := ta.signup(t, "seeker", false)

	harbour := ta.createCollection(t, artist, "Harbour Lights", 0)
	ta.publishCollection(t, artist, harbour)
	forest := ta.createCollection(t, artist, "Forest Shadows", 0)
	ta.publishCollection(t, artist, forest)
	draft := ta.createCollection(t, artist, "Harbour Draft", 0)
	_ = draft

	status, env := ta.doJSON(t, "GET", "/api/v1/search/collections?q="+url.QueryEscape("harbour"), seeker, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	list, ok := env.Data["collections"].([]interface{})
	require.True(t, ok)
	// Drafts never surface, however well they match.
	require.Len(t, list, 1)
	hit, _ := list[0].(map[string]interface{})
	assert.Equal(t, "Harbour Lights", hit["title"])

	// A query that matches nothing answers 204 with an empty payload.
	status, env = ta.doJSON(t, "GET", "/api/v1/search/collections?q=nothingmatches", seeker, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Empty(t, env.Data)

	status, env = ta.doJSON(t, "GET", "/api/v1/search/collections", seeker, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Search query is required", env.Message)
}

func TestSearchArtists(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "magdalena", true)
	ta.signup(t, "magnus", true)
	seeker := ta.signup(t, "asker", false)

	status, env := ta.doJSON(t, "GET", "/api/v1/search/artists?q=magdalena", seeker, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	artists, ok := env.Data["artists"].([]interface{})
	require.True(t, ok)
	require.Len(t, artists, 1)
	hit, _ := artists[0].(map[string]interface{})
	assert.Equal(t, "magdalena", hit["username"])

	// Non-artists never appear in the artist index, so this matches
	// nothing and answers 204.
	status, _ = ta.doJSON(t, "GET", "/api/v1/search/artists?q=asker", seeker, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}
