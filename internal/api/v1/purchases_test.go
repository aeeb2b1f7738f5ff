package v1_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseFlow(t *testing.T) {
	ta := newTestApp(t)
	artist := ta.signup(t, "exhibitor", true)
	buyer := ta.signup(t, "collector", false)

	colID := ta.createCollection(t, artist, "Harbour Lights", 30)
	ta.publishCollection(t, artist, colID)
	ta.topup(t, buyer, 100)

	status, env := ta.doJSON(t, "POST", "/api/v1/purchases", buyer, map[string]interface{}{"collectionId": colID})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.EqualValues(t, 70, env.Data["tokensLeft"])
	purchase, ok := env.Data["purchase"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 30, purchase["price"])

	// Buying twice is refused and nothing more is debited.
	status, env = ta.doJSON(t, "POST", "/api/v1/purchases", buyer, map[string]interface{}{"collectionId": colID})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "You already own this collection", env.Message)

	status, env = ta.doJSON(t, "GET", "/api/v1/users/me", buyer, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 70, env.Data["tokens"])

	status, env = ta.doJSON(t, "GET", "/api/v1/purchases", buyer, nil)
	require.Equal(t, fiber.StatusOK, status)
	purchases, ok := env.Data["purchases"].([]interface{})
	require.True(t, ok)
	require.Len(t, purchases, 1)
}

func TestPurchaseInsufficientTokens(t *testing.T) {
	ta := newTestApp(t)
	artist := ta.signup(t, "pricer", true)
	broke := ta.signup(t, "pennyless", false)

	colID := ta.createCollection(t, artist, "Golden Route", 50)
	ta.publishCollection(t, artist, colID)
	ta.topup(t, broke, 10)

	status, env := ta.doJSON(t, "POST", "/api/v1/purchases", broke, map[string]interface{}{"collectionId": colID})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Insufficient tokens", env.Message)

	status, env = ta.doJSON(t, "GET", "/api/v1/users/me", broke, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 10, env.Data["tokens"])
}

func TestPurchaseDraftIsInvisible(t *testing.T) {
	ta := newTestApp(t)
	artist := ta.signup(t, "secretive", true)
	buyer := ta.signup(t, "eager", false)

	draftID := ta.createCollection(t, artist, "Work In Progress", 5)
	ta.topup(t, buyer, 100)

	status, env := ta.doJSON(t, "POST", "/api/v1/purchases", buyer, map[string]interface{}{"collectionId": draftID})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Collection not found", env.Message)
}
