package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, app *fiber.App, path string) (int, Response) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out Response
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestResponseEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusCreated).
			WithMessage("created").
			WithData(Map{"id": "42"}).
			Send()
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return Error(c, NewError(fiber.StatusConflict, "Already there")).Send()
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return SendError(c, NewError(fiber.StatusInternalServerError, "Storage down"))
	})

	status, out := doRequest(t, app, "/ok")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, fiber.StatusCreated, out.Code)
	assert.Equal(t, "created", out.Message)
	data, ok := out.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", data["id"])

	status, out = doRequest(t, app, "/fail")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "fail", out.Status)
	assert.Equal(t, "Already there", out.Message)

	status, out = doRequest(t, app, "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "error", out.Status)
}

func TestSendErrorMasksUnknownErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/oops", func(c *fiber.Ctx) error {
		return SendError(c, errors.New("pq: connection refused to 10.0.0.3"))
	})

	status, out := doRequest(t, app, "/oops")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "error", out.Status)
	assert.Equal(t, "Server error", out.Message)
	assert.NotContains(t, out.Message, "10.0.0.3")
}
