package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	routes "github.com/arvue/arvue/internal/api"
	"github.com/arvue/arvue/internal/auth"
	"github.com/arvue/arvue/internal/config"
	"github.com/arvue/arvue/internal/media"
	"github.com/arvue/arvue/internal/models"
	"github.com/arvue/arvue/pkg/logger"
)

// testApp bundles everything a handler test talks to.
type testApp struct {
	App   *fiber.App
	DB    *gorm.DB
	Store *media.MemStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// The in-memory database lives per connection.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.RegisterModels()...))

	log, err := logger.NewLogger(context.Background(), logger.WithOutputDir(t.TempDir()))
	require.NoError(t, err)

	auth.SetSecret("handler-test-secret")
	t.Cleanup(log.Close)

	cfg := &config.Config{Env: "test", AllowedOrigin: "*"}
	store := media.NewMemStore()
	app := fiber.New(fiber.Config{BodyLimit: 25 << 20})
	routes.NewRoutes(app, cfg, db, log, nil, store)

	return &testApp{App: app, DB: db, Store: store}
}

// envelope mirrors the response shell every endpoint answers with.
type envelope struct {
	Status  string                 `json:"status"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (ta *testApp) doJSON(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := ta.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp.StatusCode, env
}

// formFile is one file part of a multipart request.
type formFile struct {
	Field    string
	Name     string
	MIME     string
	Contents []byte
}

func (ta *testApp) doMultipart(t *testing.T, method, path, token string, fields map[string]string, files ...formFile) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		h.Set("Content-Type", f.MIME)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Contents)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := ta.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp.StatusCode, env
}

// signup registers an account through the API and returns its token.
func (ta *testApp) signup(t *testing.T, username string, isArtist bool) string {
	t.Helper()
	status, env := ta.doJSON(t, "POST", "/api/v1/auth/signup", "", map[string]interface{}{
		"firstName": "Test",
		"lastName":  "User",
		"username":  username,
		"email":     username + "@example.com",
		"password":  "correct-horse",
		"isArtist":  isArtist,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	token, _ := env.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// topup credits the authenticated user's balance through the API.
func (ta *testApp) topup(t *testing.T, token string, amount int64) {
	t.Helper()
	status, env := ta.doJSON(t, "POST", "/api/v1/tokens/topup", token, map[string]interface{}{"amount": amount})
	require.Equal(t, fiber.StatusOK, status, env.Message)
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'e', 'g', '-', 'd', 'a', 't', 'a'}

// createCollection drives the multipart creation endpoint and returns
// the new collection's id.
func (ta *testApp) createCollection(t *testing.T, token, title string, price int64) string {
	t.Helper()
	status, env := ta.doMultipart(t, "POST", "/api/v1/artist/collections", token, map[string]string{
		"type":  "tour",
		"title": title,
		"city":  "Rotterdam",
		"price": fmt.Sprintf("%d", price),
	}, formFile{Field: "coverImage", Name: "cover.jpg", MIME: "image/jpeg", Contents: jpegBytes})
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	col, ok := env.Data["collection"].(map[string]interface{})
	require.True(t, ok)
	id, _ := col["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// createObject uploads a 3D model through the API and returns the new
// object's id.
func (ta *testApp) createObject(t *testing.T, token, title string) string {
	t.Helper()
	status, env := ta.doMultipart(t, "POST", "/api/v1/objects", token, map[string]string{
		"title": title,
	}, formFile{Field: "file", Name: "model.glb", MIME: "model/gltf-binary", Contents: []byte("glTF-binary-bytes")})
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	obj, ok := env.Data["object"].(map[string]interface{})
	require.True(t, ok)
	id, _ := obj["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func (ta *testApp) publishCollection(t *testing.T, token, id string) {
	t.Helper()
	status, env := ta.doJSON(t, "POST", "/api/v1/artist/collections/"+id+"/publish", token, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	require.Equal(t, true, env.Data["isPublished"])
}
