package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arvue/arvue/pkg/utils"
)

// HTTPStore implements Store against the hosted media service's REST API.
type HTTPStore struct {
	BaseURL string
	Cloud   string
	APIKey  string
	Client  *http.Client
}

func NewHTTPStore(baseURL, cloud, apiKey string) *HTTPStore {
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Cloud:   cloud,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Upload posts the file as multipart form data and returns the stable
// reference the service assigns.
func (s *HTTPStore) Upload(ctx context.Context, r io.Reader, kind Kind, originalName string) (Asset, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	remoteName := RemoteName(originalName)
	writer.WriteField("folder", kind.Folder())
	writer.WriteField("public_id", remoteName)
	writer.WriteField("resource_type", kind.ResourceType())

	part, err := writer.CreateFormFile("file", originalName)
	if err != nil {
		return Asset{}, utils.WrapError(err, utils.ErrDependency.Code, "Failed to build media upload request")
	}
	if _, err := io.Copy(part, r); err != nil {
		return Asset{}, utils.WrapError(err, utils.ErrDependency.Code, "Failed to read upload payload")
	}
	writer.Close()

	endpoint := fmt.Sprintf("%s/%s/%s/upload", s.BaseURL, s.Cloud, kind.ResourceType())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Asset{}, utils.WrapError(err, utils.ErrDependency.Code, "Failed to build media upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return Asset{}, utils.WrapError(err, utils.ErrDependency.Code, "Media upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Asset{}, utils.NewError(utils.ErrDependency.Code, fmt.Sprintf("Media upload failed with status %d", resp.StatusCode))
	}

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Asset{}, utils.WrapError(err, utils.ErrDependency.Code, "Failed to decode media upload response")
	}

	format := result.Format
	if format == "" {
		format = Format(originalName)
	}

	return Asset{
		ID:     result.PublicID,
		URL:    result.SecureURL,
		Format: format,
		Bytes:  result.Bytes,
	}, nil
}

// Delete removes the asset by remote ID. A missing remote file is not an
// error; the reference is gone either way.
func (s *HTTPStore) Delete(ctx context.Context, id string, kind Kind) error {
	form := url.Values{}
	form.Set("public_id", id)
	form.Set("resource_type", kind.ResourceType())

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", s.BaseURL, s.Cloud, kind.ResourceType())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return utils.WrapError(err, utils.ErrDependency.Code, "Failed to build media delete request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return utils.WrapError(err, utils.ErrDependency.Code, "Media deletion failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return utils.NewError(utils.ErrDependency.Code, fmt.Sprintf("Media deletion failed with status %d", resp.StatusCode))
	}
	return nil
}
