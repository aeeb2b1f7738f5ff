// Package media talks to the external hosting service that stores binary
// assets (cover images, 3D model files, thumbnails, profile pictures).
package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind selects the remote folder and resource type for an asset.
type Kind string

const (
	KindProfileImage Kind = "profileImage"
	KindCoverImage   Kind = "coverImage"
	KindObject       Kind = "object"
	KindThumbnail    Kind = "thumbnail"
)

// Folder returns the remote folder an asset kind is stored under.
func (k Kind) Folder() string {
	switch k {
	case KindProfileImage:
		return "profile_images"
	case KindCoverImage:
		return "cover_images"
	case KindThumbnail:
		return "thumbnails"
	case KindObject:
		return "objects"
	default:
		return "misc"
	}
}

// ResourceType returns the hosting service resource class; 3D models are
// stored as raw blobs, everything else as images.
func (k Kind) ResourceType() string {
	if k == KindObject {
		return "raw"
	}
	return "image"
}

// Asset is the stable reference the hosting service hands back on upload.
type Asset struct {
	ID     string
	URL    string
	Format string
	Bytes  int64
}

// Store is the media hosting boundary. Uploads and deletes are awaited
// synchronously within the request; failures propagate, no retries.
type Store interface {
	Upload(ctx context.Context, r io.Reader, kind Kind, originalName string) (Asset, error)
	Delete(ctx context.Context, id string, kind Kind) error
}

// Ref is the persisted shape of an asset reference, embedded in models
// that own a remote file. An empty FileName means no asset is attached.
type Ref struct {
	FileName string `gorm:"size:255" json:"fileName"`
	FilePath string `gorm:"size:512" json:"filePath"`
	FileType string `gorm:"size:50" json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// RefOf converts an upload result into its persisted reference.
func RefOf(a Asset) Ref {
	return Ref{
		FileName: a.ID,
		FilePath: a.URL,
		FileType: a.Format,
		FileSize: a.Bytes,
	}
}

// Empty reports whether the reference points at no asset.
func (r Ref) Empty() bool {
	return r.FileName == ""
}

// RemoteName builds the unique remote identifier for an upload: a UUID
// prefix plus the original name without extension, spaces collapsed to
// hyphens.
func RemoteName(originalName string) string {
	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	sanitized := strings.Join(strings.Fields(base), "-")
	return uuid.NewString() + "_" + sanitized
}

// Format extracts a lowercase format token from a file name ("png", "glb").
func Format(originalName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
}
