package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// MediaType distinguishes still images from videos.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Subtype flags mirror the platform's media subtypes.
type Subtype uint

const (
	SubtypeScreenshot Subtype = 1 << iota
	SubtypePanorama
	SubtypeDepthEffect
	SubtypeLivePhoto
	SubtypeBurst
	SubtypeHDR
)

// Asset is one photo-library item.
type Asset struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	MediaType   MediaType `json:"media_type"`
	Subtypes    Subtype   `json:"subtypes"`
	HasLocation bool      `json:"has_location"`
	Favorite    bool      `json:"favorite"`
	Albums      []string  `json:"albums,omitempty"`
}

// Album is a user-curated collection.
type Album struct {
	Title  string   `json:"title"`
	Assets []string `json:"assets"` // asset IDs
}

// Library is the read-only photo library surface the search strategies run
// against. Authorized mirrors the platform access grant: an unauthorized
// library yields empty searches without running any strategy.
type Library interface {
	Authorized() bool
	Assets(ctx context.Context) ([]Asset, error)
	Albums(ctx context.Context) ([]Album, error)
	RecentlyAdded(ctx context.Context, limit int) ([]Asset, error)
}

// FileLibrary is a Library backed by a JSON index file on disk, the device's
// stand-in for the platform photo database.
type FileLibrary struct {
	path   string
	assets []Asset
	albums []Album
}

type libraryIndex struct {
	Assets []Asset `json:"assets"`
	Albums []Album `json:"albums"`
}

// OpenFileLibrary loads the index at path. A missing file is an empty,
// unauthorized library rather than an error.
func OpenFileLibrary(path string) (*FileLibrary, error) {
	lib := &FileLibrary{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return lib, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading photo index: %w", err)
	}
	var idx libraryIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decoding photo index %s: %w", path, err)
	}
	lib.assets = idx.Assets
	lib.albums = idx.Albums
	return lib, nil
}

// Authorized reports whether an index was present on disk.
func (l *FileLibrary) Authorized() bool { return l.assets != nil }

func (l *FileLibrary) Assets(ctx context.Context) ([]Asset, error) {
	return l.assets, nil
}

func (l *FileLibrary) Albums(ctx context.Context) ([]Album, error) {
	return l.albums, nil
}

// RecentlyAdded returns up to limit assets, newest first.
func (l *FileLibrary) RecentlyAdded(ctx context.Context, limit int) ([]Asset, error) {
	sorted := make([]Asset, len(l.assets))
	copy(sorted, l.assets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}
