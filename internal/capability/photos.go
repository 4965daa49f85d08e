package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/voxrelay/voxctl/internal/photos"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Photos searches the device photo library.
type Photos struct {
	Library photos.Library
	Now     func() time.Time
}

func NewPhotos(lib photos.Library) *Photos {
	return &Photos{Library: lib, Now: time.Now}
}

func (p *Photos) Name() string { return "search_photos" }

func (p *Photos) Execute(ctx context.Context, params map[string]any) toolcall.Result {
	query := toolcall.StringParam(params, "query", "")
	if query == "" {
		return toolcall.Failure("Missing search query")
	}
	if !p.Library.Authorized() {
		return toolcall.Failure("Photo library access denied")
	}

	assets, err := photos.Search(ctx, p.Library, query, p.Now())
	if err != nil {
		return toolcall.Failure("Error searching photos: %v", err)
	}

	data := make([]map[string]any, 0, len(assets))
	for _, a := range assets {
		data = append(data, map[string]any{
			"id":           a.ID,
			"creationDate": a.CreatedAt.Unix(),
			"mediaType":    string(a.MediaType),
			"isFavorite":   a.Favorite,
		})
	}
	return toolcall.Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("Found %d photos matching '%s'", len(assets), query),
	}
}
