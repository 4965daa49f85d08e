package photos

import (
	"context"
	"sort"
	"strings"
	"time"
)

const (
	maxResults         = 100
	recentAlbumLimit   = 30
	visualFallbackSize = 30
	generalFallback    = 20
)

// visualVocabulary gates the larger general fallback: queries naming visual
// content get a bigger slice of recent photos as a stand-in for
// content-based matching.
var visualVocabulary = []string{
	"sunset", "sunrise", "nature", "food", "people", "animal", "car", "building",
}

// Search runs the multi-strategy photo search. The first five strategies
// (date, location, media type, album, smart album) are unioned together;
// the general fallback runs only when all of them produced nothing. Results
// are deduplicated by asset ID, sorted most-recent-first and capped at 100.
// An unauthorized library returns an empty list without running anything.
func Search(ctx context.Context, lib Library, query string, now time.Time) ([]Asset, error) {
	if !lib.Authorized() {
		return nil, nil
	}

	components := Parse(query)
	assets, err := lib.Assets(ctx)
	if err != nil {
		return nil, err
	}

	var all []Asset
	all = append(all, searchByDate(assets, components, now)...)
	all = append(all, searchByLocation(assets, components)...)
	all = append(all, searchByMediaType(assets, components)...)

	albumResults, err := searchByAlbum(ctx, lib, assets, components)
	if err != nil {
		return nil, err
	}
	all = append(all, albumResults...)

	smartResults, err := searchSmartAlbums(ctx, lib, assets, components)
	if err != nil {
		return nil, err
	}
	all = append(all, smartResults...)

	if len(all) == 0 {
		all, err = generalSearch(ctx, lib, strings.ToLower(query))
		if err != nil {
			return nil, err
		}
	}

	return rankAndDeduplicate(all), nil
}

// searchByDate maps each matched date keyword to a concrete time range; the
// first keyword producing any results wins.
func searchByDate(assets []Asset, c SearchComponents, now time.Time) []Asset {
	for _, kw := range c.DateKeywords {
		start, end, ok := dateRange(kw, now)
		if !ok {
			continue
		}
		var matched []Asset
		for _, a := range assets {
			if a.MediaType != MediaImage {
				continue
			}
			if !a.CreatedAt.Before(start) && a.CreatedAt.Before(end) {
				matched = append(matched, a)
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	return nil
}

// dateRange resolves a date keyword to a half-open [start, end) interval.
func dateRange(keyword string, now time.Time) (start, end time.Time, ok bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch keyword {
	case "today":
		return midnight, midnight.AddDate(0, 0, 1), true
	case "yesterday":
		return midnight.AddDate(0, 0, -1), midnight, true
	case "this week", "last week":
		weekStart := startOfWeek(midnight)
		if keyword == "last week" {
			weekStart = weekStart.AddDate(0, 0, -7)
		}
		return weekStart, weekStart.AddDate(0, 0, 7), true
	case "this month", "last month":
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if keyword == "last month" {
			monthStart = monthStart.AddDate(0, -1, 0)
		}
		return monthStart, monthStart.AddDate(0, 1, 0), true
	case "weekend":
		// Most recent Saturday through Monday.
		sat := midnight
		for sat.Weekday() != time.Saturday {
			sat = sat.AddDate(0, 0, -1)
		}
		return sat, sat.AddDate(0, 0, 2), true
	}
	return time.Time{}, time.Time{}, false
}

func startOfWeek(midnight time.Time) time.Time {
	d := midnight
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// searchByLocation returns geotagged images. Matching the named place would
// need reverse geocoding of every asset; "has a location" is the documented
// approximation.
func searchByLocation(assets []Asset, c SearchComponents) []Asset {
	if len(c.LocationKeywords) == 0 {
		return nil
	}
	var matched []Asset
	for _, a := range assets {
		if a.MediaType == MediaImage && a.HasLocation {
			matched = append(matched, a)
		}
	}
	return matched
}

// searchByMediaType unions the subtype filters of every matched media
// keyword. "selfie" approximates to the depth-effect filter since no
// front-camera flag exists.
func searchByMediaType(assets []Asset, c SearchComponents) []Asset {
	var matched []Asset
	for _, kw := range c.MediaTypeKeywords {
		switch kw {
		case "video", "movie":
			for _, a := range assets {
				if a.MediaType == MediaVideo {
					matched = append(matched, a)
				}
			}
		case "selfie", "portrait":
			matched = append(matched, filterSubtype(assets, SubtypeDepthEffect)...)
		case "screenshot":
			matched = append(matched, filterSubtype(assets, SubtypeScreenshot)...)
		case "panorama":
			matched = append(matched, filterSubtype(assets, SubtypePanorama)...)
		case "live photo":
			matched = append(matched, filterSubtype(assets, SubtypeLivePhoto)...)
		case "burst":
			matched = append(matched, filterSubtype(assets, SubtypeBurst)...)
		case "hdr":
			matched = append(matched, filterSubtype(assets, SubtypeHDR)...)
		}
	}
	return matched
}

func filterSubtype(assets []Asset, sub Subtype) []Asset {
	var matched []Asset
	for _, a := range assets {
		if a.MediaType == MediaImage && a.Subtypes&sub != 0 {
			matched = append(matched, a)
		}
	}
	return matched
}

// searchByAlbum unions the members of every album whose title contains any
// album keyword, case-insensitive.
func searchByAlbum(ctx context.Context, lib Library, assets []Asset, c SearchComponents) ([]Asset, error) {
	if len(c.AlbumKeywords) == 0 {
		return nil, nil
	}
	albums, err := lib.Albums(ctx)
	if err != nil {
		return nil, err
	}
	byID := assetIndex(assets)

	var matched []Asset
	for _, kw := range c.AlbumKeywords {
		for _, album := range albums {
			if !strings.Contains(strings.ToLower(album.Title), kw) {
				continue
			}
			for _, id := range album.Assets {
				if a, ok := byID[id]; ok {
					matched = append(matched, a)
				}
			}
		}
	}
	return matched, nil
}

// searchSmartAlbums handles the favorites and recently-added dynamic
// collections.
func searchSmartAlbums(ctx context.Context, lib Library, assets []Asset, c SearchComponents) ([]Asset, error) {
	var matched []Asset

	if contains(c.EventKeywords, "favorite") || contains(c.EventKeywords, "favorites") ||
		contains(c.AlbumKeywords, "favorites") || contains(c.AlbumKeywords, "favorite") {
		for _, a := range assets {
			if a.Favorite {
				matched = append(matched, a)
			}
		}
	}

	if contains(c.DateKeywords, "recent") || contains(c.AlbumKeywords, "recent") {
		recent, err := lib.RecentlyAdded(ctx, recentAlbumLimit)
		if err != nil {
			return nil, err
		}
		matched = append(matched, recent...)
	}

	return matched, nil
}

// generalSearch is the last-resort strategy: recent photos, with a larger
// slice when the query names visual content.
func generalSearch(ctx context.Context, lib Library, lowered string) ([]Asset, error) {
	limit := generalFallback
	for _, kw := range visualVocabulary {
		if strings.Contains(lowered, kw) {
			limit = visualFallbackSize
			break
		}
	}
	return lib.RecentlyAdded(ctx, limit)
}

func rankAndDeduplicate(assets []Asset) []Asset {
	seen := make(map[string]bool, len(assets))
	unique := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		unique = append(unique, a)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].CreatedAt.After(unique[j].CreatedAt)
	})
	if len(unique) > maxResults {
		unique = unique[:maxResults]
	}
	return unique
}

func assetIndex(assets []Asset) map[string]Asset {
	byID := make(map[string]Asset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}
	return byID
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
