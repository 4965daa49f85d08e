package photos

import (
	"strings"
	"unicode"
)

// SearchComponents is the parsed representation of a free-form photo query.
// Each list preserves vocabulary order; duplicates are fine since consumers
// only check non-emptiness or membership. Discarded after the search.
type SearchComponents struct {
	DateKeywords      []string
	LocationKeywords  []string
	MediaTypeKeywords []string
	EventKeywords     []string
	AlbumKeywords     []string
	PossibleNames     []string
}

var dateVocabulary = []string{
	"today", "yesterday", "tomorrow",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
	"last week", "this week", "next week",
	"last month", "this month", "next month",
	"last year", "this year",
	"morning", "afternoon", "evening", "night",
	"weekend", "weekday",
}

var locationVocabulary = []string{
	"beach", "mountain", "city", "park", "home", "work",
	"restaurant", "airport", "hotel", "museum", "zoo",
	"school", "office", "gym", "mall", "store",
	"lake", "river", "ocean", "forest", "desert",
	"downtown", "uptown", "suburb",
}

var mediaTypeVocabulary = []string{
	"video", "movie", "selfie", "screenshot", "panorama",
	"portrait", "live photo", "burst", "slow motion",
	"time lapse", "hdr", "raw",
}

var eventVocabulary = []string{
	"wedding", "birthday", "party", "graduation", "vacation",
	"holiday", "christmas", "thanksgiving", "easter", "halloween",
	"anniversary", "concert", "festival", "ceremony", "celebration",
	"trip", "tour", "meeting", "conference",
	"favorite", "favorites",
}

// Parse turns a free-form query into its keyword components. Matching is
// whole-query substring containment against each vocabulary, in vocabulary
// order, case-insensitive. Pure; an empty query yields empty components.
func Parse(query string) SearchComponents {
	lowered := strings.ToLower(query)
	tokens := strings.Fields(lowered)

	c := SearchComponents{
		DateKeywords:      matchVocabulary(lowered, dateVocabulary),
		LocationKeywords:  matchVocabulary(lowered, locationVocabulary),
		MediaTypeKeywords: matchVocabulary(lowered, mediaTypeVocabulary),
		EventKeywords:     matchVocabulary(lowered, eventVocabulary),
	}

	// Album names are unconstrained: any token longer than 2 characters.
	for _, tok := range tokens {
		if len(tok) > 2 {
			c.AlbumKeywords = append(c.AlbumKeywords, tok)
		}
	}

	// Capitalized words in the original-cased query are treated as possible
	// place or proper names, a best-effort stand-in for noun tagging.
	for _, word := range strings.Fields(query) {
		runes := []rune(word)
		if len(runes) > 2 && unicode.IsUpper(runes[0]) {
			lower := strings.ToLower(word)
			c.LocationKeywords = append(c.LocationKeywords, lower)
			c.PossibleNames = append(c.PossibleNames, lower)
		}
	}

	return c
}

func matchVocabulary(lowered string, vocab []string) []string {
	var found []string
	for _, kw := range vocab {
		if strings.Contains(lowered, kw) {
			found = append(found, kw)
		}
	}
	return found
}
