package photos

import (
	"reflect"
	"testing"
)

func TestParse_Empty(t *testing.T) {
	c := Parse("")
	if len(c.DateKeywords)+len(c.LocationKeywords)+len(c.MediaTypeKeywords)+
		len(c.EventKeywords)+len(c.AlbumKeywords)+len(c.PossibleNames) != 0 {
		t.Fatalf("empty query must parse to empty components, got %+v", c)
	}
}

func TestParse_DateKeywords(t *testing.T) {
	c := Parse("photos from yesterday and last week")
	want := []string{"yesterday", "last week"}
	if !reflect.DeepEqual(c.DateKeywords, want) {
		t.Errorf("DateKeywords = %v, want %v", c.DateKeywords, want)
	}
}

func TestParse_SubstringContainment(t *testing.T) {
	// Containment is against the whole query, not token-exact: "mayhem"
	// contains the month "may".
	c := Parse("mayhem")
	if !containsString(c.DateKeywords, "may") {
		t.Errorf("DateKeywords = %v, want a 'may' match via substring containment", c.DateKeywords)
	}
}

func TestParse_CapitalizedLocationAugment(t *testing.T) {
	c := Parse("photos from Paris")
	if !containsString(c.LocationKeywords, "paris") {
		t.Errorf("LocationKeywords = %v, want capitalized word 'paris' appended", c.LocationKeywords)
	}
	if !containsString(c.PossibleNames, "paris") {
		t.Errorf("PossibleNames = %v, want 'paris'", c.PossibleNames)
	}
}

func TestParse_VocabularyOrderPreserved(t *testing.T) {
	c := Parse("work beach")
	// "beach" precedes "work" in the location vocabulary.
	want := []string{"beach", "work"}
	if !reflect.DeepEqual(c.LocationKeywords, want) {
		t.Errorf("LocationKeywords = %v, want vocabulary order %v", c.LocationKeywords, want)
	}
}

func TestParse_AlbumKeywordsAreLongTokens(t *testing.T) {
	c := Parse("my trip to NY")
	// Tokens longer than 2 characters only; "my", "to" and "ny" are dropped.
	want := []string{"trip"}
	if !reflect.DeepEqual(c.AlbumKeywords, want) {
		t.Errorf("AlbumKeywords = %v, want %v", c.AlbumKeywords, want)
	}
}

func TestParse_MediaAndEventKeywords(t *testing.T) {
	c := Parse("screenshot from the wedding party")
	if !containsString(c.MediaTypeKeywords, "screenshot") {
		t.Errorf("MediaTypeKeywords = %v", c.MediaTypeKeywords)
	}
	if !containsString(c.EventKeywords, "wedding") || !containsString(c.EventKeywords, "party") {
		t.Errorf("EventKeywords = %v", c.EventKeywords)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
