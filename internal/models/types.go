package models

import "fmt"

// MediaType represents the kind of media tracked in the collection
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTVShow MediaType = "tv_show"
	MediaTypeNovel  MediaType = "novel"
	MediaTypeBook   MediaType = "book"
	MediaTypeMusic  MediaType = "music"
)

// MediaTypes lists every supported media type in display order
var MediaTypes = []MediaType{
	MediaTypeMovie,
	MediaTypeTVShow,
	MediaTypeNovel,
	MediaTypeBook,
	MediaTypeMusic,
}

// ParseMediaType converts a raw string into a MediaType.
// "tv" is accepted as an alias for tv_show, which is what TMDB returns.
func ParseMediaType(s string) (MediaType, error) {
	if s == "tv" {
		return MediaTypeTVShow, nil
	}
	for _, t := range MediaTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

const (
	// WatchLaterPenalty is subtracted from PriorityScore when the user defers an item
	WatchLaterPenalty = 10.0

	// SoonWindowDays bounds the coming-soon and ending-soon predicates
	SoonWindowDays = 7

	// MinUserScore and MaxUserScore bound the user rating
	MinUserScore = 0.0
	MaxUserScore = 10.0
)
