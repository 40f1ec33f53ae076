package tmdb

import (
	"strings"
	"time"
)

// Media types as reported by /search/multi
const (
	MediaTypeMovie  = "movie"
	MediaTypeTV     = "tv"
	MediaTypePerson = "person"
)

// SearchResponse is the paginated envelope returned by every /search endpoint
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// SearchResult is a single movie, show or person hit
type SearchResult struct {
	ID               int     `json:"id"`
	MediaType        string  `json:"media_type,omitempty"` // only set by /search/multi
	Title            string  `json:"title,omitempty"`      // movies
	Name             string  `json:"name,omitempty"`       // tv and people
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`   // movies, YYYY-MM-DD
	FirstAirDate     string  `json:"first_air_date,omitempty"` // tv, YYYY-MM-DD
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language,omitempty"`
}

// DisplayTitle returns the localized title for movies and the name for shows
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Date returns the release date for movies and the first air date for shows
func (r SearchResult) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// IsTitle reports whether the hit is a movie or a show rather than a person
func (r SearchResult) IsTitle() bool {
	return r.MediaType == MediaTypeMovie || r.MediaType == MediaTypeTV
}

// MovieDetails is the subset of /movie/{id} the collection uses
type MovieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	Status      string  `json:"status"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []Genre `json:"genres"`
}

// TVDetails is the subset of /tv/{id} the collection uses
type TVDetails struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	FirstAirDate     string  `json:"first_air_date"`
	LastAirDate      string  `json:"last_air_date"`
	Status           string  `json:"status"`
	InProduction     bool    `json:"in_production"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	VoteAverage      float64 `json:"vote_average"`
	Genres           []Genre `json:"genres"`
}

// Ended reports whether the show has finished airing
func (d TVDetails) Ended() bool {
	return !d.InProduction && (d.Status == "Ended" || d.Status == "Canceled")
}

// Genre is a TMDB genre tag
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ParseDate parses TMDB's YYYY-MM-DD dates. Empty or malformed dates yield nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
