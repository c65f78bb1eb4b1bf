package models

import "encoding/json"

// Medium identifies which catalog a metadata query targets.
type Medium string

const (
	MediumMovie  Medium = "Movie"
	MediumTVShow Medium = "TV Show"
	MediumBook   Medium = "Book"
)

// ParseMedium maps loose client input onto a Medium. Unknown values map to
// the empty Medium, which leaves routing to the resolver's own heuristics.
func ParseMedium(s string) Medium {
	switch trimLower(s) {
	case "book", "books":
		return MediumBook
	case "movie", "movies", "film", "films":
		return MediumMovie
	case "tv", "tv show", "tvshow", "series", "show", "shows":
		return MediumTVShow
	}
	return ""
}

// MetadataQuery is the input to the metadata resolver. At least one of Title
// or Identifier must be set.
type MetadataQuery struct {
	Title      string `json:"title,omitempty"`
	Identifier string `json:"identifier,omitempty"` // IMDb id or ISBN
	Medium     Medium `json:"medium,omitempty"`
	Kind       string `json:"kind,omitempty"`   // movie | series
	Year       string `json:"year,omitempty"`   // 4-digit
	Season     string `json:"season,omitempty"` // e.g. "2" or "Season 2"
}

// NormalizedMetadata is the resolver's medium-agnostic output. Fields absent
// or sentinel ("N/A") in the source are nil, never the sentinel itself.
type NormalizedMetadata struct {
	Title         string   `json:"title"`
	PosterURL     *string  `json:"posterUrl"`
	Genre         *Genre   `json:"genre"`
	Language      *string  `json:"language"`
	AverageRating *float64 `json:"averageRating"` // 0-10 scale
	Length        *string  `json:"length"`        // free text, e.g. "120 min", "3h 5m", "312 pages"
	Type          *string  `json:"type"`          // Movie | TV Show | Book
	EpisodeCount  *int     `json:"episodeCount"`
	SeasonLabel   *string  `json:"seasonLabel"`
	Year          *string  `json:"year"`
	Plot          *string  `json:"plot"`
	ExternalID    *string  `json:"externalId"` // IMDb id or ISBN
}

// SearchCandidate is one item from a fuzzy catalog search, used only while
// scoring; it is never persisted.
type SearchCandidate struct {
	Title      string
	Year       string
	ExternalID string
	Kind       string // movie | series | other
	HasImage   bool
}

// Genre preserves the shape the source catalog used: a delimited string for
// movies and shows, a list for books.
type Genre struct {
	Text string
	List []string
}

func (g Genre) MarshalJSON() ([]byte, error) {
	if g.List != nil {
		return json.Marshal(g.List)
	}
	return json.Marshal(g.Text)
}

func (g *Genre) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		g.List = list
		g.Text = ""
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	g.Text = text
	g.List = nil
	return nil
}
