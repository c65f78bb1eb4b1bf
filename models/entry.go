package models

import (
	"strings"
	"time"
)

// DefaultUserID is used when a request does not identify a user. Single-user
// installs keep the whole collection under this id.
const DefaultUserID = "default"

// Entry is one record in a user's logbook: a movie, show, book, or anything
// else the user tracks. The store owns these; request-scoped objects
// (actions, metadata) never outlive a call.
type Entry struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type,omitempty"` // Movie | TV Show | Book | free text
	PosterURL     string    `json:"posterUrl,omitempty"`
	Genre         *Genre    `json:"genre,omitempty"`
	Language      string    `json:"language,omitempty"`
	AverageRating *float64  `json:"averageRating,omitempty"` // catalog rating, 0-10
	UserRating    *float64  `json:"userRating,omitempty"`    // the user's own rating
	Length        string    `json:"length,omitempty"`
	EpisodeCount  *int      `json:"episodeCount,omitempty"`
	SeasonLabel   string    `json:"seasonLabel,omitempty"`
	Year          string    `json:"year,omitempty"`
	Plot          string    `json:"plot,omitempty"`
	ExternalID    string    `json:"externalId,omitempty"`
	Status        string    `json:"status,omitempty"` // e.g. planned, in-progress, finished
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func trimLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
