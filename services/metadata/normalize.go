package metadata

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"shelflog/models"
)

// omdbNA is OMDB's sentinel for an absent value. It never survives
// normalization.
const omdbNA = "N/A"

var yearRe = regexp.MustCompile(`\d{4}`)

// omdbValue returns a pointer to v, or nil for empty and sentinel values.
func omdbValue(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" || v == omdbNA {
		return nil
	}
	return &v
}

var avTypeLabels = map[string]string{
	"movie":   "Movie",
	"series":  "TV Show",
	"episode": "TV Show",
}

// seasonInfo carries what best-effort season enrichment managed to gather.
type seasonInfo struct {
	number       string
	episodeCount int
	totalMinutes int
}

// normalizeAudiovisual maps an OMDB record onto the uniform metadata shape.
// season is non-nil when the caller asked for a season, whether or not the
// fetch produced data; seasonRequested distinguishes "asked and got nothing"
// from "never asked".
func normalizeAudiovisual(title omdbTitle, season *seasonInfo, seasonRequested bool) models.NormalizedMetadata {
	meta := models.NormalizedMetadata{
		Title:      title.Title,
		PosterURL:  omdbValue(title.Poster),
		Language:   omdbValue(title.Language),
		Year:       omdbValue(title.Year),
		Plot:       omdbValue(title.Plot),
		ExternalID: omdbValue(title.IMDBID),
	}

	if genre := omdbValue(title.Genre); genre != nil {
		meta.Genre = &models.Genre{Text: *genre}
	}

	if rating := omdbValue(title.IMDBRating); rating != nil {
		if parsed, err := strconv.ParseFloat(*rating, 64); err == nil {
			meta.AverageRating = &parsed
		}
	}

	if label, ok := avTypeLabels[strings.ToLower(strings.TrimSpace(title.Type))]; ok {
		meta.Type = &label
	}

	// Season totals beat the single-record runtime when available.
	if season != nil && season.totalMinutes > 0 {
		length := formatRuntime(season.totalMinutes)
		meta.Length = &length
	} else if runtime := omdbValue(title.Runtime); runtime != nil {
		meta.Length = runtime
	}

	totalSeasons := 0
	if raw := omdbValue(title.TotalSeas); raw != nil {
		if parsed, err := strconv.Atoi(*raw); err == nil {
			totalSeasons = parsed
		}
	}

	if season != nil && season.episodeCount > 0 {
		count := season.episodeCount
		meta.EpisodeCount = &count
	} else if !seasonRequested && totalSeasons > 0 {
		// Rough estimate when no particular season was asked for.
		estimate := totalSeasons * 10
		meta.EpisodeCount = &estimate
	}

	if seasonRequested && season != nil {
		label := "Season " + season.number
		meta.SeasonLabel = &label
	} else if totalSeasons > 0 {
		label := fmt.Sprintf("%d seasons", totalSeasons)
		meta.SeasonLabel = &label
	}

	return meta
}

// formatRuntime renders minutes as "Xh Ym", "Xh", or "X min".
func formatRuntime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rem)
}

// normalizeBook maps a Google Books volume onto the uniform metadata shape.
// queryYear backs up the published date when the latter has no 4-digit year.
func normalizeBook(vol bookVolume, queryYear string) models.NormalizedMetadata {
	info := vol.VolumeInfo

	title := info.Title
	if info.Subtitle != "" {
		title += ": " + info.Subtitle
	}

	bookType := "Book"
	meta := models.NormalizedMetadata{
		Title: title,
		Type:  &bookType,
	}

	if cover := bestCoverURL(info.ImageLinks); cover != "" {
		meta.PosterURL = &cover
	}

	if len(info.Categories) > 0 {
		meta.Genre = &models.Genre{List: info.Categories}
	}

	if info.Language != "" {
		lang := info.Language
		meta.Language = &lang
	}

	// Books rate on 0-5; rescale to the shared 0-10 scale.
	if info.AverageRating != nil {
		scaled := math.Round(*info.AverageRating*2*10) / 10
		meta.AverageRating = &scaled
	}

	if info.PageCount > 0 {
		length := fmt.Sprintf("%d pages", info.PageCount)
		meta.Length = &length
	}

	if year := yearRe.FindString(info.PublishedDate); year != "" {
		meta.Year = &year
	} else if queryYear != "" {
		meta.Year = &queryYear
	}

	if info.Description != "" {
		plot := info.Description
		meta.Plot = &plot
	}

	if isbn := preferredISBN(info.IndustryIdentifiers); isbn != "" {
		meta.ExternalID = &isbn
	}

	return meta
}

// bestCoverURL picks the largest cover on offer and cleans it up for serving:
// https scheme, no curl effect, zoom of at least 5.
func bestCoverURL(links *bookImageLinks) string {
	if links == nil {
		return ""
	}

	raw := links.Large
	if raw == "" {
		raw = links.Medium
	}
	if raw == "" {
		raw = links.Thumbnail
	}
	if raw == "" {
		raw = links.SmallThumbnail
	}
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = "https"

	q := u.Query()
	if q.Get("edge") == "curl" {
		q.Del("edge")
	}
	if zoom, err := strconv.Atoi(q.Get("zoom")); err != nil || zoom < 5 {
		q.Set("zoom", "5")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// preferredISBN picks ISBN-13 over ISBN-10 from a volume's identifier list.
func preferredISBN(ids []bookIdentifier) string {
	isbn10 := ""
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}
