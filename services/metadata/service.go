package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"shelflog/models"
)

var (
	ErrMissingInput    = errors.New("title or identifier is required")
	ErrNotFound        = errors.New("no metadata match found")
	ErrOMDBKeyMissing  = errors.New("omdb api key not configured")
	ErrBooksKeyMissing = errors.New("google books api key not configured")
)

var (
	isbn13Re = regexp.MustCompile(`^(978|979)\d{10}$`)
	isbn10Re = regexp.MustCompile(`^\d{9}[\dX]$`)
	nonAlnum = regexp.MustCompile(`[^0-9A-Za-z]`)
)

// episodeFetchStagger spaces episode runtime requests so a long season does
// not trip OMDB's rate limit.
const episodeFetchStagger = 100 * time.Millisecond

// Service resolves titles and identifiers against OMDB and Google Books and
// normalizes the results into a single metadata shape.
type Service struct {
	omdb  *omdbClient
	books *booksClient
}

// NewService builds a resolver with the given catalog credentials. Either key
// may be empty; the corresponding path then fails with its config error.
func NewService(omdbKey, booksKey string, httpc *http.Client) *Service {
	return &Service{
		omdb:  newOMDBClient(omdbKey, httpc),
		books: newBooksClient(booksKey, httpc),
	}
}

// detectISBN strips non-alphanumeric characters and reports the cleaned
// string when it is a valid ISBN-10 or ISBN-13 shape, else "".
func detectISBN(s string) string {
	cleaned := strings.ToUpper(nonAlnum.ReplaceAllString(s, ""))
	if isbn13Re.MatchString(cleaned) || isbn10Re.MatchString(cleaned) {
		return cleaned
	}
	return ""
}

// Resolve routes the query to the book or movie/TV path and returns
// normalized metadata.
func (s *Service) Resolve(ctx context.Context, query models.MetadataQuery) (models.NormalizedMetadata, error) {
	title := strings.TrimSpace(query.Title)
	identifier := strings.TrimSpace(query.Identifier)

	if title == "" && identifier == "" {
		return models.NormalizedMetadata{}, ErrMissingInput
	}

	isbn := detectISBN(identifier)
	if isbn == "" {
		isbn = detectISBN(title)
	}

	if isbn != "" || query.Medium == models.MediumBook {
		return s.resolveBook(ctx, query, isbn)
	}

	imdbID := ""
	if strings.HasPrefix(identifier, "tt") {
		imdbID = identifier
	}
	if imdbID == "" && title == "" {
		return models.NormalizedMetadata{}, ErrMissingInput
	}

	return s.resolveAudiovisual(ctx, query, imdbID)
}

func (s *Service) resolveBook(ctx context.Context, query models.MetadataQuery, isbn string) (models.NormalizedMetadata, error) {
	if !s.books.isConfigured() {
		return models.NormalizedMetadata{}, ErrBooksKeyMissing
	}

	// ISBN lookups are authoritative: first item wins, no scoring.
	if isbn != "" {
		volumes, err := s.books.byISBN(ctx, isbn)
		if err != nil {
			log.Printf("[metadata] books isbn lookup failed: %v", err)
			return models.NormalizedMetadata{}, ErrNotFound
		}
		if len(volumes) == 0 {
			return models.NormalizedMetadata{}, ErrNotFound
		}
		return normalizeBook(volumes[0], query.Year), nil
	}

	search := query.Title
	if query.Year != "" {
		search += " " + query.Year
	}

	volumes, err := s.books.byTitle(ctx, search, 5)
	if err != nil {
		log.Printf("[metadata] books title search failed: %v", err)
		return models.NormalizedMetadata{}, ErrNotFound
	}

	best := bestBookMatch(query.Title, query.Year, volumes)
	if best < 0 {
		return models.NormalizedMetadata{}, ErrNotFound
	}

	return normalizeBook(volumes[best], query.Year), nil
}

func (s *Service) resolveAudiovisual(ctx context.Context, query models.MetadataQuery, imdbID string) (models.NormalizedMetadata, error) {
	if !s.omdb.isConfigured() {
		return models.NormalizedMetadata{}, ErrOMDBKeyMissing
	}

	title, err := s.omdb.lookup(ctx, imdbID, query.Title, query.Kind, query.Year)
	if errors.Is(err, errOMDBNoMatch) && imdbID == "" {
		// Direct lookup missed on a title query: fall back to fuzzy search
		// and retry with the winner's exact title.
		title, err = s.lookupViaSearch(ctx, query)
	}
	if err != nil {
		if !errors.Is(err, errOMDBNoMatch) {
			log.Printf("[metadata] omdb lookup failed: %v", err)
		}
		return models.NormalizedMetadata{}, ErrNotFound
	}

	seasonRequested := strings.TrimSpace(query.Season) != ""
	var season *seasonInfo
	if seasonRequested && strings.EqualFold(title.Type, "series") {
		season = s.enrichSeason(ctx, title.IMDBID, query.Season)
	} else if seasonRequested {
		season = &seasonInfo{number: seasonNumber(query.Season)}
	}

	return normalizeAudiovisual(title, season, seasonRequested), nil
}

func (s *Service) lookupViaSearch(ctx context.Context, query models.MetadataQuery) (omdbTitle, error) {
	items, err := s.omdb.search(ctx, query.Title, query.Kind)
	if err != nil {
		return omdbTitle{}, err
	}

	candidates := make([]models.SearchCandidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, models.SearchCandidate{
			Title:      item.Title,
			Year:       item.Year,
			ExternalID: item.IMDBID,
			Kind:       strings.ToLower(item.Type),
			HasImage:   item.Poster != "" && item.Poster != omdbNA,
		})
	}

	winner := bestAVMatch(query.Title, query.Kind, candidates)
	if winner == nil {
		return omdbTitle{}, errOMDBNoMatch
	}

	return s.omdb.lookup(ctx, "", winner.Title, query.Kind, query.Year)
}

// seasonNumber extracts the first integer run from a season string, falling
// back to the raw string when none is found.
func seasonNumber(season string) string {
	if n := firstNumberRe.FindString(season); n != "" {
		return n
	}
	return strings.TrimSpace(season)
}

// enrichSeason fetches season data and sums per-episode runtimes. Every fetch
// error is swallowed where it happens; whatever was gathered still counts.
func (s *Service) enrichSeason(ctx context.Context, imdbID, seasonParam string) *seasonInfo {
	number := seasonNumber(seasonParam)
	info := &seasonInfo{number: number}

	seasonNum := 0
	if _, err := fmt.Sscanf(number, "%d", &seasonNum); err != nil {
		return info
	}

	season, err := s.omdb.season(ctx, imdbID, seasonNum)
	if err != nil {
		log.Printf("[metadata] season fetch failed for %s season %d: %v", imdbID, seasonNum, err)
		return info
	}

	info.episodeCount = len(season.Episodes)

	var (
		mu    sync.Mutex
		total int
		wg    conc.WaitGroup
	)
	for i, episode := range season.Episodes {
		delay := time.Duration(i) * episodeFetchStagger
		episodeID := episode.IMDBID
		wg.Go(func() {
			time.Sleep(delay)
			minutes, err := s.omdb.episodeRuntimeMinutes(ctx, episodeID)
			if err != nil {
				log.Printf("[metadata] episode runtime fetch failed for %s: %v", episodeID, err)
				return
			}
			mu.Lock()
			total += minutes
			mu.Unlock()
		})
	}
	wg.Wait()

	info.totalMinutes = total
	return info
}
