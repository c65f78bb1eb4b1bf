package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const omdbBaseURL = "https://www.omdbapi.com/"

// errOMDBNoMatch is returned when OMDB answers Response="False". It is a
// normal miss, not a transport failure.
var errOMDBNoMatch = errors.New("omdb: no match")

type omdbClient struct {
	apiKey string
	httpc  *http.Client
}

func newOMDBClient(apiKey string, httpc *http.Client) *omdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &omdbClient{apiKey: strings.TrimSpace(apiKey), httpc: httpc}
}

func (c *omdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// omdbTitle is the full-record shape OMDB returns for lookups by id or title.
// Every field is a string; absent values carry the literal "N/A".
type omdbTitle struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Language   string `json:"Language"`
	IMDBRating string `json:"imdbRating"`
	IMDBID     string `json:"imdbID"`
	Type       string `json:"Type"`
	TotalSeas  string `json:"totalSeasons"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

type omdbSearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type omdbSearchResponse struct {
	Search   []omdbSearchItem `json:"Search"`
	Response string           `json:"Response"`
	Error    string           `json:"Error"`
}

type omdbSeason struct {
	Season   string `json:"Season"`
	Episodes []struct {
		Title    string `json:"Title"`
		Episode  string `json:"Episode"`
		IMDBID   string `json:"imdbID"`
		Released string `json:"Released"`
	} `json:"Episodes"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type omdbEpisode struct {
	Runtime  string `json:"Runtime"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// doGET issues a GET against OMDB with bounded retries. Client errors are
// terminal; 429 and 5xx are retried with backoff.
func (c *omdbClient) doGET(ctx context.Context, params url.Values, v any) error {
	params.Set("apikey", c.apiKey)
	endpoint := omdbBaseURL + "?" + params.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("omdb request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("omdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode omdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// lookup fetches a full record by IMDb id or exact title. Exactly one of
// imdbID/title should be set.
func (c *omdbClient) lookup(ctx context.Context, imdbID, title, kind, year string) (omdbTitle, error) {
	params := url.Values{}
	if imdbID != "" {
		params.Set("i", imdbID)
	} else {
		params.Set("t", title)
	}
	if kind != "" {
		params.Set("type", kind)
	}
	if year != "" {
		params.Set("y", year)
	}

	var out omdbTitle
	if err := c.doGET(ctx, params, &out); err != nil {
		return omdbTitle{}, err
	}
	if !strings.EqualFold(out.Response, "True") {
		return omdbTitle{}, errOMDBNoMatch
	}
	return out, nil
}

func (c *omdbClient) search(ctx context.Context, title, kind string) ([]omdbSearchItem, error) {
	params := url.Values{}
	params.Set("s", title)
	if kind != "" {
		params.Set("type", kind)
	}

	var out omdbSearchResponse
	if err := c.doGET(ctx, params, &out); err != nil {
		return nil, err
	}
	if !strings.EqualFold(out.Response, "True") {
		return nil, errOMDBNoMatch
	}
	return out.Search, nil
}

func (c *omdbClient) season(ctx context.Context, imdbID string, season int) (omdbSeason, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("Season", strconv.Itoa(season))

	var out omdbSeason
	if err := c.doGET(ctx, params, &out); err != nil {
		return omdbSeason{}, err
	}
	if !strings.EqualFold(out.Response, "True") {
		return omdbSeason{}, errOMDBNoMatch
	}
	return out, nil
}

// episodeRuntimeMinutes fetches a single episode record and parses its
// "NN min" runtime. A missing or unparsable runtime is a zero, not an error.
func (c *omdbClient) episodeRuntimeMinutes(ctx context.Context, episodeID string) (int, error) {
	params := url.Values{}
	params.Set("i", episodeID)

	var out omdbEpisode
	if err := c.doGET(ctx, params, &out); err != nil {
		return 0, err
	}
	if !strings.EqualFold(out.Response, "True") {
		return 0, errOMDBNoMatch
	}

	raw := strings.TrimSuffix(strings.TrimSpace(out.Runtime), " min")
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}
	return minutes, nil
}
