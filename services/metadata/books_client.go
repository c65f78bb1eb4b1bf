package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const booksBaseURL = "https://www.googleapis.com/books/v1/volumes"

type booksClient struct {
	apiKey string
	httpc  *http.Client
}

func newBooksClient(apiKey string, httpc *http.Client) *booksClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &booksClient{apiKey: strings.TrimSpace(apiKey), httpc: httpc}
}

func (c *booksClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

type bookImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
}

type bookIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type bookVolumeInfo struct {
	Title               string           `json:"title"`
	Subtitle            string           `json:"subtitle"`
	Authors             []string         `json:"authors"`
	PublishedDate       string           `json:"publishedDate"`
	Description         string           `json:"description"`
	PageCount           int              `json:"pageCount"`
	Categories          []string         `json:"categories"`
	AverageRating       *float64         `json:"averageRating"`
	Language            string           `json:"language"`
	ImageLinks          *bookImageLinks  `json:"imageLinks"`
	IndustryIdentifiers []bookIdentifier `json:"industryIdentifiers"`
}

type bookVolume struct {
	ID         string         `json:"id"`
	VolumeInfo bookVolumeInfo `json:"volumeInfo"`
}

type bookVolumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []bookVolume `json:"items"`
}

func (c *booksClient) doGET(ctx context.Context, params url.Values, v any) error {
	params.Set("key", c.apiKey)
	endpoint := booksBaseURL + "?" + params.Encode()

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
				return fmt.Errorf("books request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("books request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode books response: %w", err))
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

// byISBN queries the volumes endpoint with an isbn: filter. The first item is
// treated as authoritative by the caller.
func (c *booksClient) byISBN(ctx context.Context, isbn string) ([]bookVolume, error) {
	params := url.Values{}
	params.Set("q", "isbn:"+isbn)

	var out bookVolumesResponse
	if err := c.doGET(ctx, params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// byTitle runs an intitle: search capped at a handful of candidates for the
// scorer to rank.
func (c *booksClient) byTitle(ctx context.Context, title string, maxResults int) ([]bookVolume, error) {
	params := url.Values{}
	params.Set("q", "intitle:"+title)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var out bookVolumesResponse
	if err := c.doGET(ctx, params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
