package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelflog/handlers"
	"shelflog/models"
	"shelflog/services/metadata"
)

type stubResolver struct {
	meta  models.NormalizedMetadata
	err   error
	query models.MetadataQuery
}

func (s *stubResolver) Resolve(ctx context.Context, query models.MetadataQuery) (models.NormalizedMetadata, error) {
	s.query = query
	return s.meta, s.err
}

func TestMetadataResolveSuccess(t *testing.T) {
	avType := "Movie"
	stub := &stubResolver{meta: models.NormalizedMetadata{Title: "The Matrix", Type: &avType}}
	h := handlers.NewMetadataHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=The+Matrix&type=Movie&year=1999", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if stub.query.Title != "The Matrix" {
		t.Fatalf("expected title to pass through, got %q", stub.query.Title)
	}
	if stub.query.Kind != "movie" {
		t.Fatalf("expected lowercased kind, got %q", stub.query.Kind)
	}

	var meta models.NormalizedMetadata
	if err := json.NewDecoder(rec.Body).Decode(&meta); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if meta.Title != "The Matrix" {
		t.Fatalf("expected title in response, got %q", meta.Title)
	}
	if meta.PosterURL != nil {
		t.Fatalf("expected null posterUrl, got %v", *meta.PosterURL)
	}
}

func TestMetadataResolveStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{metadata.ErrMissingInput, http.StatusBadRequest},
		{metadata.ErrNotFound, http.StatusNotFound},
		{metadata.ErrOMDBKeyMissing, http.StatusInternalServerError},
		{metadata.ErrBooksKeyMissing, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		h := handlers.NewMetadataHandler(&stubResolver{err: tc.err})

		req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=x", nil)
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("error %v: expected status %d, got %d", tc.err, tc.want, rec.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode error body: %v", err)
		}
		if body["error"] == "" {
			t.Fatalf("expected error message in body")
		}
	}
}

func TestMetadataResolveMediumParsing(t *testing.T) {
	stub := &stubResolver{}
	h := handlers.NewMetadataHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=Dune&medium=book", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if stub.query.Medium != models.MediumBook {
		t.Fatalf("expected book medium, got %q", stub.query.Medium)
	}
}
