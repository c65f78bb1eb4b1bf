package entries

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"

	"shelflog/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrTitleRequired      = errors.New("title is required")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrNoFields           = errors.New("no fields to update")
)

// Service owns the per-user logbook collections, persisted as a single JSON
// file in the storage directory.
type Service struct {
	mu      sync.RWMutex
	path    string
	entries map[string]map[string]models.Entry
}

// NewService creates an entries service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create entries dir: %w", err)
	}

	svc := &Service{
		path:    filepath.Join(storageDir, "entries.json"),
		entries: make(map[string]map[string]models.Entry),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns a user's entries, most recently created first.
func (s *Service) List(userID string) ([]models.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Entry, 0)
	if perUser, ok := s.entries[userID]; ok {
		items = make([]models.Entry, 0, len(perUser))
		for _, entry := range perUser {
			items = append(items, entry)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return items, nil
}

// Get returns a single entry by id.
func (s *Service) Get(userID, id string) (models.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Entry{}, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if perUser, ok := s.entries[userID]; ok {
		if entry, ok := perUser[id]; ok {
			return entry, nil
		}
	}
	return models.Entry{}, ErrEntryNotFound
}

// Create inserts a new entry from a partial field map. A non-empty title is
// the only required field.
func (s *Service) Create(userID string, fields map[string]any) (models.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Entry{}, ErrUserIDRequired
	}

	title, _ := fields["title"].(string)
	if strings.TrimSpace(title) == "" {
		return models.Entry{}, ErrTitleRequired
	}

	now := time.Now().UTC()
	entry := models.Entry{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(&entry, fields)

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)
	perUser[entry.ID] = entry

	if err := s.saveLocked(); err != nil {
		return models.Entry{}, err
	}

	return entry, nil
}

// Update patches an existing entry with the supplied fields.
func (s *Service) Update(userID, id string, fields map[string]any) (models.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Entry{}, ErrUserIDRequired
	}
	if len(fields) == 0 {
		return models.Entry{}, ErrNoFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)
	entry, ok := perUser[id]
	if !ok {
		return models.Entry{}, ErrEntryNotFound
	}

	applyFields(&entry, fields)
	entry.UpdatedAt = time.Now().UTC()
	perUser[id] = entry

	if err := s.saveLocked(); err != nil {
		return models.Entry{}, err
	}

	return entry, nil
}

// Delete removes an entry by id.
func (s *Service) Delete(userID, id string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)
	if _, ok := perUser[id]; !ok {
		return ErrEntryNotFound
	}

	delete(perUser, id)

	return s.saveLocked()
}

// FindByTitle returns the first entry whose title matches, exact matches
// before substring matches, oldest first within each class. Matching is
// case-insensitive and accent-folded.
func (s *Service) FindByTitle(userID, title string) (models.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Entry{}, ErrUserIDRequired
	}

	want := normalizeTitle(title)
	if want == "" {
		return models.Entry{}, ErrEntryNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perUser, ok := s.entries[userID]
	if !ok {
		return models.Entry{}, ErrEntryNotFound
	}

	ordered := make([]models.Entry, 0, len(perUser))
	for _, entry := range perUser {
		ordered = append(ordered, entry)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, entry := range ordered {
		if normalizeTitle(entry.Title) == want {
			return entry, nil
		}
	}
	for _, entry := range ordered {
		if strings.Contains(normalizeTitle(entry.Title), want) {
			return entry, nil
		}
	}

	return models.Entry{}, ErrEntryNotFound
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(title)))
}

// applyFields copies known mutable fields from a JSON-shaped map onto an
// entry. Numbers arrive as float64 from encoding/json.
func applyFields(entry *models.Entry, fields map[string]any) {
	for key, raw := range fields {
		switch key {
		case "title":
			if v, ok := raw.(string); ok && strings.TrimSpace(v) != "" {
				entry.Title = v
			}
		case "type":
			if v, ok := raw.(string); ok {
				entry.Type = v
			}
		case "posterUrl":
			if v, ok := raw.(string); ok {
				entry.PosterURL = v
			}
		case "genre":
			if g := decodeGenre(raw); g != nil {
				entry.Genre = g
			}
		case "language":
			if v, ok := raw.(string); ok {
				entry.Language = v
			}
		case "averageRating":
			if v, ok := raw.(float64); ok {
				entry.AverageRating = &v
			}
		case "userRating":
			if v, ok := raw.(float64); ok {
				entry.UserRating = &v
			}
		case "length":
			if v, ok := raw.(string); ok {
				entry.Length = v
			}
		case "episodeCount":
			if v, ok := raw.(float64); ok {
				count := int(v)
				entry.EpisodeCount = &count
			}
		case "seasonLabel":
			if v, ok := raw.(string); ok {
				entry.SeasonLabel = v
			}
		case "year":
			if v, ok := raw.(string); ok {
				entry.Year = v
			}
		case "plot":
			if v, ok := raw.(string); ok {
				entry.Plot = v
			}
		case "externalId":
			if v, ok := raw.(string); ok {
				entry.ExternalID = v
			}
		case "status":
			if v, ok := raw.(string); ok {
				entry.Status = v
			}
		case "notes":
			if v, ok := raw.(string); ok {
				entry.Notes = v
			}
		}
	}
}

func decodeGenre(raw any) *models.Genre {
	switch v := raw.(type) {
	case string:
		return &models.Genre{Text: v}
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}
		return &models.Genre{List: list}
	case []string:
		return &models.Genre{List: v}
	}
	return nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.entries = make(map[string]map[string]models.Entry)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open entries: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read entries: %w", err)
	}
	if len(data) == 0 {
		s.entries = make(map[string]map[string]models.Entry)
		return nil
	}

	var byUser map[string][]models.Entry
	if err := json.Unmarshal(data, &byUser); err != nil {
		return fmt.Errorf("decode entries: %w", err)
	}

	s.entries = make(map[string]map[string]models.Entry, len(byUser))
	for userID, items := range byUser {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		perUser := make(map[string]models.Entry, len(items))
		for _, entry := range items {
			if entry.ID == "" {
				continue
			}
			perUser[entry.ID] = entry
		}
		s.entries[userID] = perUser
	}

	return nil
}

func (s *Service) saveLocked() error {
	byUser := make(map[string][]models.Entry, len(s.entries))
	for userID, collection := range s.entries {
		items := make([]models.Entry, 0, len(collection))
		for _, entry := range collection {
			items = append(items, entry)
		}

		sort.Slice(items, func(i, j int) bool {
			if items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].ID < items[j].ID
			}
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})

		byUser[userID] = items
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create entries temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(byUser); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode entries: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync entries: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close entries temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace entries file: %w", err)
	}

	return nil
}

func (s *Service) ensureUserLocked(userID string) map[string]models.Entry {
	perUser, ok := s.entries[userID]
	if !ok {
		perUser = make(map[string]models.Entry)
		s.entries[userID] = perUser
	}
	return perUser
}
