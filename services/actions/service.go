package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"shelflog/models"
)

// ErrNoActions rejects a batch before any per-action processing starts.
var ErrNoActions = errors.New("actions list is required")

// Store is the persistence collaborator the executor mutates.
type Store interface {
	Create(userID string, fields map[string]any) (models.Entry, error)
	Update(userID, id string, fields map[string]any) (models.Entry, error)
	Delete(userID, id string) error
	FindByTitle(userID, title string) (models.Entry, error)
}

// Resolver enriches create actions with catalog metadata.
type Resolver interface {
	Resolve(ctx context.Context, query models.MetadataQuery) (models.NormalizedMetadata, error)
}

// Service applies ordered batches of create/update/delete actions. Each
// action fails on its own; one bad action never aborts its siblings.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Execute processes the batch sequentially and returns one result per action,
// in input order.
func (s *Service) Execute(userID string, batch []models.MediaAction) (models.ExecuteActionsResponse, error) {
	if len(batch) == 0 {
		return models.ExecuteActionsResponse{}, ErrNoActions
	}

	results := make([]models.ActionResult, 0, len(batch))
	for _, action := range batch {
		results = append(results, s.processAction(userID, action))
	}

	summary := models.ActionSummary{Total: len(results)}
	for _, result := range results {
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	return models.ExecuteActionsResponse{
		Success: summary.Failed == 0,
		Results: results,
		Summary: summary,
	}, nil
}

// processAction handles one action and never lets a failure escape: panics
// are converted into a per-action error result.
func (s *Service) processAction(userID string, action models.MediaAction) (result models.ActionResult) {
	result = models.ActionResult{Action: action}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[actions] recovered processing %s action: %v", action.Type, r)
			result.Success = false
			result.EntryID = ""
			result.Error = panicMessage(r)
		}
	}()

	switch action.Type {
	case "create":
		title, _ := action.Data["title"].(string)
		if strings.TrimSpace(title) == "" {
			result.Error = "Title is required for create action"
			return result
		}
		entry, err := s.store.Create(userID, action.Data)
		if err != nil {
			result.Error = errorMessage(err)
			return result
		}
		result.Success = true
		result.EntryID = entry.ID

	case "update":
		id := s.resolveTargetID(userID, action)
		if id == "" {
			result.Error = "Entry ID or title match is required for update action"
			return result
		}
		if len(action.Data) == 0 {
			result.Error = "Update data is required for update action"
			return result
		}
		entry, err := s.store.Update(userID, id, action.Data)
		if err != nil {
			result.Error = errorMessage(err)
			return result
		}
		result.Success = true
		result.EntryID = entry.ID

	case "delete":
		id := s.resolveTargetID(userID, action)
		if id == "" {
			result.Error = "Entry ID or title match is required for delete action"
			return result
		}
		if err := s.store.Delete(userID, id); err != nil {
			result.Error = errorMessage(err)
			return result
		}
		result.Success = true
		result.EntryID = id

	default:
		result.Error = fmt.Sprintf("Unknown action type: %s", action.Type)
	}

	return result
}

// resolveTargetID prefers the action's explicit id, then falls back to a
// title lookup. The first title match wins.
func (s *Service) resolveTargetID(userID string, action models.MediaAction) string {
	if action.ID != "" {
		return action.ID
	}
	title, _ := action.Data["title"].(string)
	if strings.TrimSpace(title) == "" {
		return ""
	}
	entry, err := s.store.FindByTitle(userID, title)
	if err != nil {
		return ""
	}
	return entry.ID
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error occurred"
	}
	return err.Error()
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		return errorMessage(v)
	case string:
		if v != "" {
			return v
		}
	}
	return "Unknown error occurred"
}

// EnrichCreateActions resolves catalog metadata for each create action and
// merges it beneath the explicitly supplied fields. Resolved values only fill
// gaps, so re-running the merge changes nothing.
func EnrichCreateActions(ctx context.Context, resolver Resolver, batch []models.MediaAction) []models.MediaAction {
	if resolver == nil {
		return batch
	}

	enriched := make([]models.MediaAction, len(batch))
	for i, action := range batch {
		enriched[i] = action
		if action.Type != "create" {
			continue
		}
		title, _ := action.Data["title"].(string)
		if strings.TrimSpace(title) == "" {
			continue
		}

		query := models.MetadataQuery{
			Title:  title,
			Medium: mediumFromData(action.Data),
		}
		if year, ok := action.Data["year"].(string); ok {
			query.Year = year
		}

		meta, err := resolver.Resolve(ctx, query)
		if err != nil {
			log.Printf("[actions] enrichment skipped for %q: %v", title, err)
			continue
		}

		data := make(map[string]any, len(action.Data))
		for k, v := range action.Data {
			data[k] = v
		}
		mergeDefaults(data, metadataDefaults(meta))
		enriched[i].Data = data
	}

	return enriched
}

// metadataDefaults flattens resolved metadata into entry field defaults.
func metadataDefaults(meta models.NormalizedMetadata) map[string]any {
	defaults := make(map[string]any)
	if meta.PosterURL != nil {
		defaults["posterUrl"] = *meta.PosterURL
	}
	if meta.Genre != nil {
		if meta.Genre.List != nil {
			defaults["genre"] = meta.Genre.List
		} else {
			defaults["genre"] = meta.Genre.Text
		}
	}
	if meta.Language != nil {
		defaults["language"] = *meta.Language
	}
	if meta.AverageRating != nil {
		defaults["averageRating"] = *meta.AverageRating
	}
	if meta.Length != nil {
		defaults["length"] = *meta.Length
	}
	if meta.Type != nil {
		defaults["type"] = *meta.Type
	}
	if meta.EpisodeCount != nil {
		defaults["episodeCount"] = float64(*meta.EpisodeCount)
	}
	if meta.SeasonLabel != nil {
		defaults["seasonLabel"] = *meta.SeasonLabel
	}
	if meta.Year != nil {
		defaults["year"] = *meta.Year
	}
	if meta.Plot != nil {
		defaults["plot"] = *meta.Plot
	}
	if meta.ExternalID != nil {
		defaults["externalId"] = *meta.ExternalID
	}
	return defaults
}

// mergeDefaults fills only the keys data does not already carry.
func mergeDefaults(data, defaults map[string]any) {
	for key, value := range defaults {
		if _, present := data[key]; !present {
			data[key] = value
		}
	}
}

func mediumFromData(data map[string]any) models.Medium {
	if raw, ok := data["type"].(string); ok {
		return models.ParseMedium(raw)
	}
	return ""
}
