package entries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflog/models"
)

func TestCreateRequiresTitle(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Create(models.DefaultUserID, map[string]any{"notes": "no title"})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestCreateUpdateDelete(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	entry, err := svc.Create(models.DefaultUserID, map[string]any{
		"title":  "Dune",
		"type":   "Book",
		"year":   "1965",
		"status": "planned",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Dune", entry.Title)
	assert.Equal(t, "Book", entry.Type)

	updated, err := svc.Update(models.DefaultUserID, entry.ID, map[string]any{
		"status":     "finished",
		"userRating": 8.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "finished", updated.Status)
	require.NotNil(t, updated.UserRating)
	assert.Equal(t, 8.5, *updated.UserRating)
	assert.Equal(t, "Dune", updated.Title, "untouched fields survive a patch")

	require.NoError(t, svc.Delete(models.DefaultUserID, entry.ID))

	_, err = svc.Get(models.DefaultUserID, entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestUpdateRejectsEmptyPatch(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	entry, err := svc.Create(models.DefaultUserID, map[string]any{"title": "Dune"})
	require.NoError(t, err)

	_, err = svc.Update(models.DefaultUserID, entry.ID, nil)
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestEntriesPersistAcrossReload(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	require.NoError(t, err)

	created, err := svc.Create("alice", map[string]any{
		"title": "The Matrix",
		"genre": "Action, Sci-Fi",
	})
	require.NoError(t, err)

	reloaded, err := NewService(dir)
	require.NoError(t, err)

	entry, err := reloaded.Get("alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", entry.Title)
	require.NotNil(t, entry.Genre)
	assert.Equal(t, "Action, Sci-Fi", entry.Genre.Text)
}

func TestFindByTitle(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	first, err := svc.Create(models.DefaultUserID, map[string]any{"title": "Amélie"})
	require.NoError(t, err)
	_, err = svc.Create(models.DefaultUserID, map[string]any{"title": "Amelie Revisited"})
	require.NoError(t, err)

	// Accent-folded exact match beats the substring match.
	found, err := svc.FindByTitle(models.DefaultUserID, "amelie")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = svc.FindByTitle(models.DefaultUserID, "unknown title")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestFindByTitleFirstMatchWins(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	first, err := svc.Create(models.DefaultUserID, map[string]any{"title": "Dune Part One"})
	require.NoError(t, err)
	_, err = svc.Create(models.DefaultUserID, map[string]any{"title": "Dune Part Two"})
	require.NoError(t, err)

	found, err := svc.FindByTitle(models.DefaultUserID, "dune")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestUsersAreIsolated(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	entry, err := svc.Create("alice", map[string]any{"title": "Dune"})
	require.NoError(t, err)

	_, err = svc.Get("bob", entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	items, err := svc.List("bob")
	require.NoError(t, err)
	assert.Empty(t, items)
}
