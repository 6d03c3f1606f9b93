package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpportunityValidator/internal/domain"
)

func result(name string, market int) domain.ValidationResult {
	score := domain.OpportunityScore{OpportunityName: name, MarketSize: market, PassionLevel: 9}
	score.CalculateTotals()
	return domain.ValidationResult{
		Opportunity: domain.Opportunity{Name: name, Description: "d", ICP: "i", Problem: "p"},
		Research:    domain.NewResearchFindings(name),
		Score:       score,
		Status:      domain.StatusCompleted,
	}
}

func TestSaveWritesSanitizedPath(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, nil)

	require.NoError(t, store.Save(context.Background(), result("ENM Calendar API", 3)))

	path := filepath.Join(root, "opportunities", "ENM_Calendar_API", "validation_result.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "completed", doc["status"])
	assert.Equal(t, path, store.Path("ENM Calendar API"))
}

func TestSaveOverwritesAndLoads(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, result("Song Tool", 1)))
	second := result("Song Tool", 4)
	second.Status = domain.StatusFailed
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, "Song Tool")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, loaded.Status)
	assert.Equal(t, 4, loaded.Score.MarketSize)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(store.Path("Song Tool")), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadRejectsOtherOpportunity(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, result("A B", 5)))

	_, err := store.Load(ctx, "A?B")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bySlug, err := store.Load(ctx, "A_B")
	require.NoError(t, err)
	assert.Equal(t, "A B", bySlug.Opportunity.Name)

	byName, err := store.Load(ctx, "A B")
	require.NoError(t, err)
	assert.Equal(t, 5, byName.Score.MarketSize)
}

func TestSaveKeepsNonASCIINamesApart(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, result("Кофе", 3)))
	require.NoError(t, store.Save(ctx, result("Чайн", 8)))

	coffee, err := store.Load(ctx, "Кофе")
	require.NoError(t, err)
	assert.Equal(t, 3, coffee.Score.MarketSize)

	tea, err := store.Load(ctx, "Чайн")
	require.NoError(t, err)
	assert.Equal(t, 8, tea.Score.MarketSize)
}

func TestList(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, nil)
	ctx := context.Background()

	empty, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Save(ctx, result("beta", 2)))
	require.NoError(t, store.Save(ctx, result("alpha", 2)))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "opportunities", "stray"), 0o755))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Opportunity.Name)
	assert.Equal(t, "beta", all[1].Opportunity.Name)
}
