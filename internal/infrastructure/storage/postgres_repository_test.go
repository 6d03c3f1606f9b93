package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/lib/pq"

	"OpportunityValidator/internal/domain"
)

func TestUpsertQuery(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	score := domain.OpportunityScore{OpportunityName: "ENM Calendar API", MarketSize: 4, PassionLevel: 9}
	score.CalculateTotals()
	res := domain.ValidationResult{
		Opportunity: domain.Opportunity{Name: "ENM Calendar API"},
		Research:    domain.NewResearchFindings("ENM Calendar API"),
		Score:       score,
		Status:      domain.StatusCompleted,
	}

	query, args, err := repo.upsertQuery("3f1c2d1e-0000-4000-8000-000000000000", res)
	if err != nil {
		t.Fatalf("upsertQuery: %v", err)
	}

	for _, token := range []string{"INSERT INTO validation_results", "$8", "ON CONFLICT (slug) DO UPDATE", "updated_at = NOW()"} {
		if !strings.Contains(query, token) {
			t.Fatalf("query missing %q: %s", token, query)
		}
	}
	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	if args[0] != "ENM_Calendar_API" {
		t.Fatalf("expected slug as first arg, got %v", args[0])
	}
	if args[3] != 13 {
		t.Fatalf("expected total score 13, got %v", args[3])
	}
	if !strings.Contains(args[7].(string), `"status":"completed"`) {
		t.Fatalf("payload missing status: %v", args[7])
	}
}

func TestListQuery(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)

	query, args, err := repo.listQuery(nil)
	if err != nil {
		t.Fatalf("listQuery: %v", err)
	}
	if strings.Contains(query, "WHERE") || len(args) != 0 {
		t.Fatalf("unexpected filter: %s %v", query, args)
	}
	if !strings.Contains(query, "ORDER BY total_score DESC, efficiency_score DESC, opportunity_name ASC") {
		t.Fatalf("unexpected order: %s", query)
	}

	query, args, err = repo.listQuery([]string{"AI Song Generator"})
	if err != nil {
		t.Fatalf("listQuery: %v", err)
	}
	if !strings.Contains(query, "WHERE slug = ANY($1)") {
		t.Fatalf("unexpected filter: %s", query)
	}
	slugs, ok := args[0].(pq.StringArray)
	if !ok || len(slugs) != 1 || slugs[0] != "AI_Song_Generator" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestNilDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := repo.SaveResult(ctx, "run", domain.ValidationResult{}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	results, err := repo.ListResults(ctx, nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("ListResults: %v %v", results, err)
	}
}
