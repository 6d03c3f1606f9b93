package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

const (
	// RootDir is the fixed namespace under the storage root.
	RootDir = "opportunities"
	// ResultFile is the artifact name inside each opportunity directory.
	ResultFile = "validation_result.json"
)

// Store writes one JSON artifact per opportunity under
// <root>/opportunities/<slug>/validation_result.json. Writes replace the
// previous artifact for the same name.
type Store struct {
	root   string
	logger *slog.Logger
}

var (
	_ ports.ResultStore  = (*Store)(nil)
	_ ports.ResultReader = (*Store)(nil)
)

// NewStore binds the store to a root directory.
func NewStore(root string, logger *slog.Logger) *Store {
	if root == "" {
		root = "."
	}
	return &Store{root: root, logger: logger}
}

// Path returns the artifact path for an opportunity name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, RootDir, domain.Slugify(name), ResultFile)
}

// Save serializes the result and replaces the artifact atomically.
func (s *Store) Save(ctx context.Context, result domain.ValidationResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(result.Opportunity.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ResultFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace result: %w", err)
	}

	s.debug("saved result", "opportunity", result.Opportunity.Name, "path", path)
	return nil
}

// Load reads the artifact for name. The stored opportunity must be the one
// asked for: either the same name or a request by its directory slug.
func (s *Store) Load(ctx context.Context, name string) (domain.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ValidationResult{}, err
	}
	path := s.Path(name)
	res, err := readResult(path)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	stored := res.Opportunity.Name
	if stored != name && name != res.Opportunity.Slug() {
		return domain.ValidationResult{}, fmt.Errorf("%w: %s holds %q, not %q", domain.ErrNotFound, path, stored, name)
	}
	return res, nil
}

// List reads every artifact under the root, sorted by opportunity name.
func (s *Store) List(ctx context.Context) ([]domain.ValidationResult, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, RootDir))
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.ValidationResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	results := make([]domain.ValidationResult, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		res, err := readResult(filepath.Join(s.root, RootDir, entry.Name(), ResultFile))
		if errors.Is(err, domain.ErrNotFound) {
			s.debug("skip directory without result", "dir", entry.Name())
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Opportunity.Name < results[j].Opportunity.Name
	})
	return results, nil
}

func readResult(path string) (domain.ValidationResult, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ValidationResult{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("read result: %w", err)
	}

	var res domain.ValidationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("decode %s: %w", path, err)
	}
	res.Research.Normalize()
	return res, nil
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
