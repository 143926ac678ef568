package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/duskhollow/vmapkit/pkg/vmap"
)

var errBadTileName = errors.New("file name does not match {mapId}_{x}_{y}.vmtile")

// FileIssue records one file that failed validation.
type FileIssue struct {
	Name string
	Err  error
}

// ValidationReport summarizes a directory validation pass.
type ValidationReport struct {
	Checked int
	Issues  []FileIssue
}

// OK reports whether every checked file decoded cleanly.
func (r *ValidationReport) OK() bool {
	return len(r.Issues) == 0
}

// Validate decodes every vmap file in the directory, collecting per-file
// failures instead of aborting on the first one. Decoded tiles are not
// cached; validation is a read-only sweep.
func (s *Store) Validate() (*ValidationReport, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(s.dir, name)

		switch {
		case strings.HasSuffix(name, ".vmtile"):
			report.Checked++
			key, ok := ParseTileName(name)
			if !ok {
				report.Issues = append(report.Issues, FileIssue{Name: name,
					Err: errBadTileName})
				continue
			}
			if _, err := vmap.DecodeTileFile(path, key.X, key.Y); err != nil {
				report.Issues = append(report.Issues, FileIssue{Name: name, Err: err})
				s.log.Warn("tile failed validation", zap.String("file", name), zap.Error(err))
			}

		case strings.HasSuffix(name, ".vmtree"):
			report.Checked++
			if _, err := vmap.DecodeTreeBoundsFile(path); err != nil {
				report.Issues = append(report.Issues, FileIssue{Name: name, Err: err})
				s.log.Warn("tree failed validation", zap.String("file", name), zap.Error(err))
			}
		}
	}

	return report, nil
}

// MapStats aggregates spawn counts for one map.
type MapStats struct {
	Tiles            int
	Spawns           int
	SpawnsWithBounds int
}

// Stats aggregates spawn counts across the whole directory.
type Stats struct {
	Tiles            int
	Spawns           int
	SpawnsWithBounds int
	Maps             map[int]MapStats
}

// Stats decodes every readable tile and aggregates spawn statistics.
// Corrupt tiles are skipped and logged, matching the validation policy.
func (s *Store) Stats() (*Stats, error) {
	keys, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Maps: make(map[int]MapStats)}
	for _, key := range keys {
		tile, err := vmap.DecodeTileFile(filepath.Join(s.dir, TileName(key)), key.X, key.Y)
		if err != nil {
			s.log.Warn("skipping corrupt tile", zap.Stringer("tile", key), zap.Error(err))
			continue
		}

		withBounds := 0
		for i := range tile.Spawns {
			if tile.Spawns[i].HasBounds() {
				withBounds++
			}
		}

		ms := stats.Maps[key.MapID]
		ms.Tiles++
		ms.Spawns += len(tile.Spawns)
		ms.SpawnsWithBounds += withBounds
		stats.Maps[key.MapID] = ms

		stats.Tiles++
		stats.Spawns += len(tile.Spawns)
		stats.SpawnsWithBounds += withBounds
	}

	return stats, nil
}
