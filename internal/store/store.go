// Package store loads and caches decoded vmap tiles from a data directory.
// It owns the file-name conventions ({mapId}_{x}_{y}.vmtile, {mapId}.vmtree)
// and the skip-and-report policy for corrupt files; the decoders themselves
// stay pure.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/duskhollow/vmapkit/pkg/math"
	"github.com/duskhollow/vmapkit/pkg/vmap"
)

// TileKey identifies a tile within a map grid.
type TileKey struct {
	MapID int
	X     int
	Y     int
}

// String returns the key as "map:x,y".
func (k TileKey) String() string {
	return fmt.Sprintf("%d:%d,%d", k.MapID, k.X, k.Y)
}

var tileNameRe = regexp.MustCompile(`^(\d+)_(\d+)_(\d+)\.vmtile$`)

// ParseTileName extracts a TileKey from a {mapId}_{x}_{y}.vmtile file name.
func ParseTileName(name string) (TileKey, bool) {
	m := tileNameRe.FindStringSubmatch(name)
	if m == nil {
		return TileKey{}, false
	}
	mapID, _ := strconv.Atoi(m[1])
	x, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	return TileKey{MapID: mapID, X: x, Y: y}, true
}

// TileName returns the file name for a tile key.
func TileName(k TileKey) string {
	return fmt.Sprintf("%d_%d_%d.vmtile", k.MapID, k.X, k.Y)
}

// TreeName returns the file name of a map's spatial-tree file.
func TreeName(mapID int) string {
	return fmt.Sprintf("%d.vmtree", mapID)
}

// Store serves decoded tiles out of a data directory with a bounded
// in-memory cache. Safe for concurrent use.
type Store struct {
	dir      string
	maxTiles int
	log      *zap.Logger

	mu    sync.Mutex
	tiles map[TileKey]*vmap.Tile
	order []TileKey // insertion order, evicted oldest-first
}

// Open opens a vmap data directory. maxTiles bounds the cache; 0 means
// unbounded.
func Open(dir string, maxTiles int, log *zap.Logger) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening vmap directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening vmap directory: %s is not a directory", dir)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		dir:      dir,
		maxTiles: maxTiles,
		log:      log,
		tiles:    make(map[TileKey]*vmap.Tile),
	}, nil
}

// Dir returns the data directory the store was opened on.
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the decoded tile for key, reading and decoding the file on
// a cache miss. A missing file surfaces as an error wrapping fs.ErrNotExist.
func (s *Store) Load(key TileKey) (*vmap.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tile, ok := s.tiles[key]; ok {
		return tile, nil
	}

	path := filepath.Join(s.dir, TileName(key))
	tile, err := vmap.DecodeTileFile(path, key.X, key.Y)
	if err != nil {
		return nil, err
	}

	if s.maxTiles > 0 && len(s.tiles) >= s.maxTiles {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.tiles, oldest)
		s.log.Debug("evicted tile", zap.Stringer("tile", oldest))
	}

	s.tiles[key] = tile
	s.order = append(s.order, key)
	s.log.Debug("loaded tile",
		zap.Stringer("tile", key),
		zap.Int("spawns", len(tile.Spawns)))

	return tile, nil
}

// TreeBounds decodes the root bounding volume of the map's .vmtree file.
func (s *Store) TreeBounds(mapID int) (math.AABox, error) {
	return vmap.DecodeTreeBoundsFile(filepath.Join(s.dir, TreeName(mapID)))
}

// List returns the tile keys present for a map, sorted by (x, y).
func (s *Store) List(mapID int) ([]TileKey, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	var keys []TileKey
	for _, k := range all {
		if k.MapID == mapID {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// ListAll returns every tile key in the directory, sorted by map then (x, y).
func (s *Store) ListAll() ([]TileKey, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing vmap directory: %w", err)
	}

	var keys []TileKey
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := ParseTileName(e.Name()); ok {
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.MapID != b.MapID {
			return a.MapID < b.MapID
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	return keys, nil
}
