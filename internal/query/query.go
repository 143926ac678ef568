// Package query answers line-of-sight and spawn-proximity questions by
// loading tiles through the store and folding per-spawn intersection
// results into a single nearest-hit answer.
package query

import (
	"errors"
	"io/fs"
	gomath "math"
	"sort"

	"go.uber.org/zap"

	"github.com/duskhollow/vmapkit/internal/store"
	"github.com/duskhollow/vmapkit/pkg/collision"
	"github.com/duskhollow/vmapkit/pkg/math"
	"github.com/duskhollow/vmapkit/pkg/vmap"
)

// TileSide is the world-unit side length of one tile in the file grid.
const TileSide = 533.33333

// Engine runs queries against one store.
type Engine struct {
	store *store.Store
	log   *zap.Logger
}

// New returns a query engine over the given store.
func New(st *store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: st, log: log}
}

// LOSResult is the outcome of a line-of-sight test. When Clear is false,
// Hit holds the nearest intersection and Spawn the model that caused it.
type LOSResult struct {
	Clear bool
	Hit   collision.RayHit
	Spawn *vmap.ModelSpawn
}

// LineOfSight tests whether the segment from start to end is unobstructed
// on the given map. Tiles without a file are treated as empty; corrupt
// tiles are skipped and logged.
func (e *Engine) LineOfSight(mapID int, start, end math.Vec3) LOSResult {
	ray := collision.RayBetween(start, end)
	result := LOSResult{Clear: true}
	result.Hit.Distance = float32(gomath.Inf(1))

	for _, key := range e.tilesCovering(mapID, start, end) {
		tile, err := e.store.Load(key)
		if err != nil {
			e.skipTile(key, err)
			continue
		}
		for i := range tile.Spawns {
			hit := collision.Intersect(ray, tile.Spawns[i].Bounds)
			if hit.Hit && hit.Distance < result.Hit.Distance {
				result.Clear = false
				result.Hit = hit
				result.Spawn = &tile.Spawns[i]
			}
		}
	}

	return result
}

// SpawnDistance pairs a spawn with its distance from a query point.
type SpawnDistance struct {
	Spawn    *vmap.ModelSpawn
	Distance float32
}

// SpawnsInRadius returns the spawns whose position lies within radius of
// center, nearest first.
func (e *Engine) SpawnsInRadius(mapID int, center math.Vec3, radius float32) []SpawnDistance {
	lo := center.Sub(math.Vec3{X: radius, Y: radius})
	hi := center.Add(math.Vec3{X: radius, Y: radius})

	var found []SpawnDistance
	for _, key := range e.tilesCovering(mapID, lo, hi) {
		tile, err := e.store.Load(key)
		if err != nil {
			e.skipTile(key, err)
			continue
		}
		for i := range tile.Spawns {
			d := tile.Spawns[i].Position.Distance(center)
			if d <= radius {
				found = append(found, SpawnDistance{Spawn: &tile.Spawns[i], Distance: d})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Distance < found[j].Distance
	})

	return found
}

// tilesCovering returns the keys of the grid tiles overlapping the XY
// extent of the two points.
func (e *Engine) tilesCovering(mapID int, a, b math.Vec3) []store.TileKey {
	x0 := tileIndex(min32(a.X, b.X))
	x1 := tileIndex(max32(a.X, b.X))
	y0 := tileIndex(min32(a.Y, b.Y))
	y1 := tileIndex(max32(a.Y, b.Y))

	var keys []store.TileKey
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			keys = append(keys, store.TileKey{MapID: mapID, X: x, Y: y})
		}
	}
	return keys
}

func tileIndex(coord float32) int {
	return int(gomath.Floor(float64(coord) / TileSide))
}

// skipTile implements the caller-side policy for decode failures: a
// missing tile file is an empty tile, anything else is logged and skipped.
func (e *Engine) skipTile(key store.TileKey, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	e.log.Warn("skipping unreadable tile", zap.Stringer("tile", key), zap.Error(err))
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
