// Package vmap decodes VMap collision files: .vmtile model spawn lists and
// .vmtree spatial-tree roots. Decoders are pure functions over in-memory
// buffers; reading files from disk and deriving tile coordinates from file
// names belong to the caller.
package vmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/duskhollow/vmapkit/pkg/math"
)

// VMap format errors.
var (
	ErrUnsupportedMagic  = errors.New("unsupported vmap magic")
	ErrUnreasonableCount = errors.New("unreasonable spawn count")
	ErrTruncated         = errors.New("truncated vmap data")
	ErrInvalidNodeMarker = errors.New("invalid vmtree node marker")
)

// MaxSpawnsPerTile is the sanity ceiling on the declared spawn count. A
// count above it is treated as corruption rather than attempted as an
// allocation.
const MaxSpawnsPerTile = 100000

const magicLen = 8

// supportedMagics is the fixed whitelist of recognized format version tags.
var supportedMagics = map[string]struct{}{
	"VMAP_4.7": {},
	"VMAP_4.8": {},
	"VMAP_4.9": {},
	"VMAP_5.0": {},
}

// SupportedMagic reports whether the 8-byte version tag is recognized.
func SupportedMagic(magic string) bool {
	_, ok := supportedMagics[magic]
	return ok
}

// Spawn flag bits.
const (
	// SpawnHasBounds marks spawns whose record carries a serialized
	// bounding box. Without it the bounds field is absent from the byte
	// stream entirely and the decoder synthesizes a zero box.
	SpawnHasBounds uint8 = 1 << 0
)

// ModelSpawn is one placed instance of a 3D model within a tile.
type ModelSpawn struct {
	Flags    uint8
	ADTID    uint8
	ID       uint32
	Position math.Vec3
	Rotation math.Vec3 // Euler angles, stored unit is opaque here
	Scale    float32
	Bounds   math.AABox // zero box when SpawnHasBounds is unset
	Name     string
}

// HasBounds reports whether a bounding box was serialized for this spawn.
func (s *ModelSpawn) HasBounds() bool {
	return s.Flags&SpawnHasBounds != 0
}

// Tile is a decoded .vmtile spawn list. TileX and TileY are caller-supplied
// grid coordinates taken from the file name, not stored in the file.
type Tile struct {
	Magic  string
	TileX  int
	TileY  int
	Spawns []ModelSpawn
}

// DecodeTile decodes a .vmtile buffer. The whole decode aborts on the first
// malformed field; a partial tile is never returned.
func DecodeTile(data []byte, tileX, tileY int) (*Tile, error) {
	if len(data) < magicLen+4 {
		return nil, fmt.Errorf("%w: tile (%d,%d): %d byte buffer", ErrTruncated, tileX, tileY, len(data))
	}

	magic := string(data[:magicLen])
	if !SupportedMagic(magic) {
		return nil, fmt.Errorf("%w: tile (%d,%d): %q", ErrUnsupportedMagic, tileX, tileY, magic)
	}

	spawnCount := binary.LittleEndian.Uint32(data[magicLen:])
	if spawnCount > MaxSpawnsPerTile {
		return nil, fmt.Errorf("%w: tile (%d,%d): %d spawns exceeds ceiling %d",
			ErrUnreasonableCount, tileX, tileY, spawnCount, MaxSpawnsPerTile)
	}

	tile := &Tile{
		Magic:  magic,
		TileX:  tileX,
		TileY:  tileY,
		Spawns: make([]ModelSpawn, 0, spawnCount),
	}

	r := bytes.NewReader(data[magicLen+4:])
	for i := uint32(0); i < spawnCount; i++ {
		spawn, err := decodeSpawn(r)
		if err != nil {
			return nil, fmt.Errorf("tile (%d,%d): spawn %d: %w", tileX, tileY, i, err)
		}
		tile.Spawns = append(tile.Spawns, spawn)
	}

	return tile, nil
}

// decodeSpawn decodes a single spawn record at the reader's cursor. The
// bounds field is conditional on the flags byte read first, so the branch
// must happen before the cursor advances past it.
func decodeSpawn(r *bytes.Reader) (ModelSpawn, error) {
	var spawn ModelSpawn

	if err := binary.Read(r, binary.LittleEndian, &spawn.Flags); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading flags", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &spawn.ADTID); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading adt id", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &spawn.ID); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading id", ErrTruncated)
	}
	if err := readVec3(r, &spawn.Position); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading position", ErrTruncated)
	}
	if err := readVec3(r, &spawn.Rotation); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading rotation", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &spawn.Scale); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading scale", ErrTruncated)
	}

	if spawn.Flags&SpawnHasBounds != 0 {
		if err := readVec3(r, &spawn.Bounds.Min); err != nil {
			return ModelSpawn{}, fmt.Errorf("%w: reading bounds min", ErrTruncated)
		}
		if err := readVec3(r, &spawn.Bounds.Max); err != nil {
			return ModelSpawn{}, fmt.Errorf("%w: reading bounds max", ErrTruncated)
		}
	}

	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading name length", ErrTruncated)
	}
	if int(nameLen) > r.Len() {
		return ModelSpawn{}, fmt.Errorf("%w: name length %d exceeds remaining %d bytes",
			ErrTruncated, nameLen, r.Len())
	}

	// The name is length-prefixed, not null-terminated: read exactly
	// nameLen bytes, embedded NULs included.
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return ModelSpawn{}, fmt.Errorf("%w: reading name", ErrTruncated)
	}
	spawn.Name = string(nameBytes)

	return spawn, nil
}

func readVec3(r *bytes.Reader, v *math.Vec3) error {
	if err := binary.Read(r, binary.LittleEndian, &v.X); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &v.Y); err != nil {
		return err
	}
	return binary.Read(r, binary.LittleEndian, &v.Z)
}

// DecodeTileFile reads and decodes a .vmtile file from disk.
func DecodeTileFile(path string, tileX, tileY int) (*Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vmtile file: %w", err)
	}
	return DecodeTile(data, tileX, tileY)
}
