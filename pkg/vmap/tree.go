package vmap

import (
	"encoding/binary"
	"fmt"
	gomath "math"
	"os"

	"github.com/duskhollow/vmapkit/pkg/math"
)

// treeNodeMarker follows the magic in every .vmtree file.
const treeNodeMarker = "NODE"

const treeHeaderLen = magicLen + len(treeNodeMarker) + 24

// DecodeTreeBounds decodes the root bounding volume of a .vmtree file. The
// tree's interior nodes are not traversed; only the root volume is read.
func DecodeTreeBounds(data []byte) (math.AABox, error) {
	if len(data) < treeHeaderLen {
		return math.AABox{}, fmt.Errorf("%w: tree: %d byte buffer", ErrTruncated, len(data))
	}

	magic := string(data[:magicLen])
	if !SupportedMagic(magic) {
		return math.AABox{}, fmt.Errorf("%w: tree: %q", ErrUnsupportedMagic, magic)
	}

	marker := string(data[magicLen : magicLen+len(treeNodeMarker)])
	if marker != treeNodeMarker {
		return math.AABox{}, fmt.Errorf("%w: %q", ErrInvalidNodeMarker, marker)
	}

	var box math.AABox
	offset := magicLen + len(treeNodeMarker)
	box.Min.X = readFloat32(data, &offset)
	box.Min.Y = readFloat32(data, &offset)
	box.Min.Z = readFloat32(data, &offset)
	box.Max.X = readFloat32(data, &offset)
	box.Max.Y = readFloat32(data, &offset)
	box.Max.Z = readFloat32(data, &offset)

	return box, nil
}

func readFloat32(data []byte, offset *int) float32 {
	bits := binary.LittleEndian.Uint32(data[*offset:])
	*offset += 4
	return gomath.Float32frombits(bits)
}

// DecodeTreeBoundsFile reads and decodes a .vmtree file from disk.
func DecodeTreeBoundsFile(path string) (math.AABox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return math.AABox{}, fmt.Errorf("reading vmtree file: %w", err)
	}
	return DecodeTreeBounds(data)
}
