package vmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/duskhollow/vmapkit/pkg/math"
)

// Helpers building tile buffers field by field, mirroring the wire layout.

type spawnSpec struct {
	flags  uint8
	adtID  uint8
	id     uint32
	pos    math.Vec3
	rot    math.Vec3
	scale  float32
	bounds math.AABox // written only when flags has SpawnHasBounds
	name   string
}

func writeVec3(buf *bytes.Buffer, v math.Vec3) {
	binary.Write(buf, binary.LittleEndian, v.X)
	binary.Write(buf, binary.LittleEndian, v.Y)
	binary.Write(buf, binary.LittleEndian, v.Z)
}

func writeSpawn(buf *bytes.Buffer, s spawnSpec) {
	buf.WriteByte(s.flags)
	buf.WriteByte(s.adtID)
	binary.Write(buf, binary.LittleEndian, s.id)
	writeVec3(buf, s.pos)
	writeVec3(buf, s.rot)
	binary.Write(buf, binary.LittleEndian, s.scale)
	if s.flags&SpawnHasBounds != 0 {
		writeVec3(buf, s.bounds.Min)
		writeVec3(buf, s.bounds.Max)
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(s.name)))
	buf.WriteString(s.name)
}

func makeTile(magic string, spawns ...spawnSpec) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.LittleEndian, uint32(len(spawns)))
	for _, s := range spawns {
		writeSpawn(&buf, s)
	}
	return buf.Bytes()
}

func TestDecodeTile_MagicValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"valid magic", makeTile("VMAP_4.9"), nil},
		{"older supported magic", makeTile("VMAP_4.7"), nil},
		{"unknown magic", makeTile("VMAP_9.9"), ErrUnsupportedMagic},
		{"non-vmap prefix", makeTile("GRSWdata"), ErrUnsupportedMagic},
		{"empty buffer", []byte{}, ErrTruncated},
		{"short buffer", []byte("VMAP"), ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile, err := DecodeTile(tt.data, 30, 41)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DecodeTile failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tile != nil {
				t.Error("failed decode returned a partial tile")
			}
		})
	}
}

func TestDecodeTile_ErrorIncludesCoordsAndMagic(t *testing.T) {
	_, err := DecodeTile(makeTile("VMAP_9.9"), 30, 41)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"30", "41", `"VMAP_9.9"`} {
		if !bytes.Contains([]byte(msg), []byte(want)) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestDecodeTile_CountCeiling(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("VMAP_4.9")
	binary.Write(&buf, binary.LittleEndian, uint32(200000))

	_, err := DecodeTile(buf.Bytes(), 0, 0)
	if !errors.Is(err, ErrUnreasonableCount) {
		t.Errorf("error = %v, want ErrUnreasonableCount", err)
	}
}

func TestDecodeTile_ConditionalBounds(t *testing.T) {
	withBounds := spawnSpec{
		flags: SpawnHasBounds,
		adtID: 3,
		id:    1001,
		pos:   math.Vec3{X: 10, Y: 20, Z: 30},
		rot:   math.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
		scale: 1.5,
		bounds: math.AABox{
			Min: math.Vec3{X: -2, Y: -2, Z: -2},
			Max: math.Vec3{X: 2, Y: 2, Z: 2},
		},
		name: "World\\building.wmo",
	}
	withoutBounds := spawnSpec{
		flags: 0,
		adtID: 3,
		id:    1002,
		pos:   math.Vec3{X: -5, Y: -6, Z: -7},
		scale: 1,
		name:  "World\\tree.m2",
	}

	tile, err := DecodeTile(makeTile("VMAP_4.9", withBounds, withoutBounds), 30, 41)
	if err != nil {
		t.Fatalf("DecodeTile failed: %v", err)
	}

	if len(tile.Spawns) != 2 {
		t.Fatalf("got %d spawns, want 2", len(tile.Spawns))
	}
	if tile.TileX != 30 || tile.TileY != 41 {
		t.Errorf("tile coords = (%d,%d), want (30,41)", tile.TileX, tile.TileY)
	}

	first := tile.Spawns[0]
	if !first.HasBounds() {
		t.Error("first spawn should report bounds")
	}
	if first.Bounds != withBounds.bounds {
		t.Errorf("Bounds = %v, want %v", first.Bounds, withBounds.bounds)
	}
	if first.ID != 1001 || first.Position != withBounds.pos || first.Name != withBounds.name {
		t.Errorf("first spawn fields mismatched: %+v", first)
	}

	second := tile.Spawns[1]
	if second.HasBounds() {
		t.Error("second spawn should not report bounds")
	}
	if !second.Bounds.IsZero() {
		t.Errorf("boundless spawn got Bounds = %v, want zero box", second.Bounds)
	}
	if second.ID != 1002 || second.Name != withoutBounds.name {
		t.Errorf("second spawn fields mismatched: %+v", second)
	}
}

func TestDecodeTile_NameIsLengthPrefixed(t *testing.T) {
	// Embedded NUL bytes are data, not terminators.
	s := spawnSpec{id: 7, name: "abc\x00def"}
	tile, err := DecodeTile(makeTile("VMAP_4.9", s), 0, 0)
	if err != nil {
		t.Fatalf("DecodeTile failed: %v", err)
	}
	if tile.Spawns[0].Name != "abc\x00def" {
		t.Errorf("Name = %q, want %q", tile.Spawns[0].Name, "abc\x00def")
	}
}

func TestDecodeTile_Truncated(t *testing.T) {
	full := makeTile("VMAP_4.9", spawnSpec{
		flags:  SpawnHasBounds,
		id:     1,
		bounds: math.AABox{Max: math.Vec3{X: 1, Y: 1, Z: 1}},
		name:   "truncate-me",
	})

	// Cut the buffer at every point inside the spawn record.
	for cut := len(full) - 1; cut > 12; cut-- {
		tile, err := DecodeTile(full[:cut], 0, 0)
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("cut at %d: error = %v, want ErrTruncated", cut, err)
		}
		if tile != nil {
			t.Fatalf("cut at %d: got partial tile", cut)
		}
	}
}

func TestDecodeTile_NameLengthBeyondBuffer(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("VMAP_4.9")
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	buf.WriteByte(0) // flags
	buf.WriteByte(0) // adtId
	binary.Write(&buf, binary.LittleEndian, uint32(9))
	writeVec3(&buf, math.Vec3{})
	writeVec3(&buf, math.Vec3{})
	binary.Write(&buf, binary.LittleEndian, float32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFFF)) // absurd name length

	_, err := DecodeTile(buf.Bytes(), 0, 0)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("error = %v, want ErrTruncated", err)
	}
}

func TestDecodeTile_Idempotent(t *testing.T) {
	data := makeTile("VMAP_4.8",
		spawnSpec{flags: SpawnHasBounds, id: 1, bounds: math.AABox{Max: math.Vec3{X: 1}}, name: "a"},
		spawnSpec{id: 2, name: "b"},
	)

	first, err := DecodeTile(data, 5, 6)
	if err != nil {
		t.Fatalf("first decode failed: %v", err)
	}
	second, err := DecodeTile(data, 5, 6)
	if err != nil {
		t.Fatalf("second decode failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("decoding the same buffer twice produced different tiles")
	}
}
