package terrain

import (
	"fmt"
	"math"
)

// ChunkKey identifies a chunk by depth and integer face coordinates. The
// coordinates count units of RootCellSize / 2^NumLevels from the face
// origin, so every chunk center maps to an exact integer.
type ChunkKey struct {
	Level int32
	X, Y  int32
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("L%d(%d,%d)", k.Level, k.X, k.Y)
}

// keyUnit returns the world size of one key step.
func keyUnit(cfg GridConfig) float32 {
	return cfg.RootCellSize / float32(uint64(1)<<uint(cfg.NumLevels))
}

func makeKey(level int, u, v, unit float32) ChunkKey {
	return ChunkKey{
		Level: int32(level),
		X:     int32(math.Round(float64(u / unit))),
		Y:     int32(math.Round(float64(v / unit))),
	}
}

// center returns the face coordinates a key stands for.
func (k ChunkKey) center(unit float32) (u, v float32) {
	return float32(k.X) * unit, float32(k.Y) * unit
}
