package renderer

import (
	"encoding/binary"
	"math"

	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// Common std140 field sizes in bytes.
const (
	Mat4Size = 64
	Vec4Size = 16
)

// UBOConfig describes one uniform block layout: how many blocks (one per
// drawn instance) and the byte size of each field in declaration order.
type UBOConfig struct {
	Blocks int
	Fields []int
}

// UBO is a CPU-side set of uniform blocks copied to GPU memory each frame.
// Each field starts on a 16-byte boundary (std140). Blocks are spaced by
// the device's uniform offset alignment so each can be bound as a range.
type UBO struct {
	offsets   []int
	sizes     []int
	blockSize int
	stride    int
	blocks    int
	data      []byte
}

// NewUBO allocates a UBO for cfg. alignment is the device's minimum uniform
// buffer offset alignment; values below 16 are raised to 16.
func NewUBO(cfg UBOConfig, alignment int) *UBO {
	if alignment < 16 {
		alignment = 16
	}
	u := &UBO{
		offsets: make([]int, len(cfg.Fields)),
		sizes:   append([]int(nil), cfg.Fields...),
		blocks:  cfg.Blocks,
	}
	offset := 0
	for i, size := range cfg.Fields {
		u.offsets[i] = offset
		offset += alignUp(size, 16)
	}
	u.blockSize = offset
	if u.blockSize > 0 {
		u.stride = alignUp(u.blockSize, alignment)
	}
	u.data = make([]byte, u.stride*u.blocks)
	return u
}

func alignUp(n, a int) int {
	return (n + a - 1) / a * a
}

// Blocks returns the number of uniform blocks.
func (u *UBO) Blocks() int { return u.blocks }

// BlockSize returns the unpadded size of one block.
func (u *UBO) BlockSize() int { return u.blockSize }

// Stride returns the distance in bytes between consecutive blocks.
func (u *UBO) Stride() int { return u.stride }

// Bytes returns the raw block data. The slice aliases the UBO.
func (u *UBO) Bytes() []byte { return u.data }

// Empty reports whether the UBO holds no data.
func (u *UBO) Empty() bool { return len(u.data) == 0 }

// field returns the destination slice for a field, or nil when the block or
// field index is out of range.
func (u *UBO) field(block, field int) []byte {
	if block < 0 || block >= u.blocks || field < 0 || field >= len(u.offsets) {
		return nil
	}
	start := block*u.stride + u.offsets[field]
	return u.data[start : start+u.sizes[field]]
}

// SetBytes copies raw bytes into a field, truncated to the field size.
func (u *UBO) SetBytes(block, field int, b []byte) {
	if dst := u.field(block, field); dst != nil {
		copy(dst, b)
	}
}

// SetMat4 writes a column-major matrix into a field.
func (u *UBO) SetMat4(block, field int, m lmath.Mat4) {
	dst := u.field(block, field)
	if len(dst) < Mat4Size {
		return
	}
	for i, f := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// SetVec4 writes four floats into a field.
func (u *UBO) SetVec4(block, field int, v [4]float32) {
	dst := u.field(block, field)
	if len(dst) < Vec4Size {
		return
	}
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// Mat4 reads a matrix back from a field.
func (u *UBO) Mat4(block, field int) lmath.Mat4 {
	var m lmath.Mat4
	src := u.field(block, field)
	if len(src) < Mat4Size {
		return m
	}
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return m
}

// Vec4 reads four floats back from a field.
func (u *UBO) Vec4(block, field int) [4]float32 {
	var v [4]float32
	src := u.field(block, field)
	if len(src) < Vec4Size {
		return v
	}
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return v
}
