package frame

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// BlockFloats is the number of float32 slots in one uniform block.
	BlockFloats = 56
	// BlockSize is the byte size of one uniform block.
	BlockSize = BlockFloats * 4
)

// Material holds the Phong parameters shared by every object in a frame.
type Material struct {
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Kd        float32
	Ks        float32
	Shininess float32
	Le        float32 // light emission
	La        float32 // ambient
}

// DefaultMaterial returns the tuned marble material.
func DefaultMaterial() Material {
	return Material{
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{1, 1, 1},
		Kd:        1.8,
		Ks:        50,
		Shininess: 1008,
		Le:        10,
		La:        0.3,
	}
}

// Block is one object's per-draw shader parameters. Layout, in float32 slots:
//
//	0  MVP (column-major)
//	16 Model (column-major)
//	32 Eye      (x, y, z, 0)
//	36 Light    (x, y, z, 1)
//	40 Diffuse  (r, g, b, 0)
//	44 Specular (r, g, b, 0)
//	48 kd, ks, shininess, Le
//	52 Ambient  (La, La, La, 0)
type Block struct {
	MVP      mgl32.Mat4
	Model    mgl32.Mat4
	Eye      mgl32.Vec3
	Light    mgl32.Vec3
	Material Material
}

// NewBlock assembles the block for one object.
func NewBlock(proj, view, model mgl32.Mat4, eye, light mgl32.Vec3, mat Material) Block {
	return Block{
		MVP:      proj.Mul4(view).Mul4(model),
		Model:    model,
		Eye:      eye,
		Light:    light,
		Material: mat,
	}
}

// Floats flattens the block into its 56-slot layout.
func (b Block) Floats() [BlockFloats]float32 {
	var out [BlockFloats]float32
	copy(out[0:16], b.MVP[:])
	copy(out[16:32], b.Model[:])
	copy(out[32:36], []float32{b.Eye[0], b.Eye[1], b.Eye[2], 0})
	copy(out[36:40], []float32{b.Light[0], b.Light[1], b.Light[2], 1})
	m := b.Material
	copy(out[40:44], []float32{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], 0})
	copy(out[44:48], []float32{m.Specular[0], m.Specular[1], m.Specular[2], 0})
	copy(out[48:52], []float32{m.Kd, m.Ks, m.Shininess, m.Le})
	copy(out[52:56], []float32{m.La, m.La, m.La, 0})
	return out
}

// Bytes encodes the block little-endian, ready to upload as a uniform buffer.
func (b Block) Bytes() []byte {
	fs := b.Floats()
	out := make([]byte, 0, BlockSize)
	for _, f := range fs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}
