// Package scene draws frames with raylib: the board and ball through a Phong program and the
// ball's planar shadow through a flat translucent one.
package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"

	"marble-maze/internal/frame"
	"marble-maze/internal/mesh"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	sphereRings  = 32
	sphereSlices = 32
)

// DefaultClear is the background color.
var DefaultClear = color.RGBA{R: 51, G: 128, B: 204, A: 255}

// DefaultShadowColor is the blended shadow color.
var DefaultShadowColor = [4]float32{0, 0, 0, 0.5}

// Options describes the GPU resources a Scene owns.
type Options struct {
	Board       *mesh.Mesh
	Ball        *mesh.Mesh // nil generates a UV sphere of BallRadius
	BallRadius  float32
	BallTexture *image.RGBA // nil draws the ball untextured
	Clear       color.RGBA
	ShadowColor [4]float32
}

// Scene implements frame.Renderer. Create it after the window exists and Close it before the
// window closes.
type Scene struct {
	board     rl.Mesh
	ball      rl.Mesh
	ballTex   rl.Texture2D
	hasTex    bool
	boardMtl  rl.Material
	ballMtl   rl.Material
	shadowMtl rl.Material
	phong     program
	shadow    program
	clear     rl.Color
	shadowCol [4]float32
	identity  rl.Matrix
}

var _ frame.Renderer = (*Scene)(nil)

// New uploads the board and ball and compiles both programs.
func New(opts Options) (*Scene, error) {
	if opts.Board == nil {
		return nil, errors.New("scene: no board mesh")
	}
	if opts.BallRadius <= 0 {
		return nil, fmt.Errorf("scene: ball radius %v", opts.BallRadius)
	}
	if opts.Clear == (color.RGBA{}) {
		opts.Clear = DefaultClear
	}
	if opts.ShadowColor == [4]float32{} {
		opts.ShadowColor = DefaultShadowColor
	}

	phong, ok := loadProgram(phongVS, phongFS)
	if !ok {
		return nil, errors.New("scene: phong shader failed to compile")
	}
	shadow, ok := loadProgram(shadowVS, shadowFS)
	if !ok {
		rl.UnloadShader(phong.shader)
		return nil, errors.New("scene: shadow shader failed to compile")
	}
	board, err := upload("board", opts.Board)
	if err != nil {
		rl.UnloadShader(phong.shader)
		rl.UnloadShader(shadow.shader)
		return nil, err
	}
	var ball rl.Mesh
	if opts.Ball != nil {
		if ball, err = upload("ball", opts.Ball); err != nil {
			rl.UnloadMesh(&board)
			rl.UnloadShader(phong.shader)
			rl.UnloadShader(shadow.shader)
			return nil, err
		}
	} else {
		ball = rl.GenMeshSphere(opts.BallRadius, sphereRings, sphereSlices)
	}

	s := &Scene{
		board:     board,
		ball:      ball,
		phong:     phong,
		shadow:    shadow,
		clear:     rl.NewColor(opts.Clear.R, opts.Clear.G, opts.Clear.B, opts.Clear.A),
		shadowCol: opts.ShadowColor,
		identity:  rl.MatrixIdentity(),
	}
	s.boardMtl = material(phong.shader)
	s.ballMtl = material(phong.shader)
	s.shadowMtl = material(shadow.shader)
	if opts.BallTexture != nil {
		img := rl.NewImageFromImage(opts.BallTexture)
		s.ballTex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		if rl.IsTextureValid(s.ballTex) {
			rl.SetTextureFilter(s.ballTex, rl.FilterBilinear)
			rl.SetMaterialTexture(&s.ballMtl, rl.MapDiffuse, s.ballTex)
			s.hasTex = true
		}
	}
	return s, nil
}

func material(sh rl.Shader) rl.Material {
	mtl := rl.LoadMaterialDefault()
	mtl.Shader = sh
	if m := mtl.GetMap(rl.MapDiffuse); m != nil {
		m.Color = rl.White
	}
	return mtl
}

// upload sends m to the GPU as an unindexed mesh, so models are not bound by raylib's 16-bit
// indices. The Go buffers are pinned for the duration of the call and detached afterwards;
// raylib keeps only the GPU handles.
func upload(name string, m *mesh.Mesh) (rl.Mesh, error) {
	if err := m.Validate(); err != nil {
		return rl.Mesh{}, fmt.Errorf("scene: %s: %w", name, err)
	}
	u := m.Unindex()
	var pin runtime.Pinner
	defer pin.Unpin()
	pin.Pin(&u.Positions[0])
	pin.Pin(&u.Normals[0])
	pin.Pin(&u.UVs[0])

	n := len(u.Positions) / 3
	gm := rl.Mesh{
		VertexCount:   int32(n),
		TriangleCount: int32(n / 3),
		Vertices:      &u.Positions[0],
		Normals:       &u.Normals[0],
		Texcoords:     &u.UVs[0],
	}
	rl.UploadMesh(&gm, false)
	gm.Vertices, gm.Normals, gm.Texcoords = nil, nil, nil
	if gm.VaoID == 0 {
		return rl.Mesh{}, fmt.Errorf("scene: %s upload failed", name)
	}
	return gm, nil
}

// Render draws one frame. Call between BeginDrawing and EndDrawing, before 2D overlays.
func (s *Scene) Render(f *frame.Frame) error {
	if f == nil {
		return errors.New("scene: nil frame")
	}
	rl.ClearBackground(s.clear)
	rl.EnableDepthTest()
	defer rl.DisableDepthTest()

	s.phong.apply(f.Board)
	rl.DrawMesh(s.board, s.boardMtl, s.identity)
	s.phong.apply(f.Ball)
	rl.DrawMesh(s.ball, s.ballMtl, s.identity)

	if f.ShadowOn {
		s.shadow.apply(f.Shadow)
		if s.shadow.shadow >= 0 {
			col := s.shadowCol
			rl.SetShaderValueV(s.shadow.shader, s.shadow.shadow, col[:], rl.ShaderUniformVec4, 1)
		}
		// Flattening can flip winding.
		rl.DisableBackfaceCulling()
		rl.DrawMesh(s.ball, s.shadowMtl, s.identity)
		rl.EnableBackfaceCulling()
	}
	return nil
}

// Close releases GPU resources.
func (s *Scene) Close() {
	rl.UnloadMesh(&s.board)
	rl.UnloadMesh(&s.ball)
	if s.hasTex {
		rl.UnloadTexture(s.ballTex)
	}
	rl.UnloadShader(s.phong.shader)
	rl.UnloadShader(s.shadow.shader)
}

// apply uploads the block's values to the uniforms the program declares.
func (p program) apply(b frame.Block) {
	f := b.Floats()
	if p.mvp >= 0 {
		rl.SetShaderValueMatrix(p.shader, p.mvp, matrix(f[0:16]))
	}
	if p.model >= 0 {
		rl.SetShaderValueMatrix(p.shader, p.model, matrix(f[16:32]))
	}
	vec4 := func(loc int32, v []float32) {
		if loc >= 0 {
			rl.SetShaderValueV(p.shader, loc, v, rl.ShaderUniformVec4, 1)
		}
	}
	vec4(p.eye, f[32:36])
	vec4(p.light, f[36:40])
	vec4(p.diffuse, f[40:44])
	vec4(p.specular, f[44:48])
	vec4(p.par, f[48:52])
	vec4(p.ambient, f[52:56])
}

// matrix converts 16 column-major floats to raylib's layout, where Mn is the n-th float in
// column-major order.
func matrix(m []float32) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}
