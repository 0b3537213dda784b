package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/tdewolff/parse/v2/strconv"
)

// corner identifies one face corner by its 0-based position, uv and normal indices (-1 = absent).
type corner struct {
	v, t, n int
}

// objReader holds the OBJ attribute pools and the deduplicated output vertices.
type objReader struct {
	scale     float32
	positions [][3]float32
	uvs       [][2]float32
	normals   [][3]float32

	out       Mesh
	seen      map[corner]uint32
	hasNormal bool
	line      int
}

// LoadOBJ reads a Wavefront OBJ file from path. See ParseOBJ.
func LoadOBJ(path string, scale float32) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	defer f.Close()
	m, err := ParseOBJ(f, scale)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// ParseOBJ reads the v, vt, vn and f statements of a Wavefront OBJ stream. Polygons are split
// into triangle fans, negative indices count back from the latest element, and every distinct
// position/uv/normal corner becomes one output vertex. V is flipped (1 - v) to match top-left
// texture origin. Positions are multiplied by scale (0 means 1). When the file has no normals,
// smooth normals are computed from the faces. Other statements are ignored.
func ParseOBJ(r io.Reader, scale float32) (*Mesh, error) {
	if scale == 0 {
		scale = 1
	}
	p := &objReader{scale: scale, seen: make(map[corner]uint32)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Bytes()); err != nil {
			return nil, fmt.Errorf("mesh: obj line %d: %w", p.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read obj: %w", err)
	}
	if len(p.out.Indices) == 0 {
		return nil, fmt.Errorf("mesh: obj has no faces")
	}
	if !p.hasNormal {
		p.out.computeNormals()
	}
	return &p.out, nil
}

func (p *objReader) parseLine(line []byte) error {
	if i := bytes.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch string(fields[0]) {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, [3]float32{v[0] * p.scale, v[1] * p.scale, v[2] * p.scale})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, [2]float32{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return p.face(fields[1:])
	}
	return nil
}

func (p *objReader) face(fields [][]byte) error {
	if len(fields) < 3 {
		return fmt.Errorf("face has %d corners, need at least 3", len(fields))
	}
	idx := make([]uint32, len(fields))
	for i, f := range fields {
		c, err := p.parseCorner(f)
		if err != nil {
			return err
		}
		idx[i] = p.vertex(c)
	}
	for i := 1; i+1 < len(idx); i++ {
		p.out.Indices = append(p.out.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

// parseCorner reads "v", "v/t", "v//n" or "v/t/n".
func (p *objReader) parseCorner(b []byte) (corner, error) {
	parts := bytes.Split(b, []byte{'/'})
	if len(parts) > 3 {
		return corner{}, fmt.Errorf("bad face corner %q", b)
	}
	c := corner{v: -1, t: -1, n: -1}
	var err error
	if c.v, err = resolve(parts[0], len(p.positions)); err != nil || c.v < 0 {
		return corner{}, fmt.Errorf("bad position index in %q: %w", b, orMissing(err))
	}
	if len(parts) > 1 && len(parts[1]) > 0 {
		if c.t, err = resolve(parts[1], len(p.uvs)); err != nil {
			return corner{}, fmt.Errorf("bad uv index in %q: %w", b, err)
		}
	}
	if len(parts) > 2 && len(parts[2]) > 0 {
		if c.n, err = resolve(parts[2], len(p.normals)); err != nil {
			return corner{}, fmt.Errorf("bad normal index in %q: %w", b, err)
		}
	}
	return c, nil
}

// vertex returns the output index for c, creating the vertex on first use.
func (p *objReader) vertex(c corner) uint32 {
	if idx, ok := p.seen[c]; ok {
		return idx
	}
	idx := uint32(p.out.VertexCount())
	pos := p.positions[c.v]
	p.out.Positions = append(p.out.Positions, pos[0], pos[1], pos[2], 1)
	var u, v float32
	if c.t >= 0 {
		u, v = p.uvs[c.t][0], 1-p.uvs[c.t][1]
	}
	p.out.UVs = append(p.out.UVs, u, v)
	var n [3]float32
	if c.n >= 0 {
		n = p.normals[c.n]
		p.hasNormal = true
	}
	p.out.Normals = append(p.out.Normals, n[0], n[1], n[2], 0)
	p.seen[c] = idx
	return idx
}

var errMissingIndex = fmt.Errorf("missing index")

func orMissing(err error) error {
	if err == nil {
		return errMissingIndex
	}
	return err
}

// resolve turns a 1-based (or negative, relative) OBJ index into a 0-based one.
func resolve(b []byte, count int) (int, error) {
	if len(b) == 0 {
		return -1, errMissingIndex
	}
	v, n := strconv.ParseInt(b)
	if n != len(b) {
		return -1, fmt.Errorf("not an integer")
	}
	i := int(v)
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return -1, fmt.Errorf("index 0 is invalid")
	}
	if i < 0 || i >= count {
		return -1, fmt.Errorf("index %d out of range (%d defined)", v, count)
	}
	return i, nil
}

// parseFloats reads at least want numbers from fields. Extra components (like w) are ignored.
func parseFloats(fields [][]byte, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("want %d numbers, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, n := strconv.ParseFloat(fields[i])
		if n != len(fields[i]) {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
