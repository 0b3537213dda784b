package mapgen

import (
	"math/rand"
	"time"

	"marble-maze/internal/mesh"
)

// MazeOptions controls procedural maze board generation.
// Cells is the number of maze cells per side; an even value is bumped to the next odd one so the
// board center, where the ball spawns, is always an open cell. CellSize is the world size of one
// grid tile (cells and walls share the same tile size). WallHeight and FloorThickness are in world
// units. Seed controls randomness; Seed == 0 uses a time-based seed. Exit opens a gap in the outer
// wall at the far corner so the ball can roll off the board.
type MazeOptions struct {
	Cells          int
	CellSize       float32
	WallHeight     float32
	FloorThickness float32
	Seed           int64
	Exit           bool
}

// DefaultMazeOptions returns a sane default configuration.
func DefaultMazeOptions() MazeOptions {
	return MazeOptions{
		Cells:          5,
		CellSize:       2.5,
		WallHeight:     1.5,
		FloorThickness: 0.5,
		Seed:           0,
		Exit:           true,
	}
}

// Block is one axis-aligned box of the board, in board-local coordinates.
type Block struct {
	Center [3]float32
	Size   [3]float32
}

// Board is a generated maze: the combined triangle mesh (floor top at y = 0) plus the boxes it
// was built from, for renderers that draw boxes directly.
type Board struct {
	Mesh   *mesh.Mesh
	Floor  Block
	Walls  []Block
	Tiles  [][]bool // true = wall, indexed [z][x]
	Extent float32  // half the board width
	Seed   int64
}

// GenerateMaze carves a perfect maze with a randomized depth-first search and turns it into a board.
func GenerateMaze(opts MazeOptions) *Board {
	d := DefaultMazeOptions()
	if opts.Cells <= 0 {
		opts.Cells = d.Cells
	}
	if opts.Cells%2 == 0 {
		opts.Cells++
	}
	if opts.CellSize <= 0 {
		opts.CellSize = d.CellSize
	}
	if opts.WallHeight <= 0 {
		opts.WallHeight = d.WallHeight
	}
	if opts.FloorThickness <= 0 {
		opts.FloorThickness = d.FloorThickness
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	tiles := carve(opts.Cells, rand.New(rand.NewSource(seed)))
	n := len(tiles)
	if opts.Exit {
		// Far corner cell is at tile (n-2, n-2); open the outer wall beside it.
		tiles[n-2][n-1] = false
	}

	extent := float32(n) * opts.CellSize * 0.5
	b := &Board{Tiles: tiles, Extent: extent, Seed: seed}
	b.Floor = Block{
		Center: [3]float32{0, -opts.FloorThickness / 2, 0},
		Size:   [3]float32{2 * extent, opts.FloorThickness, 2 * extent},
	}
	b.Walls = wallRuns(tiles, opts.CellSize, opts.WallHeight, extent)

	mb := mesh.NewBuilder()
	mb.AddBox(b.Floor.Center, b.Floor.Size, false)
	for _, w := range b.Walls {
		mb.AddBox(w.Center, w.Size, true)
	}
	b.Mesh = mb.Mesh()
	return b
}

// carve returns a (2·cells+1)² tile grid. Cells sit at odd coordinates; the walls between
// visited neighbours are knocked out.
func carve(cells int, rng *rand.Rand) [][]bool {
	n := 2*cells + 1
	tiles := make([][]bool, n)
	for z := range tiles {
		tiles[z] = make([]bool, n)
		for x := range tiles[z] {
			tiles[z][x] = true
		}
	}
	type cell struct{ x, z int }
	visited := make([][]bool, cells)
	for i := range visited {
		visited[i] = make([]bool, cells)
	}
	dirs := [4]cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	start := cell{cells / 2, cells / 2}
	visited[start.z][start.x] = true
	tiles[2*start.z+1][2*start.x+1] = false
	stack := []cell{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		var next []cell
		for _, d := range dirs {
			nb := cell{cur.x + d.x, cur.z + d.z}
			if nb.x >= 0 && nb.x < cells && nb.z >= 0 && nb.z < cells && !visited[nb.z][nb.x] {
				next = append(next, nb)
			}
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		nb := next[rng.Intn(len(next))]
		visited[nb.z][nb.x] = true
		tiles[2*nb.z+1][2*nb.x+1] = false
		tiles[cur.z+nb.z+1][cur.x+nb.x+1] = false
		stack = append(stack, nb)
	}
	return tiles
}

// wallRuns merges horizontal runs of wall tiles into single blocks so long walls have no
// internal seams.
func wallRuns(tiles [][]bool, size, height, extent float32) []Block {
	var out []Block
	for z, row := range tiles {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			length := float32(x - start)
			cx := -extent + (float32(start)+length/2)*size
			cz := -extent + (float32(z)+0.5)*size
			out = append(out, Block{
				Center: [3]float32{cx, height / 2, cz},
				Size:   [3]float32{length * size, height, size},
			})
		}
	}
	return out
}
