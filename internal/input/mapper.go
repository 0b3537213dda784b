// Package input turns held arrow keys into a normalized steering intent for the board tilt.
package input

import "github.com/chewxy/math32"

// Key is one of the four logical steering keys.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	keyCount
)

// Keys lists every steering key, in Key order.
var Keys = [...]Key{KeyUp, KeyDown, KeyLeft, KeyRight}

var invSqrt2 = 1 / math32.Sqrt(2)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	}
	return "unknown"
}

// TiltSink receives the steering intent. *physics.Engine satisfies it.
type TiltSink interface {
	SetTiltInput(forward, right float32)
}

// Mapper tracks which steering keys are held and pushes the resulting intent into a TiltSink.
// It owns its key state; there is no package-level state.
type Mapper struct {
	sink    TiltSink
	down    [keyCount]bool
	forward float32
	right   float32
}

// NewMapper returns a mapper with every key released. sink may be nil.
func NewMapper(sink TiltSink) *Mapper {
	return &Mapper{sink: sink}
}

// Press marks k as held. Pressing a key that is already down does nothing.
func (m *Mapper) Press(k Key) {
	if !valid(k) || m.down[k] {
		return
	}
	m.down[k] = true
	m.emit()
}

// Release marks k as released.
func (m *Mapper) Release(k Key) {
	if !valid(k) {
		return
	}
	m.down[k] = false
	m.emit()
}

// Held reports whether k is currently down.
func (m *Mapper) Held(k Key) bool {
	return valid(k) && m.down[k]
}

// Reset releases every key and emits a zero intent.
func (m *Mapper) Reset() {
	m.down = [keyCount]bool{}
	m.emit()
}

// Poll diffs isDown against the tracked state and presses or releases keys that changed.
func (m *Mapper) Poll(isDown func(Key) bool) {
	for _, k := range Keys {
		switch held := isDown(k); {
		case held && !m.down[k]:
			m.Press(k)
		case !held && m.down[k]:
			m.Release(k)
		}
	}
}

// Intent returns the last emitted (forward, right) pair.
func (m *Mapper) Intent() (forward, right float32) {
	return m.forward, m.right
}

func (m *Mapper) emit() {
	m.forward = axis(m.down[KeyUp], m.down[KeyDown])
	m.right = axis(m.down[KeyRight], m.down[KeyLeft])
	if m.forward != 0 && m.right != 0 {
		m.forward *= invSqrt2
		m.right *= invSqrt2
	}
	if m.sink != nil {
		m.sink.SetTiltInput(m.forward, m.right)
	}
}

func axis(pos, neg bool) float32 {
	var v float32
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}

func valid(k Key) bool {
	return k >= 0 && k < keyCount
}
