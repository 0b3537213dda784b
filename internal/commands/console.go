package commands

import "unicode/utf8"

// maxHistory caps recalled lines.
const maxHistory = 50

// Printer receives console echo and error lines.
type Printer interface {
	Log(line string)
}

// Console is the line editor behind the in-game terminal: an input buffer, submitted-line history
// and dispatch to a Registry. It holds no drawing or key state.
type Console struct {
	reg     *Registry
	out     Printer
	buf     string
	history []string
	recall  int // index into history while browsing; len(history) when not browsing
}

// NewConsole returns a console executing lines against reg and echoing to out.
func NewConsole(reg *Registry, out Printer) *Console {
	return &Console{reg: reg, out: out}
}

// Input returns the current buffer.
func (c *Console) Input() string {
	return c.buf
}

// Insert appends typed or pasted text.
func (c *Console) Insert(s string) {
	c.buf += s
}

// Backspace removes the last rune.
func (c *Console) Backspace() {
	if c.buf == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(c.buf)
	c.buf = c.buf[:len(c.buf)-size]
}

// Clear empties the buffer and stops browsing history.
func (c *Console) Clear() {
	c.buf = ""
	c.recall = len(c.history)
}

// Submit echoes and executes the buffer, then clears it. Blank input is a no-op and returns false.
// Errors from the command are printed, not returned.
func (c *Console) Submit() bool {
	line := c.buf
	args, ok := Parse(line)
	if !ok {
		c.Clear()
		return false
	}
	c.out.Log("> " + line)
	c.history = append(c.history, line)
	if len(c.history) > maxHistory {
		c.history = c.history[len(c.history)-maxHistory:]
	}
	c.Clear()
	if err := c.reg.Execute(args); err != nil {
		c.out.Log(err.Error())
	}
	return true
}

// Prev replaces the buffer with the previous submitted line.
func (c *Console) Prev() {
	if c.recall == 0 {
		return
	}
	c.recall--
	c.buf = c.history[c.recall]
}

// Next moves forward in history; past the newest line the buffer is cleared.
func (c *Console) Next() {
	if c.recall >= len(c.history) {
		return
	}
	c.recall++
	if c.recall == len(c.history) {
		c.buf = ""
		return
	}
	c.buf = c.history[c.recall]
}
