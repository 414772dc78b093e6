package engine

import "sync/atomic"

// InputBuffer remembers the latest directional keypress for a few ticks so a
// turn pressed just before an intersection still registers.
//
// Press may be called from any goroutine. Everything else belongs to the
// tick goroutine: Latch picks up the pending press at the start of a tick.
type InputBuffer struct {
	pending atomic.Int32

	dir    Direction
	ticks  int
	memory int
}

// NewInputBuffer creates a buffer whose presses stay active for memory ticks.
func NewInputBuffer(memory int) *InputBuffer {
	if memory <= 0 {
		memory = DefaultInputMemoryTicks
	}
	return &InputBuffer{memory: memory}
}

// Press records a keypress. None is ignored.
func (b *InputBuffer) Press(d Direction) {
	if d == None {
		return
	}
	b.pending.Store(int32(d))
}

// Latch moves a pending press into the buffer and resets its time-to-live.
func (b *InputBuffer) Latch() {
	if p := b.pending.Swap(0); p != 0 {
		b.dir = Direction(p)
		b.ticks = b.memory
	}
}

// Active reports whether the buffered direction should still be tried.
func (b *InputBuffer) Active() bool {
	return b.ticks > 0
}

// Direction returns the buffered direction.
func (b *InputBuffer) Direction() Direction {
	return b.dir
}

// Remaining returns the ticks left before the buffered press expires.
func (b *InputBuffer) Remaining() int {
	return b.ticks
}

// Decrement ages the buffered press by one tick.
func (b *InputBuffer) Decrement() {
	if b.ticks > 0 {
		b.ticks--
	}
}

// Reset drops any buffered or pending press.
func (b *InputBuffer) Reset() {
	b.pending.Store(0)
	b.dir = None
	b.ticks = 0
}
