package spritesheet

import (
	"fmt"
	"time"
)

// DefaultInterval is the frame period used when PlayOptions.Interval is zero.
const DefaultInterval = 25 * time.Millisecond

// Host is the environment a Sprite runs in. Scene implements it; tests can
// substitute a recording fake.
type Host interface {
	// Every arms a repeating timer.
	Every(interval time.Duration, fn func()) TimerID
	// Cancel disarms a timer armed with Every.
	Cancel(id TimerID)
	// RequestRedraw marks a region of the sprite's local space as dirty.
	RequestRedraw(h Handle, r Rect)
	// Detach removes the sprite from its owner. The sprite must not be
	// touched once Detach has been called.
	Detach(h Handle)
}

// SpriteConfig describes a sprite instance drawn from a Sheet.
type SpriteConfig struct {
	Name string

	// FrameCount is the number of valid frames. It is not checked against
	// the sheet grid.
	FrameCount int
	// StartFrame is the initially displayed frame; out of range means 0.
	StartFrame int

	// OriginX, OriginY offset the cell inside the sprite's local space.
	OriginX, OriginY int
	// X, Y position the sprite in the scene.
	X, Y float64
}

// PlayOptions controls a playback run.
type PlayOptions struct {
	// Interval is the time between frames. Zero means DefaultInterval.
	Interval time.Duration
	// Loop wraps the frame index and keeps playing indefinitely.
	Loop bool
	// StartFrame is the first frame shown; out of range means 0.
	StartFrame int
	// RemoveOnComplete detaches the sprite from its host when a
	// non-looping run completes.
	RemoveOnComplete bool
}

// Sprite is one animated instance of a Sheet: the frame index, the playback
// policy and the timer that drives it.
type Sprite struct {
	Name string

	// X, Y position the sprite in the scene.
	X, Y float64
	// Alpha scales the drawn opacity in [0, 1].
	Alpha float64

	// OnStarted fires when Play begins a run.
	OnStarted func(*Sprite)
	// OnFinished fires when a run ends, by completion or Stop.
	OnFinished func(*Sprite)

	sheet      *Sheet
	frameCount int
	frame      int
	originX    int
	originY    int

	state    State
	opts     PlayOptions
	timer    TimerID
	host     Host
	handle   Handle
	released bool
}

// NewSprite creates an idle sprite showing cfg.StartFrame of sheet. The
// sprite has no host until it is added to a Scene or bound with Bind.
func NewSprite(sheet *Sheet, cfg SpriteConfig) *Sprite {
	if sheet == nil {
		panic("spritesheet: NewSprite with nil sheet")
	}
	s := &Sprite{
		Name:       cfg.Name,
		X:          cfg.X,
		Y:          cfg.Y,
		Alpha:      1,
		sheet:      sheet,
		frameCount: cfg.FrameCount,
		originX:    cfg.OriginX,
		originY:    cfg.OriginY,
	}
	s.frame = s.clampFrame(cfg.StartFrame)
	return s
}

// Bind attaches the sprite to host under handle h. Scene calls this on Add;
// other Host implementations call it once per sprite they own. Bind does not
// free any slot the previous host holds for the sprite.
func (s *Sprite) Bind(host Host, h Handle) {
	if s.checkReleased("Bind") {
		return
	}
	if s.state == StatePlaying && s.host != nil {
		s.host.Cancel(s.timer)
		s.state = StateStopped
	}
	s.host = host
	s.handle = h
}

// Sheet returns the sheet the sprite draws from.
func (s *Sprite) Sheet() *Sheet { return s.sheet }

// Handle returns the handle assigned by the host.
func (s *Sprite) Handle() Handle { return s.handle }

// FrameCount returns the declared number of frames.
func (s *Sprite) FrameCount() int { return s.frameCount }

// Frame returns the current frame index.
func (s *Sprite) Frame() int { return s.frame }

// State returns the playback state.
func (s *Sprite) State() State { return s.state }

// Playing reports whether a run is in progress.
func (s *Sprite) Playing() bool { return s.state == StatePlaying }

// Looping reports whether the current or last run loops.
func (s *Sprite) Looping() bool { return s.opts.Loop }

// RemovesOnComplete reports whether the current or last run detaches the
// sprite when it completes.
func (s *Sprite) RemovesOnComplete() bool { return s.opts.RemoveOnComplete }

// Interval returns the frame period of the current or last run.
func (s *Sprite) Interval() time.Duration { return s.opts.Interval }

// Released reports whether the sprite was detached from its host. A released
// sprite ignores every mutating call.
func (s *Sprite) Released() bool { return s.released }

// Origin returns the cell offset inside the sprite's local space.
func (s *Sprite) Origin() (int, int) { return s.originX, s.originY }

// Bounds returns the local rectangle the sprite paints:
// [OriginX, OriginY, CellWidth, CellHeight].
func (s *Sprite) Bounds() Rect {
	return Rect{s.originX, s.originY, s.sheet.cellWidth, s.sheet.cellHeight}
}

// CellRect returns the sheet rectangle of the current frame.
func (s *Sprite) CellRect() Rect {
	return s.sheet.CellRect(s.frame)
}

// SetFrame selects frame i. Out-of-range indices select frame 0.
func (s *Sprite) SetFrame(i int) {
	if s.checkReleased("SetFrame") {
		return
	}
	s.frame = s.clampFrame(i)
	s.redraw()
}

func (s *Sprite) clampFrame(i int) int {
	if i < 0 || i >= s.frameCount {
		return 0
	}
	return i
}

// Play starts a run from opts.StartFrame. A run already in progress is
// replaced.
func (s *Sprite) Play(opts PlayOptions) {
	if s.checkReleased("Play") {
		return
	}
	if s.host == nil {
		panic(fmt.Sprintf("spritesheet: Play on unbound sprite %q", s.Name))
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if s.state == StatePlaying {
		s.host.Cancel(s.timer)
	}
	s.opts = opts
	s.frame = s.clampFrame(opts.StartFrame)
	s.state = StatePlaying
	s.timer = s.host.Every(opts.Interval, s.Advance)
	s.redraw()
	if s.OnStarted != nil {
		s.OnStarted(s)
	}
}

// Advance steps to the next frame and applies the loop, stop and removal
// policy. It is the timer callback, and can also be called from a host game
// loop to drive the sprite without a timer. Advance does nothing unless the
// sprite is playing.
func (s *Sprite) Advance() {
	if s.released || s.state != StatePlaying {
		return
	}
	s.frame++
	if s.frame < s.frameCount {
		s.redraw()
		return
	}

	s.frame = 0
	if s.opts.Loop {
		s.redraw()
		return
	}

	run := s.timer
	s.host.Cancel(run)
	s.state = StateStopped
	remove := s.opts.RemoveOnComplete
	if !remove {
		s.redraw()
	}
	if s.OnFinished != nil {
		s.OnFinished(s)
	}
	// A run started from OnFinished keeps the sprite.
	if remove && !s.released && s.timer == run {
		s.release()
	}
}

// Stop ends the current run and fires OnFinished. It does nothing when the
// sprite is not playing, and is safe to call from inside a tick.
func (s *Sprite) Stop() {
	if s.released || s.state != StatePlaying {
		return
	}
	s.host.Cancel(s.timer)
	s.state = StateStopped
	if s.OnFinished != nil {
		s.OnFinished(s)
	}
}

// Draw paints the current frame on dst with the sprite's local origin at
// (x, y). Empty cells draw nothing.
func (s *Sprite) Draw(dst Surface, x, y float64) {
	if s.released {
		return
	}
	s.sheet.Draw(dst, s.frame, x+float64(s.originX), y+float64(s.originY), s.Alpha)
}

// release cancels the timer and hands the sprite back to its host. Nothing
// may touch the sprite afterwards.
func (s *Sprite) release() {
	host, h := s.host, s.handle
	s.markReleased()
	if host != nil {
		host.Detach(h)
	}
}

// markReleased flags the sprite as released without calling back into the
// host. Used by a host that removes the sprite itself.
func (s *Sprite) markReleased() {
	if s.state == StatePlaying && s.host != nil {
		s.host.Cancel(s.timer)
		s.state = StateStopped
	}
	s.released = true
	s.OnStarted = nil
	s.OnFinished = nil
	s.host = nil
}

func (s *Sprite) redraw() {
	if s.host != nil {
		s.host.RequestRedraw(s.handle, s.Bounds())
	}
}

// checkReleased reports whether the sprite was released. In debug mode use
// after release panics.
func (s *Sprite) checkReleased(op string) bool {
	if !s.released {
		return false
	}
	if globalDebug {
		panic(fmt.Sprintf("spritesheet debug: %s on released sprite %q", op, s.Name))
	}
	return true
}
