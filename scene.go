package spritesheet

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Handle identifies a sprite owned by a Scene. It stays unique across slot
// reuse; the zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was issued by a Scene. It does not check that the
// sprite is still alive; use Scene.Sprite for that.
func (h Handle) Valid() bool { return h.gen != 0 }

type slot struct {
	sprite  *Sprite
	gen     uint32
	pending bool // detached, reclaimed at the end of Update
}

// Scene is the owning registry of sprites. It drives their timers from its
// update loop, tracks the dirty region and draws live sprites in insertion
// order.
type Scene struct {
	// ClearColor fills the screen before sprites are drawn. A zero alpha
	// leaves the screen untouched.
	ClearColor Color

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	scheduler Scheduler
	slots     []slot
	free      []uint32
	order     []Handle

	dirty    Rect
	hasDirty bool

	updateFunc      func() error
	debug           bool
	screenshotQueue []string
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		ClearColor:    ColorBlack,
		ScreenshotDir: "screenshots",
	}
}

// Add takes ownership of a new sprite built from sheet and cfg.
func (s *Scene) Add(sheet *Sheet, cfg SpriteConfig) (Handle, *Sprite) {
	sp := NewSprite(sheet, cfg)
	return s.Adopt(sp), sp
}

// Adopt takes ownership of a sprite made with NewSprite that has no host yet.
// Adopting a released sprite, or one already owned by a Scene or bound to
// another host, panics.
func (s *Scene) Adopt(sp *Sprite) Handle {
	if sp == nil {
		panic("spritesheet: Adopt nil sprite")
	}
	if sp.released {
		panic(fmt.Sprintf("spritesheet: Adopt released sprite %q", sp.Name))
	}
	if sp.host != nil {
		panic(fmt.Sprintf("spritesheet: Adopt sprite %q that already has a host", sp.Name))
	}
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[idx]
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	sl.sprite = sp
	sl.pending = false
	h := Handle{index: idx, gen: sl.gen}
	s.order = append(s.order, h)
	sp.Bind(s, h)
	s.RequestRedraw(h, sp.Bounds())
	if s.debug {
		debugCheckSpriteCount(s)
	}
	return h
}

// Load decodes the image at path and adds a sprite for it. On failure the
// error is returned and nothing enters the scene.
func (s *Scene) Load(path string, cellWidth, cellHeight int, cfg SpriteConfig) (Handle, *Sprite, error) {
	sheet, err := LoadSheet(path, cellWidth, cellHeight)
	if err != nil {
		return Handle{}, nil, err
	}
	h, sp := s.Add(sheet, cfg)
	return h, sp, nil
}

// LoadFS is like Load but reads from fsys.
func (s *Scene) LoadFS(fsys fs.FS, path string, cellWidth, cellHeight int, cfg SpriteConfig) (Handle, *Sprite, error) {
	sheet, err := LoadSheetFS(fsys, path, cellWidth, cellHeight)
	if err != nil {
		return Handle{}, nil, err
	}
	h, sp := s.Add(sheet, cfg)
	return h, sp, nil
}

// Sprite returns the live sprite for h. Detached and removed sprites do not
// resolve, even before their slot is reclaimed.
func (s *Scene) Sprite(h Handle) (*Sprite, bool) {
	sl := s.lookup(h)
	if sl == nil || sl.pending {
		return nil, false
	}
	return sl.sprite, true
}

func (s *Scene) lookup(h Handle) *slot {
	if !h.Valid() || int(h.index) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[h.index]
	if sl.gen != h.gen || sl.sprite == nil {
		return nil
	}
	return sl
}

// Remove stops and releases the sprite for h. Unknown handles are ignored.
func (s *Scene) Remove(h Handle) {
	sl := s.lookup(h)
	if sl == nil || sl.pending {
		return
	}
	s.markDirty(sceneRect(sl.sprite))
	sl.sprite.markReleased()
	sl.pending = true
}

// Clear removes every sprite.
func (s *Scene) Clear() {
	for _, h := range s.order {
		s.Remove(h)
	}
	s.reclaim()
}

// Len returns the number of live sprites.
func (s *Scene) Len() int {
	n := 0
	for _, h := range s.order {
		if _, ok := s.Sprite(h); ok {
			n++
		}
	}
	return n
}

// Each calls fn for every live sprite in insertion order.
func (s *Scene) Each(fn func(Handle, *Sprite)) {
	for _, h := range s.order {
		if sp, ok := s.Sprite(h); ok {
			fn(h, sp)
		}
	}
}

// --- Host ---

// Every arms a repeating timer on the scene's scheduler.
func (s *Scene) Every(interval time.Duration, fn func()) TimerID {
	return s.scheduler.Every(interval, fn)
}

// Cancel disarms a timer.
func (s *Scene) Cancel(id TimerID) {
	s.scheduler.Cancel(id)
}

// RequestRedraw merges the sprite-local rectangle r, placed at the sprite's
// position, into the scene's dirty region.
func (s *Scene) RequestRedraw(h Handle, r Rect) {
	sl := s.lookup(h)
	if sl == nil || sl.pending || r.Empty() {
		return
	}
	s.markDirty(r.Offset(int(sl.sprite.X), int(sl.sprite.Y)))
}

// Detach schedules the sprite for h for destruction. It stops resolving at
// once; the slot is reclaimed at the end of the current Update.
func (s *Scene) Detach(h Handle) {
	sl := s.lookup(h)
	if sl == nil || sl.pending {
		return
	}
	s.markDirty(sceneRect(sl.sprite))
	sl.pending = true
	if !sl.sprite.released {
		sl.sprite.markReleased()
	}
}

// sceneRect returns the sprite's painted rectangle in scene space.
func sceneRect(sp *Sprite) Rect {
	return sp.Bounds().Offset(int(sp.X), int(sp.Y))
}

func (s *Scene) markDirty(r Rect) {
	if r.Empty() {
		return
	}
	if !s.hasDirty {
		s.dirty = r
		s.hasDirty = true
		return
	}
	s.dirty = s.dirty.Union(r)
}

// DirtyRegion returns the union of regions requested for redraw since the
// last Draw.
func (s *Scene) DirtyRegion() (Rect, bool) {
	return s.dirty, s.hasDirty
}

// Timers returns the number of armed timers.
func (s *Scene) Timers() int {
	return s.scheduler.Len()
}

// --- Loop ---

// SetUpdateFunc sets a callback run at the end of every Update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// Update advances the scene by one tick of the Ebitengine loop.
func (s *Scene) Update() error {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return s.UpdateDelta(time.Second / time.Duration(tps))
}

// UpdateDelta advances every sprite timer by dt, reclaims detached sprites and
// runs the update callback.
func (s *Scene) UpdateDelta(dt time.Duration) error {
	s.scheduler.Advance(dt)
	s.reclaim()
	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

// reclaim frees the slots of detached sprites and compacts the draw order.
func (s *Scene) reclaim() {
	kept := s.order[:0]
	for _, h := range s.order {
		sl := &s.slots[h.index]
		if sl.gen == h.gen && sl.pending {
			sl.sprite = nil
			sl.pending = false
			s.free = append(s.free, h.index)
			continue
		}
		kept = append(kept, h)
	}
	s.order = kept
}

// Draw clears the screen, paints live sprites in insertion order and resets
// the dirty region.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
		stats.dirty, stats.hasDirty = s.dirty, s.hasDirty
	}
	s.drawSprites(screen, &stats)
	s.dirty = Rect{}
	s.hasDirty = false
	if s.debug {
		stats.drawTime = time.Since(t0)
		stats.timers = s.scheduler.Len()
		s.debugLog(stats)
	}
	s.flushScreenshots(screen)
}

func (s *Scene) drawSprites(dst Surface, stats *debugStats) {
	for _, h := range s.order {
		sp, ok := s.Sprite(h)
		if !ok {
			continue
		}
		stats.sprites++
		if sp.CellRect().Empty() {
			continue
		}
		sp.Draw(dst, sp.X, sp.Y)
		stats.drawn++
	}
}

// SetDebugMode enables or disables debug mode. When enabled, use of a
// released sprite panics and per-frame stats are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so sprites, which
// hold no Scene pointer once released, can check it cheaply.
var globalDebug bool
