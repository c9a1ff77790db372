package spritesheet

import (
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hajimehoshi/ebiten/v2"
)

const tick = time.Second / 60

func smokeSheet() *Sheet { return geometrySheet(1300, 125, 130, 125) }

func TestNewScene(t *testing.T) {
	s := NewScene()
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if s.ClearColor != ColorBlack {
		t.Errorf("ClearColor = %v, want black", s.ClearColor)
	}
	if _, ok := s.DirtyRegion(); ok {
		t.Error("new scene should have no dirty region")
	}
}

func TestSceneAddAndLookup(t *testing.T) {
	s := NewScene()
	h, sp := s.Add(smokeSheet(), SpriteConfig{Name: "smoke", FrameCount: 37})
	if !h.Valid() {
		t.Fatal("handle should be valid")
	}
	got, ok := s.Sprite(h)
	if !ok || got != sp {
		t.Fatalf("Sprite(h) = %v, %v; want the added sprite", got, ok)
	}
	if sp.Handle() != h {
		t.Error("sprite should carry its handle")
	}
	if _, ok := s.Sprite(Handle{}); ok {
		t.Error("zero handle should not resolve")
	}
}

func TestSceneEachInsertionOrder(t *testing.T) {
	s := NewScene()
	for _, name := range []string{"rowonly", "smoke", "blood", "fire"} {
		s.Add(smokeSheet(), SpriteConfig{Name: name, FrameCount: 1})
	}
	var got []string
	s.Each(func(_ Handle, sp *Sprite) { got = append(got, sp.Name) })
	want := []string{"rowonly", "smoke", "blood", "fire"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSceneTimersDriveSprites(t *testing.T) {
	s := NewScene()
	_, sp := s.Add(smokeSheet(), SpriteConfig{FrameCount: 37})
	sp.Play(PlayOptions{Interval: 50 * time.Millisecond, Loop: true})

	for i := 0; i < 7; i++ { // ~117ms
		if err := s.UpdateDelta(tick); err != nil {
			t.Fatal(err)
		}
	}
	if sp.Frame() != 2 {
		t.Errorf("Frame = %d after ~117ms at 50ms, want 2", sp.Frame())
	}
}

func TestSceneRemoveOnCompleteDetaches(t *testing.T) {
	s := NewScene()
	h, sp := s.Add(smokeSheet(), SpriteConfig{Name: "fire", FrameCount: 3})
	other, _ := s.Add(smokeSheet(), SpriteConfig{Name: "other", FrameCount: 3})
	finished := 0
	sp.OnFinished = func(*Sprite) {
		finished++
		if _, ok := s.Sprite(h); !ok {
			t.Error("sprite should still resolve inside OnFinished")
		}
	}
	sp.Play(PlayOptions{Interval: 10 * time.Millisecond, RemoveOnComplete: true})

	if err := s.UpdateDelta(30 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if finished != 1 {
		t.Errorf("finished = %d, want 1", finished)
	}
	if _, ok := s.Sprite(h); ok {
		t.Error("detached sprite should not resolve")
	}
	if !sp.Released() {
		t.Error("sprite should be released")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if _, ok := s.Sprite(other); !ok {
		t.Error("other sprite should be unaffected")
	}
	if s.Timers() != 0 {
		t.Errorf("Timers = %d, want 0", s.Timers())
	}
}

func TestSceneStaleHandleAfterReuse(t *testing.T) {
	s := NewScene()
	h1, _ := s.Add(smokeSheet(), SpriteConfig{FrameCount: 1})
	s.Remove(h1)
	if err := s.UpdateDelta(tick); err != nil {
		t.Fatal(err)
	}
	h2, sp2 := s.Add(smokeSheet(), SpriteConfig{FrameCount: 1})
	if h1 == h2 {
		t.Fatal("reused slot should get a new handle")
	}
	if _, ok := s.Sprite(h1); ok {
		t.Error("stale handle should not resolve")
	}
	if got, ok := s.Sprite(h2); !ok || got != sp2 {
		t.Error("new handle should resolve to the new sprite")
	}
}

func TestSceneRemoveStopsTimer(t *testing.T) {
	s := NewScene()
	h, sp := s.Add(smokeSheet(), SpriteConfig{FrameCount: 5})
	sp.Play(PlayOptions{Loop: true})
	s.Remove(h)
	s.Remove(h) // idempotent
	if s.Timers() != 0 {
		t.Errorf("Timers = %d, want 0", s.Timers())
	}
	if !sp.Released() {
		t.Error("removed sprite should be released")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSceneClear(t *testing.T) {
	s := NewScene()
	for i := 0; i < 3; i++ {
		_, sp := s.Add(smokeSheet(), SpriteConfig{FrameCount: 5})
		sp.Play(PlayOptions{Loop: true})
	}
	s.Clear()
	if s.Len() != 0 || s.Timers() != 0 {
		t.Errorf("after Clear: Len=%d Timers=%d, want 0, 0", s.Len(), s.Timers())
	}
}

func TestSceneLoadFailureDoesNotEnter(t *testing.T) {
	s := NewScene()
	h, sp, err := s.Load(filepath.Join(t.TempDir(), "nope.png"), 130, 125, SpriteConfig{FrameCount: 37})
	if !errors.Is(err, ErrAssetLoad) {
		t.Fatalf("err = %v, want ErrAssetLoad", err)
	}
	if sp != nil || h.Valid() {
		t.Error("failed load should return no sprite and a zero handle")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSceneDirtyRegion(t *testing.T) {
	s := NewScene()
	h, sp := s.Add(smokeSheet(), SpriteConfig{FrameCount: 10, OriginX: -10, OriginY: -10, X: 100, Y: 100})
	got, ok := s.DirtyRegion()
	if !ok {
		t.Fatal("Add should mark the sprite dirty")
	}
	if want := (Rect{90, 90, 130, 125}); got != want {
		t.Errorf("DirtyRegion = %v, want %v", got, want)
	}

	s.Add(smokeSheet(), SpriteConfig{FrameCount: 10, X: 400, Y: 300})
	got, _ = s.DirtyRegion()
	if want := (Rect{90, 90, 440, 335}); got != want {
		t.Errorf("DirtyRegion = %v, want %v", got, want)
	}

	s.RequestRedraw(h, Rect{}) // empty requests are ignored
	sp.SetFrame(3)
	if got2, _ := s.DirtyRegion(); got2 != got {
		t.Errorf("DirtyRegion = %v, want unchanged %v", got2, got)
	}
}

func TestSceneDrawResetsDirty(t *testing.T) {
	s := NewScene()
	s.Add(NewSheet(ebiten.NewImage(1300, 125), 130, 125), SpriteConfig{FrameCount: 10})
	if _, ok := s.DirtyRegion(); !ok {
		t.Fatal("expected a dirty region before Draw")
	}
	s.Draw(ebiten.NewImage(640, 480))
	if _, ok := s.DirtyRegion(); ok {
		t.Error("Draw should reset the dirty region")
	}
}

func TestSceneDrawSkipsEmptyAndRemoved(t *testing.T) {
	s := NewScene()
	s.Add(NewSheet(ebiten.NewImage(1300, 125), 130, 125), SpriteConfig{Name: "drawn", FrameCount: 10, X: 5, Y: 7})
	s.Add(geometrySheet(10, 10, 20, 20), SpriteConfig{Name: "empty", FrameCount: 1})
	h, _ := s.Add(NewSheet(ebiten.NewImage(130, 125), 130, 125), SpriteConfig{Name: "removed", FrameCount: 1})
	s.Remove(h)

	var stats debugStats
	var surf recordingSurface
	s.drawSprites(&surf, &stats)
	if stats.sprites != 2 || stats.drawn != 1 {
		t.Errorf("sprites=%d drawn=%d, want 2, 1", stats.sprites, stats.drawn)
	}
	want := []drawCall{{bounds: image.Rect(0, 0, 130, 125), tx: 5, ty: 7}}
	if diff := cmp.Diff(want, surf.calls, cmp.AllowUnexported(drawCall{})); diff != "" {
		t.Errorf("draw calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSceneUpdateFunc(t *testing.T) {
	s := NewScene()
	calls := 0
	wantErr := errors.New("quit")
	s.SetUpdateFunc(func() error {
		calls++
		return wantErr
	})
	if err := s.UpdateDelta(tick); !errors.Is(err, wantErr) {
		t.Errorf("UpdateDelta err = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSceneAdoptReleasedPanics(t *testing.T) {
	s := NewScene()
	h, sp := s.Add(smokeSheet(), SpriteConfig{FrameCount: 1})
	s.Remove(h)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	s.Adopt(sp)
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	if !s.debug || !globalDebug {
		t.Error("debug should be true")
	}
	s.SetDebugMode(false)
	if s.debug || globalDebug {
		t.Error("debug should be false")
	}
}

func TestSceneAdoptOwnedSpritePanics(t *testing.T) {
	tests := []struct {
		name  string
		setup func() (*Scene, *Sprite)
	}{
		{"owned by another scene", func() (*Scene, *Sprite) {
			_, sp := NewScene().Add(smokeSheet(), SpriteConfig{Name: "smoke", FrameCount: 1})
			return NewScene(), sp
		}},
		{"adopted twice", func() (*Scene, *Sprite) {
			s := NewScene()
			_, sp := s.Add(smokeSheet(), SpriteConfig{Name: "smoke", FrameCount: 1})
			return s, sp
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sp := tt.setup()
			before := s.Len()
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
				if s.Len() != before {
					t.Errorf("Len = %d, want %d", s.Len(), before)
				}
			}()
			s.Adopt(sp)
		})
	}
}

func TestSceneRemoveKeepsSingleOwner(t *testing.T) {
	a, b := NewScene(), NewScene()
	ha, sp := a.Add(smokeSheet(), SpriteConfig{FrameCount: 3})
	func() {
		defer func() { _ = recover() }()
		b.Adopt(sp)
	}()
	a.Remove(ha)
	if a.Len() != 0 || b.Len() != 0 {
		t.Errorf("Len a=%d b=%d, want 0, 0", a.Len(), b.Len())
	}
}

func TestSceneAdoptFreshSprite(t *testing.T) {
	s := NewScene()
	sp := NewSprite(smokeSheet(), SpriteConfig{Name: "fresh", FrameCount: 2})
	h := s.Adopt(sp)
	if got, ok := s.Sprite(h); !ok || got != sp {
		t.Fatal("adopted sprite should resolve")
	}
	if sp.Handle() != h {
		t.Error("sprite should carry its new handle")
	}
}
