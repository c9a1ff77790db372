package spritesheet

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates up to two float64 fields of a Sprite. Create one with
// TweenAlpha or TweenPosition and call Update(dt) each frame; values are
// written to the sprite and a redraw is requested. If the sprite is released
// the tween stops immediately.
//
// Tweens are not owned by the Scene; callers update them.
type Tween struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *Sprite
	Done   bool
}

// Update advances the tween by dt seconds.
func (t *Tween) Update(dt float32) {
	if t.Done {
		return
	}
	if t.target.Released() {
		t.Done = true
		return
	}

	before := sceneRect(t.target)
	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(dt)
		*t.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	t.Done = allDone

	if host := t.target.host; host != nil {
		// Position tweens move the painted area; cover where it was too.
		host.RequestRedraw(t.target.handle, before.Offset(-int(t.target.X), -int(t.target.Y)))
		host.RequestRedraw(t.target.handle, t.target.Bounds())
	}
}

// TweenAlpha creates a Tween that animates sprite.Alpha to the target value
// over duration seconds using the easing function.
func TweenAlpha(sprite *Sprite, to float64, duration float32, fn ease.TweenFunc) *Tween {
	t := &Tween{count: 1, target: sprite}
	t.tweens[0] = gween.New(float32(sprite.Alpha), float32(to), duration, fn)
	t.fields[0] = &sprite.Alpha
	return t
}

// TweenPosition creates a Tween that animates sprite.X and sprite.Y to the
// given scene coordinates over duration seconds using the easing function.
func TweenPosition(sprite *Sprite, toX, toY float64, duration float32, fn ease.TweenFunc) *Tween {
	t := &Tween{count: 2, target: sprite}
	t.tweens[0] = gween.New(float32(sprite.X), float32(toX), duration, fn)
	t.tweens[1] = gween.New(float32(sprite.Y), float32(toY), duration, fn)
	t.fields[0] = &sprite.X
	t.fields[1] = &sprite.Y
	return t
}
