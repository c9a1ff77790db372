package spritesheet

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame draw metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	drawTime time.Duration
	sprites  int
	drawn    int
	timers   int
	dirty    Rect
	hasDirty bool
}

// debugLog prints per-frame stats to stderr.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	dirty := "none"
	if stats.hasDirty {
		d := stats.dirty
		dirty = fmt.Sprintf("%d,%d %dx%d", d.X, d.Y, d.Width, d.Height)
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[spritesheet] draw: %v | sprites: %d | drawn: %d | timers: %d | dirty: %s\n",
		stats.drawTime, stats.sprites, stats.drawn, stats.timers, dirty)
}

// debugMaxSprites is the live sprite count above which Adopt warns.
const debugMaxSprites = 10000

func debugCheckSpriteCount(s *Scene) {
	if n := len(s.order); n > debugMaxSprites {
		_, _ = fmt.Fprintf(os.Stderr, "[spritesheet] warning: scene holds %d sprites (threshold %d)\n",
			n, debugMaxSprites)
	}
}
