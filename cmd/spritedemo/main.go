// Spritedemo opens a window and plays the sprite sheets described by a YAML
// scene file. Without -config it plays the built-in scene: two looping
// explosions, a one-shot explosion that fades out when it ends, and one that
// removes itself from the scene when it ends.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/spritesheet"
	"github.com/phanxgames/spritesheet/internal/config"
	"github.com/phanxgames/spritesheet/internal/watch"
)

const fadeSeconds = 1.0

type demo struct {
	scene  *spritesheet.Scene
	path   string
	tweens []*spritesheet.Tween

	events  <-chan string
	errs    <-chan error
	shot    time.Duration
	elapsed time.Duration
	captured bool
}

func main() {
	cfgPath := flag.String("config", "", "scene file (YAML); built-in scene when empty")
	debug := flag.Bool("debug", false, "enable debug mode")
	watchCfg := flag.Bool("watch", false, "reload the scene when the config file changes")
	shot := flag.Duration("screenshot", 0, "capture a screenshot after this long (0 disables)")
	flag.Parse()

	sc := config.Default()
	if *cfgPath != "" {
		var err error
		sc, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	scene := spritesheet.NewScene()
	scene.SetDebugMode(*debug)
	d := &demo{scene: scene, path: *cfgPath}
	d.populate(sc)

	if *watchCfg {
		if *cfgPath == "" {
			log.Fatal("-watch requires -config")
		}
		w, err := watch.New(*cfgPath)
		if err != nil {
			log.Fatalf("watch %s: %v", *cfgPath, err)
		}
		defer w.Close()
		d.events, d.errs = w.Events, w.Errors
	}
	d.shot = *shot

	scene.SetUpdateFunc(d.update)
	if err := spritesheet.Run(scene, sc.Window.RunConfig()); err != nil {
		log.Fatal(err)
	}
}

// populate loads sc into the scene. Sprites that fail to load are logged and
// left out.
func (d *demo) populate(sc *config.Scene) {
	if err := sc.Populate(d.scene); err != nil {
		log.Printf("spritedemo: %v", err)
	}
	d.scene.Each(func(_ spritesheet.Handle, sp *spritesheet.Sprite) {
		sp.OnFinished = d.fadeOut
	})
}

// fadeOut fades a finished one-shot sprite that stays in the scene.
func (d *demo) fadeOut(sp *spritesheet.Sprite) {
	if sp.Released() || sp.RemovesOnComplete() {
		return
	}
	d.tweens = append(d.tweens, spritesheet.TweenAlpha(sp, 0, fadeSeconds, ease.OutQuad))
}

func (d *demo) update() error {
	d.reload()

	tick := tickDuration(ebiten.TPS())
	d.advance(tick)
	return nil
}

// advance moves tweens and the screenshot clock forward by one tick.
func (d *demo) advance(tick time.Duration) {
	dt := float32(tick.Seconds())
	kept := d.tweens[:0]
	for _, tw := range d.tweens {
		tw.Update(dt)
		if !tw.Done {
			kept = append(kept, tw)
		}
	}
	d.tweens = kept

	d.elapsed += tick
	if d.shot > 0 && !d.captured && d.elapsed >= d.shot {
		d.captured = true
		d.scene.Screenshot("spritedemo")
	}
}

// tickDuration returns the length of one update at tps ticks per second,
// the same step Scene.Update uses.
func tickDuration(tps int) time.Duration {
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return time.Second / time.Duration(tps)
}

// reload rebuilds the scene when the watcher reports a change. A file that
// fails to parse keeps the current scene.
func (d *demo) reload() {
	select {
	case err, ok := <-d.errs:
		if ok {
			log.Printf("spritedemo: watch: %v", err)
		}
	default:
	}

	select {
	case _, ok := <-d.events:
		if !ok {
			d.events = nil
			return
		}
	default:
		return
	}

	sc, err := config.Load(d.path)
	if err != nil {
		log.Printf("spritedemo: reload: %v", err)
		return
	}
	d.scene.Clear()
	d.tweens = d.tweens[:0]
	d.populate(sc)
	log.Printf("spritedemo: reloaded %s (%d sprites)", d.path, d.scene.Len())
}
