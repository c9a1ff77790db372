// Package config loads scene descriptions from YAML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/spritesheet"
)

//go:embed default.yaml
var defaultYAML []byte

// Default window settings applied when the file omits them.
const (
	DefaultTitle      = "Sprite sheets"
	DefaultWidth      = 640
	DefaultHeight     = 480
	DefaultBackground = "#000000"
)

// Scene is the top-level document.
type Scene struct {
	Window  Window   `yaml:"window"`
	Sprites []Sprite `yaml:"sprites"`

	// BaseDir resolves relative image paths. Set by Load to the directory of
	// the file.
	BaseDir string `yaml:"-"`
}

// Window describes the demo window.
type Window struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
	ShowFPS    bool   `yaml:"show_fps"`
}

// Sprite describes one sprite sheet instance.
type Sprite struct {
	Name     string `yaml:"name"`
	Image    string `yaml:"image"`
	Cell     Size   `yaml:"cell"`
	Frames   int    `yaml:"frames"`
	Start    int    `yaml:"start"`
	Origin   Point  `yaml:"origin"`
	Position Point  `yaml:"position"`
	Mapping  string `yaml:"mapping"`
	Play     *Play  `yaml:"play"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Play starts playback as soon as the sprite is added.
type Play struct {
	IntervalMS int  `yaml:"interval_ms"`
	Loop       bool `yaml:"loop"`
	Start      int  `yaml:"start"`
	Remove     bool `yaml:"remove"`
}

// Load reads and validates the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	sc.BaseDir = filepath.Dir(path)
	return sc, nil
}

// Default returns the built-in scene: four explosion sheets laid out on the
// default window. Image paths are relative to the working directory.
func Default() *Scene {
	sc, err := Parse(defaultYAML)
	if err != nil {
		panic("config: built-in scene: " + err.Error())
	}
	sc.BaseDir = "."
	return sc
}

// Parse decodes a YAML document, fills defaults and validates it.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	sc.applyDefaults()
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scene) applyDefaults() {
	if sc.Window.Title == "" {
		sc.Window.Title = DefaultTitle
	}
	if sc.Window.Width == 0 {
		sc.Window.Width = DefaultWidth
	}
	if sc.Window.Height == 0 {
		sc.Window.Height = DefaultHeight
	}
	if sc.Window.Background == "" {
		sc.Window.Background = DefaultBackground
	}
	for i := range sc.Sprites {
		sp := &sc.Sprites[i]
		if sp.Name == "" {
			sp.Name = strings.TrimSuffix(filepath.Base(sp.Image), filepath.Ext(sp.Image))
		}
		if sp.Play != nil && sp.Play.IntervalMS == 0 {
			sp.Play.IntervalMS = int(spritesheet.DefaultInterval / time.Millisecond)
		}
	}
}

func (sc *Scene) validate() error {
	var errs []error
	if sc.Window.Width < 0 || sc.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window: negative size %dx%d", sc.Window.Width, sc.Window.Height))
	}
	if _, err := colorful.Hex(sc.Window.Background); err != nil {
		errs = append(errs, fmt.Errorf("window: background %q: %w", sc.Window.Background, err))
	}
	names := make(map[string]bool, len(sc.Sprites))
	for i, sp := range sc.Sprites {
		if sp.Image == "" {
			errs = append(errs, fmt.Errorf("sprites[%d]: image is required", i))
		}
		if names[sp.Name] {
			errs = append(errs, fmt.Errorf("sprites[%d]: duplicate name %q", i, sp.Name))
		}
		names[sp.Name] = true
		if _, err := parseMapping(sp.Mapping); err != nil {
			errs = append(errs, fmt.Errorf("sprites[%d]: %w", i, err))
		}
		if sp.Play != nil && sp.Play.IntervalMS < 0 {
			errs = append(errs, fmt.Errorf("sprites[%d]: negative interval_ms %d", i, sp.Play.IntervalMS))
		}
	}
	return errors.Join(errs...)
}

func parseMapping(s string) (spritesheet.GridMapping, error) {
	switch strings.ToLower(s) {
	case "", "row-major":
		return spritesheet.MappingRowMajor, nil
	case "incremental":
		return spritesheet.MappingIncremental, nil
	default:
		return 0, fmt.Errorf("unknown mapping %q", s)
	}
}

// ClearColor returns the parsed window background.
func (w Window) ClearColor() spritesheet.Color {
	c, err := colorful.Hex(w.Background)
	if err != nil {
		return spritesheet.ColorBlack
	}
	return spritesheet.Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// RunConfig returns the window settings for spritesheet.Run.
func (w Window) RunConfig() spritesheet.RunConfig {
	return spritesheet.RunConfig{
		Title:   w.Title,
		Width:   w.Width,
		Height:  w.Height,
		ShowFPS: w.ShowFPS,
	}
}

// SpriteConfig converts the entry to a spritesheet.SpriteConfig.
func (sp Sprite) SpriteConfig() spritesheet.SpriteConfig {
	return spritesheet.SpriteConfig{
		Name:       sp.Name,
		FrameCount: sp.Frames,
		StartFrame: sp.Start,
		OriginX:    int(sp.Origin.X),
		OriginY:    int(sp.Origin.Y),
		X:          sp.Position.X,
		Y:          sp.Position.Y,
	}
}

// PlayOptions converts the play block. ok is false when the sprite is static.
func (sp Sprite) PlayOptions() (opts spritesheet.PlayOptions, ok bool) {
	if sp.Play == nil {
		return spritesheet.PlayOptions{}, false
	}
	return spritesheet.PlayOptions{
		Interval:         time.Duration(sp.Play.IntervalMS) * time.Millisecond,
		Loop:             sp.Play.Loop,
		StartFrame:       sp.Play.Start,
		RemoveOnComplete: sp.Play.Remove,
	}, true
}

// Populate loads every sprite into scene and starts the ones with a play
// block. Sprites with an unknown mapping or an image that fails to load are
// skipped; their errors are joined into the returned error.
func (sc *Scene) Populate(scene *spritesheet.Scene) error {
	scene.ClearColor = sc.Window.ClearColor()
	var errs []error
	for _, sp := range sc.Sprites {
		path := sp.Image
		if !filepath.IsAbs(path) && sc.BaseDir != "" {
			path = filepath.Join(sc.BaseDir, path)
		}
		mapping, err := parseMapping(sp.Mapping)
		if err != nil {
			errs = append(errs, fmt.Errorf("sprite %q: %w", sp.Name, err))
			continue
		}
		sheet, err := spritesheet.LoadSheet(path, sp.Cell.Width, sp.Cell.Height)
		if err != nil {
			errs = append(errs, fmt.Errorf("sprite %q: %w", sp.Name, err))
			continue
		}
		sheet.Mapping = mapping
		_, s := scene.Add(sheet, sp.SpriteConfig())
		if opts, ok := sp.PlayOptions(); ok {
			s.Play(opts)
		}
	}
	return errors.Join(errs...)
}
