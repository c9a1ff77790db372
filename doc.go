// Package spritesheet plays grid-packed sprite-sheet animations on
// [Ebitengine].
//
// A [Sheet] is a decoded image divided into equally sized cells. A [Sprite]
// is one animated instance of a sheet: it owns a frame index and a repeating
// timer, and on each tick advances the frame, applies its loop/stop/removal
// policy and requests a redraw of its cell. A [Scene] owns sprites by
// [Handle], drives their timers from the game loop and draws them.
//
// # Quick start
//
//	scene := spritesheet.NewScene()
//	_, smoke, err := scene.Load("sprites/smoke_exp.png", 130, 125, spritesheet.SpriteConfig{
//		Name: "smoke", FrameCount: 37, X: 200, Y: 200,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	smoke.Play(spritesheet.PlayOptions{Interval: 50 * time.Millisecond, Loop: true})
//	spritesheet.Run(scene, spritesheet.RunConfig{Title: "Sprites", Width: 640, Height: 480})
//
// For full control, implement [ebiten.Game] yourself and call [Scene.Update]
// and [Scene.Draw] directly.
//
// # Frame mapping
//
// Frames are numbered from the top-left cell, left to right, then top to
// bottom. Frames past the last row start again at row 0. Trailing partial
// cells are ignored, and cells larger than the image give an empty grid that
// draws nothing. Set [Sheet.Mapping] to [MappingIncremental] to reproduce the
// legacy walk that steps one column past the grid edge.
//
// # Playback
//
// When a run passes its last frame the index returns to 0. A looping run
// keeps going; a non-looping run stops, fires [Sprite.OnFinished] and, with
// [PlayOptions.RemoveOnComplete], detaches itself from the scene as its last
// action. Out-of-range frame numbers never fail: they select frame 0.
//
// Everything runs on the game loop goroutine; nothing in this package is safe
// for concurrent use.
//
// [Ebitengine]: https://ebitengine.org
package spritesheet
