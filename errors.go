package spritesheet

import (
	"errors"
	"fmt"
)

// ErrAssetLoad is matched by every *AssetLoadError via errors.Is.
var ErrAssetLoad = errors.New("spritesheet: asset load failed")

// AssetLoadError reports that a sheet image could not be read or decoded.
// A sheet is never partially constructed when this error is returned.
type AssetLoadError struct {
	Source string // file path, or "reader" for DecodeSheet
	Err    error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("spritesheet: load %s: %v", e.Source, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrAssetLoad.
func (e *AssetLoadError) Is(target error) bool {
	return target == ErrAssetLoad
}
