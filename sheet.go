package spritesheet

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/fs"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// GridMapping selects how a linear frame index is converted to a grid cell.
type GridMapping uint8

const (
	// MappingRowMajor walks cells left to right, then top to bottom:
	// row = frame / Columns, col = frame % Columns. A row past the last one
	// resets to row 0 instead of wrapping by remainder.
	MappingRowMajor GridMapping = iota

	// MappingIncremental reproduces the legacy walk where the column counter
	// runs 0..Columns inclusive before stepping the row, and the row counter
	// runs 0..Rows inclusive before resetting. Cells at col == Columns or
	// row == Rows fall outside the image and draw clipped or empty.
	MappingIncremental
)

// Surface is a drawing target. *ebiten.Image satisfies it.
type Surface interface {
	DrawImage(img *ebiten.Image, options *ebiten.DrawImageOptions)
}

// Sheet is a decoded image divided into a fixed grid of equally sized cells.
// It is immutable after construction and may be shared by many sprites.
type Sheet struct {
	image      *ebiten.Image
	width      int
	height     int
	cellWidth  int
	cellHeight int
	rows       int
	columns    int

	// Mapping selects the frame-to-cell conversion. Defaults to MappingRowMajor.
	Mapping GridMapping
}

// NewSheet wraps an already decoded image. Cells larger than the image, or
// non-positive cell sizes, produce an empty grid (zero rows or columns); no
// error is reported for them.
func NewSheet(img *ebiten.Image, cellWidth, cellHeight int) *Sheet {
	if img == nil {
		panic("spritesheet: NewSheet with nil image")
	}
	b := img.Bounds()
	return newSheet(img, b.Dx(), b.Dy(), cellWidth, cellHeight)
}

func newSheet(img *ebiten.Image, w, h, cellWidth, cellHeight int) *Sheet {
	s := &Sheet{
		image:      img,
		width:      w,
		height:     h,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
	}
	if cellWidth > 0 && cellHeight > 0 {
		s.columns = w / cellWidth
		s.rows = h / cellHeight
	}
	return s
}

// LoadSheet reads and decodes the image file at path.
func LoadSheet(path string, cellWidth, cellHeight int) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AssetLoadError{Source: path, Err: err}
	}
	return decodeSheet(path, bytes.NewReader(data), cellWidth, cellHeight)
}

// LoadSheetFS reads and decodes the image at path within fsys.
func LoadSheetFS(fsys fs.FS, path string, cellWidth, cellHeight int) (*Sheet, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, &AssetLoadError{Source: path, Err: err}
	}
	return decodeSheet(path, bytes.NewReader(data), cellWidth, cellHeight)
}

// DecodeSheet decodes an image stream in any registered format (PNG, JPEG,
// GIF, BMP, WebP).
func DecodeSheet(r io.Reader, cellWidth, cellHeight int) (*Sheet, error) {
	return decodeSheet("reader", r, cellWidth, cellHeight)
}

func decodeSheet(source string, r io.Reader, cellWidth, cellHeight int) (*Sheet, error) {
	img, decoded, err := ebitenutil.NewImageFromReader(r)
	if err != nil {
		return nil, &AssetLoadError{Source: source, Err: err}
	}
	b := decoded.Bounds()
	return newSheet(img, b.Dx(), b.Dy(), cellWidth, cellHeight), nil
}

// Image returns the underlying sheet image.
func (s *Sheet) Image() *ebiten.Image { return s.image }

// Size returns the sheet image size in pixels.
func (s *Sheet) Size() (int, int) { return s.width, s.height }

// CellWidth returns the width of a single cell.
func (s *Sheet) CellWidth() int { return s.cellWidth }

// CellHeight returns the height of a single cell.
func (s *Sheet) CellHeight() int { return s.cellHeight }

// Rows returns the number of whole cell rows. Trailing partial rows are ignored.
func (s *Sheet) Rows() int { return s.rows }

// Columns returns the number of whole cell columns. Trailing partial columns
// are ignored.
func (s *Sheet) Columns() int { return s.columns }

// Cells returns Rows*Columns.
func (s *Sheet) Cells() int { return s.rows * s.columns }

// Cell returns the grid coordinate of frame. Negative frames map to frame 0.
// ok is false when the grid is empty.
func (s *Sheet) Cell(frame int) (row, col int, ok bool) {
	if s.rows == 0 || s.columns == 0 {
		return 0, 0, false
	}
	if frame < 0 {
		frame = 0
	}
	switch s.Mapping {
	case MappingIncremental:
		// Closed form of stepping col until it exceeds columns, then
		// stepping row until it exceeds rows.
		col = frame % (s.columns + 1)
		row = (frame / (s.columns + 1)) % (s.rows + 1)
	default:
		row = frame / s.columns
		col = frame % s.columns
		if row >= s.rows {
			row = 0
		}
	}
	return row, col, true
}

// CellRect returns the pixel rectangle of frame within the sheet image. An
// empty grid yields the zero Rect.
func (s *Sheet) CellRect(frame int) Rect {
	row, col, ok := s.Cell(frame)
	if !ok {
		return Rect{}
	}
	return Rect{
		X:      col * s.cellWidth,
		Y:      row * s.cellHeight,
		Width:  s.cellWidth,
		Height: s.cellHeight,
	}
}

// clippedRect returns CellRect(frame) intersected with the image bounds.
func (s *Sheet) clippedRect(frame int) image.Rectangle {
	r := s.CellRect(frame)
	if r.Empty() {
		return image.Rectangle{}
	}
	return r.Image().Intersect(image.Rect(0, 0, s.width, s.height))
}

// SubImage returns the image of frame, or nil when the cell is empty or lies
// outside the sheet.
func (s *Sheet) SubImage(frame int) *ebiten.Image {
	r := s.clippedRect(frame)
	if r.Empty() {
		return nil
	}
	return s.image.SubImage(r).(*ebiten.Image)
}

// Draw copies the cell of frame onto dst with its top-left corner at (x, y),
// scaled by alpha. Empty cells draw nothing.
func (s *Sheet) Draw(dst Surface, frame int, x, y, alpha float64) {
	r := s.clippedRect(frame)
	if r.Empty() || alpha <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(x, y)
	if alpha < 1 {
		op.ColorScale.ScaleAlpha(float32(alpha))
	}
	dst.DrawImage(s.image.SubImage(r).(*ebiten.Image), &op)
}
