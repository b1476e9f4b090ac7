// Package tiles reassembles screenshots that the device captured as a grid
// of separate tile images.
package tiles

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/bianoble/shotpull/internal/manifest"
	"github.com/bianoble/shotpull/internal/sandbox"
)

// FileName returns the file name of tile (x, y) of the named screenshot.
// Tile (0, 0) uses the bare name, so single-tile screenshots are name.png.
func FileName(name string, x, y int) string {
	if x == 0 && y == 0 {
		return name + ".png"
	}
	return fmt.Sprintf("%s_%d_%d.png", name, x, y)
}

// FileNames lists every tile file of a screenshot, row by row.
func FileNames(s manifest.Screenshot) []string {
	names := make([]string, 0, s.TileWidth*s.TileHeight)
	for y := 0; y < s.TileHeight; y++ {
		for x := 0; x < s.TileWidth; x++ {
			names = append(names, FileName(s.Name, x, y))
		}
	}
	return names
}

// MissingTileError reports a tile referenced by the manifest that is not on
// local disk.
type MissingTileError struct {
	Screenshot string
	X, Y       int
	Path       string
}

func (e *MissingTileError) Error() string {
	return fmt.Sprintf("screenshot %s: tile (%d, %d) not found at %s", e.Screenshot, e.X, e.Y, e.Path)
}

// Assemble stitches the tiles of s found in tileDir into one canvas.
//
// The canvas is as wide as the row-0 tiles together and as tall as the
// column-0 tiles together. Edge tiles are clipped on the device, so each
// tile is placed at the running sum of the preceding tiles' sizes rather
// than at a multiple of a fixed tile size.
func Assemble(s manifest.Screenshot, tileDir string) (*image.NRGBA, error) {
	if s.TileWidth < 1 || s.TileHeight < 1 {
		return nil, fmt.Errorf("screenshot %s: invalid tile grid %dx%d", s.Name, s.TileWidth, s.TileHeight)
	}

	grid := make([][]image.Image, s.TileWidth)
	for x := range grid {
		grid[x] = make([]image.Image, s.TileHeight)
		for y := range grid[x] {
			img, err := openTile(s.Name, x, y, tileDir)
			if err != nil {
				return nil, err
			}
			grid[x][y] = img
		}
	}

	xOffsets := make([]int, s.TileWidth)
	width := 0
	for x := 0; x < s.TileWidth; x++ {
		xOffsets[x] = width
		width += grid[x][0].Bounds().Dx()
	}

	yOffsets := make([]int, s.TileHeight)
	height := 0
	for y := 0; y < s.TileHeight; y++ {
		yOffsets[y] = height
		height += grid[0][y].Bounds().Dy()
	}

	canvas := imaging.New(width, height, color.NRGBA{})
	for x := 0; x < s.TileWidth; x++ {
		for y := 0; y < s.TileHeight; y++ {
			tile := grid[x][y]
			b := tile.Bounds()
			dst := image.Rect(xOffsets[x], yOffsets[y], xOffsets[x]+b.Dx(), yOffsets[y]+b.Dy())
			draw.Draw(canvas, dst, tile, b.Min, draw.Src)
		}
	}

	return canvas, nil
}

func openTile(name string, x, y int, dir string) (image.Image, error) {
	path := filepath.Join(dir, FileName(name, x, y))
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingTileError{Screenshot: name, X: x, Y: y, Path: path}
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: reading tile (%d, %d): %w", name, x, y, err)
	}
	return img, nil
}

// Save writes img as a PNG at path, replacing any existing file.
func Save(img image.Image, path string) error {
	return sandbox.WriteAtomic(path, 0644, func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.PNG)
	})
}

// AssembleTo assembles s from tileDir and saves it as name.png in outDir.
// Returns the written path.
func AssembleTo(s manifest.Screenshot, tileDir, outDir string) (string, error) {
	img, err := Assemble(s, tileDir)
	if err != nil {
		return "", err
	}
	out := filepath.Join(outDir, s.Name+".png")
	if err := Save(img, out); err != nil {
		return "", fmt.Errorf("saving %s: %w", out, err)
	}
	return out, nil
}
