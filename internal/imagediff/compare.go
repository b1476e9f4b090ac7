// Package imagediff compares an assembled screenshot against its recorded
// baseline and writes an annotated diff image when they differ.
package imagediff

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/bianoble/shotpull/internal/sandbox"
)

// Kind classifies a comparison.
type Kind int

const (
	Match Kind = iota
	SizeMismatch
	ContentMismatch
)

func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case SizeMismatch:
		return "size mismatch"
	case ContentMismatch:
		return "content mismatch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SizeDirection says how the actual image differs in size from the expected
// one. It is only set for SizeMismatch results.
type SizeDirection int

const (
	NoDirection SizeDirection = iota
	Longer                    // actual is taller
	Shorter                   // actual is shorter
	Wider                     // same height, actual is wider
	Narrower                  // same height, actual is narrower
)

func (d SizeDirection) String() string {
	switch d {
	case Longer:
		return "longer"
	case Shorter:
		return "shorter"
	case Wider:
		return "wider"
	case Narrower:
		return "narrower"
	default:
		return ""
	}
}

// Result is the outcome of one comparison.
type Result struct {
	Kind      Kind
	Direction SizeDirection

	// Region is the outlined rectangle: the area only the larger image
	// covers for SizeMismatch, the bounding box of differing pixels for
	// ContentMismatch. Empty on Match.
	Region image.Rectangle

	ExpectedSize image.Point
	ActualSize   image.Point

	// DiffPath is where the annotated image was written, if anywhere.
	DiffPath string
}

// Matched reports whether the images were pixel-identical.
func (r *Result) Matched() bool {
	return r.Kind == Match
}

func (r *Result) String() string {
	switch r.Kind {
	case Match:
		return "match"
	case SizeMismatch:
		return fmt.Sprintf("size mismatch: actual %dx%d is %s than expected %dx%d",
			r.ActualSize.X, r.ActualSize.Y, r.Direction, r.ExpectedSize.X, r.ExpectedSize.Y)
	default:
		return fmt.Sprintf("content mismatch in %v", r.Region)
	}
}

// Options configures Compare.
type Options struct {
	// DiffPath is where the annotated image is written on a mismatch.
	// Empty means no artifact.
	DiffPath string
}

// Compare loads both PNG files and compares them exactly.
func Compare(expectedPath, actualPath string, opts Options) (*Result, error) {
	expected, err := imaging.Open(expectedPath)
	if err != nil {
		return nil, fmt.Errorf("opening expected image: %w", err)
	}
	actual, err := imaging.Open(actualPath)
	if err != nil {
		return nil, fmt.Errorf("opening actual image: %w", err)
	}
	return CompareImages(expected, actual, opts)
}

// CompareImages is Compare for images already in memory.
func CompareImages(expected, actual image.Image, opts Options) (*Result, error) {
	exp := imaging.Clone(expected)
	act := imaging.Clone(actual)

	res := &Result{
		ExpectedSize: exp.Bounds().Size(),
		ActualSize:   act.Bounds().Size(),
	}

	var base *image.NRGBA
	if res.ExpectedSize != res.ActualSize {
		res.Kind = SizeMismatch
		res.Direction, res.Region = classifySize(res.ExpectedSize, res.ActualSize)
		base = act
		if res.Direction == Shorter || res.Direction == Narrower {
			base = exp
		}
	} else {
		box := diffBounds(exp, act)
		if box.Empty() {
			res.Kind = Match
			return res, nil
		}
		res.Kind = ContentMismatch
		res.Region = box
		base = act
	}

	if opts.DiffPath != "" {
		if err := writeOutlined(base, res.Region, opts.DiffPath); err != nil {
			return nil, fmt.Errorf("writing diff image: %w", err)
		}
		res.DiffPath = opts.DiffPath
	}
	return res, nil
}

// classifySize decides the direction of a size mismatch and the region of
// the larger image the smaller one does not cover. Height is checked first.
func classifySize(expected, actual image.Point) (SizeDirection, image.Rectangle) {
	switch {
	case actual.Y > expected.Y:
		return Longer, image.Rect(0, expected.Y, actual.X, actual.Y)
	case actual.Y < expected.Y:
		return Shorter, image.Rect(0, actual.Y, expected.X, expected.Y)
	case actual.X > expected.X:
		return Wider, image.Rect(expected.X, 0, actual.X, actual.Y)
	default:
		return Narrower, image.Rect(actual.X, 0, expected.X, expected.Y)
	}
}

// diffBounds returns the smallest rectangle holding every pixel that differs
// between a and b, which must be the same size. Empty when none differ.
func diffBounds(a, b *image.NRGBA) image.Rectangle {
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	minX, minY, maxX, maxY := w, h, -1, -1

	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w*4]
		rb := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			if ra[i] == rb[i] && ra[i+1] == rb[i+1] && ra[i+2] == rb[i+2] && ra[i+3] == rb[i+3] {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// writeOutlined saves a copy of img with a one pixel red border drawn just
// inside r.
func writeOutlined(img image.Image, r image.Rectangle, path string) error {
	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 0, 0)

	// Edges are filled as pixel-aligned strips so they cover whole pixels,
	// including for one pixel wide regions.
	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())
	dc.DrawRectangle(x, y, w, 1)
	dc.DrawRectangle(x, y+h-1, w, 1)
	dc.DrawRectangle(x, y, 1, h)
	dc.DrawRectangle(x+w-1, y, 1, h)
	dc.Fill()

	return sandbox.WriteAtomic(path, 0644, func(out io.Writer) error {
		return dc.EncodePNG(out)
	})
}
