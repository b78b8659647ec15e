package render

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"iter"
	"math"

	"github.com/hupe1980/lloyd/snapshot"
)

var (
	background  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	unassigned  = color.RGBA{0xb0, 0xb0, 0xb0, 0xff}
	centroidCol = color.RGBA{0xe0, 0x10, 0x10, 0xff}
)

// clusterColours cycles for k larger than its length.
var clusterColours = []color.Color{
	color.RGBA{0x44, 0x01, 0x54, 0xff},
	color.RGBA{0x3b, 0x52, 0x8b, 0xff},
	color.RGBA{0x21, 0x90, 0x8d, 0xff},
	color.RGBA{0x5d, 0xc9, 0x63, 0xff},
	color.RGBA{0xfd, 0xe7, 0x25, 0xff},
	color.RGBA{0xf8, 0x96, 0x40, 0xff},
	color.RGBA{0x8e, 0x44, 0xad, 0xff},
	color.RGBA{0x16, 0xa0, 0x85, 0xff},
}

const (
	idxBackground = 0
	idxUnassigned = 1
	idxCentroid   = 2
	idxFirstLabel = 3
)

// Palette is the palette shared by every frame.
var Palette = func() color.Palette {
	p := color.Palette{background, unassigned, centroidCol}
	return append(p, clusterColours...)
}()

// ErrNoFrames is returned by WriteGIF for an empty history.
var ErrNoFrames = errors.New("render: no frames")

// ErrNotPlottable is returned when points have fewer than two coordinates.
var ErrNotPlottable = errors.New("render: points need at least two coordinates")

// Options controls frame geometry and timing.
type Options struct {
	Width  int
	Height int
	Margin int
	// Delay between frames in hundredths of a second.
	Delay int
	// LoopCount follows image/gif: 0 loops forever, -1 plays once.
	LoopCount int
}

// DefaultOptions returns 480x480 frames shown for 500ms each, looping forever.
func DefaultOptions() Options {
	return Options{Width: 480, Height: 480, Margin: 20, Delay: 50}
}

// Bounds is the data-space rectangle mapped onto a frame.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoundsOf returns the rectangle covering points and every centroid in frames.
func BoundsOf(points [][]float64, frames iter.Seq[snapshot.Snapshot]) Bounds {
	b := Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	include := func(p []float64) {
		b.MinX = min(b.MinX, p[0])
		b.MaxX = max(b.MaxX, p[0])
		b.MinY = min(b.MinY, p[1])
		b.MaxY = max(b.MaxY, p[1])
	}
	for _, p := range points {
		include(p)
	}
	if frames != nil {
		for s := range frames {
			for c := range s.K() {
				include(s.Centroid(c))
			}
		}
	}
	if b.MaxX == b.MinX {
		b.MinX, b.MaxX = b.MinX-1, b.MaxX+1
	}
	if b.MaxY == b.MinY {
		b.MinY, b.MaxY = b.MinY-1, b.MaxY+1
	}
	return b
}

// Frame draws one snapshot of points.
func Frame(s snapshot.Snapshot, points [][]float64, b Bounds, opts Options) (*image.Paletted, error) {
	if len(points) > 0 && len(points[0]) < 2 {
		return nil, ErrNotPlottable
	}
	img := image.NewPaletted(image.Rect(0, 0, opts.Width, opts.Height), Palette)

	project := func(p []float64) (int, int) {
		w := float64(opts.Width - 2*opts.Margin)
		h := float64(opts.Height - 2*opts.Margin)
		x := opts.Margin + int(math.Round((p[0]-b.MinX)/(b.MaxX-b.MinX)*w))
		y := opts.Height - opts.Margin - int(math.Round((p[1]-b.MinY)/(b.MaxY-b.MinY)*h))
		return x, y
	}

	for i, p := range points {
		idx := uint8(idxUnassigned)
		if i < s.Len() {
			if label := s.Label(i); label >= 0 {
				idx = uint8(idxFirstLabel + label%len(clusterColours))
			}
		}
		x, y := project(p)
		fill(img, x-1, y-1, x+1, y+1, idx)
	}

	for c := range s.K() {
		x, y := project(s.Centroid(c))
		fill(img, x-4, y-1, x+4, y+1, idxCentroid)
		fill(img, x-1, y-4, x+1, y+4, idxCentroid)
	}

	return img, nil
}

func fill(img *image.Paletted, x0, y0, x1, y1 int, idx uint8) {
	r := img.Bounds()
	for y := max(y0, r.Min.Y); y <= min(y1, r.Max.Y-1); y++ {
		for x := max(x0, r.Min.X); x <= min(x1, r.Max.X-1); x++ {
			img.SetColorIndex(x, y, idx)
		}
	}
}

// WriteGIF renders every snapshot of frames in order and writes the
// animation to w. frames is ranged twice: once for the bounds, once to draw.
func WriteGIF(w io.Writer, frames iter.Seq[snapshot.Snapshot], points [][]float64, opts Options) error {
	for _, p := range points {
		if len(p) < 2 {
			return ErrNotPlottable
		}
	}
	b := BoundsOf(points, frames)

	anim := &gif.GIF{LoopCount: opts.LoopCount}
	for s := range frames {
		img, err := Frame(s, points, b, opts)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, opts.Delay)
	}
	if len(anim.Image) == 0 {
		return ErrNoFrames
	}

	return gif.EncodeAll(w, anim)
}
