package frames

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"reloop/internal/similarity"
)

// Loader decodes frame images into similarity features. It implements
// similarity.FrameLoader.
type Loader struct{}

// NewLoader returns a frame loader.
func NewLoader() Loader {
	return Loader{}
}

// LoadFrame reads the image at path, resamples it to size×size, and returns
// its grayscale and color planes. A missing file surfaces the underlying
// fs.ErrNotExist; a decode failure is reported distinctly.
func (Loader) LoadFrame(path string, size int) (*similarity.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	n := size * size
	frame := &similarity.Frame{
		Size: size,
		Gray: make([]float64, n),
		RGB:  make([]uint8, n*3),
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			offset := resized.PixOffset(x, y)
			r := resized.Pix[offset]
			g := resized.Pix[offset+1]
			b := resized.Pix[offset+2]

			i := y*size + x
			frame.Gray[i] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
			frame.RGB[i*3] = r
			frame.RGB[i*3+1] = g
			frame.RGB[i*3+2] = b
		}
	}
	return frame, nil
}
