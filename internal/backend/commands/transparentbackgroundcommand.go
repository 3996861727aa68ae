package commands

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"github.com/jo-hoe/muralfolio/internal/backend/commandstructure"
)

// TransparentBackgroundCommand turns near white pixels transparent, e.g. for map pin artwork.
// Output is always png.
type TransparentBackgroundCommand struct {
	name      string
	threshold uint8
}

func NewTransparentBackgroundCommand(params map[string]any) (commandstructure.Command, error) {
	threshold := commandstructure.GetIntParam(params, "threshold", 240)
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold must be between 0 and 255, got %d", threshold)
	}
	return &TransparentBackgroundCommand{
		name:      "TransparentBackgroundCommand",
		threshold: uint8(threshold), // #nosec G115 -- range checked above
	}, nil
}

func (c *TransparentBackgroundCommand) Name() string {
	return c.name
}

func (c *TransparentBackgroundCommand) Execute(data []byte) ([]byte, error) {
	img, _, err := decodeRaster(data)
	if err != nil {
		slog.Error("TransparentBackgroundCommand: failed to decode image", "error", err)
		return nil, err
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	var cleared int64
	counts := make([]int64, bounds.Dy())
	parallelFor(bounds.Dy(), func(y int) {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+bounds.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i] >= c.threshold && row[i+1] >= c.threshold && row[i+2] >= c.threshold {
				row[i+3] = 0
				counts[y]++
			}
		}
	})
	for _, n := range counts {
		cleared += n
	}

	slog.Debug("TransparentBackgroundCommand: cleared background",
		"threshold", c.threshold,
		"cleared_pixels", cleared)
	return encode(dst, FormatPNG, 100)
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("TransparentBackgroundCommand", NewTransparentBackgroundCommand); err != nil {
		panic(fmt.Sprintf("failed to register TransparentBackgroundCommand: %v", err))
	}
}
