package commands

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/muralfolio/internal/backend/commandstructure"

	xdraw "golang.org/x/image/draw"
)

// ResizeParams bounds the output size. A nil bound is unconstrained.
type ResizeParams struct {
	MaxWidth  *int
	MaxHeight *int
	Quality   int
}

func NewResizeParamsFromMap(params map[string]any) (*ResizeParams, error) {
	_, hasWidth := params["maxWidth"]
	_, hasHeight := params["maxHeight"]
	if !hasWidth && !hasHeight {
		return nil, fmt.Errorf("at least one of 'maxWidth' or 'maxHeight' must be specified")
	}

	result := &ResizeParams{Quality: commandstructure.GetIntParam(params, "quality", 85)}
	if err := validateQuality(result.Quality); err != nil {
		return nil, err
	}
	if hasWidth {
		width := commandstructure.GetIntParam(params, "maxWidth", 0)
		if width <= 0 {
			return nil, fmt.Errorf("maxWidth must be positive, got %d", width)
		}
		result.MaxWidth = &width
	}
	if hasHeight {
		height := commandstructure.GetIntParam(params, "maxHeight", 0)
		if height <= 0 {
			return nil, fmt.Errorf("maxHeight must be positive, got %d", height)
		}
		result.MaxHeight = &height
	}
	return result, nil
}

// ResizeCommand shrinks images to fit the configured bounds, keeping the aspect ratio.
// Images already inside the bounds are returned unchanged. Jpeg input stays jpeg,
// everything else is written as png.
type ResizeCommand struct {
	name   string
	params *ResizeParams
}

func NewResizeCommand(params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewResizeParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &ResizeCommand{name: "ResizeCommand", params: typedParams}, nil
}

// NewThumbnailCommand returns a width bounded resize used for preview images
func NewThumbnailCommand(width int) (*ResizeCommand, error) {
	if width <= 0 {
		return nil, fmt.Errorf("thumbnail width must be positive, got %d", width)
	}
	return &ResizeCommand{name: "ThumbnailCommand", params: &ResizeParams{MaxWidth: &width, Quality: 80}}, nil
}

func (c *ResizeCommand) Name() string {
	return c.name
}

func (c *ResizeCommand) Execute(data []byte) ([]byte, error) {
	img, sourceFormat, err := decodeRaster(data)
	if err != nil {
		slog.Error("ResizeCommand: failed to decode image", "error", err)
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitInside(bounds.Dx(), bounds.Dy(), c.params.MaxWidth, c.params.MaxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		slog.Debug("ResizeCommand: image within bounds", "width", width, "height", height)
		return data, nil
	}

	slog.Debug("ResizeCommand: scaling image",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"target_width", width,
		"target_height", height)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)

	format := FormatPNG
	if sourceFormat == "jpeg" {
		format = FormatJPEG
	}
	return encode(dst, format, c.params.Quality)
}

// fitInside scales (w, h) down to the bounds, never up. Each side is at least 1.
func fitInside(w, h int, maxWidth, maxHeight *int) (int, int) {
	scale := 1.0
	if maxWidth != nil && w > *maxWidth {
		scale = min(scale, float64(*maxWidth)/float64(w))
	}
	if maxHeight != nil && h > *maxHeight {
		scale = min(scale, float64(*maxHeight)/float64(h))
	}
	if scale == 1.0 {
		return w, h
	}
	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
}

func (c *ResizeCommand) GetParams() *ResizeParams {
	return c.params
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("ResizeCommand", NewResizeCommand); err != nil {
		panic(fmt.Sprintf("failed to register ResizeCommand: %v", err))
	}
}
