package commands

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/jo-hoe/muralfolio/internal/backend/commandstructure"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// NormalizeCommand converts any supported upload (jpeg, png, gif, bmp, tiff, webp, svg)
// into a web friendly jpeg or png.
type NormalizeCommand struct {
	name              string
	format            string
	quality           int
	svgFallbackWidth  int
	svgFallbackHeight int
}

func NewNormalizeCommand(params map[string]any) (commandstructure.Command, error) {
	format := strings.ToLower(commandstructure.GetStringParam(params, "format", FormatJPEG))
	if err := validateFormat(format); err != nil {
		return nil, err
	}
	quality := commandstructure.GetIntParam(params, "quality", 85)
	if err := validateQuality(quality); err != nil {
		return nil, err
	}

	return &NormalizeCommand{
		name:              "NormalizeCommand",
		format:            format,
		quality:           quality,
		svgFallbackWidth:  commandstructure.GetIntParam(params, "svgFallbackWidth", 0),
		svgFallbackHeight: commandstructure.GetIntParam(params, "svgFallbackHeight", 0),
	}, nil
}

func (c *NormalizeCommand) Name() string {
	return c.name
}

func (c *NormalizeCommand) Execute(data []byte) ([]byte, error) {
	slog.Debug("NormalizeCommand: start",
		"input_size_bytes", len(data),
		"format", c.format)

	// already in the target format
	if (c.format == FormatPNG && hasCorrectPngSignature(data)) || (c.format == FormatJPEG && hasJpegSignature(data)) {
		return data, nil
	}

	if isSVGData(data) {
		return c.convertSVG(data)
	}

	img, sourceFormat, err := decodeRaster(data)
	if err != nil {
		slog.Error("NormalizeCommand: failed to decode image", "error", err)
		return nil, err
	}
	slog.Debug("NormalizeCommand: decoded raster image",
		"source_format", sourceFormat,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())

	out, err := encode(img, c.format, c.quality)
	if err != nil {
		slog.Error("NormalizeCommand: failed to encode image", "error", err)
		return nil, err
	}
	return out, nil
}

func (c *NormalizeCommand) convertSVG(data []byte) ([]byte, error) {
	w, h, ok := parseSvgExplicitSize(data)
	if !ok {
		w, h = c.svgFallbackWidth, c.svgFallbackHeight
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("SVG fallback size not set; cannot render SVG without explicit size")
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := createTargetCanvas(w, h, color.RGBA{255, 255, 255, 255})
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	slog.Debug("NormalizeCommand: rendered SVG", "width", w, "height", h)
	return encode(dst, c.format, c.quality)
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("NormalizeCommand", NewNormalizeCommand); err != nil {
		panic(fmt.Sprintf("failed to register NormalizeCommand: %v", err))
	}
}

// parseSvgExplicitSize extracts width and height attributes from the svg start tag.
// viewBox is not treated as a pixel size.
func parseSvgExplicitSize(data []byte) (int, int, bool) {
	n := min(len(data), 8192)
	s := strings.ToLower(string(data[:n]))
	i := strings.Index(s, "<svg")
	if i < 0 {
		return 0, 0, false
	}
	j := strings.Index(s[i:], ">")
	if j < 0 {
		j = len(s)
	} else {
		j = i + j
	}
	tag := s[i:j]

	w, wOk := parseNumericAttr(tag, "width")
	h, hOk := parseNumericAttr(tag, "height")
	if wOk && hOk {
		return w, h, true
	}
	return 0, 0, false
}

// parseNumericAttr reads the leading integer of a quoted attribute, e.g. width="123px"
func parseNumericAttr(tag, attr string) (int, bool) {
	pos := strings.Index(tag, " "+attr+"=")
	if pos < 0 {
		return 0, false
	}
	rest := tag[pos+len(attr)+2:]
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return 0, false
	}
	quote := rest[0]
	rest = rest[1:]
	if end := strings.IndexByte(rest, quote); end >= 0 {
		rest = rest[:end]
	}

	num := 0
	found := false
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if ch < '0' || ch > '9' {
			break
		}
		found = true
		num = num*10 + int(ch-'0')
	}
	if !found || num <= 0 {
		return 0, false
	}
	return num, true
}

// isSVGData inspects the first 4KB for an svg tag or namespace
func isSVGData(data []byte) bool {
	n := min(len(data), 4096)
	header := bytes.ToLower(data[:n])
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte("http://www.w3.org/2000/svg"))
}
