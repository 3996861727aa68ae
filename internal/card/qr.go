package card

import (
	"fmt"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	qrForeground = color.RGBA{R: 0x00, G: 0xc5, B: 0xcd, A: 0xff}
	qrBackground = color.White
)

// QRCode encodes content as a PNG with high error recovery in the brand colours.
func QRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	code, err := qrcode.New(content, qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	code.ForegroundColor = qrForeground
	code.BackgroundColor = qrBackground

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}
