package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrVerifyMismatch is returned by Verify when the decoded text differs.
var ErrVerifyMismatch = errors.New("decoded qr does not match payload")

// ScanFile decodes the QR code in the image at path. SVG files are
// rasterized first.
func ScanFile(path string) (string, error) {
	var img image.Image
	if strings.HasSuffix(strings.ToLower(path), ".svg") {
		raster, err := rasterizeSVGFile(path, 0)
		if err != nil {
			return "", err
		}
		img = raster
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		decoded, _, err := image.Decode(f)
		if err != nil {
			return "", fmt.Errorf("decode image: %w", err)
		}
		img = decoded
	}
	return Scan(img)
}

// Scan decodes a QR code from img. Transparent pixels are treated as white.
func Scan(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(flatten(img))
	if err != nil {
		return "", fmt.Errorf("create bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("no qr code found: %w", err)
	}
	return result.GetText(), nil
}

// Verify decodes the file at path and checks that it carries want.
func Verify(path, want string) error {
	got, err := ScanFile(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if got != want {
		return fmt.Errorf("verify %s: %w: got %q", path, ErrVerifyMismatch, got)
	}
	return nil
}

func flatten(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}
