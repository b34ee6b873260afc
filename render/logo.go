package render

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgLogoMinSide is the smallest edge an SVG logo is rasterized at before
// being scaled onto the QR code.
const svgLogoMinSide = 256

// LoadLogo reads a logo image. Raster formats are decoded with imaging
// (EXIF orientation applied); SVG files are rasterized.
func LoadLogo(path string) (image.Image, error) {
	if strings.HasSuffix(strings.ToLower(path), ".svg") {
		return rasterizeSVGFile(path, svgLogoMinSide)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open logo %s: %w", path, err)
	}
	return img, nil
}

// Composite scales logo to a square whose edge is scale times the width of
// base and alpha-blends it over the centre of base. The result is a new
// image; base is not modified.
func Composite(base, logo image.Image, scale float64) image.Image {
	b := base.Bounds()
	target := int(float64(b.Dx()) * scale)
	if target < 1 {
		return imaging.Clone(base)
	}
	resized := imaging.Resize(logo, target, target, imaging.Lanczos)
	pos := image.Pt((b.Dx()-target)/2, (b.Dy()-target)/2)
	return imaging.Overlay(base, resized, pos, 1.0)
}

// rasterizeSVGFile draws the SVG at its viewBox size, scaled up so neither
// edge is below minSide.
func rasterizeSVGFile(path string, minSide int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open svg %s: %w", path, err)
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, fmt.Errorf("parse svg %s: %w", path, err)
	}

	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = svgLogoMinSide, svgLogoMinSide
	}
	if w < minSide || h < minSide {
		k := float64(minSide) / float64(min(w, h))
		w, h = int(float64(w)*k), int(float64(h)*k)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
