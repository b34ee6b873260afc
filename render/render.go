package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// ErrEmptyPayload is returned when there is no data to encode.
var ErrEmptyPayload = errors.New("nothing to encode")

// Renderer builds QR images with a fixed set of Options.
type Renderer struct {
	opts Options
	log  *slog.Logger
}

// NewRenderer validates opts and returns a Renderer. A nil Foreground or
// Background falls back to black or white.
func NewRenderer(opts Options, log *slog.Logger) (*Renderer, error) {
	def := DefaultOptions()
	if opts.Foreground == nil {
		opts.Foreground = def.Foreground
	}
	if opts.Background == nil {
		opts.Background = def.Background
	}
	level, err := ParseLevel(string(opts.Level))
	if err != nil {
		return nil, err
	}
	opts.Level = level
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{opts: opts, log: log}, nil
}

// newCode encodes data without go-qrcode's built-in quiet zone; the border
// is added by Image and SVG so its width can be configured.
func (r *Renderer) newCode(data string) (*qrcode.QRCode, error) {
	if data == "" {
		return nil, ErrEmptyPayload
	}
	code, err := qrcode.New(data, r.opts.Level.recovery())
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code.DisableBorder = true
	code.ForegroundColor = r.opts.Foreground
	code.BackgroundColor = r.opts.Background
	return code, nil
}

// Image renders data as a raster image, without any logo.
func (r *Renderer) Image(data string) (image.Image, error) {
	code, err := r.newCode(data)
	if err != nil {
		return nil, err
	}

	n := len(code.Bitmap())
	symbol := code.Image(n * r.opts.BoxSize)

	quiet := r.opts.Border * r.opts.BoxSize
	side := symbol.Bounds().Dx() + 2*quiet
	canvas := imaging.New(side, side, r.opts.Background)
	canvas = imaging.Paste(canvas, symbol, image.Pt(quiet, quiet))

	r.log.Debug("rendered qr image", "modules", n, "pixels", side, "level", r.opts.Level)
	return canvas, nil
}

// SVG renders data as a standalone SVG document. Dark modules are merged
// into one rect per horizontal run.
func (r *Renderer) SVG(data string) ([]byte, error) {
	code, err := r.newCode(data)
	if err != nil {
		return nil, err
	}
	bitmap := code.Bitmap()

	box := r.opts.BoxSize
	n := len(bitmap)
	side := (n + 2*r.opts.Border) * box
	fg, fgOpacity := hexColor(r.opts.Foreground)
	bg, bgOpacity := hexColor(r.opts.Background)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		side, side, side, side)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"%s/>`+"\n",
		side, side, bg, opacityAttr(bgOpacity))

	fmt.Fprintf(&b, `<g fill="%s"%s>`+"\n", fg, opacityAttr(fgOpacity))
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d"/>`+"\n",
				(start+r.opts.Border)*box, (y+r.opts.Border)*box, (x-start)*box, box)
		}
	}
	b.WriteString("</g>\n</svg>\n")

	r.log.Debug("rendered qr svg", "modules", n, "pixels", side, "level", r.opts.Level)
	return []byte(b.String()), nil
}

func opacityAttr(v float64) string {
	if v >= 1 {
		return ""
	}
	return fmt.Sprintf(` fill-opacity="%.3f"`, v)
}

// WriteFile renders data and writes it next to path, choosing the format
// from path's extension and normalizing the extension to match. The logo, if
// configured, is only applied to PNG output. It returns the path written.
func (r *Renderer) WriteFile(data, path string) (string, error) {
	format := FormatFromPath(path)
	out := NormalizePath(path, format)

	switch format {
	case SVG:
		if r.opts.LogoPath != "" {
			r.log.Warn("logo is only supported for PNG output, ignoring", "logo", r.opts.LogoPath)
		}
		doc, err := r.SVG(data)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, doc, 0o644); err != nil {
			return "", fmt.Errorf("write svg: %w", err)
		}
	default:
		img, err := r.Image(data)
		if err != nil {
			return "", err
		}
		if r.opts.LogoPath != "" {
			logo, err := LoadLogo(r.opts.LogoPath)
			if err != nil {
				return "", err
			}
			img = Composite(img, logo, r.opts.LogoScale)
			r.log.Debug("composited logo", "logo", r.opts.LogoPath, "scale", r.opts.LogoScale)
		}
		if err := imaging.Save(img, out); err != nil {
			return "", fmt.Errorf("write png: %w", err)
		}
	}

	r.log.Info("qr written", "path", out, "format", format)
	return out, nil
}
