// Package render turns payload strings into QR-code images.
//
// The symbol itself (version selection, masking, error correction) comes from
// go-qrcode; this package handles geometry, colours, logo overlay and output
// formats.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Level is a QR error-correction level.
type Level string

const (
	LevelL Level = "L" // about 7% recovery
	LevelM Level = "M" // about 15% recovery
	LevelQ Level = "Q" // about 25% recovery
	LevelH Level = "H" // about 30% recovery
)

// ErrInvalidLevel is returned for anything other than L, M, Q or H.
var ErrInvalidLevel = errors.New("invalid error-correction level")

// ParseLevel accepts L, M, Q or H in either case.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelL, LevelM, LevelQ, LevelH:
		return l, nil
	}
	return "", fmt.Errorf("%w %q (want L, M, Q or H)", ErrInvalidLevel, s)
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return qrcode.Low
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Format is the output image format.
type Format string

// Supported output formats.
const (
	PNG Format = "png"
	SVG Format = "svg"
)

// FormatFromPath picks SVG for *.svg paths and PNG for everything else.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".svg") {
		return SVG
	}
	return PNG
}

// NormalizePath swaps the file name's last suffix for the one matching f,
// appending it if the name has none. A hidden file's leading dot does not
// count as a suffix.
func NormalizePath(path string, f Format) string {
	dir, base := filepath.Split(path)
	stem := base
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		stem = base[:i]
	}
	return dir + stem + "." + string(f)
}

// Options control symbol generation and rasterization.
type Options struct {
	Level      Level
	BoxSize    int // pixels per module
	Border     int // quiet zone, in modules
	Foreground color.Color
	Background color.Color
	LogoPath   string
	LogoScale  float64 // logo edge as a fraction of the image width
}

const (
	DefaultBoxSize   = 10
	DefaultBorder    = 4
	DefaultLogoScale = 0.20
)

// DefaultOptions matches the CLI defaults: level M, 10px modules, a 4 module
// border, black on white.
func DefaultOptions() Options {
	return Options{
		Level:      LevelM,
		BoxSize:    DefaultBoxSize,
		Border:     DefaultBorder,
		Foreground: color.Black,
		Background: color.White,
		LogoScale:  DefaultLogoScale,
	}
}

func (o Options) validate() error {
	if o.BoxSize < 1 {
		return fmt.Errorf("box size must be positive, got %d", o.BoxSize)
	}
	if o.Border < 0 {
		return fmt.Errorf("border must not be negative, got %d", o.Border)
	}
	if o.LogoPath != "" && (o.LogoScale <= 0 || o.LogoScale > 1) {
		return fmt.Errorf("logo scale must be in (0, 1], got %g", o.LogoScale)
	}
	return nil
}
