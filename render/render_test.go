package render

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(t *testing.T, mutate func(*Options)) *Renderer {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	r, err := NewRenderer(opts, quietLogger())
	require.NoError(t, err)
	return r
}

func TestImageGeometry(t *testing.T) {
	// "hello" at level M fits a version 1 symbol: 21 modules.
	r := newTestRenderer(t, nil)
	img, err := r.Image("hello")
	require.NoError(t, err)
	assert.Equal(t, (21+2*4)*10, img.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())

	r = newTestRenderer(t, func(o *Options) { o.BoxSize = 3; o.Border = 0 })
	img, err = r.Image("hello")
	require.NoError(t, err)
	assert.Equal(t, 21*3, img.Bounds().Dx())

	// Top-left finder pattern corner is dark; the quiet zone is light.
	r = newTestRenderer(t, nil)
	img, err = r.Image("hello")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 0xff}, color.NRGBAModel.Convert(img.At(40, 40)))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(5, 5)))
}

func TestImageEmptyPayload(t *testing.T) {
	r := newTestRenderer(t, nil)
	_, err := r.Image("")
	assert.ErrorIs(t, err, ErrEmptyPayload)
	_, err = r.SVG("")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestImageRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelL, LevelM, LevelQ, LevelH} {
		t.Run(string(level), func(t *testing.T) {
			r := newTestRenderer(t, func(o *Options) { o.Level = level })
			payload := "upi://pay?pa=shop%40okbank&pn=Corner%20Shop&cu=INR&am=499.00"
			img, err := r.Image(payload)
			require.NoError(t, err)

			got, err := Scan(img)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestSVGDocument(t *testing.T) {
	r := newTestRenderer(t, func(o *Options) {
		o.Foreground = color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}
	})
	doc, err := r.SVG("hello")
	require.NoError(t, err)

	s := string(doc)
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `width="290" height="290" viewBox="0 0 290 290"`)
	assert.Contains(t, s, `<g fill="#112233">`)
	assert.Contains(t, s, `fill="#ffffff"`)
	// The first finder row is a single seven-module run at the border offset.
	assert.Contains(t, s, `<rect x="40" y="40" width="70" height="10"/>`)
}

func TestWriteFilePNG(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t, nil)

	out, err := r.WriteFile("hello world", filepath.Join(dir, "code.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "code.png"), out)

	got, err := ScanFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.NoError(t, Verify(out, "hello world"))
	assert.ErrorIs(t, Verify(out, "something else"), ErrVerifyMismatch)
}

func TestWriteFileSVG(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t, nil)

	out, err := r.WriteFile("https://example.com/a?b=c", filepath.Join(dir, "code.SVG"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "code.svg"), out)

	got, err := ScanFile(out)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?b=c", got)
}

func writeLogo(t *testing.T, dir string, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, "logo.png")
	require.NoError(t, imaging.Save(imaging.New(64, 64, c), path))
	return path
}

func TestWriteFileLogoOnlyForPNG(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{R: 0xff, A: 0xff}
	logo := writeLogo(t, dir, red)

	r := newTestRenderer(t, func(o *Options) {
		o.Level = LevelH
		o.LogoPath = logo
	})

	out, err := r.WriteFile("logo test", filepath.Join(dir, "with-logo.png"))
	require.NoError(t, err)
	img, err := imaging.Open(out)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, red, color.NRGBAModel.Convert(img.At(b.Dx()/2, b.Dy()/2)))

	out, err = r.WriteFile("logo test", filepath.Join(dir, "with-logo.svg"))
	require.NoError(t, err)
	doc, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "#ff0000")
	assert.NotContains(t, string(doc), "<image")
}

func TestComposite(t *testing.T) {
	base := imaging.New(100, 100, color.White)
	logo := imaging.New(10, 10, color.NRGBA{B: 0xff, A: 0xff})

	out := Composite(base, logo, 0.20)
	blue := color.NRGBA{B: 0xff, A: 0xff}
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	// 20px logo centred at (40,40)-(60,60).
	assert.Equal(t, blue, color.NRGBAModel.Convert(out.At(40, 40)))
	assert.Equal(t, blue, color.NRGBAModel.Convert(out.At(59, 59)))
	assert.Equal(t, white, color.NRGBAModel.Convert(out.At(39, 39)))
	assert.Equal(t, white, color.NRGBAModel.Convert(out.At(60, 60)))
	// base is untouched.
	assert.Equal(t, white, color.NRGBAModel.Convert(base.At(50, 50)))
}

func TestCompositeAlphaBlends(t *testing.T) {
	base := imaging.New(50, 50, color.Black)
	logo := imaging.New(10, 10, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0})

	out := Composite(base, logo, 0.5)
	assert.Equal(t, color.NRGBA{A: 0xff}, color.NRGBAModel.Convert(out.At(25, 25)))
}

func TestLoadLogoSVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32"><rect x="0" y="0" width="32" height="32" fill="#00ff00"/></svg>`
	require.NoError(t, os.WriteFile(path, []byte(svg), 0o644))

	img, err := LoadLogo(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, svgLogoMinSide, svgLogoMinSide), img.Bounds())
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(128, 128)))
}

func TestLoadLogoMissing(t *testing.T) {
	_, err := LoadLogo(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
