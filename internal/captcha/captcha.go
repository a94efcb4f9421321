// Package captcha generates the challenge codes and images used by member
// verification.
package captcha

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Ambiguous glyphs (0/O, 1/I) are left out of the charset.
const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	glyphWidth  = 7
	glyphGap    = 5
	smallHeight = 26
	scale       = 4
)

func NewCode(length int) string {
	if length <= 0 {
		length = 5
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		b.WriteByte(charset[rand.IntN(len(charset))])
	}
	return b.String()
}

// Render draws the code as a PNG: glyphs with per-character vertical jitter,
// scaled up, with noise strokes and speckles over the top.
func Render(code string) ([]byte, error) {
	smallWidth := len(code)*(glyphWidth+glyphGap) + glyphGap
	small := image.NewRGBA(image.Rect(0, 0, smallWidth, smallHeight))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.RGBA{R: 240, G: 240, B: 245, A: 255}), image.Point{}, draw.Src)

	drawer := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.RGBA{R: 30, G: 30, B: 60, A: 255}),
		Face: basicfont.Face7x13,
	}
	for i := 0; i < len(code); i++ {
		x := glyphGap + i*(glyphWidth+glyphGap)
		y := 14 + rand.IntN(6)
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(string(code[i]))
	}

	width := smallWidth * scale
	height := smallHeight * scale
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(img, img.Bounds(), small, small.Bounds(), draw.Src, nil)

	noise := color.RGBA{R: 120, G: 120, B: 150, A: 255}
	for i := 0; i < 4; i++ {
		drawLine(img, rand.IntN(width/4), rand.IntN(height), width-1-rand.IntN(width/4), rand.IntN(height), noise)
	}
	for i := 0; i < width*height/60; i++ {
		img.Set(rand.IntN(width), rand.IntN(height), noise)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	steps := abs(x1 - x0)
	if abs(y1-y0) > steps {
		steps = abs(y1 - y0)
	}
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		img.Set(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
