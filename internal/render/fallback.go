package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KaramelBytes/bcgmatrix-cli/internal/utils"
)

// RenderError reports a chart that could not be drawn. Fallback is the
// outcome of writing the replacement error image (nil when it succeeded).
type RenderError struct {
	Path     string
	Err      error
	Fallback error
}

func (e *RenderError) Error() string {
	if e == nil || e.Err == nil {
		return "render failed"
	}
	if e.Fallback != nil {
		return fmt.Sprintf("render %s: %v (fallback image failed: %v)", e.Path, e.Err, e.Fallback)
	}
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

const (
	errWidth   = 960
	errHeight  = 240
	errHeading = "Error generating BCG Matrix"
	wrapAt     = 120
)

// ErrorImage writes a plain PNG carrying cause's message to path. If even
// that fails it leaves an empty file behind.
func ErrorImage(path string, cause error) error {
	lines := []string{errHeading, "Please check your data"}
	if cause != nil {
		lines = append(lines, "")
		lines = append(lines, wrap(cause.Error(), wrapAt)...)
	}
	img := textImage(lines)

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err == nil {
		err = utils.SafeWriteFile(path, buf.Bytes())
	}
	if err != nil {
		if werr := utils.EnsureParentDir(path); werr == nil {
			werr = os.WriteFile(path, nil, 0o644)
			if werr != nil {
				return fmt.Errorf("write error image: %w (empty file: %v)", err, werr)
			}
		}
		return fmt.Errorf("write error image: %w", err)
	}
	return nil
}

func textImage(lines []string) *image.RGBA {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil() + 4
	h := errHeight
	if need := 24 + lineH*len(lines); need > h {
		h = need
	}
	img := image.NewRGBA(image.Rect(0, 0, errWidth, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	red := image.NewUniform(color.RGBA{R: 0xB0, A: 0xFF})
	black := image.NewUniform(color.Black)
	y := 20 + face.Metrics().Ascent.Ceil()
	for i, l := range lines {
		src := black
		if i == 0 {
			src = red
		}
		d := &font.Drawer{Dst: img, Src: src, Face: face, Dot: fixed.Point26_6{X: fixed.I(16), Y: fixed.I(y)}}
		d.DrawString(l)
		y += lineH
	}
	return img
}

func wrap(s string, n int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		rs := []rune(para)
		for len(rs) > n {
			out = append(out, string(rs[:n]))
			rs = rs[n:]
		}
		out = append(out, string(rs))
	}
	return out
}
