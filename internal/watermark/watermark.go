
// Package watermark burns the channel signature into outgoing media.
package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type Marker struct {
	mark   string
	ffmpeg bool
}

// New builds a marker for the given signature text (typically the channel
// handle). ffmpeg is probed once here; without it video marking becomes a
// pass-through rather than an error.
func New(mark string) *Marker {
	m := &Marker{mark: mark}
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		m.ffmpeg = true
	}
	return m
}

func (m *Marker) Mark() string { return m.mark }

func (m *Marker) HasFFmpeg() bool { return m.ffmpeg }

// MarkFromChannel derives the signature text from channel config: the public
// handle when known, otherwise the numeric id without its channel prefix.
func MarkFromChannel(id int64, username string) string {
	if username != "" {
		return "@" + strings.TrimPrefix(username, "@")
	}
	s := fmt.Sprintf("%d", id)
	s = strings.TrimPrefix(s, "-100")
	return "id:" + s
}

const (
	markAlpha = 128
	padding   = 10
)

// Image draws the signature bottom-right in translucent white and re-encodes
// as JPEG. Font size scales with image height so the mark reads the same on
// thumbnails and full scans.
func (m *Marker) Image(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	size := float64(bounds.Dy()) / 20
	if size < 12 {
		size = 12
	}
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: markAlpha}),
		Face: face,
	}
	width := d.MeasureString(m.mark).Ceil()
	x := bounds.Max.X - width - padding
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	y := bounds.Max.Y - padding
	d.Dot = fixed.P(x, y)
	d.DrawString(m.mark)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// Video burns the signature into a video file via ffmpeg drawtext and returns
// the output path. Without ffmpeg, or when the transcode fails, the original
// path comes back unchanged.
func (m *Marker) Video(ctx context.Context, path string) (string, error) {
	if !m.ffmpeg {
		return path, nil
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + "_" + uuid.NewString()[:8] + ".mp4"
	filter := fmt.Sprintf("drawtext=text='%s':fontcolor=white@0.5:fontsize=h/20:x=w-tw-10:y=h-th-10",
		escapeDrawtext(m.mark))
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", path, "-vf", filter, "-c:a", "copy", out)
	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		return path, nil
	}
	return out, nil
}

// escapeDrawtext quotes the characters ffmpeg's filter parser treats
// specially inside a drawtext text value.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `%`, `\%`)
	return r.Replace(s)
}
