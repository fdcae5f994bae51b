
package watermark

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageMarksAndReencodes(t *testing.T) {
	m := &Marker{mark: "@ketabrooz"}
	src := testImage(t, 640, 480)

	out, err := m.Image(src)
	require.NoError(t, err)
	assert.NotEqual(t, src, out)

	marked, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 640, marked.Bounds().Dx())
	assert.Equal(t, 480, marked.Bounds().Dy())

	// the bottom-right corner region must differ from the flat background
	r0, g0, b0, _ := marked.At(10, 10).RGBA()
	changed := false
	for y := 480 - 40; y < 480 && !changed; y++ {
		for x := 640 - 200; x < 640; x++ {
			r, g, b, _ := marked.At(x, y).RGBA()
			if r != r0 || g != g0 || b != b0 {
				changed = true
				break
			}
		}
	}
	assert.True(t, changed, "watermark text should alter bottom-right pixels")
}

func TestImageAcceptsJPEGInput(t *testing.T) {
	m := &Marker{mark: "id:12345"}
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := m.Image(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestImageRejectsGarbage(t *testing.T) {
	m := &Marker{mark: "@x"}
	_, err := m.Image([]byte("not an image at all"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode image")
}

func TestVideoWithoutFFmpegIsPassThrough(t *testing.T) {
	m := &Marker{mark: "@x", ffmpeg: false}
	out, err := m.Video(context.Background(), "/tmp/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/clip.mp4", out)
}

func TestMarkFromChannel(t *testing.T) {
	assert.Equal(t, "@books", MarkFromChannel(-1001234, "books"))
	assert.Equal(t, "@books", MarkFromChannel(-1001234, "@books"))
	assert.Equal(t, "id:567890", MarkFromChannel(-100567890, ""))
	assert.Equal(t, "id:42", MarkFromChannel(42, ""))
}

func TestEscapeDrawtext(t *testing.T) {
	assert.Equal(t, `\\`, escapeDrawtext(`\`))
	assert.Equal(t, `it\'s`, escapeDrawtext(`it's`))
	assert.Equal(t, `a\:b`, escapeDrawtext(`a:b`))
	assert.Equal(t, `100\%`, escapeDrawtext(`100%`))
	assert.Equal(t, `@plain_handle`, escapeDrawtext(`@plain_handle`))
}
