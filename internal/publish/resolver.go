
package publish

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mask1381/ketabrooz/internal/db"
	"github.com/mask1381/ketabrooz/internal/kinds"
)

// resolved is the media decision for a post.
type resolved struct {
	kind   string // kinds.MediaPhoto/MediaVideo/MediaDocument, or "copy"
	data   []byte // set for freshly downloaded (watermarked) media
	path   string // set for transcoded video files
	fileID string // set for pass-through references
	msgID  int    // set for "copy"
}

const mediaCopy = "copy"

// resolveMedia walks the media sources for a post in priority order: the
// book's cover (downloaded and watermarked), the post's own file reference
// (sent as-is; videos get a watermark pass when ffmpeg is around), then a
// server-side copy of the source message. A nil result means text-only.
// Resolution failures log and fall through; they never abort a publish.
func (p *Publisher) resolveMedia(ctx context.Context, c db.Content) *resolved {
	if r := p.resolveCover(ctx, c); r != nil {
		return r
	}
	if r := p.resolveOwnFile(ctx, c); r != nil {
		return r
	}
	if c.MessageID != 0 && p.sourceChat != 0 {
		return &resolved{kind: mediaCopy, msgID: c.MessageID}
	}
	return nil
}

func (p *Publisher) resolveCover(ctx context.Context, c db.Content) *resolved {
	if !c.UseCover || !c.BookID.Valid {
		return nil
	}
	book, err := p.db.GetBook(ctx, c.BookID.Int64)
	if err != nil || book.CoverFileID == "" {
		return nil
	}
	data, err := p.tg.DownloadFile(ctx, book.CoverFileID)
	if err != nil {
		log.Printf("[publish] cover download for content %d failed: %v", c.ID, err)
		return nil
	}
	marked, err := p.marker.Image(data)
	if err != nil {
		// an unmarkable cover still beats no cover
		log.Printf("[publish] cover watermark for content %d failed, sending original: %v", c.ID, err)
		marked = data
	}
	return &resolved{kind: kinds.MediaPhoto, data: marked}
}

func (p *Publisher) resolveOwnFile(ctx context.Context, c db.Content) *resolved {
	if c.FileID == "" {
		return nil
	}
	class := kinds.MediaClass(c.Type)
	if class == kinds.MediaNone {
		class = kinds.MediaDocument
	}
	if class == kinds.MediaVideo && p.marker.HasFFmpeg() {
		if path, ok := p.watermarkVideo(ctx, c); ok {
			return &resolved{kind: kinds.MediaVideo, path: path}
		}
	}
	return &resolved{kind: class, fileID: c.FileID}
}

// watermarkVideo downloads a video reference, burns the mark, and returns the
// output path. Any failure reports false so the caller passes the reference
// through unmarked.
func (p *Publisher) watermarkVideo(ctx context.Context, c db.Content) (string, bool) {
	data, err := p.tg.DownloadFile(ctx, c.FileID)
	if err != nil {
		log.Printf("[publish] video download for content %d failed, passing through: %v", c.ID, err)
		return "", false
	}
	src := filepath.Join(p.tmpDir, "pub_"+uuid.NewString()[:8]+".mp4")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return "", false
	}
	out, err := p.marker.Video(ctx, src)
	if err != nil || out == src {
		_ = os.Remove(src)
		return "", false
	}
	_ = os.Remove(src)
	return out, true
}
