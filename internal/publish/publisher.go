
// Package publish turns approved posts into channel messages: it composes the
// final text with hashtags and footer, resolves and watermarks media, and
// walks the approved -> publishing -> published state transitions.
package publish

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mask1381/ketabrooz/internal/db"
	"github.com/mask1381/ketabrooz/internal/kinds"
	"github.com/mask1381/ketabrooz/internal/watermark"
)

// Sender is the slice of the Telegram transport publishing needs.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) (int, string, error)
	SendPhotoID(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendVideoID(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendVideoPath(ctx context.Context, chatID int64, path, caption string) (int, error)
	SendDocumentID(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	CopyMessage(ctx context.Context, fromChatID int64, messageID int, toChatID int64, caption string) (int, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type Publisher struct {
	db         *db.DB
	tg         Sender
	channelID  int64
	sourceChat int64
	marker     *watermark.Marker
	tmpDir     string
	now        func() time.Time
}

func New(database *db.DB, tg Sender, channelID, sourceChat int64, marker *watermark.Marker) *Publisher {
	return &Publisher{
		db:         database,
		tg:         tg,
		channelID:  channelID,
		sourceChat: sourceChat,
		marker:     marker,
		tmpDir:     os.TempDir(),
		now:        time.Now,
	}
}

// Publish sends one approved post to the channel and returns the channel
// message id. The row is claimed first so concurrent triggers cannot publish
// it twice; a failed send releases the claim back to approved.
func (p *Publisher) Publish(ctx context.Context, contentID int64) (int, error) {
	c, err := p.db.GetContent(ctx, contentID)
	if err != nil {
		if db.ErrNotFound(err) {
			return 0, fmt.Errorf("content %d not found", contentID)
		}
		return 0, err
	}
	if c.Status != db.ContentApproved {
		return 0, fmt.Errorf("content %d is %q, only approved posts can be published", contentID, c.Status)
	}

	claimed, err := p.db.ClaimForPublish(ctx, contentID)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, fmt.Errorf("content %d is already being published", contentID)
	}

	msgID, tags, err := p.send(ctx, c)
	if err != nil {
		_ = p.db.ReleaseClaim(ctx, contentID)
		return 0, fmt.Errorf("publish content %d: %w", contentID, err)
	}

	if err := p.db.MarkPublished(ctx, contentID, msgID, p.now()); err != nil {
		return 0, err
	}
	_ = p.db.BumpTagUsage(ctx, tags)
	return msgID, nil
}

func (p *Publisher) send(ctx context.Context, c db.Content) (int, []string, error) {
	text, tags := p.compose(ctx, c)
	media := p.resolveMedia(ctx, c)

	var msgID int
	var err error
	switch {
	case media == nil:
		msgID, err = p.tg.SendText(ctx, p.channelID, text)
	case media.kind == mediaCopy:
		msgID, err = p.tg.CopyMessage(ctx, p.sourceChat, media.msgID, p.channelID, text)
	case media.kind == kinds.MediaPhoto && media.data != nil:
		msgID, _, err = p.tg.SendPhotoBytes(ctx, p.channelID, fmt.Sprintf("cover_%d.jpg", c.ID), media.data, text)
	case media.kind == kinds.MediaPhoto:
		msgID, err = p.tg.SendPhotoID(ctx, p.channelID, media.fileID, text)
	case media.kind == kinds.MediaVideo && media.path != "":
		msgID, err = p.tg.SendVideoPath(ctx, p.channelID, media.path, text)
		_ = os.Remove(media.path)
	case media.kind == kinds.MediaVideo:
		msgID, err = p.tg.SendVideoID(ctx, p.channelID, media.fileID, text)
	default:
		msgID, err = p.tg.SendDocumentID(ctx, p.channelID, media.fileID, text)
	}
	if err != nil {
		return 0, nil, err
	}
	return msgID, tags, nil
}

// compose builds the outgoing text: body, hashtag line, footer, separated by
// blank lines. It also returns the bare tags for usage accounting.
func (p *Publisher) compose(ctx context.Context, c db.Content) (string, []string) {
	body := c.Text
	if body == "" {
		body = c.Caption
	}

	parts := []string{}
	if strings.TrimSpace(body) != "" {
		parts = append(parts, strings.TrimSpace(body))
	}
	tagLine := HashtagLine(ctx, p.db, c.Type)
	if tagLine != "" {
		parts = append(parts, tagLine)
	}
	if footer := FooterText(ctx, p.db, c.ID, c.Type, p.now()); footer != "" {
		parts = append(parts, footer)
	}

	var tags []string
	for _, t := range strings.Fields(tagLine) {
		tags = append(tags, strings.TrimPrefix(t, "#"))
	}
	return strings.Join(parts, "\n\n"), tags
}
