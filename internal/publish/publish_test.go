
package publish

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mask1381/ketabrooz/internal/db"
	"github.com/mask1381/ketabrooz/internal/watermark"
)

type sentCall struct {
	method  string
	caption string
	data    []byte
	fileID  string
}

type fakeSender struct {
	calls   []sentCall
	sendErr error
	files   map[string][]byte
	fileErr error
	nextMsg int
}

func newFakeSender() *fakeSender {
	return &fakeSender{nextMsg: 100, files: map[string][]byte{}}
}

func (f *fakeSender) record(method, caption string, data []byte, fileID string) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.calls = append(f.calls, sentCall{method: method, caption: caption, data: data, fileID: fileID})
	f.nextMsg++
	return f.nextMsg, nil
}

func (f *fakeSender) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	return f.record("text", text, nil, "")
}

func (f *fakeSender) SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) (int, string, error) {
	id, err := f.record("photoBytes", caption, data, "")
	return id, "uploaded-file-id", err
}

func (f *fakeSender) SendPhotoID(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.record("photoID", caption, nil, fileID)
}

func (f *fakeSender) SendVideoID(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.record("videoID", caption, nil, fileID)
}

func (f *fakeSender) SendVideoPath(ctx context.Context, chatID int64, path, caption string) (int, error) {
	return f.record("videoPath", caption, nil, path)
}

func (f *fakeSender) SendDocumentID(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	return f.record("documentID", caption, nil, fileID)
}

func (f *fakeSender) CopyMessage(ctx context.Context, fromChatID int64, messageID int, toChatID int64, caption string) (int, error) {
	return f.record("copy", caption, nil, "")
}

func (f *fakeSender) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	b, ok := f.files[fileID]
	if !ok {
		return nil, errors.New("no such file")
	}
	return b, nil
}

func newTestPublisher(t *testing.T) (*Publisher, *db.DB, *fakeSender) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	tg := newFakeSender()
	p := New(d, tg, -1001, -2002, watermark.New("@testchannel"))
	p.now = func() time.Time { return time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC) }
	return p, d, tg
}

func addApproved(t *testing.T, d *db.DB, n db.NewContent) int64 {
	t.Helper()
	ctx := context.Background()
	n.Status = db.ContentPending
	id, err := d.AddContent(ctx, n)
	require.NoError(t, err)
	require.NoError(t, d.ApproveContent(ctx, id))
	return id
}

func TestPublishRequiresApproval(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	id, err := d.AddContent(ctx, db.NewContent{Type: "text", Text: "متن", Status: db.ContentPending})
	require.NoError(t, err)

	_, err = p.Publish(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending_approval")
	assert.Empty(t, tg.calls)

	_, err = p.Publish(ctx, 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPublishTextOnly(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	id := addApproved(t, d, db.NewContent{Type: "text", Text: "پست متنی"})
	msgID, err := p.Publish(ctx, id)
	require.NoError(t, err)
	assert.Greater(t, msgID, 0)

	require.Len(t, tg.calls, 1)
	assert.Equal(t, "text", tg.calls[0].method)
	assert.Contains(t, tg.calls[0].caption, "پست متنی")

	c, err := d.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.ContentPublished, c.Status)
	assert.EqualValues(t, msgID, c.PublishedMessageID.Int64)

	// already published: a second trigger fails without sending
	_, err = p.Publish(ctx, id)
	require.Error(t, err)
	assert.Len(t, tg.calls, 1)
}

func TestPublishFailureReleasesClaim(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	id := addApproved(t, d, db.NewContent{Type: "text", Text: "x"})
	tg.sendErr = errors.New("telegram down")

	_, err := p.Publish(ctx, id)
	require.Error(t, err)

	c, err := d.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db.ContentApproved, c.Status, "failed publish must revert to approved")

	// retry succeeds once the transport recovers
	tg.sendErr = nil
	_, err = p.Publish(ctx, id)
	require.NoError(t, err)
}

func TestPublishCoverWatermarkFallback(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	bookID, err := d.AddBook(ctx, "کویر", "pdf-file", 1)
	require.NoError(t, err)
	require.NoError(t, d.SetBookCover(ctx, bookID, "cover-file", 5))

	// cover bytes are not a decodable image: watermarking fails, the
	// original bytes must still go out
	garbage := []byte("definitely not an image")
	tg.files["cover-file"] = garbage

	id := addApproved(t, d, db.NewContent{BookID: bookID, Type: "quote", Text: "نقل", UseCover: true})
	_, err = p.Publish(ctx, id)
	require.NoError(t, err)

	require.Len(t, tg.calls, 1)
	assert.Equal(t, "photoBytes", tg.calls[0].method)
	assert.Equal(t, garbage, tg.calls[0].data)
}

func TestPublishCoverDownloadFailureFallsThrough(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	bookID, err := d.AddBook(ctx, "کتاب", "pdf-file", 1)
	require.NoError(t, err)
	require.NoError(t, d.SetBookCover(ctx, bookID, "cover-file", 5))
	tg.fileErr = errors.New("file too big")

	id := addApproved(t, d, db.NewContent{BookID: bookID, Type: "quote", Text: "نقل", UseCover: true})
	_, err = p.Publish(ctx, id)
	require.NoError(t, err)

	// no other media source: degrades to a text post
	require.Len(t, tg.calls, 1)
	assert.Equal(t, "text", tg.calls[0].method)
}

func TestPublishOwnFilePassThrough(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	id := addApproved(t, d, db.NewContent{Type: "image", Caption: "عکس", FileID: "photo-123"})
	_, err := p.Publish(ctx, id)
	require.NoError(t, err)

	require.Len(t, tg.calls, 1)
	assert.Equal(t, "photoID", tg.calls[0].method)
	assert.Equal(t, "photo-123", tg.calls[0].fileID)
}

func TestPublishSourceMessageCopy(t *testing.T) {
	p, d, tg := newTestPublisher(t)
	ctx := context.Background()

	id := addApproved(t, d, db.NewContent{Type: "image", Caption: "از پیام", MessageID: 42})
	_, err := p.Publish(ctx, id)
	require.NoError(t, err)

	require.Len(t, tg.calls, 1)
	assert.Equal(t, "copy", tg.calls[0].method)
}

func TestComposeOrderAndFooter(t *testing.T) {
	p, d, _ := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, d.SetFooterSetting(ctx, "id_format", "ID:{id}|{type}|{date}"))
	_, err := d.AddHashtag(ctx, "کتاب", "general")
	require.NoError(t, err)
	tags, err := d.ListHashtags(ctx, false)
	require.NoError(t, err)
	require.NoError(t, d.ApproveHashtag(ctx, tags[0].ID))

	text, used := p.compose(ctx, db.Content{ID: 42, Type: "quote", Text: "بدنه"})
	lines := []string{"بدنه", "#کتاب", "ID:42|نقل‌قول|2025/03/21"}
	assert.Equal(t, lines[0]+"\n\n"+lines[1]+"\n\n"+lines[2], text)
	assert.Equal(t, []string{"کتاب"}, used)
}

func TestFooterTogglesAndCustomText(t *testing.T) {
	p, d, _ := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, d.SetFooterSetting(ctx, "id_format", "{id} {type} {date}"))
	require.NoError(t, d.SetFooterSetting(ctx, "show_type", "0"))
	require.NoError(t, d.SetFooterSetting(ctx, "custom_text", "کانال ما"))

	footer := FooterText(ctx, d, 7, "summary", p.now())
	assert.Contains(t, footer, "کانال ما")
	assert.Contains(t, footer, "7")
	assert.NotContains(t, footer, "خلاصه کتاب")
	assert.Contains(t, footer, "2025/03/21")
}

func TestFooterCustomTextPlaceholders(t *testing.T) {
	p, d, _ := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, d.SetFooterSetting(ctx, "id_format", "ID:{id}|{type}|{date}"))
	require.NoError(t, d.SetFooterSetting(ctx, "custom_text", "پست {id} در {date}"))

	footer := FooterText(ctx, d, 42, "quote", p.now())
	assert.Contains(t, footer, "پست 42 در 2025/03/21")
	assert.NotContains(t, footer, "{")

	// turning the content id off removes the whole id line, not just the number
	require.NoError(t, d.SetFooterSetting(ctx, "show_content_id", "0"))
	footer = FooterText(ctx, d, 42, "quote", p.now())
	assert.Equal(t, "پست 42 در 2025/03/21", footer)
	assert.NotContains(t, footer, "ID:")
}

func TestHashtagLineLimitsAndDedup(t *testing.T) {
	_, d, _ := newTestPublisher(t)
	ctx := context.Background()

	quoteTags := []string{"ق۱", "ق۲", "ق۳", "ق۴", "ق۵", "ق۶", "ق۷"}
	generalTags := []string{"ع۱", "ع۲", "ع۳", "ع۴"}
	for _, tag := range quoteTags {
		_, err := d.AddHashtag(ctx, tag, "quote")
		require.NoError(t, err)
	}
	for _, tag := range generalTags {
		_, err := d.AddHashtag(ctx, tag, "general")
		require.NoError(t, err)
	}
	all, err := d.ListHashtags(ctx, false)
	require.NoError(t, err)
	for _, h := range all {
		require.NoError(t, d.ApproveHashtag(ctx, h.ID))
	}

	line := HashtagLine(ctx, d, "quote")
	fields := strings.Fields(line)
	assert.Len(t, fields, 8, "5 typed + 3 general")
	for _, f := range fields {
		assert.True(t, strings.HasPrefix(f, "#"))
	}

	// general-typed content pulls only from the general pool, deduplicated
	line = HashtagLine(ctx, d, "text")
	fields = strings.Fields(line)
	assert.LessOrEqual(t, len(fields), 5)
	seen := map[string]bool{}
	for _, f := range fields {
		assert.False(t, seen[f], "duplicate tag %s", f)
		seen[f] = true
	}
}
