
package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestBookIngestDedupe(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	id, err := d.AddBook(ctx, "کویر", "file-abc", 10)
	require.NoError(t, err)

	got, ok, err := d.GetBookByFileID(ctx, "file-abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, BookPending, got.Status)

	_, ok, err = d.GetBookByFileID(ctx, "file-unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkBookProcessedOverwrites(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	id, err := d.AddBook(ctx, "کتاب", "f1", 1)
	require.NoError(t, err)

	require.NoError(t, d.MarkBookProcessed(ctx, id, ProcessMeta{Author: "الف", Category: "رمان", TotalPages: 120, Notes: "اول"}))
	require.NoError(t, d.MarkBookProcessed(ctx, id, ProcessMeta{Author: "ب", Category: "شعر", TotalPages: 90, Notes: "دوم"}))

	b, err := d.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ب", b.Author)
	assert.Equal(t, "شعر", b.Category)
	assert.Equal(t, 90, b.TotalPages)
	assert.Equal(t, "دوم", b.Notes)
	assert.Equal(t, BookProcessed, b.Status)
	assert.True(t, b.ProcessedDate.Valid)
}

func TestContentLifecycle(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	id, err := d.AddContent(ctx, NewContent{Type: "quote", Text: "متن", Status: ContentPending})
	require.NoError(t, err)

	// not approved yet: claim must fail
	claimed, err := d.ClaimForPublish(ctx, id)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, d.ApproveContent(ctx, id))
	c, err := d.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ContentApproved, c.Status)
	assert.True(t, c.ApprovedDate.Valid)

	// approving twice is an error
	assert.Error(t, d.ApproveContent(ctx, id))

	claimed, err = d.ClaimForPublish(ctx, id)
	require.NoError(t, err)
	assert.True(t, claimed)

	// double claim loses
	claimed, err = d.ClaimForPublish(ctx, id)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, d.ReleaseClaim(ctx, id))
	claimed, err = d.ClaimForPublish(ctx, id)
	require.NoError(t, err)
	assert.True(t, claimed)

	require.NoError(t, d.MarkPublished(ctx, id, 777, time.Now()))
	c, err = d.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ContentPublished, c.Status)
	assert.EqualValues(t, 777, c.PublishedMessageID.Int64)

	// published rows cannot be marked again
	assert.Error(t, d.MarkPublished(ctx, id, 888, time.Now()))
}

func TestContentJoinsBook(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	bookID, err := d.AddBook(ctx, "بوف کور", "f2", 1)
	require.NoError(t, err)
	require.NoError(t, d.MarkBookProcessed(ctx, bookID, ProcessMeta{Author: "هدایت"}))

	id, err := d.AddContent(ctx, NewContent{BookID: bookID, Type: "quote", Text: "x", Status: ContentPending})
	require.NoError(t, err)

	c, err := d.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "بوف کور", c.BookTitle)
	assert.Equal(t, "هدایت", c.BookAuthor)

	// bookless rows survive the join
	id2, err := d.AddContent(ctx, NewContent{Type: "text", Text: "y"})
	require.NoError(t, err)
	c2, err := d.GetContent(ctx, id2)
	require.NoError(t, err)
	assert.Empty(t, c2.BookTitle)
	assert.False(t, c2.BookID.Valid)
}

func TestHashtagDuplicateIsNoOp(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	created, err := d.AddHashtag(ctx, "#کتاب خوب", "general")
	require.NoError(t, err)
	assert.True(t, created)

	// same tag after normalization
	created, err = d.AddHashtag(ctx, "کتاب_خوب", "quote")
	require.NoError(t, err)
	assert.False(t, created)

	tags, err := d.ListHashtags(ctx, false)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "کتاب_خوب", tags[0].Tag)
	assert.Equal(t, "general", tags[0].Type)
	assert.False(t, tags[0].IsApproved)
}

func TestApprovedTagsOrdering(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	for _, tag := range []string{"کم", "زیاد", "متوسط", "تاییدنشده"} {
		_, err := d.AddHashtag(ctx, tag, "quote")
		require.NoError(t, err)
	}
	tags, err := d.ListHashtags(ctx, false)
	require.NoError(t, err)
	for _, h := range tags {
		if h.Tag != "تاییدنشده" {
			require.NoError(t, d.ApproveHashtag(ctx, h.ID))
		}
	}
	require.NoError(t, d.BumpTagUsage(ctx, []string{"زیاد", "زیاد", "متوسط"}))

	got, err := d.ApprovedTags(ctx, "quote", 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "زیاد", got[0])
	assert.Equal(t, "متوسط", got[1])
	assert.NotContains(t, got, "تاییدنشده")
}

func TestFooterDefaultsSeeded(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	st, err := d.AllFooterSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", st["show_content_id"])
	assert.Equal(t, "🆔 شناسه: {id}", st["id_format"])

	// re-opening must not clobber admin edits
	require.NoError(t, d.SetFooterSetting(ctx, "id_format", "custom {id}"))
	require.NoError(t, d.seedDefaults(ctx))
	v, ok, err := d.GetFooterSetting(ctx, "id_format")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "custom {id}", v)
}

func TestBackupTimestamped(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	_, err := d.AddBook(ctx, "x", "f", 1)
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := d.BackupTimestamped(ctx, dir)
	require.NoError(t, err)

	restored, err := Open(path)
	require.NoError(t, err)
	defer restored.Close()
	n, err := restored.CountBooks(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSchedulePatterns(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	id, err := d.AddSchedulePattern(ctx, "quote", 9, 30)
	require.NoError(t, err)
	require.NoError(t, d.ToggleSchedulePattern(ctx, id))

	list, err := d.ListSchedulePatterns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)
	assert.Equal(t, 9, list[0].Hour)
}
