
// Package books runs the book pipeline: PDF ingestion from the admin group,
// metadata extraction, and AI content generation with repetition avoidance.
package books

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mask1381/ketabrooz/internal/ai"
	"github.com/mask1381/ketabrooz/internal/db"
	"github.com/mask1381/ketabrooz/internal/kinds"
	"github.com/mask1381/ketabrooz/internal/pdf"
)

// Generator is the slice of the AI client this service uses.
type Generator interface {
	GenerateSummary(ctx context.Context, text string, minWords, maxWords int) (ai.Summary, error)
	AnalyzeImage(ctx context.Context, img []byte) (ai.ImageAnalysis, error)
	GenerateFromHistory(ctx context.Context, history []ai.HistoryItem, kind, title, author, bookText string) (ai.Generated, error)
}

// Transport is the slice of the Telegram client this service uses.
type Transport interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) (int, string, error)
}

type Service struct {
	db *db.DB
	tg Transport
	ai Generator

	// adminChat is where extracted covers are parked so they get a reusable
	// file id.
	adminChat int64

	maxTextPages int
}

func New(database *db.DB, tg Transport, gen Generator, adminChat int64) *Service {
	return &Service{db: database, tg: tg, ai: gen, adminChat: adminChat, maxTextPages: 50}
}

// IncomingPDF describes a document message seen in the admin group.
type IncomingPDF struct {
	FileID    string
	MessageID int
	FileName  string
	MimeType  string
}

// IsPDF reports whether a document looks like a book upload.
func (in IncomingPDF) IsPDF() bool {
	return in.MimeType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(in.FileName), ".pdf")
}

// Ingest registers an uploaded PDF as a pending book. Re-sending the same
// file is a no-op: the existing book comes back with created=false.
func (s *Service) Ingest(ctx context.Context, in IncomingPDF) (db.Book, bool, error) {
	if existing, ok, err := s.db.GetBookByFileID(ctx, in.FileID); err != nil {
		return db.Book{}, false, err
	} else if ok {
		return existing, false, nil
	}

	title := strings.TrimSuffix(in.FileName, ".pdf")
	title = strings.TrimSuffix(title, ".PDF")
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	if title == "" {
		title = "کتاب بدون عنوان"
	}

	id, err := s.db.AddBook(ctx, title, in.FileID, in.MessageID)
	if err != nil {
		return db.Book{}, false, err
	}
	book, err := s.db.GetBook(ctx, id)
	if err != nil {
		return db.Book{}, false, err
	}
	log.Printf("[books] ingested book %d (%s)", id, title)
	return book, true, nil
}

// Report is what processing accomplished for one book. Enrichment steps are
// opportunistic, so a successful report can still carry a content error.
type Report struct {
	Book       db.Book
	Pages      int
	TextRunes  int
	CoverSaved bool
	ContentID  int64
	ContentErr error
}

// Process downloads a book's PDF, extracts text and a cover, enriches
// metadata through the AI collaborator, and drafts an initial quote post.
// Only the PDF download is fatal; every enrichment failure degrades.
func (s *Service) Process(ctx context.Context, bookID int64) (Report, error) {
	book, err := s.db.GetBook(ctx, bookID)
	if err != nil {
		return Report{}, fmt.Errorf("book %d not found", bookID)
	}

	data, err := s.tg.DownloadFile(ctx, book.PDFFileID)
	if err != nil {
		return Report{}, fmt.Errorf("download pdf for book %d: %w", bookID, err)
	}

	ext := pdf.Extract(data, s.maxTextPages)
	rep := Report{Pages: ext.PageCount, TextRunes: len([]rune(ext.Text))}

	meta := db.ProcessMeta{
		Author:     book.Author,
		Category:   book.Category,
		Tags:       book.Tags,
		TotalPages: ext.PageCount,
		Notes:      book.Notes,
	}

	if ext.Text != "" {
		// notes keep a raw excerpt of the book itself; generation later
		// windows into this, so a summary would starve it
		meta.Notes = excerpt(ext.Text, notesLimit)
		if sum, err := s.ai.GenerateSummary(ctx, ext.Text, 150, 300); err != nil {
			log.Printf("[books] summary for book %d failed: %v", bookID, err)
		} else if meta.Category == "" {
			meta.Category = sum.Genre
		}
	}

	if ext.Cover != nil {
		rep.CoverSaved = s.storeCover(ctx, &book, &meta, ext)
	}

	if err := s.db.MarkBookProcessed(ctx, bookID, meta); err != nil {
		return Report{}, err
	}
	book, err = s.db.GetBook(ctx, bookID)
	if err != nil {
		return Report{}, err
	}
	rep.Book = book

	rep.ContentID, rep.ContentErr = s.draftQuote(ctx, book, ext.Text)
	return rep, nil
}

// storeCover analyzes the extracted cover and uploads it to the admin chat so
// it gets a file id the publisher can reuse. Reports whether a cover was
// stored.
func (s *Service) storeCover(ctx context.Context, book *db.Book, meta *db.ProcessMeta, ext pdf.Result) bool {
	if an, err := s.ai.AnalyzeImage(ctx, ext.Cover); err != nil {
		log.Printf("[books] cover analysis for book %d failed: %v", book.ID, err)
	} else {
		if meta.Author == "" {
			meta.Author = an.Author
		}
		if meta.Category == "" {
			meta.Category = an.Category
		}
		if meta.Tags == "" && len(an.Tags) > 0 {
			meta.Tags = strings.Join(an.Tags, ",")
		}
		if an.Title != "" && (book.Title == "" || book.Title == "کتاب بدون عنوان") {
			if err := s.db.SetBookTitle(ctx, book.ID, an.Title); err == nil {
				book.Title = an.Title
			}
		}
	}

	if book.CoverFileID != "" {
		return true
	}
	name := fmt.Sprintf("cover_%d.%s", book.ID, coverExt(ext.CoverType))
	msgID, fileID, err := s.tg.SendPhotoBytes(ctx, s.adminChat, name, ext.Cover,
		fmt.Sprintf("🖼 جلد کتاب «%s»", book.Title))
	if err != nil || fileID == "" {
		log.Printf("[books] cover upload for book %d failed: %v", book.ID, err)
		return false
	}
	if err := s.db.SetBookCover(ctx, book.ID, fileID, msgID); err != nil {
		return false
	}
	book.CoverFileID = fileID
	return true
}

// notesLimit caps the stored book excerpt.
const notesLimit = 5000

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func coverExt(fileType string) string {
	if fileType == "" {
		return "jpg"
	}
	return fileType
}

// draftQuote generates the automatic first post for a freshly processed book
// and parks it in the approval queue.
func (s *Service) draftQuote(ctx context.Context, book db.Book, bookText string) (int64, error) {
	if bookText == "" {
		bookText = book.Notes
	}
	gen, err := s.generate(ctx, string(kinds.Quote), book, bookText)
	if err != nil {
		return 0, err
	}
	text := gen.TextFor(string(kinds.Quote))
	if text == "" {
		return 0, fmt.Errorf("empty quote for book %d", book.ID)
	}
	return s.db.AddContent(ctx, db.NewContent{
		BookID:   book.ID,
		Type:     string(kinds.Quote),
		Text:     text,
		UseCover: book.CoverFileID != "",
		Status:   db.ContentPending,
	})
}

// GenerateContent creates a post of the given kind on demand. With bookID 0
// the most recently processed book is used.
func (s *Service) GenerateContent(ctx context.Context, kind string, bookID int64) (int64, error) {
	var book db.Book
	if bookID != 0 {
		var err error
		book, err = s.db.GetBook(ctx, bookID)
		if err != nil {
			return 0, fmt.Errorf("book %d not found", bookID)
		}
	} else {
		list, err := s.db.ListBooks(ctx, db.BookProcessed, 1, 0)
		if err != nil {
			return 0, err
		}
		if len(list) == 0 {
			return 0, fmt.Errorf("no processed books to generate from")
		}
		book = list[0]
	}

	gen, err := s.generate(ctx, kind, book, book.Notes)
	if err != nil {
		return 0, err
	}
	text := gen.TextFor(kind)
	if text == "" {
		return 0, fmt.Errorf("model returned no %s text", kind)
	}
	return s.db.AddContent(ctx, db.NewContent{
		BookID:   book.ID,
		Type:     kind,
		Text:     text,
		UseCover: book.CoverFileID != "",
		Status:   db.ContentPending,
	})
}

func (s *Service) generate(ctx context.Context, kind string, book db.Book, bookText string) (ai.Generated, error) {
	history, err := s.publishedHistory(ctx)
	if err != nil {
		return ai.Generated{}, err
	}
	return s.ai.GenerateFromHistory(ctx, history, kind, book.Title, book.Author, bookText)
}

func (s *Service) publishedHistory(ctx context.Context) ([]ai.HistoryItem, error) {
	rows, err := s.db.ListContentByStatus(ctx, db.ContentPublished, 20, 0)
	if err != nil {
		return nil, err
	}
	var out []ai.HistoryItem
	for _, c := range rows {
		out = append(out, ai.HistoryItem{Text: c.Text, Caption: c.Caption})
	}
	return out, nil
}
