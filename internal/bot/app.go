
package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mask1381/ketabrooz/internal/ai"
	"github.com/mask1381/ketabrooz/internal/books"
	"github.com/mask1381/ketabrooz/internal/config"
	"github.com/mask1381/ketabrooz/internal/db"
	"github.com/mask1381/ketabrooz/internal/kinds"
	"github.com/mask1381/ketabrooz/internal/publish"
	"github.com/mask1381/ketabrooz/internal/session"
	"github.com/mask1381/ketabrooz/internal/telegram"
	"github.com/mask1381/ketabrooz/internal/utils"
	"github.com/mask1381/ketabrooz/internal/watermark"
)

type App struct {
	cfg config.Config
	db  *db.DB

	bot *tgbotapi.BotAPI
	tg  *telegram.Client

	books *books.Service
	pub   *publish.Publisher
	sess  *session.Store

	dataDir string
	dbPath  string
}

func New(cfg config.Config) (*App, error) {
	dataDir := cfg.DataDir
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dataDir, "ketabrooz.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	b, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	b.Debug = cfg.Debug

	tg := telegram.New(b)
	gen := ai.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	marker := watermark.New(watermark.MarkFromChannel(cfg.TargetChannelID, cfg.TargetChannelName))

	// Covers are parked in the source group so their file ids stay usable.
	coverChat := cfg.SourceGroupID
	if coverChat == 0 {
		coverChat = cfg.AdminIDs[0]
	}

	app := &App{
		cfg:     cfg,
		db:      database,
		bot:     b,
		tg:      tg,
		books:   books.New(database, tg, gen, coverChat),
		pub:     publish.New(database, tg, cfg.TargetChannelID, cfg.SourceGroupID, marker),
		sess:    session.New(session.DefaultTTL),
		dataDir: dataDir,
		dbPath:  dbPath,
	}
	return app, nil
}

func (a *App) Close() {
	_ = a.db.Close()
}

func (a *App) Run() error {
	log.Printf("Bot authorized as @%s", a.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := a.bot.GetUpdatesChan(u)

	for upd := range updates {
		a.handleUpdate(upd)
	}
	return nil
}

func (a *App) NotifyAdmins(text string) {
	for _, id := range a.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(id, text)
		msg.DisableWebPagePreview = true
		_, _ = a.bot.Send(msg)
	}
}

func (a *App) handleUpdate(upd tgbotapi.Update) {
	if upd.Message != nil {
		a.handleMessage(*upd.Message)
		return
	}
	if upd.CallbackQuery != nil {
		a.handleCallback(*upd.CallbackQuery)
		return
	}
}

func (a *App) reply(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.DisableWebPagePreview = true
	_, _ = a.bot.Send(msg)
}

func (a *App) handleMessage(msg tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID

	// PDF uploads in the watched group become pending books.
	if a.cfg.SourceGroupID != 0 && msg.Chat.ID == a.cfg.SourceGroupID {
		if msg.Document != nil && a.cfg.IsAdmin(userID) {
			a.onIncomingPDF(userID, msg)
		}
		return
	}
	if !msg.Chat.IsPrivate() {
		return
	}
	if !a.cfg.IsAdmin(userID) {
		a.reply(userID, "⛔️ این ربات فقط برای مدیران کانال است.")
		return
	}

	ctx := context.Background()

	if e, ok := a.sess.Get(userID); ok && e.State != session.StateNone {
		if a.onAwaitedMessage(ctx, userID, e, msg) {
			return
		}
	}

	// PDFs sent directly to the bot work the same as group uploads.
	if msg.Document != nil {
		a.onIncomingPDF(userID, msg)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "menu", "panel":
			a.sendMainMenu(userID, 0)
		default:
			a.reply(userID, "دستور ناشناخته. /start را بزنید.")
		}
		return
	}

	a.sendMainMenu(userID, 0)
}

func (a *App) onIncomingPDF(userID int64, msg tgbotapi.Message) {
	in := books.IncomingPDF{
		FileID:    msg.Document.FileID,
		MessageID: msg.MessageID,
		FileName:  msg.Document.FileName,
		MimeType:  msg.Document.MimeType,
	}
	if !in.IsPDF() {
		return
	}
	ctx := context.Background()
	book, created, err := a.books.Ingest(ctx, in)
	if err != nil {
		log.Printf("[bot] ingest failed: %v", err)
		a.reply(msg.Chat.ID, "❌ ثبت کتاب ناموفق: "+err.Error())
		return
	}
	if !created {
		a.reply(msg.Chat.ID, fmt.Sprintf("ℹ️ این فایل قبلاً ثبت شده است: «%s» (کد %d)", book.Title, book.ID))
		return
	}
	_ = a.db.LogActivity(ctx, userID, "ingest_book", fmt.Sprintf("book %d: %s", book.ID, book.Title))
	a.reply(msg.Chat.ID, fmt.Sprintf("✅ کتاب «%s» ثبت شد (کد %d).\nبرای پردازش از منوی کتاب‌ها اقدام کنید.", book.Title, book.ID))
}

// onAwaitedMessage consumes a message that answers a pending prompt. Returns
// false when the state does not match the message so normal handling runs.
func (a *App) onAwaitedMessage(ctx context.Context, userID int64, e session.Entry, msg tgbotapi.Message) bool {
	switch e.State {
	case session.StateAwaitFooterText:
		a.sess.Clear(userID)
		text := strings.TrimSpace(msg.Text)
		if text == "-" {
			text = ""
		}
		if err := a.db.SetFooterSetting(ctx, "custom_text", text); err != nil {
			a.reply(userID, "❌ ذخیره نشد: "+err.Error())
			return true
		}
		a.reply(userID, "✅ متن ثابت فوتر ذخیره شد.")
		a.sendFooterMenu(userID, 0)
		return true

	case session.StateAwaitIDFormat:
		a.sess.Clear(userID)
		format := strings.TrimSpace(msg.Text)
		if format == "" {
			a.reply(userID, "قالب خالی است. دوباره تلاش کنید.")
			return true
		}
		if err := a.db.SetFooterSetting(ctx, "id_format", format); err != nil {
			a.reply(userID, "❌ ذخیره نشد: "+err.Error())
			return true
		}
		a.reply(userID, "✅ قالب شناسه ذخیره شد.")
		a.sendFooterMenu(userID, 0)
		return true

	case session.StateAwaitHashtags:
		a.sess.Clear(userID)
		tagType := e.ContentKind
		added := 0
		for _, raw := range strings.FieldsFunc(msg.Text, func(r rune) bool { return r == ',' || r == '\n' || r == ' ' }) {
			if ok, err := a.db.AddHashtag(ctx, raw, tagType); err == nil && ok {
				added++
			}
		}
		a.reply(userID, fmt.Sprintf("✅ %d هشتگ جدید ثبت شد (در انتظار تایید).", added))
		a.sendHashtagsMenu(userID, 0)
		return true

	case session.StateAwaitManualText:
		a.sess.Clear(userID)
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			a.reply(userID, "متن خالی است. دوباره از منو شروع کنید.")
			return true
		}
		id, err := a.db.AddContent(ctx, db.NewContent{
			Type:      e.ContentKind,
			Text:      text,
			MessageID: msg.MessageID,
			IsManual:  true,
			Status:    db.ContentPending,
		})
		if err != nil {
			a.reply(userID, "❌ ثبت نشد: "+err.Error())
			return true
		}
		_ = a.db.LogActivity(ctx, userID, "manual_content", fmt.Sprintf("content %d (%s)", id, e.ContentKind))
		a.reply(userID, fmt.Sprintf("✅ محتوای %d در صف تایید قرار گرفت.", id))
		return true

	case session.StateAwaitManualFile:
		fileID := fileIDFromMessage(msg)
		if fileID == "" {
			a.reply(userID, "لطفاً یک عکس، ویدیو یا فایل ارسال کنید.")
			return true
		}
		a.sess.Clear(userID)
		id, err := a.db.AddContent(ctx, db.NewContent{
			Type:      e.ContentKind,
			Caption:   msg.Caption,
			FileID:    fileID,
			MessageID: msg.MessageID,
			IsManual:  true,
			Status:    db.ContentPending,
		})
		if err != nil {
			a.reply(userID, "❌ ثبت نشد: "+err.Error())
			return true
		}
		_ = a.db.LogActivity(ctx, userID, "manual_content", fmt.Sprintf("content %d (%s)", id, e.ContentKind))
		a.reply(userID, fmt.Sprintf("✅ محتوای %d در صف تایید قرار گرفت.", id))
		return true

	case session.StateAwaitSchedule:
		a.sess.Clear(userID)
		kind, hour, minute, err := parseSchedule(msg.Text)
		if err != nil {
			a.reply(userID, "❌ "+err.Error()+"\nمثال: quote 18:30")
			return true
		}
		if _, err := a.db.AddSchedulePattern(ctx, kind, hour, minute); err != nil {
			a.reply(userID, "❌ ثبت نشد: "+err.Error())
			return true
		}
		a.reply(userID, "✅ الگوی زمان‌بندی ثبت شد.")
		a.sendScheduleMenu(userID, 0)
		return true

	case session.StateAwaitBookTitle:
		a.sess.Clear(userID)
		title := strings.TrimSpace(msg.Text)
		if title == "" || e.BookID == 0 {
			a.reply(userID, "عنوان خالی است.")
			return true
		}
		if err := a.db.SetBookTitle(ctx, e.BookID, title); err != nil {
			a.reply(userID, "❌ ذخیره نشد: "+err.Error())
			return true
		}
		a.reply(userID, "✅ عنوان کتاب بروزرسانی شد.")
		a.sendBookMenu(userID, 0, e.BookID)
		return true
	}
	return false
}

// parseSchedule reads admin input of the form "kind HH:MM".
func parseSchedule(s string) (string, int, int, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return "", 0, 0, fmt.Errorf("قالب ورودی درست نیست")
	}
	if _, ok := kinds.ByID(fields[0]); !ok {
		return "", 0, 0, fmt.Errorf("نوع «%s» شناخته نشد", fields[0])
	}
	hm := strings.Split(fields[1], ":")
	if len(hm) != 2 {
		return "", 0, 0, fmt.Errorf("ساعت باید به شکل HH:MM باشد")
	}
	hour, err1 := strconv.Atoi(hm[0])
	minute, err2 := strconv.Atoi(hm[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", 0, 0, fmt.Errorf("ساعت باید به شکل HH:MM باشد")
	}
	return fields[0], hour, minute, nil
}

func fileIDFromMessage(msg tgbotapi.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		return msg.Video.FileID
	case msg.Audio != nil:
		return msg.Audio.FileID
	case msg.Document != nil:
		return msg.Document.FileID
	}
	return ""
}

func (a *App) handleCallback(q tgbotapi.CallbackQuery) {
	cb := tgbotapi.NewCallback(q.ID, "")
	_, _ = a.bot.Request(cb)

	if q.Message == nil || q.From == nil {
		return
	}
	userID := q.From.ID
	if !a.cfg.IsAdmin(userID) {
		return
	}
	msgID := q.Message.MessageID
	ctx := context.Background()

	parts := strings.Split(q.Data, "|")
	action := parts[0]
	argInt := func(i int) int64 {
		if len(parts) <= i {
			return 0
		}
		n, _ := strconv.ParseInt(parts[i], 10, 64)
		return n
	}
	argStr := func(i int) string {
		if len(parts) <= i {
			return ""
		}
		return parts[i]
	}

	switch action {
	case "main":
		a.sendMainMenu(userID, msgID)

	// ---- books ----
	case "books":
		a.sendBooksMenu(userID, msgID, int(argInt(1)))
	case "book":
		a.sendBookMenu(userID, msgID, argInt(1))
	case "process":
		a.onProcessBook(ctx, userID, argInt(1))
	case "retitle":
		a.sess.Set(userID, session.Entry{State: session.StateAwaitBookTitle, BookID: argInt(1)})
		a.reply(userID, "عنوان جدید کتاب را بفرستید.")
	case "delbook":
		if err := a.db.DeleteBook(ctx, argInt(1)); err != nil {
			a.reply(userID, "❌ حذف نشد: "+err.Error())
		} else {
			_ = a.db.LogActivity(ctx, userID, "delete_book", fmt.Sprintf("book %d", argInt(1)))
			a.sendBooksMenu(userID, msgID, 0)
		}

	// ---- approval queue ----
	case "queue":
		a.sendQueueMenu(userID, msgID, int(argInt(1)))
	case "view":
		a.sendContentPreview(userID, msgID, argInt(1))
	case "approve":
		if err := a.db.ApproveContent(ctx, argInt(1)); err != nil {
			a.reply(userID, "❌ "+err.Error())
		} else {
			_ = a.db.LogActivity(ctx, userID, "approve_content", fmt.Sprintf("content %d", argInt(1)))
			a.sendContentPreview(userID, msgID, argInt(1))
		}
	case "reject":
		if err := a.db.RejectContent(ctx, argInt(1)); err != nil {
			a.reply(userID, "❌ "+err.Error())
		} else {
			_ = a.db.LogActivity(ctx, userID, "reject_content", fmt.Sprintf("content %d", argInt(1)))
			a.sendQueueMenu(userID, msgID, 0)
		}
	case "pub":
		a.onPublish(ctx, userID, argInt(1))
	case "release":
		// manual recovery for rows stuck in publishing after a crash
		if err := a.db.ReleaseClaim(ctx, argInt(1)); err != nil {
			a.reply(userID, "❌ "+err.Error())
		} else {
			a.sendContentPreview(userID, msgID, argInt(1))
		}
	case "approved":
		a.sendApprovedMenu(userID, msgID, int(argInt(1)))

	// ---- AI generation ----
	case "aigen":
		a.sendAIGenMenu(userID, msgID)
	case "gen":
		a.onGenerate(ctx, userID, argStr(1), argInt(2))

	// ---- manual content ----
	case "manual":
		a.sendManualKindMenu(userID, msgID)
	case "mkind":
		kind := argStr(1)
		state := session.StateAwaitManualFile
		if kinds.MediaClass(kind) == kinds.MediaNone {
			state = session.StateAwaitManualText
		}
		a.sess.Set(userID, session.Entry{State: state, ContentKind: kind})
		if state == session.StateAwaitManualText {
			a.reply(userID, "متن پست را بفرستید.")
		} else {
			a.reply(userID, "فایل مورد نظر را بفرستید (کپشن اختیاری).")
		}

	// ---- hashtags ----
	case "tags":
		a.sendHashtagsMenu(userID, msgID)
	case "tagadd":
		a.sess.Set(userID, session.Entry{State: session.StateAwaitHashtags, ContentKind: argStr(1)})
		a.reply(userID, "هشتگ‌ها را بفرستید (با فاصله یا ویرگول جدا کنید، # لازم نیست).")
	case "tagok":
		if err := a.db.ApproveHashtag(ctx, argInt(1)); err == nil {
			a.sendHashtagsMenu(userID, msgID)
		}
	case "tagdel":
		if err := a.db.DeleteHashtag(ctx, argInt(1)); err == nil {
			a.sendHashtagsMenu(userID, msgID)
		}

	// ---- footer ----
	case "footer":
		a.sendFooterMenu(userID, msgID)
	case "ftoggle":
		a.onFooterToggle(ctx, userID, msgID, argStr(1))
	case "fformat":
		a.sess.Set(userID, session.Entry{State: session.StateAwaitIDFormat})
		a.reply(userID, "قالب شناسه را بفرستید.\nجایگزین‌ها: {id} {type} {date}")
	case "fcustom":
		a.sess.Set(userID, session.Entry{State: session.StateAwaitFooterText})
		a.reply(userID, "متن ثابت فوتر را بفرستید (برای حذف، «-» بفرستید).\nجایگزین‌ها: {id} {type} {date}")

	// ---- schedule ----
	case "sched":
		a.sendScheduleMenu(userID, msgID)
	case "schedadd":
		a.sess.Set(userID, session.Entry{State: session.StateAwaitSchedule})
		a.reply(userID, "الگو را به شکل «نوع ساعت:دقیقه» بفرستید، مثلا:\nquote 18:30")
	case "schedtoggle":
		if err := a.db.ToggleSchedulePattern(ctx, argInt(1)); err == nil {
			a.sendScheduleMenu(userID, msgID)
		}
	case "scheddel":
		if err := a.db.DeleteSchedulePattern(ctx, argInt(1)); err == nil {
			a.sendScheduleMenu(userID, msgID)
		}

	// ---- misc ----
	case "stats":
		a.sendStatsMenu(userID, msgID)
	case "backup":
		a.sendBackupMenu(userID, msgID)
	case "dbbackup":
		a.sendDBBackup(userID)
	case "help":
		a.sendHelp(userID, msgID)
	}
}

func (a *App) onProcessBook(ctx context.Context, userID, bookID int64) {
	a.reply(userID, "⏳ در حال پردازش کتاب... (دانلود، استخراج متن و جلد، تحلیل هوشمند)")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	rep, err := a.books.Process(ctx, bookID)
	if err != nil {
		log.Printf("[bot] process book %d failed: %v", bookID, err)
		a.reply(userID, "❌ پردازش ناموفق: "+err.Error())
		return
	}
	_ = a.db.LogActivity(ctx, userID, "process_book", fmt.Sprintf("book %d", bookID))

	var b strings.Builder
	fmt.Fprintf(&b, "✅ کتاب «%s» پردازش شد.\n", rep.Book.Title)
	fmt.Fprintf(&b, "صفحات: %s\n", utils.ToPersianDigits(strconv.Itoa(rep.Pages)))
	if rep.Book.Author != "" {
		fmt.Fprintf(&b, "نویسنده: %s\n", rep.Book.Author)
	}
	if rep.Book.Category != "" {
		fmt.Fprintf(&b, "دسته: %s\n", rep.Book.Category)
	}
	if rep.CoverSaved {
		b.WriteString("🖼 جلد کتاب ذخیره شد.\n")
	}
	if rep.ContentErr != nil {
		fmt.Fprintf(&b, "⚠️ تولید پست اولیه ناموفق: %v\n", rep.ContentErr)
	} else {
		fmt.Fprintf(&b, "📝 پست اولیه %d در صف تایید است.\n", rep.ContentID)
	}
	a.reply(userID, b.String())
}

func (a *App) onGenerate(ctx context.Context, userID int64, kind string, bookID int64) {
	if _, ok := kinds.ByID(kind); !ok {
		return
	}
	a.reply(userID, "⏳ در حال تولید محتوا...")

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	id, err := a.books.GenerateContent(ctx, kind, bookID)
	if err != nil {
		a.reply(userID, "❌ تولید ناموفق: "+err.Error())
		return
	}
	_ = a.db.LogActivity(ctx, userID, "generate_content", fmt.Sprintf("content %d (%s)", id, kind))
	a.reply(userID, fmt.Sprintf("✅ محتوای %d ساخته شد و در صف تایید است.", id))
	a.sendContentPreview(userID, 0, id)
}

func (a *App) onPublish(ctx context.Context, userID, contentID int64) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	msgID, err := a.pub.Publish(ctx, contentID)
	if err != nil {
		a.reply(userID, "❌ انتشار ناموفق: "+err.Error())
		return
	}
	_ = a.db.LogActivity(ctx, userID, "publish_content", fmt.Sprintf("content %d -> message %d", contentID, msgID))
	a.reply(userID, fmt.Sprintf("📣 محتوای %d منتشر شد (پیام %d).", contentID, msgID))
}

func (a *App) onFooterToggle(ctx context.Context, userID int64, msgID int, key string) {
	switch key {
	case "show_content_id", "show_type", "show_date":
	default:
		return
	}
	cur, _, err := a.db.GetFooterSetting(ctx, key)
	if err != nil {
		return
	}
	next := "1"
	if cur == "1" {
		next = "0"
	}
	if err := a.db.SetFooterSetting(ctx, key, next); err == nil {
		a.sendFooterMenu(userID, msgID)
	}
}

// ---------------- menus ----------------

func (a *App) sendMainMenu(userID int64, msgID int) {
	text := "📚 پنل مدیریت کانال کتاب\n\nهمه چیز با دکمه‌ها (Inline) کنترل می‌شود.\n\nیکی را انتخاب کنید:"
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 کتاب‌ها", "books|0"),
			tgbotapi.NewInlineKeyboardButtonData("🗂 صف تایید", "queue|0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 تولید محتوا", "aigen"),
			tgbotapi.NewInlineKeyboardButtonData("✍️ محتوای دستی", "manual"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("#️⃣ هشتگ‌ها", "tags"),
			tgbotapi.NewInlineKeyboardButtonData("📝 فوتر پست‌ها", "footer"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ الگوی زمان‌بندی", "sched"),
			tgbotapi.NewInlineKeyboardButtonData("📊 آمار", "stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛟 بکاپ", "backup"),
			tgbotapi.NewInlineKeyboardButtonData("❓ راهنما", "help"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) sendBooksMenu(userID int64, msgID int, page int) {
	ctx := context.Background()
	const pageSize = 8
	list, err := a.db.ListBooks(ctx, "", pageSize+1, page*pageSize)
	if err != nil {
		return
	}
	hasNext := len(list) > pageSize
	if hasNext {
		list = list[:pageSize]
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range list {
		prefix := "⏳"
		if b.Status == db.BookProcessed {
			prefix = "✅"
		}
		label := fmt.Sprintf("%s %s", prefix, utils.Truncate(b.Title, 28))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("book|%d", b.ID)),
		))
	}

	navRow := []tgbotapi.InlineKeyboardButton{}
	if page > 0 {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("⬅️ قبلی", fmt.Sprintf("books|%d", page-1)))
	}
	if hasNext {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("بعدی ➡️", fmt.Sprintf("books|%d", page+1)))
	}
	if len(navRow) > 0 {
		rows = append(rows, navRow)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
	))

	text := "📖 کتاب‌های ثبت‌شده:\n(⏳ یعنی هنوز پردازش نشده)\n\nبرای ثبت کتاب جدید، فایل PDF را بفرستید."
	a.editOrSendMenu(userID, msgID, text, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (a *App) sendBookMenu(userID int64, msgID int, bookID int64) {
	ctx := context.Background()
	b, err := a.db.GetBook(ctx, bookID)
	if err != nil {
		return
	}

	status := "⏳ در انتظار پردازش"
	if b.Status == db.BookProcessed {
		status = "✅ پردازش شده"
	} else if b.Status == db.BookFailed {
		status = "❌ پردازش ناموفق"
	}
	cover := "ندارد"
	if b.CoverFileID != "" {
		cover = "دارد"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 «%s»\n\n", b.Title)
	if b.Author != "" {
		fmt.Fprintf(&sb, "نویسنده: %s\n", b.Author)
	}
	if b.Category != "" {
		fmt.Fprintf(&sb, "دسته: %s\n", b.Category)
	}
	if b.TotalPages > 0 {
		fmt.Fprintf(&sb, "صفحات: %s\n", utils.ToPersianDigits(strconv.Itoa(b.TotalPages)))
	}
	fmt.Fprintf(&sb, "جلد: %s\n", cover)
	fmt.Fprintf(&sb, "وضعیت: %s\n", status)
	fmt.Fprintf(&sb, "ثبت: %s\n", utils.JalaliDateTime(time.Unix(b.UploadDate, 0)))
	if notes := strings.TrimSpace(b.Notes); notes != "" {
		fmt.Fprintf(&sb, "\n%s\n", utils.Truncate(notes, 400))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ پردازش", fmt.Sprintf("process|%d", b.ID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ عنوان", fmt.Sprintf("retitle|%d", b.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 نقل‌قول", fmt.Sprintf("gen|quote|%d", b.ID)),
			tgbotapi.NewInlineKeyboardButtonData("📖 معرفی", fmt.Sprintf("gen|description|%d", b.ID)),
			tgbotapi.NewInlineKeyboardButtonData("📝 خلاصه", fmt.Sprintf("gen|summary|%d", b.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 حذف", fmt.Sprintf("delbook|%d", b.ID)),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "books|0"),
		),
	)
	a.editOrSendMenu(userID, msgID, sb.String(), kb)
}

func (a *App) sendQueueMenu(userID int64, msgID int, page int) {
	a.sendContentList(userID, msgID, page, db.ContentPending, "queue",
		"🗂 صف تایید (جدیدترین اول):")
}

func (a *App) sendApprovedMenu(userID int64, msgID int, page int) {
	a.sendContentList(userID, msgID, page, db.ContentApproved, "approved",
		"✅ تایید‌شده‌ها، آماده انتشار:")
}

func (a *App) sendContentList(userID int64, msgID int, page int, status, action, title string) {
	ctx := context.Background()
	const pageSize = 8
	list, err := a.db.ListContentByStatus(ctx, status, pageSize+1, page*pageSize)
	if err != nil {
		return
	}
	hasNext := len(list) > pageSize
	if hasNext {
		list = list[:pageSize]
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range list {
		info, _ := kinds.ByID(c.Type)
		snippet := c.Text
		if snippet == "" {
			snippet = c.Caption
		}
		if snippet == "" {
			snippet = c.BookTitle
		}
		label := fmt.Sprintf("%s %d · %s", info.Emoji, c.ID, utils.Truncate(snippet, 24))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("view|%d", c.ID)),
		))
	}
	if len(list) == 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("— خالی —", "main"),
		))
	}

	navRow := []tgbotapi.InlineKeyboardButton{}
	if page > 0 {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("⬅️ قبلی", fmt.Sprintf("%s|%d", action, page-1)))
	}
	if hasNext {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("بعدی ➡️", fmt.Sprintf("%s|%d", action, page+1)))
	}
	if len(navRow) > 0 {
		rows = append(rows, navRow)
	}
	other := tgbotapi.NewInlineKeyboardButtonData("✅ تایید‌شده‌ها", "approved|0")
	if status == db.ContentApproved {
		other = tgbotapi.NewInlineKeyboardButtonData("🗂 صف تایید", "queue|0")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		other,
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
	))
	a.editOrSendMenu(userID, msgID, title, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (a *App) sendContentPreview(userID int64, msgID int, contentID int64) {
	ctx := context.Background()
	c, err := a.db.GetContent(ctx, contentID)
	if err != nil {
		a.reply(userID, "❌ محتوا پیدا نشد.")
		return
	}
	info, _ := kinds.ByID(c.Type)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s محتوای %d (%s)\n", info.Emoji, c.ID, info.NameFa)
	fmt.Fprintf(&sb, "وضعیت: %s\n", statusFa(c.Status))
	if c.BookTitle != "" {
		fmt.Fprintf(&sb, "کتاب: «%s»", c.BookTitle)
		if c.BookAuthor != "" {
			fmt.Fprintf(&sb, " اثر %s", c.BookAuthor)
		}
		sb.WriteString("\n")
	}
	if c.UseCover {
		sb.WriteString("🖼 با جلد کتاب منتشر می‌شود\n")
	}
	sb.WriteString("\n")
	body := c.Text
	if body == "" {
		body = c.Caption
	}
	sb.WriteString(utils.Truncate(body, 2500))

	var rows [][]tgbotapi.InlineKeyboardButton
	switch c.Status {
	case db.ContentDraft, db.ContentPending:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ تایید", fmt.Sprintf("approve|%d", c.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ رد", fmt.Sprintf("reject|%d", c.ID)),
		))
	case db.ContentApproved:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 انتشار در کانال", fmt.Sprintf("pub|%d", c.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ رد", fmt.Sprintf("reject|%d", c.ID)),
		))
	case db.ContentPublishing:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ آزادسازی", fmt.Sprintf("release|%d", c.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "queue|0"),
	))
	a.editOrSendMenu(userID, msgID, sb.String(), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func statusFa(status string) string {
	switch status {
	case db.ContentDraft:
		return "✍️ پیش‌نویس"
	case db.ContentPending:
		return "⏳ در انتظار تایید"
	case db.ContentApproved:
		return "✅ تایید شده"
	case db.ContentPublishing:
		return "📤 در حال انتشار"
	case db.ContentPublished:
		return "📣 منتشر شده"
	case db.ContentRejected:
		return "❌ رد شده"
	}
	return status
}

func (a *App) sendAIGenMenu(userID int64, msgID int) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, k := range kinds.Generatable() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", k.Emoji, k.NameFa),
				fmt.Sprintf("gen|%s|0", k.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
	))
	text := "🤖 تولید محتوا با هوش مصنوعی\n\nنوع پست را انتخاب کنید (از آخرین کتاب پردازش‌شده ساخته می‌شود):"
	a.editOrSendMenu(userID, msgID, text, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (a *App) sendManualKindMenu(userID int64, msgID int) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ متن", "mkind|text"),
			tgbotapi.NewInlineKeyboardButtonData("🖼 تصویر", "mkind|image"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎬 ویدیو", "mkind|video"),
			tgbotapi.NewInlineKeyboardButtonData("🎧 صوت", "mkind|audio"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📎 فایل", "mkind|file"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
		),
	)
	a.editOrSendMenu(userID, msgID, "✍️ محتوای دستی\n\nنوع پست را انتخاب کنید:", kb)
}

func (a *App) sendHashtagsMenu(userID int64, msgID int) {
	ctx := context.Background()
	tags, err := a.db.ListHashtags(ctx, false)
	if err != nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("#️⃣ هشتگ‌ها\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	shown := 0
	for _, h := range tags {
		if shown == 15 {
			break
		}
		shown++
		if h.IsApproved {
			fmt.Fprintf(&sb, "✅ #%s (%s، %s بار)\n", h.Tag, h.Type, utils.ToPersianDigits(strconv.Itoa(h.UsageCount)))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 #"+utils.Truncate(h.Tag, 20), fmt.Sprintf("tagdel|%d", h.ID)),
			))
		} else {
			fmt.Fprintf(&sb, "⏳ #%s (%s)\n", h.Tag, h.Type)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ #"+utils.Truncate(h.Tag, 18), fmt.Sprintf("tagok|%d", h.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("tagdel|%d", h.ID)),
			))
		}
	}
	if len(tags) == 0 {
		sb.WriteString("هنوز هشتگی ثبت نشده.\n")
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ عمومی", "tagadd|general"),
		tgbotapi.NewInlineKeyboardButtonData("➕ نقل‌قول", "tagadd|quote"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
	))
	a.editOrSendMenu(userID, msgID, sb.String(), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (a *App) sendFooterMenu(userID int64, msgID int) {
	ctx := context.Background()
	st, err := a.db.AllFooterSettings(ctx)
	if err != nil {
		return
	}
	onOff := func(key string) string {
		if st[key] == "1" {
			return "✅"
		}
		return "⛔️"
	}

	var sb strings.Builder
	sb.WriteString("📝 فوتر پست‌ها\n\n")
	fmt.Fprintf(&sb, "قالب شناسه: %s\n", st["id_format"])
	if custom := st["custom_text"]; custom != "" {
		fmt.Fprintf(&sb, "متن ثابت: %s\n", custom)
	}
	sb.WriteString("\nنمونه:\n")
	sb.WriteString(publish.FooterText(ctx, a.db, 42, string(kinds.Quote), utils.NowTehran()))

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(onOff("show_content_id")+" شناسه", "ftoggle|show_content_id"),
			tgbotapi.NewInlineKeyboardButtonData(onOff("show_type")+" نوع", "ftoggle|show_type"),
			tgbotapi.NewInlineKeyboardButtonData(onOff("show_date")+" تاریخ", "ftoggle|show_date"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ قالب شناسه", "fformat"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ متن ثابت", "fcustom"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
		),
	)
	a.editOrSendMenu(userID, msgID, sb.String(), kb)
}

func (a *App) sendScheduleMenu(userID int64, msgID int) {
	ctx := context.Background()
	patterns, err := a.db.ListSchedulePatterns(ctx)
	if err != nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("⏰ الگوی زمان‌بندی پیشنهادی\n(یادآور زمان مناسب هر نوع پست؛ انتشار همچنان دستی است)\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range patterns {
		mark := "✅"
		if !p.IsActive {
			mark = "⛔️"
		}
		label := fmt.Sprintf("%s %02d:%02d %s", mark, p.Hour, p.Minute, kinds.Label(p.ContentType))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("schedtoggle|%d", p.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("scheddel|%d", p.ID)),
		))
	}
	if len(patterns) == 0 {
		sb.WriteString("الگویی ثبت نشده.\n")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ افزودن الگو", "schedadd"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
	))
	a.editOrSendMenu(userID, msgID, sb.String(), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (a *App) sendStatsMenu(userID int64, msgID int) {
	ctx := context.Background()

	var sb strings.Builder
	sb.WriteString("📊 آمار\n\n")

	booksAll, _ := a.db.CountBooks(ctx, "")
	booksDone, _ := a.db.CountBooks(ctx, db.BookProcessed)
	fmt.Fprintf(&sb, "📖 کتاب‌ها: %s (پردازش‌شده: %s)\n",
		utils.ToPersianDigits(utils.FormatCount(int64(booksAll))),
		utils.ToPersianDigits(utils.FormatCount(int64(booksDone))))

	for _, st := range []string{db.ContentPending, db.ContentApproved, db.ContentPublished, db.ContentRejected} {
		n, _ := a.db.CountContentByStatus(ctx, st)
		fmt.Fprintf(&sb, "%s: %s\n", statusFa(st), utils.ToPersianDigits(utils.FormatCount(int64(n))))
	}

	if acts, err := a.db.RecentActivity(ctx, 5); err == nil && len(acts) > 0 {
		sb.WriteString("\nآخرین فعالیت‌ها:\n")
		for _, act := range acts {
			fmt.Fprintf(&sb, "• %s — %s\n", act.Action, utils.JalaliDateTime(time.Unix(act.CreatedDate, 0)))
		}
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 بروزرسانی", "stats"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
		),
	)
	a.editOrSendMenu(userID, msgID, sb.String(), kb)
}

func (a *App) sendBackupMenu(userID int64, msgID int) {
	text := "🛟 بکاپ دیتابیس\n\nیک نسخه کامل از دیتابیس (کتاب‌ها، محتوا، هشتگ‌ها و تنظیمات) برای شما ارسال می‌شود."
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ دریافت بکاپ", "dbbackup"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) sendDBBackup(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	path, err := a.db.BackupTimestamped(ctx, filepath.Join(a.dataDir, "backups"))
	if err != nil {
		a.reply(userID, "❌ بکاپ ناموفق: "+err.Error())
		return
	}
	doc := tgbotapi.NewDocument(userID, tgbotapi.FilePath(path))
	doc.Caption = "🛟 بکاپ دیتابیس — " + utils.JalaliDateTime(utils.NowTehran())
	if _, err := a.bot.Send(doc); err != nil {
		a.reply(userID, "❌ ارسال بکاپ ناموفق: "+err.Error())
	}
	_ = os.Remove(path)
}

func (a *App) sendHelp(userID int64, msgID int) {
	text := `❓ راهنما

📖 ثبت کتاب: فایل PDF را در گروه مبدا (یا همینجا) بفرستید.
⚙️ پردازش: متن و جلد استخراج و با هوش مصنوعی تحلیل می‌شود؛ یک نقل‌قول اولیه هم ساخته می‌شود.
🗂 صف تایید: هر پست قبل از انتشار باید تایید شود.
📣 انتشار: پست تاییدشده با هشتگ و فوتر به کانال می‌رود؛ جلد کتاب واترمارک می‌خورد.
#️⃣ هشتگ‌ها: فقط هشتگ‌های تاییدشده در پست‌ها استفاده می‌شوند.
📝 فوتر: قالب شناسه با {id} {type} {date} قابل تنظیم است.`
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "main"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) editOrSendMenu(userID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msgID != 0 {
		edit := tgbotapi.NewEditMessageText(userID, msgID, text)
		edit.ReplyMarkup = &kb
		edit.DisableWebPagePreview = true
		if _, err := a.bot.Request(edit); err == nil {
			return
		}
	}
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = kb
	msg.DisableWebPagePreview = true
	_, _ = a.bot.Send(msg)
}
