
// Package telegram wraps the bot API with the handful of send and download
// operations the rest of the code needs, so services depend on a small
// interface instead of the full API surface.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Client struct {
	bot   *tgbotapi.BotAPI
	token string
	http  *http.Client
}

func New(bot *tgbotapi.BotAPI) *Client {
	return &Client{
		bot:   bot,
		token: bot.Token,
		http:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendPhotoBytes uploads a photo and returns both the message id and the file
// id Telegram assigned, so callers can reuse the upload later.
func (c *Client) SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) (int, string, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	sent, err := c.bot.Send(photo)
	if err != nil {
		return 0, "", err
	}
	fileID := ""
	if len(sent.Photo) > 0 {
		// last entry is the largest size
		fileID = sent.Photo[len(sent.Photo)-1].FileID
	}
	return sent.MessageID, fileID, nil
}

func (c *Client) SendPhotoID(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	sent, err := c.bot.Send(photo)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) SendVideoID(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	video.Caption = caption
	sent, err := c.bot.Send(video)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) SendVideoPath(ctx context.Context, chatID int64, path, caption string) (int, error) {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	sent, err := c.bot.Send(video)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) SendDocumentID(ctx context.Context, chatID int64, fileID, caption string) (int, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption
	sent, err := c.bot.Send(doc)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// CopyMessage server-side copies a message into another chat with a new
// caption. Used when only a source message reference is known.
func (c *Client) CopyMessage(ctx context.Context, fromChatID int64, messageID int, toChatID int64, caption string) (int, error) {
	cfg := tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID)
	cfg.Caption = caption
	res, err := c.bot.CopyMessage(cfg)
	if err != nil {
		return 0, err
	}
	return res.MessageID, nil
}

// DownloadFile fetches file bytes through the bot file endpoint. Telegram
// caps bot downloads at 20MB; larger files fail here and callers degrade.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	f, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Link(c.token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 64<<20))
}
