package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonathan/job-autopilot/internal/db"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts urgent listings and filed drafts to one chat.
type Telegram struct {
	api    telegramAPI
	chatID int64
}

// NewTelegram connects to the bot API with token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

// Notify sends a message for the event types worth a phone buzz and ignores
// the rest.
func (t *Telegram) Notify(_ context.Context, e Event) error {
	var text string
	switch e.Type {
	case EventUrgentJob:
		if e.Job == nil {
			return nil
		}
		text = FormatUrgentJob(e.Job)
	case EventDraftSaved:
		text = FormatDraftSaved(e)
	default:
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// FormatUrgentJob formats an urgent listing as a chat message.
func FormatUrgentJob(j *db.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[akut] %s\n%s, %s", j.Title, j.Company, j.Location)
	if d := db.Value(j.Deadline); d != "" {
		fmt.Fprintf(&b, "\nSista ansökningsdag: %s", d)
	}
	b.WriteString("\n\n")
	b.WriteString(j.PublicURL())
	return b.String()
}

// FormatDraftSaved formats a filed draft as a chat message.
func FormatDraftSaved(e Event) string {
	to, _ := e.Data["to_email"].(string)
	subject, _ := e.Data["subject"].(string)
	text := "Utkast sparat"
	if subject != "" {
		text += ": " + subject
	}
	if to != "" {
		text += "\nTill: " + to
	}
	return text
}
