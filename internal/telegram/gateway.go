package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ridof79/bappenas-bot/internal/scheduler"
)

// Gateway delivers scheduled reminders to Telegram. It is the scheduler's
// only outbound boundary; the scheduler hands over structured payloads and
// this type owns the rendering.
type Gateway struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewGateway wraps a bot API client as a scheduler.Dispatcher.
func NewGateway(bot *tgbotapi.BotAPI, log *zap.Logger) *Gateway {
	return &Gateway{bot: bot, log: log}
}

// Send renders and delivers one reminder. Errors surface to the scheduler,
// which retries only on the next natural fire.
func (g *Gateway) Send(chatID int64, p scheduler.Payload) error {
	msg := tgbotapi.NewMessage(chatID, renderPayload(p))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = clockKeyboard(p.Event)
	if _, err := g.bot.Send(msg); err != nil {
		return err
	}
	g.log.Debug("reminder delivered",
		zap.Int64("chatID", chatID),
		zap.String("event", string(p.Event)),
		zap.String("kind", string(p.Kind)),
	)
	return nil
}

var _ scheduler.Dispatcher = (*Gateway)(nil)
