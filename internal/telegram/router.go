package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ridof79/bappenas-bot/internal/domain"
	"github.com/ridof79/bappenas-bot/internal/scheduler"
	"github.com/ridof79/bappenas-bot/internal/store"
)

// botClient is the slice of the Telegram API the router talks to.
// *tgbotapi.BotAPI satisfies it.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Router wires Telegram updates to handlers. It is a thin shell over the
// store and scheduler: commands and buttons write through the same validated
// paths the core exposes, and rescheduling rides on the store's change signal.
type Router struct {
	bot   botClient
	log   *zap.Logger
	repo  *store.CachedRepo
	sched *scheduler.Scheduler
	loc   *time.Location
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo *store.CachedRepo, sched *scheduler.Scheduler, loc *time.Location) *Router {
	return &Router{bot: bot, log: log, repo: repo, sched: sched, loc: loc}
}

func (r *Router) now() time.Time {
	return time.Now().In(r.loc)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.MyChatMember != nil {
		r.handleMembershipChange(ctx, upd.MyChatMember)
		return
	}

	if upd.Message != nil && upd.Message.IsCommand() {
		msg := upd.Message
		chatID := msg.Chat.ID

		switch msg.Command() {
		case "start", "help":
			r.sendText(chatID, startText)
		case "clockin":
			if text, _ := r.handleClock(ctx, chatID, msg.From, domain.ClockIn); text != "" {
				r.sendText(chatID, text)
			}
		case "clockout":
			if text, _ := r.handleClock(ctx, chatID, msg.From, domain.ClockOut); text != "" {
				r.sendText(chatID, text)
			}
		case "check":
			r.handleCheck(ctx, chatID)
		case "status":
			r.handleStatus(ctx, msg)
		case "config":
			r.handleConfig(ctx, chatID)
		case "setconfig":
			r.handleSetConfig(ctx, chatID, msg.CommandArguments())
		}
		return
	}

	if upd.CallbackQuery != nil {
		r.handleCallbackQuery(ctx, upd.CallbackQuery)
	}
}

func (r *Router) handleCallbackQuery(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	decoded, err := ParseCallback(cb.Data)
	if err != nil {
		r.log.Warn("malformed callback", zap.Error(err), zap.Int64("chatID", chatID))
		_ = r.answerCallback(cb.ID, "", false)
		return
	}

	switch decoded.Kind {
	case CallbackClock:
		text, alert := r.handleClock(ctx, chatID, cb.From, decoded.Event)
		_ = r.answerCallback(cb.ID, text, alert)
	case CallbackRefresh:
		_ = r.answerCallback(cb.ID, "", false)
		summary, err := r.repo.GetDayAttendance(ctx, chatID, store.DateKey(r.now()))
		if err != nil {
			r.log.Error("day attendance failed", zap.Error(err), zap.Int64("chatID", chatID))
			return
		}
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, renderDayStatus(summary, r.now()))
		edit.ParseMode = tgbotapi.ModeMarkdown
		_, _ = r.bot.Send(edit)
	}
}

func (r *Router) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, _ = r.bot.Send(msg)
}

func (r *Router) answerCallback(id, text string, alert bool) error {
	cb := tgbotapi.NewCallback(id, text)
	cb.ShowAlert = alert
	_, err := r.bot.Request(cb)
	return err
}
