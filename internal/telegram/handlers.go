package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ridof79/bappenas-bot/internal/domain"
	"github.com/ridof79/bappenas-bot/internal/metrics"
	"github.com/ridof79/bappenas-bot/internal/store"
)

// handleClock records one attendance event for the acting user. The returned
// text is shown to the user; alert marks it as a popup rather than a toast.
//
// The pre-checks against today's summary only shape the reply; the ledger's
// uniqueness constraint is what actually guarantees one record per day.
func (r *Router) handleClock(ctx context.Context, chatID int64, from *tgbotapi.User, event domain.EventType) (string, bool) {
	if from == nil {
		return "", false
	}
	now := r.now()

	summary, err := r.repo.GetDayAttendance(ctx, chatID, store.DateKey(now))
	if err != nil {
		r.log.Error("day attendance failed", zap.Error(err), zap.Int64("chatID", chatID))
		return "❌ Gagal membaca data kehadiran", true
	}

	if event == domain.ClockOut {
		if _, in := summary.ClockIn[from.ID]; !in {
			return "Anda harus clock in terlebih dahulu!", true
		}
	}
	if _, done := summary.ByType(event)[from.ID]; done {
		if event == domain.ClockIn {
			return "Anda sudah clock in hari ini!", true
		}
		return "Anda sudah clock out hari ini!", true
	}

	name := from.FirstName
	if name == "" {
		name = from.UserName
	}
	ok, err := r.repo.RecordAttendance(ctx, domain.AttendanceRecord{
		ChatID:    chatID,
		UserID:    from.ID,
		UserName:  name,
		Username:  from.UserName,
		Type:      event,
		ClockTime: now,
		DateOnly:  store.DateKey(now),
	})
	if err != nil {
		r.log.Error("record attendance failed",
			zap.Error(err), zap.Int64("chatID", chatID), zap.Int64("userID", from.ID))
		return "❌ Gagal mencatat kehadiran", true
	}
	if !ok {
		// Lost the race to an earlier tap; same outcome as the pre-check.
		if event == domain.ClockIn {
			return "Anda sudah clock in hari ini!", true
		}
		return "Anda sudah clock out hari ini!", true
	}

	metrics.AttendanceRecorded.WithLabelValues(string(event)).Inc()
	if event == domain.ClockIn {
		return fmt.Sprintf("✅ Clock in berhasil pada %s", now.Format("15:04:05")), false
	}
	return fmt.Sprintf("✅ Clock out berhasil pada %s", now.Format("15:04:05")), false
}

func (r *Router) handleCheck(ctx context.Context, chatID int64) {
	summary, err := r.repo.GetDayAttendance(ctx, chatID, store.DateKey(r.now()))
	if err != nil {
		r.log.Error("day attendance failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "❌ Gagal membaca data kehadiran")
		return
	}
	r.sendText(chatID, renderDayStatus(summary, r.now()))
}

// handleStatus renders the same day report as /check but only for chat
// administrators, so members cannot spam the full report into the group.
func (r *Router) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: msg.From.ID},
	})
	if err != nil {
		r.log.Error("get chat member failed",
			zap.Error(err), zap.Int64("chatID", chatID), zap.Int64("userID", msg.From.ID))
		return
	}
	if !member.IsCreator() && !member.IsAdministrator() {
		r.sendText(chatID, adminOnlyText)
		return
	}
	r.handleCheck(ctx, chatID)
}

func (r *Router) handleConfig(ctx context.Context, chatID int64) {
	var parts []string
	for _, event := range domain.EventTypes {
		cfg, err := r.repo.GetConfiguration(ctx, chatID, event)
		if err != nil {
			r.log.Error("get configuration failed",
				zap.Error(err), zap.Int64("chatID", chatID), zap.String("event", string(event)))
			continue
		}
		if cfg != nil && cfg.Active {
			parts = append(parts, renderConfig(*cfg))
		}
	}
	if len(parts) == 0 {
		r.sendText(chatID, "Belum ada konfigurasi aktif untuk grup ini.")
		return
	}
	r.sendText(chatID, strings.Join(parts, "\n"))
}

// handleSetConfig parses "/setconfig <clockin|clockout> <HH:MM> <HH:MM> <interval> <days>"
// where days is a comma list of weekday numbers, Monday=0. Validation errors
// come back to the user verbatim; nothing is partially applied.
func (r *Router) handleSetConfig(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 5 {
		r.sendText(chatID, setConfigUsage)
		return
	}

	var event domain.EventType
	switch fields[0] {
	case "clockin":
		event = domain.ClockIn
	case "clockout":
		event = domain.ClockOut
	default:
		r.sendText(chatID, setConfigUsage)
		return
	}

	interval, err := strconv.Atoi(fields[3])
	if err != nil {
		r.sendText(chatID, "Interval harus berupa angka menit.")
		return
	}
	var days domain.DaySet
	for _, part := range strings.Split(fields[4], ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			r.sendText(chatID, "Hari harus berupa angka 0-6 dipisah koma (Senin=0).")
			return
		}
		days = append(days, day)
	}

	cfg, err := domain.NewConfiguration(chatID, event, fields[1], fields[2], interval, days)
	if err != nil {
		r.sendText(chatID, "❌ "+err.Error())
		return
	}
	if err := r.repo.SaveConfiguration(ctx, cfg); err != nil {
		r.log.Error("save configuration failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "❌ Gagal menyimpan konfigurasi")
		return
	}
	r.sendText(chatID, "✅ Konfigurasi tersimpan:\n\n"+renderConfig(cfg))
}

// handleMembershipChange reacts to the bot's own status changes in a chat:
// promotion to administrator registers the group and seeds its schedule,
// anything else deactivates the group and tears its timers down.
func (r *Router) handleMembershipChange(ctx context.Context, chg *tgbotapi.ChatMemberUpdated) {
	chatID := chg.Chat.ID

	if chg.NewChatMember.Status == "administrator" {
		if err := r.registerGroup(ctx, chg.Chat); err != nil {
			r.log.Error("register group failed", zap.Error(err), zap.Int64("chatID", chatID))
			return
		}
		r.log.Info("group registered", zap.Int64("chatID", chatID), zap.String("title", chg.Chat.Title))
		return
	}

	if err := r.repo.SetGroupActive(ctx, chatID, false); err != nil {
		r.log.Error("deactivate group failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
	r.sched.Unschedule(chatID)
	r.log.Info("group deactivated",
		zap.Int64("chatID", chatID), zap.String("status", chg.NewChatMember.Status))
}

// registerGroup upserts the group and re-saves its configurations, seeding
// defaults where none exist. Each save invalidates the cache and emits the
// change signal, so the reconciler installs the timers without a direct
// scheduling call from here.
func (r *Router) registerGroup(ctx context.Context, chat tgbotapi.Chat) error {
	err := r.repo.UpsertGroup(ctx, domain.Group{
		ChatID: chat.ID,
		Title:  chat.Title,
		Type:   chat.Type,
		Active: true,
	})
	if err != nil {
		return err
	}

	for _, event := range domain.EventTypes {
		cfg, err := r.repo.GetConfiguration(ctx, chat.ID, event)
		if err != nil {
			return err
		}
		save := domain.DefaultConfiguration(chat.ID, event)
		if cfg != nil {
			save = *cfg
		}
		if err := r.repo.SaveConfiguration(ctx, save); err != nil {
			return err
		}
	}
	return nil
}
