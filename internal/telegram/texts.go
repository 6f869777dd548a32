package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ridof79/bappenas-bot/internal/domain"
	"github.com/ridof79/bappenas-bot/internal/scheduler"
)

const startText = "👋 Saya bot absensi.\n\n" +
	"Jadikan saya admin grup, lalu gunakan /clockin dan /clockout untuk mencatat kehadiran.\n" +
	"/check menampilkan status hari ini, /config menampilkan jadwal pengingat.\n" +
	"/setconfig mengubah jadwal pengingat, /status (khusus admin) menampilkan laporan harian."

const adminOnlyText = "Perintah ini hanya untuk admin grup."

const setConfigUsage = "Format: /setconfig <clockin|clockout> <mulai HH:MM> <selesai HH:MM> <interval menit> <hari>\n" +
	"Contoh: /setconfig clockin 08:00 09:00 30 0,1,2,3,4 (Senin=0)"

var dayNames = [7]string{"Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu", "Minggu"}

// clockKeyboard is attached to every outbound reminder so members can respond
// with one tap.
func clockKeyboard(event domain.EventType) tgbotapi.InlineKeyboardMarkup {
	label := "🕐 Clock In"
	data := Callback{Kind: CallbackClock, Event: domain.ClockIn}.Data()
	if event == domain.ClockOut {
		label = "🕕 Clock Out"
		data = Callback{Kind: CallbackClock, Event: domain.ClockOut}.Data()
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Cek Status", Callback{Kind: CallbackRefresh}.Data()),
		),
	)
}

// renderPayload turns the scheduler's structured payload into the outbound
// message text. All human-readable formatting lives here, not in the core.
func renderPayload(p scheduler.Payload) string {
	clock := p.At.Format("15:04")
	switch {
	case p.Kind == scheduler.Opening && p.Event == domain.ClockIn:
		return fmt.Sprintf("🌅 *Selamat Pagi!* - %s\n\n⏰ Waktunya untuk clock in!\n\nSilakan klik tombol di bawah atau gunakan perintah /clockin", clock)
	case p.Kind == scheduler.Opening && p.Event == domain.ClockOut:
		return fmt.Sprintf("🌆 *Selamat Sore!* - %s\n\n⏰ Waktunya untuk clock out!\n\nSilakan klik tombol di bawah atau gunakan perintah /clockout", clock)
	case p.Event == domain.ClockIn:
		return fmt.Sprintf("⏰ *Pengingat Clock In* - %s\n\n🟢 Sudah clock in: %d orang\n\nSilakan gunakan /clockin atau klik tombol di bawah!", clock, p.ClockedIn)
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "🌆 *Pengingat Clock Out* - %s\n\n", clock)
		if len(p.Pending) > 0 {
			b.WriteString("❗ Anggota yang belum clock out:\n")
			b.WriteString(mentionList(p.Pending))
			b.WriteString("\n\n")
		}
		b.WriteString("Jangan lupa clock out! Gunakan /clockout atau klik tombol!")
		return b.String()
	}
}

func mentionList(entries []domain.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, mention(e))
	}
	return strings.Join(parts, " ")
}

func mention(e domain.Entry) string {
	if e.Username != "" {
		return "@" + e.Username
	}
	return e.Name
}

// renderDayStatus formats the /check report.
func renderDayStatus(summary domain.DaySummary, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Laporan Kehadiran - %s*\n\n", now.Format("02/01/2006"))

	fmt.Fprintf(&b, "🟢 *Clock In (%d orang):*\n", len(summary.ClockIn))
	if len(summary.ClockIn) == 0 {
		b.WriteString("Belum ada yang clock in\n")
	}
	for _, e := range sortedEntries(summary.ClockIn) {
		fmt.Fprintf(&b, "• %s - %s\n", e.Name, e.At.In(now.Location()).Format("15:04"))
	}

	fmt.Fprintf(&b, "\n🔴 *Clock Out (%d orang):*\n", len(summary.ClockOut))
	if len(summary.ClockOut) == 0 {
		b.WriteString("Belum ada yang clock out\n")
	}
	for _, e := range sortedEntries(summary.ClockOut) {
		fmt.Fprintf(&b, "• %s - %s\n", e.Name, e.At.In(now.Location()).Format("15:04"))
	}
	return b.String()
}

// renderConfig formats one configuration for the /config report.
func renderConfig(cfg domain.Configuration) string {
	name := "🟢 *Clock In*"
	if cfg.Type == domain.ClockOut {
		name = "🔴 *Clock Out*"
	}
	days := make([]string, 0, len(cfg.Days))
	for _, d := range cfg.Days {
		if d >= 0 && d < len(dayNames) {
			days = append(days, dayNames[d])
		}
	}
	return fmt.Sprintf("%s:\n🕐 Waktu: %s - %s\n⏰ Interval: %d menit\n📅 Hari: %s\n",
		name, cfg.Start, cfg.End, cfg.Interval, strings.Join(days, ", "))
}

func sortedEntries(m map[int64]domain.Entry) []domain.Entry {
	out := make([]domain.Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
