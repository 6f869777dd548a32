package scheduler

import (
	"time"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

// FireKind distinguishes the daily opening message from interval reminders.
type FireKind string

const (
	Opening  FireKind = "opening"
	Reminder FireKind = "reminder"
)

// Payload is the structured notification handed to the gateway. The core
// never renders human-readable text; the gateway owns all formatting.
type Payload struct {
	ChatID     int64
	Event      domain.EventType
	Kind       FireKind
	At         time.Time
	ClockedIn  int
	ClockedOut int
	// Pending lists users who clocked in but not out; populated only on
	// clock-out reminders, for the gateway's mention list.
	Pending []domain.Entry
}

// Dispatcher is the only boundary to outbound messaging.
// telegram.Gateway implements it.
type Dispatcher interface {
	Send(chatID int64, p Payload) error
}
