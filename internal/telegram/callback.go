package telegram

import (
	"fmt"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

// CallbackKind enumerates the inline-button actions the bot understands.
// Callback data is parsed into this tagged form once, at the router edge;
// handlers never string-match payloads.
type CallbackKind int

const (
	CallbackClock CallbackKind = iota + 1
	CallbackRefresh
)

// Callback is a decoded inline-button payload.
type Callback struct {
	Kind  CallbackKind
	Event domain.EventType // set for CallbackClock only
}

// Wire values kept compatible with the original button payloads.
const (
	clockInData  = "clock_in_button"
	clockOutData = "clock_out_button"
	refreshData  = "refresh_attendance"
)

// ParseCallback decodes raw callback data into a Callback.
func ParseCallback(data string) (Callback, error) {
	switch data {
	case clockInData:
		return Callback{Kind: CallbackClock, Event: domain.ClockIn}, nil
	case clockOutData:
		return Callback{Kind: CallbackClock, Event: domain.ClockOut}, nil
	case refreshData:
		return Callback{Kind: CallbackRefresh}, nil
	}
	return Callback{}, fmt.Errorf("unknown callback data %q", data)
}

// Data encodes the callback back to its wire value.
func (c Callback) Data() string {
	switch c.Kind {
	case CallbackClock:
		if c.Event == domain.ClockOut {
			return clockOutData
		}
		return clockInData
	case CallbackRefresh:
		return refreshData
	}
	return ""
}
