package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridof79/bappenas-bot/internal/domain"
)

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback("clock_in_button")
	require.NoError(t, err)
	require.Equal(t, Callback{Kind: CallbackClock, Event: domain.ClockIn}, cb)

	cb, err = ParseCallback("clock_out_button")
	require.NoError(t, err)
	require.Equal(t, Callback{Kind: CallbackClock, Event: domain.ClockOut}, cb)

	cb, err = ParseCallback("refresh_attendance")
	require.NoError(t, err)
	require.Equal(t, Callback{Kind: CallbackRefresh}, cb)
}

func TestParseCallback_Malformed(t *testing.T) {
	for _, data := range []string{"", "clock_in", "day_3", "set_interval", "clock_in_button_extra"} {
		_, err := ParseCallback(data)
		require.Error(t, err, "data %q", data)
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	for _, cb := range []Callback{
		{Kind: CallbackClock, Event: domain.ClockIn},
		{Kind: CallbackClock, Event: domain.ClockOut},
		{Kind: CallbackRefresh},
	} {
		parsed, err := ParseCallback(cb.Data())
		require.NoError(t, err)
		require.Equal(t, cb, parsed)
	}
}
