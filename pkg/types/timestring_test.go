package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("9:30")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("0930")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("10:45")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 10*60+45, minutes)

	midnight := TimeString("00:00")
	minutes, err = midnight.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	// Однозначный час не проходит и здесь
	_, err = TimeString("9:30").Minutes()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("09:00")

	result, err := ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:30"), result)

	// Переход через полночь обрезается
	late := TimeString("23:30")
	result, err = late.AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("23:59"), result)
}

func TestTimeString_Ordering(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("18:30").IsAfter("09:15"))
}

func TestTimeString_At(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	day := time.Date(2025, 10, 15, 0, 0, 0, 0, loc)
	instant, err := TimeString("09:30").At(day, loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 10, 15, 9, 30, 0, 0, loc), instant)
}
