package encoders

import (
	"errors"
	"testing"
	"time"

	"github.com/htm-community/streamhtm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleDateEncoding(t *testing.T) {
	p := NewDateEncoderParams()
	p.SeasonWidth = 3
	p.DayOfWeekWidth = 1
	p.WeekendWidth = 3
	p.TimeOfDayWidth = 5
	de, err := NewDateEncoder(p)
	require.NoError(t, err)

	// season is aaabbbcccddd (1 bit/month)
	// should be 000000000111 (centered on month 11 - Nov)
	seasonExpected := utils.Make1DBool([]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1})
	// week is MTWTFSS
	dayOfWeekExpected := utils.Make1DBool([]int{0, 0, 0, 1, 0, 0, 0})
	// not a weekend, so it should be "False"
	weekendExpected := utils.Make1DBool([]int{1, 1, 1, 0, 0, 0})
	// time of day has radius of 4 hours and w of 5 so each bit = 240/5 min = 48min
	// 14:55 is minute 14*60 + 55 = 895; 895/48 = bit 18.6
	// should be 30 bits total (30 * 48 minutes = 24 hours)
	timeOfDayExpected := utils.Make1DBool([]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	d := time.Date(2010, 11, 4, 14, 55, 0, 0, time.UTC)
	encoded, err := de.Encode(d)
	require.NoError(t, err)

	expected := append(seasonExpected, dayOfWeekExpected...)
	expected = append(expected, weekendExpected...)
	expected = append(expected, timeOfDayExpected...)

	assert.Equal(t, utils.OnIndices(expected), utils.OnIndices(encoded))
	assert.Equal(t, len(expected), de.Width())
	assert.Equal(t, 12, de.ActiveBits())
	assert.Equal(t, "season: 0 day of week: 12 weekend: 19 time of day: 25", de.Description())

	fromString, err := de.Encode("2010-11-04 14:55:00")
	require.NoError(t, err)
	assert.Equal(t, encoded, fromString)
}

func TestDateWeekend(t *testing.T) {
	p := NewDateEncoderParams()
	p.WeekendWidth = 3
	de, err := NewDateEncoder(p)
	require.NoError(t, err)

	weekday := utils.Make1DBool([]int{1, 1, 1, 0, 0, 0})
	weekend := utils.Make1DBool([]int{0, 0, 0, 1, 1, 1})

	cases := []struct {
		date     time.Time
		expected []bool
	}{
		{time.Date(2010, 11, 5, 17, 0, 0, 0, time.UTC), weekday},
		{time.Date(2010, 11, 5, 19, 0, 0, 0, time.UTC), weekend},
		{time.Date(2010, 11, 6, 9, 0, 0, 0, time.UTC), weekend},
		{time.Date(2010, 11, 7, 9, 0, 0, 0, time.UTC), weekend},
		{time.Date(2010, 11, 8, 9, 0, 0, 0, time.UTC), weekday},
	}
	for _, c := range cases {
		encoded, err := de.Encode(c.date)
		require.NoError(t, err)
		assert.Equal(t, c.expected, encoded, c.date.String())
	}
}

func TestHolidayValue(t *testing.T) {
	assert.Equal(t, 1.0, holidayValue(time.Date(2010, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1.0, holidayValue(time.Date(2010, 12, 25, 13, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 0.5, holidayValue(time.Date(2010, 12, 24, 12, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, 0.75, holidayValue(time.Date(2010, 12, 26, 6, 0, 0, 0, time.UTC)), 1e-9)
	assert.Equal(t, 0.0, holidayValue(time.Date(2010, 12, 20, 12, 0, 0, 0, time.UTC)))
}

func TestDateBucketIndex(t *testing.T) {
	p := NewDateEncoderParams()
	p.DayOfWeekWidth = 1
	p.WeekendWidth = 3
	de, err := NewDateEncoder(p)
	require.NoError(t, err)

	// thursday, weekday bucket 0 of 4
	idx, err := de.BucketIndex(time.Date(2010, 11, 4, 14, 55, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3*4+0, idx)

	// saturday, weekend bucket 3 of 4
	idx, err = de.BucketIndex(time.Date(2010, 11, 6, 14, 55, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 5*4+3, idx)
}

func TestDateEncoderErrors(t *testing.T) {
	_, err := NewDateEncoder(NewDateEncoderParams())
	assert.Error(t, err)

	p := NewDateEncoderParams()
	p.SeasonWidth = 3
	de, err := NewDateEncoder(p)
	require.NoError(t, err)

	_, err = de.Encode("not a date")
	assert.True(t, errors.Is(err, ErrValueType))
	_, err = de.Encode(42)
	assert.True(t, errors.Is(err, ErrValueType))
}
