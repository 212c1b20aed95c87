package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

func Test_ParseCalendarDate(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain date", input: "2024-01-15", want: "2024-01-15"},
		{name: "utc timestamp keeps written date", input: "2024-01-15T23:30:00.000Z", want: "2024-01-15"},
		{name: "offset timestamp keeps written date", input: "2024-01-15T00:30:00+02:00", want: "2024-01-15"},
		{name: "space separated", input: "2024-01-15 08:00:00", want: "2024-01-15"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := core.ParseCalendarDate(tc.input)

			require.NoError(t, err)
			assert.Equal(t, tc.want, d.String())
		})
	}
}

func Test_ParseCalendarDate_RejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"", "15.01.2024", "2024-13-01", "2024-01-15X00"} {
		_, err := core.ParseCalendarDate(input)

		assert.ErrorIs(t, err, core.ErrInvalidCalendarDate, input)
	}
}

func Test_CalendarDate_DaysUntil_CountsCalendarDays(t *testing.T) {
	borrow := core.MustParseCalendarDate("2024-01-01")
	due := core.MustParseCalendarDate("2024-01-15")

	assert.Equal(t, 14, borrow.DaysUntil(due))
	assert.Equal(t, -14, due.DaysUntil(borrow))
	assert.Equal(t, 29, core.MustParseCalendarDate("2024-02-01").DaysUntil(core.MustParseCalendarDate("2024-03-01")))
}

func Test_CalendarDate_DaysUntil_SpansCenturies(t *testing.T) {
	borrow := core.MustParseCalendarDate("2024-01-01")
	due := core.MustParseCalendarDate("2400-01-01")

	assert.Equal(t, 137331, borrow.DaysUntil(due))
	assert.Equal(t, -137331, due.DaysUntil(borrow))
}

func Test_CalendarDate_Comparisons(t *testing.T) {
	a := core.MustParseCalendarDate("2024-01-15")
	b := core.MustParseCalendarDate("2024-01-20")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.True(t, a.Equal(core.NewCalendarDate(2024, time.January, 15)))
	assert.Equal(t, b, a.AddDays(5))
}

func Test_Today_IgnoresTimeOfDay(t *testing.T) {
	lateEvening := time.Date(2024, time.January, 15, 23, 59, 59, 0, time.UTC)
	earlyMorning := time.Date(2024, time.January, 15, 0, 0, 1, 0, time.UTC)

	assert.Equal(t, core.Today(lateEvening), core.Today(earlyMorning))
}

func Test_CalendarDate_JSON(t *testing.T) {
	// arrange
	type payload struct {
		Date   core.CalendarDate  `json:"date"`
		Maybe  *core.CalendarDate `json:"maybe"`
		Absent core.CalendarDate  `json:"absent"`
	}

	var decoded payload

	// act
	err := jsonAPI.Unmarshal([]byte(`{"date":"2024-01-15T00:00:00.000Z","maybe":null,"absent":""}`), &decoded)
	encoded, encodeErr := jsonAPI.Marshal(payload{Date: core.MustParseCalendarDate("2024-01-01")})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", decoded.Date.String())
	assert.Nil(t, decoded.Maybe)
	assert.True(t, decoded.Absent.IsZero())

	require.NoError(t, encodeErr)
	assert.JSONEq(t, `{"date":"2024-01-01","maybe":null,"absent":null}`, string(encoded))
}
