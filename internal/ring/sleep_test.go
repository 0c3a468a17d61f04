package ring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSleepDayChainsPeriods(t *testing.T) {
	start := time.Date(2024, time.June, 15, 22, 30, 0, 0, time.UTC)
	result := &BigDataResult{
		Records: []Record{
			{Stage: StageLight, Minutes: 30},
			{Stage: StageDeep, Minutes: 90},
			{Stage: StageREM, Minutes: 20},
			{Stage: StageAwake, Minutes: 5},
		},
		StartTime:    start,
		HasStartTime: true,
	}

	day, err := DecodeSleepDay(result, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, start, day.SleepStart)
	require.Len(t, day.Periods, 4)
	assert.Equal(t, start, day.Periods[0].Start)
	assert.Equal(t, start.Add(30*time.Minute), day.Periods[1].Start)
	assert.Equal(t, start.Add(120*time.Minute), day.Periods[2].Start)
	assert.Equal(t, start.Add(140*time.Minute), day.Periods[3].Start)

	// sleep_end == sleep_start + sum of durations, always.
	total := 0
	for _, p := range day.Periods {
		total += p.Minutes
	}
	assert.Equal(t, day.SleepStart.Add(time.Duration(total)*time.Minute), day.SleepEnd)
}

func TestDecodeSleepDayMissingTimestamp(t *testing.T) {
	result := &BigDataResult{
		Records: []Record{{Stage: StageLight, Minutes: 10}},
	}

	// No embedded timestamp, no fallback: the decoder refuses to guess.
	_, err := DecodeSleepDay(result, time.Time{})
	assert.ErrorIs(t, err, ErrMissingTimestampMarker)

	// A caller-supplied fallback is used as-is.
	fallback := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	day, err := DecodeSleepDay(result, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, day.SleepStart)
	assert.Equal(t, fallback.Add(10*time.Minute), day.SleepEnd)
}

func TestSleepDayAggregates(t *testing.T) {
	start := time.Date(2024, time.June, 15, 23, 0, 0, 0, time.UTC)
	result := &BigDataResult{
		Records: []Record{
			{Stage: StageLight, Minutes: 100},
			{Stage: StageDeep, Minutes: 80},
			{Stage: StageREM, Minutes: 40},
			{Stage: StageAwake, Minutes: 12},
			{Stage: StageUnknown, Minutes: 3},
			{Stage: StageLight, Minutes: 25},
		},
		StartTime:    start,
		HasStartTime: true,
	}

	day, err := DecodeSleepDay(result, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 125, day.LightSleepMinutes())
	assert.Equal(t, 80, day.DeepSleepMinutes())
	assert.Equal(t, 40, day.REMSleepMinutes())
	assert.Equal(t, 12, day.AwakeMinutes())
	assert.Equal(t, 3, day.UnknownMinutes())
	assert.Equal(t, 245, day.TotalSleepMinutes())
}

func TestFetchSleepDay(t *testing.T) {
	first := append(append([]byte{}, sleepHeader...), 0x02, 0x1E)
	final := []byte{0x03, 0x05}

	transport := &fakeTransport{}
	transport.onWrite = func([]byte) {
		transport.notify(first)
		transport.notify(final)
	}

	day, err := FetchSleepDay(context.Background(), transport, nil, time.Second, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.June, 15, 22, 30, 5, 0, time.UTC), day.SleepStart)
	require.Len(t, day.Periods, 2)
	assert.Equal(t, StageLight, day.Periods[0].Stage)
	assert.Equal(t, 30, day.Periods[0].Minutes)
	assert.Equal(t, StageDeep, day.Periods[1].Stage)
	assert.Equal(t, day.SleepStart.Add(35*time.Minute), day.SleepEnd)
}
