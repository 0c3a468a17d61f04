package ring

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepStage is one sleep classification byte from the big-data sleep log.
type SleepStage byte

const (
	StageNoData SleepStage = 0x00
	StageError  SleepStage = 0x01
	StageLight  SleepStage = 0x02
	StageDeep   SleepStage = 0x03
	StageREM    SleepStage = 0x04
	StageAwake  SleepStage = 0x05
	StageMotion SleepStage = 0x06
	StageRest   SleepStage = 0x07

	// StageUnknown is the fallback for any byte outside the known set.
	// Unmapped stages are retained, never silently dropped.
	StageUnknown SleepStage = 0xFF
)

// StageFromByte maps a raw stage byte to a SleepStage, falling back to
// StageUnknown rather than rejecting the record.
func StageFromByte(b byte) SleepStage {
	switch s := SleepStage(b); s {
	case StageNoData, StageError, StageLight, StageDeep, StageREM, StageAwake, StageMotion, StageRest:
		return s
	default:
		return StageUnknown
	}
}

func (s SleepStage) String() string {
	switch s {
	case StageNoData:
		return "No Data"
	case StageError:
		return "Error"
	case StageLight:
		return "Light Sleep"
	case StageDeep:
		return "Deep Sleep"
	case StageREM:
		return "REM Sleep"
	case StageAwake:
		return "Awake"
	case StageMotion:
		return "Motion"
	case StageRest:
		return "Rest"
	default:
		return "Unknown"
	}
}

// SleepPeriod is one contiguous stretch of a single sleep stage.
type SleepPeriod struct {
	Stage   SleepStage
	Minutes int
	Start   time.Time
}

// SleepDay is one night's decoded sleep session. Periods are contiguous and
// in arrival order; SleepEnd always equals SleepStart plus the sum of the
// period durations.
type SleepDay struct {
	Date       time.Time // calendar date of the session start
	SleepStart time.Time
	SleepEnd   time.Time
	Periods    []SleepPeriod
}

// DecodeSleepDay turns a big-data result into a SleepDay. When the stream
// carried no embedded timestamp the caller must supply a fallback start
// time; a zero fallback yields ErrMissingTimestampMarker. The decoder never
// fabricates a clock time from assumptions about expected sleep windows.
func DecodeSleepDay(result *BigDataResult, fallback time.Time) (*SleepDay, error) {
	start := result.StartTime
	if !result.HasStartTime {
		if fallback.IsZero() {
			return nil, ErrMissingTimestampMarker
		}
		start = fallback
	}

	day := &SleepDay{
		Date:       time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		SleepStart: start,
	}

	current := start
	for _, r := range result.Records {
		day.Periods = append(day.Periods, SleepPeriod{
			Stage:   r.Stage,
			Minutes: r.Minutes,
			Start:   current,
		})
		current = current.Add(time.Duration(r.Minutes) * time.Minute)
	}
	day.SleepEnd = current
	return day, nil
}

// minutesIn sums the durations of periods matching any of the given stages.
// Totals are reductions over the period sequence, computed on demand.
func (d *SleepDay) minutesIn(stages ...SleepStage) int {
	total := 0
	for _, p := range d.Periods {
		for _, s := range stages {
			if p.Stage == s {
				total += p.Minutes
				break
			}
		}
	}
	return total
}

// TotalSleepMinutes counts light, deep and REM sleep.
func (d *SleepDay) TotalSleepMinutes() int {
	return d.minutesIn(StageLight, StageDeep, StageREM)
}

func (d *SleepDay) DeepSleepMinutes() int  { return d.minutesIn(StageDeep) }
func (d *SleepDay) LightSleepMinutes() int { return d.minutesIn(StageLight) }
func (d *SleepDay) REMSleepMinutes() int   { return d.minutesIn(StageREM) }
func (d *SleepDay) AwakeMinutes() int      { return d.minutesIn(StageAwake) }
func (d *SleepDay) UnknownMinutes() int    { return d.minutesIn(StageUnknown) }

// FetchSleepDay runs a sleep big-data session over transport and decodes the
// result. fallback is used as the session start when the stream carries no
// timestamp marker; see DecodeSleepDay.
func FetchSleepDay(ctx context.Context, transport Transport, log *zap.Logger, timeout time.Duration, fallback time.Time, opts ...BigDataOption) (*SleepDay, error) {
	session := NewBigDataSession(transport, BigDataSleep, log, opts...)
	result, err := session.Run(ctx, timeout)
	if err != nil {
		return nil, err
	}
	return DecodeSleepDay(result, fallback)
}
