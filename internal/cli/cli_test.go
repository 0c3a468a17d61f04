package cli

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryan-huang1/r02ctl/internal/ring"
)

func TestParseSensor(t *testing.T) {
	for name, want := range map[string]ring.Sensor{
		"hr":       ring.SensorHeartRateLog,
		"HR":       ring.SensorHeartRateLog,
		"spo2":     ring.SensorBloodOxygen,
		"pressure": ring.SensorPressure,
		"stress":   ring.SensorPressure,
		"hrv":      ring.SensorHRV,
	} {
		got, err := parseSensor(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := parseSensor("steps")
	assert.Error(t, err)
}

func TestCommandGrammar(t *testing.T) {
	parser, err := kong.New(&CLI{}, kong.Name("r02ctl"))
	require.NoError(t, err)

	for _, args := range [][]string{
		{"scan"},
		{"battery"},
		{"-v", "sleep", "--partial"},
		{"settings"},
		{"settings", "set", "hr", "--enable", "--interval", "15"},
		{"set-time", "--time", "2024-06-15T22:30:00Z"},
		{"--prefix", "R02", "hr"},
	} {
		_, err := parser.Parse(args)
		assert.NoError(t, err, "%v", args)
	}

	_, err = parser.Parse([]string{"settings", "set", "hr", "--enable", "--disable"})
	assert.Error(t, err, "xor'd flags must conflict")
}
