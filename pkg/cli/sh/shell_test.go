package sh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/registry"
)

func TestParseHex(t *testing.T) {
	data, err := ParseHex([]string{"aa", "0x01", "0203", "f"})
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0x01, 0x02, 0x03, 0x0f}, data)

	data, err = ParseHex([]string{"aa,01,55"})
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0x01, 0x55}, data)

	_, err = ParseHex([]string{"zz"})
	require.Error(t, err)
}

func TestFormatHex(t *testing.T) {
	require.Equal(t, "aa 01 55", FormatHex([]byte{0xaa, 0x01, 0x55}))
	data, err := ParseHex(strings.Fields(FormatHex([]byte{0x10, 0x20})))
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x20}, data)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("0x20")
	require.NoError(t, err)
	require.Equal(t, byte(0x20), id)
	id, err = ParseID("32")
	require.NoError(t, err)
	require.Equal(t, byte(0x20), id)
	_, err = ParseID("256")
	require.Error(t, err)
	_, err = ParseID("cpu")
	require.Error(t, err)
}

func TestFormatReading(t *testing.T) {
	require.Equal(t, "0x01 CPU Temp              45.50 °C",
		FormatReading(registry.Reading{ID: 0x01, Value: 45.5, Valid: true}))
	require.Equal(t, "0x01 CPU Temp            -999.00 °C (invalid)",
		FormatReading(registry.Reading{ID: 0x01, Value: -999}))
}

func TestFormatStats(t *testing.T) {
	require.Equal(t, "ok=3 errors=1 bytes=42 max-count=2",
		FormatStats(monitor.Stats{OK: 3, Errors: 1, Bytes: 42, MaxCount: 2}))
}
