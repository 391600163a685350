package local

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hwmon.go/pkg/cli/sh"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/registry"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

func encodeHex(t *testing.T, args ...string) []string {
	res, err := Encode(nil, args)
	require.NoError(t, err)
	return []string{res.Text}
}

func TestEncode(t *testing.T) {
	res, err := Encode(nil, []string{"0x01=45.5"})
	require.NoError(t, err)
	data := res.Value.([]byte)
	require.Len(t, data, wire.FrameLen(1))
	require.Equal(t, []byte{0xaa, 0x01, 0x01, 0x01, 0x00, 0x00, 0x36, 0x42}, data[:8])
	require.Equal(t, byte(0x55), data[len(data)-1])

	_, err = Encode(nil, []string{"0x01"})
	require.Error(t, err)
	_, err = Encode(nil, []string{"0x01=hot"})
	require.Error(t, err)
}

func TestFeedAndGet(t *testing.T) {
	m := monitor.New(monitor.Options{})
	data, err := sh.ParseHex(encodeHex(t, "0x01=45.5", "32=8.25"))
	require.NoError(t, err)

	res, err := Feed(m, []string{sh.FormatHex(data[:5])})
	require.NoError(t, err)
	require.Equal(t, FeedResult{Accepted: 0, State: "in-data"}, res.Value)

	res, err = Feed(m, []string{sh.FormatHex(data[5:])})
	require.NoError(t, err)
	require.Equal(t, FeedResult{Accepted: 1, State: "idle"}, res.Value)

	res, err = Get(m, []string{"0x01"})
	require.NoError(t, err)
	require.Equal(t, "45.5 °C", res.Text)
	res, err = Get(m, []string{"0x20"})
	require.NoError(t, err)
	require.Equal(t, ValueResult{ID: 0x20, Value: 8.25, Valid: true}, res.Value)

	res, err = Get(m, []string{"0x30"})
	require.NoError(t, err)
	require.Equal(t, "-999", res.Text)

	_, err = Get(m, nil)
	require.Error(t, err)
}

func TestBatch(t *testing.T) {
	m := monitor.New(monitor.Options{})
	res, err := Batch(m, encodeHex(t, "1=50"))
	require.NoError(t, err)
	require.Equal(t, BatchResult{Accepted: true}, res.Value)

	data, err := sh.ParseHex(encodeHex(t, "1=60"))
	require.NoError(t, err)
	data[len(data)-1] = 0x00
	res, err = Batch(m, []string{sh.FormatHex(data)})
	require.NoError(t, err)
	require.False(t, res.Value.(BatchResult).Accepted)
	require.Contains(t, res.Text, wire.ErrBadTerminator.Error())
	require.Equal(t, float32(50), m.Get(0x01))
	require.Equal(t, uint32(1), m.Stats().Errors)
}

func TestListInvalidateReset(t *testing.T) {
	m := monitor.New(monitor.Options{})
	res, err := List(m, nil)
	require.NoError(t, err)
	require.Equal(t, "No readings", res.Text)

	_, err = Batch(m, encodeHex(t, "1=50", "2=30"))
	require.NoError(t, err)
	res, err = List(m, nil)
	require.NoError(t, err)
	require.Len(t, res.Value.([]registry.Reading), 2)

	_, err = Invalidate(m, nil)
	require.NoError(t, err)
	require.False(t, m.Valid(0x01))

	_, err = Feed(m, []string{"aa 01"})
	require.NoError(t, err)
	require.Equal(t, wire.StateSawVersion, m.ParserState())
	_, err = Reset(m, nil)
	require.NoError(t, err)
	require.Equal(t, wire.StateIdle, m.ParserState())
	require.Equal(t, 2, m.Count())

	_, err = Reset(m, []string{"all"})
	require.NoError(t, err)
	require.Equal(t, 0, m.Count())
	require.Equal(t, uint32(0), m.Stats().OK)
}

func TestStats(t *testing.T) {
	m := monitor.New(monitor.Options{})
	_, err := Batch(m, encodeHex(t, "1=50"))
	require.NoError(t, err)
	res, err := Stats(m, nil)
	require.NoError(t, err)
	require.Contains(t, res.Text, "ok=1 errors=0 bytes=11 max-count=1")
}

func TestCatalog(t *testing.T) {
	res, err := Catalog(nil, nil)
	require.NoError(t, err)
	require.Contains(t, res.Text, "CPU Temp")
}
