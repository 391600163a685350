package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hwmon.go/pkg/link"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

func TestHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := monitor.New(monitor.Options{})
	server := httptest.NewServer(Handler(ctx, m))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	rw, err := Dial(url, server.URL)
	require.NoError(t, err)
	defer rw.Close()

	sender := link.NewFrameSender(rw)
	require.NoError(t, sender.Send([]wire.Record{{ID: 0x01, Value: 45.5}, {ID: 0x20, Value: 62}}))
	require.NoError(t, rw.WritePacket([]byte{0xaa, 0x01}))

	deadline := time.Now().Add(5 * time.Second)
	for m.Stats().OK == 0 || m.Stats().Bytes < 18 {
		require.True(t, time.Now().Before(deadline), "frame not received")
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, float32(45.5), m.Get(0x01))
	require.Equal(t, uint32(0), m.Stats().Errors)
}
