package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameLen(t *testing.T) {
	require.Equal(t, 6, FrameLen(0))
	require.Equal(t, 16, FrameLen(2))
	require.Equal(t, 1281, FrameLen(MaxRecords))
}

func TestFrameBytes(t *testing.T) {
	frame := Frame{Records: []Record{{ID: 0x01, Value: 45.5}, {ID: 0x20, Value: 62}}}
	b, err := frame.Bytes()
	require.NoError(t, err)
	require.Len(t, b, FrameLen(2))
	require.Equal(t, []byte{
		0xaa, 0x01, 0x02,
		0x01, 0x00, 0x00, 0x36, 0x42,
		0x20, 0x00, 0x00, 0x78, 0x42,
	}, b[:13])
	crc := CRC16(b[1:13])
	require.Equal(t, []byte{byte(crc), byte(crc >> 8), 0x55}, b[13:])

	var buf bytes.Buffer
	n, err := frame.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(b)), n)
	require.Equal(t, b, buf.Bytes())
}

func TestFrameBytesEmpty(t *testing.T) {
	b, err := (&Frame{}).Bytes()
	require.NoError(t, err)
	crc := CRC16([]byte{0x01, 0x00})
	require.Equal(t, []byte{0xaa, 0x01, 0x00, byte(crc), byte(crc >> 8), 0x55}, b)
}

func TestFrameBytesTooMany(t *testing.T) {
	_, err := (&Frame{Records: make([]Record, MaxRecords+1)}).Bytes()
	require.Error(t, err)
	_, err = (&Frame{Records: make([]Record, MaxRecords+1)}).WriteTo(&bytes.Buffer{})
	require.Error(t, err)
}
