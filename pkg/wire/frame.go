package wire

import (
	"fmt"
	"io"
)

// Protocol constants.
const (
	StartMarker byte = 0xaa
	EndMarker   byte = 0x55
	Version     byte = 0x01

	// RecordSize is the encoded size of one reading: id + float32.
	RecordSize = 5
	// Overhead is the frame size without records.
	Overhead = 6
	// MinFrameLen is the size of a frame without records.
	MinFrameLen = Overhead
	// MaxRecords is the largest count the count byte can carry.
	MaxRecords = 255
	// Capacity is the largest number of records a receiver keeps.
	// Frames announcing more are rejected.
	Capacity = 64
)

// FrameLen returns the encoded length of a frame with n records.
func FrameLen(n int) int {
	return Overhead + RecordSize*n
}

// Record is one reading in a frame.
type Record struct {
	ID    byte
	Value float32
}

// Frame contains the information of a parsed frame.
type Frame struct {
	Records []Record
	// Check is the check value received on the wire.
	Check uint16
	// Sum is the CRC computed over the received payload.
	Sum uint16
}

// Verified reports whether the received check value matches the payload.
func (f *Frame) Verified() bool {
	return f.Check == f.Sum
}

// Bytes returns encoded bytes for sending. The check bytes are
// always filled with the CRC of the payload.
func (f *Frame) Bytes() ([]byte, error) {
	n := len(f.Records)
	if n > MaxRecords {
		return nil, fmt.Errorf("too many records: %d > %d", n, MaxRecords)
	}
	b := make([]byte, 0, FrameLen(n))
	b = append(b, StartMarker, Version, byte(n))
	for _, r := range f.Records {
		b = append(b, r.ID)
		b = AppendFloat32(b, r.Value)
	}
	crc := CRC16(b[1:])
	return append(b, byte(crc), byte(crc>>8), EndMarker), nil
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}
