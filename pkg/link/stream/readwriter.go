// Package stream carries frames over a byte stream, each one prefixed by
// its length so the receiver can use the batch decoder.
package stream

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/robotalks/hwmon.go/pkg/wire"
)

// MaxPacketSize is the length of a frame with the most records the
// wire format can describe.
var MaxPacketSize = uint16(wire.FrameLen(wire.MaxRecords))

// ErrPacketTooLarge indicates a length prefix beyond MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// ReadWriter implements link.PacketReadWriter.
// Each packet is prefixed by 2 bytes (little-endian) indicating the length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements link.PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint16
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p, pkt); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements link.PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > int(MaxPacketSize) {
		return ErrPacketTooLarge
	}
	buf := make([]byte, 2, 2+len(pkt))
	binary.LittleEndian.PutUint16(buf, uint16(len(pkt)))
	_, err := p.Write(append(buf, pkt...))
	return err
}
